package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"classifieds/internal/db"
	"classifieds/models"
)

const commentColumns = `id, content, created_at, user_id, advertisement_id`

type CommentRepository struct {
	db db.Querier
}

func NewCommentRepository(q db.Querier) *CommentRepository {
	return &CommentRepository{db: q}
}

// Create inserts a comment. CreatedAt defaults to now (UTC) when zero.
func (r *CommentRepository) Create(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	if c == nil {
		return nil, errors.New("comment is nil")
	}
	out := *c
	if out.CreatedAt.IsZero() {
		out.CreatedAt = time.Now()
	}
	out.CreatedAt = out.CreatedAt.UTC()
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO comments (content, created_at, user_id, advertisement_id) VALUES (?,?,?,?) RETURNING id`,
		out.Content, out.CreatedAt, out.UserID, out.AdvertisementID).Scan(&out.ID)
	if err != nil {
		return nil, classify(err)
	}
	return &out, nil
}

func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	c, err := scanComment(r.db.QueryRowContext(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

// ListByAdvertisement returns one page of an advertisement's comments, oldest first.
func (r *CommentRepository) ListByAdvertisement(ctx context.Context, advertID int64, page Page) ([]models.Comment, error) {
	limit, offset := page.limitOffset()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE advertisement_id = ? ORDER BY id LIMIT ? OFFSET ?`,
		advertID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CommentRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return deleteByID(ctx, r.db, "comments", id)
}

func scanComment(s rowScanner) (*models.Comment, error) {
	var c models.Comment
	if err := s.Scan(&c.ID, &c.Content, &c.CreatedAt, &c.UserID, &c.AdvertisementID); err != nil {
		return nil, err
	}
	return &c, nil
}
