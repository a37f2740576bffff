package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"classifieds/internal/db"
	"classifieds/models"
)

const advertColumns = `id, title, description, created_at, user_id, category_id`

// Mutable advertisement columns.
const (
	AdvertTitle       = "title"
	AdvertDescription = "description"
	AdvertCategoryID  = "category_id"
)

var advertMutable = map[string]bool{
	AdvertTitle:       true,
	AdvertDescription: true,
	AdvertCategoryID:  true,
}

// AdvertisementRepository is the repository for Advertisement entities.
type AdvertisementRepository struct {
	db db.Querier
}

func NewAdvertisementRepository(q db.Querier) *AdvertisementRepository {
	return &AdvertisementRepository{db: q}
}

// Create inserts an advertisement. CreatedAt defaults to now (UTC) when zero.
// A missing owner or category yields ErrMissingReference.
func (r *AdvertisementRepository) Create(ctx context.Context, a *models.Advertisement) (*models.Advertisement, error) {
	if a == nil {
		return nil, errors.New("advertisement is nil")
	}
	out := *a
	if out.CreatedAt.IsZero() {
		out.CreatedAt = time.Now()
	}
	out.CreatedAt = out.CreatedAt.UTC()
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO advertisements (title, description, created_at, user_id, category_id) VALUES (?,?,?,?,?) RETURNING id`,
		out.Title, out.Description, out.CreatedAt, out.UserID, out.CategoryID).Scan(&out.ID)
	if err != nil {
		return nil, classify(err)
	}
	return &out, nil
}

// GetByID fetches an advertisement by its ID.
func (r *AdvertisementRepository) GetByID(ctx context.Context, id int64) (*models.Advertisement, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	a, err := scanAdvert(r.db.QueryRowContext(ctx, `SELECT `+advertColumns+` FROM advertisements WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

// List returns one page of all advertisements ordered by id.
func (r *AdvertisementRepository) List(ctx context.Context, page Page) ([]models.Advertisement, error) {
	limit, offset := page.limitOffset()
	return r.query(ctx, `SELECT `+advertColumns+` FROM advertisements ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
}

// ListByCategory returns one page of a category's advertisements ordered by id.
func (r *AdvertisementRepository) ListByCategory(ctx context.Context, categoryID int64, page Page) ([]models.Advertisement, error) {
	limit, offset := page.limitOffset()
	return r.query(ctx, `SELECT `+advertColumns+` FROM advertisements WHERE category_id = ? ORDER BY id LIMIT ? OFFSET ?`, categoryID, limit, offset)
}

// ListByUser returns one page of a user's advertisements ordered by id.
func (r *AdvertisementRepository) ListByUser(ctx context.Context, userID int64, page Page) ([]models.Advertisement, error) {
	limit, offset := page.limitOffset()
	return r.query(ctx, `SELECT `+advertColumns+` FROM advertisements WHERE user_id = ? ORDER BY id LIMIT ? OFFSET ?`, userID, limit, offset)
}

func (r *AdvertisementRepository) query(ctx context.Context, query string, args ...any) ([]models.Advertisement, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.Advertisement{}
	for rows.Next() {
		a, err := scanAdvert(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateFields changes title, description or category. It reports whether the row existed.
func (r *AdvertisementRepository) UpdateFields(ctx context.Context, id int64, changes ...Change) (bool, error) {
	return updateFields(ctx, r.db, "advertisements", advertMutable, id, changes)
}

// Delete removes the advertisement and, through the schema, its comments and reports.
func (r *AdvertisementRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return deleteByID(ctx, r.db, "advertisements", id)
}

func scanAdvert(s rowScanner) (*models.Advertisement, error) {
	var a models.Advertisement
	if err := s.Scan(&a.ID, &a.Title, &a.Description, &a.CreatedAt, &a.UserID, &a.CategoryID); err != nil {
		return nil, err
	}
	return &a, nil
}
