package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"classifieds/internal/db"
	"classifieds/models"
)

// SuperuserEmailRepository stores the superuser allowlist.
type SuperuserEmailRepository struct {
	db db.Querier
}

func NewSuperuserEmailRepository(q db.Querier) *SuperuserEmailRepository {
	return &SuperuserEmailRepository{db: q}
}

// Add allowlists an email. An already allowlisted email yields ErrDuplicate.
func (r *SuperuserEmailRepository) Add(ctx context.Context, email string) (*models.SuperuserEmail, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var id int64
	if err := r.db.QueryRowContext(ctx, `INSERT INTO superuser_emails (email) VALUES (?) RETURNING id`, email).Scan(&id); err != nil {
		return nil, classify(err)
	}
	return &models.SuperuserEmail{ID: id, Email: email}, nil
}

func (r *SuperuserEmailRepository) GetByEmail(ctx context.Context, email string) (*models.SuperuserEmail, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var e models.SuperuserEmail
	err := r.db.QueryRowContext(ctx, `SELECT id, email FROM superuser_emails WHERE email = ?`, email).Scan(&e.ID, &e.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// Contains reports whether the email is allowlisted.
func (r *SuperuserEmailRepository) Contains(ctx context.Context, email string) (bool, error) {
	e, err := r.GetByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	return e != nil, nil
}

func (r *SuperuserEmailRepository) List(ctx context.Context, page Page) ([]models.SuperuserEmail, error) {
	limit, offset := page.limitOffset()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT id, email FROM superuser_emails ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.SuperuserEmail{}
	for rows.Next() {
		var e models.SuperuserEmail
		if err := rows.Scan(&e.ID, &e.Email); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByEmail removes an entry and reports whether it existed.
func (r *SuperuserEmailRepository) DeleteByEmail(ctx context.Context, email string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `DELETE FROM superuser_emails WHERE email = ?`, email)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
