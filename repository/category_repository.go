package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"classifieds/internal/db"
	"classifieds/models"
)

var categoryMutable = map[string]bool{"name": true}

type CategoryRepository struct {
	db db.Querier
}

func NewCategoryRepository(q db.Querier) *CategoryRepository {
	return &CategoryRepository{db: q}
}

// Create inserts a category. A taken name yields ErrDuplicate.
func (r *CategoryRepository) Create(ctx context.Context, name string) (*models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var id int64
	if err := r.db.QueryRowContext(ctx, `INSERT INTO categories (name) VALUES (?) RETURNING id`, name).Scan(&id); err != nil {
		return nil, classify(err)
	}
	return &models.Category{ID: id, Name: name}, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	return r.getOne(ctx, `SELECT id, name FROM categories WHERE id = ?`, id)
}

func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	return r.getOne(ctx, `SELECT id, name FROM categories WHERE name = ?`, name)
}

func (r *CategoryRepository) getOne(ctx context.Context, query string, arg any) (*models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var c models.Category
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepository) List(ctx context.Context, page Page) ([]models.Category, error) {
	limit, offset := page.limitOffset()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CategoryRepository) UpdateFields(ctx context.Context, id int64, changes ...Change) (bool, error) {
	return updateFields(ctx, r.db, "categories", categoryMutable, id, changes)
}

// Delete removes the category and, through the schema, its advertisements.
func (r *CategoryRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return deleteByID(ctx, r.db, "categories", id)
}
