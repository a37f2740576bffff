package service

import (
	"context"
	"errors"
	"strings"

	"classifieds/internal/apperr"
	"classifieds/internal/auth"
	"classifieds/internal/logger"
	"classifieds/models"
	"classifieds/repository"
)

// CategoryService handles advertisement categories.
type CategoryService struct {
	*Deps
}

// Create adds a category. Duplicate names are a conflict whether the pre-check or the
// unique constraint catches them.
func (s *CategoryService) Create(ctx context.Context, caller *models.User, name string) (*models.Category, error) {
	if err := auth.Authorize(caller, auth.ActionCreateCategory, auth.Target{}); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Invalid("name is required")
	}
	var out *models.Category
	err := s.Store.Do(ctx, func(r *repository.Repositories) error {
		existing, err := r.Categories.GetByName(ctx, name)
		if err != nil {
			return storeErr("get category", err)
		}
		if existing != nil {
			return apperr.Conflict("category %q already exists", name)
		}
		out, err = r.Categories.Create(ctx, name)
		if errors.Is(err, repository.ErrDuplicate) {
			return apperr.Conflict("category %q already exists", name)
		}
		return storeErr("create category", err)
	})
	if err != nil {
		return nil, err
	}
	logger.Infof("category %d (%s) created by user %d", out.ID, out.Name, caller.ID)
	return out, nil
}

func (s *CategoryService) Get(ctx context.Context, id int64) (*models.Category, error) {
	var c *models.Category
	err := s.Store.Do(ctx, func(r *repository.Repositories) error {
		var err error
		c, err = r.Categories.GetByID(ctx, id)
		return storeErr("get category", err)
	})
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.NotFound("category not found")
	}
	return c, nil
}

func (s *CategoryService) List(ctx context.Context, page repository.Page) ([]models.Category, error) {
	var out []models.Category
	err := s.Store.Do(ctx, func(r *repository.Repositories) error {
		var err error
		out, err = r.Categories.List(ctx, page)
		return storeErr("list categories", err)
	})
	return out, err
}
