package service

import (
	"context"
	"strings"

	"classifieds/internal/apperr"
	"classifieds/internal/auth"
	"classifieds/internal/logger"
	"classifieds/models"
	"classifieds/repository"
)

type AdvertInput struct {
	CategoryID  int64
	Title       string
	Description string
}

type MoveInput struct {
	AdvertisementID int64
	CategoryID      int64
}

// AdvertService handles advertisements.
type AdvertService struct {
	*Deps
}

// Create publishes an advertisement owned by the caller in an existing category.
func (s *AdvertService) Create(ctx context.Context, caller *models.User, in AdvertInput) (*models.Advertisement, error) {
	if err := auth.Authorize(caller, auth.ActionCreateAdvert, auth.Target{}); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.Invalid("title is required")
	}
	var out *models.Advertisement
	err := s.Store.Do(ctx, func(r *repository.Repositories) error {
		c, err := r.Categories.GetByID(ctx, in.CategoryID)
		if err != nil {
			return storeErr("get category", err)
		}
		if c == nil {
			return apperr.NotFound("category not found")
		}
		out, err = r.Adverts.Create(ctx, &models.Advertisement{
			Title:       title,
			Description: in.Description,
			CreatedAt:   s.now(),
			UserID:      caller.ID,
			CategoryID:  c.ID,
		})
		return storeErr("create advertisement", err)
	})
	if err != nil {
		return nil, err
	}
	logger.Debugf("advertisement %d created by user %d", out.ID, caller.ID)
	return out, nil
}

func (s *AdvertService) Get(ctx context.Context, id int64) (*models.Advertisement, error) {
	var a *models.Advertisement
	err := s.Store.Do(ctx, func(r *repository.Repositories) error {
		var err error
		a, err = r.Adverts.GetByID(ctx, id)
		return storeErr("get advertisement", err)
	})
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apperr.NotFound("advertisement not found")
	}
	return a, nil
}

func (s *AdvertService) List(ctx context.Context, page repository.Page) ([]models.Advertisement, error) {
	var out []models.Advertisement
	err := s.Store.Do(ctx, func(r *repository.Repositories) error {
		var err error
		out, err = r.Adverts.List(ctx, page)
		return storeErr("list advertisements", err)
	})
	return out, err
}

// ListByCategory pages through the advertisements of one existing category.
func (s *AdvertService) ListByCategory(ctx context.Context, categoryID int64, page repository.Page) ([]models.Advertisement, error) {
	var out []models.Advertisement
	err := s.Store.Do(ctx, func(r *repository.Repositories) error {
		c, err := r.Categories.GetByID(ctx, categoryID)
		if err != nil {
			return storeErr("get category", err)
		}
		if c == nil {
			return apperr.NotFound("category not found")
		}
		out, err = r.Adverts.ListByCategory(ctx, categoryID, page)
		return storeErr("list advertisements", err)
	})
	return out, err
}

func (s *AdvertService) ListByOwner(ctx context.Context, userID int64, page repository.Page) ([]models.Advertisement, error) {
	var out []models.Advertisement
	err := s.Store.Do(ctx, func(r *repository.Repositories) error {
		var err error
		out, err = r.Adverts.ListByUser(ctx, userID, page)
		return storeErr("list advertisements", err)
	})
	return out, err
}

// Delete removes an advertisement. Only its owner or a superuser may do so.
func (s *AdvertService) Delete(ctx context.Context, caller *models.User, id int64) (string, error) {
	if err := requireCaller(caller); err != nil {
		return "", err
	}
	err := s.Store.Do(ctx, func(r *repository.Repositories) error {
		a, err := r.Adverts.GetByID(ctx, id)
		if err != nil {
			return storeErr("get advertisement", err)
		}
		if a == nil {
			return apperr.NotFound("advertisement not found")
		}
		if err := auth.Authorize(caller, auth.ActionDeleteAdvert, auth.Target{OwnerID: a.UserID}); err != nil {
			return err
		}
		ok, err := r.Adverts.Delete(ctx, a.ID)
		if err != nil {
			return storeErr("delete advertisement", err)
		}
		if !ok {
			return apperr.Invariant("advertisement %d vanished during delete", a.ID)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	logger.Infof("advertisement %d deleted by user %d", id, caller.ID)
	return MsgAdvertDeleted, nil
}

// MoveToCategory reassigns an advertisement. Nothing changes unless both the
// advertisement and the target category exist.
func (s *AdvertService) MoveToCategory(ctx context.Context, caller *models.User, in MoveInput) (string, error) {
	if err := auth.Authorize(caller, auth.ActionMoveAdvert, auth.Target{}); err != nil {
		return "", err
	}
	err := s.Store.Do(ctx, func(r *repository.Repositories) error {
		a, err := r.Adverts.GetByID(ctx, in.AdvertisementID)
		if err != nil {
			return storeErr("get advertisement", err)
		}
		if a == nil {
			return apperr.NotFound("advertisement not found")
		}
		c, err := r.Categories.GetByID(ctx, in.CategoryID)
		if err != nil {
			return storeErr("get category", err)
		}
		if c == nil {
			return apperr.NotFound("category not found")
		}
		ok, err := r.Adverts.UpdateFields(ctx, a.ID, repository.Set(repository.AdvertCategoryID, c.ID))
		if err != nil {
			return storeErr("move advertisement", err)
		}
		if !ok {
			return apperr.Invariant("advertisement %d vanished during move", a.ID)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	logger.Infof("advertisement %d moved to category %d by user %d", in.AdvertisementID, in.CategoryID, caller.ID)
	return MsgAdvertMoved, nil
}
