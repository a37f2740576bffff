package service

import (
	"context"
	"strings"

	"classifieds/internal/apperr"
	"classifieds/internal/auth"
	"classifieds/models"
	"classifieds/repository"
)

type CommentInput struct {
	AdvertisementID int64
	Content         string
}

// CommentService handles comments on advertisements.
type CommentService struct {
	*Deps
}

func (s *CommentService) Create(ctx context.Context, caller *models.User, in CommentInput) (*models.Comment, error) {
	if err := auth.Authorize(caller, auth.ActionCreateComment, auth.Target{}); err != nil {
		return nil, err
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, apperr.Invalid("content is required")
	}
	var out *models.Comment
	err := s.Store.Do(ctx, func(r *repository.Repositories) error {
		a, err := r.Adverts.GetByID(ctx, in.AdvertisementID)
		if err != nil {
			return storeErr("get advertisement", err)
		}
		if a == nil {
			return apperr.NotFound("advertisement not found")
		}
		out, err = r.Comments.Create(ctx, &models.Comment{
			Content:         content,
			CreatedAt:       s.now(),
			UserID:          caller.ID,
			AdvertisementID: a.ID,
		})
		return storeErr("create comment", err)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *CommentService) Get(ctx context.Context, id int64) (*models.Comment, error) {
	var c *models.Comment
	err := s.Store.Do(ctx, func(r *repository.Repositories) error {
		var err error
		c, err = r.Comments.GetByID(ctx, id)
		return storeErr("get comment", err)
	})
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.NotFound("comment not found")
	}
	return c, nil
}

// ListByAdvert pages through the comments of an advertisement, oldest first.
func (s *CommentService) ListByAdvert(ctx context.Context, advertID int64, page repository.Page) ([]models.Comment, error) {
	var out []models.Comment
	err := s.Store.Do(ctx, func(r *repository.Repositories) error {
		a, err := r.Adverts.GetByID(ctx, advertID)
		if err != nil {
			return storeErr("get advertisement", err)
		}
		if a == nil {
			return apperr.NotFound("advertisement not found")
		}
		out, err = r.Comments.ListByAdvertisement(ctx, advertID, page)
		return storeErr("list comments", err)
	})
	return out, err
}
