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

type ReportInput struct {
	AdvertisementID int64
	Title           string
	Content         string
}

// ReportService handles complaints about advertisements.
type ReportService struct {
	*Deps
}

// Create files a report against someone else's advertisement. The advertisement owner
// becomes the report subject.
func (s *ReportService) Create(ctx context.Context, caller *models.User, in ReportInput) (*models.Report, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.Invalid("title is required")
	}
	var out *models.Report
	err := s.Store.Do(ctx, func(r *repository.Repositories) error {
		a, err := r.Adverts.GetByID(ctx, in.AdvertisementID)
		if err != nil {
			return storeErr("get advertisement", err)
		}
		if a == nil {
			return apperr.NotFound("advertisement not found")
		}
		if err := auth.Authorize(caller, auth.ActionReportAdvert, auth.Target{OwnerID: a.UserID}); err != nil {
			return err
		}
		out, err = r.Reports.Create(ctx, &models.Report{
			Title:           title,
			Content:         in.Content,
			CreatedAt:       s.now(),
			CreatorID:       caller.ID,
			SubjectID:       a.UserID,
			AdvertisementID: a.ID,
		})
		return storeErr("create report", err)
	})
	if err != nil {
		return nil, err
	}
	logger.Infof("report %d filed by user %d against advertisement %d", out.ID, caller.ID, out.AdvertisementID)
	return out, nil
}

func (s *ReportService) Get(ctx context.Context, caller *models.User, id int64) (*models.Report, error) {
	if err := auth.Authorize(caller, auth.ActionReadReport, auth.Target{}); err != nil {
		return nil, err
	}
	var rep *models.Report
	err := s.Store.Do(ctx, func(r *repository.Repositories) error {
		var err error
		rep, err = r.Reports.GetByID(ctx, id)
		return storeErr("get report", err)
	})
	if err != nil {
		return nil, err
	}
	if rep == nil {
		return nil, apperr.NotFound("report not found")
	}
	return rep, nil
}

// List returns reports newest first.
func (s *ReportService) List(ctx context.Context, caller *models.User, page repository.Page) ([]models.Report, error) {
	if err := auth.Authorize(caller, auth.ActionListReports, auth.Target{}); err != nil {
		return nil, err
	}
	var out []models.Report
	err := s.Store.Do(ctx, func(r *repository.Repositories) error {
		var err error
		out, err = r.Reports.List(ctx, page)
		return storeErr("list reports", err)
	})
	return out, err
}
