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

// Object types accepted by AdminService.Delete.
const (
	ObjectUser     = "user"
	ObjectAdvert   = "adv"
	ObjectComment  = "comment"
	ObjectCategory = "category"
	ObjectReport   = "report"
)

// AdminService deletes any object by type and id. Dependent rows go with it through
// the schema's cascading foreign keys.
type AdminService struct {
	*Deps
}

func (s *AdminService) Delete(ctx context.Context, caller *models.User, kind string, id int64) (string, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	action := auth.ActionAdminDelete
	if kind == ObjectCategory {
		action = auth.ActionDeleteCategory
	}
	if err := auth.Authorize(caller, action, auth.Target{}); err != nil {
		return "", err
	}

	err := s.Store.Do(ctx, func(r *repository.Repositories) error {
		var (
			ok  bool
			err error
		)
		switch kind {
		case ObjectUser:
			ok, err = r.Users.Delete(ctx, id)
		case ObjectAdvert:
			ok, err = r.Adverts.Delete(ctx, id)
		case ObjectComment:
			ok, err = r.Comments.Delete(ctx, id)
		case ObjectCategory:
			ok, err = r.Categories.Delete(ctx, id)
		case ObjectReport:
			ok, err = r.Reports.Delete(ctx, id)
		default:
			return apperr.Invalid("unknown object type %q", kind)
		}
		if err != nil {
			return storeErr("delete "+kind, err)
		}
		if !ok {
			return apperr.NotFound("%s not found", kind)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	logger.Infof("%s %d deleted by user %d", kind, id, caller.ID)
	return MsgObjectDeleted, nil
}

// AllowlistService manages emails pre-approved for superuser rights.
type AllowlistService struct {
	*Deps
}

// AddBulk allowlists every email that is neither allowlisted nor registered yet and
// returns how many were added. Repeats within emails count once.
func (s *AllowlistService) AddBulk(ctx context.Context, caller *models.User, emails []string) (int, error) {
	if err := auth.Authorize(caller, auth.ActionManageAllowlist, auth.Target{}); err != nil {
		return 0, err
	}
	added := 0
	err := s.Store.Do(ctx, func(r *repository.Repositories) error {
		seen := make(map[string]bool, len(emails))
		for _, raw := range emails {
			email := normalizeEmail(raw)
			if email == "" || seen[email] {
				continue
			}
			seen[email] = true

			listed, err := r.Allowlist.Contains(ctx, email)
			if err != nil {
				return storeErr("check allowlist", err)
			}
			if listed {
				continue
			}
			u, err := r.Users.GetByEmail(ctx, email)
			if err != nil {
				return storeErr("get user", err)
			}
			if u != nil {
				continue
			}
			if _, err := r.Allowlist.Add(ctx, email); err != nil {
				return storeErr("add to allowlist", err)
			}
			added++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	logger.Infof("%d emails allowlisted by user %d", added, caller.ID)
	return added, nil
}

func (s *AllowlistService) Remove(ctx context.Context, caller *models.User, email string) (string, error) {
	if err := auth.Authorize(caller, auth.ActionManageAllowlist, auth.Target{}); err != nil {
		return "", err
	}
	email = normalizeEmail(email)
	err := s.Store.Do(ctx, func(r *repository.Repositories) error {
		ok, err := r.Allowlist.DeleteByEmail(ctx, email)
		if err != nil {
			return storeErr("remove from allowlist", err)
		}
		if !ok {
			return apperr.NotFound("email not found in allowlist")
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return MsgEmailRemoved, nil
}

func (s *AllowlistService) List(ctx context.Context, caller *models.User, page repository.Page) ([]models.SuperuserEmail, error) {
	if err := auth.Authorize(caller, auth.ActionManageAllowlist, auth.Target{}); err != nil {
		return nil, err
	}
	var out []models.SuperuserEmail
	err := s.Store.Do(ctx, func(r *repository.Repositories) error {
		var err error
		out, err = r.Allowlist.List(ctx, page)
		return storeErr("list allowlist", err)
	})
	return out, err
}
