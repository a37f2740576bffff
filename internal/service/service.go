// Package service implements the entity lifecycle handlers. Every exported operation
// runs in one unit of work and consults the authorization policy before it mutates.
package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"classifieds/internal/apperr"
	"classifieds/internal/auth"
	"classifieds/internal/logger"
	"classifieds/models"
	"classifieds/repository"
)

// Success messages returned to clients.
const (
	MsgUserCreated      = "User has been created successfully"
	MsgSuperuserCreated = "Account has been created successfully. Granted superuser permissions"
	MsgLoggedIn         = "User has been logged in successfully"
	MsgLoggedOut        = "User has been logged out successfully"
	MsgUserChanged      = "User has been changed successfully"
	MsgAdvertCreated    = "Advertisement has been created successfully"
	MsgAdvertDeleted    = "Advertisement has been deleted successfully"
	MsgAdvertMoved      = "Advertisement has been moved successfully"
	MsgCommentCreated   = "Comment has been added successfully"
	MsgReportCreated    = "Report has been sent successfully"
	MsgCategoryCreated  = "Category has been created successfully"
	MsgObjectDeleted    = "Object has been deleted successfully"
	MsgEmailRemoved     = "Email has been removed from the allowlist"
)

// Deps are the collaborators shared by all handlers.
type Deps struct {
	Store  *repository.Store
	Codec  *auth.TokenCodec
	Hasher *auth.Hasher
	// SuperuserEmails is the bootstrap list from configuration.
	SuperuserEmails []string
	// Now is the server clock. Defaults to time.Now.
	Now func() time.Time
}

// Services groups the handlers per entity.
type Services struct {
	Users      *UserService
	Adverts    *AdvertService
	Comments   *CommentService
	Reports    *ReportService
	Categories *CategoryService
	Admin      *AdminService
	Allowlist  *AllowlistService
}

// New wires every handler to deps.
func New(deps Deps) *Services {
	if deps.Store == nil {
		panic("service: store is required")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Hasher == nil {
		deps.Hasher = auth.NewHasher(0)
	}
	d := &deps
	return &Services{
		Users:      &UserService{d},
		Adverts:    &AdvertService{d},
		Comments:   &CommentService{d},
		Reports:    &ReportService{d},
		Categories: &CategoryService{d},
		Admin:      &AdminService{d},
		Allowlist:  &AllowlistService{d},
	}
}

// isBootstrapSuperuser reports whether email is in the configured superuser list.
func (d *Deps) isBootstrapSuperuser(email string) bool {
	for _, e := range d.SuperuserEmails {
		if strings.EqualFold(strings.TrimSpace(e), email) {
			return true
		}
	}
	return false
}

func (d *Deps) now() time.Time {
	return d.Now().UTC()
}

// requireCaller rejects anonymous callers before any lookup happens.
func requireCaller(caller *models.User) error {
	if caller == nil {
		return apperr.Unauthenticated("not authenticated")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// storeErr translates repository failures into the outcome taxonomy. Errors that are
// already typed pass through; anything else is logged and wrapped as internal.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var typed *apperr.Error
	switch {
	case errors.As(err, &typed):
		return err
	case errors.Is(err, repository.ErrDuplicate):
		return apperr.Conflict("%s: already exists", op)
	case errors.Is(err, repository.ErrMissingReference):
		return apperr.NotFound("%s: referenced object not found", op)
	}
	logger.Errorf("%s: %v", op, err)
	return fmt.Errorf("%s: %w", op, err)
}
