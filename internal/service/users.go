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

// State change parameters accepted by ChangeState.
const (
	StateBan     = "ban"
	StateUnban   = "unban"
	StatePromote = "promote"
	StateDemote  = "demote"
)

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type ChangeStateInput struct {
	Param string
	Email string
}

// UserService handles registration, login and account administration.
type UserService struct {
	*Deps
}

// Register creates an account. Emails on the allowlist or in the bootstrap list get
// superuser and moderator rights; the returned message says which happened.
func (s *UserService) Register(ctx context.Context, caller *models.User, in RegisterInput) (string, error) {
	if err := auth.Authorize(caller, auth.ActionRegister, auth.Target{}); err != nil {
		return "", err
	}
	username := strings.TrimSpace(in.Username)
	email := normalizeEmail(in.Email)
	if username == "" || email == "" || in.Password == "" {
		return "", apperr.Invalid("username, email and password are required")
	}
	digest, err := s.Hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return "", apperr.Invalid("password is too long")
		}
		return "", storeErr("hash password", err)
	}

	var created *models.User
	err = s.Store.Do(ctx, func(r *repository.Repositories) error {
		existing, err := r.Users.GetByEmail(ctx, email)
		if err != nil {
			return storeErr("get user", err)
		}
		if existing != nil {
			return apperr.Conflict("user with this email already exists")
		}
		existing, err = r.Users.GetByUsername(ctx, username)
		if err != nil {
			return storeErr("get user", err)
		}
		if existing != nil {
			return apperr.Conflict("user with this username already exists")
		}
		allowlisted, err := r.Allowlist.Contains(ctx, email)
		if err != nil {
			return storeErr("check allowlist", err)
		}
		privileged := allowlisted || s.isBootstrapSuperuser(email)
		created, err = r.Users.Create(ctx, &models.User{
			Username:     username,
			Email:        email,
			PasswordHash: digest,
			IsSuperuser:  privileged,
			IsModerator:  privileged,
		})
		if err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperr.Conflict("user already exists")
			}
			return storeErr("create user", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	logger.Infof("user %d (%s) registered, superuser=%t", created.ID, created.Username, created.IsSuperuser)
	if created.IsSuperuser {
		return MsgSuperuserCreated, nil
	}
	return MsgUserCreated, nil
}

// Login checks credentials and returns a fresh session token. The token is meant for
// the session cookie only.
func (s *UserService) Login(ctx context.Context, caller *models.User, in LoginInput) (string, error) {
	if err := auth.Authorize(caller, auth.ActionLogin, auth.Target{}); err != nil {
		return "", err
	}
	email := normalizeEmail(in.Email)
	var u *models.User
	err := s.Store.Do(ctx, func(r *repository.Repositories) error {
		var err error
		u, err = r.Users.GetByEmail(ctx, email)
		return storeErr("get user", err)
	})
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", apperr.NotFound("user not found")
	}
	if !s.Hasher.Verify(in.Password, u.PasswordHash) {
		return "", apperr.Unauthenticated("wrong password")
	}
	if u.IsBanned {
		return "", apperr.Unauthenticated("user is banned")
	}
	token, err := s.Codec.Issue(u.ID, s.now())
	if err != nil {
		return "", storeErr("issue token", err)
	}
	logger.Debugf("user %d logged in", u.ID)
	return token, nil
}

// Me returns the calling user.
func (s *UserService) Me(ctx context.Context, caller *models.User) (*models.User, error) {
	if err := auth.Authorize(caller, auth.ActionViewSelf, auth.Target{}); err != nil {
		return nil, err
	}
	return caller, nil
}

func (s *UserService) Get(ctx context.Context, caller *models.User, id int64) (*models.User, error) {
	if err := auth.Authorize(caller, auth.ActionReadUser, auth.Target{}); err != nil {
		return nil, err
	}
	var u *models.User
	err := s.Store.Do(ctx, func(r *repository.Repositories) error {
		var err error
		u, err = r.Users.GetByID(ctx, id)
		return storeErr("get user", err)
	})
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.NotFound("user not found")
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context, caller *models.User, page repository.Page) ([]models.User, error) {
	if err := auth.Authorize(caller, auth.ActionListUsers, auth.Target{}); err != nil {
		return nil, err
	}
	var out []models.User
	err := s.Store.Do(ctx, func(r *repository.Repositories) error {
		var err error
		out, err = r.Users.List(ctx, page)
		return storeErr("list users", err)
	})
	return out, err
}

// ChangeState bans, unbans, promotes or demotes the user with the given email.
// Promoting an allowlisted email grants superuser rights as well; demoting only
// clears the moderator flag.
func (s *UserService) ChangeState(ctx context.Context, caller *models.User, in ChangeStateInput) (string, error) {
	if err := auth.Authorize(caller, auth.ActionChangeUserState, auth.Target{}); err != nil {
		return "", err
	}
	param := strings.ToLower(strings.TrimSpace(in.Param))
	switch param {
	case StateBan, StateUnban, StatePromote, StateDemote:
	default:
		return "", apperr.Invalid("unknown state change %q", in.Param)
	}
	email := normalizeEmail(in.Email)

	err := s.Store.Do(ctx, func(r *repository.Repositories) error {
		u, err := r.Users.GetByEmail(ctx, email)
		if err != nil {
			return storeErr("get user", err)
		}
		if u == nil {
			return apperr.NotFound("user not found")
		}
		var changes []repository.Change
		switch param {
		case StateBan:
			changes = append(changes, repository.Set(repository.UserIsBanned, true))
		case StateUnban:
			changes = append(changes, repository.Set(repository.UserIsBanned, false))
		case StatePromote:
			changes = append(changes, repository.Set(repository.UserIsModerator, true))
			allowlisted, err := r.Allowlist.Contains(ctx, email)
			if err != nil {
				return storeErr("check allowlist", err)
			}
			if allowlisted || s.isBootstrapSuperuser(email) {
				changes = append(changes, repository.Set(repository.UserIsSuperuser, true))
			}
		case StateDemote:
			changes = append(changes, repository.Set(repository.UserIsModerator, false))
		}
		ok, err := r.Users.UpdateFields(ctx, u.ID, changes...)
		if err != nil {
			return storeErr("update user", err)
		}
		if !ok {
			return apperr.Invariant("user %d vanished during state change", u.ID)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	logger.Infof("user %s: %s by user %d", email, param, caller.ID)
	return MsgUserChanged, nil
}
