package auth

import (
	"context"
	"fmt"
	"time"

	"classifieds/internal/apperr"
	"classifieds/internal/logger"
	"classifieds/models"
	"classifieds/repository"
)

// Gate resolves a session token to the calling user.
type Gate struct {
	codec *TokenCodec
	store *repository.Store
	now   func() time.Time
}

func NewGate(codec *TokenCodec, store *repository.Store) *Gate {
	return &Gate{codec: codec, store: store, now: time.Now}
}

// WithClock replaces the time source used for expiry checks.
func (g *Gate) WithClock(now func() time.Time) *Gate {
	g.now = now
	return g
}

// Authenticate returns the user owning token. Every failure, whatever its cause,
// is reported as the same unauthenticated error; the cause is only logged.
func (g *Gate) Authenticate(ctx context.Context, token string) (*models.User, error) {
	u, err := g.resolve(ctx, token)
	if err != nil {
		logger.Debugf("authentication rejected: %v", err)
		return nil, apperr.Unauthenticated("not authenticated")
	}
	return u, nil
}

func (g *Gate) resolve(ctx context.Context, token string) (*models.User, error) {
	id, err := g.codec.Parse(token, g.now())
	if err != nil {
		return nil, err
	}
	var u *models.User
	err = g.store.Do(ctx, func(r *repository.Repositories) error {
		var err error
		u, err = r.Users.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	if u == nil {
		return nil, fmt.Errorf("user %d no longer exists", id)
	}
	return u, nil
}
