package testutil

import (
	"context"
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"classifieds/internal/db"
	"classifieds/models"
	"classifieds/repository"
)

// OpenInMemoryDB opens an in-memory SQLite database and applies migrations.
// The database is closed via t.Cleanup.
func OpenInMemoryDB(t *testing.T, name string) *db.Handle {
	t.Helper()
	// A named shared-cache memory database keeps tests in the same process isolated.
	name = strings.NewReplacer("/", "_", " ", "_", "?", "_", "&", "_").Replace(name)
	h, err := db.Open("sqlite3", "file:"+name+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })
	return h
}

// OpenStore opens an in-memory database named after the running test.
func OpenStore(t *testing.T) *repository.Store {
	t.Helper()
	return repository.NewStore(OpenInMemoryDB(t, t.Name()))
}

// UserOpt tweaks a seeded user.
type UserOpt func(*models.User)

func Superuser(u *models.User) { u.IsSuperuser, u.IsModerator = true, true }
func Moderator(u *models.User) { u.IsModerator = true }
func Banned(u *models.User)    { u.IsBanned = true }

// WithPasswordHash stores the given digest instead of a placeholder.
func WithPasswordHash(hash string) UserOpt {
	return func(u *models.User) { u.PasswordHash = hash }
}

// SeedUser inserts a user named username with email username@x.com.
func SeedUser(t *testing.T, s *repository.Store, username string, opts ...UserOpt) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@x.com", PasswordHash: "not-a-hash"}
	for _, o := range opts {
		o(u)
	}
	var out *models.User
	err := s.Do(context.Background(), func(r *repository.Repositories) error {
		var err error
		out, err = r.Users.Create(context.Background(), u)
		return err
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return out
}

// SeedCategory inserts a category.
func SeedCategory(t *testing.T, s *repository.Store, name string) *models.Category {
	t.Helper()
	var out *models.Category
	err := s.Do(context.Background(), func(r *repository.Repositories) error {
		var err error
		out, err = r.Categories.Create(context.Background(), name)
		return err
	})
	if err != nil {
		t.Fatalf("seed category %s: %v", name, err)
	}
	return out
}

// SeedAdvert inserts an advertisement owned by userID in categoryID.
func SeedAdvert(t *testing.T, s *repository.Store, userID, categoryID int64, title string) *models.Advertisement {
	t.Helper()
	var out *models.Advertisement
	err := s.Do(context.Background(), func(r *repository.Repositories) error {
		var err error
		out, err = r.Adverts.Create(context.Background(), &models.Advertisement{
			Title: title, Description: title + " description", UserID: userID, CategoryID: categoryID,
		})
		return err
	})
	if err != nil {
		t.Fatalf("seed advertisement %s: %v", title, err)
	}
	return out
}

// GenerateJWTHS256 returns a signed token with the given subject and expiry.
// An empty subject omits the claim; a zero expiry omits exp.
func GenerateJWTHS256(t *testing.T, secret, subject string, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{}
	if subject != "" {
		claims["sub"] = subject
	}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}
