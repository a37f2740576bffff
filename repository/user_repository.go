package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"classifieds/internal/db"
	"classifieds/models"
)

const userColumns = `id, username, email, hashed_password, is_banned, is_superuser, is_moderator`

// Mutable user columns. Credentials and identity are fixed after registration.
const (
	UserIsBanned    = "is_banned"
	UserIsModerator = "is_moderator"
	UserIsSuperuser = "is_superuser"
)

var userMutable = map[string]bool{
	UserIsBanned:    true,
	UserIsModerator: true,
	UserIsSuperuser: true,
}

type UserRepository struct {
	db db.Querier
}

func NewUserRepository(q db.Querier) *UserRepository {
	return &UserRepository{db: q}
}

// Create inserts a new user and returns it with its generated ID.
// Duplicate usernames or emails yield ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if u == nil {
		return nil, errors.New("user is nil")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (username, email, hashed_password, is_banned, is_superuser, is_moderator) VALUES (?,?,?,?,?,?) RETURNING id`,
		u.Username, u.Email, u.PasswordHash, u.IsBanned, u.IsSuperuser, u.IsModerator).Scan(&id)
	if err != nil {
		return nil, classify(err)
	}
	out := *u
	out.ID = id
	return &out, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	u, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

// List returns one page of users ordered by id.
func (r *UserRepository) List(ctx context.Context, page Page) ([]models.User, error) {
	limit, offset := page.limitOffset()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateFields changes role and ban flags. It reports whether the user existed.
func (r *UserRepository) UpdateFields(ctx context.Context, id int64, changes ...Change) (bool, error) {
	return updateFields(ctx, r.db, "users", userMutable, id, changes)
}

// Delete removes the user together with everything it owns.
func (r *UserRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return deleteByID(ctx, r.db, "users", id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (*models.User, error) {
	var u models.User
	if err := s.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsBanned, &u.IsSuperuser, &u.IsModerator); err != nil {
		return nil, err
	}
	return &u, nil
}
