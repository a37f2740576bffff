package repository

import (
	"context"

	"classifieds/internal/db"
)

// Repositories groups every entity repository bound to one Querier.
type Repositories struct {
	Users      *UserRepository
	Categories *CategoryRepository
	Adverts    *AdvertisementRepository
	Comments   *CommentRepository
	Reports    *ReportRepository
	Allowlist  *SuperuserEmailRepository
}

// New binds all repositories to q, which may be a pool or a transaction.
func New(q db.Querier) *Repositories {
	return &Repositories{
		Users:      NewUserRepository(q),
		Categories: NewCategoryRepository(q),
		Adverts:    NewAdvertisementRepository(q),
		Comments:   NewCommentRepository(q),
		Reports:    NewReportRepository(q),
		Allowlist:  NewSuperuserEmailRepository(q),
	}
}

// Store hands out units of work over a database handle.
type Store struct {
	h *db.Handle
}

func NewStore(h *db.Handle) *Store {
	return &Store{h: h}
}

// Do runs fn with repositories bound to a single transaction. The transaction commits
// when fn returns nil and rolls back otherwise.
func (s *Store) Do(ctx context.Context, fn func(r *Repositories) error) error {
	return s.h.InTx(ctx, func(q db.Querier) error {
		return fn(New(q))
	})
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.h.PingContext(ctx)
}
