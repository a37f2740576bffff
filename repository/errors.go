package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

var (
	// ErrDuplicate is returned when a write violates a unique constraint.
	ErrDuplicate = errors.New("duplicate value violates unique constraint")
	// ErrMissingReference is returned when a write references a row that does not exist.
	ErrMissingReference = errors.New("referenced row does not exist")
	// ErrFieldNotMutable is returned by UpdateFields for columns outside the allow-list.
	ErrFieldNotMutable = errors.New("field is not mutable")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// classify maps driver constraint errors onto the repository sentinels.
// Other errors are returned unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		switch se.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return errors.Join(ErrDuplicate, err)
		case sqlite3.ErrConstraintForeignKey:
			return errors.Join(ErrMissingReference, err)
		}
		return err
	}
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		switch pe.Code {
		case pgUniqueViolation:
			return errors.Join(ErrDuplicate, err)
		case pgForeignKeyViolation:
			return errors.Join(ErrMissingReference, err)
		}
	}
	return err
}
