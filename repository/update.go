package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"classifieds/internal/db"
)

// Change sets one column to a new value.
type Change struct {
	Field string
	Value any
}

// Set is shorthand for building a Change.
func Set(field string, value any) Change {
	return Change{Field: field, Value: value}
}

// updateFields applies changes to the row with the given id. Every field must be in
// allowed; otherwise nothing is written and ErrFieldNotMutable is returned.
// It reports whether a row matched.
func updateFields(ctx context.Context, q db.Querier, table string, allowed map[string]bool, id int64, changes []Change) (bool, error) {
	if len(changes) == 0 {
		return false, nil
	}
	sets := make([]string, 0, len(changes))
	args := make([]any, 0, len(changes)+1)
	seen := make(map[string]bool, len(changes))
	for _, c := range changes {
		if !allowed[c.Field] {
			return false, fmt.Errorf("%w: %s.%s", ErrFieldNotMutable, table, c.Field)
		}
		if seen[c.Field] {
			return false, fmt.Errorf("duplicate change for %s.%s", table, c.Field)
		}
		seen[c.Field] = true
		sets = append(sets, c.Field+" = ?")
		args = append(args, c.Value)
	}
	args = append(args, id)

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := q.ExecContext(ctx, `UPDATE `+table+` SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return false, classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// deleteByID removes the row with the given id and reports whether it existed.
func deleteByID(ctx context.Context, q db.Querier, table string, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := q.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
