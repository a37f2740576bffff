package models

import "time"

// Advertisement is a classified posted by a user into a category.
// Deleting the owner or the category removes it together with its comments and reports.
type Advertisement struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UserID      int64     `db:"user_id" json:"user_id"`
	CategoryID  int64     `db:"category_id" json:"category_id"`
}
