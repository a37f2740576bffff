package models

import "time"

// Comment is a message left by a user on an advertisement.
type Comment struct {
	ID              int64     `db:"id" json:"id"`
	Content         string    `db:"content" json:"content"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UserID          int64     `db:"user_id" json:"user_id"`
	AdvertisementID int64     `db:"advertisement_id" json:"advertisement_id"`
}
