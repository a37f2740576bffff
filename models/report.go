package models

import "time"

// Report flags an advertisement for moderation.
// CreatorID is the reporter, SubjectID the owner of the reported advertisement.
type Report struct {
	ID              int64     `db:"id" json:"id"`
	Title           string    `db:"title" json:"title"`
	Content         string    `db:"content" json:"content"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	CreatorID       int64     `db:"creator_id" json:"creator_id"`
	SubjectID       int64     `db:"subject_id" json:"subject_id"`
	AdvertisementID int64     `db:"advertisement_id" json:"advertisement_id"`
}
