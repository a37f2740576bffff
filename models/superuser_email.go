package models

// SuperuserEmail is an allowlist entry: an email pre-approved for superuser rights.
type SuperuserEmail struct {
	ID    int64  `db:"id" json:"id"`
	Email string `db:"email" json:"email"`
}
