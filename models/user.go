package models

// User represents a registered account.
// It maps to the `users` table. PasswordHash is never serialized.
type User struct {
	ID           int64  `db:"id" json:"id"`
	Username     string `db:"username" json:"username"`
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"hashed_password" json:"-"`
	IsBanned     bool   `db:"is_banned" json:"is_banned"`
	IsSuperuser  bool   `db:"is_superuser" json:"is_superuser"`
	IsModerator  bool   `db:"is_moderator" json:"is_moderator"`
}

// CanModerate reports whether the user holds moderator-gated permissions.
// Superusers implicitly do.
func (u *User) CanModerate() bool {
	return u != nil && (u.IsSuperuser || u.IsModerator)
}
