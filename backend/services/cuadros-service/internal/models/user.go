package models

// User is an application account provisioned out-of-band.
type User struct {
	Username     string `db:"username" json:"username"`
	PasswordHash string `db:"password" json:"-"`
}
