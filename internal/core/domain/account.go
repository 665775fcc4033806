package domain

import "time"

// Account mirrors the persisted representation in the accounts table.
// PasswordHash and Salt together form the credential; neither is ever
// logged or returned by the API.
type Account struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
	Salt         string
	Role         string
	Verified     bool
	CreatedAt    time.Time
}

// Sanitized returns a copy of the account with credential material removed.
func (a Account) Sanitized() Account {
	a.PasswordHash = ""
	a.Salt = ""
	return a
}
