// internal/model/account.go
package model

import "time"

type Account struct {
	ID          int       `db:"id" json:"id"`
	Email       string    `db:"email" json:"email"`
	DisplayName string    `db:"display_name" json:"display_name"`
	Active      bool      `db:"active" json:"active"`
	VerifyToken string    `db:"verify_token" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`

	// Groups and Permissions are loaded alongside the row. Permissions is the
	// effective capability set: direct grants plus grants of every group the
	// account belongs to.
	Groups      []string `json:"groups,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// HasPermission reports whether the account holds the named capability,
// directly or through one of its groups.
func (a *Account) HasPermission(permission string) bool {
	for _, p := range a.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}
