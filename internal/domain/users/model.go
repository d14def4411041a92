package users

import (
	"strings"
	"time"
)

// User is the persistent identity record. Created exactly once, atomically,
// when the registration wizard commits.
type User struct {
	ID           string
	Email        string
	PasswordHash string

	FirstName string
	LastName  string

	Address         string
	LivingSituation string // e.g. "House", "Apartment"
	HasOtherPets    bool

	Role              string // auth.RoleUser / auth.RoleAdmin
	ProfilePictureURL string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayName prefers the first name and falls back to the local part of the
// email address.
func (u User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	if i := strings.IndexByte(u.Email, '@'); i > 0 {
		return u.Email[:i]
	}
	if u.Email != "" {
		return u.Email
	}
	return "User"
}

// FullName joins first and last name; empty when neither is set.
func (u User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.LastName
	}
}

// OwnedPet is a pet the adopter already owns, recorded for household context.
// Bulk-created with its owner at wizard commit; cascade-deleted with them.
type OwnedPet struct {
	ID     string
	UserID string

	Name    string
	Species string
	Gender  string
	Breed   string
	Age     int

	CreatedAt time.Time
}
