package user

import (
	"time"

	"github.com/gofrs/uuid"
)

// User is a marketplace account. Admins manage the catalogue and orders.
type User struct {
	ID           uuid.UUID `json:"_id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	IsAdmin      bool      `json:"isAdmin" db:"is_admin"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

type ProfileUpdate struct {
	Name     string
	Email    string
	Password *string
}

type AdminUpdate struct {
	Name    string
	Email   string
	IsAdmin bool
}
