package domain

import (
	"time"

	"github.com/uptrace/bun"
)

// User is a registered account. The password is stored only as a bcrypt hash.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           string    `bun:"id,pk" json:"id"`
	Email        string    `bun:"email,notnull,unique" json:"email"`
	Name         string    `bun:"name,notnull" json:"name"`
	PasswordHash string    `bun:"password_hash,notnull" json:"-"`
	CreatedAt    time.Time `bun:"created_at,notnull" json:"-"`
	UpdatedAt    time.Time `bun:"updated_at,notnull" json:"-"`
}
