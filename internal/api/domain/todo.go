package domain

import (
	"time"

	"github.com/uptrace/bun"
)

// Todo is a single todo item owned by exactly one user.
type Todo struct {
	bun.BaseModel `bun:"table:todos,alias:t"`

	ID        string    `bun:"id,pk" json:"id"`
	Text      string    `bun:"text,notnull" json:"text"`
	Completed bool      `bun:"completed,notnull" json:"completed"`
	UserID    string    `bun:"user_id,notnull" json:"userId"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"-"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"-"`
}
