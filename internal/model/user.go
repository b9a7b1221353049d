package model

import "time"

// User represents a resident as stored in the `users` table. Rows are
// created on first interaction and never deleted. Only a keyed hash of
// the display name is kept so the table cannot be used to recover names.
//
// Fields:
//  ID        – chat-platform identifier of the resident (primary key).
//  NameHash  – hex digest of the display name, empty until registered.
//  IsAdmin   – whether the resident may use the admin surface.
//  CreatedAt – timestamp of creation.
type User struct {
	ID        uint64    // users.id
	NameHash  string    // users.name_hash
	IsAdmin   bool      // users.is_admin
	CreatedAt time.Time // users.created_at
}

// Role names carried in the JWT "role" claim.
const (
	RoleResident = "RESIDENT"
	RoleAdmin    = "ADMIN"
)
