package model

import "time"

// User represents an application user as stored in the `users` table.  The
// catalog core only ever reads the id and role; the remaining fields belong
// to the identity subsystem.  Handlers define their own response types with
// JSON tags, so none are declared here.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Name         – display name shown next to the user's reviews.
//	Email        – unique email address.
//	PasswordHash – bcrypt hashed password.
//	Role         – "user" or "filmadmin".
//	IsActive     – whether the account is active.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each refresh
// token belongs to a user and carries expiry and revocation metadata.  Only
// the SHA-256 hash of the token is stored, never the plain value.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
