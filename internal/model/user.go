package model

import "time"

// User represents a record in the `users` table.  Each field corresponds
// to a column in the database.  The json tags are omitted because these
// structs are used internally by the repository layer; handlers define
// separate response types with appropriate JSON tags.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – display name shown in history and reports.
//  Email        – unique email address used for login.
//  PasswordHash – bcrypt hashed password.
//  Role         – either ADMIN or TENANT.
//  RoomNumber   – room occupied by a tenant (nil for admins or tenants
//                 not yet assigned a room).
//  ActiveUntil  – timestamp until which the tenant's utility access is
//                 active.  Nil means access was never granted; extensions
//                 then start from the current time.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64     // users.id
	Username     string     // users.username
	Email        string     // users.email
	PasswordHash string     // users.password_hash
	Role         string     // users.role
	RoomNumber   *string    // users.room_number (nullable)
	ActiveUntil  *time.Time // users.active_until (nullable)
	CreatedAt    time.Time  // users.created_at
	UpdatedAt    time.Time  // users.updated_at
}

// Roles accepted in the users.role column and in JWT role claims.
const (
	RoleAdmin  = "ADMIN"
	RoleTenant = "TENANT"
)

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and contains metadata for expiry
// and revocation.  The plain token is not stored; only its
// SHA‑256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA‑256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
