package model

import "time"

// Account roles. ADMIN is the administrator capability permitted to adjust
// protocol fees, withdraw accrued revenue and credit balances; every other
// participant is a plain USER.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Account represents a participant record as stored in the `accounts`
// table. An account stands in for a wallet address: it owns tickets,
// organizes events and holds a spendable balance in the smallest
// indivisible currency unit.
//
// Fields:
//  ID           – primary key identifier, used as the account identifier
//                 everywhere tickets, events and listings reference one.
//  Email        – unique email address used for login and notifications.
//  PasswordHash – bcrypt hashed password.
//  Role         – USER or ADMIN.
//  BalanceUnits – spendable balance in base units. Mutated only inside the
//                 transaction that owns the operation.
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Account struct {
	ID           uint64    // accounts.id
	Email        string    // accounts.email
	PasswordHash string    // accounts.password_hash
	Role         string    // accounts.role
	BalanceUnits uint64    // accounts.balance_units
	IsActive     bool      // accounts.is_active
	CreatedAt    time.Time // accounts.created_at
	UpdatedAt    time.Time // accounts.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table. Each refresh
// token belongs to an account; only the SHA-256 hash of the raw token is
// stored.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
