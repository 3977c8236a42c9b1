package model

import "time"

// User represents an account as stored in the `users` table.  Every
// user owns exactly one Wallet, created in the same transaction as the
// user row.  Profile fields are optional and only change through
// ProfileUpdate.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Username     – unique login name.
//	PasswordHash – bcrypt hashed password, never serialized.
//	Firstname    – optional given name.
//	Lastname     – optional family name.
//	Email        – optional unique email address.
//	Gender       – optional gender code (1 male, 2 female).
//	DOB          – optional date of birth.
//	NationalCode – optional unique ten digit national code.
//	IsAdmin      – administrative flag, carried but not enforced here.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64     `json:"id"`                      // users.id
	Username     string     `json:"username"`                // users.username
	PasswordHash string     `json:"-"`                       // users.password_hash
	Firstname    *string    `json:"firstname,omitempty"`     // users.firstname
	Lastname     *string    `json:"lastname,omitempty"`      // users.lastname
	Email        *string    `json:"email,omitempty"`         // users.email
	Gender       *int       `json:"gender,omitempty"`        // users.gender
	DOB          *time.Time `json:"dob,omitempty"`           // users.dob
	NationalCode *string    `json:"national_code,omitempty"` // users.national_code
	IsAdmin      bool       `json:"is_admin"`                // users.is_admin
	CreatedAt    time.Time  `json:"created_at"`              // users.created_at
	UpdatedAt    time.Time  `json:"updated_at"`              // users.updated_at
}

// ProfileUpdate enumerates the profile fields a user may change.  A nil
// field is left untouched; there is no way to patch any other column.
// DOB is a calendar date in YYYY-MM-DD form.
type ProfileUpdate struct {
	Firstname    *string `json:"firstname"`
	Lastname     *string `json:"lastname"`
	Email        *string `json:"email"`
	Gender       *int    `json:"gender"`
	DOB          *string `json:"dob"`
	NationalCode *string `json:"national_code"`
}

// Empty reports whether the update carries no field at all.
func (p ProfileUpdate) Empty() bool {
	return p.Firstname == nil && p.Lastname == nil && p.Email == nil &&
		p.Gender == nil && p.DOB == nil && p.NationalCode == nil
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA-256 hash of the raw token is stored.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
