package entity

import (
	"time"
)

// User is the aggregate root for the user domain.
// Password holds a bcrypt hash; ResetTokenHash holds the SHA-256 of the emailed token.
type User struct {
	ID         string
	Name       string
	Email      string
	Password   string
	IsVerified bool

	OTPCode      string
	OTPExpiresAt *time.Time

	ResetTokenHash string
	ResetExpiresAt *time.Time

	LastLogin *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OTPValid reports whether code matches the pending OTP and has not expired at now.
func (u *User) OTPValid(code string, now time.Time, equal func(a, b string) bool) bool {
	if u.OTPCode == "" || u.OTPExpiresAt == nil || !now.Before(*u.OTPExpiresAt) {
		return false
	}
	return equal(u.OTPCode, code)
}

// MarkVerified moves the user out of the unverified state.
func (u *User) MarkVerified() {
	u.IsVerified = true
	u.OTPCode = ""
	u.OTPExpiresAt = nil
}

// SetReset records a pending password reset, replacing any earlier one.
func (u *User) SetReset(tokenHash string, expiresAt time.Time) {
	u.ResetTokenHash = tokenHash
	u.ResetExpiresAt = &expiresAt
}

func (u *User) ClearReset() {
	u.ResetTokenHash = ""
	u.ResetExpiresAt = nil
}

// PublicUser is the JSON shape exposed to clients.
type PublicUser struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Verified  bool       `json:"verified"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Verified:  u.IsVerified,
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
	}
}
