package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func eq(a, b string) bool { return a == b }

func TestUser_OTPValid(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	exp := now.Add(5 * time.Minute)
	u := &User{OTPCode: "123456", OTPExpiresAt: &exp}

	assert.True(t, u.OTPValid("123456", now, eq))
	assert.False(t, u.OTPValid("654321", now, eq))
	assert.False(t, u.OTPValid("123456", exp, eq), "expiry instant is already expired")
	assert.False(t, u.OTPValid("123456", exp.Add(time.Second), eq))

	u.MarkVerified()
	assert.True(t, u.IsVerified)
	assert.False(t, u.OTPValid("123456", now, eq))
}

func TestUser_Reset(t *testing.T) {
	u := &User{}
	exp := time.Now().Add(time.Hour)
	u.SetReset("abc", exp)
	assert.Equal(t, "abc", u.ResetTokenHash)
	assert.NotNil(t, u.ResetExpiresAt)

	u.ClearReset()
	assert.Empty(t, u.ResetTokenHash)
	assert.Nil(t, u.ResetExpiresAt)
}

func TestCategories(t *testing.T) {
	names := CategoryNames()
	assert.Len(t, names, 13)
	assert.Equal(t, "Food & Dining", names[0])
	assert.True(t, IsValidCategory("Bills & Utilities"))
	assert.False(t, IsValidCategory("food & dining"))
	assert.False(t, IsValidCategory("all"))
}

func TestRoundAmount(t *testing.T) {
	assert.Equal(t, 10.13, RoundAmount(10.125000001))
	assert.Equal(t, 0.01, RoundAmount(0.005))
	assert.Equal(t, 42.0, RoundAmount(42))
}
