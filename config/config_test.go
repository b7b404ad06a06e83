package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Env:       "development",
		Port:      "4000",
		JWTSecret: "secret",
		JWTTTL:    24 * time.Hour,
		OTPTTL:    5 * time.Minute,
		ResetTTL:  time.Hour,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		errorString string
	}{
		{name: "valid config", mutate: func(c *Config) {}},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range",
			mutate:      func(c *Config) { c.Port = "70000" },
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "empty jwt secret",
			mutate:      func(c *Config) { c.JWTSecret = "  " },
			errorString: "JWT_SECRET is required",
		},
		{
			name: "dev secret in production",
			mutate: func(c *Config) {
				c.Env = "production"
				c.JWTSecret = devJWTSecret
			},
			errorString: "JWT_SECRET must be set in production",
		},
		{
			name:        "zero otp ttl",
			mutate:      func(c *Config) { c.OTPTTL = 0 },
			errorString: "OTP_TTL must be positive",
		},
		{
			name:        "mail enabled without mailgun",
			mutate:      func(c *Config) { c.MailSendEnabled = true },
			errorString: "MAIL_SEND_ENABLED requires MAILGUN_DOMAIN, MAILGUN_API_KEY and MAILGUN_SENDER",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(&c)
			err := c.Validate()
			if tt.errorString == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.errorString, err.Error())
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("JWT_TTL", "")
	t.Setenv("OTP_TTL", "")
	t.Setenv("RESET_TTL", "")
	t.Setenv("RATE_LIMIT_MAX", "")

	c := Load()
	assert.Equal(t, "4000", c.Port)
	assert.Equal(t, 24*time.Hour, c.JWTTTL)
	assert.Equal(t, 5*time.Minute, c.OTPTTL)
	assert.Equal(t, time.Hour, c.ResetTTL)
	assert.Equal(t, 100, c.RateLimitMax)
	assert.Equal(t, 15*time.Minute, c.RateLimitWindow)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("JWT_TTL", "forever")
	t.Setenv("REDIS_DB", "x")
	t.Setenv("MAIL_SEND_ENABLED", "maybe")

	c := Load()
	assert.Equal(t, 24*time.Hour, c.JWTTTL)
	assert.Equal(t, 0, c.RedisDB)
	assert.False(t, c.MailSendEnabled)
}

func TestConfig_Origins(t *testing.T) {
	c := &Config{ClientURL: "http://app.local", CORSAllowedOrigins: ""}
	assert.Equal(t, []string{"http://app.local"}, c.CORSOrigins())

	c.CORSAllowedOrigins = " http://a.test, ,http://b.test "
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, c.CORSOrigins())

	c.ElasticsearchAddrs = "http://es1:9200,http://es2:9200"
	assert.Len(t, c.ESAddrs(), 2)
}

func TestConfig_ResetPasswordURL(t *testing.T) {
	c := &Config{ClientURL: "https://app.example.com/"}
	assert.Equal(t, "https://app.example.com/reset-password", c.ResetPasswordURL())
}
