package templates

import (
	"math"
	"time"
)

// Branding carries the sender identity shared by every email.
type Branding struct {
	CompanyName string
	AppName     string
	SupportURL  string
}

// Option pattern
type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) { d.Time = t.UTC().Format("02 January 2006, 15:04") }
}

func WithResetURL(url string) Option { return func(d *EmailData) { d.ResetURL = url } }

// WithExpiresAt sets the absolute expiry and the remaining minutes relative to now.
func WithExpiresAt(t, now time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.ExpiresAt = utc
		d.ExpiresAtText = utc.Format("02 January 2006, 15:04 UTC")
		d.ExpiresInMinutes = int(math.Ceil(t.Sub(now).Minutes()))
	}
}

func WithReport(filename string, count int, period string) Option {
	return func(d *EmailData) {
		d.Filename = filename
		d.RecordCount = count
		d.Period = period
	}
}

// NewBaseEmailData fills the common fields from branding, then applies options.
func NewBaseEmailData(b Branding, typ, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:           name,
		Email:          email,
		RecipientEmail: email,
		Type:           typ,
		CompanyName:    b.CompanyName,
		AppName:        b.AppName,
		SupportURL:     b.SupportURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewOTPData(b Branding, name, email, code string, opts ...Option) map[string]any {
	d := NewBaseEmailData(b, OTPVerification, name, email, opts...)
	d.Code = code
	return ToMap(d)
}

func NewResetPasswordData(b Branding, name, email, resetURL string, opts ...Option) map[string]any {
	opts = append([]Option{WithResetURL(resetURL)}, opts...)
	return ToMap(NewBaseEmailData(b, ResetPassword, name, email, opts...))
}

func NewCSVReportData(b Branding, name, email string, opts ...Option) map[string]any {
	return ToMap(NewBaseEmailData(b, CSVReport, name, email, opts...))
}
