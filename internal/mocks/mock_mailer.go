package mocks

import (
	"context"
	"sync"
	"time"
)

// SentMail records one call to MockMailer.
type SentMail struct {
	Kind      string // otp, reset, csv
	Name      string
	Email     string
	Secret    string // OTP code or raw reset token
	ExpiresAt time.Time
	Filename  string
	Content   []byte
	Count     int
	Period    string
}

// MockMailer implements application.Mailer, recording every message.
// Err, when set, is returned by every send after recording it.
type MockMailer struct {
	Err error

	mu   sync.Mutex
	Sent []SentMail
}

func NewMockMailer() *MockMailer { return &MockMailer{} }

func (m *MockMailer) record(s SentMail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, s)
	return m.Err
}

// Last returns the most recent message of kind.
func (m *MockMailer) Last(kind string) (SentMail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.Sent) - 1; i >= 0; i-- {
		if m.Sent[i].Kind == kind {
			return m.Sent[i], true
		}
	}
	return SentMail{}, false
}

func (m *MockMailer) SendOTP(_ context.Context, name, email, code string, expiresAt time.Time) error {
	return m.record(SentMail{Kind: "otp", Name: name, Email: email, Secret: code, ExpiresAt: expiresAt})
}

func (m *MockMailer) SendPasswordReset(_ context.Context, name, email, token string, expiresAt time.Time) error {
	return m.record(SentMail{Kind: "reset", Name: name, Email: email, Secret: token, ExpiresAt: expiresAt})
}

func (m *MockMailer) SendCSVReport(_ context.Context, name, email, filename string, content []byte, count int, period string) error {
	return m.record(SentMail{Kind: "csv", Name: name, Email: email, Filename: filename, Content: content, Count: count, Period: period})
}
