package mailer

import (
	"context"
	"expvar"
	"net/url"
	"time"

	mailtpl "github.com/oksasatya/expense-tracker/pkg/mailer/templates"
)

var (
	emailsSent   = expvar.NewInt("emails_sent")
	emailsFailed = expvar.NewInt("emails_failed")
)

// Notifier builds the application's emails and hands them to a Transport.
type Notifier struct {
	Transport Transport
	// Critical carries mail whose failure the caller must see (password reset,
	// CSV report). Nil falls back to Transport.
	Critical Transport
	Branding  mailtpl.Branding
	// ResetURL is the front-end page receiving ?token=...
	ResetURL string
	now      func() time.Time
}

func NewNotifier(t Transport, b mailtpl.Branding, resetURL string) *Notifier {
	return &Notifier{Transport: t, Branding: b, ResetURL: resetURL, now: time.Now}
}

func (n *Notifier) clock() time.Time {
	if n.now != nil {
		return n.now()
	}
	return time.Now()
}

func (n *Notifier) critical() Transport {
	if n.Critical != nil {
		return n.Critical
	}
	return n.Transport
}

func (n *Notifier) deliver(ctx context.Context, t Transport, job EmailJob) error {
	if err := t.Deliver(ctx, job); err != nil {
		emailsFailed.Add(1)
		return err
	}
	emailsSent.Add(1)
	return nil
}

func (n *Notifier) SendOTP(ctx context.Context, name, email, code string, expiresAt time.Time) error {
	data := mailtpl.NewOTPData(n.Branding, name, email, code,
		mailtpl.WithExpiresAt(expiresAt, n.clock()), mailtpl.WithTime(n.clock()))
	return n.deliver(ctx, n.Transport, EmailJob{To: email, Template: mailtpl.OTPVerification, Data: data})
}

func (n *Notifier) SendPasswordReset(ctx context.Context, name, email, token string, expiresAt time.Time) error {
	link := n.ResetURL + "?token=" + url.QueryEscape(token)
	data := mailtpl.NewResetPasswordData(n.Branding, name, email, link,
		mailtpl.WithExpiresAt(expiresAt, n.clock()), mailtpl.WithTime(n.clock()))
	return n.deliver(ctx, n.critical(), EmailJob{To: email, Template: mailtpl.ResetPassword, Data: data})
}

func (n *Notifier) SendCSVReport(ctx context.Context, name, email, filename string, content []byte, count int, period string) error {
	data := mailtpl.NewCSVReportData(n.Branding, name, email,
		mailtpl.WithReport(filename, count, period), mailtpl.WithTime(n.clock()))
	return n.deliver(ctx, n.critical(), EmailJob{
		To:       email,
		Template: mailtpl.CSVReport,
		Data:     data,
		Attachments: []Attachment{{
			Filename:    filename,
			ContentType: "text/csv",
			Content:     content,
		}},
	})
}
