package mailer

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Transport hands an EmailJob to whatever actually delivers it.
type Transport interface {
	Deliver(ctx context.Context, job EmailJob) error
}

// Publisher is satisfied by helpers.RabbitPublisher.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// QueueTransport publishes jobs for cmd/email_worker.
type QueueTransport struct {
	Publisher Publisher
}

func (t QueueTransport) Deliver(ctx context.Context, job EmailJob) error {
	if err := t.Publisher.PublishJSON(ctx, job); err != nil {
		return fmt.Errorf("publish email job: %w", err)
	}
	return nil
}

// DirectTransport renders and sends in-process.
type DirectTransport struct {
	Sender Sender
}

func (t DirectTransport) Deliver(ctx context.Context, job EmailJob) error {
	msg, err := Prepare(job)
	if err != nil {
		return err
	}
	return t.Sender.Send(ctx, msg)
}

// LogTransport writes jobs to the log instead of sending them. Used when
// MAIL_SEND_ENABLED is off so OTP codes stay reachable during development.
type LogTransport struct {
	Log *logrus.Logger
}

func (t LogTransport) Deliver(_ context.Context, job EmailJob) error {
	if t.Log == nil {
		return nil
	}
	fields := logrus.Fields{
		"to":          job.To,
		"template":    job.Template,
		"attachments": len(job.Attachments),
	}
	if code, ok := job.Data["Code"].(string); ok && code != "" {
		fields["otp"] = code
	}
	if url, ok := job.Data["ResetURL"].(string); ok && url != "" {
		fields["reset_url"] = url
	}
	t.Log.WithFields(fields).Info("email sending disabled; job logged")
	return nil
}
