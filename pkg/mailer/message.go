package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	mailtpl "github.com/oksasatya/expense-tracker/pkg/mailer/templates"
)

// Message is a fully rendered email ready for a Sender.
type Message struct {
	To          string
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

// Sender delivers rendered messages. Mailgun implements it.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

var ErrNoRecipient = errors.New("email job has no recipient")

// Prepare renders the job's template (when set) into a Message.
func Prepare(job EmailJob) (Message, error) {
	to := strings.TrimSpace(job.To)
	if to == "" {
		if v, ok := job.Data["RecipientEmail"].(string); ok {
			to = strings.TrimSpace(v)
		}
	}
	if to == "" {
		return Message{}, ErrNoRecipient
	}

	msg := Message{
		To:          to,
		Subject:     job.Subject,
		Text:        job.Text,
		HTML:        job.HTML,
		Attachments: job.Attachments,
	}
	if job.Template != "" {
		if !mailtpl.Exists(job.Template) {
			return Message{}, fmt.Errorf("unknown template %q", job.Template)
		}
		s, t, h, err := mailtpl.Render(job.Template, job.Data)
		if err != nil {
			return Message{}, fmt.Errorf("render %s: %w", job.Template, err)
		}
		msg.Subject, msg.Text, msg.HTML = s, t, h
	}
	if msg.Subject == "" {
		return Message{}, errors.New("email job has no subject")
	}
	return msg, nil
}
