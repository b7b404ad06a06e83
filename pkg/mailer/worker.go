package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrPermanent marks a job that will never succeed and must not be requeued.
var ErrPermanent = errors.New("permanent email failure")

// Worker turns queued message bodies into sent email.
type Worker struct {
	Sender      Sender
	Log         *logrus.Logger
	SendTimeout time.Duration
}

// Handle processes a single queue message body. Errors wrapping ErrPermanent
// should be dropped (nack without requeue); other errors are retryable.
func (w *Worker) Handle(ctx context.Context, body []byte) error {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("%w: bad message: %v", ErrPermanent, err)
	}
	msg, err := Prepare(job)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPermanent, err)
	}

	timeout := w.SendTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := w.Sender.Send(c, msg); err != nil {
		return fmt.Errorf("send to %s: %w", msg.To, err)
	}
	if w.Log != nil {
		w.Log.WithFields(logrus.Fields{"to": msg.To, "template": job.Template}).Info("email sent")
	}
	return nil
}

// Outcome is how a consumed delivery is settled.
type Outcome int

const (
	Ack     Outcome = iota
	Requeue         // transient failure, first attempt
	Drop            // permanent failure or failed redelivery
)

// Settle maps the result of Handle to an Outcome. A transient failure is
// retried once; a redelivered message that fails again is dropped so a
// rejected recipient or bad credentials cannot loop on the queue.
func Settle(err error, redelivered bool) Outcome {
	switch {
	case err == nil:
		return Ack
	case errors.Is(err, ErrPermanent), redelivered:
		return Drop
	default:
		return Requeue
	}
}
