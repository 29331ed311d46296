package notify

import (
	"context"

	"burza/internal/config"
	"burza/internal/metrics"
	"burza/internal/outbox"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// Sender delivers one rendered message.
type Sender interface {
	Send(msg outbox.Message) error
}

// SMTPSender delivers mail over an authenticated SMTP connection.
type SMTPSender struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{
		dialer:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:     cfg.From,
		fromName: cfg.FromName,
	}
}

func (s *SMTPSender) Send(msg outbox.Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.from, s.fromName))
	m.SetHeader("To", msg.Recipient)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.TextBody)
	m.AddAlternative("text/html", msg.HTMLBody)
	return s.dialer.DialAndSend(m)
}

// Worker drains the outbox. Each message gets exactly one delivery attempt;
// a failure is logged and dead-lettered, never retried.
type Worker struct {
	queue  *outbox.Queue
	sender Sender
	logger *zerolog.Logger
}

func NewWorker(queue *outbox.Queue, sender Sender, logger *zerolog.Logger) *Worker {
	return &Worker{queue: queue, sender: sender, logger: logger}
}

// Start runs the delivery loop until the context is cancelled.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info().Msg("notification worker started")
	defer w.logger.Info().Msg("notification worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msg, ok := w.queue.Dequeue(ctx)
		if !ok {
			continue
		}
		w.deliver(ctx, msg)
	}
}

func (w *Worker) deliver(ctx context.Context, msg outbox.Message) {
	if err := w.sender.Send(msg); err != nil {
		metrics.IncEmail(msg.Kind, "failed")
		w.logger.Error().Err(err).
			Str("kind", msg.Kind).
			Str("recipient", msg.Recipient).
			Str("reservation_id", msg.ReservationID).
			Msg("email delivery failed")
		w.queue.DeadLetter(ctx, msg, err)
		return
	}

	metrics.IncEmail(msg.Kind, "sent")
	w.logger.Info().
		Str("kind", msg.Kind).
		Str("recipient", msg.Recipient).
		Str("reservation_id", msg.ReservationID).
		Msg("email sent")
}
