package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"burza/internal/events"
	"burza/internal/outbox"

	"github.com/rs/zerolog"
)

// Dispatcher turns reservation events into queued emails. Each transition
// produces exactly one message; delivery and its failures are the worker's
// business.
type Dispatcher struct {
	queue        *outbox.Queue
	contactEmail string
	logger       *zerolog.Logger
}

func NewDispatcher(queue *outbox.Queue, contactEmail string, logger *zerolog.Logger) *Dispatcher {
	return &Dispatcher{queue: queue, contactEmail: contactEmail, logger: logger}
}

// Register subscribes the dispatcher to every notifying event type.
func (d *Dispatcher) Register(bus *events.Bus) {
	for _, eventType := range []string{
		events.EventReservationCreated,
		events.EventReservationApproved,
		events.EventReservationRejected,
		events.EventReservationCancelled,
	} {
		bus.Subscribe(eventType, d.handle)
	}
}

func (d *Dispatcher) handle(event *events.Event) error {
	var payload events.ReservationEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("decode reservation event: %w", err)
	}

	subject, htmlBody, textBody, err := Render(event.Type, TemplateParams{
		FirstName:    payload.FirstName,
		LastName:     payload.LastName,
		TableCount:   len(payload.TableIDs),
		ContactEmail: d.contactEmail,
	})
	if err != nil {
		return err
	}

	msg := outbox.Message{
		Kind:          event.Type,
		ReservationID: payload.ReservationID,
		Recipient:     payload.Email,
		Subject:       subject,
		HTMLBody:      htmlBody,
		TextBody:      textBody,
	}
	if err := d.queue.Enqueue(context.Background(), msg); err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}

	d.logger.Debug().
		Str("kind", event.Type).
		Str("reservation_id", payload.ReservationID).
		Msg("notification queued")
	return nil
}
