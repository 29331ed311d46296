package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"burza/internal/events"
	"burza/internal/outbox"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nopLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func contextWithShortTimeout(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	t.Cleanup(cancel)
	return ctx
}

func TestRenderSubjectsPerKind(t *testing.T) {
	cases := map[string]string{
		events.EventReservationCreated:   "Potvrzení rezervace stolů",
		events.EventReservationApproved:  "Schválení rezervace stolů",
		events.EventReservationRejected:  "Zamítnutí rezervace stolů",
		events.EventReservationCancelled: "Zrušení rezervace",
	}

	for kind, wantSubject := range cases {
		subject, htmlBody, textBody, err := Render(kind, TemplateParams{
			FirstName:    "Test",
			LastName:     "User",
			TableCount:   2,
			ContactEmail: "info@example.com",
		})
		require.NoError(t, err, kind)
		assert.Equal(t, wantSubject, subject)
		assert.Contains(t, htmlBody, "Test User")
		assert.Contains(t, htmlBody, ": 2")
		assert.Contains(t, htmlBody, "info@example.com")
		assert.Contains(t, textBody, "Test User")
		assert.Contains(t, textBody, ": 2")
	}
}

func TestRenderUnknownKind(t *testing.T) {
	_, _, _, err := Render("something_else", TemplateParams{})
	assert.Error(t, err)
}

func TestDispatcherQueuesOneMessagePerEvent(t *testing.T) {
	logger := nopLogger()
	queue := outbox.NewQueue(nil, logger)
	bus := events.NewBus()

	dispatcher := NewDispatcher(queue, "info@example.com", logger)
	dispatcher.Register(bus)

	payload := events.ReservationEventPayload{
		ReservationID: "1748779200000",
		FirstName:     "Test",
		LastName:      "User",
		Email:         "test@example.com",
		TableIDs:      []string{"1-1", "2-1"},
		Status:        "approved",
	}
	require.NoError(t, bus.PublishJSON(events.EventReservationApproved, payload))

	msg, ok := queue.Dequeue(context.Background())
	require.True(t, ok)
	assert.Equal(t, events.EventReservationApproved, msg.Kind)
	assert.Equal(t, "test@example.com", msg.Recipient)
	assert.Equal(t, "Schválení rezervace stolů", msg.Subject)
	assert.Contains(t, msg.TextBody, ": 2")

	_, ok = queue.Dequeue(contextWithShortTimeout(t))
	assert.False(t, ok, "exactly one message per event")
}

type fakeSender struct {
	sent []outbox.Message
	err  error
}

func (f *fakeSender) Send(msg outbox.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func TestWorkerDeliversOnce(t *testing.T) {
	logger := nopLogger()
	queue := outbox.NewQueue(nil, logger)
	sender := &fakeSender{}
	worker := NewWorker(queue, sender, logger)

	msg := outbox.Message{Kind: events.EventReservationCreated, Recipient: "a@b.cz"}
	worker.deliver(context.Background(), msg)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "a@b.cz", sender.sent[0].Recipient)
}

func TestWorkerFailureIsTerminal(t *testing.T) {
	logger := nopLogger()
	queue := outbox.NewQueue(nil, logger)
	sender := &fakeSender{err: errors.New("smtp down")}
	worker := NewWorker(queue, sender, logger)

	msg := outbox.Message{Kind: events.EventReservationCreated, Recipient: "a@b.cz"}
	worker.deliver(context.Background(), msg)

	assert.Empty(t, sender.sent)
	_, ok := queue.Dequeue(contextWithShortTimeout(t))
	assert.False(t, ok, "failed message is not requeued")
}
