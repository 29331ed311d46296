package events

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

const (
	EventReservationCreated   = "reservation_created"
	EventReservationApproved  = "reservation_approved"
	EventReservationRejected  = "reservation_rejected"
	EventReservationCancelled = "reservation_cancelled"
)

// ReservationEventPayload is the reservation snapshot handed to consumers,
// carrying everything the notification templates need.
type ReservationEventPayload struct {
	ReservationID string   `json:"reservation_id"`
	FirstName     string   `json:"first_name"`
	LastName      string   `json:"last_name"`
	Email         string   `json:"email"`
	TableIDs      []string `json:"table_ids"`
	Status        string   `json:"status"`
}

// Event is a lightweight in-process domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// Handler reacts to one event. A handler error is reported to the publisher
// but does not stop the remaining handlers.
type Handler func(event *Event) error

// Bus provides synchronous in-process pub/sub between the reservation state
// machine and its side-effect consumers.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]Handler
}

func NewBus() *Bus {
	return &Bus{subscribers: make(map[string][]Handler)}
}

// Subscribe registers a handler for a given event type.
func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// PublishJSON encodes the payload and delivers it to every subscriber of the
// event type. The first handler error is returned after all handlers ran.
func (b *Bus) PublishJSON(eventType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode event payload: %w", err)
	}

	event := &Event{
		Type:      eventType,
		Payload:   data,
		CreatedAt: time.Now(),
	}

	b.mu.RLock()
	handlers := b.subscribers[eventType]
	b.mu.RUnlock()

	var firstErr error
	for _, handler := range handlers {
		if err := handler(event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
