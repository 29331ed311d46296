package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"burza/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	queueKey      = "notify:queue"
	deadLetterKey = "notify:deadletter"
)

// ErrQueueFull is returned when neither redis nor the in-memory buffer can
// accept the message.
var ErrQueueFull = errors.New("outbox queue is full")

// Message is one rendered email waiting to be sent.
type Message struct {
	Kind          string    `json:"kind"`
	ReservationID string    `json:"reservation_id"`
	Recipient     string    `json:"recipient"`
	Subject       string    `json:"subject"`
	HTMLBody      string    `json:"html_body"`
	TextBody      string    `json:"text_body"`
	CreatedAt     time.Time `json:"created_at"`
	LastError     string    `json:"last_error,omitempty"`
}

// Queue buffers outgoing notifications. Redis is preferred for durability;
// when it is absent or down, messages fall back to an in-process channel.
type Queue struct {
	redis  *redis.Client
	local  chan Message
	logger *zerolog.Logger
}

func NewQueue(redisClient *redis.Client, logger *zerolog.Logger) *Queue {
	return &Queue{
		redis:  redisClient,
		local:  make(chan Message, models.OutboxQueueSize),
		logger: logger,
	}
}

// Enqueue schedules a message for delivery.
func (q *Queue) Enqueue(ctx context.Context, msg Message) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	if q.redis != nil {
		if err := q.pushRedis(ctx, queueKey, msg); err != nil {
			q.logger.Warn().Err(err).
				Str("kind", msg.Kind).
				Msg("redis push failed, falling back to memory queue")
		} else {
			return nil
		}
	}

	select {
	case q.local <- msg:
		return nil
	default:
		return fmt.Errorf("%w: %s for %s", ErrQueueFull, msg.Kind, msg.Recipient)
	}
}

// Dequeue returns the next message, draining the local buffer before
// blocking briefly on redis. The second result is false when nothing was
// available.
func (q *Queue) Dequeue(ctx context.Context) (Message, bool) {
	select {
	case msg := <-q.local:
		return msg, true
	default:
	}

	if q.redis == nil {
		select {
		case msg := <-q.local:
			return msg, true
		case <-ctx.Done():
			return Message{}, false
		case <-time.After(time.Second):
			return Message{}, false
		}
	}

	res, err := q.redis.BRPop(ctx, time.Second, queueKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			q.logger.Error().Err(err).Msg("redis BRPOP error")
		}
		return Message{}, false
	}
	if len(res) != 2 {
		return Message{}, false
	}

	var msg Message
	if err := json.Unmarshal([]byte(res[1]), &msg); err != nil {
		q.logger.Error().Err(err).Msg("decode queued message")
		return Message{}, false
	}
	return msg, true
}

// DeadLetter parks a message that could not be delivered. Without redis the
// failure is only logged.
func (q *Queue) DeadLetter(ctx context.Context, msg Message, cause error) {
	if cause != nil {
		msg.LastError = cause.Error()
	}

	if q.redis == nil {
		q.logger.Error().
			Str("kind", msg.Kind).
			Str("recipient", msg.Recipient).
			Str("cause", msg.LastError).
			Msg("notification dropped, no dead-letter store")
		return
	}

	if err := q.pushRedis(ctx, deadLetterKey, msg); err != nil {
		q.logger.Error().Err(err).
			Str("kind", msg.Kind).
			Str("recipient", msg.Recipient).
			Msg("dead-letter push failed")
	}
}

// DeadLetters lists parked messages for inspection.
func (q *Queue) DeadLetters(ctx context.Context) ([]Message, error) {
	if q.redis == nil {
		return nil, nil
	}

	raw, err := q.redis.LRange(ctx, deadLetterKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read dead letters: %w", err)
	}

	messages := make([]Message, 0, len(raw))
	for _, item := range raw {
		var msg Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			q.logger.Error().Err(err).Msg("decode dead letter")
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func (q *Queue) pushRedis(ctx context.Context, key string, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	return q.redis.LPush(ctx, key, data).Err()
}
