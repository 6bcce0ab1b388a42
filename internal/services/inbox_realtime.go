package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AnshRaj112/portfolio-backend/internal/models"
)

const (
	EventContactNew     = "contact.new"
	EventContactStatus  = "contact.status"
	EventContactDeleted = "contact.deleted"

	// InboxChannel is the Redis pub/sub channel shared by all instances.
	InboxChannel = "contact:inbox"
)

// InboxEvent is the payload broadcast over Redis and WebSocket.
type InboxEvent struct {
	Type      string                 `json:"type"`
	MessageID string                 `json:"messageId,omitempty"`
	Status    string                 `json:"status,omitempty"`
	Message   *models.ContactMessage `json:"message,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// InboxConn is the minimal interface a WebSocket connection must satisfy.
type InboxConn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// InboxHub fans inbox events out to admin WebSocket connections on this
// instance. With a Redis client, events travel through InboxChannel so every
// instance sees them; without one they are delivered in-process.
type InboxHub struct {
	mu      sync.RWMutex
	conns   map[InboxConn]struct{}
	redis   *redis.Client
	logger  *zap.Logger
	started sync.Once
}

func NewInboxHub(client *redis.Client, logger *zap.Logger) *InboxHub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InboxHub{conns: make(map[InboxConn]struct{}), redis: client, logger: logger}
}

// Register adds a connection; the returned func removes it.
func (h *InboxHub) Register(conn InboxConn) func() {
	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.conns, conn)
		h.mu.Unlock()
	}
}

// Connections reports how many clients are attached to this instance.
func (h *InboxHub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// FanOut writes an event to every local connection. A connection that
// fails to accept the write is closed and dropped.
func (h *InboxHub) FanOut(event InboxEvent) {
	h.mu.RLock()
	conns := make([]InboxConn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		if err := c.WriteJSON(event); err != nil {
			h.logger.Debug("dropping inbox connection", zap.Error(err))
			h.mu.Lock()
			delete(h.conns, c)
			h.mu.Unlock()
			_ = c.Close()
		}
	}
}

// Publish implements InboxPublisher.
func (h *InboxHub) Publish(ctx context.Context, event InboxEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if h.redis == nil {
		h.FanOut(event)
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return h.redis.Publish(ctx, InboxChannel, data).Err()
}

// Start launches the shared Redis subscriber once. It is a no-op without Redis.
func (h *InboxHub) Start(ctx context.Context) {
	if h.redis == nil {
		return
	}
	h.started.Do(func() {
		go h.runSubscriber(ctx)
	})
}

func (h *InboxHub) runSubscriber(ctx context.Context) {
	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		func() {
			pubsub := h.redis.Subscribe(ctx, InboxChannel)
			defer pubsub.Close()

			h.logger.Info("inbox subscriber started", zap.String("channel", InboxChannel))

			for {
				msg, err := pubsub.ReceiveMessage(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					h.logger.Warn("inbox subscriber error", zap.Error(err), zap.Duration("backoff", backoff))
					if !sleepCtx(ctx, backoff) {
						return
					}
					backoff *= 2
					if backoff > 30*time.Second {
						backoff = 30 * time.Second
					}
					return
				}

				backoff = time.Second

				var event InboxEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					h.logger.Warn("failed to unmarshal inbox event", zap.Error(err))
					continue
				}
				h.FanOut(event)
			}
		}()
	}
}

// sleepCtx waits for d and reports false if ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
