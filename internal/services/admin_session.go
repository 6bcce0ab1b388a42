package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// AdminSessionDuration is 7 days
	AdminSessionDuration = 7 * 24 * time.Hour
	// AdminSessionKeyPrefix is the Redis key prefix for admin sessions
	AdminSessionKeyPrefix = "admin_session:"
	// AdminToSessionKeyPrefix is the Redis key prefix for admin->session mapping
	AdminToSessionKeyPrefix = "admin_to_session:"
)

var ErrSessionsUnavailable = errors.New("admin sessions require Redis")

// AdminSessions keeps one bearer token per admin in Redis.
type AdminSessions struct {
	client *redis.Client
}

func NewAdminSessions(client *redis.Client) *AdminSessions {
	return &AdminSessions{client: client}
}

// Enabled reports whether sessions can be issued.
func (s *AdminSessions) Enabled() bool {
	return s != nil && s.client != nil
}

// Create issues a new token for adminID, replacing any previous session so
// the 7-day timer restarts.
func (s *AdminSessions) Create(ctx context.Context, adminID string) (string, error) {
	if !s.Enabled() {
		return "", ErrSessionsUnavailable
	}

	_ = s.InvalidateAll(ctx, adminID)

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := base64.URLEncoding.EncodeToString(tokenBytes)

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, AdminSessionKeyPrefix+token, adminID, AdminSessionDuration)
	pipe.Set(ctx, AdminToSessionKeyPrefix+adminID, token, AdminSessionDuration)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	return token, nil
}

// Validate returns the admin id for a live token.
func (s *AdminSessions) Validate(ctx context.Context, token string) (string, bool, error) {
	if token == "" {
		return "", false, nil
	}
	if !s.Enabled() {
		return "", false, ErrSessionsUnavailable
	}

	adminID, err := s.client.Get(ctx, AdminSessionKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return adminID, true, nil
}

// Refresh extends a session by another AdminSessionDuration.
func (s *AdminSessions) Refresh(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("session token is empty")
	}
	adminID, ok, err := s.Validate(ctx, token)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("session not found")
	}

	pipe := s.client.TxPipeline()
	pipe.Expire(ctx, AdminSessionKeyPrefix+token, AdminSessionDuration)
	pipe.Expire(ctx, AdminToSessionKeyPrefix+adminID, AdminSessionDuration)
	_, err = pipe.Exec(ctx)
	return err
}

// Invalidate removes a single session.
func (s *AdminSessions) Invalidate(ctx context.Context, token string) error {
	if token == "" || !s.Enabled() {
		return nil
	}

	sessionKey := AdminSessionKeyPrefix + token
	adminID, err := s.client.Get(ctx, sessionKey).Result()
	if err == nil && adminID != "" {
		_ = s.client.Del(ctx, AdminToSessionKeyPrefix+adminID).Err()
	}
	return s.client.Del(ctx, sessionKey).Err()
}

// InvalidateAll removes every session belonging to adminID.
func (s *AdminSessions) InvalidateAll(ctx context.Context, adminID string) error {
	if !s.Enabled() {
		return nil
	}

	mappingKey := AdminToSessionKeyPrefix + adminID
	token, err := s.client.Get(ctx, mappingKey).Result()
	if err == nil && token != "" {
		_ = s.client.Del(ctx, AdminSessionKeyPrefix+token).Err()
	}
	return s.client.Del(ctx, mappingKey).Err()
}
