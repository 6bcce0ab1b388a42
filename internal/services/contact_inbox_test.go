package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/portfolio-backend/internal/apperr"
	"github.com/AnshRaj112/portfolio-backend/internal/models"
	"github.com/AnshRaj112/portfolio-backend/pkg/utils"
)

const testEncryptionKey = "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY="

func validContact() ContactInput {
	return ContactInput{
		Name:      "Jane",
		Email:     "Jane@Example.com",
		Subject:   "Hello",
		Message:   "Nice portfolio",
		IPAddress: "203.0.113.7",
		UserAgent: "curl/8.0",
	}
}

func TestContactSubmit(t *testing.T) {
	cipher, err := utils.NewFieldCipher(testEncryptionKey)
	require.NoError(t, err)
	store := &memContacts{}
	events := &recordingPublisher{}
	svc := NewContactService(store, cipher, events, nil)

	msg, err := svc.Submit(context.Background(), validContact())
	require.NoError(t, err)

	assert.Equal(t, models.ContactStatusNew, msg.Status)
	assert.Equal(t, "jane@example.com", msg.Email)
	assert.False(t, msg.ID.IsZero())
	assert.NotEqual(t, "203.0.113.7", msg.IPAddress)

	ip, err := cipher.Decrypt(msg.IPAddress)
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.7", ip)

	require.Len(t, events.events, 1)
	assert.Equal(t, EventContactNew, events.events[0].Type)
	assert.Equal(t, msg.ID.Hex(), events.events[0].MessageID)
}

func TestContactMessage_DecryptsVisitor(t *testing.T) {
	cipher, err := utils.NewFieldCipher(testEncryptionKey)
	require.NoError(t, err)
	store := &memContacts{}
	svc := NewContactService(store, cipher, nil, nil)
	ctx := context.Background()

	msg, err := svc.Submit(ctx, validContact())
	require.NoError(t, err)

	detail, err := svc.Message(ctx, msg.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, msg.ID, detail.ID)
	assert.Equal(t, "203.0.113.7", detail.Visitor.IPAddress)
	assert.Equal(t, "curl/8.0", detail.Visitor.UserAgent)

	// Metadata written under another key reads back blank.
	other, err := utils.NewFieldCipher("ZmVkY2JhOTg3NjU0MzIxMGZlZGNiYTk4NzY1NDMyMTA=")
	require.NoError(t, err)
	detail, err = NewContactService(store, other, nil, nil).Message(ctx, msg.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, detail.Visitor.IPAddress)
	assert.Equal(t, "Hello", detail.Subject)

	_, err = svc.Message(ctx, "not-an-id")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestContactSubmit_Validation(t *testing.T) {
	svc := NewContactService(&memContacts{}, nil, nil, nil)
	ctx := context.Background()

	in := validContact()
	in.Subject = "  "
	_, err := svc.Submit(ctx, in)
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, "All fields are required", err.Error())

	in = validContact()
	in.Email = "not-an-email"
	_, err = svc.Submit(ctx, in)
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, "Please enter a valid email address", err.Error())

	in = validContact()
	in.Message = strings.Repeat("x", 2001)
	_, err = svc.Submit(ctx, in)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestContactList_Pagination(t *testing.T) {
	store := &memContacts{}
	svc := NewContactService(store, nil, nil, nil)
	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		svc.now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		_, err := svc.Submit(context.Background(), validContact())
		require.NoError(t, err)
	}

	page, err := svc.List(context.Background(), ContactQuery{Page: 2})
	require.NoError(t, err)
	assert.Len(t, page.Messages, 10)
	assert.Equal(t, Pagination{CurrentPage: 2, TotalPages: 3, TotalMessages: 25, HasNext: true, HasPrev: true}, page.Pagination)

	last, err := svc.List(context.Background(), ContactQuery{Page: 3, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, last.Messages, 5)
	assert.False(t, last.Pagination.HasNext)

	newest, err := svc.List(context.Background(), ContactQuery{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, base.Add(24*time.Minute), newest.Messages[0].CreatedAt)

	_, err = svc.List(context.Background(), ContactQuery{Status: "spam"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	empty, err := svc.List(context.Background(), ContactQuery{Status: "archived"})
	require.NoError(t, err)
	assert.NotNil(t, empty.Messages)
	assert.Equal(t, 0, empty.Pagination.TotalPages)
}

func TestContactStatusAndDelete(t *testing.T) {
	ctx := context.Background()
	events := &recordingPublisher{}
	svc := NewContactService(&memContacts{}, nil, events, nil)

	msg, err := svc.Submit(ctx, validContact())
	require.NoError(t, err)

	updated, err := svc.SetStatus(ctx, msg.ID.Hex(), "replied")
	require.NoError(t, err)
	assert.Equal(t, models.ContactStatusReplied, updated.Status)

	_, err = svc.SetStatus(ctx, msg.ID.Hex(), "done")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.SetStatus(ctx, "not-hex", "read")
	require.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, "Message not found", err.Error())

	require.NoError(t, svc.Delete(ctx, msg.ID.Hex()))
	assert.ErrorIs(t, svc.Delete(ctx, msg.ID.Hex()), apperr.ErrNotFound)

	require.Len(t, events.events, 3)
	assert.Equal(t, EventContactStatus, events.events[1].Type)
	assert.Equal(t, "replied", events.events[1].Status)
	assert.Equal(t, EventContactDeleted, events.events[2].Type)
}

func TestContactStats(t *testing.T) {
	ctx := context.Background()
	store := &memContacts{}
	svc := NewContactService(store, nil, nil, nil)
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.Local)

	svc.now = func() time.Time { return now.Add(-48 * time.Hour) }
	old, err := svc.Submit(ctx, validContact())
	require.NoError(t, err)

	svc.now = func() time.Time { return now }
	_, err = svc.Submit(ctx, validContact())
	require.NoError(t, err)
	_, err = svc.Submit(ctx, validContact())
	require.NoError(t, err)
	_, err = svc.SetStatus(ctx, old.ID.Hex(), "archived")
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(2), stats.Today)
	assert.Equal(t, map[string]int64{"new": 2, "read": 0, "replied": 0, "archived": 1}, stats.ByStatus)
}
