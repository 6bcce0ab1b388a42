package services

import (
	"context"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/AnshRaj112/portfolio-backend/internal/apperr"
	"github.com/AnshRaj112/portfolio-backend/internal/models"
	"github.com/AnshRaj112/portfolio-backend/pkg/utils"
)

const (
	maxContactNameLength    = 100
	maxContactSubjectLength = 200
	maxContactMessageLength = 2000

	DefaultContactPageSize = 10
	MaxContactPageSize     = 100
)

// ContactStore persists visitor messages. Implemented for MongoDB and PostgreSQL.
type ContactStore interface {
	Insert(ctx context.Context, msg *models.ContactMessage) error
	// List returns one page, newest first, plus the total matching count.
	// An empty status matches every message.
	List(ctx context.Context, status models.ContactStatus, skip, limit int64) ([]models.ContactMessage, int64, error)
	Find(ctx context.Context, id primitive.ObjectID) (*models.ContactMessage, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.ContactStatus, now time.Time) (*models.ContactMessage, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountByStatus(ctx context.Context) (map[models.ContactStatus]int64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
}

// InboxPublisher announces inbox changes to live admin clients.
type InboxPublisher interface {
	Publish(ctx context.Context, event InboxEvent) error
}

type ContactInput struct {
	Name      string
	Email     string
	Subject   string
	Message   string
	IPAddress string
	UserAgent string
}

type ContactQuery struct {
	Status string
	Page   int
	Limit  int
}

type Pagination struct {
	CurrentPage   int   `json:"currentPage"`
	TotalPages    int   `json:"totalPages"`
	TotalMessages int64 `json:"totalMessages"`
	HasNext       bool  `json:"hasNext"`
	HasPrev       bool  `json:"hasPrev"`
}

type ContactPage struct {
	Messages   []models.ContactMessage `json:"messages"`
	Pagination Pagination              `json:"pagination"`
}

// ContactDetail is one message with its visitor metadata readable.
type ContactDetail struct {
	models.ContactMessage
	Visitor VisitorInfo `json:"visitor"`
}

type VisitorInfo struct {
	IPAddress string `json:"ipAddress"`
	UserAgent string `json:"userAgent"`
}

type ContactStats struct {
	Total    int64            `json:"total"`
	Today    int64            `json:"today"`
	ByStatus map[string]int64 `json:"byStatus"`
}

// ContactService is the visitor inbox.
type ContactService struct {
	store  ContactStore
	cipher *utils.FieldCipher
	events InboxPublisher
	logger *zap.Logger
	now    func() time.Time
}

// NewContactService wires the inbox. cipher and events may be nil.
func NewContactService(store ContactStore, cipher *utils.FieldCipher, events InboxPublisher, logger *zap.Logger) *ContactService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactService{store: store, cipher: cipher, events: events, logger: logger, now: time.Now}
}

// Submit validates and stores a visitor message with status "new".
func (s *ContactService) Submit(ctx context.Context, in ContactInput) (*models.ContactMessage, error) {
	name := strings.TrimSpace(in.Name)
	email := utils.NormalizeEmail(in.Email)
	subject := strings.TrimSpace(in.Subject)
	message := strings.TrimSpace(in.Message)

	if name == "" || email == "" || subject == "" || message == "" {
		return nil, apperr.Invalid("", "All fields are required")
	}
	if !utils.IsValidEmail(email) {
		return nil, apperr.Invalid("email", "Please enter a valid email address")
	}
	if utf8.RuneCountInString(name) > maxContactNameLength {
		return nil, apperr.Invalid("name", "Name must be at most 100 characters")
	}
	if utf8.RuneCountInString(subject) > maxContactSubjectLength {
		return nil, apperr.Invalid("subject", "Subject must be at most 200 characters")
	}
	if utf8.RuneCountInString(message) > maxContactMessageLength {
		return nil, apperr.Invalid("message", "Message must be at most 2000 characters")
	}

	ip, err := s.cipher.Encrypt(in.IPAddress)
	if err != nil {
		return nil, err
	}
	ua, err := s.cipher.Encrypt(in.UserAgent)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	msg := &models.ContactMessage{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Email:     email,
		Subject:   subject,
		Message:   message,
		Status:    models.ContactStatusNew,
		IPAddress: ip,
		UserAgent: ua,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Insert(ctx, msg); err != nil {
		return nil, err
	}

	s.publish(ctx, InboxEvent{Type: EventContactNew, MessageID: msg.ID.Hex(), Message: msg})
	return msg, nil
}

// List returns one page of messages, newest first.
func (s *ContactService) List(ctx context.Context, q ContactQuery) (*ContactPage, error) {
	status := models.ContactStatus(strings.TrimSpace(q.Status))
	if status != "" && !status.Valid() {
		return nil, apperr.Invalid("status", "Invalid status value")
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = DefaultContactPageSize
	}
	if limit > MaxContactPageSize {
		limit = MaxContactPageSize
	}
	skip := int64(page-1) * int64(limit)

	msgs, total, err := s.store.List(ctx, status, skip, int64(limit))
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []models.ContactMessage{}
	}

	return &ContactPage{
		Messages: msgs,
		Pagination: Pagination{
			CurrentPage:   page,
			TotalPages:    int(math.Ceil(float64(total) / float64(limit))),
			TotalMessages: total,
			HasNext:       skip+int64(len(msgs)) < total,
			HasPrev:       page > 1,
		},
	}, nil
}

// Message returns one message for the operator with its visitor metadata
// decrypted. Metadata that cannot be decrypted (written under another key)
// is left blank rather than failing the read.
func (s *ContactService) Message(ctx context.Context, id string) (*ContactDetail, error) {
	oid, err := parseMessageID(id)
	if err != nil {
		return nil, err
	}
	msg, err := s.store.Find(ctx, oid)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("Message")
		}
		return nil, err
	}
	return &ContactDetail{
		ContactMessage: *msg,
		Visitor: VisitorInfo{
			IPAddress: s.reveal(msg.ID, "ipAddress", msg.IPAddress),
			UserAgent: s.reveal(msg.ID, "userAgent", msg.UserAgent),
		},
	}, nil
}

func (s *ContactService) reveal(id primitive.ObjectID, field, stored string) string {
	plain, err := s.cipher.Decrypt(stored)
	if err != nil {
		s.logger.Warn("visitor metadata not decryptable",
			zap.String("id", id.Hex()), zap.String("field", field), zap.Error(err))
		return ""
	}
	return plain
}

// SetStatus moves a message to any status; transitions are not constrained.
func (s *ContactService) SetStatus(ctx context.Context, id, status string) (*models.ContactMessage, error) {
	st := models.ContactStatus(strings.TrimSpace(status))
	if !st.Valid() {
		return nil, apperr.Invalid("status", "Invalid status value")
	}
	oid, err := parseMessageID(id)
	if err != nil {
		return nil, err
	}

	msg, err := s.store.UpdateStatus(ctx, oid, st, s.now().UTC())
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("Message")
		}
		return nil, err
	}

	s.publish(ctx, InboxEvent{Type: EventContactStatus, MessageID: msg.ID.Hex(), Status: string(st)})
	return msg, nil
}

func (s *ContactService) Delete(ctx context.Context, id string) error {
	oid, err := parseMessageID(id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, oid); err != nil {
		if isNotFound(err) {
			return apperr.NotFound("Message")
		}
		return err
	}

	s.publish(ctx, InboxEvent{Type: EventContactDeleted, MessageID: oid.Hex()})
	return nil
}

// Stats counts messages overall, since local midnight, and per status.
func (s *ContactService) Stats(ctx context.Context) (*ContactStats, error) {
	counts, err := s.store.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	today, err := s.store.CountSince(ctx, midnight)
	if err != nil {
		return nil, err
	}

	stats := &ContactStats{Today: today, ByStatus: make(map[string]int64, len(models.ContactStatuses))}
	for _, st := range models.ContactStatuses {
		stats.ByStatus[string(st)] = counts[st]
	}
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}

func (s *ContactService) publish(ctx context.Context, event InboxEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("inbox event publish failed", zap.String("type", event.Type), zap.Error(err))
	}
}

func parseMessageID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, apperr.NotFound("Message")
	}
	return oid, nil
}
