package handlers

import (
	"context"
	"mime/multipart"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/portfolio-backend/internal/apperr"
	"github.com/AnshRaj112/portfolio-backend/internal/models"
	"github.com/AnshRaj112/portfolio-backend/internal/services"
)

// memStore is an in-memory services.SectionStore.
type memStore[T any] struct {
	mu   sync.Mutex
	docs []T
	base func(*T) *models.Base
	err  error
}

func newMemStore[T any](base func(*T) *models.Base) *memStore[T] {
	return &memStore[T]{base: base}
}

func (m *memStore[T]) List(ctx context.Context) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return append([]T{}, m.docs...), nil
}

func (m *memStore[T]) First(ctx context.Context) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if len(m.docs) == 0 {
		return nil, nil
	}
	d := m.docs[0]
	return &d, nil
}

func (m *memStore[T]) Find(ctx context.Context, id primitive.ObjectID) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.docs {
		if m.base(&m.docs[i]).ID == id {
			d := m.docs[i]
			return &d, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (m *memStore[T]) Insert(ctx context.Context, doc *T) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	b := m.base(doc)
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = b.CreatedAt
	m.docs = append(m.docs, *doc)
	out := *doc
	return &out, nil
}

func (m *memStore[T]) Replace(ctx context.Context, id primitive.ObjectID, doc *T, fields ...string) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.docs {
		existing := m.base(&m.docs[i])
		if existing.ID != id {
			continue
		}
		b := m.base(doc)
		b.ID = id
		b.CreatedAt = existing.CreatedAt
		b.UpdatedAt = time.Now().UTC()
		m.docs[i] = *doc
		out := *doc
		return &out, nil
	}
	return nil, apperr.ErrNotFound
}

func (m *memStore[T]) Upsert(ctx context.Context, doc *T, fields ...string) (*T, error) {
	m.mu.Lock()
	if len(m.docs) == 0 {
		m.mu.Unlock()
		return m.Insert(ctx, doc)
	}
	id := m.base(&m.docs[0]).ID
	m.mu.Unlock()
	return m.Replace(ctx, id, doc, fields...)
}

func (m *memStore[T]) Delete(ctx context.Context, id primitive.ObjectID) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.docs {
		if m.base(&m.docs[i]).ID == id {
			d := m.docs[i]
			m.docs = append(m.docs[:i], m.docs[i+1:]...)
			return &d, nil
		}
	}
	return nil, apperr.ErrNotFound
}

// memStats copies the embedded fields list so handlers never share it
// with the store.
type memStats struct {
	*memStore[models.SocialStats]
}

func newMemStats() memStats {
	return memStats{newMemStore(func(d *models.SocialStats) *models.Base { return &d.Base })}
}

func (m memStats) First(ctx context.Context) (*models.SocialStats, error) {
	doc, err := m.memStore.First(ctx)
	if doc != nil {
		doc.Fields = append([]models.StatField(nil), doc.Fields...)
	}
	return doc, err
}

type memUsers struct {
	mu    sync.Mutex
	users []models.User
}

func (m *memUsers) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == login || u.Email == login {
			out := u
			return &out, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (m *memUsers) FindConflict(ctx context.Context, username, email, mobile string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username || u.Email == email || (mobile != "" && u.Mobile == mobile) {
			out := u
			return &out, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (m *memUsers) LoginTaken(ctx context.Context, value string, except primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID != except && (u.Username == value || u.Email == value) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) Insert(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = append(m.users, *user)
	return nil
}

func (m *memUsers) Update(ctx context.Context, id primitive.ObjectID, upd services.UserUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.users {
		u := &m.users[i]
		if u.ID != id {
			continue
		}
		if upd.Username != nil {
			u.Username = *upd.Username
		}
		if upd.Email != nil {
			u.Email = *upd.Email
		}
		if upd.Password != nil {
			u.Password = *upd.Password
		}
		if upd.ResetToken != nil {
			u.ResetPasswordToken = *upd.ResetToken
		}
		if upd.ResetExpires != nil {
			t := *upd.ResetExpires
			u.ResetPasswordExpires = &t
		}
		if upd.ClearReset {
			u.ResetPasswordToken = ""
			u.ResetPasswordExpires = nil
		}
		return nil
	}
	return apperr.NotFound("User")
}

func (m *memUsers) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

type memContacts struct {
	mu   sync.Mutex
	msgs []models.ContactMessage
	err  error
}

func (m *memContacts) Insert(ctx context.Context, msg *models.ContactMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.msgs = append(m.msgs, *msg)
	return nil
}

func (m *memContacts) List(ctx context.Context, status models.ContactStatus, skip, limit int64) ([]models.ContactMessage, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, 0, m.err
	}
	var matched []models.ContactMessage
	for _, msg := range m.msgs {
		if status == "" || msg.Status == status {
			matched = append(matched, msg)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	total := int64(len(matched))
	if skip >= total {
		return nil, total, nil
	}
	end := skip + limit
	if end > total {
		end = total
	}
	return matched[skip:end], total, nil
}

func (m *memContacts) Find(ctx context.Context, id primitive.ObjectID) (*models.ContactMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.msgs {
		if msg.ID == id {
			return &msg, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (m *memContacts) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.ContactStatus, now time.Time) (*models.ContactMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.msgs {
		if m.msgs[i].ID == id {
			m.msgs[i].Status = status
			m.msgs[i].UpdatedAt = now
			out := m.msgs[i]
			return &out, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (m *memContacts) Delete(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.msgs {
		if m.msgs[i].ID == id {
			m.msgs = append(m.msgs[:i], m.msgs[i+1:]...)
			return nil
		}
	}
	return apperr.ErrNotFound
}

func (m *memContacts) CountByStatus(ctx context.Context) (map[models.ContactStatus]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[models.ContactStatus]int64{}
	for _, msg := range m.msgs {
		out[msg.Status]++
	}
	return out, nil
}

func (m *memContacts) CountSince(ctx context.Context, since time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, msg := range m.msgs {
		if !msg.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

type failingMailer struct{}

func (failingMailer) Send(ctx context.Context, email services.Email) error {
	return apperr.External("smtp", context.DeadlineExceeded)
}

type stubUploader struct {
	folder string
	err    error
}

func (s *stubUploader) UploadFileFromHeader(ctx context.Context, fh *multipart.FileHeader, folder string) (*services.UploadedAsset, error) {
	s.folder = folder
	if s.err != nil {
		return nil, s.err
	}
	return &services.UploadedAsset{URL: "https://res.cloudinary.com/demo/" + fh.Filename, PublicID: folder + "/x", Bytes: int(fh.Size)}, nil
}
