package services

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/portfolio-backend/internal/apperr"
	"github.com/AnshRaj112/portfolio-backend/internal/models"
)

// memSections is an in-memory SectionStore.
type memSections[T any] struct {
	mu    sync.Mutex
	docs  []T
	base  func(*T) *models.Base
	clone func(T) T
	err   error
	reads int
	// written holds the field names passed to the last Replace or Upsert.
	written []string
}

func newMemSections[T any](base func(*T) *models.Base) *memSections[T] {
	return &memSections[T]{base: base, clone: func(v T) T { return v }}
}

func newMemSocialStats() *memSections[models.SocialStats] {
	s := newMemSections(func(d *models.SocialStats) *models.Base { return &d.Base })
	s.clone = func(d models.SocialStats) models.SocialStats {
		d.Fields = append([]models.StatField(nil), d.Fields...)
		return d
	}
	return s
}

func (m *memSections[T]) List(ctx context.Context) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	if m.err != nil {
		return nil, m.err
	}
	out := make([]T, 0, len(m.docs))
	for _, d := range m.docs {
		out = append(out, m.clone(d))
	}
	return out, nil
}

func (m *memSections[T]) First(ctx context.Context) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.docs) == 0 {
		return nil, nil
	}
	d := m.clone(m.docs[0])
	return &d, nil
}

func (m *memSections[T]) Find(ctx context.Context, id primitive.ObjectID) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.docs {
		if m.base(&m.docs[i]).ID == id {
			d := m.clone(m.docs[i])
			return &d, nil
		}
	}
	return nil, apperr.NotFound("document")
}

func (m *memSections[T]) Insert(ctx context.Context, doc *T) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	b := m.base(doc)
	now := time.Now().UTC()
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	b.CreatedAt, b.UpdatedAt = now, now
	m.docs = append(m.docs, m.clone(*doc))
	out := m.clone(*doc)
	return &out, nil
}

func (m *memSections[T]) Replace(ctx context.Context, id primitive.ObjectID, doc *T, fields ...string) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.written = fields
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
		m.docs[i] = m.clone(*doc)
		out := m.clone(*doc)
		return &out, nil
	}
	return nil, apperr.NotFound("document")
}

func (m *memSections[T]) Upsert(ctx context.Context, doc *T, fields ...string) (*T, error) {
	m.mu.Lock()
	if len(m.docs) == 0 {
		m.written = fields
		m.mu.Unlock()
		return m.Insert(ctx, doc)
	}
	id := m.base(&m.docs[0]).ID
	m.mu.Unlock()
	return m.Replace(ctx, id, doc, fields...)
}

func (m *memSections[T]) Delete(ctx context.Context, id primitive.ObjectID) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.docs {
		if m.base(&m.docs[i]).ID == id {
			d := m.docs[i]
			m.docs = append(m.docs[:i], m.docs[i+1:]...)
			return &d, nil
		}
	}
	return nil, apperr.NotFound("document")
}

func (m *memSections[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

type countingInvalidator struct {
	mu    sync.Mutex
	calls int
}

func (c *countingInvalidator) Invalidate(ctx context.Context) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
}

func (c *countingInvalidator) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// memCache mimics CacheService by storing JSON under a generation counter.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
	gens map[string]int64
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}, gens: map[string]int64{}}
}

func (c *memCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memCache) Generation(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[key], nil
}

func (c *memCache) SetIfGeneration(ctx context.Context, key string, gen int64, value any, ttl time.Duration) (bool, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[key] != gen {
		return false, nil
	}
	c.data[key] = raw
	c.ttls[key] = ttl
	return true, nil
}

func (c *memCache) Invalidate(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[key]++
	delete(c.data, key)
	return nil
}

func (c *memCache) cached(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

// memContacts is an in-memory ContactStore.
type memContacts struct {
	mu   sync.Mutex
	msgs []models.ContactMessage
}

func (m *memContacts) Insert(ctx context.Context, msg *models.ContactMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, *msg)
	return nil
}

func (m *memContacts) List(ctx context.Context, status models.ContactStatus, skip, limit int64) ([]models.ContactMessage, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
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
	return nil, apperr.NotFound("Message")
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
	return nil, apperr.NotFound("Message")
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
	return apperr.NotFound("Message")
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

type recordingPublisher struct {
	mu     sync.Mutex
	events []InboxEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, event InboxEvent) error {
	p.mu.Lock()
	p.events = append(p.events, event)
	p.mu.Unlock()
	return nil
}

// memUsers is an in-memory UserStore.
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

func (m *memUsers) Update(ctx context.Context, id primitive.ObjectID, upd UserUpdate) error {
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
		u.UpdatedAt = upd.UpdatedAt
		return nil
	}
	return apperr.NotFound("User")
}

func (m *memUsers) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

func (m *memUsers) get(username string) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return u
		}
	}
	return models.User{}
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []Email
	err  error
}

func (f *fakeMailer) Send(ctx context.Context, email Email) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, email)
	return nil
}

type fakeSessions struct {
	enabled  bool
	issued   map[string]string
	revoked  []string
	tokenSeq int
}

func (f *fakeSessions) Enabled() bool { return f.enabled }

func (f *fakeSessions) Create(ctx context.Context, adminID string) (string, error) {
	if f.issued == nil {
		f.issued = map[string]string{}
	}
	f.tokenSeq++
	token := "token-" + adminID + "-" + string(rune('0'+f.tokenSeq))
	f.issued[token] = adminID
	return token, nil
}

func (f *fakeSessions) Invalidate(ctx context.Context, token string) error {
	f.revoked = append(f.revoked, token)
	delete(f.issued, token)
	return nil
}

type stubFetcher struct {
	counts map[string]int64
	err    error
}

func (s stubFetcher) Fetch(ctx context.Context, sourceURL string) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	n, ok := s.counts[sourceURL]
	if !ok {
		return 0, ErrUnsupportedPlatform
	}
	return n, nil
}
