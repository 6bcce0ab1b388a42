package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/AnshRaj112/portfolio-backend/internal/apperr"
	"github.com/AnshRaj112/portfolio-backend/internal/models"
)

// FieldSpec describes a new stat field. Zero values take the defaults:
// value 0, category "experience", type "static", enabled true.
type FieldSpec struct {
	Name      string
	Value     any
	Category  string
	Type      string
	Unit      string
	Enabled   *bool
	SourceURL string
}

// FieldPatch replaces only the attributes that are set.
type FieldPatch struct {
	Name      *string
	Value     any
	ValueSet  bool
	Category  *string
	Type      *string
	Unit      *string
	Enabled   *bool
	SourceURL *string
}

// FieldOrder assigns a display position to one field.
type FieldOrder struct {
	FieldID string `json:"fieldId"`
	Order   int    `json:"order"`
}

// SyncResult reports the outcome of refreshing one dynamic field.
type SyncResult struct {
	FieldID  string `json:"fieldId"`
	Name     string `json:"name"`
	Updated  bool   `json:"updated"`
	Value    any    `json:"value"`
	Error    string `json:"error,omitempty"`
	Platform string `json:"platform,omitempty"`
}

// SocialStatsService edits the embedded fields list of the SocialStats
// singleton. Every operation loads the document, mutates it and writes it
// back; concurrent edits are last-write-wins.
type SocialStatsService struct {
	store   SectionStore[models.SocialStats]
	fetcher SocialFetcher
	changes Invalidator
	logger  *zap.Logger
	now     func() time.Time
}

func NewSocialStatsService(store SectionStore[models.SocialStats], fetcher SocialFetcher, changes Invalidator, logger *zap.Logger) *SocialStatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SocialStatsService{
		store:   store,
		fetcher: fetcher,
		changes: changes,
		logger:  logger,
		now:     time.Now,
	}
}

// Get returns the SocialStats document or nil.
func (s *SocialStatsService) Get(ctx context.Context) (*models.SocialStats, error) {
	return s.store.First(ctx)
}

// AddField appends a field, creating the parent document on first use.
func (s *SocialStatsService) AddField(ctx context.Context, spec FieldSpec) (*models.SocialStats, error) {
	field, err := s.newField(spec)
	if err != nil {
		return nil, err
	}

	doc, err := s.store.First(ctx)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		doc = &models.SocialStats{}
	}

	field.ID = uniqueFieldID(doc.Fields, field.LastUpdated)
	field.Order = len(doc.Fields)
	doc.Fields = append(doc.Fields, field)

	return s.save(ctx, doc)
}

// UpdateField patches the field addressed by fieldID ("id" or legacy "_id").
func (s *SocialStatsService) UpdateField(ctx context.Context, fieldID string, patch FieldPatch) (*models.SocialStats, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	doc, idx, err := s.locate(ctx, fieldID)
	if err != nil {
		return nil, err
	}

	f := &doc.Fields[idx]
	if patch.Name != nil {
		f.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.ValueSet {
		f.Value = normalizeValue(patch.Value)
	}
	if patch.Category != nil {
		f.Category = *patch.Category
	}
	if patch.Type != nil {
		f.Type = *patch.Type
	}
	if patch.Unit != nil {
		f.Unit = *patch.Unit
	}
	if patch.Enabled != nil {
		f.Enabled = *patch.Enabled
	}
	if patch.SourceURL != nil {
		f.SourceURL = strings.TrimSpace(*patch.SourceURL)
	}
	f.LastUpdated = s.now().UTC()

	return s.save(ctx, doc)
}

// DeleteField removes the field addressed by fieldID. A missing field is
// reported as not found rather than ignored.
func (s *SocialStatsService) DeleteField(ctx context.Context, fieldID string) (*models.SocialStats, error) {
	doc, idx, err := s.locate(ctx, fieldID)
	if err != nil {
		return nil, err
	}

	doc.Fields = append(doc.Fields[:idx], doc.Fields[idx+1:]...)
	return s.save(ctx, doc)
}

// ReorderFields assigns the given orders (unknown ids are ignored) and
// re-sorts the list by order. Ties keep their current relative position,
// so applying the same orders twice is a no-op.
func (s *SocialStatsService) ReorderFields(ctx context.Context, orders []FieldOrder) (*models.SocialStats, error) {
	doc, err := s.store.First(ctx)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperr.NotFound("Social stats")
	}

	applyOrders(doc.Fields, orders)
	return s.save(ctx, doc)
}

// ReplaceFields overwrites the whole fields list. Fields without an id get
// one; unset type and category take their defaults. Ids and legacy _ids must
// be unique across the list, since either one addresses a field.
func (s *SocialStatsService) ReplaceFields(ctx context.Context, id primitive.ObjectID, fields []models.StatField) (*models.SocialStats, error) {
	now := s.now().UTC()
	normalized := make([]models.StatField, 0, len(fields))
	taken := make(map[string]bool, 2*len(fields))
	for i, f := range fields {
		f.Name = strings.TrimSpace(f.Name)
		if f.Name == "" {
			return nil, apperr.Invalid(fmt.Sprintf("fields[%d].name", i), "name is required")
		}
		if f.Type == "" {
			f.Type = models.StatTypeStatic
		}
		if !validStatType(f.Type) {
			return nil, apperr.Invalid(fmt.Sprintf("fields[%d].type", i), "type must be static or dynamic")
		}
		if !validStatValue(f.Value) {
			return nil, apperr.Invalid(fmt.Sprintf("fields[%d].value", i), "value must be a number or a string")
		}
		if f.Category == "" {
			f.Category = models.DefaultStatCategory
		}
		f.ID = strings.TrimSpace(f.ID)
		if f.ID != "" {
			if taken[f.ID] {
				return nil, apperr.Invalid(fmt.Sprintf("fields[%d].id", i), fmt.Sprintf("duplicate field id %q", f.ID))
			}
			taken[f.ID] = true
		}
		if !f.LegacyID.IsZero() {
			hex := f.LegacyID.Hex()
			if taken[hex] {
				return nil, apperr.Invalid(fmt.Sprintf("fields[%d]._id", i), fmt.Sprintf("duplicate field _id %q", hex))
			}
			taken[hex] = true
		}
		if f.LastUpdated.IsZero() {
			f.LastUpdated = now
		}
		f.Value = normalizeValue(f.Value)
		normalized = append(normalized, f)
	}
	// Generated identifiers avoid every explicit one.
	for i := range normalized {
		f := &normalized[i]
		if f.ID == "" {
			f.ID = uniqueFieldID(normalized, now)
		}
		if f.LegacyID.IsZero() {
			f.LegacyID = primitive.NewObjectID()
		}
	}

	doc := &models.SocialStats{Fields: normalized}
	doc.ID = id
	if !id.IsZero() {
		existing, err := s.store.First(ctx)
		if err != nil {
			return nil, err
		}
		if existing == nil || existing.ID != id {
			return nil, apperr.NotFound("Social stats")
		}
		doc.CreatedAt = existing.CreatedAt
	}
	return s.save(ctx, doc)
}

// syncConcurrency bounds the outbound fetches one Sync runs at once.
const syncConcurrency = 4

// Sync refreshes enabled dynamic fields that carry a source URL. Fetches run
// concurrently; results keep field order. Fetch failures are reported per
// field and leave the stored value untouched.
func (s *SocialStatsService) Sync(ctx context.Context) ([]SyncResult, *models.SocialStats, error) {
	doc, err := s.store.First(ctx)
	if err != nil {
		return nil, nil, err
	}
	if doc == nil {
		return nil, nil, apperr.NotFound("Social stats")
	}

	var targets []int
	for i, f := range doc.Fields {
		if f.Enabled && f.Type == models.StatTypeDynamic && f.SourceURL != "" {
			targets = append(targets, i)
		}
	}

	results := make([]SyncResult, len(targets))
	var g errgroup.Group
	g.SetLimit(syncConcurrency)
	for slot, i := range targets {
		f := doc.Fields[i]
		results[slot] = SyncResult{FieldID: f.ID, Name: f.Name, Value: f.Value, Platform: DetectPlatform(f.SourceURL)}
		if s.fetcher == nil {
			results[slot].Error = "social fetch is not configured"
			continue
		}
		g.Go(func() error {
			count, err := s.fetcher.Fetch(ctx, f.SourceURL)
			if err != nil {
				s.logger.Warn("social stat fetch failed",
					zap.String("field", f.ID), zap.String("url", f.SourceURL), zap.Error(err))
				results[slot].Error = err.Error()
				return nil
			}
			results[slot].Value = count
			results[slot].Updated = true
			return nil
		})
	}
	_ = g.Wait()

	changed := false
	now := s.now().UTC()
	for slot, i := range targets {
		if !results[slot].Updated {
			continue
		}
		doc.Fields[i].Value = results[slot].Value
		doc.Fields[i].LastUpdated = now
		changed = true
	}

	if !changed {
		return results, doc, nil
	}
	saved, err := s.save(ctx, doc)
	if err != nil {
		return nil, nil, err
	}
	return results, saved, nil
}

func (s *SocialStatsService) locate(ctx context.Context, fieldID string) (*models.SocialStats, int, error) {
	fieldID = strings.TrimSpace(fieldID)
	if fieldID == "" {
		return nil, -1, apperr.Invalid("fieldId", "fieldId is required")
	}

	doc, err := s.store.First(ctx)
	if err != nil {
		return nil, -1, err
	}
	if doc == nil {
		return nil, -1, apperr.NotFound("Social stats")
	}

	idx := indexOfField(doc.Fields, fieldID)
	if idx == -1 {
		return nil, -1, apperr.NotFound("Field")
	}
	return doc, idx, nil
}

func (s *SocialStatsService) save(ctx context.Context, doc *models.SocialStats) (*models.SocialStats, error) {
	if doc.Fields == nil {
		doc.Fields = []models.StatField{}
	}

	var (
		saved *models.SocialStats
		err   error
	)
	if doc.ID.IsZero() {
		saved, err = s.store.Upsert(ctx, doc)
	} else {
		saved, err = s.store.Replace(ctx, doc.ID, doc)
	}
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("Social stats")
		}
		return nil, err
	}

	if s.changes != nil {
		s.changes.Invalidate(ctx)
	}
	return saved, nil
}

func (s *SocialStatsService) newField(spec FieldSpec) (models.StatField, error) {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return models.StatField{}, apperr.Invalid("name", "name is required")
	}

	f := models.StatField{
		LegacyID:    primitive.NewObjectID(),
		Name:        name,
		Value:       spec.Value,
		Category:    spec.Category,
		Type:        spec.Type,
		Unit:        spec.Unit,
		Enabled:     true,
		SourceURL:   strings.TrimSpace(spec.SourceURL),
		LastUpdated: s.now().UTC(),
	}
	if f.Value == nil {
		f.Value = 0
	}
	if !validStatValue(f.Value) {
		return models.StatField{}, apperr.Invalid("value", "value must be a number or a string")
	}
	f.Value = normalizeValue(f.Value)
	if f.Category == "" {
		f.Category = models.DefaultStatCategory
	}
	if f.Type == "" {
		f.Type = models.StatTypeStatic
	}
	if !validStatType(f.Type) {
		return models.StatField{}, apperr.Invalid("type", "type must be static or dynamic")
	}
	if spec.Enabled != nil {
		f.Enabled = *spec.Enabled
	}
	return f, nil
}

func validatePatch(p FieldPatch) error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return apperr.Invalid("name", "name cannot be empty")
	}
	if p.Type != nil && !validStatType(*p.Type) {
		return apperr.Invalid("type", "type must be static or dynamic")
	}
	if p.ValueSet && !validStatValue(p.Value) {
		return apperr.Invalid("value", "value must be a number or a string")
	}
	return nil
}

func indexOfField(fields []models.StatField, fieldID string) int {
	for i, f := range fields {
		if f.Matches(fieldID) {
			return i
		}
	}
	return -1
}

func applyOrders(fields []models.StatField, orders []FieldOrder) {
	for _, o := range orders {
		if idx := indexOfField(fields, o.FieldID); idx != -1 {
			fields[idx].Order = o.Order
		}
	}
	sort.SliceStable(fields, func(i, j int) bool {
		return fields[i].Order < fields[j].Order
	})
}

// uniqueFieldID returns "field_<unix ms>_<random>" not already used in fields.
func uniqueFieldID(fields []models.StatField, now time.Time) string {
	for {
		suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:9]
		id := fmt.Sprintf("field_%d_%s", now.UnixMilli(), suffix)
		if indexOfField(fields, id) == -1 {
			return id
		}
	}
}

func validStatType(t string) bool {
	return t == models.StatTypeStatic || t == models.StatTypeDynamic
}

func validStatValue(v any) bool {
	switch v.(type) {
	case nil, string, float64, float32, int, int32, int64:
		return true
	default:
		return false
	}
}

// normalizeValue stores whole numbers as int64 and a missing value as 0.
func normalizeValue(v any) any {
	switch n := v.(type) {
	case nil:
		return int64(0)
	case float64:
		if n == float64(int64(n)) {
			return int64(n)
		}
		return n
	case float32:
		return normalizeValue(float64(n))
	case int:
		return int64(n)
	case int32:
		return int64(n)
	default:
		return v
	}
}
