package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/AnshRaj112/portfolio-backend/internal/models"
	"github.com/AnshRaj112/portfolio-backend/internal/services"
)

type SocialStatsHandler struct {
	stats  *services.SocialStatsService
	logger *zap.Logger
}

func NewSocialStatsHandler(stats *services.SocialStatsService, logger *zap.Logger) *SocialStatsHandler {
	return &SocialStatsHandler{stats: stats, logger: logger}
}

type addFieldRequest struct {
	Name      string `json:"name"`
	Value     any    `json:"value"`
	Category  string `json:"category"`
	Type      string `json:"type"`
	Unit      string `json:"unit"`
	Enabled   *bool  `json:"enabled"`
	SourceURL string `json:"sourceUrl"`
}

// fieldPatchRequest keeps value raw so an absent value can be told apart
// from an explicit one.
type fieldPatchRequest struct {
	FieldID   string          `json:"fieldId"`
	Name      *string         `json:"name"`
	Value     json.RawMessage `json:"value"`
	Category  *string         `json:"category"`
	Type      *string         `json:"type"`
	Unit      *string         `json:"unit"`
	Enabled   *bool           `json:"enabled"`
	SourceURL *string         `json:"sourceUrl"`
}

func (p fieldPatchRequest) toPatch() (services.FieldPatch, error) {
	patch := services.FieldPatch{
		Name:      p.Name,
		Category:  p.Category,
		Type:      p.Type,
		Unit:      p.Unit,
		Enabled:   p.Enabled,
		SourceURL: p.SourceURL,
	}
	if len(p.Value) > 0 {
		if err := json.Unmarshal(p.Value, &patch.Value); err != nil {
			return patch, errInvalidBody
		}
		patch.ValueSet = true
	}
	return patch, nil
}

type fieldRefRequest struct {
	FieldID string `json:"fieldId"`
}

type reorderRequest struct {
	FieldOrders []services.FieldOrder `json:"fieldOrders"`
}

type replaceFieldsRequest struct {
	ID     primitive.ObjectID `json:"_id"`
	Fields []models.StatField `json:"fields"`
}

// Get returns the social stats document, or null when none exists yet.
func (h *SocialStatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.stats.Get(r.Context())
	if err != nil {
		writeError(w, h.logger, err, "Failed to load social stats")
		return
	}
	writeSuccess(w, http.StatusOK, "", doc)
}

// AddField serves both add-social-stats-field and the older add-social-stats.
func (h *SocialStatsHandler) AddField(message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addFieldRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, h.logger, err, "")
			return
		}
		doc, err := h.stats.AddField(r.Context(), services.FieldSpec{
			Name:      req.Name,
			Value:     req.Value,
			Category:  req.Category,
			Type:      req.Type,
			Unit:      req.Unit,
			Enabled:   req.Enabled,
			SourceURL: req.SourceURL,
		})
		if err != nil {
			writeError(w, h.logger, err, "Failed to add social stats field")
			return
		}
		writeSuccess(w, http.StatusOK, message, doc)
	}
}

// UpdateFieldByParam handles PUT update-social-stats/{fieldId}.
func (h *SocialStatsHandler) UpdateFieldByParam(w http.ResponseWriter, r *http.Request) {
	var req fieldPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err, "")
		return
	}
	h.updateField(w, r, chi.URLParam(r, "fieldId"), req, "Professional stat updated successfully")
}

// UpdateFieldByBody handles POST update-social-stats-field with fieldId in the body.
func (h *SocialStatsHandler) UpdateFieldByBody(w http.ResponseWriter, r *http.Request) {
	var req fieldPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err, "")
		return
	}
	h.updateField(w, r, req.FieldID, req, "Social stats field updated successfully")
}

func (h *SocialStatsHandler) updateField(w http.ResponseWriter, r *http.Request, fieldID string, req fieldPatchRequest, message string) {
	patch, err := req.toPatch()
	if err != nil {
		writeError(w, h.logger, err, "")
		return
	}
	doc, err := h.stats.UpdateField(r.Context(), fieldID, patch)
	if err != nil {
		writeError(w, h.logger, err, "Failed to update social stats field")
		return
	}
	writeSuccess(w, http.StatusOK, message, doc)
}

// DeleteFieldByParam handles DELETE delete-social-stats/{fieldId}.
func (h *SocialStatsHandler) DeleteFieldByParam(w http.ResponseWriter, r *http.Request) {
	h.deleteField(w, r, chi.URLParam(r, "fieldId"))
}

// DeleteFieldByBody handles POST delete-social-stats-field.
func (h *SocialStatsHandler) DeleteFieldByBody(w http.ResponseWriter, r *http.Request) {
	var req fieldRefRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err, "")
		return
	}
	h.deleteField(w, r, req.FieldID)
}

func (h *SocialStatsHandler) deleteField(w http.ResponseWriter, r *http.Request, fieldID string) {
	doc, err := h.stats.DeleteField(r.Context(), fieldID)
	if err != nil {
		writeError(w, h.logger, err, "Failed to delete social stats field")
		return
	}
	writeSuccess(w, http.StatusOK, "Social stats field deleted successfully", doc)
}

func (h *SocialStatsHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err, "")
		return
	}
	doc, err := h.stats.ReorderFields(r.Context(), req.FieldOrders)
	if err != nil {
		writeError(w, h.logger, err, "Failed to reorder social stats fields")
		return
	}
	writeSuccess(w, http.StatusOK, "Social stats fields reordered successfully", doc)
}

// ReplaceAll handles POST update-social-stats with a complete fields list.
func (h *SocialStatsHandler) ReplaceAll(w http.ResponseWriter, r *http.Request) {
	var req replaceFieldsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err, "")
		return
	}
	doc, err := h.stats.ReplaceFields(r.Context(), req.ID, req.Fields)
	if err != nil {
		writeError(w, h.logger, err, "Failed to update social stats")
		return
	}
	writeSuccess(w, http.StatusOK, "Social Stats data updated successfully", doc)
}

type syncResponse struct {
	Results     []services.SyncResult `json:"results"`
	SocialStats *models.SocialStats   `json:"socialStats"`
}

// Sync refreshes dynamic fields. Per-field failures are reported in the
// results and never fail the request.
func (h *SocialStatsHandler) Sync(w http.ResponseWriter, r *http.Request) {
	results, doc, err := h.stats.Sync(r.Context())
	if err != nil {
		writeError(w, h.logger, err, "Failed to sync social stats")
		return
	}
	writeSuccess(w, http.StatusOK, "Social stats synced", syncResponse{Results: results, SocialStats: doc})
}
