package handlers

import (
	"encoding/json"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/AnshRaj112/portfolio-backend/internal/models"
	"github.com/AnshRaj112/portfolio-backend/internal/services"
)

// PortfolioHandler serves the whole-site read.
type PortfolioHandler struct {
	portfolio *services.PortfolioService
	logger    *zap.Logger
}

func NewPortfolioHandler(portfolio *services.PortfolioService, logger *zap.Logger) *PortfolioHandler {
	return &PortfolioHandler{portfolio: portfolio, logger: logger}
}

// GetPortfolioData returns the aggregated payload without an envelope; the
// site frontend reads the section keys directly.
func (h *PortfolioHandler) GetPortfolioData(w http.ResponseWriter, r *http.Request) {
	data, err := h.portfolio.Data(r.Context())
	if err != nil {
		writeError(w, h.logger, err, "Failed to load portfolio data")
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// SectionHandler exposes add/update/delete for one section type.
type SectionHandler[T any] struct {
	svc    *services.SectionService[T]
	logger *zap.Logger
}

func NewSectionHandler[T any](svc *services.SectionService[T], logger *zap.Logger) *SectionHandler[T] {
	return &SectionHandler[T]{svc: svc, logger: logger}
}

type idBody struct {
	ID primitive.ObjectID `json:"_id"`
}

// sectionBody is one decoded add/update request: the _id, the document and
// the top-level keys the client actually sent.
type sectionBody[T any] struct {
	id   primitive.ObjectID
	doc  *T
	keys []string
}

// decodeSection reads the body once into the _id, the document and its key set.
func decodeSection[T any](w http.ResponseWriter, r *http.Request) (sectionBody[T], error) {
	var out sectionBody[T]
	raw, err := readBody(w, r)
	if err != nil {
		return out, err
	}
	var present map[string]json.RawMessage
	if err := json.Unmarshal(raw, &present); err != nil || present == nil {
		return out, errInvalidBody
	}
	var ref idBody
	if err := json.Unmarshal(raw, &ref); err != nil {
		return out, errInvalidBody
	}
	out.doc = new(T)
	if err := json.Unmarshal(raw, out.doc); err != nil {
		return out, errInvalidBody
	}
	out.id = ref.ID
	for k := range present {
		out.keys = append(out.keys, k)
	}
	return out, nil
}

func (h *SectionHandler[T]) Add(w http.ResponseWriter, r *http.Request) {
	body, err := decodeSection[T](w, r)
	if err != nil {
		writeError(w, h.logger, err, "")
		return
	}
	created, err := h.svc.Add(r.Context(), body.doc)
	if err != nil {
		writeError(w, h.logger, err, "Failed to add "+h.svc.Name())
		return
	}
	writeSuccess(w, http.StatusOK, h.svc.Name()+" added successfully", created)
}

// Update applies a partial or full document; keys the body omits keep their
// stored values.
func (h *SectionHandler[T]) Update(w http.ResponseWriter, r *http.Request) {
	body, err := decodeSection[T](w, r)
	if err != nil {
		writeError(w, h.logger, err, "")
		return
	}
	updated, err := h.svc.Patch(r.Context(), body.id, body.doc, body.keys)
	if err != nil {
		writeError(w, h.logger, err, "Failed to update "+h.svc.Name())
		return
	}
	writeSuccess(w, http.StatusOK, h.svc.Name()+" data updated successfully", updated)
}

func (h *SectionHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	var ref idBody
	if err := decodeJSON(w, r, &ref); err != nil {
		writeError(w, h.logger, err, "")
		return
	}
	deleted, err := h.svc.Delete(r.Context(), ref.ID)
	if err != nil {
		writeError(w, h.logger, err, "Failed to delete "+h.svc.Name())
		return
	}
	writeSuccess(w, http.StatusOK, h.svc.Name()+" deleted successfully", deleted)
}

// Sections bundles the handler for every section route.
type Sections struct {
	Headers      *SectionHandler[models.Header]
	Introduction *SectionHandler[models.Introduction]
	About        *SectionHandler[models.About]
	Contacts     *SectionHandler[models.Contact]
	LeftSides    *SectionHandler[models.LeftSider]
	Footer       *SectionHandler[models.Footer]
	Skills       *SectionHandler[models.Skill]
	Experiences  *SectionHandler[models.Experience]
	Projects     *SectionHandler[models.Project]
	Educations   *SectionHandler[models.Education]
	Certificates *SectionHandler[models.Certificate]
}
