package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/halvard/skein/internal/apperr"
	"github.com/halvard/skein/internal/archive"
	"github.com/halvard/skein/internal/engine"
	"github.com/halvard/skein/internal/metrics"
	"github.com/halvard/skein/internal/sse"
)

// Handler holds API route handlers.
type Handler struct {
	eng    *engine.Engine
	store  archive.Store
	broker *sse.Broker
}

// NewHandler creates a new Handler. broker may be nil.
func NewHandler(eng *engine.Engine, store archive.Store, broker *sse.Broker) *Handler {
	return &Handler{eng: eng, store: store, broker: broker}
}

func (h *Handler) publish(kind, name string) {
	if h.broker != nil {
		h.broker.PublishDocEvent(kind, name)
	}
}

// statusFor maps structured error kinds to HTTP status codes.
func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindSerialization:
		return http.StatusUnprocessableEntity
	case apperr.KindProvider:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (h *Handler) writeErr(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, status, errorBody("internal error"))
		return
	}
	writeJSON(w, status, errorBody(err.Error()))
}

func decodeBody(r *http.Request, v interface{ Validate() error }) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return apperr.Validation("read body: %v", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return apperr.Validation("malformed request body: %v", err)
	}
	if err := v.Validate(); err != nil {
		return apperr.Validation("%v", err)
	}
	return nil
}

// Query handles POST /api/query.
//
//	@Summary		Filter the canvas and serialize the selection
//	@Tags			canvas
//	@Accept			json
//	@Produce		json
//	@Param			body	body		QueryRequest	true	"Selection criteria and serialization options"
//	@Success		200		{object}	QueryResult
//	@Security		BearerAuth
//	@Router			/query [post]
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	var req engine.QueryRequest
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("read body"))
		return
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("malformed request body"))
		return
	}

	res, err := h.eng.Query(r.Context(), req)
	if err != nil {
		metrics.ObserveQuery(err, 0)
		h.writeErr(w, "query", err)
		return
	}
	metrics.ObserveQuery(nil, res.Expanded)
	writeJSON(w, http.StatusOK, res)
}

// Place handles POST /api/place.
//
//	@Summary		Place a document onto the live canvas
//	@Tags			canvas
//	@Accept			json
//	@Produce		json
//	@Param			body	body		PlaceRequest	true	"Document to place"
//	@Success		200		{object}	engine.PlaceResult
//	@Failure		400		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/place [post]
func (h *Handler) Place(w http.ResponseWriter, r *http.Request) {
	var req PlaceRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeErr(w, "place", err)
		return
	}

	res, err := h.eng.Place(r.Context(), req.Document)
	metrics.ObservePlacement(err)
	if err != nil {
		h.writeErr(w, "place", err)
		return
	}
	h.publish("placed", "")
	writeJSON(w, http.StatusOK, res)
}

// Heal handles POST /api/heal.
//
//	@Summary		Validate and self-correct a script body
//	@Tags			scripts
//	@Accept			json
//	@Produce		json
//	@Param			body	body		HealRequest	true	"Script to validate"
//	@Success		200		{object}	scriptheal.Outcome
//	@Security		BearerAuth
//	@Router			/heal [post]
func (h *Handler) Heal(w http.ResponseWriter, r *http.Request) {
	var req HealRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeErr(w, "heal", err)
		return
	}

	outcome, err := h.eng.HealScript(r.Context(), req.Language, req.Source)
	if err != nil && outcome == nil {
		h.writeErr(w, "heal", err)
		return
	}
	// Provider failures still return the last candidate.
	if outcome != nil {
		metrics.HealRounds.Observe(float64(outcome.Attempts))
	}
	writeJSON(w, http.StatusOK, outcome)
}

// ListDocuments handles GET /api/documents.
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	docs, total, err := h.store.List(limit, offset)
	if err != nil {
		h.writeErr(w, "list documents", err)
		return
	}
	if docs == nil {
		docs = []archive.DocRow{}
	}
	writeJSON(w, http.StatusOK, DocumentListResponse{Documents: docs, Total: total})
}

// GetDocument handles GET /api/documents/{name}.
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	row, payload, err := h.store.Get(name)
	if err != nil {
		h.writeErr(w, "get document", err)
		return
	}
	writeJSON(w, http.StatusOK, DocumentDetail{DocRow: *row, Document: payload})
}

// SaveDocument handles PUT /api/documents/{name}.
func (h *Handler) SaveDocument(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var req SaveDocumentRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeErr(w, "save document", err)
		return
	}

	row, err := archive.Import(h.store, name, req.Notes, req.Document)
	if err != nil {
		h.writeErr(w, "save document", err)
		return
	}
	h.publish("saved", name)
	writeJSON(w, http.StatusOK, row)
}

// DeleteDocument handles DELETE /api/documents/{name}.
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.store.Delete(name); err != nil {
		h.writeErr(w, "delete document", err)
		return
	}
	h.publish("deleted", name)
	w.WriteHeader(http.StatusNoContent)
}

// SearchDocuments handles GET /api/search.
func (h *Handler) SearchDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("q is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	results, err := h.store.Search(q, limit)
	if err != nil {
		h.writeErr(w, "search", err)
		return
	}
	if results == nil {
		results = []archive.SearchResult{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}
