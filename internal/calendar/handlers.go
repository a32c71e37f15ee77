package calendar

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-pupuseria/internal/common"
)

// Handler exposes operating-day endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /api/v1/operating-days?start_date=&end_date=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	rows, err := h.service.ListRange(r.Context(), query.Get("start_date"), query.Get("end_date"))
	if err != nil {
		common.WriteAppError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": rows})
}

// Get handles GET /api/v1/operating-days/{date}. A date without a record
// reports open.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.Get(r.Context(), chi.URLParam(r, "date"))
	if err != nil {
		common.WriteAppError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": record})
}

// Set handles PUT /api/v1/operating-days/{date}.
func (h *Handler) Set(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		IsOpen *bool `json:"is_open"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if payload.IsOpen == nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "is_open is required", nil)
		return
	}
	record, err := h.service.Set(r.Context(), chi.URLParam(r, "date"), *payload.IsOpen)
	if err != nil {
		common.WriteAppError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": record})
}

// SetBulk handles POST /api/v1/operating-days. Malformed dates are skipped.
func (h *Handler) SetBulk(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Days []BulkEntry `json:"days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if len(payload.Days) == 0 {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "days is required", nil)
		return
	}
	result, err := h.service.SetBulk(r.Context(), payload.Days)
	if err != nil {
		common.WriteAppError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": result})
}

// Delete handles DELETE /api/v1/operating-days/{date}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Remove(r.Context(), chi.URLParam(r, "date")); err != nil {
		common.WriteAppError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{"deleted": true}})
}

// Routes mounts the operating-day endpoints on a chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.SetBulk)
	r.Get("/{date}", h.Get)
	r.Put("/{date}", h.Set)
	r.Delete("/{date}", h.Delete)
	return r
}
