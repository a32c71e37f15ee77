package report

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-pupuseria/internal/common"
)

// Handler exposes reporting endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Daily handles GET /api/v1/reports/daily/{date}.
func (h *Handler) Daily(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Daily(r.Context(), chi.URLParam(r, "date"))
	if err != nil {
		common.WriteAppError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": report})
}

// ExportDaily handles GET /api/v1/reports/daily/{date}/export, serving the CSV
// as an attachment. A day with no orders is a 404.
func (h *Handler) ExportDaily(w http.ResponseWriter, r *http.Request) {
	export, err := h.service.ExportCSV(r.Context(), chi.URLParam(r, "date"))
	if err != nil {
		common.WriteAppError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(export.Content)
}

// Summary handles GET /api/v1/reports/summary?start_date=&end_date=.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	summary, err := h.service.Summary(r.Context(), query.Get("start_date"), query.Get("end_date"))
	if err != nil {
		common.WriteAppError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": summary})
}

// Routes mounts the reporting endpoints on a chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/daily/{date}", h.Daily)
	r.Get("/daily/{date}/export", h.ExportDaily)
	r.Get("/summary", h.Summary)
	return r
}
