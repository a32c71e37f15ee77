package order

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-pupuseria/internal/common"
	"github.com/noah-isme/backend-pupuseria/internal/money"
)

// Handler exposes order endpoints.
type Handler struct {
	service  *Service
	validate *validator.Validate
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service  *Service
	Validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	v := cfg.Validate
	if v == nil {
		v = validator.New()
	}
	return &Handler{service: cfg.Service, validate: v}
}

type submitOrderRequest struct {
	BusinessDay  string              `json:"business_day" validate:"required,datetime=2006-01-02"`
	IsDelivery   bool                `json:"is_delivery"`
	DeliveryCost *money.Money        `json:"delivery_cost"`
	Items        []submitItemRequest `json:"items" validate:"required,min=1,dive"`
}

type submitItemRequest struct {
	ProductID string  `json:"product_id" validate:"required,uuid"`
	Masa      *string `json:"masa"`
	Quantity  int     `json:"quantity" validate:"required,min=1"`
}

func (h *Handler) decodeSubmit(r *http.Request) (SubmitParams, error) {
	var payload submitOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return SubmitParams{}, common.BadRequest("body", "invalid payload", err)
	}
	if err := h.validate.Struct(payload); err != nil {
		return SubmitParams{}, common.ValidationError(err)
	}
	params := SubmitParams{
		BusinessDay: payload.BusinessDay,
		IsDelivery:  payload.IsDelivery,
		Items:       make([]SubmitItem, 0, len(payload.Items)),
	}
	if payload.DeliveryCost != nil {
		params.DeliveryCost = *payload.DeliveryCost
	}
	for _, item := range payload.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return SubmitParams{}, common.BadRequest("product_id", "invalid product id", err)
		}
		params.Items = append(params.Items, SubmitItem{
			ProductID: productID,
			Masa:      item.Masa,
			Quantity:  item.Quantity,
		})
	}
	return params, nil
}

// List handles GET /api/v1/orders?date=YYYY-MM-DD. The date defaults to today.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListByDay(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		common.WriteAppError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": orders})
}

// Get handles GET /api/v1/orders/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid order id", nil)
		return
	}
	o, err := h.service.Get(r.Context(), id)
	if err != nil {
		common.WriteAppError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": o})
}

// Create handles POST /api/v1/orders.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	params, err := h.decodeSubmit(r)
	if err != nil {
		common.WriteAppError(w, err)
		return
	}
	created, err := h.service.Create(r.Context(), params)
	if err != nil {
		common.WriteAppError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": created})
}

// Update handles PUT /api/v1/orders/{id}: a full replace of the line set.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid order id", nil)
		return
	}
	params, err := h.decodeSubmit(r)
	if err != nil {
		common.WriteAppError(w, err)
		return
	}
	updated, err := h.service.Update(r.Context(), id, params)
	if err != nil {
		common.WriteAppError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": updated})
}

// Delete handles DELETE /api/v1/orders/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid order id", nil)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		common.WriteAppError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{"deleted": true}})
}
