package order_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pupuseria/internal/order"
)

func newTestHandler(t *testing.T) (*order.Handler, *fakeProducts) {
	t.Helper()
	svc, _, products, _ := newTestService(t)
	return order.NewHandler(order.HandlerConfig{Service: svc}), products
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestOrderCreateEndpoint(t *testing.T) {
	handler, products := newTestHandler(t)
	small := addProduct(products, "revuelta", 250, true)

	body := fmt.Sprintf(`{
		"business_day": "2026-08-20",
		"is_delivery": true,
		"delivery_cost": 1.50,
		"items": [{"product_id": %q, "quantity": 3}]
	}`, small)
	rec := httptest.NewRecorder()
	handler.Create(rec, httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data order.Order `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "2.50", resp.Data.Total.String())
	require.Equal(t, "1.50", resp.Data.DeliveryCost.String())
	require.Len(t, resp.Data.Items, 1)
	require.Equal(t, "1.00", resp.Data.Items[0].LineTotal.String())
}

func TestOrderCreateValidation(t *testing.T) {
	handler, products := newTestHandler(t)
	small := addProduct(products, "revuelta", 250, true)

	cases := []string{
		`{"items": [{"product_id": "` + small.String() + `", "quantity": 1}]}`,
		`{"business_day": "2026-08-20", "items": []}`,
		`{"business_day": "2026-08-20"}`,
		`{"business_day": "20/08/2026", "items": [{"product_id": "` + small.String() + `", "quantity": 1}]}`,
		`{"business_day": "2026-08-20", "items": [{"product_id": "not-a-uuid", "quantity": 1}]}`,
		`{"business_day": "2026-08-20", "items": [{"product_id": "` + small.String() + `", "quantity": 0}]}`,
		`not json`,
	}
	for _, body := range cases {
		rec := httptest.NewRecorder()
		handler.Create(rec, httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body)))
		require.Equal(t, http.StatusBadRequest, rec.Code, "body: %s", body)
	}
}

func TestOrderGetEndpoint(t *testing.T) {
	handler, products := newTestHandler(t)
	small := addProduct(products, "revuelta", 250, true)

	body := fmt.Sprintf(`{"business_day": "2026-08-20", "items": [{"product_id": %q, "quantity": 1}]}`, small)
	rec := httptest.NewRecorder()
	handler.Create(rec, httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		Data order.Order `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	greq := httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+created.Data.ID.String(), nil)
	greq = withURLParam(greq, "id", created.Data.ID.String())
	grec := httptest.NewRecorder()
	handler.Get(grec, greq)
	require.Equal(t, http.StatusOK, grec.Code)

	nreq := httptest.NewRequest(http.MethodGet, "/api/v1/orders/bogus", nil)
	nreq = withURLParam(nreq, "id", "bogus")
	nrec := httptest.NewRecorder()
	handler.Get(nrec, nreq)
	require.Equal(t, http.StatusBadRequest, nrec.Code)
}

func TestOrderListDefaultsToToday(t *testing.T) {
	handler, _ := newTestHandler(t)
	rec := httptest.NewRecorder()
	handler.List(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.List(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders?date=garbage", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
