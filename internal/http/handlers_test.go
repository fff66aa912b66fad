package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"github.com/example/swiftrun/internal/assign"
	"github.com/example/swiftrun/internal/geo"
	"github.com/example/swiftrun/internal/models"
	"github.com/example/swiftrun/internal/notify"
	"github.com/example/swiftrun/internal/payments"
	"github.com/example/swiftrun/internal/pricing"
	"github.com/example/swiftrun/internal/storage"
)

func newTestServer() (*Server, *storage.MemoryStore) {
	st := storage.NewMemoryStore()
	s := &Server{
		Store:           st,
		Geo:             geo.NewMemoryIndex(),
		WSReg:           notify.NewWSRegistry(),
		Notifier:        notify.Noop{},
		Calc:            pricing.NewDefaultCalculator(),
		Cash:            payments.Cash{},
		flatErrandPrice: pricing.FlatErrandPrice,
		logger:          slog.New(slog.NewJSONHandler(io.Discard, nil)),
		mux:             mux.NewRouter(),
	}
	s.Assigner = &assign.Service{Geo: s.Geo, Sink: s.WSReg, DefaultSpeedMps: 10, TopN: 4}
	s.registerMiddleware()
	s.routes()
	return s, st
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func createTestOrder(t *testing.T, s *Server) models.Order {
	t.Helper()
	w := doJSON(t, s, "POST", "/api/v1/orders", map[string]any{
		"customer_id": "cust-1",
		"store_id":    "store-1",
		"items": []map[string]any{
			{"product_name": "Pepperoni Pizza", "unit_price": 2500, "quantity": 1},
			{"product_name": "Chicken Wings", "unit_price": 1200, "quantity": 2},
		},
		"delivery_fee":     500,
		"tax":              100,
		"discount":         200,
		"delivery_address": "123 Main St, Georgetown",
		"dropoff":          map[string]float64{"lat": 6.8013, "lon": -58.1551},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create order: %d %s", w.Code, w.Body.String())
	}
	var o models.Order
	if err := json.Unmarshal(w.Body.Bytes(), &o); err != nil {
		t.Fatal(err)
	}
	return o
}

func TestCreateOrderComputesTotals(t *testing.T) {
	s, _ := newTestServer()
	o := createTestOrder(t, s)
	if o.Subtotal != 2500+2*1200 {
		t.Fatalf("subtotal %d", o.Subtotal)
	}
	if o.Total != o.Subtotal+o.DeliveryFee+o.Tax-o.Discount {
		t.Fatalf("total %d violates invariant", o.Total)
	}
	if o.Status != "pending" || o.PayMethod != "cash" || o.Currency != "GYD" {
		t.Fatalf("unexpected defaults: %+v", o)
	}
	if !strings.HasPrefix(o.Number, "ORD-") {
		t.Fatalf("order number %q", o.Number)
	}
}

func TestOrderAdvancesToDeliveredThenNoops(t *testing.T) {
	s, _ := newTestServer()
	o := createTestOrder(t, s)
	var last transitionResult
	for i := 0; i < 7; i++ {
		w := doJSON(t, s, "POST", "/api/v1/orders/"+o.ID+"/advance", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("advance %d: %d %s", i, w.Code, w.Body.String())
		}
		if err := json.Unmarshal(w.Body.Bytes(), &last); err != nil {
			t.Fatal(err)
		}
		if !last.Changed {
			t.Fatalf("advance %d unexpectedly a no-op", i)
		}
	}
	if last.Status != "delivered" {
		t.Fatalf("after 7 advances: %s", last.Status)
	}
	w := doJSON(t, s, "POST", "/api/v1/orders/"+o.ID+"/advance", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("noop advance: %d", w.Code)
	}
	var noop transitionResult
	_ = json.Unmarshal(w.Body.Bytes(), &noop)
	if noop.Changed || noop.Status != "delivered" || noop.Message == "" {
		t.Fatalf("expected informational no-op, got %+v", noop)
	}
}

func TestAcceptAssignsWithoutAdvancing(t *testing.T) {
	s, st := newTestServer()
	o := createTestOrder(t, s)
	w := doJSON(t, s, "POST", "/api/v1/orders/"+o.ID+"/accept", map[string]string{"driver_id": "drv-1"})
	if w.Code != http.StatusOK {
		t.Fatalf("accept: %d %s", w.Code, w.Body.String())
	}
	got, _ := st.GetOrder(context.Background(), o.ID)
	if got.DriverID != "drv-1" {
		t.Fatalf("driver not assigned: %+v", got)
	}
	if got.Status != "pending" {
		t.Fatal("accept must not advance status")
	}
	// second accept must hit the precondition
	w = doJSON(t, s, "POST", "/api/v1/orders/"+o.ID+"/accept", map[string]string{"driver_id": "drv-2"})
	if w.Code != http.StatusConflict {
		t.Fatalf("re-accept: %d", w.Code)
	}
}

func TestConfirmAndReject(t *testing.T) {
	s, _ := newTestServer()
	o := createTestOrder(t, s)
	w := doJSON(t, s, "POST", "/api/v1/orders/"+o.ID+"/confirm", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("confirm: %d %s", w.Code, w.Body.String())
	}
	var res transitionResult
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if res.Status != "confirmed" {
		t.Fatalf("confirm result %+v", res)
	}
	// confirmed orders can still be rejected
	w = doJSON(t, s, "POST", "/api/v1/orders/"+o.ID+"/reject", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("reject: %d %s", w.Code, w.Body.String())
	}
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if res.Status != "cancelled" {
		t.Fatalf("reject result %+v", res)
	}
	// cancelled is terminal; another reject is a conflict
	w = doJSON(t, s, "POST", "/api/v1/orders/"+o.ID+"/reject", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("reject after cancel: %d", w.Code)
	}
}

func TestOrderReceiptSectionsOrdered(t *testing.T) {
	s, _ := newTestServer()
	o := createTestOrder(t, s)
	w := doJSON(t, s, "GET", "/api/v1/orders/"+o.ID+"/receipt", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("receipt: %d", w.Code)
	}
	var res receiptResponse
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if len(res.Sections) != 2 {
		t.Fatalf("sections: %+v", res.Sections)
	}
	if res.Sections[0].Category != "Specialty Pizzas" || res.Sections[1].Category != "Chicken Wings" {
		t.Fatalf("section order: %+v", res.Sections)
	}
	if res.Total != "GYD$5,300" {
		t.Fatalf("formatted total %q", res.Total)
	}
}

func TestPayOrderCash(t *testing.T) {
	s, st := newTestServer()
	o := createTestOrder(t, s)
	w := doJSON(t, s, "POST", "/api/v1/orders/"+o.ID+"/pay", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("pay: %d %s", w.Code, w.Body.String())
	}
	got, _ := st.GetOrder(context.Background(), o.ID)
	if got.PayStatus != "authorized" {
		t.Fatalf("payment status %q", got.PayStatus)
	}
}

func createTestErrand(t *testing.T, s *Server) models.Errand {
	t.Helper()
	w := doJSON(t, s, "POST", "/api/v1/errands", map[string]any{
		"customer_id":     "cust-1",
		"category_id":     "cat-groceries",
		"pickup_address":  "Bourda Market",
		"dropoff_address": "Kitty",
		"pickup":          map[string]float64{"lat": 6.8100, "lon": -58.1600},
		"dropoff":         map[string]float64{"lat": 6.8200, "lon": -58.1400},
		"asap":            true,
		"base_price":      1000,
		"tier":            "standard",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create errand: %d %s", w.Code, w.Body.String())
	}
	var res struct {
		Errand       models.Errand `json:"errand"`
		DisplayTotal int64         `json:"display_total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.DisplayTotal != pricing.FlatErrandPrice {
		t.Fatalf("display total %d", res.DisplayTotal)
	}
	return res.Errand
}

func TestErrandAdvancesToCompletedInFiveSteps(t *testing.T) {
	s, _ := newTestServer()
	e := createTestErrand(t, s)
	if e.Total != e.BasePrice+e.DistanceFee+e.ComplexityFee {
		t.Fatalf("errand total %d violates invariant", e.Total)
	}
	var last transitionResult
	for i := 0; i < 5; i++ {
		w := doJSON(t, s, "POST", "/api/v1/errands/"+e.ID+"/advance", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("advance %d: %d %s", i, w.Code, w.Body.String())
		}
		_ = json.Unmarshal(w.Body.Bytes(), &last)
	}
	if last.Status != "completed" {
		t.Fatalf("after 5 advances: %s", last.Status)
	}
	w := doJSON(t, s, "POST", "/api/v1/errands/"+e.ID+"/advance", nil)
	var noop transitionResult
	_ = json.Unmarshal(w.Body.Bytes(), &noop)
	if noop.Changed {
		t.Fatal("completed errand must not advance")
	}
}

func TestErrandRequiresCoordinates(t *testing.T) {
	s, _ := newTestServer()
	w := doJSON(t, s, "POST", "/api/v1/errands", map[string]any{
		"customer_id": "cust-1",
		"category_id": "cat-1",
		"asap":        true,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestErrandQuote(t *testing.T) {
	s, _ := newTestServer()
	at := map[string]float64{"lat": 6.8013, "lon": -58.1551}
	w := doJSON(t, s, "POST", "/api/v1/errands/quote", map[string]any{
		"base_price": 1000,
		"pickup":     at,
		"dropoff":    at,
		"tier":       "standard",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("quote: %d %s", w.Code, w.Body.String())
	}
	var res struct {
		Quote        pricing.Quote `json:"quote"`
		DistanceKm   float64       `json:"distance_km"`
		DisplayTotal int64         `json:"display_total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.DistanceKm != 0 || res.Quote.DistanceFee != 0 {
		t.Fatalf("same-point quote: %+v", res)
	}
	if res.Quote.Total != res.Quote.BasePrice+res.Quote.ServiceFee {
		t.Fatalf("quote total %d", res.Quote.Total)
	}
	if res.DisplayTotal != pricing.FlatErrandPrice {
		t.Fatalf("display total %d", res.DisplayTotal)
	}
}

func TestCourierLocationAndSuggest(t *testing.T) {
	s, _ := newTestServer()
	o := createTestOrder(t, s)
	// no couriers yet
	w := doJSON(t, s, "POST", "/api/v1/orders/"+o.ID+"/suggest", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("suggest without couriers: %d", w.Code)
	}
	w = doJSON(t, s, "POST", "/internal/courier/locations", map[string]any{
		"id":     "drv-9",
		"loc":    map[string]float64{"lat": 6.8020, "lon": -58.1560},
		"rating": 4.9,
	})
	if w.Code != http.StatusNoContent {
		t.Fatalf("location: %d", w.Code)
	}
	w = doJSON(t, s, "POST", "/api/v1/orders/"+o.ID+"/suggest", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("suggest: %d %s", w.Code, w.Body.String())
	}
	var offer models.CourierOffer
	_ = json.Unmarshal(w.Body.Bytes(), &offer)
	if offer.CourierID != "drv-9" || offer.EntityID != o.ID {
		t.Fatalf("offer %+v", offer)
	}
}

func TestUnknownOrder404(t *testing.T) {
	s, _ := newTestServer()
	w := doJSON(t, s, "GET", "/api/v1/orders/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("got %d", w.Code)
	}
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer()
	w := doJSON(t, s, "GET", "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("got %d", w.Code)
	}
}

func TestCreateOrderResolvesContactByPrecedence(t *testing.T) {
	s, _ := newTestServer()
	w := doJSON(t, s, "POST", "/api/v1/orders", map[string]any{
		"customer_id": "cust-1",
		"store_id":    "store-1",
		"items": []map[string]any{
			{"product_name": "Cheese Pizza", "unit_price": 2000, "quantity": 1},
		},
		"customer_phone": "+592-600-0000",
		"phone":          "+592-700-0000",
		"customer_name":  "A. Persaud",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	var o models.Order
	if err := json.Unmarshal(w.Body.Bytes(), &o); err != nil {
		t.Fatal(err)
	}
	// customer record outranks the raw phone field
	if o.ContactPhone != "+592-600-0000" {
		t.Fatalf("contact phone %q", o.ContactPhone)
	}
	if o.ContactName != "A. Persaud" {
		t.Fatalf("contact name %q", o.ContactName)
	}

	w = doJSON(t, s, "GET", "/api/v1/orders/"+o.ID+"/receipt", nil)
	var res receiptResponse
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.ContactName != "A. Persaud" || res.ContactPhone != "+592-600-0000" {
		t.Fatalf("receipt contact: %+v", res)
	}
}

// recordingProvider remembers settlement calls.
type recordingProvider struct {
	captured []string
	released []string
}

func (p *recordingProvider) Authorize(ctx context.Context, amount int64, currency, customerID string) (string, error) {
	return "hold-1", nil
}

func (p *recordingProvider) Capture(ctx context.Context, ref string) error {
	p.captured = append(p.captured, ref)
	return nil
}

func (p *recordingProvider) Release(ctx context.Context, ref string) error {
	p.released = append(p.released, ref)
	return nil
}

func TestDeliveredOrderCapturesHold(t *testing.T) {
	s, st := newTestServer()
	prov := &recordingProvider{}
	s.Cash = prov
	o := createTestOrder(t, s)
	if w := doJSON(t, s, "POST", "/api/v1/orders/"+o.ID+"/pay", nil); w.Code != http.StatusOK {
		t.Fatalf("pay: %d", w.Code)
	}
	for i := 0; i < 7; i++ {
		if w := doJSON(t, s, "POST", "/api/v1/orders/"+o.ID+"/advance", nil); w.Code != http.StatusOK {
			t.Fatalf("advance %d: %d", i, w.Code)
		}
	}
	if len(prov.captured) != 1 || prov.captured[0] != "hold-1" {
		t.Fatalf("capture calls: %+v", prov.captured)
	}
	got, _ := st.GetOrder(context.Background(), o.ID)
	if got.PayStatus != "paid" || got.PayRef != "hold-1" {
		t.Fatalf("payment after delivery: %+v", got)
	}
}

func TestRejectedOrderReleasesHold(t *testing.T) {
	s, st := newTestServer()
	prov := &recordingProvider{}
	s.Cash = prov
	o := createTestOrder(t, s)
	if w := doJSON(t, s, "POST", "/api/v1/orders/"+o.ID+"/pay", nil); w.Code != http.StatusOK {
		t.Fatalf("pay: %d", w.Code)
	}
	if w := doJSON(t, s, "POST", "/api/v1/orders/"+o.ID+"/reject", nil); w.Code != http.StatusOK {
		t.Fatalf("reject: %d", w.Code)
	}
	if len(prov.released) != 1 || len(prov.captured) != 0 {
		t.Fatalf("settlement calls: captured=%v released=%v", prov.captured, prov.released)
	}
	got, _ := st.GetOrder(context.Background(), o.ID)
	if got.PayStatus != "released" {
		t.Fatalf("payment after reject: %+v", got)
	}
}

func TestUnpaidOrderSkipsSettlement(t *testing.T) {
	s, _ := newTestServer()
	prov := &recordingProvider{}
	s.Cash = prov
	o := createTestOrder(t, s)
	for i := 0; i < 7; i++ {
		doJSON(t, s, "POST", "/api/v1/orders/"+o.ID+"/advance", nil)
	}
	if len(prov.captured) != 0 || len(prov.released) != 0 {
		t.Fatalf("settlement without a hold: captured=%v released=%v", prov.captured, prov.released)
	}
}

func TestRejectBeyondAcceptedIsConflict(t *testing.T) {
	s, _ := newTestServer()
	o := createTestOrder(t, s)
	// pending -> accepted -> purchasing; now past the rejectable window
	for i := 0; i < 2; i++ {
		if w := doJSON(t, s, "POST", fmt.Sprintf("/api/v1/orders/%s/advance", o.ID), nil); w.Code != http.StatusOK {
			t.Fatalf("advance: %d", w.Code)
		}
	}
	if w := doJSON(t, s, "POST", "/api/v1/orders/"+o.ID+"/reject", nil); w.Code != http.StatusConflict {
		t.Fatalf("reject from purchasing: %d", w.Code)
	}
}
