package httpapi

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/swiftrun/internal/assign"
	"github.com/example/swiftrun/internal/config"
	"github.com/example/swiftrun/internal/currency"
	"github.com/example/swiftrun/internal/eta"
	"github.com/example/swiftrun/internal/geo"
	"github.com/example/swiftrun/internal/ingest"
	"github.com/example/swiftrun/internal/lifecycle"
	"github.com/example/swiftrun/internal/models"
	"github.com/example/swiftrun/internal/notify"
	"github.com/example/swiftrun/internal/observability"
	"github.com/example/swiftrun/internal/payments"
	"github.com/example/swiftrun/internal/pricing"
	"github.com/example/swiftrun/internal/profile"
	"github.com/example/swiftrun/internal/receipt"
	"github.com/example/swiftrun/internal/storage"
)

type Server struct {
	Store    storage.Store
	Geo      geo.Index
	Assigner *assign.Service
	Kafka    *ingest.KafkaProducer
	WSReg    *notify.WSRegistry
	Notifier notify.Notifier
	Calc     *pricing.Calculator
	Cards    payments.Provider
	Cash     payments.Provider

	flatErrandPrice int64
	logger          *slog.Logger
	mux             *mux.Router
}

// NewServer wires the API from config. Redis and Postgres fall back to
// in-memory implementations when unset so the binary runs locally.
func NewServer(cfg config.ServerConfig, logger *slog.Logger) (*Server, error) {
	var index geo.Index
	if cfg.RedisAddr != "" {
		index = geo.NewRedisIndex(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisGeoKey)
	} else {
		index = geo.NewMemoryIndex()
	}

	var store storage.Store
	if cfg.PGDSN != "" {
		ps, err := storage.NewPostgresStore(cfg.PGDSN)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		store = ps
	} else {
		store = storage.NewMemoryStore()
	}

	var kp *ingest.KafkaProducer
	if len(cfg.KafkaBrokers) > 0 {
		kp = ingest.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaLocationTopic, cfg.KafkaEventTopic)
	}

	wsreg := notify.NewWSRegistry()
	var notifier notify.Notifier
	switch cfg.NotifyMode {
	case "webhook":
		notifier = notify.NewWebhook(cfg.WebhookEndpoint)
	case "noop":
		notifier = notify.Noop{}
	default:
		notifier = wsreg
	}

	assigner := &assign.Service{
		Geo:             index,
		Sink:            wsreg,
		DefaultSpeedMps: cfg.DefaultSpeedMps,
		TopN:            cfg.AssignTopN,
	}
	if cfg.OSRMEndpoint != "" {
		assigner.ETAClient = eta.NewOSRMClient(cfg.OSRMEndpoint)
		assigner.ETACache = eta.NewCache(cfg.ETACacheTTL)
	}

	var cards payments.Provider
	if cfg.StripeKey != "" {
		cards = payments.NewStripeProvider(cfg.StripeKey)
	}

	s := &Server{
		Store:           store,
		Geo:             index,
		Assigner:        assigner,
		Kafka:           kp,
		WSReg:           wsreg,
		Notifier:        notifier,
		Calc:            pricing.NewCalculator(cfg.ServiceFee, nil, nil),
		Cards:           cards,
		Cash:            payments.Cash{},
		flatErrandPrice: cfg.FlatErrandPrice,
		logger:          logger,
		mux:             mux.NewRouter(),
	}
	s.registerMiddleware()
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/v1/orders", s.handleCreateOrder).Methods("POST")
	s.mux.HandleFunc("/api/v1/orders/{id}", s.handleGetOrder).Methods("GET")
	s.mux.HandleFunc("/api/v1/orders/{id}/advance", s.handleAdvanceOrder).Methods("POST")
	s.mux.HandleFunc("/api/v1/orders/{id}/accept", s.handleAcceptOrder).Methods("POST")
	s.mux.HandleFunc("/api/v1/orders/{id}/confirm", s.handleConfirmOrder).Methods("POST")
	s.mux.HandleFunc("/api/v1/orders/{id}/reject", s.handleRejectOrder).Methods("POST")
	s.mux.HandleFunc("/api/v1/orders/{id}/receipt", s.handleOrderReceipt).Methods("GET")
	s.mux.HandleFunc("/api/v1/orders/{id}/pay", s.handlePayOrder).Methods("POST")
	s.mux.HandleFunc("/api/v1/orders/{id}/suggest", s.handleSuggestOrder).Methods("POST")

	s.mux.HandleFunc("/api/v1/errands", s.handleCreateErrand).Methods("POST")
	s.mux.HandleFunc("/api/v1/errands/quote", s.handleErrandQuote).Methods("POST")
	s.mux.HandleFunc("/api/v1/errands/categories", s.handleListCategories).Methods("GET")
	s.mux.HandleFunc("/api/v1/errands/{id}", s.handleGetErrand).Methods("GET")
	s.mux.HandleFunc("/api/v1/errands/{id}/advance", s.handleAdvanceErrand).Methods("POST")
	s.mux.HandleFunc("/api/v1/errands/{id}/accept", s.handleAcceptErrand).Methods("POST")
	s.mux.HandleFunc("/api/v1/errands/{id}/reject", s.handleRejectErrand).Methods("POST")
	s.mux.HandleFunc("/api/v1/errands/{id}/suggest", s.handleSuggestErrand).Methods("POST")

	s.mux.HandleFunc("/internal/courier/locations", s.handleCourierLocation).Methods("POST")

	s.mux.HandleFunc("/ws/courier/{courier_id}", s.handleCourierWS)
	s.mux.HandleFunc("/ws/{kind}/{id}", s.handleEntityWS)

	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) }).Methods("GET")
	s.mux.Handle("/metrics", promhttp.Handler())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }

type createOrderRequest struct {
	CustomerID  string            `json:"customer_id"`
	StoreID     string            `json:"store_id"`
	Items       []models.LineItem `json:"items"`
	DeliveryFee int64             `json:"delivery_fee"`
	Tax         int64             `json:"tax"`
	Discount    int64             `json:"discount"`
	Address     string            `json:"delivery_address"`
	Dropoff     *models.Coord     `json:"dropoff"`
	PayMethod   string            `json:"payment_method"`

	// optional contact sources, resolved by precedence (see internal/profile)
	ProfileName   string `json:"profile_name"`
	ProfilePhone  string `json:"profile_phone"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	Phone         string `json:"phone"`
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.CustomerID == "" || req.StoreID == "" || len(req.Items) == 0 {
		http.Error(w, "customer_id, store_id, and items are required", http.StatusBadRequest)
		return
	}
	var subtotal int64
	for _, it := range req.Items {
		if it.Quantity <= 0 || it.UnitPrice < 0 {
			http.Error(w, "invalid line item", http.StatusBadRequest)
			return
		}
		subtotal += it.UnitPrice * int64(it.Quantity)
	}
	now := time.Now().UTC()
	id := newID()
	o := &models.Order{
		ID:          id,
		Number:      orderNumber("ORD", now, id),
		CustomerID:  req.CustomerID,
		StoreID:     req.StoreID,
		Items:       req.Items,
		Subtotal:    subtotal,
		DeliveryFee: req.DeliveryFee,
		Tax:         req.Tax,
		Discount:    req.Discount,
		Currency:    "GYD",
		PayMethod:   defaultPayMethod(req.PayMethod),
		PayStatus:   "unpaid",
		Status:      string(lifecycle.StatusPending),
		Address:     req.Address,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Dropoff != nil {
		o.Dropoff = *req.Dropoff
	}
	sources := profile.Sources{
		ProfileName:   req.ProfileName,
		ProfilePhone:  req.ProfilePhone,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		RawPhone:      req.Phone,
	}
	if name, ok := profile.DisplayName(sources); ok {
		o.ContactName = name
	}
	if phone, ok := profile.Phone(sources); ok {
		o.ContactPhone = phone
	}
	o.Total = models.OrderTotal(o)
	if err := s.Store.SaveOrder(r.Context(), o); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	observability.OrdersCreated.Inc()
	writeJSON(w, http.StatusCreated, o)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	o, ok := s.loadOrder(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) handleAdvanceOrder(w http.ResponseWriter, r *http.Request) {
	o, ok := s.loadOrder(w, r)
	if !ok {
		return
	}
	res, err := s.advance(r.Context(), models.KindOrder, o.ID, lifecycle.Status(o.Status), s.Store.UpdateOrderStatus)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if res.Changed && res.Status == string(lifecycle.StatusDelivered) {
		s.settleOrderPayment(r.Context(), o, true)
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAcceptOrder(w http.ResponseWriter, r *http.Request) {
	o, ok := s.loadOrder(w, r)
	if !ok {
		return
	}
	var req struct {
		DriverID string `json:"driver_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DriverID == "" {
		http.Error(w, "driver_id is required", http.StatusBadRequest)
		return
	}
	if !lifecycle.CanAccept(lifecycle.Status(o.Status), o.DriverID) {
		http.Error(w, lifecycle.ErrNotAcceptable.Error(), http.StatusConflict)
		return
	}
	if err := s.Store.AssignOrder(r.Context(), o.ID, req.DriverID); err != nil {
		// a concurrent accept won the conditional update
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, lifecycle.ErrNotAcceptable.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	// acceptance assigns only; status stays where it is
	writeJSON(w, http.StatusOK, map[string]string{"id": o.ID, "driver_id": req.DriverID, "status": o.Status})
}

func (s *Server) handleConfirmOrder(w http.ResponseWriter, r *http.Request) {
	o, ok := s.loadOrder(w, r)
	if !ok {
		return
	}
	to, err := lifecycle.Confirm(models.KindOrder, lifecycle.Status(o.Status))
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	res, err := s.applyTransition(r.Context(), models.KindOrder, o.ID, to, s.Store.UpdateOrderStatus)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRejectOrder(w http.ResponseWriter, r *http.Request) {
	o, ok := s.loadOrder(w, r)
	if !ok {
		return
	}
	res, err := s.reject(r.Context(), models.KindOrder, o.ID, lifecycle.Status(o.Status), s.Store.UpdateOrderStatus)
	if err != nil {
		if errors.Is(err, lifecycle.ErrNotRejectable) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.settleOrderPayment(r.Context(), o, false)
	writeJSON(w, http.StatusOK, res)
}

type receiptResponse struct {
	OrderNumber  string            `json:"order_number"`
	ContactName  string            `json:"contact_name,omitempty"`
	ContactPhone string            `json:"contact_phone,omitempty"`
	Sections     []receipt.Section `json:"sections"`
	Subtotal     string            `json:"subtotal"`
	DeliveryFee  string            `json:"delivery_fee"`
	Tax          string            `json:"tax"`
	Discount     string            `json:"discount"`
	Total        string            `json:"total"`
}

func (s *Server) handleOrderReceipt(w http.ResponseWriter, r *http.Request) {
	o, ok := s.loadOrder(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, receiptResponse{
		OrderNumber:  o.Number,
		ContactName:  o.ContactName,
		ContactPhone: o.ContactPhone,
		Sections:     receipt.Sections(o.Items),
		Subtotal:     currency.Format(o.Subtotal),
		DeliveryFee:  currency.Format(o.DeliveryFee),
		Tax:          currency.Format(o.Tax),
		Discount:     currency.Format(o.Discount),
		Total:        currency.Format(o.Total),
	})
}

func (s *Server) handlePayOrder(w http.ResponseWriter, r *http.Request) {
	o, ok := s.loadOrder(w, r)
	if !ok {
		return
	}
	provider := s.providerFor(o.PayMethod)
	if provider == nil {
		http.Error(w, "card payments not configured", http.StatusNotImplemented)
		return
	}
	ref, err := provider.Authorize(r.Context(), o.Total, strings.ToLower(o.Currency), o.CustomerID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	if err := s.Store.UpdateOrderPayment(r.Context(), o.ID, "authorized", ref); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"payment_status": "authorized", "payment_ref": ref})
}

func (s *Server) providerFor(method string) payments.Provider {
	if method == "card" {
		return s.Cards
	}
	return s.Cash
}

// settleOrderPayment finishes an authorized hold once the order reaches a
// terminal state: capture on delivery, release on cancellation. Settlement
// failure does not fail the transition; the hold can be retried out of band.
func (s *Server) settleOrderPayment(ctx context.Context, o *models.Order, delivered bool) {
	if o.PayStatus != "authorized" || o.PayRef == "" {
		return
	}
	provider := s.providerFor(o.PayMethod)
	if provider == nil {
		return
	}
	settle, status := provider.Release, "released"
	if delivered {
		settle, status = provider.Capture, "paid"
	}
	if err := settle(ctx, o.PayRef); err != nil {
		s.logger.Warn("payment settlement failed", "order", o.ID, "ref", o.PayRef, "error", err)
		return
	}
	if err := s.Store.UpdateOrderPayment(ctx, o.ID, status, o.PayRef); err != nil {
		s.logger.Warn("payment status update failed", "order", o.ID, "error", err)
	}
}

func (s *Server) handleSuggestOrder(w http.ResponseWriter, r *http.Request) {
	o, ok := s.loadOrder(w, r)
	if !ok {
		return
	}
	offer, found := s.Assigner.Suggest(models.KindOrder, o.ID, o.Dropoff)
	if !found {
		http.Error(w, "no couriers available", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, offer)
}

type createErrandRequest struct {
	CustomerID    string        `json:"customer_id"`
	CategoryID    string        `json:"category_id"`
	SubcategoryID string        `json:"subcategory_id"`
	PickupAddr    string        `json:"pickup_address"`
	DropoffAddr   string        `json:"dropoff_address"`
	Pickup        *models.Coord `json:"pickup"`
	Dropoff       *models.Coord `json:"dropoff"`
	Instructions  string        `json:"instructions"`
	Notes         string        `json:"notes"`
	Description   string        `json:"description"`
	ASAP          bool          `json:"asap"`
	ScheduledFor  time.Time     `json:"scheduled_for"`
	BasePrice     int64         `json:"base_price"`
	Tier          pricing.Tier  `json:"tier"`
	PayMethod     string        `json:"payment_method"`
}

func (s *Server) handleCreateErrand(w http.ResponseWriter, r *http.Request) {
	var req createErrandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.CustomerID == "" || req.CategoryID == "" {
		http.Error(w, "customer_id and category_id are required", http.StatusBadRequest)
		return
	}
	if req.Pickup == nil || req.Dropoff == nil {
		http.Error(w, "pickup and dropoff coordinates are required", http.StatusBadRequest)
		return
	}
	if !req.ASAP && req.ScheduledFor.IsZero() {
		http.Error(w, "scheduled_for is required unless asap", http.StatusBadRequest)
		return
	}
	q := s.Calc.PriceBetween(req.BasePrice, *req.Pickup, *req.Dropoff, req.Tier)
	now := time.Now().UTC()
	id := newID()
	e := &models.Errand{
		ID:            id,
		Number:        orderNumber("ERD", now, id),
		CustomerID:    req.CustomerID,
		CategoryID:    req.CategoryID,
		SubcategoryID: req.SubcategoryID,
		PickupAddr:    req.PickupAddr,
		DropoffAddr:   req.DropoffAddr,
		Pickup:        *req.Pickup,
		Dropoff:       *req.Dropoff,
		Instructions:  req.Instructions,
		Notes:         req.Notes,
		Description:   req.Description,
		ASAP:          req.ASAP,
		ScheduledFor:  req.ScheduledFor,
		BasePrice:     q.BasePrice,
		DistanceFee:   q.DistanceFee,
		ComplexityFee: q.ComplexityFee,
		Total:         q.Total,
		PayMethod:     defaultPayMethod(req.PayMethod),
		Status:        string(lifecycle.StatusPending),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Store.SaveErrand(r.Context(), e); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	observability.ErrandsCreated.Inc()
	writeJSON(w, http.StatusCreated, map[string]any{
		"errand": e,
		// billing charges the flat errand price; the stored breakdown total
		// can differ and both are returned on purpose
		"display_total":           s.flatErrandPrice,
		"display_total_formatted": currency.Format(s.flatErrandPrice),
	})
}

type quoteRequest struct {
	BasePrice int64         `json:"base_price"`
	Pickup    *models.Coord `json:"pickup"`
	Dropoff   *models.Coord `json:"dropoff"`
	Tier      pricing.Tier  `json:"tier"`
}

func (s *Server) handleErrandQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Pickup == nil || req.Dropoff == nil {
		http.Error(w, "pickup and dropoff coordinates are required", http.StatusBadRequest)
		return
	}
	distKm := geo.DistanceKm(*req.Pickup, *req.Dropoff)
	q := s.Calc.Price(req.BasePrice, distKm, req.Tier)
	observability.QuotesIssued.Inc()
	writeJSON(w, http.StatusOK, map[string]any{
		"quote":                   q,
		"distance_km":             distKm,
		"total_formatted":         currency.Format(q.Total),
		"display_total":           s.flatErrandPrice,
		"display_total_formatted": currency.Format(s.flatErrandPrice),
	})
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.Store.ListCategories(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleGetErrand(w http.ResponseWriter, r *http.Request) {
	e, ok := s.loadErrand(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleAdvanceErrand(w http.ResponseWriter, r *http.Request) {
	e, ok := s.loadErrand(w, r)
	if !ok {
		return
	}
	res, err := s.advance(r.Context(), models.KindErrand, e.ID, lifecycle.Status(e.Status), s.Store.UpdateErrandStatus)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAcceptErrand(w http.ResponseWriter, r *http.Request) {
	e, ok := s.loadErrand(w, r)
	if !ok {
		return
	}
	var req struct {
		RunnerID string `json:"runner_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RunnerID == "" {
		http.Error(w, "runner_id is required", http.StatusBadRequest)
		return
	}
	if !lifecycle.CanAccept(lifecycle.Status(e.Status), e.RunnerID) {
		http.Error(w, lifecycle.ErrNotAcceptable.Error(), http.StatusConflict)
		return
	}
	if err := s.Store.AssignErrand(r.Context(), e.ID, req.RunnerID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, lifecycle.ErrNotAcceptable.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": e.ID, "runner_id": req.RunnerID, "status": e.Status})
}

func (s *Server) handleRejectErrand(w http.ResponseWriter, r *http.Request) {
	e, ok := s.loadErrand(w, r)
	if !ok {
		return
	}
	res, err := s.reject(r.Context(), models.KindErrand, e.ID, lifecycle.Status(e.Status), s.Store.UpdateErrandStatus)
	if err != nil {
		if errors.Is(err, lifecycle.ErrNotRejectable) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSuggestErrand(w http.ResponseWriter, r *http.Request) {
	e, ok := s.loadErrand(w, r)
	if !ok {
		return
	}
	offer, found := s.Assigner.Suggest(models.KindErrand, e.ID, e.Pickup)
	if !found {
		http.Error(w, "no couriers available", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, offer)
}

func (s *Server) handleCourierLocation(w http.ResponseWriter, r *http.Request) {
	var c models.Courier
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	c.Online = true
	if s.Kafka != nil {
		if err := s.Kafka.PublishLocation(c); err != nil {
			s.logger.Warn("location publish failed", "courier", c.ID, "error", err)
		}
	}
	s.Geo.Upsert(c)
	observability.LocationSamples.Inc()
	w.WriteHeader(http.StatusNoContent)
}

var upgrader = websocket.Upgrader{}

func (s *Server) handleEntityWS(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	kind := models.EntityKind(vars["kind"])
	if kind != models.KindOrder && kind != models.KindErrand {
		http.Error(w, "unknown entity kind", http.StatusBadRequest)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	topic := notify.Topic(kind, vars["id"])
	sess := s.WSReg.Subscribe(topic, conn)
	go s.readUntilClosed(topic, sess, conn)
}

func (s *Server) handleCourierWS(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	topic := notify.CourierTopic(vars["courier_id"])
	sess := s.WSReg.Subscribe(topic, conn)
	go s.readUntilClosed(topic, sess, conn)
}

// readUntilClosed drains the socket so pings are handled and unsubscribes
// when the peer goes away.
func (s *Server) readUntilClosed(topic string, sess *notify.WSSession, conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.WSReg.Unsubscribe(topic, sess)
			_ = conn.Close()
			return
		}
	}
}

func (s *Server) loadOrder(w http.ResponseWriter, r *http.Request) (*models.Order, bool) {
	id := mux.Vars(r)["id"]
	o, err := s.Store.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "order not found", http.StatusNotFound)
		} else {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return nil, false
	}
	return o, true
}

func (s *Server) loadErrand(w http.ResponseWriter, r *http.Request) (*models.Errand, bool) {
	id := mux.Vars(r)["id"]
	e, err := s.Store.GetErrand(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "errand not found", http.StatusNotFound)
		} else {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return nil, false
	}
	return e, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func defaultPayMethod(m string) string {
	if m == "" {
		return "cash"
	}
	return m
}

func orderNumber(prefix string, at time.Time, id string) string {
	return fmt.Sprintf("%s-%s-%s", prefix, at.Format("20060102"), strings.ToUpper(id[:6]))
}

func newID() string { b := make([]byte, 8); _, _ = rand.Read(b); return hex.EncodeToString(b) }
