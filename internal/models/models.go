package models

import "time"

type Coord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// EntityKind distinguishes the two transaction types the marketplace runs.
type EntityKind string

const (
	KindOrder  EntityKind = "order"
	KindErrand EntityKind = "errand"
)

type LineItem struct {
	ProductName string `json:"product_name"`
	UnitPrice   int64  `json:"unit_price"`
	Quantity    int    `json:"quantity"`
}

// Order is a food/goods delivery transaction with line items.
// All amounts are whole GYD.
type Order struct {
	ID           string     `json:"id"`
	Number       string     `json:"order_number"`
	CustomerID   string     `json:"customer_id"`
	DriverID     string     `json:"driver_id,omitempty"`
	StoreID      string     `json:"store_id"`
	Items        []LineItem `json:"items"`
	Subtotal     int64      `json:"subtotal"`
	DeliveryFee  int64      `json:"delivery_fee"`
	ServiceFee   int64      `json:"service_fee"`
	Tax          int64      `json:"tax"`
	Discount     int64      `json:"discount"`
	Total        int64      `json:"total"`
	Currency     string     `json:"currency"`
	PayMethod    string     `json:"payment_method"`
	PayStatus    string     `json:"payment_status"`
	PayRef       string     `json:"payment_ref,omitempty"`
	Status       string     `json:"status"`
	ContactName  string     `json:"contact_name,omitempty"`
	ContactPhone string     `json:"contact_phone,omitempty"`
	Address      string     `json:"delivery_address"`
	Dropoff      Coord      `json:"dropoff"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Errand is a fixed-scope pickup/drop-off task with no line items.
type Errand struct {
	ID            string    `json:"id"`
	Number        string    `json:"errand_number"`
	CustomerID    string    `json:"customer_id"`
	RunnerID      string    `json:"runner_id,omitempty"`
	CategoryID    string    `json:"category_id"`
	SubcategoryID string    `json:"subcategory_id,omitempty"`
	PickupAddr    string    `json:"pickup_address"`
	DropoffAddr   string    `json:"dropoff_address"`
	Pickup        Coord     `json:"pickup"`
	Dropoff       Coord     `json:"dropoff"`
	Instructions  string    `json:"instructions,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	Description   string    `json:"description,omitempty"`
	ASAP          bool      `json:"asap"`
	ScheduledFor  time.Time `json:"scheduled_for,omitempty"`
	BasePrice     int64     `json:"base_price"`
	DistanceFee   int64     `json:"distance_fee"`
	ComplexityFee int64     `json:"complexity_fee"`
	Total         int64     `json:"total_price"`
	PayMethod     string    `json:"payment_method"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ErrandCategory is static reference data; the service only reads it.
type ErrandCategory struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Icon          string `json:"icon"`
	BasePrice     int64  `json:"base_price,omitempty"`
	EstimatedMins int    `json:"estimated_mins,omitempty"`
}

type ErrandSubcategory struct {
	ID         string `json:"id"`
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
	BasePrice  int64  `json:"base_price,omitempty"`
}

// Courier is a driver or errand runner pushing location samples.
type Courier struct {
	ID      string    `json:"id"`
	Loc     Coord     `json:"loc"`
	Rating  float64   `json:"rating"` // 0..5
	Online  bool      `json:"online"`
	Updated time.Time `json:"updated"`
}

// CourierOffer is pushed to a courier when a job is suggested to them.
type CourierOffer struct {
	Kind      EntityKind `json:"kind"`
	EntityID  string     `json:"entity_id"`
	CourierID string     `json:"courier_id"`
	ETA       float64    `json:"eta_seconds"`
	Cost      float64    `json:"cost"`
}

// OrderTotal recomputes the money invariant for an order:
// subtotal + delivery fee + tax - discount.
func OrderTotal(o *Order) int64 {
	return o.Subtotal + o.DeliveryFee + o.Tax - o.Discount
}
