package lifecycle

import (
	"fmt"

	"github.com/example/swiftrun/internal/models"
)

// Status is a lifecycle stage of an order or errand.
type Status string

const (
	StatusPending        Status = "pending"
	StatusConfirmed      Status = "confirmed"
	StatusAccepted       Status = "accepted"
	StatusPurchasing     Status = "purchasing"
	StatusPreparing      Status = "preparing"
	StatusReadyForPickup Status = "ready_for_pickup"
	StatusPickedUp       Status = "picked_up"
	StatusInTransit      Status = "in_transit"
	StatusDelivered      Status = "delivered"

	StatusAtPickup       Status = "at_pickup"
	StatusPickupComplete Status = "pickup_complete"
	StatusEnRoute        Status = "en_route"
	StatusCompleted      Status = "completed"

	StatusCancelled Status = "cancelled"
)

// orderChain and errandChain map each status to its single successor.
// Statuses absent from the map (terminal or off-chain) have no successor;
// advancing them is an informational no-op. confirmed and cancelled are
// reached only through the explicit confirm/reject actions, never by
// advancing.
var orderChain = map[Status]Status{
	StatusPending:        StatusAccepted,
	StatusAccepted:       StatusPurchasing,
	StatusPurchasing:     StatusPreparing,
	StatusPreparing:      StatusReadyForPickup,
	StatusReadyForPickup: StatusPickedUp,
	StatusPickedUp:       StatusInTransit,
	StatusInTransit:      StatusDelivered,
}

var errandChain = map[Status]Status{
	StatusPending:        StatusAccepted,
	StatusAccepted:       StatusAtPickup,
	StatusAtPickup:       StatusPickupComplete,
	StatusPickupComplete: StatusEnRoute,
	StatusEnRoute:        StatusCompleted,
}

// rejectable lists the states an explicit reject may leave from. Reject is
// the one non-linear edge: it jumps straight to cancelled.
var orderRejectable = map[Status]bool{
	StatusPending:   true,
	StatusConfirmed: true,
	StatusAccepted:  true,
}

var errandRejectable = map[Status]bool{
	StatusPending:  true,
	StatusAccepted: true,
}

var orderLabels = map[Status]string{
	StatusPending:        "Pending",
	StatusConfirmed:      "Confirmed",
	StatusAccepted:       "Accepted",
	StatusPurchasing:     "Purchasing",
	StatusPreparing:      "Preparing",
	StatusReadyForPickup: "Ready for Pickup",
	StatusPickedUp:       "Picked Up",
	StatusInTransit:      "In Transit",
	StatusDelivered:      "Delivered",
	StatusCancelled:      "Cancelled",
}

var errandLabels = map[Status]string{
	StatusPending:        "Pending",
	StatusAccepted:       "Accepted",
	StatusAtPickup:       "At Pickup",
	StatusPickupComplete: "Pickup Complete",
	StatusEnRoute:        "En Route",
	StatusCompleted:      "Completed",
	StatusCancelled:      "Cancelled",
}

// stampColumns map each reachable status to the timestamp column stamped
// when the entity enters it.
var stampColumns = map[Status]string{
	StatusConfirmed:      "confirmed_at",
	StatusAccepted:       "accepted_at",
	StatusPurchasing:     "purchasing_at",
	StatusPreparing:      "preparing_at",
	StatusReadyForPickup: "ready_at",
	StatusPickedUp:       "picked_up_at",
	StatusInTransit:      "in_transit_at",
	StatusDelivered:      "delivered_at",
	StatusAtPickup:       "at_pickup_at",
	StatusPickupComplete: "pickup_complete_at",
	StatusEnRoute:        "en_route_at",
	StatusCompleted:      "completed_at",
	StatusCancelled:      "cancelled_at",
}

var (
	ErrNotRejectable  = fmt.Errorf("status cannot be rejected from here")
	ErrNotAcceptable  = fmt.Errorf("entity is not pending or already assigned")
	ErrNotConfirmable = fmt.Errorf("only a pending order can be confirmed")
)

func chain(kind models.EntityKind) map[Status]Status {
	if kind == models.KindErrand {
		return errandChain
	}
	return orderChain
}

// Next looks up the successor of s in the kind's chain. The second return
// is false when s has no successor (terminal or off-chain); callers treat
// that as "already at final status", not an error.
func Next(kind models.EntityKind, s Status) (Status, bool) {
	n, ok := chain(kind)[s]
	return n, ok
}

// Terminal reports whether s permanently stops the chain.
func Terminal(s Status) bool {
	switch s {
	case StatusDelivered, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanReject reports whether an explicit reject is allowed from s.
func CanReject(kind models.EntityKind, s Status) bool {
	if kind == models.KindErrand {
		return errandRejectable[s]
	}
	return orderRejectable[s]
}

// Reject jumps to cancelled when allowed.
func Reject(kind models.EntityKind, s Status) (Status, error) {
	if !CanReject(kind, s) {
		return s, fmt.Errorf("reject %s/%s: %w", kind, s, ErrNotRejectable)
	}
	return StatusCancelled, nil
}

// CanAccept reports whether an actor may claim the entity: it must still be
// pending and nobody may be assigned yet. Acceptance assigns only; it does
// not move the status.
func CanAccept(s Status, assignee string) bool {
	return s == StatusPending && assignee == ""
}

// Confirm is the order-only explicit bump from pending to confirmed. The
// errand flow has no separate confirm action; its accept covers both.
func Confirm(kind models.EntityKind, s Status) (Status, error) {
	if kind != models.KindOrder || s != StatusPending {
		return s, fmt.Errorf("confirm %s/%s: %w", kind, s, ErrNotConfirmable)
	}
	return StatusConfirmed, nil
}

// Label returns the display label for s, falling back to the raw status.
func Label(kind models.EntityKind, s Status) string {
	var l string
	if kind == models.KindErrand {
		l = errandLabels[s]
	} else {
		l = orderLabels[s]
	}
	if l == "" {
		return string(s)
	}
	return l
}

// StampColumn returns the timestamp column written when an entity enters s,
// or "" when no stamp applies (pending is stamped by created_at).
func StampColumn(s Status) string {
	return stampColumns[s]
}
