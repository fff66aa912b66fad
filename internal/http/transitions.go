package httpapi

import (
	"context"
	"time"

	"github.com/example/swiftrun/internal/lifecycle"
	"github.com/example/swiftrun/internal/models"
	"github.com/example/swiftrun/internal/notify"
	"github.com/example/swiftrun/internal/observability"
)

// transitionResult is the common response body for the lifecycle endpoints.
// Changed=false with an empty Message never happens: a no-op always says why.
type transitionResult struct {
	Changed bool   `json:"changed"`
	Status  string `json:"status"`
	Label   string `json:"label"`
	Next    string `json:"next,omitempty"`
	Message string `json:"message,omitempty"`
}

// statusWriter persists a status change for one entity kind; both stores
// satisfy it through the small adapters below.
type statusWriter func(ctx context.Context, id, status, stampColumn string, at time.Time) error

// applyTransition writes the new status with its timestamp stamp, emits the
// realtime event, bumps the metric, and builds the response.
func (s *Server) applyTransition(ctx context.Context, kind models.EntityKind, id string, to lifecycle.Status, write statusWriter) (transitionResult, error) {
	now := time.Now().UTC()
	if err := write(ctx, id, string(to), lifecycle.StampColumn(to), now); err != nil {
		return transitionResult{}, err
	}
	observability.StatusTransitions.WithLabelValues(string(kind), string(to)).Inc()
	ev := notify.Event{Kind: kind, EntityID: id, Status: string(to), At: now}
	if err := s.Notifier.EntityChanged(ev); err != nil {
		s.logger.Warn("notify failed", "kind", kind, "id", id, "error", err)
	}
	if s.Kafka != nil {
		if err := s.Kafka.PublishEvent(ev); err != nil {
			s.logger.Warn("event publish failed", "kind", kind, "id", id, "error", err)
		}
	}
	res := transitionResult{Changed: true, Status: string(to), Label: lifecycle.Label(kind, to)}
	if n, ok := lifecycle.Next(kind, to); ok {
		res.Next = string(n)
	}
	return res, nil
}

// advance moves an entity one step along its chain. A terminal or off-chain
// status is an informational no-op, not an error.
func (s *Server) advance(ctx context.Context, kind models.EntityKind, id string, current lifecycle.Status, write statusWriter) (transitionResult, error) {
	next, ok := lifecycle.Next(kind, current)
	if !ok {
		observability.TransitionNoops.WithLabelValues(string(kind)).Inc()
		return transitionResult{
			Changed: false,
			Status:  string(current),
			Label:   lifecycle.Label(kind, current),
			Message: "already at final status",
		}, nil
	}
	return s.applyTransition(ctx, kind, id, next, write)
}

// reject jumps the entity to cancelled when its current status allows it.
func (s *Server) reject(ctx context.Context, kind models.EntityKind, id string, current lifecycle.Status, write statusWriter) (transitionResult, error) {
	to, err := lifecycle.Reject(kind, current)
	if err != nil {
		return transitionResult{}, err
	}
	return s.applyTransition(ctx, kind, id, to, write)
}
