package notify

import (
	"fmt"
	"time"

	"github.com/example/swiftrun/internal/models"
)

// Event tells subscribers an entity changed; clients re-fetch on receipt
// rather than trusting the payload as the full record.
type Event struct {
	Kind     models.EntityKind `json:"kind"`
	EntityID string            `json:"entity_id"`
	Status   string            `json:"status"`
	At       time.Time         `json:"at"`
}

// Notifier is the realtime change channel. Three strategies implement it
// (websocket registry, webhook poster, noop); the server picks one at
// startup from config rather than per-platform source files.
type Notifier interface {
	EntityChanged(ev Event) error
}

// Topic is the per-entity subscription key.
func Topic(kind models.EntityKind, id string) string {
	return fmt.Sprintf("%s/%s", kind, id)
}

// CourierTopic keys a courier's own offer channel.
func CourierTopic(courierID string) string {
	return "courier/" + courierID
}

// Noop drops all events; the fallback when no realtime channel is wanted.
type Noop struct{}

func (Noop) EntityChanged(Event) error { return nil }
