package notify

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/example/swiftrun/internal/models"
)

// WSSession wraps one connected client; writes are serialized per socket.
type WSSession struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *WSSession) send(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(v)
}

// WSRegistry holds live subscriptions keyed by topic. One topic may have
// several subscribers (customer app, admin dashboard, courier app).
type WSRegistry struct {
	mu       sync.RWMutex
	sessions map[string][]*WSSession
}

func NewWSRegistry() *WSRegistry {
	return &WSRegistry{sessions: make(map[string][]*WSSession)}
}

func (r *WSRegistry) Subscribe(topic string, conn *websocket.Conn) *WSSession {
	s := &WSSession{conn: conn}
	r.mu.Lock()
	r.sessions[topic] = append(r.sessions[topic], s)
	r.mu.Unlock()
	return s
}

func (r *WSRegistry) Unsubscribe(topic string, session *WSSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	subs := r.sessions[topic]
	for i, s := range subs {
		if s == session {
			r.sessions[topic] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(r.sessions[topic]) == 0 {
		delete(r.sessions, topic)
	}
}

// publish fans a payload out to every subscriber of the topic. Dead
// sessions get an error from their own write; cleanup happens when the read
// loop notices the closed socket.
func (r *WSRegistry) publish(topic string, v interface{}) error {
	r.mu.RLock()
	subs := make([]*WSSession, len(r.sessions[topic]))
	copy(subs, r.sessions[topic])
	r.mu.RUnlock()
	var firstErr error
	for _, s := range subs {
		if err := s.send(v); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// EntityChanged implements Notifier over the websocket registry.
func (r *WSRegistry) EntityChanged(ev Event) error {
	return r.publish(Topic(ev.Kind, ev.EntityID), ev)
}

// Offer pushes a job suggestion to the courier's own channel.
func (r *WSRegistry) Offer(offer models.CourierOffer) error {
	return r.publish(CourierTopic(offer.CourierID), offer)
}
