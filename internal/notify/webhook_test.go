package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/swiftrun/internal/models"
)

func TestWebhookPostsEvent(t *testing.T) {
	var got Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	wh := NewWebhook(srv.URL)
	ev := Event{Kind: models.KindOrder, EntityID: "o1", Status: "accepted", At: time.Now()}
	if err := wh.EntityChanged(ev); err != nil {
		t.Fatal(err)
	}
	if got.EntityID != "o1" || got.Status != "accepted" {
		t.Fatalf("unexpected event: %+v", got)
	}
}

func TestWebhookErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	wh := NewWebhook(srv.URL)
	if err := wh.EntityChanged(Event{Kind: models.KindErrand, EntityID: "e1"}); err == nil {
		t.Fatal("expected error on non-2xx response")
	}
}

func TestTopic(t *testing.T) {
	if Topic(models.KindOrder, "abc") != "order/abc" {
		t.Fatalf("got %s", Topic(models.KindOrder, "abc"))
	}
	if CourierTopic("c9") != "courier/c9" {
		t.Fatalf("got %s", CourierTopic("c9"))
	}
}
