package ingest

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/example/swiftrun/internal/models"
	"github.com/example/swiftrun/internal/notify"
)

// KafkaProducer publishes courier location samples and entity-change events
// for downstream consumers (geo index updater, analytics).
type KafkaProducer struct {
	locations *kafka.Writer
	events    *kafka.Writer
}

func NewKafkaProducer(brokers []string, locationTopic, eventTopic string) *KafkaProducer {
	mk := func(topic string) *kafka.Writer {
		return kafka.NewWriter(kafka.WriterConfig{Brokers: brokers, Topic: topic, Balancer: &kafka.LeastBytes{}})
	}
	return &KafkaProducer{locations: mk(locationTopic), events: mk(eventTopic)}
}

func (k *KafkaProducer) PublishLocation(c models.Courier) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	b, _ := json.Marshal(c)
	return k.locations.WriteMessages(ctx, kafka.Message{Key: []byte(c.ID), Value: b})
}

func (k *KafkaProducer) PublishEvent(ev notify.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	b, _ := json.Marshal(ev)
	return k.events.WriteMessages(ctx, kafka.Message{Key: []byte(ev.EntityID), Value: b})
}

func (k *KafkaProducer) Close() error {
	var firstErr error
	for _, w := range []*kafka.Writer{k.locations, k.events} {
		if w == nil {
			continue
		}
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
