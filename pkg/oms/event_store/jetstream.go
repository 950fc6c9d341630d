package eventstore

import (
	"encoding/json"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/joripage/matching-engine/pkg/oms/model"
)

// JetStreamEventStore keeps the in-memory mappings and additionally
// publishes every event to a JetStream subject for the persistence
// worker. Publishing is async; the stream, not this process, owns
// durability.
type JetStreamEventStore struct {
	*InMemoryEventStore
	js      nats.JetStreamContext
	subject string
}

func NewJetStreamEventStore(js nats.JetStreamContext, subject string) *JetStreamEventStore {
	return &JetStreamEventStore{
		InMemoryEventStore: NewInMemoryEventStore(),
		js:                 js,
		subject:            subject,
	}
}

func (s *JetStreamEventStore) AddEvent(ev *model.OrderEvent) {
	s.InMemoryEventStore.AddEvent(ev)

	data, err := json.Marshal(ev)
	if err != nil {
		zap.S().Errorf("marshal order event fail: %v", err)
		return
	}
	if _, err := s.js.PublishAsync(s.subject, data); err != nil {
		zap.S().Warnf("publish order event fail: %v", err)
	}
}
