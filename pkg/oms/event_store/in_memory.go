package eventstore

import (
	"sync"

	"github.com/joripage/matching-engine/pkg/oms/model"
)

type InMemoryEventStore struct {
	mu              sync.RWMutex
	orders          map[string][]*model.OrderEvent
	latestGatewayID map[string]string // OrderID -> current GatewayID
	gatewayChain    map[string]string // GatewayID -> OrigGatewayID
	orderIDByGtw    map[string]string // GatewayID -> OrderID
}

func NewInMemoryEventStore() *InMemoryEventStore {
	return &InMemoryEventStore{
		orders:          make(map[string][]*model.OrderEvent),
		latestGatewayID: make(map[string]string),
		gatewayChain:    make(map[string]string),
		orderIDByGtw:    make(map[string]string),
	}
}

func (s *InMemoryEventStore) AddEvent(ev *model.OrderEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders[ev.OrderID] = append(s.orders[ev.OrderID], ev)
	s.trackLocked(ev.OrderID, ev.GatewayID, ev.OrigGatewayID)
}

func (s *InMemoryEventStore) TrackGatewayChain(orderID, gatewayID, origGatewayID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.trackLocked(orderID, gatewayID, origGatewayID)
}

func (s *InMemoryEventStore) trackLocked(orderID, gatewayID, origGatewayID string) {
	if gatewayID == "" {
		return
	}
	s.latestGatewayID[orderID] = gatewayID
	s.orderIDByGtw[gatewayID] = orderID
	if origGatewayID != "" {
		s.gatewayChain[gatewayID] = origGatewayID
	}
}

func (s *InMemoryEventStore) GetLatestGatewayID(orderID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.latestGatewayID[orderID]
}

func (s *InMemoryEventStore) GetOrigGatewayID(gatewayID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.gatewayChain[gatewayID]
}

func (s *InMemoryEventStore) GetOrderID(gatewayID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.orderIDByGtw[gatewayID]
}

// ReconstructChain walks backward to the original gateway id.
func (s *InMemoryEventStore) ReconstructChain(gatewayID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var chain []string
	curr := gatewayID
	for curr != "" {
		chain = append(chain, curr)
		curr = s.gatewayChain[curr]
	}
	return chain
}

func (s *InMemoryEventStore) Events(orderID string) []*model.OrderEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]*model.OrderEvent, len(s.orders[orderID]))
	copy(events, s.orders[orderID])
	return events
}

func (s *InMemoryEventStore) DeleteChainByOrderID(orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	gatewayID := s.latestGatewayID[orderID]
	for gatewayID != "" {
		next := s.gatewayChain[gatewayID]
		delete(s.gatewayChain, gatewayID)
		delete(s.orderIDByGtw, gatewayID)
		gatewayID = next
	}
	delete(s.latestGatewayID, orderID)
	delete(s.orders, orderID)
}
