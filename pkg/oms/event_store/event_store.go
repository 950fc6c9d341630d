package eventstore

import "github.com/joripage/matching-engine/pkg/oms/model"

// EventStore journals order events and tracks the gateway-id chain a
// cancel/replace flow builds (each amendment references the previous
// gateway id).
type EventStore interface {
	AddEvent(ev *model.OrderEvent)
	TrackGatewayChain(orderID, gatewayID, origGatewayID string)
	GetLatestGatewayID(orderID string) string
	GetOrigGatewayID(gatewayID string) string
	GetOrderID(gatewayID string) string
	ReconstructChain(gatewayID string) []string
	Events(orderID string) []*model.OrderEvent
	DeleteChainByOrderID(orderID string)
}
