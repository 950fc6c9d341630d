package model

import (
	"fmt"
	"time"
)

// OrderEvent is one row of the order audit trail, journaled per state
// transition and drained to the database by the worker.
type OrderEvent struct {
	EventID       string `gorm:"primaryKey"`
	OrderID       string `gorm:"index"`
	GatewayID     string
	OrigGatewayID string
	ExecType      OrderExecType
	Status        OrderStatus
	Qty           int64
	Price         float64
	Timestamp     time.Time
}

func NewOrderEvent(order Order, ts time.Time) *OrderEvent {
	return &OrderEvent{
		EventID:       NewEventID(order.OrderID, order.ExecID, order.Status),
		OrderID:       order.OrderID,
		GatewayID:     order.GatewayID,
		OrigGatewayID: order.OrigGatewayID,
		ExecType:      order.ExecType,
		Status:        order.Status,
		Qty:           order.LastQuantity,
		Price:         order.LastPrice.InexactFloat64(),
		Timestamp:     ts,
	}
}

func NewEventID(orderID, execID string, status OrderStatus) string {
	return fmt.Sprintf("%s-%s-%s", orderID, execID, status)
}
