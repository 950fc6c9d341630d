package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func newTestOrder() *Order {
	order := &Order{}
	order.UpdateAddOrder(&AddOrder{
		GatewayID:    "C1",
		Account:      "ACC1",
		Symbol:       "ABC",
		Side:         OrderSideBuy,
		Type:         OrderTypeLimit,
		TimeInForce:  OrderTimeInForceGTC,
		Price:        decimal.NewFromFloat(100.25),
		Quantity:     decimal.NewFromInt(100),
		TransactTime: time.Now(),
	})
	order.OrderID = NewOrderID("ABC", 1)
	return order
}

func TestOrderLifecycle(t *testing.T) {
	order := newTestOrder()
	assert.Equal(t, "ABC-1", order.OrderID)
	assert.Equal(t, OrderStatusPendingNew, order.Status)
	assert.Equal(t, int64(100), order.LeavesQuantity)
	assert.False(t, order.CanCancel())

	order.MarkNew()
	assert.Equal(t, OrderStatusNew, order.Status)
	assert.True(t, order.CanCancel())
	assert.False(t, order.IsEnd())

	order.ApplyFill(40, decimal.NewFromFloat(100.25))
	assert.Equal(t, OrderStatusPartiallyFilled, order.Status)
	assert.Equal(t, int64(40), order.CumQuantity)
	assert.Equal(t, int64(60), order.LeavesQuantity)
	assert.Equal(t, int64(40), order.LastQuantity)
	assert.True(t, order.CanCancel())

	order.ApplyFill(60, decimal.NewFromFloat(100.25))
	assert.Equal(t, OrderStatusFilled, order.Status)
	assert.Equal(t, int64(0), order.LeavesQuantity)
	assert.False(t, order.CanCancel())
	assert.True(t, order.IsEnd())
}

func TestOrderCancel(t *testing.T) {
	order := newTestOrder()
	order.MarkNew()
	order.ApplyFill(30, decimal.NewFromFloat(100.25))

	order.UpdateCancelOrder(&CancelOrder{GatewayID: "C2", OrigGatewayID: "C1"})
	assert.Equal(t, OrderStatusCanceled, order.Status)
	assert.Equal(t, "C2", order.GatewayID)
	assert.Equal(t, "C1", order.OrigGatewayID)
	assert.Equal(t, int64(0), order.LeavesQuantity)
	assert.Equal(t, int64(30), order.CumQuantity)
	assert.True(t, order.IsEnd())
}

func TestOrderModify(t *testing.T) {
	order := newTestOrder()
	order.MarkNew()
	order.ApplyFill(30, decimal.NewFromFloat(100.25))

	order.UpdateModifyOrder(&ModifyOrder{
		GatewayID:     "C2",
		OrigGatewayID: "C1",
		NewPrice:      decimal.NewFromFloat(101.00),
		NewQuantity:   decimal.NewFromInt(50),
	})
	assert.Equal(t, OrderStatusReplaced, order.Status)
	assert.Equal(t, int64(50), order.LeavesQuantity)
	// total = executed so far + the new working quantity
	assert.Equal(t, int64(80), order.Quantity)
	assert.True(t, order.CanModify())
}

func TestMarkRejectedAndExpired(t *testing.T) {
	rejected := newTestOrder()
	rejected.MarkRejected("quantity above limit")
	assert.Equal(t, OrderStatusRejected, rejected.Status)
	assert.Equal(t, "quantity above limit", rejected.Text)
	assert.True(t, rejected.IsEnd())

	expired := newTestOrder()
	expired.MarkNew()
	expired.ApplyFill(60, decimal.NewFromFloat(100.25))
	expired.MarkExpired()
	assert.Equal(t, OrderStatusExpired, expired.Status)
	assert.Equal(t, int64(0), expired.LeavesQuantity)
	assert.Equal(t, int64(60), expired.CumQuantity)
	assert.True(t, expired.IsEnd())
}
