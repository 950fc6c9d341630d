package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPendingNew      OrderStatus = "PendingNew"
	OrderStatusNew             OrderStatus = "New"
	OrderStatusPartiallyFilled OrderStatus = "PartiallyFilled"
	OrderStatusFilled          OrderStatus = "Filled"
	OrderStatusCanceled        OrderStatus = "Canceled"
	OrderStatusReplaced        OrderStatus = "Replaced"
	OrderStatusPendingCancel   OrderStatus = "PendingCancel"
	OrderStatusPendingReplace  OrderStatus = "PendingReplace"
	OrderStatusRejected        OrderStatus = "Rejected"
	OrderStatusExpired         OrderStatus = "Expired"
)

type OrderExecType string

const (
	ExecTypePendingNew OrderExecType = "PendingNew"
	ExecTypeNew        OrderExecType = "New"
	ExecTypeTrade      OrderExecType = "Trade"
	ExecTypeCanceled   OrderExecType = "Canceled"
	ExecTypeReplaced   OrderExecType = "Replaced"
	ExecTypeRejected   OrderExecType = "Rejected"
	ExecTypeExpired    OrderExecType = "Expired"
)

type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

type OrderType string

const (
	OrderTypeLimit  OrderType = "LIMIT"
	OrderTypeMarket OrderType = "MARKET"
)

type OrderTimeInForce string

const (
	OrderTimeInForceDAY OrderTimeInForce = "DAY"
	OrderTimeInForceGTC OrderTimeInForce = "GTC"
	OrderTimeInForceIOC OrderTimeInForce = "IOC"
	OrderTimeInForceFOK OrderTimeInForce = "FOK"
)

// Order is the gateway-facing order state. Prices are decimal here;
// the engine only ever sees integer ticks.
type Order struct {
	OrderID  string `gorm:"primaryKey"` // "<symbol>-<engine id>", unique across books
	EngineID uint64 // id inside the symbol's book

	GatewayID     string
	OrigGatewayID string

	Account      string
	Symbol       string
	SecurityID   string
	Side         OrderSide
	Type         OrderType
	TimeInForce  OrderTimeInForce
	Price        decimal.Decimal
	Quantity     int64
	TransactTime time.Time

	ExecID         string
	Status         OrderStatus
	ExecType       OrderExecType
	Text           string
	CumQuantity    int64
	LeavesQuantity int64
	LastQuantity   int64
	LastPrice      decimal.Decimal
}

func NewOrderID(symbol string, engineID uint64) string {
	return fmt.Sprintf("%s-%d", symbol, engineID)
}

func (o *Order) UpdateAddOrder(add *AddOrder) {
	o.GatewayID = add.GatewayID
	o.Account = add.Account
	o.Symbol = add.Symbol
	o.SecurityID = add.SecurityID
	o.Side = add.Side
	o.Type = add.Type
	o.TimeInForce = add.TimeInForce
	o.Price = add.Price
	o.Quantity = add.Quantity.IntPart()
	o.TransactTime = add.TransactTime

	o.Status = OrderStatusPendingNew
	o.ExecType = ExecTypePendingNew
	o.LeavesQuantity = o.Quantity
}

func (o *Order) MarkNew() {
	o.Status = OrderStatusNew
	o.ExecType = ExecTypeNew
}

func (o *Order) MarkRejected(reason string) {
	o.Status = OrderStatusRejected
	o.ExecType = ExecTypeRejected
	o.Text = reason
	o.LeavesQuantity = 0
}

// MarkExpired is the terminal state of an unfilled FAK/market
// remainder: executed what it could, the rest never rested.
func (o *Order) MarkExpired() {
	o.Status = OrderStatusExpired
	o.ExecType = ExecTypeExpired
	o.LeavesQuantity = 0
}

func (o *Order) ApplyFill(qty int64, price decimal.Decimal) {
	o.CumQuantity += qty
	o.LeavesQuantity -= qty
	o.LastQuantity = qty
	o.LastPrice = price
	o.ExecType = ExecTypeTrade
	if o.LeavesQuantity <= 0 {
		o.Status = OrderStatusFilled
	} else {
		o.Status = OrderStatusPartiallyFilled
	}
}

func (o *Order) UpdateCancelOrder(cancel *CancelOrder) {
	o.GatewayID = cancel.GatewayID
	o.OrigGatewayID = cancel.OrigGatewayID
	o.Status = OrderStatusCanceled
	o.ExecType = ExecTypeCanceled
	o.LeavesQuantity = 0
}

func (o *Order) UpdateModifyOrder(modify *ModifyOrder) {
	o.GatewayID = modify.GatewayID
	o.OrigGatewayID = modify.OrigGatewayID
	o.Price = modify.NewPrice
	o.Quantity = o.CumQuantity + modify.NewQuantity.IntPart()
	o.LeavesQuantity = modify.NewQuantity.IntPart()
	o.Status = OrderStatusReplaced
	o.ExecType = ExecTypeReplaced
}

func (o *Order) CanCancel() bool {
	switch o.Status {
	case OrderStatusNew, OrderStatusPartiallyFilled, OrderStatusReplaced:
		return true
	}
	return false
}

func (o *Order) CanModify() bool {
	return o.CanCancel()
}

func (o *Order) IsEnd() bool {
	switch o.Status {
	case OrderStatusFilled, OrderStatusCanceled, OrderStatusRejected, OrderStatusExpired:
		return true
	}
	return false
}
