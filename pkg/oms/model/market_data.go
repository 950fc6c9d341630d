package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeReport is the outbound trade feed record. MakerOrderID is the
// resting order, TakerOrderID the incoming one; Price is the maker's.
type TradeReport struct {
	Symbol       string          `json:"symbol"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int64           `json:"quantity"`
	MakerOrderID string          `json:"maker_order_id"`
	TakerOrderID string          `json:"taker_order_id"`
	Sequence     uint64          `json:"sequence"`
	Timestamp    time.Time       `json:"timestamp"`
}

type DepthRow struct {
	Price    decimal.Decimal `json:"price"`
	Quantity int64           `json:"quantity"`
	Orders   int             `json:"orders"`
}

// DepthSnapshot lists both sides best-to-worst.
type DepthSnapshot struct {
	Symbol    string     `json:"symbol"`
	Bids      []DepthRow `json:"bids"`
	Asks      []DepthRow `json:"asks"`
	Timestamp time.Time  `json:"timestamp"`
}
