package orderbook

import "math"

type Side string

const (
	BUY  Side = "BUY"
	SELL Side = "SELL"
)

// OrderType decides what happens to the unfilled part after crossing.
type OrderType string

const (
	GTC    OrderType = "GTC"    // remainder rests in the book
	FOK    OrderType = "FOK"    // fill completely right now or reject
	FAK    OrderType = "FAK"    // fill what is possible, discard the rest
	MARKET OrderType = "MARKET" // no price limit, remainder discarded
)

// Market orders cross at any price. Internally they carry a sentinel
// limit so the crossing loop needs no special case.
const (
	marketBuyPrice  = math.MaxInt64
	marketSellPrice = math.MinInt64
)

// Order is a resting or in-flight order. Price is in integer ticks;
// decimal conversion happens at the gateway, never here.
type Order struct {
	ID    uint64
	Side  Side
	Price int64
	Qty   int64 // remaining unfilled quantity
	Type  OrderType
	Seq   uint64 // arrival counter, FIFO tie-break within a level
}

// crosses reports whether an order with the given side and limit price
// trades against a resting level at restingPrice.
func crosses(side Side, limit, restingPrice int64) bool {
	if side == BUY {
		return limit >= restingPrice
	}
	return limit <= restingPrice
}
