package orderbook

type RejectReason string

const (
	RejectFOKUnsatisfiable RejectReason = "FOKUnsatisfiable"
	RejectInvalidQuantity  RejectReason = "InvalidQuantity"
	RejectInvalidPrice     RejectReason = "InvalidPrice"
)

// Trade is one execution. Price is the resting order's price: price
// improvement always goes to the taker. Seq increases by one per
// execution within a book, so a consumer can replay deterministically.
type Trade struct {
	Symbol          string
	Price           int64
	Qty             int64
	RestingOrderID  uint64
	IncomingOrderID uint64
	Seq             uint64
}

// EventSink receives book notifications synchronously, in execution
// order, from inside the book's critical section. Implementations must
// not call back into the book.
type EventSink interface {
	TradeExecuted(t Trade)
	OrderAccepted(orderID uint64)
	OrderRejected(orderID uint64, reason RejectReason)
	OrderCancelled(orderID uint64)
	OrderResting(orderID uint64, remainingQty int64)
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) TradeExecuted(Trade)                 {}
func (NopSink) OrderAccepted(uint64)                {}
func (NopSink) OrderRejected(uint64, RejectReason)  {}
func (NopSink) OrderCancelled(uint64)               {}
func (NopSink) OrderResting(uint64, int64)          {}

// DepthLevel is one row of a side snapshot.
type DepthLevel struct {
	Price  int64
	Qty    int64
	Orders int
}

// Depth is a point-in-time view of both sides, best-to-worst.
type Depth struct {
	Symbol string
	Bids   []DepthLevel
	Asks   []DepthLevel
}
