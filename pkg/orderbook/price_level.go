package orderbook

import "github.com/gammazero/deque"

// priceLevel is the FIFO queue of resting orders at one price. qty is
// the aggregate remaining quantity, kept in sync on every mutation so
// FOK feasibility and depth snapshots never walk the queue.
type priceLevel struct {
	price  int64
	orders deque.Deque[*Order]
	qty    int64
}

func newPriceLevel(price int64) *priceLevel {
	return &priceLevel{price: price}
}

func (l *priceLevel) push(o *Order) {
	l.orders.PushBack(o)
	l.qty += o.Qty
}

func (l *priceLevel) front() *Order {
	return l.orders.Front()
}

func (l *priceLevel) popFront() *Order {
	o := l.orders.PopFront()
	l.qty -= o.Qty
	return o
}

// fillFront reduces the head order in place during a partial fill.
func (l *priceLevel) fillFront(qty int64) {
	o := l.orders.Front()
	o.Qty -= qty
	l.qty -= qty
	if o.Qty < 0 || l.qty < 0 {
		panic("orderbook: negative quantity at price level")
	}
}

// remove takes an order out of the queue wherever it sits.
func (l *priceLevel) remove(orderID uint64) bool {
	for i := 0; i < l.orders.Len(); i++ {
		if o := l.orders.At(i); o.ID == orderID {
			l.orders.Remove(i)
			l.qty -= o.Qty
			return true
		}
	}
	return false
}

func (l *priceLevel) empty() bool {
	return l.orders.Len() == 0
}
