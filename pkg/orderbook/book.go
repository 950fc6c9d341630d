package orderbook

import "sync"

// Book is a single-instrument price-time-priority matching engine.
// Every public operation runs under one mutex, so a submit and the
// crossing loop it triggers are observed as one atomic step. Event
// sink calls happen inside that step, in execution order.
type Book struct {
	symbol string

	bids *bookSide
	asks *bookSide

	// resting orders by engine id; the level queue stays the only
	// ownership path, this is just an index for cancel/modify.
	orders map[uint64]*Order

	sink EventSink

	nextOrderID  uint64
	nextSeq      uint64
	nextTradeSeq uint64

	mu sync.Mutex
}

func NewBook(symbol string, sink EventSink) *Book {
	if sink == nil {
		sink = NopSink{}
	}
	return &Book{
		symbol:      symbol,
		bids:        newBidSide(),
		asks:        newAskSide(),
		orders:      make(map[uint64]*Order),
		sink:        sink,
		nextOrderID: 1,
		nextSeq:     1,
	}
}

func (b *Book) Symbol() string { return b.symbol }

// Submit runs an order through validation, the crossing loop and its
// type's disposition. The returned id is assigned even when the order
// is rejected or killed immediately; it is only cancellable while the
// order rests.
func (b *Book) Submit(side Side, typ OrderType, price int64, qty int64) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextOrderID
	b.nextOrderID++

	if qty <= 0 {
		b.sink.OrderRejected(id, RejectInvalidQuantity)
		return id, ErrInvalidQuantity
	}
	if typ == MARKET {
		price = marketBuyPrice
		if side == SELL {
			price = marketSellPrice
		}
	} else if price <= 0 {
		b.sink.OrderRejected(id, RejectInvalidPrice)
		return id, ErrInvalidPrice
	}

	own, opp := b.sides(side)

	// FOK decides feasibility before any mutation, under the same
	// lock as the execution, so the answer cannot go stale.
	if typ == FOK && opp.crossableQty(side, price, qty) < qty {
		b.sink.OrderRejected(id, RejectFOKUnsatisfiable)
		return id, ErrFOKUnsatisfiable
	}

	order := &Order{
		ID:    id,
		Side:  side,
		Price: price,
		Qty:   qty,
		Type:  typ,
		Seq:   b.nextSeq,
	}
	b.nextSeq++

	b.sink.OrderAccepted(id)
	b.match(order, opp)

	if order.Qty > 0 && typ == GTC {
		own.insert(order)
		b.orders[id] = order
		b.sink.OrderResting(id, order.Qty)
	}
	// FAK and MARKET remainders are discarded; FOK never reaches here
	// with a remainder once feasibility passed.

	return id, nil
}

// match is the crossing loop. Each trade executes at the resting
// order's price; within a level the earliest sequence fills first.
func (b *Book) match(incoming *Order, opp *bookSide) {
	for incoming.Qty > 0 {
		level := opp.best()
		if level == nil || !crosses(incoming.Side, incoming.Price, level.price) {
			break
		}

		resting := level.front()
		tradeQty := incoming.Qty
		if resting.Qty < tradeQty {
			tradeQty = resting.Qty
		}

		b.nextTradeSeq++
		b.sink.TradeExecuted(Trade{
			Symbol:          b.symbol,
			Price:           level.price,
			Qty:             tradeQty,
			RestingOrderID:  resting.ID,
			IncomingOrderID: incoming.ID,
			Seq:             b.nextTradeSeq,
		})

		incoming.Qty -= tradeQty
		if resting.Qty == tradeQty {
			level.popFront()
			delete(b.orders, resting.ID)
			if level.empty() {
				opp.removeLevel(level.price)
			}
		} else {
			level.fillFront(tradeQty)
		}
	}
}

// Cancel removes a resting order. Unknown or already-resolved ids are
// a no-op returning false.
func (b *Book) Cancel(orderID uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	order, ok := b.orders[orderID]
	if !ok {
		return false
	}
	own, _ := b.sides(order.Side)
	if !own.removeOrder(order) {
		panic("orderbook: indexed order missing from book side")
	}
	delete(b.orders, orderID)
	b.sink.OrderCancelled(orderID)
	return true
}

// Modify is cancel-then-reinsert as a brand-new arrival: the order
// gets a fresh sequence and loses queue position even when only the
// quantity changed, then the crossing loop runs again.
func (b *Book) Modify(orderID uint64, newPrice, newQty int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	order, ok := b.orders[orderID]
	if !ok {
		return false
	}
	if newQty <= 0 {
		b.sink.OrderRejected(orderID, RejectInvalidQuantity)
		return false
	}
	if newPrice <= 0 {
		b.sink.OrderRejected(orderID, RejectInvalidPrice)
		return false
	}

	own, opp := b.sides(order.Side)
	if !own.removeOrder(order) {
		panic("orderbook: indexed order missing from book side")
	}
	delete(b.orders, orderID)

	order.Price = newPrice
	order.Qty = newQty
	order.Seq = b.nextSeq
	b.nextSeq++

	b.match(order, opp)
	if order.Qty > 0 {
		own.insert(order)
		b.orders[orderID] = order
		b.sink.OrderResting(orderID, order.Qty)
	}
	return true
}

// Depth snapshots both sides best-to-worst. maxLevels <= 0 returns
// everything.
func (b *Book) Depth(maxLevels int) Depth {
	b.mu.Lock()
	defer b.mu.Unlock()

	return Depth{
		Symbol: b.symbol,
		Bids:   b.bids.depth(maxLevels),
		Asks:   b.asks.depth(maxLevels),
	}
}

func (b *Book) sides(side Side) (own, opp *bookSide) {
	if side == BUY {
		return b.bids, b.asks
	}
	return b.asks, b.bids
}
