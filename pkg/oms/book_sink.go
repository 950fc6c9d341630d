package oms

import (
	"sync"

	"github.com/joripage/matching-engine/pkg/orderbook"
)

type engineEventKind int

const (
	evTrade engineEventKind = iota
	evAccepted
	evRejected
	evCancelled
	evResting
)

type engineEvent struct {
	kind      engineEventKind
	trade     orderbook.Trade
	orderID   uint64
	reason    orderbook.RejectReason
	remaining int64
}

// bookSink buffers engine events raised during one book call so the
// OMS can process them outside the book's critical section, still in
// execution order. The mutex also serializes OMS calls per symbol.
type bookSink struct {
	mu  sync.Mutex
	buf []engineEvent
}

func (s *bookSink) run(fn func()) []engineEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buf = s.buf[:0]
	fn()
	out := make([]engineEvent, len(s.buf))
	copy(out, s.buf)
	return out
}

func (s *bookSink) TradeExecuted(t orderbook.Trade) {
	s.buf = append(s.buf, engineEvent{kind: evTrade, trade: t})
}

func (s *bookSink) OrderAccepted(orderID uint64) {
	s.buf = append(s.buf, engineEvent{kind: evAccepted, orderID: orderID})
}

func (s *bookSink) OrderRejected(orderID uint64, reason orderbook.RejectReason) {
	s.buf = append(s.buf, engineEvent{kind: evRejected, orderID: orderID, reason: reason})
}

func (s *bookSink) OrderCancelled(orderID uint64) {
	s.buf = append(s.buf, engineEvent{kind: evCancelled, orderID: orderID})
}

func (s *bookSink) OrderResting(orderID uint64, remainingQty int64) {
	s.buf = append(s.buf, engineEvent{kind: evResting, orderID: orderID, remaining: remainingQty})
}
