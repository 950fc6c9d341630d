package orderbook

import (
	"fmt"
	"reflect"
	"sync"
	"testing"
)

// recordSink captures events in emission order.
type recordSink struct {
	trades    []Trade
	accepted  []uint64
	cancelled []uint64
	resting   map[uint64]int64
	rejected  map[uint64]RejectReason
}

func newRecordSink() *recordSink {
	return &recordSink{
		resting:  make(map[uint64]int64),
		rejected: make(map[uint64]RejectReason),
	}
}

func (s *recordSink) TradeExecuted(t Trade)                        { s.trades = append(s.trades, t) }
func (s *recordSink) OrderAccepted(id uint64)                      { s.accepted = append(s.accepted, id) }
func (s *recordSink) OrderRejected(id uint64, reason RejectReason) { s.rejected[id] = reason }
func (s *recordSink) OrderCancelled(id uint64)                     { s.cancelled = append(s.cancelled, id) }
func (s *recordSink) OrderResting(id uint64, qty int64)            { s.resting[id] = qty }

func TestRestingThenCross(t *testing.T) {
	sink := newRecordSink()
	book := NewBook("ABC", sink)

	buyID, err := book.Submit(BUY, GTC, 100, 10)
	if err != nil {
		t.Fatalf("submit buy: %v", err)
	}
	if len(sink.trades) != 0 {
		t.Fatalf("expected no trades on empty book, got %d", len(sink.trades))
	}
	if sink.resting[buyID] != 10 {
		t.Fatalf("expected buy resting with qty 10, got %d", sink.resting[buyID])
	}

	sellID, err := book.Submit(SELL, GTC, 99, 5)
	if err != nil {
		t.Fatalf("submit sell: %v", err)
	}
	if len(sink.trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(sink.trades))
	}
	trade := sink.trades[0]
	if trade.Price != 100 {
		t.Errorf("trade must execute at resting price 100, got %d", trade.Price)
	}
	if trade.Qty != 5 || trade.RestingOrderID != buyID || trade.IncomingOrderID != sellID {
		t.Errorf("unexpected trade: %+v", trade)
	}

	depth := book.Depth(0)
	if len(depth.Bids) != 1 || depth.Bids[0].Qty != 5 || depth.Bids[0].Price != 100 {
		t.Errorf("expected buy remainder 5@100 resting, got %+v", depth.Bids)
	}
	if len(depth.Asks) != 0 {
		t.Errorf("expected empty ask side, got %+v", depth.Asks)
	}
}

func TestFIFOWithinLevel(t *testing.T) {
	sink := newRecordSink()
	book := NewBook("ABC", sink)

	s1, _ := book.Submit(SELL, GTC, 99, 5)
	s2, _ := book.Submit(SELL, GTC, 99, 5)

	book.Submit(BUY, GTC, 100, 7)

	if len(sink.trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(sink.trades))
	}
	if sink.trades[0].RestingOrderID != s1 || sink.trades[0].Qty != 5 {
		t.Errorf("first trade must fully fill the earlier order: %+v", sink.trades[0])
	}
	if sink.trades[1].RestingOrderID != s2 || sink.trades[1].Qty != 2 {
		t.Errorf("second trade must partially fill the later order: %+v", sink.trades[1])
	}
	if sink.trades[0].Price != 99 || sink.trades[1].Price != 99 {
		t.Errorf("trades must execute at resting price 99: %+v", sink.trades)
	}

	depth := book.Depth(0)
	if len(depth.Asks) != 1 || depth.Asks[0].Qty != 3 || depth.Asks[0].Orders != 1 {
		t.Errorf("expected 3 left at ask level, got %+v", depth.Asks)
	}
}

func TestPricePriorityAcrossLevels(t *testing.T) {
	sink := newRecordSink()
	book := NewBook("ABC", sink)

	book.Submit(SELL, GTC, 103, 5)
	book.Submit(SELL, GTC, 101, 5)
	book.Submit(SELL, GTC, 102, 5)

	book.Submit(BUY, GTC, 105, 15)

	if len(sink.trades) != 3 {
		t.Fatalf("expected 3 trades, got %d", len(sink.trades))
	}
	want := []int64{101, 102, 103}
	for i, trade := range sink.trades {
		if trade.Price != want[i] {
			t.Errorf("trade %d expected price %d, got %d", i, want[i], trade.Price)
		}
		if trade.Seq != uint64(i+1) {
			t.Errorf("trade %d expected seq %d, got %d", i, i+1, trade.Seq)
		}
	}
}

func TestFOKRejectedLeavesBookUntouched(t *testing.T) {
	sink := newRecordSink()
	book := NewBook("ABC", sink)

	book.Submit(SELL, GTC, 100, 4)
	book.Submit(SELL, GTC, 101, 3)
	before := book.Depth(0)
	tradesBefore := len(sink.trades)

	// 10 wanted, only 7 crossable at <= 101: reject, zero side effects.
	id, err := book.Submit(BUY, FOK, 101, 10)
	if err != ErrFOKUnsatisfiable {
		t.Fatalf("expected ErrFOKUnsatisfiable, got %v", err)
	}
	if sink.rejected[id] != RejectFOKUnsatisfiable {
		t.Errorf("expected FOKUnsatisfiable rejection event, got %v", sink.rejected[id])
	}
	if len(sink.trades) != tradesBefore {
		t.Errorf("expected no trades, got %d new", len(sink.trades)-tradesBefore)
	}
	if !reflect.DeepEqual(before, book.Depth(0)) {
		t.Errorf("book changed across a rejected FOK:\nbefore %+v\nafter  %+v", before, book.Depth(0))
	}
	if book.Cancel(id) {
		t.Errorf("rejected FOK order must not be cancellable")
	}
}

func TestFOKExecutesWhenSatisfiable(t *testing.T) {
	sink := newRecordSink()
	book := NewBook("ABC", sink)

	book.Submit(SELL, GTC, 100, 4)
	book.Submit(SELL, GTC, 101, 6)

	_, err := book.Submit(BUY, FOK, 101, 10)
	if err != nil {
		t.Fatalf("expected FOK to execute, got %v", err)
	}
	if len(sink.trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(sink.trades))
	}
	var total int64
	for _, trade := range sink.trades {
		total += trade.Qty
	}
	if total != 10 {
		t.Errorf("expected full fill of 10, got %d", total)
	}
	if depth := book.Depth(0); len(depth.Asks) != 0 {
		t.Errorf("expected ask side drained, got %+v", depth.Asks)
	}
}

func TestFAKDiscardsRemainder(t *testing.T) {
	sink := newRecordSink()
	book := NewBook("ABC", sink)

	book.Submit(SELL, GTC, 100, 4)

	id, err := book.Submit(BUY, FAK, 100, 10)
	if err != nil {
		t.Fatalf("submit fak: %v", err)
	}
	if len(sink.trades) != 1 || sink.trades[0].Qty != 4 || sink.trades[0].Price != 100 {
		t.Fatalf("expected single trade 4@100, got %+v", sink.trades)
	}
	if _, ok := sink.resting[id]; ok {
		t.Errorf("fak remainder must not rest")
	}
	depth := book.Depth(0)
	if len(depth.Bids) != 0 || len(depth.Asks) != 0 {
		t.Errorf("expected empty book, got %+v", depth)
	}
	if book.Cancel(id) {
		t.Errorf("killed fak order must not be cancellable")
	}
}

func TestMarketOrderCrossesAnyPrice(t *testing.T) {
	sink := newRecordSink()
	book := NewBook("ABC", sink)

	book.Submit(BUY, GTC, 90, 5)
	book.Submit(BUY, GTC, 80, 5)

	// price argument is ignored for market orders
	id, err := book.Submit(SELL, MARKET, 0, 12)
	if err != nil {
		t.Fatalf("submit market: %v", err)
	}
	if len(sink.trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(sink.trades))
	}
	if sink.trades[0].Price != 90 || sink.trades[1].Price != 80 {
		t.Errorf("market sell must walk bids best-to-worst: %+v", sink.trades)
	}
	if _, ok := sink.resting[id]; ok {
		t.Errorf("market remainder must not rest")
	}
	if depth := book.Depth(0); len(depth.Bids) != 0 {
		t.Errorf("expected bid side drained, got %+v", depth.Bids)
	}
}

func TestCancelIdempotent(t *testing.T) {
	book := NewBook("ABC", nil)

	id, _ := book.Submit(BUY, GTC, 100, 10)
	if !book.Cancel(id) {
		t.Fatalf("expected cancel to succeed")
	}
	if book.Cancel(id) {
		t.Errorf("second cancel must be a no-op")
	}
	if book.Cancel(9999) {
		t.Errorf("cancel of unknown id must return false")
	}
	if depth := book.Depth(0); len(depth.Bids) != 0 {
		t.Errorf("expected empty book after cancel, got %+v", depth.Bids)
	}
}

func TestModifyLosesQueuePosition(t *testing.T) {
	sink := newRecordSink()
	book := NewBook("ABC", sink)

	first, _ := book.Submit(BUY, GTC, 100, 10)
	second, _ := book.Submit(BUY, GTC, 100, 10)

	// same price, same quantity: still goes to the tail
	if !book.Modify(first, 100, 10) {
		t.Fatalf("expected modify to succeed")
	}

	book.Submit(SELL, GTC, 100, 10)
	if len(sink.trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(sink.trades))
	}
	if sink.trades[0].RestingOrderID != second {
		t.Errorf("modified order must fill after the untouched one, filled %d", sink.trades[0].RestingOrderID)
	}
}

func TestModifyCanTriggerMatching(t *testing.T) {
	sink := newRecordSink()
	book := NewBook("ABC", sink)

	buyID, _ := book.Submit(BUY, GTC, 95, 10)
	book.Submit(SELL, GTC, 100, 6)

	if !book.Modify(buyID, 100, 10) {
		t.Fatalf("expected modify to succeed")
	}
	if len(sink.trades) != 1 || sink.trades[0].Qty != 6 || sink.trades[0].Price != 100 {
		t.Fatalf("expected modify to cross 6@100, got %+v", sink.trades)
	}
	if sink.resting[buyID] != 4 {
		t.Errorf("expected remainder 4 resting, got %d", sink.resting[buyID])
	}

	if book.Modify(9999, 100, 1) {
		t.Errorf("modify of unknown id must return false")
	}
}

func TestRejectInvalidOrders(t *testing.T) {
	sink := newRecordSink()
	book := NewBook("ABC", sink)

	id, err := book.Submit(BUY, GTC, 100, 0)
	if err != ErrInvalidQuantity || sink.rejected[id] != RejectInvalidQuantity {
		t.Errorf("expected invalid quantity rejection, got err=%v reason=%v", err, sink.rejected[id])
	}

	id, err = book.Submit(SELL, GTC, 0, 10)
	if err != ErrInvalidPrice || sink.rejected[id] != RejectInvalidPrice {
		t.Errorf("expected invalid price rejection, got err=%v reason=%v", err, sink.rejected[id])
	}

	if depth := book.Depth(0); len(depth.Bids)+len(depth.Asks) != 0 {
		t.Errorf("rejected orders must not enter the book: %+v", depth)
	}
}

func TestQuantityConservation(t *testing.T) {
	sink := newRecordSink()
	book := NewBook("ABC", sink)

	var submitted int64
	for i := 0; i < 50; i++ {
		qty := int64(1 + i%7)
		price := int64(100 + i%5)
		book.Submit(SELL, GTC, price, qty)
		submitted += qty
	}

	book.Submit(BUY, GTC, 104, submitted/2)

	var traded int64
	for _, trade := range sink.trades {
		traded += trade.Qty
	}

	var restingAsks int64
	for _, level := range book.Depth(0).Asks {
		restingAsks += level.Qty
	}
	if traded+restingAsks != submitted {
		t.Errorf("conservation broken: traded %d + resting %d != submitted %d", traded, restingAsks, submitted)
	}
}

func TestLevelDrainedByCancelThenReused(t *testing.T) {
	sink := newRecordSink()
	book := NewBook("ABC", sink)

	id, _ := book.Submit(BUY, GTC, 100, 10)
	book.Cancel(id)

	// the price must be usable again and match cleanly
	book.Submit(BUY, GTC, 100, 3)
	book.Submit(SELL, GTC, 100, 3)

	if len(sink.trades) != 1 || sink.trades[0].Qty != 3 {
		t.Fatalf("expected single trade 3@100 on reused level, got %+v", sink.trades)
	}
	if depth := book.Depth(0); len(depth.Bids)+len(depth.Asks) != 0 {
		t.Errorf("expected empty book, got %+v", depth)
	}
}

func TestHighVolumeAlternating(t *testing.T) {
	trades := 0
	sink := &countingSink{onTrade: func(Trade) { trades++ }}
	book := NewBook("ABC", sink)

	num := 10_000
	for i := 0; i < num; i++ {
		side := BUY
		if i%2 == 0 {
			side = SELL
		}
		book.Submit(side, GTC, 100, 10)
	}

	if trades != num/2 {
		t.Errorf("expected %d trades, got %d", num/2, trades)
	}
}

func TestConcurrentSubmits(t *testing.T) {
	book := NewBook("ABC", nil)

	var wg sync.WaitGroup
	n := 1000
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			book.Submit(BUY, GTC, 100, 10)
		}()
		go func() {
			defer wg.Done()
			book.Submit(SELL, GTC, 100, 10)
		}()
	}
	wg.Wait()

	depth := book.Depth(0)
	var open int64
	for _, level := range append(depth.Bids, depth.Asks...) {
		open += level.Qty
	}
	// every trade removes equal qty from both sides
	if open%20 != 0 {
		t.Errorf("unbalanced open quantity %d", open)
	}
}

type countingSink struct {
	NopSink
	onTrade func(Trade)
}

func (s *countingSink) TradeExecuted(t Trade) { s.onTrade(t) }

func TestBookManagerRoutesPerSymbol(t *testing.T) {
	sinks := make(map[string]*recordSink)
	mgr := NewBookManager(&BookManagerConfig{
		Sink: func(symbol string) EventSink {
			s := newRecordSink()
			sinks[symbol] = s
			return s
		},
	})

	mgr.Submit("AAA", SELL, GTC, 100, 5)
	mgr.Submit("BBB", SELL, GTC, 100, 5)
	mgr.Submit("AAA", BUY, GTC, 100, 5)

	if len(sinks["AAA"].trades) != 1 {
		t.Errorf("expected 1 trade on AAA, got %d", len(sinks["AAA"].trades))
	}
	if len(sinks["BBB"].trades) != 0 {
		t.Errorf("expected no trades on BBB, got %d", len(sinks["BBB"].trades))
	}
}

func BenchmarkBookMatch(b *testing.B) {
	book := NewBook("ABC", nil)

	for i := 0; i < 10_000; i++ {
		book.Submit(SELL, GTC, int64(100+i%5), 10)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		book.Submit(BUY, GTC, 101, 10)
	}
}

func BenchmarkBookInsert(b *testing.B) {
	book := NewBook("ABC", nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		book.Submit(BUY, GTC, int64(1+i%1000), 10)
	}
}

func ExampleBook_Submit() {
	book := NewBook("ABC", nil)
	book.Submit(BUY, GTC, 100, 10)
	book.Submit(SELL, GTC, 99, 5)
	depth := book.Depth(0)
	fmt.Println(depth.Bids[0].Price, depth.Bids[0].Qty)
	// Output: 100 5
}
