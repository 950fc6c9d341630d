package orderbook

import (
	"container/heap"
	"sort"
)

// bookSide holds the price levels of one side. Levels live in the map;
// the heap only ranks prices. A price drained by cancel stays in the
// heap until best() purges it, which keeps removal O(1) without ever
// exposing an empty level.
type bookSide struct {
	levels map[int64]*priceLevel
	heap   *priceHeap
	better func(i, j int64) bool
}

func newBidSide() *bookSide {
	better := func(i, j int64) bool { return i > j }
	return &bookSide{
		levels: make(map[int64]*priceLevel),
		heap:   newPriceHeap(better),
		better: better,
	}
}

func newAskSide() *bookSide {
	better := func(i, j int64) bool { return i < j }
	return &bookSide{
		levels: make(map[int64]*priceLevel),
		heap:   newPriceHeap(better),
		better: better,
	}
}

// insert appends the order at the tail of its price level, creating
// the level if absent.
func (s *bookSide) insert(o *Order) {
	level, ok := s.levels[o.Price]
	if !ok {
		level = newPriceLevel(o.Price)
		s.levels[o.Price] = level
		heap.Push(s.heap, o.Price)
	}
	level.push(o)
}

// best returns the first level in priority order, purging prices whose
// level has been removed.
func (s *bookSide) best() *priceLevel {
	for {
		price, ok := s.heap.Peek()
		if !ok {
			return nil
		}
		level, ok := s.levels[price]
		if !ok {
			heap.Pop(s.heap)
			continue
		}
		return level
	}
}

// removeLevel drops an emptied level. The heap entry is left for best()
// to purge lazily.
func (s *bookSide) removeLevel(price int64) {
	delete(s.levels, price)
}

// removeOrder takes a resting order out of its level, dropping the
// level if that drained it.
func (s *bookSide) removeOrder(o *Order) bool {
	level, ok := s.levels[o.Price]
	if !ok {
		return false
	}
	if !level.remove(o.ID) {
		return false
	}
	if level.empty() {
		s.removeLevel(o.Price)
	}
	return true
}

// crossableQty sums resting quantity at prices an order with the given
// limit would trade against, stopping once need is covered. Used for
// the FOK feasibility check before any mutation.
func (s *bookSide) crossableQty(side Side, limit, need int64) int64 {
	var total int64
	for _, price := range s.sortedPrices() {
		if !crosses(side, limit, price) {
			break
		}
		total += s.levels[price].qty
		if total >= need {
			break
		}
	}
	return total
}

// sortedPrices returns live level prices best-to-worst.
func (s *bookSide) sortedPrices() []int64 {
	prices := make([]int64, 0, len(s.levels))
	for price := range s.levels {
		prices = append(prices, price)
	}
	sort.Slice(prices, func(i, j int) bool { return s.better(prices[i], prices[j]) })
	return prices
}

// depth returns up to maxLevels (price, aggregate qty, order count)
// rows best-to-worst. maxLevels <= 0 means all.
func (s *bookSide) depth(maxLevels int) []DepthLevel {
	prices := s.sortedPrices()
	if maxLevels > 0 && len(prices) > maxLevels {
		prices = prices[:maxLevels]
	}
	rows := make([]DepthLevel, 0, len(prices))
	for _, price := range prices {
		level := s.levels[price]
		rows = append(rows, DepthLevel{
			Price:  price,
			Qty:    level.qty,
			Orders: level.orders.Len(),
		})
	}
	return rows
}
