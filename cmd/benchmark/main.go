package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/joripage/matching-engine/pkg/orderbook"
)

const (
	numOrders = 1_000_000
	minPrice  = 10_000
	maxPrice  = 20_000
	minQty    = 1
	maxQty    = 100
)

type countingSink struct {
	trades   int
	tradeQty int64
}

func (s *countingSink) TradeExecuted(t orderbook.Trade) {
	s.trades++
	s.tradeQty += t.Qty
}
func (s *countingSink) OrderAccepted(uint64)                         {}
func (s *countingSink) OrderRejected(uint64, orderbook.RejectReason) {}
func (s *countingSink) OrderCancelled(uint64)                        {}
func (s *countingSink) OrderResting(uint64, int64)                   {}

func main() {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	sink := &countingSink{}
	book := orderbook.NewBook("ABC", sink)

	start := time.Now()
	for i := 0; i < numOrders; i++ {
		side := orderbook.BUY
		if rng.Intn(2) == 0 {
			side = orderbook.SELL
		}
		price := int64(rng.Intn(maxPrice-minPrice+1) + minPrice)
		qty := int64(rng.Intn(maxQty-minQty+1) + minQty)
		_, _ = book.Submit(side, orderbook.GTC, price, qty)
	}
	elapsed := time.Since(start)

	fmt.Println("--------")
	fmt.Printf("Total Orders     : %d\n", numOrders)
	fmt.Printf("Total Trades     : %d\n", sink.trades)
	fmt.Printf("Total Traded Qty : %d\n", sink.tradeQty)
	fmt.Printf("Time Taken       : %s\n", elapsed)
	fmt.Printf("Orders/sec       : %.0f\n", numOrders/elapsed.Seconds())
}
