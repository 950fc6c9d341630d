// Benchmarks the Redis side of the market-data feed: an atomic
// multi-key write via Lua, then concurrent SET+PUBLISH throughput.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

var ctx = context.Background()

type depthRow struct {
	Price    float64 `json:"price"`
	Quantity int64   `json:"quantity"`
}

type depthSnapshot struct {
	Symbol string     `json:"symbol"`
	Bids   []depthRow `json:"bids"`
	Asks   []depthRow `json:"asks"`
	Seq    uint64     `json:"seq"`
}

type lastTrade struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	Qty    int64   `json:"qty"`
	Seq    uint64  `json:"seq"`
}

func main() {
	rdb := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
	})

	depth := depthSnapshot{
		Symbol: "ABC",
		Bids:   []depthRow{{Price: 147.00, Quantity: 500}},
		Asks:   []depthRow{{Price: 147.50, Quantity: 300}},
		Seq:    1,
	}
	trade := lastTrade{Symbol: "ABC", Price: 147.25, Qty: 100, Seq: 1}

	depthKey := fmt.Sprintf("md:depth:%s", depth.Symbol)
	tradeKey := fmt.Sprintf("md:last_trade:%s", trade.Symbol)
	seqKey := fmt.Sprintf("md:seq:%s", depth.Symbol)

	depthJSON, _ := json.Marshal(depth)
	tradeJSON, _ := json.Marshal(trade)

	// depth and last trade move together or not at all, and stale
	// sequences never overwrite newer ones
	script := redis.NewScript(`
		local cur = tonumber(redis.call("GET", KEYS[3]) or "0")
		local seq = tonumber(ARGV[3])
		if seq <= cur then return redis.status_reply("STALE") end

		redis.call("SET", KEYS[1], ARGV[1])
		redis.call("SET", KEYS[2], ARGV[2])
		redis.call("SET", KEYS[3], ARGV[3])

		return redis.status_reply("OK")
	`)

	res, err := script.Run(ctx, rdb, []string{depthKey, tradeKey, seqKey},
		depthJSON, tradeJSON, depth.Seq).Result()
	if err != nil {
		log.Fatalf("Lua script execution failed: %v", err)
	}
	fmt.Printf("Lua script result: %v\n", res)

	const (
		totalOps = 100_000
		workers  = 10
	)
	opsPerWorker := totalOps / workers

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(workers)

	for w := 0; w < workers; w++ {
		go func(workerID int) {
			defer wg.Done()
			for i := 0; i < opsPerWorker; i++ {
				snap := depth
				snap.Seq = uint64(workerID*opsPerWorker + i)
				b, _ := json.Marshal(snap)
				key := fmt.Sprintf("md:depth:bench:%d", workerID)
				pipe := rdb.Pipeline()
				pipe.Set(ctx, key, b, 0)
				pipe.Publish(ctx, "md:depth:ch:bench", b)
				if _, err := pipe.Exec(ctx); err != nil {
					log.Printf("pipeline err=%v", err)
				}
			}
		}(w)
	}

	wg.Wait()
	duration := time.Since(start)
	fmt.Printf("Published %d snapshots in %s (%.2f ops/sec)\n",
		totalOps, duration, float64(totalOps)/duration.Seconds())
}
