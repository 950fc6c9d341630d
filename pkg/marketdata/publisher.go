// Package marketdata distributes engine output: trade prints go to a
// Kafka topic keyed by symbol, depth snapshots are cached in Redis and
// fanned out on a pub/sub channel.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	kafkawrapper "github.com/joripage/matching-engine/pkg/kafka_wrapper"
	"github.com/joripage/matching-engine/pkg/oms/model"
)

const (
	depthKeyPrefix     = "md:depth:"
	depthChannelPrefix = "md:depth:ch:"
	lastTradeKeyPrefix = "md:last_trade:"

	depthTTL = 24 * time.Hour
)

type PublisherConfig struct {
	TradeTopic string `yaml:"trade_topic"`
}

type Publisher struct {
	cfg      *PublisherConfig
	producer *kafkawrapper.Producer
	rdb      *redis.Client
}

func NewPublisher(cfg *PublisherConfig, producer *kafkawrapper.Producer, rdb *redis.Client) *Publisher {
	return &Publisher{
		cfg:      cfg,
		producer: producer,
		rdb:      rdb,
	}
}

func (p *Publisher) PublishTrade(ctx context.Context, trade *model.TradeReport) error {
	if p.producer == nil {
		return nil
	}
	key := kafkawrapper.HashKey(trade.Symbol)
	b, err := json.Marshal(trade)
	if err != nil {
		return err
	}
	if err := p.producer.Publish(ctx, p.cfg.TradeTopic, key, b, nil); err != nil {
		zap.S().Warnf("publish trade symbol=%s seq=%d err=%v", trade.Symbol, trade.Sequence, err)
		return err
	}
	return nil
}

func (p *Publisher) PublishDepth(ctx context.Context, depth *model.DepthSnapshot) error {
	if p.rdb == nil {
		return nil
	}
	b, err := json.Marshal(depth)
	if err != nil {
		return err
	}
	if err := p.rdb.Set(ctx, depthKey(depth.Symbol), b, depthTTL).Err(); err != nil {
		zap.S().Warnf("cache depth symbol=%s err=%v", depth.Symbol, err)
		return err
	}
	// subscribers see the same payload the cache holds
	if err := p.rdb.Publish(ctx, depthChannel(depth.Symbol), b).Err(); err != nil {
		zap.S().Warnf("publish depth symbol=%s err=%v", depth.Symbol, err)
		return err
	}
	return nil
}

// Depth reads back the cached snapshot, nil when the symbol has never
// published one.
func (p *Publisher) Depth(ctx context.Context, symbol string) (*model.DepthSnapshot, error) {
	b, err := p.rdb.Get(ctx, depthKey(symbol)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var depth model.DepthSnapshot
	if err := json.Unmarshal(b, &depth); err != nil {
		return nil, err
	}
	return &depth, nil
}

func depthKey(symbol string) string {
	return fmt.Sprintf("%s%s", depthKeyPrefix, symbol)
}

func depthChannel(symbol string) string {
	return fmt.Sprintf("%s%s", depthChannelPrefix, symbol)
}

func lastTradeKey(symbol string) string {
	return fmt.Sprintf("%s%s", lastTradeKeyPrefix, symbol)
}
