package marketdata

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	kafkawrapper "github.com/joripage/matching-engine/pkg/kafka_wrapper"
	"github.com/joripage/matching-engine/pkg/oms/model"
)

type TradeTailConfig struct {
	Brokers    []string `yaml:"brokers"`
	TradeTopic string   `yaml:"trade_topic"`
	GroupID    string   `yaml:"group_id"`
}

// TradeTail consumes the trade topic and keeps the latest print per
// symbol in Redis, so query services never touch the engine for a
// last-price lookup.
type TradeTail struct {
	cg  *kafkawrapper.ConsumerGroup
	rdb *redis.Client
}

func NewTradeTail(cfg *TradeTailConfig, rdb *redis.Client) (*TradeTail, error) {
	cg, err := kafkawrapper.NewConsumerGroup(kafkawrapper.ConsumerConfig{
		Brokers:    cfg.Brokers,
		GroupID:    cfg.GroupID,
		Topic:      cfg.TradeTopic,
		AutoCommit: true,
	})
	if err != nil {
		return nil, err
	}
	return &TradeTail{cg: cg, rdb: rdb}, nil
}

func (t *TradeTail) Run(ctx context.Context) error {
	return t.cg.Run(ctx, t.handleBatch)
}

func (t *TradeTail) Close() error {
	return t.cg.Close()
}

func (t *TradeTail) handleBatch(ctx context.Context, msgs []kafkawrapper.Message) error {
	// within a batch only the newest print per symbol matters
	latest := make(map[string]*model.TradeReport)
	for _, m := range msgs {
		var trade model.TradeReport
		if err := json.Unmarshal(m.Value, &trade); err != nil {
			zap.S().Warnf("bad trade payload offset=%d err=%v", m.Offset, err)
			continue
		}
		cur, ok := latest[trade.Symbol]
		if !ok || trade.Sequence > cur.Sequence {
			latest[trade.Symbol] = &trade
		}
	}

	for symbol, trade := range latest {
		b, err := json.Marshal(trade)
		if err != nil {
			return err
		}
		if err := t.rdb.Set(ctx, lastTradeKey(symbol), b, 0).Err(); err != nil {
			return err
		}
	}
	return nil
}

// LastTrade reads the cached print, nil when the symbol has not traded.
func (t *TradeTail) LastTrade(ctx context.Context, symbol string) (*model.TradeReport, error) {
	b, err := t.rdb.Get(ctx, lastTradeKey(symbol)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var trade model.TradeReport
	if err := json.Unmarshal(b, &trade); err != nil {
		return nil, err
	}
	return &trade, nil
}
