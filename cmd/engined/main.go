package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/joripage/matching-engine/config"
	redis_wrapper "github.com/joripage/matching-engine/pkg/infra/redis"
	kafkawrapper "github.com/joripage/matching-engine/pkg/kafka_wrapper"
	"github.com/joripage/matching-engine/pkg/marketdata"
	"github.com/joripage/matching-engine/pkg/oms"
	eventstore "github.com/joripage/matching-engine/pkg/oms/event_store"
	fixgateway "github.com/joripage/matching-engine/pkg/oms/fix"
	riskrule "github.com/joripage/matching-engine/pkg/oms/risk_rule"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	configBytes, err := json.MarshalIndent(cfg, "", "   ")
	if err != nil {
		zap.S().Warnf("could not convert config to JSON: %v", err)
	} else {
		zap.S().Debugf("load config %s", string(configBytes))
	}

	go func() {
		http.ListenAndServe("localhost:6060", nil) //nolint
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	fixGateway := fixgateway.NewFixGateway(&fixgateway.FixGatewayConfig{
		ConfigFilepath: cfg.Fix.ConfigFilepath,
	})

	engine := oms.NewOMS(fixGateway, engineConfig(cfg.Engine))
	fixGateway.AddOmsInstance(engine)

	if cfg.Nats != nil {
		nc, err := nats.Connect(cfg.Nats.URL)
		if err != nil {
			zap.S().Errorf("connect nats fail: %v", err)
			panic(err)
		}
		js, err := nc.JetStream()
		if err != nil {
			panic(err)
		}
		_, _ = js.AddStream(&nats.StreamConfig{
			Name:     "ORDERS",
			Subjects: []string{"ORDERS.*"},
		})
		engine.SetEventStore(eventstore.NewJetStreamEventStore(js, cfg.Nats.EventSubject))
	}

	if cfg.Redis != nil && cfg.Kafka != nil {
		rdb, err := redis_wrapper.InitRedis(cfg.Redis)
		if err != nil {
			zap.S().Errorf("init redis fail: %v", err)
			panic(err)
		}
		producer := kafkawrapper.NewProducer(kafkawrapper.ProducerConfig{
			Brokers: cfg.Kafka.Brokers,
		})
		engine.SetMarketDataFeed(marketdata.NewPublisher(&marketdata.PublisherConfig{
			TradeTopic: cfg.Kafka.TradeTopic,
		}, producer, rdb))
	}

	engine.UseRule(&riskrule.MaxQuantityRule{Max: 1_000_000})
	engine.UseRule(riskrule.NewLimitPriceRule())

	engine.Start(ctx)
	fmt.Println("Matching engine started. Press Ctrl+C to exit.")

	<-sigs
	fmt.Println("Shutting down...")

	engine.Stop()
	fixGateway.Stop()
	cancel()

	fmt.Println("Exited cleanly.")
}

func engineConfig(ec *config.EngineConfig) *oms.Config {
	if ec == nil {
		return nil
	}
	ticks := make(map[string]decimal.Decimal, len(ec.TickSizes))
	for symbol, size := range ec.TickSizes {
		ticks[symbol] = decimal.NewFromFloat(size)
	}
	return &oms.Config{
		DefaultTickSize: decimal.NewFromFloat(ec.DefaultTickSize),
		TickSizes:       ticks,
		DepthLevels:     ec.DepthLevels,
	}
}
