package main

import (
	"context"
	"encoding/json"
	"flag"

	_ "github.com/lib/pq"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/joripage/matching-engine/config"
	postgres_wrapper "github.com/joripage/matching-engine/pkg/infra/postgres"
	redis_wrapper "github.com/joripage/matching-engine/pkg/infra/redis"
	"github.com/joripage/matching-engine/pkg/logging"
	"github.com/joripage/matching-engine/pkg/marketdata"
	"github.com/joripage/matching-engine/pkg/oms/repo"
	"github.com/joripage/matching-engine/pkg/oms/worker"
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

	logger, ctx := logging.GetLogger(context.Background())

	nc, err := nats.Connect(cfg.Nats.URL)
	if err != nil {
		logger.Fatal(ctx, "connect nats fail", zap.Error(err))
	}
	js, err := nc.JetStream()
	if err != nil {
		logger.Fatal(ctx, "jetstream context fail", zap.Error(err))
	}

	_, _ = js.AddStream(&nats.StreamConfig{
		Name:     "ORDERS",
		Subjects: []string{"ORDERS.*"},
	})

	db, err := postgres_wrapper.InitPostgres(cfg.EngineDB)
	if err != nil {
		logger.Fatal(ctx, "init db fail", zap.Error(err))
	}

	sqlRepo := repo.NewRepo(db)

	w := worker.NewWorker(sqlRepo)
	go w.StartConsumer(ctx, js, cfg.Nats.EventSubject, cfg.Nats.Durable) //nolint

	// last-trade cache off the trade topic
	if cfg.Kafka != nil && cfg.Redis != nil {
		rdb, err := redis_wrapper.InitRedis(cfg.Redis)
		if err != nil {
			logger.Fatal(ctx, "init redis fail", zap.Error(err))
		}
		tail, err := marketdata.NewTradeTail(&marketdata.TradeTailConfig{
			Brokers:    cfg.Kafka.Brokers,
			TradeTopic: cfg.Kafka.TradeTopic,
			GroupID:    cfg.Kafka.GroupID,
		}, rdb)
		if err != nil {
			logger.Fatal(ctx, "init trade tail fail", zap.Error(err))
		}
		go tail.Run(ctx) //nolint
	}

	select {}
}
