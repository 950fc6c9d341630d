package worker

import (
	"context"
	"encoding/json"

	_ "github.com/lib/pq"
	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/joripage/matching-engine/pkg/oms/model"
	"github.com/joripage/matching-engine/pkg/oms/repo"
)

// Worker drains journaled order events from JetStream into the
// database. It runs out of the matching path; losing the process only
// delays persistence, the stream keeps the backlog.
type Worker struct {
	order      repo.IOrder
	orderEvent repo.IOrderEvent
}

func NewWorker(repo repo.IRepo) *Worker {
	return &Worker{
		order:      repo.Order(),
		orderEvent: repo.OrderEvent(),
	}
}

func (w *Worker) StartConsumer(ctx context.Context, js nats.JetStreamContext, subject, durable string) error {
	cons, err := js.PullSubscribe(subject, durable)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		msgs, err := cons.Fetch(10, nats.Context(ctx))
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			zap.S().Warnf("fetch fail: %v", err)
			continue
		}

		for _, msg := range msgs {
			var ev model.OrderEvent
			if err := json.Unmarshal(msg.Data, &ev); err != nil {
				zap.S().Errorf("unmarshal order event fail: %v", err)
				_ = msg.Ack()
				continue
			}
			if err := w.handleEvent(ctx, ev); err != nil {
				zap.S().Warnf("handle order event %s fail: %v", ev.EventID, err)
				continue // redelivered; Create is idempotent
			}
			_ = msg.Ack()
		}
	}
}

func (w *Worker) handleEvent(ctx context.Context, ev model.OrderEvent) error {
	if _, err := w.orderEvent.Create(ctx, &ev); err != nil {
		return err
	}

	// keep the orders table at the latest known state; fills and
	// terminal events overwrite earlier rows of the same order
	_, err := w.order.Upsert(ctx, &model.Order{
		OrderID:       ev.OrderID,
		GatewayID:     ev.GatewayID,
		OrigGatewayID: ev.OrigGatewayID,
		Status:        ev.Status,
		ExecType:      ev.ExecType,
		LastQuantity:  ev.Qty,
		LastPrice:     decimal.NewFromFloat(ev.Price),
		TransactTime:  ev.Timestamp,
	})
	return err
}
