package repo

import (
	"context"

	"github.com/joripage/matching-engine/pkg/oms/model"
)

type IOrder interface {
	Upsert(ctx context.Context, record *model.Order) (*model.Order, error)
}

type IOrderEvent interface {
	Create(ctx context.Context, record *model.OrderEvent) (*model.OrderEvent, error)
	BulkCreate(ctx context.Context, records []*model.OrderEvent) ([]*model.OrderEvent, error)
}
