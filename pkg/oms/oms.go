package oms

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	eventstore "github.com/joripage/matching-engine/pkg/oms/event_store"
	"github.com/joripage/matching-engine/pkg/oms/model"
	riskrule "github.com/joripage/matching-engine/pkg/oms/risk_rule"
	"github.com/joripage/matching-engine/pkg/orderbook"
)

// MarketDataFeed receives trade prints and depth snapshots, decimal
// priced, for downstream consumers.
type MarketDataFeed interface {
	PublishTrade(ctx context.Context, trade *model.TradeReport) error
	PublishDepth(ctx context.Context, depth *model.DepthSnapshot) error
}

type Config struct {
	DefaultTickSize decimal.Decimal
	TickSizes       map[string]decimal.Decimal
	DepthLevels     int
}

// OMS sits between the order gateway and the matching books: it owns
// order state, the audit journal and outbound reports. Matching
// semantics live entirely in pkg/orderbook.
type OMS struct {
	orderGateway OrderGateway
	books        *orderbook.BookManager
	eventstore   eventstore.EventStore
	feed         MarketDataFeed
	symbols      *SymbolTable
	depthLevels  int

	rules []riskrule.RiskRule

	orderIDMapping sync.Map // OrderID -> *model.Order
	sinks          sync.Map // symbol -> *bookSink

	stopCh chan struct{}
}

func NewOMS(orderGateway OrderGateway, cfg *Config) *OMS {
	if cfg == nil {
		cfg = &Config{}
	}
	s := &OMS{
		orderGateway: orderGateway,
		eventstore:   eventstore.NewInMemoryEventStore(),
		symbols:      NewSymbolTable(cfg.DefaultTickSize, cfg.TickSizes),
		depthLevels:  cfg.DepthLevels,
		stopCh:       make(chan struct{}),
	}
	s.books = orderbook.NewBookManager(&orderbook.BookManagerConfig{
		Sink: func(symbol string) orderbook.EventSink { return s.sinkOf(symbol) },
	})
	return s
}

// SetEventStore swaps the journal backend; call before Start.
func (s *OMS) SetEventStore(store eventstore.EventStore) {
	s.eventstore = store
}

// SetMarketDataFeed attaches the trade/depth publisher; call before Start.
func (s *OMS) SetMarketDataFeed(feed MarketDataFeed) {
	s.feed = feed
}

func (s *OMS) UseRule(rule riskrule.RiskRule) {
	s.rules = append(s.rules, rule)
}

func (s *OMS) Start(ctx context.Context) {
	if err := s.orderGateway.Start(ctx); err != nil {
		zap.S().Errorf("start order gateway fail: %v", err)
	}
	go s.startCleaner(10 * time.Second)
}

func (s *OMS) Stop() {
	close(s.stopCh)
}

func (s *OMS) AddOrder(ctx context.Context, addOrder *model.AddOrder) error {
	if s.eventstore.GetOrderID(addOrder.GatewayID) != "" {
		return errDuplicateOrder
	}

	order := &model.Order{}
	order.UpdateAddOrder(addOrder)
	order.ExecID = uuid.NewString()
	// provisional id for rejects that never reach a book
	order.OrderID = addOrder.GatewayID

	for _, rule := range s.rules {
		if err := rule.Check(addOrder); err != nil {
			order.MarkRejected(err.Error())
			s.emitReport(ctx, order)
			return err
		}
	}

	orderType, err := resolveOrderType(addOrder.Type, addOrder.TimeInForce)
	if err != nil {
		order.MarkRejected(err.Error())
		s.emitReport(ctx, order)
		return err
	}

	var priceTicks int64
	if orderType != orderbook.MARKET {
		priceTicks, err = s.symbols.ToTicks(addOrder.Symbol, addOrder.Price)
		if err != nil {
			order.MarkRejected(err.Error())
			s.emitReport(ctx, order)
			return err
		}
	}

	side := orderbook.BUY
	if addOrder.Side == model.OrderSideSell {
		side = orderbook.SELL
	}
	qty := addOrder.Quantity.IntPart()

	book := s.books.Book(addOrder.Symbol)
	sink := s.sinkOf(addOrder.Symbol)

	var engineID uint64
	var submitErr error
	events := sink.run(func() {
		engineID, submitErr = book.Submit(side, orderType, priceTicks, qty)
	})

	order.EngineID = engineID
	order.OrderID = model.NewOrderID(addOrder.Symbol, engineID)
	s.AddOrderToMap(order)
	s.eventstore.TrackGatewayChain(order.OrderID, addOrder.GatewayID, "")

	s.emitReport(ctx, order) // PendingNew
	s.applyEngineEvents(ctx, addOrder.Symbol, events)

	// FAK and market remainders executed what they could; the rest
	// is gone and the order is done.
	if submitErr == nil && order.LeavesQuantity > 0 &&
		(orderType == orderbook.FAK || orderType == orderbook.MARKET) {
		order.MarkExpired()
		s.emitReport(ctx, order)
	}

	s.publishDepth(ctx, addOrder.Symbol)
	return submitErr
}

func (s *OMS) CancelOrder(ctx context.Context, cancelOrder *model.CancelOrder) error {
	orderID := s.eventstore.GetOrderID(cancelOrder.OrigGatewayID)
	order, err := s.GetOrderByOrderID(orderID)
	if err != nil {
		return errGatewayIDNotFound
	}

	if !order.CanCancel() {
		return errInvalidOrderStatus
	}

	sink := s.sinkOf(order.Symbol)
	var ok bool
	sink.run(func() {
		ok = s.books.Cancel(order.Symbol, order.EngineID)
	})
	if !ok {
		return errOrderIDNotFound
	}

	order.ExecID = uuid.NewString()
	order.UpdateCancelOrder(cancelOrder)
	s.eventstore.TrackGatewayChain(order.OrderID, cancelOrder.GatewayID, cancelOrder.OrigGatewayID)

	s.emitReport(ctx, order)
	s.publishDepth(ctx, order.Symbol)
	return nil
}

func (s *OMS) ModifyOrder(ctx context.Context, modifyOrder *model.ModifyOrder) error {
	orderID := s.eventstore.GetOrderID(modifyOrder.OrigGatewayID)
	order, err := s.GetOrderByOrderID(orderID)
	if err != nil {
		return errGatewayIDNotFound
	}

	if !order.CanModify() {
		return errInvalidOrderStatus
	}

	priceTicks, err := s.symbols.ToTicks(order.Symbol, modifyOrder.NewPrice)
	if err != nil {
		return err
	}

	sink := s.sinkOf(order.Symbol)
	var ok bool
	var events []engineEvent
	events = sink.run(func() {
		ok = s.books.Modify(order.Symbol, order.EngineID, priceTicks, modifyOrder.NewQuantity.IntPart())
	})
	if !ok {
		return errOrderIDNotFound
	}

	order.ExecID = uuid.NewString()
	order.UpdateModifyOrder(modifyOrder)
	s.eventstore.TrackGatewayChain(order.OrderID, modifyOrder.GatewayID, modifyOrder.OrigGatewayID)

	s.emitReport(ctx, order) // Replaced
	s.applyEngineEvents(ctx, order.Symbol, events)
	s.publishDepth(ctx, order.Symbol)
	return nil
}

// Depth exposes a decimal-priced snapshot of one book.
func (s *OMS) Depth(symbol string) *model.DepthSnapshot {
	return s.depthSnapshot(symbol)
}

// applyEngineEvents replays buffered book events in execution order
// against order state, the journal and the market-data feed.
func (s *OMS) applyEngineEvents(ctx context.Context, symbol string, events []engineEvent) {
	for _, ev := range events {
		switch ev.kind {
		case evAccepted:
			order, err := s.getByEngineID(symbol, ev.orderID)
			if err != nil {
				continue
			}
			order.MarkNew()
			s.emitReport(ctx, order)

		case evRejected:
			order, err := s.getByEngineID(symbol, ev.orderID)
			if err != nil {
				continue
			}
			order.MarkRejected(string(ev.reason))
			s.emitReport(ctx, order)

		case evTrade:
			s.applyTrade(ctx, symbol, ev.trade)

		case evResting, evCancelled:
			// resting is implied by accepted + fills; cancel reports
			// are emitted by CancelOrder, which knows the gateway ids.
		}
	}
}

func (s *OMS) applyTrade(ctx context.Context, symbol string, trade orderbook.Trade) {
	price := s.symbols.FromTicks(symbol, trade.Price)
	now := time.Now()

	taker, takerErr := s.getByEngineID(symbol, trade.IncomingOrderID)
	maker, makerErr := s.getByEngineID(symbol, trade.RestingOrderID)

	if takerErr != nil || makerErr != nil {
		zap.S().Errorf("trade seq=%d on %s references unknown order", trade.Seq, symbol)
		return
	}

	taker.ExecID = uuid.NewString()
	taker.ApplyFill(trade.Qty, price)
	s.emitReport(ctx, taker)

	maker.ExecID = uuid.NewString()
	maker.ApplyFill(trade.Qty, price)
	s.emitReport(ctx, maker)

	if s.feed != nil {
		report := &model.TradeReport{
			Symbol:       symbol,
			Price:        price,
			Quantity:     trade.Qty,
			MakerOrderID: maker.OrderID,
			TakerOrderID: taker.OrderID,
			Sequence:     trade.Seq,
			Timestamp:    now,
		}
		if err := s.feed.PublishTrade(ctx, report); err != nil {
			zap.S().Warnf("publish trade fail: %v", err)
		}
	}
}

func (s *OMS) emitReport(ctx context.Context, order *model.Order) {
	bkOrder := *order
	s.eventstore.AddEvent(model.NewOrderEvent(bkOrder, time.Now()))
	s.orderGateway.OnOrderReport(ctx, bkOrder)
}

func (s *OMS) publishDepth(ctx context.Context, symbol string) {
	if s.feed == nil {
		return
	}
	if err := s.feed.PublishDepth(ctx, s.depthSnapshot(symbol)); err != nil {
		zap.S().Warnf("publish depth fail: %v", err)
	}
}

func (s *OMS) depthSnapshot(symbol string) *model.DepthSnapshot {
	depth := s.books.Depth(symbol, s.depthLevels)
	snapshot := &model.DepthSnapshot{
		Symbol:    symbol,
		Bids:      make([]model.DepthRow, 0, len(depth.Bids)),
		Asks:      make([]model.DepthRow, 0, len(depth.Asks)),
		Timestamp: time.Now(),
	}
	for _, level := range depth.Bids {
		snapshot.Bids = append(snapshot.Bids, model.DepthRow{
			Price:    s.symbols.FromTicks(symbol, level.Price),
			Quantity: level.Qty,
			Orders:   level.Orders,
		})
	}
	for _, level := range depth.Asks {
		snapshot.Asks = append(snapshot.Asks, model.DepthRow{
			Price:    s.symbols.FromTicks(symbol, level.Price),
			Quantity: level.Qty,
			Orders:   level.Orders,
		})
	}
	return snapshot
}

func (s *OMS) sinkOf(symbol string) *bookSink {
	if val, ok := s.sinks.Load(symbol); ok {
		return val.(*bookSink)
	}
	actual, _ := s.sinks.LoadOrStore(symbol, &bookSink{})
	return actual.(*bookSink)
}

func (s *OMS) getByEngineID(symbol string, engineID uint64) (*model.Order, error) {
	return s.GetOrderByOrderID(model.NewOrderID(symbol, engineID))
}

// resolveOrderType folds the FIX (type, time-in-force) pair into the
// engine's four dispositions.
func resolveOrderType(typ model.OrderType, tif model.OrderTimeInForce) (orderbook.OrderType, error) {
	if typ == model.OrderTypeMarket {
		return orderbook.MARKET, nil
	}
	switch tif {
	case model.OrderTimeInForceGTC, model.OrderTimeInForceDAY, "":
		return orderbook.GTC, nil
	case model.OrderTimeInForceIOC:
		return orderbook.FAK, nil
	case model.OrderTimeInForceFOK:
		return orderbook.FOK, nil
	}
	return "", errUnsupportedOrderType
}
