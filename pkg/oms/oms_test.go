package oms

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joripage/matching-engine/pkg/oms/model"
	riskrule "github.com/joripage/matching-engine/pkg/oms/risk_rule"
	"github.com/joripage/matching-engine/pkg/orderbook"
)

type fakeGateway struct {
	reports []model.Order
}

func (g *fakeGateway) Start(ctx context.Context) error { return nil }

func (g *fakeGateway) OnOrderReport(ctx context.Context, args ...interface{}) {
	if len(args) == 0 {
		return
	}
	if order, ok := args[0].(model.Order); ok {
		g.reports = append(g.reports, order)
	}
}

func (g *fakeGateway) reportsFor(gatewayID string) []model.Order {
	var out []model.Order
	for _, r := range g.reports {
		if r.GatewayID == gatewayID {
			out = append(out, r)
		}
	}
	return out
}

func (g *fakeGateway) statusesFor(gatewayID string) []model.OrderStatus {
	var out []model.OrderStatus
	for _, r := range g.reportsFor(gatewayID) {
		out = append(out, r.Status)
	}
	return out
}

type fakeFeed struct {
	trades []*model.TradeReport
	depths []*model.DepthSnapshot
}

func (f *fakeFeed) PublishTrade(ctx context.Context, trade *model.TradeReport) error {
	f.trades = append(f.trades, trade)
	return nil
}

func (f *fakeFeed) PublishDepth(ctx context.Context, depth *model.DepthSnapshot) error {
	f.depths = append(f.depths, depth)
	return nil
}

func newTestOMS() (*OMS, *fakeGateway, *fakeFeed) {
	gw := &fakeGateway{}
	feed := &fakeFeed{}
	s := NewOMS(gw, &Config{DepthLevels: 5})
	s.SetMarketDataFeed(feed)
	return s, gw, feed
}

func addOrder(gatewayID, symbol string, side model.OrderSide, tif model.OrderTimeInForce, price float64, qty int64) *model.AddOrder {
	return &model.AddOrder{
		GatewayID:   gatewayID,
		Account:     "ACC1",
		Symbol:      symbol,
		Side:        side,
		Type:        model.OrderTypeLimit,
		TimeInForce: tif,
		Price:       decimal.NewFromFloat(price),
		Quantity:    decimal.NewFromInt(qty),
	}
}

func TestAddOrderRestsAndReports(t *testing.T) {
	s, gw, feed := newTestOMS()
	ctx := context.Background()

	err := s.AddOrder(ctx, addOrder("C1", "ABC", model.OrderSideBuy, model.OrderTimeInForceGTC, 100.25, 100))
	require.NoError(t, err)

	assert.Equal(t, []model.OrderStatus{
		model.OrderStatusPendingNew,
		model.OrderStatusNew,
	}, gw.statusesFor("C1"))

	order, err := s.GetOrderByOrderID("ABC-1")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusNew, order.Status)
	assert.Equal(t, int64(100), order.LeavesQuantity)

	require.Len(t, feed.depths, 1)
	require.Len(t, feed.depths[0].Bids, 1)
	assert.True(t, feed.depths[0].Bids[0].Price.Equal(decimal.NewFromFloat(100.25)))
	assert.Equal(t, int64(100), feed.depths[0].Bids[0].Quantity)
}

func TestCrossPublishesTradeAndFills(t *testing.T) {
	s, gw, feed := newTestOMS()
	ctx := context.Background()

	require.NoError(t, s.AddOrder(ctx, addOrder("C1", "ABC", model.OrderSideBuy, model.OrderTimeInForceGTC, 100.25, 100)))
	require.NoError(t, s.AddOrder(ctx, addOrder("C2", "ABC", model.OrderSideSell, model.OrderTimeInForceGTC, 100.25, 40)))

	// taker is fully filled
	assert.Equal(t, []model.OrderStatus{
		model.OrderStatusPendingNew,
		model.OrderStatusNew,
		model.OrderStatusFilled,
	}, gw.statusesFor("C2"))

	// maker partial, at the maker's price
	maker, err := s.GetOrderByOrderID("ABC-1")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPartiallyFilled, maker.Status)
	assert.Equal(t, int64(60), maker.LeavesQuantity)

	require.Len(t, feed.trades, 1)
	trade := feed.trades[0]
	assert.True(t, trade.Price.Equal(decimal.NewFromFloat(100.25)))
	assert.Equal(t, int64(40), trade.Quantity)
	assert.Equal(t, "ABC-1", trade.MakerOrderID)
	assert.Equal(t, "ABC-2", trade.TakerOrderID)
}

func TestDuplicateGatewayIDRejected(t *testing.T) {
	s, _, _ := newTestOMS()
	ctx := context.Background()

	require.NoError(t, s.AddOrder(ctx, addOrder("C1", "ABC", model.OrderSideBuy, model.OrderTimeInForceGTC, 100.25, 100)))
	err := s.AddOrder(ctx, addOrder("C1", "ABC", model.OrderSideBuy, model.OrderTimeInForceGTC, 100.25, 100))
	assert.ErrorIs(t, err, errDuplicateOrder)
}

func TestFOKRejectedWhenUnfillable(t *testing.T) {
	s, gw, _ := newTestOMS()
	ctx := context.Background()

	require.NoError(t, s.AddOrder(ctx, addOrder("C1", "ABC", model.OrderSideBuy, model.OrderTimeInForceGTC, 100.25, 100)))

	err := s.AddOrder(ctx, addOrder("C2", "ABC", model.OrderSideSell, model.OrderTimeInForceFOK, 100.25, 1000))
	assert.ErrorIs(t, err, orderbook.ErrFOKUnsatisfiable)

	statuses := gw.statusesFor("C2")
	assert.Equal(t, model.OrderStatusRejected, statuses[len(statuses)-1])

	// the resting order is untouched
	maker, err := s.GetOrderByOrderID("ABC-1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), maker.LeavesQuantity)
}

func TestIOCRemainderExpires(t *testing.T) {
	s, gw, _ := newTestOMS()
	ctx := context.Background()

	require.NoError(t, s.AddOrder(ctx, addOrder("C1", "ABC", model.OrderSideBuy, model.OrderTimeInForceGTC, 100.25, 60)))
	require.NoError(t, s.AddOrder(ctx, addOrder("C2", "ABC", model.OrderSideSell, model.OrderTimeInForceIOC, 100.25, 200)))

	reports := gw.reportsFor("C2")
	last := reports[len(reports)-1]
	assert.Equal(t, model.OrderStatusExpired, last.Status)
	assert.Equal(t, int64(60), last.CumQuantity)
	assert.Equal(t, int64(0), last.LeavesQuantity)
}

func TestMarketOrderNeedsNoPrice(t *testing.T) {
	s, gw, _ := newTestOMS()
	ctx := context.Background()

	require.NoError(t, s.AddOrder(ctx, addOrder("C1", "ABC", model.OrderSideSell, model.OrderTimeInForceGTC, 101.00, 50)))

	market := addOrder("C2", "ABC", model.OrderSideBuy, "", 0, 30)
	market.Type = model.OrderTypeMarket
	market.Price = decimal.Zero
	require.NoError(t, s.AddOrder(ctx, market))

	statuses := gw.statusesFor("C2")
	assert.Equal(t, model.OrderStatusFilled, statuses[len(statuses)-1])
}

func TestCancelOrder(t *testing.T) {
	s, gw, _ := newTestOMS()
	ctx := context.Background()

	require.NoError(t, s.AddOrder(ctx, addOrder("C1", "ABC", model.OrderSideBuy, model.OrderTimeInForceGTC, 100.25, 100)))

	err := s.CancelOrder(ctx, &model.CancelOrder{GatewayID: "C2", OrigGatewayID: "C1"})
	require.NoError(t, err)

	order, err := s.GetOrderByOrderID("ABC-1")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCanceled, order.Status)

	reports := gw.reportsFor("C2")
	require.Len(t, reports, 1)
	assert.Equal(t, "C1", reports[0].OrigGatewayID)

	// second cancel through the chain fails on state
	err = s.CancelOrder(ctx, &model.CancelOrder{GatewayID: "C3", OrigGatewayID: "C2"})
	assert.ErrorIs(t, err, errInvalidOrderStatus)
}

func TestCancelUnknownGatewayID(t *testing.T) {
	s, _, _ := newTestOMS()

	err := s.CancelOrder(context.Background(), &model.CancelOrder{GatewayID: "C2", OrigGatewayID: "NOPE"})
	assert.ErrorIs(t, err, errGatewayIDNotFound)
}

func TestModifyOrderChainsGatewayIDs(t *testing.T) {
	s, gw, _ := newTestOMS()
	ctx := context.Background()

	require.NoError(t, s.AddOrder(ctx, addOrder("C1", "ABC", model.OrderSideBuy, model.OrderTimeInForceGTC, 100.00, 50)))

	err := s.ModifyOrder(ctx, &model.ModifyOrder{
		GatewayID:     "C2",
		OrigGatewayID: "C1",
		NewPrice:      decimal.NewFromFloat(101.00),
		NewQuantity:   decimal.NewFromInt(80),
	})
	require.NoError(t, err)

	order, err := s.GetOrderByOrderID("ABC-1")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusReplaced, order.Status)
	assert.Equal(t, int64(80), order.LeavesQuantity)
	assert.True(t, order.Price.Equal(decimal.NewFromFloat(101.00)))

	assert.Equal(t, []string{"C2", "C1"}, s.eventstore.ReconstructChain("C2"))

	// cancel via the replacement id works
	require.NoError(t, s.CancelOrder(ctx, &model.CancelOrder{GatewayID: "C3", OrigGatewayID: "C2"}))
	assert.Equal(t, []model.OrderStatus{model.OrderStatusCanceled}, gw.statusesFor("C3"))
}

func TestModifyCanTriggerFill(t *testing.T) {
	s, _, feed := newTestOMS()
	ctx := context.Background()

	require.NoError(t, s.AddOrder(ctx, addOrder("C1", "ABC", model.OrderSideSell, model.OrderTimeInForceGTC, 101.00, 40)))
	require.NoError(t, s.AddOrder(ctx, addOrder("C2", "ABC", model.OrderSideBuy, model.OrderTimeInForceGTC, 100.00, 40)))
	require.Empty(t, feed.trades)

	// reprice the buy through the ask
	require.NoError(t, s.ModifyOrder(ctx, &model.ModifyOrder{
		GatewayID:     "C3",
		OrigGatewayID: "C2",
		NewPrice:      decimal.NewFromFloat(101.00),
		NewQuantity:   decimal.NewFromInt(40),
	}))

	require.Len(t, feed.trades, 1)
	assert.True(t, feed.trades[0].Price.Equal(decimal.NewFromFloat(101.00)))

	order, err := s.GetOrderByOrderID("ABC-2")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusFilled, order.Status)
}

func TestOffTickPriceRejected(t *testing.T) {
	s, gw, _ := newTestOMS()

	err := s.AddOrder(context.Background(), addOrder("C1", "ABC", model.OrderSideBuy, model.OrderTimeInForceGTC, 100.2567, 100))
	assert.ErrorIs(t, err, errPriceOffTick)

	statuses := gw.statusesFor("C1")
	assert.Equal(t, []model.OrderStatus{model.OrderStatusRejected}, statuses)
}

func TestRiskRuleRejectsBeforeBook(t *testing.T) {
	s, gw, feed := newTestOMS()
	s.UseRule(&riskrule.MaxQuantityRule{Max: 500})

	err := s.AddOrder(context.Background(), addOrder("C1", "ABC", model.OrderSideBuy, model.OrderTimeInForceGTC, 100.25, 1000))
	assert.Error(t, err)

	assert.Equal(t, []model.OrderStatus{model.OrderStatusRejected}, gw.statusesFor("C1"))
	assert.Empty(t, feed.depths)
}

func TestDepthSnapshot(t *testing.T) {
	s, _, _ := newTestOMS()
	ctx := context.Background()

	require.NoError(t, s.AddOrder(ctx, addOrder("C1", "ABC", model.OrderSideBuy, model.OrderTimeInForceGTC, 100.00, 10)))
	require.NoError(t, s.AddOrder(ctx, addOrder("C2", "ABC", model.OrderSideBuy, model.OrderTimeInForceGTC, 100.50, 20)))
	require.NoError(t, s.AddOrder(ctx, addOrder("C3", "ABC", model.OrderSideSell, model.OrderTimeInForceGTC, 101.00, 30)))

	depth := s.Depth("ABC")
	require.Len(t, depth.Bids, 2)
	require.Len(t, depth.Asks, 1)
	// best bid first
	assert.True(t, depth.Bids[0].Price.Equal(decimal.NewFromFloat(100.50)))
	assert.Equal(t, int64(20), depth.Bids[0].Quantity)
	assert.True(t, depth.Asks[0].Price.Equal(decimal.NewFromFloat(101.00)))
}
