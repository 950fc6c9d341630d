package fixgateway

import (
	"context"
	"log"
	"sync"

	"github.com/quickfixgo/enum"

	"github.com/joripage/matching-engine/pkg/oms"
	"github.com/joripage/matching-engine/pkg/oms/model"
)

// FixGateway bridges FIX sessions and the OMS: inbound messages turn
// into OMS intents, order reports turn into execution reports on the
// session that sent the request.
type FixGateway struct {
	cfg         *FixGatewayConfig
	app         *Application
	omsInstance oms.IOMS

	requestMapping sync.Map // ClOrdID -> *quickfix.SessionID
}

type FixGatewayConfig struct {
	ConfigFilepath string
}

func NewFixGateway(cfg *FixGatewayConfig) *FixGateway {
	return &FixGateway{
		cfg: cfg,
	}
}

func (s *FixGateway) AddOmsInstance(o oms.IOMS) {
	s.omsInstance = o
}

func (s *FixGateway) Start(ctx context.Context) error {
	app, err := startApp(s.cfg.ConfigFilepath, s)
	if err != nil {
		log.Printf("start app err=%v", err)
		return err
	}
	s.app = app
	return nil
}

func (s *FixGateway) Stop() {
	if s.app != nil {
		stopApp(s.app)
	}
}

func (s *FixGateway) AddOrder(ctx context.Context, newOrderSingle *NewOrderSingle) {
	orderType := map[enum.OrdType]model.OrderType{
		enum.OrdType_LIMIT:  model.OrderTypeLimit,
		enum.OrdType_MARKET: model.OrderTypeMarket,
	}[newOrderSingle.OrdType]

	timeInForce := map[enum.TimeInForce]model.OrderTimeInForce{
		enum.TimeInForce_DAY:                 model.OrderTimeInForceDAY,
		enum.TimeInForce_FILL_OR_KILL:        model.OrderTimeInForceFOK,
		enum.TimeInForce_GOOD_TILL_CANCEL:    model.OrderTimeInForceGTC,
		enum.TimeInForce_IMMEDIATE_OR_CANCEL: model.OrderTimeInForceIOC,
	}[newOrderSingle.TimeInForce]

	side := map[enum.Side]model.OrderSide{
		enum.Side_BUY:  model.OrderSideBuy,
		enum.Side_SELL: model.OrderSideSell,
	}[newOrderSingle.Side]

	s.AddRequestToMap(newOrderSingle.ClOrdID, newOrderSingle.SessionID)

	err := s.omsInstance.AddOrder(ctx, &model.AddOrder{
		GatewayID:    newOrderSingle.ClOrdID,
		Account:      newOrderSingle.Account,
		Symbol:       newOrderSingle.Symbol,
		SecurityID:   newOrderSingle.SecurityID,
		Type:         orderType,
		Price:        newOrderSingle.Price,
		TimeInForce:  timeInForce,
		Side:         side,
		TransactTime: newOrderSingle.TransactTime,
		Quantity:     newOrderSingle.OrderQty,
	})
	if err != nil {
		log.Printf("add order clOrdID=%s err=%v", newOrderSingle.ClOrdID, err)
	}
}

func (s *FixGateway) CancelOrder(ctx context.Context, req *OrderCancelRequest) {
	s.AddRequestToMap(req.ClOrdID, req.SessionID)

	err := s.omsInstance.CancelOrder(ctx, &model.CancelOrder{
		GatewayID:     req.ClOrdID,
		OrigGatewayID: req.OrigClOrdID,
	})
	if err != nil {
		log.Printf("cancel order clOrdID=%s err=%v", req.ClOrdID, err)
	}
}

func (s *FixGateway) ModifyOrder(ctx context.Context, req *OrderCancelReplaceRequest) {
	s.AddRequestToMap(req.ClOrdID, req.SessionID)

	err := s.omsInstance.ModifyOrder(ctx, &model.ModifyOrder{
		NewPrice:      req.Price,
		NewQuantity:   req.OrderQty,
		GatewayID:     req.ClOrdID,
		OrigGatewayID: req.OrigClOrdID,
	})
	if err != nil {
		log.Printf("modify order clOrdID=%s err=%v", req.ClOrdID, err)
	}
}

func (s *FixGateway) OnOrderReport(ctx context.Context, args ...interface{}) {
	if len(args) == 0 {
		return
	}

	order, ok := args[0].(model.Order)
	if !ok {
		return
	}

	sessionID, err := s.GetSessionByClOrdID(order.GatewayID)
	if err != nil {
		log.Printf("session for clOrdID=%s not found", order.GatewayID)
		return
	}

	go func() {
		if err := sendExecutionReport(order, sessionID); err != nil {
			log.Printf("send exec report orderID=%s err=%v", order.OrderID, err)
		}
	}()
}
