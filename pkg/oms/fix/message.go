package fixgateway

import (
	"log"
	"sync"

	"github.com/quickfixgo/enum"
	"github.com/quickfixgo/fix44/executionreport"
	"github.com/quickfixgo/quickfix"
	"github.com/shopspring/decimal"

	"github.com/joripage/matching-engine/pkg/oms/model"
)

var (
	OrderStatusMapping = map[model.OrderStatus]enum.OrdStatus{
		model.OrderStatusPendingNew:      enum.OrdStatus_PENDING_NEW,
		model.OrderStatusNew:             enum.OrdStatus_NEW,
		model.OrderStatusPartiallyFilled: enum.OrdStatus_PARTIALLY_FILLED,
		model.OrderStatusFilled:          enum.OrdStatus_FILLED,
		model.OrderStatusCanceled:        enum.OrdStatus_CANCELED,
		model.OrderStatusReplaced:        enum.OrdStatus_REPLACED,
		model.OrderStatusPendingCancel:   enum.OrdStatus_PENDING_CANCEL,
		model.OrderStatusPendingReplace:  enum.OrdStatus_PENDING_REPLACE,
		model.OrderStatusRejected:        enum.OrdStatus_REJECTED,
		model.OrderStatusExpired:         enum.OrdStatus_EXPIRED,
	}

	ExecTypeMapping = map[model.OrderExecType]enum.ExecType{
		model.ExecTypePendingNew: enum.ExecType_PENDING_NEW,
		model.ExecTypeNew:        enum.ExecType_NEW,
		model.ExecTypeTrade:      enum.ExecType_TRADE,
		model.ExecTypeCanceled:   enum.ExecType_CANCELED,
		model.ExecTypeReplaced:   enum.ExecType_REPLACED,
		model.ExecTypeRejected:   enum.ExecType_REJECTED,
		model.ExecTypeExpired:    enum.ExecType_EXPIRED,
	}

	SideMapping = map[model.OrderSide]enum.Side{
		model.OrderSideBuy:  enum.Side_BUY,
		model.OrderSideSell: enum.Side_SELL,
	}

	TimeInForceMapping = map[model.OrderTimeInForce]enum.TimeInForce{
		model.OrderTimeInForceDAY: enum.TimeInForce_DAY,
		model.OrderTimeInForceGTC: enum.TimeInForce_GOOD_TILL_CANCEL,
		model.OrderTimeInForceIOC: enum.TimeInForce_IMMEDIATE_OR_CANCEL,
		model.OrderTimeInForceFOK: enum.TimeInForce_FILL_OR_KILL,
	}
)

// MessagePool recycles quickfix messages between execution reports so
// the hot report path does not allocate a fresh message per fill.
type MessagePool struct {
	pool sync.Pool
}

func NewMessagePool() *MessagePool {
	return &MessagePool{
		pool: sync.Pool{
			New: func() interface{} {
				m := quickfix.NewMessage()
				resetMessage(m)
				return m
			},
		},
	}
}

func (mp *MessagePool) Get() *quickfix.Message {
	m := mp.pool.Get().(*quickfix.Message)
	resetMessage(m)
	return m
}

func (mp *MessagePool) Put(m *quickfix.Message) {
	resetMessage(m)
	mp.pool.Put(m)
}

func resetMessage(m *quickfix.Message) {
	m.Header.Init()
	m.Body.Init()
	m.Trailer.Init()
	m.Header.Clear()
	m.Body.Clear()
	m.Trailer.Clear()
}

var execReportPool = NewMessagePool()

func sendExecutionReport(order model.Order, sessionID *quickfix.SessionID) error {
	msg := execReportPool.Get()
	execReportMsg := executionreport.FromMessage(msg)

	execReportMsg.SetMsgType(enum.MsgType_EXECUTION_REPORT)
	execReportMsg.SetOrderID(order.OrderID)
	execReportMsg.SetExecID(order.ExecID)
	execReportMsg.SetExecType(ExecTypeMapping[order.ExecType])
	execReportMsg.SetOrdStatus(OrderStatusMapping[order.Status])
	execReportMsg.SetSide(SideMapping[order.Side])
	execReportMsg.SetLeavesQty(decimal.NewFromInt(order.LeavesQuantity), 0)
	execReportMsg.SetCumQty(decimal.NewFromInt(order.CumQuantity), 0)
	execReportMsg.SetAvgPx(order.LastPrice, 2)

	execReportMsg.SetClOrdID(order.GatewayID)
	if order.OrigGatewayID != "" {
		execReportMsg.SetOrigClOrdID(order.OrigGatewayID)
	}
	execReportMsg.SetAccount(order.Account)
	execReportMsg.SetSymbol(order.Symbol)
	execReportMsg.SetOrderQty(decimal.NewFromInt(order.Quantity), 0)
	execReportMsg.SetPrice(order.Price, 2)
	execReportMsg.SetTimeInForce(TimeInForceMapping[order.TimeInForce])
	execReportMsg.SetTransactTime(order.TransactTime)
	execReportMsg.SetLastQty(decimal.NewFromInt(order.LastQuantity), 0)
	execReportMsg.SetLastPx(order.LastPrice, 2)
	if order.Text != "" {
		execReportMsg.SetText(order.Text)
	}

	err := quickfix.SendToTarget(execReportMsg, *sessionID)
	if err != nil {
		log.Printf("send err=%v", err)
		return err
	}

	execReportPool.Put(msg)

	return nil
}
