package main

import (
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/quickfixgo/enum"
	"github.com/quickfixgo/field"
	fix44nos "github.com/quickfixgo/fix44/newordersingle"
	fix44ocr "github.com/quickfixgo/fix44/ordercancelrequest"
	"github.com/quickfixgo/quickfix"
	"github.com/quickfixgo/quickfix/log/file"
	"github.com/shopspring/decimal"
)

type InitiatorApp struct {
	sessionID *quickfix.SessionID
}

func (a *InitiatorApp) OnCreate(sessionID quickfix.SessionID) {
	a.sessionID = &sessionID
}

func (a *InitiatorApp) OnLogon(sessionID quickfix.SessionID) {
	log.Println("Logon success", sessionID)
	sendScenarioLimitCross(sessionID)
	// sendScenarioFOK(sessionID)
	// sendScenarioCancel(sessionID)
}

func (a *InitiatorApp) OnLogout(sessionID quickfix.SessionID)                       {}
func (a *InitiatorApp) ToAdmin(msg *quickfix.Message, sessionID quickfix.SessionID) {}
func (a *InitiatorApp) ToApp(msg *quickfix.Message, sessionID quickfix.SessionID) error {
	return nil
}
func (a *InitiatorApp) FromAdmin(msg *quickfix.Message, sessionID quickfix.SessionID) quickfix.MessageRejectError {
	return nil
}
func (a *InitiatorApp) FromApp(msg *quickfix.Message, sessionID quickfix.SessionID) quickfix.MessageRejectError {
	log.Println("report:", msg.String())
	return nil
}

func newLimitOrder(sessionID quickfix.SessionID, side enum.Side, price, qty int64) fix44nos.NewOrderSingle {
	order := fix44nos.New(
		field.NewClOrdID(""),
		field.NewSide(side),
		field.NewTransactTime(time.Now()),
		field.NewOrdType(enum.OrdType_LIMIT))
	order.SetSymbol("ABC")
	order.SetAccount("011C399158")
	order.SetPrice(decimal.NewFromInt(price), 0)
	order.SetOrderQty(decimal.NewFromInt(qty), 0)
	order.SetTimeInForce(enum.TimeInForce_GOOD_TILL_CANCEL)
	order.SetSenderCompID(sessionID.SenderCompID)
	order.SetTargetCompID(sessionID.TargetCompID)
	order.SetClOrdID(randSeq(17))
	return order
}

// rest a buy, cross it with a bigger sell
func sendScenarioLimitCross(sessionID quickfix.SessionID) {
	orderBuy := newLimitOrder(sessionID, enum.Side_BUY, 14700, 10000)
	err := quickfix.Send(orderBuy)
	log.Println(err)

	orderSell := newLimitOrder(sessionID, enum.Side_SELL, 14700, 50000)
	err = quickfix.Send(orderSell)
	log.Println(err)
}

// FOK sell into an empty book comes back Rejected
func sendScenarioFOK(sessionID quickfix.SessionID) {
	order := newLimitOrder(sessionID, enum.Side_SELL, 15000, 500)
	order.SetTimeInForce(enum.TimeInForce_FILL_OR_KILL)
	err := quickfix.Send(order)
	log.Println(err)
}

func sendScenarioCancel(sessionID quickfix.SessionID) {
	order := newLimitOrder(sessionID, enum.Side_BUY, 14000, 300)
	clOrdID, _ := order.GetClOrdID()
	err := quickfix.Send(order)
	log.Println(err)

	time.Sleep(time.Second)

	cancel := fix44ocr.New(
		field.NewOrigClOrdID(clOrdID),
		field.NewClOrdID(randSeq(17)),
		field.NewSide(enum.Side_BUY),
		field.NewTransactTime(time.Now()))
	cancel.SetSymbol("ABC")
	cancel.SetSenderCompID(sessionID.SenderCompID)
	cancel.SetTargetCompID(sessionID.TargetCompID)
	err = quickfix.Send(cancel)
	log.Println(err)
}

func main() {
	cfgPath := os.Args[1]
	log.Println("cfgPath:", cfgPath)
	app := &InitiatorApp{}

	cfg, err := os.Open(cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	defer cfg.Close() // nolint

	settings, err := quickfix.ParseSettings(cfg)
	if err != nil {
		log.Fatal(err)
	}

	storeFactory := quickfix.NewMemoryStoreFactory()
	logFactory, _ := file.NewLogFactory(settings)
	initiator, err := quickfix.NewInitiator(app, storeFactory, settings, logFactory)
	if err != nil {
		log.Fatal(err)
	}
	err = initiator.Start()
	if err != nil {
		log.Fatal(err)
	}
	log.Println("Initiator started...")
	select {}
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")

func randSeq(n int) string {
	b := make([]rune, n)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}
