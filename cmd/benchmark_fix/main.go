// Load generator for the FIX gateway. Sends matched buy/sell pairs
// over FIX 4.2 or FIX 4.4 sessions and reports throughput.
package main

import (
	"flag"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/quickfixgo/enum"
	"github.com/quickfixgo/field"
	fix42nos "github.com/quickfixgo/fix42/newordersingle"
	fix44nos "github.com/quickfixgo/fix44/newordersingle"
	fix44ocrr "github.com/quickfixgo/fix44/ordercancelreplacerequest"
	fix44ocr "github.com/quickfixgo/fix44/ordercancelrequest"
	"github.com/quickfixgo/quickfix"
	"github.com/quickfixgo/quickfix/log/file"
	"github.com/shopspring/decimal"
)

var (
	scenario = flag.String("scenario", "limit44", "limit42 | limit44 | softly | amend44 | cancel44")
	total    = flag.Int("total", 250_000, "order pairs to send")
	symbol   = flag.String("symbol", "ABC", "instrument to trade")
)

type InitiatorApp struct {
	sessionID *quickfix.SessionID
}

func (a *InitiatorApp) OnCreate(sessionID quickfix.SessionID) {
	a.sessionID = &sessionID
}

func (a *InitiatorApp) OnLogon(sessionID quickfix.SessionID) {
	log.Println("Logon success")

	switch *scenario {
	case "limit42":
		go sendMatchLimit42(sessionID, *total)
	case "limit44":
		go sendMatchLimit44(sessionID, *total)
	case "softly":
		go sendMatchLimitSoftly(sessionID)
	case "amend44":
		go sendAmend44(sessionID)
	case "cancel44":
		go sendCancel44(sessionID)
	default:
		log.Printf("unknown scenario %q", *scenario)
	}
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
	return nil
}

func newOrder42(sessionID quickfix.SessionID, side enum.Side, price, qty int64) fix42nos.NewOrderSingle {
	order := fix42nos.New(
		field.NewClOrdID(""),
		field.NewHandlInst("1"),
		field.NewSymbol(*symbol),
		field.NewSide(side),
		field.NewTransactTime(time.Now()),
		field.NewOrdType(enum.OrdType_LIMIT))
	order.SetAccount("TMT")
	order.SetPrice(decimal.NewFromInt(price), 0)
	order.SetOrderQty(decimal.NewFromInt(qty), 0)
	order.SetTimeInForce(enum.TimeInForce_GOOD_TILL_CANCEL)
	order.SetSenderCompID(sessionID.SenderCompID)
	order.SetTargetCompID(sessionID.TargetCompID)
	order.SetClOrdID(randSeq(17))
	return order
}

func newOrder44(sessionID quickfix.SessionID, side enum.Side, price, qty int64) fix44nos.NewOrderSingle {
	order := fix44nos.New(
		field.NewClOrdID(""),
		field.NewSide(side),
		field.NewTransactTime(time.Now()),
		field.NewOrdType(enum.OrdType_LIMIT))
	order.SetSymbol(*symbol)
	order.SetAccount("TMT")
	order.SetPrice(decimal.NewFromInt(price), 0)
	order.SetOrderQty(decimal.NewFromInt(qty), 0)
	order.SetTimeInForce(enum.TimeInForce_GOOD_TILL_CANCEL)
	order.SetSenderCompID(sessionID.SenderCompID)
	order.SetTargetCompID(sessionID.TargetCompID)
	order.SetClOrdID(randSeq(17))
	return order
}

func sendMatchLimit42(sessionID quickfix.SessionID, total int) {
	start := time.Now()
	log.Printf("Sending %d orders", total*2)

	minQty, maxQty := 10, 50
	for i := 0; i < total; i++ {
		qty := int64(rand.Intn(maxQty-minQty) + minQty)
		_ = quickfix.Send(newOrder42(sessionID, enum.Side_BUY, 28000, qty))
		_ = quickfix.Send(newOrder42(sessionID, enum.Side_SELL, 28000, qty))
	}

	reportThroughput(total*2, start)
}

func sendMatchLimit44(sessionID quickfix.SessionID, total int) {
	start := time.Now()
	log.Printf("Sending %d orders", total*2)

	minQty, maxQty := 10, 50
	for i := 0; i < total; i++ {
		qty := int64(rand.Intn(maxQty-minQty) + minQty)
		_ = quickfix.Send(newOrder44(sessionID, enum.Side_BUY, 28000, qty))
		_ = quickfix.Send(newOrder44(sessionID, enum.Side_SELL, 28000, qty))
	}

	reportThroughput(total*2, start)
}

// paced variant: a burst of pairs every second for ~200s
func sendMatchLimitSoftly(sessionID quickfix.SessionID) {
	perTick := 250

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	i := 0
	for range ticker.C {
		i++
		if i > 200 {
			break
		}
		go func() {
			start := time.Now()
			for j := 0; j < perTick; j++ {
				_ = quickfix.Send(newOrder42(sessionID, enum.Side_BUY, 28000, 100))
				_ = quickfix.Send(newOrder42(sessionID, enum.Side_SELL, 28000, 100))
			}
			reportThroughput(perTick*2, start)
		}()
	}
}

func sendAmend44(sessionID quickfix.SessionID) {
	order := newOrder44(sessionID, enum.Side_BUY, 27000, 100)
	clOrdID, _ := order.GetClOrdID()
	_ = quickfix.Send(order)

	time.Sleep(time.Second)

	amend := fix44ocrr.New(
		field.NewOrigClOrdID(clOrdID),
		field.NewClOrdID(randSeq(17)),
		field.NewSide(enum.Side_BUY),
		field.NewTransactTime(time.Now()),
		field.NewOrdType(enum.OrdType_LIMIT))
	amend.SetSymbol(*symbol)
	amend.SetPrice(decimal.NewFromInt(27500), 0)
	amend.SetOrderQty(decimal.NewFromInt(150), 0)
	amend.SetSenderCompID(sessionID.SenderCompID)
	amend.SetTargetCompID(sessionID.TargetCompID)
	err := quickfix.Send(amend)
	log.Println("amend:", err)
}

func sendCancel44(sessionID quickfix.SessionID) {
	order := newOrder44(sessionID, enum.Side_BUY, 27000, 100)
	clOrdID, _ := order.GetClOrdID()
	_ = quickfix.Send(order)

	time.Sleep(time.Second)

	cancel := fix44ocr.New(
		field.NewOrigClOrdID(clOrdID),
		field.NewClOrdID(randSeq(17)),
		field.NewSide(enum.Side_BUY),
		field.NewTransactTime(time.Now()))
	cancel.SetSymbol(*symbol)
	cancel.SetSenderCompID(sessionID.SenderCompID)
	cancel.SetTargetCompID(sessionID.TargetCompID)
	err := quickfix.Send(cancel)
	log.Println("cancel:", err)
}

func reportThroughput(msgs int, start time.Time) {
	elapsed := time.Since(start)
	log.Printf("Sent %d messages in %v", msgs, elapsed)
	log.Printf("Throughput: %.2f messages/sec", float64(msgs)/elapsed.Seconds())
}

func main() {
	flag.Parse()
	if flag.NArg() < 1 {
		log.Fatal("usage: benchmark_fix [flags] <initiator.cfg>")
	}
	cfgPath := flag.Arg(0)
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
