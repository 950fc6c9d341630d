package orderbook

import "sync"

// SinkFactory builds the event sink for a newly created book. Ids are
// only unique per book, so a manager-wide consumer should bind the
// symbol here.
type SinkFactory func(symbol string) EventSink

type BookManagerConfig struct {
	Sink SinkFactory
}

// BookManager holds one independent Book per symbol. Books serialize
// internally; distinct symbols run concurrently.
type BookManager struct {
	books sync.Map
	cfg   *BookManagerConfig
}

func NewBookManager(cfg *BookManagerConfig) *BookManager {
	if cfg == nil {
		cfg = &BookManagerConfig{}
	}
	return &BookManager{cfg: cfg}
}

func (m *BookManager) Book(symbol string) *Book {
	if val, ok := m.books.Load(symbol); ok {
		return val.(*Book)
	}

	var sink EventSink
	if m.cfg.Sink != nil {
		sink = m.cfg.Sink(symbol)
	}
	book := NewBook(symbol, sink)

	actual, _ := m.books.LoadOrStore(symbol, book)
	return actual.(*Book)
}

func (m *BookManager) Submit(symbol string, side Side, typ OrderType, price, qty int64) (uint64, error) {
	return m.Book(symbol).Submit(side, typ, price, qty)
}

func (m *BookManager) Cancel(symbol string, orderID uint64) bool {
	return m.Book(symbol).Cancel(orderID)
}

func (m *BookManager) Modify(symbol string, orderID uint64, newPrice, newQty int64) bool {
	return m.Book(symbol).Modify(orderID, newPrice, newQty)
}

func (m *BookManager) Depth(symbol string, maxLevels int) Depth {
	return m.Book(symbol).Depth(maxLevels)
}
