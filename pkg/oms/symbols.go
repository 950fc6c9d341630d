package oms

import (
	"github.com/shopspring/decimal"
)

// SymbolTable converts gateway decimal prices to engine ticks and
// back. This is the only place the two representations meet.
type SymbolTable struct {
	tickSizes   map[string]decimal.Decimal
	defaultTick decimal.Decimal
}

func NewSymbolTable(defaultTick decimal.Decimal, overrides map[string]decimal.Decimal) *SymbolTable {
	if defaultTick.IsZero() {
		defaultTick = decimal.New(1, -2) // 0.01
	}
	tickSizes := make(map[string]decimal.Decimal, len(overrides))
	for symbol, tick := range overrides {
		tickSizes[symbol] = tick
	}
	return &SymbolTable{
		tickSizes:   tickSizes,
		defaultTick: defaultTick,
	}
}

func (t *SymbolTable) TickSize(symbol string) decimal.Decimal {
	if tick, ok := t.tickSizes[symbol]; ok {
		return tick
	}
	return t.defaultTick
}

// ToTicks rejects prices that do not sit on the symbol's tick grid.
func (t *SymbolTable) ToTicks(symbol string, price decimal.Decimal) (int64, error) {
	ratio := price.Div(t.TickSize(symbol))
	if !ratio.IsInteger() {
		return 0, errPriceOffTick
	}
	return ratio.IntPart(), nil
}

func (t *SymbolTable) FromTicks(symbol string, ticks int64) decimal.Decimal {
	return t.TickSize(symbol).Mul(decimal.NewFromInt(ticks))
}
