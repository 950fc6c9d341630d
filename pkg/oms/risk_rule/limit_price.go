package riskrule

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/joripage/matching-engine/pkg/oms/model"
)

type priceBand struct {
	Ceil  decimal.Decimal
	Floor decimal.Decimal
}

// LimitPriceRule rejects limit orders priced outside the symbol's
// daily band. Market orders carry no price and pass through.
type LimitPriceRule struct {
	bands map[string]priceBand
}

func NewLimitPriceRule() *LimitPriceRule {
	return &LimitPriceRule{bands: make(map[string]priceBand)}
}

func (r *LimitPriceRule) SetBand(symbol string, floor, ceil decimal.Decimal) {
	r.bands[symbol] = priceBand{Ceil: ceil, Floor: floor}
}

func (r *LimitPriceRule) Check(order *model.AddOrder) error {
	if order.Type == model.OrderTypeMarket {
		return nil
	}
	band, ok := r.bands[order.Symbol]
	if !ok {
		return nil
	}
	if order.Price.GreaterThan(band.Ceil) || order.Price.LessThan(band.Floor) {
		return fmt.Errorf("price limit violation")
	}
	return nil
}
