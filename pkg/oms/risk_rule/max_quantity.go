package riskrule

import (
	"fmt"

	"github.com/joripage/matching-engine/pkg/oms/model"
)

// MaxQuantityRule caps single-order size.
type MaxQuantityRule struct {
	Max int64
}

func (r *MaxQuantityRule) Check(order *model.AddOrder) error {
	if r.Max > 0 && order.Quantity.IntPart() > r.Max {
		return fmt.Errorf("quantity above limit %d", r.Max)
	}
	return nil
}
