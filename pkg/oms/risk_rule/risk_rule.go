package riskrule

import "github.com/joripage/matching-engine/pkg/oms/model"

// RiskRule runs before an order reaches a book. A non-nil error
// rejects the order; the book itself is never touched.
type RiskRule interface {
	Check(order *model.AddOrder) error
}
