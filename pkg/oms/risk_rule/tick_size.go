package riskrule

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joripage/matching-engine/pkg/oms/model"
)

type tickSizeConfig struct {
	MaxPrice int64 `json:"maxPrice"` // 0 = no limit
	Step     int64 `json:"step"`
}

// TickSizeRule holds the step ladder per exchange: beyond a price
// threshold a coarser tick applies.
type TickSizeRule struct {
	Config map[string][]tickSizeConfig
}

func NewTickSizeRuleFromFile(path string) (*TickSizeRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg map[string][]tickSizeConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &TickSizeRule{Config: cfg}, nil
}

func (r *TickSizeRule) Check(order *model.AddOrder) error {
	if order.Type == model.OrderTypeMarket {
		return nil
	}
	rules, ok := r.Config[order.Exchange]
	if !ok { // no config -> no rule
		return nil
	}

	price := order.Price.IntPart()
	for _, rule := range rules {
		if rule.MaxPrice == 0 || price <= rule.MaxPrice {
			if price%rule.Step != 0 {
				return fmt.Errorf("invalid tick size")
			}
			return nil
		}
	}

	return nil
}
