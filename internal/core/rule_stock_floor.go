package core

import (
	"context"
	"fmt"

	"retailcore/pkg/domain"
)

// StockFloorRule blocks any transaction that would leave a product with
// negative stock. Quantity checks in the sell path make this unreachable in
// normal operation; the rule is the commit-time guarantee.
type StockFloorRule struct{}

// Name identifies the rule.
func (StockFloorRule) Name() string { return "stock_floor" }

// Evaluate inspects changed products for negative stock.
func (StockFloorRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	var result domain.Result
	for _, change := range changes {
		if change.Entity != domain.EntityProduct {
			continue
		}
		product, ok := change.After.(domain.Product)
		if !ok {
			continue
		}
		if product.Stock < 0 {
			result.Violations = append(result.Violations, domain.Violation{
				Rule:     "stock_floor",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("product %s stock would drop to %d", product.ID, product.Stock),
				Entity:   domain.EntityProduct,
				EntityID: product.ID,
			})
		}
	}
	return result, nil
}
