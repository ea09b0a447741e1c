package core

import (
	"context"
	"fmt"

	"retailcore/pkg/domain"
)

// SaleReferencesRule reports sales created against product, customer, or
// seller ids that have no backing record. References are soft, so violations
// carry log severity and never block commit.
type SaleReferencesRule struct{}

// Name identifies the rule.
func (SaleReferencesRule) Name() string { return "sale_references" }

// Evaluate checks referenced ids for every created sale.
func (SaleReferencesRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	var result domain.Result
	report := func(saleID, message string) {
		result.Violations = append(result.Violations, domain.Violation{
			Rule:     "sale_references",
			Severity: domain.SeverityLog,
			Message:  message,
			Entity:   domain.EntitySale,
			EntityID: saleID,
		})
	}
	for _, change := range changes {
		if change.Entity != domain.EntitySale || change.Action != domain.ActionCreate {
			continue
		}
		sale, ok := change.After.(domain.Sale)
		if !ok {
			continue
		}
		if _, ok := view.FindProduct(sale.ProductID); !ok {
			report(sale.ID, fmt.Sprintf("sale %s references unknown product %s", sale.ID, sale.ProductID))
		}
		if _, ok := view.FindCustomer(sale.CustomerID); !ok {
			report(sale.ID, fmt.Sprintf("sale %s references unknown customer %s", sale.ID, sale.CustomerID))
		}
		if _, ok := view.FindSeller(sale.SellerID); !ok {
			report(sale.ID, fmt.Sprintf("sale %s references unknown seller %s", sale.ID, sale.SellerID))
		}
	}
	return result, nil
}
