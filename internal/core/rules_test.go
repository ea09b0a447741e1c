package core

import (
	"context"
	"errors"
	"testing"

	"retailcore/pkg/domain"
)

func TestStockFloorRuleBlocksNegativeStock(t *testing.T) {
	svc := seededService(t)
	ctx := context.Background()

	res, err := svc.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.UpdateProduct("P100", func(p *domain.Product) error {
			p.Stock = -3
			return nil
		})
		return err
	})
	var rve domain.RuleViolationError
	if !errors.As(err, &rve) {
		t.Fatalf("expected rule violation error, got %v", err)
	}
	if len(res.Violations) == 0 || res.Violations[0].Rule != "stock_floor" {
		t.Fatalf("expected stock_floor violation, got %+v", res.Violations)
	}
	product, _ := svc.Store().GetProduct("P100")
	if product.Stock != 20 {
		t.Fatalf("blocked transaction mutated stock: %d", product.Stock)
	}
}

func TestSaleReferencesRuleLogsWithoutBlocking(t *testing.T) {
	svc := seededService(t)
	ctx := context.Background()

	res, err := svc.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.CreateSale(domain.Sale{ProductID: "PX", CustomerID: "CX", SellerID: "SX", Quantity: 1, UnitPrice: 1})
		return err
	})
	if err != nil {
		t.Fatalf("sale with dangling references must commit: %v", err)
	}
	if len(res.Violations) != 3 {
		t.Fatalf("expected 3 reference violations, got %+v", res.Violations)
	}
	for _, v := range res.Violations {
		if v.Severity != domain.SeverityLog {
			t.Fatalf("expected log severity, got %s", v.Severity)
		}
		if v.Rule != "sale_references" {
			t.Fatalf("unexpected rule name %s", v.Rule)
		}
	}
	if got := len(svc.ListSales()); got != 1 {
		t.Fatalf("expected committed sale, got %d records", got)
	}
}

func TestSaleReferencesRuleQuietForResolvedReferences(t *testing.T) {
	svc := seededService(t)
	ctx := context.Background()
	rohan := mustAuthenticate(t, svc, "rohan", "seller123")

	_, res, err := svc.Sell(ctx, rohan, SaleRequest{ProductID: "P100", Quantity: 1, CustomerID: "C001"})
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	if len(res.Violations) != 0 {
		t.Fatalf("expected clean result, got %+v", res.Violations)
	}
}
