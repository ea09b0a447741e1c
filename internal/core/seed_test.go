package core

import (
	"context"
	"testing"

	"retailcore/internal/infra/persistence/memory"
	"retailcore/pkg/domain"
)

func TestSeedDemoDataPopulatesAllCollections(t *testing.T) {
	store := memory.NewStore(nil)
	if err := SeedDemoData(context.Background(), store); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if got := len(store.ListUsers()); got != 2 {
		t.Fatalf("expected 2 users, got %d", got)
	}
	if got := len(store.ListProducts()); got != 2 {
		t.Fatalf("expected 2 products, got %d", got)
	}
	if got := len(store.ListCustomers()); got != 2 {
		t.Fatalf("expected 2 customers, got %d", got)
	}
	if got := len(store.ListSellers()); got != 2 {
		t.Fatalf("expected 2 sellers, got %d", got)
	}

	product, _ := store.GetProduct("P100")
	if product.Name != "Basmati Rice 5kg" || product.Price != 549.0 || product.Stock != 20 {
		t.Fatalf("unexpected P100: %+v", product)
	}
	user, _ := store.GetUser("admin")
	if user.Role != domain.RoleAdmin {
		t.Fatalf("expected admin role, got %s", user.Role)
	}
}

func TestSeedDemoDataIdempotent(t *testing.T) {
	store := memory.NewStore(nil)
	ctx := context.Background()
	if err := SeedDemoData(ctx, store); err != nil {
		t.Fatalf("first seed: %v", err)
	}

	// Mutate a seeded record, reseed, and verify the mutation survives.
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.UpdateProduct("P100", func(p *domain.Product) error {
			p.Stock = 7
			return nil
		})
		return err
	}); err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if err := SeedDemoData(ctx, store); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	if got := len(store.ListProducts()); got != 2 {
		t.Fatalf("reseed duplicated products: %d", got)
	}
	product, _ := store.GetProduct("P100")
	if product.Stock != 7 {
		t.Fatalf("reseed reset mutated stock: %d", product.Stock)
	}
}
