package core

import (
	"context"

	"retailcore/pkg/domain"
)

// SeedDemoData loads the demo dataset into the store. Seeding is idempotent:
// records whose ids already exist are left untouched, so repeated calls never
// duplicate data or reset mutated fields.
func SeedDemoData(ctx context.Context, store domain.Store) error {
	users := []domain.User{
		{Username: "admin", Password: "admin123", Role: domain.RoleAdmin},
		{Username: "rohan", Password: "seller123", Role: domain.RoleSeller},
	}
	products := []domain.Product{
		{ID: "P100", Name: "Basmati Rice 5kg", Category: "Grocery", Price: 549.0, Stock: 20},
		{ID: "P101", Name: "Toothpaste", Category: "Personal Care", Price: 89.0, Stock: 50},
	}
	customers := []domain.Customer{
		{ID: "C001", Name: "Neha Sharma", Phone: "9876543210"},
		{ID: "C002", Name: "Arjun Mehta", Phone: "9990011223"},
	}
	sellers := []domain.Seller{
		{ID: "S001", Name: "Rohan"},
		{ID: "S002", Name: "Priya"},
	}

	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		for _, user := range users {
			if _, ok := tx.FindUser(user.Username); ok {
				continue
			}
			if _, err := tx.CreateUser(user); err != nil {
				return err
			}
		}
		for _, product := range products {
			if _, ok := tx.FindProduct(product.ID); ok {
				continue
			}
			if _, err := tx.CreateProduct(product); err != nil {
				return err
			}
		}
		for _, customer := range customers {
			if _, ok := tx.FindCustomer(customer.ID); ok {
				continue
			}
			if _, err := tx.CreateCustomer(customer); err != nil {
				return err
			}
		}
		for _, seller := range sellers {
			if _, ok := tx.FindSeller(seller.ID); ok {
				continue
			}
			if _, err := tx.CreateSeller(seller); err != nil {
				return err
			}
		}
		return nil
	})
	return err
}
