package domain

import "context"

// Transaction exposes the domain operations a store implementation must
// support within an atomic scope. Entities are never deleted in this design;
// updates mutate fields in place via mutator functions.
type Transaction interface {
	CreateProduct(Product) (Product, error)
	UpdateProduct(id string, mutator func(*Product) error) (Product, error)
	CreateCustomer(Customer) (Customer, error)
	UpdateCustomer(id string, mutator func(*Customer) error) (Customer, error)
	CreateSeller(Seller) (Seller, error)
	UpdateSeller(id string, mutator func(*Seller) error) (Seller, error)
	// CreateSale assigns the monotonic sale id ("T" + count+1) when the input
	// id is empty.
	CreateSale(Sale) (Sale, error)
	CreateUser(User) (User, error)
	FindProduct(id string) (Product, bool)
	FindCustomer(id string) (Customer, bool)
	FindSeller(id string) (Seller, bool)
	FindUser(username string) (User, bool)
	ListSellers() []Seller
}

// TransactionView provides read-only access to snapshot data for rules and
// report generation. Listings preserve insertion order.
type TransactionView interface {
	RuleView
	FindUser(username string) (User, bool)
}

// Store is the minimal abstraction over storage backends used by the service
// layer. Mutations run inside RunInTransaction; commit-time rules may block
// them. Reads outside a transaction observe the last committed state.
type Store interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetProduct(id string) (Product, bool)
	GetCustomer(id string) (Customer, bool)
	GetSeller(id string) (Seller, bool)
	GetSale(id string) (Sale, bool)
	GetUser(username string) (User, bool)
	ListProducts() []Product
	ListCustomers() []Customer
	ListSellers() []Seller
	ListSales() []Sale
	ListUsers() []User
}
