// Package memory implements the default in-memory transactional store for the
// retail domain. State lives for the process lifetime only.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"retailcore/pkg/domain"
)

// collection is a map keyed by id with insertion order preserved so listings
// are deterministic. Records are plain value types; assignment copies them.
type collection[T any] struct {
	items map[string]T
	order []string
}

func newCollection[T any]() collection[T] {
	return collection[T]{items: make(map[string]T)}
}

func (c collection[T]) get(id string) (T, bool) {
	v, ok := c.items[id]
	return v, ok
}

func (c *collection[T]) put(id string, v T) {
	if _, exists := c.items[id]; !exists {
		c.order = append(c.order, id)
	}
	c.items[id] = v
}

func (c collection[T]) values() []T {
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out
}

func (c collection[T]) clone() collection[T] {
	cloned := collection[T]{
		items: make(map[string]T, len(c.items)),
		order: append([]string(nil), c.order...),
	}
	for k, v := range c.items {
		cloned.items[k] = v
	}
	return cloned
}

func (c collection[T]) len() int { return len(c.order) }

type memoryState struct {
	products  collection[domain.Product]
	customers collection[domain.Customer]
	sellers   collection[domain.Seller]
	sales     collection[domain.Sale]
	users     collection[domain.User]
}

func newMemoryState() memoryState {
	return memoryState{
		products:  newCollection[domain.Product](),
		customers: newCollection[domain.Customer](),
		sellers:   newCollection[domain.Seller](),
		sales:     newCollection[domain.Sale](),
		users:     newCollection[domain.User](),
	}
}

func (s memoryState) clone() memoryState {
	return memoryState{
		products:  s.products.clone(),
		customers: s.customers.clone(),
		sellers:   s.sellers.clone(),
		sales:     s.sales.clone(),
		users:     s.users.clone(),
	}
}

// Store provides an in-memory transactional store for the retail domain.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *domain.RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *domain.RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

// transaction is a mutation set applied to a cloned copy of the store state.
type transaction struct {
	state   memoryState
	changes []domain.Change
	now     time.Time
}

// view exposes a read-only snapshot of the transactional state.
type view struct {
	state *memoryState
}

func (v view) ListProducts() []domain.Product   { return v.state.products.values() }
func (v view) ListCustomers() []domain.Customer { return v.state.customers.values() }
func (v view) ListSellers() []domain.Seller     { return v.state.sellers.values() }
func (v view) ListSales() []domain.Sale         { return v.state.sales.values() }

func (v view) FindProduct(id string) (domain.Product, bool)   { return v.state.products.get(id) }
func (v view) FindCustomer(id string) (domain.Customer, bool) { return v.state.customers.get(id) }
func (v view) FindSeller(id string) (domain.Seller, bool)     { return v.state.sellers.get(id) }
func (v view) FindUser(username string) (domain.User, bool)   { return v.state.users.get(username) }

// RunInTransaction executes fn within a transactional copy of the store state.
// Sale-id assignment and stock mutation commit together under the store lock,
// so generated ids stay unique even with concurrent callers.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return domain.Result{}, err
	}

	var result domain.Result
	if s.engine != nil {
		res, err := s.engine.Evaluate(ctx, view{state: &tx.state}, tx.changes)
		if err != nil {
			return domain.Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(ctx context.Context, fn func(domain.TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	return fn(view{state: &snapshot})
}

func (tx *transaction) recordChange(change domain.Change) {
	tx.changes = append(tx.changes, change)
}

// CreateProduct stores a new product within the transaction.
func (tx *transaction) CreateProduct(p domain.Product) (domain.Product, error) {
	if p.ID == "" {
		return domain.Product{}, domain.ValidationError{Message: "product id required"}
	}
	if _, exists := tx.state.products.get(p.ID); exists {
		return domain.Product{}, domain.DuplicateError{Entity: domain.EntityProduct, ID: p.ID}
	}
	if p.Price < 0 {
		return domain.Product{}, domain.ValidationError{Message: fmt.Sprintf("product %s: price must not be negative", p.ID)}
	}
	if p.Stock < 0 {
		return domain.Product{}, domain.ValidationError{Message: fmt.Sprintf("product %s: stock must not be negative", p.ID)}
	}
	p.AddedAt = tx.now
	tx.state.products.put(p.ID, p)
	tx.recordChange(domain.Change{Entity: domain.EntityProduct, Action: domain.ActionCreate, After: p})
	return p, nil
}

// UpdateProduct mutates a product using the provided mutator function.
func (tx *transaction) UpdateProduct(id string, mutator func(*domain.Product) error) (domain.Product, error) {
	current, ok := tx.state.products.get(id)
	if !ok {
		return domain.Product{}, domain.NotFoundError{Entity: domain.EntityProduct, ID: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return domain.Product{}, err
	}
	current.ID = id
	if current.Price < 0 {
		return domain.Product{}, domain.ValidationError{Message: fmt.Sprintf("product %s: price must not be negative", id)}
	}
	tx.state.products.put(id, current)
	tx.recordChange(domain.Change{Entity: domain.EntityProduct, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// CreateCustomer stores a new customer.
func (tx *transaction) CreateCustomer(c domain.Customer) (domain.Customer, error) {
	if c.ID == "" {
		return domain.Customer{}, domain.ValidationError{Message: "customer id required"}
	}
	if _, exists := tx.state.customers.get(c.ID); exists {
		return domain.Customer{}, domain.DuplicateError{Entity: domain.EntityCustomer, ID: c.ID}
	}
	c.AddedAt = tx.now
	tx.state.customers.put(c.ID, c)
	tx.recordChange(domain.Change{Entity: domain.EntityCustomer, Action: domain.ActionCreate, After: c})
	return c, nil
}

// UpdateCustomer mutates an existing customer.
func (tx *transaction) UpdateCustomer(id string, mutator func(*domain.Customer) error) (domain.Customer, error) {
	current, ok := tx.state.customers.get(id)
	if !ok {
		return domain.Customer{}, domain.NotFoundError{Entity: domain.EntityCustomer, ID: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return domain.Customer{}, err
	}
	current.ID = id
	tx.state.customers.put(id, current)
	tx.recordChange(domain.Change{Entity: domain.EntityCustomer, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// CreateSeller stores a new seller.
func (tx *transaction) CreateSeller(s domain.Seller) (domain.Seller, error) {
	if s.ID == "" {
		return domain.Seller{}, domain.ValidationError{Message: "seller id required"}
	}
	if _, exists := tx.state.sellers.get(s.ID); exists {
		return domain.Seller{}, domain.DuplicateError{Entity: domain.EntitySeller, ID: s.ID}
	}
	s.AddedAt = tx.now
	tx.state.sellers.put(s.ID, s)
	tx.recordChange(domain.Change{Entity: domain.EntitySeller, Action: domain.ActionCreate, After: s})
	return s, nil
}

// UpdateSeller mutates an existing seller.
func (tx *transaction) UpdateSeller(id string, mutator func(*domain.Seller) error) (domain.Seller, error) {
	current, ok := tx.state.sellers.get(id)
	if !ok {
		return domain.Seller{}, domain.NotFoundError{Entity: domain.EntitySeller, ID: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return domain.Seller{}, err
	}
	current.ID = id
	tx.state.sellers.put(id, current)
	tx.recordChange(domain.Change{Entity: domain.EntitySeller, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// CreateSale stores a sale record. When the input id is empty the store
// assigns the next monotonic id, "T" + (count+1); when the timestamp is zero
// the transaction time is used.
func (tx *transaction) CreateSale(s domain.Sale) (domain.Sale, error) {
	if s.ID == "" {
		s.ID = fmt.Sprintf("T%d", tx.state.sales.len()+1)
	}
	if _, exists := tx.state.sales.get(s.ID); exists {
		return domain.Sale{}, domain.DuplicateError{Entity: domain.EntitySale, ID: s.ID}
	}
	if s.Quantity <= 0 {
		return domain.Sale{}, domain.ValidationError{Message: fmt.Sprintf("sale %s: quantity must be positive", s.ID)}
	}
	if s.Timestamp.IsZero() {
		s.Timestamp = tx.now
	}
	tx.state.sales.put(s.ID, s)
	tx.recordChange(domain.Change{Entity: domain.EntitySale, Action: domain.ActionCreate, After: s})
	return s, nil
}

// CreateUser stores a login user keyed by username.
func (tx *transaction) CreateUser(u domain.User) (domain.User, error) {
	if u.Username == "" {
		return domain.User{}, domain.ValidationError{Message: "username required"}
	}
	if _, exists := tx.state.users.get(u.Username); exists {
		return domain.User{}, domain.DuplicateError{Entity: domain.EntityUser, ID: u.Username}
	}
	if !u.Role.Valid() {
		return domain.User{}, domain.ValidationError{Message: fmt.Sprintf("user %s: unknown role %q", u.Username, u.Role)}
	}
	tx.state.users.put(u.Username, u)
	tx.recordChange(domain.Change{Entity: domain.EntityUser, Action: domain.ActionCreate, After: u})
	return u, nil
}

func (tx *transaction) FindProduct(id string) (domain.Product, bool) {
	return tx.state.products.get(id)
}

func (tx *transaction) FindCustomer(id string) (domain.Customer, bool) {
	return tx.state.customers.get(id)
}

func (tx *transaction) FindSeller(id string) (domain.Seller, bool) {
	return tx.state.sellers.get(id)
}

func (tx *transaction) FindUser(username string) (domain.User, bool) {
	return tx.state.users.get(username)
}

func (tx *transaction) ListSellers() []domain.Seller {
	return tx.state.sellers.values()
}

// StateSnapshot is a portable dump of committed state. Slices carry records in
// insertion order so a round trip preserves listing order.
type StateSnapshot struct {
	Products  []domain.Product  `json:"products"`
	Customers []domain.Customer `json:"customers"`
	Sellers   []domain.Seller   `json:"sellers"`
	Sales     []domain.Sale     `json:"sales"`
	Users     []domain.User     `json:"users"`
}

// ExportState dumps the committed state.
func (s *Store) ExportState() StateSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StateSnapshot{
		Products:  s.state.products.values(),
		Customers: s.state.customers.values(),
		Sellers:   s.state.sellers.values(),
		Sales:     s.state.sales.values(),
		Users:     s.state.users.values(),
	}
}

// ImportState replaces the committed state with the snapshot contents.
func (s *Store) ImportState(snapshot StateSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := newMemoryState()
	for _, p := range snapshot.Products {
		state.products.put(p.ID, p)
	}
	for _, c := range snapshot.Customers {
		state.customers.put(c.ID, c)
	}
	for _, sl := range snapshot.Sellers {
		state.sellers.put(sl.ID, sl)
	}
	for _, sale := range snapshot.Sales {
		state.sales.put(sale.ID, sale)
	}
	for _, u := range snapshot.Users {
		state.users.put(u.Username, u)
	}
	s.state = state
}

// Read helpers ---------------------------------------------------------------

// GetProduct retrieves a product by id from committed state.
func (s *Store) GetProduct(id string) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.products.get(id)
}

// GetCustomer retrieves a customer by id from committed state.
func (s *Store) GetCustomer(id string) (domain.Customer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.customers.get(id)
}

// GetSeller retrieves a seller by id from committed state.
func (s *Store) GetSeller(id string) (domain.Seller, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.sellers.get(id)
}

// GetSale retrieves a sale by id from committed state.
func (s *Store) GetSale(id string) (domain.Sale, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.sales.get(id)
}

// GetUser retrieves a login user by username.
func (s *Store) GetUser(username string) (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.users.get(username)
}

// ListProducts returns all products in insertion order.
func (s *Store) ListProducts() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.products.values()
}

// ListCustomers returns all customers in insertion order.
func (s *Store) ListCustomers() []domain.Customer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.customers.values()
}

// ListSellers returns all sellers in insertion order.
func (s *Store) ListSellers() []domain.Seller {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.sellers.values()
}

// ListSales returns all sales in insertion order.
func (s *Store) ListSales() []domain.Sale {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.sales.values()
}

// ListUsers returns all login users in insertion order.
func (s *Store) ListUsers() []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.users.values()
}

var _ domain.Store = (*Store)(nil)
