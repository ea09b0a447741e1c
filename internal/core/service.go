// Package core implements the retail service layer: role-gated operations,
// the demo seed dataset, commit-time rules, and report generation over the
// transactional entity store.
package core

import (
	"context"
	"errors"
	"strings"
	"time"

	"retailcore/pkg/domain"
)

// ErrInvalidCredentials is returned by Authenticate when the username is
// unknown or the password does not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// fallbackSellerID attributes a sale when no seller records exist at all.
const fallbackSellerID = "S001"

// Service exposes higher-level transactional operations for the retail schema.
// Every mutation checks the acting user's role capability before touching the
// store and is reported to the configured observability sinks.
type Service struct {
	store   domain.Store
	audit   AuditRecorder
	metrics MetricsRecorder
	tracer  Tracer
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithAuditRecorder attaches an audit sink to the service.
func WithAuditRecorder(recorder AuditRecorder) Option {
	return func(s *Service) { s.audit = recorder }
}

// WithMetricsRecorder attaches a metrics sink to the service.
func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(s *Service) { s.metrics = recorder }
}

// WithTracer attaches a tracer to the service.
func WithTracer(tracer Tracer) Option {
	return func(s *Service) { s.tracer = tracer }
}

// NewService constructs a service backed by the supplied store.
func NewService(store domain.Store, opts ...Option) *Service {
	svc := &Service{store: store}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Store returns the underlying storage implementation.
func (s *Service) Store() domain.Store {
	return s.store
}

// instrument wraps an operation with tracing, metrics, and audit reporting.
// fn returns the id of the entity it touched, used in the audit entry.
func (s *Service) instrument(ctx context.Context, op string, actor domain.Actor, entity domain.EntityType, fn func(context.Context) (string, error)) error {
	start := time.Now()
	var span TraceSpan
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, op)
	}
	entityID, err := fn(ctx)
	elapsed := time.Since(start)
	if span != nil {
		span.End(err)
	}
	if s.metrics != nil {
		s.metrics.Observe(ctx, op, err == nil, elapsed)
	}
	if s.audit != nil {
		entry := AuditEntry{
			Operation:  op,
			Actor:      actor.Username,
			Entity:     entity,
			EntityID:   entityID,
			Status:     AuditStatusSuccess,
			DurationMS: float64(elapsed) / float64(time.Millisecond),
			RecordedAt: time.Now().UTC(),
		}
		if err != nil {
			entry.Status = AuditStatusError
			entry.Error = err.Error()
		}
		s.audit.Record(ctx, entry)
	}
	return err
}

// Authenticate verifies a username and password pair against stored users.
func (s *Service) Authenticate(ctx context.Context, username, password string) (domain.Actor, error) {
	var actor domain.Actor
	err := s.instrument(ctx, "authenticate", domain.Actor{Username: username}, domain.EntityUser, func(context.Context) (string, error) {
		user, ok := s.store.GetUser(username)
		if !ok || user.Password != password {
			return username, ErrInvalidCredentials
		}
		actor = domain.Actor{Username: user.Username, Role: user.Role}
		return username, nil
	})
	return actor, err
}

// AddProduct persists a new product. Admin only.
func (s *Service) AddProduct(ctx context.Context, actor domain.Actor, product domain.Product) (domain.Product, domain.Result, error) {
	var created domain.Product
	var result domain.Result
	err := s.instrument(ctx, "add_product", actor, domain.EntityProduct, func(ctx context.Context) (string, error) {
		if !domain.CanManageProducts(actor.Role) {
			return product.ID, domain.PermissionError{Role: actor.Role, Operation: "add products"}
		}
		res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var err error
			created, err = tx.CreateProduct(product)
			return err
		})
		result = res
		return product.ID, err
	})
	return created, result, err
}

// UpdateProduct applies a partial update to a product. Nil patch fields leave
// the current value unchanged. Admin only.
func (s *Service) UpdateProduct(ctx context.Context, actor domain.Actor, id string, patch domain.ProductPatch) (domain.Product, domain.Result, error) {
	var updated domain.Product
	var result domain.Result
	err := s.instrument(ctx, "update_product", actor, domain.EntityProduct, func(ctx context.Context) (string, error) {
		if !domain.CanManageProducts(actor.Role) {
			return id, domain.PermissionError{Role: actor.Role, Operation: "update products"}
		}
		res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var err error
			updated, err = tx.UpdateProduct(id, func(p *domain.Product) error {
				if patch.Name != nil {
					p.Name = *patch.Name
				}
				if patch.Category != nil {
					p.Category = *patch.Category
				}
				if patch.Price != nil {
					p.Price = *patch.Price
				}
				if patch.Stock != nil {
					p.Stock = *patch.Stock
				}
				return nil
			})
			return err
		})
		result = res
		return id, err
	})
	return updated, result, err
}

// AddCustomer persists a new customer. Open to every authenticated role.
func (s *Service) AddCustomer(ctx context.Context, actor domain.Actor, customer domain.Customer) (domain.Customer, domain.Result, error) {
	var created domain.Customer
	var result domain.Result
	err := s.instrument(ctx, "add_customer", actor, domain.EntityCustomer, func(ctx context.Context) (string, error) {
		if !domain.CanManageCustomers(actor.Role) {
			return customer.ID, domain.PermissionError{Role: actor.Role, Operation: "add customers"}
		}
		res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var err error
			created, err = tx.CreateCustomer(customer)
			return err
		})
		result = res
		return customer.ID, err
	})
	return created, result, err
}

// UpdateCustomer applies a partial update to a customer.
func (s *Service) UpdateCustomer(ctx context.Context, actor domain.Actor, id string, patch domain.CustomerPatch) (domain.Customer, domain.Result, error) {
	var updated domain.Customer
	var result domain.Result
	err := s.instrument(ctx, "update_customer", actor, domain.EntityCustomer, func(ctx context.Context) (string, error) {
		if !domain.CanManageCustomers(actor.Role) {
			return id, domain.PermissionError{Role: actor.Role, Operation: "update customers"}
		}
		res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var err error
			updated, err = tx.UpdateCustomer(id, func(c *domain.Customer) error {
				if patch.Name != nil {
					c.Name = *patch.Name
				}
				if patch.Phone != nil {
					c.Phone = *patch.Phone
				}
				return nil
			})
			return err
		})
		result = res
		return id, err
	})
	return updated, result, err
}

// AddSeller persists a new seller. Admin only.
func (s *Service) AddSeller(ctx context.Context, actor domain.Actor, seller domain.Seller) (domain.Seller, domain.Result, error) {
	var created domain.Seller
	var result domain.Result
	err := s.instrument(ctx, "add_seller", actor, domain.EntitySeller, func(ctx context.Context) (string, error) {
		if !domain.CanManageSellers(actor.Role) {
			return seller.ID, domain.PermissionError{Role: actor.Role, Operation: "add sellers"}
		}
		res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var err error
			created, err = tx.CreateSeller(seller)
			return err
		})
		result = res
		return seller.ID, err
	})
	return created, result, err
}

// UpdateSeller applies a partial update to a seller. Admin only.
func (s *Service) UpdateSeller(ctx context.Context, actor domain.Actor, id string, patch domain.SellerPatch) (domain.Seller, domain.Result, error) {
	var updated domain.Seller
	var result domain.Result
	err := s.instrument(ctx, "update_seller", actor, domain.EntitySeller, func(ctx context.Context) (string, error) {
		if !domain.CanManageSellers(actor.Role) {
			return id, domain.PermissionError{Role: actor.Role, Operation: "update sellers"}
		}
		res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var err error
			updated, err = tx.UpdateSeller(id, func(sl *domain.Seller) error {
				if patch.Name != nil {
					sl.Name = *patch.Name
				}
				return nil
			})
			return err
		})
		result = res
		return id, err
	})
	return updated, result, err
}

// SaleRequest carries the inputs for recording a sale. Customer fields beyond
// the id are used only when the customer does not exist yet and must be
// created inline.
type SaleRequest struct {
	ProductID     string
	Quantity      int
	CustomerID    string
	CustomerName  string
	CustomerPhone string
}

// Sell records a sale: it validates the product and quantity, creates the
// customer inline when unknown, attributes the sale to a seller, decrements
// stock, and captures the unit price at sale time. The sale id assignment and
// the stock decrement commit in the same transaction.
func (s *Service) Sell(ctx context.Context, actor domain.Actor, req SaleRequest) (domain.Sale, domain.Result, error) {
	var sale domain.Sale
	var result domain.Result
	err := s.instrument(ctx, "sell", actor, domain.EntitySale, func(ctx context.Context) (string, error) {
		if !domain.CanSell(actor.Role) {
			return "", domain.PermissionError{Role: actor.Role, Operation: "record sales"}
		}
		if req.CustomerID == "" {
			return "", domain.ValidationError{Message: "customer id required"}
		}
		res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			product, ok := tx.FindProduct(req.ProductID)
			if !ok {
				return domain.NotFoundError{Entity: domain.EntityProduct, ID: req.ProductID}
			}
			if req.Quantity <= 0 || req.Quantity > product.Stock {
				return domain.ValidationError{Message: "invalid quantity"}
			}
			if _, ok := tx.FindCustomer(req.CustomerID); !ok {
				if _, err := tx.CreateCustomer(domain.Customer{
					ID:    req.CustomerID,
					Name:  req.CustomerName,
					Phone: req.CustomerPhone,
				}); err != nil {
					return err
				}
			}
			sellerID := attributeSeller(tx.ListSellers(), actor.Username)

			var err error
			sale, err = tx.CreateSale(domain.Sale{
				ProductID:  req.ProductID,
				CustomerID: req.CustomerID,
				SellerID:   sellerID,
				Quantity:   req.Quantity,
				UnitPrice:  product.Price,
			})
			if err != nil {
				return err
			}
			_, err = tx.UpdateProduct(req.ProductID, func(p *domain.Product) error {
				p.Stock -= req.Quantity
				return nil
			})
			return err
		})
		result = res
		return sale.ID, err
	})
	return sale, result, err
}

// attributeSeller picks the seller a sale is credited to: the seller whose
// name matches the acting username case-insensitively, else the first seller
// on record, else the fixed fallback id.
func attributeSeller(sellers []domain.Seller, username string) string {
	for _, seller := range sellers {
		if strings.EqualFold(seller.Name, username) {
			return seller.ID
		}
	}
	if len(sellers) > 0 {
		return sellers[0].ID
	}
	return fallbackSellerID
}

// SearchProducts returns products whose name or category contains the query,
// case-insensitively, in insertion order.
func (s *Service) SearchProducts(ctx context.Context, query string) ([]domain.Product, error) {
	var matches []domain.Product
	err := s.store.View(ctx, func(view domain.TransactionView) error {
		needle := strings.ToLower(query)
		for _, product := range view.ListProducts() {
			if strings.Contains(strings.ToLower(product.Name), needle) ||
				strings.Contains(strings.ToLower(product.Category), needle) {
				matches = append(matches, product)
			}
		}
		return nil
	})
	return matches, err
}

// ListProducts returns all products in insertion order.
func (s *Service) ListProducts() []domain.Product { return s.store.ListProducts() }

// ListCustomers returns all customers in insertion order.
func (s *Service) ListCustomers() []domain.Customer { return s.store.ListCustomers() }

// ListSellers returns all sellers in insertion order.
func (s *Service) ListSellers() []domain.Seller { return s.store.ListSellers() }

// ListSales returns all sales in insertion order.
func (s *Service) ListSales() []domain.Sale { return s.store.ListSales() }
