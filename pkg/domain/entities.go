// Package domain defines the core retail entities, value types, and
// rule evaluation primitives used by retailcore.
package domain

import "time"

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityProduct identifies a product record.
	EntityProduct EntityType = "product"
	// EntityCustomer identifies a customer record.
	EntityCustomer EntityType = "customer"
	// EntitySeller identifies a seller record.
	EntitySeller EntityType = "seller"
	// EntitySale identifies a sale record.
	EntitySale EntityType = "sale"
	// EntityUser identifies a login user record.
	EntityUser EntityType = "user"
)

// Role is the closed set of login roles recognised by the system.
type Role string

// Login roles. Permission checks go through the capability functions below,
// never through raw string comparison at call sites.
const (
	RoleAdmin  Role = "admin"
	RoleSeller Role = "seller"
)

// Valid reports whether the role is one of the recognised values.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleSeller
}

// CanManageProducts reports whether the role may add or update products.
func CanManageProducts(r Role) bool { return r == RoleAdmin }

// CanManageSellers reports whether the role may add or update sellers.
func CanManageSellers(r Role) bool { return r == RoleAdmin }

// CanManageCustomers reports whether the role may add or update customers.
// Open to every authenticated role.
func CanManageCustomers(r Role) bool { return r.Valid() }

// CanSell reports whether the role may record sales.
func CanSell(r Role) bool { return r.Valid() }

// Actor identifies the authenticated user performing an operation.
type Actor struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Product is a sellable item with a mutable price and stock level.
type Product struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Category string    `json:"category"`
	Price    float64   `json:"price"`
	Stock    int       `json:"stock"`
	AddedAt  time.Time `json:"added_at"`
}

// Customer is a buyer record. Customers may be created inline during a sale.
type Customer struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Phone   string    `json:"phone"`
	AddedAt time.Time `json:"added_at"`
}

// Seller is a sales attribution target.
type Seller struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	AddedAt time.Time `json:"added_at"`
}

// Sale records a completed transaction. ProductID, CustomerID and SellerID are
// soft references: the referenced record may be absent at display time and
// callers must fall back to the raw id.
type Sale struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"product_id"`
	CustomerID string    `json:"customer_id"`
	SellerID   string    `json:"seller_id"`
	Quantity   int       `json:"quantity"`
	UnitPrice  float64   `json:"unit_price"`
	Timestamp  time.Time `json:"timestamp"`
}

// Total returns the sale revenue (quantity times the captured unit price).
func (s Sale) Total() float64 { return float64(s.Quantity) * s.UnitPrice }

// User is a login record. Passwords are compared as plain text; there is no
// credential storage beyond this.
type User struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// ProductPatch carries partial updates for a product. Nil fields leave the
// current value unchanged.
type ProductPatch struct {
	Name     *string
	Category *string
	Price    *float64
	Stock    *int
}

// CustomerPatch carries partial updates for a customer.
type CustomerPatch struct {
	Name  *string
	Phone *string
}

// SellerPatch carries partial updates for a seller.
type SellerPatch struct {
	Name *string
}

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported mutations captured in the audit trail.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}
