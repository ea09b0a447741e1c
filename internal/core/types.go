package core

import (
	"retailcore/internal/infra/persistence/memory"
	"retailcore/pkg/domain"
)

// Aliases keep service call sites terse while the canonical definitions live
// in pkg/domain.
type (
	Product  = domain.Product
	Customer = domain.Customer
	Seller   = domain.Seller
	Sale     = domain.Sale
	User     = domain.User
	Actor    = domain.Actor
	Result   = domain.Result
)

// DefaultRulesEngine returns an engine with the built-in retail rules
// registered.
func DefaultRulesEngine() *domain.RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(StockFloorRule{})
	engine.Register(SaleReferencesRule{})
	return engine
}

// NewInMemoryService creates a service over a fresh in-memory store with the
// given rules engine. A nil engine gets the default rule set.
func NewInMemoryService(engine *domain.RulesEngine, opts ...Option) *Service {
	if engine == nil {
		engine = DefaultRulesEngine()
	}
	return NewService(memory.NewStore(engine), opts...)
}
