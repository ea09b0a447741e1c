package core

import (
	"fmt"
	"os"

	"retailcore/internal/infra/persistence/memory"
	"retailcore/internal/infra/persistence/sqlite"
	"retailcore/pkg/domain"
)

// StorageDriver identifies a concrete storage implementation.
type StorageDriver string

const (
	StorageMemory StorageDriver = "memory" // plain in-memory maps
	StorageSQLite StorageDriver = "sqlite" // in-memory sqlite mirror
)

// OpenStore selects a backend. An empty driver falls back to the
// RETAILCORE_STORAGE_DRIVER environment variable, then to memory. Both
// backends hold state for the process lifetime only.
//
//	RETAILCORE_STORAGE_DRIVER: memory|sqlite (default memory)
func OpenStore(engine *domain.RulesEngine, driver string) (domain.Store, error) {
	if driver == "" {
		driver = os.Getenv("RETAILCORE_STORAGE_DRIVER")
	}
	if driver == "" {
		driver = string(StorageMemory)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.NewStore(engine), nil
	case StorageSQLite:
		return sqlite.NewStore(engine)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
