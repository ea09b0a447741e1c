package core

import (
	"testing"

	"retailcore/internal/infra/persistence/memory"
	"retailcore/internal/infra/persistence/sqlite"
)

func TestOpenStoreSelectsDriver(t *testing.T) {
	store, err := OpenStore(nil, "")
	if err != nil {
		t.Fatalf("default driver: %v", err)
	}
	if _, ok := store.(*memory.Store); !ok {
		t.Fatalf("expected memory store by default, got %T", store)
	}

	store, err = OpenStore(nil, "sqlite")
	if err != nil {
		t.Fatalf("sqlite driver: %v", err)
	}
	sq, ok := store.(*sqlite.Store)
	if !ok {
		t.Fatalf("expected sqlite store, got %T", store)
	}
	defer func() { _ = sq.Close() }()

	if _, err := OpenStore(nil, "oracle"); err == nil {
		t.Fatalf("expected unknown driver rejected")
	}
}

func TestOpenStoreHonorsEnvFallback(t *testing.T) {
	t.Setenv("RETAILCORE_STORAGE_DRIVER", "memory")
	store, err := OpenStore(nil, "")
	if err != nil {
		t.Fatalf("env driver: %v", err)
	}
	if _, ok := store.(*memory.Store); !ok {
		t.Fatalf("expected memory store from env, got %T", store)
	}
}
