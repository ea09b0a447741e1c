package fs

import (
	"context"
	"io"
	"strings"
	"testing"

	"retailcore/internal/blob/core"
)

func TestStorePutGetRoundTrip(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	info, err := store.Put(ctx, "reports/daily/a.csv", strings.NewReader("date,revenue\n"), core.PutOptions{ContentType: "text/csv"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.ETag == "" {
		t.Fatalf("expected etag computed")
	}

	got, rc, err := store.Get(ctx, "reports/daily/a.csv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	payload, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(payload) != "date,revenue\n" {
		t.Fatalf("unexpected payload %q", payload)
	}
	if got.ContentType != "text/csv" || got.ETag != info.ETag {
		t.Fatalf("metadata mismatch: %+v vs %+v", got, info)
	}

	if _, err := store.Put(ctx, "reports/daily/a.csv", strings.NewReader("x"), core.PutOptions{}); err == nil {
		t.Fatalf("expected create-only semantics")
	}
}

func TestStoreListAndDelete(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	for _, key := range []string{"reports/a.json", "reports/b.json", "other/c.json"} {
		if _, err := store.Put(ctx, key, strings.NewReader("{}"), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}

	infos, err := store.List(ctx, "reports/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 keys under reports/, got %+v", infos)
	}

	existed, err := store.Delete(ctx, "reports/a.json")
	if err != nil || !existed {
		t.Fatalf("delete: existed=%v err=%v", existed, err)
	}
	existed, err = store.Delete(ctx, "reports/a.json")
	if err != nil || existed {
		t.Fatalf("second delete should be a no-op: existed=%v err=%v", existed, err)
	}
}

func TestStoreRejectsTraversalKeys(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	for _, key := range []string{"", "../escape", "/abs", "a/../../b"} {
		if _, err := store.Put(ctx, key, strings.NewReader("x"), core.PutOptions{}); err == nil {
			t.Fatalf("expected key %q rejected", key)
		}
	}
}
