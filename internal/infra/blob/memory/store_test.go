package memory

import (
	"context"
	"io"
	"strings"
	"testing"

	"retailcore/internal/blob/core"
)

func TestStoreLifecycle(t *testing.T) {
	store := New()
	ctx := context.Background()

	info, err := store.Put(ctx, "reports/a.json", strings.NewReader("{}"), core.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"report": "daily_revenue"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != 2 || info.ContentType != "application/json" {
		t.Fatalf("unexpected info: %+v", info)
	}

	if _, err := store.Put(ctx, "reports/a.json", strings.NewReader("{}"), core.PutOptions{}); err == nil {
		t.Fatalf("expected create-only semantics")
	}

	head, err := store.Head(ctx, "reports/a.json")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if head.Metadata["report"] != "daily_revenue" {
		t.Fatalf("metadata lost: %+v", head.Metadata)
	}

	got, rc, err := store.Get(ctx, "reports/a.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	payload, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(payload) != "{}" || got.Key != "reports/a.json" {
		t.Fatalf("unexpected payload %q info %+v", payload, got)
	}

	if _, err := store.Put(ctx, "reports/b.csv", strings.NewReader("x,y\n"), core.PutOptions{}); err != nil {
		t.Fatalf("put b: %v", err)
	}
	infos, err := store.List(ctx, "reports/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "reports/a.json" || infos[1].Key != "reports/b.csv" {
		t.Fatalf("unexpected listing: %+v", infos)
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
