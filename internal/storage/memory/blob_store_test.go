package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/JakeFAU/seo-snapshot-generator/internal/snapshot"
)

func TestPageStorePutObjectCopiesData(t *testing.T) {
	t.Parallel()

	store := NewPageStore()
	payload := []byte("content")
	uri, err := store.PutObject(context.Background(), "forum.html", payload, snapshot.PutOptions{Upsert: true})
	if err != nil {
		t.Fatalf("PutObject() error = %v", err)
	}
	if uri != "memory://forum.html" {
		t.Fatalf("unexpected uri %s", uri)
	}
	payload[0] = 'C'
	obj, ok := store.Get("forum.html")
	if !ok {
		t.Fatal("expected object to be stored")
	}
	if string(obj.Data) != "content" {
		t.Fatalf("expected stored copy to be immutable, got %q", obj.Data)
	}
}

func TestPageStoreUpsertSemantics(t *testing.T) {
	t.Parallel()

	store := NewPageStore()
	ctx := context.Background()
	opts := snapshot.PutOptions{Upsert: true, CacheControl: snapshot.DefaultCacheControl}
	for i := 0; i < 2; i++ {
		if _, err := store.PutObject(ctx, "index.html", []byte("same"), opts); err != nil {
			t.Fatalf("PutObject() error = %v", err)
		}
	}
	obj, _ := store.Get("index.html")
	if obj.Writes != 2 {
		t.Fatalf("expected 2 writes, got %d", obj.Writes)
	}
	if obj.Options.CacheControl != snapshot.DefaultCacheControl {
		t.Fatalf("unexpected cache control %q", obj.Options.CacheControl)
	}

	_, err := store.PutObject(ctx, "index.html", []byte("other"), snapshot.PutOptions{})
	if !errors.Is(err, snapshot.ErrPageExists) {
		t.Fatalf("expected ErrPageExists, got %v", err)
	}
	if names := store.Names(); len(names) != 1 || names[0] != "index.html" {
		t.Fatalf("unexpected names %v", names)
	}
}
