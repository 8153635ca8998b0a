package sqlite

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTemp(t *testing.T) (*Provider, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fallcache.db")
	p, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return p, path
}

func TestSetGetDel(t *testing.T) {
	ctx := context.Background()
	p, _ := openTemp(t)
	defer p.Close(ctx)

	if _, ok, err := p.Get(ctx, "k"); err != nil || ok {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}
	if ok, err := p.Set(ctx, "k", []byte("v1"), 1, 0); err != nil || !ok {
		t.Fatalf("Set: ok=%v err=%v", ok, err)
	}
	// upsert replaces
	if _, err := p.Set(ctx, "k", []byte("v2"), 1, 0); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, ok, err := p.Get(ctx, "k")
	if err != nil || !ok || !bytes.Equal(got, []byte("v2")) {
		t.Fatalf("Get: ok=%v err=%v got=%q", ok, err, got)
	}
	if err := p.Del(ctx, "k"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if _, ok, _ := p.Get(ctx, "k"); ok {
		t.Fatalf("expected miss after Del")
	}
}

func TestTTLExpiry(t *testing.T) {
	ctx := context.Background()
	p, _ := openTemp(t)
	defer p.Close(ctx)

	if _, err := p.Set(ctx, "k", []byte("v"), 1, 10*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	if _, ok, _ := p.Get(ctx, "k"); ok {
		t.Fatalf("expected expiry")
	}
}

// The whole point of the sqlite provider: values survive a reopen.
func TestPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	p, path := openTemp(t)
	if _, err := p.Set(ctx, "k", []byte("durable"), 1, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := p.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}

	p2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer p2.Close(ctx)

	got, ok, err := p2.Get(ctx, "k")
	if err != nil || !ok || !bytes.Equal(got, []byte("durable")) {
		t.Fatalf("Get after reopen: ok=%v err=%v got=%q", ok, err, got)
	}
}
