package session

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	m := NewMemoryStore()
	m.now = func() time.Time { return now }

	m.Save(ctx, "short", "a", time.Minute)
	m.Save(ctx, "forever", "b", 0)

	now = now.Add(2 * time.Minute)
	if _, err := m.Load(ctx, "short"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expired token loaded: %v", err)
	}
	if tok, err := m.Load(ctx, "forever"); err != nil || tok != "b" {
		t.Errorf("forever = %q, %v", tok, err)
	}
}

func TestMemoryStorePurge(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	m := NewMemoryStore()
	m.now = func() time.Time { return now }
	m.Save(ctx, "a", "1", time.Second)
	m.Save(ctx, "b", "2", time.Second)
	m.Save(ctx, "c", "3", time.Hour)

	now = now.Add(time.Minute)
	n, err := m.Purge(ctx)
	if err != nil || n != 2 {
		t.Errorf("Purge = %d, %v", n, err)
	}
}

func TestSealedStore(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	s, err := Sealed(inner, "secret")
	if err != nil {
		t.Fatalf("Sealed: %v", err)
	}
	if err := s.Save(ctx, "adminToken:x", "backend-token", time.Hour); err != nil {
		t.Fatalf("Save: %v", err)
	}

	raw, _ := inner.Load(ctx, "adminToken:x")
	if raw == "backend-token" || raw == "" {
		t.Errorf("token stored in clear: %q", raw)
	}
	if got, err := s.Load(ctx, "adminToken:x"); err != nil || got != "backend-token" {
		t.Errorf("Load = %q, %v", got, err)
	}

	// a sealed value moved to another key must not open
	inner.Save(ctx, "adminToken:y", raw, time.Hour)
	if _, err := s.Load(ctx, "adminToken:y"); !errors.Is(err, ErrNotFound) {
		t.Errorf("moved token opened: %v", err)
	}

	other, _ := Sealed(inner, "other-secret")
	if _, err := other.Load(ctx, "adminToken:x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("wrong secret opened token: %v", err)
	}

	if err := s.Delete(ctx, "adminToken:x"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Load(ctx, "adminToken:x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted token loaded: %v", err)
	}
}
