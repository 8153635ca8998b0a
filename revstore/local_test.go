package revstore

import (
	"context"
	"testing"
)

func TestLocalCurrentMissingIsZero(t *testing.T) {
	s := NewLocal()
	if r, err := s.Current(context.Background(), "snap:task"); err != nil || r != 0 {
		t.Fatalf("Current: r=%d err=%v", r, err)
	}
}

func TestLocalBumpSequence(t *testing.T) {
	ctx := context.Background()
	s := NewLocal()
	for want := uint64(1); want <= 3; want++ {
		got, err := s.Bump(ctx, "k")
		if err != nil || got != want {
			t.Fatalf("Bump #%d: got=%d err=%v", want, got, err)
		}
	}
	if r, _ := s.Current(ctx, "k"); r != 3 {
		t.Fatalf("Current after bumps: %d", r)
	}
}

func TestLocalAdvanceOnlyRaises(t *testing.T) {
	ctx := context.Background()
	s := NewLocal()
	if err := s.Advance(ctx, "k", 5); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if r, _ := s.Current(ctx, "k"); r != 5 {
		t.Fatalf("Current: %d want 5", r)
	}
	// lower values never win
	if err := s.Advance(ctx, "k", 2); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if r, _ := s.Current(ctx, "k"); r != 5 {
		t.Fatalf("Current after lower advance: %d want 5", r)
	}
}
