package services

import (
	"context"
	"testing"
)

func TestMemorySessionStoreRoundTrip(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	session := &ReviewSession{ScrollOffset: 420, ActiveQuestionID: "q-7", DashboardTab: "assessment"}
	if err := store.Save(ctx, "user-1", "cand-1", session); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := store.Get(ctx, "user-1", "cand-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected a session, got nil")
	}
	if got.ScrollOffset != 420 || got.ActiveQuestionID != "q-7" || got.DashboardTab != "assessment" {
		t.Errorf("unexpected session %+v", got)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("expected UpdatedAt stamped on save")
	}
}

func TestMemorySessionStoreMissingIsNil(t *testing.T) {
	store := NewMemorySessionStore()

	got, err := store.Get(context.Background(), "user-1", "cand-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for a missing session, got %+v", got)
	}
}

func TestMemorySessionStoreIsolatedPerPair(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	if err := store.Save(ctx, "user-1", "cand-1", &ReviewSession{ScrollOffset: 1}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.Save(ctx, "user-1", "cand-2", &ReviewSession{ScrollOffset: 2}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.Save(ctx, "user-2", "cand-1", &ReviewSession{ScrollOffset: 3}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, tt := range []struct {
		userID, candidateID string
		want                int
	}{
		{"user-1", "cand-1", 1},
		{"user-1", "cand-2", 2},
		{"user-2", "cand-1", 3},
	} {
		got, err := store.Get(ctx, tt.userID, tt.candidateID)
		if err != nil || got == nil {
			t.Fatalf("get %s/%s failed: %v %v", tt.userID, tt.candidateID, got, err)
		}
		if got.ScrollOffset != tt.want {
			t.Errorf("get %s/%s = offset %d, want %d", tt.userID, tt.candidateID, got.ScrollOffset, tt.want)
		}
	}
}

func TestMemorySessionStoreReturnsCopies(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	if err := store.Save(ctx, "user-1", "cand-1", &ReviewSession{ScrollOffset: 10}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	first, _ := store.Get(ctx, "user-1", "cand-1")
	first.ScrollOffset = 999

	second, _ := store.Get(ctx, "user-1", "cand-1")
	if second.ScrollOffset != 10 {
		t.Errorf("mutating a returned session leaked into the store: got %d", second.ScrollOffset)
	}
}

func TestMemorySessionStoreDelete(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	if err := store.Save(ctx, "user-1", "cand-1", &ReviewSession{ScrollOffset: 5}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.Delete(ctx, "user-1", "cand-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	got, err := store.Get(ctx, "user-1", "cand-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected session gone after delete, got %+v", got)
	}

	// Deleting a missing session is a no-op
	if err := store.Delete(ctx, "user-1", "cand-1"); err != nil {
		t.Errorf("expected idempotent delete, got %v", err)
	}
}

func TestSessionKey(t *testing.T) {
	got := sessionKey("u1", "c1")
	want := "talentgrid:review-session:u1:c1"
	if got != want {
		t.Errorf("sessionKey = %q, want %q", got, want)
	}
}
