package workflow

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lost2found/backend/internal/models"
	"github.com/lost2found/backend/internal/status"
	"github.com/lost2found/backend/internal/store"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func seedItem(t *testing.T, s *store.MemoryStore, item *models.Item) string {
	t.Helper()
	data, err := store.ToMap(item)
	if err != nil {
		t.Fatalf("ToMap: %v", err)
	}
	id, err := s.Create(context.Background(), store.Items, data)
	if err != nil {
		t.Fatalf("seed item: %v", err)
	}
	return id
}

func fetchItem(t *testing.T, s *store.MemoryStore, id string) *models.Item {
	t.Helper()
	doc, err := s.Get(context.Background(), store.Items, id)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	var item models.Item
	if err := doc.DataTo(&item); err != nil {
		t.Fatalf("decode item: %v", err)
	}
	item.ID = doc.ID
	return &item
}

func TestApplyValidTransition(t *testing.T) {
	s := store.NewMemoryStore()
	exec := NewExecutor(s, testLogger())
	ctx := context.Background()

	id := seedItem(t, s, &models.Item{Status: status.Reported, Title: "Black umbrella"})
	item := fetchItem(t, s, id)

	if err := exec.Apply(ctx, item, status.MatchFound, nil); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	got := fetchItem(t, s, id)
	if got.Status != status.MatchFound {
		t.Errorf("status = %s, want MATCH_FOUND", got.Status)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("updatedAt not set")
	}
	if got.ResolvedAt != nil {
		t.Error("resolvedAt should not be set on a non-terminal transition")
	}
}

func TestApplyInvalidTransition(t *testing.T) {
	s := store.NewMemoryStore()
	exec := NewExecutor(s, testLogger())
	ctx := context.Background()

	id := seedItem(t, s, &models.Item{Status: status.Reported, Title: "Wallet"})
	item := fetchItem(t, s, id)

	err := exec.Apply(ctx, item, status.Verified, nil)
	var invalid *InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if invalid.From != status.Reported || invalid.To != status.Verified {
		t.Errorf("error carries %s -> %s", invalid.From, invalid.To)
	}

	got := fetchItem(t, s, id)
	if got.Status != status.Reported {
		t.Errorf("rejected transition wrote status %s", got.Status)
	}
}

func TestApplyEmptyStatusDefaultsToReported(t *testing.T) {
	s := store.NewMemoryStore()
	exec := NewExecutor(s, testLogger())
	ctx := context.Background()

	// Legacy document written before the status field existed.
	id, err := s.Create(ctx, store.Items, map[string]any{"title": "Old record", "userId": "u1"})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	item := fetchItem(t, s, id)

	if err := exec.Apply(ctx, item, status.ClaimRequested, nil); err != nil {
		t.Fatalf("Apply from legacy item: %v", err)
	}
	if got := fetchItem(t, s, id); got.Status != status.ClaimRequested {
		t.Errorf("status = %s", got.Status)
	}
}

func TestResolvedAtSetOnce(t *testing.T) {
	s := store.NewMemoryStore()
	exec := NewExecutor(s, testLogger())
	ctx := context.Background()

	id := seedItem(t, s, &models.Item{Status: status.Reported, Title: "Keys"})
	item := fetchItem(t, s, id)

	if err := exec.Apply(ctx, item, status.Secured, nil); err != nil {
		t.Fatalf("secure: %v", err)
	}
	secured := fetchItem(t, s, id)
	if secured.ResolvedAt == nil {
		t.Fatal("resolvedAt not set on SECURED")
	}
	first := *secured.ResolvedAt

	time.Sleep(5 * time.Millisecond)
	if err := exec.Apply(ctx, secured, status.Resolved, nil); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	resolved := fetchItem(t, s, id)
	if resolved.ResolvedAt == nil {
		t.Fatal("resolvedAt lost")
	}
	if !resolved.ResolvedAt.Equal(first) {
		t.Errorf("resolvedAt overwritten: %v != %v", resolved.ResolvedAt, first)
	}
}

func TestApplyInsideTransaction(t *testing.T) {
	s := store.NewMemoryStore()
	exec := NewExecutor(s, testLogger())
	ctx := context.Background()

	id := seedItem(t, s, &models.Item{Status: status.Reported, Title: "Laptop"})

	boom := errors.New("boom")
	err := s.RunTransaction(ctx, func(tx store.Tx) error {
		doc, err := tx.Get(store.Items, id)
		if err != nil {
			return err
		}
		var item models.Item
		if err := doc.DataTo(&item); err != nil {
			return err
		}
		item.ID = doc.ID
		if err := exec.Apply(ctx, &item, status.Secured, tx); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	if got := fetchItem(t, s, id); got.Status != status.Reported {
		t.Errorf("aborted transaction leaked status %s", got.Status)
	}
}
