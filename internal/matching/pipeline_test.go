package matching

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/lost2found/backend/internal/models"
	"github.com/lost2found/backend/internal/status"
	"github.com/lost2found/backend/internal/store"
	"github.com/lost2found/backend/internal/workflow"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type memoryRecords struct {
	records []*models.MatchRecord
}

func (m *memoryRecords) Insert(ctx context.Context, rec *models.MatchRecord) error {
	m.records = append(m.records, rec)
	return nil
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

func scoringServer(t *testing.T, scores map[string]float64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Candidates []struct {
				ID string `json:"id"`
			} `json:"candidates"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		var matches []map[string]any
		for _, c := range body.Candidates {
			if score, ok := scores[c.ID]; ok {
				matches = append(matches, map[string]any{"item_id": c.ID, "score": score, "reason": "visual similarity"})
			}
		}
		json.NewEncoder(w).Encode(map[string]any{"matches": matches})
	}))
}

func TestPipelineStrongMatch(t *testing.T) {
	s := store.NewMemoryStore()
	log := testLogger()
	records := &memoryRecords{}

	lostID := seedItem(t, s, &models.Item{Type: models.TypeLost, Status: status.Reported, UserID: "owner-1", Title: "Blue backpack"})
	foundID := seedItem(t, s, &models.Item{Type: models.TypeFound, Status: status.Reported, UserID: "finder-1", Title: "Backpack at library"})

	srv := scoringServer(t, map[string]float64{foundID: 91})
	defer srv.Close()

	p := NewPipeline(s, NewClient(srv.URL), records, workflow.NewExecutor(s, log), log)
	matches, err := p.Run(context.Background(), lostID)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}

	doc, _ := s.Get(context.Background(), store.Items, lostID)
	if doc.Data["status"] != string(status.MatchFound) {
		t.Errorf("item status = %v, want MATCH_FOUND", doc.Data["status"])
	}

	docs, _ := s.Query(context.Background(), store.Notifications, store.Where("userId", "==", "owner-1"))
	if len(docs) != 1 {
		t.Fatalf("expected 1 owner notification, got %d", len(docs))
	}
	if docs[0].Data["type"] != models.NotificationMatchFound {
		t.Errorf("notification type = %v", docs[0].Data["type"])
	}

	if len(records.records) != 1 || records.records[0].CandidateID != foundID {
		t.Errorf("match history = %+v", records.records)
	}
}

func TestPipelineWeakMatchesAreQuiet(t *testing.T) {
	s := store.NewMemoryStore()
	log := testLogger()
	records := &memoryRecords{}

	lostID := seedItem(t, s, &models.Item{Type: models.TypeLost, Status: status.Reported, UserID: "owner-1", Title: "Keys"})
	foundID := seedItem(t, s, &models.Item{Type: models.TypeFound, Status: status.Reported, UserID: "finder-1", Title: "Sunglasses"})

	srv := scoringServer(t, map[string]float64{foundID: 30})
	defer srv.Close()

	p := NewPipeline(s, NewClient(srv.URL), records, workflow.NewExecutor(s, log), log)
	matches, err := p.Run(context.Background(), lostID)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected the weak match returned, got %d", len(matches))
	}

	doc, _ := s.Get(context.Background(), store.Items, lostID)
	if doc.Data["status"] != string(status.Reported) {
		t.Errorf("weak match changed status to %v", doc.Data["status"])
	}
	docs, _ := s.Query(context.Background(), store.Notifications)
	if len(docs) != 0 {
		t.Errorf("weak match created %d notifications", len(docs))
	}
	if len(records.records) != 0 {
		t.Errorf("weak match recorded history: %+v", records.records)
	}
}

func TestPipelineSkipsClosedCandidates(t *testing.T) {
	s := store.NewMemoryStore()
	log := testLogger()

	lostID := seedItem(t, s, &models.Item{Type: models.TypeLost, Status: status.Reported, UserID: "owner-1", Title: "Laptop"})
	seedItem(t, s, &models.Item{Type: models.TypeFound, Status: status.Resolved, UserID: "finder-1", Title: "Old case"})

	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		json.NewEncoder(w).Encode(map[string]any{"matches": []any{}})
	}))
	defer srv.Close()

	p := NewPipeline(s, NewClient(srv.URL), nil, workflow.NewExecutor(s, log), log)
	matches, err := p.Run(context.Background(), lostID)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if matches != nil {
		t.Errorf("expected no matches, got %v", matches)
	}
	if called {
		t.Error("scorer should not be called when there are no open candidates")
	}
}

func TestPipelineDoesNotOverwriteClaimCommittedDuringScoring(t *testing.T) {
	s := store.NewMemoryStore()
	log := testLogger()

	lostID := seedItem(t, s, &models.Item{Type: models.TypeLost, Status: status.Reported, UserID: "owner-1", Title: "Wallet"})
	foundID := seedItem(t, s, &models.Item{Type: models.TypeFound, Status: status.Reported, UserID: "finder-1", Title: "Wallet at cafeteria"})

	// A claim lands after the pipeline snapshots the item but before the
	// scorer responds.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := s.Update(context.Background(), store.Items, lostID, map[string]any{
			"status": string(status.ClaimRequested),
		}); err != nil {
			t.Errorf("mid-flight claim: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"matches": []map[string]any{{"item_id": foundID, "score": 95, "reason": "visual similarity"}},
		})
	}))
	defer srv.Close()

	p := NewPipeline(s, NewClient(srv.URL), nil, workflow.NewExecutor(s, log), log)
	if _, err := p.Run(context.Background(), lostID); err != nil {
		t.Fatalf("Run: %v", err)
	}

	doc, _ := s.Get(context.Background(), store.Items, lostID)
	if doc.Data["status"] != string(status.ClaimRequested) {
		t.Errorf("pipeline overwrote a committed claim: status = %v", doc.Data["status"])
	}
}

func TestPipelineKeepsClaimReviewStatus(t *testing.T) {
	s := store.NewMemoryStore()
	log := testLogger()

	lostID := seedItem(t, s, &models.Item{Type: models.TypeLost, Status: status.ClaimRequested, UserID: "owner-1", Title: "Phone"})
	foundID := seedItem(t, s, &models.Item{Type: models.TypeFound, Status: status.Reported, UserID: "finder-1", Title: "Phone at gym"})

	srv := scoringServer(t, map[string]float64{foundID: 95})
	defer srv.Close()

	p := NewPipeline(s, NewClient(srv.URL), nil, workflow.NewExecutor(s, log), log)
	if _, err := p.Run(context.Background(), lostID); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// The notification goes out, but an item under claim review does not
	// fall back to MATCH_FOUND.
	doc, _ := s.Get(context.Background(), store.Items, lostID)
	if doc.Data["status"] != string(status.ClaimRequested) {
		t.Errorf("status = %v, want CLAIM_REQUESTED", doc.Data["status"])
	}
	docs, _ := s.Query(context.Background(), store.Notifications, store.Where("userId", "==", "owner-1"))
	if len(docs) != 1 {
		t.Errorf("expected owner notification, got %d", len(docs))
	}
}
