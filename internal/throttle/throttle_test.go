package throttle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/lost2found/backend/internal/models"
	"github.com/lost2found/backend/internal/store"
)

// fakeCounter stands in for Redis in window tests.
type fakeCounter struct {
	counts  map[string]int64
	expires map[string]time.Duration
	err     error
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: make(map[string]int64), expires: make(map[string]time.Duration)}
}

func (f *fakeCounter) Incr(ctx context.Context, key string) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeCounter) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	f.expires[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func seedClaimNotification(t *testing.T, s *store.MemoryStore, claimantID string, read bool) {
	t.Helper()
	_, err := s.Create(context.Background(), store.Notifications, map[string]any{
		"userId":        "owner-1",
		"type":          models.NotificationClaimRequest,
		"relatedUserId": claimantID,
		"read":          read,
	})
	if err != nil {
		t.Fatalf("seed notification: %v", err)
	}
}

func TestAllowClaimUnderPendingCap(t *testing.T) {
	s := store.NewMemoryStore()
	p := New(nil, s, testLogger())

	for i := 0; i < MaxPendingClaims-1; i++ {
		seedClaimNotification(t, s, "claimant-1", false)
	}

	if err := p.AllowClaim(context.Background(), "claimant-1"); err != nil {
		t.Fatalf("AllowClaim under cap: %v", err)
	}
}

func TestAllowClaimAtPendingCap(t *testing.T) {
	s := store.NewMemoryStore()
	p := New(nil, s, testLogger())

	for i := 0; i < MaxPendingClaims; i++ {
		seedClaimNotification(t, s, "claimant-1", false)
	}

	err := p.AllowClaim(context.Background(), "claimant-1")
	var limit *LimitError
	if !errors.As(err, &limit) {
		t.Fatalf("expected LimitError at cap, got %v", err)
	}
	if limit.Hint == "" {
		t.Error("limit error should carry a user-facing hint")
	}
}

func TestAllowClaimIgnoresReadAndOtherUsers(t *testing.T) {
	s := store.NewMemoryStore()
	p := New(nil, s, testLogger())

	// Reviewed claims no longer count against the cap.
	for i := 0; i < MaxPendingClaims; i++ {
		seedClaimNotification(t, s, "claimant-1", true)
	}
	// Another claimant's backlog is not ours.
	for i := 0; i < MaxPendingClaims; i++ {
		seedClaimNotification(t, s, "claimant-2", false)
	}

	if err := p.AllowClaim(context.Background(), "claimant-1"); err != nil {
		t.Fatalf("AllowClaim: %v", err)
	}
}

func TestAllowClaimIgnoresOtherNotificationTypes(t *testing.T) {
	s := store.NewMemoryStore()
	p := New(nil, s, testLogger())

	for i := 0; i < MaxPendingClaims; i++ {
		_, err := s.Create(context.Background(), store.Notifications, map[string]any{
			"userId":        "claimant-1",
			"type":          models.NotificationMatchFound,
			"relatedUserId": "claimant-1",
			"read":          false,
		})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	if err := p.AllowClaim(context.Background(), "claimant-1"); err != nil {
		t.Fatalf("AllowClaim: %v", err)
	}
}

func TestDisabledPolicyAllowsEverything(t *testing.T) {
	p := New(nil, nil, testLogger())
	ctx := context.Background()

	for i := 0; i < MaxReportsPerHour*2; i++ {
		if err := p.AllowReport(ctx, fmt.Sprintf("user-%d", i)); err != nil {
			t.Fatalf("AllowReport with throttling disabled: %v", err)
		}
	}
	if err := p.AllowClaim(ctx, "claimant-1"); err != nil {
		t.Fatalf("AllowClaim with throttling disabled: %v", err)
	}
}

func TestReportWindowCaps(t *testing.T) {
	rdb := newFakeCounter()
	p := &Policy{rdb: rdb, log: testLogger()}
	ctx := context.Background()

	for i := 0; i < MaxReportsPerHour; i++ {
		if err := p.AllowReport(ctx, "user-1"); err != nil {
			t.Fatalf("report %d should be admitted: %v", i+1, err)
		}
	}

	err := p.AllowReport(ctx, "user-1")
	var limit *LimitError
	if !errors.As(err, &limit) {
		t.Fatalf("expected LimitError past the window, got %v", err)
	}

	// Another user has their own window.
	if err := p.AllowReport(ctx, "user-2"); err != nil {
		t.Fatalf("other user should be admitted: %v", err)
	}
}

func TestClaimWindowCaps(t *testing.T) {
	rdb := newFakeCounter()
	p := &Policy{rdb: rdb, store: store.NewMemoryStore(), log: testLogger()}
	ctx := context.Background()

	for i := 0; i < MaxClaimsPerHour; i++ {
		if err := p.AllowClaim(ctx, "claimant-1"); err != nil {
			t.Fatalf("claim %d should be admitted: %v", i+1, err)
		}
	}
	var limit *LimitError
	if err := p.AllowClaim(ctx, "claimant-1"); !errors.As(err, &limit) {
		t.Fatalf("expected LimitError past the window, got %v", err)
	}
}

func TestWindowExpirySetOnFirstHit(t *testing.T) {
	rdb := newFakeCounter()
	p := &Policy{rdb: rdb, log: testLogger()}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := p.AllowReport(ctx, "user-1"); err != nil {
			t.Fatalf("AllowReport: %v", err)
		}
	}
	if got := rdb.expires["throttle:report:user-1"]; got != time.Hour {
		t.Errorf("window expiry = %v, want %v", got, time.Hour)
	}
	if len(rdb.expires) != 1 {
		t.Errorf("expiry should be set once per key, got %d entries", len(rdb.expires))
	}
}

func TestWindowAdmitsOnRedisOutage(t *testing.T) {
	rdb := newFakeCounter()
	rdb.err = errors.New("connection refused")
	p := &Policy{rdb: rdb, log: testLogger()}

	// Advisory check: an unreachable Redis must not lock users out.
	for i := 0; i < MaxReportsPerHour*2; i++ {
		if err := p.AllowReport(context.Background(), "user-1"); err != nil {
			t.Fatalf("AllowReport during outage: %v", err)
		}
	}
}

func TestLimitErrorMessage(t *testing.T) {
	err := &LimitError{Hint: "Too many claim requests. Please try again in an hour."}
	if err.Error() != err.Hint {
		t.Errorf("Error() should return the hint, got %q", err.Error())
	}
}
