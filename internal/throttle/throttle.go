// Package throttle implements the per-user quota guards consulted before
// the claim workflow accepts new work. The checks are advisory read-then-
// decide pre-checks: a small race margin of over-admission is acceptable,
// the state machine itself stays safe without them.
package throttle

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/lost2found/backend/internal/models"
	"github.com/lost2found/backend/internal/store"
)

const (
	// MaxPendingClaims caps the number of unread claim-request
	// notifications a single claimant may have outstanding.
	MaxPendingClaims = 5

	// Rolling one-hour windows.
	MaxReportsPerHour = 10
	MaxClaimsPerHour  = 5

	window = time.Hour
)

// LimitError is returned when a quota is exceeded. Callers surface it as a
// 429 with the hint as the message.
type LimitError struct {
	Hint string
}

func (e *LimitError) Error() string { return e.Hint }

// windowCounter is the slice of the Redis API the rolling windows use.
type windowCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// Policy enforces the quotas. A nil redis client disables the rolling
// windows (development mode); the pending-claims check reads the
// notification store directly.
type Policy struct {
	rdb   windowCounter
	store store.Queryable
	log   *logrus.Logger
}

func New(rdb *redis.Client, st store.Queryable, log *logrus.Logger) *Policy {
	p := &Policy{store: st, log: log}
	if rdb != nil {
		p.rdb = rdb
	}
	return p
}

// AllowReport admits or rejects a new item report for the user.
func (p *Policy) AllowReport(ctx context.Context, userID string) error {
	return p.allowWindow(ctx, "throttle:report:"+userID, MaxReportsPerHour,
		"Too many reports. Please try again in an hour.")
}

// AllowClaim admits or rejects a new claim submission for the user. Both
// the rolling window and the pending-claims cap must pass.
func (p *Policy) AllowClaim(ctx context.Context, userID string) error {
	if err := p.allowWindow(ctx, "throttle:claim:"+userID, MaxClaimsPerHour,
		"Too many claim requests. Please try again in an hour."); err != nil {
		return err
	}
	return p.checkPendingClaims(ctx, userID)
}

func (p *Policy) allowWindow(ctx context.Context, key string, max int64, hint string) error {
	if p.rdb == nil {
		return nil
	}
	n, err := p.rdb.Incr(ctx, key).Result()
	if err != nil {
		// Advisory check: an unreachable Redis must not block users.
		p.log.WithError(err).WithField("key", key).Warn("throttle window check skipped")
		return nil
	}
	if n == 1 {
		if err := p.rdb.Expire(ctx, key, window).Err(); err != nil {
			p.log.WithError(err).WithField("key", key).Warn("throttle window expiry not set")
		}
	}
	if n > max {
		return &LimitError{Hint: hint}
	}
	return nil
}

func (p *Policy) checkPendingClaims(ctx context.Context, userID string) error {
	if p.store == nil {
		return nil
	}
	docs, err := p.store.Query(ctx, store.Notifications,
		store.Where("relatedUserId", "==", userID),
		store.Where("type", "==", models.NotificationClaimRequest),
		store.Where("read", "==", false),
	)
	if err != nil {
		p.log.WithError(err).WithField("user", userID).Warn("pending claims check skipped")
		return nil
	}
	if len(docs) >= MaxPendingClaims {
		return &LimitError{Hint: "You have too many pending claims. Wait for owners to review them first."}
	}
	return nil
}
