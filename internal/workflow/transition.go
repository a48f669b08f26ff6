package workflow

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lost2found/backend/internal/models"
	"github.com/lost2found/backend/internal/status"
	"github.com/lost2found/backend/internal/store"
)

// Executor is the single gate for item status writes. Every status change
// in the application funnels through Apply.
type Executor struct {
	store store.Store
	log   *logrus.Logger
}

// NewExecutor creates an Executor over the given store.
func NewExecutor(st store.Store, log *logrus.Logger) *Executor {
	return &Executor{store: st, log: log}
}

// Apply validates the transition against the status registry and writes the
// update payload. When tx is non-nil the write is enlisted in the caller's
// transaction instead of committing on its own. The caller is responsible
// for having read item inside that same transaction, so concurrent
// transitions on one item are linearized by the store.
func (e *Executor) Apply(ctx context.Context, item *models.Item, next status.Status, tx store.Tx) error {
	current := status.OrDefault(item.Status)
	if !status.CanTransition(item.Status, next) {
		return &InvalidTransitionError{From: current, To: next}
	}

	now := time.Now().UTC()
	fields := map[string]any{
		"status":    string(next),
		"updatedAt": now.Format(time.RFC3339Nano),
	}
	// resolvedAt marks the first entry into a handled state and is never
	// overwritten by later transitions.
	if (next == status.Resolved || next == status.Secured) && item.ResolvedAt == nil {
		fields["resolvedAt"] = now.Format(time.RFC3339Nano)
	}

	e.log.WithFields(logrus.Fields{
		"item": item.ID,
		"from": current,
		"to":   next,
	}).Info("item status transition")

	if tx != nil {
		return tx.Update(store.Items, item.ID, fields)
	}
	return e.store.Update(ctx, store.Items, item.ID, fields)
}
