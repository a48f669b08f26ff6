package matching

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lost2found/backend/internal/models"
	"github.com/lost2found/backend/internal/status"
	"github.com/lost2found/backend/internal/store"
	"github.com/lost2found/backend/internal/workflow"
)

// StrongMatchThreshold is the minimum score that triggers a MATCH_FOUND
// notification and status transition.
const StrongMatchThreshold = 70.0

// RecordStore persists scored match pairs for the matches history view.
type RecordStore interface {
	Insert(ctx context.Context, record *models.MatchRecord) error
}

// Pipeline runs the AI scorer for an item and turns strong matches into
// MATCH_FOUND notifications. The status transition goes through the
// executor like every other status change; everything else here is
// additive and best-effort.
type Pipeline struct {
	store    store.Store
	client   *Client
	records  RecordStore
	executor *workflow.Executor
	log      *logrus.Logger
}

func NewPipeline(st store.Store, client *Client, records RecordStore, exec *workflow.Executor, log *logrus.Logger) *Pipeline {
	return &Pipeline{store: st, client: client, records: records, executor: exec, log: log}
}

func oppositeType(itemType string) string {
	if itemType == models.TypeLost {
		return models.TypeFound
	}
	return models.TypeLost
}

// Run scores all open opposite-type items against the given item and
// returns the matches. Strong matches are recorded and notified.
func (p *Pipeline) Run(ctx context.Context, itemID string) ([]Match, error) {
	doc, err := p.store.Get(ctx, store.Items, itemID)
	if err != nil {
		return nil, err
	}
	var item models.Item
	if err := doc.DataTo(&item); err != nil {
		return nil, err
	}
	item.ID = doc.ID

	candidates, err := p.openCandidates(ctx, oppositeType(item.Type))
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	matches, err := p.client.MatchItems(ctx, &item, candidates)
	if err != nil {
		return nil, err
	}

	strong := false
	for _, m := range matches {
		if m.Score < StrongMatchThreshold {
			continue
		}
		strong = true
		p.record(ctx, &item, m)
		p.notifyOwner(ctx, &item, m)
	}
	if strong {
		p.markMatchFound(ctx, item.ID)
	}
	return matches, nil
}

func (p *Pipeline) openCandidates(ctx context.Context, itemType string) ([]models.Item, error) {
	docs, err := p.store.Query(ctx, store.Items, store.Where("type", "==", itemType))
	if err != nil {
		return nil, err
	}
	var items []models.Item
	for _, doc := range docs {
		var it models.Item
		if err := doc.DataTo(&it); err != nil {
			continue
		}
		it.ID = doc.ID
		if status.IsTerminal(it.Status) {
			continue
		}
		items = append(items, it)
	}
	return items, nil
}

func (p *Pipeline) record(ctx context.Context, item *models.Item, m Match) {
	if p.records == nil {
		return
	}
	rec := &models.MatchRecord{
		ItemID:      item.ID,
		CandidateID: m.ItemID,
		Score:       m.Score,
		Reason:      m.Reason,
		CreatedAt:   time.Now().UTC(),
	}
	if err := p.records.Insert(ctx, rec); err != nil {
		p.log.WithError(err).WithField("item", item.ID).Warn("match record insert failed")
	}
}

func (p *Pipeline) notifyOwner(ctx context.Context, item *models.Item, m Match) {
	n := &models.Notification{
		UserID:    item.UserID,
		Type:      models.NotificationMatchFound,
		Title:     "Possible match found",
		Message:   fmt.Sprintf("We may have found a match for %q (score %.0f). %s", item.Title, m.Score, m.Reason),
		ItemID:    item.ID,
		CreatedAt: time.Now().UTC(),
	}
	data, err := store.ToMap(n)
	if err == nil {
		_, err = p.store.Create(ctx, store.Notifications, data)
	}
	if err != nil {
		p.log.WithError(err).WithField("item", item.ID).Warn("match notification failed")
	}
}

// markMatchFound re-reads the item inside a transaction before applying
// the transition: the scorer call takes seconds, and a claim may have
// committed since the snapshot was taken. Items already in claim review
// keep their status; the table rejects the edge and that is fine here.
func (p *Pipeline) markMatchFound(ctx context.Context, itemID string) {
	err := p.store.RunTransaction(ctx, func(tx store.Tx) error {
		doc, err := tx.Get(store.Items, itemID)
		if err != nil {
			return err
		}
		var item models.Item
		if err := doc.DataTo(&item); err != nil {
			return err
		}
		item.ID = doc.ID
		return p.executor.Apply(ctx, &item, status.MatchFound, tx)
	})
	if err != nil {
		p.log.WithError(err).WithField("item", itemID).Info("item not moved to MATCH_FOUND")
	}
}
