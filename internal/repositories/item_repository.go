package repositories

import (
	"context"

	"github.com/lost2found/backend/internal/models"
	"github.com/lost2found/backend/internal/store"
)

// ItemRepository defines the interface for item CRUD. Status changes do
// NOT go through here; they funnel through the workflow executor.
type ItemRepository interface {
	CreateItem(ctx context.Context, item *models.Item) error
	GetItemByID(ctx context.Context, id string) (*models.Item, error)
	GetItemsByType(ctx context.Context, itemType string) ([]models.Item, error)
	GetItemsByUserID(ctx context.Context, userID string) ([]models.Item, error)
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
	DeleteItem(ctx context.Context, id string) error
}

// documentItemRepository implements ItemRepository over the document store.
type documentItemRepository struct {
	store store.Store
}

// NewItemRepository creates an ItemRepository backed by the given store.
func NewItemRepository(st store.Store) ItemRepository {
	return &documentItemRepository{store: st}
}

func (r *documentItemRepository) CreateItem(ctx context.Context, item *models.Item) error {
	data, err := store.ToMap(item)
	if err != nil {
		return err
	}
	id, err := r.store.Create(ctx, store.Items, data)
	if err != nil {
		return err
	}
	item.ID = id
	return nil
}

func (r *documentItemRepository) GetItemByID(ctx context.Context, id string) (*models.Item, error) {
	doc, err := r.store.Get(ctx, store.Items, id)
	if err != nil {
		return nil, err
	}
	var item models.Item
	if err := doc.DataTo(&item); err != nil {
		return nil, err
	}
	item.ID = doc.ID
	return &item, nil
}

func (r *documentItemRepository) GetItemsByType(ctx context.Context, itemType string) ([]models.Item, error) {
	return r.list(ctx, store.Where("type", "==", itemType))
}

func (r *documentItemRepository) GetItemsByUserID(ctx context.Context, userID string) ([]models.Item, error) {
	return r.list(ctx, store.Where("userId", "==", userID))
}

func (r *documentItemRepository) list(ctx context.Context, filters ...store.Filter) ([]models.Item, error) {
	docs, err := r.store.Query(ctx, store.Items, filters...)
	if err != nil {
		return nil, err
	}
	items := make([]models.Item, 0, len(docs))
	for _, doc := range docs {
		var item models.Item
		if err := doc.DataTo(&item); err != nil {
			return nil, err
		}
		item.ID = doc.ID
		items = append(items, item)
	}
	return items, nil
}

func (r *documentItemRepository) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	return r.store.Update(ctx, store.Items, id, fields)
}

func (r *documentItemRepository) DeleteItem(ctx context.Context, id string) error {
	return r.store.Delete(ctx, store.Items, id)
}
