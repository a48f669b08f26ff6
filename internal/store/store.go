package store

import "context"

// Collection names used by the application.
const (
	Items         = "items"
	Notifications = "notifications"
)

// Document is a raw record read from the store.
type Document struct {
	ID   string
	Data map[string]any
}

// Filter is a single equality/comparison constraint on a query.
type Filter struct {
	Field string
	Op    string // "==", "<", "<=", ">", ">="
	Value any
}

// Where is shorthand for building a Filter.
func Where(field, op string, value any) Filter {
	return Filter{Field: field, Op: op, Value: value}
}

// Tx is the capability handed to a transaction function. Reads must happen
// before writes; writes are only visible once the transaction commits.
type Tx interface {
	Get(collection, id string) (Document, error)
	Create(collection string, data map[string]any) (string, error)
	Update(collection, id string, fields map[string]any) error
}

// Queryable is the read-only surface of a Store.
type Queryable interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error)
}

// Store is a transactional document store. The Firestore adapter backs it
// in production; the in-memory adapter backs it in tests.
type Store interface {
	Queryable
	Create(ctx context.Context, collection string, data map[string]any) (string, error)
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	RunTransaction(ctx context.Context, fn func(tx Tx) error) error
}
