package workflow

import (
	"errors"
	"fmt"

	"github.com/lost2found/backend/internal/status"
)

// Sentinel errors surfaced by workflow operations. Handlers map these to
// HTTP status codes; best-effort side-effect failures are logged and never
// returned through this surface.
var (
	ErrNotFound  = errors.New("item not found")
	ErrForbidden = errors.New("forbidden")
)

// InvalidTransitionError rejects a status change not present in the
// allowed-transition table. The item is left untouched.
type InvalidTransitionError struct {
	From status.Status
	To   status.Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}
