package cart

import (
	"fmt"
	"strings"

	"github.com/angelmondragon/halcart/internal/conditional"
)

// ErrNotFound is returned by store mutations addressing a cart or item that does not exist.
var ErrNotFound = fmt.Errorf("cart store: %w", conditional.ErrNotFound)

// Violation describes one invalid field of the item at Index in a batch.
type Violation struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// ValidationError rejects a whole batch; nothing from it was stored.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("item %d: %s", v.Index, v.Message))
	}
	return "invalid items: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == conditional.ErrRejected
}
