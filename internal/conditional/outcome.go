package conditional

import "errors"

// Outcome is the terminal state of a conditional request.
type Outcome int

const (
	OutcomeDeliver Outcome = iota
	OutcomeNotFound
	OutcomeNotModified
	OutcomePreconditionFailed
	OutcomeDeleted
	OutcomeUnprocessable
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDeliver:
		return "deliver"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeNotModified:
		return "not_modified"
	case OutcomePreconditionFailed:
		return "precondition_failed"
	case OutcomeDeleted:
		return "deleted"
	case OutcomeUnprocessable:
		return "unprocessable"
	}
	return "unknown"
}

var (
	// ErrNotFound marks a mutation whose target vanished after the metadata probe.
	ErrNotFound = errors.New("resource not found")
	// ErrRejected marks a mutation refused because of its payload. Errors
	// matching it resolve to OutcomeUnprocessable instead of failing the request.
	ErrRejected = errors.New("mutation rejected")
)

// Result carries the outcome of a conditional request together with the
// entity (when one is delivered) and the entity tag of its current version.
type Result[T any] struct {
	Outcome Outcome
	ETag    string
	Entity  *T
	// Err holds the rejection for OutcomeUnprocessable.
	Err error
}
