package conditional

import (
	"errors"
	"fmt"
)

// Versioned is anything exposing the raw version its entity tag derives from.
type Versioned interface {
	Version() string
}

// Resource binds the coordinator to one kind of stored entity.
type Resource[T Versioned] struct {
	Name string
	// Lock acquires the exclusive per-identifier lock and returns its release.
	Lock func(id string) (unlock func())
	// Probe returns the current raw version without fetching the entity.
	Probe func(id string) (version string, ok bool)
	Fetch func(id string) (T, bool)
	// Observe, when set, is told how every request was resolved.
	Observe func(operation string, outcome Outcome)
}

func (r Resource[T]) observe(operation string, outcome Outcome) Outcome {
	if r.Observe != nil {
		r.Observe(operation, outcome)
	}
	return outcome
}

// Get resolves a conditional read. With probeOnly set the entity is not
// fetched and a Deliver outcome carries only the entity tag.
func Get[T Versioned](res Resource[T], id, ifNoneMatch string, probeOnly bool) Result[T] {
	op := "get"
	if probeOnly {
		op = "head"
	}

	if ifNoneMatch == "" && !probeOnly {
		return deliver(res, op, id)
	}

	version, ok := res.Probe(id)
	if !ok {
		return Result[T]{Outcome: res.observe(op, OutcomeNotFound)}
	}
	if Matches(ifNoneMatch, version) {
		return Result[T]{Outcome: res.observe(op, OutcomeNotModified), ETag: Weak(version)}
	}
	if probeOnly {
		return Result[T]{Outcome: res.observe(op, OutcomeDeliver), ETag: Weak(version)}
	}

	return deliver(res, op, id)
}

// deliver fetches and tags the entity. It may have moved on since any
// earlier probe, so the tag always comes from what is delivered.
func deliver[T Versioned](res Resource[T], op, id string) Result[T] {
	entity, ok := res.Fetch(id)
	if !ok {
		return Result[T]{Outcome: res.observe(op, OutcomeNotFound)}
	}
	return Result[T]{Outcome: res.observe(op, OutcomeDeliver), ETag: Weak(entity.Version()), Entity: &entity}
}

// Delete removes the entity only when ifMatch names its current version.
// A missing ifMatch is a failed precondition.
func Delete[T Versioned](res Resource[T], id, ifMatch string, remove func(id string) error) (Result[T], error) {
	unlock := res.Lock(id)
	defer unlock()

	outcome, ok := precondition(res, id, ifMatch)
	if !ok {
		return Result[T]{Outcome: res.observe("delete", outcome)}, nil
	}

	if err := remove(id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return Result[T]{Outcome: res.observe("delete", OutcomeNotFound)}, nil
		}
		return Result[T]{}, fmt.Errorf("delete %s %s: %w", res.Name, id, err)
	}
	return Result[T]{Outcome: res.observe("delete", OutcomeDeleted)}, nil
}

// Update runs mutate only when ifMatch names the current version. The
// per-identifier lock is held from the metadata probe until mutate returns,
// so mutate may read-modify-write the entity safely.
func Update[T Versioned](res Resource[T], operation, id, ifMatch string, mutate func(id string) (T, error)) (Result[T], error) {
	unlock := res.Lock(id)
	defer unlock()

	outcome, ok := precondition(res, id, ifMatch)
	if !ok {
		return Result[T]{Outcome: res.observe(operation, outcome)}, nil
	}

	entity, err := mutate(id)
	if err != nil {
		switch {
		case errors.Is(err, ErrRejected):
			return Result[T]{Outcome: res.observe(operation, OutcomeUnprocessable), Err: err}, nil
		case errors.Is(err, ErrNotFound):
			return Result[T]{Outcome: res.observe(operation, OutcomeNotFound)}, nil
		}
		return Result[T]{}, fmt.Errorf("%s %s %s: %w", operation, res.Name, id, err)
	}
	return Result[T]{Outcome: res.observe(operation, OutcomeDeliver), ETag: Weak(entity.Version()), Entity: &entity}, nil
}

func precondition[T Versioned](res Resource[T], id, ifMatch string) (Outcome, bool) {
	version, ok := res.Probe(id)
	if !ok {
		return OutcomeNotFound, false
	}
	if !Matches(ifMatch, version) {
		return OutcomePreconditionFailed, false
	}
	return OutcomeDeliver, true
}
