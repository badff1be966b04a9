package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/halcart/internal/conditional"
	"github.com/angelmondragon/halcart/pkg/logger"
)

const (
	resourceCart = "cart"
	resourceItem = "item"
)

type outcomeRecorder interface {
	Record(resource, operation, outcome string)
}

// Service exposes carts and items through the conditional request protocol.
type Service interface {
	CreateCart(ctx context.Context, items []ItemInput) (Cart, error)
	GetCart(ctx context.Context, id, ifNoneMatch string, probeOnly bool) conditional.Result[Cart]
	DeleteCart(ctx context.Context, id, ifMatch string) (conditional.Result[Cart], error)
	ReplaceItems(ctx context.Context, id, ifMatch string, items []ItemInput) (conditional.Result[Cart], error)
	AddItems(ctx context.Context, id, ifMatch string, items []ItemInput) (conditional.Result[Cart], error)

	GetItem(ctx context.Context, id, ifNoneMatch string, probeOnly bool) conditional.Result[Item]
	DeleteItem(ctx context.Context, id, ifMatch string) (conditional.Result[Item], error)
	PutItem(ctx context.Context, id, ifMatch string, item ItemInput) (conditional.Result[Item], error)
	PatchItem(ctx context.Context, id, ifMatch string, patch ItemPatch) (conditional.Result[Item], error)
}

type service struct {
	store   *Store
	logg    *logger.Logger
	metrics outcomeRecorder
}

// NewService builds the cart service over store. metrics may be nil.
func NewService(store *Store, logg *logger.Logger, metrics outcomeRecorder) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{store: store, logg: logg, metrics: metrics}, nil
}

func (s *service) carts() conditional.Resource[Cart] {
	return conditional.Resource[Cart]{
		Name: resourceCart,
		Lock: s.store.LockCart,
		Probe: func(id string) (string, bool) {
			meta, ok := s.store.Metadata(id)
			return meta.Version(), ok
		},
		Fetch:   s.store.Get,
		Observe: s.observer(resourceCart),
	}
}

func (s *service) items() conditional.Resource[Item] {
	return conditional.Resource[Item]{
		Name: resourceItem,
		Lock: s.store.LockItem,
		Probe: func(id string) (string, bool) {
			meta, ok := s.store.ItemMetadata(id)
			return meta.Version(), ok
		},
		Fetch:   s.store.GetItem,
		Observe: s.observer(resourceItem),
	}
}

func (s *service) observer(resource string) func(string, conditional.Outcome) {
	if s.metrics == nil {
		return nil
	}
	return func(operation string, outcome conditional.Outcome) {
		s.metrics.Record(resource, operation, outcome.String())
	}
}

func (s *service) CreateCart(ctx context.Context, items []ItemInput) (Cart, error) {
	created, err := s.store.Create(items)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			s.logg.Info(s.logg.WithField(ctx, "violations", len(verr.Violations)), "cart.create_rejected")
			return Cart{}, err
		}
		return Cart{}, fmt.Errorf("create cart: %w", err)
	}
	ctx = s.logg.WithFields(s.logg.WithCartID(ctx, created.ID), map[string]any{"item_count": len(created.Items)})
	s.logg.Info(ctx, "cart.created")
	if s.metrics != nil {
		s.metrics.Record(resourceCart, "create", conditional.OutcomeDeliver.String())
	}
	return created, nil
}

func (s *service) GetCart(ctx context.Context, id, ifNoneMatch string, probeOnly bool) conditional.Result[Cart] {
	return conditional.Get(s.carts(), id, ifNoneMatch, probeOnly)
}

func (s *service) DeleteCart(ctx context.Context, id, ifMatch string) (conditional.Result[Cart], error) {
	res, err := conditional.Delete(s.carts(), id, ifMatch, s.store.Delete)
	s.logResult(s.logg.WithCartID(ctx, id), "cart.deleted", res.Outcome, err)
	return res, err
}

func (s *service) ReplaceItems(ctx context.Context, id, ifMatch string, items []ItemInput) (conditional.Result[Cart], error) {
	res, err := conditional.Update(s.carts(), "replace", id, ifMatch, func(id string) (Cart, error) {
		return s.store.ReplaceItems(id, items)
	})
	s.logResult(s.logg.WithCartID(ctx, id), "cart.items_replaced", res.Outcome, err)
	return res, err
}

func (s *service) AddItems(ctx context.Context, id, ifMatch string, items []ItemInput) (conditional.Result[Cart], error) {
	res, err := conditional.Update(s.carts(), "add", id, ifMatch, func(id string) (Cart, error) {
		return s.store.AddItems(id, items)
	})
	s.logResult(s.logg.WithCartID(ctx, id), "cart.items_added", res.Outcome, err)
	return res, err
}

func (s *service) GetItem(ctx context.Context, id, ifNoneMatch string, probeOnly bool) conditional.Result[Item] {
	return conditional.Get(s.items(), id, ifNoneMatch, probeOnly)
}

func (s *service) DeleteItem(ctx context.Context, id, ifMatch string) (conditional.Result[Item], error) {
	res, err := conditional.Delete(s.items(), id, ifMatch, s.store.DeleteItem)
	s.logResult(s.logg.WithItemID(ctx, id), "item.deleted", res.Outcome, err)
	return res, err
}

func (s *service) PutItem(ctx context.Context, id, ifMatch string, item ItemInput) (conditional.Result[Item], error) {
	res, err := conditional.Update(s.items(), "put", id, ifMatch, func(id string) (Item, error) {
		return s.store.PutItem(id, item)
	})
	s.logResult(s.logg.WithItemID(ctx, id), "item.replaced", res.Outcome, err)
	return res, err
}

// PatchItem overwrites only the fields present in patch. The merge runs under
// the item lock, so the fields it keeps are the ones the precondition saw.
func (s *service) PatchItem(ctx context.Context, id, ifMatch string, patch ItemPatch) (conditional.Result[Item], error) {
	res, err := conditional.Update(s.items(), "patch", id, ifMatch, func(id string) (Item, error) {
		current, ok := s.store.GetItem(id)
		if !ok {
			return Item{}, ErrNotFound
		}
		return s.store.PutItem(id, patch.Apply(current))
	})
	s.logResult(s.logg.WithItemID(ctx, id), "item.patched", res.Outcome, err)
	return res, err
}

func (s *service) logResult(ctx context.Context, event string, outcome conditional.Outcome, err error) {
	switch {
	case err != nil:
		s.logg.Error(ctx, event+"_failed", err)
	case outcome == conditional.OutcomeDeliver, outcome == conditional.OutcomeDeleted:
		s.logg.Info(ctx, event)
	case outcome == conditional.OutcomePreconditionFailed:
		s.logg.Warn(ctx, "precondition.failed")
	default:
		s.logg.Debug(s.logg.WithField(ctx, "outcome", outcome.String()), event+"_skipped")
	}
}
