package cart

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

type cartRecord struct {
	id        string
	createdAt time.Time
	updatedAt time.Time
	itemIDs   []string
}

type itemRecord struct {
	id        string
	cartID    string
	title     string
	quantity  int
	createdAt time.Time
	updatedAt time.Time
}

// Store owns every cart and item. Each method is atomic; callers composing a
// read-check-write sequence hold LockCart or LockItem around it. The write
// section of mu only covers map updates for one batch, so mutations of
// different carts serialize briefly there and nowhere else.
type Store struct {
	mu    sync.RWMutex
	carts map[string]*cartRecord
	items map[string]*itemRecord

	locks *keyedMutex
	now   func() time.Time
	newID func() string
}

type StoreOption func(*Store)

// WithClock overrides the time source used for version stamps.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides identifier generation.
func WithIDGenerator(newID func() string) StoreOption {
	return func(s *Store) { s.newID = newID }
}

func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		carts: make(map[string]*cartRecord),
		items: make(map[string]*itemRecord),
		locks: newKeyedMutex(),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LockCart serializes mutations of one cart.
func (s *Store) LockCart(id string) func() {
	return s.locks.Lock("cart:" + id)
}

// LockItem serializes mutations of one item.
func (s *Store) LockItem(id string) func() {
	return s.locks.Lock("item:" + id)
}

// Create validates every input and stores a new cart holding them. Nothing
// is stored when any input is invalid.
func (s *Store) Create(inputs []ItemInput) (Cart, error) {
	normalized, err := normalizeItems(inputs)
	if err != nil {
		return Cart{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.allocateID(func(id string) bool { _, taken := s.carts[id]; return taken })
	if err != nil {
		return Cart{}, err
	}
	now := s.tick(time.Time{})
	record := &cartRecord{id: id, createdAt: now, updatedAt: now}
	itemIDs, err := s.insertItems(id, normalized, now)
	if err != nil {
		return Cart{}, err
	}
	record.itemIDs = itemIDs
	s.carts[id] = record
	return s.cartSnapshot(record), nil
}

func (s *Store) Get(id string) (Cart, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.carts[id]
	if !ok {
		return Cart{}, false
	}
	return s.cartSnapshot(record), true
}

func (s *Store) Metadata(id string) (Metadata, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.carts[id]
	if !ok {
		return Metadata{}, false
	}
	return Metadata{ID: record.id, UpdatedAt: record.updatedAt}, true
}

// Delete removes the cart and every item it holds.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.carts[id]
	if !ok {
		return ErrNotFound
	}
	for _, itemID := range record.itemIDs {
		delete(s.items, itemID)
	}
	delete(s.carts, id)
	return nil
}

// ReplaceItems discards the cart's items and stores inputs in their place.
// An empty batch leaves the cart empty.
func (s *Store) ReplaceItems(id string, inputs []ItemInput) (Cart, error) {
	normalized, err := normalizeItems(inputs)
	if err != nil {
		return Cart{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.carts[id]
	if !ok {
		return Cart{}, ErrNotFound
	}
	now := s.tick(record.updatedAt)
	itemIDs, err := s.insertItems(id, normalized, now)
	if err != nil {
		return Cart{}, err
	}
	for _, itemID := range record.itemIDs {
		delete(s.items, itemID)
	}
	record.itemIDs = itemIDs
	record.updatedAt = now
	return s.cartSnapshot(record), nil
}

// AddItems appends inputs after the cart's existing items.
func (s *Store) AddItems(id string, inputs []ItemInput) (Cart, error) {
	normalized, err := normalizeItems(inputs)
	if err != nil {
		return Cart{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.carts[id]
	if !ok {
		return Cart{}, ErrNotFound
	}
	now := s.tick(record.updatedAt)
	itemIDs, err := s.insertItems(id, normalized, now)
	if err != nil {
		return Cart{}, err
	}
	record.itemIDs = append(slices.Clip(record.itemIDs), itemIDs...)
	record.updatedAt = now
	return s.cartSnapshot(record), nil
}

func (s *Store) GetItem(id string) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.items[id]
	if !ok {
		return Item{}, false
	}
	return itemSnapshot(record), true
}

func (s *Store) ItemMetadata(id string) (Metadata, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.items[id]
	if !ok {
		return Metadata{}, false
	}
	return Metadata{ID: record.id, UpdatedAt: record.updatedAt}, true
}

// PutItem overwrites the item's content. The owning cart's version is untouched.
func (s *Store) PutItem(id string, input ItemInput) (Item, error) {
	normalized, err := normalizeItems([]ItemInput{input})
	if err != nil {
		return Item{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.items[id]
	if !ok {
		return Item{}, ErrNotFound
	}
	record.title = normalized[0].Title
	record.quantity = normalized[0].Quantity
	record.updatedAt = s.tick(record.updatedAt)
	return itemSnapshot(record), nil
}

// DeleteItem removes the item from the index and from its cart's collection.
// The cart's version is not bumped.
func (s *Store) DeleteItem(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.items[id]
	if !ok {
		return ErrNotFound
	}
	if owner, ok := s.carts[record.cartID]; ok {
		if i := slices.Index(owner.itemIDs, id); i >= 0 {
			owner.itemIDs = slices.Delete(slices.Clone(owner.itemIDs), i, i+1)
		}
	}
	delete(s.items, id)
	return nil
}

func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{Carts: len(s.carts), Items: len(s.items)}
}

// insertItems indexes a validated batch under cartID. Callers hold s.mu.
func (s *Store) insertItems(cartID string, items []normalizedItem, now time.Time) ([]string, error) {
	ids := make([]string, 0, len(items))
	records := make([]*itemRecord, 0, len(items))
	pending := make(map[string]struct{}, len(items))
	for _, item := range items {
		id, err := s.allocateID(func(id string) bool {
			_, taken := s.items[id]
			_, dup := pending[id]
			return taken || dup
		})
		if err != nil {
			return nil, err
		}
		pending[id] = struct{}{}
		ids = append(ids, id)
		records = append(records, &itemRecord{
			id:        id,
			cartID:    cartID,
			title:     item.Title,
			quantity:  item.Quantity,
			createdAt: now,
			updatedAt: now,
		})
	}
	for _, record := range records {
		s.items[record.id] = record
	}
	return ids, nil
}

func (s *Store) allocateID(taken func(string) bool) (string, error) {
	id := s.newID()
	if id == "" || taken(id) {
		return "", fmt.Errorf("identifier collision on %q", id)
	}
	return id, nil
}

// tick returns the current time, forced strictly after prev so every
// mutation yields a distinct version.
func (s *Store) tick(prev time.Time) time.Time {
	now := s.now().UTC()
	if !now.After(prev) {
		now = prev.Add(time.Nanosecond)
	}
	return now
}

func (s *Store) cartSnapshot(record *cartRecord) Cart {
	items := make([]Item, 0, len(record.itemIDs))
	for _, itemID := range record.itemIDs {
		if item, ok := s.items[itemID]; ok {
			items = append(items, itemSnapshot(item))
		}
	}
	return Cart{
		ID:        record.id,
		CreatedAt: record.createdAt,
		UpdatedAt: record.updatedAt,
		Items:     items,
	}
}

func itemSnapshot(record *itemRecord) Item {
	return Item{
		ID:        record.id,
		CartID:    record.cartID,
		Title:     record.title,
		Quantity:  record.quantity,
		CreatedAt: record.createdAt,
		UpdatedAt: record.updatedAt,
	}
}
