// internal/domain/cart/store.go
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
)

// ErrInvalidQuantity is returned when an add is attempted with a quantity
// below one. The collection is left untouched.
var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// SnapshotStore persists the full collection as an opaque snapshot keyed by
// the cart owner. Implementations live in infrastructure; tests substitute an
// in-memory fake.
type SnapshotStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// Subscriber receives the new immutable item snapshot and totals after every
// mutation
type Subscriber func(items []Item, totals Totals)

// Store owns one cart collection. All mutations go through the store; it
// persists a snapshot synchronously after each one and then notifies
// subscribers. A snapshot that cannot be read or parsed loads as an empty
// cart.
type Store struct {
	mu        sync.Mutex
	key       string
	items     []Item
	snapshots SnapshotStore
	logger    *logrus.Logger
	subs      map[int]Subscriber
	nextSub   int
}

// NewStore creates a cart store for the given owner key and loads its
// persisted snapshot
func NewStore(ctx context.Context, key string, snapshots SnapshotStore, logger *logrus.Logger) *Store {
	s := &Store{
		key:       key,
		items:     []Item{},
		snapshots: snapshots,
		logger:    logger,
		subs:      make(map[int]Subscriber),
	}
	s.restore(ctx)
	return s
}

// Add appends a new entry or, when an entry with the same (product id,
// variant SKU) identity exists, increments its quantity. The product and
// variant are captured by value at add time.
func (s *Store) Add(ctx context.Context, product catalog.Product, variant *catalog.Variant, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	item := Item{
		Product:  product,
		Quantity: quantity,
		AddedAt:  time.Now().UTC(),
	}
	if variant != nil {
		captured := *variant
		item.Variant = &captured
	}

	s.mu.Lock()
	merged := false
	for i := range s.items {
		if s.items[i].Key() == item.Key() {
			s.items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		s.items = append(s.items, item)
	}
	s.persistLocked(ctx)
	items, totals, subs := s.snapshotLocked()
	s.mu.Unlock()

	notify(subs, items, totals)
	return nil
}

// UpdateQuantity sets an entry's quantity to exactly the given value. A
// quantity of zero or below removes the entry. Updating an absent identity is
// a no-op.
func (s *Store) UpdateQuantity(ctx context.Context, key ItemKey, quantity int) {
	s.mu.Lock()
	changed := false
	for i := range s.items {
		if s.items[i].Key() != key {
			continue
		}
		if quantity <= 0 {
			s.items = append(s.items[:i], s.items[i+1:]...)
		} else {
			s.items[i].Quantity = quantity
		}
		changed = true
		break
	}
	if !changed {
		s.mu.Unlock()
		return
	}
	s.persistLocked(ctx)
	items, totals, subs := s.snapshotLocked()
	s.mu.Unlock()

	notify(subs, items, totals)
}

// Remove deletes the entry entirely regardless of quantity
func (s *Store) Remove(ctx context.Context, key ItemKey) {
	s.UpdateQuantity(ctx, key, 0)
}

// Clear empties the collection and drops the persisted snapshot
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.items = []Item{}
	if err := s.snapshots.Delete(ctx, s.key); err != nil {
		s.logger.WithError(err).WithField("cart_key", s.key).
			Warn("Failed to delete cart snapshot")
	}
	items, totals, subs := s.snapshotLocked()
	s.mu.Unlock()

	notify(subs, items, totals)
}

// Items returns a copy of the current collection
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]Item, len(s.items))
	copy(items, s.items)
	return items
}

// Totals recomputes the derived totals from the current collection
func (s *Store) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalsOf(s.items)
}

// Subscribe registers a subscriber that is notified synchronously after every
// mutation. The returned function unsubscribes it.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Private helper methods

func (s *Store) restore(ctx context.Context) {
	data, err := s.snapshots.Load(ctx, s.key)
	if err != nil {
		s.logger.WithError(err).WithField("cart_key", s.key).
			Warn("Failed to load cart snapshot, starting empty")
		return
	}
	if data == nil {
		return
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		// Corrupt snapshot is never fatal
		s.logger.WithError(err).WithField("cart_key", s.key).
			Warn("Corrupt cart snapshot, starting empty")
		return
	}
	s.items = snap.Items
	if s.items == nil {
		s.items = []Item{}
	}
}

// persistLocked serializes the collection and saves it. A failed save is
// logged; the in-memory mutation stands.
func (s *Store) persistLocked(ctx context.Context) {
	data, err := json.Marshal(snapshot{
		Items:     s.items,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		s.logger.WithError(err).WithField("cart_key", s.key).
			Error("Failed to serialize cart snapshot")
		return
	}
	if err := s.snapshots.Save(ctx, s.key, data); err != nil {
		s.logger.WithError(err).WithField("cart_key", s.key).
			Error("Failed to persist cart snapshot")
	}
}

func (s *Store) snapshotLocked() ([]Item, Totals, []Subscriber) {
	items := make([]Item, len(s.items))
	copy(items, s.items)

	subs := make([]Subscriber, 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return items, totalsOf(s.items), subs
}

func notify(subs []Subscriber, items []Item, totals Totals) {
	for _, fn := range subs {
		fn(items, totals)
	}
}

func totalsOf(items []Item) Totals {
	totals := Totals{UniqueItems: len(items)}
	for _, item := range items {
		totals.ItemCount += item.Quantity
		totals.Subtotal += item.Subtotal()
	}
	return totals
}

// Manager hands out one store per owner key, loading each cart's snapshot the
// first time it is requested in this process
type Manager struct {
	mu        sync.Mutex
	stores    map[string]*Store
	snapshots SnapshotStore
	logger    *logrus.Logger
}

// NewManager creates a cart store manager
func NewManager(snapshots SnapshotStore, logger *logrus.Logger) *Manager {
	return &Manager{
		stores:    make(map[string]*Store),
		snapshots: snapshots,
		logger:    logger,
	}
}

// Get returns the store owning the collection for the given key
func (m *Manager) Get(ctx context.Context, key string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	if store, ok := m.stores[key]; ok {
		return store
	}
	store := NewStore(ctx, key, m.snapshots, m.logger)
	m.stores[key] = store
	return store
}

// Adopt returns the user's cart after folding in anything still sitting in
// the anonymous session cart from before sign-in. Entries merge by identity,
// so a quantity already in the user cart is incremented rather than replaced.
// The session cart is cleared afterwards, which makes the adoption a one-time
// move rather than a copy.
func (m *Manager) Adopt(ctx context.Context, sessionKey, userKey string) *Store {
	session := m.Get(ctx, sessionKey)
	user := m.Get(ctx, userKey)

	items := session.Items()
	if len(items) == 0 {
		return user
	}

	for _, item := range items {
		if err := user.Add(ctx, item.Product, item.Variant, item.Quantity); err != nil {
			m.logger.WithError(err).WithField("cart_key", userKey).
				Warn("Skipped cart item during session adoption")
		}
	}
	session.Clear(ctx)
	return user
}
