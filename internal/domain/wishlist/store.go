// internal/domain/wishlist/store.go
package wishlist

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
)

// SnapshotStore persists the local wishlist snapshot keyed by the owning
// session
type SnapshotStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// RemoteStore is the per-identity copy of the saved product set. Writes are
// fire-and-forget from the mutating call site; a failure never rolls back the
// local mutation.
type RemoteStore interface {
	ReadSavedProductIDs(ctx context.Context, userID uint) ([]uint, error)
	WriteSavedProductIDs(ctx context.Context, userID uint, ids []uint) error
}

// ProductResolver resolves saved product ids to full product records during
// reconciliation. Satisfied by the catalog service.
type ProductResolver interface {
	GetProductsByIDs(ctx context.Context, ids []uint) ([]catalog.Product, error)
}

// Subscriber receives the new immutable product list after every mutation
type Subscriber func(products []catalog.Product)

// Store owns one saved-product set. Adds are idempotent by product id,
// removes of absent ids are no-ops. The set is persisted locally after every
// mutation and mirrored to the remote per-identity copy while an identity is
// present. When an identity first becomes available the local and remote sets
// are unioned and the union becomes canonical on both sides; the union runs
// at most once per sign-in transition.
type Store struct {
	mu        sync.Mutex
	key       string
	userID    *uint
	order     []uint
	products  map[uint]catalog.Product
	snapshots SnapshotStore
	remote    RemoteStore
	resolver  ProductResolver
	logger    *logrus.Logger
	subs      map[int]Subscriber
	nextSub   int

	// Remote writes run in the background but must never regress the remote
	// copy to an older set. Each scheduled write carries a sequence number
	// taken under mu; the writer skips any write whose number is not the
	// newest it has seen.
	remoteMu   sync.Mutex
	remoteSeq  uint64 // under mu
	remoteSeen uint64 // under remoteMu
}

// NewStore creates a wishlist store for the given owner key and loads its
// persisted snapshot
func NewStore(ctx context.Context, key string, snapshots SnapshotStore, remote RemoteStore, resolver ProductResolver, logger *logrus.Logger) *Store {
	s := &Store{
		key:       key,
		order:     []uint{},
		products:  make(map[uint]catalog.Product),
		snapshots: snapshots,
		remote:    remote,
		resolver:  resolver,
		logger:    logger,
		subs:      make(map[int]Subscriber),
	}
	s.restore(ctx)
	return s
}

// Add saves a product. Adding a product that is already saved is a no-op.
func (s *Store) Add(ctx context.Context, product catalog.Product) {
	s.mu.Lock()
	if _, exists := s.products[product.ID]; exists {
		s.mu.Unlock()
		return
	}
	s.products[product.ID] = product
	s.order = append(s.order, product.ID)
	s.persistLocked(ctx)
	products, subs := s.snapshotLocked()
	s.mu.Unlock()

	notify(subs, products)
}

// Remove un-saves a product. Removing an absent id is a no-op.
func (s *Store) Remove(ctx context.Context, productID uint) {
	s.mu.Lock()
	if _, exists := s.products[productID]; !exists {
		s.mu.Unlock()
		return
	}
	delete(s.products, productID)
	for i, id := range s.order {
		if id == productID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.persistLocked(ctx)
	products, subs := s.snapshotLocked()
	s.mu.Unlock()

	notify(subs, products)
}

// Contains reports whether the product is saved
func (s *Store) Contains(productID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.products[productID]
	return ok
}

// Products returns the saved products in session-stable order
func (s *Store) Products() []catalog.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.productsLocked()
}

// Count returns the number of saved products
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// SetIdentity records the identity owning the remote copy. The transition
// from no identity to an identity triggers reconciliation exactly once;
// repeating the same identity is a no-op, and clearing it arms the next
// sign-in to reconcile again.
func (s *Store) SetIdentity(ctx context.Context, userID *uint) {
	s.mu.Lock()
	if userID == nil {
		s.userID = nil
		s.mu.Unlock()
		return
	}
	if s.userID != nil && *s.userID == *userID {
		s.mu.Unlock()
		return
	}
	id := *userID
	s.userID = &id
	s.reconcileLocked(ctx, id)
	products, subs := s.snapshotLocked()
	s.mu.Unlock()

	notify(subs, products)
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

// reconcileLocked unions the local and remote saved sets and makes the union
// canonical on both sides. Local mutations serialize against it on the store
// mutex, so none can be lost to an in-flight reconciliation. A remote read
// failure leaves the local set as the session's source of truth.
func (s *Store) reconcileLocked(ctx context.Context, userID uint) {
	remoteIDs, err := s.remote.ReadSavedProductIDs(ctx, userID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).
			Error("Failed to read remote wishlist, keeping local set")
		return
	}

	// Union by id: local insertion order first, remote-only ids appended
	union := make([]uint, 0, len(s.order)+len(remoteIDs))
	seen := make(map[uint]bool, len(s.order)+len(remoteIDs))
	for _, id := range s.order {
		if !seen[id] {
			seen[id] = true
			union = append(union, id)
		}
	}
	for _, id := range remoteIDs {
		if !seen[id] {
			seen[id] = true
			union = append(union, id)
		}
	}

	resolved, err := s.resolver.GetProductsByIDs(ctx, union)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).
			Error("Failed to resolve wishlist products, keeping local set")
		return
	}

	byID := make(map[uint]catalog.Product, len(resolved))
	for _, p := range resolved {
		byID[p.ID] = p
	}

	s.order = s.order[:0]
	s.products = make(map[uint]catalog.Product, len(byID))
	for _, id := range union {
		if p, ok := byID[id]; ok {
			s.order = append(s.order, id)
			s.products[id] = p
		}
	}

	s.persistLocked(ctx)
}

func (s *Store) restore(ctx context.Context) {
	data, err := s.snapshots.Load(ctx, s.key)
	if err != nil {
		s.logger.WithError(err).WithField("wishlist_key", s.key).
			Warn("Failed to load wishlist snapshot, starting empty")
		return
	}
	if data == nil {
		return
	}

	var snap localSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		// Corrupt snapshot is never fatal
		s.logger.WithError(err).WithField("wishlist_key", s.key).
			Warn("Corrupt wishlist snapshot, starting empty")
		return
	}
	for _, p := range snap.Products {
		if _, dup := s.products[p.ID]; dup {
			continue
		}
		s.products[p.ID] = p
		s.order = append(s.order, p.ID)
	}
}

type localSnapshot struct {
	Products  []catalog.Product `json:"products"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// persistLocked saves the local snapshot synchronously and, when an identity
// is present, mirrors the id set to the remote copy in the background. Either
// failure is logged; the in-memory mutation stands.
func (s *Store) persistLocked(ctx context.Context) {
	data, err := json.Marshal(localSnapshot{
		Products:  s.productsLocked(),
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		s.logger.WithError(err).WithField("wishlist_key", s.key).
			Error("Failed to serialize wishlist snapshot")
	} else if err := s.snapshots.Save(ctx, s.key, data); err != nil {
		s.logger.WithError(err).WithField("wishlist_key", s.key).
			Error("Failed to persist wishlist snapshot")
	}

	s.mirrorLocked()
}

// mirrorLocked schedules a background write of the current id set to the
// remote copy. Writes are ordered by sequence number so a slow write
// scheduled before a later mutation can never land on top of it and regress
// the remote set.
func (s *Store) mirrorLocked() {
	if s.userID == nil {
		return
	}
	userID := *s.userID
	ids := append([]uint{}, s.order...)
	s.remoteSeq++
	seq := s.remoteSeq

	go func() {
		s.remoteMu.Lock()
		defer s.remoteMu.Unlock()
		if seq <= s.remoteSeen {
			// A newer set already reached the writer
			return
		}
		s.remoteSeen = seq

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.remote.WriteSavedProductIDs(ctx, userID, ids); err != nil {
			s.logger.WithError(err).WithField("user_id", userID).
				Error("Failed to write wishlist to remote")
		}
	}()
}

func (s *Store) productsLocked() []catalog.Product {
	products := make([]catalog.Product, 0, len(s.order))
	for _, id := range s.order {
		products = append(products, s.products[id])
	}
	return products
}

func (s *Store) snapshotLocked() ([]catalog.Product, []Subscriber) {
	subs := make([]Subscriber, 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return s.productsLocked(), subs
}

func notify(subs []Subscriber, products []catalog.Product) {
	for _, fn := range subs {
		fn(products)
	}
}

// Manager hands out one store per owner key
type Manager struct {
	mu        sync.Mutex
	stores    map[string]*Store
	snapshots SnapshotStore
	remote    RemoteStore
	resolver  ProductResolver
	logger    *logrus.Logger
}

// NewManager creates a wishlist store manager
func NewManager(snapshots SnapshotStore, remote RemoteStore, resolver ProductResolver, logger *logrus.Logger) *Manager {
	return &Manager{
		stores:    make(map[string]*Store),
		snapshots: snapshots,
		remote:    remote,
		resolver:  resolver,
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
	store := NewStore(ctx, key, m.snapshots, m.remote, m.resolver, m.logger)
	m.stores[key] = store
	return store
}
