package wishlist

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
)

// memorySnapshots is an in-memory stand-in for the durable snapshot store
type memorySnapshots struct {
	data map[string][]byte
}

func newMemorySnapshots() *memorySnapshots {
	return &memorySnapshots{data: make(map[string][]byte)}
}

func (m *memorySnapshots) Load(_ context.Context, key string) ([]byte, error) {
	return m.data[key], nil
}

func (m *memorySnapshots) Save(_ context.Context, key string, data []byte) error {
	m.data[key] = data
	return nil
}

func (m *memorySnapshots) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

// fakeRemote is an in-memory stand-in for the per-identity remote copy.
// holdFirstWrite, when set, blocks the first write until the channel is
// closed, simulating a slow remote call.
type fakeRemote struct {
	mu             sync.Mutex
	sets           map[uint][]uint
	readErr        error
	writeErr       error
	reads          int
	holdFirstWrite chan struct{}
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{sets: make(map[uint][]uint)}
}

func (f *fakeRemote) ReadSavedProductIDs(_ context.Context, userID uint) ([]uint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.readErr != nil {
		return nil, f.readErr
	}
	return append([]uint{}, f.sets[userID]...), nil
}

func (f *fakeRemote) WriteSavedProductIDs(_ context.Context, userID uint, ids []uint) error {
	f.mu.Lock()
	gate := f.holdFirstWrite
	f.holdFirstWrite = nil
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.sets[userID] = append([]uint{}, ids...)
	return nil
}

func (f *fakeRemote) savedIDs(userID uint) []uint {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uint{}, f.sets[userID]...)
}

func (f *fakeRemote) readCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

// fakeResolver resolves ids against a fixed product set
type fakeResolver struct {
	products map[uint]catalog.Product
	err      error
}

func (f *fakeResolver) GetProductsByIDs(_ context.Context, ids []uint) ([]catalog.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	resolved := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			resolved = append(resolved, p)
		}
	}
	return resolved, nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func product(id uint) catalog.Product {
	return catalog.Product{ID: id, SKU: "P", Price: int64(id) * 100}
}

func catalogWith(ids ...uint) *fakeResolver {
	resolver := &fakeResolver{products: make(map[uint]catalog.Product)}
	for _, id := range ids {
		resolver.products[id] = product(id)
	}
	return resolver
}

func productIDs(products []catalog.Product) []uint {
	ids := make([]uint, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	return ids
}

func TestAddIsIdempotentByProductID(t *testing.T) {
	ctx := context.Background()
	store := NewStore(ctx, "session:abc", newMemorySnapshots(), newFakeRemote(), catalogWith(1), testLogger())

	store.Add(ctx, product(1))
	store.Add(ctx, product(1))

	assert.Equal(t, []uint{1}, productIDs(store.Products()))
	assert.Equal(t, 1, store.Count())
}

func TestRemoveAbsentIDIsNoOp(t *testing.T) {
	ctx := context.Background()
	store := NewStore(ctx, "session:abc", newMemorySnapshots(), newFakeRemote(), catalogWith(1), testLogger())

	store.Add(ctx, product(1))
	store.Remove(ctx, 99)
	store.Remove(ctx, 1)
	store.Remove(ctx, 1)

	assert.Empty(t, store.Products())
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	snapshots := newMemorySnapshots()

	store := NewStore(ctx, "session:abc", snapshots, newFakeRemote(), catalogWith(1, 2), testLogger())
	store.Add(ctx, product(1))
	store.Add(ctx, product(2))

	reloaded := NewStore(ctx, "session:abc", snapshots, newFakeRemote(), catalogWith(1, 2), testLogger())
	assert.Equal(t, []uint{1, 2}, productIDs(reloaded.Products()))
}

func TestCorruptSnapshotLoadsAsEmptySet(t *testing.T) {
	ctx := context.Background()
	snapshots := newMemorySnapshots()
	snapshots.data["session:abc"] = []byte("{not json")

	store := NewStore(ctx, "session:abc", snapshots, newFakeRemote(), catalogWith(1), testLogger())
	assert.Empty(t, store.Products())
}

func TestReconciliationUnionsLocalAndRemote(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	remote.sets[42] = []uint{2, 3}

	store := NewStore(ctx, "session:abc", newMemorySnapshots(), remote, catalogWith(1, 2, 3), testLogger())
	store.Add(ctx, product(1))
	store.Add(ctx, product(2))

	userID := uint(42)
	store.SetIdentity(ctx, &userID)

	// Both sides now hold the union {1,2,3}, duplicates collapsed by id.
	// The remote side is written in the background.
	assert.ElementsMatch(t, []uint{1, 2, 3}, productIDs(store.Products()))
	require.Eventually(t, func() bool {
		return len(remote.savedIDs(42)) == 3
	}, time.Second, 10*time.Millisecond)
	assert.ElementsMatch(t, []uint{1, 2, 3}, remote.savedIDs(42))
}

func TestReconciliationIsIdempotent(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	remote.sets[42] = []uint{2}

	store := NewStore(ctx, "session:abc", newMemorySnapshots(), remote, catalogWith(1, 2), testLogger())
	store.Add(ctx, product(1))

	userID := uint(42)
	store.SetIdentity(ctx, &userID)
	first := productIDs(store.Products())

	// Same identity again: no second reconciliation, same final set
	store.SetIdentity(ctx, &userID)
	assert.Equal(t, first, productIDs(store.Products()))
	assert.Equal(t, 1, remote.readCount())
}

func TestReconciliationRunsOncePerTransition(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()

	store := NewStore(ctx, "session:abc", newMemorySnapshots(), remote, catalogWith(1), testLogger())
	userID := uint(42)

	store.SetIdentity(ctx, &userID)
	store.SetIdentity(ctx, &userID)
	assert.Equal(t, 1, remote.readCount())

	// Sign-out then sign-in is a new transition
	store.SetIdentity(ctx, nil)
	store.SetIdentity(ctx, &userID)
	assert.Equal(t, 2, remote.readCount())
}

func TestReconciliationDropsUnresolvableIDs(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	remote.sets[42] = []uint{2, 99}

	store := NewStore(ctx, "session:abc", newMemorySnapshots(), remote, catalogWith(1, 2), testLogger())
	store.Add(ctx, product(1))

	userID := uint(42)
	store.SetIdentity(ctx, &userID)

	assert.ElementsMatch(t, []uint{1, 2}, productIDs(store.Products()))
	require.Eventually(t, func() bool {
		return len(remote.savedIDs(42)) == 2
	}, time.Second, 10*time.Millisecond)
	assert.ElementsMatch(t, []uint{1, 2}, remote.savedIDs(42))
}

func TestRemoteReadFailureKeepsLocalSet(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	remote.readErr = errors.New("backend down")

	store := NewStore(ctx, "session:abc", newMemorySnapshots(), remote, catalogWith(1), testLogger())
	store.Add(ctx, product(1))

	userID := uint(42)
	store.SetIdentity(ctx, &userID)

	assert.Equal(t, []uint{1}, productIDs(store.Products()))
}

func TestRemoteWriteFailureDoesNotRollBackLocalMutation(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	remote.writeErr = errors.New("backend down")

	store := NewStore(ctx, "session:abc", newMemorySnapshots(), remote, catalogWith(1, 2), testLogger())
	userID := uint(42)
	store.SetIdentity(ctx, &userID)

	store.Add(ctx, product(1))
	store.Add(ctx, product(2))

	// Local state is the session's source of truth
	assert.Equal(t, []uint{1, 2}, productIDs(store.Products()))
}

func TestMutationWithIdentityMirrorsToRemote(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()

	store := NewStore(ctx, "session:abc", newMemorySnapshots(), remote, catalogWith(1, 2), testLogger())
	userID := uint(42)
	store.SetIdentity(ctx, &userID)

	store.Add(ctx, product(1))
	store.Add(ctx, product(2))
	store.Remove(ctx, 1)

	// Remote writes run in the background but are ordered, so the remote
	// copy must settle on the newest set regardless of scheduling
	require.Eventually(t, func() bool {
		ids := remote.savedIDs(42)
		return len(ids) == 1 && ids[0] == 2
	}, time.Second, 10*time.Millisecond)
}

func TestSlowRemoteWriteCannotRegressToStaleSet(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	release := make(chan struct{})
	remote.holdFirstWrite = release

	store := NewStore(ctx, "session:abc", newMemorySnapshots(), remote, catalogWith(1), testLogger())
	userID := uint(42)

	// Sign-in schedules a write of the (empty) reconciled union, which the
	// fake holds in flight; the add then schedules a newer write of {1}
	store.SetIdentity(ctx, &userID)
	store.Add(ctx, product(1))
	close(release)

	require.Eventually(t, func() bool {
		ids := remote.savedIDs(42)
		return len(ids) == 1 && ids[0] == 1
	}, time.Second, 10*time.Millisecond)

	// Once the newest set has landed, no held write may overwrite it
	assert.Equal(t, []uint{1}, remote.savedIDs(42))
}

func TestSubscribersAreNotifiedOnEveryMutation(t *testing.T) {
	ctx := context.Background()
	store := NewStore(ctx, "session:abc", newMemorySnapshots(), newFakeRemote(), catalogWith(1), testLogger())

	var notifications [][]uint
	unsubscribe := store.Subscribe(func(products []catalog.Product) {
		notifications = append(notifications, productIDs(products))
	})

	store.Add(ctx, product(1))
	store.Remove(ctx, 1)

	require.Len(t, notifications, 2)
	assert.Equal(t, []uint{1}, notifications[0])
	assert.Empty(t, notifications[1])

	unsubscribe()
	store.Add(ctx, product(1))
	assert.Len(t, notifications, 2)
}

func TestManagerReturnsSameStorePerKey(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(newMemorySnapshots(), newFakeRemote(), catalogWith(1), testLogger())

	a := manager.Get(ctx, "session:abc")
	b := manager.Get(ctx, "session:abc")
	c := manager.Get(ctx, "session:other")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
}
