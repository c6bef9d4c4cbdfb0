package cart

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
)

// memorySnapshots is an in-memory stand-in for the durable snapshot store
type memorySnapshots struct {
	data    map[string][]byte
	loadErr error
	saveErr error
}

func newMemorySnapshots() *memorySnapshots {
	return &memorySnapshots{data: make(map[string][]byte)}
}

func (m *memorySnapshots) Load(_ context.Context, key string) ([]byte, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.data[key], nil
}

func (m *memorySnapshots) Save(_ context.Context, key string, data []byte) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data[key] = data
	return nil
}

func (m *memorySnapshots) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func shirt() catalog.Product {
	return catalog.Product{ID: 1, SKU: "SHIRT-001", Name: "Classic Shirt", Price: 1000}
}

func redS() *catalog.Variant {
	return &catalog.Variant{SKU: "SHIRT-001-RED-S", Options: catalog.OptionMap{"Color": "Red", "Size": "S"}, Price: 1000}
}

func TestAddMergesByIdentity(t *testing.T) {
	ctx := context.Background()
	store := NewStore(ctx, "session:abc", newMemorySnapshots(), testLogger())

	require.NoError(t, store.Add(ctx, shirt(), redS(), 2))
	require.NoError(t, store.Add(ctx, shirt(), redS(), 1))

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, int64(3000), store.Totals().Subtotal)
}

func TestAddDistinguishesVariants(t *testing.T) {
	ctx := context.Background()
	store := NewStore(ctx, "session:abc", newMemorySnapshots(), testLogger())

	redM := &catalog.Variant{SKU: "SHIRT-001-RED-M", Price: 1200}
	require.NoError(t, store.Add(ctx, shirt(), redS(), 1))
	require.NoError(t, store.Add(ctx, shirt(), redM, 1))
	require.NoError(t, store.Add(ctx, shirt(), nil, 1))

	assert.Len(t, store.Items(), 3)
	assert.Equal(t, 3, store.Totals().ItemCount)
}

func TestAddRejectsInvalidQuantity(t *testing.T) {
	ctx := context.Background()
	snapshots := newMemorySnapshots()
	store := NewStore(ctx, "session:abc", snapshots, testLogger())

	assert.ErrorIs(t, store.Add(ctx, shirt(), nil, 0), ErrInvalidQuantity)
	assert.ErrorIs(t, store.Add(ctx, shirt(), nil, -2), ErrInvalidQuantity)
	assert.Empty(t, store.Items())
	assert.Empty(t, snapshots.data)
}

func TestUpdateQuantitySetsExactValue(t *testing.T) {
	ctx := context.Background()
	store := NewStore(ctx, "session:abc", newMemorySnapshots(), testLogger())

	require.NoError(t, store.Add(ctx, shirt(), redS(), 2))
	key := ItemKey{ProductID: 1, VariantSKU: "SHIRT-001-RED-S"}

	store.UpdateQuantity(ctx, key, 5)
	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestUpdateQuantityZeroOrBelowRemoves(t *testing.T) {
	for _, quantity := range []int{0, -1} {
		ctx := context.Background()
		store := NewStore(ctx, "session:abc", newMemorySnapshots(), testLogger())

		require.NoError(t, store.Add(ctx, shirt(), nil, 1))
		store.UpdateQuantity(ctx, ItemKey{ProductID: 1}, quantity)

		assert.Empty(t, store.Items())
		assert.Equal(t, Totals{}, store.Totals())
	}
}

func TestRemoveDeletesRegardlessOfQuantity(t *testing.T) {
	ctx := context.Background()
	store := NewStore(ctx, "session:abc", newMemorySnapshots(), testLogger())

	require.NoError(t, store.Add(ctx, shirt(), nil, 7))
	store.Remove(ctx, ItemKey{ProductID: 1})

	assert.Empty(t, store.Items())
}

func TestTotalsMatchIndependentRecomputation(t *testing.T) {
	ctx := context.Background()
	store := NewStore(ctx, "session:abc", newMemorySnapshots(), testLogger())

	other := catalog.Product{ID: 2, SKU: "MUG-001", Price: 500, SalePrice: 400}
	require.NoError(t, store.Add(ctx, shirt(), redS(), 2))
	require.NoError(t, store.Add(ctx, other, nil, 3))
	store.UpdateQuantity(ctx, ItemKey{ProductID: 1, VariantSKU: "SHIRT-001-RED-S"}, 4)

	var wantSubtotal int64
	wantCount := 0
	for _, item := range store.Items() {
		wantSubtotal += item.UnitPrice() * int64(item.Quantity)
		wantCount += item.Quantity
	}

	totals := store.Totals()
	assert.Equal(t, wantSubtotal, totals.Subtotal)
	assert.Equal(t, wantCount, totals.ItemCount)
	assert.Equal(t, int64(4*1000+3*400), totals.Subtotal)
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	snapshots := newMemorySnapshots()

	store := NewStore(ctx, "session:abc", snapshots, testLogger())
	require.NoError(t, store.Add(ctx, shirt(), redS(), 2))
	require.NoError(t, store.Add(ctx, catalog.Product{ID: 2, SKU: "MUG-001", Price: 500}, nil, 1))

	// A fresh store over the same snapshot store simulates a restart
	reloaded := NewStore(ctx, "session:abc", snapshots, testLogger())

	require.Len(t, reloaded.Items(), 2)
	assert.Equal(t, store.Totals(), reloaded.Totals())
	for i, item := range store.Items() {
		assert.Equal(t, item.Key(), reloaded.Items()[i].Key())
		assert.Equal(t, item.Quantity, reloaded.Items()[i].Quantity)
	}
}

func TestCorruptSnapshotLoadsAsEmptyCart(t *testing.T) {
	ctx := context.Background()
	snapshots := newMemorySnapshots()
	snapshots.data["session:abc"] = []byte("{not json")

	store := NewStore(ctx, "session:abc", snapshots, testLogger())
	assert.Empty(t, store.Items())

	// The store stays usable after recovery
	require.NoError(t, store.Add(ctx, shirt(), nil, 1))
	assert.Len(t, store.Items(), 1)
}

func TestUnreadableSnapshotLoadsAsEmptyCart(t *testing.T) {
	ctx := context.Background()
	snapshots := newMemorySnapshots()
	snapshots.loadErr = errors.New("backend down")

	store := NewStore(ctx, "session:abc", snapshots, testLogger())
	assert.Empty(t, store.Items())
}

func TestFailedSaveKeepsMutation(t *testing.T) {
	ctx := context.Background()
	snapshots := newMemorySnapshots()
	snapshots.saveErr = errors.New("backend down")

	store := NewStore(ctx, "session:abc", snapshots, testLogger())
	require.NoError(t, store.Add(ctx, shirt(), nil, 1))

	// The in-memory mutation is the session's source of truth
	assert.Len(t, store.Items(), 1)
}

func TestClearEmptiesCollectionAndSnapshot(t *testing.T) {
	ctx := context.Background()
	snapshots := newMemorySnapshots()

	store := NewStore(ctx, "session:abc", snapshots, testLogger())
	require.NoError(t, store.Add(ctx, shirt(), nil, 2))
	store.Clear(ctx)

	assert.Empty(t, store.Items())
	assert.Empty(t, snapshots.data)
}

func TestSnapshotCapturesProductAtAddTime(t *testing.T) {
	ctx := context.Background()
	store := NewStore(ctx, "session:abc", newMemorySnapshots(), testLogger())

	product := shirt()
	require.NoError(t, store.Add(ctx, product, nil, 1))

	// A later catalog edit must not affect items already in the cart
	product.Price = 9999

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, int64(1000), items[0].UnitPrice())
}

func TestSubscribersAreNotifiedOnEveryMutation(t *testing.T) {
	ctx := context.Background()
	store := NewStore(ctx, "session:abc", newMemorySnapshots(), testLogger())

	var notifications []Totals
	unsubscribe := store.Subscribe(func(_ []Item, totals Totals) {
		notifications = append(notifications, totals)
	})

	require.NoError(t, store.Add(ctx, shirt(), nil, 2))
	store.UpdateQuantity(ctx, ItemKey{ProductID: 1}, 1)
	store.Clear(ctx)

	require.Len(t, notifications, 3)
	assert.Equal(t, 2, notifications[0].ItemCount)
	assert.Equal(t, 1, notifications[1].ItemCount)
	assert.Equal(t, 0, notifications[2].ItemCount)

	unsubscribe()
	require.NoError(t, store.Add(ctx, shirt(), nil, 1))
	assert.Len(t, notifications, 3)
}

func TestManagerReturnsSameStorePerKey(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(newMemorySnapshots(), testLogger())

	a := manager.Get(ctx, "session:abc")
	b := manager.Get(ctx, "session:abc")
	c := manager.Get(ctx, "session:other")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
}

func TestAdoptMovesSessionCartToUserAtSignIn(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(newMemorySnapshots(), testLogger())

	session := manager.Get(ctx, "session:abc")
	require.NoError(t, session.Add(ctx, shirt(), redS(), 2))

	user := manager.Adopt(ctx, "session:abc", "user:42")

	items := user.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Empty(t, session.Items())
	assert.Same(t, user, manager.Get(ctx, "user:42"))
}

func TestAdoptMergesIntoExistingUserEntries(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(newMemorySnapshots(), testLogger())

	user := manager.Get(ctx, "user:42")
	require.NoError(t, user.Add(ctx, shirt(), redS(), 1))

	session := manager.Get(ctx, "session:abc")
	require.NoError(t, session.Add(ctx, shirt(), redS(), 2))

	adopted := manager.Adopt(ctx, "session:abc", "user:42")

	items := adopted.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestAdoptIsIdempotentOncePerSession(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(newMemorySnapshots(), testLogger())

	session := manager.Get(ctx, "session:abc")
	require.NoError(t, session.Add(ctx, shirt(), nil, 1))

	manager.Adopt(ctx, "session:abc", "user:42")
	user := manager.Adopt(ctx, "session:abc", "user:42")

	require.Len(t, user.Items(), 1)
	assert.Equal(t, 1, user.Items()[0].Quantity)
}

func TestAdoptWithEmptySessionCartIsNoOp(t *testing.T) {
	ctx := context.Background()
	snapshots := newMemorySnapshots()
	manager := NewManager(snapshots, testLogger())

	user := manager.Get(ctx, "user:42")
	require.NoError(t, user.Add(ctx, shirt(), nil, 1))

	adopted := manager.Adopt(ctx, "session:abc", "user:42")

	assert.Same(t, user, adopted)
	require.Len(t, adopted.Items(), 1)
	assert.Equal(t, 1, adopted.Items()[0].Quantity)
}
