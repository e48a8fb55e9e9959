// ABOUTME: Tests for store open, snapshot round-trips, and commit failure handling
// ABOUTME: Shared setupTestStore helper used across the package's tests

package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a file-backed store in a temp directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()
	snap, err := NewFileSnapshotter(filepath.Join(t.TempDir(), "shop.json"))
	require.NoError(t, err)
	s, err := Open(snap)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_SeedsDefaultState(t *testing.T) {
	s := setupTestStore(t)

	products, err := s.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)

	paddle := products[0]
	assert.Equal(t, 1, paddle.ID)
	assert.Equal(t, "Table Tennis Paddle", paddle.Name)
	assert.Equal(t, "Paddles", paddle.Category)
	assert.Equal(t, 100, paddle.OnHand)
	assert.True(t, paddle.Price.Equal(decimal.NewFromInt(25)))
}

func TestOpen_RoundTripsSnapshot(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "shop.json")

	snap, err := NewFileSnapshotter(path)
	require.NoError(t, err)
	s, err := Open(snap)
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, User{
		Username:      "alice",
		Email:         "alice@example.com",
		PasswordHash:  "$2a$10$fakefakefakefakefakefake",
		First:         "Alice",
		Last:          "Smith",
		StreetAddress: "1 Main St",
		Role:          RoleUser,
	})
	require.NoError(t, err)

	price, _ := decimal.NewFromString("12.50")
	_, err = s.CreateProduct(ctx, Product{Name: "Balls", Price: price, Category: "Balls", OnHand: 40})
	require.NoError(t, err)
	_, err = s.CreateOrder(ctx, Order{
		Username:    "alice",
		ShipAddress: "1 Main St",
		Items:       []OrderItem{{ProductID: 1, Quantity: 2, Price: decimal.NewFromInt(25)}},
		TotalAmount: decimal.NewFromInt(50),
	})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Reopen from the same snapshot
	snap2, err := NewFileSnapshotter(path)
	require.NoError(t, err)
	s2, err := Open(snap2)
	require.NoError(t, err)
	defer s2.Close()

	// Password hash survives persistence even though reads redact it
	hash, err := s2.PasswordHashFor(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$fakefakefakefakefakefake", hash)

	user, err := s2.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "1 Main St", user.StreetAddress)

	products, err := s2.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	// Element order is preserved across save/load
	assert.Equal(t, "Table Tennis Paddle", products[0].Name)
	assert.Equal(t, "Balls", products[1].Name)
	assert.True(t, products[1].Price.Equal(price))

	orders, err := s2.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, 1, orders[0].ID)
	assert.True(t, orders[0].TotalAmount.Equal(decimal.NewFromInt(50)))
	assert.False(t, orders[0].OrderDate.IsZero())
}

func TestOpen_ReopenedStoreDoesNotReuseIDs(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "shop.json")

	snap, err := NewFileSnapshotter(path)
	require.NoError(t, err)
	s, err := Open(snap)
	require.NoError(t, err)

	p, err := s.CreateProduct(ctx, Product{Name: "Net", Price: decimal.NewFromInt(30), OnHand: 5})
	require.NoError(t, err)
	assert.Equal(t, 2, p.ID)
	require.NoError(t, s.Close())

	snap2, err := NewFileSnapshotter(path)
	require.NoError(t, err)
	s2, err := Open(snap2)
	require.NoError(t, err)
	defer s2.Close()

	p2, err := s2.CreateProduct(ctx, Product{Name: "Post", Price: decimal.NewFromInt(10), OnHand: 5})
	require.NoError(t, err)
	assert.Equal(t, 3, p2.ID)
}

// failingSnapshotter fails every save after the first n.
type failingSnapshotter struct {
	saves int
	allow int
}

func (f *failingSnapshotter) Load() ([]byte, error) { return nil, ErrNoSnapshot }
func (f *failingSnapshotter) Save(ctx context.Context, data []byte) error {
	f.saves++
	if f.saves > f.allow {
		return errors.New("disk full")
	}
	return nil
}
func (f *failingSnapshotter) Close() error { return nil }

func TestCommit_FailedPersistLeavesMemoryUntouched(t *testing.T) {
	ctx := context.Background()
	s, err := Open(&failingSnapshotter{allow: 0})
	require.NoError(t, err)

	_, err = s.CreateProduct(ctx, Product{Name: "Net", Price: decimal.NewFromInt(30), OnHand: 5})
	require.Error(t, err)

	// The failed create must not be visible
	products, err := s.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)

	// Stock decrements roll back too
	_, err = s.ReserveStock(ctx, 1, 10)
	require.Error(t, err)
	paddle, err := s.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 100, paddle.OnHand)
}
