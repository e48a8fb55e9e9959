// ABOUTME: Tests for catalog operations: CRUD, search filters, ID assignment
// ABOUTME: Exercises ReserveStock under concurrency to prove on_hand never goes negative

package store

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProduct_AssignsMonotonicIDs(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	p1, err := s.CreateProduct(ctx, Product{Name: "Net", Price: decimal.NewFromInt(30), OnHand: 5})
	require.NoError(t, err)
	assert.Equal(t, 2, p1.ID) // seeded paddle holds ID 1

	p2, err := s.CreateProduct(ctx, Product{Name: "Post", Price: decimal.NewFromInt(10), OnHand: 5})
	require.NoError(t, err)
	assert.Equal(t, 3, p2.ID)

	// Deleting the highest ID must not cause reuse
	require.NoError(t, s.DeleteProduct(ctx, 3))
	p3, err := s.CreateProduct(ctx, Product{Name: "Cover", Price: decimal.NewFromInt(8), OnHand: 5})
	require.NoError(t, err)
	assert.Equal(t, 4, p3.ID)
}

func TestCreateProduct_Validation(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.CreateProduct(ctx, Product{Price: decimal.NewFromInt(1), OnHand: 1})
	assert.ErrorIs(t, err, ErrInvalidField)

	_, err = s.CreateProduct(ctx, Product{Name: "X", Price: decimal.NewFromInt(-1), OnHand: 1})
	assert.ErrorIs(t, err, ErrInvalidField)

	_, err = s.CreateProduct(ctx, Product{Name: "X", Price: decimal.NewFromInt(1), OnHand: -1})
	assert.ErrorIs(t, err, ErrInvalidField)
}

func TestSearchProducts(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.CreateProduct(ctx, Product{Name: "Competition Balls", Price: decimal.NewFromInt(12), Category: "Balls", OnHand: 40})
	require.NoError(t, err)
	_, err = s.CreateProduct(ctx, Product{Name: "Carbon Paddle", Price: decimal.NewFromInt(89), Category: "Paddles", OnHand: 15})
	require.NoError(t, err)

	// Substring match on name, case-insensitive
	got, err := s.SearchProducts(ctx, "paddle", "")
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Substring match also applies to category text
	got, err = s.SearchProducts(ctx, "ball", "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Competition Balls", got[0].Name)

	// Category filter is an exact case-insensitive match
	got, err = s.SearchProducts(ctx, "", "paddles")
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Filters combine with AND
	got, err = s.SearchProducts(ctx, "carbon", "paddles")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Carbon Paddle", got[0].Name)

	// Both empty returns everything
	got, err = s.SearchProducts(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, got, 3)

	got, err = s.SearchProducts(ctx, "no such thing", "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUpdateProduct_MergesOnlyProvidedFields(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	price, _ := decimal.NewFromString("27.95")
	updated, err := s.UpdateProduct(ctx, 1, ProductPatch{Price: &price})
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(price))
	assert.Equal(t, "Table Tennis Paddle", updated.Name)
	assert.Equal(t, 100, updated.OnHand)
	assert.Equal(t, "Paddles", updated.Category)
}

func TestUpdateProduct_Validation(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	neg := decimal.NewFromInt(-5)
	_, err := s.UpdateProduct(ctx, 1, ProductPatch{Price: &neg})
	assert.ErrorIs(t, err, ErrInvalidField)

	bad := -1
	_, err = s.UpdateProduct(ctx, 1, ProductPatch{OnHand: &bad})
	assert.ErrorIs(t, err, ErrInvalidField)

	name := "X"
	_, err = s.UpdateProduct(ctx, 99, ProductPatch{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteProduct(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.DeleteProduct(ctx, 1))
	assert.ErrorIs(t, s.DeleteProduct(ctx, 1), ErrNotFound)

	_, err := s.GetProduct(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReserveStock(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	p, err := s.ReserveStock(ctx, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 95, p.OnHand)
	assert.True(t, p.Price.Equal(decimal.NewFromInt(25)))

	_, err = s.ReserveStock(ctx, 1, 96)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// A failed reservation changes nothing
	got, err := s.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 95, got.OnHand)

	_, err = s.ReserveStock(ctx, 42, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.ReserveStock(ctx, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidField)
}

func TestReleaseStock(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.ReserveStock(ctx, 1, 30)
	require.NoError(t, err)
	require.NoError(t, s.ReleaseStock(ctx, 1, 30))

	got, err := s.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 100, got.OnHand)

	assert.ErrorIs(t, s.ReleaseStock(ctx, 42, 1), ErrNotFound)
}

func TestReserveStock_ConcurrentReservationsNeverOversell(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	// 100 on hand, 20 workers each asking for 10: exactly 10 can win.
	const workers = 20
	const each = 10

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.ReserveStock(ctx, 1, each)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrInsufficientStock)
		}
	}
	assert.Equal(t, 10, succeeded)

	got, err := s.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, got.OnHand)
	assert.GreaterOrEqual(t, got.OnHand, 0)
}
