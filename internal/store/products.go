// ABOUTME: Catalog operations: lookup, search, CRUD, and atomic stock reservation
// ABOUTME: ReserveStock is the critical section that keeps on_hand from going negative

package store

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// ProductPatch is the allow-list of product fields that may change after
// creation. Nil fields are left untouched.
type ProductPatch struct {
	Name        *string
	Price       *decimal.Decimal
	Category    *string
	OnHand      *int
	Description *string
}

// CreateProduct inserts a new product with the next monotonically assigned ID.
func (s *Store) CreateProduct(ctx context.Context, p Product) (Product, error) {
	if p.Name == "" {
		return Product{}, fmt.Errorf("%w: name is required", ErrInvalidField)
	}
	if p.Price.IsNegative() {
		return Product{}, fmt.Errorf("%w: price must be non-negative", ErrInvalidField)
	}
	if p.OnHand < 0 {
		return Product{}, fmt.Errorf("%w: on_hand must be non-negative", ErrInvalidField)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = s.nextProductID

	candidate := s.state
	candidate.Products = append(slices.Clone(s.state.Products), p)
	if err := s.commit(ctx, candidate); err != nil {
		return Product{}, err
	}

	s.nextProductID++
	s.logger.Info("product created", "id", p.ID, "name", p.Name)
	return p, nil
}

// GetProduct returns the product with the given ID.
func (s *Store) GetProduct(ctx context.Context, id int) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.findProduct(id)
	if idx < 0 {
		return Product{}, ErrNotFound
	}
	return s.state.Products[idx], nil
}

// ListProducts returns all products in insertion order.
func (s *Store) ListProducts(ctx context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.state.Products), nil
}

// SearchProducts filters the catalog. query matches case-insensitively as a
// substring of name or category; category matches the category exactly,
// ignoring case. Either filter may be empty; both must hold when both are set.
func (s *Store) SearchProducts(ctx context.Context, query, category string) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query = strings.ToLower(query)
	category = strings.ToLower(category)

	matches := make([]Product, 0)
	for _, p := range s.state.Products {
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(strings.ToLower(p.Category), query) {
			continue
		}
		if category != "" && strings.ToLower(p.Category) != category {
			continue
		}
		matches = append(matches, p)
	}
	return matches, nil
}

// UpdateProduct applies the patch to an existing product.
func (s *Store) UpdateProduct(ctx context.Context, id int, patch ProductPatch) (Product, error) {
	if patch.Price != nil && patch.Price.IsNegative() {
		return Product{}, fmt.Errorf("%w: price must be non-negative", ErrInvalidField)
	}
	if patch.OnHand != nil && *patch.OnHand < 0 {
		return Product{}, fmt.Errorf("%w: on_hand must be non-negative", ErrInvalidField)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findProduct(id)
	if idx < 0 {
		return Product{}, ErrNotFound
	}

	products := slices.Clone(s.state.Products)
	p := products[idx]
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.OnHand != nil {
		p.OnHand = *patch.OnHand
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	products[idx] = p

	candidate := s.state
	candidate.Products = products
	if err := s.commit(ctx, candidate); err != nil {
		return Product{}, err
	}

	return p, nil
}

// DeleteProduct removes a product from the catalog. Its ID is never reassigned
// within this store's lifetime.
func (s *Store) DeleteProduct(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findProduct(id)
	if idx < 0 {
		return ErrNotFound
	}

	candidate := s.state
	candidate.Products = slices.Delete(slices.Clone(s.state.Products), idx, idx+1)
	if err := s.commit(ctx, candidate); err != nil {
		return err
	}

	s.logger.Info("product deleted", "id", id)
	return nil
}

// ReserveStock checks on_hand and decrements it as one indivisible step. Two
// concurrent reservations against the same product serialize here; on_hand can
// never go negative. Returns the product as it stands after the decrement, so
// the caller gets the unit price snapshotted at reservation time.
func (s *Store) ReserveStock(ctx context.Context, id, quantity int) (Product, error) {
	if quantity <= 0 {
		return Product{}, fmt.Errorf("%w: quantity must be positive", ErrInvalidField)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findProduct(id)
	if idx < 0 {
		return Product{}, ErrNotFound
	}
	if s.state.Products[idx].OnHand < quantity {
		return Product{}, ErrInsufficientStock
	}

	products := slices.Clone(s.state.Products)
	products[idx].OnHand -= quantity

	candidate := s.state
	candidate.Products = products
	if err := s.commit(ctx, candidate); err != nil {
		return Product{}, err
	}

	return products[idx], nil
}

// ReleaseStock returns previously reserved units to on_hand. Used to roll back
// earlier reservations when a later line of the same checkout fails.
func (s *Store) ReleaseStock(ctx context.Context, id, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidField)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findProduct(id)
	if idx < 0 {
		return ErrNotFound
	}

	products := slices.Clone(s.state.Products)
	products[idx].OnHand += quantity

	candidate := s.state
	candidate.Products = products
	return s.commit(ctx, candidate)
}

// findProduct returns the index of the product with the given ID, or -1.
// Callers must hold at least the read lock.
func (s *Store) findProduct(id int) int {
	for i, p := range s.state.Products {
		if p.ID == id {
			return i
		}
	}
	return -1
}
