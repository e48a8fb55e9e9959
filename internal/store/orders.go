// ABOUTME: Order ledger operations: append-only creation plus status updates
// ABOUTME: Items and totals are immutable once an order is recorded

package store

import (
	"context"
	"fmt"
	"slices"
	"time"
)

// OrderPatch is the allow-list of order fields that may change after creation.
type OrderPatch struct {
	ShipAddress *string
	Status      *string
}

// CreateOrder appends an order to the ledger, assigning the next ID and
// stamping the order date. Items and TotalAmount are stored as given and never
// change afterwards.
func (s *Store) CreateOrder(ctx context.Context, o Order) (Order, error) {
	if o.Username == "" {
		return Order{}, fmt.Errorf("%w: username is required", ErrInvalidField)
	}
	if len(o.Items) == 0 {
		return Order{}, fmt.Errorf("%w: order has no items", ErrInvalidField)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o.ID = s.nextOrderID
	o.OrderDate = time.Now().UTC()
	if o.Status == "" {
		o.Status = OrderStatusPending
	}

	candidate := s.state
	candidate.Orders = append(slices.Clone(s.state.Orders), o)
	if err := s.commit(ctx, candidate); err != nil {
		return Order{}, err
	}

	s.nextOrderID++
	s.logger.Info("order recorded",
		"id", o.ID,
		"username", o.Username,
		"total", o.TotalAmount.String(),
		"items", len(o.Items))
	return o, nil
}

// GetOrder returns the order with the given ID.
func (s *Store) GetOrder(ctx context.Context, id int) (Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.findOrder(id)
	if idx < 0 {
		return Order{}, ErrNotFound
	}
	return s.state.Orders[idx], nil
}

// ListOrders returns every order in the ledger in creation order.
func (s *Store) ListOrders(ctx context.Context) ([]Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.state.Orders), nil
}

// ListOrdersByUser returns the orders owned by the given username.
func (s *Store) ListOrdersByUser(ctx context.Context, username string) ([]Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]Order, 0)
	for _, o := range s.state.Orders {
		if o.Username == username {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

// UpdateOrder applies the patch to an existing order. Only ship address and
// status are patchable; items and totals are immutable.
func (s *Store) UpdateOrder(ctx context.Context, id int, patch OrderPatch) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findOrder(id)
	if idx < 0 {
		return Order{}, ErrNotFound
	}

	orders := slices.Clone(s.state.Orders)
	o := orders[idx]
	if patch.ShipAddress != nil {
		o.ShipAddress = *patch.ShipAddress
	}
	if patch.Status != nil {
		o.Status = *patch.Status
	}
	orders[idx] = o

	candidate := s.state
	candidate.Orders = orders
	if err := s.commit(ctx, candidate); err != nil {
		return Order{}, err
	}

	return o, nil
}

// findOrder returns the index of the order with the given ID, or -1.
// Callers must hold at least the read lock.
func (s *Store) findOrder(id int) int {
	for i, o := range s.state.Orders {
		if o.ID == id {
			return i
		}
	}
	return -1
}
