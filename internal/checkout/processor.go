// ABOUTME: Checkout transaction: validate, reserve stock per line, record the order
// ABOUTME: Rolls back every prior reservation when a later line fails

package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/jackfgibson/rapProject/internal/store"
)

// ErrInvalidRequest is returned when a checkout request is malformed before
// any reservation is attempted.
var ErrInvalidRequest = errors.New("invalid checkout request")

// Inventory is the slice of the catalog store the processor needs: the atomic
// reserve primitive and its inverse.
type Inventory interface {
	ReserveStock(ctx context.Context, id, quantity int) (store.Product, error)
	ReleaseStock(ctx context.Context, id, quantity int) error
}

// Ledger records completed checkouts.
type Ledger interface {
	CreateOrder(ctx context.Context, o store.Order) (store.Order, error)
}

// LineItem is one requested cart line.
type LineItem struct {
	ProductID int
	Quantity  int
}

// Processor executes checkout transactions against the inventory and ledger.
type Processor struct {
	inventory Inventory
	ledger    Ledger
	logger    *slog.Logger
}

// New creates a checkout processor.
func New(inventory Inventory, ledger Ledger) *Processor {
	return &Processor{
		inventory: inventory,
		ledger:    ledger,
		logger:    slog.Default().With("component", "checkout"),
	}
}

// reservation tracks a line already deducted from inventory so it can be
// released if a later line fails.
type reservation struct {
	productID int
	quantity  int
}

// Process runs one checkout as a single logical transaction: validate the
// request, reserve each line in the order given, then record the order. If any
// line fails, every reservation made earlier in this attempt is released
// before the error is returned, so a partially reservable cart never leaves
// inventory partially decremented. There is no retry; transient failures
// surface to the caller.
func (p *Processor) Process(ctx context.Context, username, shipAddress string, items []LineItem) (store.Order, error) {
	if shipAddress == "" {
		return store.Order{}, fmt.Errorf("%w: ship address is required", ErrInvalidRequest)
	}
	if len(items) == 0 {
		return store.Order{}, fmt.Errorf("%w: at least one item is required", ErrInvalidRequest)
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return store.Order{}, fmt.Errorf("%w: each item needs a positive quantity", ErrInvalidRequest)
		}
	}

	var reserved []reservation
	orderItems := make([]store.OrderItem, 0, len(items))
	total := decimal.Zero

	for _, item := range items {
		product, err := p.inventory.ReserveStock(ctx, item.ProductID, item.Quantity)
		if err != nil {
			p.rollback(ctx, reserved)
			switch {
			case errors.Is(err, store.ErrNotFound):
				return store.Order{}, fmt.Errorf("product %d: %w", item.ProductID, err)
			case errors.Is(err, store.ErrInsufficientStock):
				return store.Order{}, fmt.Errorf("product %d: %w", item.ProductID, err)
			default:
				return store.Order{}, err
			}
		}
		reserved = append(reserved, reservation{productID: item.ProductID, quantity: item.Quantity})

		// Unit price is snapshotted here; later catalog price changes do not
		// affect this order.
		orderItems = append(orderItems, store.OrderItem{
			ProductID: product.ID,
			Quantity:  item.Quantity,
			Price:     product.Price,
		})
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	p.logger.Info("processing payment", "username", username, "amount", total.StringFixed(2))

	order, err := p.ledger.CreateOrder(ctx, store.Order{
		Username:    username,
		ShipAddress: shipAddress,
		Items:       orderItems,
		TotalAmount: total,
	})
	if err != nil {
		p.rollback(ctx, reserved)
		return store.Order{}, err
	}

	return order, nil
}

// rollback releases all reservations made earlier in a failed attempt.
func (p *Processor) rollback(ctx context.Context, reserved []reservation) {
	for _, r := range reserved {
		if err := p.inventory.ReleaseStock(ctx, r.productID, r.quantity); err != nil {
			p.logger.Error("failed to release reserved stock",
				"product_id", r.productID,
				"quantity", r.quantity,
				"error", err)
		}
	}
}
