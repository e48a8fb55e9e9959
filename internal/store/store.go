// ABOUTME: Store types, errors, and the shared state document for shop persistence
// ABOUTME: Defines User, Product, Order records and the snapshot-backed Store

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrDuplicateUsername is returned when registering a username that already exists
var ErrDuplicateUsername = errors.New("username already exists")

// ErrInsufficientStock is returned when a reservation asks for more units than are on hand
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrInvalidField is returned when a create or update carries a field that fails validation
var ErrInvalidField = errors.New("invalid field")

// Role constants for User.Role
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// OrderStatusPending is the status every order starts with. Later transitions
// are free-form admin-set strings; only the initial value is fixed.
const OrderStatusPending = "pending"

func init() {
	// Prices and totals serialize as JSON numbers, matching the wire format
	// consumed by existing clients.
	decimal.MarshalJSONWithoutQuotes = true
}

// User represents a shop account. PasswordHash is persisted in snapshots but
// cleared by every read operation; only PasswordHashFor exposes it.
type User struct {
	Username      string `json:"username"`
	Email         string `json:"email"`
	PasswordHash  string `json:"password,omitempty"`
	First         string `json:"first"`
	Last          string `json:"last"`
	StreetAddress string `json:"street_address"`
	Role          string `json:"role"`
}

// redacted returns a copy of the user with the password hash cleared.
func (u User) redacted() User {
	u.PasswordHash = ""
	return u
}

// Product represents a catalog entry. OnHand never goes below zero.
type Product struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	OnHand      int             `json:"on_hand"`
	Description string          `json:"description"`
}

// OrderItem is a single line of an order. Price is the unit price snapshotted
// at reservation time and does not track later catalog changes.
type OrderItem struct {
	ProductID int             `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Order is a record of a completed checkout. Items and TotalAmount are
// immutable after creation; only ShipAddress and Status may change.
type Order struct {
	ID          int             `json:"id"`
	Username    string          `json:"username"`
	ShipAddress string          `json:"ship_address"`
	Items       []OrderItem     `json:"items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	OrderDate   time.Time       `json:"order_date"`
	Status      string          `json:"status"`
}

// state is the single persisted document: three collections, element order
// preserved across save/load.
type state struct {
	Users    []User    `json:"users"`
	Products []Product `json:"products"`
	Orders   []Order   `json:"orders"`
}

// defaultState is the catalog a fresh store starts with when no snapshot exists.
func defaultState() state {
	return state{
		Users: []User{},
		Products: []Product{
			{
				ID:          1,
				Name:        "Table Tennis Paddle",
				Price:       decimal.NewFromFloat(25.0),
				Category:    "Paddles",
				OnHand:      100,
				Description: "High-quality wooden paddle for professional play",
			},
		},
		Orders: []Order{},
	}
}

// Store is the single authoritative store for users, products, and orders.
// Reads take the read lock and may run concurrently; every mutation runs under
// the write lock as build-candidate, persist, commit, so a failed persist
// leaves memory untouched.
type Store struct {
	mu            sync.RWMutex
	state         state
	nextProductID int
	nextOrderID   int
	snap          Snapshotter
	logger        *slog.Logger
}

// Open loads the snapshot from snap, falling back to the default seeded state
// when no snapshot exists yet. ID counters are seeded from the loaded data and
// only increase for the lifetime of the store, so IDs are never reused even
// after deletion.
func Open(snap Snapshotter) (*Store, error) {
	logger := slog.Default().With("component", "store")

	s := &Store{snap: snap, logger: logger}

	data, err := snap.Load()
	switch {
	case errors.Is(err, ErrNoSnapshot):
		s.state = defaultState()
		logger.Info("no snapshot found, starting from seeded state")
	case err != nil:
		return nil, fmt.Errorf("loading snapshot: %w", err)
	default:
		if err := json.Unmarshal(data, &s.state); err != nil {
			return nil, fmt.Errorf("decoding snapshot: %w", err)
		}
	}

	s.nextProductID = maxProductID(s.state.Products) + 1
	s.nextOrderID = maxOrderID(s.state.Orders) + 1

	logger.Info("store opened",
		"users", len(s.state.Users),
		"products", len(s.state.Products),
		"orders", len(s.state.Orders))
	return s, nil
}

// Close releases the underlying snapshot backend.
func (s *Store) Close() error {
	return s.snap.Close()
}

// commit persists the candidate state and, only on success, makes it current.
// Callers must hold the write lock.
func (s *Store) commit(ctx context.Context, candidate state) error {
	data, err := json.MarshalIndent(candidate, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := s.snap.Save(ctx, data); err != nil {
		return fmt.Errorf("persisting snapshot: %w", err)
	}
	s.state = candidate
	return nil
}

func maxProductID(products []Product) int {
	max := 0
	for _, p := range products {
		if p.ID > max {
			max = p.ID
		}
	}
	return max
}

func maxOrderID(orders []Order) int {
	max := 0
	for _, o := range orders {
		if o.ID > max {
			max = o.ID
		}
	}
	return max
}
