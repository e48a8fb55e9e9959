// ABOUTME: TOML fixture loading for shop-admin seed
// ABOUTME: Inserts fixture products and users through the normal store operations

package seed

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"

	"github.com/jackfgibson/rapProject/internal/auth"
	"github.com/jackfgibson/rapProject/internal/store"
)

// Fixture is the root of a seed file.
type Fixture struct {
	Products []ProductFixture `toml:"products"`
	Users    []UserFixture    `toml:"users"`
}

// ProductFixture describes one catalog entry. Price is a string so fixture
// authors control the exact decimal value.
type ProductFixture struct {
	Name        string `toml:"name"`
	Price       string `toml:"price"`
	Category    string `toml:"category"`
	OnHand      int    `toml:"on_hand"`
	Description string `toml:"description"`
}

// UserFixture describes one account. Password is clear text in the fixture
// and hashed before it reaches the store.
type UserFixture struct {
	Username      string `toml:"username"`
	Email         string `toml:"email"`
	Password      string `toml:"password"`
	First         string `toml:"first"`
	Last          string `toml:"last"`
	StreetAddress string `toml:"street_address"`
	Role          string `toml:"role"`
}

// Load reads and parses a fixture file.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}

	var f Fixture
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}
	return &f, nil
}

// Apply inserts the fixture's products and users into the store. Users that
// already exist are skipped rather than treated as an error, so seeding is
// re-runnable.
func Apply(ctx context.Context, st *store.Store, f *Fixture, bcryptCost int) error {
	for _, pf := range f.Products {
		price, err := decimal.NewFromString(pf.Price)
		if err != nil {
			return fmt.Errorf("product %q: parsing price %q: %w", pf.Name, pf.Price, err)
		}

		if _, err := st.CreateProduct(ctx, store.Product{
			Name:        pf.Name,
			Price:       price,
			Category:    pf.Category,
			OnHand:      pf.OnHand,
			Description: pf.Description,
		}); err != nil {
			return fmt.Errorf("product %q: %w", pf.Name, err)
		}
	}

	for _, uf := range f.Users {
		role := uf.Role
		if role == "" {
			role = store.RoleUser
		}

		hash, err := auth.HashPassword(uf.Password, bcryptCost)
		if err != nil {
			return fmt.Errorf("user %q: %w", uf.Username, err)
		}

		_, err = st.CreateUser(ctx, store.User{
			Username:      uf.Username,
			Email:         uf.Email,
			PasswordHash:  hash,
			First:         uf.First,
			Last:          uf.Last,
			StreetAddress: uf.StreetAddress,
			Role:          role,
		})
		if errors.Is(err, store.ErrDuplicateUsername) {
			continue
		}
		if err != nil {
			return fmt.Errorf("user %q: %w", uf.Username, err)
		}
	}

	return nil
}
