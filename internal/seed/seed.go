// ABOUTME: Populates a backend store with restaurants, providers and the admin user.
// ABOUTME: Refuses to run twice on the same database; reset clears it first.

package seed

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/2389/provadmin/internal/backend"
	"github.com/2389/provadmin/internal/store"
)

// ErrAlreadySeeded is returned when the store already holds restaurants.
var ErrAlreadySeeded = errors.New("database already contains seed data")

// Options controls what Run creates.
type Options struct {
	AdminName     string
	AdminEmail    string
	AdminPassword string

	// ProvidersPerRestaurant defaults to 3.
	ProvidersPerRestaurant int
}

// Summary counts the records Run created.
type Summary struct {
	Restaurants int
	Providers   int
	Users       int
}

func (s Summary) String() string {
	return fmt.Sprintf("%d restaurants, %d providers, %d users", s.Restaurants, s.Providers, s.Users)
}

// Run seeds s. The admin user is skipped when AdminEmail is empty or the
// email is already registered.
func Run(ctx context.Context, s *store.Store, g *Generator, opts Options) (Summary, error) {
	var sum Summary

	n, err := s.CountRestaurants()
	if err != nil {
		return sum, fmt.Errorf("count restaurants: %w", err)
	}
	if n > 0 {
		return sum, ErrAlreadySeeded
	}

	count := opts.ProvidersPerRestaurant
	if count <= 0 {
		count = 3
	}

	rs := Restaurants()
	for i := range rs {
		if err := s.CreateRestaurant(&rs[i]); err != nil {
			return sum, fmt.Errorf("create restaurant %s: %w", rs[i].Name, err)
		}
		sum.Restaurants++
	}

	generated := g.Generate(ctx, rs, count)
	for _, r := range rs {
		for _, p := range generated[r.ID] {
			row := &store.Provider{
				Name:         p.Name,
				Category:     p.Category,
				Phone:        p.Phone,
				Email:        p.Email,
				RestaurantID: r.ID,
			}
			if err := s.CreateProvider(row); err != nil {
				return sum, fmt.Errorf("create provider %s: %w", p.Name, err)
			}
			sum.Providers++
		}
	}

	if opts.AdminEmail == "" {
		return sum, nil
	}
	exists, err := s.UserExists(opts.AdminEmail)
	if err != nil {
		return sum, fmt.Errorf("check admin user: %w", err)
	}
	if exists {
		log.Printf("Admin user %s already exists, skipping", opts.AdminEmail)
		return sum, nil
	}

	hash, err := backend.HashPassword(opts.AdminPassword)
	if err != nil {
		return sum, fmt.Errorf("hash admin password: %w", err)
	}
	if err := s.CreateUser(&store.User{
		Name:         opts.AdminName,
		Email:        opts.AdminEmail,
		PasswordHash: hash,
		Role:         "admin",
	}); err != nil {
		return sum, fmt.Errorf("create admin user: %w", err)
	}
	sum.Users++

	return sum, nil
}
