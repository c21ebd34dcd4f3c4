// ABOUTME: Service contracts consumed by the detail page and provider form.
// ABOUTME: Implemented by the HTTP client and by in-memory fakes in tests.

package provider

import "context"

// Service is the full provider API exposed by the backend.
type Service interface {
	ListProviders(ctx context.Context, restaurantID string) ([]Provider, error)
	GetProvider(ctx context.Context, id int64) (Provider, error)
	DeleteProvider(ctx context.Context, id int64) error
	UpdateProvider(ctx context.Context, id int64, f Fields) (Provider, error)
	CreateProvider(ctx context.Context, restaurantID string, f Fields) (Provider, error)
}

// RestaurantService resolves restaurants. GetRestaurant returns
// ErrRestaurantNotFound when no restaurant matches.
type RestaurantService interface {
	GetRestaurant(ctx context.Context, id string) (Restaurant, error)
	ListRestaurants(ctx context.Context) ([]Restaurant, error)
}
