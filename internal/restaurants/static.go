// ABOUTME: Fixed in-memory restaurant directory used when no backend lookup is configured.
// ABOUTME: Holds the four Valencia/Barcelona fixture restaurants keyed by identity.

package restaurants

import (
	"context"

	"github.com/2389/provadmin/internal/provider"
)

var fixtures = []provider.Restaurant{
	{ID: "1", Name: "RESTAURANTE # 1", City: "Valencia", Zone: "zona 1", Percentage: 27, Status: provider.StatusActive, Description: "Detalles completos del restaurante número 1 en Valencia."},
	{ID: "2", Name: "RESTAURANTE # 2", City: "Barcelona", Zone: "zona 2", Percentage: 27, Status: provider.StatusActive, Description: "Información detallada del restaurante número 2 en Barcelona."},
	{ID: "3", Name: "RESTAURANTE # 3", City: "Valencia", Zone: "zona 2", Percentage: 27, Status: provider.StatusActive, Description: "Detalles del restaurante número 3, también en Valencia."},
	{ID: "4", Name: "RESTAURANTE # 4", City: "Valencia", Zone: "zona 3", Percentage: 27, Status: provider.StatusActive, Description: "Aquí encontrarás toda la información sobre el restaurante 4."},
}

// Fixtures returns a copy of the built-in restaurants.
func Fixtures() []provider.Restaurant {
	out := make([]provider.Restaurant, len(fixtures))
	copy(out, fixtures)
	return out
}

// Static is an immutable directory. It never blocks and never fails except
// with provider.ErrRestaurantNotFound.
type Static struct {
	byID  map[string]provider.Restaurant
	order []provider.Restaurant
}

// NewStatic builds a directory from rs; with no arguments it uses Fixtures.
func NewStatic(rs ...provider.Restaurant) *Static {
	if len(rs) == 0 {
		rs = Fixtures()
	}
	s := &Static{byID: make(map[string]provider.Restaurant, len(rs))}
	for _, r := range rs {
		if _, dup := s.byID[r.ID]; dup {
			continue
		}
		s.byID[r.ID] = r
		s.order = append(s.order, r)
	}
	return s
}

func (s *Static) GetRestaurant(ctx context.Context, id string) (provider.Restaurant, error) {
	r, ok := s.byID[id]
	if !ok {
		return provider.Restaurant{}, provider.ErrRestaurantNotFound
	}
	return r, nil
}

func (s *Static) ListRestaurants(ctx context.Context) ([]provider.Restaurant, error) {
	out := make([]provider.Restaurant, len(s.order))
	copy(out, s.order)
	return out, nil
}
