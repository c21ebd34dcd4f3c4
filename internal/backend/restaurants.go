// ABOUTME: Restaurant endpoints of the backend API.
// ABOUTME: Read-only list and lookup in the Flask backend's wire shape.

package backend

import (
	"errors"
	"net/http"

	apierrors "github.com/2389/provadmin/internal/errors"
	"github.com/2389/provadmin/internal/store"
)

type restaurantJSON struct {
	ID           int64   `json:"id"`
	Name         string  `json:"nombre"`
	City         string  `json:"ciudad"`
	Zone         string  `json:"zona"`
	Percentage   float64 `json:"porcentaje"`
	Status       string  `json:"estado"`
	Description  string  `json:"descripcion"`
	Address      string  `json:"direccion"`
	ContactEmail string  `json:"email_contacto"`
}

func toRestaurantJSON(r *store.Restaurant) restaurantJSON {
	return restaurantJSON{
		ID:           r.ID,
		Name:         r.Name,
		City:         r.City,
		Zone:         r.Zone,
		Percentage:   r.Percentage,
		Status:       r.Status,
		Description:  r.Description,
		Address:      r.Address,
		ContactEmail: r.ContactEmail,
	}
}

func (s *Server) listRestaurants(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.ListRestaurants()
	if err != nil {
		s.internalError(w, "list restaurants", err)
		return
	}
	out := make([]restaurantJSON, 0, len(rows))
	for _, row := range rows {
		out = append(out, toRestaurantJSON(row))
	}
	apierrors.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) getRestaurant(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, msgRestaurantMissing)
	if !ok {
		return
	}
	row, err := s.store.GetRestaurant(id)
	if errors.Is(err, store.ErrNotFound) {
		apierrors.WriteError(w, http.StatusNotFound, apierrors.ErrNotFound, msgRestaurantMissing)
		return
	}
	if err != nil {
		s.internalError(w, "get restaurant", err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, toRestaurantJSON(row))
}
