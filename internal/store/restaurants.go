// ABOUTME: Restaurant storage operations.
// ABOUTME: Restaurants are read by the API and written by the seed command.

package store

import (
	"database/sql"
	"errors"
)

// Restaurant is a row of the restaurants table.
type Restaurant struct {
	ID           int64
	Name         string
	City         string
	Zone         string
	Percentage   float64
	Status       string
	Description  string
	Address      string
	ContactEmail string
}

const restaurantColumns = `id, nombre, ciudad, zona, porcentaje, estado, descripcion, direccion, email_contacto`

func scanRestaurant(row interface{ Scan(...any) error }) (*Restaurant, error) {
	r := &Restaurant{}
	err := row.Scan(&r.ID, &r.Name, &r.City, &r.Zone, &r.Percentage, &r.Status,
		&r.Description, &r.Address, &r.ContactEmail)
	return r, err
}

// CreateRestaurant inserts r. A zero ID lets SQLite assign one; the
// assigned id is written back.
func (s *Store) CreateRestaurant(r *Restaurant) error {
	var id any
	if r.ID != 0 {
		id = r.ID
	}
	res, err := s.db.Exec(`
		INSERT INTO restaurants (id, nombre, ciudad, zona, porcentaje, estado, descripcion, direccion, email_contacto)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, r.Name, r.City, r.Zone, r.Percentage, r.Status, r.Description, r.Address, r.ContactEmail)
	if err != nil {
		return err
	}
	r.ID, err = res.LastInsertId()
	return err
}

// GetRestaurant returns the restaurant with id or ErrNotFound.
func (s *Store) GetRestaurant(id int64) (*Restaurant, error) {
	r, err := scanRestaurant(s.db.QueryRow(`SELECT `+restaurantColumns+` FROM restaurants WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ListRestaurants returns every restaurant ordered by id.
func (s *Store) ListRestaurants() ([]*Restaurant, error) {
	rows, err := s.db.Query(`SELECT ` + restaurantColumns + ` FROM restaurants ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Restaurant
	for rows.Next() {
		r, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountRestaurants returns the number of restaurants.
func (s *Store) CountRestaurants() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM restaurants`).Scan(&n)
	return n, err
}
