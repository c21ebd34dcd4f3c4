// ABOUTME: Provider storage operations.
// ABOUTME: Handles CRUD and per-restaurant listing of providers.

package store

import (
	"database/sql"
	"errors"
	"strings"
)

// Provider is a row of the providers table.
type Provider struct {
	ID           int64
	Name         string
	Category     string
	Phone        string
	Email        string
	RestaurantID int64
}

// ProviderPatch carries the fields of a partial update. Nil fields keep
// their stored value.
type ProviderPatch struct {
	Name     *string
	Category *string
	Phone    *string
	Email    *string
}

const providerColumns = `id, nombre, categoria, telefono, email, restaurante_id`

func scanProvider(row interface{ Scan(...any) error }) (*Provider, error) {
	p := &Provider{}
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Phone, &p.Email, &p.RestaurantID)
	return p, err
}

// CreateProvider inserts p and writes the assigned id back. The restaurant
// must exist.
func (s *Store) CreateProvider(p *Provider) error {
	if _, err := s.GetRestaurant(p.RestaurantID); err != nil {
		return err
	}
	res, err := s.db.Exec(`
		INSERT INTO providers (nombre, categoria, telefono, email, restaurante_id)
		VALUES (?, ?, ?, ?, ?)
	`, p.Name, p.Category, p.Phone, p.Email, p.RestaurantID)
	if err != nil {
		return err
	}
	p.ID, err = res.LastInsertId()
	return err
}

// GetProvider returns the provider with id or ErrNotFound.
func (s *Store) GetProvider(id int64) (*Provider, error) {
	p, err := scanProvider(s.db.QueryRow(`SELECT `+providerColumns+` FROM providers WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListProviders returns providers ordered by id. A zero restaurantID lists
// every provider.
func (s *Store) ListProviders(restaurantID int64) ([]*Provider, error) {
	query := `SELECT ` + providerColumns + ` FROM providers`
	args := []any{}
	if restaurantID != 0 {
		query += " WHERE restaurante_id = ?"
		args = append(args, restaurantID)
	}
	query += " ORDER BY id"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*Provider{}
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdateProvider applies patch to the provider with id and returns the
// stored result.
func (s *Store) UpdateProvider(id int64, patch ProviderPatch) (*Provider, error) {
	var sets []string
	var args []any
	add := func(column string, v *string) {
		if v != nil {
			sets = append(sets, column+" = ?")
			args = append(args, *v)
		}
	}
	add("nombre", patch.Name)
	add("categoria", patch.Category)
	add("telefono", patch.Phone)
	add("email", patch.Email)

	if len(sets) > 0 {
		args = append(args, id)
		res, err := s.db.Exec(`UPDATE providers SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
		if err != nil {
			return nil, err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, ErrNotFound
		}
	}
	return s.GetProvider(id)
}

// DeleteProvider removes the provider with id or returns ErrNotFound.
func (s *Store) DeleteProvider(id int64) error {
	res, err := s.db.Exec(`DELETE FROM providers WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SearchProviders returns up to limit providers whose name contains term.
// A non-zero restaurantID restricts the search to that restaurant.
func (s *Store) SearchProviders(term string, restaurantID int64, limit int) ([]*Provider, error) {
	query := `SELECT ` + providerColumns + ` FROM providers WHERE nombre LIKE ? ESCAPE '\'`
	args := []any{"%" + escapeSQLLike(term) + "%"}
	if restaurantID != 0 {
		query += " AND restaurante_id = ?"
		args = append(args, restaurantID)
	}
	query += " ORDER BY id LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*Provider{}
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
