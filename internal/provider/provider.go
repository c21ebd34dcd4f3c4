// ABOUTME: Domain types shared by the admin front-end and the mock backend.
// ABOUTME: Provider and Restaurant records plus the editable provider fields.

package provider

import "strings"

// Provider is a supplier associated with a restaurant. The JSON field names
// are the backend wire contract and must not change.
type Provider struct {
	ID           int64  `json:"id"`
	Name         string `json:"nombre"`
	Category     string `json:"categoria"`
	Phone        string `json:"telefono"`
	Email        string `json:"email"`
	RestaurantID int64  `json:"restaurante_id,omitempty"`
}

// Fields holds the editable attributes of a provider.
type Fields struct {
	Name     string `json:"nombre"`
	Category string `json:"categoria"`
	Phone    string `json:"telefono"`
	Email    string `json:"email"`
}

// FieldsOf returns the editable fields of p.
func FieldsOf(p Provider) Fields {
	return Fields{
		Name:     p.Name,
		Category: p.Category,
		Phone:    p.Phone,
		Email:    p.Email,
	}
}

// Trimmed returns a copy of f with surrounding whitespace removed.
func (f Fields) Trimmed() Fields {
	return Fields{
		Name:     strings.TrimSpace(f.Name),
		Category: strings.TrimSpace(f.Category),
		Phone:    strings.TrimSpace(f.Phone),
		Email:    strings.TrimSpace(f.Email),
	}
}

// StatusActive is the status label of an operating restaurant.
const StatusActive = "Activo"

// Restaurant is the parent entity under which providers are scoped.
// It is read-only from the admin front-end's perspective.
type Restaurant struct {
	ID          string
	Name        string
	City        string
	Zone        string
	Percentage  float64
	Status      string
	Description string
}

// Active reports whether the restaurant is operating.
func (r Restaurant) Active() bool {
	return r.Status == StatusActive
}
