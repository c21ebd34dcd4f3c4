// ABOUTME: Static fixtures used when OpenAI is not configured.
// ABOUTME: Restaurants mirror the admin UI's built-in directory; providers rotate through a fixed list.

package seed

import (
	"fmt"
	"strconv"

	"github.com/2389/provadmin/internal/restaurants"
	"github.com/2389/provadmin/internal/store"
)

// contactDetails completes the built-in restaurants with the fields only the
// backend stores.
var contactDetails = map[string]struct{ address, email string }{
	"1": {"Calle de Colón 12, Valencia", "contacto1@restaurantes.example.com"},
	"2": {"Carrer de Balmes 45, Barcelona", "contacto2@restaurantes.example.com"},
	"3": {"Avenida del Puerto 8, Valencia", "contacto3@restaurantes.example.com"},
	"4": {"Calle de la Paz 21, Valencia", "contacto4@restaurantes.example.com"},
}

// Restaurants returns the restaurant rows to seed.
func Restaurants() []store.Restaurant {
	var out []store.Restaurant
	for _, r := range restaurants.Fixtures() {
		id, err := strconv.ParseInt(r.ID, 10, 64)
		if err != nil {
			continue
		}
		c := contactDetails[r.ID]
		out = append(out, store.Restaurant{
			ID:           id,
			Name:         r.Name,
			City:         r.City,
			Zone:         r.Zone,
			Percentage:   r.Percentage,
			Status:       r.Status,
			Description:  r.Description,
			Address:      c.address,
			ContactEmail: c.email,
		})
	}
	return out
}

var staticProviders = []ProviderData{
	{Name: "Frutas y Verduras García", Category: "Fruta y verdura", Phone: "961234567", Email: "pedidos@frutasgarcia.example.com"},
	{Name: "Pescados del Mediterráneo", Category: "Pescado", Phone: "963456789", Email: "ventas@pescadosmed.example.com"},
	{Name: "Carnes Selectas Ruiz", Category: "Carne", Phone: "+34 962 345 678", Email: "info@carnesruiz.example.com"},
	{Name: "Panadería La Espiga", Category: "Panadería", Phone: "960112233", Email: "hola@laespiga.example.com"},
	{Name: "Lácteos Valle Verde", Category: "Lácteos", Phone: "934567890", Email: "comercial@valleverde.example.com"},
	{Name: "Distribuciones Bebidas Levante", Category: "Bebidas", Phone: "965556677", Email: "pedidos@bebidaslevante.example.com"},
	{Name: "Limpiezas Industriales Sol", Category: "Limpieza", Phone: "931112244", Email: "servicio@limpiezassol.example.com"},
	{Name: "Arroces de la Albufera", Category: "Arroz", Phone: "961998877", Email: "ventas@arrocesalbufera.example.com"},
	{Name: "Aceites Oliva Real", Category: "Aceite", Phone: "953221100", Email: "contacto@olivareal.example.com"},
	{Name: "Mantenimiento Frío Total", Category: "Mantenimiento", Phone: "(96) 3334455", Email: ""},
}

// generateStatic deals count providers to each restaurant, rotating through
// the fixed list so restaurants get different suppliers.
func generateStatic(rs []store.Restaurant, count int) map[int64][]ProviderData {
	out := make(map[int64][]ProviderData, len(rs))
	next := 0
	for _, r := range rs {
		providers := make([]ProviderData, 0, count)
		for i := 0; i < count; i++ {
			p := staticProviders[next%len(staticProviders)]
			if next >= len(staticProviders) {
				p.Name = fmt.Sprintf("%s (%s)", p.Name, r.City)
			}
			providers = append(providers, p)
			next++
		}
		out[r.ID] = providers
	}
	return out
}
