// ABOUTME: Mock backend REST API consumed by the admin front-end.
// ABOUTME: Mounts login, provider and restaurant routes behind JWT auth and request logging.

package backend

import (
	"net/http"

	"github.com/2389/provadmin/internal/auth"
	apierrors "github.com/2389/provadmin/internal/errors"
	"github.com/2389/provadmin/internal/logging"
	"github.com/2389/provadmin/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Messages returned by the API. They match the Flask backend.
const (
	msgNoData            = "Datos no recibidos"
	msgMissingFields     = "Faltan campos obligatorios"
	msgInvalidFields     = "Datos inválidos"
	msgProviderNotFound  = "Proveedor no encontrado"
	msgProviderDeleted   = "Proveedor eliminado correctamente"
	msgRestaurantMissing = "Restaurante no encontrado"
	msgLoginMissing      = "Faltan datos"
	msgEmailNotFound     = "Email no encontrado"
	msgBadCredentials    = "Email o contraseña incorrectos"
	msgInternal          = "Error interno del servidor"
)

// Server holds the API dependencies.
type Server struct {
	store  *store.Store
	issuer *auth.Issuer
}

func NewServer(s *store.Store, issuer *auth.Issuer) *Server {
	return &Server{store: s, issuer: issuer}
}

// Router returns the API handler with its middleware stack.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(logging.Middleware(s.store))

	r.Get("/healthz", s.healthz)
	s.RegisterRoutes(r)
	return r
}

// RegisterRoutes mounts the /api routes on r.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/login", s.login)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireJWT(s.issuer))

			r.Get("/proveedores", s.listProviders)
			r.Post("/proveedores", s.createProvider)
			r.Get("/proveedores/{id}", s.getProvider)
			r.Put("/proveedores/{id}", s.updateProvider)
			r.Delete("/proveedores/{id}", s.deleteProvider)

			r.Get("/restaurantes", s.listRestaurants)
			r.Get("/restaurantes/{id}", s.getRestaurant)
		})
	})
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(); err != nil {
		apierrors.WriteErrorWithDetails(w, http.StatusServiceUnavailable, apierrors.ErrDatabaseError, msgInternal, err.Error())
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
