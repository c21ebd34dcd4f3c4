// ABOUTME: Provider endpoints of the backend API.
// ABOUTME: List (by restaurant or name search), get, create, partial update and delete.

package backend

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"

	apierrors "github.com/2389/provadmin/internal/errors"
	"github.com/2389/provadmin/internal/form"
	"github.com/2389/provadmin/internal/provider"
	"github.com/2389/provadmin/internal/store"
	"github.com/go-chi/chi/v5"
)

const (
	maxRequestBody = 64 * 1024
	searchLimit    = 50
)

func toProvider(p *store.Provider) provider.Provider {
	return provider.Provider{
		ID:           p.ID,
		Name:         p.Name,
		Category:     p.Category,
		Phone:        p.Phone,
		Email:        p.Email,
		RestaurantID: p.RestaurantID,
	}
}

// providerBody is the JSON body of create and update requests. Pointer
// fields tell absent keys from empty values.
type providerBody struct {
	Name         *string `json:"nombre"`
	Category     *string `json:"categoria"`
	Phone        *string `json:"telefono"`
	Email        *string `json:"email"`
	RestaurantID *int64  `json:"restaurante_id"`
}

// decodeProviderBody reads a non-empty JSON object. ok is false when a
// response has already been written.
func decodeProviderBody(w http.ResponseWriter, r *http.Request) (providerBody, bool) {
	var body providerBody
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		apierrors.WriteError(w, http.StatusBadRequest, apierrors.ErrInvalidBody, msgNoData)
		return body, false
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil || len(keys) == 0 {
		apierrors.WriteError(w, http.StatusBadRequest, apierrors.ErrInvalidBody, msgNoData)
		return body, false
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		apierrors.WriteErrorWithDetails(w, http.StatusBadRequest, apierrors.ErrInvalidBody, msgInvalidFields, err.Error())
		return body, false
	}
	return body, true
}

// writeValidation reports the first invalid field of f, if any.
func writeValidation(w http.ResponseWriter, f provider.Fields) bool {
	errs := form.Validate(f)
	if len(errs) == 0 {
		return false
	}
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	field, msg := fields[0], msgInvalidFields
	if _, missing := errs[form.FieldName]; missing {
		field, msg = form.FieldName, msgMissingFields
	}
	apierrors.WriteErrorWithField(w, http.StatusBadRequest, apierrors.ErrValidationFailed, msg, field)
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, notFound string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		apierrors.WriteError(w, http.StatusNotFound, apierrors.ErrNotFound, notFound)
		return 0, false
	}
	return id, true
}

func (s *Server) listProviders(w http.ResponseWriter, r *http.Request) {
	var restaurantID int64
	if raw := strings.TrimSpace(r.URL.Query().Get("restaurante_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			apierrors.WriteErrorWithField(w, http.StatusBadRequest, apierrors.ErrInvalidRequest, msgInvalidFields, "restaurante_id")
			return
		}
		restaurantID = id
	}

	var (
		rows []*store.Provider
		err  error
	)
	if term := strings.TrimSpace(r.URL.Query().Get("q")); term != "" {
		rows, err = s.store.SearchProviders(term, restaurantID, searchLimit)
	} else {
		rows, err = s.store.ListProviders(restaurantID)
	}
	if err != nil {
		s.internalError(w, "list providers", err)
		return
	}

	out := make([]provider.Provider, 0, len(rows))
	for _, p := range rows {
		out = append(out, toProvider(p))
	}
	apierrors.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) getProvider(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, msgProviderNotFound)
	if !ok {
		return
	}

	p, err := s.store.GetProvider(id)
	if errors.Is(err, store.ErrNotFound) {
		apierrors.WriteError(w, http.StatusNotFound, apierrors.ErrNotFound, msgProviderNotFound)
		return
	}
	if err != nil {
		s.internalError(w, "get provider", err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, toProvider(p))
}

func (s *Server) createProvider(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeProviderBody(w, r)
	if !ok {
		return
	}
	if body.RestaurantID == nil || *body.RestaurantID <= 0 {
		apierrors.WriteErrorWithField(w, http.StatusBadRequest, apierrors.ErrMissingField, msgMissingFields, "restaurante_id")
		return
	}

	fields := provider.Fields{
		Name:     deref(body.Name),
		Category: deref(body.Category),
		Phone:    deref(body.Phone),
		Email:    deref(body.Email),
	}.Trimmed()
	if writeValidation(w, fields) {
		return
	}

	p := &store.Provider{
		Name:         fields.Name,
		Category:     fields.Category,
		Phone:        fields.Phone,
		Email:        fields.Email,
		RestaurantID: *body.RestaurantID,
	}
	err := s.store.CreateProvider(p)
	if errors.Is(err, store.ErrNotFound) {
		apierrors.WriteError(w, http.StatusNotFound, apierrors.ErrNotFound, msgRestaurantMissing)
		return
	}
	if err != nil {
		s.internalError(w, "create provider", err)
		return
	}
	apierrors.WriteJSON(w, http.StatusCreated, toProvider(p))
}

func (s *Server) updateProvider(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, msgProviderNotFound)
	if !ok {
		return
	}

	current, err := s.store.GetProvider(id)
	if errors.Is(err, store.ErrNotFound) {
		apierrors.WriteError(w, http.StatusNotFound, apierrors.ErrNotFound, msgProviderNotFound)
		return
	}
	if err != nil {
		s.internalError(w, "get provider", err)
		return
	}

	body, ok := decodeProviderBody(w, r)
	if !ok {
		return
	}

	patch := store.ProviderPatch{
		Name:     trimmed(body.Name),
		Category: trimmed(body.Category),
		Phone:    trimmed(body.Phone),
		Email:    trimmed(body.Email),
	}
	merged := provider.FieldsOf(toProvider(current))
	apply(&merged.Name, patch.Name)
	apply(&merged.Category, patch.Category)
	apply(&merged.Phone, patch.Phone)
	apply(&merged.Email, patch.Email)
	if writeValidation(w, merged) {
		return
	}

	updated, err := s.store.UpdateProvider(id, patch)
	if errors.Is(err, store.ErrNotFound) {
		apierrors.WriteError(w, http.StatusNotFound, apierrors.ErrNotFound, msgProviderNotFound)
		return
	}
	if err != nil {
		s.internalError(w, "update provider", err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, toProvider(updated))
}

func (s *Server) deleteProvider(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, msgProviderNotFound)
	if !ok {
		return
	}

	err := s.store.DeleteProvider(id)
	if errors.Is(err, store.ErrNotFound) {
		apierrors.WriteError(w, http.StatusNotFound, apierrors.ErrNotFound, msgProviderNotFound)
		return
	}
	if err != nil {
		s.internalError(w, "delete provider", err)
		return
	}
	apierrors.WriteMessage(w, http.StatusOK, msgProviderDeleted)
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	log.Printf("backend: %s: %v", op, err)
	apierrors.WriteError(w, http.StatusInternalServerError, apierrors.ErrDatabaseError, msgInternal)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func apply(dst, src *string) {
	if src != nil {
		*dst = *src
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
