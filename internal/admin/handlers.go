// ABOUTME: HTTP handlers for the admin UI pages.
// ABOUTME: Serves login, restaurant listing, the provider detail page and the request log.

package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/2389/provadmin/internal/auth"
	"github.com/2389/provadmin/internal/detail"
	"github.com/2389/provadmin/internal/i18n"
	"github.com/2389/provadmin/internal/metrics"
	"github.com/2389/provadmin/internal/provider"
	"github.com/2389/provadmin/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	loginPath     = "/login"
	listingPath   = "/admin/proveedores"
	logsPath      = "/admin/registros"
	confirmYes    = "si"
	defaultWait   = 2 * time.Second
	defaultLogCap = 100
)

// Authenticator exchanges credentials for a backend access token.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// LogSource is the read side of the backend request log.
type LogSource interface {
	GetRequestLogs(q *store.RequestLogQuery) ([]*store.RequestLog, error)
	GetRequestLogStats() (*store.RequestLogStats, error)
	GetTopEndpoints(limit int) ([]store.EndpointCount, error)
	GetRecentRequests(resource string, limit int) ([]*store.RequestLog, error)
	GetResourceRequestCount(resource string, since time.Time) (int, error)
	GetResourceErrorRate(resource string, since time.Time) (float64, error)
}

// Config wires the admin UI to its collaborators. Logs is optional; the
// request log page is only served when it is set.
type Config struct {
	Providers   provider.Service
	Restaurants provider.RestaurantService
	Auth        Authenticator
	Logs        LogSource
	Metrics     *metrics.Metrics
	Sessions    *Sessions

	// RenderWait bounds how long a detail view waits for an in-flight fetch
	// before answering with the loading view.
	RenderWait time.Duration

	// BackendTimeout bounds every backend call.
	BackendTimeout time.Duration
}

type Handlers struct {
	cfg Config
}

func NewHandlers(cfg Config) *Handlers {
	if cfg.RenderWait <= 0 {
		cfg.RenderWait = defaultWait
	}
	if cfg.Sessions == nil {
		cfg.Sessions = NewSessions(0)
	}
	return &Handlers{cfg: cfg}
}

// Router returns the admin UI with the standard chi middleware stack.
func (h *Handlers) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	h.RegisterRoutes(r)
	return r
}

func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, listingPath, http.StatusSeeOther)
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"ok": true})
	})
	r.Handle("/metrics", h.cfg.Metrics.Handler())

	r.Get(loginPath, h.loginForm)
	r.Post(loginPath, h.login)
	r.Post("/logout", h.logout)

	r.Group(func(r chi.Router) {
		r.Use(auth.Guard(auth.CookieSource{}, loginPath))

		r.Get(listingPath, h.restaurantList)
		r.Route("/admin/restaurantes/{id}", func(r chi.Router) {
			r.Get("/", h.restaurantDetail)
			r.Post("/proveedores/{pid}/eliminar", h.deleteProvider)
			r.Get("/proveedores/{pid}/editar", h.editProvider)
			r.Get("/proveedores/nuevo", h.newProvider)
			r.Post("/modal", h.submitModal)
			r.Post("/modal/cerrar", h.closeModal)
		})
		if h.cfg.Logs != nil {
			r.Get(logsPath, h.logsList)
		}
	})
}

// base is embedded in every page's data.
type base struct {
	T        func(string) string
	Lang     string
	Title    string
	LoggedIn bool
	ShowLogs bool
	Refresh  bool
}

func (h *Handlers) base(r *http.Request, title string) base {
	tag := i18n.Resolve(r)
	_, loggedIn := auth.TokenFromContext(r.Context())
	return base{
		T:        func(key string) string { return i18n.T(tag, key) },
		Lang:     tag.String(),
		Title:    i18n.T(tag, title),
		LoggedIn: loggedIn,
		ShowLogs: h.cfg.Logs != nil,
	}
}

func (h *Handlers) render(w http.ResponseWriter, status int, page string, data any) {
	var buf bytes.Buffer
	if err := renderPage(&buf, page, data); err != nil {
		log.Printf("admin: render %s: %v", page, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (h *Handlers) backendContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.cfg.BackendTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.cfg.BackendTimeout)
}

type loginData struct {
	base
	Email string
	Error string
}

func (h *Handlers) loginForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := (auth.CookieSource{}).Token(r); ok {
		http.Redirect(w, r, listingPath, http.StatusSeeOther)
		return
	}
	h.render(w, http.StatusOK, "login", loginData{base: h.base(r, "Iniciar sesión")})
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.PostForm.Get("email"))
	password := r.PostForm.Get("password")

	ctx, cancel := h.backendContext(r.Context())
	token, err := h.cfg.Auth.Login(ctx, email, password)
	cancel()
	if err != nil {
		msg, status := i18n.MsgLoginFailed, http.StatusUnauthorized
		if !rejectedCredentials(err) {
			log.Printf("admin: login: %v", err)
			msg, status = i18n.MsgLoginUnreachable, http.StatusBadGateway
		}
		h.render(w, status, "login", loginData{
			base:  h.base(r, "Iniciar sesión"),
			Email: email,
			Error: msg,
		})
		return
	}

	auth.SetTokenCookie(w, token)
	http.Redirect(w, r, listingPath, http.StatusSeeOther)
}

func rejectedCredentials(err error) bool {
	return errors.Is(err, provider.ErrUnauthorized) ||
		errors.Is(err, provider.ErrNotFound) ||
		errors.Is(err, provider.ErrValidation)
}

func (h *Handlers) logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		h.cfg.Sessions.Drop(c.Value)
	}
	auth.ClearTokenCookie(w)
	http.Redirect(w, r, loginPath, http.StatusSeeOther)
}

type restaurantsData struct {
	base
	Restaurants []provider.Restaurant
	Error       string
}

func (h *Handlers) restaurantList(w http.ResponseWriter, r *http.Request) {
	// Leaving the detail view releases its page.
	h.cfg.Sessions.Drop(h.cfg.Sessions.ID(w, r))

	ctx, cancel := h.backendContext(r.Context())
	list, err := h.cfg.Restaurants.ListRestaurants(ctx)
	cancel()

	data := restaurantsData{base: h.base(r, "Restaurantes"), Restaurants: list}
	if err != nil {
		log.Printf("admin: list restaurants: %v", err)
		data.Error = i18n.MsgRestaurantFail
	}
	h.render(w, http.StatusOK, "restaurants", data)
}

type detailData struct {
	base
	View        detail.View
	Phase       string
	Ready       bool
	BasePath    string
	MsgNotFound string
	MsgLoading  string
	MsgEmpty    string
}

func detailPath(id string) string {
	return "/admin/restaurantes/" + id
}

func (h *Handlers) pageConfig() detail.Config {
	return detail.Config{
		Providers:   h.cfg.Providers,
		Forms:       h.cfg.Providers,
		Restaurants: h.cfg.Restaurants,
		Metrics:     h.cfg.Metrics,
		Timeout:     h.cfg.BackendTimeout,
	}
}

func (h *Handlers) restaurantDetail(w http.ResponseWriter, r *http.Request) {
	sid := h.cfg.Sessions.ID(w, r)
	id := chi.URLParam(r, "id")

	// A page survives only the redirect that follows one of its own events.
	// Any other visit mounts a fresh one.
	page := h.cfg.Sessions.Page(sid)
	if page == nil || page.RestaurantID() != id || !page.TakeRedirect() {
		page = detail.New(id, h.pageConfig())
		h.cfg.Sessions.Set(sid, page)
		page.Mount(r.Context())
	}

	settled := page.Wait(r.Context(), h.cfg.RenderWait)
	if !settled {
		page.MarkRedirect()
	}

	v := page.View()
	if v.Unauthorized {
		h.signOut(w, r, sid)
		return
	}
	data := detailData{
		base:        h.base(r, ""),
		View:        v,
		Phase:       v.Phase.String(),
		Ready:       v.Restaurant.ID != "",
		BasePath:    detailPath(id),
		MsgNotFound: i18n.MsgNotFound,
		MsgLoading:  i18n.MsgLoading,
		MsgEmpty:    i18n.MsgEmpty,
	}
	data.Refresh = !settled
	data.Title = v.Restaurant.Name
	if data.Title == "" {
		data.Title = data.T(i18n.MsgNotFound)
	}

	status := http.StatusOK
	if v.Phase == detail.PhaseNotFound {
		status = http.StatusNotFound
	}
	h.render(w, status, "detail", data)
}

// currentPage returns the session's page when it belongs to the restaurant
// in the URL.
func (h *Handlers) currentPage(w http.ResponseWriter, r *http.Request) *detail.Page {
	page := h.cfg.Sessions.Page(h.cfg.Sessions.ID(w, r))
	if page == nil || page.RestaurantID() != chi.URLParam(r, "id") {
		return nil
	}
	return page
}

// signOut drops the session's page and token and sends the browser to login.
func (h *Handlers) signOut(w http.ResponseWriter, r *http.Request, sid string) {
	h.cfg.Sessions.Drop(sid)
	auth.ClearTokenCookie(w)
	http.Redirect(w, r, loginPath, http.StatusSeeOther)
}

// afterEvent finishes an event with a redirect back to the detail view.
func (h *Handlers) afterEvent(w http.ResponseWriter, r *http.Request, page *detail.Page, err error) {
	if errors.Is(err, provider.ErrUnauthorized) {
		h.signOut(w, r, h.cfg.Sessions.ID(w, r))
		return
	}
	if page != nil && !errors.Is(err, detail.ErrNotReady) {
		page.MarkRedirect()
	}
	http.Redirect(w, r, detailPath(chi.URLParam(r, "id")), http.StatusSeeOther)
}

func providerID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "pid"), 10, 64)
	return id, err == nil && id > 0
}

func (h *Handlers) deleteProvider(w http.ResponseWriter, r *http.Request) {
	page := h.currentPage(w, r)
	pid, ok := providerID(r)
	if page == nil || !ok {
		h.afterEvent(w, r, nil, nil)
		return
	}
	confirmed := r.PostFormValue("confirm") == confirmYes
	h.afterEvent(w, r, page, page.Delete(r.Context(), pid, confirmed))
}

func (h *Handlers) editProvider(w http.ResponseWriter, r *http.Request) {
	page := h.currentPage(w, r)
	pid, ok := providerID(r)
	if page == nil || !ok {
		h.afterEvent(w, r, nil, nil)
		return
	}
	h.afterEvent(w, r, page, page.Edit(r.Context(), pid))
}

func (h *Handlers) newProvider(w http.ResponseWriter, r *http.Request) {
	page := h.currentPage(w, r)
	if page == nil {
		h.afterEvent(w, r, nil, nil)
		return
	}
	h.afterEvent(w, r, page, page.Create())
}

func (h *Handlers) submitModal(w http.ResponseWriter, r *http.Request) {
	page := h.currentPage(w, r)
	if page == nil {
		h.afterEvent(w, r, nil, nil)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	err := page.Submit(r.Context(), r.PostForm)
	if err != nil && !errors.Is(err, detail.ErrNoModal) {
		log.Printf("admin: submit provider form: %v", err)
	}
	h.afterEvent(w, r, page, err)
}

func (h *Handlers) closeModal(w http.ResponseWriter, r *http.Request) {
	page := h.currentPage(w, r)
	if page != nil {
		page.Cancel()
	}
	h.afterEvent(w, r, page, nil)
}

type logsData struct {
	base
	Logs             []*store.RequestLog
	Stats            *store.RequestLogStats
	TopEndpoints     []store.EndpointCount
	Resources        []string
	SelectedResource string
	Method           string
	PathPrefix       string
	Summary          *resourceSummary
}

// resourceSummary is the last hour of traffic for the selected resource.
type resourceSummary struct {
	Resource  string
	Requests  int
	ErrorRate float64
}

func (h *Handlers) logsList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := &store.RequestLogQuery{
		Limit:      defaultLogCap,
		Resource:   q.Get("resource"),
		Method:     strings.ToUpper(q.Get("method")),
		PathPrefix: q.Get("path"),
	}
	if sc, err := strconv.Atoi(q.Get("status")); err == nil {
		query.StatusCode = sc
	}

	var (
		logs []*store.RequestLog
		err  error
	)
	if query.Resource != "" && query.Method == "" && query.PathPrefix == "" && query.StatusCode == 0 {
		logs, err = h.cfg.Logs.GetRecentRequests(query.Resource, defaultLogCap)
	} else {
		logs, err = h.cfg.Logs.GetRequestLogs(query)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	for _, entry := range logs {
		entry.RequestBody = prettyJSON(entry.RequestBody)
		entry.ResponseBody = prettyJSON(entry.ResponseBody)
	}

	stats, err := h.cfg.Logs.GetRequestLogStats()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	top, err := h.cfg.Logs.GetTopEndpoints(10)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var summary *resourceSummary
	if query.Resource != "" {
		since := time.Now().UTC().Add(-time.Hour)
		summary = &resourceSummary{Resource: query.Resource}
		if summary.Requests, err = h.cfg.Logs.GetResourceRequestCount(query.Resource, since); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if summary.ErrorRate, err = h.cfg.Logs.GetResourceErrorRate(query.Resource, since); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	h.render(w, http.StatusOK, "logs-list", logsData{
		base:             h.base(r, "Registros de la API"),
		Logs:             logs,
		Stats:            stats,
		TopEndpoints:     top,
		Resources:        []string{"auth", "proveedores", "restaurantes"},
		SelectedResource: query.Resource,
		Method:           query.Method,
		PathPrefix:       query.PathPrefix,
		Summary:          summary,
	})
}

// prettyJSON formats JSON with indentation, or returns the original string
// if it is not valid JSON.
func prettyJSON(s string) string {
	if s == "" {
		return s
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(s), "", "  "); err != nil {
		return s
	}
	return buf.String()
}
