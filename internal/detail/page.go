// ABOUTME: Restaurant detail page: resolves the restaurant, loads its providers, and
// ABOUTME: handles delete/edit/create/close events with last-issued-fetch-wins semantics.

package detail

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/2389/provadmin/internal/form"
	"github.com/2389/provadmin/internal/i18n"
	"github.com/2389/provadmin/internal/metrics"
	"github.com/2389/provadmin/internal/provider"
)

const defaultTimeout = 10 * time.Second

var (
	// ErrNotReady is returned for events on a page whose restaurant is
	// unresolved or unknown.
	ErrNotReady = errors.New("page is not ready")

	// ErrNoModal is returned when a form event arrives with the modal closed.
	ErrNoModal = errors.New("modal is not open")

	// ErrStaleForm is returned when a submitted form was rendered for a
	// different provider than the one the open modal edits.
	ErrStaleForm = errors.New("form does not match the open modal")
)

// Providers is the part of the provider API the page calls itself. Updates
// and creates go through the form.
type Providers interface {
	ListProviders(ctx context.Context, restaurantID string) ([]provider.Provider, error)
	GetProvider(ctx context.Context, id int64) (provider.Provider, error)
	DeleteProvider(ctx context.Context, id int64) error
}

// Restaurants resolves the page's restaurant.
type Restaurants interface {
	GetRestaurant(ctx context.Context, id string) (provider.Restaurant, error)
}

// Config wires a page to its collaborators.
type Config struct {
	Providers   Providers
	Forms       form.Submitter
	Restaurants Restaurants
	Metrics     *metrics.Metrics

	// Timeout bounds every backend call made by the page.
	Timeout time.Duration
}

// Page holds the transient state of one restaurant detail view. Every event
// method serializes on the page lock; backend calls run outside it and the
// results are applied under it.
type Page struct {
	cfg          Config
	restaurantID string

	mu       sync.Mutex
	mounted  bool
	ready    bool
	notFound bool
	// loadErr is the message of the last failed load, empty otherwise.
	loadErr      string
	unauthorized bool
	restaurant   provider.Restaurant
	providers    []provider.Provider

	status Status
	// pending replaces status once the in-flight fetch succeeds.
	pending Status

	modalOpen bool
	editing   *provider.Provider
	form      *form.Form

	seq      uint64
	done     chan struct{}
	eventCtx context.Context
	redirect bool
}

// New creates an unmounted page for restaurantID.
func New(restaurantID string, cfg Config) *Page {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	done := make(chan struct{})
	close(done)
	return &Page{
		cfg:          cfg,
		restaurantID: restaurantID,
		status:       Idle(),
		done:         done,
	}
}

// RestaurantID returns the identity the page was created for.
func (p *Page) RestaurantID() string {
	return p.restaurantID
}

// Mount resolves the restaurant and, when it exists, starts the first
// provider fetch. Only the first call has an effect.
func (p *Page) Mount(ctx context.Context) {
	p.mu.Lock()
	if p.mounted {
		p.mu.Unlock()
		return
	}
	p.mounted = true
	resolving := make(chan struct{})
	p.done = resolving
	p.mu.Unlock()
	defer close(resolving)

	rctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	r, err := p.cfg.Restaurants.GetRestaurant(rctx, p.restaurantID)
	cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg.Metrics.PageEvent("mount")

	switch {
	case errors.Is(err, provider.ErrRestaurantNotFound):
		p.notFound = true
		return
	case err != nil:
		log.Printf("detail: resolve restaurant %s: %v", p.restaurantID, err)
		p.unauthorized = errors.Is(err, provider.ErrUnauthorized)
		p.loadErr = i18n.MsgRestaurantFail
		p.status = Failed(p.loadErr)
		return
	}

	p.restaurant = r
	p.ready = true
	p.refreshLocked(ctx, Idle())
}

// refreshLocked starts a provider fetch tagged with a new sequence number.
// after becomes the status when the fetch succeeds.
func (p *Page) refreshLocked(ctx context.Context, after Status) {
	if ctx == nil {
		ctx = context.Background()
	}
	p.seq++
	seq := p.seq
	done := make(chan struct{})
	p.done = done
	p.status = Loading()
	p.pending = after
	p.loadErr = ""
	p.unauthorized = false
	p.cfg.Metrics.PageEvent("load")

	go p.fetch(context.WithoutCancel(ctx), seq, done)
}

func (p *Page) fetch(ctx context.Context, seq uint64, done chan struct{}) {
	defer close(done)

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	list, err := p.cfg.Providers.ListProviders(ctx, p.restaurantID)
	cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	if seq != p.seq {
		p.cfg.Metrics.StaleResponse()
		return
	}

	if err != nil {
		log.Printf("detail: list providers for restaurant %s: %v", p.restaurantID, err)
		p.providers = nil
		p.unauthorized = errors.Is(err, provider.ErrUnauthorized)
		p.loadErr = i18n.MsgLoadFailed
		p.pending = Status{}
		p.status = Failed(p.loadErr)
		return
	}

	p.providers = append([]provider.Provider(nil), list...)
	p.status = p.pending
	if p.status.Kind == KindLoading {
		p.status = Idle()
	}
	p.pending = Status{}
}

// setStatusLocked shows s now, or once the in-flight fetch lands.
func (p *Page) setStatusLocked(s Status) {
	if p.status.IsLoading() {
		p.pending = s
		return
	}
	p.status = s
}

// Delete removes a provider. Without confirmation nothing happens. On
// success the list is fetched again; on failure the list is left as is.
func (p *Page) Delete(ctx context.Context, id int64, confirmed bool) error {
	if !confirmed {
		return nil
	}

	p.mu.Lock()
	ready := p.ready
	p.mu.Unlock()
	if !ready {
		return ErrNotReady
	}

	dctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	err := p.cfg.Providers.DeleteProvider(dctx, id)
	cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg.Metrics.PageEvent("delete")

	if err != nil {
		log.Printf("detail: delete provider %d: %v", id, err)
		p.setStatusLocked(Failed(i18n.MsgDeleteFailed))
		return fmt.Errorf("delete provider %d: %w", id, err)
	}

	p.refreshLocked(ctx, Succeeded(i18n.MsgDeleted))
	return nil
}

// Edit fetches the provider fresh and opens the modal bound to it.
func (p *Page) Edit(ctx context.Context, id int64) error {
	p.mu.Lock()
	ready := p.ready
	p.mu.Unlock()
	if !ready {
		return ErrNotReady
	}

	gctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	target, err := p.cfg.Providers.GetProvider(gctx, id)
	cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg.Metrics.PageEvent("edit")

	if err != nil {
		log.Printf("detail: get provider %d for edit: %v", id, err)
		p.setStatusLocked(Failed(i18n.MsgEditLoadFailed))
		return fmt.Errorf("get provider %d: %w", id, err)
	}

	p.openLocked(&target)
	return nil
}

// Create opens the modal with an empty form.
func (p *Page) Create() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.ready {
		return ErrNotReady
	}
	p.cfg.Metrics.PageEvent("create")
	p.openLocked(nil)
	return nil
}

func (p *Page) openLocked(target *provider.Provider) {
	var f *form.Form
	f = form.New(p.restaurantID, target, func() { p.formSucceeded(f) }, p.Close)
	p.form = f
	p.editing = target
	p.modalOpen = true
}

// Submit binds values to the open form and saves it. The form calls back
// into the page on success. values must carry the id of the provider the
// form was rendered for, 0 in create mode.
func (p *Page) Submit(ctx context.Context, values url.Values) error {
	p.mu.Lock()
	f := p.form
	if !p.modalOpen || f == nil {
		p.mu.Unlock()
		return ErrNoModal
	}
	var openID int64
	if p.editing != nil {
		openID = p.editing.ID
	}
	if id, err := strconv.ParseInt(values.Get(form.FieldID), 10, 64); err != nil || id != openID {
		p.setStatusLocked(Failed(i18n.MsgStaleForm))
		p.mu.Unlock()
		return fmt.Errorf("submit for provider %q, modal has %d: %w", values.Get(form.FieldID), openID, ErrStaleForm)
	}
	p.eventCtx = context.WithoutCancel(ctx)
	p.mu.Unlock()

	f.Bind(values)
	sctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()
	return f.Submit(sctx, p.cfg.Forms)
}

// Cancel dismisses the modal through the form's cancel callback.
func (p *Page) Cancel() {
	p.mu.Lock()
	f := p.form
	p.mu.Unlock()

	if f != nil {
		f.Cancel()
		return
	}
	p.Close()
}

// Close hides the modal, drops the editing target, and clears messages. A
// failed load keeps its error since there is nothing else to show.
func (p *Page) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg.Metrics.PageEvent("close")
	p.closeLocked()
	if p.loadErr != "" {
		p.setStatusLocked(Failed(p.loadErr))
		return
	}
	p.setStatusLocked(Idle())
}

func (p *Page) closeLocked() {
	p.modalOpen = false
	p.editing = nil
	p.form = nil
}

func (p *Page) formSucceeded(f *form.Form) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.form != f {
		return
	}

	msg := i18n.MsgUpdated
	if !f.Editing() {
		msg = i18n.MsgCreated
	}
	p.cfg.Metrics.PageEvent("saved")
	p.closeLocked()
	p.refreshLocked(p.eventCtx, Succeeded(msg))
}

// Wait blocks until no fetch is in flight, max elapses, or ctx ends. It
// reports whether the page settled.
func (p *Page) Wait(ctx context.Context, max time.Duration) bool {
	timer := time.NewTimer(max)
	defer timer.Stop()

	for {
		p.mu.Lock()
		done := p.done
		p.mu.Unlock()

		select {
		case <-done:
			p.mu.Lock()
			settled := p.done == done
			p.mu.Unlock()
			if settled {
				return true
			}
		case <-timer.C:
			return false
		case <-ctx.Done():
			return false
		}
	}
}

// MarkRedirect records that the last response sent the browser back to this
// page, so the next view reuses it instead of mounting a new one.
func (p *Page) MarkRedirect() {
	p.mu.Lock()
	p.redirect = true
	p.mu.Unlock()
}

// TakeRedirect reports and clears the redirect mark.
func (p *Page) TakeRedirect() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	r := p.redirect
	p.redirect = false
	return r
}
