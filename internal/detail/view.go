// ABOUTME: Render snapshot of a detail page and the branch it renders.
// ABOUTME: Phase picks between not-found, loading, failed, empty and table views.

package detail

import (
	"github.com/2389/provadmin/internal/form"
	"github.com/2389/provadmin/internal/provider"
)

// Phase is the rendering branch of the page.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseNotFound
	PhaseFailed
	PhaseEmpty
	PhaseRows
)

func (ph Phase) String() string {
	switch ph {
	case PhaseLoading:
		return "loading"
	case PhaseNotFound:
		return "not-found"
	case PhaseFailed:
		return "failed"
	case PhaseEmpty:
		return "empty"
	case PhaseRows:
		return "rows"
	}
	return "unknown"
}

// View is an immutable copy of the page state.
type View struct {
	RestaurantID string
	Restaurant   provider.Restaurant
	Phase        Phase
	Status       Status
	Providers    []provider.Provider
	ModalOpen    bool
	Editing      *provider.Provider
	Form         *form.View
	// Unauthorized is set when the last load was rejected for the session token.
	Unauthorized bool
}

// View returns a snapshot for rendering.
func (p *Page) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()

	v := View{
		RestaurantID: p.restaurantID,
		Restaurant:   p.restaurant,
		Phase:        p.phaseLocked(),
		Status:       p.status,
		Providers:    append([]provider.Provider(nil), p.providers...),
		ModalOpen:    p.modalOpen,
		Unauthorized: p.unauthorized,
	}
	if p.editing != nil {
		e := *p.editing
		v.Editing = &e
	}
	if p.form != nil {
		fv := p.form.Snapshot()
		v.Form = &fv
	}
	return v
}

func (p *Page) phaseLocked() Phase {
	switch {
	case p.notFound:
		return PhaseNotFound
	case p.loadErr != "":
		return PhaseFailed
	case !p.ready, p.status.IsLoading():
		return PhaseLoading
	case len(p.providers) == 0:
		return PhaseEmpty
	default:
		return PhaseRows
	}
}
