// ABOUTME: Tests for the detail page state machine.
// ABOUTME: Drives mount/delete/edit/submit/close against an in-memory backend fake.

package detail

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/2389/provadmin/internal/form"
	"github.com/2389/provadmin/internal/i18n"
	"github.com/2389/provadmin/internal/provider"
	"github.com/2389/provadmin/internal/restaurants"
)

type listFunc func() ([]provider.Provider, error)

// fakeBackend counts calls and lets tests script list responses.
type fakeBackend struct {
	mu        sync.Mutex
	providers []provider.Provider
	script    []listFunc
	lists     int
	deletes   []int64
	gets      []int64
	updates   []provider.Fields
	creates   []provider.Fields
	deleteErr error
	getErr    error
	updateErr error
}

func (b *fakeBackend) ListProviders(ctx context.Context, restaurantID string) ([]provider.Provider, error) {
	b.mu.Lock()
	idx := b.lists
	b.lists++
	var fn listFunc
	if idx < len(b.script) {
		fn = b.script[idx]
	}
	list := append([]provider.Provider(nil), b.providers...)
	b.mu.Unlock()

	if fn != nil {
		return fn()
	}
	return list, nil
}

func (b *fakeBackend) GetProvider(ctx context.Context, id int64) (provider.Provider, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gets = append(b.gets, id)
	if b.getErr != nil {
		return provider.Provider{}, b.getErr
	}
	for _, p := range b.providers {
		if p.ID == id {
			return p, nil
		}
	}
	return provider.Provider{}, provider.ErrNotFound
}

func (b *fakeBackend) DeleteProvider(ctx context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deletes = append(b.deletes, id)
	if b.deleteErr != nil {
		return b.deleteErr
	}
	kept := b.providers[:0]
	for _, p := range b.providers {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	b.providers = kept
	return nil
}

func (b *fakeBackend) UpdateProvider(ctx context.Context, id int64, f provider.Fields) (provider.Provider, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updates = append(b.updates, f)
	if b.updateErr != nil {
		return provider.Provider{}, b.updateErr
	}
	for i, p := range b.providers {
		if p.ID == id {
			b.providers[i].Name = f.Name
			b.providers[i].Category = f.Category
			b.providers[i].Phone = f.Phone
			b.providers[i].Email = f.Email
			return b.providers[i], nil
		}
	}
	return provider.Provider{}, provider.ErrNotFound
}

func (b *fakeBackend) CreateProvider(ctx context.Context, restaurantID string, f provider.Fields) (provider.Provider, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.creates = append(b.creates, f)
	p := provider.Provider{ID: int64(100 + len(b.creates)), Name: f.Name, Category: f.Category, Phone: f.Phone, Email: f.Email}
	b.providers = append(b.providers, p)
	return p, nil
}

func (b *fakeBackend) listCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lists
}

func sampleProviders() []provider.Provider {
	return []provider.Provider{
		{ID: 1, Name: "Frutas Ana", Category: "Frutas", Phone: "600111222", Email: "ana@example.com"},
		{ID: 2, Name: "Pescados Luis", Category: "Pescado", Phone: "600333444", Email: "luis@example.com"},
		{ID: 3, Name: "Carnes Marta", Category: "Carne", Phone: "600555666", Email: "marta@example.com"},
	}
}

func newPage(t *testing.T, id string, b *fakeBackend) *Page {
	t.Helper()
	return New(id, Config{
		Providers:   b,
		Forms:       b,
		Restaurants: restaurants.NewStatic(),
		Timeout:     time.Second,
	})
}

func mount(t *testing.T, p *Page) View {
	t.Helper()
	p.Mount(context.Background())
	if !p.Wait(context.Background(), 2*time.Second) {
		t.Fatal("page did not settle")
	}
	return p.View()
}

func settle(t *testing.T, p *Page) View {
	t.Helper()
	if !p.Wait(context.Background(), 2*time.Second) {
		t.Fatal("page did not settle")
	}
	return p.View()
}

func TestUnknownRestaurantRendersNotFoundWithoutFetch(t *testing.T) {
	for _, id := range []string{"0", "5", "abc", ""} {
		t.Run("id="+id, func(t *testing.T) {
			b := &fakeBackend{providers: sampleProviders()}
			v := mount(t, newPage(t, id, b))

			if v.Phase != PhaseNotFound {
				t.Errorf("Phase = %v, want not-found", v.Phase)
			}
			if n := b.listCount(); n != 0 {
				t.Errorf("ListProviders called %d times, want 0", n)
			}
		})
	}
}

func TestEmptyList(t *testing.T) {
	b := &fakeBackend{}
	v := mount(t, newPage(t, "1", b))

	if v.Phase != PhaseEmpty {
		t.Errorf("Phase = %v, want empty", v.Phase)
	}
	if v.Restaurant.Name != "RESTAURANTE # 1" {
		t.Errorf("Restaurant = %+v", v.Restaurant)
	}
	if v.Status.Kind != KindIdle {
		t.Errorf("Status = %+v, want idle", v.Status)
	}
}

func TestRowsMatchFetch(t *testing.T) {
	b := &fakeBackend{providers: sampleProviders()}
	v := mount(t, newPage(t, "1", b))

	if v.Phase != PhaseRows {
		t.Fatalf("Phase = %v, want rows", v.Phase)
	}
	if len(v.Providers) != 3 {
		t.Errorf("rows = %d, want 3", len(v.Providers))
	}
	if v.Providers[1].Email != "luis@example.com" {
		t.Errorf("row 2 = %+v", v.Providers[1])
	}
}

func TestLoadingUntilFetchLands(t *testing.T) {
	gate := make(chan struct{})
	b := &fakeBackend{script: []listFunc{func() ([]provider.Provider, error) {
		<-gate
		return sampleProviders(), nil
	}}}
	p := newPage(t, "1", b)
	p.Mount(context.Background())

	if p.Wait(context.Background(), 20*time.Millisecond) {
		t.Fatal("Wait() settled while fetch is blocked")
	}
	if v := p.View(); v.Phase != PhaseLoading || !v.Status.IsLoading() {
		t.Errorf("View = phase %v status %+v, want loading", v.Phase, v.Status)
	}

	close(gate)
	if v := settle(t, p); v.Phase != PhaseRows {
		t.Errorf("Phase = %v, want rows", v.Phase)
	}
}

func TestDeleteDeclinedDoesNothing(t *testing.T) {
	b := &fakeBackend{providers: sampleProviders()}
	p := newPage(t, "1", b)
	before := mount(t, p)

	if err := p.Delete(context.Background(), 1, false); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	after := p.View()

	if len(b.deletes) != 0 {
		t.Errorf("DeleteProvider called %v", b.deletes)
	}
	if b.listCount() != 1 {
		t.Errorf("lists = %d, want 1", b.listCount())
	}
	if after.Status != before.Status || len(after.Providers) != len(before.Providers) {
		t.Errorf("state changed: before %+v after %+v", before.Status, after.Status)
	}
}

func TestDeleteFailureKeepsListAndSetsError(t *testing.T) {
	b := &fakeBackend{providers: sampleProviders(), deleteErr: errors.New("boom")}
	p := newPage(t, "1", b)
	mount(t, p)

	if err := p.Delete(context.Background(), 2, true); err == nil {
		t.Fatal("Delete() error = nil, want failure")
	}
	v := settle(t, p)

	if v.Phase != PhaseRows || len(v.Providers) != 3 {
		t.Errorf("list changed: phase %v rows %d", v.Phase, len(v.Providers))
	}
	if !v.Status.IsError() || v.Status.Message != i18n.MsgDeleteFailed {
		t.Errorf("Status = %+v, want delete error", v.Status)
	}
	if v.Status.IsSuccess() {
		t.Error("success shown together with error")
	}
	if b.listCount() != 1 {
		t.Errorf("lists = %d, want no refetch", b.listCount())
	}
}

func TestDeleteSuccessRefetches(t *testing.T) {
	b := &fakeBackend{providers: sampleProviders()}
	p := newPage(t, "1", b)
	mount(t, p)

	if err := p.Delete(context.Background(), 2, true); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	v := settle(t, p)

	if !v.Status.IsSuccess() || v.Status.Message != i18n.MsgDeleted {
		t.Errorf("Status = %+v, want deleted success", v.Status)
	}
	if len(v.Providers) != 2 {
		t.Errorf("rows = %d, want 2", len(v.Providers))
	}
	if b.listCount() != 2 {
		t.Errorf("lists = %d, want 2", b.listCount())
	}
}

func TestEditSubmitClosesModalAndRefetchesOnce(t *testing.T) {
	b := &fakeBackend{providers: sampleProviders()}
	p := newPage(t, "1", b)
	mount(t, p)

	if err := p.Edit(context.Background(), 3); err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	v := p.View()
	if !v.ModalOpen || v.Editing == nil || v.Editing.ID != 3 {
		t.Fatalf("modal = %v editing = %+v", v.ModalOpen, v.Editing)
	}
	if v.Form == nil || v.Form.Values.Name != "Carnes Marta" || v.Form.Values.Phone != "600555666" {
		t.Fatalf("form = %+v", v.Form)
	}
	if len(b.gets) != 1 {
		t.Errorf("GetProvider calls = %d, want 1", len(b.gets))
	}

	listsBefore := b.listCount()
	err := p.Submit(context.Background(), url.Values{
		form.FieldID:       {"3"},
		form.FieldName:     {"Carnes Marta S.L."},
		form.FieldCategory: {"Carne"},
		form.FieldPhone:    {"600555666"},
		form.FieldEmail:    {"marta@example.com"},
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	v = settle(t, p)

	if v.ModalOpen || v.Editing != nil || v.Form != nil {
		t.Errorf("modal still open: %v %+v", v.ModalOpen, v.Editing)
	}
	if !v.Status.IsSuccess() || v.Status.Message != i18n.MsgUpdated {
		t.Errorf("Status = %+v, want updated success", v.Status)
	}
	if got := b.listCount() - listsBefore; got != 1 {
		t.Errorf("refetches = %d, want exactly 1", got)
	}
	if v.Providers[2].Name != "Carnes Marta S.L." {
		t.Errorf("row not refreshed: %+v", v.Providers[2])
	}
}

func TestEditFetchFailureKeepsModalClosed(t *testing.T) {
	b := &fakeBackend{providers: sampleProviders(), getErr: errors.New("timeout")}
	p := newPage(t, "1", b)
	mount(t, p)

	if err := p.Edit(context.Background(), 1); err == nil {
		t.Fatal("Edit() error = nil")
	}
	v := p.View()
	if v.ModalOpen || v.Editing != nil {
		t.Error("modal opened after failed fetch")
	}
	if v.Status.Message != i18n.MsgEditLoadFailed {
		t.Errorf("Status = %+v", v.Status)
	}
}

func TestSubmitInvalidKeepsModalOpen(t *testing.T) {
	b := &fakeBackend{providers: sampleProviders()}
	p := newPage(t, "1", b)
	mount(t, p)
	p.Edit(context.Background(), 1)

	err := p.Submit(context.Background(), url.Values{form.FieldID: {"1"}, form.FieldName: {""}})
	if !errors.Is(err, form.ErrInvalid) {
		t.Fatalf("Submit() error = %v, want ErrInvalid", err)
	}
	v := p.View()
	if !v.ModalOpen || v.Form.FieldErrors[form.FieldName] == "" {
		t.Errorf("modal = %v form = %+v", v.ModalOpen, v.Form)
	}
	if len(b.updates) != 0 {
		t.Error("backend update called for invalid form")
	}
}

func TestCloseClearsMessages(t *testing.T) {
	b := &fakeBackend{providers: sampleProviders(), deleteErr: errors.New("boom")}
	p := newPage(t, "1", b)
	mount(t, p)
	p.Delete(context.Background(), 1, true)
	p.Edit(context.Background(), 1)

	p.Cancel()
	v := p.View()
	if v.ModalOpen || v.Editing != nil {
		t.Error("modal still open after cancel")
	}
	if v.Status.Kind != KindIdle {
		t.Errorf("Status = %+v, want idle", v.Status)
	}
}

func TestCreateThenSubmit(t *testing.T) {
	b := &fakeBackend{}
	p := newPage(t, "2", b)
	mount(t, p)

	if err := p.Create(); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	v := p.View()
	if !v.ModalOpen || v.Editing != nil || v.Form == nil || v.Form.Editing {
		t.Fatalf("create modal = %+v", v)
	}

	if err := p.Submit(context.Background(), url.Values{form.FieldID: {"0"}, form.FieldName: {"Bodega Sur"}}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	v = settle(t, p)
	if v.Status.Message != i18n.MsgCreated || len(v.Providers) != 1 {
		t.Errorf("Status = %+v rows = %d", v.Status, len(v.Providers))
	}
}

func TestSubmitWithoutModal(t *testing.T) {
	p := newPage(t, "1", &fakeBackend{})
	mount(t, p)
	if err := p.Submit(context.Background(), url.Values{}); !errors.Is(err, ErrNoModal) {
		t.Errorf("Submit() error = %v, want ErrNoModal", err)
	}
}

func TestSubmitForAnotherProviderIsRejected(t *testing.T) {
	b := &fakeBackend{providers: sampleProviders()}
	p := newPage(t, "1", b)
	mount(t, p)
	if err := p.Edit(context.Background(), 2); err != nil {
		t.Fatalf("Edit() error = %v", err)
	}

	tests := []struct {
		name string
		id   []string
	}{
		{"other provider", []string{"1"}},
		{"create form", []string{"0"}},
		{"missing id", nil},
		{"garbage id", []string{"dos"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := url.Values{form.FieldName: {"Renombrado"}}
			if tt.id != nil {
				values[form.FieldID] = tt.id
			}
			if err := p.Submit(context.Background(), values); !errors.Is(err, ErrStaleForm) {
				t.Fatalf("Submit() error = %v, want ErrStaleForm", err)
			}
		})
	}

	if len(b.updates) != 0 || len(b.creates) != 0 {
		t.Fatalf("backend saved a mismatched form: updates=%v creates=%v", b.updates, b.creates)
	}
	v := p.View()
	if !v.ModalOpen || v.Editing == nil || v.Editing.ID != 2 {
		t.Errorf("open modal changed: %v %+v", v.ModalOpen, v.Editing)
	}
	if v.Form.Values.Name != "Pescados Luis" {
		t.Errorf("open form values changed: %+v", v.Form.Values)
	}
	if v.Status.Message != i18n.MsgStaleForm {
		t.Errorf("Status = %+v, want stale form error", v.Status)
	}
}

// gatedForms holds UpdateProvider until release is closed.
type gatedForms struct {
	*fakeBackend
	entered chan struct{}
	release chan struct{}
}

func (g *gatedForms) UpdateProvider(ctx context.Context, id int64, f provider.Fields) (provider.Provider, error) {
	close(g.entered)
	<-g.release
	return g.fakeBackend.UpdateProvider(ctx, id, f)
}

func TestSaveLandingAfterModalReplacedLeavesNewModal(t *testing.T) {
	b := &fakeBackend{providers: sampleProviders()}
	g := &gatedForms{fakeBackend: b, entered: make(chan struct{}), release: make(chan struct{})}
	p := New("1", Config{Providers: b, Forms: g, Restaurants: restaurants.NewStatic(), Timeout: time.Second})
	mount(t, p)
	p.Edit(context.Background(), 1)

	errc := make(chan error, 1)
	go func() {
		errc <- p.Submit(context.Background(), url.Values{form.FieldID: {"1"}, form.FieldName: {"Frutas Ana S.L."}})
	}()
	<-g.entered

	if err := p.Edit(context.Background(), 2); err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	close(g.release)
	if err := <-errc; err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	v := p.View()
	if !v.ModalOpen || v.Editing == nil || v.Editing.ID != 2 {
		t.Fatalf("modal for provider 2 was closed by the earlier save: %v %+v", v.ModalOpen, v.Editing)
	}
	if v.Status.IsSuccess() {
		t.Errorf("Status = %+v, earlier save must not report on the new modal", v.Status)
	}
}

func TestCancelAfterFailedLoadKeepsError(t *testing.T) {
	b := &fakeBackend{}
	b.script = []listFunc{
		func() ([]provider.Provider, error) { return nil, errors.New("503") },
	}
	p := newPage(t, "1", b)
	mount(t, p)

	if err := p.Create(); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	p.Cancel()

	v := p.View()
	if v.ModalOpen {
		t.Error("modal still open after cancel")
	}
	if v.Phase != PhaseFailed {
		t.Errorf("Phase = %v, want failed", v.Phase)
	}
	if !v.Status.IsError() || v.Status.Message != i18n.MsgLoadFailed {
		t.Errorf("Status = %+v, want load error kept", v.Status)
	}
}

func TestUnauthorizedLoadIsReported(t *testing.T) {
	b := &fakeBackend{}
	b.script = []listFunc{
		func() ([]provider.Provider, error) { return nil, provider.ErrUnauthorized },
		nil,
	}
	p := newPage(t, "1", b)

	v := mount(t, p)
	if !v.Unauthorized {
		t.Fatal("expected unauthorized load to be reported")
	}

	p.Create()
	if err := p.Submit(context.Background(), url.Values{form.FieldID: {"0"}, form.FieldName: {"Bodega Sur"}}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if v := settle(t, p); v.Unauthorized {
		t.Error("a successful reload must clear the unauthorized mark")
	}
}

func TestEventsOnNotFoundPage(t *testing.T) {
	b := &fakeBackend{providers: sampleProviders()}
	p := newPage(t, "77", b)
	mount(t, p)

	if err := p.Delete(context.Background(), 1, true); !errors.Is(err, ErrNotReady) {
		t.Errorf("Delete() error = %v, want ErrNotReady", err)
	}
	if err := p.Edit(context.Background(), 1); !errors.Is(err, ErrNotReady) {
		t.Errorf("Edit() error = %v, want ErrNotReady", err)
	}
	if err := p.Create(); !errors.Is(err, ErrNotReady) {
		t.Errorf("Create() error = %v, want ErrNotReady", err)
	}
	if len(b.deletes) != 0 || len(b.gets) != 0 || b.listCount() != 0 {
		t.Error("backend touched for unknown restaurant")
	}
}

func TestFetchFailureClearsRows(t *testing.T) {
	b := &fakeBackend{providers: sampleProviders()}
	b.script = []listFunc{
		nil,
		func() ([]provider.Provider, error) { return nil, errors.New("503") },
	}
	p := newPage(t, "1", b)
	mount(t, p)

	if err := p.Delete(context.Background(), 1, true); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	v := settle(t, p)

	if v.Phase != PhaseFailed {
		t.Errorf("Phase = %v, want failed", v.Phase)
	}
	if len(v.Providers) != 0 {
		t.Errorf("stale rows kept: %d", len(v.Providers))
	}
	if !v.Status.IsError() || v.Status.Message != i18n.MsgLoadFailed {
		t.Errorf("Status = %+v, want load error", v.Status)
	}
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	gate := make(chan struct{})
	returned := make(chan struct{})
	stale := []provider.Provider{{ID: 50, Name: "Stale"}}
	fresh := []provider.Provider{{ID: 60, Name: "Fresh"}}

	b := &fakeBackend{providers: sampleProviders()}
	b.script = []listFunc{
		func() ([]provider.Provider, error) {
			defer close(returned)
			<-gate
			return stale, nil
		},
		func() ([]provider.Provider, error) { return fresh, nil },
	}
	p := newPage(t, "1", b)
	p.Mount(context.Background())
	waitForLists(t, b, 1)

	// A second fetch overtakes the blocked first one.
	if err := p.Delete(context.Background(), 1, true); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if !p.Wait(context.Background(), time.Second) {
		t.Fatal("latest fetch did not settle")
	}
	if v := p.View(); len(v.Providers) != 1 || v.Providers[0].Name != "Fresh" {
		t.Fatalf("rows = %+v, want fresh", v.Providers)
	}

	close(gate)
	<-returned
	time.Sleep(20 * time.Millisecond)

	v := p.View()
	if len(v.Providers) != 1 || v.Providers[0].Name != "Fresh" {
		t.Errorf("stale response applied: %+v", v.Providers)
	}
	if v.Status.Message != i18n.MsgDeleted {
		t.Errorf("Status = %+v, want delete success kept", v.Status)
	}
}

func waitForLists(t *testing.T, b *fakeBackend, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for b.listCount() < n {
		if time.Now().After(deadline) {
			t.Fatalf("ListProviders calls = %d, want %d", b.listCount(), n)
		}
		time.Sleep(time.Millisecond)
	}
}

type failingDirectory struct{}

func (failingDirectory) GetRestaurant(ctx context.Context, id string) (provider.Restaurant, error) {
	return provider.Restaurant{}, errors.New("directory down")
}

func TestRestaurantLookupFailure(t *testing.T) {
	b := &fakeBackend{}
	p := New("1", Config{Providers: b, Forms: b, Restaurants: failingDirectory{}})
	v := mount(t, p)

	if v.Phase != PhaseFailed || v.Status.Message != i18n.MsgRestaurantFail {
		t.Errorf("View = phase %v status %+v", v.Phase, v.Status)
	}
	if b.listCount() != 0 {
		t.Error("providers fetched without a restaurant")
	}
}

func TestMountOnlyOnce(t *testing.T) {
	b := &fakeBackend{}
	p := newPage(t, "1", b)
	mount(t, p)
	mount(t, p)
	if b.listCount() != 1 {
		t.Errorf("lists = %d, want 1", b.listCount())
	}
}

func TestRedirectMark(t *testing.T) {
	p := newPage(t, "1", &fakeBackend{})
	if p.TakeRedirect() {
		t.Error("fresh page has redirect mark")
	}
	p.MarkRedirect()
	if !p.TakeRedirect() {
		t.Error("mark not reported")
	}
	if p.TakeRedirect() {
		t.Error("mark not cleared")
	}
}
