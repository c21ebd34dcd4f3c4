// ABOUTME: Provider modal form: binds submitted fields, validates them, and saves.
// ABOUTME: Invokes the success callback with no arguments once the backend accepts the data.

package form

import (
	"context"
	"errors"
	"net/mail"
	"net/url"
	"strings"
	"sync"

	"github.com/2389/provadmin/internal/i18n"
	"github.com/2389/provadmin/internal/provider"
)

// Field names as submitted by the HTML form. They match the wire contract.
const (
	FieldName     = "nombre"
	FieldCategory = "categoria"
	FieldPhone    = "telefono"
	FieldEmail    = "email"

	// FieldID carries the id of the provider being edited, 0 when creating.
	FieldID = "id"
)

// ErrInvalid is returned by Submit when local validation fails.
var ErrInvalid = errors.New("form has invalid fields")

// Submitter saves provider fields. The backend client implements it.
type Submitter interface {
	UpdateProvider(ctx context.Context, id int64, f provider.Fields) (provider.Provider, error)
	CreateProvider(ctx context.Context, restaurantID string, f provider.Fields) (provider.Provider, error)
}

// Form edits an existing provider, or creates one when existing is nil.
type Form struct {
	mu sync.Mutex

	restaurantID string
	existing     *provider.Provider
	values       provider.Fields
	fieldErrs    map[string]string
	formErr      string

	onSuccess func()
	onCancel  func()
}

// New creates a form. Either callback may be nil.
func New(restaurantID string, existing *provider.Provider, onSuccess, onCancel func()) *Form {
	f := &Form{
		restaurantID: restaurantID,
		onSuccess:    onSuccess,
		onCancel:     onCancel,
	}
	if existing != nil {
		p := *existing
		f.existing = &p
		f.values = provider.FieldsOf(p)
	}
	return f
}

// Editing reports whether the form edits an existing provider.
func (f *Form) Editing() bool {
	return f.existing != nil
}

// Bind replaces the form values with the submitted ones.
func (f *Form) Bind(values url.Values) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values = provider.Fields{
		Name:     values.Get(FieldName),
		Category: values.Get(FieldCategory),
		Phone:    values.Get(FieldPhone),
		Email:    values.Get(FieldEmail),
	}.Trimmed()
}

// Validate checks the bound values and records field errors.
func (f *Form) Validate() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validateLocked()
}

func (f *Form) validateLocked() bool {
	errs := Validate(f.values)
	f.fieldErrs = errs
	return len(errs) == 0
}

// Validate returns field name -> message key for every invalid field.
func Validate(v provider.Fields) map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(v.Name) == "" {
		errs[FieldName] = i18n.MsgNameRequired
	}
	if v.Email != "" {
		if addr, err := mail.ParseAddress(v.Email); err != nil || addr.Address != v.Email {
			errs[FieldEmail] = i18n.MsgEmailInvalid
		}
	}
	if v.Phone != "" && !validPhone(v.Phone) {
		errs[FieldPhone] = i18n.MsgPhoneInvalid
	}
	return errs
}

func validPhone(s string) bool {
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == ' ' || r == '+' || r == '-' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits > 0
}

// Submit validates and saves the form. On success the success callback runs
// after the form's own lock is released. Backend failures are kept as a
// form-level message and returned.
func (f *Form) Submit(ctx context.Context, svc Submitter) error {
	f.mu.Lock()
	f.formErr = ""
	if !f.validateLocked() {
		f.mu.Unlock()
		return ErrInvalid
	}
	values := f.values
	existing := f.existing
	f.mu.Unlock()

	var err error
	if existing != nil {
		_, err = svc.UpdateProvider(ctx, existing.ID, values)
	} else {
		_, err = svc.CreateProvider(ctx, f.restaurantID, values)
	}

	if err != nil {
		f.mu.Lock()
		if errors.Is(err, provider.ErrValidation) {
			f.formErr = i18n.MsgSaveRejected
		} else {
			f.formErr = i18n.MsgSaveFailed
		}
		f.mu.Unlock()
		return err
	}

	if f.onSuccess != nil {
		f.onSuccess()
	}
	return nil
}

// Cancel runs the cancel callback.
func (f *Form) Cancel() {
	if f.onCancel != nil {
		f.onCancel()
	}
}

// View is a render snapshot of the form.
type View struct {
	Editing     bool
	ProviderID  int64
	Values      provider.Fields
	FieldErrors map[string]string
	Error       string
}

// Snapshot returns the current state for rendering.
func (f *Form) Snapshot() View {
	f.mu.Lock()
	defer f.mu.Unlock()

	v := View{
		Editing:     f.existing != nil,
		Values:      f.values,
		FieldErrors: make(map[string]string, len(f.fieldErrs)),
		Error:       f.formErr,
	}
	if f.existing != nil {
		v.ProviderID = f.existing.ID
	}
	for k, msg := range f.fieldErrs {
		v.FieldErrors[k] = msg
	}
	return v
}
