// ABOUTME: Page status variant: idle, loading, error(message) or success(message).
// ABOUTME: Error and success are exclusive because only one status exists at a time.

package detail

// Kind tags a Status.
type Kind int

const (
	KindIdle Kind = iota
	KindLoading
	KindError
	KindSuccess
)

func (k Kind) String() string {
	switch k {
	case KindIdle:
		return "idle"
	case KindLoading:
		return "loading"
	case KindError:
		return "error"
	case KindSuccess:
		return "success"
	}
	return "unknown"
}

// Status is the single user-visible page status.
type Status struct {
	Kind    Kind
	Message string
}

func Idle() Status                    { return Status{Kind: KindIdle} }
func Loading() Status                 { return Status{Kind: KindLoading} }
func Failed(message string) Status    { return Status{Kind: KindError, Message: message} }
func Succeeded(message string) Status { return Status{Kind: KindSuccess, Message: message} }

// IsError reports whether s carries an error message.
func (s Status) IsError() bool { return s.Kind == KindError }

// IsSuccess reports whether s carries a success message.
func (s Status) IsSuccess() bool { return s.Kind == KindSuccess }

// IsLoading reports whether a provider fetch is in flight.
func (s Status) IsLoading() bool { return s.Kind == KindLoading }
