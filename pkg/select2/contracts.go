package select2

import (
	"net/http"
	"net/url"
)

// Request exposes the submitted parameters of the current request. The
// boolean reports whether the parameter was present at all, so an empty
// submission can be told apart from a missing one.
type Request interface {
	Param(name string) (string, bool)
}

// Values adapts url.Values to Request.
type Values url.Values

func (v Values) Param(name string) (string, bool) {
	values, ok := v[name]
	if !ok {
		return "", false
	}
	if len(values) == 0 {
		return "", true
	}
	return values[0], true
}

// FormRequest adapts an *http.Request, reading both the query string and a
// url-encoded body.
type FormRequest struct {
	r      *http.Request
	parsed bool
	err    error
}

// NewFormRequest wraps r. A nil request reports no parameters.
func NewFormRequest(r *http.Request) *FormRequest {
	return &FormRequest{r: r}
}

// Err returns the form parse error, if any.
func (f *FormRequest) Err() error {
	f.parse()
	return f.err
}

func (f *FormRequest) Param(name string) (string, bool) {
	if f == nil || f.r == nil {
		return "", false
	}
	f.parse()
	return Values(f.r.Form).Param(name)
}

func (f *FormRequest) parse() {
	if f.parsed || f.r == nil {
		return
	}
	f.parsed = true
	f.err = f.r.ParseForm()
}

// Model holds the durable selection between requests.
type Model[T any] interface {
	Read() []T
	Write(selection []T)
}

// ValueModel is an in-memory Model. Reads and writes copy the slice.
type ValueModel[T any] struct {
	value []T
}

var _ Model[string] = (*ValueModel[string])(nil)

// NewValueModel returns a model holding initial. With no arguments the model
// starts nil.
func NewValueModel[T any](initial ...T) *ValueModel[T] {
	m := &ValueModel[T]{}
	if len(initial) > 0 {
		m.value = append([]T(nil), initial...)
	}
	return m
}

func (m *ValueModel[T]) Read() []T {
	if m == nil || m.value == nil {
		return nil
	}
	return append([]T{}, m.value...)
}

func (m *ValueModel[T]) Write(selection []T) {
	if m == nil {
		return
	}
	if selection == nil {
		m.value = nil
		return
	}
	m.value = append([]T{}, selection...)
}
