package select2

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-select2/pkg/choice"
	"github.com/goliatone/go-select2/pkg/jsonb"
)

// GuardFunc authorises a query request. Returning an HTTPError selects the
// response status; any other error yields 403.
type GuardFunc func(r *http.Request) error

// HTTPError is an error that carries an HTTP status.
type HTTPError interface {
	error
	StatusCode() int
}

// StatusError is a plain HTTPError.
type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

// QueryOptions configures QueryHandler.
type QueryOptions struct {
	TermParam string
	PageParam string
	Guard     GuardFunc
	Logger    logrus.FieldLogger
}

// QueryOptionFn mutates QueryOptions.
type QueryOptionFn func(*QueryOptions)

// DefaultQueryOptions matches the parameter names the widget sends.
func DefaultQueryOptions() QueryOptions {
	return QueryOptions{
		TermParam: "term",
		PageParam: "page",
	}
}

// NewQueryOptions applies fns over the defaults.
func NewQueryOptions(fns ...QueryOptionFn) QueryOptions {
	opts := DefaultQueryOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if strings.TrimSpace(opts.TermParam) == "" {
		opts.TermParam = "term"
	}
	if strings.TrimSpace(opts.PageParam) == "" {
		opts.PageParam = "page"
	}
	if opts.Logger == nil {
		opts.Logger = discardLogger()
	}
	return opts
}

func WithTermParam(name string) QueryOptionFn {
	return func(o *QueryOptions) {
		if o == nil {
			return
		}
		o.TermParam = name
	}
}

func WithPageParam(name string) QueryOptionFn {
	return func(o *QueryOptions) {
		if o == nil {
			return
		}
		o.PageParam = name
	}
}

func WithGuard(guard GuardFunc) QueryOptionFn {
	return func(o *QueryOptions) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

func WithQueryLogger(logger logrus.FieldLogger) QueryOptionFn {
	return func(o *QueryOptions) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}

// QueryHandler serves provider searches in the widget's AJAX format:
// {"results":[...],"more":bool}. Each result object is written by the
// provider's ToJSON.
func QueryHandler[T any](provider choice.Provider[T], fns ...QueryOptionFn) http.Handler {
	opts := NewQueryOptions(fns...)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		if provider == nil {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			return
		}
		if opts.Guard != nil {
			if err := opts.Guard(r); err != nil {
				writeGuardError(w, err)
				return
			}
		}

		query := r.URL.Query()
		page, ok := parsePage(query.Get(opts.PageParam))
		if !ok {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		term := query.Get(opts.TermParam)

		resp, err := provider.Query(r.Context(), term, page)
		if err != nil {
			opts.Logger.WithError(err).WithField("term", term).Warn("select2 query failed")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		body, err := queryJSON(provider, resp)
		if err != nil {
			opts.Logger.WithError(err).Error("select2 query encode failed")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}
		if _, err := w.Write([]byte(body)); err != nil {
			opts.Logger.WithError(err).Debug("select2 query write failed")
		}
	})
}

func queryJSON[T any](provider choice.Provider[T], resp choice.Response[T]) (string, error) {
	b := jsonb.New().Object().Key("results").Array()
	for _, item := range resp.Results {
		b.Object()
		if err := provider.ToJSON(item, b); err != nil {
			return "", err
		}
		b.EndObject()
	}
	return b.EndArray().Field("more", resp.More).EndObject().ToJSON()
}

func parsePage(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1, true
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, false
	}
	return page, true
}

func writeGuardError(w http.ResponseWriter, err error) {
	code := http.StatusForbidden
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
		if code <= 0 {
			code = http.StatusForbidden
		}
	}
	http.Error(w, http.StatusText(code), code)
}
