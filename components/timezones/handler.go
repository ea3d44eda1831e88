package timezones

import (
	"net/http"

	"github.com/goliatone/go-select2/pkg/select2"
)

// Handler builds the query handler with default options plus any overrides.
func Handler(fns ...OptionFn) http.Handler {
	return HandlerWithOptions(NewOptions(fns...))
}

// HandlerWithOptions builds the query handler from a pre-constructed Options
// value. A zone list that cannot be loaded turns every request into a 500.
func HandlerWithOptions(opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	provider, err := newProvider(opts)
	if err != nil {
		if opts.Logger != nil {
			opts.Logger.WithError(err).Error("timezones: load zones")
		}
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		})
	}
	return providerHandler(provider, opts)
}

func providerHandler(provider *Provider, opts Options) http.Handler {
	return select2.QueryHandler[string](provider,
		select2.WithTermParam(opts.TermParam),
		select2.WithPageParam(opts.PageParam),
		select2.WithGuard(opts.Guard),
		select2.WithQueryLogger(opts.Logger),
	)
}
