package timezones

import (
	"net/http"
	"sync"

	"github.com/goliatone/go-select2/pkg/select2"
)

// Component bundles the timezone provider, its configuration and routing
// helpers.
type Component struct {
	opts Options

	once     sync.Once
	provider *Provider
	err      error
}

// New constructs a new component with default options plus any overrides.
func New(fns ...OptionFn) *Component {
	return &Component{opts: NewOptions(fns...)}
}

// Options returns a copy of the component configuration.
func (c *Component) Options() Options {
	if c == nil {
		return DefaultOptions()
	}
	return NewOptions(func(o *Options) { *o = c.opts })
}

// Provider returns the shared provider, loading zones on first use.
func (c *Component) Provider() (*Provider, error) {
	c.once.Do(func() {
		c.provider, c.err = newProvider(c.opts)
	})
	return c.provider, c.err
}

// Handler returns a net/http handler for timezone queries.
func (c *Component) Handler() http.Handler {
	if c == nil {
		return Handler()
	}
	provider, err := c.Provider()
	if err != nil {
		return HandlerWithOptions(c.opts)
	}
	return providerHandler(provider, c.opts)
}

// RegisterRoutes registers the component handler under basePath on mux.
func (c *Component) RegisterRoutes(mux Mux, basePath string) (string, error) {
	if c == nil {
		return RegisterRoutes(mux, basePath)
	}
	if mux == nil {
		return RegisterRoutesWithOptions(mux, basePath, c.opts)
	}
	pattern := mountPath(basePath, c.opts.RoutePath)
	mux.Handle(pattern, c.Handler())
	return pattern, nil
}

// Field builds a remote multi-choice field over model that queries the
// component mounted under basePath.
func (c *Component) Field(name, basePath string, model select2.Model[string], opts ...select2.Option) (*select2.MultiChoice[string], error) {
	provider, err := c.Provider()
	if err != nil {
		return nil, err
	}
	mode := select2.Remote[string]{
		Provider: provider,
		URL:      mountPath(basePath, c.opts.RoutePath),
	}
	field, err := select2.NewMultiChoice[string](name, model, mode, opts...)
	if err != nil {
		return nil, err
	}
	field.OnInitialize()
	return field, nil
}
