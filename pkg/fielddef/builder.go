package fielddef

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-select2/pkg/choice"
	"github.com/goliatone/go-select2/pkg/select2"
)

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithProvider registers a named provider that remote definitions can refer
// to through remote.provider.
func WithProvider(name string, provider choice.Provider[choice.Option]) BuilderOption {
	return func(b *Builder) {
		name = strings.TrimSpace(name)
		if name == "" || provider == nil {
			return
		}
		b.providers[name] = provider
	}
}

// WithLogger sets the logger handed to every built field.
func WithLogger(logger logrus.FieldLogger) BuilderOption {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// Builder turns definitions into configured fields.
type Builder struct {
	providers map[string]choice.Provider[choice.Option]
	logger    logrus.FieldLogger
}

// NewBuilder returns a Builder with the supplied providers registered.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{providers: make(map[string]choice.Provider[choice.Option])}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(b)
	}
	return b
}

// Field is a built multi-choice field together with the provider that answers
// its widget queries. Provider is nil for local fields.
type Field struct {
	*select2.MultiChoice[choice.Option]
	Definition Definition
	Provider   choice.Provider[choice.Option]
}

// QueryURL is the endpoint remote fields advertise, or "" for local ones.
func (f *Field) QueryURL() string {
	if f == nil || f.Definition.Remote == nil {
		return ""
	}
	return f.Definition.Remote.URL
}

// QueryHandler serves the field's widget queries. Local fields return nil.
func (f *Field) QueryHandler(fns ...select2.QueryOptionFn) http.Handler {
	if f == nil || f.Provider == nil {
		return nil
	}
	return select2.QueryHandler[choice.Option](f.Provider, fns...)
}

// Build creates the field described by def over model. The field is
// initialised and ready to render.
func (b *Builder) Build(def Definition, model select2.Model[choice.Option]) (*Field, error) {
	if b == nil {
		b = NewBuilder()
	}

	opts := []select2.Option{
		select2.WithSettings(def.Settings),
		select2.WithMatchStrategy(def.Match),
	}
	if def.MarkupID != "" {
		opts = append(opts, select2.WithMarkupID(def.MarkupID))
	}
	if b.logger != nil {
		opts = append(opts, select2.WithLogger(b.logger.WithField("definition", def.Key)))
	}

	var (
		mode     select2.Mode[choice.Option]
		provider choice.Provider[choice.Option]
	)
	if def.Remote != nil {
		var err error
		provider, err = b.provider(def)
		if err != nil {
			return nil, err
		}
		mode = select2.Remote[choice.Option]{Provider: provider, URL: def.Remote.URL}
	} else {
		mode = select2.Local[choice.Option]{
			Choices:  append([]choice.Option(nil), def.Choices...),
			Renderer: choice.OptionRenderer,
		}
	}

	field, err := select2.NewMultiChoice[choice.Option](def.Name, model, mode, opts...)
	if err != nil {
		return nil, fmt.Errorf("fielddef: build %q: %w", def.Key, err)
	}
	field.OnInitialize()
	return &Field{MultiChoice: field, Definition: def, Provider: provider}, nil
}

// BuildAll builds every definition in store, ordered by key, each over a
// fresh in-memory model.
func (b *Builder) BuildAll(store *Store) ([]*Field, error) {
	keys := store.Keys()
	out := make([]*Field, 0, len(keys))
	for _, key := range keys {
		def, _ := store.Definition(key)
		field, err := b.Build(def, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, field)
	}
	return out, nil
}

func (b *Builder) provider(def Definition) (choice.Provider[choice.Option], error) {
	if name := def.Remote.Provider; name != "" {
		provider, ok := b.providers[name]
		if !ok {
			return nil, fmt.Errorf("fielddef: field %q references unknown provider %q", def.Key, name)
		}
		return provider, nil
	}
	provider, err := choice.NewStaticProvider(def.Choices, choice.OptionRenderer,
		choice.WithPageSize(def.Remote.PageSize),
		choice.WithFuzzy(def.Remote.Fuzzy),
	)
	if err != nil {
		return nil, fmt.Errorf("fielddef: field %q: %w", def.Key, err)
	}
	return provider, nil
}
