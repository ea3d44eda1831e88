package main

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-select2/components/timezones"
	"github.com/goliatone/go-select2/pkg/choice"
	"github.com/goliatone/go-select2/pkg/fielddef"
	"github.com/goliatone/go-select2/pkg/jsonb"
	"github.com/goliatone/go-select2/pkg/openapi"
	"github.com/goliatone/go-select2/pkg/render"
	"github.com/goliatone/go-select2/pkg/select2"
)

//go:embed demo.yaml
var demoDefinitions []byte

// formField is one widget on the demo page, bound to a model that outlives
// requests.
type formField interface {
	Key() string
	Label() string
	MarkupID() string
	Submit(ctx context.Context, req select2.Request) error
	Render(ctx context.Context, req select2.Request, head render.Response, markup *select2.MarkupRenderer, hidden ...render.HiddenField) (string, error)
	ModelValue() string
}

// boundField clones its prototype per request so converted input never leaks
// between requests.
type boundField[T any] struct {
	key   string
	label string
	proto *select2.MultiChoice[T]
	model *syncModel[T]
}

func newBoundField[T any](key, label string, proto *select2.MultiChoice[T]) *boundField[T] {
	if label == "" {
		label = key
	}
	return &boundField[T]{key: key, label: label, proto: proto, model: &syncModel[T]{}}
}

func (b *boundField[T]) Key() string      { return b.key }
func (b *boundField[T]) Label() string    { return b.label }
func (b *boundField[T]) MarkupID() string { return b.proto.MarkupID() }

func (b *boundField[T]) Submit(ctx context.Context, req select2.Request) error {
	field := b.proto.Clone(b.model)
	if err := field.ConvertInput(ctx, req); err != nil {
		return err
	}
	field.UpdateModel()
	return nil
}

func (b *boundField[T]) Render(ctx context.Context, req select2.Request, head render.Response, markup *select2.MarkupRenderer, hidden ...render.HiddenField) (string, error) {
	field := b.proto.Clone(b.model)
	html, err := markup.Render(field, req, hidden...)
	if err != nil {
		return "", err
	}
	if err := field.RenderHead(ctx, req, head); err != nil {
		return "", err
	}
	return html, nil
}

func (b *boundField[T]) ModelValue() string {
	return b.proto.Clone(b.model).ModelValue()
}

type syncModel[T any] struct {
	mu    sync.RWMutex
	value select2.ValueModel[T]
}

func (m *syncModel[T]) Read() []T {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.value.Read()
}

func (m *syncModel[T]) Write(selection []T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value.Write(selection)
}

// loadDefinitions reads the definition directory, or the built-in demo
// document when dir is empty.
func loadDefinitions(dir string) (*fielddef.Store, error) {
	if strings.TrimSpace(dir) == "" {
		return fielddef.Parse(demoDefinitions, "demo.yaml")
	}
	return fielddef.LoadFS(os.DirFS(dir))
}

type fieldSet struct {
	fields    []formField
	defined   []*fielddef.Field
	timezones *timezones.Component
}

func buildFields(ctx context.Context, cfg config, logger logrus.FieldLogger) (*fieldSet, error) {
	store, err := loadDefinitions(cfg.Definitions)
	if err != nil {
		return nil, err
	}

	zones := timezones.New(timezones.WithLogger(logger), timezones.WithFuzzy(true))
	zoneProvider, err := zones.Provider()
	if err != nil {
		return nil, err
	}
	builder := fielddef.NewBuilder(
		fielddef.WithLogger(logger),
		fielddef.WithProvider("timezones", zoneOptions{zoneProvider}),
	)
	defined, err := builder.BuildAll(store)
	if err != nil {
		return nil, err
	}

	set := &fieldSet{defined: defined, timezones: zones}
	for _, f := range defined {
		set.fields = append(set.fields, newBoundField(f.Definition.Key, f.Definition.Label, f.MultiChoice))
	}

	zoneField, err := zones.Field("zones", cfg.BasePath, nil,
		select2.WithMarkupID("zones"),
		select2.WithLogger(logger),
		select2.WithSettings(select2.Settings{Placeholder: "Search time zones", MinimumInputLength: 2}),
	)
	if err != nil {
		return nil, err
	}
	set.fields = append(set.fields, newBoundField("zones", "Time zones", zoneField))

	if cfg.OpenAPI != "" {
		field, err := enumField(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		set.fields = append(set.fields, field)
	}
	return set, nil
}

func enumField(ctx context.Context, cfg config, logger logrus.FieldLogger) (formField, error) {
	if strings.TrimSpace(cfg.Schema) == "" {
		return nil, fmt.Errorf("--schema is required with --openapi")
	}
	src, err := openapi.SourceFor(cfg.OpenAPI)
	if err != nil {
		return nil, err
	}
	doc, err := openapi.NewLoader(openapi.WithHTTPFallback(0)).Load(ctx, src)
	if err != nil {
		return nil, err
	}
	options, err := openapi.NewParser().EnumOptions(ctx, doc, cfg.Schema)
	if err != nil {
		return nil, err
	}

	key := strings.ToLower(cfg.Schema)
	field, err := select2.NewMultiChoice[choice.Option](key, nil,
		select2.Local[choice.Option]{Choices: options, Renderer: choice.OptionRenderer},
		select2.WithMarkupID(key),
		select2.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	field.OnInitialize()
	return newBoundField(key, cfg.Schema, field), nil
}

// zoneOptions exposes the timezone provider to definitions as option
// choices, so a definition can name "timezones" as its remote provider.
type zoneOptions struct {
	zones *timezones.Provider
}

func (z zoneOptions) ID(o choice.Option) string { return o.ID }

func (z zoneOptions) ToChoices(ctx context.Context, ids []string) ([]choice.Option, error) {
	zones, err := z.zones.ToChoices(ctx, ids)
	if err != nil {
		return nil, err
	}
	return zoneChoices(zones), nil
}

func (z zoneOptions) ToJSON(o choice.Option, b *jsonb.Builder) error {
	return z.zones.ToJSON(o.ID, b)
}

func (z zoneOptions) Query(ctx context.Context, term string, page int) (choice.Response[choice.Option], error) {
	resp, err := z.zones.Query(ctx, term, page)
	if err != nil {
		return choice.Response[choice.Option]{}, err
	}
	return choice.Response[choice.Option]{Results: zoneChoices(resp.Results), More: resp.More}, nil
}

func zoneChoices(zones []string) []choice.Option {
	out := make([]choice.Option, 0, len(zones))
	for _, zone := range zones {
		out = append(out, choice.Option{ID: zone, Text: timezones.Label(zone)})
	}
	return out
}
