package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-select2/pkg/choice"
)

// ErrNoEnum is returned when a schema exists but carries no enum values.
var ErrNoEnum = errors.New("openapi: schema has no enum")

// Extension keys read for enum labels, in priority order. Both carry an array
// parallel to the enum values.
var labelExtensions = []string{"x-enumNames", "x-enum-varnames"}

// ParserOptions toggles parsing behaviour.
type ParserOptions struct {
	// ResolveReferences allows $refs to other documents.
	ResolveReferences bool
}

// ParserOption mutates ParserOptions during construction.
type ParserOption func(*ParserOptions)

// WithReferenceResolution toggles external reference resolution.
func WithReferenceResolution(enabled bool) ParserOption {
	return func(opts *ParserOptions) {
		opts.ResolveReferences = enabled
	}
}

// Parser extracts enum candidate sets from documents.
type Parser struct {
	options ParserOptions
}

// NewParser constructs a Parser.
func NewParser(options ...ParserOption) *Parser {
	cfg := ParserOptions{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return &Parser{options: cfg}
}

// EnumOptions returns the enum of components.schemas[schemaName] as options in
// declaration order. Array schemas use their item enum.
func (p *Parser) EnumOptions(ctx context.Context, doc Document, schemaName string) ([]choice.Option, error) {
	spec, err := p.load(ctx, doc)
	if err != nil {
		return nil, err
	}
	ref, err := componentSchema(spec, schemaName)
	if err != nil {
		return nil, err
	}
	return enumOptions(ref, schemaName)
}

// PropertyEnumOptions returns the enum of one property of an object schema.
func (p *Parser) PropertyEnumOptions(ctx context.Context, doc Document, schemaName, property string) ([]choice.Option, error) {
	spec, err := p.load(ctx, doc)
	if err != nil {
		return nil, err
	}
	ref, err := componentSchema(spec, schemaName)
	if err != nil {
		return nil, err
	}
	prop, ok := ref.Value.Properties[property]
	if !ok || prop == nil {
		return nil, fmt.Errorf("openapi: schema %q has no property %q", schemaName, property)
	}
	return enumOptions(prop, schemaName+"."+property)
}

// Enums lists every component schema that declares an enum, keyed by name.
func (p *Parser) Enums(ctx context.Context, doc Document) (map[string][]choice.Option, error) {
	spec, err := p.load(ctx, doc)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]choice.Option)
	if spec.Components == nil {
		return out, nil
	}

	names := make([]string, 0, len(spec.Components.Schemas))
	for name := range spec.Components.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		options, err := enumOptions(spec.Components.Schemas[name], name)
		if errors.Is(err, ErrNoEnum) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[name] = options
	}
	return out, nil
}

// EnumProvider serves a schema enum through a static provider.
func (p *Parser) EnumProvider(ctx context.Context, doc Document, schemaName string, fns ...choice.StaticOptionFn) (*choice.StaticProvider[choice.Option], error) {
	options, err := p.EnumOptions(ctx, doc, schemaName)
	if err != nil {
		return nil, err
	}
	return choice.NewStaticProvider(options, choice.OptionRenderer, fns...)
}

func (p *Parser) load(ctx context.Context, doc Document) (*openapi3.T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw := doc.Raw()
	if len(raw) == 0 {
		return nil, errors.New("openapi parser: document payload is empty")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: p.options.ResolveReferences,
	}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi parser: load document: %w", err)
	}
	return spec, nil
}

func componentSchema(spec *openapi3.T, name string) (*openapi3.SchemaRef, error) {
	name = strings.TrimSpace(name)
	if spec.Components == nil {
		return nil, fmt.Errorf("openapi: schema %q not found", name)
	}
	ref, ok := spec.Components.Schemas[name]
	if !ok || ref == nil || ref.Value == nil {
		return nil, fmt.Errorf("openapi: schema %q not found", name)
	}
	return ref, nil
}

func enumOptions(ref *openapi3.SchemaRef, name string) ([]choice.Option, error) {
	if ref == nil || ref.Value == nil {
		return nil, fmt.Errorf("openapi: schema %q is unresolved", name)
	}
	schema := ref.Value
	if len(schema.Enum) == 0 && schemaType(schema.Type) == "array" && schema.Items != nil && schema.Items.Value != nil {
		schema = schema.Items.Value
	}
	if len(schema.Enum) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoEnum, name)
	}

	labels := enumLabels(schema.Extensions, len(schema.Enum))
	out := make([]choice.Option, 0, len(schema.Enum))
	for i, value := range schema.Enum {
		if value == nil {
			continue
		}
		id := formatEnumValue(value)
		text := id
		if labels[i] != "" {
			text = labels[i]
		}
		out = append(out, choice.Option{ID: id, Text: text})
	}
	return out, nil
}

func enumLabels(extensions map[string]any, size int) []string {
	labels := make([]string, size)
	for _, key := range labelExtensions {
		raw, ok := extensions[key].([]any)
		if !ok {
			continue
		}
		for i := 0; i < size && i < len(raw); i++ {
			if text, ok := raw[i].(string); ok {
				labels[i] = strings.TrimSpace(text)
			}
		}
		return labels
	}
	return labels
}

func formatEnumValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprint(v)
	}
}

func schemaType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	values := types.Slice()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
