package select2

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goliatone/go-select2/pkg/render"
	rendertemplate "github.com/goliatone/go-select2/pkg/render/template"
	"github.com/goliatone/go-select2/pkg/render/template/gotemplate"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

// TemplatesFS exposes the built-in field templates.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}

// Field is the template-facing view of a widget field.
type Field interface {
	InputName() string
	MarkupID() string
	Settings() Settings
	Value(req Request) string
}

var _ Field = (*MultiChoice[string])(nil)

// MarkupOption configures a MarkupRenderer.
type MarkupOption func(*markupConfig)

type markupConfig struct {
	templateFS       fs.FS
	templateDir      string
	templateRenderer rendertemplate.TemplateRenderer
	cssClass         string
}

// WithTemplatesFS supplies an alternate template bundle. It must contain
// templates/multi_choice.tpl.
func WithTemplatesFS(files fs.FS) MarkupOption {
	return func(cfg *markupConfig) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk. Templates found
// there take precedence over the configured bundle.
func WithTemplatesDir(path string) MarkupOption {
	return func(cfg *markupConfig) {
		cfg.templateDir = strings.TrimSpace(path)
	}
}

// WithTemplateRenderer injects a custom template renderer.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) MarkupOption {
	return func(cfg *markupConfig) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithCSSClass sets the class attribute of rendered inputs.
func WithCSSClass(class string) MarkupOption {
	return func(cfg *markupConfig) {
		cfg.cssClass = class
	}
}

// MarkupRenderer renders the hidden input a widget attaches to.
type MarkupRenderer struct {
	templates rendertemplate.TemplateRenderer
	cssClass  string
}

// NewMarkupRenderer builds a renderer over the embedded templates unless an
// alternative is configured.
func NewMarkupRenderer(options ...MarkupOption) (*MarkupRenderer, error) {
	cfg := markupConfig{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithBaseDir(cfg.templateDir),
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("select2 markup: configure template renderer: %w", err)
		}
		renderer = engine
	}
	return &MarkupRenderer{templates: renderer, cssClass: cfg.cssClass}, nil
}

// Render returns the hidden input for field plus any extra hidden fields.
func (r *MarkupRenderer) Render(field Field, req Request, hidden ...render.HiddenField) (string, error) {
	if r == nil || r.templates == nil {
		return "", fmt.Errorf("select2 markup: template renderer is nil")
	}
	if field == nil {
		return "", fmt.Errorf("select2 markup: field is nil")
	}

	extras := make([]any, 0, len(hidden))
	for _, h := range render.SortedHiddenFields(hidden...) {
		extras = append(extras, map[string]any{"name": h.Name, "value": h.Value})
	}

	out, err := r.templates.RenderTemplate("templates/multi_choice", map[string]any{
		"field": map[string]any{
			"id":          field.MarkupID(),
			"name":        field.InputName(),
			"value":       field.Value(req),
			"placeholder": field.Settings().Placeholder,
			"css_class":   r.cssClass,
		},
		"hidden_fields": extras,
	})
	if err != nil {
		return "", fmt.Errorf("select2 markup: render template: %w", err)
	}
	return out, nil
}
