package select2

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-select2/pkg/choice"
	"github.com/goliatone/go-select2/pkg/jsonb"
	"github.com/goliatone/go-select2/pkg/render"
)

// MatchStrategy controls how Local mode pairs submitted ids with candidates.
type MatchStrategy int

const (
	// MatchLegacy appends a candidate once per submitted token it equals and
	// stops scanning as soon as the result holds as many entries as there are
	// tokens. Repeated tokens therefore repeat the candidate, and candidates
	// sharing an id can end the scan before later ids are reached.
	MatchLegacy MatchStrategy = iota
	// MatchAll scans every candidate and keeps each matching one once.
	MatchAll
)

// Option configures a MultiChoice.
type Option func(*config)

type config struct {
	markupID string
	settings Settings
	match    MatchStrategy
	logger   logrus.FieldLogger
}

// WithMarkupID sets the DOM id of the hidden input.
func WithMarkupID(id string) Option {
	return func(cfg *config) {
		cfg.markupID = strings.TrimSpace(id)
	}
}

// WithSettings seeds the widget settings. Multiple is forced on by
// OnInitialize regardless of the value supplied here.
func WithSettings(settings Settings) Option {
	return func(cfg *config) {
		cfg.settings = settings.Clone()
	}
}

// WithMatchStrategy selects the Local mode matching strategy.
func WithMatchStrategy(strategy MatchStrategy) Option {
	return func(cfg *config) {
		cfg.match = strategy
	}
}

// WithLogger routes conversion diagnostics to logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// MultiChoice binds a Model of []T to a multi-select widget.
type MultiChoice[T any] struct {
	name     string
	markupID string
	mode     Mode[T]
	model    Model[T]
	settings Settings
	match    MatchStrategy
	logger   logrus.FieldLogger

	initialized  bool
	converted    []T
	hasConverted bool
}

// NewMultiChoice builds a field named name (the submitted parameter) over
// model. A nil model is replaced by an empty ValueModel.
func NewMultiChoice[T any](name string, model Model[T], mode Mode[T], opts ...Option) (*MultiChoice[T], error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("select2: field name is required")
	}
	if err := validateMode[T](mode); err != nil {
		return nil, err
	}

	cfg := config{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.markupID == "" {
		cfg.markupID = defaultMarkupID(name)
	}
	if cfg.logger == nil {
		cfg.logger = discardLogger()
	}
	if model == nil {
		model = NewValueModel[T]()
	}

	return &MultiChoice[T]{
		name:     name,
		markupID: cfg.markupID,
		mode:     mode,
		model:    model,
		settings: cfg.settings,
		match:    cfg.match,
		logger:   cfg.logger.WithField("field", name),
	}, nil
}

func validateMode[T any](mode Mode[T]) error {
	switch m := mode.(type) {
	case Local[T]:
		if m.Renderer == nil {
			return fmt.Errorf("%w: local mode requires a renderer", ErrMode)
		}
	case Remote[T]:
		if m.Provider == nil {
			return fmt.Errorf("%w: remote mode requires a provider", ErrMode)
		}
	default:
		return fmt.Errorf("%w: mode is required", ErrMode)
	}
	return nil
}

// Clone returns a fresh copy sharing the immutable configuration but bound to
// model and with no converted input. A nil model reuses the prototype's.
func (f *MultiChoice[T]) Clone(model Model[T]) *MultiChoice[T] {
	if model == nil {
		model = f.model
	}
	return &MultiChoice[T]{
		name:        f.name,
		markupID:    f.markupID,
		mode:        f.mode,
		model:       model,
		settings:    f.settings.Clone(),
		match:       f.match,
		logger:      f.logger,
		initialized: f.initialized,
	}
}

// InputName is the request parameter the widget submits.
func (f *MultiChoice[T]) InputName() string { return f.name }

// MarkupID is the DOM id of the hidden input.
func (f *MultiChoice[T]) MarkupID() string { return f.markupID }

// Settings returns a copy of the widget settings.
func (f *MultiChoice[T]) Settings() Settings { return f.settings.Clone() }

// Mode returns the resolution mode.
func (f *MultiChoice[T]) Mode() Mode[T] { return f.mode }

// Model returns the bound model.
func (f *MultiChoice[T]) Model() Model[T] { return f.model }

// OnInitialize switches the widget into multiple selection mode. It must run
// before the first render; RenderHead calls it when the host has not.
func (f *MultiChoice[T]) OnInitialize() {
	f.settings.Multiple = true
	if remote, ok := f.mode.(Remote[T]); ok && remote.URL != "" && f.settings.Ajax == nil {
		f.settings.Ajax = &AjaxSettings{URL: remote.URL}
	}
	f.initialized = true
}

// ConvertInput resolves the submitted ids into a selection and stores it as
// the converted input for this request. An empty, blank or missing parameter
// yields an empty selection.
func (f *MultiChoice[T]) ConvertInput(ctx context.Context, req Request) error {
	raw := ""
	if req != nil {
		raw, _ = req.Param(f.name)
	}

	selection := make([]T, 0)
	if strings.TrimSpace(raw) != "" {
		tokens := choice.SplitIDs(raw, f.settings.SeparatorOrDefault())
		switch m := f.mode.(type) {
		case Remote[T]:
			resolved, err := m.Provider.ToChoices(ctx, tokens)
			if err != nil {
				return fmt.Errorf("select2: resolve choices for %q: %w", f.name, err)
			}
			selection = append(selection, resolved...)
		case Local[T]:
			selection = f.matchLocal(m, tokens)
		}
		f.logger.WithFields(logrus.Fields{
			"tokens":   len(tokens),
			"selected": len(selection),
			"mode":     f.mode.modeName(),
		}).Debug("converted widget input")
	}

	f.converted = selection
	f.hasConverted = true
	return nil
}

func (f *MultiChoice[T]) matchLocal(m Local[T], tokens []string) []T {
	out := make([]T, 0, len(tokens))
	if f.match == MatchAll {
		wanted := make(map[string]struct{}, len(tokens))
		for _, token := range tokens {
			wanted[token] = struct{}{}
		}
		for i, item := range m.Choices {
			if _, ok := wanted[m.Renderer.IDValue(item, i)]; ok {
				out = append(out, item)
			}
		}
		return out
	}

	for i, item := range m.Choices {
		id := m.Renderer.IDValue(item, i)
		for _, token := range tokens {
			if id != token {
				continue
			}
			out = append(out, item)
			if len(out) == len(tokens) {
				return out
			}
		}
	}
	return out
}

// ConvertedInput returns the selection produced by the last ConvertInput and
// whether a conversion has happened.
func (f *MultiChoice[T]) ConvertedInput() ([]T, bool) {
	if !f.hasConverted {
		return nil, false
	}
	return append([]T{}, f.converted...), true
}

// UpdateModel writes the converted input to the model. Without a prior
// conversion the model receives an empty selection.
func (f *MultiChoice[T]) UpdateModel() {
	selection := f.converted
	if selection == nil {
		selection = []T{}
	}
	f.model.Write(selection)
}

// ModelValue is the value attribute for the hidden input: the model's ids
// joined with the separator, or "" when the selection is nil or empty.
func (f *MultiChoice[T]) ModelValue() string {
	values := f.model.Read()
	if len(values) == 0 {
		return ""
	}
	ids := make([]string, 0, len(values))
	positions := f.positions()
	for i, value := range values {
		ids = append(ids, f.idOf(value, i, positions))
	}
	return choice.JoinIDs(ids, f.settings.SeparatorOrDefault())
}

// Value is what the hidden input shows for req: the raw submission when the
// parameter is present, the model value otherwise.
func (f *MultiChoice[T]) Value(req Request) string {
	if req != nil {
		if raw, ok := req.Param(f.name); ok {
			return raw
		}
	}
	return f.ModelValue()
}

// positions indexes the local candidate set for one render pass. Remote
// fields return nil.
func (f *MultiChoice[T]) positions() *choice.Positions[T] {
	if m, ok := f.mode.(Local[T]); ok {
		return choice.NewPositions(m.Choices)
	}
	return nil
}

func (f *MultiChoice[T]) idOf(value T, fallback int, positions *choice.Positions[T]) string {
	switch m := f.mode.(type) {
	case Remote[T]:
		return m.Provider.ID(value)
	case Local[T]:
		return m.Renderer.IDValue(value, positions.OrDefault(value, fallback))
	}
	return ""
}

// RenderInitializationScript pushes the current selection into the widget.
// A request that carries the field parameter is converted again so a
// redisplayed form shows what was just submitted; otherwise the model is used.
// Nothing is rendered for an empty selection.
func (f *MultiChoice[T]) RenderInitializationScript(ctx context.Context, req Request, resp render.Response) error {
	var selection []T
	if f.submitted(req) {
		if err := f.ConvertInput(ctx, req); err != nil {
			return err
		}
		selection = f.converted
	} else {
		selection = f.model.Read()
	}
	if len(selection) == 0 {
		return nil
	}

	data, err := f.selectionJSON(selection)
	if err != nil {
		return &RenderError{Field: f.name, Err: err}
	}
	if resp != nil {
		resp.Render(render.OnDomReady(render.Execute(
			"$('#%s').select2('data', %s);", render.SafeMarkupID(f.markupID), data,
		)))
	}
	return nil
}

// RenderHead renders the widget bootstrap followed by the initial data.
func (f *MultiChoice[T]) RenderHead(ctx context.Context, req Request, resp render.Response) error {
	if !f.initialized {
		f.OnInitialize()
	}
	script, err := f.settingsScript()
	if err != nil {
		return &RenderError{Field: f.name, Err: err}
	}
	if resp != nil {
		resp.Render(render.OnDomReady(script))
	}
	return f.RenderInitializationScript(ctx, req, resp)
}

func (f *MultiChoice[T]) settingsScript() (string, error) {
	settings, err := f.settings.ToJSON()
	if err != nil {
		return "", pkgerrors.Wrap(err, "build settings")
	}
	selector := render.SafeMarkupID(f.markupID)
	if f.settings.Ajax != nil && IsRemote[T](f.mode) {
		return render.Execute(
			"$('#%s').select2($.extend(true, {ajax:{data:function(term,page){return {term:term,page:page};},results:function(data){return data;}}}, %s))",
			selector, settings,
		), nil
	}
	return render.Execute("$('#%s').select2(%s)", selector, settings), nil
}

func (f *MultiChoice[T]) submitted(req Request) bool {
	if req == nil {
		return false
	}
	_, ok := req.Param(f.name)
	return ok
}

func (f *MultiChoice[T]) selectionJSON(selection []T) (string, error) {
	b := jsonb.New().Array()
	positions := f.positions()
	for i, item := range selection {
		b.Object()
		switch m := f.mode.(type) {
		case Remote[T]:
			if err := m.Provider.ToJSON(item, b); err != nil {
				return "", pkgerrors.Wrapf(err, "serialise choice %d", i)
			}
		case Local[T]:
			f.renderChoice(m, item, positions.OrDefault(item, i), b)
		}
		b.EndObject()
	}
	out, err := b.EndArray().ToJSON()
	if err != nil {
		return "", pkgerrors.Wrap(err, "build selection")
	}
	return out, nil
}

func (f *MultiChoice[T]) renderChoice(m Local[T], item T, index int, b *jsonb.Builder) {
	b.Field("id", m.Renderer.IDValue(item, index))
	b.Field("text", choice.SanitizeText(m.Renderer.DisplayValue(item)))
}

func defaultMarkupID(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String() + "-" + strings.SplitN(uuid.NewString(), "-", 2)[0]
}

func discardLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
