package choice

import (
	"context"
	"strconv"
	"strings"

	"github.com/goliatone/go-select2/pkg/jsonb"
)

// Renderer extracts the identifier and display text of a candidate. The index
// is the candidate's position in the list being rendered.
type Renderer[T any] interface {
	IDValue(choice T, index int) string
	DisplayValue(choice T) string
}

// Provider resolves choices that are not preloaded. ToChoices receives the
// submitted identifiers verbatim and returns choices in provider order; ToJSON
// writes the members of one already-opened JSON object.
type Provider[T any] interface {
	ID(choice T) string
	ToChoices(ctx context.Context, ids []string) ([]T, error)
	ToJSON(choice T, b *jsonb.Builder) error
	Query(ctx context.Context, term string, page int) (Response[T], error)
}

// Response is one page of query results.
type Response[T any] struct {
	Results []T
	More    bool
}

// Option is a plain selectable value.
type Option struct {
	ID       string `json:"id" yaml:"id"`
	Text     string `json:"text" yaml:"text"`
	Disabled bool   `json:"disabled,omitempty" yaml:"disabled,omitempty"`
}

// RendererFuncs adapts two functions to the Renderer interface. A nil ID
// function falls back to the candidate index.
type RendererFuncs[T any] struct {
	ID      func(choice T, index int) string
	Display func(choice T) string
}

// NewRenderer returns a Renderer backed by the supplied functions.
func NewRenderer[T any](id func(T, int) string, display func(T) string) RendererFuncs[T] {
	return RendererFuncs[T]{ID: id, Display: display}
}

func (r RendererFuncs[T]) IDValue(choice T, index int) string {
	if r.ID == nil {
		return strconv.Itoa(index)
	}
	return r.ID(choice, index)
}

func (r RendererFuncs[T]) DisplayValue(choice T) string {
	if r.Display == nil {
		return ""
	}
	return r.Display(choice)
}

// OptionRenderer renders Option values by their ID and Text.
var OptionRenderer Renderer[Option] = NewRenderer(
	func(o Option, _ int) string { return o.ID },
	func(o Option) string { return o.Text },
)

// StringRenderer renders plain strings as both id and text.
var StringRenderer Renderer[string] = NewRenderer(
	func(s string, _ int) string { return s },
	func(s string) string { return s },
)

// SplitIDs splits a widget submission into identifier tokens. Blank input
// yields nil. Trailing empty tokens are dropped; the rest are kept as is,
// untrimmed.
func SplitIDs(raw string, separator string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	if separator == "" {
		separator = ","
	}
	tokens := strings.Split(raw, separator)
	for len(tokens) > 0 && tokens[len(tokens)-1] == "" {
		tokens = tokens[:len(tokens)-1]
	}
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}

// JoinIDs is the inverse of SplitIDs.
func JoinIDs(ids []string, separator string) string {
	if separator == "" {
		separator = ","
	}
	return strings.Join(ids, separator)
}
