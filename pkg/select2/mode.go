package select2

import (
	"github.com/goliatone/go-select2/pkg/choice"
)

// Mode selects how submitted ids are resolved. It is implemented only by
// Local and Remote.
type Mode[T any] interface {
	modeName() string
	// choiceType ties the mode to T so callers can rely on inference.
	choiceType(T)
}

// Local resolves ids by scanning a preloaded candidate list.
type Local[T any] struct {
	Choices  []T
	Renderer choice.Renderer[T]
}

func (Local[T]) modeName() string { return "local" }
func (Local[T]) choiceType(T)     {}

// Remote delegates resolution and serialisation to a provider. URL, when set,
// is the query endpoint advertised to the widget.
type Remote[T any] struct {
	Provider choice.Provider[T]
	URL      string
}

func (Remote[T]) modeName() string { return "remote" }
func (Remote[T]) choiceType(T)     {}

// IsRemote reports whether mode resolves choices through a provider.
func IsRemote[T any](mode Mode[T]) bool {
	_, ok := mode.(Remote[T])
	return ok
}
