package choice

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/goliatone/go-select2/pkg/jsonb"
)

const defaultPageSize = 25

// StaticOptions configures a StaticProvider.
type StaticOptions struct {
	PageSize int
	// Fuzzy ranks matches with subsequence search instead of substring
	// containment.
	Fuzzy bool
}

// StaticOptionFn mutates StaticOptions.
type StaticOptionFn func(*StaticOptions)

// WithPageSize caps query pages. Non-positive values fall back to the default.
func WithPageSize(size int) StaticOptionFn {
	return func(o *StaticOptions) {
		if o == nil {
			return
		}
		o.PageSize = size
	}
}

// WithFuzzy toggles subsequence matching for queries.
func WithFuzzy(enabled bool) StaticOptionFn {
	return func(o *StaticOptions) {
		if o == nil {
			return
		}
		o.Fuzzy = enabled
	}
}

// StaticProvider serves a fixed candidate list through the Provider contract.
// It is safe for concurrent use once constructed.
type StaticProvider[T any] struct {
	choices  []T
	ids      []string
	labels   []string
	index    map[string]int
	position *Positions[T]
	renderer Renderer[T]
	opts     StaticOptions
}

var _ Provider[Option] = (*StaticProvider[Option])(nil)

// NewStaticProvider indexes choices by their rendered id. When two candidates
// share an id the first one wins.
func NewStaticProvider[T any](choices []T, renderer Renderer[T], fns ...StaticOptionFn) (*StaticProvider[T], error) {
	if renderer == nil {
		return nil, errors.New("choice: renderer is required")
	}
	opts := StaticOptions{PageSize: defaultPageSize}
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}

	p := &StaticProvider[T]{
		choices:  append([]T(nil), choices...),
		ids:      make([]string, len(choices)),
		labels:   make([]string, len(choices)),
		index:    make(map[string]int, len(choices)),
		renderer: renderer,
		opts:     opts,
	}
	p.position = NewPositions(p.choices)
	for i, c := range p.choices {
		id := renderer.IDValue(c, i)
		p.ids[i] = id
		p.labels[i] = SanitizeText(renderer.DisplayValue(c))
		if _, exists := p.index[id]; !exists {
			p.index[id] = i
		}
	}
	return p, nil
}

// Choices returns a copy of the candidate list.
func (p *StaticProvider[T]) Choices() []T {
	return append([]T(nil), p.choices...)
}

func (p *StaticProvider[T]) ID(choice T) string {
	return p.renderer.IDValue(choice, p.positionOf(choice))
}

// ToChoices returns the known choices for ids in request order. Unknown and
// repeated ids are skipped.
func (p *StaticProvider[T]) ToChoices(ctx context.Context, ids []string) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]T, 0, len(ids))
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		pos, ok := p.index[id]
		if !ok {
			continue
		}
		if _, dup := seen[pos]; dup {
			continue
		}
		seen[pos] = struct{}{}
		out = append(out, p.choices[pos])
	}
	return out, nil
}

func (p *StaticProvider[T]) ToJSON(choice T, b *jsonb.Builder) error {
	pos := p.positionOf(choice)
	id := p.renderer.IDValue(choice, pos)
	text := SanitizeText(p.renderer.DisplayValue(choice))
	b.Field("id", id).Field("text", text)
	return b.Err()
}

// Query pages through candidates whose label matches term. An empty term
// lists every candidate in order. Pages start at 1.
func (p *StaticProvider[T]) Query(ctx context.Context, term string, page int) (Response[T], error) {
	if err := ctx.Err(); err != nil {
		return Response[T]{}, err
	}
	if page < 1 {
		page = 1
	}

	matches := p.match(strings.TrimSpace(term))
	start := (page - 1) * p.opts.PageSize
	if start >= len(matches) {
		return Response[T]{Results: []T{}}, nil
	}
	end := start + p.opts.PageSize
	if end > len(matches) {
		end = len(matches)
	}

	results := make([]T, 0, end-start)
	for _, pos := range matches[start:end] {
		results = append(results, p.choices[pos])
	}
	return Response[T]{Results: results, More: end < len(matches)}, nil
}

func (p *StaticProvider[T]) match(term string) []int {
	if term == "" {
		all := make([]int, len(p.choices))
		for i := range all {
			all[i] = i
		}
		return all
	}

	if p.opts.Fuzzy {
		ranks := fuzzy.RankFindFold(term, p.labels)
		sort.SliceStable(ranks, func(i, j int) bool {
			if ranks[i].Distance != ranks[j].Distance {
				return ranks[i].Distance < ranks[j].Distance
			}
			return ranks[i].OriginalIndex < ranks[j].OriginalIndex
		})
		out := make([]int, 0, len(ranks))
		for _, rank := range ranks {
			out = append(out, rank.OriginalIndex)
		}
		return out
	}

	q := strings.ToLower(term)
	var prefix, contains []int
	for i, label := range p.labels {
		lower := strings.ToLower(label)
		switch {
		case strings.HasPrefix(lower, q):
			prefix = append(prefix, i)
		case strings.Contains(lower, q):
			contains = append(contains, i)
		}
	}
	return append(prefix, contains...)
}

// positionOf finds the candidate index used when the renderer derives ids from
// positions. Choices that are not comparable or not in the list report -1.
func (p *StaticProvider[T]) positionOf(choice T) int {
	return p.position.Of(choice)
}
