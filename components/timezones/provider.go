package timezones

import (
	"context"

	"github.com/goliatone/go-select2/pkg/choice"
	"github.com/goliatone/go-select2/pkg/jsonb"
)

// Provider serves timezone identifiers as remote choices. Choices are the zone
// names themselves.
type Provider struct {
	zones []string
	known map[string]struct{}
	opts  Options
}

var _ choice.Provider[string] = (*Provider)(nil)

// NewProvider builds a provider over opts.Zones, or the embedded list when
// none are configured.
func NewProvider(fns ...OptionFn) (*Provider, error) {
	return newProvider(NewOptions(fns...))
}

func newProvider(opts Options) (*Provider, error) {
	zones := opts.Zones
	if zones == nil {
		loaded, err := DefaultZones()
		if err != nil {
			return nil, err
		}
		zones = loaded
	}
	known := make(map[string]struct{}, len(zones))
	for _, zone := range zones {
		known[zone] = struct{}{}
	}
	return &Provider{zones: zones, known: known, opts: opts}, nil
}

func (p *Provider) ID(zone string) string { return zone }

// ToChoices keeps the known zones among ids, in request order and without
// repeats.
func (p *Provider) ToChoices(ctx context.Context, ids []string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := p.known[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

func (p *Provider) ToJSON(zone string, b *jsonb.Builder) error {
	b.Field("id", zone).Field("text", Label(zone))
	return b.Err()
}

// Query returns one page of Search results. Pages start at 1.
func (p *Provider) Query(ctx context.Context, term string, page int) (choice.Response[string], error) {
	if err := ctx.Err(); err != nil {
		return choice.Response[string]{}, err
	}
	if page < 1 {
		page = 1
	}
	matches := Search(p.zones, term, p.opts)
	start := (page - 1) * p.opts.PageSize
	if start >= len(matches) {
		return choice.Response[string]{Results: []string{}}, nil
	}
	end := start + p.opts.PageSize
	if end > len(matches) {
		end = len(matches)
	}
	return choice.Response[string]{
		Results: append([]string{}, matches[start:end]...),
		More:    end < len(matches),
	}, nil
}
