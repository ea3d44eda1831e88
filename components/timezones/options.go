package timezones

import (
	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-select2/pkg/select2"
)

type EmptySearchMode string

const (
	// EmptySearchNone answers an empty term with no results.
	EmptySearchNone EmptySearchMode = "none"
	// EmptySearchTop pages through every zone when the term is empty.
	EmptySearchTop EmptySearchMode = "top"
)

const (
	defaultRoutePath = "/api/timezones"
	defaultPageSize  = 50
	maxPageSize      = 200
)

type Options struct {
	RoutePath       string
	TermParam       string
	PageParam       string
	PageSize        int
	EmptySearchMode EmptySearchMode
	// Fuzzy falls back to subsequence ranking when no zone contains the term.
	Fuzzy  bool
	Guard  select2.GuardFunc
	Logger logrus.FieldLogger

	Zones []string
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		RoutePath:       defaultRoutePath,
		TermParam:       "term",
		PageParam:       "page",
		PageSize:        defaultPageSize,
		EmptySearchMode: EmptySearchNone,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.PageSize > maxPageSize {
		opts.PageSize = maxPageSize
	}
	if opts.EmptySearchMode == "" {
		opts.EmptySearchMode = EmptySearchNone
	}
	if opts.RoutePath == "" {
		opts.RoutePath = defaultRoutePath
	}
	if opts.TermParam == "" {
		opts.TermParam = "term"
	}
	if opts.PageParam == "" {
		opts.PageParam = "page"
	}
	if opts.Zones != nil {
		opts.Zones = append([]string{}, opts.Zones...)
	}
	return opts
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RoutePath = path
	}
}

func WithTermParam(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.TermParam = name
	}
}

func WithPageParam(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.PageParam = name
	}
}

func WithPageSize(size int) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.PageSize = size
	}
}

func WithEmptySearchMode(mode EmptySearchMode) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.EmptySearchMode = mode
	}
}

func WithFuzzy(enabled bool) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Fuzzy = enabled
	}
}

func WithGuard(guard select2.GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

func WithLogger(logger logrus.FieldLogger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}

func WithZones(zones []string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		if zones == nil {
			o.Zones = nil
			return
		}
		o.Zones = append([]string{}, zones...)
	}
}
