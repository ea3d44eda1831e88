package fielddef

import (
	"sort"

	"github.com/goliatone/go-select2/pkg/choice"
	"github.com/goliatone/go-select2/pkg/select2"
)

// Store keeps the parsed field definitions. It is safe for concurrent readers
// when treated as immutable after construction.
type Store struct {
	fields map[string]Definition
}

// Definition describes one multi-choice field.
type Definition struct {
	Key      string
	Source   string
	Name     string
	Label    string
	MarkupID string
	Match    select2.MatchStrategy
	Settings select2.Settings
	Choices  []choice.Option
	Remote   *RemoteConfig
}

// IsRemote reports whether the field resolves its choices through a provider.
func (d Definition) IsRemote() bool {
	return d.Remote != nil
}

// RemoteConfig selects the provider backing a remote field. When Provider is
// empty the definition's own choices are served by a static provider.
type RemoteConfig struct {
	URL      string `json:"url" yaml:"url"`
	Provider string `json:"provider,omitempty" yaml:"provider,omitempty"`
	PageSize int    `json:"pageSize,omitempty" yaml:"pageSize,omitempty"`
	Fuzzy    bool   `json:"fuzzy,omitempty" yaml:"fuzzy,omitempty"`
}

// Definition returns the field registered under key.
func (s *Store) Definition(key string) (Definition, bool) {
	if s == nil {
		return Definition{}, false
	}
	def, ok := s.fields[key]
	return def, ok
}

// Keys lists the field keys in sorted order.
func (s *Store) Keys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, 0, len(s.fields))
	for key := range s.fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Empty reports whether the store holds any fields.
func (s *Store) Empty() bool {
	return s == nil || len(s.fields) == 0
}

type documentFile struct {
	Fields map[string]fieldFile `json:"fields" yaml:"fields"`
}

type fieldFile struct {
	Name     string           `json:"name,omitempty" yaml:"name,omitempty"`
	Label    string           `json:"label,omitempty" yaml:"label,omitempty"`
	MarkupID string           `json:"markupId,omitempty" yaml:"markupId,omitempty"`
	Match    string           `json:"match,omitempty" yaml:"match,omitempty"`
	Settings select2.Settings `json:"settings" yaml:"settings"`
	Choices  []choice.Option  `json:"choices,omitempty" yaml:"choices,omitempty"`
	Remote   *RemoteConfig    `json:"remote,omitempty" yaml:"remote,omitempty"`
}
