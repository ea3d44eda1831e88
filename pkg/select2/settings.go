package select2

import (
	"strings"

	"github.com/goliatone/go-select2/pkg/jsonb"
)

const (
	DefaultSeparator   = ","
	DefaultQuietMillis = 250
	defaultDataType    = "json"
)

// Settings mirrors the widget options the field renders into
// $('#id').select2({...}). Zero values are omitted so the widget keeps its
// own defaults.
type Settings struct {
	Multiple             bool          `json:"multiple" yaml:"multiple"`
	Placeholder          string        `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	AllowClear           bool          `json:"allowClear,omitempty" yaml:"allowClear,omitempty"`
	MinimumInputLength   int           `json:"minimumInputLength,omitempty" yaml:"minimumInputLength,omitempty"`
	MaximumSelectionSize int           `json:"maximumSelectionSize,omitempty" yaml:"maximumSelectionSize,omitempty"`
	CloseOnSelect        *bool         `json:"closeOnSelect,omitempty" yaml:"closeOnSelect,omitempty"`
	Width                string        `json:"width,omitempty" yaml:"width,omitempty"`
	Separator            string        `json:"separator,omitempty" yaml:"separator,omitempty"`
	Ajax                 *AjaxSettings `json:"ajax,omitempty" yaml:"ajax,omitempty"`
}

// AjaxSettings configures the widget's remote query.
type AjaxSettings struct {
	URL         string `json:"url" yaml:"url"`
	DataType    string `json:"dataType,omitempty" yaml:"dataType,omitempty"`
	QuietMillis int    `json:"quietMillis,omitempty" yaml:"quietMillis,omitempty"`
}

// SeparatorOrDefault returns the id separator, defaulting to a comma.
func (s Settings) SeparatorOrDefault() string {
	if s.Separator == "" {
		return DefaultSeparator
	}
	return s.Separator
}

// Clone returns a deep copy.
func (s Settings) Clone() Settings {
	out := s
	if s.CloseOnSelect != nil {
		v := *s.CloseOnSelect
		out.CloseOnSelect = &v
	}
	if s.Ajax != nil {
		ajax := *s.Ajax
		out.Ajax = &ajax
	}
	return out
}

// WriteJSON writes the settings members into an open object.
func (s Settings) WriteJSON(b *jsonb.Builder) {
	b.Field("multiple", s.Multiple)
	if s.Placeholder != "" {
		b.Field("placeholder", s.Placeholder)
	}
	if s.AllowClear {
		b.Field("allowClear", true)
	}
	if s.MinimumInputLength > 0 {
		b.Field("minimumInputLength", s.MinimumInputLength)
	}
	if s.MaximumSelectionSize > 0 {
		b.Field("maximumSelectionSize", s.MaximumSelectionSize)
	}
	if s.CloseOnSelect != nil {
		b.Field("closeOnSelect", *s.CloseOnSelect)
	}
	if width := strings.TrimSpace(s.Width); width != "" {
		b.Field("width", width)
	}
	if s.Separator != "" && s.Separator != DefaultSeparator {
		b.Field("separator", s.Separator)
	}
	if s.Ajax != nil && strings.TrimSpace(s.Ajax.URL) != "" {
		dataType := s.Ajax.DataType
		if dataType == "" {
			dataType = defaultDataType
		}
		quiet := s.Ajax.QuietMillis
		if quiet <= 0 {
			quiet = DefaultQuietMillis
		}
		b.Key("ajax").Object().
			Field("url", strings.TrimSpace(s.Ajax.URL)).
			Field("dataType", dataType).
			Field("quietMillis", quiet).
			EndObject()
	}
}

// ToJSON renders the settings object.
func (s Settings) ToJSON() (string, error) {
	b := jsonb.New().Object()
	s.WriteJSON(b)
	return b.EndObject().ToJSON()
}
