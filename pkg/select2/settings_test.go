package select2

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func decodeSettings(t *testing.T, s Settings) map[string]any {
	t.Helper()
	raw, err := s.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	out := map[string]any{}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		t.Fatalf("decode %q: %v", raw, err)
	}
	return out
}

func TestSettingsOmitZeroValues(t *testing.T) {
	got := decodeSettings(t, Settings{Separator: DefaultSeparator})
	if diff := cmp.Diff(map[string]any{"multiple": false}, got); diff != "" {
		t.Fatalf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestSettingsFullObject(t *testing.T) {
	closeOnSelect := false
	got := decodeSettings(t, Settings{
		Multiple:             true,
		Placeholder:          "</script>",
		AllowClear:           true,
		MinimumInputLength:   2,
		MaximumSelectionSize: 5,
		CloseOnSelect:        &closeOnSelect,
		Width:                " 100% ",
		Separator:            "|",
		Ajax:                 &AjaxSettings{URL: " /lookup "},
	})
	want := map[string]any{
		"multiple":             true,
		"placeholder":          "</script>",
		"allowClear":           true,
		"minimumInputLength":   float64(2),
		"maximumSelectionSize": float64(5),
		"closeOnSelect":        false,
		"width":                "100%",
		"separator":            "|",
		"ajax": map[string]any{
			"url":         "/lookup",
			"dataType":    "json",
			"quietMillis": float64(DefaultQuietMillis),
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestSettingsToJSONEscapesScriptTerminators(t *testing.T) {
	raw, err := Settings{Placeholder: "</script>"}.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	for _, forbidden := range []string{"<", ">"} {
		for _, r := range raw {
			if string(r) == forbidden {
				t.Fatalf("expected %q escaped in %s", forbidden, raw)
			}
		}
	}
}

func TestSettingsCloneIsDeep(t *testing.T) {
	flag := true
	original := Settings{CloseOnSelect: &flag, Ajax: &AjaxSettings{URL: "/a"}}
	clone := original.Clone()
	*clone.CloseOnSelect = false
	clone.Ajax.URL = "/b"

	if !*original.CloseOnSelect || original.Ajax.URL != "/a" {
		t.Fatalf("clone shares state with original: %#v", original)
	}
	if got := (Settings{}).SeparatorOrDefault(); got != DefaultSeparator {
		t.Fatalf("SeparatorOrDefault() = %q", got)
	}
}
