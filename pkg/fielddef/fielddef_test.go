package fielddef_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-select2/pkg/choice"
	"github.com/goliatone/go-select2/pkg/fielddef"
	"github.com/goliatone/go-select2/pkg/select2"
)

const tagsYAML = `
fields:
  tags:
    label: Tags
    markupId: post-tags
    settings:
      placeholder: Pick tags
      maximumSelectionSize: 3
    choices:
      - {id: go, text: Go}
      - {id: rust, text: Rust}
      - {id: zig}
  languages:
    match: all
    remote:
      url: /api/languages
      pageSize: 1
    choices:
      - {id: en, text: English}
      - {id: fr, text: French}
`

const ownerJSON = `{
  "fields": {
    "owner": {
      "name": "post[owner]",
      "remote": {"url": "/api/users", "provider": "users"}
    }
  }
}`

func loadStore(t *testing.T) *fielddef.Store {
	t.Helper()
	store, err := fielddef.LoadFS(fstest.MapFS{
		"defs/tags.yaml":  {Data: []byte(tagsYAML)},
		"defs/owner.json": {Data: []byte(ownerJSON)},
		"defs/README.md":  {Data: []byte("ignored")},
	})
	if err != nil {
		t.Fatalf("LoadFS: %v", err)
	}
	return store
}

func TestLoadFSParsesDefinitions(t *testing.T) {
	store := loadStore(t)

	if diff := cmp.Diff([]string{"languages", "owner", "tags"}, store.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}

	tags, ok := store.Definition("tags")
	if !ok {
		t.Fatalf("tags definition missing")
	}
	if tags.Name != "tags" || tags.MarkupID != "post-tags" || tags.Source != "defs/tags.yaml" {
		t.Fatalf("unexpected tags definition: %#v", tags)
	}
	if tags.Settings.Placeholder != "Pick tags" || tags.Settings.MaximumSelectionSize != 3 {
		t.Fatalf("settings not decoded: %#v", tags.Settings)
	}
	wantChoices := []choice.Option{{ID: "go", Text: "Go"}, {ID: "rust", Text: "Rust"}, {ID: "zig", Text: "zig"}}
	if diff := cmp.Diff(wantChoices, tags.Choices); diff != "" {
		t.Fatalf("choices mismatch (-want +got):\n%s", diff)
	}
	if tags.IsRemote() {
		t.Fatalf("tags should be local")
	}

	owner, _ := store.Definition("owner")
	if owner.Name != "post[owner]" || owner.Remote == nil || owner.Remote.Provider != "users" {
		t.Fatalf("unexpected owner definition: %#v", owner)
	}

	languages, _ := store.Definition("languages")
	if languages.Match != select2.MatchAll {
		t.Fatalf("expected match-all strategy, got %v", languages.Match)
	}
}

func TestLoadFSErrors(t *testing.T) {
	cases := map[string]string{
		"empty file":      "   ",
		"bad syntax":      "fields: [",
		"unknown match":   "fields:\n  a:\n    match: fuzzy\n",
		"blank choice id": "fields:\n  a:\n    choices:\n      - {text: x}\n",
		"remote no url":   "fields:\n  a:\n    remote: {provider: p}\n",
		"remote no data":  "fields:\n  a:\n    remote: {url: /x}\n",
		"repeat with all": "fields:\n  a:\n    match: all\n    choices: [{id: x}, {id: x}]\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := fielddef.LoadFS(fstest.MapFS{"bad.yaml": {Data: []byte(body)}})
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), "fielddef:") || !strings.Contains(err.Error(), "bad.yaml") {
				t.Fatalf("expected prefixed error naming the file, got %v", err)
			}
		})
	}
}

func TestLoadFSDuplicateAcrossFiles(t *testing.T) {
	_, err := fielddef.LoadFS(fstest.MapFS{
		"a.yaml": {Data: []byte("fields:\n  tags:\n    choices: [{id: x}]\n")},
		"b.yml":  {Data: []byte("fields:\n  tags:\n    choices: [{id: y}]\n")},
	})
	if err == nil || !strings.Contains(err.Error(), "duplicate field") {
		t.Fatalf("expected duplicate field error, got %v", err)
	}
}

func TestLoadFSNil(t *testing.T) {
	store, err := fielddef.LoadFS(nil)
	if err != nil {
		t.Fatalf("LoadFS(nil): %v", err)
	}
	if !store.Empty() {
		t.Fatalf("expected empty store")
	}
}

func TestBuildLocalField(t *testing.T) {
	store := loadStore(t)
	def, _ := store.Definition("tags")

	model := select2.NewValueModel[choice.Option]()
	field, err := fielddef.NewBuilder().Build(def, model)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if field.QueryHandler() != nil || field.QueryURL() != "" {
		t.Fatalf("local field should not expose a query endpoint")
	}
	if !field.Settings().Multiple || field.MarkupID() != "post-tags" {
		t.Fatalf("field not initialised: %#v", field.Settings())
	}

	if err := field.ConvertInput(context.Background(), select2.Values(url.Values{"tags": {"zig,go"}})); err != nil {
		t.Fatalf("ConvertInput: %v", err)
	}
	field.UpdateModel()
	want := []choice.Option{{ID: "go", Text: "Go"}, {ID: "zig", Text: "zig"}}
	if diff := cmp.Diff(want, model.Read()); diff != "" {
		t.Fatalf("model mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildRemoteFieldWithInlineChoices(t *testing.T) {
	store := loadStore(t)
	def, _ := store.Definition("languages")

	field, err := fielddef.NewBuilder().Build(def, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if field.QueryURL() != "/api/languages" {
		t.Fatalf("unexpected query url %q", field.QueryURL())
	}

	rec := httptest.NewRecorder()
	field.QueryHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/languages", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload struct {
		Results []choice.Option `json:"results"`
		More    bool            `json:"more"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Results) != 1 || !payload.More {
		t.Fatalf("expected a single paged result, got %#v", payload)
	}

	if err := field.ConvertInput(context.Background(), select2.Values(url.Values{"languages": {"fr,xx"}})); err != nil {
		t.Fatalf("ConvertInput: %v", err)
	}
	got, _ := field.ConvertedInput()
	if diff := cmp.Diff([]choice.Option{{ID: "fr", Text: "French"}}, got); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildRemoteFieldWithNamedProvider(t *testing.T) {
	store := loadStore(t)
	def, _ := store.Definition("owner")

	if _, err := fielddef.NewBuilder().Build(def, nil); err == nil {
		t.Fatalf("expected unknown provider error")
	}

	users, err := choice.NewStaticProvider([]choice.Option{{ID: "u1", Text: "Ada"}}, choice.OptionRenderer)
	if err != nil {
		t.Fatalf("NewStaticProvider: %v", err)
	}
	field, err := fielddef.NewBuilder(fielddef.WithProvider("users", users)).Build(def, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if field.InputName() != "post[owner]" {
		t.Fatalf("unexpected input name %q", field.InputName())
	}
	if settings := field.Settings(); settings.Ajax == nil || settings.Ajax.URL != "/api/users" {
		t.Fatalf("expected ajax settings, got %#v", settings.Ajax)
	}
}

func TestBuildAll(t *testing.T) {
	users, err := choice.NewStaticProvider([]choice.Option{{ID: "u1", Text: "Ada"}}, choice.OptionRenderer)
	if err != nil {
		t.Fatalf("NewStaticProvider: %v", err)
	}
	fields, err := fielddef.NewBuilder(fielddef.WithProvider("users", users)).BuildAll(loadStore(t))
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	var names []string
	for _, f := range fields {
		names = append(names, f.Definition.Key)
	}
	if diff := cmp.Diff([]string{"languages", "owner", "tags"}, names); diff != "" {
		t.Fatalf("build order mismatch (-want +got):\n%s", diff)
	}
}
