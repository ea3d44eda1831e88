package template_test

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-select2/pkg/render/template/gotemplate"
	"github.com/goliatone/go-select2/pkg/testsupport"
)

func newEngine(t *testing.T) *gotemplate.Engine {
	t.Helper()

	files := fstest.MapFS{
		"hello.tpl":      {Data: []byte("Hello {{ name }}!")},
		"use-global.tpl": {Data: []byte("env={{ settings.env }}")},
		"use-filter.tpl": {Data: []byte("{{ name|shout_adapter_test }}")},
		"escape.tpl":     {Data: []byte(`<input value="{{ value }}">`)},
	}
	engine, err := gotemplate.New(gotemplate.WithFS(files))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestGoTemplateEngine_RenderTemplate(t *testing.T) {
	engine := newEngine(t)

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("hello", map[string]any{"name": "Ada"}, w)
	})
	if result != "Hello Ada!" {
		t.Fatalf("unexpected result %q", result)
	}
	if written != result {
		t.Fatalf("writer mismatch: %q", written)
	}
}

func TestGoTemplateEngine_AutoescapesValues(t *testing.T) {
	engine := newEngine(t)
	result, err := engine.RenderTemplate("escape", map[string]any{"value": `"><script>`})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(result, "<script>") {
		t.Fatalf("expected value to be escaped, got %q", result)
	}
}

func TestGoTemplateEngine_GlobalContext(t *testing.T) {
	engine := newEngine(t)
	if err := engine.GlobalContext(map[string]any{
		"settings": map[string]any{"env": "staging"},
	}); err != nil {
		t.Fatalf("global context: %v", err)
	}

	result, err := engine.RenderTemplate("use-global", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "env=staging" {
		t.Fatalf("unexpected result %q", result)
	}
}

func TestGoTemplateEngine_RegisterFilter(t *testing.T) {
	engine := newEngine(t)
	err := engine.RegisterFilter("shout_adapter_test", func(input any, _ any) (any, error) {
		return fmt.Sprintf("%s!", strings.ToUpper(fmt.Sprint(input))), nil
	})
	if err != nil {
		t.Fatalf("register filter: %v", err)
	}

	result, err := engine.RenderTemplate("use-filter", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "ADA!" {
		t.Fatalf("unexpected result %q", result)
	}
}

func TestGoTemplateEngine_RenderString(t *testing.T) {
	engine := newEngine(t)
	result, err := engine.Render("{{ a }}-{{ b }}", struct {
		A string `json:"a"`
		B string `json:"b"`
	}{A: "x", B: "2"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "x-2" {
		t.Fatalf("unexpected result %q", result)
	}
}

func TestGoTemplateEngine_RequiresSource(t *testing.T) {
	if _, err := gotemplate.New(); err == nil {
		t.Fatalf("expected error without base dir or fs")
	}
}

func TestGoTemplateEngine_WithGlobalData(t *testing.T) {
	files := fstest.MapFS{
		"page.tpl": {Data: []byte("{{ title }}: {{ body }}")},
	}
	engine, err := gotemplate.New(
		gotemplate.WithFS(files),
		gotemplate.WithGlobalData(map[string]any{" title ": "Fields"}),
	)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	result, err := engine.RenderTemplate("page", map[string]any{"body": "ok"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "Fields: ok" {
		t.Fatalf("unexpected result %q", result)
	}
}

func TestGoTemplateEngine_WithBaseDirTakesPrecedence(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "hello.tpl"), []byte("Disk {{ name }}"), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	files := fstest.MapFS{
		"hello.tpl": {Data: []byte("Bundled {{ name }}")},
		"other.tpl": {Data: []byte("Other {{ name }}")},
	}
	engine, err := gotemplate.New(gotemplate.WithBaseDir(dir), gotemplate.WithFS(files))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	result, err := engine.RenderTemplate("hello", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "Disk Ada" {
		t.Fatalf("unexpected result %q", result)
	}
	result, err = engine.RenderTemplate("other", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "Other Ada" {
		t.Fatalf("unexpected result %q", result)
	}
}

func TestGoTemplateEngine_RequiresSourceBlankBaseDir(t *testing.T) {
	if _, err := gotemplate.New(gotemplate.WithBaseDir("  ")); err == nil {
		t.Fatalf("expected error without a template source")
	}
}
