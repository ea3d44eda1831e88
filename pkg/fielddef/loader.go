package fielddef

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-select2/pkg/select2"
)

// LoadFS walks fsys and parses every JSON/YAML definition file. A nil fsys
// yields an empty store.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := &Store{fields: make(map[string]Definition)}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDefinitionFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("fielddef: read %s: %w", path, err)
		}
		return store.add(data, path)
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Parse reads a single definition document. source names it in errors.
func Parse(data []byte, source string) (*Store, error) {
	store := &Store{fields: make(map[string]Definition)}
	if err := store.add(data, source); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Store) add(data []byte, source string) error {
	doc, err := parseDocument(data, source)
	if err != nil {
		return err
	}
	for rawKey, raw := range doc.Fields {
		key := strings.TrimSpace(rawKey)
		if key == "" {
			return fmt.Errorf("fielddef: file %s defines an empty field key", source)
		}
		if _, exists := s.fields[key]; exists {
			return fmt.Errorf("fielddef: duplicate field %q (file %s)", key, source)
		}
		def, err := normaliseField(raw, key, source)
		if err != nil {
			return err
		}
		s.fields[key] = def
	}
	return nil
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("fielddef: file %s is empty", source)
	}

	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return documentFile{}, fmt.Errorf("fielddef: parse %s: %w", source, err)
	}
	return doc, nil
}

func normaliseField(raw fieldFile, key, source string) (Definition, error) {
	match, err := parseMatch(raw.Match)
	if err != nil {
		return Definition{}, fmt.Errorf("fielddef: field %q (file %s): %w", key, source, err)
	}

	def := Definition{
		Key:      key,
		Source:   source,
		Name:     strings.TrimSpace(raw.Name),
		Label:    strings.TrimSpace(raw.Label),
		MarkupID: strings.TrimSpace(raw.MarkupID),
		Match:    match,
		Settings: raw.Settings.Clone(),
	}
	if def.Name == "" {
		def.Name = key
	}

	seen := make(map[string]struct{}, len(raw.Choices))
	for idx, opt := range raw.Choices {
		id := strings.TrimSpace(opt.ID)
		if id == "" {
			return Definition{}, fmt.Errorf("fielddef: field %q (file %s) choice %d has an empty id", key, source, idx)
		}
		if _, dup := seen[id]; dup && match == select2.MatchAll {
			return Definition{}, fmt.Errorf("fielddef: field %q (file %s) repeats choice id %q", key, source, id)
		}
		seen[id] = struct{}{}
		if opt.Text == "" {
			opt.Text = id
		}
		opt.ID = id
		def.Choices = append(def.Choices, opt)
	}

	if raw.Remote != nil {
		remote := *raw.Remote
		remote.URL = strings.TrimSpace(remote.URL)
		remote.Provider = strings.TrimSpace(remote.Provider)
		if remote.URL == "" {
			return Definition{}, fmt.Errorf("fielddef: field %q (file %s) remote url is required", key, source)
		}
		if remote.Provider == "" && len(def.Choices) == 0 {
			return Definition{}, fmt.Errorf("fielddef: field %q (file %s) remote field needs a provider or choices", key, source)
		}
		def.Remote = &remote
	}
	return def, nil
}

func parseMatch(raw string) (select2.MatchStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "legacy":
		return select2.MatchLegacy, nil
	case "all":
		return select2.MatchAll, nil
	default:
		return select2.MatchLegacy, fmt.Errorf("unknown match strategy %q", raw)
	}
}

func isDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
