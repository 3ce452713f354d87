// Package seed loads the starting record collections. Every module has a YAML
// file named after it; files in an override directory win over the copies
// embedded in the binary.
package seed

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var embedded embed.FS

// Pattern matches seed files in a directory
const Pattern = "*.{yaml,yml}"

// Embedded returns the seed files compiled into the binary
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		panic(err)
	}
	return sub
}

// Source resolves a module's seed file, preferring the override directory.
type Source struct {
	dir      string
	override fs.FS
	base     fs.FS
}

// NewSource layers dir over the embedded seeds. An empty dir uses only the
// embedded files.
func NewSource(dir string) *Source {
	s := &Source{dir: dir, base: Embedded()}
	if dir != "" {
		s.override = os.DirFS(dir)
	}
	return s
}

// Dir returns the override directory
func (s *Source) Dir() string { return s.dir }

// Read returns the raw YAML for module and the name of the file it came from.
func (s *Source) Read(module string) ([]byte, string, error) {
	if s.override != nil {
		for _, ext := range []string{".yaml", ".yml"} {
			name := module + ext
			data, err := fs.ReadFile(s.override, name)
			if err == nil {
				return data, path.Join(s.dir, name), nil
			}
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, "", fmt.Errorf("read seed %s: %w", name, err)
			}
		}
	}
	name := module + ".yaml"
	data, err := fs.ReadFile(s.base, name)
	if err != nil {
		return nil, "", fmt.Errorf("no seed for module %s: %w", module, err)
	}
	return data, "embedded:" + name, nil
}

// Modules lists the modules that have a seed file in either layer.
func (s *Source) Modules() ([]string, error) {
	seen := map[string]bool{}
	for _, fsys := range []fs.FS{s.base, s.override} {
		if fsys == nil {
			continue
		}
		matches, err := doublestar.Glob(fsys, Pattern)
		if err != nil {
			return nil, fmt.Errorf("list seeds: %w", err)
		}
		for _, m := range matches {
			seen[ModuleOf(m)] = true
		}
	}
	out := make([]string, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	sort.Strings(out)
	return out, nil
}

// JSON returns module's seed as a JSON array.
func (s *Source) JSON(module string) ([]byte, error) {
	data, name, err := s.Read(module)
	if err != nil {
		return nil, err
	}
	out, err := ToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// Load decodes module's seed into records of type T.
func Load[T any](src *Source, module string) ([]T, error) {
	data, err := src.JSON(module)
	if err != nil {
		return nil, err
	}
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s seed: %w", module, err)
	}
	return records, nil
}

// ToJSON converts a YAML list of records into a JSON array. Record fields keep
// the names the JSON codec expects, so the record types need no yaml tags.
func ToJSON(data []byte) ([]byte, error) {
	var records []map[string]any
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse seed yaml: %w", err)
	}
	if records == nil {
		records = []map[string]any{}
	}
	out, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode seed json: %w", err)
	}
	return out, nil
}

// ModuleOf returns the module a seed file belongs to
func ModuleOf(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}
