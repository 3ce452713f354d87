package migration

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

// Dialects are the migration trees kept side by side under the migrations root.
var Dialects = []string{"postgres", "sqlite"}

const upTemplate = `-- Migration: {{.Name}} ({{.Dialect}})
-- Created: {{.Timestamp}}

`

const downTemplate = `-- Migration: {{.Name}} rollback ({{.Dialect}})
-- Created: {{.Timestamp}}

`

// MigrationFile describes one created up/down pair
type MigrationFile struct {
	Version   uint
	Name      string
	Dialect   string
	Timestamp string
	UpPath    string
	DownPath  string
}

// CreateMigration writes an empty up/down pair for every dialect under root,
// numbered one past the highest existing version.
func CreateMigration(root, name string) ([]MigrationFile, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}

	next := uint(1)
	for _, dialect := range Dialects {
		names, err := ListMigrations(os.DirFS(filepath.Join(root, dialect)))
		if err != nil {
			return nil, err
		}
		for _, n := range names {
			if v := versionOf(n); v >= next {
				next = v + 1
			}
		}
	}

	created := make([]MigrationFile, 0, len(Dialects))
	for _, dialect := range Dialects {
		dir := filepath.Join(root, dialect)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create migrations directory: %w", err)
		}
		base := fmt.Sprintf("%06d_%s", next, slug)
		mf := MigrationFile{
			Version:   next,
			Name:      slug,
			Dialect:   dialect,
			Timestamp: time.Now().Format(time.RFC3339),
			UpPath:    filepath.Join(dir, base+".up.sql"),
			DownPath:  filepath.Join(dir, base+".down.sql"),
		}
		if err := writeTemplate(mf.UpPath, upTemplate, mf); err != nil {
			return nil, err
		}
		if err := writeTemplate(mf.DownPath, downTemplate, mf); err != nil {
			_ = os.Remove(mf.UpPath)
			return nil, err
		}
		created = append(created, mf)
	}
	return created, nil
}

func writeTemplate(path, text string, data MigrationFile) error {
	tmpl, err := template.New("migration").Parse(text)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}

// sanitizeName lowercases name and collapses separators into single underscores
func sanitizeName(name string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		case r == ' ' || r == '-' || r == '_':
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// ListMigrations returns the base names of the up migrations in fsys, sorted.
// A missing directory yields an empty list.
func ListMigrations(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if base, ok := strings.CutSuffix(entry.Name(), ".up.sql"); ok {
			names = append(names, base)
		}
	}
	sort.Strings(names)
	return names, nil
}

func versionOf(base string) uint {
	digits, _, _ := strings.Cut(base, "_")
	v, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0
	}
	return uint(v)
}
