package source

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/vvka-141/xmlload/pkg/xmlload"
)

// Locator finds and opens the dump file of a table inside a dump directory.
type Locator struct {
	fsys      fs.FS
	overrides map[string]string
}

// NewLocator creates a Locator over fsys. overrides maps a table name
// (any case) to a file path relative to the dump directory and may be nil.
func NewLocator(fsys fs.FS, overrides map[string]string) *Locator {
	normalized := make(map[string]string, len(overrides))
	for table, file := range overrides {
		normalized[strings.ToLower(table)] = file
	}
	return &Locator{fsys: fsys, overrides: normalized}
}

// Resolve returns the path of the file to read for def.
// A configured override wins; otherwise def.Source is tried as is and then
// with each compressed suffix.
func (l *Locator) Resolve(def xmlload.TableDefinition) (string, error) {
	if override, ok := l.overrides[strings.ToLower(def.Name)]; ok && override != "" {
		name := path.Clean(filepath.ToSlash(override))
		if !fs.ValidPath(name) {
			return "", fmt.Errorf("source for table %q must be relative to the dump directory, got %q: %w", def.Name, override, xmlload.ErrInvalidConfig)
		}
		if _, err := fs.Stat(l.fsys, name); err != nil {
			return "", fmt.Errorf("%w: %s (configured for table %q)", xmlload.ErrSourceNotFound, override, def.Name)
		}
		return name, nil
	}

	base := def.Source
	if base == "" {
		return "", fmt.Errorf("table %q has no source file: %w", def.Name, xmlload.ErrInvalidConfig)
	}

	candidates := make([]string, 0, len(CompressedSuffixes)+1)
	candidates = append(candidates, base)
	for _, suffix := range CompressedSuffixes {
		candidates = append(candidates, base+suffix)
	}

	for _, name := range candidates {
		_, err := fs.Stat(l.fsys, name)
		if err == nil {
			return name, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to stat %s: %w", name, err)
		}
	}

	return "", fmt.Errorf("%w: %s (also tried %v)", xmlload.ErrSourceNotFound, base, CompressedSuffixes)
}

// Open resolves and opens the source of def. The returned closer releases
// the file and any decompressor.
func (l *Locator) Open(def xmlload.TableDefinition) (xmlload.RecordSource, io.Closer, error) {
	name, err := l.Resolve(def)
	if err != nil {
		return nil, nil, err
	}

	rc, err := OpenFile(l.fsys, name)
	if err != nil {
		return nil, nil, err
	}

	return NewXMLSource(rc, name), rc, nil
}
