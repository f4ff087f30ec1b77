// Package labels manages the ordered list of category names. A category id
// is an index into this list.
package labels

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// List is an ordered, duplicate-free list of category names
type List struct {
	names     []string
	nameToIdx map[string]int
}

// New creates a list from names. Blank and repeated names are skipped.
func New(names ...string) *List {
	l := &List{nameToIdx: make(map[string]int)}
	for _, n := range names {
		l.Add(n)
	}
	return l
}

// Load reads a YAML sequence of names. A missing file yields an empty list.
func Load(path string) (*List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, errors.Wrap(err, "failed to read label file")
	}

	var names []string
	if err := yaml.Unmarshal(data, &names); err != nil {
		return nil, errors.Wrapf(err, "failed to parse label file %s", path)
	}
	return New(names...), nil
}

// Save writes the list as a YAML sequence
func (l *List) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "failed to create label directory")
	}
	data, err := yaml.Marshal(l.Names())
	if err != nil {
		return errors.Wrap(err, "failed to marshal labels")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write label file")
	}
	return nil
}

// Len returns the number of labels
func (l *List) Len() int {
	return len(l.names)
}

// Names returns a copy of the names in id order
func (l *List) Names() []string {
	out := make([]string, len(l.names))
	copy(out, l.names)
	return out
}

// Name returns the name for a category id
func (l *List) Name(id int) (string, bool) {
	if id < 0 || id >= len(l.names) {
		return "", false
	}
	return l.names[id], true
}

// Index returns the category id of name
func (l *List) Index(name string) (int, bool) {
	idx, ok := l.nameToIdx[strings.TrimSpace(name)]
	return idx, ok
}

// Valid reports whether id names a label
func (l *List) Valid(id int) bool {
	return id >= 0 && id < len(l.names)
}

// Add appends name and returns its id. Adding a blank or existing name
// returns false and leaves the list unchanged.
func (l *List) Add(name string) (int, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return -1, false
	}
	if idx, ok := l.nameToIdx[name]; ok {
		return idx, false
	}
	l.names = append(l.names, name)
	l.nameToIdx[name] = len(l.names) - 1
	return len(l.names) - 1, true
}

// Rename changes the name of a label in place
func (l *List) Rename(id int, name string) bool {
	name = strings.TrimSpace(name)
	if !l.Valid(id) || name == "" {
		return false
	}
	if other, ok := l.nameToIdx[name]; ok {
		return other == id
	}
	delete(l.nameToIdx, l.names[id])
	l.names[id] = name
	l.nameToIdx[name] = id
	return true
}

// Remove deletes a label. Later labels shift down by one, so existing
// annotations referring to them need relabelling by the caller.
func (l *List) Remove(id int) bool {
	if !l.Valid(id) {
		return false
	}
	l.names = append(l.names[:id], l.names[id+1:]...)
	l.reindex()
	return true
}

func (l *List) reindex() {
	l.nameToIdx = make(map[string]int, len(l.names))
	for i, n := range l.names {
		l.nameToIdx[n] = i
	}
}
