// Package library holds the catalog of government forms offered for selection.
package library

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ZaguanLabs/formlingo"
)

//go:embed forms.yaml
var defaultCatalog []byte

// AllFilter is the filter value that matches every category or state.
const AllFilter = "all"

// Catalog is an immutable, ordered list of library forms.
type Catalog struct {
	forms  []formlingo.FormMetadata
	byPath map[string]int
}

type catalogFile struct {
	Forms []formlingo.FormMetadata `yaml:"forms"`
}

// Default returns the built-in catalog. It panics if the embedded file is invalid.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("library: embedded catalog: %v", err))
	}
	return c
}

// Load reads a catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("library: read %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("library: %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc catalogFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return New(doc.Forms)
}

// New builds a catalog from forms, requiring a name and a unique FilePath on each.
func New(forms []formlingo.FormMetadata) (*Catalog, error) {
	c := &Catalog{
		forms:  make([]formlingo.FormMetadata, 0, len(forms)),
		byPath: make(map[string]int, len(forms)),
	}

	for i, f := range forms {
		if strings.TrimSpace(f.Name) == "" {
			return nil, fmt.Errorf("form %d: name is required", i)
		}
		if strings.TrimSpace(f.FilePath) == "" {
			return nil, fmt.Errorf("form %q: filePath is required", f.Name)
		}
		if _, dup := c.byPath[f.FilePath]; dup {
			return nil, fmt.Errorf("form %q: duplicate filePath %s", f.Name, f.FilePath)
		}
		c.byPath[f.FilePath] = len(c.forms)
		c.forms = append(c.forms, f)
	}

	return c, nil
}

// Forms returns every entry in catalog order.
func (c *Catalog) Forms() []formlingo.FormMetadata {
	out := make([]formlingo.FormMetadata, len(c.forms))
	copy(out, c.forms)
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.forms)
}

// Find returns the entry whose FilePath equals filePath.
func (c *Catalog) Find(filePath string) (formlingo.FormMetadata, bool) {
	i, ok := c.byPath[filePath]
	if !ok {
		return formlingo.FormMetadata{}, false
	}
	return c.forms[i], true
}

// Query narrows the catalog. Empty fields and AllFilter match everything.
type Query struct {
	Search   string // case-insensitive substring of name or description
	Category string
	State    string
}

// Filter returns the entries matching q, in catalog order.
func (c *Catalog) Filter(q Query) []formlingo.FormMetadata {
	term := strings.ToLower(strings.TrimSpace(q.Search))

	var out []formlingo.FormMetadata
	for _, f := range c.forms {
		if term != "" &&
			!strings.Contains(strings.ToLower(f.Name), term) &&
			!strings.Contains(strings.ToLower(f.Description), term) {
			continue
		}
		if !matchesFilter(q.Category, f.Category) || !matchesFilter(q.State, f.State) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Categories returns the distinct categories in first-seen order.
func (c *Catalog) Categories() []string {
	return c.distinct(func(f formlingo.FormMetadata) string { return f.Category })
}

// States returns the distinct states in first-seen order.
func (c *Catalog) States() []string {
	return c.distinct(func(f formlingo.FormMetadata) string { return f.State })
}

func (c *Catalog) distinct(key func(formlingo.FormMetadata) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range c.forms {
		k := key(f)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

func matchesFilter(filter, value string) bool {
	return filter == "" || filter == AllFilter || filter == value
}

// Verify Catalog implements formlingo.Catalog
var _ formlingo.Catalog = (*Catalog)(nil)
