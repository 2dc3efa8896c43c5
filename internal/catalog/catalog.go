package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Picker draws a uniform integer in [0, n).
type Picker interface {
	Below(n int) int
}

type key struct {
	name  string
	class string
}

// Catalog is a read-only set of templates. The zero value is an empty catalog.
type Catalog struct {
	templates []*Template
	index     map[key]*Template
}

// file is the on-disk layout of one catalog file.
type file struct {
	Templates []Template `yaml:"templates"`
}

// New builds a catalog from templates, rejecting invalid or duplicate entries.
func New(templates ...Template) (*Catalog, error) {
	c := &Catalog{index: make(map[key]*Template, len(templates))}
	for i := range templates {
		t := templates[i]
		if err := t.Validate(); err != nil {
			return nil, err
		}
		k := key{t.Name, t.BuildingClass}
		if _, dup := c.index[k]; dup {
			return nil, fmt.Errorf("duplicate template %q for class %q", t.Name, t.BuildingClass)
		}
		c.templates = append(c.templates, &t)
		c.index[k] = &t
	}
	return c, nil
}

// Parse decodes the templates of one YAML catalog file.
func Parse(data []byte) ([]Template, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return f.Templates, nil
}

// Load reads every *.yaml / *.yml file in dir, in name order.
func Load(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read catalog dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if !e.IsDir() && (ext == ".yaml" || ext == ".yml") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var all []Template
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		templates, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		all = append(all, templates...)
	}
	return New(all...)
}

// LoadOrEmpty loads the catalog in dir. Any failure is logged and yields an
// empty catalog, so lookups simply miss.
func LoadOrEmpty(dir string) *Catalog {
	c, err := Load(dir)
	if err != nil {
		slog.Error("event catalog load failed, using empty catalog", "dir", dir, "error", err)
		return &Catalog{}
	}
	slog.Info("event catalog loaded", "dir", dir, "templates", c.Len())
	return c
}

// Lookup finds the template for an event kind in a building class.
func (c *Catalog) Lookup(name, buildingClass string) (*Template, bool) {
	if c == nil || c.index == nil {
		return nil, false
	}
	t, ok := c.index[key{name, buildingClass}]
	return t, ok
}

// RandomFor picks uniformly among the random-capable templates of a building class.
func (c *Catalog) RandomFor(buildingClass string, p Picker) (*Template, bool) {
	if c == nil {
		return nil, false
	}
	var candidates []*Template
	for _, t := range c.templates {
		if t.BuildingClass == buildingClass && t.SupportsRandomEvents {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return nil, false
	}
	return candidates[p.Below(len(candidates))], true
}

// Len returns the number of templates.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.templates)
}

// Classes returns the building classes that have at least one template.
func (c *Catalog) Classes() []string {
	if c == nil {
		return nil
	}
	seen := make(map[string]bool)
	var classes []string
	for _, t := range c.templates {
		if !seen[t.BuildingClass] {
			seen[t.BuildingClass] = true
			classes = append(classes, t.BuildingClass)
		}
	}
	return classes
}
