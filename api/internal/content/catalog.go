// Package content holds the disease and medicine pages that predictions link to.
package content

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"medassist/api/internal/flow"
)

//go:embed catalog.yaml
var builtin []byte

type Kind string

const (
	Diseases  Kind = "diseases"
	Medicines Kind = "medicines"
)

type Link struct {
	Name        string `yaml:"name,omitempty" json:"name,omitempty"`
	Title       string `yaml:"title,omitempty" json:"title,omitempty"`
	URL         string `yaml:"url,omitempty" json:"url,omitempty"`
	Link        string `yaml:"link,omitempty" json:"link,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Page is one content entry. Its slug is derived from Name with the same rule the
// prediction links use.
type Page struct {
	Slug        string   `yaml:"-" json:"slug"`
	Kind        Kind     `yaml:"-" json:"kind"`
	Name        string   `yaml:"name" json:"name"`
	Summary     string   `yaml:"summary" json:"summary"`
	Causes      []string `yaml:"causes,omitempty" json:"causes,omitempty"`
	Symptoms    []string `yaml:"symptoms,omitempty" json:"symptoms,omitempty"`
	Treatment   []string `yaml:"treatment,omitempty" json:"treatment,omitempty"`
	Medications []Link   `yaml:"medications,omitempty" json:"medications,omitempty"`
	Resources   []Link   `yaml:"resources,omitempty" json:"resources,omitempty"`
	Ingredients []string `yaml:"ingredients,omitempty" json:"ingredients,omitempty"`
	Indications []string `yaml:"indications,omitempty" json:"indications,omitempty"`
	Dosage      []string `yaml:"dosage,omitempty" json:"dosage,omitempty"`
	SideEffects []string `yaml:"side_effects,omitempty" json:"side_effects,omitempty"`
	Precautions []string `yaml:"precautions,omitempty" json:"precautions,omitempty"`
}

func (p Page) Path() string { return "/" + string(p.Kind) + "/" + p.Slug }

type Catalog struct {
	pages map[Kind]map[string]Page
}

type catalogFile struct {
	Diseases  []Page `yaml:"diseases"`
	Medicines []Page `yaml:"medicines"`
}

// Builtin returns the embedded catalog.
func Builtin() (*Catalog, error) { return Parse(builtin) }

// Load reads a catalog file; an empty path means the embedded one.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Builtin()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(b)
}

func Parse(b []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	c := &Catalog{pages: map[Kind]map[string]Page{
		Diseases:  {},
		Medicines: {},
	}}
	if err := c.add(Diseases, f.Diseases); err != nil {
		return nil, err
	}
	if err := c.add(Medicines, f.Medicines); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) add(kind Kind, pages []Page) error {
	for _, p := range pages {
		if p.Name == "" {
			return fmt.Errorf("catalog: %s entry without name", kind)
		}
		p.Kind = kind
		p.Slug = flow.Slug(p.Name)
		if _, dup := c.pages[kind][p.Slug]; dup {
			return fmt.Errorf("catalog: duplicate %s slug %q", kind, p.Slug)
		}
		c.pages[kind][p.Slug] = p
	}
	return nil
}

func (c *Catalog) Lookup(kind Kind, slug string) (Page, bool) {
	p, ok := c.pages[kind][slug]
	return p, ok
}

// Slugs lists the pages of one kind in order.
func (c *Catalog) Slugs(kind Kind) []string {
	out := make([]string, 0, len(c.pages[kind]))
	for s := range c.pages[kind] {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
