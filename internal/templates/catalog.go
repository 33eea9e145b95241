// Package templates loads and validates project-type step templates: the
// built-in definitions shipped with the binary plus any user-provided JSON
// files. Definitions are validated against a JSON Schema and then
// structurally (unique IDs, resolvable dependencies, acyclic graph) before
// they can back a journey.
package templates

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/marcus/journey-keeper/internal/journey"
)

//go:embed defs/*.json
var builtinDefs embed.FS

// Catalog is a read-only registry of validated templates keyed by ID. It is
// safe to share across journeys; templates are never mutated after load.
type Catalog struct {
	templates map[string]*journey.Template
}

// NewCatalog loads the built-in template definitions.
func NewCatalog() (*Catalog, error) {
	c := &Catalog{templates: make(map[string]*journey.Template)}

	entries, err := builtinDefs.ReadDir("defs")
	if err != nil {
		return nil, fmt.Errorf("failed to read built-in templates: %w", err)
	}
	for _, entry := range entries {
		data, err := builtinDefs.ReadFile("defs/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read built-in template %s: %w", entry.Name(), err)
		}
		if err := c.register(data); err != nil {
			return nil, fmt.Errorf("built-in template %s is invalid: %w", entry.Name(), err)
		}
	}
	return c, nil
}

// LoadDir adds every *.json template definition found in dir. Later
// definitions may not reuse an already-registered template ID.
func (c *Catalog) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read template directory %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", path, err)
		}
		if err := c.register(data); err != nil {
			return fmt.Errorf("template file %s is invalid: %w", path, err)
		}
	}
	return nil
}

// ParseDefinition schema-validates and parses a single definition without
// registering it. Structural validation is left to the caller.
func ParseDefinition(data []byte) (*journey.Template, error) {
	if err := ValidateDefinition(data); err != nil {
		return nil, err
	}

	var tmpl journey.Template
	if err := json.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("failed to parse template JSON: %w", err)
	}
	return &tmpl, nil
}

// register schema-validates, parses, structurally validates, and stores one
// definition.
func (c *Catalog) register(data []byte) error {
	tmpl, err := ParseDefinition(data)
	if err != nil {
		return err
	}
	if err := tmpl.Validate(); err != nil {
		return err
	}
	if _, exists := c.templates[tmpl.ID]; exists {
		return fmt.Errorf("duplicate template id: %s", tmpl.ID)
	}
	c.templates[tmpl.ID] = tmpl
	return nil
}

// Get returns the template registered under id.
func (c *Catalog) Get(id string) (*journey.Template, error) {
	tmpl, ok := c.templates[id]
	if !ok {
		return nil, &journey.UnknownTemplateError{TemplateID: id}
	}
	return tmpl, nil
}

// List returns all registered templates sorted by ID.
func (c *Catalog) List() []*journey.Template {
	out := make([]*journey.Template, 0, len(c.templates))
	for _, tmpl := range c.templates {
		out = append(out, tmpl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
