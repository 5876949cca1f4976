// Package catalog loads permission descriptors from a YAML manifest, keeping
// user-facing permission strings out of application code. A catalog file
// declares an ordered list of permissions:
//
//	permissions:
//	  - id: camera
//	    title: Camera
//	    rationale: Scan receipts and documents.
//	  - id: microphone
//	    title: Microphone
//	    rationale: Record voice notes.
//
// Declaration order is preserved, so a batch built from the catalog prompts
// in the order the file lists.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/go-drift/permissions/pkg/flow"
)

// ErrNotFound is returned when a requested permission id is not declared in
// the catalog.
var ErrNotFound = errors.New("catalog: permission not declared")

// manifest mirrors the YAML file layout.
type manifest struct {
	Permissions []entry `yaml:"permissions"`
}

type entry struct {
	ID        string `yaml:"id"`
	Title     string `yaml:"title"`
	Rationale string `yaml:"rationale,omitempty"`
}

// Catalog is an immutable, ordered set of permission descriptors indexed by
// id. Construct with Load or Parse.
type Catalog struct {
	ordered []flow.Descriptor
	byID    map[flow.ID]flow.Descriptor
}

// Load reads and parses a catalog file. Unlike optional app configuration, a
// catalog is loaded only when explicitly requested, so a missing file is an
// error.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read permissions catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates catalog data. Every entry must carry a
// non-empty id, unique within the file, and a non-empty title.
func Parse(data []byte) (*Catalog, error) {
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse permissions catalog: %w", err)
	}

	c := &Catalog{
		ordered: make([]flow.Descriptor, 0, len(m.Permissions)),
		byID:    make(map[flow.ID]flow.Descriptor, len(m.Permissions)),
	}
	for i, e := range m.Permissions {
		id := flow.ID(strings.TrimSpace(e.ID))
		if id == "" {
			return nil, fmt.Errorf("permissions[%d]: missing id", i)
		}
		if _, dup := c.byID[id]; dup {
			return nil, fmt.Errorf("permissions[%d]: duplicate id %q", i, id)
		}
		title := strings.TrimSpace(e.Title)
		if title == "" {
			return nil, fmt.Errorf("permissions[%d] (%s): missing title", i, id)
		}

		d := flow.Descriptor{
			Permission: id,
			Title:      title,
			Rationale:  strings.TrimSpace(e.Rationale),
		}
		c.ordered = append(c.ordered, d)
		c.byID[id] = d
	}
	return c, nil
}

// Get returns the descriptor declared for id, or ErrNotFound.
func (c *Catalog) Get(id flow.ID) (flow.Descriptor, error) {
	d, ok := c.byID[id]
	if !ok {
		return flow.Descriptor{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return d, nil
}

// Descriptors returns the descriptors for ids, in the order given, ready to
// hand to Coordinator.CheckAndRequestBatch. Any undeclared id fails the whole
// lookup.
func (c *Catalog) Descriptors(ids ...flow.ID) ([]flow.Descriptor, error) {
	out := make([]flow.Descriptor, 0, len(ids))
	for _, id := range ids {
		d, err := c.Get(id)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// All returns every declared descriptor in declaration order.
func (c *Catalog) All() []flow.Descriptor {
	return append([]flow.Descriptor(nil), c.ordered...)
}

// Len reports the number of declared permissions.
func (c *Catalog) Len() int {
	return len(c.ordered)
}
