package settings

import "sort"

// Catalog is the ordered, immutable set of option descriptors a store and
// resolver share. Declaration order is preserved for listings.
type Catalog struct {
	order  []string
	byID   map[string]Descriptor
	groups []string
}

// NewCatalog validates descriptors and indexes them by id.
func NewCatalog(descriptors ...Descriptor) (*Catalog, error) {
	c := &Catalog{
		order: make([]string, 0, len(descriptors)),
		byID:  make(map[string]Descriptor, len(descriptors)),
	}
	seenGroup := map[string]struct{}{}
	for _, d := range descriptors {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, exists := c.byID[d.ID]; exists {
			return nil, &OptionError{Op: "catalog", ID: d.ID, Err: ErrDuplicateOption}
		}
		c.byID[d.ID] = d
		c.order = append(c.order, d.ID)
		if _, ok := seenGroup[d.Group]; !ok && d.Group != "" {
			seenGroup[d.Group] = struct{}{}
			c.groups = append(c.groups, d.Group)
		}
	}
	return c, nil
}

// MustCatalog is NewCatalog that panics on invalid declarations. Intended for
// package-level tables.
func MustCatalog(descriptors ...Descriptor) *Catalog {
	c, err := NewCatalog(descriptors...)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the descriptor registered under id.
func (c *Catalog) Lookup(id string) (Descriptor, bool) {
	if c == nil {
		return Descriptor{}, false
	}
	d, ok := c.byID[id]
	return d, ok
}

// Has reports whether id is part of the catalog.
func (c *Catalog) Has(id string) bool {
	_, ok := c.Lookup(id)
	return ok
}

// IDs returns option ids in declaration order.
func (c *Catalog) IDs() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.order...)
}

// Len returns the number of options.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}

// Groups returns group names in first-declared order.
func (c *Catalog) Groups() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.groups...)
}

// Group returns the descriptors of group in declaration order.
func (c *Catalog) Group(name string) []Descriptor {
	if c == nil {
		return nil
	}
	var out []Descriptor
	for _, id := range c.order {
		if d := c.byID[id]; d.Group == name {
			out = append(out, d)
		}
	}
	return out
}

// FieldDescriptor summarizes one option for schema listings.
type FieldDescriptor struct {
	Path    string `json:"path"`
	Type    string `json:"type"`
	Group   string `json:"group,omitempty"`
	Domain  string `json:"domain"`
	Default string `json:"default"`
}

// Describe lists every option sorted by id.
func (c *Catalog) Describe() []FieldDescriptor {
	if c == nil {
		return []FieldDescriptor{}
	}
	ids := c.IDs()
	sort.Strings(ids)
	out := make([]FieldDescriptor, 0, len(ids))
	for _, id := range ids {
		d := c.byID[id]
		out = append(out, FieldDescriptor{
			Path:    id,
			Type:    d.Kind.String(),
			Group:   d.Group,
			Domain:  d.Domain(),
			Default: d.DefaultValue().Raw(),
		})
	}
	return out
}

func (c *Catalog) mustLookup(op, id string) (Descriptor, error) {
	d, ok := c.Lookup(id)
	if !ok {
		return Descriptor{}, unknownOption(op, id)
	}
	return d, nil
}

func (c *Catalog) requireAll(op string, ids ...string) error {
	for _, id := range ids {
		if !c.Has(id) {
			return unknownOption(op, id)
		}
	}
	return nil
}
