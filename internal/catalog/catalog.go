// Package catalog holds the canonical service list and resolves free-text
// service mentions against it.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrEmptyCatalog reports a missing or empty service list. This is a
// configuration failure and must never be masked as "service not
// recognized".
var ErrEmptyCatalog = errors.New("catalog: no services configured")

// Catalog is an immutable, ordered set of canonical service names.
type Catalog struct {
	services []string
}

// Parse builds a catalog from newline-delimited text. Blank lines are
// skipped. An empty result is a configuration error reported to the caller.
func Parse(text string) (*Catalog, error) {
	var services []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		services = append(services, line)
	}
	if len(services) == 0 {
		return nil, ErrEmptyCatalog
	}
	return &Catalog{services: services}, nil
}

// Services returns the canonical names in their configured order.
func (c *Catalog) Services() []string {
	out := make([]string, len(c.services))
	copy(out, c.services)
	return out
}

// Len returns the number of services.
func (c *Catalog) Len() int {
	return len(c.services)
}

// BulletList renders the catalog as a sorted bullet list for user-facing
// rejection messages.
func (c *Catalog) BulletList() string {
	sorted := c.Services()
	sort.Strings(sorted)
	var b strings.Builder
	for i, s := range sorted {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- %s", s)
	}
	return b.String()
}
