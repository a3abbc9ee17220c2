// Package selector implements the predicate-driven candidate selection used
// by the resolver: choosing among multiple candidates for one abstract name
// using install state, architecture priority, version, and a caller-
// supplied predicate.
package selector

import (
	"github.com/oaklab-go/opkgmeta/catalog"
)

// Predicate decides whether a candidate package is acceptable for a query.
type Predicate = catalog.Predicate

// Selector wraps a Catalog with the installed-state-aware queries the
// resolver needs, on top of the catalog's own candidate lookup.
type Selector struct {
	cat *catalog.Catalog
}

// New wraps a Catalog for candidate selection.
func New(cat *catalog.Catalog) *Selector {
	return &Selector{cat: cat}
}

// Catalog returns the underlying catalog.
func (s *Selector) Catalog() *catalog.Catalog {
	return s.cat
}

// FetchInstalled returns the installed package for an abstract name, if
// any. Only the package's own name is considered, not virtual providers:
// an installed provider of a virtual name does not count as that virtual
// name being "installed" here.
func (s *Selector) FetchInstalled(name string) *catalog.Pkg {
	abs, ok := s.cat.Lookup(name)
	if !ok {
		return nil
	}
	for _, p := range abs.Pkgs {
		if p.StateStatus == catalog.StatusInstalled {
			return p
		}
	}
	return nil
}

// FetchAllInstalled returns every installed package across the whole
// catalog.
func (s *Selector) FetchAllInstalled() []*catalog.Pkg {
	var out []*catalog.Pkg
	for _, p := range s.cat.AllPkgs() {
		if p.StateStatus == catalog.StatusInstalled {
			out = append(out, p)
		}
	}
	return out
}

// FetchBestInstallationCandidate delegates to the catalog's candidate
// lookup; it exists on Selector too so callers that only hold a Selector
// (the resolver's usual case) do not need to reach into the catalog
// directly.
func (s *Selector) FetchBestInstallationCandidate(abs *catalog.AbsPkg, predicate Predicate) *catalog.Pkg {
	return s.cat.FetchBestInstallationCandidate(abs, predicate)
}

// Installed builds a predicate that requires both installed status and an
// inner version/constraint predicate.
func Installed(inner Predicate) Predicate {
	return func(p *catalog.Pkg) bool {
		return p.StateStatus == catalog.StatusInstalled && (inner == nil || inner(p))
	}
}

// Any accepts every candidate; used as the base predicate when no
// constraint narrowing is required.
func Any(*catalog.Pkg) bool {
	return true
}
