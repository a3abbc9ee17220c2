package catalog

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ArchPriorityEntry names one recognized architecture and its tie-break
// weight; higher priority wins when two packages otherwise compare equal.
type ArchPriorityEntry struct {
	Name     string
	Priority int
}

// ArchPriorityTable is the ordered architecture list the catalog and
// selector consult to decide which architectures are visible at all, and
// how to rank candidates that share a name and version. It is constructed
// once per process (or per test) and threaded through explicitly, rather
// than read from a global, so independent catalogs can run side by side.
type ArchPriorityTable struct {
	entries []ArchPriorityEntry
	index   map[string]int
}

// NewArchPriorityTable builds a priority table from an ordered list of
// entries. Earlier entries are not implicitly higher priority; Priority
// values are compared numerically.
func NewArchPriorityTable(entries ...ArchPriorityEntry) *ArchPriorityTable {
	t := &ArchPriorityTable{entries: entries, index: make(map[string]int, len(entries))}
	for i, e := range entries {
		t.index[e.Name] = i
	}
	return t
}

// Priority returns the configured priority for an architecture name, and
// whether it is recognized at all.
func (t *ArchPriorityTable) Priority(name string) (int, bool) {
	i, ok := t.index[name]
	if !ok {
		return 0, false
	}
	return t.entries[i].Priority, true
}

// Recognized reports whether the architecture appears in the table.
// Packages built for an architecture absent from the table are invisible
// to selection.
func (t *ArchPriorityTable) Recognized(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Catalog maintains the bipartite graph of concrete packages and abstract
// names: abs_by_name and the global package list of the source design, plus
// the architecture priority table insertion needs for tie-breaking.
type Catalog struct {
	archPriority *ArchPriorityTable
	log          *zap.Logger
	tracer       trace.Tracer

	absByName  map[string]*AbsPkg
	pkgsGlobal []*Pkg
}

// New creates an empty Catalog. log and tracer may be nil, in which case
// logging and tracing are no-ops.
func New(archPriority *ArchPriorityTable, log *zap.Logger, tracer trace.Tracer) *Catalog {
	if log == nil {
		log = zap.NewNop()
	}
	if tracer == nil {
		tracer = trace.NewNoopTracerProvider().Tracer("catalog")
	}
	return &Catalog{
		archPriority: archPriority,
		log:          log,
		tracer:       tracer,
		absByName:    make(map[string]*AbsPkg),
	}
}

// ArchPriority returns the catalog's architecture priority table.
func (c *Catalog) ArchPriority() *ArchPriorityTable {
	return c.archPriority
}

// EnsureAbstract returns the AbsPkg for name, creating it (and registering
// its self-provision) if this is the first time name has been seen.
func (c *Catalog) EnsureAbstract(name string) *AbsPkg {
	if a, ok := c.absByName[name]; ok {
		return a
	}
	a := newAbsPkg(name)
	c.absByName[name] = a
	return a
}

// Lookup returns the AbsPkg for name without creating it.
func (c *Catalog) Lookup(name string) (*AbsPkg, bool) {
	a, ok := c.absByName[name]
	return a, ok
}

// AllPkgs returns every concrete package ever inserted, in insertion order.
func (c *Catalog) AllPkgs() []*Pkg {
	return c.pkgsGlobal
}

// ResetTraversalMarks clears DependenciesChecked on every abstract package,
// as required before starting a fresh resolver traversal that relies on the
// shared mark rather than a private visited set.
func (c *Catalog) ResetTraversalMarks() {
	for _, a := range c.absByName {
		a.DependenciesChecked = false
	}
}

// Insert interns a concrete package into the catalog, implementing the
// five-step algorithm: ensure the abstract name, resolve (name, version,
// architecture) duplicates by architecture priority, link Provides entries
// into their providers' sets, and link Replaces entries masked by a
// matching Conflicts.
//
// It returns the Pkg that ended up interned under the name: either p, or
// the pre-existing duplicate that won the tie-break.
func (c *Catalog) Insert(ctx context.Context, p *Pkg) (*Pkg, error) {
	_, span := c.tracer.Start(ctx, "catalog.Insert")
	defer span.End()

	a := c.EnsureAbstract(p.Name)

	for i, existing := range a.Pkgs {
		if existing.Version.Compare(p.Version) != 0 {
			continue
		}
		if existing.Architecture.String() != p.Architecture.String() {
			continue
		}

		existingPriority, _ := c.archPriority.Priority(existing.Architecture.String())
		newPriority, _ := c.archPriority.Priority(p.Architecture.String())

		if newPriority > existingPriority {
			p.parent = a
			a.Pkgs[i] = p
			c.replaceGlobal(existing, p)
			c.log.Debug("duplicate package insertion: keeping higher arch priority",
				zap.String("kept", p.ID()), zap.String("discarded", existing.ID()))
			c.linkProvidesAndReplaces(a, p)
			return p, nil
		}

		c.log.Debug("duplicate package insertion ignored", zap.String("package", p.ID()))
		return existing, nil
	}

	p.parent = a
	a.Pkgs = append(a.Pkgs, p)
	c.pkgsGlobal = append(c.pkgsGlobal, p)

	c.linkProvidesAndReplaces(a, p)

	return p, nil
}

func (c *Catalog) linkProvidesAndReplaces(a *AbsPkg, p *Pkg) {
	for _, provided := range p.Provides {
		q := c.EnsureAbstract(provided)
		q.ProvidedBy.Add(a.Name, a)
	}

	for _, replaced := range p.Replaces {
		r := c.EnsureAbstract(replaced)
		if !p.ConflictsWithName(replaced) {
			continue
		}
		r.ReplacedBy.Add(a.Name, a)
	}

	for _, cd := range p.AllDependencies() {
		for _, poss := range cd.Relation.Possibilities {
			dep := c.EnsureAbstract(poss.Name)
			dep.DependedUponBy.Add(a.Name, a)
		}
	}
}

func (c *Catalog) replaceGlobal(old, new *Pkg) {
	for i, p := range c.pkgsGlobal {
		if p == old {
			c.pkgsGlobal[i] = new
			return
		}
	}
}

// Predicate decides whether a candidate Pkg is acceptable for a particular
// query, e.g. "installed and version-satisfying" or merely
// "version-satisfying".
type Predicate func(*Pkg) bool

// FetchBestInstallationCandidate implements the catalog lookup contract:
// gather every concrete package provided under abs's name (including abs
// itself, via self-provision), filter held-back and unrecognized-arch
// packages, partition by (name, architecture), pick the best version per
// partition, then prefer installed, then architecture priority, then
// version across partitions.
func (c *Catalog) FetchBestInstallationCandidate(abs *AbsPkg, predicate Predicate) *Pkg {
	type class struct {
		best *Pkg
	}
	classes := make(map[string]*class)
	var order []string

	for _, provider := range abs.ProvidedBy.Values() {
		for _, p := range provider.Pkgs {
			if p.StateFlag&FlagHold != 0 && p.StateStatus != StatusInstalled {
				continue
			}
			if c.archPriority != nil && !c.archPriority.Recognized(p.Architecture.String()) {
				continue
			}
			if predicate != nil && !predicate(p) {
				continue
			}

			key := p.Name + "\x00" + p.Architecture.String()
			cls, ok := classes[key]
			if !ok {
				cls = &class{}
				classes[key] = cls
				order = append(order, key)
			}
			if cls.best == nil || p.Version.Compare(cls.best.Version) > 0 {
				cls.best = p
			}
		}
	}

	var chosen *Pkg
	for _, key := range order {
		cand := classes[key].best
		if cand == nil {
			continue
		}
		if chosen == nil {
			chosen = cand
			continue
		}
		chosen = c.preferCandidate(chosen, cand)
	}
	return chosen
}

// preferCandidate applies the cross-partition tie-break ladder: installed
// beats not-installed, then higher architecture priority, then higher
// version.
func (c *Catalog) preferCandidate(a, b *Pkg) *Pkg {
	aInstalled := a.StateStatus == StatusInstalled
	bInstalled := b.StateStatus == StatusInstalled
	if aInstalled != bInstalled {
		if aInstalled {
			return a
		}
		return b
	}

	var aPriority, bPriority int
	if c.archPriority != nil {
		aPriority, _ = c.archPriority.Priority(a.Architecture.String())
		bPriority, _ = c.archPriority.Priority(b.Architecture.String())
	}
	if aPriority != bPriority {
		if aPriority > bPriority {
			return a
		}
		return b
	}

	if a.Version.Compare(b.Version) >= 0 {
		return a
	}
	return b
}
