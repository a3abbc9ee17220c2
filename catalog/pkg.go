// Package catalog implements the core data model (concrete and abstract
// packages) and the insertion/lookup engine that maintains the bipartite
// graph between them, per the attribute-store and catalog components of the
// resolver core.
package catalog

import (
	"github.com/oaklab-go/opkgmeta/internal/orderedset"
	"github.com/oaklab-go/opkgmeta/types/arch"
	"github.com/oaklab-go/opkgmeta/types/dependency"
	"github.com/oaklab-go/opkgmeta/types/version"
)

// DependType classifies a compound dependency by the control field it was
// declared in, plus the GreedyDepend promotion a trailing "*" triggers.
type DependType int

const (
	DependTypeDepend DependType = iota
	DependTypePreDepend
	DependTypeRecommend
	DependTypeSuggest
	DependTypeConflicts
	DependTypeGreedy
)

func (t DependType) String() string {
	switch t {
	case DependTypeDepend:
		return "Depend"
	case DependTypePreDepend:
		return "PreDepend"
	case DependTypeRecommend:
		return "Recommend"
	case DependTypeSuggest:
		return "Suggest"
	case DependTypeConflicts:
		return "Conflicts"
	case DependTypeGreedy:
		return "GreedyDepend"
	default:
		return "Depend"
	}
}

// CompoundDependency is a single disjunction of possibilities (one
// comma-separated item of a Depends-like field), tagged with the type it was
// declared in or promoted to.
type CompoundDependency struct {
	Type     DependType
	Relation dependency.Relation
}

// String renders a printable form of the compound dependency, suitable for
// the resolver's "unresolved" diagnostic strings.
func (c CompoundDependency) String() string {
	return c.Relation.String()
}

// ContainsName reports whether any possibility of the compound dependency
// names the given abstract package name.
func (c CompoundDependency) ContainsName(name string) bool {
	for _, poss := range c.Relation.Possibilities {
		if poss.Name == name {
			return true
		}
	}
	return false
}

// Conffile pairs a configuration file's on-disk path with the checksum
// recorded at install time, used to detect local edits before removal.
type Conffile struct {
	Path     string
	Checksum string
}

// Pkg is a concrete package: one specific version of one named package,
// built for one architecture, from one source (or installed on disk).
type Pkg struct {
	Name         string
	Version      version.Version
	Architecture arch.Arch
	ArchPriority int

	// Source names the feed this package was indexed from; nil if the
	// package has no feed of origin (e.g. purely local).
	Source *string
	// Dest names the install destination this package is installed to or
	// targeted for; nil if not yet associated with one.
	Dest *string

	MD5           string
	SHA256        string
	Size          int64
	InstalledSize int64

	Priority    string
	Section     string
	Maintainer  string
	Description string

	Filename      string
	LocalFilename string
	TmpUnpackDir  string

	// SourcePackage is the control file's free-form "Source" field: the
	// name of the source package this binary was built from. Distinct
	// from Source above, which names the feed the record was indexed
	// from.
	SourcePackage string
	Tags          string
	// InstalledTime is a Unix epoch timestamp, zero if never installed.
	InstalledTime int64

	Conffiles []Conffile

	Provides []string
	Replaces []string

	Depends    []CompoundDependency
	PreDepends []CompoundDependency
	Recommends []CompoundDependency
	Suggests   []CompoundDependency
	Conflicts  []CompoundDependency

	Alternatives []string

	StateWant   StateWant
	StateFlag   StateFlag
	StateStatus StateStatus

	Essential      bool
	AutoInstalled  bool
	ProvidedByHand bool

	InstalledFiles *InstalledFiles

	// Extra holds control fields the catalog has no typed slot for; its
	// string records are written by ToStanza after the typed fields. The
	// parser does not populate it, so fields it has no slot for are not
	// kept from a parsed paragraph.
	Extra *AttributeStore

	parent *AbsPkg
}

// ID returns the canonical name_version_architecture identifier used as the
// archive filename stem and the catalog's human-readable key.
func (p *Pkg) ID() string {
	return p.Name + "_" + p.Version.String() + "_" + p.Architecture.String()
}

// Parent returns the abstract package this concrete package is interned
// under, or nil if it has not yet been inserted into a Catalog.
func (p *Pkg) Parent() *AbsPkg {
	return p.parent
}

// ConflictsWithName reports whether p declares a Conflicts possibility
// naming the given abstract package name, ignoring any version constraint.
func (p *Pkg) ConflictsWithName(name string) bool {
	for _, cd := range p.Conflicts {
		if cd.ContainsName(name) {
			return true
		}
	}
	return false
}

// ReplacesName reports whether p declares a Replaces entry for name.
func (p *Pkg) ReplacesName(name string) bool {
	for _, r := range p.Replaces {
		if r == name {
			return true
		}
	}
	return false
}

// AllDependencies returns every compound dependency that participates in
// resolution, in the order the resolver walks them: pre-dependencies,
// ordinary dependencies, recommendations, then suggestions. Conflicts are
// deliberately excluded; they are walked separately by FetchConflicts.
func (p *Pkg) AllDependencies() []CompoundDependency {
	all := make([]CompoundDependency, 0, len(p.PreDepends)+len(p.Depends)+len(p.Recommends)+len(p.Suggests))
	all = append(all, p.PreDepends...)
	all = append(all, p.Depends...)
	all = append(all, p.Recommends...)
	all = append(all, p.Suggests...)
	return all
}

// AbsPkg is an abstract package: a name, real or virtual, that zero or more
// concrete packages provide.
type AbsPkg struct {
	Name string

	// ProvidedBy is the set of AbsPkg (keyed by their own Name) that
	// provide this name; a real AbsPkg always contains itself.
	ProvidedBy *orderedset.Set[*AbsPkg]
	// ReplacedBy is the set of AbsPkg that declare a Replaces relation,
	// masked against a matching Conflicts, for this name.
	ReplacedBy *orderedset.Set[*AbsPkg]
	// DependedUponBy is the set of AbsPkg whose dependencies reference
	// this name, maintained for reverse-dependency queries.
	DependedUponBy *orderedset.Set[*AbsPkg]

	// Pkgs is the ordered set of concrete packages sharing this name.
	Pkgs []*Pkg

	StateFlag   StateFlag
	StateStatus StateStatus

	// DependenciesChecked is a transient traversal mark, kept for parity
	// with the source's global mark bit. Resolver traversals use a
	// per-call visited map instead and do not rely on this field, but it
	// is exposed so a caller wiring multiple independent traversals
	// through the same catalog can still inspect or reset it.
	DependenciesChecked bool
}

// Provides returns every other AbsPkg that provides this name, i.e.
// ProvidedBy with the self-entry every real name implicitly carries (via
// self-provision) removed.
//
// The original C printing path walks provided_by and advances its cursor
// twice per emitted name, which in effect (whether by design or bug) skips
// the self-entry at index 0 but also skips every other entry after it;
// this is the corrected rendition §9 asks for: the full set minus exactly
// the self-entry, nothing more.
func (a *AbsPkg) Provides() []*AbsPkg {
	out := make([]*AbsPkg, 0, a.ProvidedBy.Len())
	for _, p := range a.ProvidedBy.Values() {
		if p == a {
			continue
		}
		out = append(out, p)
	}
	return out
}

func newAbsPkg(name string) *AbsPkg {
	a := &AbsPkg{
		Name:           name,
		ProvidedBy:     orderedset.New[*AbsPkg](),
		ReplacedBy:     orderedset.New[*AbsPkg](),
		DependedUponBy: orderedset.New[*AbsPkg](),
	}
	a.ProvidedBy.Add(name, a)
	return a
}
