// Package resolve implements the dependency resolution core: walking a
// target package's Depends/Pre-Depends/Recommends/Suggests graph to build
// the ordered set of packages that must also become installed, and
// separately walking Conflicts to find installed or to-be-installed
// packages that collide with a candidate.
package resolve

import (
	"context"

	"github.com/oaklab-go/opkgmeta/catalog"
	"github.com/oaklab-go/opkgmeta/internal/orderedset"
	"github.com/oaklab-go/opkgmeta/selector"
	"github.com/oaklab-go/opkgmeta/types/dependency"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Result is the outcome of resolving one target package.
type Result struct {
	// Unsatisfied is the ordered set of concrete packages the target (and
	// everything it transitively pulls in) depends on that are not
	// currently installed. Each package is added after the packages its own
	// dependencies pulled in, so dependencies precede their dependents.
	Unsatisfied []*catalog.Pkg
	// Unresolved lists every hard dependency (Depends, Pre-Depends) that
	// could not be satisfied by any candidate in the catalog, rendered as
	// the printable form of the whole compound dependency.
	Unresolved []string
}

// Resolver walks a Catalog, through a Selector, to resolve dependencies and
// detect conflicts.
type Resolver struct {
	sel    *selector.Selector
	log    *zap.Logger
	tracer trace.Tracer
}

// New builds a Resolver over sel. log and tracer may be nil.
func New(sel *selector.Selector, log *zap.Logger, tracer trace.Tracer) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	if tracer == nil {
		tracer = trace.NewNoopTracerProvider().Tracer("resolve")
	}
	return &Resolver{sel: sel, log: log, tracer: tracer}
}

// Resolve computes the full transitive dependency closure of target.
//
// Traversal uses a private visited set keyed by the abstract package each
// concrete candidate was interned under, rather than the catalog's shared
// AbsPkg.DependenciesChecked mark, so concurrent or repeated resolutions
// against the same Catalog never need a ResetTraversalMarks call between
// them.
func (r *Resolver) Resolve(ctx context.Context, target *catalog.Pkg) *Result {
	ctx, span := r.tracer.Start(ctx, "resolve.Resolve")
	defer span.End()

	visited := make(map[*catalog.AbsPkg]bool)
	unsatisfied := orderedset.New[*catalog.Pkg]()
	var unresolved []string

	r.resolveInto(ctx, target, visited, unsatisfied, &unresolved)

	return &Result{
		Unsatisfied: unsatisfied.Values(),
		Unresolved:  unresolved,
	}
}

func (r *Resolver) resolveInto(
	ctx context.Context,
	target *catalog.Pkg,
	visited map[*catalog.AbsPkg]bool,
	unsatisfied *orderedset.Set[*catalog.Pkg],
	unresolved *[]string,
) {
	if parent := target.Parent(); parent != nil {
		if visited[parent] {
			return
		}
		visited[parent] = true
	}

	for _, c := range target.AllDependencies() {
		r.resolveCompound(ctx, c, target, visited, unsatisfied, unresolved)
	}
}

func (r *Resolver) resolveCompound(
	ctx context.Context,
	c catalog.CompoundDependency,
	target *catalog.Pkg,
	visited map[*catalog.AbsPkg]bool,
	unsatisfied *orderedset.Set[*catalog.Pkg],
	unresolved *[]string,
) {
	if c.Type == catalog.DependTypeGreedy {
		r.resolveGreedy(ctx, c, visited, unsatisfied, unresolved)
		return
	}

	satisfied, candidate := r.findSatisfier(c)
	if !satisfied {
		if c.Type == catalog.DependTypeRecommend || c.Type == catalog.DependTypeSuggest {
			r.log.Debug("advisory dependency unsatisfied", zap.String("dependency", c.String()))
			return
		}
		*unresolved = append(*unresolved, c.String())
		return
	}

	if candidate == nil || candidate == target || unsatisfied.Has(candidate.ID()) {
		return
	}
	if parent := candidate.Parent(); parent != nil && visited[parent] {
		// Already checked, either an ancestor still being resolved further
		// up this call chain (a cycle back onto it) or a sibling branch
		// that finished without ever needing to be installed. Either way
		// it is not a new package for the plan.
		return
	}

	r.resolveInto(ctx, candidate, visited, unsatisfied, unresolved)
	unsatisfied.Add(candidate.ID(), candidate)
}

// findSatisfier runs the two-pass satisfier search for compound dependency
// c. The first pass only checks whether an already-installed candidate
// satisfies some possibility; per §4.5 step 2, that is enough to call c
// satisfied, but it produces no candidate to insert into Unsatisfied — the
// dependency is already on disk. Only the second pass, which considers any
// (not necessarily installed) candidate, yields a candidate worth recursing
// into and recording. This mirrors pkg_hash_fetch_unsatisfied_dependencies:
// the installed-pass match sets found=1 and breaks with
// satisfier_entry_pkg left NULL, so nothing is inserted for it.
func (r *Resolver) findSatisfier(c catalog.CompoundDependency) (satisfied bool, candidate *catalog.Pkg) {
	for _, poss := range c.Relation.Possibilities {
		abs, ok := r.sel.Catalog().Lookup(poss.Name)
		if !ok {
			continue
		}
		predicate := versionPredicate(poss)
		if cand := r.sel.FetchBestInstallationCandidate(abs, selector.Installed(predicate)); cand != nil {
			return true, nil
		}
	}

	for _, poss := range c.Relation.Possibilities {
		abs, ok := r.sel.Catalog().Lookup(poss.Name)
		if !ok {
			continue
		}
		cand := r.sel.FetchBestInstallationCandidate(abs, versionPredicate(poss))
		if cand == nil {
			continue
		}
		if isAdvisory(c.Type) && (cand.StateWant == catalog.WantDeinstall || cand.StateWant == catalog.WantPurge) {
			continue
		}
		return true, cand
	}

	return false, nil
}

// resolveGreedy handles a possibility marked with the legacy trailing "*":
// every concrete provider not already slated for install is considered,
// and accepted into the unsatisfied set only if resolving its own
// dependencies in a private scratch closure does not surface anything that
// isn't already want=install. This mirrors the "don't greedily pull in a
// package whose own deps can't be satisfied" guard from the original
// resolver without reproducing its shared-state bookkeeping.
func (r *Resolver) resolveGreedy(
	ctx context.Context,
	c catalog.CompoundDependency,
	visited map[*catalog.AbsPkg]bool,
	unsatisfied *orderedset.Set[*catalog.Pkg],
	unresolved *[]string,
) {
	for _, poss := range c.Relation.Possibilities {
		abs, ok := r.sel.Catalog().Lookup(poss.Name)
		if !ok {
			continue
		}

		for _, provider := range abs.ProvidedBy.Values() {
			for _, cand := range provider.Pkgs {
				if cand.StateWant == catalog.WantInstall {
					continue
				}
				if visited[cand.Parent()] {
					continue
				}
				if unsatisfied.Has(cand.ID()) {
					continue
				}

				scratchVisited := cloneVisited(visited)
				scratchUnsatisfied := orderedset.New[*catalog.Pkg]()
				var scratchUnresolved []string
				r.resolveInto(ctx, cand, scratchVisited, scratchUnsatisfied, &scratchUnresolved)

				if !allWantInstall(scratchUnsatisfied.Values()) {
					r.log.Debug("greedy dependency candidate skipped",
						zap.String("candidate", cand.ID()),
						zap.String("reason", "transitive dependency not already marked for install"))
					continue
				}

				r.resolveInto(ctx, cand, visited, unsatisfied, unresolved)
				unsatisfied.Add(cand.ID(), cand)
			}
		}
	}
}

func allWantInstall(pkgs []*catalog.Pkg) bool {
	for _, p := range pkgs {
		if p.StateWant != catalog.WantInstall {
			return false
		}
	}
	return true
}

func cloneVisited(v map[*catalog.AbsPkg]bool) map[*catalog.AbsPkg]bool {
	out := make(map[*catalog.AbsPkg]bool, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

func isAdvisory(t catalog.DependType) bool {
	return t == catalog.DependTypeRecommend || t == catalog.DependTypeSuggest
}

// versionPredicate builds a selector.Predicate enforcing poss's version
// constraint, if it has one. A Greedy possibility ignores its own version
// constraint entirely: any installed or installable version satisfies it.
func versionPredicate(poss dependency.Possibility) selector.Predicate {
	if poss.Greedy || poss.Version == nil {
		return nil
	}
	rel := *poss.Version
	return func(p *catalog.Pkg) bool {
		return satisfiesVersion(p, &rel)
	}
}

func satisfiesVersion(p *catalog.Pkg, rel *dependency.VersionRelation) bool {
	if rel == nil {
		return true
	}
	cmp := p.Version.Compare(rel.Version)
	switch rel.Operator {
	case "=":
		return cmp == 0
	case "<<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	case ">>":
		return cmp > 0
	case ">=":
		return cmp >= 0
	default:
		return false
	}
}

// FetchConflicts returns every concrete package, installed or slated for
// install, that conflicts with pkg: for each of pkg's Conflicts
// possibilities, every provider of that name satisfying the version
// constraint, except where pkg also declares a Replaces for the same name
// (Replaces masks Conflicts between the same two packages).
//
// This walks every possibility of every Conflicts compound with a single
// range loop; unlike the original C iterator, there is no manual cursor to
// advance twice and skip every other conflicting record.
func (r *Resolver) FetchConflicts(pkg *catalog.Pkg) []*catalog.Pkg {
	var conflicts []*catalog.Pkg
	seen := make(map[string]bool)

	for _, c := range pkg.Conflicts {
		for _, poss := range c.Relation.Possibilities {
			if pkg.ReplacesName(poss.Name) {
				continue
			}

			abs, ok := r.sel.Catalog().Lookup(poss.Name)
			if !ok {
				continue
			}

			for _, provider := range abs.ProvidedBy.Values() {
				for _, cand := range provider.Pkgs {
					if cand == pkg {
						continue
					}
					if cand.StateStatus != catalog.StatusInstalled && cand.StateWant != catalog.WantInstall {
						continue
					}
					if !satisfiesVersion(cand, poss.Version) {
						continue
					}
					if seen[cand.ID()] {
						continue
					}
					seen[cand.ID()] = true
					conflicts = append(conflicts, cand)
				}
			}
		}
	}

	return conflicts
}
