package resolve_test

import (
	"context"
	"testing"

	"github.com/oaklab-go/opkgmeta/catalog"
	"github.com/oaklab-go/opkgmeta/resolve"
	"github.com/oaklab-go/opkgmeta/selector"
	"github.com/oaklab-go/opkgmeta/types/arch"
	"github.com/oaklab-go/opkgmeta/types/dependency"
	"github.com/oaklab-go/opkgmeta/types/version"
	"github.com/stretchr/testify/require"
)

func newResolver(t *testing.T) (*resolve.Resolver, *catalog.Catalog) {
	t.Helper()
	priorities := catalog.NewArchPriorityTable(
		catalog.ArchPriorityEntry{Name: "amd64", Priority: 10},
	)
	cat := catalog.New(priorities, nil, nil)
	sel := selector.New(cat)
	return resolve.New(sel, nil, nil), cat
}

func relation(names ...string) dependency.Relation {
	var poss []dependency.Possibility
	for _, n := range names {
		poss = append(poss, dependency.Possibility{Name: n})
	}
	return dependency.Relation{Possibilities: poss}
}

func versionedRelation(name, op, ver string) dependency.Relation {
	v := version.MustParse(ver)
	return dependency.Relation{Possibilities: []dependency.Possibility{
		{Name: name, Version: &dependency.VersionRelation{Operator: op, Version: v}},
	}}
}

func newPkg(name, ver, architecture string) *catalog.Pkg {
	return &catalog.Pkg{
		Name:         name,
		Version:      version.MustParse(ver),
		Architecture: arch.MustParse(architecture),
	}
}

func insert(t *testing.T, cat *catalog.Catalog, p *catalog.Pkg) *catalog.Pkg {
	t.Helper()
	out, err := cat.Insert(context.Background(), p)
	require.NoError(t, err)
	return out
}

// Scenario 2: simple resolve.
func TestSimpleResolve(t *testing.T) {
	r, cat := newResolver(t)

	a := newPkg("A", "1.0-1", "amd64")
	a.Depends = []catalog.CompoundDependency{{Type: catalog.DependTypeDepend, Relation: relation("B")}}
	b := newPkg("B", "1.0-1", "amd64")

	insert(t, cat, a)
	insert(t, cat, b)

	result := r.Resolve(context.Background(), a)
	require.Empty(t, result.Unresolved)
	require.Len(t, result.Unsatisfied, 1)
	require.Equal(t, "B", result.Unsatisfied[0].Name)
}

// Scenario 3: alternative satisfaction, declaration-order preference.
func TestAlternativeSatisfaction(t *testing.T) {
	r, cat := newResolver(t)

	a := newPkg("A", "1.0-1", "amd64")
	a.Depends = []catalog.CompoundDependency{{Type: catalog.DependTypeDepend, Relation: relation("B", "C")}}

	c := newPkg("C", "1.0-1", "amd64")
	insert(t, cat, a)
	insert(t, cat, c)

	result := r.Resolve(context.Background(), a)
	require.Empty(t, result.Unresolved)
	require.Len(t, result.Unsatisfied, 1)
	require.Equal(t, "C", result.Unsatisfied[0].Name)

	r2, cat2 := newResolver(t)
	a2 := newPkg("A", "1.0-1", "amd64")
	a2.Depends = []catalog.CompoundDependency{{Type: catalog.DependTypeDepend, Relation: relation("B", "C")}}
	b2 := newPkg("B", "1.0-1", "amd64")
	c2 := newPkg("C", "1.0-1", "amd64")
	insert(t, cat2, a2)
	insert(t, cat2, b2)
	insert(t, cat2, c2)

	result2 := r2.Resolve(context.Background(), a2)
	require.Len(t, result2.Unsatisfied, 1)
	require.Equal(t, "B", result2.Unsatisfied[0].Name)
}

// Scenario 4: a virtual name satisfied via Provides.
func TestProvidesVirtual(t *testing.T) {
	r, cat := newResolver(t)

	mta := newPkg("mta", "1.0-1", "amd64")
	mta.Provides = []string{"mail-transport-agent"}

	x := newPkg("X", "1.0-1", "amd64")
	x.Depends = []catalog.CompoundDependency{{Type: catalog.DependTypeDepend, Relation: relation("mail-transport-agent")}}

	insert(t, cat, mta)
	insert(t, cat, x)

	result := r.Resolve(context.Background(), x)
	require.Empty(t, result.Unresolved)
	require.Len(t, result.Unsatisfied, 1)
	require.Equal(t, "mta", result.Unsatisfied[0].Name)
}

// Scenario 5: Replaces masks Conflicts for the same name.
func TestReplaceMasksConflict(t *testing.T) {
	r, cat := newResolver(t)

	libfoo := newPkg("libfoo", "1.0-1", "amd64")
	libfoo.StateStatus = catalog.StatusInstalled
	insert(t, cat, libfoo)

	newLibfoo := newPkg("new-libfoo", "2.0-1", "amd64")
	newLibfoo.Conflicts = []catalog.CompoundDependency{{Type: catalog.DependTypeConflicts, Relation: relation("libfoo")}}
	newLibfoo.Replaces = []string{"libfoo"}
	insert(t, cat, newLibfoo)

	require.Empty(t, r.FetchConflicts(newLibfoo))
}

func TestConflictsWithoutReplacesAreReported(t *testing.T) {
	r, cat := newResolver(t)

	libfoo := newPkg("libfoo", "1.0-1", "amd64")
	libfoo.StateStatus = catalog.StatusInstalled
	insert(t, cat, libfoo)

	other := newPkg("other-libfoo", "2.0-1", "amd64")
	other.Conflicts = []catalog.CompoundDependency{{Type: catalog.DependTypeConflicts, Relation: relation("libfoo")}}
	insert(t, cat, other)

	conflicts := r.FetchConflicts(other)
	require.Len(t, conflicts, 1)
	require.Equal(t, "libfoo", conflicts[0].Name)
}

// Regression for the fixed iterator-double-advance bug: every Conflicts
// compound must be visited, not every other one.
func TestFetchConflictsVisitsEveryCompound(t *testing.T) {
	r, cat := newResolver(t)

	for _, name := range []string{"foo", "bar", "baz"} {
		p := newPkg(name, "1.0-1", "amd64")
		p.StateStatus = catalog.StatusInstalled
		insert(t, cat, p)
	}

	owner := newPkg("owner", "1.0-1", "amd64")
	owner.Conflicts = []catalog.CompoundDependency{
		{Type: catalog.DependTypeConflicts, Relation: relation("foo")},
		{Type: catalog.DependTypeConflicts, Relation: relation("bar")},
		{Type: catalog.DependTypeConflicts, Relation: relation("baz")},
	}
	insert(t, cat, owner)

	conflicts := r.FetchConflicts(owner)
	require.Len(t, conflicts, 3)
	var names []string
	for _, c := range conflicts {
		names = append(names, c.Name)
	}
	require.ElementsMatch(t, []string{"foo", "bar", "baz"}, names)
}

// Scenario 6: an unsatisfiable version constraint is reported, not silently
// dropped.
func TestUnsatisfiableVersionConstraint(t *testing.T) {
	r, cat := newResolver(t)

	a := newPkg("A", "1.0-1", "amd64")
	a.Depends = []catalog.CompoundDependency{{Type: catalog.DependTypeDepend, Relation: versionedRelation("missing", ">=", "2.0")}}
	missing := newPkg("missing", "1.0-1", "amd64")

	insert(t, cat, a)
	insert(t, cat, missing)

	result := r.Resolve(context.Background(), a)
	require.Empty(t, result.Unsatisfied)
	require.Len(t, result.Unresolved, 1)
	require.Contains(t, result.Unresolved[0], "missing")
}

// Cycle safety: A -> B -> A must terminate and yield {B}.
func TestCycleSafety(t *testing.T) {
	r, cat := newResolver(t)

	a := newPkg("A", "1.0-1", "amd64")
	b := newPkg("B", "1.0-1", "amd64")
	a.Depends = []catalog.CompoundDependency{{Type: catalog.DependTypeDepend, Relation: relation("B")}}
	b.Depends = []catalog.CompoundDependency{{Type: catalog.DependTypeDepend, Relation: relation("A")}}

	insert(t, cat, a)
	insert(t, cat, b)

	result := r.Resolve(context.Background(), a)
	require.Empty(t, result.Unresolved)
	require.Len(t, result.Unsatisfied, 1)
	require.Equal(t, "B", result.Unsatisfied[0].Name)
}

// An unsatisfied Recommend never contributes to unresolved.
func TestRecommendNonFatal(t *testing.T) {
	r, cat := newResolver(t)

	a := newPkg("A", "1.0-1", "amd64")
	a.Recommends = []catalog.CompoundDependency{{Type: catalog.DependTypeRecommend, Relation: relation("optional-thing")}}
	insert(t, cat, a)

	result := r.Resolve(context.Background(), a)
	require.Empty(t, result.Unresolved)
	require.Empty(t, result.Unsatisfied)
}

func TestRecommendSatisfiedIsPulledIn(t *testing.T) {
	r, cat := newResolver(t)

	a := newPkg("A", "1.0-1", "amd64")
	a.Recommends = []catalog.CompoundDependency{{Type: catalog.DependTypeRecommend, Relation: relation("nice-to-have")}}
	nice := newPkg("nice-to-have", "1.0-1", "amd64")

	insert(t, cat, a)
	insert(t, cat, nice)

	result := r.Resolve(context.Background(), a)
	require.Empty(t, result.Unresolved)
	require.Len(t, result.Unsatisfied, 1)
	require.Equal(t, "nice-to-have", result.Unsatisfied[0].Name)
}

func TestRecommendRespectsUserDeinstall(t *testing.T) {
	r, cat := newResolver(t)

	a := newPkg("A", "1.0-1", "amd64")
	a.Recommends = []catalog.CompoundDependency{{Type: catalog.DependTypeRecommend, Relation: relation("nice-to-have")}}
	nice := newPkg("nice-to-have", "1.0-1", "amd64")
	nice.StateWant = catalog.WantDeinstall

	insert(t, cat, a)
	insert(t, cat, nice)

	result := r.Resolve(context.Background(), a)
	require.Empty(t, result.Unresolved)
	require.Empty(t, result.Unsatisfied)
}
