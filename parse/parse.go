// Package parse builds catalog.Pkg records out of Debian-style control
// paragraphs, honoring a field mask and dispatching each recognized field
// through the appropriate typed parser. Continuation-line accumulation for
// multi-line fields (Description, Conffiles) is handled by the underlying
// stanza reader; this package only needs to split the already-joined field
// value.
package parse

import (
	"context"
	"strconv"
	"strings"

	"github.com/oaklab-go/opkgmeta"
	"github.com/oaklab-go/opkgmeta/catalog"
	"github.com/oaklab-go/opkgmeta/internalerrors"
	"github.com/oaklab-go/opkgmeta/types/arch"
	"github.com/oaklab-go/opkgmeta/types/boolean"
	"github.com/oaklab-go/opkgmeta/types/dependency"
	"github.com/oaklab-go/opkgmeta/types/version"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Parser consumes control paragraphs into catalog.Pkg records.
type Parser struct {
	mask   Mask
	log    *zap.Logger
	tracer trace.Tracer
}

// New builds a Parser honoring mask. log and tracer may be nil.
func New(mask Mask, log *zap.Logger, tracer trace.Tracer) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	if tracer == nil {
		tracer = trace.NewNoopTracerProvider().Tracer("parse")
	}
	return &Parser{mask: mask, log: log, tracer: tracer}
}

// ParsePkgs reads every control paragraph from r and builds a Pkg for each.
// A malformed paragraph is logged and skipped; it never aborts the parse of
// the remaining paragraphs, per the parse-error-is-fatal-only-to-its-own-
// paragraph policy.
func (p *Parser) ParsePkgs(ctx context.Context, r *meta.StanzaReader) ([]*catalog.Pkg, error) {
	_, span := p.tracer.Start(ctx, "parse.ParsePkgs")
	defer span.End()

	stanzas, err := r.All()
	if err != nil {
		return nil, err
	}

	pkgs := make([]*catalog.Pkg, 0, len(stanzas))
	for _, st := range stanzas {
		pkg, err := p.buildPkg(st)
		if err != nil {
			p.log.Error("skipping malformed control paragraph", zap.Error(err))
			continue
		}
		pkgs = append(pkgs, pkg)
	}
	return pkgs, nil
}

func (p *Parser) buildPkg(st meta.Stanza) (*catalog.Pkg, error) {
	name, ok := field(st, "Package")
	if !ok || name == "" {
		return nil, &internalerrors.ParseError{Field: "Package", Err: errMissingPackage}
	}

	pkg := &catalog.Pkg{Name: name}

	if p.mask&MaskVersion != 0 {
		if v, ok := field(st, "Version"); ok {
			ver, err := version.Parse(v)
			if err != nil {
				return nil, &internalerrors.ParseError{Package: name, Field: "Version", Err: err}
			}
			pkg.Version = ver
		}
	}

	if p.mask&MaskArchitecture != 0 {
		if v, ok := field(st, "Architecture"); ok {
			a, err := arch.Parse(v)
			if err != nil {
				return nil, &internalerrors.ParseError{Package: name, Field: "Architecture", Err: err}
			}
			pkg.Architecture = a
		}
	}

	for _, d := range []struct {
		mask  Mask
		field string
		typ   catalog.DependType
		dest  *[]catalog.CompoundDependency
	}{
		{MaskDepends, "Depends", catalog.DependTypeDepend, &pkg.Depends},
		{MaskPreDepends, "Pre-Depends", catalog.DependTypePreDepend, &pkg.PreDepends},
		{MaskRecommends, "Recommends", catalog.DependTypeRecommend, &pkg.Recommends},
		{MaskSuggests, "Suggests", catalog.DependTypeSuggest, &pkg.Suggests},
		{MaskConflicts, "Conflicts", catalog.DependTypeConflicts, &pkg.Conflicts},
	} {
		if p.mask&d.mask == 0 {
			continue
		}
		v, ok := field(st, d.field)
		if !ok || v == "" {
			continue
		}
		cds, err := parseDependField(v, d.typ)
		if err != nil {
			return nil, &internalerrors.ParseError{Package: name, Field: d.field, Err: err}
		}
		*d.dest = cds
	}

	if p.mask&MaskProvides != 0 {
		if v, ok := field(st, "Provides"); ok {
			pkg.Provides = splitNames(v)
		}
	}
	if p.mask&MaskReplaces != 0 {
		if v, ok := field(st, "Replaces"); ok {
			pkg.Replaces = splitNames(v)
		}
	}

	if p.mask&MaskFilename != 0 {
		if v, ok := field(st, "Filename"); ok {
			pkg.Filename = v
		}
	}

	if p.mask&MaskSize != 0 {
		if v, ok := field(st, "Size"); ok {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, &internalerrors.ParseError{Package: name, Field: "Size", Err: err}
			}
			pkg.Size = n
		}
	}
	if p.mask&MaskInstalledSize != 0 {
		if v, ok := field(st, "Installed-Size"); ok {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, &internalerrors.ParseError{Package: name, Field: "Installed-Size", Err: err}
			}
			pkg.InstalledSize = n
		}
	}

	if p.mask&MaskMD5 != 0 {
		if v, ok := fieldAny(st, "MD5sum", "MD5Sum"); ok {
			pkg.MD5 = v
		}
	}
	if p.mask&MaskSHA256 != 0 {
		if v, ok := field(st, "SHA256sum"); ok {
			pkg.SHA256 = v
		}
	}

	if p.mask&MaskSection != 0 {
		if v, ok := field(st, "Section"); ok {
			pkg.Section = v
		}
	}
	if p.mask&MaskPriority != 0 {
		if v, ok := field(st, "Priority"); ok {
			pkg.Priority = v
		}
	}
	if p.mask&MaskMaintainer != 0 {
		if v, ok := field(st, "Maintainer"); ok {
			pkg.Maintainer = v
		}
	}
	if p.mask&MaskSourcePackage != 0 {
		if v, ok := field(st, "Source"); ok {
			pkg.SourcePackage = v
		}
	}
	if p.mask&MaskTags != 0 {
		if v, ok := field(st, "Tags"); ok {
			pkg.Tags = v
		}
	}
	if p.mask&MaskDescription != 0 {
		if v, ok := field(st, "Description"); ok {
			pkg.Description = strings.TrimRight(v, "\n")
		}
	}

	if p.mask&MaskEssential != 0 {
		if v, ok := field(st, "Essential"); ok {
			var b boolean.Boolean
			if err := b.UnmarshalText([]byte(v)); err != nil {
				return nil, &internalerrors.ParseError{Package: name, Field: "Essential", Err: err}
			}
			pkg.Essential = bool(b)
		}
	}
	if p.mask&MaskAutoInstalled != 0 {
		if v, ok := field(st, "Auto-Installed"); ok {
			var b boolean.Boolean
			if err := b.UnmarshalText([]byte(v)); err != nil {
				return nil, &internalerrors.ParseError{Package: name, Field: "Auto-Installed", Err: err}
			}
			pkg.AutoInstalled = bool(b)
		}
	}
	if p.mask&MaskInstalledTime != 0 {
		if v, ok := field(st, "Installed-Time"); ok {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, &internalerrors.ParseError{Package: name, Field: "Installed-Time", Err: err}
			}
			pkg.InstalledTime = n
		}
	}
	if p.mask&MaskStatus != 0 {
		if v, ok := field(st, "Status"); ok {
			want, flag, status, err := catalog.ParseStatusLine(v)
			if err != nil {
				return nil, &internalerrors.ParseError{Package: name, Field: "Status", Err: err}
			}
			pkg.StateWant = want
			pkg.StateFlag = flag
			pkg.StateStatus = status
		}
	}
	if p.mask&MaskConffiles != 0 {
		if v, ok := field(st, "Conffiles"); ok {
			pkg.Conffiles = parseConffiles(v)
		}
	}

	return pkg, nil
}

func parseDependField(value string, baseType catalog.DependType) ([]catalog.CompoundDependency, error) {
	var dep dependency.Dependency
	if err := dep.UnmarshalText([]byte(value)); err != nil {
		return nil, err
	}

	cds := make([]catalog.CompoundDependency, 0, len(dep.Relations))
	for _, rel := range dep.Relations {
		t := baseType
		for _, poss := range rel.Possibilities {
			if poss.Greedy {
				t = catalog.DependTypeGreedy
				break
			}
		}
		cds = append(cds, catalog.CompoundDependency{Type: t, Relation: rel})
	}
	return cds, nil
}

func parseConffiles(value string) []catalog.Conffile {
	var out []catalog.Conffile
	for _, line := range strings.Split(value, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		out = append(out, catalog.Conffile{Path: fields[0], Checksum: fields[1]})
	}
	return out
}

func splitNames(value string) []string {
	var out []string
	for _, tok := range strings.Split(value, ",") {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

func field(st meta.Stanza, name string) (string, bool) {
	for _, k := range st.Order {
		if strings.EqualFold(k, name) {
			return st.Values[k], true
		}
	}
	return "", false
}

func fieldAny(st meta.Stanza, names ...string) (string, bool) {
	for _, n := range names {
		if v, ok := field(st, n); ok {
			return v, true
		}
	}
	return "", false
}
