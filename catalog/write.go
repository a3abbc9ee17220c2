package catalog

import (
	"strconv"
	"strings"

	"github.com/oaklab-go/opkgmeta"
)

// ToStanza renders p as a control paragraph in the fixed field order §6
// specifies for writing a package record: Package, Version, Depends,
// Recommends, Suggests, Provides, Replaces, Conflicts, Status, Section,
// Essential, Architecture, Maintainer, MD5sum, Size, Filename, Conffiles,
// Source, Description, Installed-Time, Tags. Fields with no value are
// omitted, matching the teacher's append-on-Set Stanza behavior; any
// recognized-but-unmodeled attributes stashed in Extra are appended last,
// in their original insertion order.
func (p *Pkg) ToStanza() meta.Stanza {
	var st meta.Stanza

	st.Set("Package", p.Name)
	if v := p.Version.String(); v != "" {
		st.Set("Version", v)
	}
	setDeps(&st, "Depends", joinPreAndOrdinary(p.PreDepends, p.Depends))
	setDeps(&st, "Recommends", joinCompounds(p.Recommends))
	setDeps(&st, "Suggests", joinCompounds(p.Suggests))
	setNames(&st, "Provides", p.Provides)
	setNames(&st, "Replaces", p.Replaces)
	setDeps(&st, "Conflicts", joinCompounds(p.Conflicts))

	if p.StateWant != WantUnknown || p.StateFlag != 0 || p.StateStatus != StatusNotInstalled {
		st.Set("Status", FormatStatusLine(p.StateWant, p.StateFlag, p.StateStatus))
	}

	if p.Section != "" {
		st.Set("Section", p.Section)
	}
	if p.Essential {
		st.Set("Essential", "yes")
	}
	if a := p.Architecture.String(); a != "" {
		st.Set("Architecture", a)
	}
	if p.Maintainer != "" {
		st.Set("Maintainer", p.Maintainer)
	}
	if p.MD5 != "" {
		st.Set("MD5sum", p.MD5)
	}
	if p.Size != 0 {
		st.Set("Size", strconv.FormatInt(p.Size, 10))
	}
	if p.Filename != "" {
		st.Set("Filename", p.Filename)
	}
	if len(p.Conffiles) > 0 {
		var b strings.Builder
		for _, c := range p.Conffiles {
			b.WriteString("\n")
			b.WriteString(c.Path)
			b.WriteString(" ")
			b.WriteString(c.Checksum)
		}
		st.Set("Conffiles", b.String())
	}
	if p.SourcePackage != "" {
		st.Set("Source", p.SourcePackage)
	}
	if p.Description != "" {
		st.Set("Description", p.Description)
	}
	if p.InstalledTime != 0 {
		st.Set("Installed-Time", strconv.FormatInt(p.InstalledTime, 10))
	}
	if p.Tags != "" {
		st.Set("Tags", p.Tags)
	}
	if p.InstalledSize != 0 {
		st.Set("Installed-Size", strconv.FormatInt(p.InstalledSize, 10))
	}
	if p.AutoInstalled {
		st.Set("Auto-Installed", "yes")
	}
	if p.SHA256 != "" {
		st.Set("SHA256sum", p.SHA256)
	}

	if p.Extra != nil {
		for _, key := range p.Extra.Keys() {
			if v, ok := p.Extra.String(key); ok {
				st.Set(key, v)
			}
		}
	}

	return st
}

// joinPreAndOrdinary renders Pre-Depends and Depends compounds into a single
// Depends field value, pre-dependencies first, matching the declaration
// order AllDependencies walks them in.
func joinPreAndOrdinary(pre, ordinary []CompoundDependency) string {
	all := make([]CompoundDependency, 0, len(pre)+len(ordinary))
	all = append(all, pre...)
	all = append(all, ordinary...)
	return joinCompounds(all)
}

func joinCompounds(cds []CompoundDependency) string {
	parts := make([]string, 0, len(cds))
	for _, cd := range cds {
		parts = append(parts, cd.String())
	}
	return strings.Join(parts, ", ")
}

func setDeps(st *meta.Stanza, field, value string) {
	if value != "" {
		st.Set(field, value)
	}
}

func setNames(st *meta.Stanza, field string, names []string) {
	if len(names) > 0 {
		st.Set(field, strings.Join(names, ", "))
	}
}
