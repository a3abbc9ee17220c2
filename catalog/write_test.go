package catalog_test

import (
	"testing"

	"github.com/oaklab-go/opkgmeta/catalog"
	"github.com/oaklab-go/opkgmeta/types/dependency"
	"github.com/stretchr/testify/require"
)

func TestPkgToStanzaFieldOrder(t *testing.T) {
	p := newPkg("foo", "1.0-1", "amd64")
	p.Section = "base"
	p.Essential = true
	p.Maintainer = "Jane Dev <jane@example.com>"
	p.MD5 = "d41d8cd98f00b204e9800998ecf8427e"
	p.Size = 1024
	p.Filename = "foo_1.0-1_amd64.ipk"
	p.Description = "a test package"
	p.Depends = []catalog.CompoundDependency{
		{Type: catalog.DependTypeDepend, Relation: dependency.Relation{
			Possibilities: []dependency.Possibility{{Name: "libbar"}},
		}},
	}
	p.Conffiles = []catalog.Conffile{{Path: "/etc/foo.conf", Checksum: "abc123"}}

	st := p.ToStanza()

	require.Equal(t, []string{
		"Package", "Version", "Depends", "Section", "Essential",
		"Architecture", "Maintainer", "MD5sum", "Size", "Filename",
		"Conffiles", "Description",
	}, st.Order)
	require.Equal(t, "foo", st.Values["Package"])
	require.Equal(t, "libbar", st.Values["Depends"])
	require.Equal(t, "yes", st.Values["Essential"])
}

func TestPkgToStanzaOmitsEmptyFields(t *testing.T) {
	p := newPkg("bare", "1.0-1", "amd64")
	st := p.ToStanza()

	_, hasDepends := st.Values["Depends"]
	require.False(t, hasDepends)
	_, hasSection := st.Values["Section"]
	require.False(t, hasSection)
}
