package feed_test

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"

	"github.com/oaklab-go/opkgmeta/catalog"
	"github.com/oaklab-go/opkgmeta/feed"
	"github.com/oaklab-go/opkgmeta/parse"
)

const samplePackages = `Package: foo
Version: 1.0-1
Architecture: amd64
Depends: bar

Package: bar
Version: 1.0-1
Architecture: amd64

`

func archPriority() *catalog.ArchPriorityTable {
	return catalog.NewArchPriorityTable(
		catalog.ArchPriorityEntry{Name: "amd64", Priority: 10},
	)
}

func TestLoadIndexPlainText(t *testing.T) {
	cat := catalog.New(archPriority(), nil, nil)

	pkgs, err := feed.LoadIndex(context.Background(), cat, bytes.NewReader([]byte(samplePackages)), parse.MaskAll, nil, nil)
	require.NoError(t, err)
	require.Len(t, pkgs, 2)
	require.Equal(t, "foo", pkgs[0].Name)
	require.Equal(t, "bar", pkgs[1].Name)
}

func TestLoadIndexGzipAutoDetected(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(samplePackages))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	cat := catalog.New(archPriority(), nil, nil)
	pkgs, err := feed.LoadIndex(context.Background(), cat, &buf, parse.MaskAll, nil, nil)
	require.NoError(t, err)
	require.Len(t, pkgs, 2)
}

func TestVerifyIndexIntegrityDetectsMismatch(t *testing.T) {
	raw := []byte(samplePackages)
	sum := sha256.Sum256(raw)

	releaseDoc := "SHA256:\n " + hex.EncodeToString(sum[:]) + " " + strconv.Itoa(len(raw)) + " Packages\n"
	release, err := feed.LoadRelease([]byte(releaseDoc))
	require.NoError(t, err)

	require.NoError(t, feed.VerifyIndexIntegrity(raw, "Packages", release))

	tampered := append(append([]byte{}, raw...), '\n')
	require.Error(t, feed.VerifyIndexIntegrity(tampered, "Packages", release))
}
