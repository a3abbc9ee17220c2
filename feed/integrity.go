package feed

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"github.com/oaklab-go/opkgmeta"
	"github.com/oaklab-go/opkgmeta/internalerrors"
	"github.com/oaklab-go/opkgmeta/types"
)

// LoadRelease decodes a Release descriptor's deb822 bytes into a
// types.Release, reusing the teacher's generic reflection-based decoder
// (the same one package meta exposes for any deb822 document, Release
// being the one instance this module needs beyond Package records).
func LoadRelease(data []byte) (*types.Release, error) {
	var rel types.Release
	if err := meta.Unmarshal(data, &rel); err != nil {
		return nil, fmt.Errorf("decoding release: %w", err)
	}
	return &rel, nil
}

// VerifyIndexIntegrity checks that raw (the exact bytes LoadIndex was
// handed, before decompression) matches the size and SHA-256 digest
// release declares for filename.
//
// This is spec category 5, "Integrity failure": the one piece of the
// downloader collaborator's checksum contract the core itself performs,
// because the core already has the bytes in hand and the Release
// descriptor's checksums are themselves catalog metadata, not a download
// detail. It does not verify the OpenPGP signature over the Release file
// itself; that remains the collab.Downloader's VerifySignature contract.
func VerifyIndexIntegrity(raw []byte, filename string, release *types.Release) error {
	sums, err := release.SHA256Sums()
	if err != nil {
		return fmt.Errorf("decoding release checksums: %w", err)
	}

	want, ok := sums[filename]
	if !ok {
		return &internalerrors.IntegrityError{Filename: filename, Reason: "no SHA-256 entry in release"}
	}

	for _, h := range release.SHA256 {
		if h.Filename == filename && h.Size != int64(len(raw)) {
			return &internalerrors.IntegrityError{Filename: filename, Reason: "size mismatch"}
		}
	}

	got := sha256.Sum256(raw)
	if !bytes.Equal(got[:], want) {
		return &internalerrors.IntegrityError{Filename: filename, Reason: "SHA-256 mismatch"}
	}

	return nil
}
