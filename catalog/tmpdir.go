package catalog

import (
	"path/filepath"

	"github.com/google/uuid"
)

// NewTmpUnpackDir returns a unique path, under base, to use as a package's
// scratch unpack directory during archive extraction. The caller is
// responsible for creating and, on every exit path, removing the directory;
// the catalog only guarantees the name does not collide with a concurrently
// unpacking package.
func NewTmpUnpackDir(base, pkgName string) string {
	return filepath.Join(base, pkgName+"-"+uuid.NewString())
}
