package mountfs

import (
	"os"
	"path"
)

// maxSymlinkDepth bounds link chains, same limit as Linux MAXSYMLINKS.
const maxSymlinkDepth = 40

// ResolveSymbolicLinks resolves name hop by hop to a canonical path whose
// final component is not a symlink. Each hop reads the raw target from the
// backend currently routed for the link, resolves a relative target against
// the link's containing directory, re-canonicalizes, and re-routes; the
// interpreted target may therefore belong to a different mount than the
// link that named it. This is the sanctioned way to dereference a
// cross-backend symlink. Chains longer than the hop limit, which covers
// cycles, fail with ErrTooManyLinks.
func (ufs *FileSystem) ResolveSymbolicLinks(name string) (string, error) {
	name = cleanPath(name)
	for depth := 0; depth < maxSymlinkDepth; depth++ {
		backend, _ := ufs.route(name)
		info, err := backend.Stat(ufs.adjustPath(name, backend), false)
		if err != nil {
			return "", err
		}
		if info.Mode()&os.ModeSymlink == 0 {
			return name, nil
		}
		target, err := backend.Readlink(ufs.adjustPath(name, backend))
		if err != nil {
			return "", err
		}
		if path.IsAbs(target) {
			name = cleanPath(target)
		} else {
			name = cleanPath(path.Join(path.Dir(name), target))
		}
	}
	return "", &os.PathError{Op: "resolve", Path: name, Err: ErrTooManyLinks}
}
