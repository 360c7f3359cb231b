package mountfs

import (
	"fmt"
	"path"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// FileSystem routes logical absolute paths across an immutable table of
// (mount prefix, backend) bindings plus one mandatory default backend. The
// table is frozen at construction, so routing is a pure function of the
// canonical path and concurrent use needs no locking in the router itself;
// any locking a mount's data requires is the mount's own concern.
type FileSystem struct {
	mounts         map[string]Backend
	defaultBackend Backend
}

// New creates a FileSystem from an unordered mapping of canonical absolute
// mount prefixes to backends and a mandatory default backend for paths
// matching no prefix. The mapping is copied; later changes to the argument
// have no effect on the router.
//
// All configuration problems are reported together: a missing default
// backend, a nil mounted backend, a relative prefix, and two keys that
// canonicalize to the same prefix (such as "/x" and "/x/") each contribute
// an error to the returned multierror.
func New(mounts map[string]Backend, defaultBackend Backend) (*FileSystem, error) {
	var errs *multierror.Error
	if defaultBackend == nil {
		errs = multierror.Append(errs, ErrNoDefaultBackend)
	}

	frozen := make(map[string]Backend, len(mounts))
	for prefix, backend := range mounts {
		if backend == nil {
			errs = multierror.Append(errs, fmt.Errorf("%w: %q", ErrNilBackend, prefix))
			continue
		}
		if !strings.HasPrefix(prefix, "/") {
			errs = multierror.Append(errs, fmt.Errorf("%w: %q", ErrRelativePrefix, prefix))
			continue
		}
		canonical := cleanPath(prefix)
		if _, exists := frozen[canonical]; exists {
			errs = multierror.Append(errs, fmt.Errorf("%w: %q", ErrDuplicatePrefix, canonical))
			continue
		}
		frozen[canonical] = backend
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return &FileSystem{mounts: frozen, defaultBackend: defaultBackend}, nil
}

// Resolve returns the backend that owns name. The path is canonicalized
// first, so "/out/../in" resolves to the backend mounted at "/in".
func (ufs *FileSystem) Resolve(name string) Backend {
	backend, _ := ufs.route(cleanPath(name))
	return backend
}

// route walks the canonical path upward (the path itself, then its parent,
// and so on to the root) and returns the backend bound to the first prefix
// found, along with that prefix. The walk order is what guarantees
// longest-prefix-match. Paths matching no prefix land on the default
// backend with an empty prefix.
func (ufs *FileSystem) route(canonical string) (Backend, string) {
	for p := canonical; ; p = path.Dir(p) {
		if backend, ok := ufs.mounts[p]; ok {
			return backend, p
		}
		if p == "/" {
			return ufs.defaultBackend, ""
		}
	}
}

// mountChildNames returns the base name of every mount prefix whose parent
// directory is dir.
func (ufs *FileSystem) mountChildNames(dir string) []string {
	var names []string
	for prefix := range ufs.mounts {
		if prefix != "/" && path.Dir(prefix) == dir {
			names = append(names, path.Base(prefix))
		}
	}
	return names
}

// hasMountsUnder reports whether any mount prefix is a direct child of dir.
func (ufs *FileSystem) hasMountsUnder(dir string) bool {
	for prefix := range ufs.mounts {
		if prefix != "/" && path.Dir(prefix) == dir {
			return true
		}
	}
	return false
}

// adjustPath normalizes a path for handoff to the backend it resolves to.
// Plain rooted path strings carry no provenance, so the transform is the
// identity; it exists for path values that attach an origin filesystem or
// root in a concrete implementation.
func (ufs *FileSystem) adjustPath(name string, backend Backend) string {
	return name
}
