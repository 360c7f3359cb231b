// Package absfsfs adapts any absfs.SymlinkFileSystem as a mountfs.Backend,
// so the absfs family of filesystems (memfs, osfs, boltfs, ...) can serve a
// mount directly.
package absfsfs

import (
	"io"
	"os"

	"github.com/absfs/absfs"

	"github.com/absfs/mountfs"
)

// Backend wraps an absfs.SymlinkFileSystem behind the mountfs capability
// contract.
type Backend struct {
	fs        absfs.SymlinkFileSystem
	canModify func(name string) bool
	xattr     func(name, key string) ([]byte, error)
}

// Ensure Backend implements mountfs.Backend at compile time
var _ mountfs.Backend = (*Backend)(nil)

// Option is a functional option for configuring a Backend
type Option func(*Backend)

// WithModificationPolicy sets the predicate answering SupportsModifications.
// The default permits everything.
func WithModificationPolicy(policy func(name string) bool) Option {
	return func(b *Backend) {
		b.canModify = policy
	}
}

// WithXattrFunc sets the extended-attribute lookup. absfs carries no xattr
// concept of its own, so absent a lookup every attribute reads as unset.
func WithXattrFunc(fn func(name, key string) ([]byte, error)) Option {
	return func(b *Backend) {
		b.xattr = fn
	}
}

// New wraps fs as a mountfs backend.
func New(fs absfs.SymlinkFileSystem, opts ...Option) *Backend {
	b := &Backend{
		fs:        fs,
		canModify: func(string) bool { return true },
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Stat returns metadata for name, using Lstat when followSymlinks is unset.
func (b *Backend) Stat(name string, followSymlinks bool) (os.FileInfo, error) {
	if followSymlinks {
		return b.fs.Stat(name)
	}
	return b.fs.Lstat(name)
}

// Mkdir creates the directory name
func (b *Backend) Mkdir(name string, perm os.FileMode) error {
	return b.fs.Mkdir(name, perm)
}

// ReadDirNames returns the names of the entries of the directory name
func (b *Backend) ReadDirNames(name string) ([]string, error) {
	f, err := b.fs.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.Readdirnames(-1)
}

// Remove deletes a file, symlink, or empty directory
func (b *Backend) Remove(name string) error {
	return b.fs.Remove(name)
}

// OpenRead opens name for reading
func (b *Backend) OpenRead(name string) (io.ReadCloser, error) {
	return b.fs.Open(name)
}

// OpenWrite opens name for writing, creating or truncating it
func (b *Backend) OpenWrite(name string, perm os.FileMode) (io.WriteCloser, error) {
	return b.fs.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
}

// Symlink creates a symbolic link at name holding the raw target string
func (b *Backend) Symlink(target, name string) error {
	return b.fs.Symlink(target, name)
}

// Readlink returns the raw target string of the symlink at name
func (b *Backend) Readlink(name string) (string, error) {
	return b.fs.Readlink(name)
}

// Rename moves oldname to newname
func (b *Backend) Rename(oldname, newname string) error {
	return b.fs.Rename(oldname, newname)
}

// Getxattr returns the extended attribute key of name, or (nil, nil) when
// no lookup function is configured or the attribute is not set.
func (b *Backend) Getxattr(name, key string) ([]byte, error) {
	if b.xattr == nil {
		return nil, nil
	}
	return b.xattr(name, key)
}

// SupportsModifications reports whether mutating calls are permitted for
// name, per the configured policy.
func (b *Backend) SupportsModifications(name string) bool {
	return b.canModify(name)
}
