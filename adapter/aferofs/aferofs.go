// Package aferofs adapts any afero.Fs as a mountfs.Backend. Wrapping
// afero.NewOsFs gives the native OS backend; afero.NewBasePathFs confines it
// to a directory so the backend's virtual root lines up with a mount.
package aferofs

import (
	"io"
	"os"

	"github.com/spf13/afero"

	"github.com/absfs/mountfs"
)

// Backend wraps an afero.Fs behind the mountfs capability contract.
type Backend struct {
	fs        afero.Fs
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

// WithXattrFunc sets the extended-attribute lookup. afero carries no xattr
// concept of its own, so absent a lookup every attribute reads as unset.
func WithXattrFunc(fn func(name, key string) ([]byte, error)) Option {
	return func(b *Backend) {
		b.xattr = fn
	}
}

// New wraps fs as a mountfs backend.
func New(fs afero.Fs, opts ...Option) *Backend {
	b := &Backend{
		fs:        fs,
		canModify: func(string) bool { return true },
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Stat returns metadata for name. Without follow it uses the wrapped
// filesystem's Lstat when available and falls back to Stat otherwise.
func (b *Backend) Stat(name string, followSymlinks bool) (os.FileInfo, error) {
	if !followSymlinks {
		if lstater, ok := b.fs.(afero.Lstater); ok {
			info, _, err := lstater.LstatIfPossible(name)
			return info, err
		}
	}
	return b.fs.Stat(name)
}

// Mkdir creates the directory name
func (b *Backend) Mkdir(name string, perm os.FileMode) error {
	return b.fs.Mkdir(name, perm)
}

// ReadDirNames returns the names of the entries of the directory name
func (b *Backend) ReadDirNames(name string) ([]string, error) {
	infos, err := afero.ReadDir(b.fs, name)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name()
	}
	return names, nil
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

// Symlink creates a symbolic link at name when the wrapped filesystem
// supports symlinks, and fails with os.ErrInvalid otherwise.
func (b *Backend) Symlink(target, name string) error {
	if linker, ok := b.fs.(afero.Linker); ok {
		return linker.SymlinkIfPossible(target, name)
	}
	return &os.PathError{Op: "symlink", Path: name, Err: os.ErrInvalid}
}

// Readlink returns the raw target string of the symlink at name.
func (b *Backend) Readlink(name string) (string, error) {
	if reader, ok := b.fs.(afero.LinkReader); ok {
		return reader.ReadlinkIfPossible(name)
	}
	return "", &os.PathError{Op: "readlink", Path: name, Err: os.ErrInvalid}
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
