package mountfs

import (
	"io"
	"os"
)

// Backend is the capability contract every mounted storage engine must
// satisfy. Each backend interprets the full absolute path it receives
// relative to its own virtual root; the router never rewrites paths before
// dispatch.
//
// Implementations in this repository include memfs.FileSystem (in-memory),
// aferofs.Backend (any afero.Fs, including the native OS filesystem) and
// absfsfs.Backend (any absfs.SymlinkFileSystem). A backend is free to be
// read-only; it signals that through SupportsModifications and the router
// enforces it before dispatching any mutating call.
type Backend interface {
	// Stat returns metadata for name. When followSymlinks is set the backend
	// resolves symlinks itself, entirely within its own namespace; a link
	// whose target exists only on some other backend therefore reports
	// not-found here.
	Stat(name string, followSymlinks bool) (os.FileInfo, error)

	// Mkdir creates the directory name. The parent must already exist.
	Mkdir(name string, perm os.FileMode) error

	// ReadDirNames returns the names of the entries of the directory name,
	// without duplicates and in no particular order.
	ReadDirNames(name string) ([]string, error)

	// Remove deletes a file, symlink, or empty directory.
	Remove(name string) error

	// OpenRead opens name for reading.
	OpenRead(name string) (io.ReadCloser, error)

	// OpenWrite opens name for writing, creating it if necessary and
	// truncating it otherwise.
	OpenWrite(name string, perm os.FileMode) (io.WriteCloser, error)

	// Symlink creates a symbolic link at name holding the raw target string.
	// The target is not checked for existence.
	Symlink(target, name string) error

	// Readlink returns the raw target string of the symlink at name.
	Readlink(name string) (string, error)

	// Rename moves oldname to newname within this backend.
	Rename(oldname, newname string) error

	// Getxattr returns the extended attribute key of name, or (nil, nil)
	// when the attribute is not set.
	Getxattr(name, key string) ([]byte, error)

	// SupportsModifications reports whether mutating calls are permitted
	// for name.
	SupportsModifications(name string) bool
}
