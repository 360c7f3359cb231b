// Package memfs provides an in-memory backend for mountfs. It supports
// files, directories, and symlinks, and exists primarily for tests and for
// scratch namespaces that should never touch disk.
package memfs

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// maxLinkHops bounds symlink chains followed inside this backend.
const maxLinkHops = 40

// ErrTooManyLinks is returned when a symlink chain inside this backend
// exceeds the hop limit
var ErrTooManyLinks = errors.New("memfs: too many levels of symbolic links")

// FileSystem is an in-memory implementation of the mountfs backend
// contract. A single
// lock guards the whole tree; operations are linearizable but not
// transactional across calls.
type FileSystem struct {
	mu        sync.RWMutex
	root      *node
	clk       clock.Clock
	canModify func(name string) bool
	xattr     func(name, key string) ([]byte, error)
}

// node is a single entry in the tree. A node is a directory, a regular
// file, or a symlink, discriminated by mode.
type node struct {
	mode     os.FileMode
	data     []byte
	target   string
	children map[string]*node
	modTime  time.Time
}

// Option is a functional option for configuring a FileSystem
type Option func(*FileSystem)

// WithClock sets the time source used for modification timestamps. Tests
// pass clock.NewMock() for deterministic times.
func WithClock(clk clock.Clock) Option {
	return func(fs *FileSystem) {
		fs.clk = clk
	}
}

// WithModificationPolicy sets the predicate answering SupportsModifications.
// Capability variation is data per instance, not a subtype.
func WithModificationPolicy(policy func(name string) bool) Option {
	return func(fs *FileSystem) {
		fs.canModify = policy
	}
}

// WithXattrFunc sets the extended-attribute lookup. Absent attributes are
// reported as (nil, nil).
func WithXattrFunc(fn func(name, key string) ([]byte, error)) Option {
	return func(fs *FileSystem) {
		fs.xattr = fn
	}
}

// New creates an empty in-memory filesystem whose root directory exists.
func New(opts ...Option) *FileSystem {
	fs := &FileSystem{
		root:      newDirNode(time.Time{}),
		clk:       clock.New(),
		canModify: func(string) bool { return true },
	}
	for _, opt := range opts {
		opt(fs)
	}
	fs.root.modTime = fs.clk.Now()
	return fs
}

// newDirNode creates an empty directory node
func newDirNode(modTime time.Time) *node {
	return &node{
		mode:     os.ModeDir | 0755,
		children: make(map[string]*node),
		modTime:  modTime,
	}
}

// cleanPath normalizes a path to canonical absolute form
func cleanPath(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

// splitPath returns the segments of a canonical path, none for the root
func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// notExist builds the not-found error for an operation on name
func notExist(op, name string) error {
	return &os.PathError{Op: op, Path: name, Err: os.ErrNotExist}
}

// lookup walks name from the root. Symlinks met in intermediate segments
// are always followed; a symlink in the final segment is followed only when
// follow is set. Targets are interpreted inside this filesystem only, so a
// link pointing at a location that exists on some other backend reports
// not-found here. Callers hold at least the read lock.
func (fs *FileSystem) lookup(op, name string, follow bool, hops int) (*node, error) {
	if hops > maxLinkHops {
		return nil, &os.PathError{Op: op, Path: name, Err: ErrTooManyLinks}
	}
	segs := splitPath(name)
	n := fs.root
	for i, seg := range segs {
		if !n.mode.IsDir() {
			return nil, notExist(op, name)
		}
		child, ok := n.children[seg]
		if !ok {
			return nil, notExist(op, name)
		}
		last := i == len(segs)-1
		if child.mode&os.ModeSymlink != 0 && (!last || follow) {
			dir := "/" + strings.Join(segs[:i], "/")
			resolved := child.target
			if !path.IsAbs(resolved) {
				resolved = path.Join(dir, resolved)
			}
			rest := strings.Join(segs[i+1:], "/")
			return fs.lookup(op, cleanPath(path.Join(resolved, rest)), follow, hops+1)
		}
		n = child
	}
	return n, nil
}

// find walks to name's parent directory and returns (parent, base).
func (fs *FileSystem) find(op, name string) (*node, string, error) {
	name = cleanPath(name)
	if name == "/" {
		return nil, "", &os.PathError{Op: op, Path: name, Err: os.ErrInvalid}
	}
	parent, err := fs.lookup(op, path.Dir(name), true, 0)
	if err != nil {
		return nil, "", err
	}
	if !parent.mode.IsDir() {
		return nil, "", notExist(op, name)
	}
	return parent, path.Base(name), nil
}

// Stat returns metadata for name, following symlinks when followSymlinks
// is set.
func (fs *FileSystem) Stat(name string, followSymlinks bool) (os.FileInfo, error) {
	name = cleanPath(name)
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	n, err := fs.lookup("stat", name, followSymlinks, 0)
	if err != nil {
		return nil, err
	}
	return n.fileInfo(path.Base(name)), nil
}

// Mkdir creates the directory name; the parent must already exist.
func (fs *FileSystem) Mkdir(name string, perm os.FileMode) error {
	name = cleanPath(name)
	fs.mu.Lock()
	defer fs.mu.Unlock()

	parent, base, err := fs.find("mkdir", name)
	if err != nil {
		return err
	}
	if _, exists := parent.children[base]; exists {
		return &os.PathError{Op: "mkdir", Path: name, Err: os.ErrExist}
	}
	now := fs.clk.Now()
	dir := newDirNode(now)
	dir.mode = os.ModeDir | perm.Perm()
	parent.children[base] = dir
	parent.modTime = now
	return nil
}

// ReadDirNames returns the names of the entries of the directory name.
func (fs *FileSystem) ReadDirNames(name string) ([]string, error) {
	name = cleanPath(name)
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	n, err := fs.lookup("readdir", name, true, 0)
	if err != nil {
		return nil, err
	}
	if !n.mode.IsDir() {
		return nil, &os.PathError{Op: "readdir", Path: name, Err: os.ErrInvalid}
	}
	names := make([]string, 0, len(n.children))
	for child := range n.children {
		names = append(names, child)
	}
	return names, nil
}

// Remove deletes a file, symlink, or empty directory.
func (fs *FileSystem) Remove(name string) error {
	name = cleanPath(name)
	fs.mu.Lock()
	defer fs.mu.Unlock()

	parent, base, err := fs.find("remove", name)
	if err != nil {
		return err
	}
	n, exists := parent.children[base]
	if !exists {
		return notExist("remove", name)
	}
	if n.mode.IsDir() && len(n.children) > 0 {
		return &os.PathError{Op: "remove", Path: name, Err: os.ErrInvalid}
	}
	delete(parent.children, base)
	parent.modTime = fs.clk.Now()
	return nil
}

// OpenRead opens name for reading. The returned reader sees a snapshot of
// the contents at open time.
func (fs *FileSystem) OpenRead(name string) (io.ReadCloser, error) {
	name = cleanPath(name)
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	n, err := fs.lookup("open", name, true, 0)
	if err != nil {
		return nil, err
	}
	if n.mode.IsDir() {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrInvalid}
	}
	data := make([]byte, len(n.data))
	copy(data, n.data)
	return io.NopCloser(bytes.NewReader(data)), nil
}

// OpenWrite opens name for writing, creating it if necessary. Content is
// buffered and committed atomically when the writer is closed.
func (fs *FileSystem) OpenWrite(name string, perm os.FileMode) (io.WriteCloser, error) {
	name = cleanPath(name)
	fs.mu.Lock()
	defer fs.mu.Unlock()

	parent, base, err := fs.find("open", name)
	if err != nil {
		return nil, err
	}
	if existing, ok := parent.children[base]; ok && existing.mode.IsDir() {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrInvalid}
	}
	return &fileWriter{fs: fs, parent: parent, base: base, perm: perm.Perm()}, nil
}

// Symlink creates a symbolic link at name holding the raw target string.
// The target is not checked for existence.
func (fs *FileSystem) Symlink(target, name string) error {
	name = cleanPath(name)
	fs.mu.Lock()
	defer fs.mu.Unlock()

	parent, base, err := fs.find("symlink", name)
	if err != nil {
		return err
	}
	if _, exists := parent.children[base]; exists {
		return &os.PathError{Op: "symlink", Path: name, Err: os.ErrExist}
	}
	now := fs.clk.Now()
	parent.children[base] = &node{
		mode:    os.ModeSymlink | 0777,
		target:  target,
		modTime: now,
	}
	parent.modTime = now
	return nil
}

// Readlink returns the raw target string of the symlink at name.
func (fs *FileSystem) Readlink(name string) (string, error) {
	name = cleanPath(name)
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	n, err := fs.lookup("readlink", name, false, 0)
	if err != nil {
		return "", err
	}
	if n.mode&os.ModeSymlink == 0 {
		return "", &os.PathError{Op: "readlink", Path: name, Err: os.ErrInvalid}
	}
	return n.target, nil
}

// Rename moves oldname to newname, replacing any existing file at newname.
func (fs *FileSystem) Rename(oldname, newname string) error {
	oldname = cleanPath(oldname)
	newname = cleanPath(newname)
	fs.mu.Lock()
	defer fs.mu.Unlock()

	oldParent, oldBase, err := fs.find("rename", oldname)
	if err != nil {
		return err
	}
	n, exists := oldParent.children[oldBase]
	if !exists {
		return notExist("rename", oldname)
	}
	newParent, newBase, err := fs.find("rename", newname)
	if err != nil {
		return err
	}
	if existing, ok := newParent.children[newBase]; ok && existing.mode.IsDir() {
		return &os.PathError{Op: "rename", Path: newname, Err: os.ErrExist}
	}
	delete(oldParent.children, oldBase)
	newParent.children[newBase] = n
	now := fs.clk.Now()
	oldParent.modTime = now
	newParent.modTime = now
	return nil
}

// Getxattr returns the extended attribute key of name, or (nil, nil) when
// no lookup function is configured or the attribute is not set.
func (fs *FileSystem) Getxattr(name, key string) ([]byte, error) {
	if fs.xattr == nil {
		return nil, nil
	}
	return fs.xattr(cleanPath(name), key)
}

// SupportsModifications reports whether mutating calls are permitted for
// name, per the configured policy.
func (fs *FileSystem) SupportsModifications(name string) bool {
	return fs.canModify(cleanPath(name))
}

// fileWriter buffers written bytes and installs them as the file's new
// contents on Close.
type fileWriter struct {
	fs     *FileSystem
	parent *node
	base   string
	perm   os.FileMode
	buf    bytes.Buffer
	closed bool
}

// Write appends to the pending contents
func (w *fileWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, os.ErrClosed
	}
	return w.buf.Write(p)
}

// Close commits the pending contents to the tree
func (w *fileWriter) Close() error {
	if w.closed {
		return os.ErrClosed
	}
	w.closed = true

	w.fs.mu.Lock()
	defer w.fs.mu.Unlock()

	now := w.fs.clk.Now()
	w.parent.children[w.base] = &node{
		mode:    w.perm,
		data:    w.buf.Bytes(),
		modTime: now,
	}
	w.parent.modTime = now
	return nil
}

// fileInfo materializes an os.FileInfo snapshot for a node
func (n *node) fileInfo(name string) os.FileInfo {
	if name == "" {
		name = "/"
	}
	size := int64(len(n.data))
	if n.mode&os.ModeSymlink != 0 {
		size = int64(len(n.target))
	}
	return &fileInfo{name: name, size: size, mode: n.mode, modTime: n.modTime}
}

// fileInfo implements os.FileInfo for in-memory nodes
type fileInfo struct {
	name    string
	size    int64
	mode    os.FileMode
	modTime time.Time
}

func (fi *fileInfo) Name() string       { return fi.name }
func (fi *fileInfo) Size() int64        { return fi.size }
func (fi *fileInfo) Mode() os.FileMode  { return fi.mode }
func (fi *fileInfo) ModTime() time.Time { return fi.modTime }
func (fi *fileInfo) IsDir() bool        { return fi.mode.IsDir() }
func (fi *fileInfo) Sys() interface{}   { return nil }
