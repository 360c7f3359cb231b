package mountfs

import (
	"io"
	"os"
	"path"
	"sort"
)

// Stat returns metadata for name, following symlinks when followSymlinks is
// set. The call delegates wholesale to the routed backend, which resolves
// any symlinks within its own namespace; a symlink on one backend whose
// target exists only on another therefore reports not-found here. Use
// ResolveSymbolicLinks for cross-backend dereferencing.
func (ufs *FileSystem) Stat(name string, followSymlinks bool) (os.FileInfo, error) {
	name = cleanPath(name)
	backend, prefix := ufs.route(name)
	info, err := backend.Stat(ufs.adjustPath(name, backend), followSymlinks)
	if err != nil && os.IsNotExist(err) && name == prefix && name != "/" {
		// A mount root lives as an entry of the parent namespace until the
		// mount's own backend grows a copy; report the parent's view.
		parent, _ := ufs.route(path.Dir(name))
		if pinfo, perr := parent.Stat(ufs.adjustPath(name, parent), followSymlinks); perr == nil {
			return pinfo, nil
		}
	}
	return info, err
}

// Lstat returns metadata for name without following symlinks.
func (ufs *FileSystem) Lstat(name string) (os.FileInfo, error) {
	return ufs.Stat(name, false)
}

// SupportsModifications reports whether the backend resolved for name
// permits mutation. The router adds no policy of its own.
func (ufs *FileSystem) SupportsModifications(name string) bool {
	name = cleanPath(name)
	backend, _ := ufs.route(name)
	return backend.SupportsModifications(name)
}

// checkModifiable is consulted before every mutating call. It fails before
// any side effect, so a denied mutation leaves all backends untouched.
func checkModifiable(op, name string, backend Backend) error {
	if !backend.SupportsModifications(name) {
		return &os.PathError{Op: op, Path: name, Err: os.ErrPermission}
	}
	return nil
}

// ensureMountRoot grows the mount prefix chain on the mount's own backend
// before an interior mutation needs it as an anchor. Toward callers the
// mount root is materialized by the parent's backend; the mount backend is
// assumed to provide its root, which this realizes lazily. Failures are
// ignored here so the dispatched operation reports its own error.
func (ufs *FileSystem) ensureMountRoot(backend Backend, prefix string) {
	if prefix == "" || prefix == "/" {
		return
	}
	p := ""
	for _, seg := range splitPath(prefix) {
		p += "/" + seg
		if info, err := backend.Stat(p, true); err == nil && info.IsDir() {
			continue
		}
		backend.Mkdir(p, 0755)
	}
}

// Mkdir creates the directory name. Creating a directory exactly at a mount
// prefix is serviced by the backend owning the prefix's parent, so the new
// name shows up in the parent namespace's listing; the mount's own backend
// is never asked to create its root, which it is assumed to provide.
func (ufs *FileSystem) Mkdir(name string, perm os.FileMode) error {
	name = cleanPath(name)
	backend, prefix := ufs.route(name)
	if name == prefix && name != "/" {
		// The parent namespace may itself be a mount whose chain the
		// servicing backend has not grown yet.
		backend, prefix = ufs.route(path.Dir(name))
	}
	if err := checkModifiable("mkdir", name, backend); err != nil {
		return err
	}
	ufs.ensureMountRoot(backend, prefix)
	return backend.Mkdir(ufs.adjustPath(name, backend), perm)
}

// dirExists reports whether name exists as a directory somewhere in the
// union, including a mount root materialized on its parent's backend.
func (ufs *FileSystem) dirExists(name string) bool {
	info, err := ufs.Stat(name, true)
	return err == nil && info.IsDir()
}

// MkdirAll creates name and any missing parents. Parents are created from
// the root down, so each ancestor routes independently and directory chains
// that straddle a mount boundary are split between the backends involved.
func (ufs *FileSystem) MkdirAll(name string, perm os.FileMode) error {
	name = cleanPath(name)
	if name == "/" {
		return nil
	}
	if err := ufs.MkdirAll(path.Dir(name), perm); err != nil {
		return err
	}
	if ufs.dirExists(name) {
		return nil
	}
	err := ufs.Mkdir(name, perm)
	if err == nil {
		return nil
	}
	// Lost race with a concurrent creator counts as success, matching os.MkdirAll.
	if ufs.dirExists(name) {
		return nil
	}
	return err
}

// ReadDirNames lists the entries of dir: every name the routed backend
// itself contains, plus the name of every mount whose prefix is a direct
// child of dir, without duplicates. Mount children are listed even when
// their root was never created or listed on their own backend. Listing a
// mount's interior reflects only that mount's backend.
func (ufs *FileSystem) ReadDirNames(dir string) ([]string, error) {
	dir = cleanPath(dir)
	backend, prefix := ufs.route(dir)
	names, err := backend.ReadDirNames(ufs.adjustPath(dir, backend))
	if err != nil {
		// A mount root not yet materialized on its own backend, or a
		// directory that exists only as a run of mount prefixes, still
		// lists its registered children.
		if !os.IsNotExist(err) || (dir != prefix && !ufs.hasMountsUnder(dir)) {
			return nil, err
		}
		names = nil
	}
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		seen[name] = true
	}
	for _, name := range ufs.mountChildNames(dir) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Remove deletes a file, symlink, or empty directory. Removing a directory
// exactly at a mount prefix undoes its materialization on the parent's
// backend, mirroring how Mkdir created it there.
func (ufs *FileSystem) Remove(name string) error {
	name = cleanPath(name)
	backend, prefix := ufs.route(name)
	if name == prefix && name != "/" {
		backend, _ = ufs.route(path.Dir(name))
	}
	if err := checkModifiable("remove", name, backend); err != nil {
		return err
	}
	return backend.Remove(ufs.adjustPath(name, backend))
}

// Rename moves oldname to newname. Both paths must resolve to the same
// backend; the router offers no cross-backend move.
func (ufs *FileSystem) Rename(oldname, newname string) error {
	oldname = cleanPath(oldname)
	newname = cleanPath(newname)
	oldBackend, oldPrefix := ufs.route(oldname)
	if oldname == oldPrefix && oldname != "/" {
		// A mount root is an entry of the parent namespace.
		oldBackend, _ = ufs.route(path.Dir(oldname))
	}
	newBackend, newPrefix := ufs.route(newname)
	if newname == newPrefix && newname != "/" {
		newBackend, newPrefix = ufs.route(path.Dir(newname))
	}
	if oldBackend != newBackend {
		return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: ErrCrossBackend}
	}
	if err := checkModifiable("rename", oldname, oldBackend); err != nil {
		return err
	}
	if err := checkModifiable("rename", newname, newBackend); err != nil {
		return err
	}
	ufs.ensureMountRoot(newBackend, newPrefix)
	return oldBackend.Rename(ufs.adjustPath(oldname, oldBackend), ufs.adjustPath(newname, newBackend))
}

// OpenRead opens name for reading on its resolved backend.
func (ufs *FileSystem) OpenRead(name string) (io.ReadCloser, error) {
	name = cleanPath(name)
	backend, _ := ufs.route(name)
	return backend.OpenRead(ufs.adjustPath(name, backend))
}

// OpenWrite opens name for writing on its resolved backend, creating or
// truncating it.
func (ufs *FileSystem) OpenWrite(name string, perm os.FileMode) (io.WriteCloser, error) {
	name = cleanPath(name)
	backend, prefix := ufs.route(name)
	if err := checkModifiable("open", name, backend); err != nil {
		return nil, err
	}
	ufs.ensureMountRoot(backend, prefix)
	return backend.OpenWrite(ufs.adjustPath(name, backend), perm)
}

// Symlink creates a symbolic link at name holding the raw target string.
// The target is stored as given, with no existence check; it may name a
// location served by a different backend than the link itself.
func (ufs *FileSystem) Symlink(target, name string) error {
	name = cleanPath(name)
	backend, prefix := ufs.route(name)
	if err := checkModifiable("symlink", name, backend); err != nil {
		return err
	}
	ufs.ensureMountRoot(backend, prefix)
	return backend.Symlink(target, ufs.adjustPath(name, backend))
}

// Readlink returns the raw target string of the symlink at name.
func (ufs *FileSystem) Readlink(name string) (string, error) {
	name = cleanPath(name)
	backend, _ := ufs.route(name)
	return backend.Readlink(ufs.adjustPath(name, backend))
}

// Getxattr returns the extended attribute key of name from its resolved
// backend, or (nil, nil) when the attribute is not set.
func (ufs *FileSystem) Getxattr(name, key string) ([]byte, error) {
	name = cleanPath(name)
	backend, _ := ufs.route(name)
	return backend.Getxattr(ufs.adjustPath(name, backend), key)
}

// WriteFile writes data to name, creating missing parent directories.
func (ufs *FileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	name = cleanPath(name)
	if dir := path.Dir(name); dir != "/" {
		if err := ufs.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	w, err := ufs.OpenWrite(name, perm)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// ReadFile reads the contents of name.
func (ufs *FileSystem) ReadFile(name string) ([]byte, error) {
	r, err := ufs.OpenRead(name)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
