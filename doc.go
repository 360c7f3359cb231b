/*
Package mountfs routes a single rooted namespace across several
independently-backed storage hierarchies, so callers address files with
ordinary absolute paths without knowing which backend stores them.

# Overview

A FileSystem is built from an immutable table of mount prefixes bound to
backends, plus one mandatory default backend for everything else. Every
operation canonicalizes its path lexically ("." and ".." are resolved
without touching any backend), then routes it to the backend bound to the
longest matching prefix, then dispatches. Backends interpret the full
absolute path against their own virtual root; the router never rewrites it.

# Key Behaviors

  - Longest-prefix routing: with "/foo" and "/foo/bar" both mounted,
    "/foo/bar/x" goes to the inner mount and "/foo/x" to the outer one.
  - Mount root materialization: creating a directory exactly at a mount
    prefix is serviced by the parent namespace's backend, so the mount shows
    up when the parent is listed; the mount's interior is served entirely by
    its own backend.
  - Per-backend modification gate: every mutating call first asks the
    resolved backend whether it permits modification and fails with a
    permission error before any side effect when it does not.
  - Cross-backend symlinks: a link stored on one backend may name a target
    served by another. ResolveSymbolicLinks re-routes after every hop and
    honors that; a plain Stat with follow set delegates to the link's own
    backend and reports not-found instead.

# Basic Usage

	package main

	import (
	    "github.com/absfs/mountfs"
	    "github.com/absfs/mountfs/memfs"
	)

	func main() {
	    in := memfs.New()
	    out := memfs.New()

	    ufs, err := mountfs.New(map[string]mountfs.Backend{
	        "/in":  in,
	        "/out": out,
	    }, memfs.New())
	    if err != nil {
	        panic(err)
	    }

	    ufs.Mkdir("/out", 0755) // serviced by the default backend
	    ufs.WriteFile("/out/result.txt", []byte("done"), 0644)
	}

# Backends

Any storage engine implementing the Backend interface can be mounted. The
repository ships memfs (in-memory, with an injectable clock), aferofs
(adapts any afero.Fs, including the native OS filesystem) and absfsfs
(adapts any absfs.SymlinkFileSystem).
*/
package mountfs
