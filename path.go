package mountfs

import (
	"path"
	"strings"
)

// cleanPath normalizes a logical path to its canonical absolute form.
// Purely lexical: "." segments are dropped, ".." removes the preceding
// segment and clamps at the root, no backend is consulted. Canonical paths
// are the sole input to routing, so two spellings that clean to the same
// string always route to the same backend.
func cleanPath(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

// splitPath returns the segments of a canonical path, none for the root.
func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
