package mountfs

import "errors"

var (
	// ErrNoDefaultBackend is returned by New when no default backend is supplied
	ErrNoDefaultBackend = errors.New("mountfs: default backend is required")
	// ErrNilBackend is returned by New when a mount prefix is bound to a nil backend
	ErrNilBackend = errors.New("mountfs: mounted backend is nil")
	// ErrRelativePrefix is returned by New when a mount prefix is not absolute
	ErrRelativePrefix = errors.New("mountfs: mount prefix must be absolute")
	// ErrDuplicatePrefix is returned by New when two prefixes canonicalize to the same path
	ErrDuplicatePrefix = errors.New("mountfs: duplicate mount prefix")
	// ErrCrossBackend is returned when a rename would move an entry between backends
	ErrCrossBackend = errors.New("mountfs: rename across backends")
	// ErrTooManyLinks is returned when symlink resolution exceeds the hop limit
	ErrTooManyLinks = errors.New("mountfs: too many levels of symbolic links")
)
