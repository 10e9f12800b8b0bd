package encstore

import "github.com/unkn0wn-root/encstore/backend"

// Environment holds the ambient backends a process offers, the way a browser
// offers localStorage and sessionStorage. Either may be nil.
type Environment struct {
	Primary backend.Backend
	Session backend.Backend
}

// Pick returns the backend for kind, or nil.
func (e *Environment) Pick(kind BackendKind) backend.Backend {
	if e == nil {
		return nil
	}
	if kind == Session {
		return e.Session
	}
	return e.Primary
}

func resolveBackend(opts Options) backend.Backend {
	if opts.Backend != nil {
		return opts.Backend
	}
	return opts.Environment.Pick(opts.BackendKind)
}
