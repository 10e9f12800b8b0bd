package encstore

import "github.com/unkn0wn-root/encstore/backend"

// CallOption tunes a single call. Options that do not apply to a call are
// ignored.
type CallOption func(*callOptions)

type callOptions struct {
	noEncrypt  bool
	noDecrypt  bool
	exact      bool
	single     bool
	backendOpt backend.SetOptions
}

// DoNotEncrypt stores the serialized value in clear for this call.
func DoNotEncrypt() CallOption { return func(o *callOptions) { o.noEncrypt = true } }

// DoNotDecrypt returns stored payloads without decrypting them.
func DoNotDecrypt() CallOption { return func(o *callOptions) { o.noDecrypt = true } }

// WithBackendOptions passes TTL/cost through to the backend on writes.
func WithBackendOptions(so backend.SetOptions) CallOption {
	return func(o *callOptions) { o.backendOpt = so }
}

// Exact makes a Substring pattern match only the key equal to it.
func Exact() CallOption { return func(o *callOptions) { o.exact = true } }

// Single makes GetItemFromPattern return the first match only instead of *Items.
func Single() CallOption { return func(o *callOptions) { o.single = true } }

func collect(opts []CallOption) callOptions {
	var co callOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&co)
		}
	}
	return co
}
