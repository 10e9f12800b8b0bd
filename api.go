package encstore

import (
	"context"

	"github.com/unkn0wn-root/encstore/backend"
	"github.com/unkn0wn-root/encstore/codec"
	"github.com/unkn0wn-root/encstore/crypt"
)

// BackendKind selects which ambient backend an Environment binds.
type BackendKind int

const (
	Primary BackendKind = iota // long-lived store (localStorage in a browser)
	Session                    // per-session store (sessionStorage)
)

func (k BackendKind) String() string {
	if k == Session {
		return "session"
	}
	return "primary"
}

// Storage is an encrypting key-value facade over a backend.Backend.
// Keys passed in and returned are logical (prefix-free).
//
// When no backend is bound every backend-touching call is a no-op returning
// zero values and nil errors; no event is emitted for such calls.
type Storage interface {
	// Single
	SetItem(ctx context.Context, key string, value any, opts ...CallOption) error
	GetItem(ctx context.Context, key string, opts ...CallOption) (value any, ok bool, err error)
	GetItemInto(ctx context.Context, key string, dst any, opts ...CallOption) (ok bool, err error)
	RemoveItem(ctx context.Context, key string) error

	// Batch (sequential, one aggregate event each)
	SetMultipleItems(ctx context.Context, entries []Entry, opts ...CallOption) error
	GetMultipleItems(ctx context.Context, keys []string, opts ...CallOption) (*Items, error)
	RemoveMultipleItems(ctx context.Context, keys []string) error

	// Pattern
	KeysFromPattern(ctx context.Context, p Pattern, opts ...CallOption) ([]string, error)
	GetItemFromPattern(ctx context.Context, p Pattern, opts ...CallOption) (value any, ok bool, err error)
	RemoveItemFromPattern(ctx context.Context, p Pattern, opts ...CallOption) error

	// Whole store
	Length(ctx context.Context) (int, error)
	Key(ctx context.Context, index int) (key string, ok bool, err error)
	Clear(ctx context.Context) error

	// Backend-free helpers
	EncryptValue(v any) (string, error)
	DecryptValue(s string) (any, error)
	DecryptValueInto(s string, dst any) error
	// Deprecated: use EncryptValue.
	EncryptString(s string) (string, error)
	// Deprecated: use DecryptValue.
	DecryptString(s string) (string, error)
	Hash(value string) string
	MD5Hash(value string) string

	Prefix() string
	Algorithm() crypt.Algorithm
	Bound() bool // a backend is bound
}

// Entry is one SetMultipleItems element. Options, when set, reach the backend
// for this entry only.
type Entry struct {
	Key     string
	Value   any
	Options *backend.SetOptions
}

// Options configure a Storage. Everything is optional; the secret is passed
// to New separately and never stored in Options.
type Options struct {
	BackendKind        BackendKind     // which Environment backend to bind when Backend is nil
	Prefix             string          // key namespace; physical key is "<prefix>:<key>"
	DoNotEncryptValues bool            // store serialized values in clear
	StateManagement    bool            // GetItem returns the decrypted string undecoded
	Algorithm          crypt.Algorithm // "" => crypt.AES
	KDFIterations      int             // 0 => crypt.DefaultIterations
	NotifyHandler      NotifyHandler   // nil => no events

	Backend     backend.Backend // explicit backend; wins over Environment
	Environment *Environment    // ambient backends

	Codec  codec.Codec // nil => codec.JSON{}
	Logger Logger      // nil => NopLogger
}

// New builds a Storage. The secret must be at least MinSecretLength runes.
func New(secret string, opts Options) (Storage, error) {
	return newStorage(secret, opts)
}
