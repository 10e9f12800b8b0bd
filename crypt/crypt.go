// Package crypt provides the encryption providers used by encstore.
//
// Providers are resolved by name through a closed registry. Every provider
// derives its key once from the caller's secret (PBKDF2-SHA256) and emits a
// framed envelope (algorithm id, nonce, sealed bytes) encoded as standard
// base64, so ciphertext is safe to keep in string-only stores.
package crypt

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/crypto/pbkdf2"

	"github.com/unkn0wn-root/encstore/internal/envelope"
)

// Algorithm names an encryption provider.
type Algorithm string

const (
	AES      Algorithm = "AES"      // AES-256-GCM
	ChaCha20 Algorithm = "ChaCha20" // XChaCha20-Poly1305
	RC4      Algorithm = "RC4"      // legacy, unauthenticated
	RC4Drop  Algorithm = "RC4Drop"  // legacy, unauthenticated, drops 768 keystream bytes
	Rabbit   Algorithm = "Rabbit"   // recognised, not implemented
)

const (
	KeySize           = 32    // derived key size
	DefaultIterations = 10000 // PBKDF2 iterations
)

// envelope algorithm ids; never reuse a retired value
const (
	idAES      byte = 1
	idChaCha20 byte = 2
	idRC4      byte = 3
	idRC4Drop  byte = 4
)

var (
	ErrUnsupportedAlgorithm = errors.New("crypt: unsupported algorithm")
	ErrAuthFailed           = errors.New("crypt: authentication failed")
	ErrCorrupt              = errors.New("crypt: corrupt ciphertext")
	ErrWrongAlgorithm       = errors.New("crypt: ciphertext produced by another algorithm")
)

// Provider encrypts and decrypts strings.
// Decrypt(Encrypt(x)) == x; nothing else is promised about the output.
type Provider interface {
	Algorithm() Algorithm
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// Params tune provider construction.
type Params struct {
	Iterations int // 0 => DefaultIterations
}

// Factory builds a provider from a derived key.
type Factory func(key []byte) (Provider, error)

var registry = map[Algorithm]Factory{
	AES:      newAESGCM,
	ChaCha20: newXChaCha,
	RC4:      func(k []byte) (Provider, error) { return newRC4(k, RC4, idRC4, 0), nil },
	RC4Drop:  func(k []byte) (Provider, error) { return newRC4(k, RC4Drop, idRC4Drop, rc4DropBytes), nil },
}

// New resolves alg in the registry and builds its provider for secret.
func New(alg Algorithm, secret string, p Params) (Provider, error) {
	factory, ok := registry[alg]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, alg)
	}
	iters := p.Iterations
	if iters <= 0 {
		iters = DefaultIterations
	}
	return factory(DeriveKey(secret, alg, iters))
}

// Supported lists registered algorithms, sorted.
func Supported() []Algorithm {
	out := make([]Algorithm, 0, len(registry))
	for a := range registry {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DeriveKey derives the provider key. The salt is fixed per algorithm so the
// same secret opens the same data across processes.
func DeriveKey(secret string, alg Algorithm, iterations int) []byte {
	salt := sha256.Sum256([]byte("encstore/" + string(alg)))
	return pbkdf2.Key([]byte(secret), salt[:], iterations, KeySize, sha256.New)
}

func seal(id byte, nonce, data []byte) (string, error) {
	b, err := envelope.Encode(envelope.Sealed{Alg: id, Nonce: nonce, Data: data})
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func open(id byte, s string) (envelope.Sealed, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return envelope.Sealed{}, ErrCorrupt
	}
	env, err := envelope.Decode(b)
	if err != nil {
		return envelope.Sealed{}, ErrCorrupt
	}
	if env.Alg != id {
		return envelope.Sealed{}, ErrWrongAlgorithm
	}
	return env, nil
}

// ClearBytes securely clears a byte slice
func ClearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
