package crypt

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/rc4"
	"crypto/sha256"
	"fmt"
)

const (
	rc4SaltSize  = 16
	rc4DropBytes = 768 // 192 words, the customary RC4-drop default
)

// rc4Provider exists for stores written with the legacy RC4 family. Each
// message gets a random salt and its own RC4 key HMAC(key, salt). There is
// no authentication: tampered ciphertext decrypts to garbage, not an error.
type rc4Provider struct {
	alg  Algorithm
	id   byte
	key  []byte
	drop int
}

func newRC4(key []byte, alg Algorithm, id byte, drop int) *rc4Provider {
	return &rc4Provider{alg: alg, id: id, key: key, drop: drop}
}

func (p *rc4Provider) Algorithm() Algorithm { return p.alg }

func (p *rc4Provider) Encrypt(plaintext string) (string, error) {
	salt := make([]byte, rc4SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	out, err := p.xor(salt, []byte(plaintext))
	if err != nil {
		return "", err
	}
	return seal(p.id, salt, out)
}

func (p *rc4Provider) Decrypt(ciphertext string) (string, error) {
	env, err := open(p.id, ciphertext)
	if err != nil {
		return "", err
	}
	if len(env.Nonce) != rc4SaltSize {
		return "", ErrCorrupt
	}
	out, err := p.xor(env.Nonce, env.Data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (p *rc4Provider) xor(salt, in []byte) ([]byte, error) {
	mac := hmac.New(sha256.New, p.key)
	mac.Write(salt)
	msgKey := mac.Sum(nil)
	defer ClearBytes(msgKey)

	c, err := rc4.NewCipher(msgKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	if p.drop > 0 {
		skip := make([]byte, p.drop)
		c.XORKeyStream(skip, skip)
	}
	out := make([]byte, len(in))
	c.XORKeyStream(out, in)
	return out, nil
}
