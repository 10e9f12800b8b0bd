package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// aeadProvider seals with any AEAD and a random nonce per message.
type aeadProvider struct {
	alg  Algorithm
	id   byte
	aead cipher.AEAD
}

func newAESGCM(key []byte) (Provider, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &aeadProvider{alg: AES, id: idAES, aead: gcm}, nil
}

func newXChaCha(key []byte) (Provider, error) {
	a, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create XChaCha20-Poly1305: %w", err)
	}
	return &aeadProvider{alg: ChaCha20, id: idChaCha20, aead: a}, nil
}

func (p *aeadProvider) Algorithm() Algorithm { return p.alg }

func (p *aeadProvider) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, p.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	return seal(p.id, nonce, p.aead.Seal(nil, nonce, []byte(plaintext), nil))
}

func (p *aeadProvider) Decrypt(ciphertext string) (string, error) {
	env, err := open(p.id, ciphertext)
	if err != nil {
		return "", err
	}
	if len(env.Nonce) != p.aead.NonceSize() || len(env.Data) < p.aead.Overhead() {
		return "", ErrCorrupt
	}
	plain, err := p.aead.Open(nil, env.Nonce, env.Data, nil)
	if err != nil {
		return "", ErrAuthFailed
	}
	return string(plain), nil
}
