package crypt

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"hash"
)

// Hash returns the hex HMAC-SHA256 of value keyed by secret.
func Hash(value, secret string) string {
	return keyedHex(sha256.New, value, secret)
}

// MD5Hash returns the hex HMAC-MD5 of value keyed by secret. Kept for
// compatibility with existing digests; prefer Hash.
func MD5Hash(value, secret string) string {
	return keyedHex(md5.New, value, secret)
}

func keyedHex(h func() hash.Hash, value, secret string) string {
	mac := hmac.New(h, []byte(secret))
	mac.Write([]byte(value))
	return hex.EncodeToString(mac.Sum(nil))
}
