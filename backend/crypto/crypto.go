package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	"easedrop/shared/constants"
)

// ErrAuthenticationFailed covers every way decryption can go wrong: a
// truncated envelope, a flipped bit, or a key derived from the wrong code.
// Callers must not be able to tell these apart.
var ErrAuthenticationFailed = errors.New("envelope authentication failed")

// DeriveKey derives a 256-bit AES key from a smart code and the server salt.
// PBKDF2-SHA256 at constants.KDFIterations matches the browser client's
// WebCrypto derivation; the iteration count is what makes brute-forcing the
// ~20 bit code space expensive. Deterministic: same inputs, same key.
func DeriveKey(code, salt string) []byte {
	return pbkdf2.Key(
		[]byte(code+salt),
		[]byte(salt),
		constants.KDFIterations,
		constants.KeySize,
		sha256.New)
}

// EncryptEnvelope seals plaintext with AES-256-GCM under a fresh random
// nonce and returns nonce||ciphertext. The nonce is never reused for a key;
// every envelope gets its own.
func EncryptEnvelope(plaintext, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, constants.NonceSize)
	if _, err = rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// DecryptEnvelope splits the leading nonce from an envelope and opens the
// remainder. Fails closed: no partial plaintext is ever returned, and all
// failure modes surface as ErrAuthenticationFailed.
func DecryptEnvelope(envelope, key []byte) ([]byte, error) {
	if len(envelope) <= constants.NonceSize {
		return nil, ErrAuthenticationFailed
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := envelope[:constants.NonceSize]
	ciphertext := envelope[constants.NonceSize:]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}

	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}

	return gcm, nil
}
