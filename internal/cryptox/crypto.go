// Package cryptox seals small secrets (the persisted session token) with
// AES-GCM under a key derived from a local passphrase.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"

	"github.com/dmitrijs2005/lawdesk/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	saltSize = 16
	keySize  = 32
)

var ErrMalformed = errors.New("sealed value is malformed")

// DeriveKey stretches passphrase with argon2id into a 256-bit AES key.
func DeriveKey(passphrase []byte, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, keySize)
}

// Seal encrypts plaintext under a key derived from passphrase. The result is
// salt || nonce || ciphertext and can be stored as-is.
func Seal(plaintext, passphrase []byte) ([]byte, error) {
	salt := common.GenerateRandByteArray(saltSize)
	gcm, err := newGCM(DeriveKey(passphrase, salt))
	if err != nil {
		return nil, err
	}
	nonce := common.GenerateRandByteArray(gcm.NonceSize())

	out := make([]byte, 0, saltSize+len(nonce)+len(plaintext)+gcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, nil), nil
}

// Open reverses Seal. A wrong passphrase surfaces as an authentication error
// from AES-GCM.
func Open(sealed, passphrase []byte) ([]byte, error) {
	if len(sealed) < saltSize {
		return nil, ErrMalformed
	}
	salt := sealed[:saltSize]
	gcm, err := newGCM(DeriveKey(passphrase, salt))
	if err != nil {
		return nil, err
	}
	rest := sealed[saltSize:]
	if len(rest) < gcm.NonceSize()+gcm.Overhead() {
		return nil, ErrMalformed
	}
	nonce, ciphertext := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
