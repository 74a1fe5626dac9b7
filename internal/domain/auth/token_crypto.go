package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"github.com/google/uuid"
)

// sealProviderToken encrypts a provider refresh token with AES-GCM. The
// owning user id is bound as additional data so a sealed token cannot be
// replayed against another account row.
func sealProviderToken(key string, owner uuid.UUID, plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), owner[:])
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func openProviderToken(key string, owner uuid.UUID, encoded string) (string, error) {
	if encoded == "" {
		return "", nil
	}
	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}
	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	if len(payload) < gcm.NonceSize() {
		return "", errors.New("sealed token too short")
	}
	nonce, ciphertext := payload[:gcm.NonceSize()], payload[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, owner[:])
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// newGCM derives a 256-bit key from the configured secret.
func newGCM(key string) (cipher.AEAD, error) {
	if key == "" {
		return nil, errors.New("token encryption key is empty")
	}
	sum := sha256.Sum256([]byte(key))
	block, err := aes.NewCipher(sum[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
