// Package fieldcrypt encrypts individual display columns (names, id numbers,
// species) before they are stored and decrypts them for presentation.
//
// Ciphertext is base64(nonce || XChaCha20-Poly1305 sealed box). The key is
// derived from a configured secret with HKDF-SHA256.
package fieldcrypt

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

var ErrDecrypt = errors.New("fieldcrypt: decrypt failed")

const keyInfo = "vet-clinic/field-encryption/v1"

type Encrypter interface {
	Encrypt(plaintext string) (string, error)
}

type Decrypter interface {
	Decrypt(ciphertext string) (string, error)
}

type Cipher struct {
	aead cipher.AEAD
}

func New(secret string) (*Cipher, error) {
	if secret == "" {
		return nil, errors.New("fieldcrypt: empty secret")
	}

	key := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("fieldcrypt: derive key: %w", err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("fieldcrypt: init aead: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

func (c *Cipher) Encrypt(plaintext string) (string, error) {
	ns := c.aead.NonceSize()
	nonce := make([]byte, ns, ns+len(plaintext)+c.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("fieldcrypt: nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt fails with an error wrapping ErrDecrypt for malformed or tampered
// input, or input sealed under another key.
func (c *Cipher) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}

	ns := c.aead.NonceSize()
	if len(raw) < ns+c.aead.Overhead() {
		return "", fmt.Errorf("%w: ciphertext too short", ErrDecrypt)
	}

	plain, err := c.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	return string(plain), nil
}

// DecryptOrEmpty is the read-path policy for display fields: an empty column
// renders as "", and a column that fails to decrypt is logged and rendered as
// "" instead of failing the request.
func DecryptOrEmpty(d Decrypter, logger *slog.Logger, field, value string) string {
	if value == "" {
		return ""
	}

	plain, err := d.Decrypt(value)
	if err != nil {
		if logger != nil {
			logger.Warn("field decrypt failed", "field", field, "err", err)
		}
		return ""
	}
	return plain
}
