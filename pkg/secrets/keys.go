package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

const (
	// KeySize is the required size of the application key (AES-256).
	KeySize = 32

	// hkdfInfo provides domain separation for derived keys.
	hkdfInfo = "multitier-credentials-v1"
)

// ValidateKey checks the application key length and that a scope is provided.
func ValidateKey(appKey, scope []byte) error {
	if len(appKey) != KeySize {
		return ErrInvalidAppKey
	}
	if len(scope) == 0 {
		return ErrEmptyScope
	}
	return nil
}

// deriveKey mixes the application key with the record scope.
// Callers must zero the returned key with clearBytes.
func deriveKey(appKey, scope []byte) ([]byte, error) {
	r := hkdf.New(sha256.New, appKey, scope, []byte(hkdfInfo))

	key := make([]byte, KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, errors.Join(ErrKeyDerivationFailed, err)
	}
	return key, nil
}

func clearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// GenerateKey returns a new random application key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}

// ParseKey decodes an application key given as hex or standard base64,
// the two forms it is usually stored in environment variables.
func ParseKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if key, err := hex.DecodeString(s); err == nil && len(key) == KeySize {
		return key, nil
	}
	if key, err := base64.StdEncoding.DecodeString(s); err == nil && len(key) == KeySize {
		return key, nil
	}
	return nil, ErrInvalidAppKey
}
