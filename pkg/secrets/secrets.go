package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
)

// EncryptString seals plaintext and returns base64-encoded ciphertext.
func EncryptString(appKey, scope []byte, plaintext string) (string, error) {
	ciphertext, err := EncryptBytes(appKey, scope, []byte(plaintext))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// DecryptString reverses EncryptString.
func DecryptString(appKey, scope []byte, ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", errors.Join(ErrInvalidCiphertext, err)
	}

	plaintext, err := DecryptBytes(appKey, scope, raw)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// EncryptBytes returns nonce || ciphertext || tag.
func EncryptBytes(appKey, scope, data []byte) ([]byte, error) {
	aead, err := newAEAD(appKey, scope, ErrEncryptionFailed)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}

	return aead.Seal(nonce, nonce, data, nil), nil
}

// DecryptBytes expects the layout produced by EncryptBytes.
func DecryptBytes(appKey, scope, ciphertext []byte) ([]byte, error) {
	aead, err := newAEAD(appKey, scope, ErrDecryptionFailed)
	if err != nil {
		return nil, err
	}

	nonceSize := aead.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, ErrInvalidCiphertext
	}
	nonce, body := ciphertext[:nonceSize], ciphertext[nonceSize:]

	plaintext, err := aead.Open(nil, nonce, body, nil)
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, err)
	}
	return plaintext, nil
}

func newAEAD(appKey, scope []byte, failure error) (cipher.AEAD, error) {
	if err := ValidateKey(appKey, scope); err != nil {
		return nil, err
	}

	key, err := deriveKey(appKey, scope)
	if err != nil {
		return nil, err
	}
	defer clearBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Join(failure, err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Join(failure, err)
	}
	return aead, nil
}
