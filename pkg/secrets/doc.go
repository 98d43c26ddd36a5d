// Package secrets encrypts tenant credentials at rest.
//
// A 32-byte application key is combined with a per-record scope (usually the
// tenant ID) through HKDF-SHA-256, and the derived key seals values with
// AES-256-GCM. The nonce is prepended to the ciphertext, and string helpers
// base64-encode the result so it can be stored in a text column.
//
// # Usage
//
//	appKey, _ := secrets.ParseKey(os.Getenv("SECRETS_APP_KEY"))
//
//	ct, err := secrets.EncryptString(appKey, tenantID[:], "db-password")
//	if err != nil {
//	    // handle error
//	}
//
//	plain, err := secrets.DecryptString(appKey, tenantID[:], ct)
//
// # Errors
//
// Failures are reported with sentinel errors that can be matched with
// errors.Is: ErrInvalidAppKey, ErrEmptyScope, ErrEncryptionFailed,
// ErrDecryptionFailed, ErrInvalidCiphertext and ErrKeyDerivationFailed.
package secrets
