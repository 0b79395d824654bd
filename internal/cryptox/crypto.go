// Package cryptox implements the symmetric codec used for device-to-device
// sync traffic: JSON serialization, AES-GCM encryption with a per-call random
// nonce, and argon2id key stretching for passphrase-derived keys.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"

	"github.com/dmitrijs2005/jotkeeper/internal/common"
)

// ErrDecryption is returned when a ciphertext cannot be authenticated or
// decoded: wrong key, corrupted envelope, or malformed input. Callers must
// discard the envelope; a failed decrypt never yields partial data.
var ErrDecryption = errors.New("decryption failed")

const nonceSize = 12

// aesKey stretches an arbitrary shared-secret string into a 32-byte AES key.
// Both sides of a pairing hold the identical secret string, so hashing keeps
// the keys interoperable regardless of the secret's length or alphabet.
func aesKey(key string) []byte {
	h := sha256.Sum256([]byte(key))
	return h[:]
}

// Encrypt serializes payload to JSON and encrypts it with AES-256-GCM under
// the given shared key. The 12-byte nonce is drawn fresh for every call and
// prepended to the ciphertext, so the result is self-contained. Two calls on
// identical input produce different ciphertexts.
//
// The returned string is base64 (standard encoding) of nonce||ciphertext.
func Encrypt(payload any, key string) (string, error) {
	plaintext, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("serializing payload: %w", err)
	}

	block, err := aes.NewCipher(aesKey(key))
	if err != nil {
		return "", err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := common.GenerateRandByteArray(nonceSize)

	sealed := aesgcm.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt, unmarshalling the recovered JSON into v. Any
// failure (undecodable base64, truncated envelope, authentication failure
// under the given key) is reported as ErrDecryption. It never returns
// garbage plaintext.
func Decrypt(ciphertext string, key string, v any) error {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return fmt.Errorf("%w: not base64", ErrDecryption)
	}
	if len(raw) <= nonceSize {
		return fmt.Errorf("%w: envelope too short", ErrDecryption)
	}

	block, err := aes.NewCipher(aesKey(key))
	if err != nil {
		return err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return err
	}

	nonce, sealed := raw[:nonceSize], raw[nonceSize:]
	plaintext, err := aesgcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return fmt.Errorf("%w: wrong key or corrupted data", ErrDecryption)
	}

	if err := json.Unmarshal(plaintext, v); err != nil {
		return fmt.Errorf("%w: invalid payload", ErrDecryption)
	}
	return nil
}

// DeriveKey stretches a passphrase into a hex-encoded 32-byte key using
// argon2id. Identical inputs always yield the identical key; a different
// passphrase or salt yields a different key. The iterations parameter maps
// to the argon2 time cost and is clamped to a minimum of 1.
func DeriveKey(passphrase, salt string, iterations int) string {
	if iterations < 1 {
		iterations = 1
	}
	k := argon2.IDKey([]byte(passphrase), []byte(salt), uint32(iterations), 64*1024, 4, 32)
	return fmt.Sprintf("%x", k)
}
