package cryptox

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	ID   string  `json:"id"`
	Text string  `json:"text"`
	N    float64 `json:"n"`
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   payload
	}{
		{"simple", payload{ID: "e1", Text: "hi", N: 1}},
		{"unicode", payload{ID: "e2", Text: "дневник 📓", N: -3.5}},
		{"empty", payload{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ct, err := Encrypt(tc.in, "shared-key")
			require.NoError(t, err)

			var out payload
			require.NoError(t, Decrypt(ct, "shared-key", &out))
			assert.Equal(t, tc.in, out)
		})
	}
}

func TestEncrypt_NonDeterministic(t *testing.T) {
	in := payload{ID: "e1", Text: "same input"}

	ct1, err := Encrypt(in, "k")
	require.NoError(t, err)
	ct2, err := Encrypt(in, "k")
	require.NoError(t, err)

	assert.NotEqual(t, ct1, ct2)
}

func TestDecrypt_WrongKey(t *testing.T) {
	ct, err := Encrypt(payload{ID: "e1"}, "key-one")
	require.NoError(t, err)

	var out payload
	err = Decrypt(ct, "key-two", &out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecryption))
}

func TestDecrypt_Corrupted(t *testing.T) {
	tests := []struct {
		name string
		ct   string
	}{
		{"not base64", "%%%not-base64%%%"},
		{"too short", "YWJj"},
		{"flipped bytes", ""},
	}

	valid, err := Encrypt(payload{ID: "e1"}, "k")
	require.NoError(t, err)
	// Corrupt the tail of a valid envelope.
	tests[2].ct = valid[:len(valid)-8] + "AAAAAAA="

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out payload
			err := Decrypt(tc.ct, "k", &out)
			assert.ErrorIs(t, err, ErrDecryption)
		})
	}
}

func TestDeriveKey_Deterministic(t *testing.T) {
	k1 := DeriveKey("passphrase", "salt", 2)
	k2 := DeriveKey("passphrase", "salt", 2)
	assert.Equal(t, k1, k2)
}

func TestDeriveKey_DifferentInputs(t *testing.T) {
	base := DeriveKey("passphrase", "salt", 2)

	assert.NotEqual(t, base, DeriveKey("other", "salt", 2))
	assert.NotEqual(t, base, DeriveKey("passphrase", "other", 2))
	assert.NotEqual(t, base, DeriveKey("passphrase", "salt", 3))
}

func TestDeriveKey_ClampsIterations(t *testing.T) {
	assert.Equal(t, DeriveKey("p", "s", 0), DeriveKey("p", "s", 1))
	assert.Equal(t, DeriveKey("p", "s", -5), DeriveKey("p", "s", 1))
}
