package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSecret(t *testing.T) {
	t.Run("success - prefix and 64 hex chars", func(t *testing.T) {
		secret, err := GenerateSecret()
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(secret, SecretPrefix))
		assert.Len(t, secret, len(SecretPrefix)+64)
		assert.NoError(t, ValidateSecret(secret))
	})

	t.Run("success - unique secrets", func(t *testing.T) {
		a, err := GenerateSecret()
		require.NoError(t, err)
		b, err := GenerateSecret()
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})
}

func TestValidateSecret(t *testing.T) {
	valid := SecretPrefix + strings.Repeat("ab", 32)
	assert.NoError(t, ValidateSecret(valid))

	cases := map[string]string{
		"missing prefix": strings.Repeat("ab", 32),
		"too short":      SecretPrefix + "abcd",
		"uppercase":      SecretPrefix + strings.Repeat("AB", 32),
		"not hex":        SecretPrefix + strings.Repeat("zz", 32),
		"base64 shaped":  SecretPrefix + "MfKQ9r8GKYqrTwjUPD8ILPZIo2LaLaSw",
	}
	for name, secret := range cases {
		t.Run("error - "+name, func(t *testing.T) {
			assert.Error(t, ValidateSecret(secret))
		})
	}
}

func TestSign(t *testing.T) {
	secret := "whsec_" + strings.Repeat("0f", 32)
	body := []byte(`{"event":"invoice.paid","timestamp":"2026-03-01T12:00:00.000Z","data":{"id":"in_1"}}`)

	t.Run("success - matches hmac sha256 hex", func(t *testing.T) {
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write(body)
		want := hex.EncodeToString(mac.Sum(nil))

		assert.Equal(t, want, Sign(secret, body))
		assert.Equal(t, "sha256="+want, Header(secret, body))
	})

	t.Run("success - deterministic", func(t *testing.T) {
		assert.Equal(t, Sign(secret, body), Sign(secret, body))
	})

	t.Run("success - lowercase", func(t *testing.T) {
		sig := Sign(secret, body)
		assert.Equal(t, strings.ToLower(sig), sig)
		assert.Len(t, sig, 64)
	})
}

func TestVerify(t *testing.T) {
	secret := "whsec_" + strings.Repeat("1e", 32)
	body := []byte(`{"event":"link.created","timestamp":"2026-03-01T12:00:00.000Z","data":{"slug":"abc"}}`)
	header := Header(secret, body)

	t.Run("success - header form", func(t *testing.T) {
		assert.True(t, Verify(secret, body, header))
	})

	t.Run("success - bare digest", func(t *testing.T) {
		assert.True(t, Verify(secret, body, Sign(secret, body)))
	})

	t.Run("error - every single byte mutation fails", func(t *testing.T) {
		for i := range body {
			mutated := append([]byte(nil), body...)
			mutated[i] ^= 0x01
			assert.False(t, Verify(secret, mutated, header), "mutation at byte %d verified", i)
		}
	})

	t.Run("error - wrong secret", func(t *testing.T) {
		other := "whsec_" + strings.Repeat("2e", 32)
		assert.False(t, Verify(other, body, header))
	})

	t.Run("error - empty header", func(t *testing.T) {
		assert.False(t, Verify(secret, body, ""))
		assert.False(t, Verify(secret, body, "sha256="))
	})
}

func TestVerifyAny(t *testing.T) {
	oldSecret := "whsec_" + strings.Repeat("aa", 32)
	newSecret := "whsec_" + strings.Repeat("bb", 32)
	body := []byte(`{"event":"x"}`)

	assert.True(t, VerifyAny([]string{newSecret, oldSecret}, body, Header(oldSecret, body)))
	assert.False(t, VerifyAny([]string{newSecret}, body, Header(oldSecret, body)))
	assert.False(t, VerifyAny(nil, body, Header(oldSecret, body)))
}
