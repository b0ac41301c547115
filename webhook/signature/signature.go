package signature

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// SecretPrefix marks webhook signing secrets
	SecretPrefix = "whsec_"

	// SecretBytes is the amount of randomness in a secret (hex encoded to 64 chars)
	SecretBytes = 32

	// HeaderPrefix precedes the hex digest in the signature header
	HeaderPrefix = "sha256="
)

// GenerateSecret returns a new secret: whsec_ followed by 64 lowercase hex characters
func GenerateSecret() (string, error) {
	b := make([]byte, SecretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating random bytes: %w", err)
	}
	return SecretPrefix + hex.EncodeToString(b), nil
}

// ValidateSecret checks a secret has the generated shape
func ValidateSecret(secret string) error {
	if !strings.HasPrefix(secret, SecretPrefix) {
		return fmt.Errorf("secret must start with %s prefix", SecretPrefix)
	}
	body := strings.TrimPrefix(secret, SecretPrefix)
	if len(body) != 2*SecretBytes {
		return fmt.Errorf("secret must have %d hex characters after the prefix", 2*SecretBytes)
	}
	if strings.ToLower(body) != body {
		return fmt.Errorf("secret must be lowercase hex")
	}
	if _, err := hex.DecodeString(body); err != nil {
		return fmt.Errorf("decoding hex secret: %w", err)
	}
	return nil
}

// Sign computes the lowercase hex HMAC-SHA256 of body keyed by the secret.
// The exact bytes sent on the wire must be passed.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Header returns the signature header value: sha256=<hex>
func Header(secret string, body []byte) string {
	return HeaderPrefix + Sign(secret, body)
}

// Verify checks a signature header (sha256=<hex>, or a bare hex digest) against body
// using constant-time comparison
func Verify(secret string, body []byte, header string) bool {
	got := strings.TrimPrefix(strings.TrimSpace(header), HeaderPrefix)
	if got == "" {
		return false
	}
	want := Sign(secret, body)
	return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}

// VerifyAny reports whether the header matches body under any of the secrets.
// Receivers use it while a rotated secret is being rolled out.
func VerifyAny(secrets []string, body []byte, header string) bool {
	for _, secret := range secrets {
		if Verify(secret, body, header) {
			return true
		}
	}
	return false
}
