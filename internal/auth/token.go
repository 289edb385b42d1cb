package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"regexp"
)

// TokenBytes is the amount of randomness in a session token.
const TokenBytes = 32

// tokenFormatRegex matches the unpadded URL-safe base64 of TokenBytes bytes.
var tokenFormatRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{43}$`)

// NewSessionToken returns an unguessable session identifier suitable for a
// cookie value.
func NewSessionToken() (string, error) {
	b := make([]byte, TokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// ValidTokenFormat reports whether s could have come from NewSessionToken.
// Anything else sent in the session cookie is discarded without a lookup.
func ValidTokenFormat(s string) bool {
	return tokenFormatRegex.MatchString(s)
}
