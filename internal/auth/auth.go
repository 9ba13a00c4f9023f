// Package auth verifies presented API keys against the hashes in the config
// document. Raw secrets are hashed with SHA-256 and compared in constant
// time; the raw value never touches storage or logs.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/slogger-dev/slogger/internal/configfile"
	"github.com/slogger-dev/slogger/internal/response"
)

// HashKey returns the lowercase SHA-256 hex digest of a raw secret.
func HashKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Keyring verifies raw secrets against the config document at Path. The
// document is re-read on every check so key changes take effect without a
// restart.
type Keyring struct {
	Path string
}

// Verify reports whether raw hashes to any configured key. Every entry is
// compared so the work done does not depend on which key matched.
func (k *Keyring) Verify(raw string) bool {
	cfg, err := configfile.Read(k.Path)
	if err != nil {
		return false
	}
	hash := []byte(HashKey(raw))
	matched := false
	for _, key := range cfg.ApiKeys {
		// Stored hashes may be hand-edited uppercase; ours are lowercase.
		if subtle.ConstantTimeCompare(hash, []byte(strings.ToLower(key.Hash))) == 1 {
			matched = true
		}
	}
	return matched
}

// BearerToken extracts the token from an Authorization header value.
// Returns "" when the header is absent or not a bearer credential.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Middleware rejects requests without a valid bearer API key before any
// handler runs.
func Middleware(keyring *Keyring) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := BearerToken(c.Request().Header.Get("Authorization"))
			if token == "" || !keyring.Verify(token) {
				return response.Unauthorized(c)
			}
			return next(c)
		}
	}
}
