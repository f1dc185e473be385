// Package access is the shared-secret gate in front of mutating routes.
//
// It is a minimal demo gate: one configured key, compared for exact
// equality. No hashing, no per-client keys, no rate limiting.
package access

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/aanand-mishra/alumnos-api/internal/apperr"
)

// HeaderAPIKey is accepted as an alternative to "Authorization: Bearer".
const HeaderAPIKey = "X-API-Key"

// Gate checks presented credentials against one secret.
type Gate struct {
	secret []byte
}

// NewGate returns a Gate for secret. An empty secret rejects everything.
func NewGate(secret string) *Gate {
	return &Gate{secret: []byte(secret)}
}

// Authorize fails with apperr.ErrUnauthorized unless presented equals the
// configured secret.
func (g *Gate) Authorize(presented string) error {
	if presented == "" {
		return fmt.Errorf("missing api key: %w", apperr.ErrUnauthorized)
	}
	if len(g.secret) == 0 || subtle.ConstantTimeCompare([]byte(presented), g.secret) != 1 {
		return fmt.Errorf("invalid api key: %w", apperr.ErrUnauthorized)
	}
	return nil
}

// Credential extracts the presented key from r: the token of an
// "Authorization: Bearer <key>" header, else the X-API-Key header.
// Returns "" when neither carries a value.
func Credential(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return strings.TrimSpace(r.Header.Get(HeaderAPIKey))
}

// Middleware rejects requests whose credential fails Authorize. onDeny
// writes the rejection; it receives the apperr-wrapped error.
func (g *Gate) Middleware(onDeny func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := g.Authorize(Credential(r)); err != nil {
				onDeny(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
