package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

type ctxKey int

const ctxKeyPractitioner ctxKey = iota

// PractitionerHeader is honoured only when no JWT secret is configured (local dev).
const PractitionerHeader = "X-Practitioner-Id"

func PractitionerFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyPractitioner).(string)
	return v
}

func ContextWithPractitioner(ctx context.Context, practitionerID string) context.Context {
	return context.WithValue(ctx, ctxKeyPractitioner, practitionerID)
}

// RequirePractitioner resolves the practitioner from a bearer token signed
// with secret. An empty secret switches to trusting PractitionerHeader.
func RequirePractitioner(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var practitionerID string
			if secret == "" {
				practitionerID = strings.TrimSpace(r.Header.Get(PractitionerHeader))
			} else {
				token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
				if ok {
					if claims, err := ParseAndVerifyHS256(strings.TrimSpace(token), secret, time.Now()); err == nil {
						practitionerID = claims.Sub
					}
				}
			}
			if practitionerID == "" {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithPractitioner(r.Context(), practitionerID)))
		})
	}
}
