package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/oauth"

	"github.com/mbolis/quick-forms/httpx"
	"github.com/mbolis/quick-forms/log"
)

type ctxKey struct{}

// Owner checks the bearer token for the 'owner' role, and puts the token
// subject in the request context.
func Owner(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return chi.Chain(oauth.Authorize(secret, nil), owner).Handler(next)
	}
}

func owner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, _ := r.Context().Value(oauth.ClaimsContext).(map[string]string)
		username, _ := r.Context().Value(oauth.CredentialContext).(string)

		if username == "" || !hasRole(claims, "owner") {
			httpx.LogStatus(w, http.StatusForbidden, log.DebugLevel, "auth.owner")
			return
		}

		ctx := context.WithValue(r.Context(), ctxKey{}, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func hasRole(claims map[string]string, role string) bool {
	rolesClaim, ok := claims["roles"]
	if !ok {
		return false
	}
	for _, r := range strings.Split(rolesClaim, ",") {
		if strings.TrimSpace(r) == role {
			return true
		}
	}
	return false
}

// OwnerFrom returns the username set by Owner.
func OwnerFrom(ctx context.Context) string {
	username, _ := ctx.Value(ctxKey{}).(string)
	return username
}
