package middleware

import (
	"net/http"
	"strings"

	"riparo-be/internal/user"
	"riparo-be/internal/utils"
)

// AuthMiddleware parses an optional bearer token and stores the resulting
// actor in the request context. Requests without a valid token pass through
// anonymously; handlers decide whether authentication is required.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractAccessToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := user.ParseJWT(token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := utils.SetActorContext(r.Context(), user.ActorFromClaims(claims))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractAccessToken(r *http.Request) string {
	if cookie, err := r.Cookie("access_token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return ""
}
