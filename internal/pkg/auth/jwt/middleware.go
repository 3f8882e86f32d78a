package jwt

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"acaragraph/internal/pkg/logx"
)

// contextKey prevents collisions with context keys from other packages.
type contextKey string

const (
	// ContextAuthPayloadKey stores the parsed identity Payload in the request context.
	ContextAuthPayloadKey contextKey = "auth_payload"
)

// IdentityExtractorMiddleware extracts and validates a JWT from the Authorization
// header, injecting the Payload into the context on success. The request is never
// interrupted: a missing or invalid token just means an anonymous caller.
// A legacy "X-User-Id" header is honored as a fallback identity carrier.
func IdentityExtractorMiddleware(secretKey string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				if payload := payloadFromLegacyHeader(r); payload != nil {
					ctx := context.WithValue(r.Context(), ContextAuthPayloadKey, payload)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			// Expected format: "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				next.ServeHTTP(w, r)
				return
			}
			tokenString := parts[1]

			payload, err := ParseToken(tokenString, secretKey)
			if err != nil {
				logx.Warn("Invalid or expired JWT provided, treating as anonymous", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ContextAuthPayloadKey, payload)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// payloadFromLegacyHeader builds an unauthenticated identity hint from the
// X-User-Id header. Privileged handlers re-read the user row anyway, so the
// header only selects whose row to read.
func payloadFromLegacyHeader(r *http.Request) *Payload {
	raw := r.Header.Get("X-User-Id")
	if raw == "" {
		raw = r.URL.Query().Get("userId")
	}
	if raw == "" {
		return nil
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil
	}

	return &Payload{UserID: id}
}

// GetPayloadFromContext safely extracts the identity Payload from the request
// context. A nil return means the caller is anonymous.
func GetPayloadFromContext(r *http.Request) *Payload {
	payload, ok := r.Context().Value(ContextAuthPayloadKey).(*Payload)

	if !ok {
		return nil
	}

	return payload
}
