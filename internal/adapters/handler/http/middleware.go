package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/vncsmyrnk/pollster/internal/core/domain"
	"github.com/vncsmyrnk/pollster/internal/core/ports"
)

type contextKey string

const identityKey contextKey = "identity"

const accessTokenCookie = "access_token"

// Identify resolves every request to an identity. Requests without a token
// are anonymous and keyed by client IP; a token that is presented but not
// valid is always rejected.
func Identify(auth ports.AuthService, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := accessToken(r)
			if token == "" {
				ctx := context.WithValue(r.Context(), identityKey, domain.AnonymousIdentity(clientIP(r)))
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			identity, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrInvalidToken) {
					log.WithError(err).Debug("rejected access token")
					writeAPIError(w, apiError{Status: http.StatusUnauthorized, Message: msgInvalidToken})
					return
				}
				log.WithError(err).Error("failed to authenticate request")
				writeAPIError(w, apiError{Status: http.StatusInternalServerError, Message: msgVerifyingLogin})
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects anonymous callers.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identityFrom(r).Anonymous {
			writeAPIError(w, apiError{Status: http.StatusUnauthorized, Message: msgNotLoggedIn})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func identityFrom(r *http.Request) domain.Identity {
	if identity, ok := r.Context().Value(identityKey).(domain.Identity); ok {
		return identity
	}
	return domain.AnonymousIdentity(clientIP(r))
}

func accessToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(accessTokenCookie); err == nil {
		return c.Value
	}
	return ""
}
