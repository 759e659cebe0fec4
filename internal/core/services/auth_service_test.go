package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/pollster/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/pollster/internal/core/domain"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims, method jwt.SigningMethod, key interface{}) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserRepository(
		domain.User{ID: "u1", Name: "Ada", Verified: true},
		domain.User{ID: "u2", Name: "Pending", Verified: false},
	)
	auth := NewAuthService(users, testSecret)
	exp := time.Now().Add(time.Hour).Unix()

	t.Run("issued token round trips", func(t *testing.T) {
		token, err := auth.IssueAccessToken(&domain.User{ID: "u1", Name: "Ada"}, time.Minute)
		require.NoError(t, err)

		identity, err := auth.Authenticate(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, domain.Identity{ID: "u1", Name: "Ada"}, identity)
	})

	t.Run("legacy _id claim", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{"_id": "u1", "exp": exp}, jwt.SigningMethodHS256, []byte(testSecret))
		identity, err := auth.Authenticate(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "u1", identity.ID)
	})

	rejected := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", signToken(t, jwt.MapClaims{"sub": "u1", "exp": exp}, jwt.SigningMethodHS256, []byte("other"))},
		{"expired", signToken(t, jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(-time.Minute).Unix()}, jwt.SigningMethodHS256, []byte(testSecret))},
		{"no expiry", signToken(t, jwt.MapClaims{"sub": "u1"}, jwt.SigningMethodHS256, []byte(testSecret))},
		{"wrong algorithm", signToken(t, jwt.MapClaims{"sub": "u1", "exp": exp}, jwt.SigningMethodHS512, []byte(testSecret))},
		{"no subject", signToken(t, jwt.MapClaims{"exp": exp}, jwt.SigningMethodHS256, []byte(testSecret))},
		{"unknown user", signToken(t, jwt.MapClaims{"sub": "ghost", "exp": exp}, jwt.SigningMethodHS256, []byte(testSecret))},
		{"unverified user", signToken(t, jwt.MapClaims{"sub": "u2", "exp": exp}, jwt.SigningMethodHS256, []byte(testSecret))},
	}
	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Authenticate(ctx, tt.token)
			assert.ErrorIs(t, err, domain.ErrInvalidToken)
		})
	}
}
