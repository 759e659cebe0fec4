package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vncsmyrnk/pollster/internal/core/domain"
	"github.com/vncsmyrnk/pollster/internal/core/ports"
)

type AuthService struct {
	userRepo  ports.UserRepository
	jwtSecret []byte
}

func NewAuthService(userRepo ports.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
	}
}

// Authenticate accepts HS256 tokens carrying the user id in "sub" (or the
// legacy "_id" claim). The user must exist and be verified.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (domain.Identity, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(accessToken, claims, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	userID, _ := claims.GetSubject()
	if userID == "" {
		userID, _ = claims["_id"].(string)
	}
	if userID == "" {
		return domain.Identity{}, fmt.Errorf("%w: missing subject", domain.ErrInvalidToken)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.Identity{}, fmt.Errorf("%w: unknown user", domain.ErrInvalidToken)
		}
		return domain.Identity{}, fmt.Errorf("failed to get user: %w", err)
	}
	if !user.Verified {
		return domain.Identity{}, fmt.Errorf("%w: user is not verified", domain.ErrInvalidToken)
	}

	return domain.Identity{ID: user.ID, Name: user.Name}, nil
}

// IssueAccessToken signs a token Authenticate will accept. Login flows live
// elsewhere; this is used by tooling and tests.
func (s *AuthService) IssueAccessToken(user *domain.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"name": user.Name,
		"exp":  now.Add(ttl).Unix(),
		"iat":  now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
