package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/trailmark/trailmark-backend/internal/config"
	"github.com/trailmark/trailmark-backend/internal/models"
	"github.com/trailmark/trailmark-backend/internal/security"
)

var (
	// ErrTokenExpired is kept distinct from ErrTokenInvalid so the
	// request layer can hint a refresh instead of denying outright.
	ErrTokenExpired = errors.New("access token expired")
	ErrTokenInvalid = errors.New("access token invalid")
)

// TokenService mints and verifies short-lived signed access tokens.
// It is stateless; the signing key and TTL come from config and never
// change after start-up.
type TokenService struct {
	secret       []byte
	issuer       string
	accessExpiry time.Duration
}

type AccessClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

func NewTokenService(cfg *config.Config) *TokenService {
	return &TokenService{
		secret:       []byte(cfg.JWTSecret),
		issuer:       cfg.JWTIssuer,
		accessExpiry: cfg.JWTAccessExpiry,
	}
}

// Issue signs an access token carrying the user's identity.
func (ts *TokenService) Issue(user *models.User) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.UserID.String(),
			Issuer:    ts.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.accessExpiry)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ts.secret)
}

// Parse verifies signature and expiry and reconstructs the principal.
func (ts *TokenService) Parse(tokenString string) (security.UserPrincipal, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ts.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return security.UserPrincipal{}, ErrTokenExpired
		}
		return security.UserPrincipal{}, ErrTokenInvalid
	}
	if !token.Valid {
		return security.UserPrincipal{}, ErrTokenInvalid
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return security.UserPrincipal{}, ErrTokenInvalid
	}

	return security.UserPrincipal{UserID: userID, Email: claims.Email}, nil
}

func (ts *TokenService) AccessExpiry() time.Duration {
	return ts.accessExpiry
}
