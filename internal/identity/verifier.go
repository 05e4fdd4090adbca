package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	jwt "github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Verifier turns a bearer token into a Principal.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Principal, error)
}

// Claims are the HS256 token claims issued for development and tests.
type Claims struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWTVerifier validates HS256 tokens signed with a shared secret.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) (*JWTVerifier, error) {
	if secret == "" {
		return nil, errors.New("identity: JWT secret is required")
	}
	return &JWTVerifier{secret: []byte(secret)}, nil
}

func (v *JWTVerifier) Verify(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	t, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid || c.UID == "" {
		return nil, ErrInvalidToken
	}

	p := &Principal{UserID: c.UID, Email: c.Email, Token: token}
	if c.ExpiresAt != nil {
		p.ExpiresAt = c.ExpiresAt.Time
	}
	return p, nil
}

// SignToken issues an HS256 token accepted by a JWTVerifier with the same secret.
func SignToken(secret, uid, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UID:   uid,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// CasdoorConfig locates the casdoor application that issues user tokens.
type CasdoorConfig struct {
	Endpoint         string
	ClientID         string
	ClientSecret     string
	Certificate      string
	OrganizationName string
	ApplicationName  string
}

// CasdoorVerifier validates tokens issued by casdoor.
type CasdoorVerifier struct {
	client *casdoorsdk.Client
}

func NewCasdoorVerifier(cfg CasdoorConfig) (*CasdoorVerifier, error) {
	if cfg.Endpoint == "" || cfg.Certificate == "" {
		return nil, errors.New("identity: casdoor endpoint and certificate are required")
	}
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Certificate,
		cfg.OrganizationName,
		cfg.ApplicationName,
	)
	return &CasdoorVerifier{client: client}, nil
}

func (v *CasdoorVerifier) Verify(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	claims, err := v.client.ParseJwtToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	userID := claims.Id
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" {
		return nil, ErrInvalidToken
	}

	p := &Principal{UserID: userID, Email: claims.Email, Token: token}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p, nil
}
