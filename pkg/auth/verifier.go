package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims carried by access tokens from the authorization server.
type Claims struct {
	UserID string   `json:"uid"`
	Name   string   `json:"name"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// Verifier validates bearer tokens signed either with a shared HS256 secret
// or with an RS256 key published through JWKS.
type Verifier struct {
	hsSecret []byte
	jwks     *Provider
	issuer   string
}

func NewVerifier(hsSecret string, jwks *Provider, issuer string) *Verifier {
	v := &Verifier{jwks: jwks, issuer: issuer}
	if hsSecret != "" {
		v.hsSecret = []byte(hsSecret)
	}
	return v
}

func (v *Verifier) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "RS256"})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		switch token.Method.(type) {
		case *jwt.SigningMethodHMAC:
			if v.hsSecret == nil {
				return nil, fmt.Errorf("HS256 token received but JWT_HS_SECRET is not configured")
			}
			return v.hsSecret, nil
		case *jwt.SigningMethodRSA:
			if v.jwks == nil {
				return nil, fmt.Errorf("RS256 token received but JWKS_URL is not configured")
			}
			return v.jwks.KeyFunc(ctx)(token)
		default:
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	return claims, nil
}
