package httpapi

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// issueSessionToken mints a signed session token for an authenticated
// subject.
func issueSessionToken(subject string, cfg Config, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    cfg.SessionIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(cfg.SessionTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.SessionSigningKey))
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// parseSessionToken validates a session token and returns its claims.
func parseSessionToken(raw string, cfg Config) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(token *jwt.Token) (any, error) {
			return []byte(cfg.SessionSigningKey), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cfg.SessionIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("parse session token: %w", err)
	}
	return claims, nil
}
