// Package apiconsumer identifies registered API consumers from their bearer
// tokens. Consumers are optional on the search path: an anonymous search is
// valid, it just records no consumer name in telemetry.
package apiconsumer

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Consumer is a registered caller of the search API.
type Consumer struct {
	ID   string
	Name string
}

// FromToken verifies an HS256 consumer token and extracts its identity.
// Tokens carry the consumer id in "sub" and its display name in "name".
func FromToken(tokenString string, signingKey []byte) (*Consumer, error) {
	token, err := jwt.Parse(tokenString,
		func(*jwt.Token) (any, error) { return signingKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, fmt.Errorf("parse consumer token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("parse consumer token: unexpected claims type %T", token.Claims)
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, fmt.Errorf("parse consumer token: missing sub claim")
	}
	name, _ := claims["name"].(string)

	return &Consumer{ID: sub, Name: name}, nil
}

// NewToken mints a consumer token, used when registering consumers and in
// tests.
func NewToken(consumer Consumer, signingKey []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  consumer.ID,
		"name": consumer.Name,
	})
	signed, err := token.SignedString(signingKey)
	if err != nil {
		return "", fmt.Errorf("sign consumer token: %w", err)
	}
	return signed, nil
}
