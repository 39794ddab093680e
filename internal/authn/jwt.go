// Package authn verifies bearer tokens with golang-jwt/v5.
package authn

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims names the player a token authenticates.
type CustomClaims struct {
	PlayerID string `json:"playerID"`
	jwt.RegisteredClaims
}

// Verifier issues and checks tokens against one process-wide secret.
type Verifier struct {
	secret []byte
	expire time.Duration
}

func NewVerifier(secret string, expireSeconds int) *Verifier {
	if expireSeconds <= 0 {
		expireSeconds = 3600
	}
	return &Verifier{secret: []byte(secret), expire: time.Duration(expireSeconds) * time.Second}
}

// Issue mints a signed token for playerID, valid for the configured expiry.
func (v *Verifier) Issue(playerID string) (string, error) {
	claims := &CustomClaims{
		PlayerID: playerID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(v.expire)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}

// Verify parses and validates token, returning the player id it names.
func (v *Verifier) Verify(token string) (string, error) {
	if token == "" {
		return "", errors.New("authn: empty token")
	}
	parsed, err := jwt.ParseWithClaims(token, &CustomClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("authn: unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := parsed.Claims.(*CustomClaims)
	if !ok || !parsed.Valid || claims.PlayerID == "" {
		return "", errors.New("authn: token not valid")
	}
	return claims.PlayerID, nil
}
