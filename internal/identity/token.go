package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ballop/merchplan/internal/models"
)

// Tokens parses identity-provider ID tokens and mints session tokens.
// Both are HS256; the ID-token secret is shared with the provider.
type Tokens struct {
	secret     []byte
	sessionTTL time.Duration
}

// NewTokens creates a Tokens helper. ttl bounds session validity.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Tokens{secret: []byte(secret), sessionTTL: ttl}
}

// ParseIDToken turns a provider-issued ID token into an AuthEvent.
func (t *Tokens) ParseIDToken(tokenStr string) (AuthEvent, error) {
	token, err := jwt.Parse(tokenStr, func(tk *jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return AuthEvent{}, fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return AuthEvent{}, ErrAuthenticationFailed
	}
	ev := AuthEvent{
		Subject:     stringClaim(claims, "sub"),
		Email:       stringClaim(claims, "email"),
		DisplayName: stringClaim(claims, "name"),
		PhotoURL:    stringClaim(claims, "picture"),
	}
	if ev.Subject == "" {
		return AuthEvent{}, fmt.Errorf("%w: token has no subject", ErrAuthenticationFailed)
	}
	return ev, nil
}

// IssueSession mints a bearer token for a resolved account.
func (t *Tokens) IssueSession(account models.Account) (string, error) {
	claims := jwt.MapClaims{
		"sub":  account.UID,
		"role": string(account.Role),
		"exp":  time.Now().Add(t.sessionTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// ParseSession validates a session token and returns the subject and role.
func (t *Tokens) ParseSession(tokenStr string) (uid string, role models.Role, err error) {
	token, err := jwt.Parse(tokenStr, func(tk *jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return "", "", fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", ErrAuthenticationFailed
	}
	return stringClaim(claims, "sub"), models.Role(stringClaim(claims, "role")), nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
