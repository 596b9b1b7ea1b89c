// Package session reads the claims of the bearer token ptadmin sends, so an
// expired login is reported before any request is made. Signatures are not
// verified; the API does that.
package session

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoToken means no token is configured.
	ErrNoToken = errors.New("not logged in (run 'ptadmin login')")

	// ErrExpired means the token's exp claim has passed.
	ErrExpired = errors.New("session expired (run 'ptadmin login')")
)

// Info is what ptadmin knows about the logged-in user from the token alone.
type Info struct {
	Subject   string
	Email     string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time // zero when the token never expires
}

// Expired reports whether the token has expired at now.
func (i *Info) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}

// Remaining is the time left before expiry, or 0 for tokens without exp.
func (i *Info) Remaining(now time.Time) time.Duration {
	if i.ExpiresAt.IsZero() {
		return 0
	}
	return max(i.ExpiresAt.Sub(now), 0)
}

// Inspect decodes a JWT without verifying its signature.
func Inspect(token string) (*Info, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("decoding token: %w", err)
	}

	info := &Info{
		Subject: stringClaim(claims["sub"]),
		Email:   stringClaim(claims["email"]),
		Role:    stringClaim(claims["role"]),
	}
	if info.Subject == "" {
		info.Subject = stringClaim(claims["user_id"])
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("decoding token: %w", err)
	}
	if exp != nil {
		info.ExpiresAt = exp.Time
	}
	iat, err := claims.GetIssuedAt()
	if err != nil {
		return nil, fmt.Errorf("decoding token: %w", err)
	}
	if iat != nil {
		info.IssuedAt = iat.Time
	}
	return info, nil
}

// Check fails fast on a missing or expired token. Tokens that are not JWTs
// cannot be checked locally; Check returns nil info and no error for them.
func Check(token string, now time.Time) (*Info, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	info, err := Inspect(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, nil
		}
		return nil, err
	}
	if info.Expired(now) {
		return info, fmt.Errorf("%w at %s", ErrExpired, info.ExpiresAt.Local().Format(time.DateTime))
	}
	return info, nil
}

// stringClaim renders string and numeric claim values; the API issues
// numeric user IDs as sub.
func stringClaim(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}
