package session

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test-secret")

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return token
}

func TestInspect(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	token := signed(t, jwt.MapClaims{
		"sub":   42,
		"email": "admin@corp.io",
		"role":  "admin",
		"iat":   time.Date(2029, 12, 31, 0, 0, 0, 0, time.UTC).Unix(),
		"exp":   exp.Unix(),
	})

	info, err := Inspect(token)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if info.Subject != "42" || info.Email != "admin@corp.io" || info.Role != "admin" {
		t.Errorf("info = %+v", info)
	}
	if !info.ExpiresAt.Equal(exp) {
		t.Errorf("ExpiresAt = %v, want %v", info.ExpiresAt, exp)
	}
	if info.IssuedAt.IsZero() {
		t.Error("IssuedAt not decoded")
	}
}

func TestInspect_UserIDFallback(t *testing.T) {
	info, err := Inspect(signed(t, jwt.MapClaims{"user_id": 7, "role": "user"}))
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if info.Subject != "7" {
		t.Errorf("Subject = %q, want 7", info.Subject)
	}
	if !info.ExpiresAt.IsZero() {
		t.Errorf("ExpiresAt = %v, want zero", info.ExpiresAt)
	}
}

func TestCheck(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	valid := signed(t, jwt.MapClaims{"sub": "u1", "exp": now.Add(time.Hour).Unix()})
	expired := signed(t, jwt.MapClaims{"sub": "u1", "exp": now.Add(-time.Minute).Unix()})

	if _, err := Check("", now); !errors.Is(err, ErrNoToken) {
		t.Errorf("Check(empty) = %v, want ErrNoToken", err)
	}

	info, err := Check(valid, now)
	if err != nil {
		t.Fatalf("Check(valid): %v", err)
	}
	if got := info.Remaining(now); got != time.Hour {
		t.Errorf("Remaining = %v, want 1h", got)
	}

	info, err = Check(expired, now)
	if !errors.Is(err, ErrExpired) {
		t.Errorf("Check(expired) = %v, want ErrExpired", err)
	}
	if info == nil || info.Remaining(now) != 0 {
		t.Errorf("expired info = %+v", info)
	}
}

func TestCheck_OpaqueToken(t *testing.T) {
	info, err := Check("opaque-api-key", time.Now())
	if err != nil {
		t.Errorf("Check(opaque) error = %v, want nil", err)
	}
	if info != nil {
		t.Errorf("Check(opaque) info = %+v, want nil", info)
	}
}

func TestExpired_Boundary(t *testing.T) {
	exp := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	info := &Info{ExpiresAt: exp}
	if info.Expired(exp.Add(-time.Second)) {
		t.Error("expired one second early")
	}
	if !info.Expired(exp) {
		t.Error("not expired at exp")
	}
	if (&Info{}).Expired(exp) {
		t.Error("token without exp reported expired")
	}
}
