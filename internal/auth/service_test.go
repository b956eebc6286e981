package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mesikahq/patient-registry/internal/audit"
	"github.com/mesikahq/patient-registry/internal/config"
)

type nopAudit struct{}

func (nopAudit) LogEvent(ctx context.Context, event *audit.Event) error { return nil }

func testService(t *testing.T, expiry time.Duration) Service {
	t.Helper()
	svc, err := NewService(config.AuthConfig{
		JWTSecret:     "test_secret",
		TokenExpiry:   expiry,
		AdminUser:     "admin",
		AdminPassword: "veris123",
	}, nopAudit{})
	if err != nil {
		t.Fatalf("unexpected error building service: %v", err)
	}
	return svc
}

func TestLoginIssuesValidToken(t *testing.T) {
	svc := testService(t, time.Hour)

	data, err := svc.Login(context.Background(), "admin", "veris123")
	if err != nil {
		t.Fatalf("unexpected login error: %v", err)
	}
	if data.Type != "Bearer" {
		t.Errorf("expected token type Bearer, got %q", data.Type)
	}
	if data.ExpiresIn != 3600 {
		t.Errorf("expected expiresIn 3600, got %d", data.ExpiresIn)
	}

	claims, err := svc.ValidateToken(context.Background(), data.Token)
	if err != nil {
		t.Fatalf("expected issued token to validate: %v", err)
	}
	if claims.Username != "admin" || claims.Role != "admin" {
		t.Errorf("unexpected claims %q/%q", claims.Username, claims.Role)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := testService(t, time.Hour)

	cases := []struct{ user, pass string }{
		{"admin", "wrong"},
		{"someone", "veris123"},
		{"", ""},
	}
	for _, tc := range cases {
		if _, err := svc.Login(context.Background(), tc.user, tc.pass); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("%s/%s: expected ErrInvalidCredentials, got %v", tc.user, tc.pass, err)
		}
	}
}

func TestValidateTokenExpired(t *testing.T) {
	svc := testService(t, -time.Minute)

	data, err := svc.Login(context.Background(), "admin", "veris123")
	if err != nil {
		t.Fatalf("unexpected login error: %v", err)
	}

	if _, err := svc.ValidateToken(context.Background(), data.Token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestValidateTokenTampered(t *testing.T) {
	svc := testService(t, time.Hour)

	data, err := svc.Login(context.Background(), "admin", "veris123")
	if err != nil {
		t.Fatalf("unexpected login error: %v", err)
	}

	if _, err := svc.ValidateToken(context.Background(), data.Token+"x"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}

	if _, err := svc.ValidateToken(context.Background(), "not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for garbage input, got %v", err)
	}
}

func TestValidateTokenFromOtherSecret(t *testing.T) {
	svc := testService(t, time.Hour)

	other, err := NewService(config.AuthConfig{
		JWTSecret:     "other_secret",
		TokenExpiry:   time.Hour,
		AdminUser:     "admin",
		AdminPassword: "veris123",
	}, nopAudit{})
	if err != nil {
		t.Fatalf("unexpected error building service: %v", err)
	}

	data, err := other.Login(context.Background(), "admin", "veris123")
	if err != nil {
		t.Fatalf("unexpected login error: %v", err)
	}

	if _, err := svc.ValidateToken(context.Background(), data.Token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for foreign signature, got %v", err)
	}
}
