package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/mesikahq/patient-registry/internal/audit"
	"github.com/mesikahq/patient-registry/internal/config"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
)

type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Role     string `json:"role"`
}

// TokenData is the login payload surfaced to clients.
type TokenData struct {
	Token     string `json:"token"`
	Type      string `json:"type"`
	ExpiresIn int    `json:"expiresIn"`
}

type Service interface {
	Login(ctx context.Context, username, password string) (*TokenData, error)
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

type service struct {
	audit       audit.Service
	jwtSecret   []byte
	tokenExpiry time.Duration
	adminUser   string
	adminHash   []byte
}

// NewService builds the access-control collaborator. The admin credential
// pair comes from configuration; the password is held only as a bcrypt hash.
func NewService(cfg config.AuthConfig, auditService audit.Service) (Service, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &service{
		audit:       auditService,
		jwtSecret:   []byte(cfg.JWTSecret),
		tokenExpiry: cfg.TokenExpiry,
		adminUser:   cfg.AdminUser,
		adminHash:   hash,
	}, nil
}

func (s *service) Login(ctx context.Context, username, password string) (*TokenData, error) {
	if username != s.adminUser ||
		bcrypt.CompareHashAndPassword(s.adminHash, []byte(password)) != nil {
		s.audit.LogEvent(ctx, &audit.Event{
			EventType: audit.EventLogin,
			Actor:     username,
			Action:    "LOGIN",
			Resource:  "usuario",
			Status:    "failure",
		})
		return nil, ErrInvalidCredentials
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.tokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   username,
		},
		Username: username,
		Role:     "admin",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	s.audit.LogEvent(ctx, &audit.Event{
		EventType: audit.EventLogin,
		Actor:     username,
		Action:    "LOGIN",
		Resource:  "usuario",
		Status:    "success",
	})

	return &TokenData{
		Token:     signed,
		Type:      "Bearer",
		ExpiresIn: int(s.tokenExpiry.Seconds()),
	}, nil
}

func (s *service) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
