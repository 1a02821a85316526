// Package auth guards the privileged commands: it checks the admin
// password and issues and verifies short-lived admin tokens.
package auth

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const adminRole = "admin"

var ErrInvalidToken = errors.New("invalid token")

type Config struct {
	Password     string // plain text, used when PasswordHash is empty
	PasswordHash string // bcrypt
	Secret       string // HS256 signing key
	TTL          time.Duration
}

type Admin struct {
	cfg Config
}

func NewAdmin(cfg Config) *Admin {
	if cfg.TTL <= 0 {
		cfg.TTL = 12 * time.Hour
	}
	return &Admin{cfg: cfg}
}

// HashPassword returns a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost) // cost=10
	return string(b), err
}

// CheckPassword compares pw against the configured credential. An empty
// configuration accepts nothing.
func (a *Admin) CheckPassword(pw string) bool {
	if pw == "" {
		return false
	}
	if a.cfg.PasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(a.cfg.PasswordHash), []byte(pw)) == nil
	}
	if a.cfg.Password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(pw), []byte(a.cfg.Password)) == 1
}

// Issue signs a new admin token.
func (a *Admin) Issue() (string, error) {
	tok, _, err := a.IssueWithExpiry()
	return tok, err
}

func (a *Admin) IssueWithExpiry() (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(a.cfg.TTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  adminRole,
		"role": adminRole,
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	})
	ss, err := token.SignedString([]byte(a.cfg.Secret))
	return ss, exp, err
}

// Verify accepts only unexpired HS256 tokens carrying the admin role.
func (a *Admin) Verify(tokenStr string) error {
	if tokenStr == "" {
		return ErrInvalidToken
	}
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(a.cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	if role, _ := claims["role"].(string); role != adminRole {
		return ErrInvalidToken
	}
	return nil
}
