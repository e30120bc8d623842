// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package auth verifies the single configured admin credential pair and
// issues signed, time-limited JWT session tokens. There is one implicit
// admin role; logout is client-side, so there is no revocation list.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
)

// DefaultTokenTTL is how long an issued session token stays valid.
const DefaultTokenTTL = 7 * 24 * time.Hour

// issuer identifies this application in tokens and TOTP provisioning URLs.
const issuer = "orgpress"

// ErrInvalidCredentials is returned for a wrong username, password, or
// TOTP code. Callers get no detail about which part failed.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// Config holds the admin credential pair and token settings.
type Config struct {
	Username     string
	Password     string // plaintext pair, compared in constant time
	PasswordHash string // optional bcrypt hash; takes precedence over Password
	TOTPSecret   string // optional second factor; empty disables TOTP
	JWTSecret    []byte
	TokenTTL     time.Duration
}

// Claims is the JWT payload carried by session tokens.
type Claims struct {
	Username  string `json:"username"`
	Role      string `json:"role"`
	LoginTime int64  `json:"loginTime"`
	jwt.RegisteredClaims
}

// Service authenticates the admin and mints/verifies session tokens.
type Service struct {
	cfg Config
	now func() time.Time
}

// New creates the auth service. TokenTTL defaults to seven days.
func New(cfg Config) *Service {
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}
	return &Service{cfg: cfg, now: time.Now}
}

// Login verifies the credential pair (and TOTP code when configured) and
// returns a signed session token with its claims. Any failed check
// returns ErrInvalidCredentials.
func (s *Service) Login(username, password, code string) (string, *Claims, error) {
	if !s.checkCredentials(username, password) {
		return "", nil, ErrInvalidCredentials
	}
	if s.TOTPEnabled() && !totp.Validate(code, s.cfg.TOTPSecret) {
		return "", nil, ErrInvalidCredentials
	}

	now := s.now()
	claims := &Claims{
		Username:  username,
		Role:      "admin",
		LoginTime: now.Unix(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.JWTSecret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, claims, nil
}

// VerifyToken checks signature and expiry and returns the decoded claims.
func (s *Service) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Header["alg"])
		}
		return s.cfg.JWTSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("verify token: invalid token")
	}
	return claims, nil
}

// TokenTTL returns the configured session token lifetime.
func (s *Service) TokenTTL() time.Duration {
	return s.cfg.TokenTTL
}

// TOTPEnabled reports whether a second factor is configured.
func (s *Service) TOTPEnabled() bool {
	return s.cfg.TOTPSecret != ""
}

// ProvisioningURL returns the otpauth URL an authenticator app enrolls
// with. Only meaningful when TOTP is configured.
func (s *Service) ProvisioningURL() string {
	if !s.TOTPEnabled() {
		return ""
	}
	return fmt.Sprintf("otpauth://totp/%s:%s?secret=%s&issuer=%s",
		issuer, url.QueryEscape(s.cfg.Username), s.cfg.TOTPSecret, issuer)
}

// checkCredentials compares the submitted pair against the configured
// admin identity without leaking timing information.
func (s *Service) checkCredentials(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.cfg.Username)) == 1

	var passOK bool
	if s.cfg.PasswordHash != "" {
		passOK = bcrypt.CompareHashAndPassword([]byte(s.cfg.PasswordHash), []byte(password)) == nil
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.Password)) == 1
	}

	return userOK && passOK
}
