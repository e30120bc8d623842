// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	qrcode "github.com/skip2/go-qrcode"

	"orgpress/internal/auth"
	"orgpress/internal/middleware"
)

// authCookieName is the cookie carrying the session token for browsers.
// The API itself authenticates via the Authorization header; the cookie
// exists so the admin front end can restore a session after reload.
const authCookieName = "auth-token"

// Auth groups the authentication HTTP handlers.
type Auth struct {
	svc        *auth.Service
	production bool
}

// NewAuth creates the auth handler group. production controls the
// Secure/HttpOnly cookie attributes.
func NewAuth(svc *auth.Service, production bool) *Auth {
	return &Auth{svc: svc, production: production}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Code     string `json:"code"`
}

// Login verifies the admin credential pair and returns a session token.
// The token is also set as a cookie with a 7-day max age.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	token, claims, err := a.svc.Login(req.Username, req.Password, req.Code)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(a.svc.TokenTTL().Seconds()),
		SameSite: http.SameSiteLaxMode,
		Secure:   a.production,
		HttpOnly: a.production,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user": map[string]any{
			"username":  claims.Username,
			"role":      claims.Role,
			"loginTime": claims.LoginTime,
		},
	})
}

// Verify returns the claims of the bearer token. The auth middleware has
// already rejected invalid tokens by the time this runs.
func (a *Auth) Verify(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromCtx(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"username":  claims.Username,
		"role":      claims.Role,
		"loginTime": claims.LoginTime,
	})
}

// Logout clears the auth cookie. Tokens themselves cannot be revoked;
// logout is otherwise a client-side concern.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.production,
		HttpOnly: a.production,
	})
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// TwoFASetup returns the otpauth provisioning URL and a QR code for the
// configured TOTP secret, so the admin can enroll an authenticator app.
// Responds 404 when no second factor is configured.
func (a *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	if !a.svc.TOTPEnabled() {
		writeError(w, http.StatusNotFound, "Two-factor authentication is not configured")
		return
	}

	provURL := a.svc.ProvisioningURL()
	qrPNG, err := qrcode.Encode(provURL, qrcode.Medium, 256)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"otpauthUrl": provURL,
		"qrCode":     base64.StdEncoding.EncodeToString(qrPNG),
	})
}
