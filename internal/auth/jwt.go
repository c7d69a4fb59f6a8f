// Package auth provides JWT bearer authentication for the store API.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Project-Sylos/Specular/internal/types"
	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// Issuer is the iss claim of every token this package signs
const Issuer = "specular"

// Auth signs and validates HS256 tokens.
type Auth struct {
	secret []byte
}

// New creates a new Auth handler.
func New(secret string) *Auth {
	return &Auth{secret: []byte(secret)}
}

// Issue signs a token for subject valid for ttl.
func (a *Auth) Issue(subject string, ttl time.Duration) (string, error) {
	if len(a.secret) == 0 {
		return "", errors.New("jwt secret is not configured")
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Validate parses tokenStr and checks signature, issuer and expiry.
func (a *Auth) Validate(tokenStr string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(Issuer))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// Middleware returns HTTP middleware that validates bearer tokens.
func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := extractToken(r)
		if tokenStr == "" {
			sendAuthError(w, "missing authentication token")
			return
		}

		claims, err := a.Validate(tokenStr)
		if err != nil {
			sendAuthError(w, "invalid token: "+err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetClaims extracts claims from the request context.
func GetClaims(ctx context.Context) *jwt.RegisteredClaims {
	claims, _ := ctx.Value(claimsContextKey).(*jwt.RegisteredClaims)
	return claims
}

func extractToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func sendAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(types.APIResponse{Success: false, Message: message})
}
