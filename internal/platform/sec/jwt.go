// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via small interfaces declared at the point of use.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// # Token Kinds

const (
	// KindAccess marks a short-lived token carrying the full authorization claims.
	KindAccess = "access"

	// KindRefresh marks a longer-lived token that only proves identity+tenant.
	// Roles and email are deliberately omitted: authorization is re-derived
	// fresh from the account record at refresh time.
	KindRefresh = "refresh"
)

// AuthClaims represents the payload embedded inside a Klustra JWT.
//
// # Why custom claims?
//
// By embedding the username, tenant and roles directly inside the JWT,
// [middleware.Authenticate] can reconstruct the active principal WITHOUT
// querying the database on every single API request. This is the hot path
// for every authenticated call, so it must stay a pure in-memory check.
type AuthClaims struct {
	jwt.RegisteredClaims

	Username string   `json:"username,omitempty"`
	Email    string   `json:"email,omitempty"`
	TenantID string   `json:"tenantId,omitempty"`
	Roles    []string `json:"roles,omitempty"`
	Kind     string   `json:"type"`
}

// # Verification Failures

// VerifyReason classifies why a token was rejected.
//
// The distinction is for internal logging only: callers collapse every reason
// into a generic "authentication failed" before it reaches a client.
type VerifyReason string

const (
	ReasonBadSignature    VerifyReason = "bad_signature"
	ReasonMalformed       VerifyReason = "malformed"
	ReasonExpired         VerifyReason = "expired"
	ReasonUnsupportedKind VerifyReason = "unsupported_kind"
)

// InvalidTokenError is returned by [TokenService.Verify] for any rejected token.
type InvalidTokenError struct {
	Reason VerifyReason
	cause  error
}

// Error implements the error interface.
func (e *InvalidTokenError) Error() string {
	return fmt.Sprintf("sec: invalid token (%s)", e.Reason)
}

// Unwrap exposes the underlying parser error for logging.
func (e *InvalidTokenError) Unwrap() error { return e.cause }

// # Token Service

// TokenService handles generation and verification of JWT tokens using HS512.
//
// Tokens are stateless: nothing is stored server-side, and a token is valid
// iff its signature verifies and the current time is before its expiry.
type TokenService struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration

	// now is injectable for deterministic expiry tests.
	now func() time.Time
}

// minSecretLength is the minimum HMAC key size for HS512 (512 bits).
const minSecretLength = 64

// NewTokenService creates a new TokenService signing with the given shared secret.
//
// The secret is process-wide and read-only after startup; it is shared by all
// requests without locking.
func NewTokenService(secret, issuer string, accessTTL, refreshTTL time.Duration) (*TokenService, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("sec: JWT secret must be at least %d bytes for HS512, got %d", minSecretLength, len(secret))
	}

	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("sec: token validity windows must be positive")
	}

	return &TokenService{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

// AccessTTL returns the configured access-token validity window.
func (service *TokenService) AccessTTL() time.Duration {
	return service.accessTTL
}

/*
IssueAccessToken creates a signed access token for the given identity.

Description: Embeds subject ID, username, email, tenant and roles so that
downstream requests can be authorized without a database round trip.

Parameters:
  - userID: string (subject)
  - username: string
  - email: string
  - tenantID: string
  - roles: []string

Returns:
  - string: Compact signed JWT
  - time.Time: The token's expiry instant
  - error: Signing failures
*/
func (service *TokenService) IssueAccessToken(userID, username, email, tenantID string, roles []string) (string, time.Time, error) {
	currentTime := service.now()
	expiresAt := currentTime.Add(service.accessTTL)

	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Username: username,
		Email:    email,
		TenantID: tenantID,
		Roles:    roles,
		Kind:     KindAccess,
	}

	signedToken, err := service.sign(claims)
	if err != nil {
		return "", time.Time{}, err
	}

	return signedToken, expiresAt, nil
}

/*
IssueRefreshToken creates a signed refresh token for the given identity.

Description: Carries only subject+tenant. A refresh token proves identity,
never authorization level — roles are looked up fresh when it is redeemed.

Parameters:
  - userID: string (subject)
  - tenantID: string

Returns:
  - string: Compact signed JWT
  - time.Time: The token's expiry instant
  - error: Signing failures
*/
func (service *TokenService) IssueRefreshToken(userID, tenantID string) (string, time.Time, error) {
	currentTime := service.now()
	expiresAt := currentTime.Add(service.refreshTTL)

	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		TenantID: tenantID,
		Kind:     KindRefresh,
	}

	signedToken, err := service.sign(claims)
	if err != nil {
		return "", time.Time{}, err
	}

	return signedToken, expiresAt, nil
}

/*
Verify checks the signature, expiry, and kind of a JWT string.

Description: The single entry point for token validation. Every rejection is
classified with a [VerifyReason] so the auth layer can log the cause while
returning a uniform failure to the client.

Parameters:
  - tokenString: string

Returns:
  - *AuthClaims: The validated claims
  - error: *InvalidTokenError on any rejection
*/
func (service *TokenService) Verify(tokenString string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
			}
			return service.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return service.now() }),
	)

	if err != nil {
		return nil, classifyParseError(err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, &InvalidTokenError{Reason: ReasonMalformed, cause: errors.New("sec: unexpected claims type")}
	}

	if claims.Kind != KindAccess && claims.Kind != KindRefresh {
		return nil, &InvalidTokenError{
			Reason: ReasonUnsupportedKind,
			cause:  fmt.Errorf("sec: unknown token kind %q", claims.Kind),
		}
	}

	return claims, nil
}

// # Single-Claim Accessors

// Convenience wrappers for callers that only need verification plus one field.

// Username returns the username claim of a verified token.
func (service *TokenService) Username(tokenString string) (string, error) {
	claims, err := service.Verify(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Username, nil
}

// TenantID returns the tenantId claim of a verified token.
func (service *TokenService) TenantID(tokenString string) (string, error) {
	claims, err := service.Verify(tokenString)
	if err != nil {
		return "", err
	}
	return claims.TenantID, nil
}

// Roles returns the roles claim of a verified token.
func (service *TokenService) Roles(tokenString string) ([]string, error) {
	claims, err := service.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	return claims.Roles, nil
}

// Kind returns the token kind ("access" or "refresh") of a verified token.
func (service *TokenService) Kind(tokenString string) (string, error) {
	claims, err := service.Verify(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Kind, nil
}

// # Internals

// sign produces the compact HS512-signed representation of the claims.
func (service *TokenService) sign(claims AuthClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}
	return signedToken, nil
}

// classifyParseError maps golang-jwt parser errors onto our verification taxonomy.
func classifyParseError(err error) *InvalidTokenError {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return &InvalidTokenError{Reason: ReasonMalformed, cause: err}
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return &InvalidTokenError{Reason: ReasonBadSignature, cause: err}
	case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, jwt.ErrTokenNotValidYet):
		return &InvalidTokenError{Reason: ReasonExpired, cause: err}
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		// An unexpected signing algorithm lands here via the keyfunc.
		return &InvalidTokenError{Reason: ReasonUnsupportedKind, cause: err}
	default:
		return &InvalidTokenError{Reason: ReasonMalformed, cause: err}
	}
}
