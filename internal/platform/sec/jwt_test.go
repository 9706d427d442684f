// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

package sec

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSigningSecret = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()

	service, err := NewTokenService(testSigningSecret, "klustra.io", time.Hour, 24*time.Hour)
	require.NoError(t, err)
	return service
}

func TestNewTokenService_RejectsShortSecret(t *testing.T) {
	_, err := NewTokenService("too-short", "klustra.io", time.Hour, 24*time.Hour)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 64 bytes")
}

func TestNewTokenService_RejectsNonPositiveTTL(t *testing.T) {
	_, err := NewTokenService(testSigningSecret, "klustra.io", 0, 24*time.Hour)
	require.Error(t, err)

	_, err = NewTokenService(testSigningSecret, "klustra.io", time.Hour, -time.Minute)
	require.Error(t, err)
}

func TestIssueAccessToken_RoundTrip(t *testing.T) {
	service := newTestTokenService(t)

	// 1. Issue an access token with the full claim set.
	signedToken, expiresAt, err := service.IssueAccessToken(
		"user-1", "nadia", "nadia@acme.test", "tenant-1", []string{"TENANT_ADMIN", "USER"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	// 2. Verify it and read every claim back.
	claims, err := service.Verify(signedToken)
	require.NoError(t, err)

	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "nadia", claims.Username)
	assert.Equal(t, "nadia@acme.test", claims.Email)
	assert.Equal(t, "tenant-1", claims.TenantID)
	assert.Equal(t, []string{"TENANT_ADMIN", "USER"}, claims.Roles)
	assert.Equal(t, KindAccess, claims.Kind)
	assert.Equal(t, "klustra.io", claims.Issuer)
}

func TestIssueRefreshToken_OmitsAuthorizationClaims(t *testing.T) {
	service := newTestTokenService(t)

	signedToken, _, err := service.IssueRefreshToken("user-1", "tenant-1")
	require.NoError(t, err)

	claims, err := service.Verify(signedToken)
	require.NoError(t, err)

	assert.Equal(t, KindRefresh, claims.Kind)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "tenant-1", claims.TenantID)
	assert.Empty(t, claims.Roles)
	assert.Empty(t, claims.Email)
	assert.Empty(t, claims.Username)
}

func TestVerify_RejectsExpiredToken(t *testing.T) {
	service := newTestTokenService(t)

	// 1. Issue a token at a frozen instant.
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return issuedAt }

	signedToken, _, err := service.IssueAccessToken("user-1", "nadia", "", "tenant-1", nil)
	require.NoError(t, err)

	// 2. Still valid one minute before expiry.
	service.now = func() time.Time { return issuedAt.Add(59 * time.Minute) }
	_, err = service.Verify(signedToken)
	require.NoError(t, err)

	// 3. Rejected one minute after expiry.
	service.now = func() time.Time { return issuedAt.Add(61 * time.Minute) }
	_, err = service.Verify(signedToken)
	require.Error(t, err)

	var invalidToken *InvalidTokenError
	require.ErrorAs(t, err, &invalidToken)
	assert.Equal(t, ReasonExpired, invalidToken.Reason)
}

func TestVerify_RejectsTamperedToken(t *testing.T) {
	service := newTestTokenService(t)

	signedToken, _, err := service.IssueAccessToken("user-1", "nadia", "", "tenant-1", nil)
	require.NoError(t, err)

	// Flip a character in the signature segment.
	segments := strings.Split(signedToken, ".")
	require.Len(t, segments, 3)
	tampered := segments[0] + "." + segments[1] + "." + segments[2][:len(segments[2])-2] + "xx"

	_, err = service.Verify(tampered)
	require.Error(t, err)

	var invalidToken *InvalidTokenError
	require.ErrorAs(t, err, &invalidToken)
	assert.Equal(t, ReasonBadSignature, invalidToken.Reason)
}

func TestVerify_RejectsForeignSignature(t *testing.T) {
	service := newTestTokenService(t)

	otherSecret := strings.Repeat("z", 64)
	foreign, err := NewTokenService(otherSecret, "klustra.io", time.Hour, 24*time.Hour)
	require.NoError(t, err)

	signedToken, _, err := foreign.IssueAccessToken("user-1", "nadia", "", "tenant-1", nil)
	require.NoError(t, err)

	_, err = service.Verify(signedToken)
	require.Error(t, err)
}

func TestVerify_RejectsOtherSigningAlgorithms(t *testing.T) {
	service := newTestTokenService(t)

	// Craft an otherwise-valid token signed with HS256 instead of HS512.
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Kind: KindAccess,
	}
	signedToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSigningSecret))
	require.NoError(t, err)

	_, err = service.Verify(signedToken)
	require.Error(t, err)
}

func TestVerify_RejectsUnknownKind(t *testing.T) {
	service := newTestTokenService(t)

	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Kind: "session",
	}
	signedToken, err := service.sign(claims)
	require.NoError(t, err)

	_, err = service.Verify(signedToken)
	require.Error(t, err)

	var invalidToken *InvalidTokenError
	require.ErrorAs(t, err, &invalidToken)
	assert.Equal(t, ReasonUnsupportedKind, invalidToken.Reason)
}

func TestVerify_RejectsGarbage(t *testing.T) {
	service := newTestTokenService(t)

	_, err := service.Verify("not-a-jwt")
	require.Error(t, err)

	var invalidToken *InvalidTokenError
	require.ErrorAs(t, err, &invalidToken)
	assert.Equal(t, ReasonMalformed, invalidToken.Reason)
}

func TestSingleClaimAccessors(t *testing.T) {
	service := newTestTokenService(t)

	signedToken, _, err := service.IssueAccessToken(
		"user-1", "nadia", "nadia@acme.test", "tenant-1", []string{"USER"})
	require.NoError(t, err)

	username, err := service.Username(signedToken)
	require.NoError(t, err)
	assert.Equal(t, "nadia", username)

	tenantID, err := service.TenantID(signedToken)
	require.NoError(t, err)
	assert.Equal(t, "tenant-1", tenantID)

	roles, err := service.Roles(signedToken)
	require.NoError(t, err)
	assert.Equal(t, []string{"USER"}, roles)

	kind, err := service.Kind(signedToken)
	require.NoError(t, err)
	assert.Equal(t, KindAccess, kind)
}
