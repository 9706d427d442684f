// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

// Package auth implements authentication use cases for the Klustra platform.
//
// # Architecture
//
// The service in this package orchestrates the principal resolver, the token
// service, and the tenant/user provisioning ports. It is technology-agnostic
// and does not know about HTTP or SQL.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/klustra/klustra/internal/platform/apperr"
	"github.com/klustra/klustra/internal/platform/ctxutil"
	"github.com/klustra/klustra/internal/platform/sec"
)

// # Ports

// TokenProvider defines the contract for issuing and verifying security tokens.
type TokenProvider interface {
	IssueAccessToken(userID, username, email, tenantID string, roles []string) (string, time.Time, error)
	IssueRefreshToken(userID, tenantID string) (string, time.Time, error)
	Verify(tokenString string) (*sec.AuthClaims, error)
	AccessTTL() time.Duration
}

// TenantProvisioner creates tenants during self-service registration.
// Implemented by the tenants service.
type TenantProvisioner interface {
	// ProvisionTrial creates a new tenant on the trial plan and returns its ID.
	ProvisionTrial(context context.Context, name, subdomain string) (string, error)
}

// AccountProvisioner creates user accounts during self-service registration.
// Implemented by the users service.
type AccountProvisioner interface {
	// CreateTenantAdmin creates the founding administrator account of a tenant.
	CreateTenantAdmin(context context.Context, tenantID, username, email, passwordHash string) (*Account, error)
}

// LoginRecorder tracks login outcomes on the underlying user record.
// Implemented by the users service.
type LoginRecorder interface {
	// RecordLogin bumps the login counter and resets the failure streak.
	RecordLogin(context context.Context, accountID string) error

	// RecordFailedLogin bumps the failure streak and may lock the account.
	RecordFailedLogin(context context.Context, accountID string) error
}

// # Service

// Service implements the authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to token issuance,
// registration, or login logic must be reviewed by the security team.
type Service struct {
	resolver      *Resolver
	accountStore  AccountStore
	tokens        TokenProvider
	tenants       TenantProvisioner
	accounts      AccountProvisioner
	loginRecorder LoginRecorder

	// now is injectable for deterministic expiry tests.
	now func() time.Time
}

// NewService constructs a new auth [Service] with its dependencies.
func NewService(
	resolver *Resolver,
	accountStore AccountStore,
	tokens TokenProvider,
	tenants TenantProvisioner,
	accounts AccountProvisioner,
	loginRecorder LoginRecorder,
) *Service {
	return &Service{
		resolver:      resolver,
		accountStore:  accountStore,
		tokens:        tokens,
		tenants:       tenants,
		accounts:      accounts,
		loginRecorder: loginRecorder,
		now:           time.Now,
	}
}

// # Session Shape

// Session represents a successfully established authentication session.
type Session struct {
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
	TokenType    string     `json:"tokenType"`
	ExpiresIn    int64      `json:"expiresIn"` // Seconds until the access token expires.
	ExpiresAt    time.Time  `json:"expiresAt"`
	TenantID     string     `json:"tenantId"`
	User         *Principal `json:"user"`
}

// issueSession builds the full token pair for a verified account.
func (service *Service) issueSession(account *Account) (*Session, error) {
	accessToken, expiresAt, err := service.tokens.IssueAccessToken(
		account.ID, account.Username, account.Email, account.TenantID, account.Roles,
	)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	refreshToken, _, err := service.tokens.IssueRefreshToken(account.ID, account.TenantID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	return &Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(service.tokens.AccessTTL().Seconds()),
		ExpiresAt:    expiresAt,
		TenantID:     account.TenantID,
		User:         principalFromAccount(account),
	}, nil
}

// # Login

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	TenantHint string // Resolved tenant ID, or "" for a global username lookup.
	Username   string
	Password   string
}

/*
Login validates user credentials and issues a token pair.

Description: The primary entry point into the platform. Credential checks
are delegated to the [Resolver]; this method adds login bookkeeping and
token issuance on top.

Parameters:
  - context: Context for the database operation.
  - input: Tenant hint plus the submitted username and password.

Returns:
  - A [*Session] containing access and refresh tokens.
  - [apperr.Unauthorized] for any credential failure.

Business rules:
  - Failed password attempts are recorded and may lock the account.
  - Successful logins reset the failure streak.
  - Bookkeeping failures never block an otherwise valid login.
*/
func (service *Service) Login(ctx context.Context, input LoginInput) (*Session, error) {
	logger := ctxutil.GetLogger(ctx)

	// ── 1. Credential Verification ────────────────────────────────────────

	account, err := service.resolver.FromCredentials(ctx, input.TenantHint, input.Username, input.Password)
	if err != nil {
		var failure *AuthFailure
		if errors.As(err, &failure) {
			// The precise reason stays in the audit log; the client gets
			// the collapsed message from clientError.
			logger.WarnContext(ctx, "login_rejected",
				slog.String("username", input.Username),
				slog.String("reason", string(failure.Reason)),
			)

			if failure.Reason == FailureInvalidCredentials && failure.AccountID != "" {
				if recordErr := service.loginRecorder.RecordFailedLogin(ctx, failure.AccountID); recordErr != nil {
					logger.ErrorContext(ctx, "login_failure_bookkeeping_failed",
						slog.String("account_id", failure.AccountID),
						slog.String("error", recordErr.Error()),
					)
				}
			}

			return nil, failure.clientError()
		}
		return nil, fmt.Errorf("auth_service_login_failed: %w", err)
	}

	// ── 2. Login Bookkeeping ──────────────────────────────────────────────

	// A bookkeeping fault must not lock a valid user out of the platform.
	if err := service.loginRecorder.RecordLogin(ctx, account.ID); err != nil {
		logger.ErrorContext(ctx, "login_bookkeeping_failed",
			slog.String("account_id", account.ID),
			slog.String("error", err.Error()),
		)
	}

	// ── 3. Token Issuance ─────────────────────────────────────────────────

	return service.issueSession(account)
}

// # Refresh

/*
Refresh redeems a refresh token for a brand new token pair.

Description: The refresh token only proves identity+tenant, so authorization
data (roles, email, enabled state) is re-read from the account record. Role
changes made since the last issuance therefore take effect here.

Parameters:
  - context: Context for the database operation.
  - refreshToken: The compact JWT submitted by the client.

Returns:
  - A fresh [*Session].
  - [apperr.Unauthorized] when the token is invalid, of the wrong kind,
    or the underlying account is gone, disabled, or locked.
*/
func (service *Service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	logger := ctxutil.GetLogger(ctx)

	// ── 1. Token Verification ─────────────────────────────────────────────

	claims, err := service.tokens.Verify(refreshToken)
	if err != nil {
		var invalid *sec.InvalidTokenError
		if errors.As(err, &invalid) {
			logger.WarnContext(ctx, "refresh_rejected", slog.String("reason", string(invalid.Reason)))
		}
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	// Access tokens must not be redeemable for fresh pairs.
	if claims.Kind != sec.KindRefresh {
		logger.WarnContext(ctx, "refresh_rejected", slog.String("reason", "wrong_token_kind"))
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	// ── 2. Account Re-Read ────────────────────────────────────────────────

	account, err := service.accountStore.FindByID(ctx, claims.Subject)
	if err != nil {
		if apperr.IsAppError(err) {
			return nil, apperr.Unauthorized("Account no longer exists")
		}
		return nil, fmt.Errorf("auth_service_refresh_lookup_failed: %w", err)
	}

	// ── 3. Account State Gates ────────────────────────────────────────────

	// A refresh must honour state changes made since the token was issued.
	if !account.Enabled {
		return nil, apperr.Unauthorized("Account is disabled")
	}
	if !nonLocked(account, service.now()) {
		return nil, apperr.Unauthorized("Account is temporarily locked")
	}

	// ── 4. Token Issuance ─────────────────────────────────────────────────

	return service.issueSession(account)
}

// # Logout

// Logout ends a client session.
//
// Tokens are stateless and no server-side session exists, so there is
// nothing to revoke: the call is an audit-log event and always succeeds,
// even for garbage input. Clients discard their local tokens.
func (service *Service) Logout(ctx context.Context, accessToken string) {
	logger := ctxutil.GetLogger(ctx)

	if claims, err := service.tokens.Verify(accessToken); err == nil {
		logger.InfoContext(ctx, "logout",
			slog.String("account_id", claims.Subject),
			slog.String("tenant_id", claims.TenantID),
		)
		return
	}

	logger.InfoContext(ctx, "logout", slog.String("account_id", "unknown"))
}

// # Validation

// Validate reports whether a token is currently acceptable: well-formed,
// correctly signed, unexpired, and of a known kind.
func (service *Service) Validate(tokenString string) bool {
	_, err := service.tokens.Verify(tokenString)
	return err == nil
}

// Me resolves the active principal from verified claims, no I/O involved.
func (service *Service) Me(claims *sec.AuthClaims) *Principal {
	return service.resolver.FromToken(claims)
}

// # Registration

// RegisterInput holds the data required to enroll a new tenant.
type RegisterInput struct {
	TenantName string
	Subdomain  string
	Username   string
	Email      string
	Password   string
}

/*
Register provisions a new tenant together with its founding administrator.

Description: Self-service onboarding. Creates the tenant on a trial plan,
creates the TENANT_ADMIN account inside it, and signs the new administrator
straight in.

Parameters:
  - context: Context for the database operation.
  - input: Tenant identity plus the administrator's credentials.

Returns:
  - A [*Session] for the newly created administrator.
  - [apperr.Conflict] when the subdomain or username is already taken.

Business rules:
  - Every new tenant starts on a trial plan.
  - The founding user always receives the TENANT_ADMIN role.
*/
func (service *Service) Register(ctx context.Context, input RegisterInput) (*Session, error) {

	// ── 1. Security ───────────────────────────────────────────────────────

	// Hash before any persistence so a partial failure never stores plaintext.
	passwordHash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// ── 2. Tenant Provisioning ────────────────────────────────────────────

	tenantID, err := service.tenants.ProvisionTrial(ctx, input.TenantName, input.Subdomain)
	if err != nil {
		if apperr.IsAppError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("auth_service_tenant_provision_failed: %w", err)
	}

	// ── 3. Founding Administrator ─────────────────────────────────────────

	account, err := service.accounts.CreateTenantAdmin(ctx, tenantID, input.Username, input.Email, passwordHash)
	if err != nil {
		if apperr.IsAppError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("auth_service_admin_creation_failed: %w", err)
	}

	// ── 4. Auto Sign-In ───────────────────────────────────────────────────

	return service.issueSession(account)
}
