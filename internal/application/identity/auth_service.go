package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// AuthService signs merchants into the dashboard
type AuthService struct {
	admins     identity.AdminUserRepository
	jwtService *auth.JWTService
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(admins identity.AdminUserRepository, jwtService *auth.JWTService, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		admins:     admins,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Login authenticates an admin and returns tokens
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	admin, err := s.admins.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Error("Failed to load admin during login", zap.Error(err))
			return nil, err
		}
		s.logger.Warn("Admin not found during login", zap.String("email", email))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	if !admin.VerifyPassword(req.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("email", email))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}
	if !admin.Active {
		s.logger.Warn("Login attempt for inactive admin", zap.String("email", email))
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account is not active")
	}

	pair, err := s.jwtService.GenerateTokenPair(subjectOf(admin))
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainErrorWithCause("INTERNAL_ERROR", "Failed to generate authentication tokens", err)
	}

	admin.RecordLogin()
	if err := s.admins.Save(ctx, admin); err != nil {
		// The tokens are valid either way
		s.logger.Error("Failed to record login", zap.Error(err))
	}

	s.logger.Info("Admin logged in", zap.String("admin_id", admin.ID.String()))

	resp := toTokenResponse(pair)
	profile := ToAdminResponse(admin)
	resp.Admin = &profile
	return resp, nil
}

// Refresh issues a new token pair for a valid refresh token
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		return nil, tokenError(err)
	}

	adminID, err := claims.AdminUUID()
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid admin ID in token")
	}

	admin, err := s.loadActive(ctx, adminID)
	if err != nil {
		return nil, err
	}

	pair, err := s.jwtService.RefreshTokenPair(req.RefreshToken, subjectOf(admin))
	if err != nil {
		s.logger.Warn("Token refresh failed", zap.Error(err))
		return nil, tokenError(err)
	}

	return toTokenResponse(pair), nil
}

// Me returns the profile of the signed-in admin
func (s *AuthService) Me(ctx context.Context, adminID uuid.UUID) (*AdminResponse, error) {
	admin, err := s.loadActive(ctx, adminID)
	if err != nil {
		return nil, err
	}
	resp := ToAdminResponse(admin)
	return &resp, nil
}

// ChangePassword changes the admin's password after checking the old one
func (s *AuthService) ChangePassword(ctx context.Context, adminID uuid.UUID, req ChangePasswordRequest) error {
	admin, err := s.loadActive(ctx, adminID)
	if err != nil {
		return err
	}
	if err := admin.ChangePassword(req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	if err := s.admins.Save(ctx, admin); err != nil {
		s.logger.Error("Failed to save admin after password change", zap.Error(err))
		return err
	}

	s.logger.Info("Admin password changed", zap.String("admin_id", adminID.String()))
	return nil
}

// EnsureAdmin creates the configured admin when no admin exists yet. It
// reports whether an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, cfg config.AdminConfig) (bool, error) {
	count, err := s.admins.Count(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	if cfg.Email == "" || cfg.Password == "" {
		s.logger.Warn("No admin account exists and admin bootstrap is not configured")
		return false, nil
	}

	admin, err := identity.NewAdminUser(cfg.Email, cfg.Name, cfg.Password)
	if err != nil {
		return false, err
	}
	if err := s.admins.Save(ctx, admin); err != nil {
		return false, err
	}

	s.logger.Info("Bootstrap admin created", zap.String("email", admin.Email))
	return true, nil
}

func (s *AuthService) loadActive(ctx context.Context, adminID uuid.UUID) (*identity.AdminUser, error) {
	admin, err := s.admins.FindByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("ADMIN_NOT_FOUND", "Admin not found")
		}
		return nil, err
	}
	if !admin.Active {
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account is no longer active")
	}
	return admin, nil
}

func subjectOf(admin *identity.AdminUser) auth.Subject {
	return auth.Subject{AdminID: admin.ID, Email: admin.Email, Name: admin.Name}
}

func toTokenResponse(pair *auth.TokenPair) *TokenResponse {
	return &TokenResponse{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
	}
}

// tokenError maps JWT errors to domain errors
func tokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidTokenType),
		errors.Is(err, auth.ErrInvalidClaims), errors.Is(err, auth.ErrMissingAdminID):
		return shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	default:
		return shared.NewDomainError("TOKEN_ERROR", "Failed to refresh token")
	}
}
