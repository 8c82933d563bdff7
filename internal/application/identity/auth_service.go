package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/englishbooster/affiliate/internal/domain/identity"
	"github.com/englishbooster/affiliate/internal/domain/shared"
	"github.com/englishbooster/affiliate/internal/infrastructure/auth"
	"github.com/englishbooster/affiliate/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Token errors surfaced to clients as 401
var (
	ErrTokenExpired    = shared.NewDomainError(shared.CodeUnauthorized, "Sesi telah berakhir. Silakan login kembali.")
	ErrTokenInvalid    = shared.NewDomainError(shared.CodeUnauthorized, "Token tidak valid.")
	ErrTokenMaxRefresh = shared.NewDomainError(shared.CodeUnauthorized, "Batas perpanjangan sesi tercapai. Silakan login kembali.")
	ErrTokenRevoked    = shared.NewDomainError(shared.CodeUnauthorized, "Token telah dicabut.")
)

// AuthService registers users and issues, refreshes and revokes tokens
type AuthService struct {
	users     identity.UserRepository
	jwt       *auth.JWTService
	blacklist auth.TokenBlacklist
	logger    *zap.Logger
}

func NewAuthService(
	users identity.UserRepository,
	jwt *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		jwt:       jwt,
		blacklist: blacklist,
		logger:    logger,
	}
}

// Register creates a user with the plain "user" role
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	exists, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, identity.ErrEmailTaken
	}

	user, err := identity.NewUser(req.Name, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.For(ctx, s.logger).Info("User registered", zap.String("user_id", user.ID.String()))
	resp := ToUserResponse(user)
	return &resp, nil
}

// Login verifies the credentials and issues a token pair.
// Unknown emails and wrong passwords fail with the same error.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			logger.For(ctx, s.logger).Warn("Login for unknown email")
			return nil, identity.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.VerifyPassword(req.Password) {
		logger.For(ctx, s.logger).Warn("Invalid password attempt", zap.String("user_id", user.ID.String()))
		return nil, identity.ErrInvalidCredentials
	}

	pair, err := s.jwt.GenerateTokenPair(auth.GenerateTokenInput{
		UserID: user.ID,
		Name:   user.Name,
		Role:   user.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("generate token pair: %w", err)
	}

	user.RecordLogin()
	if err := s.users.Update(ctx, user); err != nil {
		// the login itself succeeded
		logger.For(ctx, s.logger).Error("Failed to record login", zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	logger.For(ctx, s.logger).Info("User logged in", zap.String("user_id", user.ID.String()), zap.String("role", string(user.Role)))
	return &LoginResponse{
		TokenResponse: toTokenResponse(pair),
		User:          ToUserResponse(user),
	}, nil
}

// Refresh exchanges a refresh token for a new pair. The role is reloaded
// from the store so a user promoted to affiliate picks it up here.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error) {
	claims, err := s.jwt.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, mapTokenError(err)
	}
	if revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID); err != nil {
		return nil, fmt.Errorf("check blacklist: %w", err)
	} else if revoked {
		return nil, ErrTokenRevoked
	}

	userID, err := claims.UserUUID()
	if err != nil {
		return nil, ErrTokenInvalid
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}

	pair, err := s.jwt.RefreshTokenPair(req.RefreshToken, user.Name, user.Role)
	if err != nil {
		return nil, mapTokenError(err)
	}

	// a refresh token is single use
	if ttl := claims.RemainingTTL(); ttl > 0 {
		if err := s.blacklist.AddToBlacklist(ctx, claims.ID, ttl); err != nil {
			logger.For(ctx, s.logger).Error("Failed to revoke used refresh token", zap.Error(err))
		}
	}

	resp := toTokenResponse(pair)
	return &resp, nil
}

// Logout revokes the presented access token until it would have expired
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if input.TokenJTI == "" || input.ExpiresIn <= 0 {
		return nil
	}
	if err := s.blacklist.AddToBlacklist(ctx, input.TokenJTI, input.ExpiresIn); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	logger.For(ctx, s.logger).Info("User logged out", zap.String("user_id", input.UserID.String()))
	return nil
}

// Me returns the caller's account
func (s *AuthService) Me(ctx context.Context, principal identity.Principal) (*UserResponse, error) {
	user, err := s.users.FindByID(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return ErrTokenExpired
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return ErrTokenMaxRefresh
	default:
		return ErrTokenInvalid
	}
}
