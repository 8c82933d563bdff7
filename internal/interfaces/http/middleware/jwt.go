package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/englishbooster/affiliate/internal/domain/identity"
	"github.com/englishbooster/affiliate/internal/infrastructure/auth"
	"github.com/englishbooster/affiliate/internal/infrastructure/logger"
	"github.com/englishbooster/affiliate/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// gin context keys set by the authentication middleware
const (
	JWTClaimsKey  = "jwt_claims"
	JWTUserIDKey  = "jwt_user_id"
	JWTRoleKey    = "jwt_role"
	PrincipalKey  = "principal"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

var (
	errMissingToken  = errors.New("missing bearer token")
	errUserLoggedOut = errors.New("user sessions invalidated")
)

type JWTMiddlewareConfig struct {
	JWTService *auth.JWTService
	// TokenBlacklist is consulted when set. Lookup failures let the request through.
	TokenBlacklist auth.TokenBlacklist
	// OnError replaces the default 401 response
	OnError func(c *gin.Context, err error)
	Logger  *zap.Logger
}

func JWTAuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(JWTMiddlewareConfig{JWTService: jwtService})
}

// JWTAuthMiddlewareWithConfig validates the bearer token, rejects revoked
// tokens and stores the caller's Principal on the gin context.
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		claims, principal, err := authenticate(c.Request.Context(), cfg, log, c.GetHeader(AuthHeaderKey))
		if err != nil {
			if cfg.OnError != nil {
				cfg.OnError(c, err)
				return
			}
			log.Warn("JWT authentication failed", zap.Error(err), zap.String("path", c.Request.URL.Path))
			code, message := authFailure(err)
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithRequestID(code, message, c.GetString("request_id")))
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTRoleKey, claims.Role)
		c.Set(PrincipalKey, principal)

		ctx, reqLogger := logger.WithPrincipal(c.Request.Context(), logger.FromContext(c.Request.Context()), claims.UserID, claims.Role)
		c.Request = c.Request.WithContext(ctx)
		c.Set("logger", reqLogger)
		c.Next()
	}
}

func authenticate(ctx context.Context, cfg JWTMiddlewareConfig, log *zap.Logger, header string) (*auth.Claims, identity.Principal, error) {
	token, err := bearerToken(header)
	if err != nil {
		return nil, identity.Principal{}, err
	}
	claims, err := cfg.JWTService.ValidateAccessToken(token)
	if err != nil {
		return nil, identity.Principal{}, err
	}
	if cfg.TokenBlacklist != nil {
		if err := checkRevoked(ctx, cfg.TokenBlacklist, log, claims); err != nil {
			return nil, identity.Principal{}, err
		}
	}
	principal, err := claims.Principal()
	if err != nil {
		return nil, identity.Principal{}, err
	}
	return claims, principal, nil
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errMissingToken
	}
	token, ok := strings.CutPrefix(header, BearerPrefix)
	if !ok {
		return "", auth.ErrInvalidToken
	}
	if token == "" {
		return "", errMissingToken
	}
	return token, nil
}

// checkRevoked rejects a blacklisted jti or a token issued before the
// user's last logout-everywhere. Store errors are logged and ignored.
func checkRevoked(ctx context.Context, bl auth.TokenBlacklist, log *zap.Logger, claims *auth.Claims) error {
	if claims.ID != "" {
		revoked, err := bl.IsBlacklisted(ctx, claims.ID)
		switch {
		case err != nil:
			log.Error("Failed to check token blacklist", zap.String("jti", claims.ID), zap.Error(err))
		case revoked:
			return auth.ErrTokenBlacklisted
		}
	}

	invalidated, err := bl.IsUserTokenInvalidated(ctx, claims.UserID, claims.IssuedAtTime())
	switch {
	case err != nil:
		log.Error("Failed to check user token invalidation", zap.String("user_id", claims.UserID), zap.Error(err))
	case invalidated:
		return errors.Join(auth.ErrTokenBlacklisted, errUserLoggedOut)
	}
	return nil
}

// authFailure picks the error code and Indonesian message for a 401
func authFailure(err error) (string, string) {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return dto.ErrCodeTokenExpired, "Token sudah kedaluwarsa"
	case errors.Is(err, auth.ErrTokenBlacklisted):
		return dto.ErrCodeTokenInvalid, "Token sudah dicabut"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidTokenType),
		errors.Is(err, auth.ErrTokenNotYetValid), errors.Is(err, auth.ErrInvalidClaims):
		return dto.ErrCodeTokenInvalid, "Token tidak valid"
	}
	return dto.ErrCodeUnauthorized, "Autentikasi diperlukan"
}

func GetJWTClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(JWTClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

func GetJWTUserID(c *gin.Context) string {
	return c.GetString(JWTUserIDKey)
}

// GetPrincipal returns the authenticated caller, false on public routes
func GetPrincipal(c *gin.Context) (identity.Principal, bool) {
	p, ok := c.Get(PrincipalKey)
	if !ok {
		return identity.Principal{}, false
	}
	principal, ok := p.(identity.Principal)
	return principal, ok
}

// GetAccessTokenTTL returns the jti and remaining lifetime of the request's access token
func GetAccessTokenTTL(c *gin.Context) (string, time.Duration) {
	claims := GetJWTClaims(c)
	if claims == nil {
		return "", 0
	}
	return claims.ID, claims.RemainingTTL()
}
