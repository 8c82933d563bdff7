package middleware

import (
	"net/http"
	"slices"

	"github.com/englishbooster/affiliate/internal/domain/identity"
	"github.com/englishbooster/affiliate/internal/infrastructure/logger"
	"github.com/englishbooster/affiliate/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequireRole lets the request through when the caller holds one of roles.
// It runs after JWTAuthMiddleware.
func RequireRole(roles ...identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetString("request_id")
		p, ok := GetPrincipal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, "Autentikasi diperlukan", rid))
			return
		}
		if slices.Contains(roles, p.Role) {
			c.Next()
			return
		}

		logger.GetGinLogger(c).Warn("Role check failed",
			zap.Stringer("user_id", p.UserID),
			zap.String("role", string(p.Role)))
		c.AbortWithStatusJSON(http.StatusForbidden,
			dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, "Anda tidak memiliki akses untuk tindakan ini", rid))
	}
}

func RequireAdmin() gin.HandlerFunc {
	return RequireRole(identity.RoleAdmin)
}
