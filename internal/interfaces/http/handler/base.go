package handler

import (
	"errors"
	"net/http"

	"github.com/englishbooster/affiliate/internal/domain/identity"
	"github.com/englishbooster/affiliate/internal/domain/shared"
	"github.com/englishbooster/affiliate/internal/infrastructure/logger"
	"github.com/englishbooster/affiliate/internal/interfaces/http/dto"
	"github.com/englishbooster/affiliate/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDKey is the gin key the RequestID middleware stores the id under
const RequestIDKey = "request_id"

const msgInternal = "Terjadi kesalahan pada server. Silakan coba lagi nanti."

// BaseHandler is embedded by every resource handler. It writes the
// response envelope and maps errors onto HTTP statuses.
type BaseHandler struct{}

func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// BindingError answers a failed ShouldBind with per-field details
func (h *BaseHandler) BindingError(c *gin.Context, err error) {
	middleware.HandleValidationError(c, err)
}

// HandleError answers err. Domain errors keep their code and message;
// anything else is logged and hidden behind a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	var de *shared.DomainError
	switch {
	case err == nil:
	case errors.As(err, &de):
		code := dto.NormalizeErrorCode(de.Code)
		fail(c, dto.GetHTTPStatus(code), code, de.Message)
	default:
		logger.GetGinLogger(c).Error("Unhandled error", zap.String("route", c.FullPath()), zap.Error(err))
		fail(c, http.StatusInternalServerError, dto.ErrCodeInternal, msgInternal)
	}
}

// principal returns the authenticated caller, answering 401 without one
func (h *BaseHandler) principal(c *gin.Context) (identity.Principal, bool) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		fail(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Silakan login terlebih dahulu.")
	}
	return p, ok
}

// pathID parses the :id route parameter, answering 400 when malformed
func (h *BaseHandler) pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "ID tidak valid.")
		return uuid.Nil, false
	}
	return id, true
}

func fail(c *gin.Context, status int, code, message string) {
	rid := c.GetString(RequestIDKey)
	if rid == "" {
		rid = c.GetHeader(middleware.RequestIDHeader)
	}
	c.JSON(status, dto.NewErrorResponseWithRequestID(code, message, rid))
}
