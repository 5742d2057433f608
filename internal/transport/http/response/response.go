package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ai-chat-studio/internal/apperror"
)

const (
	CodeOK                 = 0
	CodeBadRequest         = 40000
	CodeUsernameExists     = 40001
	CodeUnauthorized       = 40100
	CodeInvalidCredentials = 40101
	CodeSessionExpired     = 40102
	CodeNotFound           = 40400
	CodeRateLimited        = 42900
	CodeInternalServer     = 50000
	CodeStorageUnavailable = 50001
	CodeProviderFailure    = 50200
)

type APIResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(200, APIResponse{
		Code:    CodeOK,
		Message: "ok",
		Data:    data,
	})
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.JSON(httpStatus, APIResponse{
		Code:    code,
		Message: message,
	})
}

// AppError maps an error's kind onto the HTTP status and machine code.
// The response body carries only the error's user-safe message.
func AppError(c *gin.Context, err error) {
	kind := apperror.KindOf(err)
	message := apperror.Message(err)

	switch kind {
	case apperror.KindInvalidCredentials:
		Error(c, http.StatusUnauthorized, CodeInvalidCredentials, message)
	case apperror.KindExpiredSession:
		Error(c, http.StatusUnauthorized, CodeSessionExpired, message)
	case apperror.KindUnauthorized:
		Error(c, http.StatusUnauthorized, CodeUnauthorized, message)
	case apperror.KindValidation:
		Error(c, http.StatusBadRequest, CodeBadRequest, message)
	case apperror.KindStorageConflict:
		Error(c, http.StatusConflict, CodeUsernameExists, message)
	case apperror.KindNotFound:
		Error(c, http.StatusNotFound, CodeNotFound, message)
	case apperror.KindProviderRateLimited:
		Error(c, http.StatusTooManyRequests, CodeRateLimited, message)
	case apperror.KindProviderUnavailable, apperror.KindProviderInvalidResponse:
		Error(c, http.StatusBadGateway, CodeProviderFailure, message)
	case apperror.KindStorageUnavailable:
		Error(c, http.StatusServiceUnavailable, CodeStorageUnavailable, message)
	default:
		Error(c, http.StatusInternalServerError, CodeInternalServer, "internal server error")
	}
}
