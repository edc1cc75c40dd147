package httptransport

import (
	"net/http"

	"github.com/gin-gonic/gin"

	platformerrors "forge-server-go/internal/platform/errors"
)

// APIResponse is the envelope returned by every endpoint.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
	Code    int         `json:"code"`
}

// RespondSuccess writes a success envelope.
func RespondSuccess(c *gin.Context, httpStatus int, data interface{}, message string) {
	if message == "" {
		message = "ok"
	}
	c.JSON(httpStatus, APIResponse{
		Success: true,
		Message: message,
		Code:    httpStatus,
		Data:    data,
	})
}

// RespondError writes a failure envelope.
func RespondError(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, APIResponse{
		Success: false,
		Message: message,
		Code:    httpStatus,
		Data:    gin.H{"error": message},
	})
}

// RespondDomainError translates a domain error into a status code and
// writes the failure envelope.
func RespondDomainError(c *gin.Context, err error) {
	RespondError(c, StatusForError(err), err.Error())
}

// StatusForError maps the domain error taxonomy onto HTTP status codes.
func StatusForError(err error) int {
	switch platformerrors.KindOf(err) {
	case platformerrors.KindInvalid:
		return http.StatusBadRequest
	case platformerrors.KindAuth:
		return http.StatusUnauthorized
	case platformerrors.KindForbidden:
		return http.StatusForbidden
	case platformerrors.KindNotFound:
		return http.StatusNotFound
	case platformerrors.KindConflict, platformerrors.KindIncompatible:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
