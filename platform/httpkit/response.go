package httpkit

import (
	"net/http"

	"enova_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every error reply. Code carries the
// numeric error code when the error has one.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// OK writes payload as a 200 JSON reply.
func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// HandleError writes err as a JSON error reply and reports whether it did.
// Errors carrying an *apperr.Error use its status and code; anything else
// is a 500 without internals.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	appErr, ok := apperr.As(err)
	if !ok {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		return true
	}

	c.JSON(appErr.HTTPStatus(), ErrorResponse{
		Error:   appErr.Message,
		Code:    appErr.Code,
		Details: appErr.Details,
	})
	return true
}
