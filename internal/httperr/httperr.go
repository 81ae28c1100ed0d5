package httperr

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type HTTPError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

// Abort writes the error and stops the middleware chain.
func Abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func Unauthorized(c *gin.Context, code, message string) {
	Abort(c, http.StatusUnauthorized, code, message)
}

func TooManyRequests(c *gin.Context, code, message string) {
	Abort(c, http.StatusTooManyRequests, code, message)
}

var statusByKind = map[Kind]int{
	KindValidation: http.StatusBadRequest,
	KindNotFound:   http.StatusNotFound,
	KindForbidden:  http.StatusForbidden,
	KindConflict:   http.StatusConflict,
	KindGateway:    http.StatusServiceUnavailable,
	KindState:      http.StatusUnprocessableEntity,
	KindSignature:  http.StatusBadRequest,
}

var defaultMessages = map[Kind]string{
	KindValidation: "Invalid request.",
	KindNotFound:   "Resource not found.",
	KindForbidden:  "Not allowed.",
	KindConflict:   "Conflicting request.",
	KindGateway:    "Payment provider unavailable, try again.",
	KindState:      "Operation not allowed in the current state.",
	KindSignature:  "Payment verification failed.",
}

// Respond maps err to a stable code and status. Anything that is not a
// BusinessError is logged and rendered as a generic 500.
func Respond(c *gin.Context, log *zap.Logger, err error) {
	be, ok := As(err)
	if !ok {
		log.Error("unhandled error",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		Internal(c, "internal_error", "Unexpected error.")
		return
	}

	if be.Kind == KindGateway {
		log.Warn("gateway error", zap.String("code", be.Code), zap.Error(be.Err))
	}

	msg := be.Message
	if msg == "" {
		msg = defaultMessages[be.Kind]
	}

	Write(c, statusByKind[be.Kind], be.Code, msg)
}
