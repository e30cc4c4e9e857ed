// Package middleware provides gin middleware shared by every route.
package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"osvillage/internal/observability"
	contextutils "osvillage/internal/utils"

	"github.com/gin-gonic/gin"
)

// ErrorRecoveryMiddleware turns a panic in any later handler into a 500 AppError response
// and logs it with its stack trace
func ErrorRecoveryMiddleware(logger *observability.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if recovered := recover(); recovered != nil {
				stackTrace := string(debug.Stack())

				panicErr, ok := recovered.(error)
				if !ok {
					panicErr = fmt.Errorf("panic: %v", recovered)
				}

				if logger != nil {
					logger.Error(c.Request.Context(), "Panic recovered", panicErr, map[string]interface{}{
						"path":  c.Request.URL.Path,
						"stack": stackTrace,
					})
				}

				appErr := contextutils.NewAppErrorWithCause(
					contextutils.ErrorCodeInternalError,
					contextutils.SeverityFatal,
					"Internal server error",
					"A panic occurred while processing the request",
					panicErr,
				)

				// stack traces are only exposed in debug mode
				if gin.Mode() == gin.DebugMode {
					appErr.Details = fmt.Sprintf("%s\nStack trace: %s", appErr.Details, stackTrace)
				}

				_ = c.Error(appErr)
				HandleAppError(c, appErr)
				c.Abort()
			}
		}()

		c.Next()
	}
}

// HandleAppError handles any AppError and sends appropriate HTTP response
func HandleAppError(c *gin.Context, err error) {
	var appErr *contextutils.AppError
	if !contextutils.AsError(err, &appErr) {
		appErr = contextutils.NewAppErrorWithCause(
			contextutils.ErrorCodeInternalError,
			contextutils.SeverityError,
			"Internal server error",
			err.Error(),
			err,
		)
	}
	StandardizeAppError(c, MapErrorCodeToHTTPStatus(appErr.Code), appErr)
}

// StandardizeAppError writes the AppError JSON body with the given status.
// "detail" carries the full error string.
func StandardizeAppError(c *gin.Context, statusCode int, err *contextutils.AppError) {
	errorJSON := err.ToJSON()
	errorJSON["detail"] = err.Error()
	c.JSON(statusCode, errorJSON)
}

// MapErrorCodeToHTTPStatus maps AppError codes to HTTP status codes. Only request
// validation is a client error; every other failure is reported as 500.
func MapErrorCodeToHTTPStatus(code contextutils.ErrorCode) int {
	switch code {
	case contextutils.ErrorCodeInvalidInput,
		contextutils.ErrorCodeValidationFailed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
