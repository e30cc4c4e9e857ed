package handlers

import (
	"fmt"

	"osvillage/internal/middleware"
	contextutils "osvillage/internal/utils"

	"github.com/gin-gonic/gin"
)

// HandleBindError answers a malformed or incomplete request body with 422
func HandleBindError(c *gin.Context, err error) {
	appErr := contextutils.NewAppErrorWithCause(
		contextutils.ErrorCodeValidationFailed,
		contextutils.SeverityWarn,
		"Invalid request",
		err.Error(),
		err,
	)
	_ = c.Error(appErr)
	middleware.HandleAppError(c, appErr)
}

// HandleValidationError answers an invalid path or query parameter with 422
func HandleValidationError(c *gin.Context, field string, value interface{}, reason string) {
	appErr := contextutils.NewAppError(
		contextutils.ErrorCodeInvalidInput,
		contextutils.SeverityWarn,
		"Invalid "+field,
		fmt.Sprintf("Value '%v' is invalid: %s", value, reason),
	)
	_ = c.Error(appErr)
	middleware.HandleAppError(c, appErr)
}

// HandleServiceError reports a failed service call. Every service failure, not-found
// included, is a 500 whose body carries the error string in "detail".
func HandleServiceError(c *gin.Context, err error) {
	_ = c.Error(err)
	middleware.HandleAppError(c, err)
}
