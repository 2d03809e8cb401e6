package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"youtube-scout/internal/api/errors"
)

// ErrorHandler recovers from panics and renders every error as a structured
// JSON APIError, so clients always get a status rather than a dropped
// connection.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		requestID := c.GetString("request_id")

		var apiErr *errors.APIError

		switch err := recovered.(type) {
		case *errors.APIError:
			apiErr = err
			apiErr.RequestID = requestID
		case error:
			logger.Error("internal server error",
				zap.Error(err),
				zap.String("request_id", requestID),
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
			)
			apiErr = &errors.APIError{
				Kind:      errors.KindInternal,
				Message:   "internal server error",
				RequestID: requestID,
			}
		default:
			logger.Error("unknown panic",
				zap.Any("recovered", recovered),
				zap.String("request_id", requestID),
			)
			apiErr = &errors.APIError{
				Kind:      errors.KindInternal,
				Message:   "internal server error",
				RequestID: requestID,
			}
		}

		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(apiErr.HTTPStatus(), apiErr)
	})
}

// HandleError renders a handler error through the APIError mapping. Non-API
// errors panic so the recovery middleware deals with them.
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	if apiErr, ok := err.(*errors.APIError); ok {
		apiErr.RequestID = c.GetString("request_id")
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(apiErr.HTTPStatus(), apiErr)
		return
	}

	panic(err)
}
