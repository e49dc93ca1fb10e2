package api

import (
	"errors"
	"mower-core/internal/scheduler"
	"net/http"

	"github.com/labstack/echo/v4"
)

// SuccessResponse standard success body
func SuccessResponse(message string, data interface{}) map[string]interface{} {
	response := map[string]interface{}{
		"status":  "success",
		"message": message,
	}
	if data != nil {
		response["data"] = data
	}
	return response
}

// ErrorResponse standard error body
func ErrorResponse(message string) map[string]interface{} {
	return map[string]interface{}{
		"status":  "error",
		"message": message,
	}
}

func fail(c echo.Context, code int, message string) error {
	return c.JSON(code, ErrorResponse(message))
}

// loopError maps a failed loop hand-off to a response.
func loopError(c echo.Context, err error) error {
	if errors.Is(err, scheduler.ErrLoopStopped) {
		return fail(c, http.StatusServiceUnavailable, err.Error())
	}
	return fail(c, http.StatusInternalServerError, err.Error())
}
