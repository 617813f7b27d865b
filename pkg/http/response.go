package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// SuccessResponse writes data as the raw JSON body with 200.
func SuccessResponse(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

// BlobResponse writes pre-serialized JSON with 200.
func BlobResponse(c echo.Context, body []byte) error {
	return c.JSONBlob(http.StatusOK, body)
}

// ErrorJSON writes {"error": msg} with status.
func ErrorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, ErrorResponse{Error: msg})
}

// BadRequestResponse writes a 400 with validation details.
func BadRequestResponse(c echo.Context, details []ValidationError) error {
	msg := "invalid request"
	if len(details) > 0 && details[0].Message != "" {
		msg = details[0].Message
	}
	return AppErrorResponse(c, BadRequestError(msg).WithDetails(details))
}

// InternalServerErrorResponse writes a 500 with the error text.
func InternalServerErrorResponse(c echo.Context, err error) error {
	return AppErrorResponse(c, NewAppError(err.Error(), http.StatusInternalServerError).WithError(err))
}

// AppErrorResponse writes an AppError with its own status; other errors become 500.
func AppErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return c.JSON(appErr.Status, ErrorResponse{Error: appErr.Message, Details: appErr.Details})
	}
	return InternalServerErrorResponse(c, err)
}

// HTTPErrorHandler renders echo errors (404, 405, ...) in the service's error shape.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, ok := he.Message.(string)
		if !ok {
			msg = http.StatusText(he.Code)
		}
		_ = ErrorJSON(c, he.Code, msg)
		return
	}
	_ = AppErrorResponse(c, err)
}
