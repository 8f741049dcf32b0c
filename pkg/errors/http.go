package errors

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func ToHTTPStatus(code string) int {
	httpStatus, _ := GetCodeMapping(code)
	return httpStatus
}

// ToHTTPError converts err into an echo error. Internal details of
// unclassified errors are not exposed.
func ToHTTPError(err error) *echo.HTTPError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if As(err, &appErr) {
		return echo.NewHTTPError(ToHTTPStatus(appErr.Code()), appErr.Message()).SetInternal(err)
	}

	var echoErr *echo.HTTPError
	if As(err, &echoErr) {
		return echoErr
	}

	return echo.NewHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)).SetInternal(err)
}
