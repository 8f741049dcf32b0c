package errors

import (
	"net/http"

	"go.uber.org/zap"
)

// LogError logs err with its code. Errors whose code maps to a 4xx status
// were caused by the caller and are logged at warn level.
func LogError(logger *zap.Logger, err error, msg string, fields ...zap.Field) {
	if err == nil {
		return
	}

	allFields := append([]zap.Field{zap.Error(err)}, fields...)

	var appErr *AppError
	if !As(err, &appErr) {
		logger.Error(msg, allFields...)
		return
	}

	allFields = append(allFields, zap.String("error_code", appErr.Code()))
	if status := ToHTTPStatus(appErr.Code()); status >= http.StatusBadRequest && status < http.StatusInternalServerError {
		logger.Warn(msg, allFields...)
		return
	}
	logger.Error(msg, allFields...)
}
