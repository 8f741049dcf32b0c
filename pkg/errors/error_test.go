package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc/codes"
)

func TestWrap_KeepsCode(t *testing.T) {
	inner := NewAppError(ErrNotFound, "payment not found", nil)
	wrapped := Wrap(fmt.Errorf("lookup: %w", inner), "retry failed")

	var appErr *AppError
	assert.True(t, As(wrapped, &appErr))
	assert.Equal(t, ErrNotFound, appErr.Code())
	assert.Nil(t, Wrap(nil, "nothing"))
}

func TestGetCodeMapping(t *testing.T) {
	status, code := GetCodeMapping(ErrConflict)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, codes.AlreadyExists, code)

	status, code = GetCodeMapping("SOMETHING_ELSE")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, codes.Internal, code)
}

func TestToHTTPError(t *testing.T) {
	t.Run("app error uses its message only", func(t *testing.T) {
		err := NewAppError(ErrInvalidArgument, "invalid payment id", fmt.Errorf("strconv: bad input"))
		he := ToHTTPError(err)
		assert.Equal(t, http.StatusBadRequest, he.Code)
		assert.Equal(t, "invalid payment id", he.Message)
	})

	t.Run("echo errors pass through", func(t *testing.T) {
		he := ToHTTPError(echo.ErrNotFound)
		assert.Equal(t, http.StatusNotFound, he.Code)
	})

	t.Run("unclassified errors are hidden", func(t *testing.T) {
		he := ToHTTPError(fmt.Errorf("pq: connection reset"))
		assert.Equal(t, http.StatusInternalServerError, he.Code)
		assert.Equal(t, "Internal Server Error", he.Message)
	})
}

func TestLogError_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	LogError(logger, nil, "ignored")
	LogError(logger, NewAppError(ErrNotFound, "payment not found", nil), "lookup failed", zap.Int64("payment_id", 7))
	LogError(logger, NewAppError(ErrInternal, "db down", nil), "lookup failed")
	LogError(logger, New("plain"), "lookup failed")

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, ErrNotFound, entries[0].ContextMap()["error_code"])
	assert.Equal(t, int64(7), entries[0].ContextMap()["payment_id"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.NotContains(t, entries[2].ContextMap(), "error_code")
}
