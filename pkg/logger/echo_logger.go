package logger

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"go.uber.org/zap"
)

// sensitiveHeaders are logged masked.
var sensitiveHeaders = map[string]bool{
	"Authorization":         true,
	"X-Webhook-Secret":      true,
	"X-Whop-Webhook-Secret": true,
	"Webhook-Signature":     true,
}

// NewEchoRequestLogger logs one entry per request through zap. Health
// checks are skipped; 4xx are warnings and 5xx errors.
func NewEchoRequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/health"
		},
		HandleError: true,

		LogLatency:       true,
		LogProtocol:      true,
		LogRemoteIP:      true,
		LogMethod:        true,
		LogURI:           true,
		LogRoutePath:     true,
		LogRequestID:     true,
		LogUserAgent:     true,
		LogStatus:        true,
		LogError:         true,
		LogContentLength: true,
		LogResponseSize:  true,
		LogHeaders:       []string{"Content-Type", "Authorization", "Webhook-Id", "Webhook-Signature", "X-Webhook-Secret"},

		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("request.remote_ip", v.RemoteIP),
				zap.String("request.protocol", v.Protocol),
				zap.String("request.method", v.Method),
				zap.String("request.uri", v.URI),
				zap.String("request.route", v.RoutePath),
				zap.String("request.user_agent", v.UserAgent),
				zap.String("request.request_id", v.RequestID),
				zap.String("request.content_length", v.ContentLength),
				zap.Int("response.status", v.Status),
				zap.Duration("response.latency", v.Latency),
				zap.Int64("response.response_size", v.ResponseSize),
			}

			if len(v.Headers) > 0 {
				headers := make(map[string]string, len(v.Headers))
				for k, values := range v.Headers {
					if len(values) == 0 {
						continue
					}
					if sensitiveHeaders[k] {
						headers[k] = maskValue(values[0])
					} else {
						headers[k] = values[0]
					}
				}
				fields = append(fields, zap.Any("request.headers", headers))
			}

			switch {
			case v.Error != nil:
				fields = append(fields, zap.Error(v.Error))
				if v.Status >= 500 {
					logger.Error("Request failed", fields...)
				} else {
					logger.Warn("Request rejected", fields...)
				}
			case v.Status >= 500:
				logger.Error("Server error", fields...)
			case v.Status >= 400:
				logger.Warn("Client error", fields...)
			default:
				logger.Info("Request completed", fields...)
			}
			return nil
		},
	})
}

func maskValue(val string) string {
	if len(val) > 15 {
		return val[:6] + "..." + val[len(val)-4:]
	}
	return "[MASKED]"
}

// WithEchoLogger installs the zap-backed echo logger and an error handler
// that renders {"status":"error","message":...}.
func WithEchoLogger(e *echo.Echo, logger *zap.Logger) {
	e.Logger = NewEchoZapLogger(logger)

	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		message := http.StatusText(code)

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			message = fmt.Sprint(he.Message)
			if he.Internal != nil {
				err = he.Internal
			}
		}

		if code >= http.StatusInternalServerError {
			logger.Error("HTTP error",
				zap.Error(err),
				zap.Int("status", code),
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path))
		}

		if c.Response().Committed {
			return
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, map[string]string{
				"status":  "error",
				"message": message,
			})
		}
		if err != nil {
			logger.Error("Failed to send error response", zap.Error(err))
		}
	}
}

// EchoZapLogger implements echo.Logger on top of zap.
type EchoZapLogger struct {
	Logger *zap.Logger
}

func NewEchoZapLogger(logger *zap.Logger) *EchoZapLogger {
	return &EchoZapLogger{Logger: logger}
}

func (l *EchoZapLogger) Output() io.Writer {
	return &zapWriter{logger: l.Logger}
}

// Output, level, header and prefix settings are owned by zap.
func (l *EchoZapLogger) SetOutput(io.Writer) {}
func (l *EchoZapLogger) Level() log.Lvl { return log.INFO }
func (l *EchoZapLogger) SetLevel(log.Lvl) {}
func (l *EchoZapLogger) SetHeader(string) {}
func (l *EchoZapLogger) Prefix() string { return "" }
func (l *EchoZapLogger) SetPrefix(string) {}

func (l *EchoZapLogger) Print(i ...interface{}) { l.Logger.Sugar().Info(i...) }
func (l *EchoZapLogger) Printf(format string, i ...interface{}) {
	l.Logger.Sugar().Infof(format, i...)
}
func (l *EchoZapLogger) Printj(j log.JSON) { l.Logger.Info("json_message", zap.Any("json", j)) }

func (l *EchoZapLogger) Debug(i ...interface{}) { l.Logger.Sugar().Debug(i...) }
func (l *EchoZapLogger) Debugf(format string, i ...interface{}) {
	l.Logger.Sugar().Debugf(format, i...)
}
func (l *EchoZapLogger) Debugj(j log.JSON) { l.Logger.Debug("json_message", zap.Any("json", j)) }

func (l *EchoZapLogger) Info(i ...interface{}) { l.Logger.Sugar().Info(i...) }
func (l *EchoZapLogger) Infof(format string, i ...interface{}) {
	l.Logger.Sugar().Infof(format, i...)
}
func (l *EchoZapLogger) Infoj(j log.JSON) { l.Logger.Info("json_message", zap.Any("json", j)) }

func (l *EchoZapLogger) Warn(i ...interface{}) { l.Logger.Sugar().Warn(i...) }
func (l *EchoZapLogger) Warnf(format string, i ...interface{}) {
	l.Logger.Sugar().Warnf(format, i...)
}
func (l *EchoZapLogger) Warnj(j log.JSON) { l.Logger.Warn("json_message", zap.Any("json", j)) }

func (l *EchoZapLogger) Error(i ...interface{}) { l.Logger.Sugar().Error(i...) }
func (l *EchoZapLogger) Errorf(format string, i ...interface{}) {
	l.Logger.Sugar().Errorf(format, i...)
}
func (l *EchoZapLogger) Errorj(j log.JSON) { l.Logger.Error("json_message", zap.Any("json", j)) }

func (l *EchoZapLogger) Fatal(i ...interface{}) { l.Logger.Sugar().Fatal(i...) }
func (l *EchoZapLogger) Fatalf(format string, i ...interface{}) {
	l.Logger.Sugar().Fatalf(format, i...)
}
func (l *EchoZapLogger) Fatalj(j log.JSON) { l.Logger.Fatal("json_message", zap.Any("json", j)) }

func (l *EchoZapLogger) Panic(i ...interface{}) { l.Logger.Sugar().Panic(i...) }
func (l *EchoZapLogger) Panicf(format string, i ...interface{}) {
	l.Logger.Sugar().Panicf(format, i...)
}
func (l *EchoZapLogger) Panicj(j log.JSON) { l.Logger.Panic("json_message", zap.Any("json", j)) }

type zapWriter struct {
	logger *zap.Logger
}

func (w *zapWriter) Write(p []byte) (int, error) {
	w.logger.Info(string(p))
	return len(p), nil
}
