package middleware

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// RequestLogger writes one structured line per request.  Server errors
// are logged at error level, everything else at info.
func RequestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogRoutePath: true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.Group("request",
					slog.String("id", v.RequestID),
					slog.String("method", v.Method),
					slog.String("uri", v.URI),
					slog.String("route", v.RoutePath),
					slog.String("remote_ip", v.RemoteIP),
				),
				slog.Group("response",
					slog.Int("status", v.Status),
					slog.String("latency", v.Latency.String()),
				),
			}
			if id, ok := UserID(c); ok {
				attrs = append(attrs, slog.Uint64("user_id", id))
			}
			level, msg := slog.LevelInfo, "request completed"
			if v.Status >= 500 {
				level, msg = slog.LevelError, "server error"
				if v.Error != nil {
					attrs = append(attrs, slog.String("err", v.Error.Error()))
				}
			}
			logger.LogAttrs(context.Background(), level, msg, attrs...)
			return nil
		},
	})
}
