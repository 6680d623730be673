package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
)

// HeaderRequestID - заголовок с идентификатором запроса
const HeaderRequestID = "X-Request-ID"

var sensitiveKeys = map[string]struct{}{
	"password": {}, "pwd": {}, "token": {}, "jwttoken": {},
	"authorization": {}, "key": {}, "code": {},
}

// RequestID - middleware, проставляющий X-Request-ID
func RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header: HeaderRequestID,
	})
}

// Logger - access log на zap; уровень зависит от статуса ответа
func Logger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		fields := []zap.Field{
			zap.String("rid", c.GetRespHeader(HeaderRequestID)),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.IP()),
			zap.Any("query", maskQuery(c.Queries())),
			zap.Int("size", len(c.Response().Body())),
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			logger.Error("HTTP", fields...)
		case status >= fiber.StatusBadRequest:
			logger.Warn("HTTP", fields...)
		default:
			logger.Info("HTTP", fields...)
		}
		return err
	}
}

func maskQuery(q map[string]string) map[string]string {
	out := make(map[string]string, len(q))
	for k, v := range q {
		if _, ok := sensitiveKeys[strings.ToLower(k)]; ok {
			out[k] = "****"
			continue
		}
		out[k] = v
	}
	return out
}
