package middleware

import (
	"pitwall/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	TraceIDHeader   = "X-Trace-ID"
	TraceIDLocalKey = "traceID"

	maxTraceIDLength = 64
)

// TraceID accepts a caller supplied X-Trace-ID when it looks sane and mints a
// fresh one otherwise. The id is echoed back and carried in the user context
// so repository and controller logs can be correlated.
func (m *Middleware) TraceID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		traceID := c.Get(TraceIDHeader)
		if !validTraceID(traceID) {
			traceID = uuid.NewString()
		}

		c.Set(TraceIDHeader, traceID)
		c.Locals(TraceIDLocalKey, traceID)
		c.SetUserContext(logger.ContextWithTraceID(c.UserContext(), traceID))

		return c.Next()
	}
}

func GetTraceID(c *fiber.Ctx) string {
	traceID, _ := c.Locals(TraceIDLocalKey).(string)
	return traceID
}

// validTraceID allows ids from common tracers (uuids, hex spans, dotted or
// underscored ids) and rejects anything that could break a log line.
func validTraceID(id string) bool {
	if id == "" || len(id) > maxTraceIDLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}
