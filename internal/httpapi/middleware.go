package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/roach88/tabard/internal/metrics"
)

// HeaderRequestID carries the correlation id on responses, and on
// requests from clients that propagate their own.
const HeaderRequestID = "X-Request-Id"

// requestIDKey is the fiber locals key holding the request id.
const requestIDKey = "requestid"

// requestID stamps every request with a correlation id. A client-sent
// id is kept so the gateway's logs line up with the caller's.
func requestID(gen RequestIDGenerator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderRequestID)
		if id == "" {
			id = gen.Generate()
		}
		c.Locals(requestIDKey, id)
		c.Set(HeaderRequestID, id)
		return c.Next()
	}
}

// observe times each request, writes the access log line, and feeds the
// prometheus collectors. Registered outside the recover middleware so
// panics are observed as the 500s they become. The route label is the
// registered pattern, not the raw path, which keeps metric cardinality
// bounded by the route table.
func (s *Server) observe(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	elapsed := time.Since(start)

	status := c.Response().StatusCode()
	if err != nil {
		// The error handler runs after this middleware returns; report
		// the status it is going to set.
		status = fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}
	}

	route := c.Route().Path
	metrics.RequestsTotal.WithLabelValues(route, c.Method(), strconv.Itoa(status)).Inc()
	metrics.RequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())

	s.log.Info("request",
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"duration", elapsed,
		"request_id", c.Locals(requestIDKey),
	)

	return err
}
