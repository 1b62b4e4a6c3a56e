package httpapi

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/roach88/tabard/internal/mirror"
	"github.com/roach88/tabard/internal/resolver"
	"github.com/roach88/tabard/internal/store"
)

const serviceName = "tabard"

// Options wires the server's collaborators. Gateway and Resolver are
// required; a nil Mirror gets a disabled replicator so handlers never
// need a nil check.
type Options struct {
	Gateway         *store.Gateway
	Resolver        *resolver.Resolver
	Mirror          *mirror.Replicator
	RawQueryEnabled bool
	Logger          *slog.Logger
	RequestIDs      RequestIDGenerator
}

// Server owns the fiber app and the per-request pipeline.
type Server struct {
	app        *fiber.App
	gw         *store.Gateway
	res        *resolver.Resolver
	mir        *mirror.Replicator
	rawEnabled bool
	log        *slog.Logger
}

// New builds the app with its middleware chain and route table. Route
// registration order matters twice: /api/query must precede /api/:table
// so "query" never resolves as a table label, and the id segment is
// constrained to integers so non-numeric ids fall out as 404 instead of
// reaching the builder.
func New(opts Options) *Server {
	s := &Server{
		gw:         opts.Gateway,
		res:        opts.Resolver,
		mir:        opts.Mirror,
		rawEnabled: opts.RawQueryEnabled,
		log:        opts.Logger,
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.res == nil {
		s.res = resolver.Default()
	}
	if s.mir == nil {
		s.mir = mirror.New(mirror.Config{Enabled: false})
	}
	gen := opts.RequestIDs
	if gen == nil {
		gen = UUIDv7Generator{}
	}

	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: true,
		UnescapePath:          true,
		ErrorHandler:          s.errorHandler,
	})

	app.Use(requestID(gen))
	app.Use(s.observe)
	app.Use(recover.New())

	app.Get("/", s.handleHealth)
	app.Get("/api/query", s.handleRawQuery)
	app.Get("/api/:table", s.handleList)
	app.Post("/api/:table", s.handleInsert)
	app.Get("/api/:table/:id<int>", s.handleGetByID)
	app.Put("/api/:table/:id<int>", s.handleUpdate)
	app.Delete("/api/:table/:id<int>", s.handleDelete)

	s.app = app
	return s
}

// App exposes the fiber app for in-process testing.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen blocks serving on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// errorHandler shapes everything fiber itself surfaces (panics caught
// by the recover middleware, unmatched routes, body-size limits) into
// the response envelope.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code == fiber.StatusInternalServerError {
		s.log.Error("request failed",
			"method", c.Method(),
			"path", c.Path(),
			"error", err,
			"request_id", c.Locals(requestIDKey),
		)
	}
	return c.Status(code).JSON(fail(err.Error()))
}
