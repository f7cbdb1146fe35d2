package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/pfrederiksen/sugarfit-crawler/internal/logger"
	"github.com/pfrederiksen/sugarfit-crawler/internal/session"
)

// Title is shown on the page and used as the calendar name
const Title = "Sugarfitness-crawler 💪"

//go:embed templates/index.html
var templateFS embed.FS

// Fetcher produces a fresh dataset on every call
type Fetcher interface {
	FetchDataset(ctx context.Context) (*session.Dataset, error)
}

// Server is the web front end
type Server struct {
	app *fiber.App
}

// New builds the fiber app and registers every route
func New(fetcher Fetcher) (*Server, error) {
	page, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		AppName:               "sugarfit-crawler",
		DisableStartupMessage: true,
		ErrorHandler:          handleError,
	})
	app.Use(recover.New())
	app.Use(requestLogger())

	SetupRoutes(app, fetcher, page)

	return &Server{app: app}, nil
}

// App exposes the underlying fiber app
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves HTTP on addr until Shutdown is called
func (s *Server) Listen(addr string) error {
	logger.Info("Starting web server", logger.Fields{"addr": addr})
	return s.app.Listen(addr)
}

// Shutdown stops the server, waiting for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// SetupRoutes registers the page, download, API and operational routes
func SetupRoutes(app *fiber.App, fetcher Fetcher, page *template.Template) {
	app.Get("/", handleIndex(fetcher, page))

	download := app.Group("/download")
	download.Get("/extract.xlsx", handleSpreadsheet(fetcher))
	download.Get("/calendar.ics", handleCalendar(fetcher))

	api := app.Group("/api")
	api.Get("/sessions", handleSessions(fetcher))
	api.Get("/options", handleOptions(fetcher))

	app.Get("/metrics", adaptor.HTTPHandler(logger.MetricsHandler()))
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
}

func handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}

	if code >= fiber.StatusInternalServerError {
		logger.Error("Request failed", logger.Fields{
			"method": c.Method(),
			"path":   c.Path(),
			"status": code,
		}, err)
	}

	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		started := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}

		logger.Debug("Handled request", logger.Fields{
			"method":      c.Method(),
			"path":        c.Path(),
			"status":      status,
			"duration_ms": time.Since(started).Milliseconds(),
		})
		return err
	}
}
