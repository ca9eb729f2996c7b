// Package server exposes the fee ledger over HTTP: collection-desk writes,
// student ledger reads, collection reports, the dashboard summary, demand
// uploads, and the receipt display setting.
//
// Handlers return application errors and let the central fiber error handler
// translate categories into status codes, so the response shape is uniform
// across every route.
package server

import (
	"time"

	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/reports"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/storage"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/pkg/errors"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Config holds HTTP server settings
type Config struct {
	Address      string        `json:"address"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	BodyLimit    int           `json:"body_limit"`
}

// DefaultConfig returns server defaults for a single-campus deployment
func DefaultConfig() *Config {
	return &Config{
		Address:      ":8080",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    8 * 1024 * 1024,
	}
}

// Server owns the fiber app and its route handlers
type Server struct {
	app    *fiber.App
	config *Config
	logger logger.Logger
}

// New builds the HTTP server around the store
func New(config *Config, store *storage.Store, reportConfig *reports.Config) *Server {
	if config == nil {
		config = DefaultConfig()
	}

	app := fiber.New(fiber.Config{
		AppName:      "fee-ledger",
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		BodyLimit:    config.BodyLimit,
		ErrorHandler: errorHandler,
	})
	app.Use(recover.New())

	h := NewHandler(store, reportConfig)
	registerRoutes(app, h)

	return &Server{
		app:    app,
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("server"),
	}
}

func registerRoutes(app *fiber.App, h *Handler) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")
	api.Post("/transactions", h.CreateTransaction)
	api.Get("/students/:id/ledger", h.StudentLedger)
	api.Get("/reports/collections", h.CollectionReport)
	api.Get("/dashboard", h.Dashboard)
	api.Get("/settings/receipt", h.GetReceiptSetting)
	api.Put("/settings/receipt", h.PutReceiptSetting)
	api.Post("/demands/bulk", h.BulkDemands)
}

// Listen serves until the listener fails or Shutdown is called
func (s *Server) Listen() error {
	s.logger.WithField("address", s.config.Address).Info("HTTP server listening")
	return s.app.Listen(s.config.Address)
}

// Shutdown drains in-flight requests and stops the listener
func (s *Server) Shutdown() error {
	s.logger.Info("HTTP server shutting down")
	return s.app.Shutdown()
}

// errorHandler translates application errors into the uniform error body.
// Category decides the status code; unknown errors stay opaque 500s.
func errorHandler(c *fiber.Ctx, err error) error {
	if le, ok := errors.AsLedgerError(err); ok {
		return c.Status(le.HTTPStatus()).JSON(errorResponse{
			Error:      le.Message,
			Code:       string(le.Code),
			Category:   string(le.Category),
			Suggestion: le.Suggestion,
			Context:    le.Context,
		})
	}

	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(errorResponse{Error: fe.Message})
	}

	logger.GetGlobalLogger().WithComponent("server").WithError(err).Error("Unhandled error")
	return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "internal server error"})
}
