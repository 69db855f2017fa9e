// Package api serves statement evaluation over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-analyzer/internal/config"
	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// Evaluator evaluates the statement document stored at path.
type Evaluator interface {
	Evaluate(ctx context.Context, path string) (*models.Evaluation, error)
}

// ProcessResponse is the JSON response of the upload endpoints.
type ProcessResponse struct {
	Success              bool                   `json:"success"`
	Error                string                 `json:"error,omitempty"`
	ID                   string                 `json:"id,omitempty"`
	Source               string                 `json:"source,omitempty"`
	Transactions         []models.LabeledRecord `json:"transactions"`
	Metrics              *models.Metrics        `json:"metrics,omitempty"`
	LoanEligibilityScore float64                `json:"loan_eligibility_score"`
	Message              string                 `json:"message,omitempty"`
	Count                int                    `json:"count"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	eval    Evaluator
	cfg     config.ServerConfig
	version string
	log     zerolog.Logger
	metrics *Metrics
}

// NewHandler returns a Handler that evaluates uploads with eval.
func NewHandler(eval Evaluator, cfg config.ServerConfig, version string, log zerolog.Logger) *Handler {
	return &Handler{
		eval:    eval,
		cfg:     cfg,
		version: version,
		log:     log,
		metrics: NewMetrics(),
	}
}

// App builds the fiber application with middleware and routes.
func (h *Handler) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "statement-analyzer",
		BodyLimit:             h.cfg.MaxUploadMB << 20,
		DisableStartupMessage: true,
		ErrorHandler:          h.handleError,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(cors.New())
	app.Use(h.logRequests)

	app.Get("/api/health", h.HandleHealth)
	app.Post("/api/process", h.HandleProcess)
	app.Post("/process-pdf", h.HandleProcess)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(h.metrics.Registry, promhttp.HandlerOpts{})))
	return app
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": h.version,
	})
}

// HandleProcess evaluates an uploaded PDF statement sent in the "file" form field.
func (h *Handler) HandleProcess(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return h.fail(c, fiber.StatusBadRequest, "No file uploaded. Use form field 'file'.")
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		return h.fail(c, fiber.StatusBadRequest, "Only PDF files are supported.")
	}

	tmp, err := os.CreateTemp(h.cfg.UploadDir, "statement-*.pdf")
	if err != nil {
		h.log.Error().Err(err).Msg("creating upload file")
		return h.fail(c, fiber.StatusInternalServerError, "Failed to create temp file.")
	}
	tmp.Close()
	defer os.Remove(tmp.Name())

	if err := c.SaveFile(header, tmp.Name()); err != nil {
		h.log.Error().Err(err).Msg("saving upload")
		return h.fail(c, fiber.StatusInternalServerError, "Failed to save uploaded file.")
	}

	start := time.Now()
	ev, err := h.eval.Evaluate(c.UserContext(), tmp.Name())
	h.metrics.Duration.Observe(time.Since(start).Seconds())
	if err != nil {
		h.log.Warn().Err(err).Str("filename", header.Filename).Msg("evaluation failed")
		return h.fail(c, fiber.StatusUnprocessableEntity, fmt.Sprintf("Processing failed: %v", err))
	}
	ev.Source = header.Filename

	txns := ev.Transactions
	if txns == nil {
		txns = []models.LabeledRecord{}
	}
	h.metrics.Processed.WithLabelValues(statusOK).Inc()
	h.metrics.Transactions.Observe(float64(len(txns)))

	return c.JSON(ProcessResponse{
		Success:              true,
		ID:                   ev.ID,
		Source:               ev.Source,
		Transactions:         txns,
		Metrics:              &ev.Metrics,
		LoanEligibilityScore: ev.LoanEligibilityScore,
		Message:              ev.Message,
		Count:                len(txns),
	})
}

func (h *Handler) fail(c *fiber.Ctx, status int, msg string) error {
	h.metrics.Processed.WithLabelValues(statusError).Inc()
	return c.Status(status).JSON(ProcessResponse{
		Success:      false,
		Error:        msg,
		Transactions: []models.LabeledRecord{},
	})
}

// handleError renders errors that escape the handlers, such as an oversized
// body, in the same JSON shape.
func (h *Handler) handleError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}
	return c.Status(status).JSON(ProcessResponse{Success: false, Error: err.Error(), Transactions: []models.LabeledRecord{}})
}

func (h *Handler) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	ev := h.log.Info()
	if err != nil {
		ev = h.log.Warn().Err(err)
	}
	ev.Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", c.Response().StatusCode()).
		Dur("duration", time.Since(start)).
		Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
		Msg("request")
	return err
}

// Serve listens on addr until ctx is canceled, then shuts down gracefully.
func (h *Handler) Serve(ctx context.Context, addr string) error {
	app := h.App()
	errc := make(chan error, 1)
	go func() { errc <- app.Listen(addr) }()

	h.log.Info().Str("addr", addr).Msg("server listening")
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	}
}
