// Package server wires the HTTP surface of the document portal:
// routing, session verification, rate limiting and the translation of
// core errors into JSON responses.
package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appconfig "github.com/ministryofjustice/cica-review-case-documents-sub001/config"
	"github.com/ministryofjustice/cica-review-case-documents-sub001/internal/apperr"
	"github.com/ministryofjustice/cica-review-case-documents-sub001/internal/document"
	"github.com/ministryofjustice/cica-review-case-documents-sub001/internal/search"
)

// Run builds the full server from configuration and serves until the
// listener fails. addr overrides the configured listen address when
// non-empty.
func Run(cfg *appconfig.Config, addr string) error {
	searchLogger := log.New(log.Writer(), "[SEARCH] ", log.LstdFlags)
	client, err := search.NewClient(cfg.Search, searchLogger)
	if err != nil {
		// Construction-time configuration failure: halt startup.
		return err
	}

	e := New(cfg, client)

	if addr == "" {
		addr = cfg.General.Listen
	}
	if addr == "" {
		addr = ":8080"
	}
	log.Printf("listening on %s", addr)
	return e.Start(addr)
}

// New assembles the echo instance against an already-constructed query
// layer. Split from Run so tests can inject a fake index.
func New(cfg *appconfig.Config, client *search.Client) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = errorHandler(baseLogger)

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Cookie", "Authorization"},
		AllowCredentials: true,
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	if cfg.Telemetry.Enabled {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}

	metadata := &document.MetadataService{Search: client, Logger: baseLogger}
	chunks := &document.ChunkService{Search: client, Logger: baseLogger}

	api := e.Group("/api")
	api.Use(SessionMiddleware([]byte(cfg.Server.JWTSecret)))
	api.Use(RateLimitMiddleware(cfg.Server.RateLimit))

	dh := &DocumentsHandler{Metadata: metadata, Chunks: chunks, DefaultPerPage: cfg.Search.ItemsPerPage}
	dh.Register(api.Group("/cases"))

	return e
}

// errorHandler renders every failure as {"error": msg} with the status
// the error carries. Core errors keep their taxonomy status; anything
// unrecognized is a 500.
func errorHandler(logger *log.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()

		var ae *apperr.Error
		var he *echo.HTTPError
		switch {
		case errors.As(err, &ae):
			code = ae.Status
			msg = ae.Message
		case errors.As(err, &he):
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}

		req := c.Request()
		logger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]any{"error": msg})
		}
	}
}
