// Package server exposes the retrieval engine over HTTP.
package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/caselens/caselens/internal/config"
	"github.com/caselens/caselens/internal/docstore"
	caseerr "github.com/caselens/caselens/internal/errors"
	"github.com/caselens/caselens/internal/ingest"
	"github.com/caselens/caselens/internal/search"
	"github.com/caselens/caselens/pkg/version"
)

// Server wires the HTTP surface over the engine, the ingest pipeline, and
// the document store.
type Server struct {
	cfg      *config.Config
	engine   *search.Engine
	pipeline *ingest.Pipeline
	docs     *docstore.Store
	echo     *echo.Echo
	logger   *slog.Logger
}

// New builds the server and registers all routes.
func New(cfg *config.Config, engine *search.Engine, pipeline *ingest.Pipeline, docs *docstore.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	s := &Server{
		cfg:      cfg,
		engine:   engine,
		pipeline: pipeline,
		docs:     docs,
		echo:     e,
		logger:   logger.With("component", "server"),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/healthz", s.health)
	s.echo.POST("/ingest", s.ingestJudgment)
	s.echo.GET("/search", s.searchChunks)
	s.echo.GET("/cases", s.listCases)
	s.echo.GET("/cases/:title", s.getCase)
}

// Start blocks serving HTTP until Shutdown or a listener error.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.logger.Info("http server listening", "addr", addr)
	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Cases   int    `json:"cases"`
	Chunks  int    `json:"chunks"`
}

func (s *Server) health(c echo.Context) error {
	cases, err := s.docs.Count(c.Request().Context())
	if err != nil {
		return s.fault(c, err)
	}
	return c.JSON(http.StatusOK, healthResponse{
		Status:  "ok",
		Version: version.Version,
		Cases:   cases,
		Chunks:  s.engine.CorpusSize(),
	})
}

// maxUploadBytes caps judgment uploads; the largest judgments run to a few
// megabytes of text.
const maxUploadBytes = 32 << 20

type ingestRequest struct {
	Text string `json:"text"`
}

type ingestResponse struct {
	Title     string        `json:"title"`
	Court     string        `json:"court"`
	Citations int           `json:"citations"`
	Stats     *ingest.Stats `json:"stats"`
}

func (s *Server) ingestJudgment(c echo.Context) error {
	text, err := s.ingestText(c)
	if err != nil {
		return err
	}

	j, stats, err := s.pipeline.IngestText(c.Request().Context(), text)
	if err != nil {
		return s.fault(c, err)
	}
	return c.JSON(http.StatusCreated, ingestResponse{
		Title:     j.Title,
		Court:     j.Court,
		Citations: len(j.Citations),
		Stats:     stats,
	})
}

// ingestText accepts either a multipart "file" upload or a JSON body with a
// text field.
func (s *Server) ingestText(c echo.Context) (string, error) {
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return "", echo.NewHTTPError(http.StatusBadRequest, "could not open uploaded file")
		}
		defer f.Close()

		data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
		if err != nil {
			return "", echo.NewHTTPError(http.StatusBadRequest, "could not read uploaded file")
		}
		if len(data) > maxUploadBytes {
			return "", echo.NewHTTPError(http.StatusRequestEntityTooLarge, "uploaded file exceeds the size limit")
		}
		return string(data), nil
	}

	var req ingestRequest
	if err := c.Bind(&req); err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "body must be a file upload or JSON with a text field")
	}
	return req.Text, nil
}

func (s *Server) searchChunks(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		query = c.QueryParam("query")
	}

	opts := search.Options{}
	if raw := c.QueryParam("top_k"); raw != "" {
		var topK int
		if _, err := fmt.Sscanf(raw, "%d", &topK); err != nil || topK <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "top_k must be a positive integer")
		}
		opts.TopK = topK
	}

	resp, err := s.engine.Search(c.Request().Context(), query, opts)
	if err != nil {
		return s.fault(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) listCases(c echo.Context) error {
	ctx := c.Request().Context()

	if query := c.QueryParam("q"); query != "" {
		summaries, err := s.docs.SearchCases(ctx, query, 20)
		if err != nil {
			return s.fault(c, err)
		}
		return c.JSON(http.StatusOK, summaries)
	}

	titles, err := s.docs.ListTitles(ctx)
	if err != nil {
		return s.fault(c, err)
	}
	return c.JSON(http.StatusOK, map[string][]string{"titles": titles})
}

func (s *Server) getCase(c echo.Context) error {
	j, err := s.docs.Load(c.Request().Context(), c.Param("title"))
	if err != nil {
		return s.fault(c, err)
	}
	return c.JSON(http.StatusOK, j)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// fault maps the structured error taxonomy onto HTTP statuses.
func (s *Server) fault(c echo.Context, err error) error {
	code := caseerr.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case caseerr.ErrCodeInvalidInput, caseerr.ErrCodeDimensionMismatch, caseerr.ErrCodeInvalidWeights:
		status = http.StatusBadRequest
	case caseerr.ErrCodeFileNotFound:
		status = http.StatusNotFound
	case caseerr.ErrCodeEmptyCorpus:
		status = http.StatusConflict
	case caseerr.ErrCodeBackendTimeout, caseerr.ErrCodeBackendUnavailable:
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Path(), "error", err)
	} else {
		s.logger.Warn("request rejected", "path", c.Path(), "status", status, "error", err)
	}
	return c.JSON(status, errorResponse{Error: err.Error(), Code: code})
}
