// Package server exposes the extraction pipeline over HTTP, plus an optional gRPC
// health endpoint mirroring the startup capability flags.
package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
	"github.com/joseph-ayodele/invoice-extractor/internal/pipeline"
	"github.com/joseph-ayodele/invoice-extractor/internal/probe"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html.tmpl"))

// Processor is satisfied by *pipeline.Processor.
type Processor interface {
	Process(ctx context.Context, doc pipeline.Document) (entity.ExtractionResponse, error)
}

type Options struct {
	Config    common.ServerConfig
	APIKey    string
	Model     string
	Caps      *probe.Capabilities
	Processor Processor
	Logger    *slog.Logger
}

type Server struct {
	cfg    common.ServerConfig
	apiKey string
	model  string
	caps   *probe.Capabilities
	proc   Processor
	logger *slog.Logger
	engine *gin.Engine
}

func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Caps == nil {
		opts.Caps = &probe.Capabilities{}
	}
	s := &Server{
		cfg:    opts.Config,
		apiKey: opts.APIKey,
		model:  opts.Model,
		caps:   opts.Caps,
		proc:   opts.Processor,
		logger: opts.Logger,
	}
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler with all middleware applied.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.CustomRecovery(s.recover))
	r.Use(RequestID())
	r.Use(AccessLog(s.logger))
	r.Use(cors.New(corsConfig(s.cfg.CORSOrigins)))

	r.GET("/", s.index)
	r.GET("/health", s.health)

	v1 := r.Group("/api/v1")
	v1.POST("/extract/invoice", RequireAPIKey(s.apiKey), s.extractInvoice)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, entity.ErrorResponse{Detail: "Not Found"})
	})
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Accept", "Content-Type", HeaderAPIKey, HeaderRequestID},
		ExposeHeaders: []string{HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}

func (s *Server) recover(c *gin.Context, rec any) {
	common.LoggerFromContext(c.Request.Context(), s.logger).Error("http.panic", "panic", rec, "path", c.Request.URL.Path)
	writeError(c, common.InternalErrorf(nil, "Processing error: %v", rec))
}

// Run serves HTTP (and gRPC health when configured) until ctx is cancelled, then
// shuts both down within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	httpSrv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 2)

	go func() {
		s.logger.Info("http serving", "addr", s.cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var grpcHealth *GRPCHealth
	if s.cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", s.cfg.GRPCAddr)
		if err != nil {
			_ = httpSrv.Close()
			return common.WrapError(err, "grpc listen")
		}
		grpcHealth = NewGRPCHealth(s.caps)
		go func() {
			s.logger.Info("grpc health serving", "addr", s.cfg.GRPCAddr)
			if err := grpcHealth.Serve(lis); err != nil {
				errCh <- err
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		s.logger.Info("shutting down...")
	case runErr = <-errCh:
		s.logger.Error("server failed", "error", runErr)
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if grpcHealth != nil {
		grpcHealth.Stop()
	}
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("http shutdown", "error", err)
	}
	return runErr
}
