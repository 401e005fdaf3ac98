// Package web is a local companion server exposing the client state and
// operations over HTTP, with an HTML rendering of the transcript.
package web

import (
	"context"
	"net/http"
	"time"

	"planilhas/app"
	"planilhas/config"
	"planilhas/web/handlers"
	"planilhas/web/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Server struct {
	router  *gin.Engine
	app     *app.App
	logger  *zap.Logger
	config  *config.Config
	limiter *middleware.ClientRateLimiter
}

func NewServer(a *app.App, logger *zap.Logger, config *config.Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))

	server := &Server{
		router: router,
		app:    a,
		logger: logger,
		config: config,
		limiter: middleware.NewClientRateLimiter(middleware.RateLimiterConfig{
			SubmitsPerMinute: config.RateLimitSubmitsPerMin,
			BurstSize:        config.RateLimitBurstSize,
			CleanupInterval:  10 * time.Minute,
		}, logger),
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	stateHandler := handlers.NewStateHandler(s.app, s.logger)
	slotHandler := handlers.NewSlotHandler(s.app, s.logger)
	submitHandler := handlers.NewSubmitHandler(s.app, s.logger)
	transcriptHandler := handlers.NewTranscriptHandler(s.app, s.config.APIBase)

	s.router.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/transcript") })
	s.router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.router.GET("/transcript", transcriptHandler.HTML)
	s.router.GET("/transcript.md", transcriptHandler.Markdown)

	api := s.router.Group("/api")
	api.GET("/state", stateHandler.Get)
	api.PUT("/prefs", stateHandler.UpdatePrefs)
	api.GET("/toasts", stateHandler.Toasts)
	api.DELETE("/toasts/:id", stateHandler.DismissToast)

	api.PUT("/slots/count", slotHandler.SetCount)
	api.PUT("/slots/:n", slotHandler.Update)
	api.DELETE("/slots/:n/file", slotHandler.ClearFile)
	api.GET("/slots/:n/sheets", slotHandler.Sheets)

	limited := api.Group("", middleware.RateLimitMiddleware(s.limiter))
	limited.POST("/submit", submitHandler.Submit)
	limited.POST("/download", submitHandler.Download)
	api.POST("/session", submitHandler.NewSession)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start(ctx context.Context, addr string) error {
	s.logger.Info("Starting web server", zap.String("address", addr))

	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Web server failed to start", zap.Error(err))
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		s.limiter.Stop()
		return err
	}

	s.logger.Info("Shutting down web server")
	s.limiter.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
