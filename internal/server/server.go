// Package server hosts the portfolio page, its read-only content API and
// the streamed network backdrop.
package server

import (
	"context"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Zachkp/netfield/internal/config"
	"github.com/Zachkp/netfield/internal/content"
	"github.com/Zachkp/netfield/internal/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const shutdownTimeout = 5 * time.Second

// Server wires the gin engine to the content store and backdrop sessions.
type Server struct {
	cfg    *config.Config
	store  *content.Store
	log    *zap.SugaredLogger
	engine *gin.Engine
	stats  *tracker

	ctx    context.Context
	cancel context.CancelFunc
}

// New builds the router. store may be nil, in which case content routes
// answer 503.
func New(cfg *config.Config, store *content.Store, log *zap.SugaredLogger) (*Server, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	gin.SetMode(cfg.Server.Mode)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:    cfg,
		store:  store,
		log:    log,
		engine: gin.New(),
		stats:  newTracker(),
		ctx:    ctx,
		cancel: cancel,
	}

	tmpl, err := template.New("").Funcs(template.FuncMap{
		"join": strings.Join,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		cancel()
		return nil, errors.Wrap(err, "parse templates")
	}
	s.engine.SetHTMLTemplate(tmpl)
	s.engine.Use(gin.Recovery(), logger.GinMiddleware(log))

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		cancel()
		return nil, errors.Wrap(err, "static assets")
	}
	s.engine.StaticFS("/static", http.FS(static))

	s.setupRoutes()
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully and closes
// every open backdrop stream.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Server.Port,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infow("listening", logger.FieldAddress, srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.cancel()
		return errors.Wrap(err, "listen")
	case <-ctx.Done():
	}

	s.log.Infow("shutting down", logger.FieldCount, s.stats.active())
	s.cancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return nil
}

// Close stops every streamed backdrop without touching the listener.
func (s *Server) Close() {
	s.cancel()
}

func (s *Server) setupRoutes() {
	r := s.engine

	r.GET("/", s.handleIndex)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.GET("/profile", s.handleProfile)
	api.GET("/contact", s.handleProfile)
	api.GET("/projects", s.contentList("projects", func(ctx context.Context) (any, error) {
		return s.store.Projects(ctx)
	}))
	api.GET("/experience", s.contentList("experience", func(ctx context.Context) (any, error) {
		return s.store.Experience(ctx)
	}))
	api.GET("/education", s.contentList("education", func(ctx context.Context) (any, error) {
		return s.store.Education(ctx)
	}))
	api.GET("/skills", s.contentList("skills", func(ctx context.Context) (any, error) {
		return s.store.Skills(ctx)
	}))
	api.GET("/backdrop/stats", s.handleStats)

	r.GET("/ws/backdrop", s.handleBackdropStream)
	r.GET("/backdrop.png", s.handleBackdropPNG)
}
