// Package server exposes the validator over HTTP
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ppiankov/genuinity/internal/metrics"
	"github.com/ppiankov/genuinity/internal/model"
	"github.com/ppiankov/genuinity/internal/refdata"
	"github.com/ppiankov/genuinity/internal/score"
	"github.com/ppiankov/genuinity/internal/worker"
	"github.com/rs/zerolog/log"
)

// Backend is what the HTTP API needs from the pipeline
type Backend interface {
	ValidatePost(ctx context.Context, post model.PostRecord) (*model.Report, error)
	CategoryFor(company string) (string, bool)
	Stats() refdata.Stats
}

// ValidateRequest is the body of POST /api/validate
type ValidateRequest struct {
	PostText        string  `json:"post_text"`
	Company         string  `json:"company" binding:"required"`
	Date            string  `json:"date" binding:"required"`
	CompanyCategory string  `json:"company_category,omitempty"` // Resolved from the category map when empty
	AdvisorName     *string `json:"advisor_name"`
}

// Server is the HTTP API
type Server struct {
	backend Backend
	router  *gin.Engine
	limiter *worker.Limiter // per client IP, nil when unlimited
}

// Option configures a Server
type Option func(*Server)

// WithClientLimit throttles POST /api/validate per client IP
func WithClientLimit(l *worker.Limiter) Option {
	return func(s *Server) {
		s.limiter = l
	}
}

// New builds the router. metricsHandler may be nil to disable /metrics.
func New(backend Backend, metricsHandler http.Handler, opts ...Option) *Server {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	s := &Server{backend: backend, router: r}
	for _, opt := range opts {
		opt(s)
	}

	api := r.Group("/api")
	{
		api.GET("/health", s.health)
		api.POST("/validate", s.throttle(), s.validate)
		api.GET("/companies/:company/category", s.category)
	}

	if metricsHandler != nil {
		r.GET("/metrics", gin.WrapH(metricsHandler))
	}

	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Info().Msg("Shutting down HTTP API")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) throttle() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter != nil && !s.limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
				"kind":  "rate_limited",
			})
			return
		}
		c.Next()
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"stats":  s.backend.Stats(),
	})
}

func (s *Server) validate(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "invalid_input"})
		return
	}

	date, err := score.ParseRequestDate(req.Date)
	if err != nil {
		writeError(c, err)
		return
	}

	report, err := s.backend.ValidatePost(c.Request.Context(), model.PostRecord{
		Text:            req.PostText,
		Company:         req.Company,
		Date:            date,
		CompanyCategory: req.CompanyCategory,
		AdvisorName:     req.AdvisorName,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (s *Server) category(c *gin.Context) {
	company := c.Param("company")

	category, ok := s.backend.CategoryFor(company)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown company", "company": company})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"company":          company,
		"company_category": category,
	})
}

// StatusFor maps an error kind onto an HTTP status
func StatusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrModelInference):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Validation failed")
	}
	c.JSON(status, gin.H{
		"error": err.Error(),
		"kind":  metrics.ErrorKind(err),
	})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("HTTP request")
	}
}
