// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the pipeline over an HTTP JSON API.
package server

import (
	"context"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/preprintlab/preprintd/internal/pipeline"
	"github.com/preprintlab/preprintd/pkg/types"
)

// PaperService is the pipeline surface the HTTP handlers consume.
// *pipeline.Pipeline satisfies it.
type PaperService interface {
	Submit(ctx context.Context, repo types.Repository, paperID string, summaryType types.SummaryType, language string) (*pipeline.SubmitResult, error)
	Result(ctx context.Context, sourceKey, language string, summaryType types.SummaryType) (*pipeline.SummaryResult, error)
	Regenerate(ctx context.Context, sourceKey, language string, summaryType types.SummaryType) (*pipeline.SummaryResult, error)
	Ask(ctx context.Context, sourceKey, question, highlighted, language string) (*pipeline.AnswerResult, error)
	ExportSummary(ctx context.Context, sourceKey, language string, summaryType types.SummaryType) (*types.ExportDocument, error)
	ExportOriginal(ctx context.Context, repo types.Repository, paperID string, w io.Writer) error
}

// Searcher runs the topic search. *search.Client satisfies it.
type Searcher interface {
	Search(ctx context.Context, topic, language string) ([]types.SearchResult, error)
}

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	papers   PaperService
	searcher Searcher
	logger   *zap.Logger
	cfg      types.ServerConfig
}

// New builds a server. logger must not be nil; pass zap.NewNop() to
// silence request logging.
func New(papers PaperService, searcher Searcher, logger *zap.Logger, cfg types.ServerConfig) *Server {
	return &Server{
		papers:   papers,
		searcher: searcher,
		logger:   logger,
		cfg:      cfg,
	}
}

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.cfg.Addr }

// Router assembles the gin engine with all API routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	api := router.Group("/api")
	{
		api.POST("/papers", s.submitPaper)
		api.GET("/papers/:key/summary", s.getSummary)
		api.POST("/papers/:key/summary/regenerate", s.regenerateSummary)
		api.POST("/papers/:key/questions", s.askQuestion)
		api.GET("/papers/:key/export", s.exportSummary)
		api.GET("/original/:repository/:paper_id", s.exportOriginal)
		api.GET("/search", s.searchTopic)
	}
	return router
}

// requestLogger logs one structured line per request.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}
