// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/preprintlab/preprintd/internal/fetch"
	"github.com/preprintlab/preprintd/internal/pipeline"
	"github.com/preprintlab/preprintd/internal/resolve"
	"github.com/preprintlab/preprintd/pkg/types"
)

type submitRequest struct {
	Repository  string `json:"repository" binding:"required"`
	PaperID     string `json:"paper_id" binding:"required"`
	Language    string `json:"language"`
	SummaryType string `json:"summary_type"`
}

type questionRequest struct {
	Question    string `json:"question" binding:"required"`
	Highlighted string `json:"highlighted"`
	Language    string `json:"language"`
}

// POST /api/papers — submit a paper for processing
func (s *Server) submitPaper(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "repository and paper_id are required")
		return
	}

	repo, err := types.ParseRepository(req.Repository)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	summaryType, err := types.ParseSummaryType(req.SummaryType)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	language := defaultLanguage(req.Language)

	result, err := s.papers.Submit(c.Request.Context(), repo, req.PaperID, summaryType, language)
	if err != nil {
		s.writeError(c, err)
		return
	}

	payload := gin.H{
		"source_key":   result.Paper.SourceKey,
		"title":        result.Paper.Title,
		"authors":      result.Paper.Authors,
		"abstract_url": result.Paper.AbstractURL,
		"cached":       result.Cached,
	}
	if result.Cached {
		ok(c, payload)
		return
	}
	created(c, payload)
}

// GET /api/papers/:key/summary — fetch (and generate on miss) a summary
func (s *Server) getSummary(c *gin.Context) {
	s.serveSummary(c, s.papers.Result)
}

// POST /api/papers/:key/summary/regenerate — overwrite the cached summary
func (s *Server) regenerateSummary(c *gin.Context) {
	s.serveSummary(c, s.papers.Regenerate)
}

func (s *Server) serveSummary(c *gin.Context, produce func(ctx context.Context, sourceKey, language string, summaryType types.SummaryType) (*pipeline.SummaryResult, error)) {
	summaryType, err := types.ParseSummaryType(c.Query("type"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	language := defaultLanguage(c.Query("lang"))

	result, err := produce(c.Request.Context(), c.Param("key"), language, summaryType)
	if err != nil {
		s.writeError(c, err)
		return
	}

	ok(c, gin.H{
		"source_key":   result.Paper.SourceKey,
		"title":        result.Paper.Title,
		"language":     result.Summary.Language,
		"summary_type": result.Summary.SummaryType,
		"summary":      result.Summary.SummaryText,
		"status":       result.Summary.Status,
		"cached":       result.Cached,
	})
}

// POST /api/papers/:key/questions — ask a question about a paper
func (s *Server) askQuestion(c *gin.Context) {
	var req questionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "question is required")
		return
	}

	result, err := s.papers.Ask(c.Request.Context(), c.Param("key"), req.Question, req.Highlighted, defaultLanguage(req.Language))
	if err != nil {
		s.writeError(c, err)
		return
	}

	ok(c, gin.H{
		"source_key": result.Paper.SourceKey,
		"question":   result.Answer.Question,
		"answer":     result.Answer.Answer,
		"language":   result.Answer.AnswerLanguage,
		"status":     result.Answer.Status,
		"cached":     result.Cached,
	})
}

// GET /api/papers/:key/export — render the summary as a download
func (s *Server) exportSummary(c *gin.Context) {
	summaryType, err := types.ParseSummaryType(c.Query("type"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	language := defaultLanguage(c.Query("lang"))

	doc, err := s.papers.ExportSummary(c.Request.Context(), c.Param("key"), language, summaryType)
	if err != nil {
		s.writeError(c, err)
		return
	}

	switch format := c.DefaultQuery("format", "yaml"); format {
	case "json":
		c.Header("Content-Disposition", `attachment; filename="summary.json"`)
		c.JSON(http.StatusOK, doc)
	case "yaml":
		data, err := yaml.Marshal(doc)
		if err != nil {
			internalError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="summary.yaml"`)
		c.Data(http.StatusOK, "application/yaml", data)
	default:
		badRequest(c, fmt.Sprintf("unknown export format %q", format))
	}
}

// pdfResponse defers the PDF headers until the first byte of the
// upstream body arrives, so failures before any write can still
// produce an error response.
type pdfResponse struct {
	c        *gin.Context
	filename string
	started  bool
}

func (w *pdfResponse) Write(p []byte) (int, error) {
	if !w.started {
		w.started = true
		w.c.Header("Content-Type", "application/pdf")
		w.c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, w.filename))
		w.c.Status(http.StatusOK)
	}
	return w.c.Writer.Write(p)
}

// GET /api/original/:repository/:paper_id — stream the upstream PDF
func (s *Server) exportOriginal(c *gin.Context) {
	repo, err := types.ParseRepository(c.Param("repository"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	paperID := c.Param("paper_id")

	w := &pdfResponse{c: c, filename: paperID + ".pdf"}
	if err := s.papers.ExportOriginal(c.Request.Context(), repo, paperID, w); err != nil {
		if !w.started {
			notFound(c, err.Error())
			return
		}
		// Headers are already out; log instead of rewriting the
		// response mid-stream.
		s.logger.Warn("original export failed",
			zap.String("repository", string(repo)),
			zap.String("paper_id", paperID),
			zap.Error(err),
		)
	}
}

// GET /api/search — topic search against the arXiv index
func (s *Server) searchTopic(c *gin.Context) {
	topic := strings.TrimSpace(c.Query("q"))
	if topic == "" {
		badRequest(c, "q is required")
		return
	}

	results, err := s.searcher.Search(c.Request.Context(), topic, defaultLanguage(c.Query("lang")))
	if err != nil {
		upstreamError(c, err)
		return
	}
	ok(c, gin.H{"results": results, "count": len(results)})
}

// writeError maps pipeline errors onto HTTP statuses.
func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pipeline.ErrUnknownPaper), errors.Is(err, resolve.ErrNotFound):
		notFound(c, err.Error())
	case errors.Is(err, fetch.ErrDownload):
		upstreamError(c, err)
	default:
		internalError(c, err)
	}
}

func defaultLanguage(lang string) string {
	if strings.TrimSpace(lang) == "" {
		return "en"
	}
	return lang
}
