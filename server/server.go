// Package server exposes value-set expansion over HTTP: a single expand
// operation plus health and Prometheus metrics endpoints.
package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ontokit/vskit/expand"
	"github.com/ontokit/vskit/registry"
	"github.com/ontokit/vskit/render"
	"github.com/ontokit/vskit/schema"
)

// Server serves expansion requests against one loaded schema document
// and resolver registry. Both are read-only, so handlers share them
// without locking.
type Server struct {
	doc      *schema.Document
	registry *registry.Registry
	options  expand.Options
	logger   *slog.Logger
}

// New creates a server.
func New(doc *schema.Document, reg *registry.Registry, opts expand.Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{doc: doc, registry: reg, options: opts, logger: logger}
}

// Router builds the HTTP routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "enums": len(s.doc.Enums)})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		v1.GET("/enums", s.handleListEnums)
		v1.POST("/expand", s.handleExpand)
	}

	return r
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	return s.Router().Run(addr)
}

// expandRequest is the expand operation's body.
type expandRequest struct {
	// Enums are enum names or glob patterns. Empty means every enum.
	Enums []string `json:"enums"`

	// Template overrides the render template for this request.
	Template string `json:"template"`
}

// valueRecord mirrors render.Record with the key inline.
type valueRecord struct {
	Text        string `json:"text,omitempty"`
	Description string `json:"description,omitempty"`
	Meaning     string `json:"meaning,omitempty"`
}

// expandResponse is the expand operation's result.
type expandResponse struct {
	RunID    string                            `json:"run_id"`
	Expanded map[string]map[string]valueRecord `json:"expanded"`

	// Order carries the renderer's key ordering per enum, since JSON
	// object order is not preserved by consumers.
	Order  map[string][]string `json:"order"`
	Failed map[string]string   `json:"failed,omitempty"`
}

func (s *Server) handleListEnums(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"enums": s.doc.EnumNames()})
}

func (s *Server) handleExpand(c *gin.Context) {
	var req expandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	names, err := expand.MatchNames(s.doc.EnumNames(), req.Enums)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts := s.options
	if req.Template != "" {
		opts.Template = req.Template
	}

	expander := expand.New(s.doc, s.registry, opts)
	report, err := expander.ExpandAll(c.Request.Context(), names)
	if err != nil {
		// Spec-level failure: cyclic definition or dangling reference.
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp := expandResponse{
		RunID:    report.RunID,
		Expanded: make(map[string]map[string]valueRecord, len(report.Expanded)),
		Order:    make(map[string][]string, len(report.Expanded)),
	}
	for _, res := range report.Expanded {
		values := make(map[string]valueRecord, len(res.Records))
		order := make([]string, 0, len(res.Records))
		for _, rec := range res.Records {
			values[rec.Key] = recordToJSON(rec)
			order = append(order, rec.Key)
		}
		resp.Expanded[res.Enum] = values
		resp.Order[res.Enum] = order
	}
	if len(report.Failed) > 0 {
		resp.Failed = make(map[string]string, len(report.Failed))
		for _, f := range report.Failed {
			resp.Failed[f.Enum] = f.Err.Error()
			s.logger.Warn("enum expansion failed",
				slog.String("run_id", report.RunID),
				slog.String("enum", f.Enum),
				slog.String("error", f.Err.Error()))
		}
	}

	c.JSON(http.StatusOK, resp)
}

func recordToJSON(rec render.Record) valueRecord {
	return valueRecord{
		Text:        rec.Text,
		Description: rec.Description,
		Meaning:     rec.Meaning,
	}
}
