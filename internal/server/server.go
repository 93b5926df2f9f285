package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/bill-scanner/internal/common"
	"github.com/joseph-ayodele/bill-scanner/internal/pipeline"
	"github.com/joseph-ayodele/bill-scanner/internal/repository"
	"github.com/joseph-ayodele/bill-scanner/internal/sheet"
)

const requestIDHeader = "X-Request-ID"

// Checker reports whether a backing dependency is reachable.
type Checker interface {
	Check(ctx context.Context) error
}

// Config holds HTTP-layer limits.
type Config struct {
	MaxUploadBytes int64 // 0 = no limit
	JobsPageLimit  int
	PromptOverride string // pre-fills the prompt editor on the form
}

// Server exposes the bill pipeline over HTTP.
type Server struct {
	cfg    Config
	proc   *pipeline.Processor
	store  *sheet.Store
	jobs   repository.ExtractJobRepository
	health Checker
	logger *slog.Logger
}

func New(cfg Config, proc *pipeline.Processor, store *sheet.Store, jobs repository.ExtractJobRepository, health Checker, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.JobsPageLimit <= 0 {
		cfg.JobsPageLimit = 200
	}
	return &Server{cfg: cfg, proc: proc, store: store, jobs: jobs, health: health, logger: logger}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestID(), s.accessLog())
	if s.cfg.MaxUploadBytes > 0 {
		r.MaxMultipartMemory = s.cfg.MaxUploadBytes
	}

	r.GET("/", s.handleIndex)
	r.GET("/healthz", s.handleHealthz)

	api := r.Group("/api")
	api.POST("/text", s.handleText)
	api.POST("/bills", s.handleBill)
	api.GET("/export", s.handleExport)
	api.GET("/jobs", s.handleListJobs)
	api.GET("/jobs/:id", s.handleGetJob)
	return r
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(common.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("http.request",
			"req_id", common.RequestIDFromContext(c.Request.Context()),
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}
}

func (s *Server) handleHealthz(c *gin.Context) {
	if s.health != nil {
		if err := s.health.Check(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError maps err onto an HTTP status and a JSON body.
func (s *Server) writeError(c *gin.Context, err error) {
	code := common.CodeOf(err)
	status := common.HTTPStatus(code)

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		status = http.StatusRequestEntityTooLarge
	}

	reqID := common.RequestIDFromContext(c.Request.Context())
	if status >= http.StatusInternalServerError {
		s.logger.Error("http.error", "req_id", reqID, "status", status, "err", err)
	} else {
		s.logger.Warn("http.error", "req_id", reqID, "status", status, "err", err)
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: err.Error(), Code: code.String(), RequestID: reqID})
}
