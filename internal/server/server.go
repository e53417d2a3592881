package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ragrouter/internal/domain"
)

const traceHeader = "X-Trace-Id"

// QueryHandler answers one query end to end.
type QueryHandler interface {
	Handle(ctx context.Context, queryText, traceID string) domain.Result
}

// Server is the thin HTTP surface over the orchestrator.
type Server struct {
	router     *gin.Engine
	handler    QueryHandler
	classifier domain.Classifier
	log        *log.Logger
}

// New assembles the gin router with the query, classification and health
// routes.
func New(handler QueryHandler, classifier domain.Classifier, logger *log.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), traceMiddleware())

	s := &Server{
		router:     router,
		handler:    handler,
		classifier: classifier,
		log:        logger.With("component", "server"),
	}
	router.POST("/ask", s.ask)
	router.POST("/classify", s.classify)
	router.GET("/healthz", s.health)
	return s
}

// Run blocks serving HTTP on addr.
func (s *Server) Run(addr string) error {
	s.log.Info("http server listening", "addr", addr)
	return s.router.Run(addr)
}

// Router exposes the underlying handler for tests.
func (s *Server) Router() http.Handler { return s.router }

// traceMiddleware adopts the caller's trace ID or mints one, and reflects it
// on the response.
func traceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := strings.TrimSpace(c.GetHeader(traceHeader))
		if traceID == "" {
			traceID = uuid.NewString()
		}
		c.Set("trace_id", traceID)
		c.Header(traceHeader, traceID)
		c.Next()
	}
}

type askRequest struct {
	Question string `json:"question" binding:"required"`
}

func (s *Server) ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question is required"})
		return
	}
	traceID := c.GetString("trace_id")
	result := s.handler.Handle(c.Request.Context(), req.Question, traceID)
	c.JSON(http.StatusOK, result)
}

type classifyRequest struct {
	Text string `json:"text" binding:"required"`
}

func (s *Server) classify(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}
	traceID := c.GetString("trace_id")
	intent, err := s.classifier.Classify(c.Request.Context(), req.Text)
	if err != nil {
		s.log.Warn("classification failed", "trace_id", traceID, "error", err)
		c.JSON(http.StatusOK, gin.H{"intent": domain.IntentError, "error": err.Error(), "trace_id": traceID})
		return
	}
	c.JSON(http.StatusOK, gin.H{"intent": intent, "trace_id": traceID})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
