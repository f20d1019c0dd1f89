package server

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	glog "github.com/gin-contrib/slog"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kode4food/airdraw/internal/catalog"
	"github.com/kode4food/airdraw/internal/config"
	"github.com/kode4food/airdraw/internal/metrics"
	"github.com/kode4food/airdraw/internal/operator"
	"github.com/kode4food/airdraw/internal/store"
	"github.com/kode4food/airdraw/pkg/api"
)

// Server implements the HTTP API server
type Server struct {
	config     *config.Config
	catalog    *catalog.Cache
	describers *operator.Describers
	store      store.Store
	metrics    *metrics.Metrics
}

// RequestIDHeader carries the id assigned to each request
const RequestIDHeader = "X-Request-ID"

const wildcardOrigin = "*"

// NewServer creates a new HTTP API server
func NewServer(
	cfg *config.Config, cache *catalog.Cache, desc *operator.Describers,
	st store.Store, m *metrics.Metrics,
) *Server {
	return &Server{
		config:     cfg,
		catalog:    cache,
		describers: desc,
		store:      st,
		metrics:    m,
	}
}

// SetupRoutes configures and returns the HTTP router with all API endpoints
func (s *Server) SetupRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestID)
	router.Use(glog.SetLogger(
		glog.WithLogger(func(c *gin.Context, l *slog.Logger) *slog.Logger {
			return slog.Default().With(
				slog.String("request_id", c.GetString(RequestIDHeader)),
			)
		}),
	))
	router.Use(s.recordMetrics)
	router.Use(s.cors)

	// Health check
	router.GET("/health", s.handleHealth)
	if s.metrics != nil {
		router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	// Operator endpoints
	ops := router.Group("/operators")
	{
		ops.GET("/all", s.getAllOperators)
		ops.GET("/status", s.getOperatorStatus)
		ops.GET("/params/:module/:operator", s.getOperatorParams)
		ops.POST("/refresh", s.refreshOperators)
	}

	// DAG endpoints
	dags := router.Group("/dags")
	{
		dags.POST("/save", s.saveDAG)
		dags.GET("/:dagID", s.getDAG)
	}

	return router
}

func (s *Server) cors(c *gin.Context) {
	origin := c.GetHeader("Origin")
	if origin != "" && s.allowOrigin(origin) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Add("Vary", "Origin")
		h.Set(
			"Access-Control-Allow-Methods",
			"GET, POST, PUT, DELETE, OPTIONS",
		)
		if req := c.GetHeader("Access-Control-Request-Headers"); req != "" {
			h.Set("Access-Control-Allow-Headers", req)
		} else {
			h.Set(
				"Access-Control-Allow-Headers",
				"Content-Type, Authorization, "+RequestIDHeader,
			)
		}
	}

	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusOK)
		return
	}

	c.Next()
}

func (s *Server) allowOrigin(origin string) bool {
	return slices.Contains(s.config.CORSOrigins, wildcardOrigin) ||
		slices.Contains(s.config.CORSOrigins, origin)
}

func (s *Server) recordMetrics(c *gin.Context) {
	start := time.Now()
	c.Next()

	path := c.FullPath()
	if path == "" {
		path = "unmatched"
	}
	s.metrics.RecordHTTPRequest(
		c.Request.Method, path, c.Writer.Status(), time.Since(start),
	)
}

func requestID(c *gin.Context) {
	id := c.GetHeader(RequestIDHeader)
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	c.Set(RequestIDHeader, id)
	c.Header(RequestIDHeader, id)
	c.Next()
}

func errorJSON(c *gin.Context, status int, msg string) {
	c.JSON(status, api.ErrorResponse{
		Error:  msg,
		Status: status,
	})
}
