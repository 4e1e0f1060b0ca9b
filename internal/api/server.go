// Package api exposes the menu engine over HTTP.
package api

import (
	"context"
	"io"
	"net/http"
	"time"

	"menuperf/internal/foodcost"
	"menuperf/internal/logger"
	"menuperf/internal/menuengine"
	"menuperf/internal/monitoring"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Reports serves the read path
type Reports interface {
	MenuEngineering(ctx context.Context, restaurantID string) (*menuengine.Report, error)
	FoodCost(ctx context.Context, restaurantID string) (foodcost.Summary, error)
}

// Syncer pulls and reconciles POS sales
type Syncer interface {
	Sync(ctx context.Context, restaurantID, provider string) (*menuengine.SyncResult, error)
	SyncAll(ctx context.Context, restaurantID string) ([]menuengine.Outcome, error)
	SyncExport(ctx context.Context, restaurantID string, r io.Reader, filename string) (*menuengine.SyncResult, error)
}

// Options configures a Server
type Options struct {
	JWTSecret string
	// CORSOrigins lists browser origins allowed to call the API. Empty
	// disables CORS handling.
	CORSOrigins []string
}

// Server is the HTTP front of the engine
type Server struct {
	Router  *gin.Engine
	reports Reports
	syncer  Syncer
	events  *Hub
	monitor *monitoring.Monitor
	log     *logger.Logger
	secret  []byte
}

// NewServer builds the router. events may be nil, in which case the sync
// event feed is not mounted.
func NewServer(reports Reports, syncer Syncer, events *Hub, monitor *monitoring.Monitor, log *logger.Logger, opts Options) *Server {
	if log == nil {
		log = logger.Nop()
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))
	if len(opts.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{"GET", "POST"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
			ExposeHeaders:    []string{requestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	s := &Server{
		Router:  router,
		reports: reports,
		syncer:  syncer,
		events:  events,
		monitor: monitor,
		log:     log,
		secret:  []byte(opts.JWTSecret),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.Router.GET("/health", s.Health)

	v1 := s.Router.Group("/api/v1", s.AuthMiddleware(false))
	{
		// POS integrations
		v1.POST("/integrations/sync", s.SyncAll)
		v1.POST("/integrations/export/upload", s.UploadExport)
		v1.POST("/integrations/:provider/sync", s.SyncProvider)

		// Reports
		v1.GET("/menu-engineering", s.MenuEngineering)
		v1.GET("/food-cost", s.FoodCost)
	}

	// the event feed alone accepts ?token=
	if s.events != nil {
		s.Router.GET("/api/v1/sync/events", s.AuthMiddleware(true), s.events.Serve)
	}
}

// Health reports liveness
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": s.monitor.Uptime().Round(time.Second).String(),
	})
}

const requestIDHeader = "X-Request-ID"

// requestLogger tags every request with an id, echoed in the response, and
// logs it once served.
func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Next()
		log.Debug("http request",
			"request_id", id,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
