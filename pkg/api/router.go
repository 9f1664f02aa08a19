package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/urmzd/yeehome/pkg/api/handlers"
	"github.com/urmzd/yeehome/pkg/device"
	"github.com/urmzd/yeehome/pkg/progress"
)

// Router holds the Gin engine and dependencies
type Router struct {
	engine     *gin.Engine
	controller device.Controller
	hub        *progress.Hub
}

// NewRouter creates a new API router. A nil hub gets an empty one.
func NewRouter(controller device.Controller, hub *progress.Hub, corsOrigins []string) *Router {
	gin.SetMode(gin.ReleaseMode)

	if hub == nil {
		hub = progress.NewHub(0)
	}

	engine := gin.New()
	SetupMiddleware(engine, corsOrigins)

	router := &Router{
		engine:     engine,
		controller: controller,
		hub:        hub,
	}

	router.setupRoutes()

	return router
}

// setupRoutes configures all API routes
func (r *Router) setupRoutes() {
	// Swagger UI
	r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.engine.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})

	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check at root
	healthHandler := handlers.NewHealthHandler(r.controller)
	r.engine.GET("/health", healthHandler.Health)

	wsHandler := handlers.NewWebSocketHandler(r.hub)
	r.engine.GET("/ws/progress", wsHandler.Serve)

	// API v1 routes
	v1 := r.engine.Group("/api/v1")
	{
		v1.GET("/health", healthHandler.Health)

		gatewayHandler := handlers.NewGatewayHandler(r.controller)
		gw := v1.Group("/gateway")
		{
			gw.GET("", gatewayHandler.Status)
			gw.POST("/scan", gatewayHandler.Scan)
			gw.POST("/connect", gatewayHandler.Connect)
		}

		topologyHandler := handlers.NewTopologyHandler(r.controller)
		v1.GET("/topology", topologyHandler.Get)

		controlHandler := handlers.NewControlHandler(r.controller)
		v1.POST("/control", controlHandler.Execute)
		v1.POST("/control/resolve", controlHandler.Resolve)
		v1.POST("/intent/extract", controlHandler.Extract)

		eventsHandler := handlers.NewEventsHandler(r.hub)
		v1.GET("/events", eventsHandler.Stream)
		v1.GET("/events/recent", eventsHandler.Recent)
	}
}

// Handler exposes the engine for embedding in an http.Server.
func (r *Router) Handler() http.Handler {
	return r.engine
}

// Run starts the HTTP server
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}
