package api

import (
	"github.com/gin-gonic/gin"

	"github.com/paxiitdevteam/retentionos/config"
	"github.com/paxiitdevteam/retentionos/internal/api/handler"
	"github.com/paxiitdevteam/retentionos/internal/api/middleware"
)

type Router struct {
	authHandler        *handler.AuthHandler
	retentionHandler   *handler.RetentionHandler
	churnHandler       *handler.ChurnHandler
	offerHandler       *handler.OfferHandler
	flowHandler        *handler.FlowHandler
	performanceHandler *handler.PerformanceHandler
	websocketHandler   *handler.WebSocketHandler
	cfg                *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	retentionHandler *handler.RetentionHandler,
	churnHandler *handler.ChurnHandler,
	offerHandler *handler.OfferHandler,
	flowHandler *handler.FlowHandler,
	performanceHandler *handler.PerformanceHandler,
	websocketHandler *handler.WebSocketHandler,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:        authHandler,
		retentionHandler:   retentionHandler,
		churnHandler:       churnHandler,
		offerHandler:       offerHandler,
		flowHandler:        flowHandler,
		performanceHandler: performanceHandler,
		websocketHandler:   websocketHandler,
		cfg:                cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api/v1")
	{
		// WebSocket live feed
		api.GET("/ws", r.websocketHandler.Handle)

		// Dashboard login
		auth := api.Group("/auth")
		{
			auth.POST("/login", r.authHandler.Login)
		}

		// Widget endpoints, server-to-server from the host SaaS
		retention := api.Group("/retention")
		retention.Use(middleware.APIKey(r.cfg.API.Key))
		{
			retention.POST("/start", r.retentionHandler.StartFlow)
			retention.POST("/decision", r.retentionHandler.RecordDecision)
			retention.GET("/churn-risk/:external_id", r.churnHandler.GetChurnRisk)
		}

		// Dashboard endpoints
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			flows := authenticated.Group("/flows")
			{
				flows.POST("", r.flowHandler.Create)
				flows.GET("", r.flowHandler.List)
				flows.GET("/:id", r.flowHandler.Get)
				flows.PUT("/:id", r.flowHandler.Update)
				flows.POST("/:id/validate", r.flowHandler.Validate)
				flows.POST("/:id/activate", r.flowHandler.Activate)
				flows.POST("/:id/deactivate", r.flowHandler.Deactivate)
				flows.POST("/:id/recompute", r.flowHandler.Recompute)
			}

			offers := authenticated.Group("/offers")
			{
				offers.POST("/rank", r.offerHandler.Rank)
				offers.GET("/recommend", r.offerHandler.Recommend)
			}

			performance := authenticated.Group("/performance")
			{
				performance.GET("/offers", r.performanceHandler.ListOffers)
				performance.GET("/messages", r.performanceHandler.ListMessages)
			}
		}
	}

	return engine
}
