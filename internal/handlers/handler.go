package handlers

import (
	"roombridge/internal/logger"
	"roombridge/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires the HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", h.health)

	auth := router.Group("/auth")
	{
		auth.POST("/sign-in", h.signIn)
	}

	api := router.Group("/api/v1", h.operatorMiddleware)
	{
		bridge := api.Group("/bridge")
		{
			bridge.GET("/status", h.getStatus)
			bridge.GET("/logs", h.getLogs)
			bridge.POST("/pause", h.pauseBridge)
			bridge.POST("/resume", h.resumeBridge)
		}
	}

	// Live status stream (HTTP upgrade) on the same port.
	router.GET("/ws", h.wsConnect)

	return router
}
