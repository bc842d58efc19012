package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler, corsOrigins []string) {
	router.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}))

	api := router.Group("/api")
	{
		api.GET("/health", handler.HealthCheck)
		api.GET("/market/:zip", handler.MarketAverage)

		sessions := api.Group("/sessions")
		{
			sessions.POST("", handler.CreateSession)
			sessions.GET("/:id", handler.GetSession)
			sessions.POST("/:id/start", handler.StartSession)
			sessions.POST("/:id/estimate", handler.Estimate)
			sessions.POST("/:id/reset", handler.ResetSession)
			sessions.GET("/:id/amenities.geojson", handler.AmenitiesGeoJSON)
			sessions.POST("/:id/distance", handler.DistanceToAddress)
			sessions.GET("/:id/history", handler.History)
		}
	}
}
