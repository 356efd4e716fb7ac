package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/windoze95/saltybytes-recipefeed/internal/config"
	"github.com/windoze95/saltybytes-recipefeed/internal/handlers"
	"github.com/windoze95/saltybytes-recipefeed/internal/logger"
	"github.com/windoze95/saltybytes-recipefeed/internal/middleware"
	"github.com/windoze95/saltybytes-recipefeed/internal/service"
	"github.com/windoze95/saltybytes-recipefeed/internal/ws"
)

// SetupRouter sets up the Gin router.
func SetupRouter(cfg *config.Config, recipeService *service.RecipeService, streamHandler *ws.StreamHandler) *gin.Engine {
	// Create default Gin router
	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	if len(cfg.EnvVars.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.EnvVars.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	r.Use(cors.New(corsConfig))

	// Add request ID middleware for request correlation
	r.Use(logger.RequestIDMiddleware())

	// Ping route for testing
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	recipeHandler := handlers.NewRecipeHandler(recipeService)

	// Per-IP limit on query submissions
	submitLimiter := middleware.RateLimitByIP(cfg.EnvVars.SubmitRPS, 10*time.Minute)

	api := r.Group("/v1")
	{
		// Search slot
		api.POST("/recipes/search", submitLimiter, recipeHandler.SearchRecipes)
		api.GET("/recipes", recipeHandler.GetRecipes)

		// Lookup slot
		api.POST("/recipes/:recipe_id/lookup", submitLimiter, recipeHandler.LookupRecipe)
		api.GET("/recipes/lookup", recipeHandler.GetLookup)
		api.DELETE("/recipes/lookup", recipeHandler.CancelLookup)

		// Stream updates over WebSocket
		api.GET("/ws/streams", streamHandler.HandleStreams)
	}

	return r
}
