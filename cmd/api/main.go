package main

import (
	"context"
	"os"
	"runtime"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/saltybytes-recipefeed/internal/config"
	"github.com/windoze95/saltybytes-recipefeed/internal/executor"
	"github.com/windoze95/saltybytes-recipefeed/internal/logger"
	"github.com/windoze95/saltybytes-recipefeed/internal/recipeapi"
	"github.com/windoze95/saltybytes-recipefeed/internal/router"
	"github.com/windoze95/saltybytes-recipefeed/internal/service"
	"github.com/windoze95/saltybytes-recipefeed/internal/ws"
	"go.uber.org/zap"
)

// init is called before the main function.
func init() {
	// Initialize structured logger (dev mode if GIN_MODE != release)
	isDev := os.Getenv("GIN_MODE") != "release"
	logger.Init(isDev)

	// Configure the runtime
	ConfigureRuntime()
}

// Entry point for the recipe feed.
func main() {
	defer logger.Sync()

	// Load the config
	var cfg *config.Config
	if c, err := config.LoadConfig(); err != nil {
		logger.Get().Fatal("failed to load config", zap.Error(err))
	} else {
		cfg = c
	}

	// Check that all ENV variables are set
	if err := cfg.CheckConfigEnvFields(); err != nil {
		logger.Get().Fatal("missing required config fields", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Network executor shared by both query slots
	pool := executor.NewPool(cfg.EnvVars.NetworkWorkers)
	defer pool.Close()

	// The one recipe service, passed by reference to every consumer
	api := recipeapi.NewClient(cfg.EnvVars.RecipeAPIBaseURL, cfg.EnvVars.RecipeAPIKey, cfg.EnvVars.RecipeAPIRPS)
	recipeService := service.NewRecipeService(cfg, api, pool)

	// Stream relay
	hub := ws.NewHub()
	go hub.Run(ctx)
	streamHandler := ws.NewStreamHandler(hub, recipeService, cfg.EnvVars.AllowedOrigins)
	go streamHandler.Relay(ctx)

	gin.SetMode(gin.ReleaseMode)
	r := router.SetupRouter(cfg, recipeService, streamHandler)

	// Run the server
	logger.Get().Info("starting server",
		zap.String("port", cfg.EnvVars.Port),
		zap.Duration("network_timeout", cfg.NetworkTimeout()),
	)
	if err := r.Run(":" + cfg.EnvVars.Port); err != nil {
		logger.Get().Error("server stopped", zap.Error(err))
	}
}

// ConfigureRuntime sets the number of operating system threads.
func ConfigureRuntime() {
	nuCPU := runtime.NumCPU()
	runtime.GOMAXPROCS(nuCPU)
	logger.Get().Info("runtime configured", zap.Int("cpus", nuCPU))
}
