package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/saltybytes-recipefeed/internal/executor"
	"github.com/windoze95/saltybytes-recipefeed/internal/logger"
	"github.com/windoze95/saltybytes-recipefeed/internal/models"
	"github.com/windoze95/saltybytes-recipefeed/internal/service"
	"go.uber.org/zap"
)

// RecipeHandler exposes the recipe feed over HTTP.
type RecipeHandler struct {
	Service *service.RecipeService
}

// NewRecipeHandler creates a new RecipeHandler.
func NewRecipeHandler(recipeService *service.RecipeService) *RecipeHandler {
	return &RecipeHandler{Service: recipeService}
}

// SearchRecipes handles POST /v1/recipes/search with {"query": ..., "page": ...}.
// A missing page means the first page.
func (h *RecipeHandler) SearchRecipes(c *gin.Context) {
	var req models.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Page == 0 {
		req.Page = 1
	}

	task, err := h.Service.SubmitSearch(req.Query, req.Page)
	if err != nil {
		logger.FromRequest(c).Debug("rejected search request", zap.String("query", req.Query), zap.Error(err))
		if isBusy(err) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Too many requests in flight, try again"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query is required and page must be at least 1"})
		return
	}

	logger.FromRequest(c).Info("search accepted", zap.String("task_id", task.ID.String()))
	c.JSON(http.StatusAccepted, gin.H{"task_id": task.ID.String()})
}

// GetRecipes handles GET /v1/recipes. A null list means the last search
// failed.
func (h *RecipeHandler) GetRecipes(c *gin.Context) {
	recipes, published := h.Service.Recipes().Value()
	c.JSON(http.StatusOK, gin.H{
		"recipes":   recipes,
		"published": published,
	})
}

// LookupRecipe handles POST /v1/recipes/:recipe_id/lookup.
func (h *RecipeHandler) LookupRecipe(c *gin.Context) {
	recipeID := c.Param("recipe_id")

	task, err := h.Service.SubmitLookup(recipeID)
	if err != nil {
		logger.FromRequest(c).Debug("rejected lookup request", zap.Error(err))
		if isBusy(err) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Too many requests in flight, try again"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe ID"})
		return
	}

	logger.FromRequest(c).Info("lookup accepted",
		zap.String("recipe_id", recipeID),
		zap.String("task_id", task.ID.String()),
	)
	c.JSON(http.StatusAccepted, gin.H{"task_id": task.ID.String()})
}

// GetLookup handles GET /v1/recipes/lookup.
func (h *RecipeHandler) GetLookup(c *gin.Context) {
	recipe, published := h.Service.Recipe().Value()
	timedOut, _ := h.Service.RecipeTimedOut().Value()
	c.JSON(http.StatusOK, gin.H{
		"recipe":    recipe,
		"published": published,
		"timed_out": timedOut,
	})
}

// CancelLookup handles DELETE /v1/recipes/lookup.
func (h *RecipeHandler) CancelLookup(c *gin.Context) {
	logger.FromRequest(c).Info("lookup cancel requested")
	h.Service.CancelLookup()
	c.Status(http.StatusNoContent)
}

// isBusy reports whether a submission was refused by the executor rather than
// by validation.
func isBusy(err error) bool {
	return errors.Is(err, executor.ErrQueueFull) || errors.Is(err, executor.ErrPoolClosed)
}
