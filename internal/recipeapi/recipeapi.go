package recipeapi

import (
	"context"

	"github.com/windoze95/saltybytes-recipefeed/internal/models"
)

// RecipeAPI is the remote recipe search service.
type RecipeAPI interface {
	SearchRecipe(ctx context.Context, query string, page int) ([]models.Recipe, error)
	GetRecipe(ctx context.Context, recipeID string) (*models.Recipe, error)
}
