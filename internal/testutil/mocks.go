package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/windoze95/saltybytes-recipefeed/internal/models"
)

// --- MockRecipeAPI ---

// MockRecipeAPI is a mock implementation of recipeapi.RecipeAPI.
type MockRecipeAPI struct {
	SearchRecipeFunc func(ctx context.Context, query string, page int) ([]models.Recipe, error)
	GetRecipeFunc    func(ctx context.Context, recipeID string) (*models.Recipe, error)

	mu          sync.Mutex
	SearchCalls []SearchCall
	GetCalls    []string
}

// SearchCall records the arguments of one SearchRecipe call.
type SearchCall struct {
	Query string
	Page  int
}

func (m *MockRecipeAPI) SearchRecipe(ctx context.Context, query string, page int) ([]models.Recipe, error) {
	m.mu.Lock()
	m.SearchCalls = append(m.SearchCalls, SearchCall{Query: query, Page: page})
	m.mu.Unlock()
	if m.SearchRecipeFunc != nil {
		return m.SearchRecipeFunc(ctx, query, page)
	}
	return nil, fmt.Errorf("SearchRecipe not configured")
}

func (m *MockRecipeAPI) GetRecipe(ctx context.Context, recipeID string) (*models.Recipe, error) {
	m.mu.Lock()
	m.GetCalls = append(m.GetCalls, recipeID)
	m.mu.Unlock()
	if m.GetRecipeFunc != nil {
		return m.GetRecipeFunc(ctx, recipeID)
	}
	return nil, fmt.Errorf("GetRecipe not configured")
}

// SearchCallCount returns how many times SearchRecipe was called.
func (m *MockRecipeAPI) SearchCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.SearchCalls)
}

// BlockUntilDone returns a GetRecipe func that blocks until the request
// context ends and reports the context error, like an interrupted HTTP call.
func BlockUntilDone() func(ctx context.Context, recipeID string) (*models.Recipe, error) {
	return func(ctx context.Context, recipeID string) (*models.Recipe, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
}
