package testutil

import (
	"github.com/windoze95/saltybytes-recipefeed/internal/config"
	"github.com/windoze95/saltybytes-recipefeed/internal/models"
)

// TestConfig returns a config with the given request timeout in milliseconds.
func TestConfig(timeoutMs int) *config.Config {
	return &config.Config{EnvVars: config.EnvVars{
		Port:             "8080",
		RecipeAPIBaseURL: "http://localhost",
		RecipeAPIKey:     "test-key",
		NetworkTimeoutMs: timeoutMs,
		NetworkWorkers:   3,
	}}
}

// TestRecipeA, TestRecipeB and TestRecipeC are distinct search results.
func TestRecipeA() models.Recipe {
	return models.Recipe{
		RecipeID:   "35382",
		Title:      "Jalapeno Popper Grilled Cheese Sandwich",
		Publisher:  "Closet Cooking",
		ImageURL:   "https://example.com/jalapeno.jpg",
		SocialRank: 100,
	}
}

func TestRecipeB() models.Recipe {
	return models.Recipe{
		RecipeID:   "47746",
		Title:      "Best Pizza Dough Ever",
		Publisher:  "101 Cookbooks",
		ImageURL:   "https://example.com/pizza.jpg",
		SocialRank: 99.9,
	}
}

func TestRecipeC() models.Recipe {
	return models.Recipe{
		RecipeID:   "54454",
		Title:      "Pasta Carbonara",
		Publisher:  "The Pioneer Woman",
		ImageURL:   "https://example.com/carbonara.jpg",
		SocialRank: 98.2,
	}
}

// TestRecipeDetail is a fully populated lookup result.
func TestRecipeDetail() *models.Recipe {
	r := TestRecipeC()
	r.RecipeID = "42"
	r.Ingredients = []string{"1 lb spaghetti", "4 eggs", "1 cup parmesan", "8 slices bacon"}
	return &r
}
