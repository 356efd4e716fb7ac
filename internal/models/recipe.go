package models

// Recipe is a single recipe as returned by the recipe API.
type Recipe struct {
	RecipeID    string   `json:"recipe_id"`
	Title       string   `json:"title"`
	Publisher   string   `json:"publisher"`
	Ingredients []string `json:"ingredients,omitempty"`
	ImageURL    string   `json:"image_url"`
	SocialRank  float64  `json:"social_rank"`
}

// RecipeSearchResponse is the body of a successful search call.
type RecipeSearchResponse struct {
	Count   int      `json:"count"`
	Recipes []Recipe `json:"recipes"`
}

// RecipeResponse is the body of a successful lookup call.
type RecipeResponse struct {
	Recipe *Recipe `json:"recipe"`
}

// SearchRequest is a paged keyword search. Pages start at 1.
type SearchRequest struct {
	Query string `json:"query" validate:"required"`
	Page  int    `json:"page" validate:"gte=1"`
}

// LookupRequest fetches a single recipe by its ID.
type LookupRequest struct {
	ID string `json:"id" validate:"required"`
}
