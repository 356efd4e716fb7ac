package recipeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/windoze95/saltybytes-recipefeed/internal/models"
	"golang.org/x/time/rate"
)

const (
	searchPath = "/api/search"
	getPath    = "/api/get"
)

// Client implements RecipeAPI over HTTP. Every request carries the static API
// key as the "key" query parameter. Deadlines come from the caller's context;
// the underlying http.Client has no timeout of its own.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a recipe API client. A non-positive rps disables the
// outbound rate limit.
func NewClient(baseURL, apiKey string, rps int) *Client {
	limit := rate.Inf
	burst := 1
	if rps > 0 {
		limit = rate.Limit(rps)
		burst = rps
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(limit, burst),
	}
}

// SearchRecipe fetches one page of recipes matching query.
func (c *Client) SearchRecipe(ctx context.Context, query string, page int) ([]models.Recipe, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("page", strconv.Itoa(page))

	var resp models.RecipeSearchResponse
	if err := c.get(ctx, searchPath, params, &resp); err != nil {
		return nil, err
	}
	if resp.Recipes == nil {
		resp.Recipes = []models.Recipe{}
	}
	return resp.Recipes, nil
}

// GetRecipe fetches a single recipe by its ID.
func (c *Client) GetRecipe(ctx context.Context, recipeID string) (*models.Recipe, error) {
	params := url.Values{}
	params.Set("rId", recipeID)

	var resp models.RecipeResponse
	if err := c.get(ctx, getPath, params, &resp); err != nil {
		return nil, err
	}
	return resp.Recipe, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &TransportError{Op: path, Err: err}
	}

	params.Set("key", c.apiKey)
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: path, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", path, err)
	}
	return nil
}
