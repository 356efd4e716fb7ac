package recipeapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSearchRecipe_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/search" {
			t.Errorf("path = %q, want /api/search", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("key") != "test-key" || q.Get("q") != "pasta" || q.Get("page") != "2" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"count":2,"recipes":[{"recipe_id":"1","title":"Carbonara"},{"recipe_id":"2","title":"Puttanesca"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "test-key", 0)
	recipes, err := c.SearchRecipe(context.Background(), "pasta", 2)
	if err != nil {
		t.Fatalf("SearchRecipe() error: %v", err)
	}
	if len(recipes) != 2 {
		t.Fatalf("len(recipes) = %d, want 2", len(recipes))
	}
	if recipes[0].Title != "Carbonara" {
		t.Errorf("recipes[0].Title = %q, want Carbonara", recipes[0].Title)
	}
}

func TestSearchRecipe_EmptyPageIsNotNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"count":0}`))
	}))
	defer srv.Close()

	recipes, err := NewClient(srv.URL, "k", 0).SearchRecipe(context.Background(), "nothing", 1)
	if err != nil {
		t.Fatalf("SearchRecipe() error: %v", err)
	}
	if recipes == nil {
		t.Error("an empty page should be a non-nil empty slice")
	}
}

func TestGetRecipe_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/get" {
			t.Errorf("path = %q, want /api/get", r.URL.Path)
		}
		if r.URL.Query().Get("rId") != "42" {
			t.Errorf("rId = %q, want 42", r.URL.Query().Get("rId"))
		}
		w.Write([]byte(`{"recipe":{"recipe_id":"42","title":"Lasagna","ingredients":["pasta","ragu"]}}`))
	}))
	defer srv.Close()

	recipe, err := NewClient(srv.URL, "k", 0).GetRecipe(context.Background(), "42")
	if err != nil {
		t.Fatalf("GetRecipe() error: %v", err)
	}
	if recipe == nil || recipe.Title != "Lasagna" {
		t.Fatalf("recipe = %+v, want Lasagna", recipe)
	}
	if len(recipe.Ingredients) != 2 {
		t.Errorf("len(Ingredients) = %d, want 2", len(recipe.Ingredients))
	}
}

func TestGetRecipe_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"recipe not found"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "k", 0).GetRecipe(context.Background(), "42")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", apiErr.StatusCode)
	}
	if apiErr.Body != `{"error":"recipe not found"}` {
		t.Errorf("Body = %q", apiErr.Body)
	}
}

func TestGetRecipe_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, "k", 0).GetRecipe(context.Background(), "42")
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("error = %v, want *TransportError", err)
	}
}

func TestSearchRecipe_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "k", 0).SearchRecipe(context.Background(), "pasta", 1)
	if err == nil {
		t.Fatal("SearchRecipe() should fail on a malformed body")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Error("a malformed body is not an APIError")
	}
}

func TestGetRecipe_ContextCancelAbortsInFlightCall(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := NewClient(srv.URL, "k", 0).GetRecipe(ctx, "42")
	if err == nil {
		t.Fatal("GetRecipe() should fail when the context expires")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want context.DeadlineExceeded in chain", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("call took %v, want prompt abort", elapsed)
	}
}
