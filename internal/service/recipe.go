package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/windoze95/saltybytes-recipefeed/internal/config"
	"github.com/windoze95/saltybytes-recipefeed/internal/executor"
	"github.com/windoze95/saltybytes-recipefeed/internal/livedata"
	"github.com/windoze95/saltybytes-recipefeed/internal/logger"
	"github.com/windoze95/saltybytes-recipefeed/internal/models"
	"github.com/windoze95/saltybytes-recipefeed/internal/recipeapi"
	"go.uber.org/zap"
)

// Slot names. Each slot tracks at most one task.
const (
	SlotSearch = "search"
	SlotLookup = "lookup"
)

// Executor runs tasks on workers and schedules deadlines off them.
type Executor interface {
	Scheduler
	Submit(name string, fn executor.TaskFunc) *executor.Task
}

// RecipeService issues recipe searches and lookups and publishes their
// results on observable streams.
//
// A failed request publishes nil; a canceled one publishes nothing. A new
// submission replaces the slot's task reference without canceling the task
// it replaces, so unless Cfg.EnvVars.DropStaleResults is set a superseded
// task that finishes late still publishes.
type RecipeService struct {
	Cfg      *config.Config
	API      recipeapi.RecipeAPI
	Executor Executor
	Guard    *TimeoutGuard

	validate *validator.Validate

	recipes        *livedata.Stream[[]models.Recipe]
	recipe         *livedata.Stream[*models.Recipe]
	recipeTimedOut *livedata.Stream[bool]

	mu         sync.Mutex
	searchTask *executor.Task
	lookupTask *executor.Task

	// Generations identify the newest submission per slot.
	searchGen atomic.Uint64
	lookupGen atomic.Uint64
}

// NewRecipeService creates a new RecipeService.
func NewRecipeService(cfg *config.Config, api recipeapi.RecipeAPI, exec Executor) *RecipeService {
	return &RecipeService{
		Cfg:            cfg,
		API:            api,
		Executor:       exec,
		Guard:          NewTimeoutGuard(cfg.NetworkTimeout(), exec),
		validate:       validator.New(),
		recipes:        livedata.NewStream[[]models.Recipe](),
		recipe:         livedata.NewStream[*models.Recipe](),
		recipeTimedOut: livedata.NewStream[bool](),
	}
}

// Recipes is the accumulated search result list. nil means the last search
// failed.
func (s *RecipeService) Recipes() livedata.Observable[[]models.Recipe] {
	return s.recipes
}

// Recipe is the last looked-up recipe. nil means the last lookup failed.
func (s *RecipeService) Recipe() livedata.Observable[*models.Recipe] {
	return s.recipe
}

// RecipeTimedOut reports whether the current lookup hit its deadline.
func (s *RecipeService) RecipeTimedOut() livedata.Observable[bool] {
	return s.recipeTimedOut
}

// SearchTask returns the search slot's current task, if any.
func (s *RecipeService) SearchTask() *executor.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searchTask
}

// LookupTask returns the lookup slot's current task, if any.
func (s *RecipeService) LookupTask() *executor.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookupTask
}

// SubmitSearch starts fetching one page of results for query. Page 1
// replaces the result list; later pages are appended to it.
func (s *RecipeService) SubmitSearch(query string, page int) (*executor.Task, error) {
	req := models.SearchRequest{Query: query, Page: page}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid search request: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	gen := s.searchGen.Add(1)
	task := s.Executor.Submit(SlotSearch, func(ctx context.Context) error {
		return s.runSearch(ctx, req, gen)
	})
	if err := rejected(task); err != nil {
		s.searchGen.CompareAndSwap(gen, gen-1)
		return nil, fmt.Errorf("search not submitted: %w", err)
	}
	s.searchTask = task
	s.Guard.Arm(task, nil)

	logger.ForTask(SlotSearch, task.ID.String()).Debug("search submitted",
		zap.String("query", query),
		zap.Int("page", page),
	)
	return task, nil
}

// SubmitLookup resets the timed-out flag and starts fetching the recipe with
// the given ID.
func (s *RecipeService) SubmitLookup(recipeID string) (*executor.Task, error) {
	req := models.LookupRequest{ID: recipeID}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid lookup request: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	gen := s.lookupGen.Add(1)
	task := s.Executor.Submit(SlotLookup, func(ctx context.Context) error {
		return s.runLookup(ctx, req, gen)
	})
	if err := rejected(task); err != nil {
		s.lookupGen.CompareAndSwap(gen, gen-1)
		return nil, fmt.Errorf("lookup not submitted: %w", err)
	}
	s.recipeTimedOut.Post(false)
	s.lookupTask = task
	s.Guard.Arm(task, func() {
		if s.isStale(&s.lookupGen, gen) {
			return
		}
		s.recipeTimedOut.Post(true)
	})

	logger.ForTask(SlotLookup, task.ID.String()).Debug("lookup submitted",
		zap.String("recipe_id", recipeID),
	)
	return task, nil
}

// CancelLookup cancels the current lookup. Its in-flight request is aborted
// and nothing is published for it.
func (s *RecipeService) CancelLookup() {
	task := s.LookupTask()
	if task == nil {
		return
	}
	logger.ForTask(SlotLookup, task.ID.String()).Debug("canceling the lookup request")
	task.Cancel(executor.ErrCanceled)
}

func (s *RecipeService) runSearch(ctx context.Context, req models.SearchRequest, gen uint64) error {
	log := taskLogger(ctx, SlotSearch).With(
		zap.String("query", req.Query),
		zap.Int("page", req.Page),
	)
	start := time.Now()

	recipes, err := s.API.SearchRecipe(ctx, req.Query, req.Page)

	publish, err := s.settle(ctx, log, SlotSearch, &s.searchGen, gen, start, err)
	if !publish {
		return err
	}
	if err != nil {
		s.recipes.Post(nil)
		return err
	}

	if req.Page == 1 {
		s.recipes.Post(recipes)
		return nil
	}
	s.recipes.Update(func(current []models.Recipe) []models.Recipe {
		merged := make([]models.Recipe, 0, len(current)+len(recipes))
		merged = append(merged, current...)
		return append(merged, recipes...)
	})
	return nil
}

func (s *RecipeService) runLookup(ctx context.Context, req models.LookupRequest, gen uint64) error {
	log := taskLogger(ctx, SlotLookup).With(zap.String("recipe_id", req.ID))
	start := time.Now()

	recipe, err := s.API.GetRecipe(ctx, req.ID)

	publish, err := s.settle(ctx, log, SlotLookup, &s.lookupGen, gen, start, err)
	if !publish {
		return err
	}
	if err != nil {
		s.recipe.Post(nil)
		return err
	}
	s.recipe.Post(recipe)
	return nil
}

// settle inspects a finished call. publish is false when the result must be
// dropped without publishing anything. Otherwise err is nil on success, or
// the failure for which nil gets published.
func (s *RecipeService) settle(ctx context.Context, log *zap.Logger, slot string, current *atomic.Uint64, gen uint64, start time.Time, callErr error) (publish bool, err error) {
	cause := context.Cause(ctx)
	if cause != nil && !errors.Is(cause, executor.ErrTimedOut) {
		log.Debug("request canceled, discarding result", zap.Error(cause))
		observe(slot, outcomeCanceled, start)
		return false, cause
	}
	if s.isStale(current, gen) {
		log.Debug("request superseded, discarding result")
		observe(slot, outcomeSuperseded, start)
		return false, nil
	}

	err = callErr
	if cause != nil {
		err = errors.Join(cause, callErr)
	}
	if err == nil {
		observe(slot, outcomeCompleted, start)
		return true, nil
	}

	var apiErr *recipeapi.APIError
	switch {
	case errors.Is(err, executor.ErrTimedOut):
		log.Warn("request interrupted by timeout", zap.Error(callErr))
	case errors.As(err, &apiErr):
		log.Error("recipe API returned an error",
			zap.Int("status", apiErr.StatusCode),
			zap.String("body", apiErr.Body),
		)
	default:
		log.Error("recipe API request failed", zap.Error(err))
	}
	observe(slot, classifyFailure(err), start)
	return true, err
}

// rejected returns the reason the executor refused task, or nil if it was
// queued.
func rejected(task *executor.Task) error {
	select {
	case <-task.Done():
		if err := task.Err(); errors.Is(err, executor.ErrQueueFull) || errors.Is(err, executor.ErrPoolClosed) {
			return err
		}
	default:
	}
	return nil
}

// isStale reports whether gen has been superseded and stale results are
// configured to be dropped.
func (s *RecipeService) isStale(current *atomic.Uint64, gen uint64) bool {
	return s.Cfg.EnvVars.DropStaleResults && current.Load() != gen
}

func taskLogger(ctx context.Context, slot string) *zap.Logger {
	if task, ok := executor.TaskFromContext(ctx); ok {
		return logger.ForTask(slot, task.ID.String())
	}
	return logger.With(zap.String("slot", slot))
}
