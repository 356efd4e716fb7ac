package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/windoze95/saltybytes-recipefeed/internal/executor"
	"github.com/windoze95/saltybytes-recipefeed/internal/logger"
	"github.com/windoze95/saltybytes-recipefeed/internal/models"
	"github.com/windoze95/saltybytes-recipefeed/internal/service"
	"go.uber.org/zap"
)

// WebSocket message types for the recipe feed protocol.
const (
	MsgTypeRecipes        = "recipes"          // Search result list changed
	MsgTypeRecipe         = "recipe"           // Lookup result changed
	MsgTypeRecipeTimedOut = "recipe_timed_out" // Lookup timed-out flag changed
	MsgTypeSearch         = "search"           // Client submits a search
	MsgTypeLookup         = "lookup"           // Client submits a lookup
	MsgTypeCancelLookup   = "cancel_lookup"    // Client cancels the lookup
	MsgTypeAccepted       = "accepted"         // Submission accepted
	MsgTypeError          = "error"            // Error message
)

// WSMessage is the envelope for all messages sent over the stream socket.
type WSMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// RecipesPayload carries the search result list. A null list means the last
// search failed.
type RecipesPayload struct {
	Recipes []models.Recipe `json:"recipes"`
}

// RecipePayload carries the lookup result. A null recipe means the last
// lookup failed.
type RecipePayload struct {
	Recipe *models.Recipe `json:"recipe"`
}

// RecipeTimedOutPayload carries the lookup timed-out flag.
type RecipeTimedOutPayload struct {
	TimedOut bool `json:"timed_out"`
}

// SearchPayload is sent by the client to search.
type SearchPayload struct {
	Query string `json:"query"`
	Page  int    `json:"page"`
}

// LookupPayload is sent by the client to fetch one recipe.
type LookupPayload struct {
	RecipeID string `json:"recipe_id"`
}

// AcceptedPayload confirms a submission.
type AcceptedPayload struct {
	TaskID string `json:"task_id"`
}

// ErrorPayload carries an error message to the client.
type ErrorPayload struct {
	Message string `json:"message"`
}

// StreamHandler relays the recipe feed's streams to WebSocket clients and
// accepts submissions from them.
type StreamHandler struct {
	Hub            *Hub
	Service        *service.RecipeService
	AllowedOrigins []string
	upgrader       websocket.Upgrader
}

// NewStreamHandler returns a new StreamHandler. Origins other than
// allowedOrigins and localhost are rejected.
func NewStreamHandler(hub *Hub, recipeService *service.RecipeService, allowedOrigins []string) *StreamHandler {
	sh := &StreamHandler{
		Hub:            hub,
		Service:        recipeService,
		AllowedOrigins: allowedOrigins,
	}
	sh.upgrader = websocket.Upgrader{
		CheckOrigin:     sh.checkOrigin,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	return sh
}

func (sh *StreamHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range sh.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	// Allow localhost for development
	return strings.HasPrefix(origin, "http://localhost:") || origin == "http://localhost"
}

// Relay broadcasts every change of the service's streams until ctx ends. It
// should be launched as a goroutine.
func (sh *StreamHandler) Relay(ctx context.Context) {
	recipes, stopRecipes := sh.Service.Recipes().Subscribe()
	defer stopRecipes()
	recipe, stopRecipe := sh.Service.Recipe().Subscribe()
	defer stopRecipe()
	timedOut, stopTimedOut := sh.Service.RecipeTimedOut().Subscribe()
	defer stopTimedOut()

	for {
		var msg []byte
		select {
		case <-ctx.Done():
			return
		case v := <-recipes:
			msg = encode(MsgTypeRecipes, RecipesPayload{Recipes: v})
		case v := <-recipe:
			msg = encode(MsgTypeRecipe, RecipePayload{Recipe: v})
		case v := <-timedOut:
			msg = encode(MsgTypeRecipeTimedOut, RecipeTimedOutPayload{TimedOut: v})
		}
		if !sh.Hub.Publish(msg) {
			return
		}
	}
}

// HandleStreams upgrades an HTTP request to a WebSocket connection that
// receives the current stream values and every later change.
func (sh *StreamHandler) HandleStreams(c *gin.Context) {
	conn, err := sh.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Get().Error("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		Hub:  sh.Hub,
		Conn: conn,
		Send: make(chan []byte, 64),
		ID:   uuid.New().String(),
	}
	if !sh.attach(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump(sh.handleMessage)
}

// attach registers client with the hub. The current stream values are queued
// from the hub goroutine once it is registered, so a change relayed around
// the join is never lost to it.
func (sh *StreamHandler) attach(client *Client) bool {
	client.OnJoin = sh.sendSnapshot
	return sh.Hub.Join(client)
}

// sendSnapshot queues the values published so far.
func (sh *StreamHandler) sendSnapshot(client *Client) {
	if v, ok := sh.Service.Recipes().Value(); ok {
		client.Queue(encode(MsgTypeRecipes, RecipesPayload{Recipes: v}))
	}
	if v, ok := sh.Service.Recipe().Value(); ok {
		client.Queue(encode(MsgTypeRecipe, RecipePayload{Recipe: v}))
	}
	if v, ok := sh.Service.RecipeTimedOut().Value(); ok {
		client.Queue(encode(MsgTypeRecipeTimedOut, RecipeTimedOutPayload{TimedOut: v}))
	}
}

// handleMessage parses an incoming WebSocket message and routes it.
func (sh *StreamHandler) handleMessage(client *Client, data []byte) {
	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		sh.sendError(client, "invalid message format")
		return
	}

	logger.Get().Debug("received ws message",
		zap.String("type", msg.Type),
		zap.String("client_id", client.ID),
	)

	switch msg.Type {
	case MsgTypeSearch:
		var p SearchPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			sh.sendError(client, "invalid search payload")
			return
		}
		if p.Page == 0 {
			p.Page = 1
		}
		task, err := sh.Service.SubmitSearch(p.Query, p.Page)
		if errors.Is(err, executor.ErrQueueFull) {
			sh.sendError(client, "too many requests in flight, try again")
			return
		}
		if err != nil {
			sh.sendError(client, "query is required and page must be at least 1")
			return
		}
		client.Queue(encode(MsgTypeAccepted, AcceptedPayload{TaskID: task.ID.String()}))

	case MsgTypeLookup:
		var p LookupPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			sh.sendError(client, "invalid lookup payload")
			return
		}
		task, err := sh.Service.SubmitLookup(p.RecipeID)
		if errors.Is(err, executor.ErrQueueFull) {
			sh.sendError(client, "too many requests in flight, try again")
			return
		}
		if err != nil {
			sh.sendError(client, "recipe_id is required")
			return
		}
		client.Queue(encode(MsgTypeAccepted, AcceptedPayload{TaskID: task.ID.String()}))

	case MsgTypeCancelLookup:
		sh.Service.CancelLookup()

	default:
		sh.sendError(client, "unknown message type: "+msg.Type)
	}
}

// sendError sends an error message to a single client.
func (sh *StreamHandler) sendError(client *Client, message string) {
	client.Queue(encode(MsgTypeError, ErrorPayload{Message: message}))
}

func encode(msgType string, payload interface{}) []byte {
	raw, _ := json.Marshal(payload)
	msg, _ := json.Marshal(WSMessage{Type: msgType, Payload: raw})
	return msg
}
