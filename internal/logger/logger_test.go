package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// observeLogs swaps in an observing logger for the duration of the test.
func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	prev := current.Load()
	Set(zap.New(core))
	t.Cleanup(func() { current.Store(prev) })
	return logs
}

func TestGet_NopBeforeInit(t *testing.T) {
	prev := current.Load()
	current.Store(nil)
	defer current.Store(prev)

	if Get() == nil {
		t.Fatal("Get() should never return nil")
	}
}

func TestRequestIDMiddleware_ReusesIncomingHeader(t *testing.T) {
	logs := observeLogs(t)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) {
		FromRequest(c).Info("handled")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("response header = %q, want abc-123", got)
	}
	entries := logs.FilterField(zap.String(RequestIDKey, "abc-123")).All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries with the request ID, want 1", len(entries))
	}
}

func TestRequestIDMiddleware_GeneratesID(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) {
		if c.GetString(RequestIDKey) == "" {
			t.Error("request ID should be set in the context")
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	if w.Header().Get(RequestIDHeader) == "" {
		t.Error("response should carry a generated request ID")
	}
}

func TestForTask_TagsSlotAndID(t *testing.T) {
	logs := observeLogs(t)

	ForTask("lookup", "t-1").Warn("request timed out")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["slot"] != "lookup" || fields["task_id"] != "t-1" {
		t.Errorf("fields = %v, want slot=lookup task_id=t-1", fields)
	}
}
