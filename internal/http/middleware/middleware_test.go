package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	"todo-server/internal/workers"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = RequestIDFromContext(r.Context())
	}))

	t.Run("generates id when absent", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/todos", nil))

		if _, err := uuid.Parse(seen); err != nil {
			t.Errorf("expected uuid in context, got %q", seen)
		}
		if got := rec.Header().Get(RequestIDHeader); got != seen {
			t.Errorf("header %q does not match context %q", got, seen)
		}
	})

	t.Run("keeps valid client id", func(t *testing.T) {
		clientID := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/todos", nil)
		req.Header.Set(RequestIDHeader, clientID)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if seen != clientID {
			t.Errorf("expected %q, got %q", clientID, seen)
		}
	})

	t.Run("replaces invalid client id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/todos", nil)
		req.Header.Set(RequestIDHeader, "not-a-uuid")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if seen == "not-a-uuid" {
			t.Error("invalid request id should be replaced")
		}
		if _, err := uuid.Parse(seen); err != nil {
			t.Errorf("expected generated uuid, got %q", seen)
		}
	})
}

func TestRequestIDFromContext_Missing(t *testing.T) {
	if _, ok := RequestIDFromContext(context.Background()); ok {
		t.Error("expected no request id on a bare context")
	}
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel, Formatter: log.LogfmtFormatter})

	handler := RequestID(AccessLog(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/todos/abc", nil))

	out := buf.String()
	for _, want := range []string{"method=DELETE", "path=/todos/abc", "status=418", "request_id="} {
		if !strings.Contains(out, want) {
			t.Errorf("access log missing %q: %s", want, out)
		}
	}
}

func TestAccessLog_ImplicitOK(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel, Formatter: log.LogfmtFormatter})

	handler := AccessLog(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	if out := buf.String(); !strings.Contains(out, "status=200") || !strings.Contains(out, "bytes=2") {
		t.Errorf("unexpected access log: %s", out)
	}
}

func TestLimit(t *testing.T) {
	logger := log.NewWithOptions(new(bytes.Buffer), log.Options{})

	t.Run("caps concurrent handlers", func(t *testing.T) {
		pool := workers.NewPool(2)

		var mu sync.Mutex
		current, peak := 0, 0
		handler := Limit(pool, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			current++
			if current > peak {
				peak = current
			}
			mu.Unlock()

			time.Sleep(20 * time.Millisecond)

			mu.Lock()
			current--
			mu.Unlock()
			w.WriteHeader(http.StatusNoContent)
		}))

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				rec := httptest.NewRecorder()
				handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/todos", nil))
				if rec.Code != http.StatusNoContent {
					t.Errorf("expected 204, got %d", rec.Code)
				}
			}()
		}
		wg.Wait()

		if peak > 2 {
			t.Errorf("expected at most 2 concurrent handlers, got %d", peak)
		}
	})

	t.Run("closed pool answers 503", func(t *testing.T) {
		pool := workers.NewPool(1)
		pool.Close()

		handler := Limit(pool, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not run")
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/todos", nil))
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("expected 503, got %d", rec.Code)
		}
	})
}
