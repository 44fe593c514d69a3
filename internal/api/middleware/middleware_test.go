package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"option-live/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func newEngine(handler gin.HandlerFunc, mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/test", handler)
	r.POST("/test", handler)
	return r
}

func TestLogger_AssignsRequestID(t *testing.T) {
	var seen string
	r := newEngine(func(c *gin.Context) {
		seen = c.GetString(RequestIDKey)
		c.Status(http.StatusOK)
	}, Logger(logging.Discard()))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	id := w.Header().Get(RequestIDHeader)
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("expected a uuid request id, got %q", id)
	}
	if seen != id {
		t.Fatalf("expected handler to see %q, got %q", id, seen)
	}
}

func TestLogger_KeepsCallerRequestID(t *testing.T) {
	r := newEngine(func(c *gin.Context) { c.Status(http.StatusOK) }, Logger(logging.Discard()))

	want := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(RequestIDHeader, want)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get(RequestIDHeader); got != want {
		t.Fatalf("expected %q echoed, got %q", want, got)
	}
}

func TestLogger_PreservesResponse(t *testing.T) {
	testCases := []struct {
		name       string
		statusCode int
	}{
		{"OK", http.StatusOK},
		{"BadRequest", http.StatusBadRequest},
		{"NotFound", http.StatusNotFound},
		{"InternalError", http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := newEngine(func(c *gin.Context) {
				c.String(tc.statusCode, "body")
			}, Logger(logging.Discard()))

			req := httptest.NewRequest(http.MethodPost, "/test", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.statusCode {
				t.Errorf("expected status %d, got %d", tc.statusCode, w.Code)
			}
			if w.Body.String() != "body" {
				t.Errorf("expected body 'body', got %q", w.Body.String())
			}
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	called := false
	r := newEngine(func(c *gin.Context) { called = true }, CORS("https://app.example.com"))
	r.OPTIONS("/test", func(c *gin.Context) { called = true })

	req := httptest.NewRequest(http.MethodOptions, "/test", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Fatalf("unexpected allow-origin %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got != http.MethodPost {
		t.Fatalf("expected allow-methods %q, got %q", http.MethodPost, got)
	}
	if called {
		t.Fatal("preflight must not reach the handler")
	}
}

func TestCORS_ActualRequest(t *testing.T) {
	r := newEngine(func(c *gin.Context) { c.Status(http.StatusOK) }, CORS())

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard allow-origin, got %q", got)
	}
}

func TestErrorHandler_RecoversPanic(t *testing.T) {
	r := newEngine(func(c *gin.Context) { panic("boom") }, ErrorHandler(logging.Discard()))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if body := w.Body.String(); body != `{"error":{"code":"INTERNAL_ERROR","message":"boom"}}` {
		t.Fatalf("unexpected body %s", body)
	}
}
