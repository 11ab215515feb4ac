package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResponseWriterCapturesStatusCode(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{
		ResponseWriter: rec,
		statusCode:     http.StatusOK,
	}

	// The middleware hands rw to handlers as a plain ResponseWriter, so
	// the capture must work through the interface.
	var w http.ResponseWriter = rw
	w.WriteHeader(http.StatusInternalServerError)

	if rw.statusCode != http.StatusInternalServerError {
		t.Errorf("expected captured status 500, got %d", rw.statusCode)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected forwarded status 500, got %d", rec.Code)
	}
}

func TestLoggerMiddlewarePassesThrough(t *testing.T) {
	handler := loggerMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("nope"))
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/rpc", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 through the middleware, got %d", rec.Code)
	}
	if rec.Body.String() != "nope" {
		t.Errorf("expected the body to pass through, got %q", rec.Body.String())
	}
}
