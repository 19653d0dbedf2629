package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func serve(t *testing.T, handler http.HandlerFunc, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestHandler_AllHealthy(t *testing.T) {
	handler := NewHandler("1.2.0")
	handler.RegisterChecker("postgres", NewSimpleChecker("postgres", func() error { return nil }))
	handler.RegisterChecker("print-relay", NewSimpleChecker("print-relay", func() error { return nil }))

	w := serve(t, handler.ServeHTTP, "/healthz")
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", w.Code)
	}

	var response Response
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if response.Status != StatusHealthy {
		t.Errorf("overall status = %s", response.Status)
	}
	if response.Version != "1.2.0" {
		t.Errorf("version = %s", response.Version)
	}
	if len(response.Checks) != 2 {
		t.Errorf("checks = %d, want 2", len(response.Checks))
	}
}

func TestHandler_UnhealthyCheckerWins(t *testing.T) {
	handler := NewHandler("1.2.0")
	handler.RegisterChecker("postgres", NewSimpleChecker("postgres", func() error { return nil }))
	handler.RegisterChecker("print-relay", NewSimpleChecker("print-relay", func() error {
		return errors.New("relay unreachable")
	}))

	w := serve(t, handler.ServeHTTP, "/healthz")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("unexpected status %d", w.Code)
	}

	var response Response
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if response.Status != StatusUnhealthy {
		t.Errorf("overall status = %s", response.Status)
	}
	if response.Checks["print-relay"].Message != "relay unreachable" {
		t.Errorf("unexpected message %q", response.Checks["print-relay"].Message)
	}
}

func TestReadinessHandler(t *testing.T) {
	handler := NewHandler("1.2.0")
	handler.RegisterChecker("postgres", NewSimpleChecker("postgres", func() error { return nil }))

	w := serve(t, handler.ReadinessHandler, "/readyz")
	if w.Code != http.StatusOK || w.Body.String() != "ready" {
		t.Fatalf("got %d %q", w.Code, w.Body.String())
	}

	handler.RegisterChecker("postgres", NewSimpleChecker("postgres", func() error {
		return errors.New("connection refused")
	}))

	w = serve(t, handler.ReadinessHandler, "/readyz")
	if w.Code != http.StatusServiceUnavailable || w.Body.String() != "not ready" {
		t.Fatalf("got %d %q", w.Code, w.Body.String())
	}
}

func TestLivenessHandler(t *testing.T) {
	w := serve(t, LivenessHandler, "/livez")
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("got %d %q", w.Code, w.Body.String())
	}
}

func TestSimpleChecker(t *testing.T) {
	check := NewSimpleChecker("probe", func() error { return nil }).Check()
	if check.Status != StatusHealthy || check.Name != "probe" {
		t.Fatalf("unexpected check %+v", check)
	}

	check = NewSimpleChecker("probe", func() error { return errors.New("down") }).Check()
	if check.Status != StatusUnhealthy || check.Message != "down" {
		t.Fatalf("unexpected check %+v", check)
	}
}
