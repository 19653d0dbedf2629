package printing

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func sampleJob() RelayJob {
	return RelayJob{
		PrinterID:   "p1",
		Title:       "Order #3",
		ContentType: "raw_base64",
		Content:     "aGVsbG8=",
		Source:      "kiosk",
		APIKey:      "sk-test",
	}
}

func TestHTTPRelay_Submit(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	relay := NewHTTPRelay(srv.URL)
	if err := relay.Submit(context.Background(), sampleJob()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if gotAuth != "Bearer sk-test" {
		t.Fatalf("expected bearer auth header, got %q", gotAuth)
	}
	if gotBody["printer_id"] != "p1" || gotBody["content"] != "aGVsbG8=" {
		t.Fatalf("unexpected body %v", gotBody)
	}
	// Ключ передаётся только заголовком, в теле задания его нет.
	for field, value := range gotBody {
		if s, ok := value.(string); ok && strings.Contains(s, "sk-test") {
			t.Fatalf("api key leaked into body field %q", field)
		}
	}
	if _, ok := gotBody["api_key"]; ok {
		t.Fatal("api key field must not be present in body")
	}
}

func TestHTTPRelay_Rejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte("unknown printer"))
	}))
	defer srv.Close()

	relay := NewHTTPRelay(srv.URL)
	err := relay.Submit(context.Background(), sampleJob())
	if err == nil {
		t.Fatal("expected rejection error")
	}
	if !IsRelayRejection(err) {
		t.Fatalf("expected relay rejection, got %v", err)
	}
	if !strings.Contains(err.Error(), "unknown printer") {
		t.Fatalf("expected captured body in error, got %v", err)
	}
}

func TestHTTPRelay_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // закрытый сервер даёт сетевую ошибку

	relay := NewHTTPRelay(srv.URL)
	err := relay.Submit(context.Background(), sampleJob())
	if err == nil {
		t.Fatal("expected transport error")
	}
	if IsRelayRejection(err) {
		t.Fatalf("transport error must not be a rejection: %v", err)
	}
}
