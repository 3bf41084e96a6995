package provider_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bizlink/digest-engine/internal/provider"
)

func TestHTTPMailer_Send(t *testing.T) {
	var (
		gotAuth        string
		gotContentType string
		gotBody        map[string]string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	m := provider.NewHTTPMailer(srv.URL, "secret-key", 5*time.Second)
	err := m.Send(context.Background(), provider.Message{
		From:     "alerts@bizlink.test",
		To:       "ops@bizlink.test",
		Subject:  "3 new business signups",
		HTMLBody: "<ul><li>Cafe Sol</li></ul>",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotAuth != "Bearer secret-key" {
		t.Fatalf("unexpected Authorization header %q", gotAuth)
	}
	if gotContentType != "application/json" {
		t.Fatalf("unexpected Content-Type %q", gotContentType)
	}
	want := map[string]string{
		"from":    "alerts@bizlink.test",
		"to":      "ops@bizlink.test",
		"subject": "3 new business signups",
		"html":    "<ul><li>Cafe Sol</li></ul>",
	}
	for k, v := range want {
		if gotBody[k] != v {
			t.Fatalf("body field %q = %q, want %q", k, gotBody[k], v)
		}
	}
}

func TestHTTPMailer_SendNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream unavailable"))
	}))
	defer srv.Close()

	m := provider.NewHTTPMailer(srv.URL, "secret-key", 5*time.Second)
	err := m.Send(context.Background(), provider.Message{To: "ops@bizlink.test"})
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
	if !strings.Contains(err.Error(), "502") || !strings.Contains(err.Error(), "upstream unavailable") {
		t.Fatalf("error should carry status and body snippet, got %v", err)
	}
}

func TestHTTPMailer_SendNoAPIKey(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := provider.NewHTTPMailer(srv.URL, "", 5*time.Second)
	if err := m.Send(context.Background(), provider.Message{To: "ops@bizlink.test"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("expected no Authorization header, got %q", gotAuth)
	}
}

func TestHTTPMailer_SendContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := provider.NewHTTPMailer(srv.URL, "", 5*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := m.Send(ctx, provider.Message{To: "ops@bizlink.test"}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
