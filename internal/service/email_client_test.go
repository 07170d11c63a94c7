package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"brokerdash/pkg/config"
)

func TestEmailClientSend(t *testing.T) {
	var got emailRequest
	var auth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewEmailClient(config.EmailConfig{
		APIURL: srv.URL,
		APIKey: "test-key",
		From:   "dashboard@example.com",
	})

	if err := client.Send(context.Background(), "broker@example.com", "New task: Call lender", "<h2>Call lender</h2>"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if auth != "Bearer test-key" {
		t.Errorf("Authorization = %q, want Bearer test-key", auth)
	}
	if got.From != "dashboard@example.com" {
		t.Errorf("from = %q", got.From)
	}
	if len(got.To) != 1 || got.To[0] != "broker@example.com" {
		t.Errorf("to = %v", got.To)
	}
	if got.Subject != "New task: Call lender" {
		t.Errorf("subject = %q", got.Subject)
	}
}

func TestEmailClientSendProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewEmailClient(config.EmailConfig{
		APIURL: srv.URL,
		APIKey: "test-key",
		From:   "dashboard@example.com",
	})

	if err := client.Send(context.Background(), "broker@example.com", "s", "b"); err == nil {
		t.Fatal("expected error on non-2xx response")
	}
}

func TestEmailClientConfigured(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.EmailConfig
		want bool
	}{
		{"full", config.EmailConfig{APIKey: "k", From: "a@b.c"}, true},
		{"no key", config.EmailConfig{From: "a@b.c"}, false},
		{"no from", config.EmailConfig{APIKey: "k"}, false},
		{"empty", config.EmailConfig{}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NewEmailClient(tc.cfg).Configured(); got != tc.want {
				t.Errorf("Configured() = %v, want %v", got, tc.want)
			}
		})
	}
}
