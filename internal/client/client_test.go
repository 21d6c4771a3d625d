package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"notas/internal/core"
)

func TestAuthenticateInstallsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/login" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"tok-123"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	if err := c.Login(context.Background(), "maria", "s3cret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if !c.LoggedIn() || c.token != "tok-123" {
		t.Fatalf("token not installed: %q", c.token)
	}
}

func TestListSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Fatalf("authorization header = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"data":"2025-01-05","empresa":"Acme","numero":"10","valor":100.50,"observacoes":""}]`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.SetToken("tok-123")

	records, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 || records[0].Amount.Cents != 10050 {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestUnauthorizedIsSentinel(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":"invalid token"}`))
		}))

		c := New(srv.URL)
		_, err := c.List(context.Background())
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("status %d: expected ErrUnauthorized, got %v", status, err)
		}
		srv.Close()
	}
}

func TestServerErrorMessageSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"company is required"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Create(context.Background(), core.Record{Date: "2025-01-05"})
	if err == nil || err.Error() != "server error: company is required" {
		t.Fatalf("unexpected error: %v", err)
	}
}
