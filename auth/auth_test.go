package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func tokenServer(t *testing.T, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"token123","token_type":"bearer","expires_in":3600}`))
	}))
}

func TestTokenAndSetAuthHeader(t *testing.T) {
	var hits atomic.Int64
	server := tokenServer(t, &hits)
	defer server.Close()

	client := NewClientCred(Conf{ClientID: "id", ClientSecret: "secret", AuthURL: server.URL})
	ctx := context.Background()

	token, err := client.Token(ctx)
	if err != nil {
		t.Fatalf("Token returned error: %v", err)
	}
	if token != "token123" {
		t.Fatalf("unexpected token %s", token)
	}

	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	if err := client.SetAuthHeader(ctx, req); err != nil {
		t.Fatalf("SetAuthHeader returned error: %v", err)
	}
	if req.Header.Get("Authorization") == "" {
		t.Fatalf("Authorization header not set")
	}
	if hits.Load() != 1 {
		t.Fatalf("expected cached token to be reused, endpoint hit %d times", hits.Load())
	}
}

func TestForceRefresh(t *testing.T) {
	var hits atomic.Int64
	server := tokenServer(t, &hits)
	defer server.Close()

	client := NewClientCred(Conf{ClientID: "id", ClientSecret: "secret", AuthURL: server.URL})
	ctx := context.Background()

	if _, err := client.Token(ctx); err != nil {
		t.Fatalf("Token returned error: %v", err)
	}
	if _, err := client.ForceRefresh(ctx); err != nil {
		t.Fatalf("ForceRefresh returned error: %v", err)
	}
	if hits.Load() != 2 {
		t.Fatalf("expected 2 token fetches, got %d", hits.Load())
	}
}
