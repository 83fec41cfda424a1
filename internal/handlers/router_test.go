package handlers

import (
	"net/http"
	"testing"
)

func TestRouter_CORSCredentials(t *testing.T) {
	tests := []struct {
		name            string
		allowedOrigins  []string
		origin          string
		wantCredentials string
	}{
		{"wildcard origins never share cookies", []string{"*"}, "https://evil.example", ""},
		{"listed origin shares cookies", []string{"https://shop.example"}, "https://shop.example", "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnvWith(t, func(cfg *RouterConfig) { cfg.AllowedOrigins = tt.allowedOrigins })

			req, err := http.NewRequest(http.MethodGet, env.server.URL+"/api/catalog", nil)
			if err != nil {
				t.Fatalf("new request: %v", err)
			}
			req.Header.Set("Origin", tt.origin)

			resp, err := env.client.Do(req)
			if err != nil {
				t.Fatalf("GET /api/catalog: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				t.Fatalf("expected status 200, got %d", resp.StatusCode)
			}
			if got := resp.Header.Get("Access-Control-Allow-Credentials"); got != tt.wantCredentials {
				t.Errorf("Access-Control-Allow-Credentials = %q, want %q", got, tt.wantCredentials)
			}
		})
	}
}
