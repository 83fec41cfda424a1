package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/catalog"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/events"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/intake"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/middleware"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/relay"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/repository"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/service"
	"github.com/Lixing-Zhang/kart-challenge/storefront/pkg/logger"
)

const testDebounce = 20 * time.Millisecond

type publisherMock struct {
	mu     sync.Mutex
	events []events.OrderPlaced
}

func (p *publisherMock) PublishOrderPlaced(ctx context.Context, evt events.OrderPlaced) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *publisherMock) published() []events.OrderPlaced {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.OrderPlaced(nil), p.events...)
}

func (p *publisherMock) Close() error { return nil }

type testEnv struct {
	server    *httptest.Server
	client    *http.Client
	publisher *publisherMock
}

func newTestEnv(t *testing.T, limiter *middleware.RateLimiter) *testEnv {
	t.Helper()
	return newTestEnvWith(t, func(cfg *RouterConfig) { cfg.Limiter = limiter })
}

func newTestEnvWith(t *testing.T, configure func(*RouterConfig)) *testEnv {
	t.Helper()

	log := logger.New("error")
	sessions := repository.NewInMemorySessionRepository(relay.NewMemoryStore(), repository.SessionOptions{
		TTL:      time.Minute,
		Debounce: testDebounce,
	})
	gen := catalog.NewGenerator(
		catalog.WithWords([]string{"Red", "Blue"}),
		catalog.WithRand(rand.New(rand.NewPCG(21, 42))),
	)
	pub := &publisherMock{}

	cfg := RouterConfig{
		Sessions:       sessions,
		Catalog:        service.NewCatalogService(gen),
		Checkout:       service.NewCheckoutService(intake.New(), pub, log),
		AllowedOrigins: []string{"*"},
		Logger:         log,
	}
	configure(&cfg)

	router, err := NewRouter(cfg)
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	client := &http.Client{
		Jar: jar,
		// surface redirects so tests can assert on them
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &testEnv{server: server, client: client, publisher: pub}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *http.Response {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, e.server.URL+path, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

// middlewareLimiter allows burst requests per client and then effectively none
func middlewareLimiter(burst int) *middleware.RateLimiter {
	return middleware.NewRateLimiter(0.001, burst)
}

func validForm() models.BillingForm {
	return models.BillingForm{
		FullName:   "John Doe",
		Address:    "1 Main St",
		Email:      "john@example.com",
		Phone:      "123-456-7890",
		CreditCard: "1234567890123456789",
	}
}
