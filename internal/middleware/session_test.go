package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/relay"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/repository"
	"github.com/Lixing-Zhang/kart-challenge/storefront/pkg/logger"
)

func TestSessions(t *testing.T) {
	repo := repository.NewInMemorySessionRepository(relay.NewMemoryStore(), repository.SessionOptions{TTL: time.Minute})

	var seen string
	handler := Sessions(repo, logger.New("error"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFrom(r.Context())
		if sess == nil {
			t.Fatal("expected a session in the request context")
		}
		seen = sess.ID
		w.WriteHeader(http.StatusOK)
	}))

	// first request starts a session and sets the cookie
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != SessionCookie {
		t.Fatalf("expected session cookie, got %v", cookies)
	}
	if cookies[0].Value != seen || !cookies[0].HttpOnly {
		t.Errorf("unexpected cookie %+v for session %s", cookies[0], seen)
	}
	first := seen

	tests := []struct {
		name        string
		cookie      string
		wantSame    bool
		wantNewSent bool
	}{
		{"existing session reused", first, true, false},
		{"unknown session replaced", "does-not-exist", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tt.cookie})
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if (seen == first) != tt.wantSame {
				t.Errorf("session = %s, first = %s, wantSame %v", seen, first, tt.wantSame)
			}
			if sent := len(w.Result().Cookies()) > 0; sent != tt.wantNewSent {
				t.Errorf("cookie sent = %v, want %v", sent, tt.wantNewSent)
			}
		})
	}
}

func TestSessionFrom_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if SessionFrom(req.Context()) != nil {
		t.Error("expected nil session outside the middleware")
	}
}
