package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/middleware"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/repository"
	"github.com/go-chi/chi/v5"
)

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 16

var errInvalidItemID = errors.New("invalid item id")

// decodeJSON reads a size limited JSON body into v
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// itemIDParam parses the {itemId} URL parameter
func itemIDParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "itemId")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, errInvalidItemID
	}
	return id, nil
}

// requireSession returns the request session or writes a 500 when the
// session middleware is missing from the chain
func requireSession(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*repository.Session, bool) {
	sess := middleware.SessionFrom(r.Context())
	if sess == nil {
		logger.Error("request reached handler without a session", "path", r.URL.Path)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return nil, false
	}
	return sess, true
}
