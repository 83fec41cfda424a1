package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/catalog"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/repository"
)

var (
	ErrItemNotFound = errors.New("item not found")
)

// CatalogService handles the catalog screen
type CatalogService struct {
	generator *catalog.Generator
}

// NewCatalogService creates a new catalog service
func NewCatalogService(generator *catalog.Generator) *CatalogService {
	return &CatalogService{
		generator: generator,
	}
}

// Visit starts a fresh catalog visit with newly generated items.
// Previously displayed ids are no longer valid afterwards.
func (s *CatalogService) Visit(ctx context.Context, sess *repository.Session) catalog.State {
	sess.Catalog.Load(s.generator.Generate())
	return sess.Catalog.Snapshot()
}

// Current returns the catalog view, generating items on first use
func (s *CatalogService) Current(ctx context.Context, sess *repository.Session) catalog.State {
	if !sess.Catalog.Loaded() {
		return s.Visit(ctx, sess)
	}
	return sess.Catalog.Snapshot()
}

// TypeFilter records filter input; it applies after the debounce delay
func (s *CatalogService) TypeFilter(ctx context.Context, sess *repository.Session, text string) {
	s.Current(ctx, sess)
	sess.Catalog.SetFilter(text)
}

// Query applies a filter and sort key immediately
func (s *CatalogService) Query(ctx context.Context, sess *repository.Session, filter, sortKey string) (catalog.State, error) {
	key, err := catalog.ParseSortKey(sortKey)
	if err != nil {
		return catalog.State{}, err
	}

	s.Current(ctx, sess)
	sess.Catalog.ApplyFilter(filter)
	sess.Catalog.SetSort(key)
	return sess.Catalog.Snapshot(), nil
}

// Sort changes the ordering of the catalog view
func (s *CatalogService) Sort(ctx context.Context, sess *repository.Session, sortKey string) (catalog.State, error) {
	key, err := catalog.ParseSortKey(sortKey)
	if err != nil {
		return catalog.State{}, err
	}

	s.Current(ctx, sess)
	sess.Catalog.SetSort(key)
	return sess.Catalog.Snapshot(), nil
}

// Select copies a displayed item into the session relay for checkout
func (s *CatalogService) Select(ctx context.Context, sess *repository.Session, itemID int) (*models.Item, error) {
	item, ok := sess.Catalog.Displayed(itemID)
	if !ok {
		return nil, ErrItemNotFound
	}

	if err := sess.Relay.Select(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to store selection: %w", err)
	}
	return &item, nil
}
