// Package relay carries the selected item and the finished order between the
// checkout screens of one session.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
)

// Slot names
const (
	SlotSelectedItem = "selectedItem"
	SlotOrderData    = "orderData"
)

var (
	ErrNoSelection = errors.New("no item selected")
	ErrNoOrder     = errors.New("no order data")
)

// Relay is the typed handoff for one session. The order slot is single use:
// TakeOrder empties both slots.
type Relay struct {
	store     Store
	sessionID string
	ttl       time.Duration
}

// New creates a relay over store for the given session
func New(store Store, sessionID string, ttl time.Duration) *Relay {
	return &Relay{
		store:     store,
		sessionID: sessionID,
		ttl:       ttl,
	}
}

// Key returns the storage key of a slot for this session. The session id is
// a Redis hash tag so both slots land in the same cluster slot.
func (r *Relay) Key(slot string) string {
	return fmt.Sprintf("session:{%s}:%s", r.sessionID, slot)
}

// Select stores the item the user is buying
func (r *Relay) Select(ctx context.Context, item models.Item) error {
	return r.put(ctx, SlotSelectedItem, item)
}

// Selection returns the selected item without consuming it
func (r *Relay) Selection(ctx context.Context) (models.Item, error) {
	var item models.Item
	b, err := r.store.Get(ctx, r.Key(SlotSelectedItem))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return item, ErrNoSelection
		}
		return item, err
	}
	if err := json.Unmarshal(b, &item); err != nil {
		return item, fmt.Errorf("%w: corrupt slot: %v", ErrNoSelection, err)
	}
	return item, nil
}

// PlaceOrder stores the finalized order for the confirmation screen
func (r *Relay) PlaceOrder(ctx context.Context, order models.OrderRecord) error {
	return r.put(ctx, SlotOrderData, order)
}

// TakeOrder reads the order exactly once and erases both slots in the same
// store operation. Later calls return ErrNoOrder.
func (r *Relay) TakeOrder(ctx context.Context) (models.OrderRecord, error) {
	var order models.OrderRecord
	b, err := r.store.Take(ctx, r.Key(SlotOrderData), r.Key(SlotSelectedItem))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return order, ErrNoOrder
		}
		return order, err
	}

	if err := json.Unmarshal(b, &order); err != nil {
		return order, fmt.Errorf("%w: corrupt slot: %v", ErrNoOrder, err)
	}
	return order, nil
}

// Clear erases both slots
func (r *Relay) Clear(ctx context.Context) error {
	return r.store.Delete(ctx, r.Key(SlotSelectedItem), r.Key(SlotOrderData))
}

func (r *Relay) put(ctx context.Context, slot string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", slot, err)
	}
	return r.store.Set(ctx, r.Key(slot), b, r.ttl)
}
