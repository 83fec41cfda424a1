package relay

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
	"github.com/shopspring/decimal"
)

func sampleItem() models.Item {
	return models.NewItem(7, "Red Item", "High-quality red item for your needs",
		decimal.NewFromInt(120), decimal.NewFromInt(96))
}

func sampleOrder() models.OrderRecord {
	return models.OrderRecord{
		Item:        sampleItem(),
		FullName:    "John Doe",
		Address:     "1 Main St",
		Email:       "john@example.com",
		Phone:       "123-456-7890",
		CreditCard:  "1234567890123456789",
		OrderNumber: 123456,
	}
}

func assertItemEqual(t *testing.T, got, want models.Item) {
	t.Helper()
	if got.ID != want.ID || got.Name != want.Name || got.Description != want.Description ||
		!got.SuggestedPrice.Equal(want.SuggestedPrice) || !got.ActualPrice.Equal(want.ActualPrice) ||
		got.Discount != want.Discount {
		t.Errorf("item = %+v, want %+v", got, want)
	}
}

func TestRelay_SelectionRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := New(NewMemoryStore(), "s1", time.Hour)

	if _, err := r.Selection(ctx); !errors.Is(err, ErrNoSelection) {
		t.Fatalf("Selection() on empty relay error = %v, want ErrNoSelection", err)
	}

	want := sampleItem()
	if err := r.Select(ctx, want); err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	// reading the selection does not consume it
	for i := 0; i < 2; i++ {
		got, err := r.Selection(ctx)
		if err != nil {
			t.Fatalf("Selection() error = %v", err)
		}
		assertItemEqual(t, got, want)
	}
}

func TestRelay_TakeOrderIsSingleUse(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	r := New(store, "s1", time.Hour)

	want := sampleOrder()
	if err := r.Select(ctx, want.Item); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if err := r.PlaceOrder(ctx, want); err != nil {
		t.Fatalf("PlaceOrder() error = %v", err)
	}

	got, err := r.TakeOrder(ctx)
	if err != nil {
		t.Fatalf("TakeOrder() error = %v", err)
	}
	assertItemEqual(t, got.Item, want.Item)
	got.Item, want.Item = models.Item{}, models.Item{}
	if got != want {
		t.Errorf("order = %+v, want %+v", got, want)
	}

	if _, err := r.TakeOrder(ctx); !errors.Is(err, ErrNoOrder) {
		t.Errorf("second TakeOrder() error = %v, want ErrNoOrder", err)
	}
	if _, err := r.Selection(ctx); !errors.Is(err, ErrNoSelection) {
		t.Errorf("selection should be erased with the order, got %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("expected empty store, %d entries left", store.Len())
	}
}

// deleteFailingStore rejects every Delete call
type deleteFailingStore struct {
	*MemoryStore
}

func (s deleteFailingStore) Delete(ctx context.Context, keys ...string) error {
	return errors.New("connection reset")
}

func TestRelay_TakeOrderDoesNotDependOnDelete(t *testing.T) {
	ctx := context.Background()
	store := deleteFailingStore{NewMemoryStore()}
	r := New(store, "s1", time.Hour)

	want := sampleOrder()
	_ = r.Select(ctx, want.Item)
	_ = r.PlaceOrder(ctx, want)

	got, err := r.TakeOrder(ctx)
	if err != nil {
		t.Fatalf("TakeOrder() error = %v", err)
	}
	if got.OrderNumber != want.OrderNumber {
		t.Errorf("order number = %d, want %d", got.OrderNumber, want.OrderNumber)
	}
	if _, err := r.Selection(ctx); !errors.Is(err, ErrNoSelection) {
		t.Errorf("selection should be erased with the order, got %v", err)
	}
}

func TestRelay_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	a := New(store, "a", time.Hour)
	b := New(store, "b", time.Hour)

	if err := a.Select(ctx, sampleItem()); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if _, err := b.Selection(ctx); !errors.Is(err, ErrNoSelection) {
		t.Errorf("session b sees session a's selection: %v", err)
	}
	if a.Key(SlotOrderData) != "session:{a}:orderData" {
		t.Errorf("unexpected key %q", a.Key(SlotOrderData))
	}
}

func TestRelay_CorruptSlotReadsAsAbsent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	r := New(store, "s1", time.Hour)

	_ = store.Set(ctx, r.Key(SlotSelectedItem), []byte("{not json"), 0)
	if _, err := r.Selection(ctx); !errors.Is(err, ErrNoSelection) {
		t.Errorf("Selection() error = %v, want ErrNoSelection", err)
	}

	_ = store.Set(ctx, r.Key(SlotOrderData), []byte("[]"), 0)
	if _, err := r.TakeOrder(ctx); !errors.Is(err, ErrNoOrder) {
		t.Errorf("TakeOrder() error = %v, want ErrNoOrder", err)
	}
}

func TestRelay_Clear(t *testing.T) {
	ctx := context.Background()
	r := New(NewMemoryStore(), "s1", 0)

	_ = r.Select(ctx, sampleItem())
	_ = r.PlaceOrder(ctx, sampleOrder())

	if err := r.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, err := r.TakeOrder(ctx); !errors.Is(err, ErrNoOrder) {
		t.Errorf("TakeOrder() after Clear error = %v", err)
	}
}
