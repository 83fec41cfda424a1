package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/events"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/intake"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/relay"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/repository"
)

const (
	// orderNumberLimit bounds order numbers to [0, orderNumberLimit)
	orderNumberLimit = 1_000_000

	// DefaultPublishTimeout bounds how long checkout waits on the event publisher
	DefaultPublishTimeout = 2 * time.Second
)

var (
	ErrMissingSelection = errors.New("no item selected")
	ErrMissingOrder     = errors.New("no order data found")
	ErrValidation       = errors.New("billing form is invalid")
)

// ValidationError carries the per-field messages of a rejected form
type ValidationError struct {
	Fields models.FieldErrorSet
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %d field(s) failed", ErrValidation, len(e.Fields))
}

// Is lets callers match with errors.Is(err, ErrValidation)
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// CheckoutService handles the checkout and confirmation screens
type CheckoutService struct {
	validator      *intake.Validator
	publisher      events.Publisher
	publishTimeout time.Duration
	logger         *slog.Logger
	orderNumber    func() int
	now            func() time.Time
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(validator *intake.Validator, publisher events.Publisher, logger *slog.Logger) *CheckoutService {
	return &CheckoutService{
		validator:      validator,
		publisher:      publisher,
		publishTimeout: DefaultPublishTimeout,
		logger:         logger,
		orderNumber:    func() int { return rand.IntN(orderNumberLimit) },
		now:            time.Now,
	}
}

// SetPublishTimeout changes how long Submit waits for the order event
func (s *CheckoutService) SetPublishTimeout(d time.Duration) {
	if d > 0 {
		s.publishTimeout = d
	}
}

// Begin returns the item selected on the catalog screen
func (s *CheckoutService) Begin(ctx context.Context, sess *repository.Session) (*models.Item, error) {
	item, err := sess.Relay.Selection(ctx)
	if err != nil {
		if errors.Is(err, relay.ErrNoSelection) {
			return nil, ErrMissingSelection
		}
		return nil, err
	}
	return &item, nil
}

// Submit validates the billing form and, when valid, places the order in the
// relay for the confirmation screen. A rejected form returns *ValidationError.
func (s *CheckoutService) Submit(ctx context.Context, sess *repository.Session, form models.BillingForm) (*models.OrderRecord, error) {
	item, err := s.Begin(ctx, sess)
	if err != nil {
		return nil, err
	}

	if fields := s.validator.Validate(form); !fields.Empty() {
		return nil, &ValidationError{Fields: fields}
	}

	order := &models.OrderRecord{
		Item:        *item,
		FullName:    form.FullName,
		Address:     form.Address,
		Email:       form.Email,
		Phone:       form.Phone,
		CreditCard:  form.CreditCard,
		OrderNumber: s.orderNumber(),
	}

	if err := sess.Relay.PlaceOrder(ctx, *order); err != nil {
		return nil, fmt.Errorf("failed to store order: %w", err)
	}

	s.publish(ctx, *order)

	return order, nil
}

// publish sends the order event under its own deadline, detached from the
// request's cancellation. Failures are only logged.
func (s *CheckoutService) publish(ctx context.Context, order models.OrderRecord) {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()

	if err := s.publisher.PublishOrderPlaced(pubCtx, events.NewOrderPlaced(order, s.now())); err != nil {
		s.logger.Warn("failed to publish order event", "order_number", order.OrderNumber, "error", err)
	}
}

// Confirm takes the placed order exactly once. Both relay slots are erased,
// so a second call returns ErrMissingOrder.
func (s *CheckoutService) Confirm(ctx context.Context, sess *repository.Session) (*models.Confirmation, error) {
	order, err := sess.Relay.TakeOrder(ctx)
	if err != nil {
		if errors.Is(err, relay.ErrNoOrder) {
			return nil, ErrMissingOrder
		}
		return nil, err
	}

	c := models.NewConfirmation(order)
	return &c, nil
}
