package service

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"

	apperrors "github.com/sakibbengal/Bengal-Boats-sub000/pkg/errors"
	"github.com/sakibbengal/Bengal-Boats-sub000/pkg/tracing"
	"github.com/sakibbengal/Bengal-Boats-sub000/services/storefront/internal/domain"
)

// ErrSubmissionFailed matches every *SubmissionError via errors.Is.
var ErrSubmissionFailed = &apperrors.AppError{
	Code:    "SUBMISSION_FAILED",
	Message: "your order could not be placed, please try again",
	Status:  http.StatusBadGateway,
	Err:     apperrors.ErrUpstream,
}

// SubmissionError wraps any failure of the order-intake call.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return "submit order: " + e.Err.Error()
}

func (e *SubmissionError) Unwrap() []error {
	return []error{ErrSubmissionFailed, e.Err}
}

// CheckoutService turns carts into submitted orders.
type CheckoutService struct {
	carts         *CartService
	intake        OrderIntake
	events        EventPublisher
	logger        *slog.Logger
	submitTimeout time.Duration
}

// NewCheckoutService creates a checkout service. A zero submitTimeout leaves
// the intake call bounded only by the caller's context.
func NewCheckoutService(carts *CartService, intake OrderIntake, events EventPublisher, logger *slog.Logger, submitTimeout time.Duration) *CheckoutService {
	return &CheckoutService{
		carts:         carts,
		intake:        intake,
		events:        events,
		logger:        logger,
		submitTimeout: submitTimeout,
	}
}

// BuildDraft validates the form against the snapshot. It has no side effects.
func (s *CheckoutService) BuildDraft(snap domain.CartSnapshot, in domain.CheckoutInput) (*domain.OrderDraft, error) {
	return domain.BuildOrderDraft(snap, in)
}

// BuildAndSubmit builds a draft and hands it to the intake service. Draft
// errors are returned as is; intake errors come back as *SubmissionError.
// The cart is never touched.
func (s *CheckoutService) BuildAndSubmit(ctx context.Context, snap domain.CartSnapshot, in domain.CheckoutInput) (*domain.OrderConfirmation, error) {
	draft, err := s.BuildDraft(snap, in)
	if err != nil {
		return nil, err
	}

	if s.submitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.submitTimeout)
		defer cancel()
	}

	ctx, span := tracing.StartSpan(ctx, "checkout.submit_order",
		attribute.Int("order.items", len(draft.Items)),
		attribute.String("order.total", draft.Total.String()),
		attribute.String("order.delivery_option", string(draft.DeliveryZone)),
	)
	conf, err := s.intake.SubmitOrder(ctx, draft)
	tracing.EndSpan(span, err)
	if err != nil {
		return nil, &SubmissionError{Err: err}
	}
	if conf.Draft == nil {
		conf.Draft = draft
	}
	return conf, nil
}

// PlaceOrder checks out the session's cart. The cart is cleared only after
// the order service has accepted the order.
func (s *CheckoutService) PlaceOrder(ctx context.Context, sessionID string, in domain.CheckoutInput) (*domain.OrderConfirmation, error) {
	store, err := s.carts.Open(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	conf, err := s.BuildAndSubmit(ctx, store.Snapshot(), in)
	if err != nil {
		s.logger.WarnContext(ctx, "checkout failed",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	store.Clear(ctx)

	s.logger.InfoContext(ctx, "order placed",
		slog.String("session_id", sessionID),
		slog.String("order_id", conf.OrderID),
		slog.String("total", conf.Draft.Total.String()),
	)

	if s.events != nil {
		if err := s.events.PublishOrderPlaced(ctx, sessionID, conf); err != nil {
			s.logger.WarnContext(ctx, "failed to publish order.placed", slog.String("error", err.Error()))
		}
		if err := s.events.PublishCartCleared(ctx, sessionID); err != nil {
			s.logger.WarnContext(ctx, "failed to publish cart.cleared", slog.String("error", err.Error()))
		}
	}
	return conf, nil
}
