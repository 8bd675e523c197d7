package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jacentio/vitrine/store"
)

// Payment event detail types.
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
	EventChargeRefunded   = "charge.refunded"
)

// ErrMalformedEvent is returned when an event detail cannot be decoded.
// Lambda retries the invocation.
var ErrMalformedEvent = errors.New("vitrine: malformed payment event")

// Store is the part of the entity store the payment handler drives.
type Store interface {
	GetUser(id int64) (store.User, bool)
	GetProduct(id int64) (store.Product, bool)
	GetOrderByPaymentReference(ref string) (store.Order, bool)
	CreateOrder(in store.NewOrder) store.Order
	UpdateOrderStatus(id int64, status store.OrderStatus) (store.Order, bool)
}

// Persister saves the store after a handled event changed it.
type Persister interface {
	Persist(ctx context.Context) error
}

// Handler processes payment events.
type Handler struct {
	store     Store
	persister Persister
	logger    *zap.Logger
}

// NewHandler creates a new payment handler. persister may be nil.
func NewHandler(s Store, persister Persister, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		store:     s,
		persister: persister,
		logger:    logger,
	}
}

// stripeEvent is the detail of a payment processor event.
type stripeEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

type paymentIntent struct {
	ID       string            `json:"id"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Metadata map[string]string `json:"metadata"`
}

type charge struct {
	ID            string `json:"id"`
	PaymentIntent string `json:"payment_intent"`
}

// HandlePaymentEvent applies one payment event to the store and persists the
// store when it changed. Unknown event types are ignored.
// This function is designed to be used as an AWS Lambda handler.
func (h *Handler) HandlePaymentEvent(ctx context.Context, event events.CloudWatchEvent) error {
	changed, err := h.apply(event)
	if err != nil {
		h.logger.Error("failed to process payment event",
			zap.String("eventID", event.ID),
			zap.String("detailType", event.DetailType),
			zap.Error(err),
		)
		return err
	}
	if !changed || h.persister == nil {
		return nil
	}
	if err := h.persister.Persist(ctx); err != nil {
		return fmt.Errorf("persist after %s: %w", event.DetailType, err)
	}
	return nil
}

// HandlePaymentEvents processes events in order and stops at the first error.
func (h *Handler) HandlePaymentEvents(ctx context.Context, batch []events.CloudWatchEvent) error {
	for _, event := range batch {
		if err := h.HandlePaymentEvent(ctx, event); err != nil {
			return err // Will retry, eventually DLQ
		}
	}
	return nil
}

// apply reports whether the store was modified.
func (h *Handler) apply(event events.CloudWatchEvent) (bool, error) {
	switch event.DetailType {
	case EventPaymentSucceeded, EventPaymentFailed, EventChargeRefunded:
	default:
		h.logger.Info("unhandled event type", zap.String("detailType", event.DetailType))
		return false, nil
	}

	var detail stripeEvent
	if err := json.Unmarshal(event.Detail, &detail); err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	switch event.DetailType {
	case EventPaymentSucceeded:
		var intent paymentIntent
		if err := decodeObject(detail, &intent); err != nil {
			return false, err
		}
		return h.paymentSucceeded(intent)
	case EventPaymentFailed:
		var intent paymentIntent
		if err := decodeObject(detail, &intent); err != nil {
			return false, err
		}
		return h.setStatus(intent.ID, store.OrderStatusFailed), nil
	default:
		var c charge
		if err := decodeObject(detail, &c); err != nil {
			return false, err
		}
		return h.setStatus(c.PaymentIntent, store.OrderStatusRefunded), nil
	}
}

func decodeObject(detail stripeEvent, out any) error {
	if len(detail.Data.Object) == 0 {
		return fmt.Errorf("%w: event %s has no data object", ErrMalformedEvent, detail.ID)
	}
	if err := json.Unmarshal(detail.Data.Object, out); err != nil {
		return fmt.Errorf("%w: event %s: %v", ErrMalformedEvent, detail.ID, err)
	}
	return nil
}

// paymentSucceeded records a completed order for the intent. Redelivered
// events find the existing order and change nothing.
func (h *Handler) paymentSucceeded(intent paymentIntent) (bool, error) {
	if intent.ID == "" {
		return false, fmt.Errorf("%w: payment intent without id", ErrMalformedEvent)
	}
	if existing, ok := h.store.GetOrderByPaymentReference(intent.ID); ok {
		h.logger.Debug("order already recorded",
			zap.String("paymentIntent", intent.ID),
			zap.Int64("orderID", existing.ID),
		)
		return false, nil
	}

	productID, okProduct := metadataID(intent.Metadata, "productId")
	userID, okUser := metadataID(intent.Metadata, "userId")
	if !okProduct || !okUser {
		h.logger.Warn("payment intent without order metadata, skipping",
			zap.String("paymentIntent", intent.ID),
		)
		return false, nil
	}
	if _, ok := h.store.GetProduct(productID); !ok {
		h.logger.Warn("paid product not found, skipping",
			zap.String("paymentIntent", intent.ID),
			zap.Int64("productID", productID),
		)
		return false, nil
	}
	if _, ok := h.store.GetUser(userID); !ok {
		h.logger.Warn("buyer not found, skipping",
			zap.String("paymentIntent", intent.ID),
			zap.Int64("userID", userID),
		)
		return false, nil
	}

	o := h.store.CreateOrder(store.NewOrder{
		UserID:           userID,
		ProductID:        productID,
		PaymentReference: intent.ID,
		Amount:           decimal.New(intent.Amount, -2),
	})
	h.store.UpdateOrderStatus(o.ID, store.OrderStatusCompleted)

	h.logger.Info("order recorded",
		zap.String("paymentIntent", intent.ID),
		zap.Int64("orderID", o.ID),
		zap.Int64("productID", productID),
		zap.Int64("userID", userID),
	)
	return true, nil
}

// setStatus moves the order paid by ref to status. It reports false when no
// order carries ref or the order already has that status.
func (h *Handler) setStatus(ref string, status store.OrderStatus) bool {
	o, ok := h.store.GetOrderByPaymentReference(ref)
	if !ok {
		h.logger.Warn("no order for payment reference",
			zap.String("paymentIntent", ref),
			zap.String("status", string(status)),
		)
		return false
	}
	if o.Status == status {
		return false
	}
	h.store.UpdateOrderStatus(o.ID, status)
	h.logger.Info("order status changed",
		zap.Int64("orderID", o.ID),
		zap.String("from", string(o.Status)),
		zap.String("to", string(status)),
	)
	return true
}

func metadataID(metadata map[string]string, key string) (int64, bool) {
	raw, ok := metadata[key]
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
