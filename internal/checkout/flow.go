package checkout

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Lixing-Zhang/restaurant-storefront/internal/backend"
	"github.com/Lixing-Zhang/restaurant-storefront/internal/cart"
	"github.com/Lixing-Zhang/restaurant-storefront/internal/metrics"
	"github.com/Lixing-Zhang/restaurant-storefront/internal/models"
	"github.com/Lixing-Zhang/restaurant-storefront/internal/validator"
	"github.com/Lixing-Zhang/restaurant-storefront/pkg/logger"
)

// Event types published by the flow
const (
	EventOrderSubmitted = "order.submitted"
	EventCheckoutFailed = "checkout.failed"
)

var tracer = otel.Tracer("github.com/Lixing-Zhang/restaurant-storefront/internal/checkout")

// UserResolver identifies the signed-in user of the current session
type UserResolver interface {
	CurrentUserID(ctx context.Context) (int64, error)
}

// OrderCreator submits an order payload
type OrderCreator interface {
	CreateOrder(ctx context.Context, payload models.OrderPayload) (models.Order, error)
}

// Publisher emits checkout events
type Publisher interface {
	Publish(ctx context.Context, eventType, key string, payload any) error
}

// Options are the fixed parts of every order and the navigation targets
type Options struct {
	TableID       int64
	StaffID       int64
	SuccessPath   string
	LoginPath     string
	RedirectDelay time.Duration
}

// DefaultOptions returns the values the restaurant expects from the storefront
func DefaultOptions() Options {
	return Options{
		TableID:       2,
		StaffID:       1,
		SuccessPath:   "/profile",
		LoginPath:     "/login",
		RedirectDelay: 1500 * time.Millisecond,
	}
}

// Flow drives order submission for one session
type Flow struct {
	orders    OrderCreator
	users     UserResolver
	publisher Publisher
	opts      Options
	now       func() time.Time

	mu    sync.Mutex
	state State
}

// NewFlow creates an idle checkout flow for the session users resolves. publisher may be nil.
func NewFlow(orders OrderCreator, users UserResolver, publisher Publisher, opts Options) *Flow {
	return &Flow{
		orders:    orders,
		users:     users,
		publisher: publisher,
		opts:      opts,
		now:       time.Now,
		state:     StateIdle,
	}
}

// State returns the current state
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Flow) setState(s State) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}

// Submit turns the contents of store into one order. The store is locked
// against mutation for the duration of the backend call and cleared only when
// the order was created. The backend call is not cancelled with ctx.
func (f *Flow) Submit(ctx context.Context, store *cart.Store, method models.PaymentMethod) Result {
	ctx, span := tracer.Start(ctx, "checkout.submit")
	defer span.End()

	res := f.submit(ctx, store, method)

	kind := ""
	if res.Failure != nil {
		kind = string(res.Failure.Kind)
		span.SetStatus(codes.Error, res.Failure.Message)
	}
	span.SetAttributes(
		attribute.String("checkout.outcome", string(res.Outcome)),
		attribute.String("checkout.failure_kind", kind),
	)
	metrics.CheckoutOutcomes.WithLabelValues(string(res.Outcome), kind).Inc()
	return res
}

func (f *Flow) submit(ctx context.Context, store *cart.Store, method models.PaymentMethod) Result {
	log := logger.FromContext(ctx)

	if f.State() == StateSubmitting || store.Locked() {
		return failed(KindConcurrentSubmission, MsgConcurrent, nil)
	}

	clientID, err := f.users.CurrentUserID(ctx)
	if err != nil || clientID <= 0 {
		res := failed(KindUnauthorized, MsgUnauthorized, err)
		res.Redirect = &Redirect{Path: f.opts.LoginPath}
		return res
	}

	if store.Len() == 0 {
		return Result{Outcome: OutcomeEmptyCart}
	}

	if !method.Valid() {
		return failed(KindValidation, "payment method must be one of CASH, CARD, ONLINE", nil)
	}

	if !store.Lock() {
		return failed(KindConcurrentSubmission, MsgConcurrent, nil)
	}
	defer store.Unlock()

	f.mu.Lock()
	if f.state == StateSubmitting {
		f.mu.Unlock()
		return failed(KindConcurrentSubmission, MsgConcurrent, nil)
	}
	previous := f.state
	f.state = StateSubmitting
	f.mu.Unlock()

	snap := store.Snapshot()
	if len(snap.Items) == 0 {
		f.setState(previous)
		return Result{Outcome: OutcomeEmptyCart}
	}

	payload := BuildPayload(clientID, method, snap.Items, f.opts, models.NewDate(f.now().UTC()))
	if err := validator.Validate(payload); err != nil {
		f.setState(StateFailed)
		return failed(KindValidation, err.Error(), err)
	}

	// The order must reach the backend even if the client goes away.
	sendCtx := context.WithoutCancel(ctx)
	start := time.Now()
	order, err := f.orders.CreateOrder(sendCtx, payload)
	metrics.CheckoutDuration.Observe(time.Since(start).Seconds())

	created := &order
	if err != nil && acceptedUnread(err) {
		// The backend answered 2xx, so the order exists. Retrying would duplicate it.
		log.WarnContext(ctx, "order accepted but the response could not be read",
			slog.Int64("client_id", clientID),
			slog.String("error", err.Error()),
		)
		created, err = nil, nil
	}

	if err != nil {
		res := classify(err)
		if res.Failure.RequiresAuth() {
			res.Redirect = &Redirect{Path: f.opts.LoginPath}
		}
		f.setState(StateFailed)
		log.WarnContext(ctx, "order submission failed",
			slog.Int64("client_id", clientID),
			slog.String("kind", string(res.Failure.Kind)),
			slog.String("error", err.Error()),
		)
		f.publish(sendCtx, EventCheckoutFailed, clientID, FailedEvent{
			ClientID: clientID,
			Kind:     res.Failure.Kind,
			Message:  res.Failure.Message,
			Items:    payload.Items,
			TotalSum: payload.TotalSum.String(),
		})
		return res
	}

	store.Clear()
	f.setState(StateSucceeded)

	log.InfoContext(ctx, "order submitted",
		slog.Int64("client_id", clientID),
		slog.Int64("order_id", order.ID),
		slog.String("total_sum", payload.TotalSum.String()),
	)
	f.publish(sendCtx, EventOrderSubmitted, clientID, SubmittedEvent{
		OrderID:       order.ID,
		ClientID:      clientID,
		PaymentMethod: payload.PaymentMethod,
		Items:         payload.Items,
		TotalSum:      payload.TotalSum.String(),
		OrderDate:     payload.OrderDate.String(),
	})

	return Result{
		Outcome:  OutcomeSucceeded,
		Order:    created,
		Redirect: &Redirect{Path: f.opts.SuccessPath, After: f.opts.RedirectDelay},
	}
}

// BuildPayload converts cart lines into the order payload. total_sum is
// recomputed from items.
func BuildPayload(clientID int64, method models.PaymentMethod, items []cart.LineItem, opts Options, day models.Date) models.OrderPayload {
	orderItems := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		orderItems = append(orderItems, models.OrderItem{
			DishID: item.Dish.ID,
			Count:  item.Quantity,
		})
	}

	return models.OrderPayload{
		ClientID:      clientID,
		PaymentMethod: method,
		Items:         orderItems,
		TableID:       opts.TableID,
		OrderDate:     day,
		TotalSum:      cart.Sum(items),
		Status:        models.StatusNew,
		StaffID:       opts.StaffID,
	}
}

// classify maps a CreateOrder error to a failed Result
func classify(err error) Result {
	var (
		apiErr       *backend.APIError
		transportErr *backend.TransportError
	)

	// A 5xx TransportError wraps the APIError it was built from.
	switch {
	case errors.As(err, &transportErr):
		return failed(KindNetwork, MsgNetwork, err)
	case errors.As(err, &apiErr):
		if apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden {
			return failed(KindUnauthorized, MsgUnauthorized, err)
		}
		msg := apiErr.Detail
		if msg == "" {
			msg = MsgRejected
		}
		return failed(KindValidation, msg, err)
	default:
		return failed(KindNetwork, MsgNetwork, err)
	}
}

// acceptedUnread reports whether err is a 2xx answer whose body could not be decoded
func acceptedUnread(err error) bool {
	var (
		apiErr       *backend.APIError
		parseErr     *backend.ParseError
		transportErr *backend.TransportError
	)
	return errors.As(err, &parseErr) && !errors.As(err, &apiErr) && !errors.As(err, &transportErr)
}

func (f *Flow) publish(ctx context.Context, eventType string, clientID int64, payload any) {
	if f.publisher == nil {
		return
	}
	if err := f.publisher.Publish(ctx, eventType, formatKey(clientID), payload); err != nil {
		logger.FromContext(ctx).WarnContext(ctx, "publish checkout event",
			slog.String("type", eventType),
			slog.String("error", err.Error()),
		)
	}
}
