package checkout

import (
	"time"

	"github.com/Lixing-Zhang/restaurant-storefront/internal/models"
)

// State is the position of a Flow in its submission lifecycle
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Kind classifies a failed submission
type Kind string

const (
	KindValidation           Kind = "validation"
	KindUnauthorized         Kind = "unauthorized"
	KindNetwork              Kind = "network"
	KindConcurrentSubmission Kind = "concurrent_submission"
)

// User-facing failure messages
const (
	MsgRejected     = "the order was rejected"
	MsgUnauthorized = "sign in to place an order"
	MsgNetwork      = "could not reach the restaurant, check your connection and try again"
	MsgConcurrent   = "an order is already being submitted"
)

// Failure describes why a submission did not produce an order. The cart is
// left as it was, so the caller may retry.
type Failure struct {
	Kind    Kind
	Message string
	Err     error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return string(f.Kind) + ": " + f.Message + ": " + f.Err.Error()
	}
	return string(f.Kind) + ": " + f.Message
}

func (f *Failure) Unwrap() error { return f.Err }

// RequiresAuth reports whether the user has to sign in before retrying
func (f *Failure) RequiresAuth() bool {
	return f.Kind == KindUnauthorized
}

// Outcome tags a Result
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomeEmptyCart Outcome = "empty_cart"
)

// Redirect tells the UI where to go next and how long to wait first
type Redirect struct {
	Path  string
	After time.Duration
}

// Result is the tagged outcome of Submit. Order is set on success unless the
// backend accepted the order without a readable answer. Failure is set on
// failure, and Redirect whenever the UI should navigate.
type Result struct {
	Outcome  Outcome
	Order    *models.Order
	Failure  *Failure
	Redirect *Redirect
}

// Succeeded reports whether an order was created
func (r Result) Succeeded() bool {
	return r.Outcome == OutcomeSucceeded
}

func failed(kind Kind, msg string, err error) Result {
	return Result{
		Outcome: OutcomeFailed,
		Failure: &Failure{Kind: kind, Message: msg, Err: err},
	}
}
