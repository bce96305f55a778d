// Package composer turns a payment form into the backend calls that record
// it: exactly one call for an individual payment or settlement, a bounded
// fan-out of per-member calls for an equal split. There is no transactional
// grouping across a split — the backend has no batch operation — so partial
// failure is a first-class outcome, never collapsed into success or failure.
package composer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/tripwiser/internal/api"
	"github.com/mmynk/tripwiser/internal/money"
)

// DefaultFanoutWidth bounds how many per-member payment calls run at once.
const DefaultFanoutWidth = 4

var (
	ErrBlankPayer    = errors.New("payer name is blank")
	ErrBlankReceiver = errors.New("receiver name is blank")
	ErrNoReceivers   = errors.New("no receivers selected")
	ErrBadAmount     = errors.New("amount must be a positive decimal")
)

// PaymentsAPI is the slice of the Repository the composer dispatches to.
type PaymentsAPI interface {
	Pay(ctx context.Context, req api.PayRequest) (*api.PayResponse, error)
	Settle(ctx context.Context, req api.PayRequest) (*api.PayResponse, error)
}

// Form is the screen's payment input. It survives failures verbatim so the
// user can retry, and is cleared only when everything succeeded.
type Form struct {
	TripID       string
	PayerName    string
	ReceiverName string   // individual payment / settlement target
	Receivers    []string // equal split targets, in selection order
	AmountText   string   // raw decimal input, e.g. "100.00"
	Description  string
	IncludeSelf  bool // count the payer in the division
}

// Outcome aggregates an equal split's per-member results.
type Outcome string

const (
	AllSucceeded   Outcome = "all_succeeded"
	PartialSuccess Outcome = "partial_success"
	AllFailed      Outcome = "all_failed"
)

// CallResult is one per-member payment call of a split.
type CallResult struct {
	CallID        string // correlation id, also logged
	Receiver      string
	TransactionID string
	Err           error // nil on success
}

// SplitResult is the joined outcome of an equal split. Results keep the
// selection order regardless of completion order.
type SplitResult struct {
	Outcome     Outcome
	PerPerson   string // the identical amount each call carried
	TotalPeople int
	Succeeded   int
	Failed      int
	Results     []CallResult
}

// Errors returns the per-receiver failures.
func (r *SplitResult) Errors() map[string]error {
	errs := make(map[string]error)
	for _, res := range r.Results {
		if res.Err != nil {
			errs[res.Receiver] = res.Err
		}
	}
	return errs
}

// Composer sequences payment submissions for one screen.
type Composer struct {
	api    PaymentsAPI
	width  int
	logger *slog.Logger

	mu   sync.Mutex
	form Form
}

// Option customizes a Composer.
type Option func(*Composer)

// WithFanoutWidth bounds split concurrency (minimum 1).
func WithFanoutWidth(n int) Option {
	return func(c *Composer) {
		if n > 0 {
			c.width = n
		}
	}
}

// New creates a Composer dispatching through the given API slice.
func New(paymentsAPI PaymentsAPI, opts ...Option) *Composer {
	c := &Composer{
		api:    paymentsAPI,
		width:  DefaultFanoutWidth,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetForm replaces the current form.
func (c *Composer) SetForm(f Form) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = f
}

// Form returns a copy of the current form state.
func (c *Composer) Form() Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

func (c *Composer) clearForm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = Form{}
}

// PayIndividual validates the form and issues exactly one payment call.
// Any failure leaves the form untouched for retry; success clears it.
func (c *Composer) PayIndividual(ctx context.Context) (*api.PayResponse, error) {
	return c.payOne(ctx, c.api.Pay)
}

// Settle records a settlement transfer with the same local validation and
// form lifecycle as an individual payment.
func (c *Composer) Settle(ctx context.Context) (*api.PayResponse, error) {
	return c.payOne(ctx, c.api.Settle)
}

func (c *Composer) payOne(ctx context.Context, call func(context.Context, api.PayRequest) (*api.PayResponse, error)) (*api.PayResponse, error) {
	form := c.Form()

	amount, err := parsePositiveAmount(form.AmountText)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(form.PayerName) == "" {
		return nil, ErrBlankPayer
	}
	if strings.TrimSpace(form.ReceiverName) == "" {
		return nil, ErrBlankReceiver
	}

	resp, err := call(ctx, api.PayRequest{
		TripID:       form.TripID,
		PayerName:    form.PayerName,
		ReceiverName: form.ReceiverName,
		Amount:       amount.String(),
		Description:  form.Description,
	})
	if err != nil {
		return nil, err
	}
	c.clearForm()
	return resp, nil
}

// SplitEqually divides the form's total across the selected receivers and
// issues one payment call per receiver, every call carrying the same
// per-person amount (the rounding remainder is not redistributed). Calls
// are dispatched in selection order with bounded concurrency, completions
// are joined, and only then is the aggregate computed. A failed call does
// not cancel or roll back its siblings. The form is cleared only on
// AllSucceeded.
func (c *Composer) SplitEqually(ctx context.Context) (*SplitResult, error) {
	form := c.Form()

	total, err := parsePositiveAmount(form.AmountText)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(form.PayerName) == "" {
		return nil, ErrBlankPayer
	}
	if len(form.Receivers) == 0 {
		return nil, ErrNoReceivers
	}
	for _, r := range form.Receivers {
		if strings.TrimSpace(r) == "" {
			return nil, ErrBlankReceiver
		}
	}

	totalPeople := len(form.Receivers)
	if form.IncludeSelf {
		totalPeople++
	}
	perPerson, err := total.SplitEven(totalPeople)
	if err != nil {
		return nil, err
	}

	c.logger.Info("splitting payment",
		"trip_id", form.TripID,
		"total", total.String(),
		"people", totalPeople,
		"per_person", perPerson.String(),
		"calls", len(form.Receivers),
	)

	results := make([]CallResult, len(form.Receivers))

	// Plain errgroup, not WithContext: a failing call must not cancel
	// in-flight siblings. Errors land in the results slice instead.
	var g errgroup.Group
	g.SetLimit(c.width)
	for i, receiver := range form.Receivers {
		g.Go(func() error {
			callID := uuid.New().String()
			resp, err := c.api.Pay(ctx, api.PayRequest{
				TripID:       form.TripID,
				PayerName:    form.PayerName,
				ReceiverName: receiver,
				Amount:       perPerson.String(),
				Description:  form.Description,
			})
			res := CallResult{CallID: callID, Receiver: receiver, Err: err}
			if err == nil {
				res.TransactionID = resp.TransactionID
			} else {
				c.logger.Warn("split payment call failed",
					"call_id", callID, "receiver", receiver, "error", err)
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait() // join barrier; goroutines never return errors

	result := &SplitResult{
		PerPerson:   perPerson.String(),
		TotalPeople: totalPeople,
		Results:     results,
	}
	for _, res := range results {
		if res.Err == nil {
			result.Succeeded++
		} else {
			result.Failed++
		}
	}
	switch {
	case result.Failed == 0:
		result.Outcome = AllSucceeded
		c.clearForm()
	case result.Succeeded == 0:
		result.Outcome = AllFailed
	default:
		result.Outcome = PartialSuccess
	}

	c.logger.Info("split complete",
		"outcome", result.Outcome,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
	)
	return result, nil
}

func parsePositiveAmount(text string) (money.Amount, error) {
	amount, err := money.Parse(text)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadAmount, err)
	}
	if !amount.IsPositive() {
		return 0, ErrBadAmount
	}
	return amount, nil
}
