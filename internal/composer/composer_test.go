package composer

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/mmynk/tripwiser/internal/api"
)

// fakePaymentsAPI records every request; failFor receivers get an error.
type fakePaymentsAPI struct {
	mu          sync.Mutex
	payReqs     []api.PayRequest
	settleReqs  []api.PayRequest
	failFor     map[string]error
	nextTransID int
}

func (f *fakePaymentsAPI) Pay(ctx context.Context, req api.PayRequest) (*api.PayResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payReqs = append(f.payReqs, req)
	if err, ok := f.failFor[req.ReceiverName]; ok {
		return nil, err
	}
	f.nextTransID++
	return &api.PayResponse{Message: "ok", TransactionID: "tx"}, nil
}

func (f *fakePaymentsAPI) Settle(ctx context.Context, req api.PayRequest) (*api.PayResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settleReqs = append(f.settleReqs, req)
	return &api.PayResponse{Message: "ok", TransactionID: "tx"}, nil
}

func (f *fakePaymentsAPI) payCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payReqs)
}

func splitForm(receivers []string, amount string, includeSelf bool) Form {
	return Form{
		TripID:      "t1",
		PayerName:   "Me",
		Receivers:   receivers,
		AmountText:  amount,
		Description: "dinner",
		IncludeSelf: includeSelf,
	}
}

// Splitting 100.00 across {A, B} with the payer included divides by 3 and
// issues exactly two calls, each carrying 33.33.
func TestSplitEquallyIncludeSelf(t *testing.T) {
	backend := &fakePaymentsAPI{}
	comp := New(backend)
	comp.SetForm(splitForm([]string{"A", "B"}, "100.00", true))

	result, err := comp.SplitEqually(context.Background())
	if err != nil {
		t.Fatalf("SplitEqually: %v", err)
	}
	if result.TotalPeople != 3 {
		t.Errorf("TotalPeople = %d, want 3", result.TotalPeople)
	}
	if result.PerPerson != "33.33" {
		t.Errorf("PerPerson = %q, want 33.33", result.PerPerson)
	}
	if backend.payCount() != 2 {
		t.Errorf("issued %d calls, want 2", backend.payCount())
	}
	for _, req := range backend.payReqs {
		if req.Amount != "33.33" {
			t.Errorf("call to %s carried %q, want 33.33", req.ReceiverName, req.Amount)
		}
	}
	if result.Outcome != AllSucceeded {
		t.Errorf("Outcome = %s, want %s", result.Outcome, AllSucceeded)
	}
}

func TestSplitResultsKeepSelectionOrder(t *testing.T) {
	backend := &fakePaymentsAPI{}
	comp := New(backend, WithFanoutWidth(2))
	receivers := []string{"D", "A", "C", "B"}
	comp.SetForm(splitForm(receivers, "40.00", false))

	result, err := comp.SplitEqually(context.Background())
	if err != nil {
		t.Fatalf("SplitEqually: %v", err)
	}
	for i, res := range result.Results {
		if res.Receiver != receivers[i] {
			t.Errorf("Results[%d] = %s, want %s", i, res.Receiver, receivers[i])
		}
	}
}

func TestSplitPartialFailure(t *testing.T) {
	backend := &fakePaymentsAPI{failFor: map[string]error{
		"B": api.Classify(500, "backend down"),
	}}
	comp := New(backend)
	form := splitForm([]string{"A", "B", "C"}, "90.00", false)
	comp.SetForm(form)

	result, err := comp.SplitEqually(context.Background())
	if err != nil {
		t.Fatalf("SplitEqually: %v", err)
	}
	if result.Outcome != PartialSuccess {
		t.Fatalf("Outcome = %s, want %s", result.Outcome, PartialSuccess)
	}
	if result.Succeeded != 2 || result.Failed != 1 {
		t.Errorf("counts = %d/%d, want 2/1", result.Succeeded, result.Failed)
	}
	errs := result.Errors()
	if len(errs) != 1 || errs["B"] == nil {
		t.Errorf("Errors() = %v, want failure for B only", errs)
	}
	// All three calls were still issued: no cancellation across the split.
	if backend.payCount() != 3 {
		t.Errorf("issued %d calls, want 3", backend.payCount())
	}
	// Partial success keeps the form for retry.
	if got := comp.Form(); got.AmountText != form.AmountText || len(got.Receivers) != 3 {
		t.Errorf("form mutated on partial success: %+v", got)
	}
}

func TestSplitAllFailed(t *testing.T) {
	failure := api.Classify(500, "down")
	backend := &fakePaymentsAPI{failFor: map[string]error{"A": failure, "B": failure}}
	comp := New(backend)
	comp.SetForm(splitForm([]string{"A", "B"}, "10.00", false))

	result, err := comp.SplitEqually(context.Background())
	if err != nil {
		t.Fatalf("SplitEqually: %v", err)
	}
	if result.Outcome != AllFailed {
		t.Errorf("Outcome = %s, want %s", result.Outcome, AllFailed)
	}
	if result.Succeeded != 0 || result.Failed != 2 {
		t.Errorf("counts = %d/%d, want 0/2", result.Succeeded, result.Failed)
	}
}

func TestSplitSuccessClearsForm(t *testing.T) {
	backend := &fakePaymentsAPI{}
	comp := New(backend)
	comp.SetForm(splitForm([]string{"A", "B"}, "50.00", false))

	result, err := comp.SplitEqually(context.Background())
	if err != nil {
		t.Fatalf("SplitEqually: %v", err)
	}
	if result.Outcome != AllSucceeded {
		t.Fatalf("Outcome = %s", result.Outcome)
	}
	if got := comp.Form(); got.AmountText != "" || got.Receivers != nil {
		t.Errorf("form not cleared after full success: %+v", got)
	}
}

func TestSplitValidation(t *testing.T) {
	tests := []struct {
		name    string
		form    Form
		wantErr error
	}{
		{
			name:    "no receivers",
			form:    splitForm(nil, "10.00", true),
			wantErr: ErrNoReceivers,
		},
		{
			name:    "zero amount",
			form:    splitForm([]string{"A"}, "0.00", false),
			wantErr: ErrBadAmount,
		},
		{
			name:    "garbage amount",
			form:    splitForm([]string{"A"}, "ten", false),
			wantErr: ErrBadAmount,
		},
		{
			name: "blank payer",
			form: Form{TripID: "t1", Receivers: []string{"A"}, AmountText: "10.00"},

			wantErr: ErrBlankPayer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakePaymentsAPI{}
			comp := New(backend)
			comp.SetForm(tt.form)

			_, err := comp.SplitEqually(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if backend.payCount() != 0 {
				t.Errorf("invalid form reached the backend: %d calls", backend.payCount())
			}
		})
	}
}

func TestIndividualPaymentSuccessClearsForm(t *testing.T) {
	backend := &fakePaymentsAPI{}
	comp := New(backend)
	comp.SetForm(Form{
		TripID: "t1", PayerName: "Me", ReceiverName: "A",
		AmountText: "12.50", Description: "taxi",
	})

	resp, err := comp.PayIndividual(context.Background())
	if err != nil {
		t.Fatalf("PayIndividual: %v", err)
	}
	if resp.TransactionID == "" {
		t.Error("no transaction id")
	}
	if backend.payCount() != 1 {
		t.Errorf("issued %d calls, want exactly 1", backend.payCount())
	}
	if got := comp.Form(); got.AmountText != "" || got.ReceiverName != "" || got.Description != "" {
		t.Errorf("form not cleared: %+v", got)
	}
}

func TestIndividualPaymentFailureKeepsForm(t *testing.T) {
	backend := &fakePaymentsAPI{failFor: map[string]error{"A": api.Classify(500, "down")}}
	comp := New(backend)
	form := Form{
		TripID: "t1", PayerName: "Me", ReceiverName: "A",
		AmountText: "12.50", Description: "taxi",
	}
	comp.SetForm(form)

	if _, err := comp.PayIndividual(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	got := comp.Form()
	if got.AmountText != form.AmountText || got.Description != form.Description ||
		got.ReceiverName != form.ReceiverName || got.PayerName != form.PayerName {
		t.Errorf("form mutated on failure: got %+v, want %+v", got, form)
	}
}

func TestIndividualPaymentValidation(t *testing.T) {
	tests := []struct {
		name    string
		form    Form
		wantErr error
	}{
		{
			name:    "blank receiver",
			form:    Form{PayerName: "Me", AmountText: "10.00"},
			wantErr: ErrBlankReceiver,
		},
		{
			name:    "blank payer",
			form:    Form{ReceiverName: "A", AmountText: "10.00"},
			wantErr: ErrBlankPayer,
		},
		{
			name:    "negative amount",
			form:    Form{PayerName: "Me", ReceiverName: "A", AmountText: "-1"},
			wantErr: ErrBadAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakePaymentsAPI{}
			comp := New(backend)
			comp.SetForm(tt.form)

			_, err := comp.PayIndividual(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if backend.payCount() != 0 {
				t.Errorf("invalid form reached the backend: %d calls", backend.payCount())
			}
		})
	}
}

func TestSettleUsesSettleEndpoint(t *testing.T) {
	backend := &fakePaymentsAPI{}
	comp := New(backend)
	comp.SetForm(Form{
		TripID: "t1", PayerName: "Me", ReceiverName: "A", AmountText: "20.00",
	})

	if _, err := comp.Settle(context.Background()); err != nil {
		t.Fatalf("Settle: %v", err)
	}
	if len(backend.settleReqs) != 1 || len(backend.payReqs) != 0 {
		t.Errorf("settle=%d pay=%d, want 1/0", len(backend.settleReqs), len(backend.payReqs))
	}
}
