package viewmodel

import (
	"context"
	"testing"

	"github.com/mmynk/tripwiser/internal/api"
	"github.com/mmynk/tripwiser/internal/models"
)

// fakeTripAPI serves canned responses; any err field short-circuits that
// endpoint.
type fakeTripAPI struct {
	trips      []models.Trip
	partition  *models.MemberPartition
	casualName string

	listErr    error
	casualErr  error
	membersErr error
	txErr      error
	settleErr  error

	deletedTrips []string
	deletedTxs   []string
}

func (f *fakeTripAPI) ListMyTrips(ctx context.Context, req api.ListTripsRequest) (*api.ListTripsResponse, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &api.ListTripsResponse{TotalCount: len(f.trips), Trips: f.trips}, nil
}

func (f *fakeTripAPI) GetCasualName(ctx context.Context, req api.GetCasualNameRequest) (*api.GetCasualNameResponse, error) {
	if f.casualErr != nil {
		return nil, f.casualErr
	}
	return &api.GetCasualNameResponse{Name: f.casualName}, nil
}

func (f *fakeTripAPI) GetMembers(ctx context.Context, req api.GetMembersRequest) (*models.MemberPartition, error) {
	if f.membersErr != nil {
		return nil, f.membersErr
	}
	return f.partition, nil
}

func (f *fakeTripAPI) GetTransactions(ctx context.Context, req api.GetTransactionsRequest) (*api.GetTransactionsResponse, error) {
	if f.txErr != nil {
		return nil, f.txErr
	}
	return &api.GetTransactionsResponse{
		TotalCount:   1,
		Transactions: []models.Transaction{{ID: "tx1", TripID: req.TripID, Amount: "10.00"}},
	}, nil
}

func (f *fakeTripAPI) GetSettlements(ctx context.Context, req api.GetSettlementsRequest) (*api.GetSettlementsResponse, error) {
	if f.settleErr != nil {
		return nil, f.settleErr
	}
	return &api.GetSettlementsResponse{
		Settlements: []models.Settlement{{From: "B", To: "A", Amount: "5.00"}},
	}, nil
}

func (f *fakeTripAPI) DeleteTrip(ctx context.Context, tripID string) (*api.MessageResponse, error) {
	f.deletedTrips = append(f.deletedTrips, tripID)
	return &api.MessageResponse{Message: "deleted"}, nil
}

func (f *fakeTripAPI) DeleteTransaction(ctx context.Context, transactionID string) (*api.MessageResponse, error) {
	f.deletedTxs = append(f.deletedTxs, transactionID)
	return &api.MessageResponse{Message: "deleted"}, nil
}

func fullBackend() *fakeTripAPI {
	return &fakeTripAPI{
		trips: []models.Trip{
			{TripID: "t1", TripName: "Goa 2025", InviteCode: "ABCDEF", Members: []string{"A", "B", "C"}},
		},
		partition: &models.MemberPartition{
			TripID:   "t1",
			TripName: "Goa 2025",
			Free:     []string{"A", "B"},
			NotFree:  []string{"C"},
		},
		casualName: "A",
	}
}

func TestTripDetailLoad(t *testing.T) {
	vm := NewTripDetail(fullBackend())
	vm.Load(context.Background(), "t1")

	snap := vm.Snapshot()
	if snap.Loading {
		t.Error("still loading after Load returned")
	}
	if snap.ErrorMessage != "" {
		t.Errorf("unexpected error: %q", snap.ErrorMessage)
	}
	if snap.Data.Trip == nil || snap.Data.Trip.TripID != "t1" {
		t.Fatalf("trip = %+v", snap.Data.Trip)
	}
	if snap.Data.CasualName != "A" {
		t.Errorf("casual name = %q", snap.Data.CasualName)
	}
	if snap.Data.Partition == nil {
		t.Error("partition missing")
	}
	if len(snap.Data.Transactions) != 1 || len(snap.Data.Settlements) != 1 {
		t.Errorf("tx=%d settlements=%d", len(snap.Data.Transactions), len(snap.Data.Settlements))
	}
}

// A failing casual-name lookup must not block the rest of the screen.
func TestCasualNameFailureIsNonBlocking(t *testing.T) {
	backend := fullBackend()
	backend.casualErr = api.Classify(404, "not linked")

	vm := NewTripDetail(backend)
	vm.Load(context.Background(), "t1")

	snap := vm.Snapshot()
	if snap.ErrorMessage != "" {
		t.Errorf("casual-name failure surfaced as blocking: %q", snap.ErrorMessage)
	}
	if snap.Data.Trip == nil {
		t.Error("independent trip fetch was aborted")
	}
	if snap.Data.CasualName != "" {
		t.Errorf("casual name = %q, want unresolved", snap.Data.CasualName)
	}
}

func TestMissingTripBlocksRendering(t *testing.T) {
	backend := fullBackend()
	backend.listErr = api.Classify(500, "down")

	vm := NewTripDetail(backend)
	vm.Load(context.Background(), "t1")

	snap := vm.Snapshot()
	if snap.ErrorMessage == "" {
		t.Error("missing trip produced no error message")
	}
	if snap.Data.Trip != nil {
		t.Error("trip set despite list failure")
	}
	// Siblings still ran.
	if len(snap.Data.Transactions) != 1 {
		t.Error("independent transactions fetch was aborted")
	}
}

func TestErrorMessageReplacedOnSuccess(t *testing.T) {
	backend := fullBackend()
	backend.settleErr = api.Classify(500, "down")

	vm := NewTripDetail(backend)
	vm.Load(context.Background(), "t1")
	if vm.Snapshot().ErrorMessage == "" {
		t.Fatal("expected settlement failure message")
	}

	backend.settleErr = nil
	vm.Load(context.Background(), "t1")
	if msg := vm.Snapshot().ErrorMessage; msg != "" {
		t.Errorf("stale error message survived a clean load: %q", msg)
	}
}

func TestResetDiscardsInFlightResults(t *testing.T) {
	vm := NewTripDetail(fullBackend())
	vm.Load(context.Background(), "t1")
	vm.Reset()

	snap := vm.Snapshot()
	if snap.Data.Trip != nil {
		t.Error("data survived reset")
	}
}

// free=[A,B], notFree=[C], self=A -> [B, C]: self excluded, partitions
// merged, free first.
func TestSelectableMembers(t *testing.T) {
	vm := NewTripDetail(fullBackend())
	vm.Load(context.Background(), "t1")

	got := vm.SelectableMembers("A")
	want := []string{"B", "C"}
	if len(got) != len(want) {
		t.Fatalf("SelectableMembers = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SelectableMembers = %v, want %v", got, want)
		}
	}
}

func TestDeleteTransactionRefetches(t *testing.T) {
	backend := fullBackend()
	vm := NewTripDetail(backend)
	vm.Load(context.Background(), "t1")

	vm.DeleteTransaction(context.Background(), "t1", "tx1")
	if len(backend.deletedTxs) != 1 || backend.deletedTxs[0] != "tx1" {
		t.Errorf("deletedTxs = %v", backend.deletedTxs)
	}
	// Data was re-fetched, not locally patched.
	if snap := vm.Snapshot(); snap.Data.Trip == nil {
		t.Error("re-fetch after delete did not repopulate the screen")
	}
}

func TestTripListLoadAndDelete(t *testing.T) {
	backend := fullBackend()
	vm := NewTripList(backend)

	vm.Load(context.Background(), 1)
	snap := vm.Snapshot()
	if snap.ErrorMessage != "" || len(snap.Trips) != 1 {
		t.Fatalf("snapshot = %+v", snap)
	}

	vm.Delete(context.Background(), "t1")
	if len(backend.deletedTrips) != 1 {
		t.Errorf("deletedTrips = %v", backend.deletedTrips)
	}
}

func TestTripListFailureKeepsPreviousPage(t *testing.T) {
	backend := fullBackend()
	vm := NewTripList(backend)
	vm.Load(context.Background(), 1)

	backend.listErr = api.Classify(500, "down")
	vm.Load(context.Background(), 2)

	snap := vm.Snapshot()
	if snap.ErrorMessage == "" {
		t.Error("failure produced no error message")
	}
	if len(snap.Trips) != 1 || snap.Page != 1 {
		t.Errorf("previous page lost: %+v", snap)
	}
}
