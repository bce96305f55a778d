package viewmodel

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mmynk/tripwiser/internal/api"
	"github.com/mmynk/tripwiser/internal/models"
)

const transactionsPageSize = 20

// TripDetailData is what the trip detail screen renders.
type TripDetailData struct {
	Trip             *models.Trip
	CasualName       string // the current user's display name in this trip; "" if unresolved
	Partition        *models.MemberPartition
	Transactions     []models.Transaction
	TransactionCount int
	Settlements      []models.Settlement
}

// TripDetailSnapshot is the observable state of the screen.
type TripDetailSnapshot struct {
	Loading      bool
	ErrorMessage string
	Data         TripDetailData
}

// TripDetail orchestrates the trip detail screen: casual name and trip are
// fetched concurrently (independent), the member partition follows the trip
// (it needs the invite code), transactions and settlements run alongside.
type TripDetail struct {
	api    TripAPI
	logger *slog.Logger

	mu      sync.Mutex
	gen     int // bumped on Reset; stale loads are discarded
	loading bool
	errMsg  string
	data    TripDetailData
}

// NewTripDetail creates the orchestrator for one trip detail screen.
func NewTripDetail(tripAPI TripAPI) *TripDetail {
	return &TripDetail{api: tripAPI, logger: slog.Default()}
}

// Snapshot returns the current observable state.
func (vm *TripDetail) Snapshot() TripDetailSnapshot {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return TripDetailSnapshot{Loading: vm.loading, ErrorMessage: vm.errMsg, Data: vm.data}
}

// Reset tears the screen down. In-flight loads keep running (no signal
// reaches dispatched calls) but their results are discarded on arrival.
func (vm *TripDetail) Reset() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.gen++
	vm.loading = false
	vm.errMsg = ""
	vm.data = TripDetailData{}
}

// Load fetches everything the screen needs. Independent fetches run
// concurrently and one failing does not abort the others; only a missing
// trip blocks rendering. The error message reflects the last recorded
// failure, or is cleared when the load was clean.
func (vm *TripDetail) Load(ctx context.Context, tripID string) {
	vm.mu.Lock()
	gen := vm.gen
	vm.loading = true
	vm.mu.Unlock()

	var (
		next       TripDetailData
		casualErr  error
		tripErr    error
		membersErr error
		txErr      error
		settleErr  error
	)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		resp, err := vm.api.GetCasualName(ctx, api.GetCasualNameRequest{TripID: tripID})
		if err != nil {
			casualErr = err
			return
		}
		next.CasualName = resp.Name
	}()

	// Trip then members: the members lookup needs the trip's invite code,
	// so it is sequenced behind the trip fetch.
	wg.Add(1)
	go func() {
		defer wg.Done()
		trip, err := vm.findTrip(ctx, tripID)
		if err != nil {
			tripErr = err
			return
		}
		next.Trip = trip
		partition, err := vm.api.GetMembers(ctx, api.GetMembersRequest{InviteCode: trip.InviteCode})
		if err != nil {
			membersErr = err
			return
		}
		next.Partition = partition
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		resp, err := vm.api.GetTransactions(ctx, api.GetTransactionsRequest{
			TripID:   tripID,
			Page:     1,
			PageSize: transactionsPageSize,
		})
		if err != nil {
			txErr = err
			return
		}
		next.Transactions = resp.Transactions
		next.TransactionCount = resp.TotalCount
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		resp, err := vm.api.GetSettlements(ctx, api.GetSettlementsRequest{TripID: tripID})
		if err != nil {
			settleErr = err
			return
		}
		next.Settlements = resp.Settlements
	}()

	wg.Wait()

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.gen != gen {
		// Screen was torn down while we were in flight.
		vm.logger.Debug("discarding stale trip detail load", "trip_id", tripID)
		return
	}
	vm.loading = false
	vm.data = next

	// Casual-name failures are non-blocking: the screen renders without a
	// resolved self name. Everything else replaces the single message.
	switch {
	case tripErr != nil:
		vm.errMsg = "could not load trip"
		vm.logger.Warn("trip load failed", "trip_id", tripID, "error", tripErr)
	case membersErr != nil:
		vm.errMsg = "could not load trip members"
		vm.logger.Warn("members load failed", "trip_id", tripID, "error", membersErr)
	case txErr != nil:
		vm.errMsg = "could not load transactions"
		vm.logger.Warn("transactions load failed", "trip_id", tripID, "error", txErr)
	case settleErr != nil:
		vm.errMsg = "could not load settlements"
		vm.logger.Warn("settlements load failed", "trip_id", tripID, "error", settleErr)
	default:
		vm.errMsg = ""
	}
	if casualErr != nil {
		vm.logger.Warn("casual name unresolved", "trip_id", tripID, "error", casualErr)
	}
}

// DeleteTransaction removes one transaction, then re-fetches the page: the
// local copy is stale the moment the mutation lands.
func (vm *TripDetail) DeleteTransaction(ctx context.Context, tripID, transactionID string) {
	if _, err := vm.api.DeleteTransaction(ctx, transactionID); err != nil {
		vm.mu.Lock()
		vm.errMsg = "could not delete transaction"
		vm.mu.Unlock()
		vm.logger.Warn("delete transaction failed", "transaction_id", transactionID, "error", err)
		return
	}
	vm.Load(ctx, tripID)
}

// SelectableMembers returns the names the current user can pay: both
// partitions merged in order (free first), with the user's own name
// excluded.
func (vm *TripDetail) SelectableMembers(currentUser string) []string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.data.Partition == nil {
		return nil
	}
	var out []string
	for _, name := range vm.data.Partition.Free {
		if name != currentUser {
			out = append(out, name)
		}
	}
	for _, name := range vm.data.Partition.NotFree {
		if name != currentUser {
			out = append(out, name)
		}
	}
	return out
}

// findTrip resolves a trip by ID. The backend has no get-by-id endpoint, so
// the trip list is paged through until the ID shows up.
func (vm *TripDetail) findTrip(ctx context.Context, tripID string) (*models.Trip, error) {
	const pageSize = 50
	for page := 1; ; page++ {
		resp, err := vm.api.ListMyTrips(ctx, api.ListTripsRequest{Page: page, PageSize: pageSize})
		if err != nil {
			return nil, err
		}
		for i := range resp.Trips {
			if resp.Trips[i].TripID == tripID {
				return &resp.Trips[i], nil
			}
		}
		if page*pageSize >= resp.TotalCount || len(resp.Trips) == 0 {
			return nil, &api.APIError{Kind: api.KindNotFound, Message: "trip not in listing"}
		}
	}
}
