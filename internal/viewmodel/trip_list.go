package viewmodel

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mmynk/tripwiser/internal/api"
	"github.com/mmynk/tripwiser/internal/models"
)

// DefaultPageSize is the trip list page size when the caller does not care.
const DefaultPageSize = 20

// TripListSnapshot is the observable state of the trip list screen.
type TripListSnapshot struct {
	Loading      bool
	ErrorMessage string
	Trips        []models.Trip
	TotalCount   int
	Page         int
}

// TripList orchestrates the "my trips" screen: paged listing plus trip
// deletion with re-fetch (the listing is stale the moment a mutation lands).
type TripList struct {
	api    TripAPI
	logger *slog.Logger

	mu       sync.Mutex
	loading  bool
	errMsg   string
	trips    []models.Trip
	total    int
	page     int
	pageSize int
}

// NewTripList creates the orchestrator for the trip list screen.
func NewTripList(tripAPI TripAPI) *TripList {
	return &TripList{
		api:      tripAPI,
		logger:   slog.Default(),
		pageSize: DefaultPageSize,
	}
}

// Snapshot returns the current observable state.
func (vm *TripList) Snapshot() TripListSnapshot {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return TripListSnapshot{
		Loading:      vm.loading,
		ErrorMessage: vm.errMsg,
		Trips:        vm.trips,
		TotalCount:   vm.total,
		Page:         vm.page,
	}
}

// Load fetches one page of trips. Failure keeps whatever page was already
// shown and replaces the error message; success clears it.
func (vm *TripList) Load(ctx context.Context, page int) {
	if page < 1 {
		page = 1
	}
	vm.mu.Lock()
	vm.loading = true
	vm.mu.Unlock()

	resp, err := vm.api.ListMyTrips(ctx, api.ListTripsRequest{Page: page, PageSize: vm.pageSize})

	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.loading = false
	if err != nil {
		vm.errMsg = "could not load trips"
		vm.logger.Warn("trip list load failed", "page", page, "error", err)
		return
	}
	vm.errMsg = ""
	vm.trips = resp.Trips
	vm.total = resp.TotalCount
	vm.page = page
}

// Delete soft-deletes a trip and re-fetches the current page.
func (vm *TripList) Delete(ctx context.Context, tripID string) {
	if _, err := vm.api.DeleteTrip(ctx, tripID); err != nil {
		vm.mu.Lock()
		vm.errMsg = "could not delete trip"
		vm.mu.Unlock()
		vm.logger.Warn("trip delete failed", "trip_id", tripID, "error", err)
		return
	}
	vm.mu.Lock()
	page := vm.page
	vm.mu.Unlock()
	if page < 1 {
		page = 1
	}
	vm.Load(ctx, page)
}
