// Package viewmodel holds the screen-scoped orchestrators: each sequences
// the Repository calls one screen needs and exposes a Snapshot of
// loading/error/data state for the rendering layer to observe.
//
// Error policy is uniform: one current error message per screen, replaced
// (never accumulated) and cleared by the next successful action. A failing
// call never aborts independent sibling calls; whatever data did arrive is
// kept.
package viewmodel

import (
	"context"

	"github.com/mmynk/tripwiser/internal/api"
	"github.com/mmynk/tripwiser/internal/models"
)

// TripAPI is the slice of the Repository the view models read from.
type TripAPI interface {
	ListMyTrips(ctx context.Context, req api.ListTripsRequest) (*api.ListTripsResponse, error)
	GetCasualName(ctx context.Context, req api.GetCasualNameRequest) (*api.GetCasualNameResponse, error)
	GetMembers(ctx context.Context, req api.GetMembersRequest) (*models.MemberPartition, error)
	GetTransactions(ctx context.Context, req api.GetTransactionsRequest) (*api.GetTransactionsResponse, error)
	GetSettlements(ctx context.Context, req api.GetSettlementsRequest) (*api.GetSettlementsResponse, error)
	DeleteTrip(ctx context.Context, tripID string) (*api.MessageResponse, error)
	DeleteTransaction(ctx context.Context, transactionID string) (*api.MessageResponse, error)
}
