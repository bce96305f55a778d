package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mmynk/tripwiser/internal/models"
)

type CreateTripRequest struct {
	TripName    string   `json:"tripName"`
	Description string   `json:"description,omitempty"`
	Members     []string `json:"members"`
}

type CreateTripResponse struct {
	Message    string `json:"message"`
	TripID     string `json:"tripId"`
	InviteCode string `json:"inviteCode"`
}

type ListTripsRequest struct {
	Page     int
	PageSize int
}

type ListTripsResponse struct {
	TotalCount int           `json:"totalCount"`
	Trips      []models.Trip `json:"trips"`
}

type GetMembersRequest struct {
	InviteCode string `json:"inviteCode"`
}

// LinkMemberRequest claims a free member slot. Name is the manually picked
// slot; UserID is set instead for automatic linking, where the backend
// matches the slot from the caller's identity.
type LinkMemberRequest struct {
	InviteCode string `json:"inviteCode"`
	Name       string `json:"name,omitempty"`
	UserID     string `json:"userId,omitempty"`
}

// PayRequest records one payment from payer to receiver. Amount is a
// decimal string, transmitted untouched.
type PayRequest struct {
	TripID       string `json:"tripId"`
	PayerName    string `json:"payerName"`
	ReceiverName string `json:"receiverName"`
	Amount       string `json:"amount"`
	Description  string `json:"description,omitempty"`
}

type PayResponse struct {
	Message       string             `json:"message"`
	TransactionID string             `json:"transactionId"`
	Transaction   models.Transaction `json:"transaction"`
}

type GetTransactionsRequest struct {
	TripID   string `json:"tripId"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

type GetTransactionsResponse struct {
	TotalCount   int                  `json:"totalCount"`
	Transactions []models.Transaction `json:"transactions"`
}

type GetSettlementsRequest struct {
	TripID string `json:"tripId"`
}

type GetSettlementsResponse struct {
	Settlements []models.Settlement `json:"settlements"`
}

type GetCasualNameRequest struct {
	TripID string `json:"tripId"`
}

type GetCasualNameResponse struct {
	Name string `json:"name"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// CreateTrip creates a trip with the given member names and returns its
// invite code.
func (c *Client) CreateTrip(ctx context.Context, req CreateTripRequest) (*CreateTripResponse, error) {
	var resp CreateTripResponse
	if err := c.do(ctx, http.MethodPost, "trip/create", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListMyTrips returns one page of the caller's trips.
func (c *Client) ListMyTrips(ctx context.Context, req ListTripsRequest) (*ListTripsResponse, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(req.Page))
	query.Set("pageSize", strconv.Itoa(req.PageSize))

	var resp ListTripsResponse
	if err := c.do(ctx, http.MethodGet, "trip/getallmytrip", query, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetMembers resolves an invite code to the trip's free/not-free member
// partition. The partition is authoritative only as of this call.
func (c *Client) GetMembers(ctx context.Context, req GetMembersRequest) (*models.MemberPartition, error) {
	var resp models.MemberPartition
	if err := c.do(ctx, http.MethodPost, "trip/getmembers", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LinkMember claims a member slot and returns the refreshed partition.
func (c *Client) LinkMember(ctx context.Context, req LinkMemberRequest) (*models.MemberPartition, error) {
	var resp models.MemberPartition
	if err := c.do(ctx, http.MethodPost, "trip/linkmember", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Pay records a payment transaction.
func (c *Client) Pay(ctx context.Context, req PayRequest) (*PayResponse, error) {
	var resp PayResponse
	if err := c.do(ctx, http.MethodPost, "trip/pay", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Settle records a settlement transaction (a transfer clearing debt, as
// opposed to a shared expense).
func (c *Client) Settle(ctx context.Context, req PayRequest) (*PayResponse, error) {
	var resp PayResponse
	if err := c.do(ctx, http.MethodPost, "trip/settle", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetTransactions returns one page of a trip's transactions.
func (c *Client) GetTransactions(ctx context.Context, req GetTransactionsRequest) (*GetTransactionsResponse, error) {
	var resp GetTransactionsResponse
	if err := c.do(ctx, http.MethodPost, "trip/getAllTransaction", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetSettlements returns the server-computed settlement suggestions for a
// trip. Display-only: the client never recomputes these.
func (c *Client) GetSettlements(ctx context.Context, req GetSettlementsRequest) (*GetSettlementsResponse, error) {
	var resp GetSettlementsResponse
	if err := c.do(ctx, http.MethodPost, "trip/getsettlements", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetCasualName resolves the display name the current user is linked to
// within the trip.
func (c *Client) GetCasualName(ctx context.Context, req GetCasualNameRequest) (*GetCasualNameResponse, error) {
	var resp GetCasualNameResponse
	if err := c.do(ctx, http.MethodPost, "trip/getcasualname", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteTrip soft-deletes a trip.
func (c *Client) DeleteTrip(ctx context.Context, tripID string) (*MessageResponse, error) {
	var resp MessageResponse
	req := struct {
		TripID string `json:"tripId"`
	}{TripID: tripID}
	if err := c.do(ctx, http.MethodPost, "trip/deleteTrip", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteTransaction soft-deletes a transaction.
func (c *Client) DeleteTransaction(ctx context.Context, transactionID string) (*MessageResponse, error) {
	var resp MessageResponse
	req := struct {
		TransactionID string `json:"transactionId"`
	}{TransactionID: transactionID}
	if err := c.do(ctx, http.MethodPost, "trip/deleteTransaction", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
