// Package linking implements the member-linking protocol: resolving an
// invite code to a trip's free/not-free member partition and claiming one
// free slot for the current user.
package linking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/mmynk/tripwiser/internal/api"
	"github.com/mmynk/tripwiser/internal/models"
)

// MinCodeLength is the shortest invite code worth sending to the backend.
// Anything shorter resets the flow without a network call.
const MinCodeLength = 6

// State of one trip-join attempt.
type State string

const (
	StateIdle           State = "idle"
	StateCodeEntered    State = "code_entered"
	StateMembersLoading State = "members_loading"
	StateMembersLoaded  State = "members_loaded"
	StateLinking        State = "linking"
	StateLinked         State = "linked"
	StateLinkFailed     State = "link_failed"
)

var (
	// ErrNotFree rejects linking a name outside the free partition. Raised
	// locally, before any network call.
	ErrNotFree = errors.New("member is already claimed")

	// ErrNoMembersLoaded rejects linking before a partition was fetched.
	ErrNoMembersLoaded = errors.New("no member list loaded")
)

// MembersAPI is the slice of the Repository the coordinator needs.
type MembersAPI interface {
	GetMembers(ctx context.Context, req api.GetMembersRequest) (*models.MemberPartition, error)
	LinkMember(ctx context.Context, req api.LinkMemberRequest) (*models.MemberPartition, error)
}

// Coordinator drives one join attempt through its state machine. One
// coordinator per join screen; safe for concurrent observation.
type Coordinator struct {
	api    MembersAPI
	logger *slog.Logger

	mu        sync.Mutex
	state     State
	code      string
	partition *models.MemberPartition
	tripName  string
	lastErr   error
}

// New creates an idle coordinator.
func New(membersAPI MembersAPI) *Coordinator {
	return &Coordinator{
		api:    membersAPI,
		logger: slog.Default(),
		state:  StateIdle,
	}
}

// State returns the current machine state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Partition returns the member partition from the last successful load, or
// nil. Authoritative only as of that fetch.
func (c *Coordinator) Partition() *models.MemberPartition {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.partition
}

// Err returns the classification of the last failure, or nil.
func (c *Coordinator) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// EnterCode reacts to invite-code input. Codes shorter than MinCodeLength
// reset the machine to Idle and clear any loaded members without touching
// the network; full-length codes trigger the members load.
func (c *Coordinator) EnterCode(ctx context.Context, code string) (*models.MemberPartition, error) {
	code = strings.TrimSpace(code)

	c.mu.Lock()
	if len(code) < MinCodeLength {
		c.state = StateIdle
		c.code = ""
		c.partition = nil
		c.tripName = ""
		c.lastErr = nil
		c.mu.Unlock()
		return nil, nil
	}
	c.code = code
	c.state = StateCodeEntered
	// A full-length code immediately triggers the members load.
	c.state = StateMembersLoading
	c.mu.Unlock()

	partition, err := c.api.GetMembers(ctx, api.GetMembersRequest{InviteCode: code})

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = StateLinkFailed
		c.lastErr = classifyLoadError(err)
		c.logger.Warn("members load failed", "error", err)
		return nil, c.lastErr
	}
	c.state = StateMembersLoaded
	c.partition = partition
	c.tripName = partition.TripName
	c.lastErr = nil
	c.logger.Debug("members loaded",
		"trip", partition.TripName,
		"free", len(partition.Free),
		"claimed", len(partition.NotFree),
	)
	return partition, nil
}

// Link claims the given free member name for the current user. Names in the
// not-free partition are rejected locally — the call never reaches the
// backend. On failure the machine returns to MembersLoaded so the user can
// pick again; at-most-one-link-per-trip is enforced server-side and shows
// up here as a classified failure.
func (c *Coordinator) Link(ctx context.Context, name string) (string, error) {
	c.mu.Lock()
	if c.state != StateMembersLoaded || c.partition == nil {
		c.mu.Unlock()
		return "", ErrNoMembersLoaded
	}
	if !c.partition.IsFree(name) {
		c.mu.Unlock()
		return "", fmt.Errorf("%w: %q", ErrNotFree, name)
	}
	code := c.code
	c.state = StateLinking
	c.mu.Unlock()

	return c.finishLink(ctx, api.LinkMemberRequest{InviteCode: code, Name: name})
}

// LinkAuto claims a slot by user identity instead of a manual pick: the
// backend matches the caller to a member. Same machine, same failure
// classification.
func (c *Coordinator) LinkAuto(ctx context.Context, userID string) (string, error) {
	c.mu.Lock()
	if c.state != StateMembersLoaded || c.partition == nil {
		c.mu.Unlock()
		return "", ErrNoMembersLoaded
	}
	code := c.code
	c.state = StateLinking
	c.mu.Unlock()

	return c.finishLink(ctx, api.LinkMemberRequest{InviteCode: code, UserID: userID})
}

func (c *Coordinator) finishLink(ctx context.Context, req api.LinkMemberRequest) (string, error) {
	partition, err := c.api.LinkMember(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = StateMembersLoaded
		c.lastErr = classifyLinkError(err)
		c.logger.Warn("link failed", "error", err)
		return "", c.lastErr
	}
	c.state = StateLinked
	c.partition = partition
	c.tripName = partition.TripName
	c.lastErr = nil
	c.logger.Info("linked to trip", "trip", partition.TripName)
	return partition.TripName, nil
}

// classifyLoadError attaches a human-readable message to a members-load
// failure by HTTP status class.
func classifyLoadError(err error) error {
	switch {
	case api.IsValidation(err):
		return fmt.Errorf("invite code is malformed: %w", err)
	case api.IsNotFound(err):
		return fmt.Errorf("no trip matches that invite code: %w", err)
	case api.IsAuth(err):
		return fmt.Errorf("sign in to look up a trip: %w", err)
	default:
		return fmt.Errorf("could not load trip members: %w", err)
	}
}

func classifyLinkError(err error) error {
	switch {
	case api.IsValidation(err):
		return fmt.Errorf("invalid invite code or member name: %w", err)
	case api.IsAuth(err):
		return fmt.Errorf("sign in to join a trip: %w", err)
	case api.IsNotFound(err):
		return fmt.Errorf("trip not found: %w", err)
	default:
		return fmt.Errorf("could not link member: %w", err)
	}
}
