package viewmodel

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mmynk/tripwiser/internal/linking"
	"github.com/mmynk/tripwiser/internal/models"
)

// JoinTripSnapshot is the observable state of the join screen.
type JoinTripSnapshot struct {
	Loading      bool
	ErrorMessage string
	State        linking.State
	Partition    *models.MemberPartition
	LinkedTrip   string // set once linked; navigation trigger
}

// JoinTrip wraps the linking coordinator for the join-trip screen, turning
// its state machine and classified errors into loading/error/data facets.
type JoinTrip struct {
	coord  *linking.Coordinator
	logger *slog.Logger

	mu         sync.Mutex
	loading    bool
	errMsg     string
	linkedTrip string
}

// NewJoinTrip creates the orchestrator for one join attempt.
func NewJoinTrip(membersAPI linking.MembersAPI) *JoinTrip {
	return &JoinTrip{coord: linking.New(membersAPI), logger: slog.Default()}
}

// Snapshot returns the current observable state.
func (vm *JoinTrip) Snapshot() JoinTripSnapshot {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return JoinTripSnapshot{
		Loading:      vm.loading,
		ErrorMessage: vm.errMsg,
		State:        vm.coord.State(),
		Partition:    vm.coord.Partition(),
		LinkedTrip:   vm.linkedTrip,
	}
}

// OnCodeChanged reacts to each keystroke of invite-code input. Short codes
// reset the screen silently; full-length codes load the member partition.
func (vm *JoinTrip) OnCodeChanged(ctx context.Context, code string) {
	vm.mu.Lock()
	vm.loading = true
	vm.mu.Unlock()

	_, err := vm.coord.EnterCode(ctx, code)

	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.loading = false
	if err != nil {
		vm.errMsg = err.Error()
		return
	}
	vm.errMsg = ""
}

// LinkSelected claims the manually picked free member name.
func (vm *JoinTrip) LinkSelected(ctx context.Context, name string) {
	vm.link(ctx, func(ctx context.Context) (string, error) {
		return vm.coord.Link(ctx, name)
	})
}

// LinkByIdentity claims a slot automatically from the user's identity.
func (vm *JoinTrip) LinkByIdentity(ctx context.Context, userID string) {
	vm.link(ctx, func(ctx context.Context) (string, error) {
		return vm.coord.LinkAuto(ctx, userID)
	})
}

func (vm *JoinTrip) link(ctx context.Context, do func(context.Context) (string, error)) {
	vm.mu.Lock()
	vm.loading = true
	vm.mu.Unlock()

	tripName, err := do(ctx)

	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.loading = false
	if err != nil {
		vm.errMsg = err.Error()
		return
	}
	vm.errMsg = ""
	vm.linkedTrip = tripName
}
