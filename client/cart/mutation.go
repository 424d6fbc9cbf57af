package cart

// MutationState tracks one cart mutation through its lifecycle. Guest
// mutations commit as soon as local storage is written; authenticated
// mutations pass through AwaitingServer and end Committed or RolledBack
// depending on the server call.
type MutationState int

const (
	// MutationIdle means no mutation has run yet.
	MutationIdle MutationState = iota

	// MutationApplyingOptimistic means the local copy is being updated
	// ahead of any server confirmation.
	MutationApplyingOptimistic

	// MutationAwaitingServer means the optimistic update is visible locally
	// and the server call is in flight.
	MutationAwaitingServer

	// MutationCommitted means the mutation stuck: the server accepted it,
	// or the manager is in guest mode and storage is the authority.
	MutationCommitted

	// MutationRolledBack means the server rejected the mutation and the
	// pre-mutation snapshot was restored.
	MutationRolledBack
)

func (s MutationState) String() string {
	switch s {
	case MutationIdle:
		return "idle"
	case MutationApplyingOptimistic:
		return "applying-optimistic"
	case MutationAwaitingServer:
		return "awaiting-server"
	case MutationCommitted:
		return "committed"
	case MutationRolledBack:
		return "rolled-back"
	default:
		return "unknown"
	}
}

// mutation is the in-flight record for the manager's current operation.
// The manager mutex is held for the whole lifecycle, so there is at most
// one live mutation at a time and rollback never races a later mutation.
type mutation struct {
	state    MutationState
	snapshot *Cart
}

func (m *mutation) begin(snapshot *Cart) {
	m.state = MutationApplyingOptimistic
	m.snapshot = snapshot
}

func (m *mutation) awaitServer() {
	m.state = MutationAwaitingServer
}

func (m *mutation) commit() {
	m.state = MutationCommitted
	m.snapshot = nil
}

// rollback restores and returns the pre-mutation snapshot.
func (m *mutation) rollback() *Cart {
	m.state = MutationRolledBack
	snap := m.snapshot
	m.snapshot = nil
	return snap
}
