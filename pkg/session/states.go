package session

// State names one phase of a session invocation. Every invocation starts at
// StateReceived and ends at StateClosed; each path emits activities in a
// fixed order because consumers render them as a chronological log.
type State string

const (
	// StateReceived - event accepted, acknowledgment emitted.
	StateReceived State = "RECEIVED"
	// StateCommandHandled - an @agent command was executed; nothing else runs.
	StateCommandHandled State = "COMMAND_HANDLED"
	// StateOutOfScope - the request is engineering work, declined.
	StateOutOfScope State = "OUT_OF_SCOPE"
	// StateInsufficientContext - a clarifying question was emitted instead of content.
	StateInsufficientContext State = "INSUFFICIENT_CONTEXT"
	// StateGenerating - collection, planning, and generation are running.
	StateGenerating State = "GENERATING"
	// StateClosed - terminal. Closure is implicit; no tracker call is made.
	StateClosed State = "CLOSED"
)

// validTransitions defines the session state machine.
//
//nolint:gochecknoglobals // state machine definition
var validTransitions = map[State][]State{
	StateReceived: {
		StateCommandHandled,
		StateOutOfScope,
		StateInsufficientContext,
		StateGenerating,
		StateClosed, // top-level failure before any gate
	},
	StateCommandHandled:      {StateClosed},
	StateOutOfScope:          {StateClosed},
	StateInsufficientContext: {StateClosed},
	StateGenerating:          {StateClosed},
	StateClosed:              {},
}

// IsValidTransition checks if a state transition is allowed.
func IsValidTransition(from, to State) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminalState checks if a state is terminal.
func IsTerminalState(state State) bool {
	return state == StateClosed
}
