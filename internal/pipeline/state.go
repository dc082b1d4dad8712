// File path: internal/pipeline/state.go
package pipeline

import "fmt"

// State tracks one entity's progress through the insight pipeline. The
// transitions are enumerated explicitly so the fallback-triggering
// conditions stay enumerable and testable instead of hiding in nested
// conditionals.
type State int

const (
	StatePending State = iota
	StateProviderCalled
	StateProviderCallFailed
	StateValidationSucceeded
	StateValidationFailed
	StateFallbackSynthesized
	StateRendered
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateProviderCalled:
		return "provider_called"
	case StateProviderCallFailed:
		return "provider_call_failed"
	case StateValidationSucceeded:
		return "validation_succeeded"
	case StateValidationFailed:
		return "validation_failed"
	case StateFallbackSynthesized:
		return "fallback_synthesized"
	case StateRendered:
		return "rendered"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var legalTransitions = map[State][]State{
	StatePending:             {StateProviderCalled},
	StateProviderCalled:      {StateValidationSucceeded, StateValidationFailed, StateProviderCallFailed},
	StateProviderCallFailed:  {StateFallbackSynthesized},
	StateValidationFailed:    {StateFallbackSynthesized},
	StateValidationSucceeded: {StateRendered},
	StateFallbackSynthesized: {StateRendered},
}

type machine struct {
	current State
}

func newMachine() *machine {
	return &machine{current: StatePending}
}

// advance moves the machine to next, returning an error on an illegal
// transition. An illegal transition is a programming defect and is
// surfaced, never swallowed.
func (m *machine) advance(next State) error {
	for _, allowed := range legalTransitions[m.current] {
		if allowed == next {
			m.current = next
			return nil
		}
	}
	return fmt.Errorf("illegal pipeline transition %s -> %s", m.current, next)
}
