// Package store holds the single source of truth for one analysis session.
//
// Every mutation goes through a named action and yields a new immutable
// Snapshot. Subscribers are notified after each change, in subscription order.
package store

import (
	"sync"

	"pricing-detective/core/types"
)

// Phase is the lifecycle phase of the current analysis cycle
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseAnalyzing Phase = "analyzing"
	PhaseSuccess   Phase = "success"
	PhaseError     Phase = "error"
)

// OutcomeKind tags the analysis outcome
type OutcomeKind int

const (
	OutcomeNone OutcomeKind = iota
	OutcomeSuccess
	OutcomeFailure
)

// Outcome is exactly one of none, success(result) or failure(message)
type Outcome struct {
	kind    OutcomeKind
	result  *types.AnalysisResult
	message string
}

// Kind returns which variant the outcome holds
func (o Outcome) Kind() OutcomeKind { return o.kind }

// Result returns the result of a successful outcome
func (o Outcome) Result() (*types.AnalysisResult, bool) {
	return o.result, o.kind == OutcomeSuccess
}

// Message returns the message of a failed outcome
func (o Outcome) Message() (string, bool) {
	return o.message, o.kind == OutcomeFailure
}

// Success builds a success outcome
func Success(result *types.AnalysisResult) Outcome {
	return Outcome{kind: OutcomeSuccess, result: result}
}

// Failure builds a failure outcome
func Failure(message string) Outcome {
	return Outcome{kind: OutcomeFailure, message: message}
}

// Snapshot is an immutable view of the session. The result it points to
// is shared between snapshots and must be treated as read-only.
type Snapshot struct {
	Content   string
	ToolName  string
	Language  string
	Analyzing bool
	Outcome   Outcome
	Trial     *types.TrialStatus
}

// Phase derives the lifecycle phase from the in-flight flag and outcome
func (s Snapshot) Phase() Phase {
	if s.Analyzing {
		return PhaseAnalyzing
	}
	switch s.Outcome.kind {
	case OutcomeSuccess:
		return PhaseSuccess
	case OutcomeFailure:
		return PhaseError
	default:
		return PhaseIdle
	}
}

// Result is a shorthand for Outcome.Result
func (s Snapshot) Result() *types.AnalysisResult {
	r, _ := s.Outcome.Result()
	return r
}

// Error is a shorthand for Outcome.Message
func (s Snapshot) Error() string {
	m, _ := s.Outcome.Message()
	return m
}

// TrialExhausted reports whether a known trial status has no analyses left
func (s Snapshot) TrialExhausted() bool {
	return s.Trial != nil && !s.Trial.HasRemaining()
}

// Listener observes snapshots after each change
type Listener func(Snapshot)

// Store is the state container for one session
type Store struct {
	mu        sync.Mutex
	snap      Snapshot
	listeners map[int]Listener
	order     []int
	nextID    int
	cycle     Ticket
}

// Ticket identifies one analysis cycle started by Begin
type Ticket uint64

// New creates a store in the idle state
func New(language string) *Store {
	language = types.NormalizeLanguage(language)
	return &Store{
		snap:      Snapshot{Language: language},
		listeners: make(map[int]Listener),
	}
}

// Snapshot returns the current state
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Subscribe registers l and returns a function that removes it
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.order = append(s.order, id)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
}

// SetContent replaces the pricing text
func (s *Store) SetContent(content string) Snapshot {
	return s.update(func(snap *Snapshot) bool {
		snap.Content = content
		return true
	})
}

// SetToolName replaces the tool name
func (s *Store) SetToolName(name string) Snapshot {
	return s.update(func(snap *Snapshot) bool {
		snap.ToolName = name
		return true
	})
}

// SetLanguage replaces the answer language
func (s *Store) SetLanguage(tag string) Snapshot {
	return s.update(func(snap *Snapshot) bool {
		snap.Language = types.NormalizeLanguage(tag)
		return true
	})
}

// Begin marks an analysis as in flight and clears the previous outcome.
// It reports false, changing nothing, when one is already in flight.
func (s *Store) Begin() (Ticket, Snapshot, bool) {
	return s.BeginIf(nil)
}

// BeginIf is Begin with an admission check that runs under the store lock
// against the state the cycle will use. A non-empty message from check is
// recorded as a failed outcome instead, and no cycle starts.
func (s *Store) BeginIf(check func(Snapshot) string) (Ticket, Snapshot, bool) {
	var ticket Ticket
	started := false
	snap := s.update(func(snap *Snapshot) bool {
		if snap.Analyzing {
			return false
		}
		if check != nil {
			if message := check(*snap); message != "" {
				snap.Outcome = Failure(message)
				return true
			}
		}
		s.cycle++
		ticket = s.cycle
		snap.Analyzing = true
		snap.Outcome = Outcome{}
		started = true
		return true
	})
	return ticket, snap, started
}

// Complete records the outcome of the cycle identified by t and clears the
// in-flight flag. Outcomes of cycles abandoned by Reset are dropped.
func (s *Store) Complete(t Ticket, outcome Outcome) (Snapshot, bool) {
	applied := false
	snap := s.update(func(snap *Snapshot) bool {
		if t != s.cycle || !snap.Analyzing {
			return false
		}
		snap.Analyzing = false
		snap.Outcome = outcome
		applied = true
		return true
	})
	return snap, applied
}

// Fail records an error outside an analysis cycle, such as a rejected input.
// It is ignored while an analysis is in flight.
func (s *Store) Fail(message string) Snapshot {
	return s.update(func(snap *Snapshot) bool {
		if snap.Analyzing {
			return false
		}
		snap.Outcome = Failure(message)
		return true
	})
}

// SetTrialStatus replaces the trial status
func (s *Store) SetTrialStatus(status types.TrialStatus) Snapshot {
	return s.update(func(snap *Snapshot) bool {
		snap.Trial = &status
		return true
	})
}

// Reset returns to idle, clearing the fields and the outcome. An analysis
// still in flight is abandoned. Trial status and language are kept; they
// describe the visitor, not the analysis.
func (s *Store) Reset() Snapshot {
	return s.update(func(snap *Snapshot) bool {
		if snap.Analyzing {
			s.cycle++
		}
		snap.Content = ""
		snap.ToolName = ""
		snap.Analyzing = false
		snap.Outcome = Outcome{}
		return true
	})
}

// update applies fn to a copy of the state and publishes it when fn reports a change
func (s *Store) update(fn func(*Snapshot) bool) Snapshot {
	s.mu.Lock()
	next := s.snap
	if !fn(&next) {
		s.mu.Unlock()
		return next
	}
	s.snap = next

	listeners := make([]Listener, 0, len(s.order))
	for _, id := range s.order {
		listeners = append(listeners, s.listeners[id])
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(next)
	}
	return next
}
