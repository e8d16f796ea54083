package main

import (
	"fmt"
	"time"
)

// UnableToDetermine is the sentinel engineer name used when no valid trial
// produced a recommendation for a ticket.
const UnableToDetermine = "Unable to determine"

// GroomingTicket is a unit of work pending assignment, merged from the
// ticket-list parser and the issue tracker. Immutable after construction.
type GroomingTicket struct {
	Key           string
	Category      string
	Summary       string
	Description   string
	Labels        []string
	Components    []string
	ParentKey     string
	ParentSummary string
}

// HistoricalTicket is one record from an engineer's work history.
type HistoricalTicket struct {
	Key           string
	Summary       string
	Status        string
	Labels        []string
	Components    []string
	ParentKey     string
	ParentSummary string
}

// EngineerProfile is the derived capability profile for one candidate
// assignee. History is ordered most recent first.
type EngineerProfile struct {
	Name            string
	History         []HistoricalTicket
	CurrentWorkload int
	Specializations []string
}

// EpicContinuitySignal records that an engineer has prior work under the
// same parent/epic as a grooming ticket. SiblingKeys holds up to three
// example sibling ticket keys in history order.
type EpicContinuitySignal struct {
	TicketKey    string
	Engineer     string
	EpicKey      string
	EpicSummary  string
	SiblingCount int
	SiblingKeys  []string
}

// TrialVote is one trial's proposed assignee for one ticket.
type TrialVote struct {
	Engineer  string
	Rationale string
}

// TrialResult holds one trial's complete ticket->engineer mapping. A failed
// or unparseable trial keeps a nil Votes map.
type TrialResult struct {
	Trial int
	Votes map[string]TrialVote
}

func (r TrialResult) Empty() bool {
	return len(r.Votes) == 0
}

// AssignmentRecommendation is the final per-ticket output.
type AssignmentRecommendation struct {
	TicketKey   string
	Category    string
	Summary     string
	Engineer    string
	Votes       int
	ValidTrials int
	Rationale   string
}

// Confidence renders votes over valid trials, e.g. "3/5".
func (r AssignmentRecommendation) Confidence() string {
	return fmt.Sprintf("%d/%d", r.Votes, r.ValidTrials)
}

// GroomingReport is the full result of one engine run: one recommendation
// per resolved ticket, the ticket keys the tracker could not resolve, and
// the engineer profiles the run voted over.
type GroomingReport struct {
	RunAt           time.Time
	Recommendations []AssignmentRecommendation
	Unresolved      []string
	Profiles        []EngineerProfile
	RequestedTrials int
	ValidTrials     int
	UsedFallback    bool
	Usage           LLMUsage
}

// TicketRef is one entry from the parsed grooming list: a ticket key plus
// the category heading it appeared under.
type TicketRef struct {
	Key      string
	Category string
}
