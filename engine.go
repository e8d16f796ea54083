package main

import (
	"fmt"
	"log"
	"time"
)

// Engine runs one consensus assignment pass: build profiles, build
// continuity signals, fan out trials, then either aggregate or fall back
// to a single call when every trial failed.
type Engine struct {
	cfg    Config
	oracle Oracle
}

func NewEngine(cfg Config, oracle Oracle) *Engine {
	return &Engine{cfg: cfg, oracle: oracle}
}

// Run produces one recommendation per ticket. It aborts only on the two
// fatal preconditions (no tickets, no engineer profiles); trial failures,
// rationale failures, and unresolved tickets are absorbed into the report.
func (e *Engine) Run(tickets []GroomingTicket, unresolved []string, history map[string][]HistoricalTicket) (*GroomingReport, error) {
	if len(tickets) == 0 {
		return nil, fmt.Errorf("no grooming tickets to assign")
	}

	profiles := BuildEngineerProfiles(history, ProfileOptions{
		ActiveStatuses: e.cfg.ActiveStatuses,
		GenericLabels:  e.cfg.GenericLabels,
		UnassignedName: e.cfg.UnassignedName,
	})
	if len(profiles) == 0 {
		return nil, fmt.Errorf("no engineer profiles available: nothing to vote over")
	}

	signals := BuildContinuitySignals(tickets, profiles)
	log.Printf("grooming run tickets=%d engineers=%d signals=%d trials=%d", len(tickets), len(profiles), len(signals), e.cfg.TrialCount)

	payload := AssignmentPayload{Tickets: tickets, Profiles: profiles, Signals: signals}

	report := &GroomingReport{
		RunAt:           time.Now(),
		Unresolved:      unresolved,
		Profiles:        profiles,
		RequestedTrials: e.cfg.TrialCount,
	}

	trials, usage := RunTrials(e.oracle, payload, e.cfg.TrialCount, e.cfg.TrialTemperature)
	report.Usage.Add(usage)
	report.ValidTrials = CountValidTrials(trials)

	if report.ValidTrials == 0 {
		log.Printf("all %d trials failed, falling back to a single call", e.cfg.TrialCount)
		recs, fbUsage, err := RunFallback(e.oracle, payload, e.cfg.TrialTemperature, e.cfg.VerboseRationale)
		report.Usage.Add(fbUsage)
		if err != nil {
			return nil, fmt.Errorf("all trials failed and fallback failed: %w", err)
		}
		report.UsedFallback = true
		report.Recommendations = recs
		return report, nil
	}

	log.Printf("trials settled valid=%d/%d", report.ValidTrials, e.cfg.TrialCount)
	recs := AggregateTrials(tickets, trials)
	if e.cfg.VerboseRationale {
		var rUsage LLMUsage
		recs, rUsage = EnrichRationale(e.oracle, payload, recs)
		report.Usage.Add(rUsage)
	}
	report.Recommendations = recs
	return report, nil
}
