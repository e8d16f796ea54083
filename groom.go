package main

import (
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// RunGrooming executes one full grooming pass: parse the ticket list,
// resolve tickets and history against Jira, run the consensus engine,
// persist the snapshot, render to stdout, and deliver to Slack when
// configured. Collaborator soft-failures (unresolved tickets, Slack post
// errors) are logged and absorbed.
func RunGrooming(cfg Config, db *sql.DB) error {
	refs, err := ParseTicketListFile(cfg.TicketListPath)
	if err != nil {
		return err
	}
	log.Printf("grooming list parsed path=%s tickets=%d", cfg.TicketListPath, len(refs))

	tickets, unresolved, err := FetchGroomingTickets(cfg, refs)
	if err != nil {
		return err
	}
	if len(unresolved) > 0 {
		log.Printf("grooming tickets unresolved=%d", len(unresolved))
	}
	if len(tickets) == 0 {
		return fmt.Errorf("no grooming tickets resolved; unresolved keys: %s", strings.Join(unresolved, ", "))
	}

	history, err := FetchEngineerHistory(cfg)
	if err != nil {
		return err
	}

	engine := NewEngine(cfg, NewLLMOracle(cfg))
	report, err := engine.Run(tickets, unresolved, history)
	if err != nil {
		return err
	}

	changes, err := recommendationChanges(db, report.Recommendations)
	if err != nil {
		log.Printf("recommendation change check error (non-fatal): %v", err)
	}
	for _, change := range changes {
		log.Printf("recommendation changed %s", change)
	}

	runID, err := SaveRun(db, report)
	if err != nil {
		return fmt.Errorf("saving run snapshot: %w", err)
	}
	log.Printf("grooming run saved id=%d recommendations=%d valid_trials=%d fallback=%v tokens=%d",
		runID, len(report.Recommendations), report.ValidTrials, report.UsedFallback, report.Usage.TotalTokens())

	RenderAssignmentReport(os.Stdout, report)

	if err := PostReportToSlack(cfg, BuildSlackSummary(report)); err != nil {
		log.Printf("slack delivery error (non-fatal): %v", err)
	}
	return nil
}

// recommendationChanges compares this run's winners against each ticket's
// most recently stored winner and describes the tickets whose
// recommendation moved to a different engineer.
func recommendationChanges(db *sql.DB, recs []AssignmentRecommendation) ([]string, error) {
	var changes []string
	for _, rec := range recs {
		previous, err := LastRecommendationFor(db, rec.TicketKey)
		if err != nil {
			return changes, err
		}
		if previous == "" || previous == rec.Engineer {
			continue
		}
		changes = append(changes, fmt.Sprintf("ticket=%s from=%s to=%s", rec.TicketKey, previous, rec.Engineer))
	}
	return changes, nil
}

// ShowRunHistory renders the stored run history: recent run summaries and
// the most recent run's recommendations.
func ShowRunHistory(w io.Writer, db *sql.DB) error {
	runs, err := ListRecentRuns(db, historyListLimit)
	if err != nil {
		return fmt.Errorf("loading run history: %w", err)
	}

	var latest []AssignmentRecommendation
	if len(runs) > 0 {
		latest, err = RecommendationsForRun(db, runs[0].ID)
		if err != nil {
			return fmt.Errorf("loading run %d: %w", runs[0].ID, err)
		}
	}

	RenderRunHistory(w, runs, latest)
	return nil
}
