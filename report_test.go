package main

import (
	"strings"
	"testing"
	"time"
)

func reportFixture() *GroomingReport {
	return &GroomingReport{
		Recommendations: []AssignmentRecommendation{
			{TicketKey: "T-1", Category: "Bugs", Summary: "Fix checkout", Engineer: "Alice", Votes: 3, ValidTrials: 5, Rationale: "owns the payments epic"},
			{TicketKey: "T-2", Category: "Features", Summary: "Add export", Engineer: "Bob", Votes: 4, ValidTrials: 5},
			{TicketKey: "T-3", Category: "Bugs", Summary: "Mystery crash", Engineer: UnableToDetermine, Votes: 0, ValidTrials: 5},
		},
		Unresolved: []string{"T-404", "T-405"},
		Profiles: []EngineerProfile{
			{Name: "Alice", CurrentWorkload: 2, Specializations: []string{"cart", "payments"}},
			{Name: "Bob", CurrentWorkload: 1},
		},
		RequestedTrials: 5,
		ValidTrials:     5,
	}
}

func TestRenderAssignmentReport(t *testing.T) {
	var buf strings.Builder
	RenderAssignmentReport(&buf, reportFixture())
	out := buf.String()

	for _, fragment := range []string{
		"Alice (active: 2, knows: cart, payments)",
		"Bob (active: 1)",
		"T-1",
		"3/5",
		"owns the payments epic",
		UnableToDetermine,
		"Consensus over 5/5 valid trials",
		"T-404, T-405",
	} {
		if !strings.Contains(out, fragment) {
			t.Errorf("report missing %q\noutput:\n%s", fragment, out)
		}
	}

	if strings.Index(out, "Bob (active: 1)") > strings.Index(out, UnableToDetermine) {
		t.Errorf("the undetermined bucket must render last\noutput:\n%s", out)
	}
}

func TestRenderAssignmentReportFallbackNote(t *testing.T) {
	report := reportFixture()
	report.UsedFallback = true
	report.RequestedTrials = 5

	var buf strings.Builder
	RenderAssignmentReport(&buf, report)
	if !strings.Contains(buf.String(), "all 5 trials failed") {
		t.Fatalf("expected fallback note, got:\n%s", buf.String())
	}
}

func TestBuildSlackSummary(t *testing.T) {
	summary := BuildSlackSummary(reportFixture())

	for _, fragment := range []string{
		"3 tickets",
		"*Alice (active: 2, knows: cart, payments)*",
		"T-1 [3/5]",
		"Unresolved: T-404, T-405",
	} {
		if !strings.Contains(summary, fragment) {
			t.Errorf("slack summary missing %q\nsummary:\n%s", fragment, summary)
		}
	}
}

func TestRenderRunHistory(t *testing.T) {
	runs := []RunSummary{
		{ID: 2, RunAt: time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC), TicketCount: 3, ValidTrials: 5, UsedFallback: false},
		{ID: 1, RunAt: time.Date(2026, 8, 21, 9, 0, 0, 0, time.UTC), TicketCount: 2, ValidTrials: 0, UsedFallback: true},
	}
	latest := []AssignmentRecommendation{
		{TicketKey: "T-1", Category: "Bugs", Engineer: "Alice", Votes: 3, ValidTrials: 5},
	}

	var buf strings.Builder
	RenderRunHistory(&buf, runs, latest)
	out := buf.String()

	for _, fragment := range []string{
		"2026-08-28 09:00",
		"2026-08-21 09:00",
		"yes",
		"Latest run (#2):",
		"T-1",
		"3/5",
	} {
		if !strings.Contains(out, fragment) {
			t.Errorf("history missing %q\noutput:\n%s", fragment, out)
		}
	}
}

func TestRenderRunHistoryEmpty(t *testing.T) {
	var buf strings.Builder
	RenderRunHistory(&buf, nil, nil)
	if !strings.Contains(buf.String(), "No grooming runs recorded yet.") {
		t.Fatalf("expected empty-history message, got:\n%s", buf.String())
	}
}

func TestGroupByEngineerSkipsIdleEngineers(t *testing.T) {
	report := reportFixture()
	report.Profiles = append(report.Profiles, EngineerProfile{Name: "Carol"})

	groups := groupByEngineer(report)
	for _, g := range groups {
		if strings.HasPrefix(g.Label, "Carol") {
			t.Fatalf("engineers with no assignments must not get a group")
		}
	}
}
