package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// RenderAssignmentReport writes the per-engineer assignment table to w,
// grouped by engineer in profile order with the undetermined bucket last,
// followed by a warning block for any unresolved ticket keys.
func RenderAssignmentReport(w io.Writer, report *GroomingReport) {
	grouped := groupByEngineer(report)

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Engineer", "Ticket", "Category", "Summary", "Confidence"})

	first := true
	for _, group := range grouped {
		if !first {
			tw.AppendSeparator()
		}
		first = false
		for i, rec := range group.Recs {
			label := ""
			if i == 0 {
				label = group.Label
			}
			tw.AppendRow(table.Row{label, rec.TicketKey, rec.Category, truncate(rec.Summary, maxSummaryChars), rec.Confidence()})
			if rec.Rationale != "" {
				tw.AppendRow(table.Row{"", "", "", truncate(rec.Rationale, 100), ""})
			}
		}
	}
	tw.Render()

	if report.UsedFallback {
		fmt.Fprintf(w, "\nNote: all %d trials failed; results come from a single fallback call.\n", report.RequestedTrials)
	} else {
		fmt.Fprintf(w, "\nConsensus over %d/%d valid trials.\n", report.ValidTrials, report.RequestedTrials)
	}

	if len(report.Unresolved) > 0 {
		fmt.Fprintf(w, "\nWarning: %d ticket(s) could not be resolved: %s\n",
			len(report.Unresolved), strings.Join(report.Unresolved, ", "))
	}
}

type engineerGroup struct {
	Label string
	Recs  []AssignmentRecommendation
}

// groupByEngineer buckets recommendations by winner, in profile order,
// labeling each engineer with workload and specializations. The sentinel
// bucket, if any, sorts last.
func groupByEngineer(report *GroomingReport) []engineerGroup {
	byEngineer := make(map[string][]AssignmentRecommendation)
	for _, rec := range report.Recommendations {
		byEngineer[rec.Engineer] = append(byEngineer[rec.Engineer], rec)
	}

	var groups []engineerGroup
	for _, p := range report.Profiles {
		recs := byEngineer[p.Name]
		if len(recs) == 0 {
			continue
		}
		label := fmt.Sprintf("%s (active: %d)", p.Name, p.CurrentWorkload)
		if len(p.Specializations) > 0 {
			label = fmt.Sprintf("%s (active: %d, knows: %s)", p.Name, p.CurrentWorkload, strings.Join(p.Specializations, ", "))
		}
		groups = append(groups, engineerGroup{Label: label, Recs: recs})
	}
	if recs := byEngineer[UnableToDetermine]; len(recs) > 0 {
		groups = append(groups, engineerGroup{Label: UnableToDetermine, Recs: recs})
	}
	return groups
}

const historyListLimit = 10

// RenderRunHistory writes the recent-runs table followed by the most
// recent run's recommendations.
func RenderRunHistory(w io.Writer, runs []RunSummary, latest []AssignmentRecommendation) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No grooming runs recorded yet.")
		return
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Run", "At", "Tickets", "Valid Trials", "Fallback"})
	for _, r := range runs {
		fallback := ""
		if r.UsedFallback {
			fallback = "yes"
		}
		tw.AppendRow(table.Row{r.ID, r.RunAt.Format("2006-01-02 15:04"), r.TicketCount, r.ValidTrials, fallback})
	}
	tw.Render()

	if len(latest) == 0 {
		return
	}
	fmt.Fprintf(w, "\nLatest run (#%d):\n", runs[0].ID)
	lw := table.NewWriter()
	lw.SetOutputMirror(w)
	lw.AppendHeader(table.Row{"Ticket", "Category", "Engineer", "Confidence"})
	for _, rec := range latest {
		lw.AppendRow(table.Row{rec.TicketKey, rec.Category, rec.Engineer, rec.Confidence()})
	}
	lw.Render()
}

// BuildSlackSummary renders a compact plain-text version of the report for
// posting to the report channel.
func BuildSlackSummary(report *GroomingReport) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Grooming assignments (%d tickets, consensus over %d trials):\n",
		len(report.Recommendations), report.ValidTrials))
	if report.UsedFallback {
		b.WriteString("(all trials failed; single-call fallback)\n")
	}
	for _, group := range groupByEngineer(report) {
		b.WriteString(fmt.Sprintf("*%s*\n", group.Label))
		for _, rec := range group.Recs {
			b.WriteString(fmt.Sprintf("  • %s [%s] %s — %s\n", rec.TicketKey, rec.Confidence(), truncate(rec.Summary, maxSummaryChars), rec.Category))
		}
	}
	if len(report.Unresolved) > 0 {
		b.WriteString(fmt.Sprintf("Unresolved: %s\n", strings.Join(report.Unresolved, ", ")))
	}
	return b.String()
}
