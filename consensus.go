package main

import (
	"log"
)

// AggregateTrials collapses the trial results into exactly one
// recommendation per input ticket by majority vote. The winner is the
// first engineer name to reach the maximum vote count while scanning
// trials in index order, which makes ties deterministic regardless of how
// the trials completed. The confidence denominator is the number of valid
// trials, not the number requested.
func AggregateTrials(tickets []GroomingTicket, trials []TrialResult) []AssignmentRecommendation {
	valid := CountValidTrials(trials)

	recs := make([]AssignmentRecommendation, 0, len(tickets))
	for _, t := range tickets {
		counts := make(map[string]int)
		winner := ""
		best := 0
		for _, trial := range trials {
			if trial.Empty() {
				continue
			}
			vote, ok := trial.Votes[t.Key]
			if !ok {
				continue
			}
			counts[vote.Engineer]++
			if counts[vote.Engineer] > best {
				best = counts[vote.Engineer]
				winner = vote.Engineer
			}
		}

		rec := AssignmentRecommendation{
			TicketKey:   t.Key,
			Category:    t.Category,
			Summary:     t.Summary,
			Engineer:    winner,
			Votes:       best,
			ValidTrials: valid,
		}
		if best == 0 {
			rec.Engineer = UnableToDetermine
		}
		recs = append(recs, rec)
	}
	return recs
}

// EnrichRationale makes one oracle call, after consensus is fixed, to
// attach a short justification to each decided recommendation. Any failure
// is absorbed: winners and confidence are never altered, and the
// recommendations are returned unchanged without rationale.
func EnrichRationale(oracle Oracle, payload AssignmentPayload, recs []AssignmentRecommendation) ([]AssignmentRecommendation, LLMUsage) {
	var decided []AssignmentRecommendation
	for _, r := range recs {
		if r.Engineer != UnableToDetermine {
			decided = append(decided, r)
		}
	}
	if len(decided) == 0 {
		return recs, LLMUsage{}
	}

	systemPrompt, userPrompt := buildRationalePrompts(payload, decided)
	responseText, usage, err := oracle.Complete(systemPrompt, userPrompt, 0)
	if err != nil {
		log.Printf("rationale enrichment failed (non-fatal): %v", err)
		return recs, usage
	}
	rationales, parseErr := parseRationaleResponse(responseText)
	if parseErr != nil {
		log.Printf("rationale enrichment unparseable (non-fatal): %v", parseErr)
		return recs, usage
	}

	out := make([]AssignmentRecommendation, len(recs))
	copy(out, recs)
	for i := range out {
		if out[i].Engineer == UnableToDetermine {
			continue
		}
		if text, ok := rationales[out[i].TicketKey]; ok {
			out[i].Rationale = text
		}
	}
	return out, usage
}
