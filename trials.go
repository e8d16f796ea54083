package main

import (
	"fmt"
	"log"
	"sync"
)

// RunTrials fires n independent oracle calls over the same payload and
// waits for all of them. Each trial writes only its own result slot, so
// trials never influence one another. A failed or unparseable call leaves
// its slot empty instead of failing the batch.
func RunTrials(oracle Oracle, payload AssignmentPayload, n int, temperature float64) ([]TrialResult, LLMUsage) {
	systemPrompt, userPrompt := buildAssignmentPrompts(payload)
	validNames := payload.EngineerNames()

	results := make([]TrialResult, n)
	usages := make([]LLMUsage, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx] = TrialResult{Trial: idx}

			responseText, usage, err := oracle.Complete(systemPrompt, userPrompt, temperature)
			usages[idx] = usage
			if err != nil {
				log.Printf("trial %d failed: %v", idx, err)
				return
			}
			votes, parseErr := parseAssignmentResponse(responseText, validNames)
			if parseErr != nil {
				log.Printf("trial %d unparseable: %v", idx, parseErr)
				return
			}
			results[idx].Votes = votes
		}(i)
	}
	wg.Wait()

	total := LLMUsage{}
	for _, u := range usages {
		total.Add(u)
	}
	return results, total
}

// CountValidTrials returns how many trials produced any usable mapping.
func CountValidTrials(trials []TrialResult) int {
	valid := 0
	for _, t := range trials {
		if !t.Empty() {
			valid++
		}
	}
	return valid
}

// RunFallback makes one sequential oracle call and converts its mapping
// directly into final recommendations. Used only when every trial failed:
// with zero data points there is no majority to compute, so the single
// call's answer is returned as-is with confidence 1/1. Tickets the call
// does not cover get the sentinel.
func RunFallback(oracle Oracle, payload AssignmentPayload, temperature float64, verbose bool) ([]AssignmentRecommendation, LLMUsage, error) {
	systemPrompt, userPrompt := buildAssignmentPrompts(payload)

	responseText, usage, err := oracle.Complete(systemPrompt, userPrompt, temperature)
	if err != nil {
		return nil, usage, fmt.Errorf("fallback call: %w", err)
	}
	votes, parseErr := parseAssignmentResponse(responseText, payload.EngineerNames())
	if parseErr != nil {
		return nil, usage, fmt.Errorf("fallback call: %w", parseErr)
	}

	recs := make([]AssignmentRecommendation, 0, len(payload.Tickets))
	for _, t := range payload.Tickets {
		rec := AssignmentRecommendation{
			TicketKey:   t.Key,
			Category:    t.Category,
			Summary:     t.Summary,
			Engineer:    UnableToDetermine,
			ValidTrials: 1,
		}
		if vote, ok := votes[t.Key]; ok {
			rec.Engineer = vote.Engineer
			rec.Votes = 1
			if verbose {
				rec.Rationale = vote.Rationale
			}
		}
		recs = append(recs, rec)
	}
	return recs, usage, nil
}
