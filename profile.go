package main

import (
	"sort"
	"strings"
)

const maxSpecComponents = 3
const maxSpecLabels = 2

// ProfileOptions carries the configured stoplists so tests and callers can
// substitute their own sets.
type ProfileOptions struct {
	ActiveStatuses []string
	GenericLabels  []string
	UnassignedName string
}

// BuildEngineerProfiles derives one EngineerProfile per engineer in the
// history map, skipping the pseudo-engineer that represents unassigned
// work. Engineers with zero history still get a profile. Output is sorted
// by name so downstream serialization is stable.
func BuildEngineerProfiles(history map[string][]HistoricalTicket, opts ProfileOptions) []EngineerProfile {
	active := lowerSet(opts.ActiveStatuses)
	generic := lowerSet(opts.GenericLabels)

	names := make([]string, 0, len(history))
	for name := range history {
		if opts.UnassignedName != "" && strings.EqualFold(name, opts.UnassignedName) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	profiles := make([]EngineerProfile, 0, len(names))
	for _, name := range names {
		records := history[name]
		profiles = append(profiles, EngineerProfile{
			Name:            name,
			History:         records,
			CurrentWorkload: countActive(records, active),
			Specializations: deriveSpecializations(records, generic),
		})
	}
	return profiles
}

func countActive(records []HistoricalTicket, active map[string]bool) int {
	count := 0
	for _, r := range records {
		if active[strings.ToLower(strings.TrimSpace(r.Status))] {
			count++
		}
	}
	return count
}

// deriveSpecializations ranks the most frequent components (top 3), then
// the most frequent non-generic labels (top 2), frequency descending with
// first-seen order breaking ties.
func deriveSpecializations(records []HistoricalTicket, generic map[string]bool) []string {
	var components, labels []string
	for _, r := range records {
		components = append(components, r.Components...)
		for _, l := range r.Labels {
			if !generic[strings.ToLower(strings.TrimSpace(l))] {
				labels = append(labels, l)
			}
		}
	}

	specs := topFrequent(components, maxSpecComponents)
	specs = append(specs, topFrequent(labels, maxSpecLabels)...)
	return specs
}

func topFrequent(values []string, limit int) []string {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	var order []string
	for i, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if counts[v] == 0 {
			firstSeen[v] = i
			order = append(order, v)
		}
		counts[v]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		if counts[order[i]] != counts[order[j]] {
			return counts[order[i]] > counts[order[j]]
		}
		return firstSeen[order[i]] < firstSeen[order[j]]
	})

	if len(order) > limit {
		order = order[:limit]
	}
	return order
}

func lowerSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[strings.ToLower(strings.TrimSpace(v))] = true
	}
	return set
}
