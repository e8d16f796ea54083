package main

const maxSiblingExamples = 3

// BuildContinuitySignals cross-references grooming tickets against each
// engineer's history and emits one signal per (ticket, engineer) pair with
// at least one sibling ticket under the same parent. A history record that
// is the grooming ticket itself never counts as its own sibling.
func BuildContinuitySignals(tickets []GroomingTicket, profiles []EngineerProfile) []EpicContinuitySignal {
	var signals []EpicContinuitySignal
	for _, t := range tickets {
		if t.ParentKey == "" {
			continue
		}
		for _, p := range profiles {
			count := 0
			epicSummary := t.ParentSummary
			var examples []string
			for _, h := range p.History {
				if h.ParentKey != t.ParentKey || h.Key == t.Key {
					continue
				}
				count++
				if len(examples) < maxSiblingExamples {
					examples = append(examples, h.Key)
				}
				if epicSummary == "" {
					epicSummary = h.ParentSummary
				}
			}
			if count == 0 {
				continue
			}
			signals = append(signals, EpicContinuitySignal{
				TicketKey:    t.Key,
				Engineer:     p.Name,
				EpicKey:      t.ParentKey,
				EpicSummary:  epicSummary,
				SiblingCount: count,
				SiblingKeys:  examples,
			})
		}
	}
	return signals
}
