package main

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

const defaultCategory = "Uncategorized"

var ticketKeyRe = regexp.MustCompile(`\b[A-Z][A-Z0-9]+-[0-9]+\b`)

// ParseTicketList extracts (ticket key, category) pairs from a grooming
// backlog text. Category headings are markdown headings or lines ending
// with a colon; every ticket key found on the lines below a heading
// belongs to that category. Duplicate keys keep their first category.
func ParseTicketList(content string) []TicketRef {
	category := defaultCategory
	seen := make(map[string]bool)
	var refs []TicketRef

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if heading, ok := parseCategoryHeading(trimmed); ok {
			category = heading
			continue
		}

		for _, key := range ticketKeyRe.FindAllString(trimmed, -1) {
			if seen[key] {
				continue
			}
			seen[key] = true
			refs = append(refs, TicketRef{Key: key, Category: category})
		}
	}
	return refs
}

// ParseTicketListFile reads and parses the grooming list at path.
func ParseTicketListFile(path string) ([]TicketRef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ticket list: %w", err)
	}
	refs := ParseTicketList(string(data))
	if len(refs) == 0 {
		return nil, fmt.Errorf("ticket list %s contains no ticket keys", path)
	}
	return refs, nil
}

func parseCategoryHeading(line string) (string, bool) {
	if strings.HasPrefix(line, "#") {
		heading := strings.TrimSpace(strings.TrimLeft(line, "# "))
		if heading != "" {
			return heading, true
		}
		return "", false
	}
	// "Bugs:" style headings, but not lines that carry ticket keys.
	if strings.HasSuffix(line, ":") && !ticketKeyRe.MatchString(line) {
		heading := strings.TrimSpace(strings.TrimSuffix(line, ":"))
		if heading != "" {
			return heading, true
		}
	}
	return "", false
}
