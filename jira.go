package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
)

const jiraPageSize = 100

type jiraSearchResponse struct {
	StartAt    int         `json:"startAt"`
	MaxResults int         `json:"maxResults"`
	Total      int         `json:"total"`
	Issues     []jiraIssue `json:"issues"`
}

type jiraIssue struct {
	Key    string     `json:"key"`
	Fields jiraFields `json:"fields"`
}

type jiraFields struct {
	Summary     string          `json:"summary"`
	Description string          `json:"description"`
	Labels      []string        `json:"labels"`
	Components  []jiraComponent `json:"components"`
	Status      jiraStatus      `json:"status"`
	Assignee    *jiraUser       `json:"assignee"`
	Parent      *jiraParent     `json:"parent"`
}

type jiraComponent struct {
	Name string `json:"name"`
}

type jiraStatus struct {
	Name string `json:"name"`
}

type jiraUser struct {
	DisplayName string `json:"displayName"`
}

type jiraParent struct {
	Key    string `json:"key"`
	Fields struct {
		Summary string `json:"summary"`
	} `json:"fields"`
}

// FetchGroomingTickets resolves the parsed ticket refs against Jira and
// returns the tickets found plus the keys Jira did not return. Missing
// keys are reported, not fatal: the run proceeds with the found subset.
func FetchGroomingTickets(cfg Config, refs []TicketRef) ([]GroomingTicket, []string, error) {
	if len(refs) == 0 {
		return nil, nil, nil
	}

	categories := make(map[string]string, len(refs))
	keys := make([]string, 0, len(refs))
	for _, ref := range refs {
		keys = append(keys, ref.Key)
		categories[ref.Key] = ref.Category
	}

	jql := fmt.Sprintf("key in (%s)", strings.Join(keys, ","))
	log.Printf("jira fetch tickets requested=%d", len(keys))
	issues, err := searchJira(cfg, jql)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching grooming tickets: %w", err)
	}

	found := make(map[string]bool, len(issues))
	tickets := make([]GroomingTicket, 0, len(issues))
	for _, issue := range issues {
		found[issue.Key] = true
		t := GroomingTicket{
			Key:         issue.Key,
			Category:    categories[issue.Key],
			Summary:     issue.Fields.Summary,
			Description: issue.Fields.Description,
			Labels:      issue.Fields.Labels,
			Components:  componentNames(issue.Fields.Components),
		}
		if issue.Fields.Parent != nil {
			t.ParentKey = issue.Fields.Parent.Key
			t.ParentSummary = issue.Fields.Parent.Fields.Summary
		}
		tickets = append(tickets, t)
	}

	// Preserve ticket-list order for the found subset.
	ordered := make([]GroomingTicket, 0, len(tickets))
	byKey := make(map[string]GroomingTicket, len(tickets))
	for _, t := range tickets {
		byKey[t.Key] = t
	}
	var notFound []string
	for _, key := range keys {
		if t, ok := byKey[key]; ok {
			ordered = append(ordered, t)
		} else {
			notFound = append(notFound, key)
		}
	}

	log.Printf("jira fetch tickets done found=%d not_found=%d", len(ordered), len(notFound))
	return ordered, notFound, nil
}

// FetchEngineerHistory returns each team member's tickets from the
// lookback window, most recently updated first. Members with no matching
// tickets still get an entry so they are profiled with zero history.
func FetchEngineerHistory(cfg Config) (map[string][]HistoricalTicket, error) {
	quoted := make([]string, 0, len(cfg.TeamMembers))
	for _, member := range cfg.TeamMembers {
		quoted = append(quoted, fmt.Sprintf("%q", member))
	}
	jql := fmt.Sprintf("assignee in (%s) AND updated >= -%dd ORDER BY updated DESC",
		strings.Join(quoted, ","), cfg.LookbackDays)

	log.Printf("jira fetch history members=%d lookback_days=%d", len(cfg.TeamMembers), cfg.LookbackDays)
	issues, err := searchJira(cfg, jql)
	if err != nil {
		return nil, fmt.Errorf("fetching engineer history: %w", err)
	}

	history := make(map[string][]HistoricalTicket, len(cfg.TeamMembers))
	for _, member := range cfg.TeamMembers {
		history[member] = nil
	}
	for _, issue := range issues {
		if issue.Fields.Assignee == nil {
			continue
		}
		name := issue.Fields.Assignee.DisplayName
		if _, tracked := history[name]; !tracked {
			// Jira may return a display name that differs in case from the
			// configured one; map it back to the configured spelling.
			matched := ""
			for _, member := range cfg.TeamMembers {
				if strings.EqualFold(member, name) {
					matched = member
					break
				}
			}
			if matched == "" {
				continue
			}
			name = matched
		}
		h := HistoricalTicket{
			Key:        issue.Key,
			Summary:    issue.Fields.Summary,
			Status:     issue.Fields.Status.Name,
			Labels:     issue.Fields.Labels,
			Components: componentNames(issue.Fields.Components),
		}
		if issue.Fields.Parent != nil {
			h.ParentKey = issue.Fields.Parent.Key
			h.ParentSummary = issue.Fields.Parent.Fields.Summary
		}
		history[name] = append(history[name], h)
	}

	log.Printf("jira fetch history done issues=%d", len(issues))
	return history, nil
}

func searchJira(cfg Config, jql string) ([]jiraIssue, error) {
	var all []jiraIssue
	startAt := 0

	for {
		apiURL := fmt.Sprintf("%s/rest/api/2/search?jql=%s&fields=summary,description,labels,components,status,assignee,parent&maxResults=%d&startAt=%d&validateQuery=false",
			strings.TrimRight(cfg.JiraURL, "/"), url.QueryEscape(jql), jiraPageSize, startAt)

		req, err := http.NewRequest("GET", apiURL, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.SetBasicAuth(cfg.JiraEmail, cfg.JiraToken)
		req.Header.Set("Accept", "application/json")

		resp, err := externalHTTPClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("executing request: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading response: %w", err)
		}

		if resp.StatusCode != 200 {
			return nil, fmt.Errorf("Jira API returned %d: %s", resp.StatusCode, string(body))
		}

		var result jiraSearchResponse
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("parsing response: %w", err)
		}

		all = append(all, result.Issues...)

		startAt += len(result.Issues)
		if len(result.Issues) == 0 || startAt >= result.Total {
			break
		}
	}

	return all, nil
}

func componentNames(components []jiraComponent) []string {
	var names []string
	for _, c := range components {
		if c.Name != "" {
			names = append(names, c.Name)
		}
	}
	return names
}
