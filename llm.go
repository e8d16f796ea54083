package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-sonnet-4-5-20250929"
const defaultOpenAIModel = "gpt-4o-mini"

const maxSummaryChars = 80
const maxDescriptionChars = 300
const maxHistoryLines = 5

type LLMUsage struct {
	InputTokens              int64
	OutputTokens             int64
	CacheCreationInputTokens int64
	CacheReadInputTokens     int64
}

func (u LLMUsage) TotalTokens() int64 {
	return u.InputTokens + u.OutputTokens
}

func (u *LLMUsage) Add(other LLMUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.CacheCreationInputTokens += other.CacheCreationInputTokens
	u.CacheReadInputTokens += other.CacheReadInputTokens
}

// Oracle is the recommendation oracle: one completion over a serialized
// payload at a given sampling temperature. Implementations are expected to
// be non-deterministic; callers sample repeatedly and aggregate.
type Oracle interface {
	Complete(systemPrompt, userPrompt string, temperature float64) (string, LLMUsage, error)
}

// AssignmentPayload is the immutable input shared by every trial.
type AssignmentPayload struct {
	Tickets  []GroomingTicket
	Profiles []EngineerProfile
	Signals  []EpicContinuitySignal
}

// EngineerNames returns the set of valid assignee names in the payload.
func (p AssignmentPayload) EngineerNames() map[string]bool {
	names := make(map[string]bool, len(p.Profiles))
	for _, profile := range p.Profiles {
		names[profile.Name] = true
	}
	return names
}

type llmOracle struct {
	cfg Config
}

func NewLLMOracle(cfg Config) Oracle {
	return llmOracle{cfg: cfg}
}

func (o llmOracle) Complete(systemPrompt, userPrompt string, temperature float64) (string, LLMUsage, error) {
	switch o.cfg.LLMProvider {
	case "openai":
		model := o.cfg.LLMModel
		if model == "" {
			model = defaultOpenAIModel
		}
		log.Printf("llm completion provider=openai model=%s temperature=%.2f", model, temperature)
		return callOpenAI(o.cfg.OpenAIAPIKey, model, systemPrompt, userPrompt, temperature)
	default:
		model := o.cfg.LLMModel
		if model == "" {
			model = defaultAnthropicModel
		}
		log.Printf("llm completion provider=anthropic model=%s temperature=%.2f", model, temperature)
		return callAnthropic(o.cfg.AnthropicAPIKey, model, systemPrompt, userPrompt, temperature)
	}
}

// --- Assignment prompt ---

func buildAssignmentPrompts(payload AssignmentPayload) (string, string) {
	systemPrompt := `You assign pending software tickets to engineers for grooming.
For each ticket choose exactly one engineer from the candidate list, weighing in order:
1. Epic continuity: an engineer with prior work on sibling tickets under the same epic is the strongest candidate.
2. Specialization: match ticket components and labels against each engineer's specializations.
3. Current workload: when otherwise even, prefer engineers with fewer active tickets.

Every ticket must get exactly one engineer. Use engineer names exactly as listed.

Respond with JSON only (no markdown):
[{"ticket": "ABC-123", "engineer": "Alice", "rationale": "one short sentence"}, ...]`

	userPrompt := "Candidate engineers:\n" + serializeProfiles(payload.Profiles) +
		"\nEpic continuity evidence:\n" + serializeSignals(payload.Signals) +
		"\nTickets to assign:\n" + serializeTickets(payload.Tickets)
	return systemPrompt, userPrompt
}

func serializeProfiles(profiles []EngineerProfile) string {
	var b strings.Builder
	for _, p := range profiles {
		specs := "none"
		if len(p.Specializations) > 0 {
			specs = strings.Join(p.Specializations, ", ")
		}
		b.WriteString(fmt.Sprintf("- %s | active tickets: %d | specializations: %s\n", p.Name, p.CurrentWorkload, specs))
		for i, h := range p.History {
			if i >= maxHistoryLines {
				break
			}
			b.WriteString(fmt.Sprintf("  recent: %s %s (%s)\n", h.Key, truncate(h.Summary, maxSummaryChars), h.Status))
		}
	}
	if b.Len() == 0 {
		return "none\n"
	}
	return b.String()
}

func serializeSignals(signals []EpicContinuitySignal) string {
	if len(signals) == 0 {
		return "none\n"
	}
	var b strings.Builder
	for _, s := range signals {
		epic := s.EpicKey
		if s.EpicSummary != "" {
			epic = fmt.Sprintf("%s (%s)", s.EpicKey, truncate(s.EpicSummary, maxSummaryChars))
		}
		b.WriteString(fmt.Sprintf("- %s: %s has worked on %d sibling ticket(s) under %s, e.g. %s\n",
			s.TicketKey, s.Engineer, s.SiblingCount, epic, strings.Join(s.SiblingKeys, ", ")))
	}
	return b.String()
}

func serializeTickets(tickets []GroomingTicket) string {
	var b strings.Builder
	for _, t := range tickets {
		b.WriteString(fmt.Sprintf("%s | %s | %s\n", t.Key, t.Category, truncate(t.Summary, maxSummaryChars)))
		if len(t.Labels) > 0 {
			b.WriteString(fmt.Sprintf("  labels: %s\n", strings.Join(t.Labels, ", ")))
		}
		if len(t.Components) > 0 {
			b.WriteString(fmt.Sprintf("  components: %s\n", strings.Join(t.Components, ", ")))
		}
		if t.ParentKey != "" {
			parent := t.ParentKey
			if t.ParentSummary != "" {
				parent = fmt.Sprintf("%s (%s)", t.ParentKey, truncate(t.ParentSummary, maxSummaryChars))
			}
			b.WriteString(fmt.Sprintf("  parent: %s\n", parent))
		}
		if desc := strings.TrimSpace(t.Description); desc != "" {
			b.WriteString(fmt.Sprintf("  description: %s\n", truncate(desc, maxDescriptionChars)))
		}
	}
	return b.String()
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > max {
		return string([]rune(s)[:max]) + "..."
	}
	return s
}

type assignmentVote struct {
	Ticket    string `json:"ticket"`
	Engineer  string `json:"engineer"`
	Rationale string `json:"rationale"`
}

// parseAssignmentResponse parses the oracle's free-form text into a
// ticket->vote map. Votes for names not in validNames are dropped rather
// than failing the trial; a response that parses but yields no usable vote
// leaves the trial empty.
func parseAssignmentResponse(responseText string, validNames map[string]bool) (map[string]TrialVote, error) {
	var parsed []assignmentVote
	if err := json.Unmarshal([]byte(stripMarkdownFences(responseText)), &parsed); err != nil {
		return nil, fmt.Errorf("parsing assignment response: %w (response: %s)", err, truncate(responseText, 512))
	}

	votes := make(map[string]TrialVote)
	for _, v := range parsed {
		key := strings.TrimSpace(v.Ticket)
		engineer := strings.TrimSpace(v.Engineer)
		if key == "" || engineer == "" {
			continue
		}
		if !validNames[engineer] {
			log.Printf("llm vote dropped: unknown engineer %q for ticket %s", engineer, key)
			continue
		}
		if _, dup := votes[key]; dup {
			continue
		}
		votes[key] = TrialVote{Engineer: engineer, Rationale: strings.TrimSpace(v.Rationale)}
	}
	return votes, nil
}

// --- Rationale prompt ---

func buildRationalePrompts(payload AssignmentPayload, recs []AssignmentRecommendation) (string, string) {
	systemPrompt := `You explain ticket assignments that have already been decided by majority vote.
Do not change any assignment. For each ticket/engineer pair below, write one short sentence
justifying the pairing using the engineer's epic continuity, specializations, or workload.

Respond with JSON only (no markdown):
[{"ticket": "ABC-123", "rationale": "one short sentence"}, ...]`

	var decided strings.Builder
	for _, r := range recs {
		decided.WriteString(fmt.Sprintf("- %s -> %s\n", r.TicketKey, r.Engineer))
	}

	userPrompt := "Candidate engineers:\n" + serializeProfiles(payload.Profiles) +
		"\nEpic continuity evidence:\n" + serializeSignals(payload.Signals) +
		"\nTickets:\n" + serializeTickets(payload.Tickets) +
		"\nDecided assignments:\n" + decided.String()
	return systemPrompt, userPrompt
}

type rationaleEntry struct {
	Ticket    string `json:"ticket"`
	Rationale string `json:"rationale"`
}

func parseRationaleResponse(responseText string) (map[string]string, error) {
	var parsed []rationaleEntry
	if err := json.Unmarshal([]byte(stripMarkdownFences(responseText)), &parsed); err != nil {
		return nil, fmt.Errorf("parsing rationale response: %w (response: %s)", err, truncate(responseText, 512))
	}
	out := make(map[string]string, len(parsed))
	for _, e := range parsed {
		key := strings.TrimSpace(e.Ticket)
		text := strings.TrimSpace(e.Rationale)
		if key != "" && text != "" {
			out[key] = text
		}
	}
	return out, nil
}

func stripMarkdownFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// --- Anthropic ---

func callAnthropic(apiKey, model, systemPrompt, userPrompt string, temperature float64) (string, LLMUsage, error) {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	message, err := client.Messages.New(context.Background(), anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   4096,
		Temperature: anthropic.Float(temperature),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt, CacheControl: anthropic.NewCacheControlEphemeralParam()},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		log.Printf("llm anthropic error: %v", err)
		return "", LLMUsage{}, fmt.Errorf("Anthropic API error: %w", err)
	}
	usage := LLMUsage{
		InputTokens:              message.Usage.InputTokens,
		OutputTokens:             message.Usage.OutputTokens,
		CacheCreationInputTokens: message.Usage.CacheCreationInputTokens,
		CacheReadInputTokens:     message.Usage.CacheReadInputTokens,
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			log.Printf("llm anthropic response size=%d tokens_in=%d tokens_out=%d cache_create=%d cache_read=%d", len(block.Text), usage.InputTokens, usage.OutputTokens, usage.CacheCreationInputTokens, usage.CacheReadInputTokens)
			return block.Text, usage, nil
		}
	}
	return "", usage, fmt.Errorf("no text content in Anthropic response")
}

// --- OpenAI ---

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
		TotalTokens      int64 `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func callOpenAI(apiKey, model, systemPrompt, userPrompt string, temperature float64) (string, LLMUsage, error) {
	reqBody := openAIRequest{
		Model: model,
		Messages: []openAIMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: temperature,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", LLMUsage{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequest("POST", "https://api.openai.com/v1/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", LLMUsage{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := externalHTTPClient.Do(req)
	if err != nil {
		log.Printf("llm openai error: %v", err)
		return "", LLMUsage{}, fmt.Errorf("OpenAI API error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", LLMUsage{}, fmt.Errorf("reading response: %w", err)
	}

	var openAIResp openAIResponse
	if err := json.Unmarshal(respBody, &openAIResp); err != nil {
		return "", LLMUsage{}, fmt.Errorf("parsing OpenAI response: %w", err)
	}

	if openAIResp.Error != nil {
		log.Printf("llm openai api error: %s", openAIResp.Error.Message)
		return "", LLMUsage{}, fmt.Errorf("OpenAI API error: %s", openAIResp.Error.Message)
	}

	if len(openAIResp.Choices) == 0 {
		return "", LLMUsage{}, fmt.Errorf("no choices in OpenAI response")
	}
	usage := LLMUsage{}
	if openAIResp.Usage != nil {
		usage.InputTokens = openAIResp.Usage.PromptTokens
		usage.OutputTokens = openAIResp.Usage.CompletionTokens
	}

	log.Printf("llm openai response size=%d tokens_in=%d tokens_out=%d", len(openAIResp.Choices[0].Message.Content), usage.InputTokens, usage.OutputTokens)
	return openAIResp.Choices[0].Message.Content, usage, nil
}
