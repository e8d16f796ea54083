package main

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	JiraURL   string `yaml:"jira_url"`
	JiraEmail string `yaml:"jira_email"`
	JiraToken string `yaml:"jira_token"`

	TicketListPath string   `yaml:"ticket_list_path"`
	TeamMembers    []string `yaml:"team_members"`
	UnassignedName string   `yaml:"unassigned_name"`
	LookbackDays   int      `yaml:"lookback_days"`

	TrialCount       int     `yaml:"trial_count"`
	TrialTemperature float64 `yaml:"trial_temperature"`
	VerboseRationale bool    `yaml:"verbose_rationale"`

	LLMProvider     string `yaml:"llm_provider"`
	LLMModel        string `yaml:"llm_model"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	OpenAIAPIKey    string `yaml:"openai_api_key"`

	ActiveStatuses []string `yaml:"active_statuses"`
	GenericLabels  []string `yaml:"generic_labels"`

	DBPath          string `yaml:"db_path"`
	SlackBotToken   string `yaml:"slack_bot_token"`
	ReportChannelID string `yaml:"report_channel_id"`
	GroomSchedule   string `yaml:"groom_schedule"`
	Timezone        string `yaml:"timezone"`

	Location *time.Location `yaml:"-"`
}

func LoadConfig() Config {
	var cfg Config

	// Load from config.yaml if it exists
	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	// Env vars override YAML values
	envOverride(&cfg.JiraURL, "JIRA_URL")
	envOverride(&cfg.JiraEmail, "JIRA_EMAIL")
	envOverride(&cfg.JiraToken, "JIRA_TOKEN")
	envOverride(&cfg.TicketListPath, "TICKET_LIST_PATH")
	envOverride(&cfg.UnassignedName, "UNASSIGNED_NAME")
	envOverrideInt(&cfg.LookbackDays, "LOOKBACK_DAYS")
	envOverrideInt(&cfg.TrialCount, "TRIAL_COUNT")
	envOverrideFloat(&cfg.TrialTemperature, "TRIAL_TEMPERATURE")
	envOverrideBool(&cfg.VerboseRationale, "VERBOSE_RATIONALE")
	envOverride(&cfg.LLMProvider, "LLM_PROVIDER")
	envOverride(&cfg.LLMModel, "LLM_MODEL")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.ReportChannelID, "REPORT_CHANNEL_ID")
	envOverride(&cfg.GroomSchedule, "GROOM_SCHEDULE")
	envOverride(&cfg.Timezone, "TIMEZONE")

	if names := os.Getenv("TEAM_MEMBERS"); names != "" {
		cfg.TeamMembers = nil
		for _, name := range strings.Split(names, ",") {
			name = strings.TrimSpace(name)
			if name != "" {
				cfg.TeamMembers = append(cfg.TeamMembers, name)
			}
		}
	}

	// Defaults
	if cfg.LLMProvider == "" {
		cfg.LLMProvider = "anthropic"
	}
	if cfg.TrialCount == 0 {
		cfg.TrialCount = 5
	}
	if cfg.TrialTemperature == 0 {
		cfg.TrialTemperature = 1.0
	}
	if cfg.LookbackDays == 0 {
		cfg.LookbackDays = 90
	}
	if cfg.UnassignedName == "" {
		cfg.UnassignedName = "Unassigned"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./groombot.db"
	}
	if cfg.TicketListPath == "" {
		cfg.TicketListPath = "./grooming.md"
	}
	if len(cfg.ActiveStatuses) == 0 {
		cfg.ActiveStatuses = DefaultActiveStatuses()
	}
	if len(cfg.GenericLabels) == 0 {
		cfg.GenericLabels = DefaultGenericLabels()
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}

	// Validate required fields
	required := map[string]string{
		"jira_url":   cfg.JiraURL,
		"jira_email": cfg.JiraEmail,
		"jira_token": cfg.JiraToken,
	}
	for name, val := range required {
		if val == "" {
			log.Fatalf("Required config '%s' is not set (via config.yaml or env var)", name)
		}
	}
	if len(cfg.TeamMembers) == 0 {
		log.Fatalf("Required config 'team_members' is not set (via config.yaml or TEAM_MEMBERS)")
	}

	switch cfg.LLMProvider {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			log.Fatalf("anthropic_api_key is required when llm_provider=anthropic")
		}
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			log.Fatalf("openai_api_key is required when llm_provider=openai")
		}
	default:
		log.Fatalf("llm_provider must be 'anthropic' or 'openai', got '%s'", cfg.LLMProvider)
	}

	if cfg.TrialCount < 1 {
		log.Fatalf("invalid trial_count '%d': must be >= 1", cfg.TrialCount)
	}
	if cfg.TrialTemperature < 0 || cfg.TrialTemperature > 2 {
		log.Fatalf("invalid trial_temperature '%f': must be between 0 and 2", cfg.TrialTemperature)
	}
	if cfg.LookbackDays < 1 {
		log.Fatalf("invalid lookback_days '%d': must be >= 1", cfg.LookbackDays)
	}

	if strings.EqualFold(cfg.Timezone, "Local") {
		cfg.Location = time.Local
	} else {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			log.Fatalf("invalid timezone '%s': %v", cfg.Timezone, err)
		}
		cfg.Location = loc
	}

	return cfg
}

// DefaultActiveStatuses lists tracker statuses counted as in-flight work
// when deriving an engineer's current workload.
func DefaultActiveStatuses() []string {
	return []string{"in progress", "in development", "in review", "in testing", "testing", "qa", "in qa"}
}

// DefaultGenericLabels lists labels too broadly applied to say anything
// about specialization.
func DefaultGenericLabels() []string {
	return []string{"bug", "feature", "enhancement", "task", "story", "spike", "tech-debt", "backlog", "priority"}
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

func envOverrideFloat(field *float64, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

func envOverrideBool(field *bool, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseBool(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

func (c Config) IsTeamMember(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, member := range c.TeamMembers {
		if strings.ToLower(strings.TrimSpace(member)) == name {
			return true
		}
	}
	return false
}

func (c Config) SlackConfigured() bool {
	return c.SlackBotToken != "" && c.ReportChannelID != ""
}
