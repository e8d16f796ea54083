package main

import (
	"testing"
)

func TestIsTeamMember(t *testing.T) {
	cfg := Config{TeamMembers: []string{"Alice Smith", " Bob Jones "}}

	tests := []struct {
		name string
		want bool
	}{
		{"Alice Smith", true},
		{"alice smith", true},
		{" ALICE SMITH ", true},
		{"Bob Jones", true},
		{"Mallory", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := cfg.IsTeamMember(tt.name); got != tt.want {
			t.Errorf("IsTeamMember(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSlackConfigured(t *testing.T) {
	if (Config{}).SlackConfigured() {
		t.Errorf("empty config must not report slack configured")
	}
	if (Config{SlackBotToken: "xoxb-1"}).SlackConfigured() {
		t.Errorf("token without channel must not report slack configured")
	}
	cfg := Config{SlackBotToken: "xoxb-1", ReportChannelID: "C123"}
	if !cfg.SlackConfigured() {
		t.Errorf("token plus channel must report slack configured")
	}
}

func TestEnvOverrideHelpers(t *testing.T) {
	t.Setenv("GROOMBOT_TEST_STR", "override")
	str := "original"
	envOverride(&str, "GROOMBOT_TEST_STR")
	if str != "override" {
		t.Errorf("envOverride = %q, want override", str)
	}

	str2 := "kept"
	envOverride(&str2, "GROOMBOT_TEST_UNSET")
	if str2 != "kept" {
		t.Errorf("unset env var must not override, got %q", str2)
	}

	t.Setenv("GROOMBOT_TEST_INT", "7")
	n := 1
	envOverrideInt(&n, "GROOMBOT_TEST_INT")
	if n != 7 {
		t.Errorf("envOverrideInt = %d, want 7", n)
	}

	t.Setenv("GROOMBOT_TEST_FLOAT", "0.8")
	f := 0.1
	envOverrideFloat(&f, "GROOMBOT_TEST_FLOAT")
	if f != 0.8 {
		t.Errorf("envOverrideFloat = %f, want 0.8", f)
	}

	t.Setenv("GROOMBOT_TEST_BOOL", "true")
	b := false
	envOverrideBool(&b, "GROOMBOT_TEST_BOOL")
	if !b {
		t.Errorf("envOverrideBool = %v, want true", b)
	}
}

func TestDefaultStoplists(t *testing.T) {
	active := lowerSet(DefaultActiveStatuses())
	for _, status := range []string{"in progress", "in review", "qa"} {
		if !active[status] {
			t.Errorf("expected %q in default active statuses", status)
		}
	}
	if active["done"] {
		t.Errorf("done must not be an active status")
	}

	generic := lowerSet(DefaultGenericLabels())
	for _, label := range []string{"bug", "feature", "tech-debt"} {
		if !generic[label] {
			t.Errorf("expected %q in default generic labels", label)
		}
	}
}
