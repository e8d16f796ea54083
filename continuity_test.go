package main

import (
	"reflect"
	"testing"
)

func TestBuildContinuitySignalsCountsSiblings(t *testing.T) {
	tickets := []GroomingTicket{
		{Key: "T-5", ParentKey: "EPIC-1", ParentSummary: "Payments revamp"},
	}
	profiles := []EngineerProfile{
		{Name: "Alice", History: []HistoricalTicket{
			{Key: "T-1", ParentKey: "EPIC-1"},
			{Key: "T-2", ParentKey: "EPIC-1"},
			{Key: "T-3", ParentKey: "EPIC-9"},
		}},
	}

	signals := BuildContinuitySignals(tickets, profiles)
	if len(signals) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(signals))
	}
	s := signals[0]
	if s.TicketKey != "T-5" || s.Engineer != "Alice" {
		t.Fatalf("unexpected signal pair (%s, %s)", s.TicketKey, s.Engineer)
	}
	if s.SiblingCount != 2 {
		t.Fatalf("expected siblingCount 2, got %d", s.SiblingCount)
	}
	if s.EpicKey != "EPIC-1" || s.EpicSummary != "Payments revamp" {
		t.Fatalf("unexpected epic %s (%s)", s.EpicKey, s.EpicSummary)
	}
	if !reflect.DeepEqual(s.SiblingKeys, []string{"T-1", "T-2"}) {
		t.Fatalf("unexpected sibling examples %v", s.SiblingKeys)
	}
}

func TestBuildContinuitySignalsExcludesSelf(t *testing.T) {
	tickets := []GroomingTicket{
		{Key: "T-5", ParentKey: "EPIC-1"},
	}
	profiles := []EngineerProfile{
		{Name: "Alice", History: []HistoricalTicket{
			{Key: "T-5", ParentKey: "EPIC-1"},
		}},
	}
	signals := BuildContinuitySignals(tickets, profiles)
	if len(signals) != 0 {
		t.Fatalf("a ticket must not count as its own continuity evidence, got %d signals", len(signals))
	}
}

func TestBuildContinuitySignalsSkipsParentless(t *testing.T) {
	tickets := []GroomingTicket{
		{Key: "T-5"},
	}
	profiles := []EngineerProfile{
		{Name: "Alice", History: []HistoricalTicket{
			{Key: "T-1", ParentKey: "EPIC-1"},
		}},
	}
	if signals := BuildContinuitySignals(tickets, profiles); len(signals) != 0 {
		t.Fatalf("expected no signals for parentless tickets, got %d", len(signals))
	}
}

func TestBuildContinuitySignalsCapsExamples(t *testing.T) {
	tickets := []GroomingTicket{
		{Key: "T-9", ParentKey: "EPIC-2"},
	}
	profiles := []EngineerProfile{
		{Name: "Bob", History: []HistoricalTicket{
			{Key: "T-1", ParentKey: "EPIC-2"},
			{Key: "T-2", ParentKey: "EPIC-2"},
			{Key: "T-3", ParentKey: "EPIC-2"},
			{Key: "T-4", ParentKey: "EPIC-2"},
			{Key: "T-5", ParentKey: "EPIC-2"},
		}},
	}
	signals := BuildContinuitySignals(tickets, profiles)
	if len(signals) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(signals))
	}
	if signals[0].SiblingCount != 5 {
		t.Errorf("expected siblingCount 5, got %d", signals[0].SiblingCount)
	}
	if len(signals[0].SiblingKeys) != 3 {
		t.Errorf("expected 3 example keys, got %v", signals[0].SiblingKeys)
	}
}

func TestBuildContinuitySignalsEpicSummaryFromHistory(t *testing.T) {
	tickets := []GroomingTicket{
		{Key: "T-9", ParentKey: "EPIC-2"},
	}
	profiles := []EngineerProfile{
		{Name: "Bob", History: []HistoricalTicket{
			{Key: "T-1", ParentKey: "EPIC-2", ParentSummary: "Search rebuild"},
		}},
	}
	signals := BuildContinuitySignals(tickets, profiles)
	if len(signals) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(signals))
	}
	if signals[0].EpicSummary != "Search rebuild" {
		t.Fatalf("expected epic summary borrowed from history, got %q", signals[0].EpicSummary)
	}
}

func TestBuildContinuitySignalsMultipleEngineers(t *testing.T) {
	tickets := []GroomingTicket{
		{Key: "T-5", ParentKey: "EPIC-1"},
	}
	profiles := []EngineerProfile{
		{Name: "Alice", History: []HistoricalTicket{{Key: "T-1", ParentKey: "EPIC-1"}}},
		{Name: "Bob", History: []HistoricalTicket{{Key: "T-2", ParentKey: "EPIC-1"}}},
		{Name: "Carol", History: []HistoricalTicket{{Key: "T-3", ParentKey: "EPIC-7"}}},
	}
	signals := BuildContinuitySignals(tickets, profiles)
	if len(signals) != 2 {
		t.Fatalf("expected one signal per engineer with continuity, got %d", len(signals))
	}
}
