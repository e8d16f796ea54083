package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParseTicketListHeadings(t *testing.T) {
	content := `# Bugs
- SHOP-101 Checkout crashes on empty cart
- SHOP-102 Wrong currency in invoice email

Features:
SHOP-201 Export orders as CSV
`
	got := ParseTicketList(content)
	want := []TicketRef{
		{Key: "SHOP-101", Category: "Bugs"},
		{Key: "SHOP-102", Category: "Bugs"},
		{Key: "SHOP-201", Category: "Features"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseTicketList = %v, want %v", got, want)
	}
}

func TestParseTicketListDefaultsAndDedup(t *testing.T) {
	content := `SHOP-1 first mention
# Later section
SHOP-1 duplicate, keeps first category
SHOP-2
`
	got := ParseTicketList(content)
	want := []TicketRef{
		{Key: "SHOP-1", Category: "Uncategorized"},
		{Key: "SHOP-2", Category: "Later section"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseTicketList = %v, want %v", got, want)
	}
}

func TestParseTicketListMultipleKeysPerLine(t *testing.T) {
	got := ParseTicketList("Review:\nSHOP-1, SHOP-2 and SHOP-3")
	if len(got) != 3 {
		t.Fatalf("expected 3 refs, got %v", got)
	}
	for _, ref := range got {
		if ref.Category != "Review" {
			t.Fatalf("expected category Review, got %q", ref.Category)
		}
	}
}

func TestParseTicketListIgnoresNonKeys(t *testing.T) {
	got := ParseTicketList("some prose without keys\nlowercase abc-123 is not a key\n")
	if len(got) != 0 {
		t.Fatalf("expected no refs, got %v", got)
	}
}

func TestParseTicketListFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grooming.md")
	if err := os.WriteFile(path, []byte("# Bugs\nSHOP-9 broken search\n"), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	refs, err := ParseTicketListFile(path)
	if err != nil {
		t.Fatalf("ParseTicketListFile failed: %v", err)
	}
	if len(refs) != 1 || refs[0].Key != "SHOP-9" {
		t.Fatalf("unexpected refs %v", refs)
	}

	empty := filepath.Join(t.TempDir(), "empty.md")
	if err := os.WriteFile(empty, []byte("nothing here\n"), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if _, err := ParseTicketListFile(empty); err == nil {
		t.Fatalf("expected an error for a list with no ticket keys")
	}
}
