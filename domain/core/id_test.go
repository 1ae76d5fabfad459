package core

import (
	"testing"
)

// TestNewID_Uniqueness tests that NewID generates unique, non-empty identifiers
func TestNewID_Uniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}
}

func TestID_String(t *testing.T) {
	id := ID("run-123")
	if id.String() != "run-123" {
		t.Errorf("Expected String() to return 'run-123', got %q", id.String())
	}
	if RunID(id).String() != "run-123" {
		t.Errorf("RunID should render the same string, got %q", RunID(id).String())
	}
}

func TestID_IsEmpty(t *testing.T) {
	if !ID("").IsEmpty() {
		t.Error("Empty ID should report IsEmpty")
	}
	if NewID().IsEmpty() {
		t.Error("Fresh ID should not report IsEmpty")
	}
}
