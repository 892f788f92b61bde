package main

import (
	"fmt"
	"testing"
)

func TestHistory_KeepsLastTen(t *testing.T) {
	h := NewHistory()
	for i := range 11 {
		h.Push([]byte(fmt.Sprintf("cmd%d", i)))
	}
	if h.Len() != historyCapacity {
		t.Fatalf("Len = %d, want %d", h.Len(), historyCapacity)
	}
	entries := h.Entries()
	if entries[0] != "cmd10" || entries[9] != "cmd1" {
		t.Fatalf("entries = %v", entries)
	}
}

func TestHistory_SuppressesAdjacentDuplicatesAndEmpty(t *testing.T) {
	h := NewHistory()
	if !h.Push([]byte("say hi")) {
		t.Fatal("first push should be stored")
	}
	if h.Push([]byte("say hi")) {
		t.Fatal("adjacent duplicate stored")
	}
	if h.Push(nil) {
		t.Fatal("empty line stored")
	}
	h.Push([]byte("clear"))
	h.Push([]byte("say hi"))
	if got := h.Entries(); len(got) != 3 {
		t.Fatalf("non-adjacent duplicate should be kept, entries = %v", got)
	}
}

func TestHistory_PushCopiesLine(t *testing.T) {
	h := NewHistory()
	line := []byte("fetch")
	h.Push(line)
	line[0] = 'X'
	if h.Entries()[0] != "fetch" {
		t.Fatalf("entry aliased caller buffer: %q", h.Entries()[0])
	}
}

func TestHistory_UpSaturates(t *testing.T) {
	h := NewHistory()
	h.Push([]byte("a"))
	h.Push([]byte("b"))

	for _, want := range []string{"b", "a"} {
		line, ok := h.Up()
		if !ok || string(line) != want {
			t.Fatalf("Up = %q,%v want %q", line, ok, want)
		}
	}
	if _, ok := h.Up(); ok {
		t.Fatal("Up past the oldest entry should report no change")
	}
	if h.Cursor() != 1 {
		t.Fatalf("Cursor = %d, want 1", h.Cursor())
	}
}

func TestHistory_DownReturnsToLive(t *testing.T) {
	h := NewHistory()
	if _, ok := h.Down(); ok {
		t.Fatal("Down while live should be a no-op")
	}
	h.Push([]byte("a"))
	h.Push([]byte("b"))
	h.Up()
	h.Up()

	line, ok := h.Down()
	if !ok || string(line) != "b" {
		t.Fatalf("Down = %q,%v want b", line, ok)
	}
	line, ok = h.Down()
	if !ok || line != nil || !h.Live() {
		t.Fatalf("Down from newest = %q,%v live=%v", line, ok, h.Live())
	}
	if _, ok := h.Down(); ok {
		t.Fatal("second Down while live should be a no-op")
	}
}

func TestHistory_EmptyUp(t *testing.T) {
	h := NewHistory()
	if _, ok := h.Up(); ok {
		t.Fatal("Up on empty history should report no change")
	}
	if !h.Live() {
		t.Fatal("cursor moved on empty history")
	}
}

func TestHistory_PushResetsCursor(t *testing.T) {
	h := NewHistory()
	h.Push([]byte("a"))
	h.Up()
	h.Push([]byte("a"))
	if !h.Live() {
		t.Fatalf("cursor = %d after push, want live", h.Cursor())
	}
}
