package storage

import (
	"path/filepath"
	"testing"
	"time"
)

func TestFileRecorder_AppendAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.jsonl")
	r, err := NewFileRecorder(path)
	if err != nil {
		t.Fatalf("init: %v", err)
	}

	events := []Event{
		{Timestamp: time.Now().UTC(), ChatID: 1, SessionID: "s-1", Kind: "chat", UserMessage: "hello", AssistantResponse: "hi"},
		{Timestamp: time.Now().UTC(), ChatID: 1, Kind: "routine", UserMessage: `$$GENERATE ROUTINE$$ ["Foaming Cleanser"]`, AssistantResponse: "Use it daily!"},
		{Timestamp: time.Now().UTC(), ChatID: 2, Kind: "chat", UserMessage: "hey", Error: "status 500"},
	}
	for _, ev := range events {
		if err := r.AppendInteraction(ev); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := r.LoadInteractions()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
	if got[0].SessionID != "s-1" {
		t.Fatalf("session id not round-tripped: %+v", got[0])
	}
	if got[1].Kind != "routine" || got[1].AssistantResponse != "Use it daily!" {
		t.Fatalf("unexpected event: %+v", got[1])
	}
	if got[2].Error != "status 500" {
		t.Fatalf("error not recorded: %+v", got[2])
	}
}

func TestFileRecorder_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.jsonl")
	r, err := NewFileRecorder(path)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	got, err := r.LoadInteractions()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no events, got %+v", got)
	}
}
