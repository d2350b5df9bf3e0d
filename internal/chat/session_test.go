package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"glow-routine/internal/llm"
)

type fakeLLM struct {
	mu    sync.Mutex
	calls int
	got   [][]llm.Message
	resp  llm.Response
	err   error
	block chan struct{}
}

func (f *fakeLLM) Generate(ctx context.Context, msgs []llm.Message) (llm.Response, error) {
	f.mu.Lock()
	f.calls++
	f.got = append(f.got, msgs)
	f.mu.Unlock()
	if f.block != nil {
		<-f.block
	}
	return f.resp, f.err
}

const systemPrompt = "You are a beauty routine advisor."

func TestSubmitChat_AppendsBothTurns(t *testing.T) {
	f := &fakeLLM{resp: llm.Response{Content: "hi there"}}
	s := NewSession(f, systemPrompt)

	out, err := s.SubmitChat(context.Background(), "hello")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if out != "hi there" {
		t.Fatalf("unexpected reply: %q", out)
	}

	tr := s.Transcript()
	if len(tr) != 3 {
		t.Fatalf("expected system+user+assistant, got %d turns", len(tr))
	}
	if tr[0].Role != llm.RoleSystem || tr[0].Content != systemPrompt {
		t.Fatalf("system turn not first: %+v", tr[0])
	}
	if tr[1].Role != llm.RoleUser || tr[1].Content != "hello" {
		t.Fatalf("unexpected user turn: %+v", tr[1])
	}
	if tr[2].Role != llm.RoleAssistant || tr[2].Content != "hi there" {
		t.Fatalf("unexpected assistant turn: %+v", tr[2])
	}

	// The remote call must see the full transcript up to the user turn.
	if len(f.got) != 1 || len(f.got[0]) != 2 {
		t.Fatalf("unexpected call payload: %+v", f.got)
	}
}

func TestSubmitChat_EmptyPromptIsNoOp(t *testing.T) {
	f := &fakeLLM{}
	s := NewSession(f, systemPrompt)

	for _, input := range []string{"", "   ", "\n\t"} {
		if _, err := s.SubmitChat(context.Background(), input); !errors.Is(err, ErrEmptyPrompt) {
			t.Fatalf("input %q: expected ErrEmptyPrompt, got %v", input, err)
		}
	}
	if f.calls != 0 {
		t.Fatalf("remote endpoint called for empty input")
	}
	if len(s.Transcript()) != 1 {
		t.Fatalf("transcript mutated by empty input: %+v", s.Transcript())
	}
}

func TestSubmitChat_FailureKeepsUserTurnOnly(t *testing.T) {
	f := &fakeLLM{err: errors.New("status 500")}
	s := NewSession(f, systemPrompt)

	if _, err := s.SubmitChat(context.Background(), "hello"); err == nil {
		t.Fatalf("expected error")
	}

	tr := s.Transcript()
	if len(tr) != 2 {
		t.Fatalf("expected system+user, got %d turns", len(tr))
	}
	if tr[1].Role != llm.RoleUser || tr[1].Content != "hello" {
		t.Fatalf("user turn missing after failure: %+v", tr)
	}

	// Session is back to idle: the next request goes through.
	f.err = nil
	f.resp = llm.Response{Content: "recovered"}
	if _, err := s.SubmitChat(context.Background(), "again"); err != nil {
		t.Fatalf("session stuck after failure: %v", err)
	}
}

func TestGenerateRoutine_SentinelTurn(t *testing.T) {
	f := &fakeLLM{resp: llm.Response{Content: "Use it daily! 🧼"}}
	s := NewSession(f, systemPrompt)

	out, err := s.GenerateRoutine(context.Background(), []string{"Foaming Cleanser"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out != "Use it daily! 🧼" {
		t.Fatalf("unexpected reply: %q", out)
	}

	tr := s.Transcript()
	want := `$$GENERATE ROUTINE$$ ["Foaming Cleanser"]`
	if tr[1].Role != llm.RoleUser || tr[1].Content != want {
		t.Fatalf("expected sentinel turn %q, got %+v", want, tr[1])
	}
	if tr[2].Role != llm.RoleAssistant || tr[2].Content != "Use it daily! 🧼" {
		t.Fatalf("assistant turn missing: %+v", tr)
	}
}

func TestGenerateRoutine_EmptySelection(t *testing.T) {
	f := &fakeLLM{}
	s := NewSession(f, systemPrompt)

	// Guard holds on repeated attempts, not just the first.
	for i := 0; i < 2; i++ {
		if _, err := s.GenerateRoutine(context.Background(), nil); !errors.Is(err, ErrEmptySelection) {
			t.Fatalf("expected ErrEmptySelection, got %v", err)
		}
	}
	if f.calls != 0 {
		t.Fatalf("remote endpoint called with empty selection")
	}
	if len(s.Transcript()) != 1 {
		t.Fatalf("transcript mutated: %+v", s.Transcript())
	}
}

func TestSend_RejectsConcurrentRequest(t *testing.T) {
	f := &fakeLLM{resp: llm.Response{Content: "ok"}, block: make(chan struct{})}
	s := NewSession(f, systemPrompt)

	done := make(chan error, 1)
	go func() {
		_, err := s.SubmitChat(context.Background(), "first")
		done <- err
	}()

	// Wait for the first request to reach the client.
	for {
		f.mu.Lock()
		n := f.calls
		f.mu.Unlock()
		if n == 1 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := s.SubmitChat(context.Background(), "second"); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}

	close(f.block)
	if err := <-done; err != nil {
		t.Fatalf("first request failed: %v", err)
	}

	// The rejected request left no trace.
	for _, m := range s.Transcript() {
		if m.Content == "second" {
			t.Fatalf("rejected request reached the transcript")
		}
	}
}

func TestManager_SessionPerChatAndReset(t *testing.T) {
	f := &fakeLLM{resp: llm.Response{Content: "ok"}}
	m := NewManager(f, systemPrompt)

	a := m.Session(1)
	if a != m.Session(1) {
		t.Fatalf("same chat got two sessions")
	}
	if a == m.Session(2) {
		t.Fatalf("different chats share a session")
	}
	if a.ID == "" || a.ID == m.Session(2).ID {
		t.Fatalf("sessions must carry distinct ids: %q vs %q", a.ID, m.Session(2).ID)
	}

	_, _ = a.SubmitChat(context.Background(), "hello")
	m.Reset(1)
	fresh := m.Session(1)
	if fresh == a {
		t.Fatalf("reset did not discard the session")
	}
	if len(fresh.Transcript()) != 1 {
		t.Fatalf("fresh session transcript not clean: %+v", fresh.Transcript())
	}
}
