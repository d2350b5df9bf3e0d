// Package chat holds the per-chat assistant session: an append-only
// transcript and the two request flows (free chat, routine generation)
// against the completion client.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"glow-routine/internal/llm"
)

// RoutineSentinel prefixes the synthetic user turn that asks the model for
// a routine built from the selected products. The system prompt teaches the
// model to treat it specially, so the exact spelling matters.
const RoutineSentinel = "$$GENERATE ROUTINE$$"

var (
	// ErrEmptyPrompt rejects blank input before any turn is appended.
	ErrEmptyPrompt = errors.New("empty prompt")
	// ErrEmptySelection rejects routine generation with nothing selected.
	ErrEmptySelection = errors.New("no products selected")
	// ErrBusy rejects a new request while one is awaiting its response.
	ErrBusy = errors.New("request already in flight")
)

// Session is one chat's conversation with the assistant. The transcript
// always starts with the fixed system turn and is append-only: a failed
// call leaves the user turn in place and never adds an assistant turn.
// Sessions live only for the lifetime of the process.
type Session struct {
	ID string

	mu         sync.Mutex
	transcript []llm.Message
	busy       bool
	client     llm.Client
}

func NewSession(client llm.Client, systemPrompt string) *Session {
	return &Session{
		ID:         uuid.NewString(),
		client:     client,
		transcript: []llm.Message{{Role: llm.RoleSystem, Content: systemPrompt}},
	}
}

// SubmitChat appends the trimmed user text as a turn and asks the model for
// a reply over the full transcript. Blank input is a no-op.
func (s *Session) SubmitChat(ctx context.Context, text string) (string, error) {
	prompt := strings.TrimSpace(text)
	if prompt == "" {
		return "", ErrEmptyPrompt
	}
	return s.send(ctx, prompt)
}

// GenerateRoutine appends a synthetic user turn carrying the routine
// sentinel and the selected product names, then proceeds like SubmitChat.
// An empty selection makes no transcript change and no network call.
func (s *Session) GenerateRoutine(ctx context.Context, names []string) (string, error) {
	if len(names) == 0 {
		return "", ErrEmptySelection
	}
	serialized, err := json.Marshal(names)
	if err != nil {
		return "", fmt.Errorf("serialize selection: %w", err)
	}
	return s.send(ctx, RoutineSentinel+" "+string(serialized))
}

func (s *Session) send(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return "", ErrBusy
	}
	s.busy = true
	s.transcript = append(s.transcript, llm.Message{Role: llm.RoleUser, Content: prompt})
	msgs := make([]llm.Message, len(s.transcript))
	copy(msgs, s.transcript)
	s.mu.Unlock()

	resp, err := s.client.Generate(ctx, msgs)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	if err != nil {
		return "", fmt.Errorf("completion call failed: %w", err)
	}
	s.transcript = append(s.transcript, llm.Message{Role: llm.RoleAssistant, Content: resp.Content})
	return resp.Content, nil
}

// Transcript returns a copy of the conversation so far.
func (s *Session) Transcript() []llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]llm.Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Manager hands out one session per chat, created fresh on first use.
// Transcripts are deliberately not persisted; a restart starts clean.
type Manager struct {
	mu           sync.Mutex
	sessions     map[int64]*Session
	client       llm.Client
	systemPrompt string
}

func NewManager(client llm.Client, systemPrompt string) *Manager {
	return &Manager{
		sessions:     make(map[int64]*Session),
		client:       client,
		systemPrompt: systemPrompt,
	}
}

func (m *Manager) Session(chatID int64) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[chatID]
	if !ok {
		s = NewSession(m.client, m.systemPrompt)
		m.sessions[chatID] = s
	}
	return s
}

// Reset discards the chat's session; the next use starts a fresh
// transcript with only the system turn.
func (m *Manager) Reset(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, chatID)
}
