// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat manages conversation sessions and their persisted transcripts.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lilithlinux/lilim/internal/router"
)

// ErrEmptyQuery is returned when a submitted query is empty or whitespace.
var ErrEmptyQuery = errors.New("query is empty")

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn in a conversation.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Prefix    string    `json:"prefix,omitempty"`
	Backend   string    `json:"backend,omitempty"`
	Degraded  bool      `json:"degraded,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is one conversation. Safe for concurrent use; the routing call
// itself runs outside the lock so a slow backend does not block readers.
type Session struct {
	id     string
	engine *router.Engine

	mu       sync.Mutex
	messages []Message
	pending  bool
}

// NewSession creates an empty session over the routing engine.
func NewSession(engine *router.Engine) *Session {
	return &Session{
		id:     uuid.NewString(),
		engine: engine,
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Pending reports whether a submitted query is still being answered.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Messages returns a copy of the transcript so far.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Submit records the user query, routes it, and records the answer.
// Empty or whitespace-only queries are rejected with ErrEmptyQuery before
// anything is recorded.
func (s *Session) Submit(ctx context.Context, text string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyQuery
	}

	s.mu.Lock()
	s.pending = true
	s.messages = append(s.messages, Message{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   text,
		Timestamp: time.Now(),
	})
	s.mu.Unlock()

	ans := s.engine.Route(ctx, text)

	reply := Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Content:   ans.Text,
		Prefix:    ans.Prefix,
		Backend:   string(ans.Backend),
		Degraded:  ans.Degraded,
		Timestamp: time.Now(),
	}

	s.mu.Lock()
	s.messages = append(s.messages, reply)
	s.pending = false
	s.mu.Unlock()

	return reply, nil
}
