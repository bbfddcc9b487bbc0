// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lilithlinux/lilim/internal/quota"
	"github.com/lilithlinux/lilim/internal/router"
)

type fakeLocal struct{ reply string }

func (f fakeLocal) Infer(ctx context.Context, text string) (string, error) {
	return f.reply, nil
}

type fakeSearch struct{}

func (fakeSearch) Search(ctx context.Context, terms []string, limit int) ([]string, error) {
	return nil, errors.New("not indexed")
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	engine := router.NewEngine(router.Config{
		Local:  fakeLocal{reply: "the local model speaks"},
		Ledger: quota.NewLedger(nil, nil),
		Search: fakeSearch{},
		Seed:   1,
	})
	return NewSession(engine)
}

func TestSubmitRecordsBothTurns(t *testing.T) {
	s := newTestSession(t)

	reply, err := s.Submit(context.Background(), "tell me about dragons")
	require.NoError(t, err)
	require.Equal(t, RoleAssistant, reply.Role)
	require.Equal(t, "the local model speaks", reply.Content)
	require.Equal(t, "local", reply.Backend)
	require.NotEmpty(t, reply.ID)

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	require.Equal(t, RoleUser, msgs[0].Role)
	require.Equal(t, "tell me about dragons", msgs[0].Content)
	require.Equal(t, reply, msgs[1])
	require.NotEqual(t, msgs[0].ID, msgs[1].ID)
	require.False(t, s.Pending())
}

func TestSubmitRejectsEmptyQuery(t *testing.T) {
	s := newTestSession(t)

	for _, q := range []string{"", "   ", "\n\t"} {
		_, err := s.Submit(context.Background(), q)
		require.ErrorIs(t, err, ErrEmptyQuery)
	}
	require.Empty(t, s.Messages(), "rejected queries must not be recorded")
}

func TestSubmitTrimsWhitespace(t *testing.T) {
	s := newTestSession(t)
	_, err := s.Submit(context.Background(), "  padded query  ")
	require.NoError(t, err)
	require.Equal(t, "padded query", s.Messages()[0].Content)
}

func TestSessionIDsAreUnique(t *testing.T) {
	a := newTestSession(t)
	b := newTestSession(t)
	require.NotEqual(t, a.ID(), b.ID())
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	st := NewStore(t.TempDir())
	s := newTestSession(t)
	_, err := s.Submit(context.Background(), "first question")
	require.NoError(t, err)

	require.NoError(t, st.Save(s))

	tr, err := st.Load(s.ID())
	require.NoError(t, err)
	require.Equal(t, s.ID(), tr.ID)
	require.Len(t, tr.Messages, 2)
	require.Equal(t, "first question", tr.Messages[0].Content)
	require.WithinDuration(t, time.Now(), tr.Saved, time.Minute)
}

func TestStoreSkipsEmptySession(t *testing.T) {
	dir := t.TempDir()
	st := NewStore(dir)
	s := newTestSession(t)

	require.NoError(t, st.Save(s))

	ids, err := st.List()
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestStoreListAndDelete(t *testing.T) {
	st := NewStore(t.TempDir())

	first := newTestSession(t)
	_, err := first.Submit(context.Background(), "question one")
	require.NoError(t, err)
	require.NoError(t, st.Save(first))

	second := newTestSession(t)
	_, err = second.Submit(context.Background(), "question two")
	require.NoError(t, err)
	require.NoError(t, st.Save(second))

	ids, err := st.List()
	require.NoError(t, err)
	require.Len(t, ids, 2)
	require.Contains(t, ids, first.ID())
	require.Contains(t, ids, second.ID())

	require.NoError(t, st.Delete(first.ID()))
	ids, err = st.List()
	require.NoError(t, err)
	require.Equal(t, []string{second.ID()}, ids)

	// Deleting twice is not an error.
	require.NoError(t, st.Delete(first.ID()))
}

func TestStoreListMissingDir(t *testing.T) {
	st := NewStore("/nonexistent/lilim-test-dir")
	ids, err := st.List()
	require.NoError(t, err)
	require.Nil(t, ids)
}
