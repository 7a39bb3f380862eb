package server

import (
	"context"
	"testing"

	"github.com/dekarrin/yarnspinner"
	"github.com/dekarrin/yarnspinner/internal/loader"
	"github.com/dekarrin/yarnspinner/internal/yarn"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, source string) *Session {
	t.Helper()
	d := yarnspinner.New(nil)
	require.NoError(t, d.LoadString(source, "inline", loader.FormatText))
	return newSession(uuid.New(), d)
}

func Test_Session_Advance_drainsLines(t *testing.T) {
	sess := newTestSession(t, "title: Start\n---\nHello there.\n===\n")
	defer sess.Close()

	ctx := context.Background()
	ev, err := sess.Advance(ctx)
	require.NoError(t, err)
	require.NotNil(t, ev.Line)
	assert.Equal(t, "Hello there.", ev.Line.Text)

	ev, err = sess.Advance(ctx)
	require.NoError(t, err)
	require.NotNil(t, ev.NodeComplete)
}

func Test_Session_SelectOption_resumesAtDestination(t *testing.T) {
	source := "title: Start\n---\n[[Go north|North]]\n===\ntitle: North\n---\nArrived.\n===\n"
	sess := newTestSession(t, source)
	defer sess.Close()

	ctx := context.Background()
	_, err := sess.Advance(ctx) // AddOption
	require.NoError(t, err)
	ev, err := sess.Advance(ctx) // ShowOptions
	require.NoError(t, err)
	require.NotNil(t, ev.Options)

	require.NoError(t, sess.SelectOption(ctx, 0))

	ev, err = sess.Advance(ctx) // RunNode into North
	require.NoError(t, err)
	require.NotNil(t, ev.NodeComplete)
	assert.Equal(t, "North", ev.NodeComplete.NextNode)

	ev, err = sess.Advance(ctx)
	require.NoError(t, err)
	require.NotNil(t, ev.Line)
	assert.Equal(t, "Arrived.", ev.Line.Text)
}

func Test_Session_Close_rejectsFurtherRequests(t *testing.T) {
	sess := newTestSession(t, "title: Start\n---\nHi.\n===\n")
	sess.Close()

	_, err := sess.Advance(context.Background())
	assert.Error(t, err)
}

func Test_Session_State_reflectsDialogueState(t *testing.T) {
	sess := newTestSession(t, "title: Start\n---\nHi.\n===\n")
	defer sess.Close()

	assert.Equal(t, yarn.Stopped, sess.State())
}
