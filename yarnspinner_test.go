package yarnspinner

import (
	"testing"

	"github.com/dekarrin/yarnspinner/internal/loader"
	"github.com/dekarrin/yarnspinner/internal/yarn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drainDialogueLines(t *testing.T, d *Dialogue) []string {
	t.Helper()
	var lines []string
	for d.State() != yarn.Stopped {
		ev := d.Next()
		require.NoError(t, ev.Err)
		if ev.Line != nil {
			lines = append(lines, ev.Line.Text)
		}
	}
	return lines
}

func Test_Dialogue_LoadString_and_Run(t *testing.T) {
	d := New(nil)
	source := "title: Start\n---\nHello there.\n===\n"
	require.NoError(t, d.LoadString(source, "inline", loader.FormatText))

	require.NoError(t, d.Run(""))
	lines := drainDialogueLines(t, d)
	assert.Equal(t, []string{"Hello there."}, lines)
}

func Test_Dialogue_NodeExists_and_GetTextForNode(t *testing.T) {
	d := New(nil)
	source := `[{"title": "Raw", "body": ["anything here"], "tags": "rawText"}]`
	require.NoError(t, d.LoadString(source, "inline.json", loader.FormatJSON))

	assert.True(t, d.NodeExists("Raw"))
	text, ok := d.GetTextForNode("Raw")
	require.True(t, ok)
	assert.Equal(t, "anything here", text)
}

func Test_Dialogue_EncodeDecode_roundTrip(t *testing.T) {
	d := New(nil)
	require.NoError(t, d.LoadString("title: Start\n---\nHi!\n===\n", "inline", loader.FormatText))

	data, err := d.Encode()
	require.NoError(t, err)

	d2 := New(nil)
	require.NoError(t, d2.LoadCompiled(data))
	assert.True(t, d2.NodeExists("Start"))
}

func Test_Dialogue_UnloadAll_clearsProgram(t *testing.T) {
	d := New(nil)
	require.NoError(t, d.LoadString("title: Start\n---\nHi!\n===\n", "inline", loader.FormatText))
	require.True(t, d.NodeExists("Start"))

	d.UnloadAll(true)
	assert.False(t, d.NodeExists("Start"))
}

func Test_Dialogue_SelectOption_drivesOptionJump(t *testing.T) {
	d := New(nil)
	source := "title: Start\n---\n[[Go north|North]]\n===\ntitle: North\n---\nArrived.\n===\n"
	require.NoError(t, d.LoadString(source, "inline", loader.FormatText))

	require.NoError(t, d.Run(""))

	ev := d.Next() // AddOption
	require.NoError(t, ev.Err)
	ev = d.Next() // ShowOptions
	require.NotNil(t, ev.Options)

	require.NoError(t, d.SelectOption(0))

	ev = d.Next() // RunNode
	require.NotNil(t, ev.NodeComplete)
	assert.Equal(t, "North", ev.NodeComplete.NextNode)

	lines := drainDialogueLines(t, d)
	assert.Equal(t, []string{"Arrived."}, lines)
}
