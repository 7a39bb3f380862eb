package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_SniffFormat(t *testing.T) {
	testCases := []struct {
		path   string
		expect Format
	}{
		{"world/story.yarn.txt", FormatText},
		{"world/story.json", FormatJSON},
		{"world/story.node", FormatSingleNode},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			got, err := SniffFormat(tc.path)
			require.NoError(t, err)
			assert.Equal(t, tc.expect, got)
		})
	}
}

func Test_SniffFormat_unknownSuffixIsError(t *testing.T) {
	_, err := SniffFormat("world/story.txt")
	assert.Error(t, err)
}

func Test_LoadBytes_text(t *testing.T) {
	data := "title: Start\n---\nHello!\n===\n"
	program, err := LoadBytes([]byte(data), FormatText)
	require.NoError(t, err)
	assert.True(t, program.NodeExists("Start"))
}

func Test_LoadBytes_json(t *testing.T) {
	data := `[{"title": "Start", "body": ["Hi!"]}]`
	program, err := LoadBytes([]byte(data), FormatJSON)
	require.NoError(t, err)
	assert.True(t, program.NodeExists("Start"))
}

func Test_LoadBytes_singleNode(t *testing.T) {
	program, err := LoadBytes([]byte("Hello!\n"), FormatSingleNode)
	require.NoError(t, err)
	assert.True(t, program.NodeExists("Start"))
}

func Test_LoadString_annotatesErrorWithName(t *testing.T) {
	_, err := LoadString("not json", "broken.json", FormatJSON)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.json")
}
