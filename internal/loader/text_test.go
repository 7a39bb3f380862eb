package loader

import (
	"testing"

	"github.com/dekarrin/yarnspinner/internal/yarn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseText_singleNode(t *testing.T) {
	lines := []string{
		"title: Start",
		"tags: rawText greeting",
		"colorID: 3",
		"position: 10,20",
		"---",
		"Hello there.",
		"How are you?",
		"===",
	}

	infos, err := ParseText(lines)
	require.NoError(t, err)
	require.Len(t, infos, 1)

	info := infos[0]
	assert.Equal(t, "Start", info.Title)
	assert.Equal(t, []string{"rawText", "greeting"}, info.TagsList)
	assert.Equal(t, 3, info.ColorID)
	assert.Equal(t, NodeInfoPosition{X: 10, Y: 20}, info.Position)
	assert.Equal(t, []string{"Hello there.", "How are you?"}, info.Body)
}

func Test_ParseText_multipleNodes(t *testing.T) {
	lines := []string{
		"title: Start",
		"---",
		"Hello!",
		"===",
		"",
		"title: North",
		"---",
		"You arrive.",
		"===",
	}

	infos, err := ParseText(lines)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "Start", infos[0].Title)
	assert.Equal(t, "North", infos[1].Title)
}

func Test_ParseText_unknownHeaderFieldIsSkipped(t *testing.T) {
	lines := []string{
		"title: Start",
		"author: someone",
		"---",
		"Hello!",
		"===",
	}

	infos, err := ParseText(lines)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "someone", infos[0].Unknown["author"])
}

func Test_ParseText_missingTitleIsLoadError(t *testing.T) {
	lines := []string{"---", "Hello!", "==="}
	_, err := ParseText(lines)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title")
}

func Test_ParseText_unterminatedBodyIsLoadError(t *testing.T) {
	lines := []string{"title: Start", "---", "Hello!"}
	_, err := ParseText(lines)
	require.Error(t, err)
	var loadErr *yarn.LoadError
	require.ErrorAs(t, err, &loadErr)
}

func Test_ParseText_malformedColorIDIsLoadError(t *testing.T) {
	lines := []string{"title: Start", "colorID: not-a-number", "---", "Hi", "==="}
	_, err := ParseText(lines)
	require.Error(t, err)
}
