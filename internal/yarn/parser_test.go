package yarn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseNode_plainLine(t *testing.T) {
	n, err := ParseNode("Start", nil, []string{"Hello, world!"})
	require.NoError(t, err)
	require.Len(t, n.Statements, 1)

	line, ok := n.Statements[0].(*LineStatement)
	require.True(t, ok)
	assert.Equal(t, "Hello, world!", line.Text)
}

func Test_ParseNode_lineWithPinnedID(t *testing.T) {
	n, err := ParseNode("Start", nil, []string{"Hello! #line:abc123"})
	require.NoError(t, err)
	line := n.Statements[0].(*LineStatement)
	assert.Equal(t, "Hello!", line.Text)
	assert.Equal(t, "abc123", line.LineID)
}

func Test_ParseNode_rawTextTagSkipsParsing(t *testing.T) {
	body := []string{"<<this is not valid yarn>>", "[[ bare ["}
	n, err := ParseNode("Raw", []string{"rawText"}, body)
	require.NoError(t, err)
	assert.Nil(t, n.Statements)
	assert.Equal(t, "<<this is not valid yarn>>\n[[ bare [", n.Source)
}

func Test_ParseNode_optionWithLabelAndDest(t *testing.T) {
	n, err := ParseNode("Start", nil, []string{"[[Go north|North]]"})
	require.NoError(t, err)
	opt := n.Statements[0].(*OptionStatement)
	assert.Equal(t, "Go north", opt.Label)
	assert.Equal(t, "North", opt.Dest)
}

func Test_ParseNode_optionBareDest(t *testing.T) {
	n, err := ParseNode("Start", nil, []string{"[[North]]"})
	require.NoError(t, err)
	opt := n.Statements[0].(*OptionStatement)
	assert.Equal(t, "", opt.Label)
	assert.Equal(t, "North", opt.Dest)
}

func Test_ParseNode_ifElseEndif(t *testing.T) {
	body := []string{
		"<<if $x > 1>>",
		"big",
		"<<else>>",
		"small",
		"<<endif>>",
	}
	n, err := ParseNode("Start", nil, body)
	require.NoError(t, err)
	require.Len(t, n.Statements, 1)

	ifs := n.Statements[0].(*IfStatement)
	require.Len(t, ifs.Clauses, 2)
	assert.NotNil(t, ifs.Clauses[0].Condition)
	assert.Nil(t, ifs.Clauses[1].Condition)

	cond := ifs.Clauses[0].Condition.(*BinaryExpr)
	assert.Equal(t, "GreaterThan", cond.Op)
}

func Test_ParseNode_setAssignment(t *testing.T) {
	n, err := ParseNode("Start", nil, []string{"<<set $score to $score + 1>>"})
	require.NoError(t, err)
	assign := n.Statements[0].(*AssignmentStatement)
	assert.Equal(t, "score", assign.DestName)
	assert.Equal(t, "=", assign.Op)

	add := assign.Value.(*BinaryExpr)
	assert.Equal(t, "Add", add.Op)
}

func Test_ParseNode_compoundAssignment(t *testing.T) {
	n, err := ParseNode("Start", nil, []string{"<<set $score += 5>>"})
	require.NoError(t, err)
	assign := n.Statements[0].(*AssignmentStatement)
	assert.Equal(t, "+=", assign.Op)
}

func Test_ParseNode_shortcutOptionsWithBody(t *testing.T) {
	body := []string{
		"-> Take the sword",
		"    You take the sword.",
		"-> Leave it",
		"    You leave it alone.",
	}
	n, err := ParseNode("Start", nil, body)
	require.NoError(t, err)
	group := n.Statements[0].(*ShortcutOptionGroupStatement)
	require.Len(t, group.Options, 2)
	assert.Equal(t, "Take the sword", group.Options[0].Label)
	require.Len(t, group.Options[0].Statements, 1)
	line := group.Options[0].Statements[0].(*LineStatement)
	assert.Equal(t, "You take the sword.", line.Text)
}

func Test_ParseNode_shortcutOptionWithInlineCondition(t *testing.T) {
	body := []string{"-> Fight <<if $hasSword>>"}
	n, err := ParseNode("Start", nil, body)
	require.NoError(t, err)
	group := n.Statements[0].(*ShortcutOptionGroupStatement)
	require.Len(t, group.Options, 1)
	require.NotNil(t, group.Options[0].Condition)
	v, ok := group.Options[0].Condition.(*VariableExpr)
	require.True(t, ok)
	assert.Equal(t, "hasSword", v.Name)
}

func Test_ParseNode_customCommandFreeText(t *testing.T) {
	n, err := ParseNode("Start", nil, []string{"<<wait 2>>"})
	require.NoError(t, err)
	cmd := n.Statements[0].(*CustomCommandStatement)
	assert.Equal(t, "wait 2", cmd.Text)
}

func Test_ParseNode_funcCallExpression(t *testing.T) {
	n, err := ParseNode("Start", nil, []string{"<<if visited(\"Start\")>>", "yes", "<<endif>>"})
	require.NoError(t, err)
	ifs := n.Statements[0].(*IfStatement)
	call := ifs.Clauses[0].Condition.(*FuncCallExpr)
	assert.Equal(t, "visited", call.Name)
	require.Len(t, call.Args, 1)
}

func Test_ParseNode_malformedExpressionIsError(t *testing.T) {
	_, err := ParseNode("Start", nil, []string{"<<set $x to >>"})
	require.Error(t, err)
}

func Test_ParseNode_unterminatedIfIsParseError(t *testing.T) {
	_, err := ParseNode("Start", nil, []string{"<<if $x>>", "body with no endif"})
	require.Error(t, err)
	_, ok := err.(*ParseError)
	assert.True(t, ok)
}
