package yarn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapStorage is a minimal VariableStorage for testing the VM in isolation
// from internal/storage.
type mapStorage map[string]Value

func (m mapStorage) Get(name string) (Value, bool) { v, ok := m[name]; return v, ok }
func (m mapStorage) Set(name string, v Value) error { m[name] = v; return nil }
func (m mapStorage) Clear() error {
	for k := range m {
		delete(m, k)
	}
	return nil
}

func newTestVM(t *testing.T, program *Program) (*VM, *Library, mapStorage) {
	t.Helper()
	storage := make(mapStorage)
	vm := NewVM(program, nil, storage)
	lib := NewLibrary()
	RegisterStandardLibrary(lib, vm)
	vm.library = lib
	return vm, lib, storage
}

func Test_VM_RunLine_suspendsThenResumes(t *testing.T) {
	program := NewProgram()
	program.Strings["Start-0"] = "Hello there."
	program.Nodes["Start"] = &CompiledNode{
		Name: "Start",
		Instructions: []Instruction{
			{Op: OpRunLine, OperandA: "Start-0"},
			{Op: OpStop},
		},
		Labels: map[string]int{},
	}

	vm, _, _ := newTestVM(t, program)
	require.NoError(t, vm.Run("Start"))

	ev := vm.RunNext()
	require.NotNil(t, ev.Line)
	assert.Equal(t, "Hello there.", ev.Line.Text)
	assert.Equal(t, Suspended, vm.State())

	ev = vm.RunNext()
	require.NotNil(t, ev.NodeComplete)
	assert.Equal(t, Stopped, vm.State())
}

func Test_VM_ShowOptions_selectionDrivesRunNode(t *testing.T) {
	program := NewProgram()
	program.Strings["Start-opt0"] = "Go left"
	program.Strings["Start-opt1"] = "Go right"
	program.Nodes["Start"] = &CompiledNode{
		Name: "Start",
		Instructions: []Instruction{
			{Op: OpAddOption, OperandA: "Start-opt0", OperandB: "Left"},
			{Op: OpAddOption, OperandA: "Start-opt1", OperandB: "Right"},
			{Op: OpShowOptions},
			{Op: OpRunNode},
		},
		Labels: map[string]int{},
	}
	program.Nodes["Left"] = &CompiledNode{
		Name:         "Left",
		Instructions: []Instruction{{Op: OpStop}},
		Labels:       map[string]int{},
	}
	program.Nodes["Right"] = &CompiledNode{
		Name:         "Right",
		Instructions: []Instruction{{Op: OpStop}},
		Labels:       map[string]int{},
	}

	vm, _, _ := newTestVM(t, program)
	require.NoError(t, vm.Run("Start"))

	vm.RunNext() // AddOption
	vm.RunNext() // AddOption
	ev := vm.RunNext()
	require.NotNil(t, ev.Options)
	assert.Equal(t, []string{"Go left", "Go right"}, []string{ev.Options.Options[0].Text, ev.Options.Options[1].Text})
	assert.Equal(t, WaitingOnOptionSelection, vm.State())

	require.NoError(t, vm.SelectOption(1))
	vm.drainSelection()

	ev = vm.RunNext() // RunNode
	require.NotNil(t, ev.NodeComplete)
	assert.Equal(t, "Right", ev.NodeComplete.NextNode)
	assert.Equal(t, "Right", vm.currentNode)
}

func Test_VM_CallFunc_fixedArity(t *testing.T) {
	program := NewProgram()
	program.Nodes["Start"] = &CompiledNode{
		Name: "Start",
		Instructions: []Instruction{
			{Op: OpPushNumber, OperandA: float32(2)},
			{Op: OpPushNumber, OperandA: float32(3)},
			{Op: OpCallFunc, OperandA: "Add"},
			{Op: OpStoreVariable, OperandA: "$sum"},
			{Op: OpPop},
			{Op: OpStop},
		},
		Labels: map[string]int{},
	}

	vm, _, storage := newTestVM(t, program)
	require.NoError(t, vm.Run("Start"))
	for vm.State() != Stopped {
		vm.RunNext()
	}

	sum, ok := storage.Get("$sum")
	require.True(t, ok)
	assert.Equal(t, float32(5), sum.AsNumber())
}

func Test_VM_CallFunc_variadicNOnTop(t *testing.T) {
	program := NewProgram()
	program.Strings["Start-0"] = "Start"
	program.Nodes["Start"] = &CompiledNode{
		Name: "Start",
		Instructions: []Instruction{
			{Op: OpPushString, OperandA: "Start-0"},
			{Op: OpPushNumber, OperandA: float32(1)}, // N=1 argument follows
			{Op: OpCallFunc, OperandA: "visited"},
			{Op: OpStoreVariable, OperandA: "$wasVisited"},
			{Op: OpPop},
			{Op: OpStop},
		},
		Labels: map[string]int{},
	}

	vm, _, storage := newTestVM(t, program)
	vm.visitCounts["Start"] = 1
	require.NoError(t, vm.Run("Start"))
	for vm.State() != Stopped {
		vm.RunNext()
	}

	v, ok := storage.Get("$wasVisited")
	require.True(t, ok)
	assert.True(t, v.AsBool())
}

func Test_VM_missingVariable_isRecoverableNotFatal(t *testing.T) {
	program := NewProgram()
	program.Nodes["Start"] = &CompiledNode{
		Name: "Start",
		Instructions: []Instruction{
			{Op: OpPushVariable, OperandA: "$undefined"},
			{Op: OpStoreVariable, OperandA: "$x"},
			{Op: OpPop},
			{Op: OpStop},
		},
		Labels: map[string]int{},
	}

	vm, _, storage := newTestVM(t, program)
	require.NoError(t, vm.Run("Start"))

	ev := vm.RunNext()
	require.Error(t, ev.Err)
	rte, ok := ev.Err.(*RuntimeError)
	require.True(t, ok)
	assert.False(t, rte.Fatal())
	assert.Equal(t, Running, vm.State())

	for vm.State() != Stopped {
		vm.RunNext()
	}
	x, ok := storage.Get("$x")
	require.True(t, ok)
	assert.Equal(t, Null, x.Type())
}

func Test_VM_OpStop_incrementsVisitCount(t *testing.T) {
	program := NewProgram()
	program.Nodes["Start"] = &CompiledNode{
		Name:         "Start",
		Instructions: []Instruction{{Op: OpStop}},
		Labels:       map[string]int{},
	}

	vm, _, _ := newTestVM(t, program)
	require.NoError(t, vm.Run("Start"))

	ev := vm.RunNext()
	require.NotNil(t, ev.NodeComplete)
	assert.Equal(t, Stopped, vm.State())

	assert.Equal(t, 1, vm.visitCounts["Start"])
	assert.Equal(t, 1, vm.visitedNodeCount)
}

func Test_VM_shortcutGroup_unconditionalOptionDoesNotUnderflowStack(t *testing.T) {
	_, program := compileSource(t, "Start", nil, []string{
		"-> Take it",
		"    You take it.",
		"-> Leave it",
		"    You leave it.",
	})

	vm, _, _ := newTestVM(t, program)
	require.NoError(t, vm.Run("Start"))

	for vm.State() != WaitingOnOptionSelection {
		ev := vm.RunNext()
		require.NoError(t, ev.Err)
	}

	require.NoError(t, vm.SelectOption(0))
	vm.drainSelection()

	for vm.State() != Stopped {
		ev := vm.RunNext()
		require.NoError(t, ev.Err)
	}
}

func Test_VM_JumpIfFalse(t *testing.T) {
	program := NewProgram()
	program.Strings["Start-0"] = "skipped"
	program.Strings["Start-1"] = "taken"
	program.Nodes["Start"] = &CompiledNode{
		Name: "Start",
		Instructions: []Instruction{
			{Op: OpPushBool, OperandA: false},
			{Op: OpJumpIfFalse, OperandA: "else"},
			{Op: OpRunLine, OperandA: "Start-0"},
			{Op: OpJumpTo, OperandA: "end"},
			{Op: OpLabel, OperandA: "else"},
			{Op: OpRunLine, OperandA: "Start-1"},
			{Op: OpLabel, OperandA: "end"},
			{Op: OpStop},
		},
		Labels: map[string]int{"else": 4, "end": 6},
	}

	vm, _, _ := newTestVM(t, program)
	require.NoError(t, vm.Run("Start"))

	vm.RunNext()        // push false
	ev := vm.RunNext() // JumpIfFalse, jumps to the "else" label instruction
	assert.Nil(t, ev.Err)
	ev = vm.RunNext() // the Label pseudo-instruction itself, a no-op
	assert.Nil(t, ev.Err)
	ev = vm.RunNext() // RunLine "taken", since JumpIfFalse skipped past the first RunLine
	require.NotNil(t, ev.Line)
	assert.Equal(t, "taken", ev.Line.Text)
}
