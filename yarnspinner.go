// Package yarnspinner exposes Dialogue, the host-facing facade over the
// loader, compiler, and VM: LoadFile/LoadString/LoadCompiled assemble a
// Program, Run/Stop drive it, and UnloadAll/NodeExists/GetTextForNode round
// out the port surface, wiring a loaded set of source files to a driven
// session backed by a Program + yarn.VM pair that can be swapped out via
// UnloadAll.
package yarnspinner

import (
	"fmt"

	"github.com/dekarrin/yarnspinner/internal/loader"
	"github.com/dekarrin/yarnspinner/internal/storage"
	"github.com/dekarrin/yarnspinner/internal/yarn"
)

// Dialogue owns a compiled Program, its function Library, and the VM
// currently running over it. A zero-value Dialogue is not usable; use New.
type Dialogue struct {
	program *yarn.Program
	library *yarn.Library
	storage yarn.VariableStorage
	vm      *yarn.VM
}

// New constructs an empty Dialogue bound to storage. If storage is nil, a
// fresh internal/storage.MemoryStorage is used.
func New(varStorage yarn.VariableStorage) *Dialogue {
	if varStorage == nil {
		varStorage = storage.NewMemoryStorage()
	}

	d := &Dialogue{
		program: yarn.NewProgram(),
		storage: varStorage,
	}
	d.rebuildVM()
	return d
}

// rebuildVM constructs a fresh VM and Library bound to d's current program
// and storage, preserving visit counts only when called from UnloadAll's
// clearVisited=false path (the caller is responsible for that distinction;
// rebuildVM itself always starts a new VM's bookkeeping from zero).
func (d *Dialogue) rebuildVM() {
	lib := yarn.NewLibrary()
	vm := yarn.NewVM(d.program, nil, d.storage)
	yarn.RegisterStandardLibrary(lib, vm)
	vm.SetLibrary(lib)
	d.library = lib
	d.vm = vm
}

// LoadFile loads a source container from disk (format sniffed by suffix)
// and merges it into the Dialogue's Program.
func (d *Dialogue) LoadFile(path string) error {
	program, err := loader.LoadFile(path)
	if err != nil {
		return err
	}
	return d.mergeAndRebind(program)
}

// LoadString loads in-memory source text of the given format and merges it
// into the Dialogue's Program. name annotates any resulting error.
func (d *Dialogue) LoadString(text, name string, format loader.Format) error {
	program, err := loader.LoadString(text, name, format)
	if err != nil {
		return err
	}
	return d.mergeAndRebind(program)
}

// LoadCompiled decodes a previously-Encode()d Program (the "compiled
// container" binary format) and merges it in.
func (d *Dialogue) LoadCompiled(data []byte) error {
	program, err := yarn.DecodeProgram(data)
	if err != nil {
		return err
	}
	return d.mergeAndRebind(program)
}

func (d *Dialogue) mergeAndRebind(program *yarn.Program) error {
	if err := d.program.Merge(program); err != nil {
		return err
	}
	d.rebuildVM()
	return nil
}

// Run starts (or restarts) execution at startNode ("Start" if empty). Call
// Next repeatedly to drive the returned sequence of events.
func (d *Dialogue) Run(startNode string) error {
	if startNode == "" {
		startNode = "Start"
	}
	return d.vm.Run(startNode)
}

// Next advances the VM by exactly one instruction, returning the event it
// produced. This is a "lazy sequence" host surface, pulled one event at a
// time by the host rather than pushed via callback.
func (d *Dialogue) Next() yarn.Event {
	return d.vm.RunNext()
}

// SelectOption resolves a blocking ShowOptions suspension with the chosen
// option index, then resumes the VM so the next Next() call can proceed.
func (d *Dialogue) SelectOption(i int) error {
	if err := d.vm.SelectOption(i); err != nil {
		return err
	}
	return nil
}

// State reports the underlying VM's run state.
func (d *Dialogue) State() yarn.State {
	return d.vm.State()
}

// Stop cancels the running VM; the next Next() call returns no event.
func (d *Dialogue) Stop() {
	d.vm.Stop()
}

// UnloadAll discards every loaded node and string, replacing the Program
// with an empty one and rebuilding the VM. If clearVisited is false, visit
// counts survive the unload (a host that reloads the same story can still
// answer "has the player been to Forest before").
func (d *Dialogue) UnloadAll(clearVisited bool) {
	var preserved map[string]int
	if !clearVisited {
		preserved = d.vm.VisitCounts()
	}

	d.program = yarn.NewProgram()
	d.rebuildVM()

	if preserved != nil {
		d.vm.SetVisitCounts(preserved)
	}
}

// NodeExists reports whether name is a node in the currently loaded
// Program.
func (d *Dialogue) NodeExists(name string) bool {
	return d.program.NodeExists(name)
}

// GetTextForNode returns the raw source text of a "rawText"-tagged node.
func (d *Dialogue) GetTextForNode(name string) (string, bool) {
	return d.program.GetTextForNode(name)
}

// Library exposes the Dialogue's function registry so a host can Register
// custom commands/functions beyond the standard library.
func (d *Dialogue) Library() *yarn.Library {
	return d.library
}

// Encode serializes the current Program into the compiled container
// format, suitable for a later LoadCompiled.
func (d *Dialogue) Encode() ([]byte, error) {
	data, err := d.program.Encode()
	if err != nil {
		return nil, fmt.Errorf("encode program: %w", err)
	}
	return data, nil
}
