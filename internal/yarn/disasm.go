package yarn

import (
	"fmt"
	"sort"

	"github.com/dekarrin/rosed"
)

// file disasm.go renders a CompiledNode's bytecode as a listing table, for
// CLI/debug inspection, using rosed's InsertTableOpts on an Edit started
// from a header line.

const disasmTableWidth = 100

// Disassemble renders every node of a Program as one bytecode listing,
// nodes in lexical name order for stable output.
func Disassemble(p *Program) string {
	names := make([]string, 0, len(p.Nodes))
	for name := range p.Nodes {
		names = append(names, name)
	}
	sort.Strings(names)

	var out string
	for i, name := range names {
		if i > 0 {
			out += "\n\n"
		}
		out += DisassembleNode(p, name)
	}
	return out
}

// DisassembleNode renders a single node's bytecode as a listing table.
func DisassembleNode(p *Program, name string) string {
	cn, ok := p.Nodes[name]
	if !ok {
		return fmt.Sprintf("(node %q not found)", name)
	}

	if cn.SourceTextStringID != "" {
		text, _ := p.GetTextForNode(name)
		return fmt.Sprintf("node %s (rawText)\n%s", name, text)
	}

	labelAt := make(map[int]string)
	for label, idx := range cn.Labels {
		labelAt[idx] = label
	}

	data := [][]string{{"#", "label", "op", "operands"}}
	for i, instr := range cn.Instructions {
		row := []string{fmt.Sprintf("%d", i), labelAt[i], string(instr.Op), formatOperands(p, instr)}
		data = append(data, row)
	}

	tableOpts := rosed.Options{
		TableHeaders:             true,
		NoTrailingLineSeparators: true,
	}

	header := fmt.Sprintf("node %s", name)
	return rosed.Edit(header).
		InsertTableOpts(1, data, disasmTableWidth, tableOpts).
		String()
}

func formatOperands(p *Program, instr Instruction) string {
	switch instr.Op {
	case OpRunLine, OpPushString:
		key, _ := instr.OperandA.(string)
		return fmt.Sprintf("%s %q", key, p.Strings[key])
	case OpAddOption:
		key, _ := instr.OperandA.(string)
		dest, _ := instr.OperandB.(string)
		return fmt.Sprintf("%s %q -> %s", key, p.Strings[key], dest)
	default:
		if instr.OperandB != nil {
			return fmt.Sprintf("%v, %v", instr.OperandA, instr.OperandB)
		}
		if instr.OperandA != nil {
			return fmt.Sprintf("%v", instr.OperandA)
		}
		return ""
	}
}
