package yarn

import (
	"fmt"

	"github.com/dekarrin/rezi"
)

// file serialize.go implements the compiled-container binary round-trip
// using the rezi library. rezi's reflection-based Enc/Dec handle Program's
// maps/slices/structs directly; Instruction's polymorphic OperandA/OperandB
// (an any holding one of a small closed set of concrete types) needs
// explicit type-tag encoding, since rezi cannot reflect into an interface
// value without knowing the concrete type in advance.

// operand type tags for Instruction (de)serialization.
const (
	operandNil uint8 = iota
	operandString
	operandFloat32
	operandBool
)

// MarshalBinary implements encoding.BinaryMarshaler.
func (in Instruction) MarshalBinary() ([]byte, error) {
	var data []byte

	opBytes, err := rezi.Enc(string(in.Op))
	if err != nil {
		return nil, fmt.Errorf("encode opcode: %w", err)
	}
	data = append(data, opBytes...)

	aBytes, err := encOperand(in.OperandA)
	if err != nil {
		return nil, fmt.Errorf("encode operand A: %w", err)
	}
	data = append(data, aBytes...)

	bBytes, err := encOperand(in.OperandB)
	if err != nil {
		return nil, fmt.Errorf("encode operand B: %w", err)
	}
	data = append(data, bBytes...)

	return data, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (in *Instruction) UnmarshalBinary(data []byte) error {
	var op string
	n, err := rezi.Dec(data, &op)
	if err != nil {
		return fmt.Errorf("decode opcode: %w", err)
	}
	data = data[n:]
	in.Op = Opcode(op)

	a, n, err := decOperand(data)
	if err != nil {
		return fmt.Errorf("decode operand A: %w", err)
	}
	data = data[n:]
	in.OperandA = a

	b, _, err := decOperand(data)
	if err != nil {
		return fmt.Errorf("decode operand B: %w", err)
	}
	in.OperandB = b

	return nil
}

func encOperand(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return rezi.Enc(operandNil)
	case string:
		tag, err := rezi.Enc(operandString)
		if err != nil {
			return nil, err
		}
		body, err := rezi.Enc(val)
		if err != nil {
			return nil, err
		}
		return append(tag, body...), nil
	case float32:
		tag, err := rezi.Enc(operandFloat32)
		if err != nil {
			return nil, err
		}
		body, err := rezi.Enc(val)
		if err != nil {
			return nil, err
		}
		return append(tag, body...), nil
	case bool:
		tag, err := rezi.Enc(operandBool)
		if err != nil {
			return nil, err
		}
		body, err := rezi.Enc(val)
		if err != nil {
			return nil, err
		}
		return append(tag, body...), nil
	default:
		return nil, fmt.Errorf("operand has unsupported type %T", v)
	}
}

func decOperand(data []byte) (any, int, error) {
	var tag uint8
	read, err := rezi.Dec(data, &tag)
	if err != nil {
		return nil, 0, err
	}
	total := read
	data = data[read:]

	switch tag {
	case operandNil:
		return nil, total, nil
	case operandString:
		var s string
		n, err := rezi.Dec(data, &s)
		if err != nil {
			return nil, 0, err
		}
		return s, total + n, nil
	case operandFloat32:
		var f float32
		n, err := rezi.Dec(data, &f)
		if err != nil {
			return nil, 0, err
		}
		return f, total + n, nil
	case operandBool:
		var b bool
		n, err := rezi.Dec(data, &b)
		if err != nil {
			return nil, 0, err
		}
		return b, total + n, nil
	default:
		return nil, 0, fmt.Errorf("unknown operand type tag %d", tag)
	}
}

// compiledContainer is the on-disk shape of the compiled container format:
// only Nodes and Strings are kept, since LineInfo can always be
// recomputed or omitted. Version is a literal format tag, "V1".
type compiledContainer struct {
	Version string
	Nodes   map[string]*CompiledNode
	Strings map[string]string
}

// Encode serializes p into the compiled-container binary format. LineInfo
// is intentionally omitted.
func (p *Program) Encode() ([]byte, error) {
	return rezi.Enc(compiledContainer{Version: "V1", Nodes: p.Nodes, Strings: p.Strings})
}

// DecodeProgram deserializes a compiled container previously produced by
// Encode. LineInfo is left empty, so a decoded Program's source positions
// cannot be used as a localisation source, only as a runnable one. It
// returns an error wrapping LoadError semantics if data is truncated,
// malformed, or carries an unrecognised version tag.
func DecodeProgram(data []byte) (*Program, error) {
	var c compiledContainer
	n, err := rezi.Dec(data, &c)
	if err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("REZI decode: %v", err)}
	}
	if n != len(data) {
		return nil, &LoadError{Message: fmt.Sprintf("REZI decoded byte count mismatch; only consumed %d/%d bytes", n, len(data))}
	}
	if c.Version != "V1" {
		return nil, &LoadError{Message: fmt.Sprintf("unsupported compiled container version %q", c.Version)}
	}
	return &Program{Nodes: c.Nodes, Strings: c.Strings, LineInfo: make(map[string]LineInfo)}, nil
}
