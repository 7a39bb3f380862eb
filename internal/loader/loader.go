package loader

import (
	"fmt"
	"os"
	"strings"

	"github.com/dekarrin/yarnspinner/internal/yarn"
)

// Format names one of the three source container formats.
type Format int

const (
	// FormatText is the .yarn.txt container: header/body nodes delimited
	// by "---" and "===".
	FormatText Format = iota
	// FormatJSON is the .json container: an array of NodeInfo records.
	FormatJSON
	// FormatSingleNode is the .node container: one raw body titled "Start".
	FormatSingleNode
)

// SniffFormat selects a Format from a file's suffix. It never reads the
// file's contents; callers with in-memory text use LoadString and name the
// format explicitly.
func SniffFormat(path string) (Format, error) {
	switch {
	case strings.HasSuffix(path, ".yarn.txt"):
		return FormatText, nil
	case strings.HasSuffix(path, ".json"):
		return FormatJSON, nil
	case strings.HasSuffix(path, ".node"):
		return FormatSingleNode, nil
	default:
		return 0, &yarn.LoadError{File: path, Message: "unrecognized source container suffix"}
	}
}

// LoadFile reads path, sniffs its format from the suffix, and compiles it
// into a Program.
func LoadFile(path string) (*yarn.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	format, err := SniffFormat(path)
	if err != nil {
		return nil, err
	}

	program, err := LoadBytes(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return program, nil
}

// LoadBytes compiles raw container bytes of the given format into a
// Program.
func LoadBytes(data []byte, format Format) (*yarn.Program, error) {
	var infos []NodeInfo
	var err error

	switch format {
	case FormatText:
		infos, err = ParseText(strings.Split(string(data), "\n"))
	case FormatJSON:
		infos, err = ParseJSON(data)
	case FormatSingleNode:
		infos, err = ParseSingleNode(strings.Split(string(data), "\n"))
	default:
		return nil, &yarn.LoadError{Message: fmt.Sprintf("unknown format %v", format)}
	}
	if err != nil {
		return nil, err
	}

	return compileAll(infos)
}

// LoadString compiles in-memory source text of the given format into a
// Program, annotating any error with name.
func LoadString(text string, name string, format Format) (*yarn.Program, error) {
	program, err := LoadBytes([]byte(text), format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return program, nil
}

// LoadMany compiles every file in paths and merges the results into one
// Program. Merges are order independent for disjoint node sets and fail
// symmetrically on collision.
func LoadMany(paths []string) (*yarn.Program, error) {
	merged := yarn.NewProgram()
	for _, path := range paths {
		program, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		if err := merged.Merge(program); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return merged, nil
}
