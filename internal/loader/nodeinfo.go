// Package loader reads the three source container formats (.yarn.txt Text,
// .json JSON, .node SingleNodeText) into a compiled yarn.Program, sniffing
// the format from the file suffix.
package loader

import (
	"fmt"

	"github.com/dekarrin/yarnspinner/internal/yarn"
)

// NodeInfo is the loader's intermediate record, shared by all three source
// formats: title, body, rawTagsField, colorID, position, and tagsList.
type NodeInfo struct {
	Title        string `json:"title"`
	Body         []string `json:"body"`
	RawTagsField string `json:"tags"`
	ColorID      int    `json:"colorID"`
	Position     NodeInfoPosition `json:"position"`

	// TagsList is RawTagsField split on whitespace; it is what gets handed
	// to yarn.ParseNode as the node's tag set.
	TagsList []string `json:"-"`

	// Unknown holds header fields neither this struct nor the format
	// parser recognized, logged and skipped.
	Unknown map[string]string `json:"-"`
}

// NodeInfoPosition is the editor-canvas position carried by a node header,
// unused by compilation but preserved for round-tripping.
type NodeInfoPosition struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// compileAll parses and compiles every NodeInfo into one Program, in the
// order given. Node titles must be non-empty and unique across the batch.
func compileAll(infos []NodeInfo) (*yarn.Program, error) {
	if len(infos) == 0 {
		return nil, &yarn.LoadError{Message: "container has no nodes"}
	}

	program := yarn.NewProgram()
	strBuilder := yarn.NewStringTableBuilder(program)

	for _, info := range infos {
		if info.Title == "" {
			return nil, &yarn.LoadError{Message: "node is missing a title"}
		}
		if program.NodeExists(info.Title) {
			return nil, &yarn.LoadError{Node: info.Title, Message: "duplicate node title"}
		}

		n, err := yarn.ParseNode(info.Title, info.TagsList, info.Body)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", info.Title, err)
		}
		cn, err := yarn.CompileNode(n, program, strBuilder)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", info.Title, err)
		}
		program.Nodes[info.Title] = cn
	}

	return program, nil
}
