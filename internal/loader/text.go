package loader

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/dekarrin/yarnspinner/internal/yarn"
)

const (
	headerEndSentinel = "---"
	bodyEndSentinel   = "==="
)

// ParseText reads the .yarn.txt Text container: a sequence of nodes, each
// beginning with "field: value" header lines terminated by a lone "---",
// followed by a body terminated by a lone "===". Header fields are
// dispatched with an explicit switch rather than reflection, so the header
// schema is a closed, reviewable set.
func ParseText(lines []string) ([]NodeInfo, error) {
	var infos []NodeInfo

	i := 0
	for i < len(lines) {
		if strings.TrimSpace(lines[i]) == "" {
			i++
			continue
		}

		info, consumed, err := parseTextNode(lines[i:])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		infos = append(infos, info)
		i += consumed
	}

	if len(infos) == 0 {
		return nil, &yarn.LoadError{Message: "no nodes found"}
	}
	return infos, nil
}

// parseTextNode parses one header+body node starting at lines[0] and
// reports how many lines it consumed.
func parseTextNode(lines []string) (NodeInfo, int, error) {
	var info NodeInfo
	info.Unknown = make(map[string]string)

	i := 0
	for {
		if i >= len(lines) {
			return info, i, &yarn.LoadError{Message: "unterminated header, missing " + headerEndSentinel}
		}
		line := lines[i]
		i++
		if strings.TrimSpace(line) == headerEndSentinel {
			break
		}

		field, value, ok := strings.Cut(line, ":")
		if !ok {
			return info, i, &yarn.LoadError{Message: fmt.Sprintf("malformed header line %q, expected \"field: value\"", line)}
		}
		field = strings.TrimSpace(field)
		value = strings.TrimSpace(value)

		if err := applyHeaderField(&info, field, value); err != nil {
			return info, i, err
		}
	}

	if info.Title == "" {
		return info, i, &yarn.LoadError{Message: "node header is missing required field \"title\""}
	}

	bodyStart := i
	for {
		if i >= len(lines) {
			return info, i, &yarn.LoadError{Node: info.Title, Message: "unterminated body, missing " + bodyEndSentinel}
		}
		if strings.TrimSpace(lines[i]) == bodyEndSentinel {
			break
		}
		i++
	}
	info.Body = append([]string{}, lines[bodyStart:i]...)
	i++ // consume the "===" sentinel

	return info, i, nil
}

func applyHeaderField(info *NodeInfo, field, value string) error {
	switch field {
	case "title":
		info.Title = value
	case "tags":
		info.RawTagsField = value
		if value != "" {
			info.TagsList = strings.Fields(value)
		}
	case "colorID":
		n, err := strconv.Atoi(value)
		if err != nil {
			return &yarn.LoadError{Node: info.Title, Message: fmt.Sprintf("colorID: %v", err)}
		}
		info.ColorID = n
	case "position":
		x, y, ok := strings.Cut(value, ",")
		if !ok {
			return &yarn.LoadError{Node: info.Title, Message: fmt.Sprintf("position: expected \"x,y\", got %q", value)}
		}
		xi, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return &yarn.LoadError{Node: info.Title, Message: fmt.Sprintf("position.x: %v", err)}
		}
		yi, err := strconv.Atoi(strings.TrimSpace(y))
		if err != nil {
			return &yarn.LoadError{Node: info.Title, Message: fmt.Sprintf("position.y: %v", err)}
		}
		info.Position = NodeInfoPosition{X: xi, Y: yi}
	default:
		log.Printf("loader: node %q: unknown header field %q, skipping", info.Title, field)
		info.Unknown[field] = value
	}
	return nil
}
