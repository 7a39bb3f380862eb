package loader

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dekarrin/yarnspinner/internal/yarn"
)

// jsonNodeInfo mirrors NodeInfo's wire shape for the .json container;
// NodeInfo itself isn't unmarshaled directly because RawTagsField needs
// post-processing into TagsList.
type jsonNodeInfo struct {
	Title    string           `json:"title"`
	Body     []string         `json:"body"`
	Tags     string           `json:"tags"`
	ColorID  int              `json:"colorID"`
	Position NodeInfoPosition `json:"position"`
}

// ParseJSON reads the .json container: an array of NodeInfo records with
// the same field semantics as the Text format's headers.
func ParseJSON(data []byte) ([]NodeInfo, error) {
	var raw []jsonNodeInfo
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &yarn.LoadError{Message: fmt.Sprintf("malformed JSON container: %v", err)}
	}
	if len(raw) == 0 {
		return nil, &yarn.LoadError{Message: "no nodes found"}
	}

	infos := make([]NodeInfo, 0, len(raw))
	for _, r := range raw {
		if r.Title == "" {
			return nil, &yarn.LoadError{Message: "node is missing required field \"title\""}
		}
		info := NodeInfo{
			Title:        r.Title,
			Body:         r.Body,
			RawTagsField: r.Tags,
			ColorID:      r.ColorID,
			Position:     r.Position,
		}
		if r.Tags != "" {
			info.TagsList = strings.Fields(r.Tags)
		}
		infos = append(infos, info)
	}
	return infos, nil
}
