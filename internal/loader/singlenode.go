package loader

// singleNodeTitle is the title every .node SingleNodeText container's lone
// node is given.
const singleNodeTitle = "Start"

// ParseSingleNode reads the .node SingleNodeText container: a raw body
// treated as one node titled "Start".
func ParseSingleNode(lines []string) ([]NodeInfo, error) {
	return []NodeInfo{{Title: singleNodeTitle, Body: lines}}, nil
}
