// Package config reads the .yarnproject.toml project manifest: which
// source files to load together, the default start node, and which
// VariableStorage backend a host binary should use.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// StorageBackend names which internal/storage implementation a host binary
// should construct for a project's VariableStorage.
type StorageBackend string

const (
	StorageMemory StorageBackend = "memory"
	StorageSQLite StorageBackend = "sqlite"
)

func (b StorageBackend) String() string { return string(b) }

// ParseStorageBackend parses a string found in a manifest into a
// StorageBackend.
func ParseStorageBackend(s string) (StorageBackend, error) {
	switch StorageBackend(strings.ToLower(s)) {
	case StorageMemory, "":
		return StorageMemory, nil
	case StorageSQLite:
		return StorageSQLite, nil
	default:
		return "", fmt.Errorf("storage backend not one of 'memory' or 'sqlite': %q", s)
	}
}

// rawProject is the TOML wire shape of a .yarnproject.toml file.
type rawProject struct {
	Files     []string `toml:"files"`
	StartNode string   `toml:"start_node"`
	Storage   string   `toml:"storage"`
	DataDir   string   `toml:"data_dir"`
}

// Project is a parsed, validated .yarnproject.toml manifest.
type Project struct {
	// Files lists the source container paths to load together, resolved
	// relative to the manifest's own directory.
	Files []string

	// StartNode is the node Run should begin at if the host doesn't
	// override it. Defaults to "Start".
	StartNode string

	// Storage is which VariableStorage backend the host should construct.
	Storage StorageBackend

	// DataDir is where SQLiteStorage should keep its database file; only
	// meaningful when Storage is StorageSQLite.
	DataDir string
}

// Load reads and validates the .yarnproject.toml manifest at path. Relative
// entries in Files are resolved against path's directory.
func Load(path string) (Project, error) {
	var raw rawProject
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return Project{}, fmt.Errorf("%s: %w", path, err)
	}

	if len(raw.Files) == 0 {
		return Project{}, fmt.Errorf("%s: does not list any source files", path)
	}

	backend, err := ParseStorageBackend(raw.Storage)
	if err != nil {
		return Project{}, fmt.Errorf("%s: %w", path, err)
	}

	startNode := raw.StartNode
	if startNode == "" {
		startNode = "Start"
	}

	dir := filepath.Dir(path)
	files := make([]string, len(raw.Files))
	for i, f := range raw.Files {
		if filepath.IsAbs(f) {
			files[i] = f
		} else {
			files[i] = filepath.Join(dir, f)
		}
	}

	if backend == StorageSQLite && raw.DataDir == "" {
		return Project{}, fmt.Errorf("%s: storage \"sqlite\" requires data_dir", path)
	}

	return Project{
		Files:     files,
		StartNode: startNode,
		Storage:   backend,
		DataDir:   raw.DataDir,
	}, nil
}
