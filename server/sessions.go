package server

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/dekarrin/yarnspinner"
	"github.com/dekarrin/yarnspinner/internal/config"
	"github.com/dekarrin/yarnspinner/internal/storage"
	"github.com/dekarrin/yarnspinner/internal/yarn"
	"github.com/dekarrin/yarnspinner/server/serr"
	"github.com/google/uuid"
)

// SessionManager owns the set of live Sessions, each a goroutine-confined
// Dialogue.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewSessionManager returns an empty SessionManager.
func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[uuid.UUID]*Session)}
}

// Create loads a project (either by manifestPath, or from an explicit file
// list with an optional startNode override) and starts a new Session
// goroutine for it.
func (m *SessionManager) Create(manifestPath string, files []string, startNode string) (*Session, error) {
	var project config.Project
	if manifestPath != "" {
		var err error
		project, err = config.Load(manifestPath)
		if err != nil {
			return nil, fmt.Errorf("load manifest: %w", err)
		}
	} else {
		if len(files) == 0 {
			return nil, fmt.Errorf("must supply either manifestPath or files")
		}
		project = config.Project{Files: files, StartNode: startNode, Storage: config.StorageMemory}
	}
	if startNode != "" {
		project.StartNode = startNode
	}

	var varStorage yarn.VariableStorage
	switch project.Storage {
	case config.StorageSQLite:
		dbPath := filepath.Join(project.DataDir, "variables.db")
		sqliteStorage, err := storage.NewSQLiteStorage(dbPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite storage: %w", err)
		}
		varStorage = sqliteStorage
	default:
		varStorage = storage.NewMemoryStorage()
	}

	d := yarnspinner.New(varStorage)
	for _, f := range project.Files {
		if err := d.LoadFile(f); err != nil {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	id := uuid.New()
	sess := newSession(id, d)

	m.mu.Lock()
	m.sessions[id] = sess
	m.mu.Unlock()

	return sess, nil
}

// Get returns the live Session with the given ID, or serr.ErrNotFound.
func (m *SessionManager) Get(id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, serr.ErrNotFound
	}
	return sess, nil
}

// Delete stops and forgets the Session with the given ID.
func (m *SessionManager) Delete(id uuid.UUID) error {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return serr.ErrNotFound
	}
	sess.Close()
	return nil
}

// Close stops every live session. Used on server shutdown.
func (m *SessionManager) Close() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for id, sess := range m.sessions {
		sessions = append(sessions, sess)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, sess := range sessions {
		sess.Close()
	}
}
