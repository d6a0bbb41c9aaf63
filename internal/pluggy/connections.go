package pluggy

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/RenatoMoratti/finance-app/internal/timefmt"
)

// ErrConnectionNotFound is returned when an item id is absent from the store.
var ErrConnectionNotFound = errors.New("connection not found")

// Connection is one registered aggregator link: an opaque item id plus the
// user-facing display name used for provenance on synced records.
type Connection struct {
	ItemID    string `json:"item_id"`
	BankName  string `json:"bank_name"`
	Status    string `json:"status"`
	DataSince string `json:"data_since,omitempty"` // YYYY-MM-DD; earlier transactions are skipped
	CreatedAt string `json:"created_at"`
	LastSync  string `json:"last_sync,omitempty"`
}

// DisplayName returns the bank name, falling back to a truncated item id.
func (c *Connection) DisplayName() string {
	if c.BankName != "" {
		return c.BankName
	}
	id := c.ItemID
	if len(id) > 8 {
		id = id[:8]
	}
	return "Banco_" + id
}

// ConnectionStore persists connections in a JSON file, one file per
// environment. The backing path is resolved on every access so the store
// follows an environment switch. Access is serialized; the file is small and
// rewritten whole.
type ConnectionStore struct {
	mu   sync.Mutex
	path func() string
}

// NewConnectionStore creates a store backed by a fixed file path.
func NewConnectionStore(path string) *ConnectionStore {
	return &ConnectionStore{path: func() string { return path }}
}

// NewConnectionStoreFunc creates a store whose backing file is resolved per
// access, typically from the active environment.
func NewConnectionStoreFunc(path func() string) *ConnectionStore {
	return &ConnectionStore{path: path}
}

// List returns all registered connections.
func (s *ConnectionStore) List() ([]Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Get returns the connection for itemID.
func (s *ConnectionStore) Get(itemID string) (*Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conns, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range conns {
		if conns[i].ItemID == itemID {
			return &conns[i], nil
		}
	}
	return nil, ErrConnectionNotFound
}

// Save inserts or replaces a connection keyed by item id.
func (s *ConnectionStore) Save(conn Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conns, err := s.load()
	if err != nil {
		return err
	}
	if conn.CreatedAt == "" {
		conn.CreatedAt = timefmt.Now()
	}
	replaced := false
	for i := range conns {
		if conns[i].ItemID == conn.ItemID {
			conns[i] = conn
			replaced = true
			break
		}
	}
	if !replaced {
		conns = append(conns, conn)
	}
	return s.store(conns)
}

// UpdateStatus sets the status and last-sync stamp of a connection.
func (s *ConnectionStore) UpdateStatus(itemID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conns, err := s.load()
	if err != nil {
		return err
	}
	for i := range conns {
		if conns[i].ItemID == itemID {
			conns[i].Status = status
			conns[i].LastSync = timefmt.Now()
			return s.store(conns)
		}
	}
	return ErrConnectionNotFound
}

// Delete removes a connection from the registry.
func (s *ConnectionStore) Delete(itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conns, err := s.load()
	if err != nil {
		return err
	}
	for i := range conns {
		if conns[i].ItemID == itemID {
			return s.store(append(conns[:i], conns[i+1:]...))
		}
	}
	return ErrConnectionNotFound
}

func (s *ConnectionStore) load() ([]Connection, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read connections: %w", err)
	}
	var conns []Connection
	if err := json.Unmarshal(data, &conns); err != nil {
		return nil, fmt.Errorf("parse connections: %w", err)
	}
	return conns, nil
}

func (s *ConnectionStore) store(conns []Connection) error {
	path := s.path()
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(conns, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
