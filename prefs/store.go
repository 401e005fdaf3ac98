// Package prefs is the persistent preference store: slot definitions, slot
// count, the auto-download flag and the draft instruction survive restarts.
// Keys under the session sub-namespace are purged whenever the store is
// initialised.
package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

const (
	Prefix           = "planilhas:"
	SessionNamespace = Prefix + "session:"

	KeySlots          = Prefix + "slots"
	KeySlotCount      = Prefix + "slot_count"
	KeyAutoDownload   = Prefix + "auto_download"
	KeyDraft          = Prefix + "draft"
	KeyCurrentSession = SessionNamespace + "current"
)

const fileName = "prefs.json"

// Store is a write-through key/value store backed by one JSON file. Values
// are kept as raw JSON so their structure round-trips untouched.
type Store struct {
	mu     sync.Mutex
	path   string
	values map[string]json.RawMessage
	logger *zap.Logger
}

// Open creates the state directory if needed and initialises the store.
func Open(dir string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}
	s := &Store{
		path:   filepath.Join(dir, fileName),
		values: make(map[string]json.RawMessage),
		logger: logger,
	}
	if err := s.Init(); err != nil {
		return nil, err
	}
	return s, nil
}

// Init reloads the file and drops every session-scoped entry.
func (s *Store) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values = make(map[string]json.RawMessage)
	data, err := os.ReadFile(s.path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return fmt.Errorf("reading preferences: %w", err)
	default:
		if err := json.Unmarshal(data, &s.values); err != nil {
			s.logger.Warn("Preferences file is corrupt, starting empty",
				zap.String("path", s.path), zap.Error(err))
			s.values = make(map[string]json.RawMessage)
		}
	}

	purged := 0
	for key := range s.values {
		if strings.HasPrefix(key, SessionNamespace) {
			delete(s.values, key)
			purged++
		}
	}
	if purged > 0 {
		s.logger.Debug("Purged session-scoped preferences", zap.Int("count", purged))
	}
	return s.persistLocked()
}

// Get returns the stored value for key. A missing or undecodable value is
// replaced by def, which is persisted before returning.
func Get[T any](s *Store, key string, def T) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if raw, ok := s.values[key]; ok {
		var out T
		err := json.Unmarshal(raw, &out)
		if err == nil {
			return out, nil
		}
		s.logger.Warn("Stored preference has unexpected shape, using default",
			zap.String("key", key), zap.Error(err))
	}
	if err := s.setLocked(key, def); err != nil {
		return def, err
	}
	return def, nil
}

// Set stores value under key and persists it before returning.
func (s *Store) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLocked(key, value)
}

// Delete removes key.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)
	return s.persistLocked()
}

// Raw returns the stored JSON for key.
func (s *Store) Raw(key string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.values[key]
	return append(json.RawMessage(nil), raw...), ok
}

// Keys lists stored keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) setLocked(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding preference %s: %w", key, err)
	}
	prev, had := s.values[key]
	s.values[key] = raw
	if err := s.persistLocked(); err != nil {
		if had {
			s.values[key] = prev
		} else {
			delete(s.values, key)
		}
		return err
	}
	return nil
}

// persistLocked writes the whole map through a temp file and rename.
func (s *Store) persistLocked() error {
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding preferences: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), fileName+".*")
	if err != nil {
		return fmt.Errorf("creating preferences temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing preferences: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing preferences: %w", err)
	}
	return nil
}
