package session

import (
	"sync"
	"time"

	"planilhas/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Manager owns the current session identifier and its transcript. Both live
// only in memory and are replaced together by StartSession.
type Manager struct {
	mu         sync.RWMutex
	id         string
	transcript []types.ChatMessage
	newID      func() string
	logger     *zap.Logger
}

// NewManager creates a manager with a fresh session already started.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		newID:  func() string { return uuid.New().String() },
		logger: logger,
	}
	m.StartSession()
	return m
}

// StartSession discards the transcript and returns a new random identifier.
func (m *Manager) StartSession() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev := m.id
	id := m.newID()
	for id == prev {
		id = m.newID()
	}
	m.id = id
	m.transcript = nil

	m.logger.Info("Started new session", zap.String("session_id", id))
	return id
}

// Current returns the current session identifier.
func (m *Manager) Current() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.id
}

// AppendUser records the instruction text as submitted.
func (m *Manager) AppendUser(text string, at time.Time) {
	m.append(types.UserTurn{Text: text, At: at})
}

// AppendAssistant records the outcome of one run.
func (m *Manager) AppendAssistant(summary types.RunSummary, artifacts types.Artifacts, at time.Time) {
	m.append(types.AssistantTurn{Summary: summary, Artifacts: artifacts, At: at})
}

func (m *Manager) append(msg types.ChatMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transcript = append(m.transcript, msg)
}

// AdoptServerSession makes id current without touching the transcript. It
// reports whether the identifier changed.
func (m *Manager) AdoptServerSession(id string) bool {
	if id == "" {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if id == m.id {
		return false
	}
	m.logger.Info("Adopted server session",
		zap.String("previous_session_id", m.id),
		zap.String("session_id", id))
	m.id = id
	return true
}

// Transcript returns a copy of the entries in append order.
func (m *Manager) Transcript() []types.ChatMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.ChatMessage, len(m.transcript))
	copy(out, m.transcript)
	return out
}

// Len returns the number of transcript entries.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.transcript)
}
