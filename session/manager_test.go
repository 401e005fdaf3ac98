package session

import (
	"testing"
	"time"

	"planilhas/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewManagerStartsSession(t *testing.T) {
	m := NewManager(nil)
	id := m.Current()
	require.NotEmpty(t, id)
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
	assert.Zero(t, m.Len())
}

func TestStartSessionReplacesIDAndClearsTranscript(t *testing.T) {
	for _, n := range []int{0, 1, 7} {
		m := NewManager(nil)
		before := m.Current()
		for i := 0; i < n; i++ {
			m.AppendUser("ordenar", time.Now())
		}

		after := m.StartSession()
		assert.NotEqual(t, before, after)
		assert.Equal(t, after, m.Current())
		assert.Zero(t, m.Len(), "transcript of length %d must be emptied", n)
	}
}

func TestStartSessionNeverRepeatsCurrentID(t *testing.T) {
	ids := []string{"same", "same", "same", "other"}
	m := &Manager{logger: zap.NewNop(), newID: func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}}
	assert.Equal(t, "same", m.StartSession())
	assert.Equal(t, "other", m.StartSession())
}

func TestAppendIsOrdered(t *testing.T) {
	m := NewManager(nil)
	t0 := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	summary := types.RunSummary{DetectedAction: types.ActionSort, RowsTotal: 10}

	m.AppendUser("ordenar por nome", t0)
	m.AppendAssistant(summary, types.Artifacts{ResultURL: "/download/r.xlsx"}, t0.Add(time.Second))

	got := m.Transcript()
	require.Len(t, got, 2)
	user, ok := got[0].(types.UserTurn)
	require.True(t, ok)
	assert.Equal(t, "ordenar por nome", user.Text)
	assert.Equal(t, t0, user.Timestamp())

	assistant, ok := got[1].(types.AssistantTurn)
	require.True(t, ok)
	assert.Equal(t, summary, assistant.Summary)
	assert.Equal(t, "/download/r.xlsx", assistant.Artifacts.ResultURL)
}

func TestTranscriptReturnsCopy(t *testing.T) {
	m := NewManager(nil)
	m.AppendUser("a", time.Now())
	got := m.Transcript()
	got[0] = types.UserTurn{Text: "mutated"}
	assert.Equal(t, "a", m.Transcript()[0].(types.UserTurn).Text)
}

func TestAdoptServerSessionKeepsTranscript(t *testing.T) {
	m := NewManager(nil)
	m.AppendUser("mesclar", time.Now())
	m.AppendAssistant(types.RunSummary{DetectedAction: types.ActionMerge}, types.Artifacts{}, time.Now())
	before := m.Transcript()

	assert.True(t, m.AdoptServerSession("server-123"))
	assert.Equal(t, "server-123", m.Current())
	assert.Equal(t, before, m.Transcript())

	assert.False(t, m.AdoptServerSession("server-123"))
	assert.False(t, m.AdoptServerSession(""))
	assert.Equal(t, "server-123", m.Current())
}
