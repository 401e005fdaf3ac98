package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestStore(t *testing.T) (*Store, string) {
	dir := t.TempDir()
	store, err := Open(dir, nil)
	require.NoError(t, err)
	return store, dir
}

func TestGetPersistsDefaultOnMiss(t *testing.T) {
	store, dir := createTestStore(t)

	got, err := Get(store, Prefix+"answer", 42)
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	reopened, err := Open(dir, nil)
	require.NoError(t, err)
	raw, ok := reopened.Raw(Prefix + "answer")
	require.True(t, ok, "default should be persisted on first read")
	assert.JSONEq(t, `42`, string(raw))
}

func TestSetRoundTripsStructure(t *testing.T) {
	store, dir := createTestStore(t)

	type nested struct {
		Count   int      `json:"count"`
		Enabled bool     `json:"enabled"`
		Columns []string `json:"added_columns"`
	}
	in := nested{Count: 3, Enabled: true, Columns: []string{"cpf", "email", "nome"}}
	require.NoError(t, store.Set(Prefix+"nested", in))

	reopened, err := Open(dir, nil)
	require.NoError(t, err)
	out, err := Get(reopened, Prefix+"nested", nested{})
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestRawPreservesObjectKeyOrder(t *testing.T) {
	store, dir := createTestStore(t)
	raw := json.RawMessage(`{"z":1,"a":2,"m":3}`)
	require.NoError(t, store.Set(Prefix+"ordered", raw))

	reopened, err := Open(dir, nil)
	require.NoError(t, err)
	got, ok := reopened.Raw(Prefix + "ordered")
	require.True(t, ok)
	body := string(got)
	assert.Less(t, strings.Index(body, `"z"`), strings.Index(body, `"a"`))
	assert.Less(t, strings.Index(body, `"a"`), strings.Index(body, `"m"`))
}

func TestInitPurgesSessionNamespace(t *testing.T) {
	store, dir := createTestStore(t)
	require.NoError(t, store.Set(KeyCurrentSession, "abc"))
	require.NoError(t, store.Set(SessionNamespace+"transcript", []string{"x"}))
	require.NoError(t, store.Set(KeyDraft, "keep me"))

	reopened, err := Open(dir, nil)
	require.NoError(t, err)
	_, ok := reopened.Raw(KeyCurrentSession)
	assert.False(t, ok)
	_, ok = reopened.Raw(SessionNamespace + "transcript")
	assert.False(t, ok)

	draft, err := reopened.Draft()
	require.NoError(t, err)
	assert.Equal(t, "keep me", draft)

	// The purge itself is persisted.
	data, err := os.ReadFile(filepath.Join(dir, fileName))
	require.NoError(t, err)
	assert.NotContains(t, string(data), SessionNamespace)
}

func TestInitRecoversFromCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, fileName), []byte("{not json"), 0644))

	store, err := Open(dir, nil)
	require.NoError(t, err)
	assert.Empty(t, store.Keys())
}

func TestGetFallsBackOnShapeMismatch(t *testing.T) {
	store, _ := createTestStore(t)
	require.NoError(t, store.Set(KeyAutoDownload, "yes"))

	on, err := store.AutoDownload()
	require.NoError(t, err)
	assert.True(t, on)

	raw, _ := store.Raw(KeyAutoDownload)
	assert.JSONEq(t, `true`, string(raw))
}

func TestDelete(t *testing.T) {
	store, _ := createTestStore(t)
	require.NoError(t, store.Set(KeyDraft, "x"))
	require.NoError(t, store.Delete(KeyDraft))
	require.NoError(t, store.Delete(KeyDraft))
	_, ok := store.Raw(KeyDraft)
	assert.False(t, ok)
}
