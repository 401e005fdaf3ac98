package app

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planilhas/apiclient"
	"planilhas/config"
	apperrors "planilhas/errors"
	"planilhas/interpret"
	"planilhas/prefs"
	"planilhas/saver"
	"planilhas/submission"
	"planilhas/types"
)

type testEnv struct {
	app   *App
	store *prefs.Store
	cfg   *config.Config
	dir   string
}

func newTestEnv(t *testing.T, backend func(cfg *config.Config) Backend) *testEnv {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		StateDir:       filepath.Join(dir, "state"),
		DownloadDir:    filepath.Join(dir, "downloads"),
		RequestTimeout: 5 * time.Second,
		ToastTTL:       time.Hour,
		OutFormat:      types.FormatXLSX,
		SheetCacheSize: 8,
	}
	store, err := prefs.Open(cfg.StateDir, nil)
	require.NoError(t, err)
	a, err := New(cfg, store, backend(cfg), nil)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return &testEnv{app: a, store: store, cfg: cfg, dir: dir}
}

func serverBackend(t *testing.T, h http.HandlerFunc) func(cfg *config.Config) Backend {
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return func(cfg *config.Config) Backend {
		cfg.APIBase = srv.URL
		return apiclient.New(cfg, nil)
	}
}

func (e *testEnv) file(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestSubmitMergeScenario(t *testing.T) {
	var fields map[string][]string
	var files []string
	env := newTestEnv(t, serverBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		fields = r.MultipartForm.Value
		for name := range r.MultipartForm.File {
			files = append(files, name)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"session_id":"","summary":{"detected_action":"MERGE","destination":"usuarios_id","source":"usuarios_cpf","key":"nome","added_columns":["cpf"],"fill_missing":null,"rows_total":5,"rows_unmatched":1},"artifacts":{"result_url":"/download/resultado.xlsx","unmatched_url":null,"log_url":null}}`)
	}))

	a := env.app
	require.NoError(t, a.AttachFile(0, env.file(t, "a.xlsx", "PK")))
	require.NoError(t, a.SetAlias(0, "usuarios_id"))
	require.NoError(t, a.AttachFile(1, env.file(t, "b.csv", "nome,cpf\n")))
	require.NoError(t, a.SetAlias(1, "usuarios_cpf"))
	require.NoError(t, a.SetDraft("merge by name"))
	sessionID := a.Sessions().Current()

	res, err := a.Submit(context.Background(), "merge by name")
	require.NoError(t, err)
	assert.True(t, res.Succeeded)
	assert.False(t, a.Loading())

	assert.ElementsMatch(t, []string{"file1", "file2"}, files)
	assert.Equal(t, []string{`{"file1":"usuarios_id","file2":"usuarios_cpf"}`}, fields[submission.FieldAliases])
	assert.NotContains(t, fields, submission.FieldSheets)
	assert.Equal(t, []string{sessionID}, fields[submission.FieldSessionID])
	assert.Equal(t, []string{"1"}, fields[submission.FieldDownload])

	draft, err := env.store.Draft()
	require.NoError(t, err)
	assert.Empty(t, draft)

	state, err := a.Snapshot()
	require.NoError(t, err)
	require.Len(t, state.Transcript, 2)
	assert.Equal(t, RoleUser, state.Transcript[0].Role)
	assert.Equal(t, "merge by name", state.Transcript[0].Text)
	assert.Equal(t, RoleAssistant, state.Transcript[1].Role)
	assert.Equal(t, []Link{{Label: "Result", URL: "/download/resultado.xlsx"}}, state.Transcript[1].Links)
	assert.Equal(t, sessionID, state.SessionID)
	assert.Empty(t, state.Toasts)
}

func TestSubmitServerDetail(t *testing.T) {
	env := newTestEnv(t, serverBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, `{"detail":"arquivo inválido"}`)
	}))
	a := env.app
	require.NoError(t, a.AttachFile(0, env.file(t, "a.csv", "x\n")))

	_, err := a.Submit(context.Background(), "ordene")
	require.Error(t, err)
	assert.True(t, apperrors.IsTransport(err))
	assert.False(t, a.Loading())
	assert.Equal(t, 0, a.Sessions().Len())

	toasts := a.Notifier().Active()
	require.Len(t, toasts, 1)
	assert.Equal(t, "arquivo inválido", toasts[0].Message)
}

func TestSubmitRejectsUnsupportedFiles(t *testing.T) {
	env := newTestEnv(t, serverBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", types.MIMECSV)
		io.WriteString(w, "x\n")
	}))
	a := env.app
	pdf := env.file(t, "notas.pdf", "%PDF")
	require.NoError(t, env.store.UpdateSlot(0, func(d *types.SlotDefinition) {
		d.Path = pdf
		d.Alias = "notas"
	}))
	require.NoError(t, a.AttachFile(1, env.file(t, "b.csv", "x\n")))

	res, err := a.Submit(context.Background(), "ordene")
	require.NoError(t, err)
	assert.True(t, res.Succeeded)

	toasts := a.Notifier().Active()
	require.Len(t, toasts, 1)
	assert.Contains(t, toasts[0].Message, "notas.pdf")

	slots, err := a.Slots()
	require.NoError(t, err)
	assert.Empty(t, slots[0].Path)
	assert.Equal(t, "notas", slots[0].Alias)
	assert.NotEmpty(t, slots[1].Path)

	// Auto-download is on by default.
	_, statErr := os.Stat(filepath.Join(env.cfg.DownloadDir, interpret.DefaultCSVName))
	assert.NoError(t, statErr)
}

func TestSubmitInsufficientInput(t *testing.T) {
	called := false
	env := newTestEnv(t, serverBackend(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	a := env.app
	require.NoError(t, a.SetDraft("keep me"))

	_, err := a.Submit(context.Background(), "keep me")
	assert.True(t, apperrors.IsInsufficientInput(err))
	assert.False(t, called)
	assert.False(t, a.Loading())

	toasts := a.Notifier().Active()
	require.Len(t, toasts, 1)
	assert.Equal(t, apperrors.MsgInsufficientInput, toasts[0].Message)

	draft, _ := env.store.Draft()
	assert.Equal(t, "keep me", draft)
}

func TestSubmitAdoptsServerSession(t *testing.T) {
	env := newTestEnv(t, serverBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", types.MIMEXLSX)
		w.Header().Set(interpret.HeaderSessionID, "server-abc")
		w.Header().Set("Content-Disposition", `attachment; filename="planilhanova.xlsx"`)
		io.WriteString(w, "PK")
	}))
	a := env.app
	require.NoError(t, a.AttachFile(0, env.file(t, "a.xlsx", "PK")))
	require.NoError(t, a.SetAutoDownload(false))

	res, err := a.Submit(context.Background(), "processe")
	require.NoError(t, err)
	assert.True(t, res.Adopted)
	assert.Empty(t, res.SavedPath)
	assert.Equal(t, "server-abc", a.Sessions().Current())

	current, err := prefs.Get(env.store, prefs.KeyCurrentSession, "")
	require.NoError(t, err)
	assert.Equal(t, "server-abc", current)
	assert.Equal(t, 2, a.Sessions().Len())
}

type blockingBackend struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingBackend) Process(ctx context.Context, sub *submission.Submission) (*http.Response, error) {
	close(b.started)
	<-b.release
	return nil, context.Canceled
}

func (b *blockingBackend) FetchArtifact(context.Context, string, saver.Saver) (string, error) {
	return "", nil
}

func TestSubmitIsExclusive(t *testing.T) {
	backend := &blockingBackend{started: make(chan struct{}), release: make(chan struct{})}
	env := newTestEnv(t, func(*config.Config) Backend { return backend })
	a := env.app
	require.NoError(t, a.AttachFile(0, env.file(t, "a.csv", "x\n")))

	done := make(chan error, 1)
	go func() {
		_, err := a.Submit(context.Background(), "first")
		done <- err
	}()
	<-backend.started
	assert.True(t, a.Loading())

	_, err := a.Submit(context.Background(), "second")
	assert.True(t, apperrors.IsBusy(err))

	close(backend.release)
	assert.True(t, apperrors.IsTransport(<-done))
	assert.False(t, a.Loading())
}

type panickingBackend struct{}

func (panickingBackend) Process(context.Context, *submission.Submission) (*http.Response, error) {
	panic("boom")
}

func (panickingBackend) FetchArtifact(context.Context, string, saver.Saver) (string, error) {
	return "", nil
}

func TestSubmitRecoversFromPanic(t *testing.T) {
	env := newTestEnv(t, func(*config.Config) Backend { return panickingBackend{} })
	a := env.app
	require.NoError(t, a.AttachFile(0, env.file(t, "a.csv", "x\n")))

	_, err := a.Submit(context.Background(), "p")
	assert.True(t, apperrors.IsDecode(err))
	assert.False(t, a.Loading())
	assert.Equal(t, 0, a.Sessions().Len())
	require.Len(t, a.Notifier().Active(), 1)
}

func TestNewSession(t *testing.T) {
	env := newTestEnv(t, serverBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"summary":{"detected_action":"SORT","destination":"a","key":"id","added_columns":[],"rows_total":1,"rows_unmatched":0},"artifacts":{}}`)
	}))
	a := env.app
	require.NoError(t, a.AttachFile(0, env.file(t, "a.csv", "x\n")))
	_, err := a.Submit(context.Background(), "ordene")
	require.NoError(t, err)
	require.Equal(t, 2, a.Sessions().Len())

	before := a.Sessions().Current()
	id, err := a.NewSession()
	require.NoError(t, err)
	assert.NotEqual(t, before, id)
	assert.Equal(t, 0, a.Sessions().Len())

	current, _ := prefs.Get(env.store, prefs.KeyCurrentSession, "")
	assert.Equal(t, id, current)

	// Slot setup survives a new session.
	slots, _ := a.Slots()
	assert.NotEmpty(t, slots[0].Path)
}

func TestAdoptSessionMirrorsID(t *testing.T) {
	env := newTestEnv(t, func(*config.Config) Backend { return &blockingBackend{} })
	a := env.app

	require.NoError(t, a.AdoptSession("srv-42"))
	assert.Equal(t, "srv-42", a.Sessions().Current())
	current, _ := prefs.Get(env.store, prefs.KeyCurrentSession, "")
	assert.Equal(t, "srv-42", current)

	require.NoError(t, a.AdoptSession(""))
	assert.Equal(t, "srv-42", a.Sessions().Current())
}

func TestAttachFileUnsupported(t *testing.T) {
	env := newTestEnv(t, func(*config.Config) Backend { return &blockingBackend{} })
	a := env.app

	err := a.AttachFile(0, "/tmp/relatorio.docx")
	assert.True(t, apperrors.IsUnsupportedFileType(err))
	require.Len(t, a.Notifier().Active(), 1)

	err = a.AttachFile(0, filepath.Join(env.dir, "missing.csv"))
	assert.True(t, apperrors.IsNotFound(err))
}
