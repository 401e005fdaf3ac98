package cmd

import (
	"bytes"
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
	"planilhas/app"
	"planilhas/config"
	apperrors "planilhas/errors"
	"planilhas/prefs"
	"planilhas/types"
)

func TestParseFileSpec(t *testing.T) {
	s, err := parseFileSpec("/data/a.xlsx:usuarios_id:Plan1")
	require.NoError(t, err)
	assert.Equal(t, fileSpec{Path: "/data/a.xlsx", Alias: "usuarios_id", Sheet: "Plan1"}, s)

	s, err = parseFileSpec("/data/b.csv")
	require.NoError(t, err)
	assert.Equal(t, fileSpec{Path: "/data/b.csv"}, s)

	_, err = parseFileSpec(":alias")
	assert.True(t, apperrors.IsInvalidInput(err))
}

func TestApplyFlagsNormalizesFormat(t *testing.T) {
	saved := flags
	t.Cleanup(func() { flags = saved })

	for in, want := range map[string]string{"CSV": types.FormatCSV, "pdf": types.FormatXLSX, "xlsx": types.FormatXLSX} {
		cfg := &config.Config{OutFormat: types.FormatCSV}
		flags.outFormat = in
		applyFlags(cfg)
		assert.Equal(t, want, cfg.OutFormat, in)
	}

	cfg := &config.Config{OutFormat: types.FormatCSV}
	flags.outFormat = ""
	applyFlags(cfg)
	assert.Equal(t, types.FormatCSV, cfg.OutFormat)
}

func TestSlotArg(t *testing.T) {
	i, err := slotArg("5")
	require.NoError(t, err)
	assert.Equal(t, 4, i)
	_, err = slotArg("0")
	assert.Error(t, err)
	_, err = slotArg("x")
	assert.Error(t, err)
}

func newCmdApp(t *testing.T, h http.HandlerFunc) (*app.App, string) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	dir := t.TempDir()
	cfg := &config.Config{
		APIBase:        srv.URL,
		StateDir:       filepath.Join(dir, "state"),
		DownloadDir:    filepath.Join(dir, "out"),
		RequestTimeout: 5 * time.Second,
		ToastTTL:       time.Hour,
		OutFormat:      types.FormatCSV,
		SheetCacheSize: 4,
	}
	store, err := prefs.Open(cfg.StateDir, nil)
	require.NoError(t, err)
	a, err := app.New(cfg, store, apiclient.New(cfg, nil), nil)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a, dir
}

func TestAttachFilesAndSubmit(t *testing.T) {
	a, dir := newCmdApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"summary":{"detected_action":"MERGE","destination":"clientes","source":"pedidos","key":"id","added_columns":["total"],"fill_missing":"SEM CPF","rows_total":4,"rows_unmatched":1},"artifacts":{"result_url":"/download/r.csv","unmatched_url":"/download/u.csv"}}`)
	})
	good := filepath.Join(dir, "clientes.csv")
	other := filepath.Join(dir, "pedidos.csv")
	require.NoError(t, os.WriteFile(good, []byte("id\n"), 0644))
	require.NoError(t, os.WriteFile(other, []byte("id,total\n"), 0644))

	err := attachFiles(a, []fileSpec{
		{Path: good, Alias: "clientes"},
		{Path: filepath.Join(dir, "notas.pdf"), Alias: "notas"},
		{Path: other, Alias: "pedidos"},
	})
	require.NoError(t, err)

	slots, err := a.Slots()
	require.NoError(t, err)
	require.Len(t, slots, 3)
	assert.Empty(t, slots[1].Path)

	var out, errOut bytes.Buffer
	require.NoError(t, submit(context.Background(), a, "traga o total", &out, &errOut))
	assert.Contains(t, out.String(), `Added column "total" from "pedidos" to "clientes" matched on "id"`)
	assert.Contains(t, out.String(), "/download/u.csv")
	assert.Contains(t, errOut.String(), "notas.pdf")
}

func TestAttachFilesTooMany(t *testing.T) {
	a, _ := newCmdApp(t, func(http.ResponseWriter, *http.Request) {})
	specs := make([]fileSpec, types.MaxSlots+1)
	assert.True(t, apperrors.IsInvalidInput(attachFiles(a, specs)))
}
