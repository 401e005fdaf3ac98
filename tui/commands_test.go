package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line string
		want command
	}{
		{"junte as planilhas", command{kind: cmdSubmit, arg: "junte as planilhas"}},
		{"  ordene por data  ", command{kind: cmdSubmit, arg: "ordene por data"}},
		{"/new", command{kind: cmdNewSession}},
		{"/count 3", command{kind: cmdCount, n: 3}},
		{"/slots 9", command{kind: cmdCount, n: 9}},
		{"/auto off", command{kind: cmdAuto, on: false}},
		{"/auto ON", command{kind: cmdAuto, on: true}},
		{"/file 2 ./dados/clientes final.xlsx", command{kind: cmdFile, slot: 1, arg: "./dados/clientes final.xlsx"}},
		{"/alias 1 usuarios_id", command{kind: cmdAlias, arg: "usuarios_id"}},
		{"/sheet 1", command{kind: cmdSheet}},
		{"/clear 5", command{kind: cmdClear, slot: 4}},
		{"/download /download/r.xlsx", command{kind: cmdDownload, arg: "/download/r.xlsx"}},
		{"/quit", command{kind: cmdQuit}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := parseCommand(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommandErrors(t *testing.T) {
	for _, line := range []string{"/count x", "/auto maybe", "/file 6 a.csv", "/file 1", "/alias", "/download", "/bogus"} {
		_, err := parseCommand(line)
		assert.Error(t, err, line)
	}
}
