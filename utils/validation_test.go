package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileExt(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"csv", "a.csv", ".csv"},
		{"upper xlsx", "Relatorio.XLSX", ".xlsx"},
		{"double ext", "dump.tar.gz", ".gz"},
		{"none", "README", ""},
		{"trailing dot", "name.", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FileExt(tt.in))
		})
	}
}

func TestSupportedSpreadsheet(t *testing.T) {
	assert.True(t, SupportedSpreadsheet("a.csv"))
	assert.True(t, SupportedSpreadsheet("b.XLSX"))
	assert.False(t, SupportedSpreadsheet("c.xls"))
	assert.False(t, SupportedSpreadsheet("d.pdf"))
	assert.False(t, SupportedSpreadsheet("noext"))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "planilhanova.xlsx", SanitizeFilename("planilhanova.xlsx"))
	assert.Equal(t, "passwd", SanitizeFilename("../../etc/passwd"))
	assert.Equal(t, "evil.csv", SanitizeFilename(`C:\tmp\evil.csv`))
	assert.Equal(t, "ab.csv", SanitizeFilename("a\"b.csv"))
	assert.Equal(t, "", SanitizeFilename(".."))
	assert.Equal(t, "relatório (1).xlsx", SanitizeFilename("relatório (1).xlsx"))
}

func TestVerifyFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.csv")
	assert.False(t, VerifyFileExists(path))
	assert.NoError(t, os.WriteFile(path, []byte("a"), 0644))
	assert.True(t, VerifyFileExists(path))
	assert.False(t, VerifyFileExists(dir))
}
