package saver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"planilhas/utils"

	"go.uber.org/zap"
)

// Saver performs the save-to-disk side effect for delivered files.
type Saver interface {
	Save(filename string, r io.Reader) (string, error)
}

// DirSaver writes files into one directory. An existing name gets a
// " (1)", " (2)", ... suffix before the extension instead of being replaced.
type DirSaver struct {
	Dir    string
	Logger *zap.Logger
}

const maxSuffix = 1000

// Save writes r to a new file and returns its path.
func (s *DirSaver) Save(filename string, r io.Reader) (string, error) {
	name := utils.SanitizeFilename(filename)
	if name == "" {
		return "", fmt.Errorf("invalid or unsafe filename %q", filename)
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", fmt.Errorf("creating download directory: %w", err)
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 0; i < maxSuffix; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", stem, i, ext)
		}
		path := filepath.Join(s.Dir, candidate)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("creating %s: %w", candidate, err)
		}

		n, err := io.Copy(f, r)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
			return "", fmt.Errorf("writing %s: %w", candidate, err)
		}
		if s.Logger != nil {
			s.Logger.Info("File saved", zap.String("path", path), zap.Int64("size_bytes", n))
		}
		return path, nil
	}
	return "", fmt.Errorf("no free name for %s in %s", name, s.Dir)
}
