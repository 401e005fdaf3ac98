// Package sheets lists the worksheets of local workbooks so a slot's sheet
// selector can be checked before upload.
package sheets

import (
	"fmt"
	"os"
	"path/filepath"

	apperrors "planilhas/errors"
	"planilhas/metrics"
	"planilhas/utils"

	lru "github.com/hashicorp/golang-lru"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Lister caches worksheet names per file version.
type Lister struct {
	cache  *lru.Cache
	logger *zap.Logger
}

func NewLister(size int, logger *zap.Logger) (*Lister, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("creating sheet cache: %w", err)
	}
	return &Lister{cache: cache, logger: logger}, nil
}

// Sheets returns the worksheet names of an .xlsx file in workbook order. CSV
// files have no worksheets and yield an empty list.
func (l *Lister) Sheets(path string) ([]string, error) {
	ext := utils.FileExt(path)
	if !utils.SupportedSpreadsheet(path) {
		return nil, &apperrors.FileTypeError{Filename: filepath.Base(path), Ext: ext}
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, apperrors.WrapErrorf(apperrors.ErrNotFound, "stat %s: %v", path, err)
	}
	if info.IsDir() {
		return nil, apperrors.WrapErrorf(apperrors.ErrInvalidInput, "%s is a directory", path)
	}
	if ext == ".csv" {
		return []string{}, nil
	}

	key := fmt.Sprintf("%s|%d|%d", path, info.ModTime().UnixNano(), info.Size())
	if cached, ok := l.cache.Get(key); ok {
		metrics.SheetCacheLookups.WithLabelValues("hit").Inc()
		return append([]string(nil), cached.([]string)...), nil
	}
	metrics.SheetCacheLookups.WithLabelValues("miss").Inc()

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	names := f.GetSheetList()
	l.cache.Add(key, names)
	l.logger.Debug("Listed worksheets", zap.String("path", path), zap.Strings("sheets", names))
	return append([]string(nil), names...), nil
}

// Validate reports ErrInvalidInput when sheet is not one of the workbook's
// worksheets. An empty sheet, or a CSV file, always passes.
func (l *Lister) Validate(path, sheet string) error {
	if sheet == "" {
		return nil
	}
	names, err := l.Sheets(path)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return nil
	}
	for _, n := range names {
		if n == sheet {
			return nil
		}
	}
	return apperrors.WrapErrorf(apperrors.ErrInvalidInput, "worksheet %q not found in %s", sheet, filepath.Base(path))
}

// Len reports how many file versions are cached.
func (l *Lister) Len() int {
	return l.cache.Len()
}
