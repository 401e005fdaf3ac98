package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var extPattern = regexp.MustCompile(`(\.[a-zA-Z0-9]+)$`)

// allowedExts is the set of spreadsheet extensions the processing service reads.
var allowedExts = map[string]bool{
	".csv":  true,
	".xlsx": true,
}

// FileExt returns the lowercased trailing extension of filename, or "" when
// the name has none.
func FileExt(filename string) string {
	m := extPattern.FindStringSubmatch(filename)
	if m == nil {
		return ""
	}
	return strings.ToLower(m[1])
}

// SupportedSpreadsheet reports whether filename carries an accepted extension.
func SupportedSpreadsheet(filename string) bool {
	return allowedExts[FileExt(filename)]
}

var unsafeChars = regexp.MustCompile(`[^\p{L}\p{N}._\s()-]`)

// SanitizeFilename cleans filename for safe storage by removing dangerous characters
// and limiting length. It drops any directory part, trims spaces and dots, removes
// parent directory references and filters out unsafe punctuation.
func SanitizeFilename(filename string) string {
	sanitized := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	sanitized = strings.Trim(sanitized, " .")
	sanitized = strings.ReplaceAll(sanitized, "..", "")
	sanitized = unsafeChars.ReplaceAllString(sanitized, "")
	if len(sanitized) > 255 {
		sanitized = strings.ToValidUTF8(sanitized[:255], "")
	}
	return sanitized
}

// VerifyFileExists checks if file exists at the given path and is not a directory.
func VerifyFileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// GenerateID creates a unique identifier using UUID v4.
func GenerateID() string {
	return uuid.New().String()
}
