package interpret

import (
	"mime"
	"strings"

	"planilhas/utils"
)

// Default names for inline deliveries without a usable Content-Disposition.
const (
	DefaultCSVName  = "planilhanova.csv"
	DefaultXLSXName = "planilhanova.xlsx"
)

// FilenameFor picks the save name for an inline delivery: the
// Content-Disposition filename when present, else a default by content type.
func FilenameFor(disposition, contentType string) string {
	if name := DispositionFilename(disposition); name != "" {
		return name
	}
	return DefaultFilename(contentType)
}

// DispositionFilename returns the sanitised filename parameter of a
// Content-Disposition header, or "".
func DispositionFilename(disposition string) string {
	if strings.TrimSpace(disposition) == "" {
		return ""
	}
	// ParseMediaType decodes filename* (RFC 5987) into "filename".
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return utils.SanitizeFilename(params["filename"])
}

// DefaultFilename chooses planilhanova.csv or planilhanova.xlsx.
func DefaultFilename(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(contentType)
	}
	if strings.Contains(mediaType, "csv") {
		return DefaultCSVName
	}
	return DefaultXLSXName
}
