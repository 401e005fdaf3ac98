package submission

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	apperrors "planilhas/errors"
	"planilhas/types"
	"planilhas/utils"
)

// Form field names understood by the processing service.
const (
	FieldAliases   = "aliases"
	FieldSheets    = "sheets"
	FieldPrompt    = "prompt"
	FieldSessionID = "session_id"
	FieldDownload  = "download"
	FieldOutFormat = "out_format"
)

// Part is one attached file under its positional field name.
type Part struct {
	Field string
	Slot  int
	File  types.FileHandle
}

// Submission is one outbound request, ready to be encoded as multipart.
type Submission struct {
	Parts     []Part
	Aliases   map[string]string
	Sheets    map[string]string
	Prompt    string
	SessionID string
	Download  bool
	OutFormat string
}

// Rejection is a file dropped from its slot because of its extension.
type Rejection struct {
	Slot int
	Err  *apperrors.FileTypeError
}

// FileField returns the positional field name for the n-th attached file.
func FileField(n int) string {
	return fmt.Sprintf("file%d", n)
}

// DefaultAlias is substituted for a blank alias at position n.
func DefaultAlias(n int) string {
	return fmt.Sprintf("planilha_%d", n)
}

// Build assembles a submission from the populated slots in slot order.
// Files with unsupported extensions are reported as rejections and skipped;
// ErrInsufficientInput is returned when no usable file remains.
func Build(slots []types.UploadSlot, prompt, sessionID string, autoDownload bool, outFormat string) (*Submission, []Rejection, error) {
	var rejected []Rejection
	sub := &Submission{
		Aliases:   make(map[string]string),
		Sheets:    make(map[string]string),
		Prompt:    prompt,
		SessionID: sessionID,
		Download:  autoDownload,
		OutFormat: normalizeFormat(outFormat),
	}

	n := 0
	for i, slot := range slots {
		if slot.File == nil {
			continue
		}
		name := slot.File.Name()
		if !utils.SupportedSpreadsheet(name) {
			rejected = append(rejected, Rejection{
				Slot: i,
				Err:  &apperrors.FileTypeError{Filename: name, Ext: utils.FileExt(name)},
			})
			continue
		}

		n++
		field := FileField(n)
		sub.Parts = append(sub.Parts, Part{Field: field, Slot: i, File: slot.File})

		alias := strings.TrimSpace(slot.Alias)
		if alias == "" {
			alias = DefaultAlias(n)
		}
		sub.Aliases[field] = alias

		if slot.Sheet != nil && strings.TrimSpace(*slot.Sheet) != "" {
			sub.Sheets[field] = strings.TrimSpace(*slot.Sheet)
		}
	}

	if n == 0 {
		return nil, rejected, apperrors.ErrInsufficientInput
	}
	return sub, rejected, nil
}

// Fields returns the text fields exactly as they are sent. The sheets field
// is absent when no slot selects a sheet.
func (s *Submission) Fields() (map[string]string, error) {
	aliases, err := json.Marshal(s.Aliases)
	if err != nil {
		return nil, fmt.Errorf("encoding aliases: %w", err)
	}
	download := "0"
	if s.Download {
		download = "1"
	}
	fields := map[string]string{
		FieldAliases:   string(aliases),
		FieldPrompt:    s.Prompt,
		FieldSessionID: s.SessionID,
		FieldDownload:  download,
		FieldOutFormat: s.OutFormat,
	}
	if len(s.Sheets) > 0 {
		sheets, err := json.Marshal(s.Sheets)
		if err != nil {
			return nil, fmt.Errorf("encoding sheets: %w", err)
		}
		fields[FieldSheets] = string(sheets)
	}
	return fields, nil
}

// fieldOrder fixes the order text fields are written in.
var fieldOrder = []string{FieldAliases, FieldSheets, FieldPrompt, FieldSessionID, FieldDownload, FieldOutFormat}

// Encode writes the multipart body to w. The content type carrying the
// boundary is returned before any byte is written, so w may be a pipe.
func (s *Submission) Encode(w io.Writer) (contentType string, write func() error) {
	mw := multipart.NewWriter(w)
	return mw.FormDataContentType(), func() error {
		for _, p := range s.Parts {
			if err := writeFile(mw, p); err != nil {
				return err
			}
		}
		fields, err := s.Fields()
		if err != nil {
			return err
		}
		for _, name := range fieldOrder {
			value, ok := fields[name]
			if !ok {
				continue
			}
			if err := mw.WriteField(name, value); err != nil {
				return fmt.Errorf("writing field %s: %w", name, err)
			}
		}
		return mw.Close()
	}
}

// Reader streams the encoded body through a pipe.
func (s *Submission) Reader() (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	contentType, write := s.Encode(pw)
	go func() {
		pw.CloseWithError(write())
	}()
	return pr, contentType
}

func writeFile(mw *multipart.Writer, p Part) error {
	src, err := p.File.Open()
	if err != nil {
		return fmt.Errorf("opening %s: %w", p.File.Name(), err)
	}
	defer src.Close()

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(p.Field), quoteEscaper.Replace(p.File.Name())))
	h.Set("Content-Type", contentTypeFor(p.File.Name()))
	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("creating part %s: %w", p.Field, err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("copying %s: %w", p.File.Name(), err)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func contentTypeFor(name string) string {
	if utils.FileExt(name) == ".csv" {
		return types.MIMECSV
	}
	return types.MIMEXLSX
}

func normalizeFormat(f string) string {
	if strings.EqualFold(strings.TrimSpace(f), types.FormatCSV) {
		return types.FormatCSV
	}
	return types.FormatXLSX
}
