// Package interpret classifies replies from the processing endpoint into one
// of four outcomes and applies each outcome to the session.
package interpret

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"unicode/utf8"

	apperrors "planilhas/errors"
	"planilhas/types"
)

// Response headers set by the processing service on binary replies.
const (
	HeaderRunSummary = "X-Run-Summary"
	HeaderSessionID  = "X-Session-Id"
)

// maxErrorBody bounds how much of a failed reply is read for its detail.
const maxErrorBody = 64 << 10

// Outcome is one of BinaryOutcome, JSONOutcome, TransportFailure or DecodeFailure.
type Outcome interface {
	outcome()
}

// BinaryOutcome is a spreadsheet delivered inline. Summary is nil when the
// reply carried no summary header.
type BinaryOutcome struct {
	Summary     *types.RunSummary
	SessionID   string
	Filename    string
	ContentType string
	Body        []byte
}

// JSONOutcome is a structured result with links to hosted artifacts.
type JSONOutcome struct {
	SessionID string
	Summary   types.RunSummary
	Artifacts types.Artifacts
}

// TransportFailure is a non-2xx reply or a failed call.
type TransportFailure struct {
	Err *apperrors.TransportError
}

// DecodeFailure is a 2xx reply that could not be read.
type DecodeFailure struct {
	Err error
}

func (BinaryOutcome) outcome()    {}
func (JSONOutcome) outcome()      {}
func (TransportFailure) outcome() {}
func (DecodeFailure) outcome()    {}

// Kind names the outcome for logs and metrics.
func Kind(o Outcome) string {
	switch o.(type) {
	case BinaryOutcome:
		return "binary"
	case JSONOutcome:
		return "json"
	case TransportFailure:
		return "transport_failure"
	case DecodeFailure:
		return "decode_failure"
	default:
		return "unknown"
	}
}

type jsonReply struct {
	SessionID string            `json:"session_id"`
	Summary   *types.RunSummary `json:"summary"`
	Artifacts types.Artifacts   `json:"artifacts"`
}

// Classify consumes resp (closing its body) or the error returned by the
// call that produced it.
func Classify(resp *http.Response, callErr error) Outcome {
	if callErr != nil {
		return TransportFailure{Err: &apperrors.TransportError{Err: callErr}}
	}
	if resp == nil {
		return TransportFailure{Err: &apperrors.TransportError{Err: fmt.Errorf("no response")}}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return TransportFailure{Err: &apperrors.TransportError{
			Status: resp.StatusCode,
			Detail: ErrorDetail(body),
		}}
	}

	contentType := resp.Header.Get("Content-Type")
	if IsSpreadsheet(contentType) {
		return classifyBinary(resp, contentType)
	}

	var reply jsonReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return DecodeFailure{Err: apperrors.WrapError(apperrors.ErrDecode, "decoding json reply: "+err.Error())}
	}
	if reply.Summary == nil {
		return DecodeFailure{Err: apperrors.WrapError(apperrors.ErrDecode, "json reply has no summary")}
	}
	return JSONOutcome{
		SessionID: reply.SessionID,
		Summary:   *reply.Summary,
		Artifacts: reply.Artifacts,
	}
}

func classifyBinary(resp *http.Response, contentType string) Outcome {
	out := BinaryOutcome{
		SessionID:   strings.TrimSpace(resp.Header.Get(HeaderSessionID)),
		ContentType: contentType,
		Filename:    FilenameFor(resp.Header.Get("Content-Disposition"), contentType),
	}

	if raw := strings.TrimSpace(resp.Header.Get(HeaderRunSummary)); raw != "" {
		var summary types.RunSummary
		if err := json.Unmarshal([]byte(headerText(raw)), &summary); err != nil {
			return DecodeFailure{Err: apperrors.WrapError(apperrors.ErrDecode, "decoding run summary header: "+err.Error())}
		}
		out.Summary = &summary
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return DecodeFailure{Err: apperrors.WrapError(apperrors.ErrDecode, "reading file body: "+err.Error())}
	}
	out.Body = body
	return out
}

// headerText reads a header value that is either UTF-8 or Latin-1.
func headerText(raw string) string {
	if utf8.ValidString(raw) {
		return raw
	}
	runes := make([]rune, len(raw))
	for i := 0; i < len(raw); i++ {
		runes[i] = rune(raw[i])
	}
	return string(runes)
}

// IsSpreadsheet reports whether a content type denotes a spreadsheet or CSV payload.
func IsSpreadsheet(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	switch {
	case strings.Contains(mediaType, "spreadsheetml"),
		mediaType == "application/vnd.ms-excel",
		mediaType == "text/csv",
		mediaType == "application/csv":
		return true
	}
	return false
}

// ErrorDetail extracts the human-readable detail from an error body of the
// form {"detail": "..."}; validation errors with a list of {"msg": ...}
// entries are joined. It returns "" when the body carries no detail.
func ErrorDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		return strings.TrimSpace(text)
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if m := strings.TrimSpace(it.Msg); m != "" {
				msgs = append(msgs, m)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
