package types

import (
	"io"
	"os"
	"path/filepath"
	"time"
)

const (
	MinSlots = 1
	MaxSlots = 5
)

// Actions reported by the processing service in RunSummary.DetectedAction.
const (
	ActionSort    = "SORT"
	ActionMerge   = "MERGE"
	ActionProcess = "PROCESS"
)

// Output formats accepted by the processing service.
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

const (
	MIMEXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MIMECSV  = "text/csv"
)

// FileHandle is a user-selected local file.
type FileHandle interface {
	Name() string
	Open() (io.ReadCloser, error)
}

// LocalFile is a FileHandle backed by a path on disk.
type LocalFile struct {
	Path string
}

func (f LocalFile) Name() string {
	return filepath.Base(f.Path)
}

func (f LocalFile) Open() (io.ReadCloser, error) {
	return os.Open(f.Path)
}

// UploadSlot is one file input unit. A nil File means the slot is unused and
// a nil Sheet means the service picks the default worksheet.
type UploadSlot struct {
	File  FileHandle
	Alias string
	Sheet *string
}

// SlotDefinition is the persisted form of an UploadSlot.
type SlotDefinition struct {
	Path  string  `json:"path,omitempty"`
	Alias string  `json:"alias"`
	Sheet *string `json:"sheet,omitempty"`
}

// UploadSlot resolves the definition into a slot with a local file handle.
func (d SlotDefinition) UploadSlot() UploadSlot {
	slot := UploadSlot{Alias: d.Alias, Sheet: d.Sheet}
	if d.Path != "" {
		slot.File = LocalFile{Path: d.Path}
	}
	return slot
}

// RunSummary is the server-reported outcome of one processing request.
// Sort results populate Key and SortOrder; merge results populate Source,
// AddedColumns, FillMissing and RowsUnmatched.
type RunSummary struct {
	DetectedAction string   `json:"detected_action"`
	Destination    string   `json:"destination"`
	Source         string   `json:"source"`
	Key            string   `json:"key"`
	AddedColumns   []string `json:"added_columns"`
	FillMissing    *string  `json:"fill_missing"`
	RowsTotal      int      `json:"rows_total"`
	RowsUnmatched  int      `json:"rows_unmatched"`
	SortOrder      *string  `json:"sort_order,omitempty"`
}

// Artifacts holds server-hosted links. Empty strings mean the link was not offered.
type Artifacts struct {
	ResultURL    string `json:"result_url"`
	UnmatchedURL string `json:"unmatched_url,omitempty"`
	LogURL       string `json:"log_url,omitempty"`
}

// Empty reports whether no link is offered.
func (a Artifacts) Empty() bool {
	return a.ResultURL == "" && a.UnmatchedURL == "" && a.LogURL == ""
}

// ChatMessage is one transcript entry: either a UserTurn or an AssistantTurn.
type ChatMessage interface {
	Timestamp() time.Time
	chatMessage()
}

// UserTurn is the instruction text as submitted.
type UserTurn struct {
	Text string
	At   time.Time
}

func (m UserTurn) Timestamp() time.Time { return m.At }
func (UserTurn) chatMessage()           {}

// AssistantTurn is the interpreted outcome of one run.
type AssistantTurn struct {
	Summary   RunSummary
	Artifacts Artifacts
	At        time.Time
}

func (m AssistantTurn) Timestamp() time.Time { return m.At }
func (AssistantTurn) chatMessage()           {}
