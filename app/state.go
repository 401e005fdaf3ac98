package app

import (
	"time"

	"planilhas/format"
	"planilhas/notify"
	"planilhas/types"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Link is one offered artifact.
type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Entry is the display form of a transcript message.
type Entry struct {
	Role    string            `json:"role"`
	Text    string            `json:"text"`
	At      time.Time         `json:"at"`
	Summary *types.RunSummary `json:"summary,omitempty"`
	Links   []Link            `json:"links,omitempty"`
}

// State is a point-in-time view of everything a front end renders.
type State struct {
	SessionID    string                 `json:"session_id"`
	Loading      bool                   `json:"loading"`
	SlotCount    int                    `json:"slot_count"`
	Slots        []types.SlotDefinition `json:"slots"`
	AutoDownload bool                   `json:"auto_download"`
	Draft        string                 `json:"draft"`
	OutFormat    string                 `json:"out_format"`
	Toasts       []notify.Toast         `json:"toasts"`
	Transcript   []Entry                `json:"transcript"`
}

// Snapshot collects the current State.
func (a *App) Snapshot() (State, error) {
	slots, err := a.prefs.Slots()
	if err != nil {
		return State{}, err
	}
	autoDownload, err := a.prefs.AutoDownload()
	if err != nil {
		return State{}, err
	}
	draft, err := a.prefs.Draft()
	if err != nil {
		return State{}, err
	}
	return State{
		SessionID:    a.sessions.Current(),
		Loading:      a.Loading(),
		SlotCount:    len(slots),
		Slots:        slots,
		AutoDownload: autoDownload,
		Draft:        draft,
		OutFormat:    a.cfg.OutFormat,
		Toasts:       a.notifier.Active(),
		Transcript:   Entries(a.sessions.Transcript()),
	}, nil
}

// Entries converts transcript messages for display.
func Entries(msgs []types.ChatMessage) []Entry {
	out := make([]Entry, 0, len(msgs))
	for _, m := range msgs {
		switch m := m.(type) {
		case types.UserTurn:
			out = append(out, Entry{Role: RoleUser, Text: m.Text, At: m.At})
		case types.AssistantTurn:
			summary := m.Summary
			e := Entry{
				Role:    RoleAssistant,
				Text:    format.Summarize(summary),
				At:      m.At,
				Summary: &summary,
			}
			for _, l := range format.ArtifactLinks(m.Artifacts) {
				e.Links = append(e.Links, Link{Label: l[0], URL: l[1]})
			}
			out = append(out, e)
		}
	}
	return out
}
