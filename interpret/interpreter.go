package interpret

import (
	"bytes"
	"time"

	"go.uber.org/zap"

	apperrors "planilhas/errors"
	"planilhas/notify"
	"planilhas/saver"
	"planilhas/session"
	"planilhas/types"
)

// Result reports what Handle did with an outcome.
type Result struct {
	Kind      string
	Succeeded bool
	SavedPath string
	Message   string
	Adopted   bool
	Err       error
}

// Interpreter applies outcomes to the session, notifications and download directory.
type Interpreter struct {
	sessions *session.Manager
	notifier *notify.Notifier
	saver    saver.Saver
	now      func() time.Time
	logger   *zap.Logger
}

func NewInterpreter(sessions *session.Manager, notifier *notify.Notifier, s saver.Saver, logger *zap.Logger) *Interpreter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interpreter{
		sessions: sessions,
		notifier: notifier,
		saver:    s,
		now:      time.Now,
		logger:   logger,
	}
}

// PlaceholderSummary stands in for a missing summary header on an inline delivery.
func PlaceholderSummary(filename string) types.RunSummary {
	return types.RunSummary{
		DetectedAction: types.ActionProcess,
		Destination:    filename,
		AddedColumns:   []string{},
	}
}

// Handle applies o. On success the submitted prompt and the assistant reply
// are appended to the transcript in that order; failures leave it untouched
// and surface one notification.
func (i *Interpreter) Handle(o Outcome, prompt string, autoDownload bool) Result {
	res := Result{Kind: Kind(o)}

	switch out := o.(type) {
	case BinaryOutcome:
		summary := PlaceholderSummary(out.Filename)
		if out.Summary != nil {
			summary = *out.Summary
		}
		if out.SessionID != "" {
			res.Adopted = i.sessions.AdoptServerSession(out.SessionID)
		}
		if autoDownload {
			path, err := i.saver.Save(out.Filename, bytes.NewReader(out.Body))
			if err != nil {
				i.logger.Error("Failed to save delivered file",
					zap.String("filename", out.Filename), zap.Error(err))
				res.Message = "Could not save " + out.Filename + "."
				i.notifier.Push(res.Message)
			} else {
				res.SavedPath = path
			}
		}
		i.appendTurns(prompt, summary, types.Artifacts{})
		res.Succeeded = true

	case JSONOutcome:
		if out.SessionID != "" {
			res.Adopted = i.sessions.AdoptServerSession(out.SessionID)
		}
		i.appendTurns(prompt, out.Summary, out.Artifacts)
		res.Succeeded = true

	case TransportFailure:
		res.Message = apperrors.UserMessage(out.Err)
		res.Err = out.Err
		i.logger.Warn("Processing request failed",
			zap.Int("status", out.Err.Status), zap.Error(out.Err))
		i.notifier.Push(res.Message)

	case DecodeFailure:
		res.Message = apperrors.MsgDecode
		res.Err = out.Err
		if !apperrors.IsDecode(res.Err) {
			res.Err = apperrors.WrapErrorf(apperrors.ErrDecode, "%v", out.Err)
		}
		i.logger.Warn("Could not decode processing reply", zap.Error(out.Err))
		i.notifier.Push(res.Message)

	default:
		res.Message = apperrors.MsgDecode
		res.Err = apperrors.ErrDecode
		i.logger.Error("Unknown outcome", zap.String("kind", res.Kind))
		i.notifier.Push(res.Message)
	}
	return res
}

func (i *Interpreter) appendTurns(prompt string, summary types.RunSummary, artifacts types.Artifacts) {
	at := i.now()
	i.sessions.AppendUser(prompt, at)
	i.sessions.AppendAssistant(summary, artifacts, at)
}
