// Package app wires the preference store, session, notifications and the
// processing client into the operations the front ends call.
package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"planilhas/config"
	apperrors "planilhas/errors"
	"planilhas/interpret"
	"planilhas/metrics"
	"planilhas/notify"
	"planilhas/prefs"
	"planilhas/saver"
	"planilhas/session"
	"planilhas/sheets"
	"planilhas/submission"
	"planilhas/types"
	"planilhas/utils"

	"go.uber.org/zap"
)

// Backend is the remote processing service.
type Backend interface {
	Process(ctx context.Context, sub *submission.Submission) (*http.Response, error)
	FetchArtifact(ctx context.Context, ref string, s saver.Saver) (string, error)
}

// App owns all client state. Only one submission runs at a time; a second
// Submit while one is outstanding fails with ErrBusy.
type App struct {
	cfg      *config.Config
	prefs    *prefs.Store
	sessions *session.Manager
	notifier *notify.Notifier
	backend  Backend
	interp   *interpret.Interpreter
	saver    saver.Saver
	sheets   *sheets.Lister
	logger   *zap.Logger

	mu      sync.Mutex
	loading bool
}

func New(cfg *config.Config, store *prefs.Store, backend Backend, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	lister, err := sheets.NewLister(cfg.SheetCacheSize, logger)
	if err != nil {
		return nil, err
	}

	sessions := session.NewManager(logger)
	notifier := notify.NewNotifier(cfg.ToastTTL, logger)
	s := &saver.DirSaver{Dir: cfg.DownloadDir, Logger: logger}

	a := &App{
		cfg:      cfg,
		prefs:    store,
		sessions: sessions,
		notifier: notifier,
		backend:  backend,
		interp:   interpret.NewInterpreter(sessions, notifier, s, logger),
		saver:    s,
		sheets:   lister,
		logger:   logger,
	}
	if err := a.mirrorSession(); err != nil {
		notifier.Close()
		return nil, err
	}
	return a, nil
}

// Close stops pending notification timers.
func (a *App) Close() {
	a.notifier.Close()
}

func (a *App) Notifier() *notify.Notifier { return a.notifier }
func (a *App) Sessions() *session.Manager { return a.sessions }
func (a *App) Prefs() *prefs.Store        { return a.prefs }
func (a *App) Sheets() *sheets.Lister     { return a.sheets }
func (a *App) Config() *config.Config     { return a.cfg }

// Loading reports whether a submission is outstanding.
func (a *App) Loading() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loading
}

func (a *App) setLoading(on bool) {
	a.mu.Lock()
	a.loading = on
	a.mu.Unlock()
	if on {
		metrics.SubmissionInFlight.Set(1)
	} else {
		metrics.SubmissionInFlight.Set(0)
	}
}

// Submit sends the populated slots and prompt to the processing service and
// applies the reply. Rejected files and failures surface as notifications;
// the returned error mirrors them for callers without a notification view.
func (a *App) Submit(ctx context.Context, prompt string) (res interpret.Result, err error) {
	a.mu.Lock()
	if a.loading {
		a.mu.Unlock()
		return interpret.Result{Message: apperrors.MsgBusy}, apperrors.ErrBusy
	}
	a.loading = true
	a.mu.Unlock()
	metrics.SubmissionInFlight.Set(1)

	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("Submission panicked", zap.Any("panic", r), zap.Stack("stack"))
			a.notifier.Push(apperrors.MsgDecode)
			res = interpret.Result{Kind: "decode_failure", Message: apperrors.MsgDecode}
			err = apperrors.WrapErrorf(apperrors.ErrDecode, "panic: %v", r)
		}
		a.setLoading(false)
	}()

	slots, err := a.prefs.UploadSlots()
	if err != nil {
		return interpret.Result{}, fmt.Errorf("loading slots: %w", err)
	}
	autoDownload, err := a.prefs.AutoDownload()
	if err != nil {
		return interpret.Result{}, fmt.Errorf("loading auto-download flag: %w", err)
	}

	sub, rejected, buildErr := submission.Build(slots, prompt, a.sessions.Current(), autoDownload, a.cfg.OutFormat)
	for _, r := range rejected {
		a.rejectFile(r.Slot, r.Err)
	}
	if buildErr != nil {
		msg := apperrors.UserMessage(buildErr)
		a.notifier.Push(msg)
		return interpret.Result{Message: msg}, buildErr
	}

	if err := a.prefs.SetDraft(""); err != nil {
		a.logger.Warn("Failed to clear draft", zap.Error(err))
	}

	a.logger.Info("Submitting",
		zap.Int("files", len(sub.Parts)),
		zap.String("session_id", sub.SessionID),
		zap.Bool("download", sub.Download))

	start := time.Now()
	resp, callErr := a.backend.Process(ctx, sub)
	outcome := interpret.Classify(resp, callErr)
	res = a.interp.Handle(outcome, prompt, autoDownload)
	metrics.RecordSubmission(res.Kind, time.Since(start).Seconds())

	if res.Adopted {
		if err := a.mirrorSession(); err != nil {
			a.logger.Warn("Failed to record session", zap.Error(err))
		}
	}
	a.logger.Info("Submission finished",
		zap.String("outcome", res.Kind),
		zap.Duration("elapsed", time.Since(start)),
		zap.String("saved", res.SavedPath))
	return res, res.Err
}

// rejectFile clears slot i's file and announces why.
func (a *App) rejectFile(i int, fte *apperrors.FileTypeError) {
	metrics.RejectedFilesTotal.Inc()
	a.notifier.Push(apperrors.UserMessage(fte))
	if err := a.prefs.ClearFile(i); err != nil {
		a.logger.Warn("Failed to clear rejected file", zap.Int("slot", i+1), zap.Error(err))
	}
}

// NewSession discards the transcript and starts a fresh session.
func (a *App) NewSession() (string, error) {
	id := a.sessions.StartSession()
	return id, a.mirrorSession()
}

// AdoptSession continues session id and mirrors it to the preference store.
func (a *App) AdoptSession(id string) error {
	if !a.sessions.AdoptServerSession(id) {
		return nil
	}
	return a.mirrorSession()
}

func (a *App) mirrorSession() error {
	return a.prefs.Set(prefs.KeyCurrentSession, a.sessions.Current())
}

// SetSlotCount resizes the slot list and returns the count actually applied.
func (a *App) SetSlotCount(n int) (int, error) {
	return a.prefs.SetSlotCount(n)
}

// AttachFile sets slot i's file. Unsupported types are announced and the
// slot is left without a file.
func (a *App) AttachFile(i int, path string) error {
	if path != "" && utils.SupportedSpreadsheet(path) && !utils.VerifyFileExists(path) {
		return apperrors.WrapErrorf(apperrors.ErrNotFound, "file %s", path)
	}
	err := a.prefs.AttachFile(i, path)
	if apperrors.IsUnsupportedFileType(err) {
		metrics.RejectedFilesTotal.Inc()
		a.notifier.Push(apperrors.UserMessage(err))
	}
	return err
}

func (a *App) ClearFile(i int) error {
	return a.prefs.ClearFile(i)
}

func (a *App) SetAlias(i int, alias string) error {
	return a.prefs.SetAlias(i, alias)
}

// SetSheet sets slot i's worksheet. When the slot holds a workbook the name
// is checked against its worksheets first.
func (a *App) SetSheet(i int, sheet string) error {
	defs, err := a.prefs.Slots()
	if err != nil {
		return err
	}
	if i >= 0 && i < len(defs) && defs[i].Path != "" && sheet != "" {
		if err := a.sheets.Validate(defs[i].Path, sheet); err != nil && apperrors.IsInvalidInput(err) {
			return err
		}
	}
	return a.prefs.SetSheet(i, sheet)
}

func (a *App) SetAutoDownload(on bool) error {
	return a.prefs.SetAutoDownload(on)
}

func (a *App) SetDraft(text string) error {
	return a.prefs.SetDraft(text)
}

// Download fetches a hosted artifact into the download directory.
func (a *App) Download(ctx context.Context, ref string) (string, error) {
	path, err := a.backend.FetchArtifact(ctx, ref, a.saver)
	if err != nil {
		a.notifier.Push(apperrors.UserMessage(err))
		return "", err
	}
	return path, nil
}

// Slots returns the persisted slot definitions.
func (a *App) Slots() ([]types.SlotDefinition, error) {
	return a.prefs.Slots()
}
