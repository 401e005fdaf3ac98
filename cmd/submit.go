package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"planilhas/app"
	apperrors "planilhas/errors"
	"planilhas/format"
	"planilhas/types"

	"github.com/spf13/cobra"
)

var submitFlags struct {
	files    []string
	prompt   string
	download bool
	session  string
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Send the attached spreadsheets with an instruction",
	Long: `Send the attached spreadsheets with an instruction.

Each --file is PATH, PATH:ALIAS or PATH:ALIAS:SHEET. When --file is given the
persisted slots are replaced; otherwise the slots set with "slots set" are used.
Without --prompt the saved draft is sent.`,
	Args: cobra.NoArgs,
	RunE: runSubmit,
}

func init() {
	f := submitCmd.Flags()
	f.StringArrayVarP(&submitFlags.files, "file", "f", nil, "spreadsheet to attach, PATH[:ALIAS[:SHEET]] (repeatable, up to 5)")
	f.StringVarP(&submitFlags.prompt, "prompt", "p", "", "instruction text")
	f.BoolVar(&submitFlags.download, "download", true, "ask for the file itself and save it")
	f.StringVar(&submitFlags.session, "session", "", "continue an existing session")
}

// fileSpec is one parsed --file value.
type fileSpec struct {
	Path  string
	Alias string
	Sheet string
}

func parseFileSpec(s string) (fileSpec, error) {
	parts := strings.SplitN(s, ":", 3)
	spec := fileSpec{Path: strings.TrimSpace(parts[0])}
	if len(parts) > 1 {
		spec.Alias = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		spec.Sheet = strings.TrimSpace(parts[2])
	}
	if spec.Path == "" {
		return fileSpec{}, apperrors.WrapErrorf(apperrors.ErrInvalidInput, "empty path in %q", s)
	}
	if abs, err := filepath.Abs(spec.Path); err == nil {
		spec.Path = abs
	}
	return spec, nil
}

// attachFiles replaces the slots with specs. Rejected files are reported but
// do not stop the others.
func attachFiles(a *app.App, specs []fileSpec) error {
	if len(specs) > types.MaxSlots {
		return apperrors.WrapErrorf(apperrors.ErrInvalidInput, "at most %d files", types.MaxSlots)
	}
	if _, err := a.SetSlotCount(len(specs)); err != nil {
		return err
	}
	for i, s := range specs {
		if err := a.ClearFile(i); err != nil {
			return err
		}
		if err := a.SetAlias(i, s.Alias); err != nil {
			return err
		}
		if err := a.AttachFile(i, s.Path); err != nil {
			if apperrors.IsUnsupportedFileType(err) {
				continue
			}
			return err
		}
		if err := a.SetSheet(i, s.Sheet); err != nil {
			return err
		}
	}
	return nil
}

func runSubmit(cmd *cobra.Command, _ []string) error {
	e, err := bootstrap(false)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if len(submitFlags.files) > 0 {
		specs := make([]fileSpec, 0, len(submitFlags.files))
		for _, raw := range submitFlags.files {
			s, err := parseFileSpec(raw)
			if err != nil {
				return err
			}
			specs = append(specs, s)
		}
		if err := attachFiles(e.app, specs); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("download") {
		if err := e.app.SetAutoDownload(submitFlags.download); err != nil {
			return err
		}
	}
	if submitFlags.session != "" {
		if err := e.app.AdoptSession(submitFlags.session); err != nil {
			return err
		}
	}

	prompt := submitFlags.prompt
	if !cmd.Flags().Changed("prompt") {
		if prompt, err = e.store.Draft(); err != nil {
			return err
		}
	}

	return submit(ctx, e.app, prompt, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// submit runs one submission and prints the notifications and the reply.
func submit(ctx context.Context, a *app.App, prompt string, out, errOut io.Writer) error {
	res, err := a.Submit(ctx, prompt)
	for _, t := range a.Notifier().Active() {
		fmt.Fprintln(errOut, t.Message)
	}
	if err != nil {
		return err
	}

	msgs := a.Sessions().Transcript()
	if n := len(msgs); n > 0 {
		if turn, ok := msgs[n-1].(types.AssistantTurn); ok {
			fmt.Fprintln(out, format.Summarize(turn.Summary))
			for _, l := range format.ArtifactLinks(turn.Artifacts) {
				fmt.Fprintf(out, "  %s: %s\n", l[0], a.Config().APIBase+l[1])
			}
		}
	}
	if res.SavedPath != "" {
		fmt.Fprintf(out, "Saved %s\n", res.SavedPath)
	}
	fmt.Fprintf(out, "Session %s\n", a.Sessions().Current())
	return nil
}
