package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"planilhas/app"
	apperrors "planilhas/errors"
	"planilhas/types"

	"github.com/spf13/cobra"
)

var slotsCmd = &cobra.Command{
	Use:   "slots",
	Short: "Show or edit the upload slots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withEnv(func(e *env) error { return printSlots(cmd.OutOrStdout(), e.app) })
	},
}

var slotsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List the upload slots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withEnv(func(e *env) error { return printSlots(cmd.OutOrStdout(), e.app) })
	},
}

var slotsCountCmd = &cobra.Command{
	Use:   "count N",
	Short: "Use N upload slots (1-5)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return apperrors.WrapErrorf(apperrors.ErrInvalidInput, "count %q", args[0])
		}
		return withEnv(func(e *env) error {
			applied, err := e.app.SetSlotCount(n)
			if err != nil {
				return err
			}
			if applied != n {
				fmt.Fprintf(cmd.ErrOrStderr(), "slot count clamped to %d\n", applied)
			}
			return printSlots(cmd.OutOrStdout(), e.app)
		})
	},
}

var slotSetFlags struct {
	file  string
	alias string
	sheet string
}

var slotsSetCmd = &cobra.Command{
	Use:   "set N",
	Short: "Set the file, alias or sheet of slot N",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		i, err := slotArg(args[0])
		if err != nil {
			return err
		}
		return withEnv(func(e *env) error {
			f := cmd.Flags()
			if f.Changed("file") {
				path := slotSetFlags.file
				if abs, err := filepath.Abs(path); err == nil && path != "" {
					path = abs
				}
				if err := e.app.AttachFile(i, path); err != nil {
					return err
				}
			}
			if f.Changed("alias") {
				if err := e.app.SetAlias(i, slotSetFlags.alias); err != nil {
					return err
				}
			}
			if f.Changed("sheet") {
				if err := e.app.SetSheet(i, slotSetFlags.sheet); err != nil {
					return err
				}
			}
			return printSlots(cmd.OutOrStdout(), e.app)
		})
	},
}

var slotsClearCmd = &cobra.Command{
	Use:   "clear N",
	Short: "Detach the file from slot N",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		i, err := slotArg(args[0])
		if err != nil {
			return err
		}
		return withEnv(func(e *env) error {
			if err := e.app.ClearFile(i); err != nil {
				return err
			}
			return printSlots(cmd.OutOrStdout(), e.app)
		})
	},
}

func init() {
	f := slotsSetCmd.Flags()
	f.StringVar(&slotSetFlags.file, "file", "", "spreadsheet path (empty detaches)")
	f.StringVar(&slotSetFlags.alias, "alias", "", "name used for the file in the instruction")
	f.StringVar(&slotSetFlags.sheet, "sheet", "", "worksheet to read (empty uses the first)")

	slotsCmd.AddCommand(slotsShowCmd, slotsCountCmd, slotsSetCmd, slotsClearCmd)
}

// withEnv runs fn with a quiet environment.
func withEnv(fn func(e *env) error) error {
	e, err := bootstrap(true)
	if err != nil {
		return err
	}
	defer e.Close()
	return fn(e)
}

func slotArg(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < types.MinSlots || n > types.MaxSlots {
		return 0, apperrors.WrapErrorf(apperrors.ErrInvalidInput, "slot must be %d..%d", types.MinSlots, types.MaxSlots)
	}
	return n - 1, nil
}

func printSlots(w io.Writer, a *app.App) error {
	slots, err := a.Slots()
	if err != nil {
		return err
	}
	for i, s := range slots {
		file := "(empty)"
		if s.Path != "" {
			file = s.Path
		}
		fmt.Fprintf(w, "%d. %s", i+1, file)
		if s.Alias != "" {
			fmt.Fprintf(w, "  alias=%s", s.Alias)
		}
		if s.Sheet != nil {
			fmt.Fprintf(w, "  sheet=%s", *s.Sheet)
		}
		fmt.Fprintln(w)
	}
	auto, err := a.Prefs().AutoDownload()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "auto-download: %t\n", auto)
	return nil
}
