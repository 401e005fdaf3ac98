package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage the conversation session",
}

var sessionNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Start a new session and print its identifier",
	Long: `Start a new session and print its identifier.

Pass the identifier to "submit --session" to keep later runs in the same
server-side session.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withEnv(func(e *env) error {
			id, err := e.app.NewSession()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		})
	},
}

var sheetsCmd = &cobra.Command{
	Use:   "sheets FILE",
	Short: "List the worksheets of a workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(func(e *env) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				path = args[0]
			}
			names, err := e.app.Sheets().Sheets(path)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "CSV files have no worksheets")
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		})
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download URL",
	Short: "Fetch a result link into the download directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := bootstrap(false)
		if err != nil {
			return err
		}
		defer e.Close()
		path, err := e.app.Download(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	sessionCmd.AddCommand(sessionNewCmd)
}
