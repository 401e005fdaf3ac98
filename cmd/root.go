package cmd

import (
	"fmt"
	"os"
	"strings"

	"planilhas/apiclient"
	"planilhas/app"
	"planilhas/config"
	"planilhas/prefs"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:           "planilhas",
	Short:         "Send spreadsheets and an instruction to the processing service",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runChat,
}

var flags struct {
	apiBase     string
	stateDir    string
	downloadDir string
	logLevel    string
	outFormat   string
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	return err
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.apiBase, "api-base", "", "processing service base URL (API_BASE)")
	pf.StringVar(&flags.stateDir, "state-dir", "", "directory holding preferences (STATE_DIR)")
	pf.StringVar(&flags.downloadDir, "download-dir", "", "directory for delivered files (DOWNLOAD_DIR)")
	pf.StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error (LOG_LEVEL)")
	pf.StringVar(&flags.outFormat, "format", "", "result format, xlsx or csv (OUT_FORMAT)")

	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(slotsCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(sheetsCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(serveCmd)
}

// env is everything a command needs once configuration is loaded.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *prefs.Store
	app    *app.App
}

func (e *env) Close() {
	e.app.Close()
	e.logger.Sync()
}

// bootstrap loads configuration and opens the store. With quiet set the
// logger is discarded, for front ends that own the terminal.
func bootstrap(quiet bool) (*env, error) {
	tempLogger, err := config.InitLogger("info")
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	cfg := config.Load(tempLogger)
	applyFlags(cfg)

	var logger *zap.Logger
	if quiet {
		logger = zap.NewNop()
	} else if logger, err = config.InitLogger(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	store, err := prefs.Open(cfg.StateDir, logger)
	if err != nil {
		return nil, err
	}
	a, err := app.New(cfg, store, apiclient.New(cfg, logger), logger)
	if err != nil {
		return nil, err
	}
	logger.Debug("Configuration loaded",
		zap.String("api_base", cfg.APIBase),
		zap.String("state_dir", cfg.StateDir),
		zap.String("download_dir", cfg.DownloadDir),
		zap.Duration("request_timeout", cfg.RequestTimeout))
	return &env{cfg: cfg, logger: logger, store: store, app: a}, nil
}

func applyFlags(cfg *config.Config) {
	if flags.apiBase != "" {
		cfg.APIBase = strings.TrimRight(flags.apiBase, "/")
	}
	if flags.stateDir != "" {
		cfg.StateDir = flags.stateDir
	}
	if flags.downloadDir != "" {
		cfg.DownloadDir = flags.downloadDir
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	if flags.outFormat != "" {
		cfg.OutFormat = config.NormalizeFormat(flags.outFormat)
	}
}
