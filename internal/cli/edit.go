package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/yildizm/ContractLens/internal/analysis"
	"github.com/yildizm/ContractLens/internal/config"
	"github.com/yildizm/ContractLens/internal/github"
	"github.com/yildizm/ContractLens/internal/logger"
	"github.com/yildizm/ContractLens/internal/session"
	"github.com/yildizm/ContractLens/internal/ui"
)

var editURL string

func newEditCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit [file]",
		Short: "Open the interactive contract editor",
		Long: `Open the interactive editor. Type or paste a contract, load a local file
with ctrl+o, import a GitHub blob URL with ctrl+g, and analyze with ctrl+r.

Logs are discarded while the editor owns the terminal unless ui.log_file is set.

Examples:
  contractlens edit
  contractlens edit contracts/Vault.sol
  contractlens edit --url https://github.com/owner/repo/blob/main/Vault.sol`,
		Args: cobra.MaximumNArgs(1),
		RunE: runEdit,
	}

	cmd.Flags().StringVar(&editURL, "url", "", "import a GitHub blob URL into the editor on start")

	return cmd
}

func runEdit(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()
	if len(args) == 1 && editURL != "" {
		return fmt.Errorf("use either a file argument or --url, not both")
	}

	log := newLogger("edit")
	closeLog, err := redirectLogs(log, cfg.UI.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	client, err := analysis.New(cfg.AnalyzerClientConfig(), analysis.WithLogger(log))
	if err != nil {
		return fmt.Errorf("invalid analyzer configuration: %w", err)
	}

	opts := ui.Options{
		Session:       newSession(cfg, log),
		Analyzer:      client,
		Importer:      github.New(cfg.GitHubClientConfig(), github.WithLogger(log)),
		Placeholder:   cfg.Editor.Placeholder,
		ToastDuration: cfg.UI.ToastDuration,
		Logger:        log,
		InitialURL:    editURL,
	}
	if len(args) == 1 {
		opts.InitialPath = args[0]
	}

	log.Info("starting editor, analyzer=%s", client.Endpoint())
	return ui.Run(opts)
}

// newSession creates a session bound to the configured upload rules
func newSession(cfg *config.Config, log *logger.Logger) *session.Session {
	return session.New(
		session.WithFileRules(cfg.FileRules()),
		session.WithFileName(cfg.Analyzer.DefaultFilename),
		session.WithLogger(log),
	)
}

// redirectLogs keeps log lines off the alternate screen
func redirectLogs(log *logger.Logger, path string) (func(), error) {
	if path == "" {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}

	cleanPath := filepath.Clean(expandHome(path))
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
		}
	}

	// #nosec G304 - path comes from the user's own configuration
	file, err := os.OpenFile(cleanPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	log.SetOutput(file)

	return func() {
		log.SetOutput(os.Stderr)
		if err := file.Close(); err != nil && isVerbose() {
			fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
		}
	}, nil
}

func expandHome(path string) string {
	if len(path) > 1 && path[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
