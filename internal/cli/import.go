package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/yildizm/ContractLens/internal/contract"
	"github.com/yildizm/ContractLens/internal/github"
	"github.com/yildizm/ContractLens/internal/session"
)

var importSave string

func newImportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <url>",
		Short: "Fetch a contract from a GitHub blob URL",
		Long: `Fetch the raw text behind a GitHub blob URL.

The URL is rewritten to its raw.githubusercontent.com form and downloaded.
The text is printed to stdout, or written to --save.

Examples:
  contractlens import https://github.com/owner/repo/blob/main/Vault.sol
  contractlens import --save Vault.sol https://github.com/owner/repo/blob/main/Vault.sol`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}

	cmd.Flags().StringVar(&importSave, "save", "", "write the fetched contract to this path")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()
	log := newLogger("import")

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess := newSession(cfg, log)
	importer := github.New(cfg.GitHubClientConfig(), github.WithLogger(log))
	if err := sess.Import(ctx, importer, args[0]); err != nil {
		return err
	}

	return writeImported(cmd.OutOrStdout(), sess, importSave)
}

// writeImported prints the imported text, or saves it when path is set
func writeImported(out io.Writer, sess *session.Session, path string) error {
	text := sess.Text()
	if path == "" {
		_, err := io.WriteString(out, text)
		return err
	}

	if err := validateOutputFilePath(path); err != nil {
		return fmt.Errorf("invalid save path: %w", err)
	}
	if err := writeOutputBytesToFile([]byte(text), path); err != nil {
		return fmt.Errorf("failed to save contract: %w", err)
	}
	fmt.Fprintf(out, "%s Saved %s to %s\n", GetEmoji("save"), contract.HumanBytes(int64(len(text))), path)
	return nil
}
