// Package cli wires the cobra command tree: the interactive editor and the
// non-interactive analyze, import and watch commands.
package cli

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/yildizm/ContractLens/internal/config"
	"github.com/yildizm/ContractLens/internal/emoji"
	"github.com/yildizm/ContractLens/internal/logger"
	"github.com/yildizm/ContractLens/internal/ui"
)

var (
	cfgFile   string
	verbose   bool
	noColor   bool
	noEmoji   bool
	outputFmt string

	globalConfig *config.Config
	appVersion   = "dev"
)

// NewRootCommand creates the root command
func NewRootCommand(version, commit, date string) *cobra.Command {
	appVersion = version

	rootCmd := &cobra.Command{
		Use:   "contractlens",
		Short: "Smart contract editor and analysis client",
		Long: `ContractLens is a terminal editor for smart contract source that submits
the contract to an analysis service and shows the issues it reports.

Contract source can be typed, loaded from a local file, or imported from a
GitHub blob URL. The analyze, import and watch commands offer the same
workflow without the interactive editor.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupEmoji(cmd)
			return loadGlobalConfig(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd, args)
		},
		Args: cobra.MaximumNArgs(1),
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&noEmoji, "no-emoji", false, "disable emoji output (useful for Windows terminals)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "output format (text, json, markdown, csv, sarif)")
	rootCmd.Flags().StringVar(&editURL, "url", "", "import a GitHub blob URL into the editor on start")

	// Add subcommands
	rootCmd.AddCommand(newEditCommand())
	rootCmd.AddCommand(newAnalyzeCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newWatchCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newVersionCommand(version, commit, date))

	return rootCmd
}

// setupEmoji applies --no-emoji, defaulting to off on Windows
func setupEmoji(cmd *cobra.Command) {
	if runtime.GOOS == "windows" {
		if f := cmd.Flag("no-emoji"); f != nil && !f.Changed {
			noEmoji = true
		}
	}
	emoji.SetEmojiDisabled(noEmoji)
}

// loadGlobalConfig loads the layered configuration; explicit flags win over it
func loadGlobalConfig(cmd *cobra.Command) error {
	cfg, err := config.NewLoader().LoadConfig(cfgFile)
	if err != nil {
		return err
	}
	globalConfig = cfg

	if f := cmd.Flag("output"); f == nil || !f.Changed {
		outputFmt = cfg.Output.DefaultFormat
	}
	if f := cmd.Flag("verbose"); (f == nil || !f.Changed) && cfg.Output.Verbose {
		verbose = true
	}
	if noColor || cfg.Output.ColorMode == "never" {
		noColor = true
		ui.SetColorDisabled(true)
	}
	if !ui.SetThemeByName(cfg.UI.Theme) {
		return fmt.Errorf("unknown theme: %s", cfg.UI.Theme)
	}
	return nil
}

func newVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display version number, build commit, date, and runtime information",
		Run: func(cmd *cobra.Command, args []string) {
			displayVersion := version
			displayCommit := commit
			displayDate := date

			if version == "dev" || version == "" {
				displayVersion = "development"
			}
			if commit == "none" || commit == "" {
				displayCommit = "local-build"
			}
			if date == "unknown" || date == "" {
				displayDate = "local-build"
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ContractLens %s (%s) built on %s\n", displayVersion, displayCommit, displayDate)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

// Global helpers

// GetGlobalConfig returns the loaded configuration, or defaults before loading
func GetGlobalConfig() *config.Config {
	if globalConfig == nil {
		return config.DefaultConfig()
	}
	return globalConfig
}

func isVerbose() bool {
	return verbose
}

func getOutputFormat() string {
	return outputFmt
}

func isEmojiDisabled() bool {
	return noEmoji
}

func useColor() bool {
	if noColor || ui.IsColorDisabled() {
		return false
	}
	return GetGlobalConfig().Output.ColorMode != "never"
}

func newLogger(component string) *logger.Logger {
	return logger.NewWithCallback(component, isVerbose)
}

// commandContext returns the command's context, which is nil when a command
// is executed without its root
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
