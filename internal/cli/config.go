package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yildizm/ContractLens/internal/config"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is where config init writes when no path is given
const DefaultConfigFile = ".contractlens.yaml"

// newConfigCommand creates the config command with subcommands
func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage ContractLens configuration",
		Long: `Manage ContractLens configuration files and settings.

The config command provides subcommands for initializing, viewing,
validating, and locating configuration files.`,
		// a broken config must still be inspectable, so skip the global load
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupEmoji(cmd)
			return nil
		},
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand())
	configCmd.AddCommand(newConfigValidateCommand())
	configCmd.AddCommand(newConfigPathCommand())

	return configCmd
}

// newConfigInitCommand creates the config init subcommand
func newConfigInitCommand() *cobra.Command {
	var (
		outputPath string
		minimal    bool
		force      bool
	)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new configuration file",
		Long: `Initialize a new ContractLens configuration file with default values.

By default, creates a full configuration file with all options and comments.
Use --minimal for a compact configuration with only essential settings.`,
		Example: `  # Create full config in current directory
  contractlens config init

  # Create minimal config
  contractlens config init --minimal

  # Create config at specific path
  contractlens config init --path ~/.config/contractlens/config.yaml

  # Overwrite existing config
  contractlens config init --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputPath == "" {
				outputPath = DefaultConfigFile
			}
			return writeSampleConfig(cmd.OutOrStdout(), expandHome(outputPath), minimal, force)
		},
	}

	initCmd.Flags().StringVarP(&outputPath, "path", "p", "", "output path for config file (default: "+DefaultConfigFile+")")
	initCmd.Flags().BoolVarP(&minimal, "minimal", "m", false, "create minimal configuration")
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing config file")

	return initCmd
}

func writeSampleConfig(out io.Writer, path string, minimal, force bool) error {
	if !force && fileExists(path) {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}

	dir := filepath.Dir(path)
	if dir != "." && dir != "/" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	content := config.SampleConfig()
	if minimal {
		content = config.MinimalSampleConfig()
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(out, "%s Configuration file created at: %s\n", GetEmoji("success"), path)
	if minimal {
		fmt.Fprintf(out, "%s Created minimal configuration with essential settings\n", GetEmoji("file"))
	} else {
		fmt.Fprintf(out, "%s Created full configuration with all options and documentation\n", GetEmoji("file"))
	}
	return nil
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand() *cobra.Command {
	var format string

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long: `Display the current effective configuration after loading from all sources.

Shows the merged configuration from all sources including defaults,
config files, and CONTRACTLENS_ environment variable overrides.
The GitHub token is never printed.`,
		Example: `  # Show config in YAML format
  contractlens config show

  # Show config in JSON format
  contractlens config show --format json

  # Show config from specific file
  contractlens --config /path/to/config.yaml config show`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewLoader().LoadConfig(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			return showConfig(cmd.OutOrStdout(), cfg, format)
		},
	}

	showCmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format (yaml, json)")

	return showCmd
}

func showConfig(out io.Writer, cfg *config.Config, format string) error {
	redacted := *cfg
	if redacted.GitHub.Token != "" {
		redacted.GitHub.Token = "********"
	}

	switch format {
	case "json":
		data, err := json.MarshalIndent(redacted, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config to JSON: %w", err)
		}
		fmt.Fprintln(out, string(data))
	case "yaml":
		data, err := yaml.Marshal(redacted)
		if err != nil {
			return fmt.Errorf("failed to marshal config to YAML: %w", err)
		}
		fmt.Fprint(out, string(data))
		fmt.Fprintf(out, "# %s\n", cfg.FileRules().Describe())
	default:
		return fmt.Errorf("unsupported format: %s (use json or yaml)", format)
	}
	return nil
}

// newConfigValidateCommand creates the config validate subcommand
func newConfigValidateCommand() *cobra.Command {
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validate a ContractLens configuration file for syntax and semantic errors.

Checks the configuration file for:
- Valid YAML syntax
- Required fields such as the analyzer endpoint
- Valid values for enums
- Proper data types`,
		Example: `  # Validate current config
  contractlens config validate

  # Validate specific config file
  contractlens --config /path/to/config.yaml config validate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfg, err := config.NewLoader().LoadConfig(cfgFile)
			if err != nil {
				fmt.Fprintf(out, "%s Configuration validation failed:\n", GetEmoji("error"))
				fmt.Fprintf(out, "   %v\n", err)
				return err
			}

			fmt.Fprintf(out, "%s Configuration is valid\n", GetEmoji("success"))
			printConfigSummary(out, cfg)
			return nil
		},
	}

	return validateCmd
}

func printConfigSummary(out io.Writer, cfg *config.Config) {
	fmt.Fprintf(out, "%s Configuration summary:\n", GetEmoji("chart"))
	fmt.Fprintf(out, "   Version: %s\n", cfg.Version)
	fmt.Fprintf(out, "   Analyzer Endpoint: %s\n", cfg.Analyzer.Endpoint)
	fmt.Fprintf(out, "   Output Format: %s\n", cfg.Output.DefaultFormat)
	fmt.Fprintf(out, "   %s\n", cfg.FileRules().Describe())
	fmt.Fprintf(out, "   GitHub Host: %s\n", cfg.GitHub.Host)
}

// newConfigPathCommand creates the config path subcommand
func newConfigPathCommand() *cobra.Command {
	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Show configuration file search paths",
		Long: `Display the list of paths ContractLens searches for configuration files.

Shows the search order and indicates which files exist.`,
		Example: `  # Show config search paths
  contractlens config path`,
		Run: func(cmd *cobra.Command, args []string) {
			printConfigPaths(cmd.OutOrStdout(), config.GetConfigPaths())
		},
	}

	return pathCmd
}

func printConfigPaths(out io.Writer, paths []string) {
	fmt.Fprintf(out, "%s Configuration file search paths (in priority order):\n\n", GetEmoji("folder"))

	priority := []string{"Highest", "Medium", "Lowest"}
	for i, path := range paths {
		exists := " (not found)"
		if fileExists(path) {
			exists = " " + GetEmoji("success") + " (exists)"
		}

		fmt.Fprintf(out, "  %d. %s%s\n", i+1, path, exists)
		if i < len(priority) {
			fmt.Fprintf(out, "     Priority: %s\n", priority[i])
		}
		fmt.Fprintln(out)
	}

	if current, found := config.FindConfigFile(); found {
		fmt.Fprintf(out, "%s Current config file: %s\n", GetEmoji("target"), current)
	} else {
		fmt.Fprintln(out, "No config file found, using defaults")
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s Environment variables with %s prefix override file settings (%s)\n",
		GetEmoji("tip"), config.EnvPrefix, strings.Join(exampleEnvVars, ", "))
}

var exampleEnvVars = []string{
	config.EnvPrefix + "ANALYZER_ENDPOINT",
	config.EnvPrefix + "OUTPUT_DEFAULT_FORMAT",
	config.EnvPrefix + "GITHUB_TOKEN",
}

// fileExists reports whether filename can be stat'ed
func fileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}
