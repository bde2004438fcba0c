package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/yildizm/ContractLens/internal/analysis"
	"github.com/yildizm/ContractLens/internal/contract"
	"github.com/yildizm/ContractLens/internal/formatter"
	"github.com/yildizm/ContractLens/internal/github"
	"github.com/yildizm/ContractLens/internal/logger"
	"github.com/yildizm/ContractLens/internal/monitor"
	"github.com/yildizm/ContractLens/internal/session"
	"golang.org/x/sync/errgroup"
)

var (
	analyzeURLs        []string
	analyzeOutputFile  string
	analyzeFailOn      string
	analyzeName        string
	analyzeTimeout     time.Duration
	analyzeConcurrency int
	analyzeStats       bool
)

// stdin is replaced in tests
var stdin io.Reader = os.Stdin

// errIssuesFound reports a --fail-on match; the report has already been written
var errIssuesFound = errors.New("issues found")

func newAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [file|dir...]",
		Short: "Analyze contract files, stdin or GitHub URLs",
		Long: `Submit contracts to the analysis service and print the issues it reports.

Each file is sent verbatim as its own submission. Directories are searched
for files with an allowed extension. With no files and no --url,
the contract text is read from stdin and sent as the default file name.

Examples:
  contractlens analyze Vault.sol
  contractlens analyze -o sarif --output-file results.sarif contracts/
  contractlens analyze --url https://github.com/owner/repo/blob/main/Vault.sol
  cat Vault.sol | contractlens analyze --name Vault.sol
  contractlens analyze --fail-on error contracts/*.sol`,
		RunE: runAnalyze,
	}

	cmd.Flags().StringArrayVar(&analyzeURLs, "url", nil, "GitHub blob URL to import and analyze (repeatable)")
	cmd.Flags().StringVar(&analyzeOutputFile, "output-file", "", "save output to file instead of stdout")
	cmd.Flags().StringVar(&analyzeFailOn, "fail-on", "", "exit 1 when issues are found (error, any)")
	cmd.Flags().StringVar(&analyzeName, "name", "", "file name used for stdin input (default: analyzer.default_filename)")
	cmd.Flags().DurationVar(&analyzeTimeout, "timeout", 0, "per-request timeout (default: analyzer.timeout, 0 waits indefinitely)")
	cmd.Flags().IntVar(&analyzeConcurrency, "concurrency", 0, "parallel submissions (default: analysis.concurrency)")
	cmd.Flags().BoolVar(&analyzeStats, "stats", false, "print request timings to stderr")

	return cmd
}

// analysisInput is one thing to analyze
type analysisInput struct {
	name string
	path string
	url  string
	text string
}

// analyzeDeps are shared by every worker; each worker owns its session
type analyzeDeps struct {
	analyzer session.Analyzer
	importer session.Importer
	rules    contract.FileRules
	fileName string
	log      *logger.Logger
	metrics  *monitor.Collector
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()

	if analyzeFailOn != "" && analyzeFailOn != "error" && analyzeFailOn != "any" {
		return fmt.Errorf("invalid --fail-on value: %s (use error or any)", analyzeFailOn)
	}
	f, err := getFormatter(getOutputFormat(), useColor(), !isEmojiDisabled())
	if err != nil {
		return err
	}

	clientConfig := cfg.AnalyzerClientConfig()
	if cmd.Flags().Changed("timeout") {
		clientConfig.Timeout = analyzeTimeout
	}
	concurrency := cfg.Analysis.Concurrency
	if analyzeConcurrency > 0 {
		concurrency = analyzeConcurrency
	}
	fileName := cfg.Analyzer.DefaultFilename
	if analyzeName != "" {
		fileName = analyzeName
	}

	log := newLogger("analyze")
	client, err := analysis.New(clientConfig, analysis.WithLogger(log))
	if err != nil {
		return fmt.Errorf("invalid analyzer configuration: %w", err)
	}

	inputs, err := collectInputs(args, analyzeURLs, stdin, fileName, cfg.FileRules())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := analyzeDeps{
		analyzer: client,
		importer: github.New(cfg.GitHubClientConfig(), github.WithLogger(log)),
		rules:    cfg.FileRules(),
		fileName: fileName,
		log:      log,
		metrics:  monitor.New(),
	}
	reports := analyzeInputs(ctx, inputs, deps, concurrency)
	if analyzeStats {
		fmt.Fprint(cmd.ErrOrStderr(), monitor.FormatText(deps.metrics.Snapshot(), deps.metrics.Uptime()))
	}

	output, err := f.Format(reports)
	if err != nil {
		return fmt.Errorf("failed to format results: %w", err)
	}
	if err := handleOutputDestination(cmd.OutOrStdout(), output, analyzeOutputFile); err != nil {
		return err
	}

	return checkReports(reports, analyzeFailOn)
}

// collectInputs turns arguments into inputs. Directories expand to the allowed
// files beneath them; stdin is read only when nothing else was given.
func collectInputs(paths, urls []string, in io.Reader, stdinName string, rules contract.FileRules) ([]analysisInput, error) {
	inputs := make([]analysisInput, 0, len(paths)+len(urls))
	for _, path := range paths {
		if err := validateInputPath(path); err != nil {
			return nil, fmt.Errorf("invalid file path: %w", err)
		}
		files, err := expandPath(filepath.Clean(path), rules)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			inputs = append(inputs, analysisInput{name: f, path: f})
		}
	}
	for _, u := range urls {
		inputs = append(inputs, analysisInput{name: u, url: u})
	}
	if len(inputs) > 0 {
		return inputs, nil
	}

	if isVerbose() {
		fmt.Fprintf(os.Stderr, "Reading from stdin...\n")
	}
	data, err := io.ReadAll(io.LimitReader(in, contract.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	if int64(len(data)) > contract.MaxUploadBytes {
		return nil, fmt.Errorf("stdin exceeds %s", contract.HumanBytes(contract.MaxUploadBytes))
	}
	text, err := contract.DecodeText(data)
	if err != nil {
		return nil, err
	}
	return []analysisInput{{name: stdinName, text: text}}, nil
}

// analyzeInputs fans out across inputs, bounded by concurrency. Reports keep input order.
func analyzeInputs(ctx context.Context, inputs []analysisInput, deps analyzeDeps, concurrency int) []*formatter.Report {
	reports := make([]*formatter.Report, len(inputs))

	var g errgroup.Group
	g.SetLimit(max(1, concurrency))
	for i, in := range inputs {
		g.Go(func() error {
			reports[i] = analyzeInput(ctx, in, deps)
			return nil
		})
	}
	// workers record failures in their report
	_ = g.Wait()

	return reports
}

// analyzeInput loads one input into its own session and submits it
func analyzeInput(ctx context.Context, in analysisInput, deps analyzeDeps) *formatter.Report {
	start := time.Now()
	report := &formatter.Report{Name: in.name}
	defer func() { report.Duration = time.Since(start) }()

	sess := session.New(
		session.WithFileRules(deps.rules),
		session.WithFileName(deps.fileName),
		session.WithLogger(deps.log),
	)

	if err := loadInput(ctx, sess, in, deps); err != nil {
		report.Err = err
		return report
	}

	report.Result, report.Err = sess.Analyze(ctx, &meteredAnalyzer{
		next:    deps.analyzer,
		metrics: deps.metrics,
		report:  report,
	})
	return report
}

// meteredAnalyzer times each submission and notes what was sent in the report
type meteredAnalyzer struct {
	next    session.Analyzer
	metrics *monitor.Collector
	report  *formatter.Report
}

func (m *meteredAnalyzer) Analyze(ctx context.Context, p *contract.Payload) (*analysis.Result, error) {
	m.report.RequestID = analysis.RequestIDFromContext(ctx)
	m.report.Origin = p.Origin.String()

	start := time.Now()
	result, err := m.next.Analyze(ctx, p)
	m.metrics.Record(monitor.OperationSubmit, time.Since(start), p.Size(), err)
	return result, err
}

func loadInput(ctx context.Context, sess *session.Session, in analysisInput, deps analyzeDeps) error {
	switch {
	case in.url != "":
		return deps.metrics.TrackOperationWithError(monitor.OperationImport, func() error {
			return sess.Import(ctx, deps.importer, in.url)
		})
	case in.path != "":
		ticket, err := sess.SelectPath(in.path)
		if err != nil {
			return err
		}
		// undecodable files are still submitted byte for byte
		var text string
		_ = deps.metrics.TrackOperationWithError(monitor.OperationDecode, func() error {
			text, err = ticket.Decode()
			return err
		})
		sess.ApplyDecoded(ticket, text, err)
		return nil
	default:
		sess.Edit(in.text)
		return nil
	}
}

// checkReports maps failures and --fail-on matches to a non-zero exit
func checkReports(reports []*formatter.Report, failOn string) error {
	summary := formatter.Summarize(reports)
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d inputs could not be analyzed", summary.Failed, summary.Inputs)
	}
	switch failOn {
	case "error":
		if summary.Errors > 0 {
			return fmt.Errorf("%w: %d errors", errIssuesFound, summary.Errors)
		}
	case "any":
		if summary.Issues > 0 {
			return fmt.Errorf("%w: %d issues", errIssuesFound, summary.Issues)
		}
	}
	return nil
}

// handleOutputDestination writes output to file or stdout
func handleOutputDestination(stdout io.Writer, output []byte, outputFile string) error {
	if outputFile == "" {
		_, err := stdout.Write(output)
		return err
	}

	if err := validateOutputFilePath(outputFile); err != nil {
		return fmt.Errorf("invalid output file path: %w", err)
	}
	if err := writeOutputBytesToFile(output, outputFile); err != nil {
		return fmt.Errorf("failed to write output to file: %w", err)
	}
	if isVerbose() {
		fmt.Fprintf(os.Stderr, "Output saved to: %s\n", outputFile)
	}
	return nil
}

func validateInputPath(path string) error {
	if path == "" {
		return fmt.Errorf("empty file path")
	}

	cleanPath := filepath.Clean(path)

	if _, err := os.Stat(cleanPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", cleanPath)
		}
		return fmt.Errorf("cannot access file: %w", err)
	}

	return nil
}

// expandPath returns path itself, or the contract files inside it when it is a directory
func expandPath(path string, rules contract.FileRules) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	files, err := contract.ScanDirectory(path, rules)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no contract files found in %s (%s)", path, rules.Describe())
	}
	return files, nil
}

func validateOutputFilePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty file path")
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("path is a directory: %s", path)
	}
	return nil
}

// getFormatter returns the appropriate formatter for the given format
func getFormatter(format string, color, emoji bool) (formatter.Formatter, error) {
	switch format {
	case "json":
		return formatter.NewJSON(), nil
	case "markdown", "md":
		return formatter.NewMarkdown(), nil
	case "csv":
		return formatter.NewCSV(), nil
	case "sarif":
		return formatter.NewSARIF(appVersion), nil
	case "text", "terminal", "":
		return formatter.NewTerminal(color, emoji), nil
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

// writeOutputBytesToFile writes output to a file with proper error handling
func writeOutputBytesToFile(output []byte, filePath string) error {
	cleanPath := filepath.Clean(filePath)

	// #nosec G304 - the user chose this output path
	file, err := os.Create(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && isVerbose() {
			fmt.Fprintf(os.Stderr, "Warning: failed to close output file: %v\n", closeErr)
		}
	}()

	if _, err := file.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if err := file.Sync(); err != nil {
		return fmt.Errorf("failed to sync output file: %w", err)
	}

	return nil
}
