package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/yildizm/ContractLens/internal/analysis"
	"github.com/yildizm/ContractLens/internal/formatter"
	"github.com/yildizm/ContractLens/internal/github"
	"github.com/yildizm/ContractLens/internal/monitor"
)

var (
	watchDebounce time.Duration
	watchStats    bool
)

func newWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-analyze a contract file whenever it is saved",
		Long: `Watch a contract file and submit it for analysis every time it changes.

Saves are debounced so that an editor writing the file in several steps
triggers a single submission. An analysis still in flight when the file
changes again is allowed to finish. Press Ctrl+C to stop watching.

Examples:
  contractlens watch Vault.sol
  contractlens watch --debounce 1s contracts/Token.sol`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}

	cmd.Flags().DurationVar(&watchDebounce, "debounce", 0, "quiet period before re-analyzing (default: watch.debounce)")
	cmd.Flags().BoolVar(&watchStats, "stats", false, "print request timings to stderr when the watch stops")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()

	target, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("invalid file path: %w", err)
	}
	if err := validateWatchFilePath(target); err != nil {
		return fmt.Errorf("invalid file path: %w", err)
	}
	f, err := getFormatter(getOutputFormat(), useColor(), !isEmojiDisabled())
	if err != nil {
		return err
	}

	log := newLogger("watch")
	client, err := analysis.New(cfg.AnalyzerClientConfig(), analysis.WithLogger(log))
	if err != nil {
		return fmt.Errorf("invalid analyzer configuration: %w", err)
	}

	debounce := cfg.Watch.Debounce
	if cmd.Flags().Changed("debounce") {
		debounce = watchDebounce
	}

	fw, err := createWatcher(target)
	if err != nil {
		return err
	}
	defer cleanupWatcher(fw)

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := &contractWatcher{
		target:    target,
		debounce:  debounce,
		formatter: f,
		out:       cmd.OutOrStdout(),
		deps: analyzeDeps{
			analyzer: client,
			importer: github.New(cfg.GitHubClientConfig(), github.WithLogger(log)),
			rules:    cfg.FileRules(),
			fileName: cfg.Analyzer.DefaultFilename,
			log:      log,
			metrics:  monitor.New(),
		},
	}
	if watchStats {
		defer func() {
			fmt.Fprint(cmd.ErrOrStderr(), monitor.FormatText(w.deps.metrics.Snapshot(), w.deps.metrics.Uptime()))
		}()
	}

	if isVerbose() {
		fmt.Fprintf(os.Stderr, "Watching file: %s\n", target)
		fmt.Fprintf(os.Stderr, "Press Ctrl+C to stop...\n\n")
	}
	return w.run(ctx, fw.Events, fw.Errors)
}

// contractWatcher analyzes target once up front and again after every debounced change
type contractWatcher struct {
	target    string
	debounce  time.Duration
	formatter formatter.Formatter
	out       io.Writer
	deps      analyzeDeps
	runs      int
}

func (w *contractWatcher) run(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) error {
	w.analyze(ctx)

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if isVerbose() {
				fmt.Fprintf(os.Stderr, "\nStopping watch...\n")
			}
			return nil

		case event, ok := <-events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if w.relevant(event) {
				pending = time.After(w.debounce)
			}

		case <-pending:
			pending = nil
			w.analyze(ctx)

		case err, ok := <-errs:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.deps.log.Warn("watcher error: %v", err)
		}
	}
}

// relevant reports whether event changed the watched file's content
func (w *contractWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.target {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

func (w *contractWatcher) analyze(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	w.runs++

	report := analyzeInput(ctx, analysisInput{name: w.target, path: w.target}, w.deps)
	if canceledRun(ctx, report) {
		return
	}

	fmt.Fprintln(w.out, watchSummary(time.Now(), report))
	output, err := w.formatter.Format([]*formatter.Report{report})
	if err != nil {
		w.deps.log.Error("failed to format results: %v", err)
		return
	}
	_, _ = w.out.Write(output)
}

func canceledRun(ctx context.Context, report *formatter.Report) bool {
	return ctx.Err() != nil && report.Err != nil
}

// watchSummary is the one-line header printed before each run's report
func watchSummary(now time.Time, report *formatter.Report) string {
	prefix := fmt.Sprintf("[%s] %s %s", now.Format("15:04:05"), GetEmoji("watch"), filepath.Base(report.Name))
	if report.Failed() {
		return fmt.Sprintf("%s %s failed: %v", prefix, GetEmoji("error"), report.Err)
	}

	counts := report.Result.CountByType()
	parts := make([]string, 0, 3)
	for _, t := range []analysis.IssueType{analysis.IssueError, analysis.IssueWarning, analysis.IssueInfo} {
		parts = append(parts, fmt.Sprintf("%s %d", GetIssueEmoji(t), counts[t]))
	}
	return prefix + " " + strings.Join(parts, "  ")
}

// cleanupWatcher safely closes watcher with error logging
func cleanupWatcher(watcher *fsnotify.Watcher) {
	if err := watcher.Close(); err != nil && isVerbose() {
		fmt.Fprintf(os.Stderr, "Warning: failed to close watcher: %v\n", err)
	}
}

// createWatcher watches the directory holding filename so saves that
// replace the file are still seen
func createWatcher(filename string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(filename)); err != nil {
		cleanupWatcher(watcher)
		return nil, fmt.Errorf("failed to watch file: %w", err)
	}

	return watcher, nil
}

// validateWatchFilePath validates that a file path is safe to watch
func validateWatchFilePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("empty file path")
	}

	cleanPath := filepath.Clean(path)

	info, err := os.Stat(cleanPath)
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("cannot watch directory, must be a file")
	}

	return nil
}
