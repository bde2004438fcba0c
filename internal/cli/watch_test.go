package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/yildizm/ContractLens/internal/analysis"
	"github.com/yildizm/ContractLens/internal/emoji"
	"github.com/yildizm/ContractLens/internal/formatter"
)

// syncBuffer guards a buffer written by the watch loop and read by the test
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestWatcher(t *testing.T, target string, fa *fakeAnalyzer, debounce time.Duration) (*contractWatcher, *syncBuffer) {
	t.Helper()
	out := &syncBuffer{}
	return &contractWatcher{
		target:    target,
		debounce:  debounce,
		formatter: formatter.NewTerminal(false, false),
		out:       out,
		deps:      testDeps(fa, &fakeImporter{}),
	}, out
}

func submissions(fa *fakeAnalyzer) int {
	fa.mu.Lock()
	defer fa.mu.Unlock()
	return len(fa.payloads)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestContractWatcher_DebouncesEvents(t *testing.T) {
	target := writeContract(t, t.TempDir(), "Vault.sol", "contract Vault {}")
	fa := &fakeAnalyzer{}
	w, out := newTestWatcher(t, target, fa, 50*time.Millisecond)

	events := make(chan fsnotify.Event)
	errs := make(chan error)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.run(ctx, events, errs) }()

	waitFor(t, "initial analysis", func() bool { return submissions(fa) == 1 })

	// a burst of saves produces one submission
	for i := 0; i < 5; i++ {
		events <- fsnotify.Event{Name: target, Op: fsnotify.Write}
	}
	// other files in the directory are ignored
	events <- fsnotify.Event{Name: filepath.Join(filepath.Dir(target), "Other.sol"), Op: fsnotify.Write}
	waitFor(t, "debounced analysis", func() bool { return submissions(fa) == 2 })

	time.Sleep(150 * time.Millisecond)
	if n := submissions(fa); n != 2 {
		t.Errorf("expected 2 submissions after one burst, got %d", n)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("run() error = %v", err)
	}
	if !strings.Contains(out.String(), "Vault.sol") {
		t.Errorf("expected a report for Vault.sol, got:\n%s", out.String())
	}
}

func TestContractWatcher_ClosedEvents(t *testing.T) {
	target := writeContract(t, t.TempDir(), "Vault.sol", "contract Vault {}")
	w, _ := newTestWatcher(t, target, &fakeAnalyzer{}, time.Millisecond)

	events := make(chan fsnotify.Event)
	close(events)
	if err := w.run(context.Background(), events, make(chan error)); err == nil {
		t.Error("expected error when the events channel closes")
	}
}

func TestContractWatcher_Relevant(t *testing.T) {
	target := filepath.Join(t.TempDir(), "Vault.sol")
	w := &contractWatcher{target: target}

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{name: "write", event: fsnotify.Event{Name: target, Op: fsnotify.Write}, want: true},
		{name: "create after rename-save", event: fsnotify.Event{Name: target, Op: fsnotify.Create}, want: true},
		{name: "chmod", event: fsnotify.Event{Name: target, Op: fsnotify.Chmod}, want: false},
		{name: "remove", event: fsnotify.Event{Name: target, Op: fsnotify.Remove}, want: false},
		{name: "sibling", event: fsnotify.Event{Name: target + ".swp", Op: fsnotify.Write}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.relevant(tt.event); got != tt.want {
				t.Errorf("relevant(%v) = %v, want %v", tt.event, got, tt.want)
			}
		})
	}
}

func TestContractWatcher_RealFileSystem(t *testing.T) {
	target := writeContract(t, t.TempDir(), "Vault.sol", "contract Vault {}")
	fa := &fakeAnalyzer{}
	w, _ := newTestWatcher(t, target, fa, 20*time.Millisecond)

	fw, err := createWatcher(target)
	if err != nil {
		t.Fatalf("createWatcher() error = %v", err)
	}
	defer cleanupWatcher(fw)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.run(ctx, fw.Events, fw.Errors) }()

	waitFor(t, "initial analysis", func() bool { return submissions(fa) == 1 })
	if err := os.WriteFile(target, []byte("contract Vault { uint x; }"), 0o600); err != nil {
		t.Fatalf("failed to rewrite contract: %v", err)
	}
	// the save may surface as a truncate and a write; only the final content matters
	waitFor(t, "analysis of the saved content", func() bool {
		fa.mu.Lock()
		defer fa.mu.Unlock()
		last := fa.payloads[len(fa.payloads)-1]
		return string(last.Data) == "contract Vault { uint x; }"
	})
}

func TestWatchSummary(t *testing.T) {
	emoji.SetEmojiDisabled(true)
	defer emoji.SetEmojiDisabled(false)
	now := time.Date(2024, 5, 1, 14, 3, 9, 0, time.UTC)

	ok := &formatter.Report{Name: "/src/Vault.sol", Result: &analysis.Result{Issues: []analysis.Issue{
		{Line: 1, Type: analysis.IssueError},
		{Line: 2, Type: analysis.IssueError},
		{Line: 3, Type: analysis.IssueInfo},
	}}}
	if got := watchSummary(now, ok); got != "[14:03:09] [WATCH] Vault.sol [ERR] 2  [WRN] 0  [INF] 1" {
		t.Errorf("watchSummary() = %q", got)
	}

	failed := &formatter.Report{Name: "/src/Vault.sol", Err: errors.New("boom")}
	if got := watchSummary(now, failed); got != "[14:03:09] [WATCH] Vault.sol [ERR] failed: boom" {
		t.Errorf("watchSummary() = %q", got)
	}
}

func TestValidateWatchFilePath(t *testing.T) {
	dir := t.TempDir()
	file := writeContract(t, dir, "a.sol", "x")

	if err := validateWatchFilePath(file); err != nil {
		t.Errorf("expected %s to be watchable: %v", file, err)
	}
	for _, bad := range []string{"", "   ", dir, filepath.Join(dir, "missing.sol")} {
		if err := validateWatchFilePath(bad); err == nil {
			t.Errorf("expected %q to be rejected", bad)
		}
	}
}
