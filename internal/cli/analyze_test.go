package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yildizm/ContractLens/internal/analysis"
	"github.com/yildizm/ContractLens/internal/config"
	"github.com/yildizm/ContractLens/internal/contract"
	"github.com/yildizm/ContractLens/internal/formatter"
	"github.com/yildizm/ContractLens/internal/logger"
	"github.com/yildizm/ContractLens/internal/monitor"
)

// fakeAnalyzer answers every payload with issues and records what it saw
type fakeAnalyzer struct {
	mu       sync.Mutex
	payloads []*contract.Payload
	issues   []analysis.Issue
	err      error
	delay    time.Duration

	active    atomic.Int32
	maxActive atomic.Int32
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, p *contract.Payload) (*analysis.Result, error) {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		peak := f.maxActive.Load()
		if n <= peak || f.maxActive.CompareAndSwap(peak, n) {
			break
		}
	}

	f.mu.Lock()
	f.payloads = append(f.payloads, p)
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, contract.NewCanceledError("submit", ctx.Err())
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &analysis.Result{Issues: append([]analysis.Issue(nil), f.issues...)}, nil
}

type fakeImporter struct {
	texts map[string]string
}

func (f *fakeImporter) Fetch(ctx context.Context, url string) (string, error) {
	text, ok := f.texts[url]
	if !ok {
		return "", contract.NewStatusError("import", http.StatusNotFound, "not found")
	}
	return text, nil
}

func testDeps(a *fakeAnalyzer, imp *fakeImporter) analyzeDeps {
	log := logger.New("test", nil)
	log.SetOutput(io.Discard)
	return analyzeDeps{
		analyzer: a,
		importer: imp,
		rules:    contract.DefaultFileRules(),
		fileName: contract.DefaultFileName,
		log:      log,
	}
}

func writeContract(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// withGlobals restores the package-level CLI state after a test
func withGlobals(t *testing.T, cfg *config.Config, format string) {
	t.Helper()
	oldConfig, oldFormat, oldVerbose, oldNoEmoji := globalConfig, outputFmt, verbose, noEmoji
	oldFailOn, oldURLs, oldOutputFile, oldName := analyzeFailOn, analyzeURLs, analyzeOutputFile, analyzeName
	oldStdin := stdin
	t.Cleanup(func() {
		globalConfig, outputFmt, verbose, noEmoji = oldConfig, oldFormat, oldVerbose, oldNoEmoji
		analyzeFailOn, analyzeURLs, analyzeOutputFile, analyzeName = oldFailOn, oldURLs, oldOutputFile, oldName
		stdin = oldStdin
	})

	globalConfig = cfg
	outputFmt = format
	verbose = false
	noEmoji = true
	analyzeFailOn, analyzeURLs, analyzeOutputFile, analyzeName = "", nil, "", ""
}

func TestGetFormatter(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{format: "text"},
		{format: ""},
		{format: "json"},
		{format: "markdown"},
		{format: "md"},
		{format: "csv"},
		{format: "sarif"},
		{format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			f, err := getFormatter(tt.format, false, false)
			if tt.wantErr {
				if err == nil {
					t.Errorf("getFormatter(%q) expected error", tt.format)
				}
				return
			}
			if err != nil || f == nil {
				t.Errorf("getFormatter(%q) = %v, %v", tt.format, f, err)
			}
		})
	}
}

func TestCollectInputs(t *testing.T) {
	dir := t.TempDir()
	vault := writeContract(t, dir, "Vault.sol", "contract Vault {}")

	t.Run("files and urls skip stdin", func(t *testing.T) {
		stdinRead := false
		in := readerFunc(func(p []byte) (int, error) { stdinRead = true; return 0, io.EOF })

		inputs, err := collectInputs([]string{vault}, []string{"https://github.com/a/b/blob/main/c.sol"}, in, "contract.cpp", contract.DefaultFileRules())
		if err != nil {
			t.Fatalf("collectInputs() error = %v", err)
		}
		if len(inputs) != 2 || inputs[0].path != vault || inputs[1].url == "" {
			t.Errorf("unexpected inputs: %+v", inputs)
		}
		if stdinRead {
			t.Error("stdin must not be read when files or urls are given")
		}
	})

	t.Run("stdin", func(t *testing.T) {
		inputs, err := collectInputs(nil, nil, strings.NewReader("contract A {}"), "A.sol", contract.DefaultFileRules())
		if err != nil {
			t.Fatalf("collectInputs() error = %v", err)
		}
		if len(inputs) != 1 || inputs[0].name != "A.sol" || inputs[0].text != "contract A {}" {
			t.Errorf("unexpected inputs: %+v", inputs)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := collectInputs([]string{filepath.Join(dir, "nope.sol")}, nil, nil, "", contract.DefaultFileRules()); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("directory expands to contract files", func(t *testing.T) {
		writeContract(t, dir, "notes.md", "# notes")
		inputs, err := collectInputs([]string{dir}, nil, nil, "", contract.DefaultFileRules())
		if err != nil {
			t.Fatalf("collectInputs() error = %v", err)
		}
		if len(inputs) != 1 || inputs[0].path != vault {
			t.Errorf("unexpected inputs: %+v", inputs)
		}
	})

	t.Run("directory without contracts", func(t *testing.T) {
		if _, err := collectInputs([]string{t.TempDir()}, nil, nil, "", contract.DefaultFileRules()); err == nil {
			t.Error("expected error for a directory with no contract files")
		}
	})
}

type readerFunc func(p []byte) (int, error)

func (f readerFunc) Read(p []byte) (int, error) { return f(p) }

func TestAnalyzeInputs(t *testing.T) {
	dir := t.TempDir()
	vault := writeContract(t, dir, "Vault.sol", "contract Vault {}")
	binary := writeContract(t, dir, "blob.c", "\xff\xfe\x00\x01")
	rejected := writeContract(t, dir, "notes.md", "# notes")

	fa := &fakeAnalyzer{issues: []analysis.Issue{{Line: 3, Type: analysis.IssueWarning, Message: "unchecked call"}}}
	imp := &fakeImporter{texts: map[string]string{"https://github.com/a/b/blob/main/T.sol": "contract T {}"}}

	inputs := []analysisInput{
		{name: vault, path: vault},
		{name: "stdin", text: "contract S {}"},
		{name: "https://github.com/a/b/blob/main/T.sol", url: "https://github.com/a/b/blob/main/T.sol"},
		{name: "blank", text: "  \n\t"},
		{name: binary, path: binary},
		{name: rejected, path: rejected},
		{name: "missing", url: "https://github.com/a/b/blob/main/missing.sol"},
	}

	reports := analyzeInputs(context.Background(), inputs, testDeps(fa, imp), 2)
	if len(reports) != len(inputs) {
		t.Fatalf("expected %d reports, got %d", len(inputs), len(reports))
	}
	for i, r := range reports {
		if r.Name != inputs[i].name {
			t.Errorf("report %d name = %q, want %q", i, r.Name, inputs[i].name)
		}
	}

	wantOrigins := map[int]string{0: "file", 1: "manual", 2: "github", 4: "file"}
	for i, origin := range wantOrigins {
		r := reports[i]
		if r.Failed() {
			t.Errorf("report %d failed: %v", i, r.Err)
			continue
		}
		if r.Origin != origin {
			t.Errorf("report %d origin = %q, want %q", i, r.Origin, origin)
		}
		if r.RequestID == "" {
			t.Errorf("report %d has no request id", i)
		}
		if r.Result.Count() != 1 {
			t.Errorf("report %d issues = %d, want 1", i, r.Result.Count())
		}
	}

	if !contract.IsValidationError(reports[3].Err) {
		t.Errorf("blank input should fail validation, got %v", reports[3].Err)
	}
	if !contract.IsValidationError(reports[5].Err) {
		t.Errorf("disallowed extension should fail validation, got %v", reports[5].Err)
	}
	if contract.KindOf(reports[6].Err) != contract.ErrKindStatus {
		t.Errorf("failed import should be reported, got %v", reports[6].Err)
	}

	// only the four loadable inputs reach the service
	fa.mu.Lock()
	defer fa.mu.Unlock()
	if len(fa.payloads) != 4 {
		t.Fatalf("expected 4 submissions, got %d", len(fa.payloads))
	}
	for _, p := range fa.payloads {
		if p.FileName == "blob.c" && !bytes.Equal(p.Data, []byte("\xff\xfe\x00\x01")) {
			t.Errorf("undecodable file must be sent verbatim, got %q", p.Data)
		}
		if p.Origin == contract.SourceManual && p.FileName != contract.DefaultFileName {
			t.Errorf("typed text should be sent as %s, got %s", contract.DefaultFileName, p.FileName)
		}
	}
}

func TestAnalyzeInputs_Concurrency(t *testing.T) {
	fa := &fakeAnalyzer{delay: 20 * time.Millisecond}
	inputs := make([]analysisInput, 8)
	for i := range inputs {
		inputs[i] = analysisInput{name: "stdin", text: "contract C {}"}
	}

	reports := analyzeInputs(context.Background(), inputs, testDeps(fa, &fakeImporter{}), 3)
	for i, r := range reports {
		if r.Failed() {
			t.Errorf("report %d failed: %v", i, r.Err)
		}
	}
	if peak := fa.maxActive.Load(); peak > 3 {
		t.Errorf("expected at most 3 concurrent submissions, saw %d", peak)
	}
}

func TestAnalyzeInputs_Canceled(t *testing.T) {
	fa := &fakeAnalyzer{delay: 5 * time.Second}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	reports := analyzeInputs(ctx, []analysisInput{{name: "stdin", text: "contract C {}"}}, testDeps(fa, &fakeImporter{}), 1)
	if time.Since(start) > 2*time.Second {
		t.Fatal("cancellation did not abort the submission")
	}
	if !contract.IsCanceledError(reports[0].Err) {
		t.Errorf("expected canceled error, got %v", reports[0].Err)
	}
}

func TestCheckReports(t *testing.T) {
	warning := &formatter.Report{Name: "a", Result: &analysis.Result{Issues: []analysis.Issue{{Line: 1, Type: analysis.IssueWarning}}}}
	errorIssue := &formatter.Report{Name: "b", Result: &analysis.Result{Issues: []analysis.Issue{{Line: 1, Type: analysis.IssueError}}}}
	clean := &formatter.Report{Name: "c", Result: &analysis.Result{Issues: []analysis.Issue{}}}
	failed := &formatter.Report{Name: "d", Err: errors.New("boom")}

	tests := []struct {
		name       string
		reports    []*formatter.Report
		failOn     string
		wantErr    bool
		wantIssues bool
	}{
		{name: "clean", reports: []*formatter.Report{clean}, failOn: "any"},
		{name: "issues without fail-on", reports: []*formatter.Report{warning, errorIssue}},
		{name: "warning with fail-on error", reports: []*formatter.Report{warning}, failOn: "error"},
		{name: "error with fail-on error", reports: []*formatter.Report{errorIssue}, failOn: "error", wantErr: true, wantIssues: true},
		{name: "warning with fail-on any", reports: []*formatter.Report{warning}, failOn: "any", wantErr: true, wantIssues: true},
		{name: "failed input", reports: []*formatter.Report{clean, failed}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkReports(tt.reports, tt.failOn)
			if (err != nil) != tt.wantErr {
				t.Fatalf("checkReports() error = %v, wantErr %v", err, tt.wantErr)
			}
			if errors.Is(err, errIssuesFound) != tt.wantIssues {
				t.Errorf("errors.Is(err, errIssuesFound) = %v, want %v", errors.Is(err, errIssuesFound), tt.wantIssues)
			}
		})
	}
}

func TestHandleOutputDestination(t *testing.T) {
	var stdout bytes.Buffer
	if err := handleOutputDestination(&stdout, []byte("report"), ""); err != nil {
		t.Fatalf("handleOutputDestination() error = %v", err)
	}
	if stdout.String() != "report" {
		t.Errorf("stdout = %q", stdout.String())
	}

	path := filepath.Join(t.TempDir(), "out.json")
	stdout.Reset()
	if err := handleOutputDestination(&stdout, []byte("saved"), path); err != nil {
		t.Fatalf("handleOutputDestination() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "saved" {
		t.Errorf("file content = %q, %v", data, err)
	}
	if stdout.Len() != 0 {
		t.Errorf("nothing should reach stdout when writing a file, got %q", stdout.String())
	}

	if err := handleOutputDestination(&stdout, []byte("x"), t.TempDir()); err == nil {
		t.Error("expected error when the output path is a directory")
	}
}

func newAnalysisServer(t *testing.T, body string, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if _, _, err := r.FormFile("file"); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"missing file part"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRunAnalyze_EndToEnd(t *testing.T) {
	var hits atomic.Int32
	server := newAnalysisServer(t, `{"issues":[{"line":7,"type":"error","message":"reentrancy"}]}`, &hits)

	cfg := config.DefaultConfig()
	cfg.Analyzer.Endpoint = server.URL
	withGlobals(t, cfg, "json")

	dir := t.TempDir()
	vault := writeContract(t, dir, "Vault.sol", "contract Vault {}")

	var out bytes.Buffer
	cmd := newAnalyzeCommand()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{vault})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	var doc formatter.JSONOutput
	if err := json.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if doc.Summary.Inputs != 1 || doc.Summary.Errors != 1 {
		t.Errorf("unexpected summary: %+v", doc.Summary)
	}
	if len(doc.Reports) != 1 || doc.Reports[0].Origin != "file" || doc.Reports[0].Issues[0].Message != "reentrancy" {
		t.Errorf("unexpected reports: %+v", doc.Reports)
	}
	if hits.Load() != 1 {
		t.Errorf("expected one request, got %d", hits.Load())
	}

	t.Run("fail-on error", func(t *testing.T) {
		cmd := newAnalyzeCommand()
		cmd.SetOut(io.Discard)
		cmd.SetErr(io.Discard)
		cmd.SetArgs([]string{"--fail-on", "error", vault})
		if err := cmd.Execute(); !errors.Is(err, errIssuesFound) {
			t.Errorf("expected issues-found error, got %v", err)
		}
	})
}

func TestRunAnalyze_Stdin(t *testing.T) {
	var hits atomic.Int32
	server := newAnalysisServer(t, `{"issues":[]}`, &hits)

	cfg := config.DefaultConfig()
	cfg.Analyzer.Endpoint = server.URL
	withGlobals(t, cfg, "text")

	t.Run("typed contract", func(t *testing.T) {
		stdin = strings.NewReader("contract S {}")
		var out bytes.Buffer
		cmd := newAnalyzeCommand()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--name", "S.sol"})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("analyze failed: %v", err)
		}
		if !strings.Contains(out.String(), "S.sol: no issues found") {
			t.Errorf("unexpected output:\n%s", out.String())
		}
	})

	t.Run("blank stdin never reaches the service", func(t *testing.T) {
		before := hits.Load()
		stdin = strings.NewReader("   \n")
		cmd := newAnalyzeCommand()
		cmd.SetOut(io.Discard)
		cmd.SetErr(io.Discard)
		cmd.SetArgs([]string{})
		if err := cmd.Execute(); err == nil {
			t.Error("expected failure for blank input")
		}
		if hits.Load() != before {
			t.Error("blank input must not be submitted")
		}
	})
}

func TestRunAnalyze_InvalidFailOn(t *testing.T) {
	withGlobals(t, config.DefaultConfig(), "text")

	cmd := newAnalyzeCommand()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--fail-on", "sometimes"})
	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "invalid --fail-on") {
		t.Errorf("expected invalid --fail-on error, got %v", err)
	}
}

func TestAnalyzeInputs_RecordsMetrics(t *testing.T) {
	dir := t.TempDir()
	vault := writeContract(t, dir, "Vault.sol", "contract Vault {}")

	deps := testDeps(&fakeAnalyzer{}, &fakeImporter{})
	deps.metrics = monitor.New()
	inputs := []analysisInput{
		{name: vault, path: vault},
		{name: "missing", url: "https://github.com/a/b/blob/main/missing.sol"},
	}
	analyzeInputs(context.Background(), inputs, deps, 1)

	got := map[monitor.OperationType]monitor.OperationMetrics{}
	for _, op := range deps.metrics.Snapshot() {
		got[op.Operation] = op
	}
	if s := got[monitor.OperationSubmit]; s.Count != 1 || s.Bytes != int64(len("contract Vault {}")) {
		t.Errorf("unexpected submit metrics: %+v", s)
	}
	if d := got[monitor.OperationDecode]; d.SuccessCount != 1 {
		t.Errorf("unexpected decode metrics: %+v", d)
	}
	if i := got[monitor.OperationImport]; i.ErrorCount != 1 {
		t.Errorf("unexpected import metrics: %+v", i)
	}
}

// analyzerFunc adapts a function to session.Analyzer
type analyzerFunc func(ctx context.Context, p *contract.Payload) (*analysis.Result, error)

func (f analyzerFunc) Analyze(ctx context.Context, p *contract.Payload) (*analysis.Result, error) {
	return f(ctx, p)
}

func TestAnalyzeInput_ReportMatchesSubmission(t *testing.T) {
	t.Run("request id and origin come from the sent request", func(t *testing.T) {
		var sentID string
		deps := testDeps(&fakeAnalyzer{}, &fakeImporter{})
		deps.analyzer = analyzerFunc(func(ctx context.Context, p *contract.Payload) (*analysis.Result, error) {
			sentID = analysis.RequestIDFromContext(ctx)
			return &analysis.Result{Issues: []analysis.Issue{}}, nil
		})
		deps.metrics = monitor.New()

		report := analyzeInput(context.Background(), analysisInput{name: "stdin", text: "contract S {}"}, deps)
		if report.Err != nil {
			t.Fatalf("unexpected error: %v", report.Err)
		}
		if sentID == "" || report.RequestID != sentID {
			t.Errorf("report request id = %q, sent %q", report.RequestID, sentID)
		}
		if report.Origin != "manual" || !report.Result.Empty() {
			t.Errorf("unexpected report: origin=%q result=%+v", report.Origin, report.Result)
		}
		if ops := deps.metrics.Snapshot(); len(ops) != 1 || ops[0].Operation != monitor.OperationSubmit {
			t.Errorf("expected one submit metric, got %+v", ops)
		}
	})

	t.Run("missing result is a failure", func(t *testing.T) {
		deps := testDeps(&fakeAnalyzer{}, &fakeImporter{})
		deps.analyzer = analyzerFunc(func(ctx context.Context, p *contract.Payload) (*analysis.Result, error) {
			return nil, nil
		})

		report := analyzeInput(context.Background(), analysisInput{name: "stdin", text: "contract S {}"}, deps)
		if contract.KindOf(report.Err) != contract.ErrKindParse || report.Result != nil {
			t.Errorf("expected a parse failure, got result=%v err=%v", report.Result, report.Err)
		}
	})
}
