// Package session owns the authoritative contract input and the submission
// state machine. A Session is driven from a single goroutine (the Bubble Tea
// update loop or one CLI worker); asynchronous work is described by tickets
// that carry the generation they were issued under, and completions from an
// older generation are dropped.
package session

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/yildizm/ContractLens/internal/analysis"
	"github.com/yildizm/ContractLens/internal/contract"
	"github.com/yildizm/ContractLens/internal/logger"
)

// Analyzer submits a payload to the analysis service
type Analyzer interface {
	Analyze(ctx context.Context, p *contract.Payload) (*analysis.Result, error)
}

// Importer fetches contract text from a code-hosting URL
type Importer interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Session is not safe for concurrent use
type Session struct {
	source   contract.Source
	state    State
	result   *analysis.Result
	rules    contract.FileRules
	fileName string
	log      *logger.Logger

	// gen is bumped by every source-changing action
	gen       uint64
	importSeq uint64

	decodeCancel context.CancelFunc
	importCancel context.CancelFunc
	submitCancel context.CancelFunc
}

// Option configures a Session
type Option func(*Session)

// WithFileRules sets the upload allow-list and size limit
func WithFileRules(rules contract.FileRules) Option {
	return func(s *Session) { s.rules = rules }
}

// WithFileName sets the name used when text is submitted without a file
func WithFileName(name string) Option {
	return func(s *Session) {
		if name != "" {
			s.fileName = name
		}
	}
}

// WithLogger attaches a logger
func WithLogger(l *logger.Logger) Option {
	return func(s *Session) { s.log = l.WithComponent("session") }
}

// WithText seeds the editor with manual text
func WithText(text string) Option {
	return func(s *Session) { s.source = contract.Manual{Content: text} }
}

// New creates an idle session with empty manual text
func New(opts ...Option) *Session {
	s := &Session{
		source:   contract.Manual{},
		state:    Idle{},
		rules:    contract.DefaultFileRules(),
		fileName: contract.DefaultFileName,
		log:      logger.New("session", nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Source returns the authoritative input
func (s *Session) Source() contract.Source { return s.source }

// Text returns the text the editor should display
func (s *Session) Text() string { return s.source.Text() }

// SelectedFile returns the chosen upload, or nil
func (s *Session) SelectedFile() *contract.SelectedFile {
	return contract.SelectedFileOf(s.source)
}

// Result returns the last successful result. Nil means nothing has succeeded yet.
func (s *Session) Result() *analysis.Result { return s.result }

// State returns the submission state
func (s *Session) State() State { return s.state }

// Busy reports whether a submission is in flight
func (s *Session) Busy() bool {
	_, ok := s.state.(Submitting)
	return ok
}

// Rules returns the upload rules
func (s *Session) Rules() contract.FileRules { return s.rules }

// Generation returns the current generation
func (s *Session) Generation() uint64 { return s.gen }

// Edit makes the typed text authoritative. Any selected file is abandoned
// and pending decode or import work is canceled.
func (s *Session) Edit(text string) {
	if m, ok := s.source.(contract.Manual); ok && m.Content == text {
		return
	}
	if s.source.Kind() == contract.SourceFile {
		s.log.Debug("edit abandons selected file")
	}
	s.advance()
	s.source = contract.Manual{Content: text}
}

// advance bumps the generation and cancels source-bound work
func (s *Session) advance() {
	s.gen++
	cancelFunc(&s.decodeCancel)
	cancelFunc(&s.importCancel)
}

func cancelFunc(fn *context.CancelFunc) {
	if *fn != nil {
		(*fn)()
		*fn = nil
	}
}

// Cancel aborts all in-flight work. An in-flight submission ends as Failed.
func (s *Session) Cancel() {
	cancelFunc(&s.decodeCancel)
	cancelFunc(&s.importCancel)
	if sub, ok := s.state.(Submitting); ok {
		cancelFunc(&s.submitCancel)
		s.state = Failed{Reason: contract.NewCanceledError("submit", context.Canceled)}
		s.log.Debug("submission %s canceled", sub.ID)
	}
}

// Submission describes one in-flight analysis request
type Submission struct {
	ID      string
	Payload *contract.Payload
	Ctx     context.Context
	cancel  context.CancelFunc
}

// Cancel aborts the request
func (sub *Submission) Cancel() {
	if sub.cancel != nil {
		sub.cancel()
	}
}

// BeginSubmit validates the current input and starts a submission.
// It fails with a busy error while another submission is in flight and with
// a validation error, without contacting the network, when there is nothing
// to send.
func (s *Session) BeginSubmit() (*Submission, error) {
	if s.Busy() {
		return nil, contract.NewBusyError("submit")
	}

	s.state = Validating{}
	payload, err := contract.BuildPayload(s.source, s.fileName)
	if err != nil {
		s.state = Failed{Reason: err}
		return nil, err
	}

	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	ctx = analysis.WithRequestID(ctx, id)
	s.submitCancel = cancel
	s.state = Submitting{ID: id}

	// the file has been handed off; what remains is its text
	if f, ok := s.source.(contract.File); ok {
		s.source = contract.Manual{Content: handedOffText(f)}
		cancelFunc(&s.decodeCancel)
	}

	s.log.DebugWithFields("submission started", []logger.Field{
		logger.F("id", id),
		logger.F("origin", payload.Origin),
		logger.F("bytes", payload.Size()),
	})
	return &Submission{ID: id, Payload: payload, Ctx: ctx, cancel: cancel}, nil
}

// handedOffText is the text left behind by a submitted file. A decode still
// in flight is finished here so the editor never outlives its source.
func handedOffText(f contract.File) string {
	if !f.Pending {
		return f.Decoded
	}
	text, err := contract.DecodeText(f.File.Data)
	if err != nil {
		return ""
	}
	return text
}

// CompleteSubmit records the outcome of sub. It returns false when sub is no
// longer the in-flight submission. A failure keeps the previous result.
func (s *Session) CompleteSubmit(sub *Submission, result *analysis.Result, err error) bool {
	current, ok := s.state.(Submitting)
	if sub == nil || !ok || current.ID != sub.ID {
		return false
	}
	cancelFunc(&s.submitCancel)

	if err == nil && result == nil {
		err = contract.NewParseError("submit", "analysis service returned no result", nil)
	}
	if err != nil {
		s.state = Failed{Reason: err}
		s.log.WarnWithFields("submission failed", []logger.Field{logger.F("id", sub.ID), logger.Error(err)})
		return true
	}

	s.result = result
	s.state = Succeeded{Result: result}
	s.log.InfoWithFields("submission succeeded", []logger.Field{logger.F("id", sub.ID), logger.Count(result.Count())})
	return true
}

// Analyze runs a whole submission synchronously
func (s *Session) Analyze(ctx context.Context, a Analyzer) (*analysis.Result, error) {
	sub, err := s.BeginSubmit()
	if err != nil {
		return nil, err
	}
	stop := context.AfterFunc(ctx, sub.Cancel)
	defer stop()

	result, err := a.Analyze(sub.Ctx, sub.Payload)
	s.CompleteSubmit(sub, result, err)
	if failed, ok := s.state.(Failed); ok {
		return nil, failed.Reason
	}
	return result, nil
}

// DecodeTicket describes decoding a selected file for display
type DecodeTicket struct {
	Gen  uint64
	File *contract.SelectedFile
	Ctx  context.Context
}

// Decode converts the file bytes to text
func (t *DecodeTicket) Decode() (string, error) {
	if err := t.Ctx.Err(); err != nil {
		return "", contract.NewCanceledError("decode", err)
	}
	return contract.DecodeText(t.File.Data)
}

// SelectFile makes file authoritative. A rejected file leaves the session untouched.
func (s *Session) SelectFile(file *contract.SelectedFile) (*DecodeTicket, error) {
	if file == nil {
		return nil, contract.NewValidationError("select", "no file chosen")
	}
	if err := s.rules.Check(file.Name, file.Size); err != nil {
		return nil, err
	}

	s.advance()
	ctx, cancel := context.WithCancel(context.Background())
	s.decodeCancel = cancel
	s.source = contract.File{File: file, Pending: true}

	s.log.DebugWithFields("file selected", []logger.Field{
		logger.F("name", file.Name),
		logger.F("bytes", file.Size),
		logger.F("type", file.ContentType),
	})
	return &DecodeTicket{Gen: s.gen, File: file, Ctx: ctx}, nil
}

// SelectPath opens path under the session's rules and selects it
func (s *Session) SelectPath(path string) (*DecodeTicket, error) {
	file, err := contract.OpenFile(path, s.rules)
	if err != nil {
		return nil, err
	}
	return s.SelectFile(file)
}

// ApplyDecoded mirrors decoded text into the editor. It returns false for a stale ticket.
func (s *Session) ApplyDecoded(t *DecodeTicket, text string, err error) bool {
	if t == nil || t.Gen != s.gen {
		return false
	}
	cancelFunc(&s.decodeCancel)

	switch src := s.source.(type) {
	case contract.File:
		if src.File != t.File {
			return false
		}
		src.Pending = false
		if err != nil {
			src.DecodeErr = err
			s.log.WarnWithFields("file kept but not displayable", []logger.Field{logger.F("name", t.File.Name), logger.Error(err)})
		} else {
			src.Decoded = text
		}
		s.source = src
	case contract.Manual:
		// the file was submitted before decoding finished and its text was
		// taken then
		return false
	default:
		return false
	}
	return true
}

// ImportTicket describes one import fetch
type ImportTicket struct {
	Gen    uint64
	Seq    uint64
	URL    string
	Ctx    context.Context
	cancel context.CancelFunc
}

// Cancel aborts the fetch
func (t *ImportTicket) Cancel() {
	if t.cancel != nil {
		t.cancel()
	}
}

// BeginImport starts an import of url. An earlier pending import is canceled.
func (s *Session) BeginImport(url string) (*ImportTicket, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, contract.NewValidationError("import", "please enter a GitHub URL")
	}

	cancelFunc(&s.importCancel)
	s.importSeq++
	ctx, cancel := context.WithCancel(context.Background())
	s.importCancel = cancel

	return &ImportTicket{Gen: s.gen, Seq: s.importSeq, URL: url, Ctx: ctx, cancel: cancel}, nil
}

// CompleteImport applies a fetched text when no newer action superseded the
// import. A successful import clears the selected file. It returns false when
// the ticket is stale or err is non-nil, leaving the session untouched.
func (s *Session) CompleteImport(t *ImportTicket, text string, err error) bool {
	if t == nil || t.Gen != s.gen || t.Seq != s.importSeq {
		return false
	}
	cancelFunc(&s.importCancel)

	if err != nil {
		s.log.WarnWithFields("import failed", []logger.Field{logger.F("url", t.URL), logger.Error(err)})
		return false
	}

	s.advance()
	s.source = contract.Imported{URL: t.URL, Content: text}
	s.log.InfoWithFields("import applied", []logger.Field{logger.F("url", t.URL), logger.F("bytes", len(text))})
	return true
}

// Import runs a whole import synchronously
func (s *Session) Import(ctx context.Context, imp Importer, url string) error {
	t, err := s.BeginImport(url)
	if err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, t.Cancel)
	defer stop()

	text, err := imp.Fetch(t.Ctx, t.URL)
	if !s.CompleteImport(t, text, err) && err == nil {
		return contract.NewCanceledError("import", context.Canceled)
	}
	return err
}
