// Package ui is the interactive contract editor. It composes the editor
// widget, the file and URL inputs, the results panel and notifications
// around one session.Session, which it mutates only from Update.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/yildizm/ContractLens/internal/contract"
	"github.com/yildizm/ContractLens/internal/editor"
	"github.com/yildizm/ContractLens/internal/logger"
	"github.com/yildizm/ContractLens/internal/session"
)

// focusTarget is the component receiving keys
type focusTarget int

const (
	focusEditor focusTarget = iota
	focusPath
	focusURL
	focusResults
)

type toastKind int

const (
	toastInfo toastKind = iota
	toastSuccess
	toastError
)

type toast struct {
	id   int
	kind toastKind
	text string
}

// Options configures the App
type Options struct {
	Session       *session.Session
	Analyzer      session.Analyzer
	Importer      session.Importer
	Placeholder   string
	ToastDuration time.Duration // 0 keeps a notification until the next one
	Clipboard     editor.Clipboard
	Logger        *logger.Logger

	// InitialPath or InitialURL pre-load the editor on start
	InitialPath string
	InitialURL  string
}

// App is the root Bubble Tea model
type App struct {
	sess     *session.Session
	analyzer session.Analyzer
	importer session.Importer
	log      *logger.Logger
	styles   *Styles

	editor    *editor.Model
	pathInput textinput.Model
	urlInput  textinput.Model
	spinner   spinner.Model
	results   viewport.Model

	focus      focusTarget
	submission *session.Submission
	importing  *session.ImportTicket

	toast         *toast
	toastSeq      int
	toastDuration time.Duration

	startup  []tea.Cmd
	width    int
	height   int
	ready    bool
	quitting bool
	showHelp bool
}

// New creates the App
func New(opts Options) *App {
	sess := opts.Session
	if sess == nil {
		sess = session.New()
	}
	log := logger.New("ui", nil)
	if opts.Logger != nil {
		log = opts.Logger.WithComponent("ui")
	}

	a := &App{
		sess:          sess,
		analyzer:      opts.Analyzer,
		importer:      opts.Importer,
		log:           log,
		styles:        GetStyles(),
		toastDuration: opts.ToastDuration,
	}

	editorOpts := []editor.Option{
		editor.WithValue(sess.Text()),
		editor.WithPlaceholder(opts.Placeholder),
		editor.WithStyles(a.styles.Editor()),
		editor.WithOnChange(a.handleEdit),
	}
	if opts.Clipboard != nil {
		editorOpts = append(editorOpts, editor.WithClipboard(opts.Clipboard))
	}
	a.editor = editor.New(editorOpts...)

	a.pathInput = newInput("File   ", "path/to/Contract.sol  "+sess.Rules().Describe(), 4096)
	a.urlInput = newInput("GitHub ", "https://github.com/owner/repo/blob/main/Contract.sol", 2048)

	a.spinner = spinner.New()
	a.spinner.Spinner = spinner.Dot
	a.spinner.Style = a.styles.Spinner

	a.results = viewport.New(80, 8)
	a.refreshResults()

	if opts.InitialPath != "" {
		a.startup = append(a.startup, a.selectPath(opts.InitialPath))
	}
	if opts.InitialURL != "" {
		a.startup = append(a.startup, a.beginImport(opts.InitialURL))
	}
	return a
}

func newInput(prompt, placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = limit
	return in
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(append(a.startup, textinput.Blink)...)
}

// Update routes messages; every session mutation happens here
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return a.handleWindowResize(msg)
	case tea.KeyMsg:
		return a.handleKeyPress(msg)
	case tea.MouseMsg:
		return a.handleMouse(msg)
	case spinner.TickMsg:
		if !a.working() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	case decodedMsg:
		return a.handleDecoded(msg)
	case importDoneMsg:
		return a.handleImportDone(msg)
	case submitDoneMsg:
		return a.handleSubmitDone(msg)
	case editor.ClipboardErrorMsg:
		return a, a.notify(toastError, "Clipboard unavailable: "+msg.Err.Error())
	case toastExpiredMsg:
		if a.toast != nil && a.toast.id == msg.id {
			a.toast = nil
		}
		return a, nil
	}

	// cursor blink and other component messages
	var cmds []tea.Cmd
	var cmd tea.Cmd
	a.pathInput, cmd = a.pathInput.Update(msg)
	cmds = append(cmds, cmd)
	a.urlInput, cmd = a.urlInput.Update(msg)
	cmds = append(cmds, cmd)
	return a, tea.Batch(cmds...)
}

// working reports whether any asynchronous work is outstanding
func (a *App) working() bool {
	if a.sess.Busy() || a.importing != nil {
		return true
	}
	f, ok := a.sess.Source().(contract.File)
	return ok && f.Pending
}

// handleWindowResize handles window resize events
func (a *App) handleWindowResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	a.width = msg.Width
	a.height = msg.Height
	a.ready = true
	a.layout()
	return a, nil
}

// handleKeyPress handles app shortcuts, then hands the key to the focused component
func (a *App) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a.handleQuit()
	case "ctrl+r":
		return a, a.analyze()
	case "ctrl+o":
		return a, a.setFocus(focusPath)
	case "ctrl+g":
		return a, a.setFocus(focusURL)
	case "ctrl+n":
		if a.focus == focusResults {
			return a, a.setFocus(focusEditor)
		}
		return a, a.setFocus(focusResults)
	case "f1":
		a.showHelp = !a.showHelp
		a.refreshResults()
		return a, nil
	case "esc":
		return a.handleEscape()
	}

	switch a.focus {
	case focusPath, focusURL:
		return a.handleInputKey(msg)
	case focusResults:
		var cmd tea.Cmd
		a.results, cmd = a.results.Update(msg)
		return a, cmd
	default:
		_, cmd := a.editor.Update(msg)
		return a, cmd
	}
}

func (a *App) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	input := &a.pathInput
	if a.focus == focusURL {
		input = &a.urlInput
	}

	if msg.Type != tea.KeyEnter {
		var cmd tea.Cmd
		*input, cmd = input.Update(msg)
		return a, cmd
	}

	value := strings.TrimSpace(input.Value())
	input.Reset()
	target := a.focus
	a.setFocus(focusEditor)

	if target == focusURL {
		return a, a.beginImport(value)
	}
	return a, a.selectPath(value)
}

func (a *App) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if a.focus == focusResults {
		var cmd tea.Cmd
		a.results, cmd = a.results.Update(msg)
		return a, cmd
	}
	_, cmd := a.editor.Update(msg)
	return a, cmd
}

// handleEscape leaves an input, or cancels in-flight work from the editor
func (a *App) handleEscape() (tea.Model, tea.Cmd) {
	switch a.focus {
	case focusPath:
		a.pathInput.Reset()
		return a, a.setFocus(focusEditor)
	case focusURL:
		a.urlInput.Reset()
		return a, a.setFocus(focusEditor)
	case focusResults:
		return a, a.setFocus(focusEditor)
	}

	if a.sess.Busy() || a.importing != nil {
		a.sess.Cancel()
		a.submission = nil
		a.importing = nil
		a.syncEditor()
		return a, a.notify(toastInfo, "Canceled")
	}
	return a, nil
}

// handleQuit handles quit commands
func (a *App) handleQuit() (tea.Model, tea.Cmd) {
	a.quitting = true
	a.sess.Cancel()
	a.editor.Close()
	return a, tea.Quit
}

func (a *App) setFocus(target focusTarget) tea.Cmd {
	a.focus = target
	a.editor.Blur()
	a.pathInput.Blur()
	a.urlInput.Blur()

	switch target {
	case focusPath:
		return a.pathInput.Focus()
	case focusURL:
		return a.urlInput.Focus()
	case focusEditor:
		a.editor.Focus()
	}
	return nil
}

// handleEdit receives every user edit from the editor widget
func (a *App) handleEdit(text string) {
	a.sess.Edit(text)
	// an edit cancels the pending import
	a.importing = nil
}

// syncEditor shows the session's text when the two have drifted apart
func (a *App) syncEditor() {
	if text := a.sess.Text(); a.editor.Value() != text {
		a.editor.SetValue(text)
	}
}

func (a *App) selectPath(path string) tea.Cmd {
	t, err := a.sess.SelectPath(path)
	if err != nil {
		return a.notify(toastError, err.Error())
	}
	a.importing = nil
	return tea.Batch(
		a.notify(toastInfo, fmt.Sprintf("Selected %s (%s)", t.File.Name, contract.HumanBytes(t.File.Size))),
		a.spinner.Tick,
		CreateDecodeCommand(t),
	)
}

func (a *App) handleDecoded(msg decodedMsg) (tea.Model, tea.Cmd) {
	if !a.sess.ApplyDecoded(msg.ticket, msg.text, msg.err) {
		return a, nil
	}
	if msg.err != nil {
		a.editor.SetValue("")
		return a, a.notify(toastError, fmt.Sprintf("%s cannot be displayed (%v). Its bytes will be submitted unchanged.", msg.ticket.File.Name, msg.err))
	}
	a.editor.SetValue(a.sess.Text())
	return a, nil
}

func (a *App) beginImport(url string) tea.Cmd {
	if a.importer == nil {
		return a.notify(toastError, "GitHub import is not configured")
	}
	t, err := a.sess.BeginImport(url)
	if err != nil {
		return a.notify(toastError, err.Error())
	}
	a.importing = t
	return tea.Batch(a.spinner.Tick, CreateImportCommand(a.importer, t))
}

func (a *App) handleImportDone(msg importDoneMsg) (tea.Model, tea.Cmd) {
	current := msg.ticket == a.importing
	if current {
		a.importing = nil
	}

	if a.sess.CompleteImport(msg.ticket, msg.text, msg.err) {
		a.editor.SetValue(a.sess.Text())
		return a, a.notify(toastSuccess, "Imported "+msg.ticket.URL)
	}
	if current && msg.err != nil && !contract.IsCanceledError(msg.err) {
		return a, a.notify(toastError, msg.err.Error())
	}
	return a, nil
}

// analyze starts a submission; it does nothing while one is in flight
func (a *App) analyze() tea.Cmd {
	if a.sess.Busy() {
		return nil
	}
	if a.analyzer == nil {
		return a.notify(toastError, "analysis service is not configured")
	}

	sub, err := a.sess.BeginSubmit()
	a.syncEditor()
	if err != nil {
		return a.notify(toastError, err.Error())
	}
	a.submission = sub
	return tea.Batch(a.spinner.Tick, CreateAnalysisCommand(a.analyzer, sub))
}

func (a *App) handleSubmitDone(msg submitDoneMsg) (tea.Model, tea.Cmd) {
	if msg.sub == a.submission {
		a.submission = nil
	}
	if !a.sess.CompleteSubmit(msg.sub, msg.result, msg.err) {
		return a, nil
	}

	if failed, ok := a.sess.State().(session.Failed); ok {
		return a, a.notify(toastError, "Analysis failed: "+failed.Reason.Error())
	}

	a.showHelp = false
	a.refreshResults()
	a.results.GotoTop()
	result := a.sess.Result()
	if result.Empty() {
		return a, a.notify(toastSuccess, noIssuesText)
	}
	return a, a.notify(toastInfo, fmt.Sprintf("Analysis complete: %d %s", result.Count(), pluralIssues(result.Count())))
}

// notify shows a toast and schedules its expiry
func (a *App) notify(kind toastKind, text string) tea.Cmd {
	a.toastSeq++
	a.toast = &toast{id: a.toastSeq, kind: kind, text: text}
	if kind == toastError {
		a.log.Warn("%s", text)
	} else {
		a.log.Debug("%s", text)
	}
	return expireToast(a.toastSeq, a.toastDuration)
}

func (a *App) refreshResults() {
	if a.showHelp {
		a.results.SetContent(renderHelp(a.styles))
		return
	}
	a.results.SetContent(renderResults(a.sess.Result(), a.results.Width, a.styles))
}

// Run starts the TUI on the alternate screen and blocks until it exits
func Run(opts Options) error {
	app := New(opts)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
