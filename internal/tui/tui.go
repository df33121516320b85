package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	glam "github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"

	"github.com/asynkron/vibecheck/internal/core/runtime"
	"github.com/asynkron/vibecheck/internal/session"
)

// taskDoneMsg arrives once an analysis task has resolved, stale or not.
type taskDoneMsg struct{ outcome session.Outcome }

// selectPathMsg asks the model to select a file, e.g. from the command line.
type selectPathMsg struct{ path string }

type model struct {
	ctx       context.Context
	machine   *session.Machine
	metrics   runtime.Metrics
	modelName string
	initial   string

	// UI
	input    textinput.Model
	picker   filepicker.Model
	browsing bool
	spin     spinner.Model
	help     help.Model
	keys     keyMap
	glam     *glam.TermRenderer
	width    int
	height   int
	frame    int

	snap   session.Snapshot
	notice string

	// Styling
	border      lipgloss.Style
	titleStyle  lipgloss.Style
	mutedStyle  lipgloss.Style
	errorStyle  lipgloss.Style
	noticeStyle lipgloss.Style
}

func newModel(ctx context.Context, opts Options) *model {
	if ctx == nil {
		ctx = context.Background()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = &runtime.NoOpMetrics{}
	}

	ti := textinput.New()
	ti.Placeholder = "Drop an image here or type its path…"
	ti.Prompt = "› "
	ti.CharLimit = 0
	ti.Focus()

	fp := filepicker.New()
	fp.ShowPermissions = false
	fp.ShowHidden = false
	if cwd, err := os.Getwd(); err == nil {
		fp.CurrentDirectory = cwd
	}

	sp := spinner.New()
	sp.Spinner = spinner.Moon
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))

	m := &model{
		ctx:       ctx,
		machine:   opts.Machine,
		metrics:   metrics,
		modelName: opts.Model,
		initial:   strings.TrimSpace(opts.InitialImage),
		input:     ti,
		picker:    fp,
		spin:      sp,
		help:      help.New(),
		keys:      newKeyMap(),
		border:    lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240")),
		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("129")),
		mutedStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		errorStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		noticeStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	}
	m.snap = m.machine.Snapshot()
	m.keys.forState(m.snap.State, false)
	_ = m.rebuildRenderer(80)
	return m
}

func waitForTask(task *session.Task) tea.Cmd {
	return func() tea.Msg {
		<-task.Done()
		outcome, _ := task.Outcome()
		return taskDoneMsg{outcome: outcome}
	}
}

// rebuildRenderer recreates the Glamour renderer with the given wrap width.
func (m *model) rebuildRenderer(wrap int) error {
	if wrap < 10 {
		wrap = 10
	}
	r, err := glam.NewTermRenderer(
		glam.WithStylePath("dark"), // fixed style to avoid OSC queries
		glam.WithWordWrap(wrap),
	)
	if err != nil {
		return err
	}
	m.glam = r
	return nil
}

func (m *model) recalcLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	inner := m.width - 4
	if inner < 10 {
		inner = 10
	}
	m.input.Width = inner - len(m.input.Prompt)
	m.help.Width = m.width
	_ = m.rebuildRenderer(inner - 4)
}

func (m *model) refresh() {
	m.snap = m.machine.Snapshot()
	m.keys.forState(m.snap.State, m.browsing)
}

// selectPath hands a file to the machine and, if an analysis started,
// returns the commands that wait for it.
func (m *model) selectPath(path string) tea.Cmd {
	path = strings.TrimSpace(path)
	if path == "" {
		m.notice = "Type or drop an image path first."
		return nil
	}

	task, err := m.machine.Select(m.ctx, session.FromPath(path))
	m.refresh()

	var failure *session.Error
	switch {
	case errors.Is(err, session.ErrBusy):
		m.notice = "Still reading the current image. Press r to abandon it."
		return nil
	case errors.Is(err, session.ErrNotIdle):
		m.notice = "Press r to start over before choosing another image."
		return nil
	case errors.As(err, &failure):
		m.input.Reset()
		return nil
	case err != nil:
		m.notice = err.Error()
		return nil
	}

	m.notice = ""
	m.input.Reset()
	m.input.Blur()
	return tea.Batch(waitForTask(task), m.spin.Tick)
}

func (m *model) reset() tea.Cmd {
	m.machine.Reset()
	m.browsing = false
	m.notice = ""
	m.refresh()
	return m.input.Focus()
}

func (m *model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.initial != "" {
		path := m.initial
		cmds = append(cmds, func() tea.Msg { return selectPathMsg{path: path} })
	}
	return tea.Batch(cmds...)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		if m.snap.State != session.StateAnalyzing {
			return m, nil
		}
		m.frame++
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case taskDoneMsg:
		m.refresh()
		if m.snap.State == session.StateIdle {
			return m, m.input.Focus()
		}
		return m, nil

	case selectPathMsg:
		return m, m.selectPath(msg.path)

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	// Directory listings and cursor blinks.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	cmds = append(cmds, cmd)
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		m.machine.Reset()
		return tea.Quit
	}

	if m.browsing {
		return m.handleBrowseKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.machine.Reset()
		return tea.Quit
	case key.Matches(msg, m.keys.Reset):
		return m.reset()
	case key.Matches(msg, m.keys.Browse):
		m.browsing = true
		m.notice = ""
		m.input.Blur()
		m.refresh()
		return m.picker.Init()
	case key.Matches(msg, m.keys.Select):
		return m.selectPath(m.input.Value())
	}

	if m.snap.State != session.StateIdle {
		return nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if msg.Paste {
		// Terminals paste the path of a file dragged onto the window.
		return tea.Batch(cmd, m.selectPath(m.input.Value()))
	}
	return cmd
}

func (m *model) handleBrowseKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "tab":
		m.browsing = false
		m.refresh()
		return m.input.Focus()
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.browsing = false
		return tea.Batch(cmd, m.selectPath(path))
	}
	return cmd
}

func (m *model) View() string {
	var body string
	switch m.snap.State {
	case session.StateIdle:
		body = m.idleView()
	case session.StateAnalyzing:
		body = m.analyzingView()
	case session.StateRevealed:
		body = m.revealedView()
	case session.StateError:
		body = m.errorView()
	}

	sections := []string{m.header(), body}
	if m.notice != "" {
		sections = append(sections, m.noticeStyle.Render(m.notice))
	}
	sections = append(sections, m.footer())
	return strings.Join(sections, "\n\n")
}

func (m *model) contentWidth() int {
	if m.width <= 0 {
		return 76
	}
	if m.width-4 < 20 {
		return 20
	}
	return m.width - 4
}

func (m *model) header() string {
	title := m.titleStyle.Render("✦ vibecheck")
	if m.modelName == "" {
		return title
	}
	return title + m.mutedStyle.Render("  · "+m.modelName)
}

func (m *model) idleView() string {
	if m.browsing {
		return m.border.Width(m.contentWidth()).Render(
			m.mutedStyle.Render(m.picker.CurrentDirectory) + "\n\n" + m.picker.View(),
		)
	}
	return m.border.Width(m.contentWidth()).Render(m.idleHint() + "\n\n" + m.input.View())
}

const idleHintMarkdown = "Drag an image onto this window, or press **tab** to browse."

// idleHint renders the fixed intro copy; the reading itself never goes
// through markdown.
func (m *model) idleHint() string {
	if m.glam != nil {
		if out, err := m.glam.Render(idleHintMarkdown); err == nil {
			return strings.Trim(out, "\n")
		}
	}
	return m.mutedStyle.Render("Drag an image onto this window, or press tab to browse.")
}

func (m *model) analyzingView() string {
	lines := []string{m.spin.View() + " Reading the vibe…"}
	if img := m.snap.Image; img != nil {
		lines = append(lines, m.mutedStyle.Render(describeImage(*img)))
	}
	lines = append(lines, "", pulseBar(m.contentWidth(), m.frame))
	return strings.Join(lines, "\n")
}

func (m *model) revealedView() string {
	if m.snap.Result == nil {
		return ""
	}
	card := renderCard(BindCard(*m.snap.Result), m.contentWidth())
	if img := m.snap.Image; img != nil {
		card = m.mutedStyle.Render(describeImage(*img)) + "\n\n" + card
	}
	return card
}

func (m *model) errorView() string {
	return m.errorStyle.Render("✗ "+m.snap.Message) + "\n\n" + m.mutedStyle.Render("Press r to try again.")
}

func (m *model) footer() string {
	parts := []string{m.help.View(m.keys)}
	snap := m.metrics.GetSnapshot()
	if calls := snap.APICalls; calls.Total > 0 {
		parts = append(parts, m.mutedStyle.Render(fmt.Sprintf(
			"readings %d · failed %d · avg %s",
			calls.Total, calls.Failed, calls.Average().Round(10*time.Millisecond),
		)))
	}
	return strings.Join(parts, "\n")
}

func describeImage(img session.ImageInfo) string {
	desc := img.Name
	if img.ContentType != "" {
		desc += " · " + img.ContentType
	}
	if img.Size > 0 {
		desc += " · " + humanize.IBytes(uint64(img.Size))
	}
	return desc
}

// Options wires the UI to the session.
type Options struct {
	Machine *session.Machine
	Metrics runtime.Metrics
	// Model is shown in the header.
	Model string
	// InitialImage is selected as soon as the program starts.
	InitialImage string
}

// Run launches the Bubble Tea TUI and blocks until the user quits.
// Returns a POSIX-style exit code.
func Run(ctx context.Context, opts Options) int {
	if opts.Machine == nil {
		fmt.Fprintln(os.Stderr, "tui: no session machine configured")
		return 1
	}

	// Prevent OSC background color queries from contaminating stdin by
	// explicitly setting color profile and background for lipgloss/termenv.
	lipgloss.SetColorProfile(termenv.TrueColor)
	lipgloss.SetHasDarkBackground(true)

	p := tea.NewProgram(newModel(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return 0
		}
		fmt.Fprintln(os.Stderr, "tui error:", err)
		return 1
	}
	return 0
}
