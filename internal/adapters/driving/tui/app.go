package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-docsearch/internal/core/domain"
)

// Mode says where key presses go.
type Mode int

const (
	// ModeInput sends keys to the query input.
	ModeInput Mode = iota
	// ModeResults navigates the result list.
	ModeResults
)

// Lines used by everything except the result list.
const chromeHeight = 12

// App is the TUI model following the Elm architecture.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *Styles
	keys   *KeyMap

	input textinput.Model
	help  help.Model

	mode      Mode
	searching bool
	term      string
	hits      []domain.SearchHit
	selected  int
	err       error

	run    *domain.RunReport
	runErr error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates the TUI with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	ti := textinput.New()
	ti.Placeholder = "text the document must contain (empty lists everything)"
	ti.CharLimit = 512
	ti.Width = 60
	ti.Focus()

	return &App{
		ports:  ports,
		ctx:    context.Background(),
		styles: DefaultStyles(),
		keys:   DefaultKeyMap(),
		input:  ti,
		help:   help.New(),
		mode:   ModeInput,
		width:  80,
		height: 24,
	}, nil
}

// WithContext sets the context used for service calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Run starts the program on the alternate screen and blocks until the
// user quits or ctx is cancelled.
func Run(ctx context.Context, ports *Ports) error {
	app, err := NewApp(ports)
	if err != nil {
		return err
	}
	app.WithContext(ctx)

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tea.SetWindowTitle("docsearch"),
		a.loadRun(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case searchCompleted:
		if msg.term != a.term {
			// A newer query is in flight.
			return a, nil
		}
		a.searching = false
		a.err = msg.err
		a.hits = msg.hits
		a.selected = 0
		if msg.err == nil {
			a.setMode(ModeResults)
		}
		return a, nil

	case runLoaded:
		a.run, a.runErr = msg.report, msg.err
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.mode == ModeInput {
			return a.updateInput(msg)
		}
		return a.updateResults(msg)
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Search):
		return a, a.submit(a.input.Value())
	case key.Matches(msg, a.keys.Back):
		if len(a.hits) > 0 {
			a.setMode(ModeResults)
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) updateResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.Up):
		if a.selected > 0 {
			a.selected--
		}
	case key.Matches(msg, a.keys.Down):
		if a.selected < len(a.hits)-1 {
			a.selected++
		}
	case key.Matches(msg, a.keys.NewSearch):
		a.input.SetValue("")
		a.setMode(ModeInput)
		return a, textinput.Blink
	case key.Matches(msg, a.keys.Back):
		a.setMode(ModeInput)
		return a, textinput.Blink
	case key.Matches(msg, a.keys.Refresh):
		return a, tea.Batch(a.submit(a.term), a.loadRun())
	case key.Matches(msg, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
	}
	return a, nil
}

func (a *App) setMode(m Mode) {
	a.mode = m
	if m == ModeInput {
		a.input.Focus()
	} else {
		a.input.Blur()
	}
}

// submit starts a search for term. Surrounding whitespace is kept
// because it is part of the substring.
func (a *App) submit(term string) tea.Cmd {
	a.term = term
	a.searching = true
	a.err = nil

	search, ctx := a.ports.Search, a.ctx
	return func() tea.Msg {
		hits, err := search.Search(ctx, term)
		return searchCompleted{term: term, hits: hits, err: err}
	}
}

func (a *App) loadRun() tea.Cmd {
	runs, ctx := a.ports.Runs, a.ctx
	if runs == nil {
		return nil
	}
	return func() tea.Msg {
		report, err := runs.Latest(ctx)
		if errors.Is(err, domain.ErrNotFound) {
			return runLoaded{}
		}
		return runLoaded{report: report, err: err}
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	sections := []string{
		a.styles.Title.Render("docsearch"),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			a.styles.Subtitle.Render("Search: "),
			a.styles.Input.Render(a.input.View())),
		"",
		a.statusLine(),
		"",
	}

	if list := a.resultsView(); list != "" {
		sections = append(sections, list, "")
	}
	if hit := a.SelectedHit(); hit != nil && a.mode == ModeResults {
		sections = append(sections, a.styles.URL.Render(hit.URL), "")
	}

	sections = append(sections, a.runLine(), a.help.View(a.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (a *App) statusLine() string {
	switch {
	case a.searching:
		return a.styles.Muted.Render("Searching...")
	case a.err != nil:
		if errors.Is(a.err, domain.ErrConnection) {
			return a.styles.Error.Render("Search engine unavailable: " + a.err.Error())
		}
		return a.styles.Error.Render("Error: " + a.err.Error())
	case a.mode == ModeResults && len(a.hits) == 0:
		return a.styles.Warning.Render("No files found containing the search term.")
	case a.mode == ModeResults:
		return a.styles.Success.Render(fmt.Sprintf("%d results for %q", len(a.hits), a.term))
	}
	return a.styles.Muted.Render("Type a term and press enter")
}

func (a *App) resultsView() string {
	if len(a.hits) == 0 {
		return ""
	}

	visible := a.height - chromeHeight
	if visible < 1 {
		visible = 1
	}
	start := 0
	if a.selected >= visible {
		start = a.selected - visible + 1
	}
	end := min(start+visible, len(a.hits))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		name := truncate(a.hits[i].Filename, a.width-4)
		if i == a.selected && a.mode == ModeResults {
			lines = append(lines, a.styles.Selected.Render("> "+name))
		} else {
			lines = append(lines, a.styles.Normal.Render("  "+name))
		}
	}
	return strings.Join(lines, "\n")
}

func (a *App) runLine() string {
	switch {
	case a.runErr != nil:
		return a.styles.Error.Render("Run history unavailable: " + a.runErr.Error())
	case a.run == nil:
		if a.ports.Runs == nil {
			return ""
		}
		return a.styles.Muted.Render("No ingestion run recorded")
	}
	r := a.run
	line := fmt.Sprintf("Last ingest %s: %d indexed, %d skipped, %d failed",
		r.StartedAt.Local().Format(time.DateTime), r.Indexed, r.Skipped, r.Failed)
	if r.Cancelled {
		line += " (cancelled)"
	}
	return a.styles.Muted.Render(line)
}

func truncate(s string, width int) string {
	if width < 10 {
		width = 10
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

// SetDimensions sets the terminal size.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.input.Width = max(width-14, 20)
	a.help.Width = width
}

// Mode returns where key presses currently go.
func (a *App) Mode() Mode {
	return a.mode
}

// Term returns the last submitted search term.
func (a *App) Term() string {
	return a.term
}

// Hits returns the current results.
func (a *App) Hits() []domain.SearchHit {
	return a.hits
}

// Selected returns the index of the highlighted result.
func (a *App) Selected() int {
	return a.selected
}

// SelectedHit returns the highlighted result, or nil.
func (a *App) SelectedHit() *domain.SearchHit {
	if a.selected < 0 || a.selected >= len(a.hits) {
		return nil
	}
	return &a.hits[a.selected]
}

// Err returns the last search error.
func (a *App) Err() error {
	return a.err
}
