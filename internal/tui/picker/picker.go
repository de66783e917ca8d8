// Package picker is a full-screen list of the repositories the Forklift
// GitHub App can access. Choosing one hands its name to the job wizard.
package picker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/forklift-dev/forklift/internal/api"
	"github.com/forklift-dev/forklift/internal/logger"
	"github.com/forklift-dev/forklift/internal/tui/theme"
)

// Lister fetches the installed repositories of a user.
type Lister interface {
	InstalledRepos(ctx context.Context, username string) ([]api.InstalledRepo, error)
}

// ReposLoadedMsg is sent when the repository list has been fetched.
type ReposLoadedMsg struct {
	Repos []api.InstalledRepo
	Err   error
}

// Result is the outcome of a picker run.
type Result struct {
	Repo      api.InstalledRepo
	Cancelled bool
}

// Name is the repository name the wizard expects: the part of full_name
// after the owner.
func (r Result) Name() string {
	return RepoName(r.Repo)
}

// RepoName returns the part of the repository's full name after the slash,
// falling back to Name.
func RepoName(repo api.InstalledRepo) string {
	if _, name, ok := strings.Cut(repo.FullName, "/"); ok && name != "" {
		return name
	}
	return repo.Name
}

// Model lists installed repositories with a filter.
type Model struct {
	lister   Lister
	username string
	ctx      context.Context
	timeout  time.Duration

	repos    []api.InstalledRepo
	filtered []api.InstalledRepo
	cursor   int
	offset   int

	filter        textinput.Model
	filterFocused bool

	loading bool
	err     error
	spinner spinner.Model

	result Result
	width  int
	height int
}

// New creates a picker for username's installed repositories.
func New(ctx context.Context, lister Lister, username string, timeout time.Duration) *Model {
	t := theme.Current()
	filter := textinput.New()
	filter.Placeholder = "Filter repositories..."
	filter.Prompt = "/ "
	filter.SetWidth(40)

	return &Model{
		lister:   lister,
		username: username,
		ctx:      ctx,
		timeout:  timeout,
		filter:   filter,
		loading:  true,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(t.Primary))),
		),
		result: Result{Cancelled: true},
		width:  80,
		height: 24,
	}
}

// Run shows the picker and returns the chosen repository.
func Run(ctx context.Context, lister Lister, username string, timeout time.Duration) (*Result, error) {
	m := New(ctx, lister, username, timeout)
	finalModel, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if err != nil {
		return nil, fmt.Errorf("picker failed: %w", err)
	}
	pm, ok := finalModel.(*Model)
	if !ok {
		return nil, fmt.Errorf("unexpected model type")
	}
	if pm.err != nil && len(pm.repos) == 0 {
		return nil, pm.err
	}
	res := pm.result
	return &res, nil
}

// Result returns the current outcome.
func (m *Model) Result() Result { return m.result }

// Init starts fetching the repositories.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetch(), m.spinner.Tick)
}

func (m *Model) fetch() tea.Cmd {
	lister, username := m.lister, m.username
	ctx, timeout := m.ctx, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		repos, err := lister.InstalledRepos(ctx, username)
		return ReposLoadedMsg{Repos: repos, Err: err}
	}
}

// Update handles messages for the picker.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clamp()
		return m, nil

	case ReposLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			logger.Warn("Loading installed repositories failed: %v", msg.Err)
			m.err = fmt.Errorf("failed to load installed repositories: %w", msg.Err)
			return m, nil
		}
		m.err = nil
		m.repos = msg.Repos
		m.applyFilter()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyPressMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit
	case "esc":
		if m.filterFocused {
			m.filterFocused = false
			m.filter.Blur()
			return nil
		}
		return tea.Quit
	case "up":
		m.move(-1)
		return nil
	case "down":
		m.move(1)
		return nil
	case "enter":
		if m.filterFocused {
			m.filterFocused = false
			m.filter.Blur()
			return nil
		}
		if len(m.filtered) == 0 {
			return nil
		}
		m.result = Result{Repo: m.filtered[m.cursor]}
		logger.Info("Picked repository %s", m.result.Repo.FullName)
		return tea.Quit
	case "ctrl+r":
		m.loading = true
		m.err = nil
		return tea.Batch(m.fetch(), m.spinner.Tick)
	}

	if m.filterFocused {
		var cmd tea.Cmd
		before := m.filter.Value()
		m.filter, cmd = m.filter.Update(msg)
		if m.filter.Value() != before {
			m.applyFilter()
		}
		return cmd
	}

	switch msg.String() {
	case "k":
		m.move(-1)
	case "j":
		m.move(1)
	case "/":
		m.filterFocused = true
		return m.filter.Focus()
	case "q":
		return tea.Quit
	}
	return nil
}

func (m *Model) applyFilter() {
	term := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	m.filtered = m.filtered[:0]
	for _, r := range m.repos {
		if term == "" || strings.Contains(strings.ToLower(r.FullName), term) {
			m.filtered = append(m.filtered, r)
		}
	}
	m.cursor = 0
	m.offset = 0
	m.clamp()
}

func (m *Model) listHeight() int {
	// Title, filter, blank lines and hint bar.
	return max(3, m.height-10)
}

func (m *Model) move(delta int) {
	m.cursor += delta
	m.clamp()
}

func (m *Model) clamp() {
	n := len(m.filtered)
	h := m.listHeight()
	m.cursor = max(0, min(m.cursor, n-1))
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	m.offset = max(0, min(m.offset, n-h))
}

// View renders the picker.
func (m *Model) View() tea.View {
	var view tea.View
	view.AltScreen = true

	content := m.render()
	canvas := uv.NewScreenBuffer(m.width, m.height)
	uv.NewStyledString(content).Draw(canvas, uv.Rectangle{
		Min: uv.Position{X: 0, Y: 0},
		Max: uv.Position{X: m.width, Y: m.height},
	})
	view.Content = lipgloss.NewLayer(canvas.Render())
	return view
}

func (m *Model) render() string {
	s := theme.Current().S()
	var b strings.Builder

	b.WriteString(s.ModalTitle.Render("Installed Repositories") + "\n")
	b.WriteString(s.Subtitle.Render("Choose a repository to create a job for") + "\n\n")

	switch {
	case m.loading:
		b.WriteString(m.spinner.View() + " " + s.ItemMuted.Render("Loading repositories...") + "\n")
	case m.err != nil:
		b.WriteString(s.ErrorBanner.Render("✗ "+m.err.Error()) + "\n")
	default:
		if m.filterFocused || m.filter.Value() != "" {
			b.WriteString(m.filter.View() + "\n\n")
		}
		if len(m.filtered) == 0 {
			b.WriteString(s.ItemMuted.Italic(true).Render("No repositories found") + "\n")
		}
		end := min(len(m.filtered), m.offset+m.listHeight())
		for i := m.offset; i < end; i++ {
			b.WriteString(m.renderRepo(m.filtered[i], i == m.cursor) + "\n")
		}
	}

	b.WriteString("\n" + hintBar("↑↓/j/k", "navigate", "/", "filter", "enter", "create job", "esc", "quit"))

	width := max(50, min(90, m.width-10))
	modal := s.ModalContainer.Width(width).Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
}

func (m *Model) renderRepo(r api.InstalledRepo, cursor bool) string {
	s := theme.Current().S()
	badge := s.Public.Render("public")
	if r.Private {
		badge = s.Private.Render("private")
	}
	line := r.FullName + "  " + badge
	if cursor {
		return s.ItemSelected.Render("▸ ") + s.ItemSelected.Render(r.FullName) + "  " + badge
	}
	return "  " + s.Item.Render(line)
}

func hintBar(pairs ...string) string {
	s := theme.Current().S()
	parts := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, s.HintKey.Render(pairs[i])+" "+s.HintDesc.Render(pairs[i+1]))
	}
	return strings.Join(parts, " "+s.HintSeparator.Render("•")+" ")
}
