// Package tui provides the Bubble Tea practice interface.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/typelit/typelit/internal/model"
	"github.com/typelit/typelit/internal/selector"
	"github.com/typelit/typelit/internal/session"
	"github.com/typelit/typelit/internal/source"
	"github.com/typelit/typelit/internal/store"
)

type screen int

const (
	screenPicker screen = iota
	screenTyping
	screenSummary
)

const fallbackPassageCount = 10

var (
	typedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	missStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	upcomingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	activeWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	titleStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	footerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	summaryStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
)

// Model implements the Bubble Tea practice UI.
type Model struct {
	store     *store.Store
	remote    *source.RemoteSource
	generator *source.Generator
	engine    *session.Engine

	screen     screen
	difficulty model.Difficulty
	sel        *selector.Selector
	passage    *model.Passage
	input      []rune

	picker table.Model
	notice string

	live  session.Metrics
	final session.Metrics

	width  int
	height int
}

// engineMsg carries one engine event into the Bubble Tea loop.
type engineMsg struct {
	ev session.Event
}

// memoryRepo serves passages obtained outside the store, so remote
// and generated passages go through the same selector.
type memoryRepo struct {
	passages []model.Passage
}

func (r memoryRepo) Passages(ctx context.Context, difficulty model.Difficulty) ([]model.Passage, error) {
	return r.passages, nil
}

// NewModel constructs the practice UI. When difficulty is empty the
// UI opens on the tier picker; remote may be nil.
func NewModel(st *store.Store, remote *source.RemoteSource, difficulty model.Difficulty) *Model {
	m := &Model{
		store:     st,
		remote:    remote,
		generator: source.NewGenerator(),
		engine:    session.New(),
		screen:    screenPicker,
	}
	m.initPicker()
	if difficulty != "" {
		m.startTier(difficulty)
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return waitForEvent(m.engine.Events())
}

func waitForEvent(events <-chan session.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return engineMsg{ev: ev}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case engineMsg:
		m.handleEngineEvent(msg.ev)
		return m, waitForEvent(m.engine.Events())
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.screen {
		case screenPicker:
			return m.updatePicker(msg)
		case screenTyping:
			return m.updateTyping(msg)
		case screenSummary:
			return m.updateSummary(msg)
		}
	}
	return m, nil
}

func (m *Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "enter":
		row := m.picker.SelectedRow()
		if len(row) > 0 {
			m.startTier(model.Difficulty(row[0]))
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m *Model) updateTyping(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.toPicker()
		return m, nil
	case tea.KeyBackspace, tea.KeyDelete:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
			m.live = m.engine.ProcessInput(string(m.input))
		}
		return m, nil
	case tea.KeySpace:
		m.appendRunes([]rune{' '})
		return m, nil
	case tea.KeyRunes:
		m.appendRunes(msg.Runes)
		return m, nil
	}
	return m, nil
}

func (m *Model) updateSummary(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc":
		m.toPicker()
		return m, nil
	case "r":
		if m.passage != nil {
			m.startPassage(m.sel.ByID(m.passage.ID))
		}
		return m, nil
	case "enter":
		m.startPassage(m.sel.Random())
		return m, nil
	}
	return m, nil
}

func (m *Model) appendRunes(runes []rune) {
	target := []rune(m.engine.TargetText())
	for _, r := range runes {
		if len(m.input) >= len(target) {
			return
		}
		m.input = append(m.input, r)
		metrics := m.engine.ProcessInput(string(m.input))
		if m.engine.Phase() != session.PhaseCompleted {
			m.live = metrics
		}
	}
}

func (m *Model) handleEngineEvent(ev session.Event) {
	switch ev.Kind {
	case session.EventTick:
		if m.screen == screenTyping {
			m.live = ev.Metrics
		}
	case session.EventCompleted:
		m.final = ev.Metrics
		m.saveResult(ev.Metrics)
		m.screen = screenSummary
	}
}

func (m *Model) saveResult(final session.Metrics) {
	if m.passage == nil {
		return
	}
	res := model.SessionResult{
		PassageID:  m.passage.ID,
		Difficulty: m.difficulty,
		StartedAt:  m.engine.StartedAt(),
		EndedAt:    m.engine.EndedAt(),
		DurationMs: final.ElapsedMs,
		Chars:      len([]rune(m.passage.Text)),
		Errors:     final.Errors,
		GrossWPM:   final.GrossWPM,
		NetWPM:     final.NetWPM,
		Accuracy:   final.Accuracy,
	}
	if _, err := m.store.InsertResult(context.Background(), res); err != nil {
		logErrf("failed to save session: %v\n", err)
	}
}

func (m *Model) initPicker() {
	columns := []table.Column{
		{Title: "Tier", Width: 14},
		{Title: "Passages", Width: 10},
	}
	counts, err := m.store.PassageCounts(context.Background())
	if err != nil {
		logErrf("failed to load passage counts: %v\n", err)
	}
	rows := make([]table.Row, 0, len(model.Difficulties))
	for _, d := range model.Difficulties {
		rows = append(rows, table.Row{string(d), fmt.Sprintf("%d", counts[d])})
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(len(rows)+1),
		table.WithFocused(true),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#C89A3A")).
		Bold(true)
	t.SetStyles(styles)
	m.picker = t
}

func (m *Model) toPicker() {
	m.engine.Reset()
	m.input = nil
	m.passage = nil
	m.notice = ""
	m.initPicker()
	m.screen = screenPicker
}

// startTier loads a tier and serves its first passage, falling back
// from the store to the remote source and finally to the generator.
func (m *Model) startTier(difficulty model.Difficulty) {
	ctx := context.Background()
	m.difficulty = difficulty
	m.notice = ""

	sel := selector.New(m.store, difficulty)
	if err := sel.Refresh(ctx); err != nil {
		logErrf("failed to load passages: %v\n", err)
	}
	if sel.Size() == 0 {
		sel = m.fallbackSelector(ctx, difficulty)
	}
	m.sel = sel
	m.startPassage(sel.Random())
}

func (m *Model) fallbackSelector(ctx context.Context, difficulty model.Difficulty) *selector.Selector {
	if m.remote != nil {
		passages, err := m.remote.FetchPassages(ctx, difficulty, fallbackPassageCount)
		if err == nil && len(passages) > 0 {
			m.notice = "served from remote source"
			sel := selector.New(memoryRepo{passages: passages}, difficulty)
			if err := sel.Refresh(ctx); err == nil {
				return sel
			}
		}
		if err != nil {
			logErrf("remote source unavailable: %v\n", err)
		}
	}
	m.notice = "no stored passages; using generated text"
	passages := m.generator.Generate(difficulty, fallbackPassageCount, 100, 300)
	sel := selector.New(memoryRepo{passages: passages}, difficulty)
	if err := sel.Refresh(ctx); err != nil {
		logErrf("failed to load generated passages: %v\n", err)
	}
	return sel
}

func (m *Model) startPassage(p *model.Passage) {
	if p == nil {
		m.notice = "no passages available for this tier"
		m.screen = screenPicker
		return
	}
	m.passage = p
	m.input = nil
	m.live = session.Metrics{}
	m.final = session.Metrics{}
	m.engine.SetTargetText(p.Text)
	m.screen = screenTyping
}

// View implements tea.Model.
func (m *Model) View() string {
	switch m.screen {
	case screenPicker:
		return m.viewPicker()
	case screenTyping:
		return m.viewTyping()
	case screenSummary:
		return m.viewSummary()
	}
	return ""
}

func (m *Model) viewPicker() string {
	lines := []string{
		titleStyle.Render("typelit"),
		"",
		m.picker.View(),
		"",
		footerStyle.Render("enter start · q quit"),
	}
	if m.notice != "" {
		lines = append(lines, footerStyle.Render(m.notice))
	}
	content := strings.Join(lines, "\n")
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) viewTyping() string {
	target := []rune(m.engine.TargetText())
	if len(target) == 0 {
		return ""
	}
	cursor := -1
	if len(m.input) < len(target) {
		cursor = len(m.input)
	}
	cells := buildCells(target, m.input, cursor)
	if m.width == 0 || m.height == 0 {
		return renderCells(cells)
	}
	contentWidth := int(float64(m.width) * 0.70)
	if contentWidth < 1 {
		contentWidth = 1
	}
	wrapped := wrapCells(cells, contentWidth)
	content := lipgloss.NewStyle().Width(contentWidth).Render(wrapped)
	footer := m.renderFooter()
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderFooter() string {
	target := []rune(m.engine.TargetText())
	progress := 0
	if len(target) > 0 {
		progress = int(float64(len(m.input)) / float64(len(target)) * 100)
	}
	segments := []string{
		fmt.Sprintf("Progress %d%%", progress),
		fmt.Sprintf("%.0f WPM", m.live.NetWPM),
		fmt.Sprintf("%.0f%% acc", m.live.Accuracy),
	}
	if m.passage != nil {
		segments = append(segments, string(m.passage.Difficulty))
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) viewSummary() string {
	lines := []string{
		titleStyle.Render("Session complete"),
		"",
		summaryStyle.Render(fmt.Sprintf("Net WPM:   %.1f", m.final.NetWPM)),
		summaryStyle.Render(fmt.Sprintf("Gross WPM: %.1f", m.final.GrossWPM)),
		summaryStyle.Render(fmt.Sprintf("Accuracy:  %.1f%%", m.final.Accuracy)),
		summaryStyle.Render(fmt.Sprintf("Errors:    %d", m.final.Errors)),
		summaryStyle.Render(fmt.Sprintf("Time:      %.1fs", float64(m.final.ElapsedMs)/1000)),
		"",
		footerStyle.Render("enter next · r retry · esc tiers · q quit"),
	}
	content := strings.Join(lines, "\n")
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
