package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type screen int

const (
	screenHome screen = iota
	screenPipelines
	screenPreview
	screenApplyResult
	screenVarSets
	screenSettings
)

type menuItem struct {
	title string
	desc  string
}

func (m menuItem) Title() string       { return m.title }
func (m menuItem) Description() string { return m.desc }
func (m menuItem) FilterValue() string { return m.title }

type pipelineItem struct {
	name string
	path string
}

func (p pipelineItem) Title() string       { return p.name }
func (p pipelineItem) Description() string { return p.path }
func (p pipelineItem) FilterValue() string { return p.name }

type model struct {
	theme Theme
	deps  Deps

	scr       screen
	menu      list.Model
	pipelines list.Model

	workspaceFound bool
	workspaceRoot  string

	previewPath string
	preview     string

	running     bool
	applyCh     chan applyDoneMsg
	applyReport string

	varSetLines []string

	toast string
}

func Run(deps Deps) error {
	m := newModel(deps)
	p := tea.NewProgram(wrapSafe(m, deps.Logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func newModel(deps Deps) model {
	t := DefaultTheme()

	items := []list.Item{
		menuItem{"Pipelines", "Browse, preview, and apply pipelines"},
		menuItem{"Var Sets", "Variables used by pipeline templates"},
		menuItem{"Settings", "Workspace and defaults"},
		menuItem{"Quit", "Exit Kipu"},
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Kipu"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	pl := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	pl.Title = "Pipelines"
	pl.SetShowStatusBar(false)
	pl.SetFilteringEnabled(true)
	pl.SetShowHelp(false)

	m := model{
		theme:     t,
		deps:      deps,
		scr:       screenHome,
		menu:      l,
		pipelines: pl,
	}

	wd, err := os.Getwd()
	if err == nil && deps.WorkspaceLocator != nil {
		root, findErr := deps.WorkspaceLocator.FindRoot(wd)
		if findErr == nil {
			m.workspaceFound = true
			m.workspaceRoot = root
		}
	}

	return m
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w, h := msg.Width, msg.Height
		m.menu.SetSize(w-4, h-10)
		m.pipelines.SetSize(w-4, h-10)
		return m, nil

	case workspaceRefreshedMsg:
		m.workspaceFound = msg.found
		m.workspaceRoot = msg.root
		if msg.err != nil && !msg.found {
			m.toast = userMessage(msg.err)
		}
		return m, nil

	case initWorkspaceDoneMsg:
		if msg.err != nil {
			m.toast = userMessage(msg.err)
			return m, nil
		}
		m.toast = "Workspace initialized at " + msg.root
		return m, cmdRefreshWorkspace(m.deps)

	case pipelinesLoadedMsg:
		if msg.err != nil {
			m.toast = userMessage(msg.err)
			return m, nil
		}
		items := make([]list.Item, 0, len(msg.refs))
		for _, r := range msg.refs {
			items = append(items, pipelineItem{name: r.Name, path: r.Path})
		}
		m.pipelines.SetItems(items)
		m.scr = screenPipelines
		return m, nil

	case varSetsLoadedMsg:
		if msg.err != nil {
			m.toast = userMessage(msg.err)
			return m, nil
		}
		lines := make([]string, 0, len(msg.refs))
		for _, r := range msg.refs {
			lines = append(lines, fmt.Sprintf("- %s  (%s)", r.Name, r.Path))
		}
		m.varSetLines = lines
		m.scr = screenVarSets
		return m, nil

	case pipelinePreviewMsg:
		if msg.err != nil {
			m.toast = userMessage(msg.err)
			return m, nil
		}
		m.previewPath = msg.path
		m.preview = msg.preview
		m.scr = screenPreview
		return m, nil

	case applyDoneMsg:
		m.running = false
		m.applyCh = nil
		if msg.err != nil {
			m.toast = userMessage(msg.err)
			return m, nil
		}
		m.applyReport = renderApplyReport(msg.run, msg.id)
		m.scr = screenApplyResult
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}

	return m.updateLists(msg)
}

func (m model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "q":
		if m.scr == screenHome {
			return m, tea.Quit
		}
		m.scr = screenHome
		m.toast = ""
		return m, nil

	case "esc", "b":
		switch m.scr {
		case screenPreview, screenApplyResult:
			m.scr = screenPipelines
		case screenHome:
		default:
			m.scr = screenHome
		}
		m.toast = ""
		return m, nil

	case "enter":
		switch m.scr {
		case screenHome:
			it, ok := m.menu.SelectedItem().(menuItem)
			if !ok {
				return m, nil
			}
			switch {
			case strings.EqualFold(it.title, "Quit"):
				return m, tea.Quit
			case strings.EqualFold(it.title, "Pipelines"):
				if !m.workspaceFound {
					m.toast = "No workspace found"
					return m, nil
				}
				return m, cmdLoadPipelines(m.workspaceRoot)
			case strings.EqualFold(it.title, "Var Sets"):
				if !m.workspaceFound {
					m.toast = "No workspace found"
					return m, nil
				}
				return m, cmdLoadVarSets(m.workspaceRoot)
			case strings.EqualFold(it.title, "Settings"):
				m.scr = screenSettings
				return m, nil
			}
			return m, nil

		case screenPipelines:
			it, ok := m.pipelines.SelectedItem().(pipelineItem)
			if !ok {
				return m, nil
			}
			return m, cmdPreviewPipeline(it.path)
		}

	case "a":
		if m.scr == screenPreview && !m.running {
			m.running = true
			m.toast = ""
			ch, cmd := startApplyAsync(m.workspaceRoot, m.previewPath, "", m.deps.Logger, m.deps.Debug)
			m.applyCh = ch
			return m, cmd
		}

	case "i":
		if m.scr == screenSettings {
			root := m.workspaceRoot
			if root == "" {
				wd, err := os.Getwd()
				if err != nil {
					m.toast = "Unexpected error (see logs)"
					return m, nil
				}
				root = wd
			}
			return m, cmdInitWorkspaceHere(m.deps, root)
		}

	case "r":
		if m.scr == screenSettings {
			return m, cmdRefreshWorkspace(m.deps)
		}
	}

	return m.updateLists(msg)
}

func (m model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.scr {
	case screenHome:
		m.menu, cmd = m.menu.Update(msg)
	case screenPipelines:
		m.pipelines, cmd = m.pipelines.Update(msg)
	}
	return m, cmd
}

func (m model) View() string {
	wrap := lipgloss.NewStyle().Padding(1, 2)
	header := m.theme.Title.Render("Kipu") + "\n" +
		m.theme.Subtitle.Render("Non-mutating pipelines for JSON and YAML documents") + "\n"

	var workspaceBanner string
	if m.workspaceFound {
		workspaceBanner = m.theme.Help.Render(fmt.Sprintf("Workspace: %s", m.workspaceRoot))
	} else {
		workspaceBanner = m.theme.Card.Render(
			"⚠ No workspace found.\n\nCreate one in Settings with i.",
		)
	}

	var toast string
	if m.toast != "" {
		toast = "\n" + m.theme.Help.Render(m.toast)
	}

	switch m.scr {
	case screenHome:
		help := m.theme.Help.Render("↑/↓ navigate • enter open • / search • q quit")
		return wrap.Render(header + "\n" + workspaceBanner + toast + "\n\n" + m.theme.Card.Render(m.menu.View()) + "\n" + help)

	case screenPipelines:
		help := m.theme.Help.Render("↑/↓ navigate • enter preview • esc/b back • q home")
		return wrap.Render(header + "\n" + workspaceBanner + toast + "\n\n" + m.theme.Card.Render(m.pipelines.View()) + "\n" + help)

	case screenPreview:
		status := ""
		if m.running {
			status = "\n\nApplying…"
		}
		card := m.theme.Card.Render(m.preview + status)
		help := m.theme.Help.Render("a apply to a sample document • esc/b back • q home")
		return wrap.Render(header + "\n" + workspaceBanner + toast + "\n\n" + card + "\n" + help)

	case screenApplyResult:
		card := m.theme.Card.Render(m.applyReport)
		help := m.theme.Help.Render("esc/b back to pipelines • q home")
		return wrap.Render(header + "\n" + workspaceBanner + toast + "\n\n" + card + "\n" + help)

	case screenVarSets:
		body := "(no var sets found)"
		if len(m.varSetLines) > 0 {
			body = strings.Join(m.varSetLines, "\n")
		}
		card := m.theme.Card.Render(m.theme.Title.Render("Var Sets") + "\n\n" + body)
		help := m.theme.Help.Render("esc/b back • q home")
		return wrap.Render(header + "\n" + workspaceBanner + toast + "\n\n" + card + "\n" + help)

	case screenSettings:
		card := m.theme.Card.Render(
			m.theme.Title.Render("Settings") + "\n\n" +
				"i  init workspace here (overwrites samples)\n" +
				"r  re-detect workspace root",
		)
		help := m.theme.Help.Render("esc/b back • q home")
		return wrap.Render(header + "\n" + workspaceBanner + toast + "\n\n" + card + "\n" + help)

	default:
		return wrap.Render(header + "\n" + "unknown state")
	}
}
