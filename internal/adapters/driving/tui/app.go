package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zhouliangjun/rag-project03-audit/internal/adapters/driving/tui/keymap"
	"github.com/zhouliangjun/rag-project03-audit/internal/adapters/driving/tui/messages"
	"github.com/zhouliangjun/rag-project03-audit/internal/adapters/driving/tui/styles"
	"github.com/zhouliangjun/rag-project03-audit/internal/core/domain"
	"github.com/zhouliangjun/rag-project03-audit/internal/core/ports/driven"
)

// App is the control panel application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
//
// The panel shows one tab per pipeline stage. Each tab displays the
// stage's invocation slot, its artifact namespace (when the stage
// produces artifacts) and the last payload. Stage invocations run as
// tea commands so the UI stays responsive while a request is in flight.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keys   *keymap.KeyMap

	// spinner animates in-flight stages.
	spinner spinner.Model

	// queryInput feeds the search stage.
	queryInput textinput.Model

	// tab indexes domain.Stages().
	tab int

	// docs caches the listed artifacts per namespace for display.
	docs map[domain.ArtifactKind][]domain.Document

	// cursor is the highlighted row in the artifact list.
	cursor int

	// results holds the last search hits.
	results []domain.SearchResult

	// answer holds the last generation response.
	answer string

	// history holds the archived runs shown on the evaluate tab.
	history []driven.HistoryEntry

	// status is the one-line message at the bottom of the panel.
	status string

	err      error
	showHelp bool
	width    int
	height   int
	ready    bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new control panel with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Warning

	ti := textinput.New()
	ti.Placeholder = "search query"
	ti.CharLimit = 512

	return &App{
		ports:      ports,
		ctx:        context.Background(),
		styles:     s,
		keys:       keymap.DefaultKeyMap(),
		spinner:    sp,
		queryInput: ti,
		docs:       make(map[domain.ArtifactKind][]domain.Document),
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	if ctx != nil {
		a.ctx = ctx
	}
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("ragaudit - pipeline control panel"),
		a.spinner.Tick,
		a.refreshCmd(domain.KindLoaded),
	)
}

// Stage returns the currently focused pipeline stage.
func (a *App) Stage() domain.Stage {
	return domain.Stages()[a.tab]
}

// stageKind maps a stage to the artifact namespace it produces. The
// search, generate and evaluate stages produce no artifacts.
func stageKind(stage domain.Stage) (domain.ArtifactKind, bool) {
	switch stage {
	case domain.StageLoad:
		return domain.KindLoaded, true
	case domain.StageChunk:
		return domain.KindChunked, true
	case domain.StageEmbed:
		return domain.KindEmbedded, true
	case domain.StageIndex:
		return domain.KindIndexed, true
	}
	return "", false
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.queryInput.Width = msg.Width - 8
		return a, nil

	case tea.KeyMsg:
		return a.updateKeys(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case messages.ArtifactsRefreshed:
		if msg.Err != nil {
			a.err = msg.Err
			return a, nil
		}
		a.docs[msg.Kind] = msg.Documents
		if a.cursor >= len(msg.Documents) {
			a.cursor = 0
		}
		return a, nil

	case messages.HistoryLoaded:
		if msg.Err != nil {
			a.err = msg.Err
			return a, nil
		}
		a.history = msg.Entries
		return a, nil

	case messages.SearchCompleted:
		a.err = msg.Err
		a.results = msg.Results
		if msg.Err == nil {
			a.status = fmt.Sprintf("%d hits; generation armed", len(msg.Results))
		}
		return a, nil

	case messages.StageCompleted:
		a.err = msg.Err
		if msg.Err != nil {
			a.status = fmt.Sprintf("%s failed", msg.Stage)
			return a, nil
		}
		a.status = fmt.Sprintf("%s succeeded", msg.Stage)
		if result, ok := msg.Payload.(*domain.GenerateResult); ok {
			a.answer = result.Response
		}
		if kind, ok := stageKind(msg.Stage); ok {
			return a, a.refreshCmd(kind)
		}
		return a, nil
	}

	if a.queryInput.Focused() {
		var cmd tea.Cmd
		a.queryInput, cmd = a.queryInput.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The query input swallows printable keys while focused.
	if a.queryInput.Focused() {
		switch {
		case key.Matches(msg, a.keys.Focus):
			a.queryInput.Blur()
			return a, nil
		case key.Matches(msg, a.keys.Run):
			a.queryInput.Blur()
			return a, a.runStageCmd()
		case msg.String() == "ctrl+c":
			return a, tea.Quit
		}
		var cmd tea.Cmd
		a.queryInput, cmd = a.queryInput.Update(msg)
		return a, cmd
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.showHelp = !a.showHelp
		return a, nil

	case key.Matches(msg, a.keys.NextTab):
		a.tab = (a.tab + 1) % len(domain.Stages())
		a.cursor = 0
		return a, a.enterTabCmd()

	case key.Matches(msg, a.keys.PrevTab):
		a.tab = (a.tab + len(domain.Stages()) - 1) % len(domain.Stages())
		a.cursor = 0
		return a, a.enterTabCmd()

	case key.Matches(msg, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil

	case key.Matches(msg, a.keys.Down):
		if kind, ok := stageKind(a.Stage()); ok && a.cursor < len(a.docs[kind])-1 {
			a.cursor++
		}
		return a, nil

	case key.Matches(msg, a.keys.Select):
		return a, a.selectCursor()

	case key.Matches(msg, a.keys.Refresh):
		return a, a.enterTabCmd()

	case key.Matches(msg, a.keys.Focus):
		if a.Stage() == domain.StageSearch {
			return a, a.queryInput.Focus()
		}
		return a, nil

	case key.Matches(msg, a.keys.Run):
		return a, a.runStageCmd()
	}
	return a, nil
}

// enterTabCmd refreshes the data backing the newly focused tab: the
// artifact namespace for producing stages, the run archive for evaluate.
func (a *App) enterTabCmd() tea.Cmd {
	if kind, ok := stageKind(a.Stage()); ok {
		return a.refreshCmd(kind)
	}
	if a.Stage() == domain.StageEvaluate {
		return a.loadHistoryCmd()
	}
	return nil
}

func (a *App) loadHistoryCmd() tea.Cmd {
	if a.ports.History == nil {
		return nil
	}
	return func() tea.Msg {
		entries, err := a.ports.History.List(a.ctx)
		return messages.HistoryLoaded{Entries: entries, Err: err}
	}
}

func (a *App) refreshCmd(kind domain.ArtifactKind) tea.Cmd {
	return func() tea.Msg {
		docs, err := a.ports.Registry.List(a.ctx, kind)
		return messages.ArtifactsRefreshed{Kind: kind, Documents: docs, Err: err}
	}
}

func (a *App) selectCursor() tea.Cmd {
	kind, ok := stageKind(a.Stage())
	if !ok {
		return nil
	}
	docs := a.docs[kind]
	if a.cursor >= len(docs) {
		return nil
	}
	name := docs[a.cursor].Name
	if err := a.ports.Registry.Select(kind, name); err != nil {
		a.err = err
		return nil
	}
	a.status = fmt.Sprintf("selected %s artifact: %s", kind, name)
	return nil
}

// selectedCollection resolves the collection backing the selected
// indexed artifact. Indexed documents are keyed by embedding file name;
// the vector store only knows the collection the index run created.
func (a *App) selectedCollection() string {
	name := a.ports.Registry.Selected(domain.KindIndexed)
	if name == "" {
		return ""
	}
	for _, doc := range a.ports.Registry.Documents(domain.KindIndexed) {
		if doc.Name == name && doc.CollectionName != "" {
			return doc.CollectionName
		}
	}
	return name
}

// runStageCmd triggers the focused stage with the current selections
// and catalog defaults. Load and evaluate need inputs the panel cannot
// collect (a file path), so they point at their CLI commands instead.
func (a *App) runStageCmd() tea.Cmd {
	stage := a.Stage()
	switch stage {
	case domain.StageChunk:
		doc := a.ports.Registry.Selected(domain.KindLoaded)
		return func() tea.Msg {
			result, err := a.ports.Pipeline.Chunk(a.ctx, driven.ChunkRequest{
				DocID:          doc,
				ChunkingOption: domain.ChunkByPages,
			})
			return messages.StageCompleted{Stage: stage, Payload: result, Err: err}
		}

	case domain.StageEmbed:
		doc := a.ports.Registry.Selected(domain.KindChunked)
		return func() tea.Msg {
			result, err := a.ports.Pipeline.Embed(a.ctx, driven.EmbedRequest{
				DocumentID: doc,
				Provider:   "openai",
				Model:      domain.DefaultEmbeddingModel("openai"),
			})
			return messages.StageCompleted{Stage: stage, Payload: result, Err: err}
		}

	case domain.StageIndex:
		file := a.ports.Registry.Selected(domain.KindEmbedded)
		return func() tea.Msg {
			result, err := a.ports.Pipeline.Index(a.ctx, driven.IndexRequest{
				FileID:    file,
				VectorDB:  "milvus",
				IndexMode: domain.DefaultIndexMode("milvus"),
			})
			return messages.StageCompleted{Stage: stage, Payload: result, Err: err}
		}

	case domain.StageSearch:
		query := a.queryInput.Value()
		collection := a.selectedCollection()
		return func() tea.Msg {
			results, err := a.ports.Pipeline.Search(a.ctx, driven.SearchRequest{
				Query:              query,
				CollectionID:       collection,
				TopK:               5,
				Threshold:          0.7,
				WordCountThreshold: 30,
			})
			return messages.SearchCompleted{Results: results, Err: err}
		}

	case domain.StageGenerate:
		input := a.ports.Pipeline.Handoff()
		if input == nil {
			a.status = "run a search first"
			return nil
		}
		return func() tea.Msg {
			result, err := a.ports.Pipeline.Generate(a.ctx, driven.GenerateRequest{
				Query:         input.Query,
				Provider:      "openai",
				ModelName:     "gpt-4o-mini",
				SearchResults: input.Results,
			})
			return messages.StageCompleted{Stage: stage, Payload: result, Err: err}
		}

	default:
		a.status = fmt.Sprintf("run %q from the command line", stage)
		return nil
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(a.styles.Title.Render("ragaudit"))
	b.WriteString("\n\n")
	b.WriteString(a.renderTabs())
	b.WriteString("\n\n")
	b.WriteString(a.renderStagePane())
	b.WriteString("\n")
	b.WriteString(a.renderStatusBar())

	if a.showHelp {
		b.WriteString("\n")
		b.WriteString(a.styles.Help.Render(
			"←/→ stage · enter run · r refresh · s select · tab focus query · ? help · q quit"))
	}
	return b.String()
}

func (a *App) renderTabs() string {
	states := a.ports.Pipeline.States()
	tabs := make([]string, 0, len(states))
	for i, state := range states {
		label := string(state.Stage)
		if state.Status == domain.StatusInFlight {
			label = a.spinner.View() + label
		} else {
			label = a.styles.StageStatus(state.Status).Render("●") + " " + label
		}
		if i == a.tab {
			tabs = append(tabs, a.styles.ActiveTab.Render(label))
		} else {
			tabs = append(tabs, a.styles.Tab.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (a *App) renderStagePane() string {
	var b strings.Builder

	state := a.ports.Pipeline.State(a.Stage())
	if state.Err != "" {
		b.WriteString(a.styles.Error.Render("last error: " + state.Err))
		b.WriteString("\n\n")
	}

	switch a.Stage() {
	case domain.StageSearch:
		b.WriteString(a.styles.InputField.Render(a.queryInput.View()))
		b.WriteString("\n\n")
		b.WriteString(a.renderResults())
	case domain.StageGenerate:
		if a.answer != "" {
			b.WriteString(a.styles.Normal.Render(a.answer))
		} else {
			b.WriteString(a.styles.Muted.Render("No answer yet. Search, then press enter here."))
		}
	case domain.StageEvaluate:
		b.WriteString(a.renderHistory())
	default:
		b.WriteString(a.renderArtifacts())
	}
	return b.String()
}

func (a *App) renderArtifacts() string {
	kind, ok := stageKind(a.Stage())
	if !ok {
		return ""
	}
	docs := a.docs[kind]
	if len(docs) == 0 {
		return a.styles.Muted.Render(fmt.Sprintf("No %s artifacts.", kind))
	}

	selected := a.ports.Registry.Selected(kind)
	var b strings.Builder
	for i, doc := range docs {
		line := doc.Name
		if doc.Name == selected {
			line = "* " + line
		} else {
			line = "  " + line
		}
		if i == a.cursor {
			b.WriteString(a.styles.Selected.Render(line))
		} else {
			b.WriteString(a.styles.Normal.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderHistory lists archived evaluation runs. New runs come from the
// evaluate CLI command; the panel only reads the archive.
func (a *App) renderHistory() string {
	if len(a.history) == 0 {
		return a.styles.Muted.Render("No archived runs; score one with \"ragaudit evaluate\".")
	}
	var b strings.Builder
	for _, e := range a.history {
		b.WriteString(a.styles.Normal.Render(fmt.Sprintf(
			"%s  %s  %d queries  hit %.3f  find %.3f",
			e.CreatedAt.Format("2006-01-02 15:04"), e.CollectionID,
			e.TotalQueries, e.AvgScoreHit, e.AvgScoreFind)))
		b.WriteString("\n")
	}
	return b.String()
}

// truncateRunes shortens s to at most n runes; snippet text from the
// server is UTF-8 and byte indexing could split a character.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

func (a *App) renderResults() string {
	if len(a.results) == 0 {
		return a.styles.Muted.Render("No results.")
	}
	var b strings.Builder
	for i, r := range a.results {
		b.WriteString(a.styles.Normal.Render(
			fmt.Sprintf("[%d] %s p.%d (%.3f)", i+1, r.Metadata.Source, r.Metadata.Page, r.Score)))
		b.WriteString("\n")
		b.WriteString(a.styles.Muted.Render("    " + truncateRunes(r.Text, 120)))
		b.WriteString("\n")
	}
	return b.String()
}

func (a *App) renderStatusBar() string {
	if a.err != nil {
		return a.styles.Error.Render(a.err.Error())
	}
	if a.status == "" {
		return a.styles.StatusBar.Render("ready")
	}
	return a.styles.StatusBar.Render(a.status)
}
