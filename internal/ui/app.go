package ui

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/oklog/ulid/v2"

	"github.com/five82/trailhead/internal/campapi"
	"github.com/five82/trailhead/internal/comments"
	"github.com/five82/trailhead/internal/core"
	"github.com/five82/trailhead/internal/favorites"
	"github.com/five82/trailhead/internal/logtail"
	"github.com/five82/trailhead/internal/prefs"
	"github.com/five82/trailhead/internal/views"
)

// View is a top-level screen.
type View int

const (
	ViewHome View = iota
	ViewDirectory
	ViewFavorites
	ViewLogs
	ViewDetail
)

var tabOrder = []View{ViewHome, ViewDirectory, ViewFavorites, ViewLogs}

func (v View) String() string {
	switch v {
	case ViewDirectory:
		return "Directory"
	case ViewFavorites:
		return "Favorites"
	case ViewLogs:
		return "Logs"
	case ViewDetail:
		return "Campsite"
	default:
		return "Home"
	}
}

func viewFromName(name string) View {
	switch name {
	case "directory":
		return ViewDirectory
	case "favorites":
		return ViewFavorites
	default:
		return ViewHome
	}
}

const (
	defaultTick  = 500 * time.Millisecond
	logTailLines = 500
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Core      *core.Core
	ThemeName string
	StartView string // prefs.StartViews value
	PrefsPath string
	LogPath   string
	Tick      time.Duration
}

// Model is the root Bubble Tea model.
type Model struct {
	ctx       context.Context
	core      *core.Core
	prefsPath string
	logPath   string
	tick      time.Duration
	keys      keyMap

	theme  Theme
	view   View
	back   View // where esc leads from the detail view
	width  int
	height int
	ready  bool

	snap core.Snapshot

	dirCursor int
	favCursor int
	detailID  int

	detailViewport viewport.Model
	logViewport    viewport.Model
	logLines       []logtail.Line
	logMin         logtail.Severity
	logErr         string

	showHelp bool
	form     *form

	// Request tokens of comments still posting, oldest first.
	posting []ulid.ULID

	flash    string
	flashErr bool
}

// New creates the root model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	tick := opts.Tick
	if tick <= 0 {
		tick = defaultTick
	}
	m := Model{
		ctx:       ctx,
		core:      opts.Core,
		prefsPath: opts.PrefsPath,
		logPath:   opts.LogPath,
		tick:      tick,
		keys:      DefaultKeyMap(),
		theme:     GetTheme(opts.ThemeName),
		view:      viewFromName(opts.StartView),
	}
	if m.core != nil {
		m.snap = m.core.Snapshot()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(m.tick), snapshotCmd(m.core))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.form != nil {
			return m.handleFormKey(msg)
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.detailViewport = viewport.New(0, 0)
			m.logViewport = viewport.New(0, 0)
		}
		m.ready = true
		m.resizeViewports()
		m.updateDetailViewport()
		m.updateLogViewport()
		return m, nil

	case tickMsg:
		cmds := []tea.Cmd{snapshotCmd(m.core), tickCmd(m.tick)}
		if m.view == ViewLogs {
			cmds = append(cmds, readLogsCmd(m.logPath, m.logMin))
		}
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		m.snap = core.Snapshot(msg)
		m.clampCursors()
		m.updateDetailViewport()
		return m, nil

	case logsMsg:
		m.logLines = msg.lines
		m.logErr = ""
		if msg.err != nil {
			m.logErr = msg.err.Error()
		}
		m.updateLogViewport()
		return m, nil

	case commentMsg:
		m.posting = slices.DeleteFunc(m.posting, func(t ulid.ULID) bool { return t == msg.token })
		switch {
		case msg.err == nil:
			m.setFlash("Comment posted", false)
		case errors.Is(msg.err, comments.ErrCanceled), errors.Is(msg.err, context.Canceled):
			m.setFlash("Comment discarded", false)
		default:
			m.setFlash("Comment failed: "+msg.err.Error(), true)
		}
		m.refreshSnapshot()
		return m, nil

	case prefsMsg:
		if msg.err != nil {
			m.setFlash("Saving theme failed: "+msg.err.Error(), true)
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	k := m.keys
	switch {
	case matches(msg, k.Quit):
		return m, tea.Quit
	case matches(msg, k.Help):
		m.showHelp = true
		return m, nil
	case matches(msg, k.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		return m, saveThemeCmd(m.prefsPath, m.theme.Name)
	case matches(msg, k.Tab):
		return m.switchView(m.nextTab())
	case matches(msg, k.ViewHome):
		return m.switchView(ViewHome)
	case matches(msg, k.ViewDirectory):
		return m.switchView(ViewDirectory)
	case matches(msg, k.ViewFavorites):
		return m.switchView(ViewFavorites)
	case matches(msg, k.ViewLogs):
		return m.switchView(ViewLogs)
	case matches(msg, k.Back):
		if m.view == ViewDetail {
			return m.switchView(m.back)
		}
		return m.switchView(ViewHome)
	case matches(msg, k.Refresh):
		if m.core != nil {
			m.core.FetchCampsites(m.ctx)
			m.core.FetchComments(m.ctx)
			m.core.FetchPromotions(m.ctx)
			m.core.FetchPartners(m.ctx)
		}
		m.setFlash("Refreshing...", false)
		return m, snapshotCmd(m.core)
	case matches(msg, k.Login):
		m.openLoginForm()
		return m, nil
	}

	switch m.view {
	case ViewHome:
		return m.handleHomeKey(msg)
	case ViewDirectory, ViewFavorites:
		return m.handleListKey(msg)
	case ViewDetail:
		return m.handleDetailKey(msg)
	case ViewLogs:
		return m.handleLogsKey(msg)
	}
	return m, nil
}

func (m Model) nextTab() View {
	current := m.view
	if current == ViewDetail {
		current = m.back
	}
	for i, v := range tabOrder {
		if v == current {
			return tabOrder[(i+1)%len(tabOrder)]
		}
	}
	return ViewHome
}

func (m Model) switchView(v View) (tea.Model, tea.Cmd) {
	m.view = v
	if v == ViewLogs {
		return m, readLogsCmd(m.logPath, m.logMin)
	}
	return m, nil
}

func (m Model) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if matches(msg, m.keys.Open) {
		if c, ok := views.Featured(m.snap.Campsites.Items); ok {
			m.openDetail(c.ID, ViewHome)
		}
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.listItems()
	cursor := &m.dirCursor
	if m.view == ViewFavorites {
		cursor = &m.favCursor
	}
	if len(items) == 0 {
		return m, nil
	}

	k := m.keys
	switch {
	case matches(msg, k.Down):
		if *cursor < len(items)-1 {
			*cursor++
		}
	case matches(msg, k.Up):
		if *cursor > 0 {
			*cursor--
		}
	case matches(msg, k.Top):
		*cursor = 0
	case matches(msg, k.Bottom):
		*cursor = len(items) - 1
	case matches(msg, k.Open):
		m.openDetail(items[*cursor].ID, m.view)
	case matches(msg, k.Favorite):
		if m.view == ViewFavorites {
			m.removeFavorite(items[*cursor])
		} else {
			m.toggleFavorite(items[*cursor])
		}
		m.clampCursors()
	}
	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case matches(msg, k.Favorite):
		if c, ok := views.CampsiteByID(m.snap.Campsites.Items, m.detailID); ok {
			m.addFavorite(c)
		}
		return m, nil
	case matches(msg, k.Comment):
		m.openCommentForm(m.detailID)
		return m, nil
	case matches(msg, k.Discard):
		m.discardComment()
		return m, nil
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if matches(msg, m.keys.Severity) {
		m.logMin = (m.logMin + 1) % (logtail.Error + 1)
		return m, readLogsCmd(m.logPath, m.logMin)
	}
	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	return m, cmd
}

// listItems returns the campsites shown by the directory or favorites view.
func (m Model) listItems() []campapi.Campsite {
	if m.view == ViewFavorites {
		return views.FavoritedCampsites(m.snap.Campsites.Items, m.snap.Favorites)
	}
	return m.snap.Campsites.Items
}

func (m *Model) openDetail(id int, from View) {
	m.detailID = id
	m.back = from
	m.view = ViewDetail
	m.updateDetailViewport()
	m.detailViewport.GotoTop()
}

func (m *Model) toggleFavorite(c campapi.Campsite) {
	if m.core == nil {
		return
	}
	if m.core.ToggleFavorite(c.ID) {
		m.setFlash("Added "+c.Name+" to favorites", false)
	} else {
		m.setFlash("Removed "+c.Name+" from favorites", false)
	}
	m.refreshSnapshot()
}

// addFavorite only ever adds; removal lives in the favorites list.
func (m *Model) addFavorite(c campapi.Campsite) {
	if m.core == nil {
		return
	}
	switch err := m.core.AddFavorite(c.ID); {
	case errors.Is(err, favorites.ErrAlreadyFavorite):
		m.setFlash("Already a favorite", false)
	case err != nil:
		m.setFlash("Favorite failed: "+err.Error(), true)
	default:
		m.setFlash("Added "+c.Name+" to favorites", false)
	}
	m.refreshSnapshot()
}

func (m *Model) removeFavorite(c campapi.Campsite) {
	if m.core == nil {
		return
	}
	if m.core.RemoveFavorite(c.ID) {
		m.setFlash("Removed "+c.Name+" from favorites", false)
	}
	m.refreshSnapshot()
}

// discardComment cancels the most recent comment that has not committed.
func (m *Model) discardComment() {
	if m.core == nil || len(m.posting) == 0 {
		m.setFlash("No comment is posting", false)
		return
	}
	last := m.posting[len(m.posting)-1]
	m.posting = m.posting[:len(m.posting)-1]
	if !m.core.CancelComment(last) {
		m.setFlash("Comment already posted", false)
	}
	m.refreshSnapshot()
}

func (m *Model) refreshSnapshot() {
	if m.core != nil {
		m.snap = m.core.Snapshot()
	}
	m.clampCursors()
	m.updateDetailViewport()
}

func (m *Model) clampCursors() {
	clamp := func(cursor *int, n int) {
		if *cursor >= n {
			*cursor = n - 1
		}
		if *cursor < 0 {
			*cursor = 0
		}
	}
	clamp(&m.dirCursor, len(m.snap.Campsites.Items))
	clamp(&m.favCursor, len(views.FavoritedCampsites(m.snap.Campsites.Items, m.snap.Favorites)))
}

func (m *Model) setFlash(text string, isErr bool) {
	m.flash = text
	m.flashErr = isErr
}

// Run starts the Bubble Tea program and blocks until the user quits or
// opts.Context is cancelled.
func Run(opts Options) error {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Messages

type tickMsg time.Time

type snapshotMsg core.Snapshot

type logsMsg struct {
	lines []logtail.Line
	err   error
}

type commentMsg struct {
	token   ulid.ULID
	comment campapi.Comment
	err     error
}

type prefsMsg struct{ err error }

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func snapshotCmd(c *core.Core) tea.Cmd {
	if c == nil {
		return nil
	}
	return func() tea.Msg {
		return snapshotMsg(c.Snapshot())
	}
}

func readLogsCmd(path string, min logtail.Severity) tea.Cmd {
	return func() tea.Msg {
		if path == "" {
			return logsMsg{}
		}
		lines, err := logtail.Read(path, logTailLines, min)
		return logsMsg{lines: lines, err: err}
	}
}

func waitCommentCmd(ctx context.Context, p *comments.Pending) tea.Cmd {
	return func() tea.Msg {
		c, err := p.Wait(ctx)
		return commentMsg{token: p.Token, comment: c, err: err}
	}
}

func saveThemeCmd(path, name string) tea.Cmd {
	return func() tea.Msg {
		return prefsMsg{err: prefs.Update(path, func(p *prefs.Prefs) { p.Theme = name })}
	}
}
