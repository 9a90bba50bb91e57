package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/trailhead/internal/campapi"
	"github.com/five82/trailhead/internal/logtail"
	"github.com/five82/trailhead/internal/state"
	"github.com/five82/trailhead/internal/views"
)

// chrome is the header, command bar and flash line around the content.
const chrome = 3

func (m Model) contentHeight() int {
	return max(m.height-chrome, 3)
}

func (m *Model) resizeViewports() {
	inner := max(m.width-4, 1)
	rows := max(m.contentHeight()-2, 1)
	m.detailViewport.Width = inner
	m.detailViewport.Height = rows
	m.logViewport.Width = inner
	m.logViewport.Height = rows
}

func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	if m.form != nil {
		b.WriteString(m.renderForm())
	} else {
		b.WriteString(m.renderContent())
	}
	b.WriteString("\n")
	b.WriteString(m.renderFlash())
	return b.String()
}

func (m Model) renderContent() string {
	switch m.view {
	case ViewDirectory:
		return m.renderCampsiteList("Directory", m.snap.Campsites.Items, m.dirCursor, "No campsites.")
	case ViewFavorites:
		return m.renderCampsiteList("Favorites", m.listItems(), m.favCursor, "No favorites yet. Press f on a campsite to add one.")
	case ViewDetail:
		return m.renderTitledBox(m.detailTitle(), m.detailViewport.View(), m.width, m.contentHeight(), true)
	case ViewLogs:
		return m.renderTitledBox("Logs ≥ "+m.logMin.String(), m.logViewport.View(), m.width, m.contentHeight(), true)
	default:
		return m.renderHome()
	}
}

func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	segments := []string{
		lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Warning)).Bold(true).Render("trailhead"),
		styles.Text.Render(m.view.String()),
	}

	if m.snap.Loading() {
		segments = append(segments, styles.Info.Render("loading"))
	}
	if errs := m.snap.Errors(); len(errs) > 0 {
		segments = append(segments, styles.Danger.Render(fmt.Sprintf("%d failed", len(errs))))
	}
	segments = append(segments, styles.Favorite.Render(fmt.Sprintf("★ %d", len(m.snap.Favorites))))
	if n := m.snap.PendingComments; n > 0 {
		segments = append(segments, styles.Warning.Render(fmt.Sprintf("%d posting", n)))
	}
	if !m.snap.Campsites.UpdatedAt.IsZero() {
		segments = append(segments, styles.Faint.Render("updated "+m.snap.Campsites.UpdatedAt.Format("15:04:05")))
	}
	return styles.Header.Width(m.width).Render(strings.Join(segments, "  "))
}

func (m Model) renderCommandBar() string {
	styles := m.theme.Styles()

	type cmd struct{ key, desc string }
	var commands []cmd
	switch {
	case m.form != nil:
		commands = []cmd{{"tab", "Next field"}, {"enter", "Submit"}, {"esc", "Cancel"}}
		if m.form.kind == formLogin {
			commands = append(commands, cmd{"space", "Remember me"})
		}
	case m.view == ViewDetail:
		commands = []cmd{{"f", "Favorite"}, {"c", "Comment"}, {"x", "Discard"}, {"j/k", "Scroll"}, {"esc", "Back"}, {"?", "More"}}
	case m.view == ViewLogs:
		commands = []cmd{{"s", "Severity"}, {"j/k", "Scroll"}, {"1/2/3", "Views"}, {"?", "More"}}
	case m.view == ViewHome:
		commands = []cmd{{"enter", "Open featured"}, {"1/2/3/l", "Views"}, {"r", "Refresh"}, {"L", "Login"}, {"?", "More"}}
	case m.view == ViewFavorites:
		commands = []cmd{{"j/k", "Navigate"}, {"enter", "Open"}, {"f", "Remove"}, {"r", "Refresh"}, {"tab", "Next view"}, {"?", "More"}}
	default:
		commands = []cmd{{"j/k", "Navigate"}, {"enter", "Open"}, {"f", "Favorite"}, {"r", "Refresh"}, {"tab", "Next view"}, {"?", "More"}}
	}

	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments, styles.Accent.Render(c.key)+":"+styles.Muted.Render(c.desc))
	}
	segments = append(segments, styles.Accent.Render("T")+":"+styles.Faint.Render(m.theme.Name))
	return styles.Header.Width(m.width).Render(strings.Join(segments, "  "))
}

func (m Model) renderFlash() string {
	if m.flash == "" {
		return ""
	}
	styles := m.theme.Styles()
	if m.flashErr {
		return styles.Danger.Render(m.flash)
	}
	return styles.Muted.Render(m.flash)
}

func (m Model) renderHome() string {
	height := m.contentHeight()
	each := max(height/3, 4)
	boxes := []string{
		m.renderTitledBox("Featured Campsite", featuredContent(m, m.snap.Campsites, func(c campapi.Campsite) (string, string) {
			return c.Name, fmt.Sprintf("Elevation %d ft. %s", c.Elevation, c.Description)
		}), m.width, each, false),
		m.renderTitledBox("Featured Promotion", featuredContent(m, m.snap.Promotions, func(p campapi.Promotion) (string, string) {
			return fmt.Sprintf("%s ($%d)", p.Name, p.Cost), p.Description
		}), m.width, each, false),
		m.renderTitledBox("Featured Partner", featuredContent(m, m.snap.Partners, func(p campapi.Partner) (string, string) {
			return p.Name, p.Description
		}), m.width, height-2*each, false),
	}
	return strings.Join(boxes, "\n")
}

// featuredContent renders one home card: the collection's featured item,
// or its loading or error state when there is nothing to show.
func featuredContent[T views.Featurable](m Model, c state.Collection[T], describe func(T) (string, string)) string {
	styles := m.theme.Styles()
	item, ok := views.Featured(c.Items)
	switch {
	case !ok && c.IsLoading:
		return styles.Info.Render("Loading...")
	case !ok && c.HasError():
		return styles.Danger.Render(c.Error)
	case !ok:
		return styles.Faint.Render("Nothing featured right now.")
	}

	title, body := describe(item)
	lines := []string{styles.Title.Render(title), wrap(body, m.width-4)}
	if c.HasError() {
		lines = append(lines, styles.Faint.Render("showing cached data: "+c.Error))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderCampsiteList(title string, items []campapi.Campsite, cursor int, empty string) string {
	styles := m.theme.Styles()
	height := m.contentHeight()
	rows := max(height-2, 1)
	c := m.snap.Campsites

	var lines []string
	switch {
	case len(items) == 0 && c.IsLoading:
		lines = append(lines, styles.Info.Render("Loading..."))
	case len(items) == 0 && c.HasError():
		lines = append(lines, styles.Danger.Render(c.Error))
	case len(items) == 0:
		lines = append(lines, styles.Faint.Render(empty))
	default:
		if c.HasError() {
			lines = append(lines, styles.Faint.Render("showing cached data: "+c.Error))
			rows--
		}
		start := 0
		if cursor >= rows {
			start = cursor - rows + 1
		}
		end := min(start+rows, len(items))
		for i := start; i < end; i++ {
			lines = append(lines, m.campsiteRow(items[i], i == cursor))
		}
	}
	return m.renderTitledBox(fmt.Sprintf("%s (%d)", title, len(items)), strings.Join(lines, "\n"), m.width, height, true)
}

func (m Model) campsiteRow(c campapi.Campsite, selected bool) string {
	styles := m.theme.Styles()
	mark := "  "
	if m.snap.IsFavorite(c.ID) {
		mark = "★ "
	}
	row := fmt.Sprintf("%s%s  %d ft", mark, truncate(c.Name, m.width-20), c.Elevation)
	if selected {
		return styles.Selected.Width(max(m.width-4, 1)).Render(row)
	}
	if mark != "  " {
		return styles.Favorite.Render(mark) + styles.Text.Render(strings.TrimPrefix(row, mark))
	}
	return styles.Text.Render(row)
}

func (m Model) detailTitle() string {
	if c, ok := views.CampsiteByID(m.snap.Campsites.Items, m.detailID); ok {
		return c.Name
	}
	return "Campsite"
}

func (m *Model) updateDetailViewport() {
	if !m.ready || m.view != ViewDetail {
		return
	}
	m.detailViewport.SetContent(m.detailContent())
}

func (m Model) detailContent() string {
	styles := m.theme.Styles()
	width := max(m.width-6, 10)

	site, ok := views.CampsiteByID(m.snap.Campsites.Items, m.detailID)
	if !ok {
		if m.snap.Campsites.IsLoading {
			return styles.Info.Render("Loading...")
		}
		return styles.Faint.Render("This campsite is no longer listed.")
	}

	var b strings.Builder
	favorite := styles.Faint.Render("☆ not a favorite")
	if m.snap.IsFavorite(site.ID) {
		favorite = styles.Favorite.Render("★ favorite")
	}
	fmt.Fprintf(&b, "%s\n%s\n\n%s\n\n", styles.Muted.Render(fmt.Sprintf("Elevation %d ft", site.Elevation)), favorite, wrap(site.Description, width))

	list := views.CommentsFor(m.snap.Comments.Items, site.ID)
	if avg, ok := views.AverageRating(list); ok {
		fmt.Fprintf(&b, "%s\n", styles.Warning.Render(fmt.Sprintf("Rating %.1f/5 from %d comments", avg, len(list))))
	} else {
		fmt.Fprintf(&b, "%s\n", styles.Faint.Render("No ratings yet"))
	}
	if n := m.snap.PendingComments; n > 0 {
		fmt.Fprintf(&b, "%s\n", styles.Info.Render(fmt.Sprintf("%d comment(s) posting...", n)))
	}
	switch {
	case m.snap.Comments.HasError():
		fmt.Fprintf(&b, "%s\n", styles.Danger.Render("comments: "+m.snap.Comments.Error))
	case m.snap.Comments.IsLoading && len(list) == 0:
		fmt.Fprintf(&b, "%s\n", styles.Info.Render("Loading comments..."))
	}

	b.WriteString("\n")
	b.WriteString(styles.Title.Render("Comments"))
	b.WriteString("\n")
	for _, c := range list {
		fmt.Fprintf(&b, "%s\n%s\n\n", wrap(c.Text, width), styles.Muted.Render(fmt.Sprintf("%s  -- %s, %s", stars(c.Rating), c.Author, commentDate(c))))
	}
	return b.String()
}

func commentDate(c campapi.Comment) string {
	t := c.ParsedDate()
	if t.IsZero() {
		return c.Date
	}
	return t.Local().Format("Jan 2, 2006")
}

func stars(rating int) string {
	rating = min(max(rating, 0), 5)
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}

func (m *Model) updateLogViewport() {
	if !m.ready {
		return
	}
	follow := m.logViewport.AtBottom()
	m.logViewport.SetContent(m.logContent())
	if follow {
		m.logViewport.GotoBottom()
	}
}

func (m Model) logContent() string {
	styles := m.theme.Styles()
	if m.logErr != "" {
		return styles.Danger.Render(m.logErr)
	}
	if len(m.logLines) == 0 {
		return styles.Faint.Render("No log lines yet.")
	}
	out := make([]string, len(m.logLines))
	for i, l := range m.logLines {
		out[i] = m.formatLogLine(l, styles)
	}
	return strings.Join(out, "\n")
}

func (m Model) formatLogLine(l logtail.Line, styles Styles) string {
	if l.Time == "" {
		return "    " + styles.Text.Render(l.Message)
	}
	level := styles.Success
	switch l.Severity {
	case logtail.Warning:
		level = styles.Warning.Bold(true)
	case logtail.Error, logtail.Fatal:
		level = styles.Danger
	}
	return strings.Join([]string{
		styles.Faint.Render(l.Time),
		level.Render(fmt.Sprintf("%-5s", l.Severity)),
		styles.Accent.Render(l.Source),
		styles.Text.Render(l.Message),
	}, " ")
}

func (m Model) renderForm() string {
	f := m.form
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Title.Render(f.title))
	b.WriteString("\n\n")
	for i, in := range f.inputs {
		label := styles.Muted.Width(10).Render(f.labels[i])
		if i == f.focus {
			label = styles.Accent.Width(10).Render(f.labels[i])
		}
		b.WriteString(label + in.View() + "\n")
	}
	if f.kind == formLogin {
		box := "[ ]"
		if f.remember {
			box = "[x]"
		}
		style := styles.Muted
		if f.onToggle() {
			style = styles.Accent
		}
		b.WriteString("\n" + style.Render(box+" Remember me") + "\n")
	}
	if f.err != "" {
		b.WriteString("\n" + styles.Danger.Render(f.err) + "\n")
	}

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(min(60, max(m.width-4, 20))).
		Render(b.String())
	return lipgloss.Place(m.width, m.contentHeight(), lipgloss.Center, lipgloss.Center, modal)
}

// renderTitledBox draws a box with its title set into the top border:
// ┌─── Title ───┐
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	borderColor := m.theme.Border
	if focused {
		borderColor = m.theme.BorderFocus
	}
	border := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColor))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	inner := max(width-2, 4)
	title = truncate(title, inner-4)
	titleLen := lipgloss.Width(title)
	left := max((inner-titleLen-2)/2, 0)
	right := max(inner-titleLen-2-left, 0)

	top := border.Render("┌"+strings.Repeat("─", left)) + titleStyle.Render(" "+title+" ") + border.Render(strings.Repeat("─", right)+"┐")
	bottom := border.Render("└" + strings.Repeat("─", inner) + "┘")

	body := lipgloss.NewStyle().Width(inner).MaxWidth(inner)
	lines := strings.Split(content, "\n")
	rows := max(height-2, 0)
	out := make([]string, 0, rows+2)
	out = append(out, top)
	for i := 0; i < rows; i++ {
		var line string
		if i < len(lines) {
			line = lines[i]
		}
		out = append(out, border.Render("│")+body.Render(line)+border.Render("│"))
	}
	out = append(out, bottom)
	return strings.Join(out, "\n")
}

func wrap(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}

// truncate shortens s to limit runes with an ellipsis.
func truncate(s string, limit int) string {
	r := []rune(s)
	switch {
	case limit <= 0:
		return ""
	case len(r) <= limit:
		return s
	case limit <= 3:
		return string(r[:limit])
	}
	return string(r[:limit-3]) + "..."
}
