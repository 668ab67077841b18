package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/sparkline"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
	"github.com/fyrsmithlabs/vault/internal/catch"
	"github.com/fyrsmithlabs/vault/internal/dashboard"
	"github.com/fyrsmithlabs/vault/internal/memory"
	"github.com/fyrsmithlabs/vault/internal/stage"
	"github.com/fyrsmithlabs/vault/internal/view"
)

// The catch field is simulated in pixel units and drawn at this scale.
const (
	unitsPerCol = 5.0
	unitsPerRow = 15.0
)

const (
	memoryColumns   = 4
	sparklineWidth  = 30
	sparklineHeight = 3
)

// createSparkline draws data, or a placeholder when there is none.
func createSparkline(data []int) string {
	if len(data) == 0 {
		return dimStyle.Render(fmt.Sprintf("%*s", sparklineWidth, "no catches yet"))
	}
	spark := sparkline.New(sparklineWidth, sparklineHeight)
	for _, v := range data {
		spark.Push(float64(v))
	}
	spark.Draw()
	return sparklineStyle.Render(spark.View())
}

// visibleStage returns the stage whose container is revealed, or 0.
func (m *Model) visibleStage() int {
	for n := stage.Gate; n <= stage.Dashboard; n++ {
		if m.pres.Visible(view.StageID(n)) {
			return n
		}
	}
	return 0
}

func (m *Model) render() string {
	n := m.visibleStage()
	m.keys.stage = n

	header := headerStyle.Render(" vault ") + " " + dimStyle.Render(stage.Name(n))

	var body string
	if msg, ok := m.pres.Modal(); ok {
		body = renderModal(msg)
	} else {
		body = m.renderStage(n)
	}

	var b strings.Builder
	b.WriteString(header + "\n\n")
	m.bodyTop = frameTop + 2
	if c := m.pres.ConfettiView(); c != "" {
		b.WriteString(c + "\n")
		m.bodyTop += lipgloss.Height(c)
	}
	b.WriteString(body)
	if m.status != "" {
		b.WriteString("\n\n" + errorStyle.Render(m.status))
	}
	b.WriteString("\n\n" + m.help.View(m.keys))

	style := frameStyle.
		Background(lipgloss.Color(m.pres.Background())).
		Foreground(lipgloss.Color(m.pres.Foreground()))
	return style.Render(b.String())
}

func renderModal(msg view.Message) string {
	content := msg.Emoji + "\n\n" + msg.Text
	if msg.Button != "" {
		content += "\n\n" + buttonStyle.Render(msg.Button)
	}
	return modalStyle.Width(48).Render(content)
}

func (m *Model) renderStage(n int) string {
	switch n {
	case stage.Gate:
		return m.renderGate()
	case stage.Memory:
		return m.renderMemory()
	case stage.Catch:
		return m.renderCatch()
	case stage.Intermission:
		return m.renderIntermission()
	case stage.Dashboard:
		return m.renderDashboard()
	}
	return dimStyle.Render("loading…")
}

func (m *Model) renderGate() string {
	box := sectionStyle.Render(m.pres.Text(view.GateInstruction)) + "\n\n" +
		inputStyle.Render(m.pres.InputView())
	if m.pres.InputMode() == view.InputDate {
		box += "\n" + dimStyle.Render("latest "+m.app.Gate.Picker().Max())
	}
	return lipgloss.NewStyle().MarginLeft(m.pres.ShakeOffset(view.GateBox)).Render(box)
}

func cardFace(c memory.Card) string {
	if !c.FaceUp() {
		return "?"
	}
	if c.Matched {
		return matchedStyle.Render(c.Symbol)
	}
	switch c.Symbol {
	case "♥", "♦":
		return redSuitStyle.Render(c.Symbol)
	case "Q", "K":
		return royalStyle.Render(c.Symbol)
	}
	return valueStyle.Render(c.Symbol)
}

func (m *Model) renderMemory() string {
	cards := m.app.Memory.Engine().Cards()
	var rows []string
	for start := 0; start < len(cards); start += memoryColumns {
		var row []string
		for i := start; i < min(start+memoryColumns, len(cards)); i++ {
			style := cardStyle
			if i == m.cursor {
				style = cursorCardStyle
			}
			row = append(row, style.Render(cardFace(cards[i])))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	grid := lipgloss.JoinVertical(lipgloss.Left, rows...)

	e := m.app.Memory.Engine()
	pct := 0.0
	if e.TotalPairs() > 0 {
		pct = float64(e.Pairs()) / float64(e.TotalPairs())
	}
	out := sectionStyle.Render("Find the pairs") + "\n\n" + grid + "\n\n" +
		labelStyle.Render("Pairs: ") + m.progress.ViewAs(pct) + " " +
		dimStyle.Render(fmt.Sprintf("%d/%d", e.Pairs(), e.TotalPairs()))
	if m.pres.Visible(view.NextStage2) {
		out += "\n\n" + buttonStyle.Render("[n] Next Game")
	}
	return out
}

// cellGrid is a fixed-size terminal raster. A wide glyph owns its first cell
// and leaves "" in the cells it covers, so every row joins to exactly cols
// cells.
type cellGrid struct {
	cols  int
	cells [][]string
}

func newCellGrid(cols, rows int) *cellGrid {
	g := &cellGrid{cols: cols, cells: make([][]string, rows)}
	for y := range g.cells {
		g.cells[y] = make([]string, cols)
		for x := range g.cells[y] {
			g.cells[y][x] = " "
		}
	}
	return g
}

// put draws s at (x, y). Glyphs that would run off the row are dropped, and
// any wide glyph partly covered by s is erased.
func (g *cellGrid) put(x, y int, s string) {
	if y < 0 || y >= len(g.cells) || x < 0 || x >= g.cols {
		return
	}
	width := max(ansi.StringWidth(s), 1)
	if x+width > g.cols {
		return
	}
	row := g.cells[y]
	for i := x; i < x+width; i++ {
		g.erase(row, i)
	}
	row[x] = s
	for i := 1; i < width; i++ {
		row[x+i] = ""
	}
}

// erase blanks the glyph covering cell x, including its continuation cells.
func (g *cellGrid) erase(row []string, x int) {
	owner := x
	for owner > 0 && row[owner] == "" {
		owner--
	}
	row[owner] = " "
	for i := owner + 1; i < g.cols && row[i] == ""; i++ {
		row[i] = " "
	}
}

func (g *cellGrid) String() string {
	lines := make([]string, len(g.cells))
	for y, row := range g.cells {
		lines[y] = strings.Join(row, "")
	}
	return strings.Join(lines, "\n")
}

// catchGrid rasterises the catch field into cells. Wide glyphs occupy two
// cells.
func catchGrid(e *catch.Engine) string {
	w, h := e.Size()
	cols, rows := int(w/unitsPerCol), int(h/unitsPerRow)
	if cols <= 0 || rows <= 0 {
		return ""
	}
	grid := newCellGrid(cols, rows)
	for _, it := range e.Items() {
		grid.put(int(it.X/unitsPerCol), int(it.Y/unitsPerRow), it.Kind.Glyph())
	}
	p := e.Paddle()
	py := int(p.Y / unitsPerRow)
	for x := int(p.X / unitsPerCol); x < int((p.X+p.W)/unitsPerCol); x++ {
		grid.put(x, py, paddleStyle.Render("▀"))
	}
	return grid.String()
}

func (m *Model) renderCatch() string {
	e := m.app.Catch.Engine()
	pct := float64(max(e.Score(), 0)) / float64(e.VictoryScore())
	return sectionStyle.Render(m.pres.Text(view.ScoreDisplay)) + "  " + m.progress.ViewAs(min(pct, 1)) + "\n" +
		dimStyle.Render(fmt.Sprintf("%s +1  %s -2  %s +3",
			catch.Heart.Glyph(), catch.BrokenHeart.Glyph(), catch.Sparkle.Glyph())) + "\n\n" +
		catchGrid(e)
}

func (m *Model) renderIntermission() string {
	text := m.pres.Text(view.IntermissionText)
	full := []rune(m.app.Config.Intermission.Text)
	pct := 1.0
	if len(full) > 0 {
		pct = float64(len([]rune(text))) / float64(len(full))
	}
	width := max(m.pres.viewport()-4, minViewport)
	return lipgloss.NewStyle().Width(width).Render(valueStyle.Render(text)+"▌") + "\n\n" +
		m.progress.ViewAs(pct)
}

func (m *Model) renderDashboard() string {
	d := m.app.Dashboard
	var tabs []string
	for _, t := range dashboard.Tabs {
		label := strings.ToUpper(string(t[:1])) + string(t[1:])
		if t == dashboard.Letter {
			label = m.pres.Text(view.LetterNav)
		}
		style := tabStyle
		if t == d.Current() {
			style = activeTabStyle
		}
		tabs = append(tabs, style.Render(label))
	}
	nav := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	var content string
	m.galleryRows = make(map[int]view.ElementID)
	switch {
	case m.pres.Visible(view.TabID(string(dashboard.Memories))):
		content = m.renderMemories()
	case m.pres.Visible(view.TabID(string(dashboard.Stats))):
		content = m.renderStats()
	case m.pres.Visible(view.TabID(string(dashboard.Portrait))):
		width := max(m.pres.viewport()-4, minViewport)
		content = sectionStyle.Render("Portrait") + "\n\n" +
			lipgloss.NewStyle().Width(width).MaxHeight(6).Italic(true).Render(m.pres.Text(view.Lyrics))
	case m.pres.Visible(view.TabID(string(dashboard.Letter))):
		width := min(max(m.pres.viewport()-4, minViewport), 64)
		content = lipgloss.NewStyle().Width(width).Render(m.app.Config.Dashboard.Letter) + "\n\n" +
			buttonStyle.Render("[y] Yes!")
	}
	return nav + "\n\n" + content
}

// renderMemories lays out the gallery strips and records the row of each
// strip relative to the body so mouse hover can find it.
func (m *Model) renderMemories() string {
	var lines []string
	for _, id := range m.pres.Galleries() {
		title := strings.TrimPrefix(string(id), "gallery-")
		lines = append(lines, labelStyle.Render(title))
		// nav, blank line, then this block
		m.galleryRows[2+len(lines)] = id
		lines = append(lines, m.pres.GalleryWindow(id), "")
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderStats() string {
	history := m.app.Catch.Engine().History()
	best := 0
	for _, v := range history {
		best = max(best, v)
	}
	return sectionStyle.Render("Stats") + "\n\n" +
		labelStyle.Render("  Days together: ") + valueStyle.Render(m.pres.Text(view.StatCounter)) + "\n" +
		labelStyle.Render("  Catches: ") + valueStyle.Render(humanize.Comma(int64(len(history)))) + "\n" +
		labelStyle.Render("  Top score: ") + valueStyle.Render(humanize.Comma(int64(best))) + "\n\n" +
		createSparkline(history)
}
