package sim

import (
	"fmt"
	"math"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"compound-sim/internal/config"
	"compound-sim/internal/process"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// runMsg carries a completed run for the log viewport and stat panels.
type runMsg struct {
	line string
	row  RunRow
}

// pathMsg carries the step path of the latest run.
type pathMsg struct{ row PathRow }

// histMsg carries the binned terminal distribution of the latest run.
type histMsg struct{ row HistogramRow }

// adminMsg reports admin UI status.
type adminMsg struct{ active bool }

// setTriggerMsg registers the resimulation callback.
type setTriggerMsg struct{ fn func(process.Params) }

const (
	chartHeightPct = 0.35
	minChartHeight = 6
	minSimulations = 1000
)

// Chart focus modes.
const (
	chartPath = iota
	chartHistogram
)

// Adjustable parameter indices, in on-screen order.
const (
	paramArrival = iota
	paramJump
	paramHorizon
	paramSimulations
	paramCount
)

// TUIWriter renders simulation results using a bubbletea TUI.
type TUIWriter struct {
	program    teaProgram
	done       chan struct{}
	sendSignal atomic.Bool
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter.
func NewTUIWriter(cfg *config.LabConfig) *TUIWriter {
	w := &TUIWriter{done: make(chan struct{})}
	w.sendSignal.Store(true)
	m := newTUIModel(cfg)
	p := tea.NewProgram(m, tea.WithAltScreen())
	w.program = p
	go func() {
		_, _ = p.Run()
		close(w.done)
		if w.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return w
}

// WriteRun implements RunWriter.
func (w *TUIWriter) WriteRun(row RunRow) error {
	w.program.Send(runMsg{line: formatRunLine(row), row: row})
	return nil
}

// WriteRuns outputs multiple run rows.
func (w *TUIWriter) WriteRuns(rows []RunRow) error {
	for _, r := range rows {
		_ = w.WriteRun(r)
	}
	return nil
}

// WritePath implements PathWriter.
func (w *TUIWriter) WritePath(row PathRow) error {
	w.program.Send(pathMsg{row: row})
	return nil
}

// WriteHistogram implements HistogramWriter.
func (w *TUIWriter) WriteHistogram(row HistogramRow) error {
	w.program.Send(histMsg{row: row})
	return nil
}

// SetAdminStatus updates the admin UI indicator.
func (w *TUIWriter) SetAdminStatus(active bool) {
	w.program.Send(adminMsg{active: active})
}

// SetTrigger registers the callback invoked when the user requests a
// resimulation with the parameters currently on screen.
func (w *TUIWriter) SetTrigger(fn func(process.Params)) {
	w.program.Send(setTriggerMsg{fn: fn})
}

// Close shuts down the TUI program and waits for cleanup.
func (w *TUIWriter) Close() error {
	w.sendSignal.Store(false)
	if w.program != nil {
		w.program.Send(tea.Quit())
	}
	if w.done != nil {
		<-w.done
	}
	return nil
}

type tuiModel struct {
	cfg          *config.LabConfig
	table        table.Model
	vp           viewport.Model
	logs         []string
	params       process.Params
	selected     int
	trigger      func(process.Params)
	lastRun      RunRow
	haveRun      bool
	pathPoints   []process.Point
	hist         HistogramRow
	runs         int
	chartMode    int
	admin        bool
	wrap         bool
	autoscroll   bool
	summary      bool
	help         bool
	header       string
	headerHeight int
	height       int
}

func newTUIModel(cfg *config.LabConfig) tuiModel {
	cols := []table.Column{
		{Title: "Parameter", Width: 22},
		{Title: "Value", Width: 10},
		{Title: "Range", Width: 16},
		{Title: "Step", Width: 8},
	}
	t := table.New(table.WithColumns(cols), table.WithHeight(paramCount+1))
	vp := viewport.New(0, 0)
	m := tuiModel{
		cfg: cfg,
		params: process.Params{
			ArrivalRate: cfg.ArrivalRate,
			JumpRate:    cfg.JumpRate,
			Horizon:     cfg.Horizon,
			Simulations: cfg.Simulations,
		},
		table:      t,
		vp:         vp,
		autoscroll: true,
	}
	m.refreshTable()
	return m
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetWidth(msg.Width / 2)
		m.vp.Width = msg.Width
		m.height = msg.Height
		m.header = m.renderHeader()
		m.headerHeight = lipgloss.Height(m.header)
		m.updateViewportHeight()
		m.refreshViewport()
	case tea.KeyMsg:
		if m.help {
			switch msg.String() {
			case "?", "esc", "q":
				m.help = false
			}
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "left":
			m.selected = (m.selected + paramCount - 1) % paramCount
			m.refreshTable()
		case "right":
			m.selected = (m.selected + 1) % paramCount
			m.refreshTable()
		case "up":
			m.adjust(1)
		case "down":
			m.adjust(-1)
		case "r", "enter", " ":
			if m.trigger != nil {
				go m.trigger(m.params)
			}
		case "tab":
			if m.chartMode == chartPath {
				m.chartMode = chartHistogram
			} else {
				m.chartMode = chartPath
			}
		case "s":
			m.summary = !m.summary
			m.updateViewportHeight()
		case "w":
			m.wrap = !m.wrap
			m.refreshViewport()
		case "a":
			m.autoscroll = !m.autoscroll
		case "?":
			m.help = true
		}
	case runMsg:
		m.lastRun = msg.row
		m.haveRun = true
		m.runs++
		m.logs = append(m.logs, msg.line)
		m.header = m.renderHeader()
		m.headerHeight = lipgloss.Height(m.header)
		m.updateViewportHeight()
		m.refreshViewport()
	case pathMsg:
		m.pathPoints = msg.row.Points
	case histMsg:
		m.hist = msg.row
	case adminMsg:
		m.admin = msg.active
	case setTriggerMsg:
		m.trigger = msg.fn
	}
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

// adjust moves the selected parameter by steps configured steps, clamped to
// its range. No recomputation happens until the user triggers one.
func (m *tuiModel) adjust(dir int) {
	switch m.selected {
	case paramArrival:
		r := m.cfg.ArrivalRange
		m.params.ArrivalRate = r.Clamp(roundStep(m.params.ArrivalRate+float64(dir)*r.Step, r.Step))
	case paramJump:
		r := m.cfg.JumpRange
		m.params.JumpRate = r.Clamp(roundStep(m.params.JumpRate+float64(dir)*r.Step, r.Step))
	case paramHorizon:
		r := m.cfg.HorizonRange
		m.params.Horizon = r.Clamp(roundStep(m.params.Horizon+float64(dir)*r.Step, r.Step))
	case paramSimulations:
		step := m.cfg.SimulationStep
		if step < 1 {
			step = 1
		}
		n := m.params.Simulations + dir*step
		if n < minSimulations {
			n = minSimulations
		}
		if m.cfg.MaxSimulations > 0 && n > m.cfg.MaxSimulations {
			n = m.cfg.MaxSimulations
		}
		m.params.Simulations = n
	}
	m.refreshTable()
}

// roundStep snaps v onto the step lattice so repeated float adjustments do
// not accumulate drift (0.1+0.1+... style).
func roundStep(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	return math.Round(v/step) * step
}

func (m *tuiModel) refreshTable() {
	mark := func(i int) string {
		if i == m.selected {
			return "> "
		}
		return "  "
	}
	rows := []table.Row{
		{mark(paramArrival) + "Arrival rate λ", fmt.Sprintf("%.2f", m.params.ArrivalRate),
			fmt.Sprintf("%.2f..%.2f", m.cfg.ArrivalRange.Min, m.cfg.ArrivalRange.Max), fmt.Sprintf("%.2f", m.cfg.ArrivalRange.Step)},
		{mark(paramJump) + "Jump rate μ", fmt.Sprintf("%.2f", m.params.JumpRate),
			fmt.Sprintf("%.2f..%.2f", m.cfg.JumpRange.Min, m.cfg.JumpRange.Max), fmt.Sprintf("%.2f", m.cfg.JumpRange.Step)},
		{mark(paramHorizon) + "Horizon T", fmt.Sprintf("%.0f", m.params.Horizon),
			fmt.Sprintf("%.0f..%.0f", m.cfg.HorizonRange.Min, m.cfg.HorizonRange.Max), fmt.Sprintf("%.0f", m.cfg.HorizonRange.Step)},
		{mark(paramSimulations) + "Simulations", fmt.Sprintf("%d", m.params.Simulations),
			fmt.Sprintf("%d..%d", minSimulations, m.cfg.MaxSimulations), fmt.Sprintf("%d", m.cfg.SimulationStep)},
	}
	m.table.SetRows(rows)
}

func (m *tuiModel) updateViewportHeight() {
	bottom := lipgloss.Height(m.renderBottom())
	h := m.height - m.headerHeight - m.chartHeight() - bottom - 4
	if h < 1 {
		h = 1
	}
	m.vp.Height = h
}

func (m tuiModel) chartHeight() int {
	h := int(float64(m.height) * chartHeightPct)
	if h < minChartHeight {
		h = minChartHeight
	}
	return h
}

func (m *tuiModel) refreshViewport() {
	lines := m.logs
	if m.wrap && m.vp.Width > 0 {
		wrapped := make([]string, 0, len(lines))
		for _, l := range lines {
			wrapped = append(wrapped, wordwrap.String(l, m.vp.Width))
		}
		lines = wrapped
	}
	m.vp.SetContent(strings.Join(lines, "\n"))
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m tuiModel) View() string {
	if m.help {
		return m.renderHelp()
	}
	divider := strings.Repeat("─", m.vp.Width)
	chart := m.renderPathChart()
	title := "Sample path S(t)"
	if m.chartMode == chartHistogram {
		chart = m.renderHistogram()
		title = "Terminal value S(T) histogram"
	}
	sections := []string{
		m.header,
		divider,
		title,
		chart,
		divider,
		m.vp.View(),
		divider,
		m.renderBottom(),
	}
	return strings.Join(sections, "\n")
}

func (m tuiModel) renderHeader() string {
	tableView := m.table.View()
	statsWidth := m.vp.Width/2 - 1
	stats := m.renderStats(statsWidth)
	sep := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("│")
	return lipgloss.JoinHorizontal(lipgloss.Top, tableView, sep, stats)
}

// renderStats shows the closed-form moments next to the latest empirical
// ones, rounded to 2 decimals.
func (m tuiModel) renderStats(width int) string {
	p := m.params
	theoMean := process.Mean(p)
	theoVar := process.Variance(p)
	var b strings.Builder
	b.WriteString("Theory vs Monte Carlo\n")
	b.WriteString(fmt.Sprintf("├─ E[S(T)]   %s%.2f%s", colorGreen, theoMean, colorReset))
	if m.haveRun {
		b.WriteString(fmt.Sprintf("  empirical %s%.2f%s", colorCyan, m.lastRun.EmpiricalMean, colorReset))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("├─ Var[S(T)] %s%.2f%s", colorGreen, theoVar, colorReset))
	if m.haveRun {
		b.WriteString(fmt.Sprintf("  empirical %s%.2f%s", colorCyan, m.lastRun.EmpiricalVariance, colorReset))
	}
	b.WriteString("\n")
	if m.haveRun {
		b.WriteString(fmt.Sprintf("└─ last run: arrivals=%d final=%.2f sims=%d", m.lastRun.Arrivals, m.lastRun.PathFinal, m.lastRun.Simulations))
	} else {
		b.WriteString("└─ press r to simulate")
	}
	out := b.String()
	if width > 0 {
		out = wordwrap.String(out, width)
	}
	return out
}

// renderPathChart draws the step path on a character grid: one value level
// per column, vertical fill where the level jumps between columns.
func (m tuiModel) renderPathChart() string {
	width := m.vp.Width
	height := m.chartHeight()
	if width < 2 || len(m.pathPoints) == 0 {
		return "No path data (press r)"
	}
	horizon := m.pathPoints[len(m.pathPoints)-1].T
	maxV := m.pathPoints[len(m.pathPoints)-1].V
	if maxV <= 0 {
		maxV = 1
	}
	grid := make([][]string, height)
	for i := range grid {
		row := make([]string, width)
		for j := range row {
			row[j] = " "
		}
		grid[i] = row
	}
	level := func(v float64) int {
		y := height - 1 - int(v/maxV*float64(height-1))
		if y < 0 {
			y = 0
		}
		if y >= height {
			y = height - 1
		}
		return y
	}
	prevY := level(0)
	for x := 0; x < width; x++ {
		t := horizon * float64(x) / float64(width-1)
		y := level(pathValueAt(m.pathPoints, t))
		if y < prevY { // value went up: fill the riser
			for yy := y + 1; yy < prevY; yy++ {
				grid[yy][x] = fmt.Sprintf("%s│%s", colorGray, colorReset)
			}
		}
		grid[y][x] = fmt.Sprintf("%s─%s", colorGreen, colorReset)
		prevY = y
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%st=0..%.0f  S=0..%.2f%s\n", colorGray, horizon, m.pathPoints[len(m.pathPoints)-1].V, colorReset))
	for _, row := range grid {
		b.WriteString(strings.Join(row, ""))
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderHistogram draws the density bars with a vertical marker at the
// theoretical mean.
func (m tuiModel) renderHistogram() string {
	width := m.vp.Width
	height := m.chartHeight()
	if width < 2 || len(m.hist.Counts) == 0 {
		return "No histogram data (press r)"
	}
	lo := m.hist.Edges[0]
	hi := m.hist.Edges[len(m.hist.Edges)-1]
	var maxCount float64
	for _, c := range m.hist.Counts {
		if c > maxCount {
			maxCount = c
		}
	}
	if maxCount == 0 {
		maxCount = 1
	}
	grid := make([][]string, height)
	for i := range grid {
		row := make([]string, width)
		for j := range row {
			row[j] = " "
		}
		grid[i] = row
	}
	bins := len(m.hist.Counts)
	for x := 0; x < width; x++ {
		bin := x * bins / width
		barH := int(m.hist.Counts[bin] / maxCount * float64(height-1))
		for y := height - 1; y >= height-1-barH && y >= 0; y-- {
			grid[y][x] = fmt.Sprintf("%s█%s", colorBlue, colorReset)
		}
	}
	// theoretical mean marker
	if hi > lo && m.hist.TheoreticalMean >= lo && m.hist.TheoreticalMean <= hi {
		x := int((m.hist.TheoreticalMean - lo) / (hi - lo) * float64(width-1))
		for y := 0; y < height; y++ {
			grid[y][x] = fmt.Sprintf("%s│%s", colorMagenta, colorReset)
		}
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%sS(T)=%.2f..%.2f  %d bins  %s│%s%s mean=%.2f%s\n",
		colorGray, lo, hi, bins, colorMagenta, colorGray, colorReset, m.hist.TheoreticalMean, colorReset))
	for _, row := range grid {
		b.WriteString(strings.Join(row, ""))
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

// pathValueAt evaluates the right-continuous step function at time t.
func pathValueAt(points []process.Point, t float64) float64 {
	v := 0.0
	for _, p := range points {
		if p.T > t {
			break
		}
		v = p.V
	}
	return v
}

func (m tuiModel) renderSummary() string {
	if !m.haveRun {
		return fmt.Sprintf("%sSUMMARY%s no runs yet", colorBlue, colorReset)
	}
	return fmt.Sprintf("%sSUMMARY%s %sruns=%d%s %sarrivals=%d%s %sfinal=%.2f%s %smean=%.2f/%.2f%s %svar=%.2f/%.2f%s %selapsed=%dms%s",
		colorBlue, colorReset,
		colorGreen, m.runs, colorReset,
		colorWhite(), m.lastRun.Arrivals, colorReset,
		colorCyan, m.lastRun.PathFinal, colorReset,
		colorYellow, m.lastRun.EmpiricalMean, m.lastRun.TheoreticalMean, colorReset,
		colorMagenta, m.lastRun.EmpiricalVariance, m.lastRun.TheoreticalVariance, colorReset,
		colorGray, m.lastRun.ElapsedMS, colorReset)
}

func (m tuiModel) renderBottom() string {
	indicator := func(on bool) string {
		c := lipgloss.Color("9")
		if on {
			c = lipgloss.Color("10")
		}
		return lipgloss.NewStyle().Foreground(c).Render("●")
	}
	chart := "path"
	if m.chartMode == chartHistogram {
		chart = "histogram"
	}
	state := fmt.Sprintf("%sSTATE%s %slambda=%.2f%s %smu=%.2f%s %sT=%.0f%s %ssims=%d%s %schart=%s%s",
		colorBlue, colorReset,
		colorGreen, m.params.ArrivalRate, colorReset,
		colorYellow, m.params.JumpRate, colorReset,
		colorCyan, m.params.Horizon, colorReset,
		colorMagenta, m.params.Simulations, colorReset,
		colorGray, chart, colorReset)
	line := fmt.Sprintf("%s | Admin UI %s | Wrap %s | Scroll %s | Summary %s | Help %s",
		state, indicator(m.admin), indicator(m.wrap), indicator(m.autoscroll), indicator(m.summary), indicator(m.help))
	if m.summary {
		return fmt.Sprintf("%s\n%s", m.renderSummary(), line)
	}
	return line
}

func (m tuiModel) renderHelp() string {
	help := []string{
		"Compound Poisson Lab — keys",
		"",
		"  ←/→        select parameter",
		"  ↑/↓        adjust selected parameter by its step",
		"  r/enter    resimulate with the current parameters",
		"  tab        switch between path and histogram chart",
		"  s          toggle summary line",
		"  w          toggle log wrapping",
		"  a          toggle autoscroll",
		"  ?          toggle this help",
		"  q          quit",
		"",
		"Adjusting a parameter never recomputes on its own; only an",
		"explicit trigger regenerates the path and the histogram.",
		"",
		fmt.Sprintf("Last update: %s", time.Now().Format(time.RFC3339)),
	}
	return strings.Join(help, "\n")
}
