package sim

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"aether-sim/internal/config"
	"aether-sim/internal/telemetry"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

type decisionMsg struct{ telemetry.DecisionRow }

type summaryMsg struct{ telemetry.RoundSummaryRow }

// maxLogLines caps the round log kept by the TUI.
const maxLogLines = 500

// TUIWriter renders decisions using a bubbletea TUI: the current round's
// clusters in a table above a scrolling log of round summaries.
type TUIWriter struct {
	program    teaProgram
	done       chan struct{}
	sendSignal atomic.Bool
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter.
func NewTUIWriter(cfg *config.Config) *TUIWriter {
	w := &TUIWriter{done: make(chan struct{})}
	w.sendSignal.Store(true)
	p := tea.NewProgram(newTUIModel(cfg), tea.WithAltScreen())
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

// WriteDecision implements DecisionWriter.
func (w *TUIWriter) WriteDecision(row telemetry.DecisionRow) error {
	w.program.Send(decisionMsg{row})
	return nil
}

// WriteBatch sends multiple decision rows.
func (w *TUIWriter) WriteBatch(rows []telemetry.DecisionRow) error {
	for _, r := range rows {
		_ = w.WriteDecision(r)
	}
	return nil
}

// WriteSummary implements SummaryWriter.
func (w *TUIWriter) WriteSummary(row telemetry.RoundSummaryRow) error {
	w.program.Send(summaryMsg{row})
	return nil
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
	cfg    *config.Config
	table  table.Model
	vp     viewport.Model
	round  int
	rows   []table.Row
	logs   []string
	wrap   bool
	height int
}

func newTUIModel(cfg *config.Config) tuiModel {
	cols := []table.Column{
		{Title: "Cluster", Width: 8},
		{Title: "Members", Width: 8},
		{Title: "Mode", Width: 8},
		{Title: "Conf", Width: 6},
		{Title: "LQI", Width: 6},
		{Title: "Uplink", Width: 7},
		{Title: "Role", Width: 10},
		{Title: "Energy (J)", Width: 11},
	}
	return tuiModel{
		cfg:   cfg,
		table: table.New(table.WithColumns(cols), table.WithHeight(10)),
		vp:    viewport.New(0, 0),
		round: -1,
	}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetWidth(msg.Width)
		m.vp.Width = msg.Width
		m.height = msg.Height
		m.resize()
		m.refreshViewport()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "w":
			m.wrap = !m.wrap
			m.refreshViewport()
		default:
			var cmd tea.Cmd
			m.vp, cmd = m.vp.Update(msg)
			return m, cmd
		}
	case decisionMsg:
		if msg.Round != m.round {
			m.round = msg.Round
			m.rows = nil
		}
		m.rows = append(m.rows, decisionTableRow(msg.DecisionRow))
		m.table.SetRows(m.rows)
		m.resize()
	case summaryMsg:
		m.logs = append(m.logs, summaryLine(msg.RoundSummaryRow))
		if len(m.logs) > maxLogLines {
			m.logs = m.logs[len(m.logs)-maxLogLines:]
		}
		m.refreshViewport()
	}
	return m, nil
}

func (m *tuiModel) resize() {
	tableHeight := len(m.rows) + 1
	if limit := m.height / 2; limit > 1 && tableHeight > limit {
		tableHeight = limit
	}
	m.table.SetHeight(tableHeight)
	h := m.height - lipgloss.Height(m.renderHeader()) - lipgloss.Height(m.table.View()) - 4
	if h < 0 {
		h = 0
	}
	m.vp.Height = h
}

func (m *tuiModel) refreshViewport() {
	lines := make([]string, 0, len(m.logs))
	for _, l := range m.logs {
		if m.wrap && m.vp.Width > 0 {
			lines = append(lines, wordwrap.String(l, m.vp.Width))
		} else {
			lines = append(lines, l)
		}
	}
	m.vp.SetContent(strings.Join(lines, "\n"))
	m.vp.GotoBottom()
}

func (m tuiModel) View() string {
	divider := strings.Repeat("─", m.vp.Width)
	return strings.Join([]string{
		m.renderHeader(),
		divider,
		m.table.View(),
		divider,
		m.vp.View(),
		dimStyle.Render("q quit • w wrap • ↑/↓ scroll"),
	}, "\n")
}

func (m tuiModel) renderHeader() string {
	profile := "default"
	if m.cfg != nil {
		profile = m.cfg.Profile
	}
	return titleStyle.Render(fmt.Sprintf("aether-sim round %d", m.round)) + "  " + dimStyle.Render("profile="+profile)
}

func decisionTableRow(r telemetry.DecisionRow) table.Row {
	uplink := "bs"
	if r.UplinkID != telemetry.UplinkBaseStation {
		uplink = strconv.Itoa(r.UplinkID)
	}
	var roles []string
	if r.Gateway {
		roles = append(roles, "gw")
	}
	if r.Backbone {
		roles = append(roles, "bb")
	}
	if r.Forced {
		roles = append(roles, "forced")
	}
	return table.Row{
		strconv.Itoa(r.ClusterID),
		strconv.Itoa(r.Members),
		r.Mode,
		fmt.Sprintf("%.2f", r.Confidence),
		fmt.Sprintf("%.2f", r.LQI),
		uplink,
		strings.Join(roles, ","),
		fmt.Sprintf("%.3g", r.PlannedEnergyJ),
	}
}

func summaryLine(r telemetry.RoundSummaryRow) string {
	line := fmt.Sprintf("round %d: %d clusters, direct=%d chain=%d two_hop=%d, gateways=%d backbone=%d, lqi %.2f, energy %.3gJ",
		r.Round, r.Clusters, r.DirectCount, r.ChainCount, r.TwoHopCount, r.Gateways, r.BackboneSize, r.LQIMean, r.PlannedEnergyJ)
	if r.SafetyActive {
		line += alertStyle.Render(fmt.Sprintf(" safety gate active (%d bad rounds)", r.BadRounds))
	}
	return line
}
