package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"offer_manager/models"
	"offer_manager/triage"
)

type tab int

type clearNotificationMsg time.Time

const notifyFor = 2 * time.Second

const (
	tabOffers tab = iota
	tabRejected
)

const (
	sourceWidth = 14
	nameWidth   = 56
	flagWidth   = 11
)

// Model is the triage screen. All writes go through the triage.Store.
type Model struct {
	store *triage.Store
	open  triage.Opener

	unavailable []triage.Anomaly
	vanished    []triage.Anomaly
	showAlert   bool

	activeTab     tab
	cursor        [2]int
	width, height int
	notification  string
	notifyErr     bool
	notifyUntil   time.Time

	keys keyMap
	help help.Model
}

func New(store *triage.Store, anomalies []triage.Anomaly, open triage.Opener) Model {
	unavailable, vanished := triage.SplitAnomalies(anomalies)
	return Model{
		store:       store,
		open:        open,
		unavailable: unavailable,
		vanished:    vanished,
		showAlert:   len(anomalies) > 0,
		keys:        newKeyMap(),
		help:        help.New(),
		height:      24,
	}
}

// Run blocks until the user quits.
func Run(store *triage.Store, anomalies []triage.Anomaly, open triage.Opener) error {
	p := tea.NewProgram(New(store, anomalies, open), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case clearNotificationMsg:
		if !time.Time(msg).Before(m.notifyUntil) {
			m.notification = ""
		}

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) && msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.showAlert {
			return m.updateAlert(msg)
		}
		return m.updateTable(msg)
	}

	return m, nil
}

// updateAlert handles the startup warning screen. Number keys open the
// matching failed source, the open key opens the first one, anything else
// dismisses it.
func (m Model) updateAlert(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	i := -1
	if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		i = int(s[0] - '1')
	} else if key.Matches(msg, m.keys.Open) {
		i = 0
	}
	if i >= 0 && i < len(m.unavailable) {
		src := m.unavailable[i]
		cmd := m.notifyResult("Opened "+src.Source, m.openURL(src.Endpoint))
		return m, cmd
	}
	m.showAlert = false
	return m, nil
}

func (m Model) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.rowCount()
	cur := &m.cursor[m.activeTab]
	var cmd tea.Cmd

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.NextTab):
		m.activeTab = (m.activeTab + 1) % 2
	case key.Matches(msg, m.keys.Up):
		if *cur > 0 {
			*cur--
		}
	case key.Matches(msg, m.keys.Down):
		if *cur < rows-1 {
			*cur++
		}
	case key.Matches(msg, m.keys.Top):
		*cur = 0
	case key.Matches(msg, m.keys.Bottom):
		if rows > 0 {
			*cur = rows - 1
		}
	case key.Matches(msg, m.keys.Open):
		if url := m.SelectedURL(); url != "" {
			cmd = m.notifyResult("Opened in browser", m.store.OpenSource(url))
		}
	case m.activeTab == tabOffers && key.Matches(msg, m.keys.Toggle):
		if url := m.SelectedURL(); url != "" {
			interesting, err := m.store.ToggleInteresting(url)
			if err == nil && interesting {
				cmd = m.notifyResult("Marked interesting", nil)
			} else {
				cmd = m.notifyResult("Unmarked", err)
			}
		}
	case m.activeTab == tabOffers:
		reason, ok := m.keys.rejectReason(msg)
		if !ok {
			break
		}
		if url := m.SelectedURL(); url != "" {
			cmd = m.notifyResult("Rejected: "+reason.Label(), m.store.Reject(url, reason))
		}
	case m.activeTab == tabRejected && key.Matches(msg, m.keys.Reinstate):
		if url := m.SelectedURL(); url != "" {
			cmd = m.notifyResult("Restored to offers", m.store.Reinstate(url))
		}
	}

	m.clampCursors()
	return m, cmd
}

func (m *Model) openURL(url string) error {
	if m.open == nil {
		return triage.ErrNoOpener
	}
	return m.open(url)
}

// notifyResult shows ok, or err if set, and returns the tick that clears it.
func (m *Model) notifyResult(ok string, err error) tea.Cmd {
	m.notifyErr = err != nil
	m.notification = ok
	if err != nil {
		m.notification = err.Error()
	}
	m.notifyUntil = time.Now().Add(notifyFor)
	return tea.Tick(notifyFor, func(t time.Time) tea.Msg {
		return clearNotificationMsg(t)
	})
}

func (m *Model) clampCursors() {
	newCount, rejectedCount := m.store.Counts()
	for i, n := range []int{newCount, rejectedCount} {
		if m.cursor[i] >= n {
			m.cursor[i] = n - 1
		}
		if m.cursor[i] < 0 {
			m.cursor[i] = 0
		}
	}
}

func (m Model) rowCount() int {
	newCount, rejectedCount := m.store.Counts()
	if m.activeTab == tabOffers {
		return newCount
	}
	return rejectedCount
}

// SelectedURL returns the URL under the cursor in the active tab, or "".
func (m Model) SelectedURL() string {
	cur := m.cursor[m.activeTab]
	if m.activeTab == tabOffers {
		listings := m.store.NewListings()
		if cur < len(listings) {
			return listings[cur].URL
		}
		return ""
	}
	listings := m.store.RejectedListings()
	if cur < len(listings) {
		return listings[cur].URL
	}
	return ""
}

func (m Model) View() string {
	if m.showAlert {
		return lipgloss.JoinVertical(lipgloss.Left, m.renderAlert(), m.renderStatusBar())
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.renderTabs(), m.renderContent(), m.renderStatusBar())
}

func (m Model) renderAlert() string {
	var b strings.Builder
	b.WriteString(AlertTitle.Render("Warning") + "\n\n")

	if len(m.unavailable) > 0 {
		b.WriteString("Some scrapers need to be updated:\n")
		for i, a := range m.unavailable {
			fmt.Fprintf(&b, "  %d  %s  %s\n", i+1, Link.Render(a.Source), Muted.Render(a.Endpoint))
			if a.Err != nil {
				fmt.Fprintf(&b, "     %s\n", Muted.Render(a.Err.Error()))
			}
		}
		b.WriteString("\n")
	}

	if len(m.vanished) > 0 {
		b.WriteString("Some interesting offers were removed:\n")
		for _, a := range m.vanished {
			b.WriteString(a.String() + "\n")
		}
		b.WriteString("\n")
	}

	if len(m.unavailable) > 0 {
		b.WriteString(Muted.Render("number or o: open source page, any other key: continue"))
	} else {
		b.WriteString(Muted.Render("press any key to continue"))
	}
	return AlertBorder.Render(b.String())
}

func (m Model) renderTabs() string {
	newCount, rejectedCount := m.store.Counts()
	names := []string{
		fmt.Sprintf("Offers (%d)", newCount),
		fmt.Sprintf("Rejected Offers (%d)", rejectedCount),
	}
	var rendered []string
	for i, name := range names {
		if tab(i) == m.activeTab {
			rendered = append(rendered, TabActive.Render(name))
		} else {
			rendered = append(rendered, TabInactive.Render(name))
		}
	}
	return Title.Render("Offer Manager") + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, rendered...) + "\n"
}

func (m Model) renderContent() string {
	if m.activeTab == tabOffers {
		return m.renderOffers()
	}
	return m.renderRejected()
}

func (m Model) renderOffers() string {
	header := []string{pad("Source", sourceWidth), pad("Offer", nameWidth), pad("Interesting", flagWidth)}
	for i, r := range models.Reasons {
		header = append(header, fmt.Sprintf("%d %s", i+1, r.Label()))
	}

	listings := m.store.NewListings()
	if len(listings) == 0 {
		return TableHeader.Render(strings.Join(header, " ")) + "\n" + Muted.Render("  no offers to review")
	}

	lines := []string{TableHeader.Render(strings.Join(header, " "))}
	start, end := m.window(len(listings))
	for i := start; i < end; i++ {
		l := listings[i]
		line := strings.Join([]string{
			pad(l.Source, sourceWidth),
			pad(l.Name, nameWidth),
			pad(checkbox(l.Interesting), flagWidth),
		}, " ")
		switch {
		case i == m.cursor[tabOffers]:
			line = TableSelected.Render(line)
		case l.Interesting:
			line = Interesting.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRejected() string {
	header := TableHeader.Render(strings.Join([]string{pad("Source", sourceWidth), pad("Offer", nameWidth), "Reason"}, " "))

	listings := m.store.RejectedListings()
	if len(listings) == 0 {
		return header + "\n" + Muted.Render("  nothing rejected yet")
	}

	lines := []string{header}
	start, end := m.window(len(listings))
	for i := start; i < end; i++ {
		l := listings[i]
		line := strings.Join([]string{pad(l.Source, sourceWidth), pad(l.Name, nameWidth), l.Reason.Label()}, " ")
		if i == m.cursor[tabRejected] {
			line = TableSelected.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// window returns the visible row range keeping the cursor on screen.
func (m Model) window(total int) (int, int) {
	visible := m.height - 7
	if visible < 1 {
		visible = 1
	}
	start := 0
	if cur := m.cursor[m.activeTab]; cur >= visible {
		start = cur - visible + 1
	}
	end := start + visible
	if end > total {
		end = total
	}
	return start, end
}

func (m Model) renderStatusBar() string {
	left := m.help.View(m.keys)
	right := ""
	if m.notification != "" {
		if m.notifyErr {
			right = NotificationError.Render(m.notification)
		} else {
			right = Notification.Render(m.notification)
		}
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 0 {
		gap = 0
	}

	return "\n" + StatusBar.Render(left) + lipgloss.NewStyle().Width(gap).Render("") + right
}

func checkbox(checked bool) string {
	if checked {
		return "☒"
	}
	return "☐"
}

// pad truncates or right-pads s to exactly width cells.
func pad(s string, width int) string {
	w := lipgloss.Width(s)
	if w > width {
		r := []rune(s)
		for len(r) > 0 && lipgloss.Width(string(r)) > width-1 {
			r = r[:len(r)-1]
		}
		return string(r) + "…"
	}
	return s + strings.Repeat(" ", width-w)
}
