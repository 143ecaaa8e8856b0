package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"confsched/internal/domain"
)

// viewState is the coordinator state machine: loading -> ready | error,
// with error -> loading again on explicit retry.
type viewState int

const (
	stateLoading viewState = iota
	stateReady
	stateError
)

type scheduleLoadedMsg struct {
	schedule *domain.Schedule
}

type scheduleErrMsg struct {
	err error
}

type favoritesMsg struct {
	favorites map[string]bool
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#2D5BFF")).
			Padding(0, 1)

	dayTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#767676")).
			Padding(0, 1)

	activeDayTabStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(lipgloss.Color("#874BFD")).
				Padding(0, 1)

	slotHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA"))

	liveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF5555"))

	cellStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#BBBBBB"))

	selectedCellStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(lipgloss.Color("#3C3C3C"))

	favoriteMarkStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFD700"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF5555"))

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(1, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#767676"))
)

// ScheduleModel is the view coordinator: it owns the fetched schedule, the
// active-day selection, the favorites filter, and the detail modal.
type ScheduleModel struct {
	scheduleSvc  domain.ScheduleService
	favoritesSvc domain.FavoritesService
	now          func() time.Time

	state  viewState
	errMsg string

	schedule  *domain.Schedule
	favorites map[string]bool

	activeDay     int // index into schedule.DayOrder
	favoritesOnly bool
	slotCursor    int
	cellCursor    int
	selected      *domain.Session // detail modal; nil when closed

	spin spinner.Model
	grid viewport.Model

	width  int
	height int
	sized  bool

	// pendingScrollSlot is the slot key to scroll to once the viewport has a
	// size; empty when no scroll is pending. Best effort only.
	pendingScrollSlot string
	slotLines         map[string]int
}

// NewScheduleModel builds the coordinator in its loading state.
func NewScheduleModel(scheduleSvc domain.ScheduleService, favoritesSvc domain.FavoritesService) ScheduleModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#874BFD"))

	return ScheduleModel{
		scheduleSvc:  scheduleSvc,
		favoritesSvc: favoritesSvc,
		now:          time.Now,
		state:        stateLoading,
		favorites:    map[string]bool{},
		spin:         sp,
		grid:         viewport.New(0, 0),
		slotLines:    map[string]int{},
	}
}

func (m ScheduleModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.loadScheduleCmd(), m.loadFavoritesCmd())
}

func (m ScheduleModel) loadScheduleCmd() tea.Cmd {
	svc := m.scheduleSvc
	return func() tea.Msg {
		sched, err := svc.LoadSchedule(context.Background())
		if err != nil {
			return scheduleErrMsg{err: err}
		}
		return scheduleLoadedMsg{schedule: sched}
	}
}

func (m ScheduleModel) loadFavoritesCmd() tea.Cmd {
	svc := m.favoritesSvc
	return func() tea.Msg {
		return favoritesMsg{favorites: svc.Load(context.Background())}
	}
}

func (m ScheduleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.sized = true

		headerHeight := 4
		footerHeight := 2
		m.grid.Width = m.width
		m.grid.Height = max(m.height-headerHeight-footerHeight, 1)
		m.refreshGrid()
		return m, nil

	case spinner.TickMsg:
		if m.state != stateLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case scheduleLoadedMsg:
		// Last response wins: a late retry result simply replaces state.
		m.state = stateReady
		m.errMsg = ""
		m.schedule = msg.schedule
		m.selectInitialDay()
		m.slotCursor = 0
		m.cellCursor = 0
		m.refreshGrid()
		m.requestInitialScroll()
		return m, nil

	case scheduleErrMsg:
		m.state = stateError
		m.errMsg = viewerMessage(msg.err)
		return m, nil

	case favoritesMsg:
		m.favorites = msg.favorites
		m.refreshGrid()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m ScheduleModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// The detail modal captures input while open.
	if m.selected != nil {
		switch key {
		case "esc", "enter", "q":
			m.selected = nil
		case "f":
			m.favorites = m.favoritesSvc.Toggle(context.Background(), m.selected.ID)
			m.refreshGrid()
		case "ctrl+c":
			return m, tea.Quit
		}
		return m, nil
	}

	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "r":
		if m.state == stateError {
			m.state = stateLoading
			m.errMsg = ""
			return m, tea.Batch(m.spin.Tick, m.loadScheduleCmd())
		}

	case "tab", "right", "l":
		if m.state == stateReady && m.schedule != nil && len(m.schedule.DayOrder) > 0 {
			m.activeDay = (m.activeDay + 1) % len(m.schedule.DayOrder)
			m.slotCursor = 0
			m.cellCursor = 0
			m.refreshGrid()
			m.grid.GotoTop()
		}

	case "shift+tab", "left", "h":
		if m.state == stateReady && m.schedule != nil && len(m.schedule.DayOrder) > 0 {
			m.activeDay = (m.activeDay - 1 + len(m.schedule.DayOrder)) % len(m.schedule.DayOrder)
			m.slotCursor = 0
			m.cellCursor = 0
			m.refreshGrid()
			m.grid.GotoTop()
		}

	case "down", "j":
		if slots := m.visibleSlots(); m.slotCursor < len(slots)-1 {
			m.slotCursor++
			m.cellCursor = 0
			m.refreshGrid()
			m.scrollToCursor()
		}

	case "up", "k":
		if m.slotCursor > 0 {
			m.slotCursor--
			m.cellCursor = 0
			m.refreshGrid()
			m.scrollToCursor()
		}

	case "n":
		if cells := m.visibleCells(m.cursorSlot()); m.cellCursor < len(cells)-1 {
			m.cellCursor++
			m.refreshGrid()
		}

	case "p":
		if m.cellCursor > 0 {
			m.cellCursor--
			m.refreshGrid()
		}

	case "o":
		if m.state == stateReady {
			m.favoritesOnly = !m.favoritesOnly
			m.slotCursor = 0
			m.cellCursor = 0
			m.refreshGrid()
			m.grid.GotoTop()
		}

	case "f":
		if s := m.cursorSession(); s != nil {
			m.favorites = m.favoritesSvc.Toggle(context.Background(), s.ID)
			m.refreshGrid()
		}

	case "enter":
		// Only one session may be open at a time.
		m.selected = m.cursorSession()

	case "pgdown":
		m.grid.HalfViewDown()

	case "pgup":
		m.grid.HalfViewUp()
	}

	return m, nil
}

// selectInitialDay picks today's date when the schedule has it, otherwise
// the chronologically earliest day.
func (m *ScheduleModel) selectInitialDay() {
	m.activeDay = 0
	if m.schedule == nil {
		return
	}
	today := m.now().UTC().Format("2006-01-02")
	for i, date := range m.schedule.DayOrder {
		if date == today {
			m.activeDay = i
			return
		}
	}
}

// requestInitialScroll targets the first live slot of today, or the next
// upcoming one. Advisory: when the viewport has no size yet the target is
// remembered and applied on the first WindowSizeMsg; a missing target is a
// no-op.
func (m *ScheduleModel) requestInitialScroll() {
	day := m.activeDayIndex()
	if day == nil || day.Date != m.now().UTC().Format("2006-01-02") {
		return
	}
	now := m.now()
	var target string
	for _, slot := range day.TimeSlots {
		if m.slotIsLive(day, slot, now) {
			target = slot
			break
		}
		if target == "" {
			if t, err := domain.SlotTime(slot); err == nil && t.After(now) {
				target = slot
			}
		}
	}
	if target == "" {
		return
	}
	m.pendingScrollSlot = target
	m.applyPendingScroll()
}

func (m *ScheduleModel) applyPendingScroll() {
	if m.pendingScrollSlot == "" || !m.sized {
		return
	}
	if line, ok := m.slotLines[m.pendingScrollSlot]; ok {
		m.grid.SetYOffset(line)
		m.pendingScrollSlot = ""
	}
}

func (m *ScheduleModel) scrollToCursor() {
	slots := m.visibleSlots()
	if m.slotCursor >= len(slots) {
		return
	}
	if line, ok := m.slotLines[slots[m.slotCursor]]; ok {
		if line < m.grid.YOffset || line >= m.grid.YOffset+m.grid.Height {
			m.grid.SetYOffset(line)
		}
	}
}

func (m *ScheduleModel) activeDayIndex() *domain.DayIndex {
	if m.schedule == nil || m.activeDay >= len(m.schedule.DayOrder) {
		return nil
	}
	return m.schedule.Days[m.schedule.DayOrder[m.activeDay]]
}

func (m *ScheduleModel) visibleSlots() []string {
	return domain.VisibleSlots(m.activeDayIndex(), m.favorites, m.favoritesOnly)
}

// visibleCells returns the rooms of the active day whose cell at slot is
// visible, in room order.
func (m *ScheduleModel) visibleCells(slot string) []string {
	day := m.activeDayIndex()
	if day == nil || slot == "" {
		return nil
	}
	var rooms []string
	for _, room := range day.Rooms {
		if domain.IsVisible(day, slot, room, m.favorites, m.favoritesOnly) {
			rooms = append(rooms, room)
		}
	}
	return rooms
}

func (m *ScheduleModel) cursorSlot() string {
	slots := m.visibleSlots()
	if m.slotCursor >= len(slots) {
		return ""
	}
	return slots[m.slotCursor]
}

func (m *ScheduleModel) cursorSession() *domain.Session {
	day := m.activeDayIndex()
	slot := m.cursorSlot()
	cells := m.visibleCells(slot)
	if day == nil || slot == "" || m.cellCursor >= len(cells) {
		return nil
	}
	s, _ := day.Session(slot, cells[m.cellCursor])
	return s
}

func (m *ScheduleModel) slotIsLive(day *domain.DayIndex, slot string, now time.Time) bool {
	for _, s := range day.SessionMap[slot] {
		if s.IsLiveAt(now) {
			return true
		}
	}
	return false
}

// refreshGrid rebuilds the viewport content from the current day, favorites,
// and cursor. Recompute-on-mutation: every state change funnels through here.
func (m *ScheduleModel) refreshGrid() {
	day := m.activeDayIndex()
	if day == nil {
		m.grid.SetContent("")
		return
	}

	now := m.now()
	slots := m.visibleSlots()
	m.slotLines = make(map[string]int, len(slots))

	if len(slots) == 0 {
		if m.favoritesOnly {
			m.grid.SetContent(helpStyle.Render("No favorited sessions on this day."))
		} else {
			m.grid.SetContent(helpStyle.Render("No sessions on this day."))
		}
		return
	}

	var b strings.Builder
	line := 0
	for i, slot := range slots {
		m.slotLines[slot] = line

		header := slotLabel(slot)
		if m.slotIsLive(day, slot, now) {
			header += "  " + liveStyle.Render("● live")
		}
		b.WriteString(slotHeaderStyle.Render(header))
		b.WriteString("\n")
		line++

		for j, room := range m.visibleCells(slot) {
			s, ok := day.Session(slot, room)
			if !ok {
				continue
			}
			mark := "  "
			if m.favorites[s.ID] {
				mark = favoriteMarkStyle.Render("★ ")
			}
			text := fmt.Sprintf("%s%-14s %s", mark, room, s.Title)
			if names := s.SpeakerNames(); len(names) > 0 {
				text += " · " + strings.Join(names, ", ")
			}
			style := cellStyle
			if i == m.slotCursor && j == m.cellCursor {
				style = selectedCellStyle
			}
			b.WriteString("  " + style.Render(text))
			b.WriteString("\n")
			line++
		}

		b.WriteString("\n")
		line++
	}

	m.grid.SetContent(b.String())
	m.applyPendingScroll()
}

func (m ScheduleModel) View() string {
	switch m.state {
	case stateLoading:
		return fmt.Sprintf("\n  %s Loading schedule...\n\n  %s\n",
			m.spin.View(),
			helpStyle.Render("q: quit"))

	case stateError:
		return fmt.Sprintf("\n  %s\n\n  %s\n",
			errorStyle.Render(m.errMsg),
			helpStyle.Render("r: retry · q: quit"))
	}

	if m.selected != nil {
		return m.headerView() + "\n" + m.modalView() + "\n" + m.footerView()
	}
	return m.headerView() + "\n" + m.grid.View() + "\n" + m.footerView()
}

func (m ScheduleModel) headerView() string {
	title := titleStyle.Render("confsched")
	if m.schedule == nil {
		return title + "\n"
	}

	var tabs []string
	for i, date := range m.schedule.DayOrder {
		label := date
		if day := m.schedule.Days[date]; day != nil {
			label = day.Label
		}
		if i == m.activeDay {
			tabs = append(tabs, activeDayTabStyle.Render(label))
		} else {
			tabs = append(tabs, dayTabStyle.Render(label))
		}
	}

	filter := ""
	if m.favoritesOnly {
		filter = "  " + favoriteMarkStyle.Render("★ favorites only")
	}
	return title + filter + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, tabs...) + "\n"
}

func (m ScheduleModel) footerView() string {
	return helpStyle.Render("←/→: day · ↑/↓: slot · n/p: room · enter: detail · f: favorite · o: filter favorites · q: quit")
}

func (m ScheduleModel) modalView() string {
	s := m.selected
	var b strings.Builder

	b.WriteString(slotHeaderStyle.Render(s.Title))
	b.WriteString("\n\n")

	if s.HasStart() {
		b.WriteString(fmt.Sprintf("When:    %s, %s\n",
			s.StartsAt.UTC().Format("Monday, January 2"),
			s.StartsAt.UTC().Format("15:04")))
	}
	if s.HasRoom() {
		b.WriteString(fmt.Sprintf("Room:    %s\n", s.Room))
	}
	if s.Length > 0 {
		b.WriteString(fmt.Sprintf("Length:  %d min\n", s.Length))
	}
	if s.Format != "" {
		b.WriteString(fmt.Sprintf("Format:  %s\n", s.Format))
	}
	if names := s.SpeakerNames(); len(names) > 0 {
		b.WriteString(fmt.Sprintf("Speakers: %s\n", strings.Join(names, ", ")))
	}
	if m.favorites[s.ID] {
		b.WriteString(favoriteMarkStyle.Render("★ favorited"))
		b.WriteString("\n")
	}
	if s.Abstract != "" {
		b.WriteString("\n")
		b.WriteString(s.Abstract)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("f: favorite · esc: close"))

	return modalStyle.Render(b.String())
}

// slotLabel renders a slot key as a wall-clock label.
func slotLabel(slot string) string {
	t, err := domain.SlotTime(slot)
	if err != nil {
		return slot
	}
	return t.UTC().Format("15:04")
}

// viewerMessage maps fetch errors onto the blocking error screen's text.
func viewerMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrMalformedFeed):
		return "The schedule feed returned data we couldn't read."
	case errors.Is(err, domain.ErrFeedUnavailable):
		return "Couldn't reach the schedule feed."
	default:
		return fmt.Sprintf("Something went wrong: %v", err)
	}
}
