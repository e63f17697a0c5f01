package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/companion/internal/news"
	"github.com/abelbrown/companion/internal/schedule"
	"github.com/abelbrown/companion/internal/timeleft"
)

// Pane identifies which list has focus.
type Pane int

const (
	PaneSchedule Pane = iota
	PaneMedications
	PaneNews
)

// actionTimeout bounds any backend call started from a keypress.
const actionTimeout = 15 * time.Second

// App is the root Bubble Tea model. It reads directly from the stores on
// every render; the stores own the data, the model owns only focus and
// cursor state.
type App struct {
	schedule *schedule.Store
	news     *news.Store

	// refreshNow triggers a coordinator cycle; results arrive as
	// ScheduleRefreshed/NewsRefreshed messages.
	refreshNow func()

	spinner   spinner.Model
	search    textinput.Model
	searching bool
	pane      Pane
	cursor    int
	width     int
	height    int
	errLine   string

	// now is injectable for tests.
	now func() time.Time
}

// NewApp creates the root model.
func NewApp(scheduleStore *schedule.Store, newsStore *news.Store, refreshNow func()) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorHighlight)

	input := textinput.New()
	input.Placeholder = "search news"
	input.CharLimit = 80

	return App{
		schedule:   scheduleStore,
		news:       newsStore,
		refreshNow: refreshNow,
		spinner:    sp,
		search:     input,
		now:        time.Now,
	}
}

func (a App) Init() tea.Cmd {
	return a.spinner.Tick
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case ScheduleRefreshed:
		if msg.Err != nil {
			a.errLine = msg.Err.Error()
		} else {
			a.errLine = ""
		}
		a.clampCursor()
		return a, nil

	case NewsRefreshed:
		if msg.Err != nil {
			a.errLine = msg.Err.Error()
		}
		a.clampCursor()
		return a, nil

	case MedicationToggled:
		if msg.Err != nil {
			// The store already rolled the flag back; just say so.
			a.errLine = msg.Err.Error()
		}
		return a, nil

	case RefreshTick:
		if a.refreshNow != nil {
			go a.refreshNow()
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.searching {
		switch msg.String() {
		case "esc":
			a.searching = false
			a.search.Blur()
			return a, nil
		case "enter":
			query := strings.TrimSpace(a.search.Value())
			a.searching = false
			a.search.Blur()
			if query == "" {
				return a, nil
			}
			store := a.news
			return a, func() tea.Msg {
				ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
				defer cancel()
				return NewsRefreshed{Err: store.Search(ctx, query, "")}
			}
		}
		var cmd tea.Cmd
		a.search, cmd = a.search.Update(msg)
		return a, cmd
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit

	case "tab":
		a.pane = (a.pane + 1) % 3
		a.cursor = 0
		return a, nil

	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil

	case "down", "j":
		a.cursor++
		a.clampCursor()
		return a, nil

	case "r":
		return a.Update(RefreshTick{})

	case "/":
		if a.pane != PaneNews {
			return a, nil
		}
		a.searching = true
		a.search.SetValue("")
		return a, a.search.Focus()

	case "t":
		if a.pane != PaneMedications {
			return a, nil
		}
		meds := a.schedule.Medications()
		if a.cursor >= len(meds) {
			return a, nil
		}
		id := meds[a.cursor].ID
		store := a.schedule
		return a, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
			defer cancel()
			return MedicationToggled{ID: id, Err: store.ToggleTaken(ctx, id)}
		}

	case "enter":
		switch a.pane {
		case PaneMedications:
			return a.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
		case PaneSchedule:
			items := a.schedule.Upcoming()
			if a.cursor >= len(items) || items[a.cursor].Kind != schedule.KindEvent {
				return a, nil
			}
			id := items[a.cursor].ID
			store := a.schedule
			return a, func() tea.Msg {
				ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
				defer cancel()
				return ScheduleRefreshed{Err: store.JoinEvent(ctx, id)}
			}
		}
	}
	return a, nil
}

// clampCursor keeps the cursor inside the focused list after the backing
// collection shrinks.
func (a *App) clampCursor() {
	max := a.paneLen() - 1
	if max < 0 {
		max = 0
	}
	if a.cursor > max {
		a.cursor = max
	}
}

func (a App) paneLen() int {
	switch a.pane {
	case PaneMedications:
		return len(a.schedule.Medications())
	case PaneNews:
		return len(a.news.Articles())
	default:
		return len(a.schedule.Upcoming())
	}
}

func (a App) View() string {
	var b strings.Builder

	b.WriteString(a.viewHeader())
	b.WriteString("\n")

	if a.searching {
		b.WriteString(a.search.View())
		b.WriteString("\n")
	}

	switch a.pane {
	case PaneMedications:
		b.WriteString(a.viewMedications())
	case PaneNews:
		b.WriteString(a.viewNews())
	default:
		b.WriteString(a.viewSchedule())
	}

	if a.errLine != "" {
		b.WriteString("\n")
		b.WriteString(ErrorLine.Render("! " + a.errLine))
	}
	b.WriteString("\n")
	b.WriteString(a.viewStatusBar())
	return b.String()
}

func (a App) viewHeader() string {
	titles := []string{"Schedule", "Medications", "News"}
	var tabs []string
	for i, title := range titles {
		if Pane(i) == a.pane {
			tabs = append(tabs, TitleBar.Render(title))
		} else {
			tabs = append(tabs, NormalItem.Render(title))
		}
	}
	line := strings.Join(tabs, " ")
	if a.schedule.Loading() || a.news.State().Status == news.StatusLoading {
		line += " " + a.spinner.View()
	}
	return line
}

func (a App) viewSchedule() string {
	items := a.schedule.Upcoming()
	if len(items) == 0 {
		return NormalItem.Render("Nothing scheduled.")
	}

	now := a.now()
	var rows []string
	for i, item := range items {
		label := item.Title
		if item.Location != "" {
			label += " @ " + item.Location
		}
		if countdown := item.Countdown(now); countdown != "" {
			if countdown == timeleft.Overdue {
				label += "  " + OverdueLabel.Render(countdown)
			} else {
				label += "  " + CountdownLabel.Render(countdown)
			}
		}
		rows = append(rows, a.renderRow(i, label, false))
	}
	if state := a.schedule.AppointmentsState(); state.Status == schedule.StatusFailed {
		rows = append(rows, ErrorLine.Render("showing last known schedule: "+state.Err))
	}
	return strings.Join(rows, "\n")
}

func (a App) viewMedications() string {
	meds := a.schedule.Medications()
	if len(meds) == 0 {
		return NormalItem.Render("No medications on file.")
	}

	var rows []string
	for i, med := range meds {
		check := "[ ]"
		if med.Taken {
			check = "[x]"
		}
		label := fmt.Sprintf("%s %s", check, med.Title)
		if med.Dosage != "" {
			label += " " + med.Dosage
		}
		if med.TimeOfDay != "" {
			label += " at " + med.TimeOfDay
		}
		rows = append(rows, a.renderRow(i, label, med.Taken))
	}
	if state := a.schedule.MedicationsState(); state.Status == schedule.StatusFailed {
		rows = append(rows, ErrorLine.Render("showing last known medications: "+state.Err))
	}
	return strings.Join(rows, "\n")
}

func (a App) viewNews() string {
	articles := a.news.Articles()
	if len(articles) == 0 {
		return NormalItem.Render("No news yet.")
	}

	var rows []string
	for i, article := range articles {
		label := CategoryBadge.Render(article.Category) + article.Title
		if article.SourceName != "" {
			label += StatusBarText.Render(" - " + article.SourceName)
		}
		rows = append(rows, a.renderRow(i, label, false))
	}
	if state := a.news.State(); state.Status == news.StatusFailed {
		rows = append(rows, ErrorLine.Render("showing last results: "+state.Err))
	}
	return strings.Join(rows, "\n")
}

func (a App) renderRow(i int, label string, done bool) string {
	switch {
	case i == a.cursor:
		return SelectedItem.Render(label)
	case done:
		return TakenItem.Render(label)
	default:
		return NormalItem.Render(label)
	}
}

func (a App) viewStatusBar() string {
	hints := []string{
		StatusBarKey.Render("tab") + StatusBarText.Render(" switch"),
		StatusBarKey.Render("r") + StatusBarText.Render(" refresh"),
		StatusBarKey.Render("q") + StatusBarText.Render(" quit"),
	}
	switch a.pane {
	case PaneMedications:
		hints = append(hints, StatusBarKey.Render("t")+StatusBarText.Render(" taken"))
	case PaneNews:
		hints = append(hints, StatusBarKey.Render("/")+StatusBarText.Render(" search"))
	case PaneSchedule:
		hints = append(hints, StatusBarKey.Render("enter")+StatusBarText.Render(" join event"))
	}
	return StatusBar.Render(strings.Join(hints, "  "))
}
