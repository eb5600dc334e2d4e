package cli

import (
	"context"
	"fmt"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/raphaelgruber/flowmind/internal/client"
)

// watchHistory is how many feed lines stay on screen.
const watchHistory = 15

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the live session event feed",
	Long: `Follow the session's event feed over WebSocket: tasks created, drafts
filed and connections discovered, as they happen. Useful next to a
second terminal or the web UI.`,
	RunE: runWatch,
}

// Theme holds the color scheme for the feed display.
type Theme struct {
	Task       lipgloss.Color
	Draft      lipgloss.Color
	Connection lipgloss.Color
	Error      lipgloss.Color
	Hint       lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Task:       lipgloss.Color("#00D787"), // green
	Draft:      lipgloss.Color("#5FAFD7"), // light blue
	Connection: lipgloss.Color("#D7AF5F"), // amber
	Error:      lipgloss.Color("#FF005F"), // red
	Hint:       lipgloss.Color("#6C6C6C"), // dim gray
}

// Style functions for dynamic theming
func (t Theme) taskStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Task)
}

func (t Theme) draftStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Draft)
}

func (t Theme) connectionStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Connection).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// eventMsg carries one feed event into the model.
type eventMsg struct {
	ev client.Event
}

// feedErrMsg reports a dropped feed connection.
type feedErrMsg struct {
	err error
}

// watchModel is the bubbletea model for the live feed.
type watchModel struct {
	spinner  spinner.Model
	theme    Theme
	lines    []string
	err      error
	quitting bool
}

func newWatchModel() watchModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return watchModel{
		spinner: sp,
		theme:   defaultTheme,
	}
}

// Init returns the initial command (start the spinner).
func (m watchModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages and returns the updated model.
func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}

	case eventMsg:
		m.lines = append(m.lines, m.renderEvent(msg.ev))
		if len(m.lines) > watchHistory {
			m.lines = m.lines[len(m.lines)-watchHistory:]
		}
		return m, nil

	case feedErrMsg:
		m.err = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the feed display.
func (m watchModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

// renderContent builds the display string.
func (m watchModel) renderContent() string {
	if m.err != nil {
		return m.theme.errorStyle().Render(fmt.Sprintf("✗ Feed closed: %s\n", m.err))
	}
	if m.quitting {
		return ""
	}

	header := fmt.Sprintf("%s Watching session events", m.spinner.View())
	hint := m.theme.hintStyle().Render("Press q to stop")

	body := ""
	for _, line := range m.lines {
		body += line + "\n"
	}
	if body == "" {
		body = m.theme.hintStyle().Render("Waiting for events...") + "\n"
	}

	return fmt.Sprintf("%s\n\n%s%s\n", header, body, hint)
}

// renderEvent formats one event as a feed line.
func (m watchModel) renderEvent(ev client.Event) string {
	stamp := m.theme.hintStyle().Render(ev.At.Local().Format("15:04:05"))

	switch ev.Kind {
	case "task_created":
		text := ""
		if ev.Task != nil {
			text = fmt.Sprintf("%s (%s, due %s)", ev.Task.Text, ev.Task.Priority, formatDue(ev.Task.DueDate))
		}
		return fmt.Sprintf("%s %s %s", stamp, m.theme.taskStyle().Render("task "), text)

	case "draft_filed":
		text := ""
		if ev.Entry != nil {
			text = ev.Entry.CleanText
		}
		return fmt.Sprintf("%s %s %s", stamp, m.theme.draftStyle().Render("draft"), text)

	case "connections_found":
		return fmt.Sprintf("%s %s %d new connection(s)", stamp, m.theme.connectionStyle().Render("link "), len(ev.Connections))

	default:
		return fmt.Sprintf("%s %s", stamp, ev.Kind)
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := requireLogin(); err != nil {
		return err
	}

	p := tea.NewProgram(newWatchModel())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Feed events into the program from a background reader.
	go func() {
		err := api.Watch(ctx, func(ev client.Event) error {
			p.Send(eventMsg{ev: ev})
			return nil
		})
		if err != nil && ctx.Err() == nil {
			p.Send(feedErrMsg{err: err})
		}
	}()

	finalModel, err := p.Run()
	cancel()
	if err != nil {
		return fmt.Errorf("feed UI error: %w", err)
	}

	if m, ok := finalModel.(watchModel); ok && m.err != nil {
		return m.err
	}
	return nil
}
