package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/danielolaszy/jiradesk/pkg/models"
)

const displayDate = "2006-01-02"
const displayTime = "2006-01-02 15:04"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	keyStyle = lipgloss.NewStyle().
			Bold(true).
			Width(12)
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F1C40F"))
	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#50FA7B"))
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

// sprintGroup is the tickets of one sprint, in listing order.
type sprintGroup struct {
	Sprint  string
	Tickets []models.Ticket
}

// groupBySprint groups tickets by sprint name. Groups appear in the order
// their first ticket does.
func groupBySprint(tickets []models.Ticket) []sprintGroup {
	var groups []sprintGroup
	index := make(map[string]int)
	for _, t := range tickets {
		i, ok := index[t.Sprint]
		if !ok {
			i = len(groups)
			index[t.Sprint] = i
			groups = append(groups, sprintGroup{Sprint: t.Sprint})
		}
		groups[i].Tickets = append(groups[i].Tickets, t)
	}
	return groups
}

func renderTicketLine(t models.Ticket) string {
	return fmt.Sprintf("%s %s %s", keyStyle.Render(t.Key), t.Summary, statusStyle.Render("["+t.Status+"]"))
}

func renderTickets(tickets []models.Ticket) string {
	if len(tickets) == 0 {
		return mutedStyle.Render("No open tickets.")
	}

	var sections []string
	for _, g := range groupBySprint(tickets) {
		lines := []string{titleStyle.Render(fmt.Sprintf("%s (%d)", g.Sprint, len(g.Tickets)))}
		for _, t := range g.Tickets {
			lines = append(lines, renderTicketLine(t))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}
	return strings.Join(sections, "\n\n")
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return mutedStyle.Render("none")
	}
	return s
}

func renderSnapshot(key string, snap models.IssueFieldSnapshot) string {
	points := ""
	if snap.StoryPoints != nil {
		points = strconv.FormatFloat(*snap.StoryPoints, 'f', -1, 64)
	}
	due := ""
	if snap.DueDate != nil {
		due = snap.DueDate.Format(displayDate)
	}
	sprint := snap.SprintName
	if snap.SprintID != nil {
		sprint = fmt.Sprintf("%s (#%d)", snap.SprintName, *snap.SprintID)
	}

	fields := []string{
		titleStyle.Render(key),
		keyStyle.Render("Assignee") + orNone(snap.AssigneeDisplayName),
		keyStyle.Render("Points") + orNone(points),
		keyStyle.Render("Due") + orNone(due),
		keyStyle.Render("Sprint") + orNone(sprint),
	}
	description := snap.Description
	if description == "" {
		description = mutedStyle.Render("No description.")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		strings.Join(fields, "\n"),
		boxStyle.Render(description))
}

func renderComments(comments []models.Comment) string {
	if len(comments) == 0 {
		return mutedStyle.Render("No comments.")
	}

	var out []string
	for _, c := range comments {
		head := fmt.Sprintf("%s %s %s", titleStyle.Render(c.Author), mutedStyle.Render(c.Created.Local().Format(displayTime)), mutedStyle.Render("#"+c.ID))
		out = append(out, head+"\n"+c.Body)
	}
	return strings.Join(out, "\n\n")
}

func renderHistory(history []models.HistoryEntry) string {
	if len(history) == 0 {
		return mutedStyle.Render("No changes.")
	}

	var out []string
	for _, h := range history {
		out = append(out, fmt.Sprintf("%s %s %s: %s -> %s",
			mutedStyle.Render(h.When.Local().Format(displayTime)),
			h.Author,
			titleStyle.Render(h.Field),
			orNone(h.From),
			orNone(h.To)))
	}
	return strings.Join(out, "\n")
}

func renderTransitions(transitions []models.Transition) string {
	if len(transitions) == 0 {
		return mutedStyle.Render("No transitions available.")
	}

	var out []string
	for _, t := range transitions {
		out = append(out, keyStyle.Render(t.ID)+t.Name)
	}
	return strings.Join(out, "\n")
}

func renderSprint(s *models.ActiveSprint) string {
	if s == nil {
		return mutedStyle.Render("No active sprint.")
	}
	line := fmt.Sprintf("%s %s", titleStyle.Render(s.Name), mutedStyle.Render(fmt.Sprintf("#%d", s.ID)))
	if s.Start != nil {
		line += mutedStyle.Render(" started " + s.Start.Local().Format(displayDate))
	}
	return line
}
