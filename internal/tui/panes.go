package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/manav03panchal/aircare/internal/model"
	"github.com/manav03panchal/aircare/internal/output"
	"github.com/manav03panchal/aircare/internal/parser"
)

// UpcomingPane lists the calendar entries with a cursor.
type UpcomingPane struct {
	Entries []model.CalendarEntry
	Cursor  int
	Width   int
	Now     time.Time
}

// View renders the pane.
func (p UpcomingPane) View() string {
	var content strings.Builder
	content.WriteString(StyleTitle.Render(fmt.Sprintf("Upcoming maintenance (%d)", len(p.Entries))))
	content.WriteString("\n")

	if len(p.Entries) == 0 {
		content.WriteString(StyleMuted.Render("Nothing scheduled from today on."))
		return StyleListBox.Width(boxWidth(p.Width)).Render(content.String())
	}

	for i, e := range p.Entries {
		when := output.FormatWhen(e.ScheduledAt)
		rel := output.FormatRelative(e.ScheduledAt, p.Now)
		line := fmt.Sprintf("%-22s %-12s %s", when, rel, e.Title)
		if tasks := e.Source.TaskList(); tasks != "" {
			line += "  " + StyleMuted.Render(tasks)
		}

		content.WriteString("\n")
		if i == p.Cursor {
			content.WriteString(StyleSelected.Render("› " + line))
		} else {
			content.WriteString("  " + line)
		}
	}

	return StyleListBox.Width(boxWidth(p.Width)).Render(content.String())
}

// BannerView renders a raised notification as a banner.
func BannerView(n *model.Notification, width int) string {
	lines := []string{StyleWarning.Bold(true).Render("🔔 " + n.Title)}
	for _, f := range n.Fields {
		lines = append(lines, StyleFieldName.Render(f.Name+":")+" "+f.Value)
	}
	lines = append(lines, StyleMuted.Render("enter to open • x to dismiss"))
	return StyleBannerBox.Width(boxWidth(width)).Render(strings.Join(lines, "\n"))
}

// DetailPane shows one event with its recent history.
type DetailPane struct {
	Detail *model.EventDetail
	Units  []model.ACUnit
	Width  int
}

// View renders the pane.
func (p DetailPane) View() string {
	d := p.Detail
	ev := d.Event

	unit := ev.ACRef
	if u := model.FindUnit(p.Units, ev.ACRef); u != nil {
		unit = u.DisplayName()
	}
	location := ev.Location
	if d.AC != nil {
		unit = d.AC.DisplayName()
		if d.AC.Location != "" {
			location = d.AC.Location
		}
	}

	title := ev.Title
	if title == "" {
		title = model.DefaultEventTitle
	}

	status := StyleWarning.Render(ev.StatusLabel())
	if ev.Status {
		status = StyleSuccess.Render(ev.StatusLabel())
	}

	rows := [][2]string{
		{"Unit", StyleUnit.Render(unit)},
		{"Date", parser.FormatDate(ev.ScheduledAt)},
		{"Start", orNA(parser.FormatTimeToAMPM(ev.Window.Start))},
		{"End", orNA(parser.FormatTimeToAMPM(ev.Window.End))},
		{"Location", orNA(location)},
		{"Status", status},
		{"Assigned", orNA(strings.Join(d.EmployeeNames(), ", "))},
		{"Tasks", orNA(ev.TaskList())},
		{"Summary", orNA(ev.Summary)},
	}

	var content strings.Builder
	content.WriteString(StyleTitle.Render(title))
	content.WriteString("\n")
	for _, r := range rows {
		content.WriteString(fmt.Sprintf("\n%s %s", StyleFieldName.Render(fmt.Sprintf("%-9s", r[0]+":")), r[1]))
	}

	content.WriteString("\n\n")
	content.WriteString(StyleTitle.Render("Recent history"))
	if len(d.History) == 0 {
		content.WriteString("\n")
		content.WriteString(StyleMuted.Render("No completed maintenance before today."))
	}
	for _, h := range d.History {
		content.WriteString(fmt.Sprintf("\n%s  %s", output.FormatDay(h.ScheduledAt), orNA(h.TaskList())))
		if h.Summary != "" {
			content.WriteString("  " + StyleMuted.Render(h.Summary))
		}
	}

	return StyleDetailBox.Width(boxWidth(p.Width)).Render(content.String())
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
