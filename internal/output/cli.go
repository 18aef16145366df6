package output

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/manav03panchal/aircare/internal/model"
	"github.com/manav03panchal/aircare/internal/parser"
	"github.com/manav03panchal/aircare/internal/projection"
)

// Styles for CLI output.
var (
	colorPrimary = lipgloss.Color("#0EA5E9") // Sky
	colorMuted   = lipgloss.Color("#6B7280") // Gray
	colorWarning = lipgloss.Color("#F59E0B") // Amber
	colorError   = lipgloss.Color("#EF4444") // Red
	colorSuccess = lipgloss.Color("#10B981") // Green

	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorSuccess)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorWarning)

	styleError = lipgloss.NewStyle().
			Foreground(colorError)

	styleMuted = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleBold = lipgloss.NewStyle().
			Bold(true)

	styleUnit = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)
)

// CLIFormatter provides CLI-specific formatting.
type CLIFormatter struct {
	*Formatter
}

// NewCLIFormatter creates a new CLI formatter.
func NewCLIFormatter(f *Formatter) *CLIFormatter {
	return &CLIFormatter{Formatter: f}
}

func (c *CLIFormatter) styled(style lipgloss.Style, text string) string {
	if c.IsColorEnabled() {
		return style.Render(text)
	}
	return text
}

// Title prints a title.
func (c *CLIFormatter) Title(text string) {
	c.Println(c.styled(styleTitle, text))
}

// Success prints a success message.
func (c *CLIFormatter) Success(text string) {
	c.Println(c.styled(styleSuccess, "✓ "+text))
}

// Warning prints a warning message.
func (c *CLIFormatter) Warning(text string) {
	c.Println(c.styled(styleWarning, "⚠ "+text))
}

// Error prints an error message.
func (c *CLIFormatter) Error(text string) {
	c.Println(c.styled(styleError, "✗ "+text))
}

// Muted prints muted text.
func (c *CLIFormatter) Muted(text string) {
	c.Println(c.styled(styleMuted, text))
}

// UnitName formats an AC unit name.
func (c *CLIFormatter) UnitName(name string) string {
	return c.styled(styleUnit, name)
}

// Status formats a completion status.
func (c *CLIFormatter) Status(done bool) string {
	if done {
		return c.styled(styleSuccess, "Completed")
	}
	return c.styled(styleWarning, "Pending")
}

// windowText renders a visit window as "9:00 AM - 5:00 PM".
func windowText(w model.TimeWindow) string {
	start := parser.FormatTimeToAMPM(w.Start)
	end := parser.FormatTimeToAMPM(w.End)
	switch {
	case start == "" && end == "":
		return ""
	case end == "":
		return start
	case start == "":
		return "until " + end
	}
	return start + " - " + end
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// PrintUpcoming prints the calendar entries in order.
func (c *CLIFormatter) PrintUpcoming(entries []model.CalendarEntry, now time.Time) {
	if len(entries) == 0 {
		c.Muted("No upcoming maintenance.")
		return
	}

	rows := make([]TableRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, TableRow{Columns: []string{
			e.ID,
			FormatWhen(e.ScheduledAt),
			FormatRelative(e.ScheduledAt, now),
			e.Title,
			orDash(windowText(e.Window)),
			orDash(e.Source.TaskList()),
		}})
	}
	c.PrintTable([]string{"ID", "WHEN", "", "UNIT", "WINDOW", "TASKS"}, rows)
}

// PrintEvents prints events with their unit and status, one per row.
func (c *CLIFormatter) PrintEvents(events []model.MaintenanceEvent, units []model.ACUnit) {
	if len(events) == 0 {
		c.Muted("No maintenance records.")
		return
	}

	rows := make([]TableRow, 0, len(events))
	for _, ev := range events {
		rows = append(rows, TableRow{Columns: []string{
			ev.ID,
			FormatDay(ev.ScheduledAt),
			projection.DisplayUnit(ev.ACRef, units),
			ev.StatusLabel(),
			orDash(ev.TaskList()),
		}})
	}
	c.PrintTable([]string{"ID", "DATE", "UNIT", "STATUS", "TASKS"}, rows)
}

// PrintEventDetail prints one event and its recent unit history.
func (c *CLIFormatter) PrintEventDetail(d *model.EventDetail, units []model.ACUnit) {
	ev := d.Event

	unit := projection.DisplayUnit(ev.ACRef, units)
	location := ev.Location
	if d.AC != nil {
		unit = d.AC.DisplayName()
		if d.AC.Location != "" {
			location = d.AC.Location
		}
	}

	employees := strings.Join(d.EmployeeNames(), ", ")
	if employees == "" {
		employees = strings.Join(ev.AssignedEmployees, ", ")
	}

	c.Title(firstNonEmpty(ev.Title, model.DefaultEventTitle))
	c.PrintKeyValues([][2]string{
		{"ID", ev.ID},
		{"Unit", c.UnitName(unit)},
		{"Date", parser.FormatDate(ev.ScheduledAt)},
		{"Window", orDash(windowText(ev.Window))},
		{"Location", orDash(location)},
		{"Status", c.Status(ev.Status)},
		{"Assigned", orDash(employees)},
		{"Tasks", orDash(ev.TaskList())},
		{"Summary", orDash(ev.Summary)},
	})

	if len(d.History) == 0 {
		return
	}
	c.Println()
	c.Title("Recent history")
	for _, h := range d.History {
		c.Printf("  %s  %s  %s\n", FormatDay(h.ScheduledAt), orDash(h.TaskList()), c.styled(styleMuted, h.Summary))
	}
}

// PrintKeyValues prints aligned "key: value" lines.
func (c *CLIFormatter) PrintKeyValues(pairs [][2]string) {
	width := 0
	for _, p := range pairs {
		width = max(width, len(p[0]))
	}
	for _, p := range pairs {
		if c.Format == FormatPlain {
			c.Printf("%s\t%s\n", p[0], p[1])
			continue
		}
		c.Printf("  %-*s  %s\n", width+1, p[0]+":", p[1])
	}
}

// PrintUnits prints the AC inventory.
func (c *CLIFormatter) PrintUnits(units []model.ACUnit) {
	if len(units) == 0 {
		c.Muted("No AC units.")
		return
	}

	rows := make([]TableRow, 0, len(units))
	for _, u := range units {
		watts := "-"
		if u.Watts > 0 {
			watts = strconv.Itoa(u.Watts) + "W"
		}
		rows = append(rows, TableRow{Columns: []string{u.ID, u.Code, u.Name, orDash(u.Location), watts}})
	}
	c.PrintTable([]string{"ID", "CODE", "NAME", "LOCATION", "POWER"}, rows)
}

// PrintUsers prints employee accounts.
func (c *CLIFormatter) PrintUsers(users []model.Employee) {
	if len(users) == 0 {
		c.Muted("No users.")
		return
	}

	rows := make([]TableRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, TableRow{Columns: []string{u.ID, u.Username, u.FullName(), orDash(u.Email), orDash(u.Role)}})
	}
	c.PrintTable([]string{"ID", "USERNAME", "NAME", "EMAIL", "ROLE"}, rows)
}

// PrintUser prints one employee record.
func (c *CLIFormatter) PrintUser(u *model.Employee) {
	age := "-"
	if u.Age > 0 {
		age = strconv.Itoa(u.Age)
	}
	c.Title(firstNonEmpty(u.FullName(), u.Username))
	c.PrintKeyValues([][2]string{
		{"ID", u.ID},
		{"Username", u.Username},
		{"Role", orDash(u.Role)},
		{"Email", orDash(u.Email)},
		{"Age", age},
		{"Birthdate", orDash(u.Birthdate)},
		{"Address", orDash(u.Address)},
	})
}

// PrintStats prints per-employee task counts.
func (c *CLIFormatter) PrintStats(stats []model.EmployeeStats) {
	if len(stats) == 0 {
		c.Muted("No statistics.")
		return
	}

	for i, s := range stats {
		if i > 0 {
			c.Println()
		}
		c.Printf("%s  %s\n", c.styled(styleBold, firstNonEmpty(s.Name, s.EmployeeID)), c.styled(styleMuted, fmt.Sprintf("%d tasks", s.Total())))
		c.printBreakdown(&s)
	}
}

func (c *CLIFormatter) printBreakdown(s *model.EmployeeStats) {
	total := s.Total()
	for _, row := range s.Breakdown() {
		pct := 0.0
		if total > 0 {
			pct = float64(row.Count) * 100 / float64(total)
		}
		c.Printf("  %-22s %s %d\n", row.Task, ProgressBar(pct, 20), row.Count)
	}
}

// PrintDashboard prints an employee's assigned work.
func (c *CLIFormatter) PrintDashboard(user *model.Employee, b projection.Buckets, units []model.ACUnit, stats *model.EmployeeStats) {
	name := "you"
	if user != nil {
		name = firstNonEmpty(user.FullName(), user.Username)
	}
	c.Title("Dashboard for " + name)
	c.PrintKeyValues([][2]string{
		{"Assigned", strconv.Itoa(len(b.All))},
		{"Ongoing", strconv.Itoa(len(b.Ongoing))},
		{"Completed", strconv.Itoa(len(b.Completed))},
	})

	c.Println()
	c.Title("Ongoing")
	c.PrintEvents(b.Ongoing, units)

	if stats != nil && len(stats.TaskCounts) > 0 {
		c.Println()
		c.Title("Task breakdown")
		c.printBreakdown(stats)
	}
}

// ProgressBar creates a simple progress bar.
func ProgressBar(percentage float64, width int) string {
	percentage = min(max(percentage, 0), 100)
	filled := int(float64(width) * percentage / 100)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// TableRow is one row for PrintTable.
type TableRow struct {
	Columns []string
}

// PrintTable prints an aligned table. In plain format rows are
// tab-separated with no header.
func (c *CLIFormatter) PrintTable(headers []string, rows []TableRow) {
	if len(rows) == 0 {
		return
	}

	if c.Format == FormatPlain {
		for _, row := range rows {
			c.Println(strings.Join(row.Columns, "\t"))
		}
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, col := range row.Columns {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(col))
			}
		}
	}

	c.Println(c.styled(styleBold, strings.TrimRight(padRow(headers, widths), " ")))

	var sep strings.Builder
	for _, w := range widths {
		sep.WriteString(strings.Repeat("─", w) + "  ")
	}
	c.Println(strings.TrimRight(sep.String(), " "))

	for _, row := range rows {
		c.Println(strings.TrimRight(padRow(row.Columns, widths), " "))
	}
}

func padRow(cols []string, widths []int) string {
	var line strings.Builder
	for i, col := range cols {
		if i >= len(widths) {
			break
		}
		line.WriteString(col)
		line.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(col)+2))
	}
	return line.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
