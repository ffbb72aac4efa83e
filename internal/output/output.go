package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"projecthub/internal/model"
)

// UI writes prefixed, colored messages and tables for the CLI.
type UI struct {
	Verbose bool
	Out     io.Writer
	ErrOut  io.Writer
}

func New() *UI {
	return &UI{
		Out:    os.Stdout,
		ErrOut: os.Stderr,
	}
}

var (
	infoPrefix    = color.New(color.FgHiBlue).Sprint("i")
	successPrefix = color.New(color.FgHiGreen).Sprint("✓")
	warningPrefix = color.New(color.FgHiYellow).Sprint("⚠")
	errorPrefix   = color.New(color.FgHiRed).Sprint("✗")
	verbosePrefix = color.New(color.FgHiBlue).Sprint("  →")
	cyan          = color.New(color.FgHiCyan).SprintFunc()
	green         = color.New(color.FgHiGreen).SprintFunc()
	yellow        = color.New(color.FgHiYellow).SprintFunc()
	red           = color.New(color.FgHiRed).SprintFunc()
	magenta       = color.New(color.FgHiMagenta).SprintFunc()
)

// StatusColor colors an issue status for terminal display.
func StatusColor(status model.IssueStatus) string {
	s := string(status)
	switch status {
	case model.IssueStatusOpen:
		return green(s)
	case model.IssueStatusInProgress:
		return yellow(s)
	case model.IssueStatusResolved:
		return cyan(s)
	case model.IssueStatusClosed:
		return red(s)
	default:
		return s
	}
}

func PriorityColor(priority model.IssuePriority) string {
	p := string(priority)
	switch priority {
	case model.IssuePriorityHigh:
		return yellow(p)
	case model.IssuePriorityUrgent:
		return magenta(p)
	default:
		return p
	}
}

func (u *UI) Info(format string, a ...any) {
	fmt.Fprintf(u.Out, "%s %s\n", infoPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Success(format string, a ...any) {
	fmt.Fprintf(u.Out, "%s %s\n", successPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Warning(format string, a ...any) {
	fmt.Fprintf(u.ErrOut, "%s %s\n", warningPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Error(format string, a ...any) {
	fmt.Fprintf(u.ErrOut, "%s %s\n", errorPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) VerboseLog(format string, a ...any) {
	if u.Verbose {
		fmt.Fprintf(u.Out, "%s %s\n", verbosePrefix, fmt.Sprintf(format, a...))
	}
}

// Table creates a borderless, left-aligned tablewriter.
func (u *UI) Table(headers []string) *tablewriter.Table {
	table := tablewriter.NewTable(u.Out,
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines:      tw.LinesNone,
				Separators: tw.SeparatorsNone,
			},
		}),
		tablewriter.WithPadding(tw.Padding{Left: "", Right: "  "}),
	)
	table.Header(headers)
	return table
}

// IssueTable renders issue records, one row each.
func (u *UI) IssueTable(records []model.IssueRecord) error {
	table := u.Table([]string{"ID", "Title", "Status", "Priority", "Reporter", "Assignee", "Project", "Created"})
	for _, r := range records {
		err := table.Append([]string{
			fmt.Sprintf("%d", r.ID),
			r.Title,
			StatusColor(r.Status),
			PriorityColor(r.Priority),
			r.ReporterName,
			r.AssigneeName,
			r.ProjectName,
			r.CreatedAt.Format("2006-01-02 15:04"),
		})
		if err != nil {
			return err
		}
	}
	return table.Render()
}

// StatusReport renders per-status counts followed by the total.
func (u *UI) StatusReport(rows []model.StatusCount) error {
	table := u.Table([]string{"Status", "Count"})
	var total int64
	for _, row := range rows {
		total += row.Count
		if err := table.Append([]string{StatusColor(row.Status), fmt.Sprintf("%d", row.Count)}); err != nil {
			return err
		}
	}
	if err := table.Append([]string{"Total", fmt.Sprintf("%d", total)}); err != nil {
		return err
	}
	return table.Render()
}
