package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"projecthub/internal/model"
	"projecthub/internal/service"
)

type searchOptions struct {
	title    string
	status   string
	priority string
	keywords string
	assignee string
	reporter string
}

var searchFlags searchOptions

var issuesCmd = &cobra.Command{
	Use:     "issues",
	Aliases: []string{"issue"},
	Short:   "Inspect issues",
}

var issuesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List every issue, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := issueService()
		if err != nil {
			return err
		}
		records, err := svc.List(cmd.Context())
		if err != nil {
			return err
		}
		return printIssues(records)
	},
}

var issuesSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search issues; every given filter must match",
	Example: `  projecthubctl issues search --status open --keywords login
  projecthubctl issues search --assignee 3f0c... --priority urgent`,
	RunE: func(cmd *cobra.Command, args []string) error {
		criteria, err := buildCriteria()
		if err != nil {
			return err
		}
		svc, err := issueService()
		if err != nil {
			return err
		}
		records, err := svc.Search(cmd.Context(), criteria)
		if err != nil {
			return err
		}
		return printIssues(records)
	},
}

var issuesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIssueID(args[0])
		if err != nil {
			return err
		}
		svc, err := issueService()
		if err != nil {
			return err
		}
		record, err := svc.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		if record == nil {
			return fmt.Errorf("issue %d not found", id)
		}
		return printIssues([]model.IssueRecord{*record})
	},
}

func init() {
	f := issuesSearchCmd.Flags()
	f.StringVar(&searchFlags.title, "title", "", "Title contains (case-insensitive)")
	f.StringVar(&searchFlags.status, "status", "", "Status: Open, InProgress, Resolved, Closed")
	f.StringVar(&searchFlags.priority, "priority", "", "Priority: Low, Medium, High, Urgent")
	f.StringVar(&searchFlags.keywords, "keywords", "", "Title or description contains")
	f.StringVar(&searchFlags.assignee, "assignee", "", "Assignee user ID")
	f.StringVar(&searchFlags.reporter, "reporter", "", "Reporter user ID")

	issuesCmd.AddCommand(issuesListCmd, issuesSearchCmd, issuesShowCmd)
	rootCmd.AddCommand(issuesCmd)
}

func parseIssueID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid issue id %q", arg)
	}
	return uint(id), nil
}

func buildCriteria() (service.SearchCriteria, error) {
	criteria := service.SearchCriteria{
		Title:    searchFlags.title,
		Keywords: searchFlags.keywords,
	}
	if searchFlags.status != "" {
		status, ok := model.ParseIssueStatus(searchFlags.status)
		if !ok {
			return criteria, fmt.Errorf("unknown status %q", searchFlags.status)
		}
		criteria.Status = status
	}
	if searchFlags.priority != "" {
		priority, ok := model.ParseIssuePriority(searchFlags.priority)
		if !ok {
			return criteria, fmt.Errorf("unknown priority %q", searchFlags.priority)
		}
		criteria.Priority = priority
	}
	if searchFlags.assignee != "" {
		id, err := uuid.Parse(searchFlags.assignee)
		if err != nil {
			return criteria, fmt.Errorf("invalid assignee id: %w", err)
		}
		criteria.AssigneeID = &id
	}
	if searchFlags.reporter != "" {
		id, err := uuid.Parse(searchFlags.reporter)
		if err != nil {
			return criteria, fmt.Errorf("invalid reporter id: %w", err)
		}
		criteria.ReporterID = &id
	}
	return criteria, nil
}

func printIssues(records []model.IssueRecord) error {
	if jsonOut {
		enc := json.NewEncoder(ui.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}
	if len(records) == 0 {
		ui.Info("No issues found.")
		return nil
	}
	return ui.IssueTable(records)
}
