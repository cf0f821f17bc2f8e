package cmd

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"logbook/database"
	"logbook/models"
	"logbook/query"

	"github.com/spf13/cobra"
)

var (
	logAddTitle   string
	logAddText    string
	logAddParent  int64
	logAddTags    []int64
	logAddRuns    []int64
	logListLimit  int
	logListOffset int
	logListAuthor string
	logListTitle  string
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Manage log entries from the command line",
}

var logListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists log entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := query.ResolvePagination(&logListLimit, &logListOffset)
		if err != nil {
			return err
		}
		filter, err := query.CompileLogFilter(models.LogFilter{Author: logListAuthor, Title: logListTitle})
		if err != nil {
			return err
		}
		sortSpec, err := query.ResolveLogSort([]query.SortKey{{Field: "createdAt", Direction: query.DirectionDesc}})
		if err != nil {
			return err
		}

		logs, totalCount, err := database.GetLogs(filter, sortSpec, page)
		if err != nil {
			return fmt.Errorf("listing logs: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tCREATED\tREPLIES\tTAGS")
		for _, l := range logs {
			var tagTexts []string
			for _, t := range l.Tags {
				tagTexts = append(tagTexts, t.Text)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\n",
				l.ID, l.Title, l.Author, l.CreatedAt.Format("2006-01-02 15:04"), l.Replies, strings.Join(tagTexts, ","))
		}
		w.Flush()
		fmt.Printf("\n%d of %d entries\n", len(logs), totalCount)
		return nil
	},
}

var logAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Adds a log entry (or a reply when --parent is given)",
	RunE: func(cmd *cobra.Command, args []string) error {
		var parent *int64
		if logAddParent > 0 {
			parent = &logAddParent
		}
		l := models.Log{
			Title:       strings.TrimSpace(logAddTitle),
			Text:        logAddText,
			Origin:      models.OriginHuman,
			Subtype:     models.SubtypeComment,
			UserID:      models.AnonymousUserID,
			ParentLogID: parent,
		}
		if len(l.Title) < 3 || len(l.Title) > 140 {
			return fmt.Errorf("title length must be between 3 and 140 characters")
		}
		if len(l.Text) < 3 {
			return fmt.Errorf("text length must be at least 3 characters")
		}

		created, err := database.CreateLog(l, logAddTags, logAddRuns)
		if err != nil {
			return fmt.Errorf("creating log: %w", err)
		}
		fmt.Printf("Created log %d ('%s', root %d)\n", created.ID, created.Title, created.RootLogID)
		return nil
	},
}

var logGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Shows one log entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id < 1 {
			return fmt.Errorf("invalid log ID '%s'", args[0])
		}

		l, err := database.GetLogByID(id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("log %d not found", id)
			}
			return err
		}

		fmt.Printf("Log %d: %s\n", l.ID, l.Title)
		fmt.Printf("Author:  %s (%s/%s)\n", l.Author, l.Origin, l.Subtype)
		fmt.Printf("Created: %s\n", l.CreatedAt.Format("2006-01-02 15:04:05"))
		if l.ParentLogID != nil {
			fmt.Printf("Reply to: %d (root %d)\n", *l.ParentLogID, l.RootLogID)
		}
		fmt.Printf("Replies: %d\n", l.Replies)
		if len(l.Tags) > 0 {
			var tagTexts []string
			for _, t := range l.Tags {
				tagTexts = append(tagTexts, t.Text)
			}
			fmt.Printf("Tags:    %s\n", strings.Join(tagTexts, ", "))
		}
		if len(l.RunNumbers) > 0 {
			var runTexts []string
			for _, n := range l.RunNumbers {
				runTexts = append(runTexts, strconv.FormatInt(n, 10))
			}
			fmt.Printf("Runs:    %s\n", strings.Join(runTexts, ", "))
		}
		fmt.Printf("\n%s\n", l.Text)
		return nil
	},
}

func init() {
	logAddCmd.Flags().StringVarP(&logAddTitle, "title", "t", "", "entry title (required)")
	logAddCmd.Flags().StringVarP(&logAddText, "text", "m", "", "entry text (required)")
	logAddCmd.Flags().Int64Var(&logAddParent, "parent", 0, "parent log ID when replying")
	logAddCmd.Flags().Int64SliceVar(&logAddTags, "tag", nil, "tag ID to attach (repeatable)")
	logAddCmd.Flags().Int64SliceVar(&logAddRuns, "run", nil, "run number to reference (repeatable)")
	logAddCmd.MarkFlagRequired("title")
	logAddCmd.MarkFlagRequired("text")

	logListCmd.Flags().IntVar(&logListLimit, "limit", 25, "maximum entries to list")
	logListCmd.Flags().IntVar(&logListOffset, "offset", 0, "entries to skip")
	logListCmd.Flags().StringVar(&logListAuthor, "author", "", "filter by author name substring")
	logListCmd.Flags().StringVar(&logListTitle, "title", "", "filter by title substring")

	logCmd.AddCommand(logListCmd)
	logCmd.AddCommand(logAddCmd)
	logCmd.AddCommand(logGetCmd)
	rootCmd.AddCommand(logCmd)
}
