package cli

import (
	"context"
	"strconv"
	"time"

	"github.com/dl-alexandre/drivedup/internal/journal"
	"github.com/dl-alexandre/drivedup/internal/utils"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past duplication runs",
	Long:  "List runs recorded in the local journal, most recent first.",
	RunE:  runHistory,
}

var (
	historyLimit int
	historyRunID string
)

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to show")
	historyCmd.Flags().StringVar(&historyRunID, "run", "", "Show per-folder detail for one run ID")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	out := NewOutputWriter(flags.OutputFormat, flags.Quiet, flags.Verbose)

	db, err := journal.Open(journalPath())
	if err != nil {
		return out.WriteError("history", utils.NewCLIError(utils.ErrCodeUnknown,
			"failed to open run history: "+err.Error()).Build())
	}
	defer db.Close()

	ctx := context.Background()

	if historyRunID != "" {
		folders, err := db.ListRunFolders(ctx, historyRunID)
		if err != nil {
			return out.WriteError("history", utils.NewCLIError(utils.ErrCodeUnknown, err.Error()).Build())
		}
		return out.WriteSuccess("history", folderHistoryView(folders))
	}

	runs, err := db.ListRuns(ctx, historyLimit)
	if err != nil {
		return out.WriteError("history", utils.NewCLIError(utils.ErrCodeUnknown, err.Error()).Build())
	}

	return out.WriteSuccess("history", runHistoryView(runs))
}

// runHistoryView adapts journal runs for table output
type runHistoryView []journal.Run

func (v runHistoryView) Headers() []string {
	return []string{"Run ID", "Started", "Profile", "Copied", "Created", "Skipped", "Failed"}
}

func (v runHistoryView) Rows() [][]string {
	rows := make([][]string, 0, len(v))
	for _, run := range v {
		rows = append(rows, []string{
			truncate(run.ID, 15),
			run.StartedAt.Format(time.RFC3339),
			run.Profile,
			strconv.Itoa(run.FilesCopied),
			strconv.Itoa(run.FoldersCreated),
			strconv.Itoa(run.FilesSkipped),
			strconv.Itoa(run.FailedChildren),
		})
	}
	return rows
}

func (v runHistoryView) EmptyMessage() string {
	return "No runs recorded"
}

// folderHistoryView adapts per-folder run detail for table output
type folderHistoryView []journal.RunFolder

func (v folderHistoryView) Headers() []string {
	return []string{"Folder", "Source ID", "Destination ID", "Error"}
}

func (v folderHistoryView) Rows() [][]string {
	rows := make([][]string, 0, len(v))
	for _, folder := range v {
		rows = append(rows, []string{
			truncate(folder.Name, 40),
			truncate(folder.SourceID, 15),
			truncate(folder.DestinationID, 15),
			truncate(folder.Error, 40),
		})
	}
	return rows
}

func (v folderHistoryView) EmptyMessage() string {
	return "No folders recorded for this run"
}
