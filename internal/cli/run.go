package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dl-alexandre/drivedup/internal/api"
	"github.com/dl-alexandre/drivedup/internal/auth"
	"github.com/dl-alexandre/drivedup/internal/config"
	"github.com/dl-alexandre/drivedup/internal/dup"
	"github.com/dl-alexandre/drivedup/internal/gateway"
	"github.com/dl-alexandre/drivedup/internal/journal"
	"github.com/dl-alexandre/drivedup/internal/manifest"
	"github.com/dl-alexandre/drivedup/internal/synchronizer"
	"github.com/dl-alexandre/drivedup/internal/types"
	"github.com/dl-alexandre/drivedup/internal/utils"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Duplicate the configured folders",
	Long: `Duplicate the configured source folders into the batch folder,
merging into copies from earlier runs. Items already duplicated are
skipped; new items are copied. Safe to re-run and to resume after an
interruption.`,
	RunE: runRun,
}

var (
	runSourceID    string
	runDestID      string
	runFolderNames []string
	runBatchName   string
	runBatchID     string
	runConcurrency int
	runNoJournal   bool
)

func init() {
	runCmd.Flags().StringVar(&runSourceID, "source", "", "Source parent folder ID")
	runCmd.Flags().StringVar(&runDestID, "dest", "", "Destination parent folder ID (defaults to My Drive root)")
	runCmd.Flags().StringSliceVar(&runFolderNames, "folders", nil, "Folder names to duplicate (default: all child folders)")
	runCmd.Flags().StringVar(&runBatchName, "batch-name", "", "Batch folder name")
	runCmd.Flags().StringVar(&runBatchID, "batch-id", "", "Existing batch folder ID (skips name lookup)")
	runCmd.Flags().IntVar(&runConcurrency, "concurrency", 0, "Parallel file copies per folder")
	runCmd.Flags().BoolVar(&runNoJournal, "no-journal", false, "Skip recording the run in the local history")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	out := NewOutputWriter(flags.OutputFormat, flags.Quiet, flags.Verbose)

	req, cfg, err := buildRequest(flags)
	if err != nil {
		return out.WriteError("run", utils.NewCLIError(utils.ErrCodeInvalidConfig, err.Error()).Build())
	}

	ctx := context.Background()
	driver, err := buildDriver(ctx, flags, cfg)
	if err != nil {
		return writeAppError(out, "run", err)
	}

	reqCtx := api.NewRequestContext(flags.Profile, types.RequestTypeCopy)

	var db *journal.DB
	runID := uuid.New().String()
	if !runNoJournal {
		db, err = journal.Open(journalPath())
		if err != nil {
			out.AddWarning(utils.ErrCodeUnknown, fmt.Sprintf("run history unavailable: %v", err), "warning")
		} else {
			defer db.Close()
			_ = db.StartRun(ctx, journal.Run{
				ID:             runID,
				Profile:        flags.Profile,
				SourceParentID: req.SourceParentID,
				StartedAt:      time.Now(),
			})
		}
	}

	result, err := driver.Run(ctx, reqCtx, *req)
	if err != nil {
		return writeAppError(out, "run", err)
	}

	if db != nil {
		_ = db.SetBatchFolder(ctx, runID, result.BatchFolderID)
		for _, folder := range result.Folders {
			_ = db.RecordFolder(ctx, journal.RunFolder{
				RunID:         runID,
				Name:          folder.Name,
				SourceID:      folder.SourceID,
				DestinationID: folder.DestinationID,
				Error:         folder.Error,
			})
		}
		_ = db.FinishRun(ctx, runID, time.Now(),
			result.Summary.FilesCopied, result.Summary.FoldersCreated,
			result.Summary.FilesSkipped, result.Summary.FailedChildren)
	}

	for _, name := range result.Missing {
		out.AddWarning(utils.ErrCodeSourceNotFound,
			fmt.Sprintf("configured folder %q not found under source parent", name), "warning")
	}

	if result.Summary.FailedChildren > 0 {
		if err := out.WriteSuccess("run", runView{result}); err != nil {
			return err
		}
		return utils.NewAppError(utils.NewCLIError(utils.ErrCodePartialFailure,
			fmt.Sprintf("%d items failed; re-run to retry them", result.Summary.FailedChildren)).Build())
	}

	return out.WriteSuccess("run", runView{result})
}

// buildRequest merges the job file with command line overrides
func buildRequest(flags types.GlobalFlags) (*dup.Request, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	job, err := config.LoadJob(flags.Config)
	if err != nil {
		return nil, nil, err
	}

	if runSourceID != "" {
		job.SourceParentID = runSourceID
	}
	if runDestID != "" {
		job.DestinationParentID = runDestID
	}
	if len(runFolderNames) > 0 {
		job.FolderNames = runFolderNames
	}
	if runBatchName != "" {
		job.BatchFolderName = runBatchName
	}
	if runBatchID != "" {
		job.BatchFolderID = runBatchID
	}

	if err := job.Validate(); err != nil {
		return nil, nil, err
	}
	if runConcurrency > 0 {
		cfg.Concurrency = runConcurrency
	}

	return &dup.Request{
		SourceParentID:      job.SourceParentID,
		FolderNames:         job.FolderNames,
		DestinationParentID: job.DestinationParentID,
		BatchFolderName:     job.BatchFolderName,
		BatchFolderID:       job.BatchFolderID,
	}, cfg, nil
}

// buildDriver assembles the authenticated stack for one command
func buildDriver(ctx context.Context, flags types.GlobalFlags, cfg *config.Config) (*dup.Driver, error) {
	mgr := auth.NewManager(getConfigDir())
	service, err := mgr.GetDriveService(ctx, flags.Profile)
	if err != nil {
		return nil, err
	}

	client := api.NewClient(service, cfg.MaxRetries, cfg.RetryBaseDelay, GetLogger())
	gw := gateway.NewDriveGateway(client)
	store := manifest.NewStore(gw, GetLogger())
	syncer := synchronizer.New(gw, store, GetLogger(), synchronizer.Options{
		Concurrency: cfg.Concurrency,
	})

	return dup.NewDriver(gw, store, syncer, GetLogger()), nil
}

func journalPath() string {
	return filepath.Join(getConfigDir(), "journal.db")
}

func writeAppError(out *OutputWriter, command string, err error) error {
	if appErr, ok := err.(*utils.AppError); ok {
		return out.WriteError(command, appErr.CLIError)
	}
	return out.WriteError(command, utils.NewCLIError(utils.ErrCodeUnknown, err.Error()).Build())
}

// runView adapts a run result for table output
type runView struct {
	*dup.Result
}

func (v runView) Headers() []string {
	return []string{"Folder", "Source ID", "Destination ID", "Copied", "Created", "Skipped", "Failed", "Error"}
}

func (v runView) Rows() [][]string {
	rows := make([][]string, 0, len(v.Folders))
	for _, f := range v.Folders {
		rows = append(rows, []string{
			truncate(f.Name, 40),
			truncate(f.SourceID, 15),
			truncate(f.DestinationID, 15),
			strconv.Itoa(f.Summary.FilesCopied),
			strconv.Itoa(f.Summary.FoldersCreated),
			strconv.Itoa(f.Summary.FilesSkipped),
			strconv.Itoa(f.Summary.FailedChildren),
			truncate(f.Error, 40),
		})
	}
	return rows
}

func (v runView) EmptyMessage() string {
	return "Nothing to duplicate"
}
