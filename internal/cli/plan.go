package cli

import (
	"context"

	"github.com/dl-alexandre/drivedup/internal/api"
	"github.com/dl-alexandre/drivedup/internal/dup"
	"github.com/dl-alexandre/drivedup/internal/types"
	"github.com/dl-alexandre/drivedup/internal/utils"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show what a run would do",
	Long: `Walk the configured source folders and report, without changing
anything, which items a run would copy and which it would skip because
they are already duplicated.`,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVar(&runSourceID, "source", "", "Source parent folder ID")
	planCmd.Flags().StringVar(&runDestID, "dest", "", "Destination parent folder ID (defaults to My Drive root)")
	planCmd.Flags().StringSliceVar(&runFolderNames, "folders", nil, "Folder names to duplicate (default: all child folders)")
	planCmd.Flags().StringVar(&runBatchName, "batch-name", "", "Batch folder name")
	planCmd.Flags().StringVar(&runBatchID, "batch-id", "", "Existing batch folder ID (skips name lookup)")

	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	out := NewOutputWriter(flags.OutputFormat, flags.Quiet, flags.Verbose)

	req, cfg, err := buildRequest(flags)
	if err != nil {
		return out.WriteError("plan", utils.NewCLIError(utils.ErrCodeInvalidConfig, err.Error()).Build())
	}

	ctx := context.Background()
	driver, err := buildDriver(ctx, flags, cfg)
	if err != nil {
		return writeAppError(out, "plan", err)
	}

	reqCtx := api.NewRequestContext(flags.Profile, types.RequestTypeListOrSearch)
	preview, err := driver.Preview(ctx, reqCtx, *req)
	if err != nil {
		return writeAppError(out, "plan", err)
	}

	for _, name := range preview.Missing {
		out.AddWarning(utils.ErrCodeSourceNotFound,
			"configured folder \""+name+"\" not found under source parent", "warning")
	}

	return out.WriteSuccess("plan", planView{preview})
}

// planView adapts a preview for table output
type planView struct {
	*dup.PreviewResult
}

func (v planView) Headers() []string {
	return []string{"Action", "Kind", "Path"}
}

func (v planView) Rows() [][]string {
	rows := make([][]string, 0, len(v.Entries))
	for _, e := range v.Entries {
		rows = append(rows, []string{e.Action, string(e.Kind), e.Path})
	}
	return rows
}

func (v planView) EmptyMessage() string {
	return "Nothing to duplicate"
}
