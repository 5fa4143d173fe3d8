package dup

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dl-alexandre/drivedup/internal/gateway"
	"github.com/dl-alexandre/drivedup/internal/manifest"
	"github.com/dl-alexandre/drivedup/internal/synchronizer"
	"github.com/dl-alexandre/drivedup/internal/types"
	"github.com/dl-alexandre/drivedup/internal/utils"
)

// PreviewResult is the dry-run counterpart of Result
type PreviewResult struct {
	BatchFolderID string                   `json:"batchFolderId,omitempty"`
	Entries       []synchronizer.PlanEntry `json:"entries"`
	Missing       []string                 `json:"missing,omitempty"`
}

// Preview reports what Run would do without mutating anything. When the
// batch folder does not exist yet, every selected tree is reported as
// new.
func (d *Driver) Preview(ctx context.Context, reqCtx *types.RequestContext, req Request) (*PreviewResult, error) {
	if req.SourceParentID == "" {
		return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidArgument,
			"Source parent folder ID is required").Build())
	}

	if _, err := d.gw.GetItem(ctx, reqCtx, req.SourceParentID); err != nil {
		return nil, sourceNotFound(req.SourceParentID, err)
	}

	sources, missing, err := d.resolveSources(ctx, reqCtx, req)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeSourceNotFound,
			fmt.Sprintf("No matching folders under source parent %s", req.SourceParentID)).
			WithContext("missing", missing).
			Build())
	}

	result := &PreviewResult{Missing: missing}

	batchID, err := d.lookupBatchFolder(ctx, reqCtx, req)
	if err != nil {
		return nil, err
	}
	result.BatchFolderID = batchID

	var batchManifest *manifest.Manifest
	if batchID != "" {
		batchManifest, err = d.store.Load(ctx, reqCtx, batchID)
		if err != nil && !errors.Is(err, manifest.ErrNotManaged) {
			return nil, manifestAppError(err)
		}
	}

	for _, source := range sources {
		destID := ""
		if batchManifest != nil {
			destID, _ = batchManifest.Lookup(source.ID)
		}
		entries, err := d.syncer.Preview(ctx, reqCtx, source, destID)
		if err != nil {
			return nil, manifestAppError(err)
		}
		result.Entries = append(result.Entries, entries...)
	}

	return result, nil
}

// lookupBatchFolder resolves the batch folder without creating it;
// "" means it does not exist yet.
func (d *Driver) lookupBatchFolder(ctx context.Context, reqCtx *types.RequestContext, req Request) (string, error) {
	if req.BatchFolderID != "" {
		if _, err := d.gw.GetItem(ctx, reqCtx, req.BatchFolderID); err != nil {
			return "", destinationNotFound(req.BatchFolderID, err)
		}
		return req.BatchFolderID, nil
	}

	parentID := req.DestinationParentID
	if parentID == "" {
		parentID = "root"
	}
	name := strings.TrimSpace(req.BatchFolderName)
	if name == "" {
		name = utils.DefaultBatchFolderName
	}

	existing, err := d.gw.FindChildFolder(ctx, reqCtx, parentID, name)
	if errors.Is(err, gateway.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", destinationNotFound(parentID, err)
	}
	return existing, nil
}
