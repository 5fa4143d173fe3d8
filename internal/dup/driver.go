// Package dup is the top-level duplication driver: it resolves the
// configured source folders and the destination batch folder, then runs
// the tree synchronizer over each pair.
package dup

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dl-alexandre/drivedup/internal/gateway"
	"github.com/dl-alexandre/drivedup/internal/logging"
	"github.com/dl-alexandre/drivedup/internal/manifest"
	"github.com/dl-alexandre/drivedup/internal/synchronizer"
	"github.com/dl-alexandre/drivedup/internal/types"
	"github.com/dl-alexandre/drivedup/internal/utils"
)

// Request describes one duplication run
type Request struct {
	// SourceParentID is the folder whose named children are duplicated.
	SourceParentID string

	// FolderNames selects which children of the source parent to
	// duplicate. Empty means every child folder.
	FolderNames []string

	// DestinationParentID is where the batch folder lives. "root" is
	// accepted by Drive as the My Drive root.
	DestinationParentID string

	// BatchFolderName names the batch folder. On re-runs an existing
	// managed batch folder of this name is merged into, not replaced.
	BatchFolderName string

	// BatchFolderID, when set, reuses a known batch folder and skips
	// name resolution under DestinationParentID.
	BatchFolderID string
}

// FolderResult reports the outcome for one source folder
type FolderResult struct {
	Name          string               `json:"name"`
	SourceID      string               `json:"sourceId"`
	DestinationID string               `json:"destinationId"`
	Summary       synchronizer.Summary `json:"summary"`
	Error         string               `json:"error,omitempty"`
}

// Result is the outcome of a whole run
type Result struct {
	BatchFolderID string               `json:"batchFolderId"`
	Folders       []FolderResult       `json:"folders"`
	Missing       []string             `json:"missing,omitempty"`
	Summary       synchronizer.Summary `json:"summary"`
}

// Driver orchestrates a duplication run
type Driver struct {
	gw     gateway.Gateway
	store  *manifest.Store
	syncer *synchronizer.Syncer
	logger logging.Logger
}

// NewDriver creates a driver over an authenticated gateway
func NewDriver(gw gateway.Gateway, store *manifest.Store, syncer *synchronizer.Syncer, logger logging.Logger) *Driver {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &Driver{
		gw:     gw,
		store:  store,
		syncer: syncer,
		logger: logger,
	}
}

// Run executes one duplication/merge pass and returns the batch folder
// ID and per-folder outcomes. Failures of individual folders are
// reported in the result; only unresolvable source/destination
// references are fatal.
func (d *Driver) Run(ctx context.Context, reqCtx *types.RequestContext, req Request) (*Result, error) {
	if req.SourceParentID == "" {
		return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidArgument,
			"Source parent folder ID is required").Build())
	}

	sourceParent, err := d.gw.GetItem(ctx, reqCtx, req.SourceParentID)
	if err != nil {
		return nil, sourceNotFound(req.SourceParentID, err)
	}

	sources, missing, err := d.resolveSources(ctx, reqCtx, req)
	if err != nil {
		return nil, err
	}
	for _, name := range missing {
		d.logger.Warn("Configured folder not found under source parent",
			logging.F("name", name),
			logging.F("sourceParentId", req.SourceParentID),
		)
	}
	if len(sources) == 0 {
		return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeSourceNotFound,
			fmt.Sprintf("No matching folders under source parent %s", req.SourceParentID)).
			WithContext("missing", missing).
			Build())
	}

	batchID, err := d.ensureBatchFolder(ctx, reqCtx, req)
	if err != nil {
		return nil, err
	}

	batchManifest, err := d.store.Load(ctx, reqCtx, batchID)
	if errors.Is(err, manifest.ErrNotManaged) {
		batchManifest, err = d.store.Create(ctx, reqCtx, batchID, sourceParent.ID, sourceParent.Name)
	}
	if err != nil {
		return nil, manifestAppError(err)
	}

	result := &Result{
		BatchFolderID: batchID,
		Missing:       missing,
	}

	for _, source := range sources {
		folderResult := FolderResult{
			Name:     source.Name,
			SourceID: source.ID,
		}

		destID, mapped := batchManifest.Lookup(source.ID)
		if !mapped {
			destID, err = d.gw.CreateFolder(ctx, reqCtx, batchID, source.Name)
			if err == nil {
				err = batchManifest.RecordChild(source.ID, destID)
			}
			if err == nil {
				// Persist the batch mapping before descending so an
				// interrupted run finds the folder again instead of
				// duplicating it.
				err = d.store.Persist(ctx, reqCtx, batchID, batchManifest)
			}
			if err != nil {
				folderResult.Error = err.Error()
				result.Folders = append(result.Folders, folderResult)
				result.Summary.FailedChildren++
				continue
			}
		}
		folderResult.DestinationID = destID

		d.logger.Info("Duplicating folder",
			logging.F("name", source.Name),
			logging.F("sourceId", source.ID),
			logging.F("destinationId", destID),
		)

		summary, err := d.syncer.Sync(ctx, reqCtx, source, destID)
		folderResult.Summary = summary
		if err != nil {
			folderResult.Error = err.Error()
			result.Summary.FailedChildren++
		}
		result.Summary.Add(summary)
		result.Folders = append(result.Folders, folderResult)

		if ctx.Err() != nil {
			break
		}
	}

	d.logger.Info("Run complete",
		logging.F("batchFolderId", result.BatchFolderID),
		logging.F("copied", result.Summary.FilesCopied),
		logging.F("created", result.Summary.FoldersCreated),
		logging.F("skipped", result.Summary.FilesSkipped),
		logging.F("failed", result.Summary.FailedChildren),
	)

	return result, nil
}

// resolveSources picks the children of the source parent named by the
// request, preserving the configured order. With no names configured,
// every child folder is selected in listing order.
func (d *Driver) resolveSources(ctx context.Context, reqCtx *types.RequestContext, req Request) ([]*types.Item, []string, error) {
	children, err := d.gw.ListChildren(ctx, reqCtx, req.SourceParentID)
	if err != nil {
		return nil, nil, sourceNotFound(req.SourceParentID, err)
	}

	folders := make(map[string]*types.Item)
	var all []*types.Item
	for _, child := range children {
		if !child.IsFolder() {
			continue
		}
		all = append(all, child)
		if _, ok := folders[child.Name]; !ok {
			folders[child.Name] = child
		}
	}

	if len(req.FolderNames) == 0 {
		return all, nil, nil
	}

	var sources []*types.Item
	var missing []string
	for _, name := range req.FolderNames {
		if item, ok := folders[name]; ok {
			sources = append(sources, item)
		} else {
			missing = append(missing, name)
		}
	}
	return sources, missing, nil
}

// ensureBatchFolder finds or creates the destination batch folder
func (d *Driver) ensureBatchFolder(ctx context.Context, reqCtx *types.RequestContext, req Request) (string, error) {
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
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gateway.ErrNotFound) {
		return "", destinationNotFound(parentID, err)
	}

	created, err := d.gw.CreateFolder(ctx, reqCtx, parentID, name)
	if err != nil {
		return "", destinationNotFound(parentID, err)
	}
	return created, nil
}

// manifestAppError maps manifest sentinels onto their stable CLI error
// codes so runs exit with the right status. Other errors pass through.
func manifestAppError(err error) error {
	var code string
	switch {
	case errors.Is(err, manifest.ErrManifestCorrupt):
		code = utils.ErrCodeManifestCorrupt
	case errors.Is(err, manifest.ErrAlreadyManaged):
		code = utils.ErrCodeAlreadyManaged
	case errors.Is(err, manifest.ErrDuplicateOriginMapping):
		code = utils.ErrCodeDuplicateOriginMapping
	default:
		return err
	}
	return utils.NewAppError(utils.NewCLIError(code, err.Error()).Build())
}

func sourceNotFound(id string, err error) error {
	if errors.Is(err, gateway.ErrNotFound) || utils.ErrorCode(err) == utils.ErrCodeFileNotFound {
		return utils.NewAppError(utils.NewCLIError(utils.ErrCodeSourceNotFound,
			fmt.Sprintf("Source folder %s does not resolve", id)).
			WithContext("sourceId", id).
			Build())
	}
	return err
}

func destinationNotFound(id string, err error) error {
	if errors.Is(err, gateway.ErrNotFound) || utils.ErrorCode(err) == utils.ErrCodeFileNotFound {
		return utils.NewAppError(utils.NewCLIError(utils.ErrCodeDestinationNotFound,
			fmt.Sprintf("Destination folder %s does not resolve", id)).
			WithContext("destinationId", id).
			Build())
	}
	return err
}
