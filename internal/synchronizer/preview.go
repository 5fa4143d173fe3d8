package synchronizer

import (
	"context"
	"errors"
	"path"

	"github.com/dl-alexandre/drivedup/internal/manifest"
	"github.com/dl-alexandre/drivedup/internal/planner"
	"github.com/dl-alexandre/drivedup/internal/types"
)

// Action labels for preview entries
const (
	ActionCreate  = "create"
	ActionSkip    = "skip"
	ActionDescend = "descend"
)

// PlanEntry is one line of a dry-run report
type PlanEntry struct {
	Path   string         `json:"path"`
	Kind   types.ItemKind `json:"kind"`
	Action string         `json:"action"`
}

// Preview walks the tree like Sync but performs no storage mutations,
// reporting what a real run would create, skip, or descend into. A
// destination of "" means the folder does not exist yet, so the whole
// subtree is reported as new.
func (s *Syncer) Preview(ctx context.Context, reqCtx *types.RequestContext, source *types.Item, destFolderID string) ([]PlanEntry, error) {
	return s.preview(ctx, reqCtx, source, destFolderID, source.Name)
}

func (s *Syncer) preview(ctx context.Context, reqCtx *types.RequestContext, source *types.Item, destFolderID, prefix string) ([]PlanEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var m *manifest.Manifest
	if destFolderID != "" {
		loaded, err := s.store.Load(ctx, reqCtx, destFolderID)
		if err != nil && !errors.Is(err, manifest.ErrNotManaged) {
			return nil, err
		}
		m = loaded
	}

	children, err := s.gw.ListChildren(ctx, reqCtx, source.ID)
	if err != nil {
		return nil, err
	}

	plan := planner.Compute(children, m)

	var entries []PlanEntry
	for _, child := range plan.ToCreate {
		childPath := path.Join(prefix, child.Name)
		entries = append(entries, PlanEntry{Path: childPath, Kind: child.Kind, Action: ActionCreate})
		if child.IsFolder() {
			sub, err := s.preview(ctx, reqCtx, child, "", childPath)
			if err != nil {
				return nil, err
			}
			entries = append(entries, sub...)
		}
	}
	for _, child := range plan.ToSkip {
		entries = append(entries, PlanEntry{Path: path.Join(prefix, child.Name), Kind: child.Kind, Action: ActionSkip})
	}
	for _, descend := range plan.ToDescend {
		childPath := path.Join(prefix, descend.Source.Name)
		entries = append(entries, PlanEntry{Path: childPath, Kind: types.KindFolder, Action: ActionDescend})
		sub, err := s.preview(ctx, reqCtx, descend.Source, descend.DestinationID, childPath)
		if err != nil {
			return nil, err
		}
		entries = append(entries, sub...)
	}

	return entries, nil
}
