// Package synchronizer drives the recursive, manifest-tracked merge walk
// over a source tree and its destination duplicate.
package synchronizer

import (
	"context"
	"errors"
	"sync"

	"github.com/dl-alexandre/drivedup/internal/gateway"
	"github.com/dl-alexandre/drivedup/internal/logging"
	"github.com/dl-alexandre/drivedup/internal/manifest"
	"github.com/dl-alexandre/drivedup/internal/planner"
	"github.com/dl-alexandre/drivedup/internal/types"
	"github.com/dl-alexandre/drivedup/internal/utils"
)

// Syncer walks one source folder tree into a destination folder,
// creating what the manifests say is missing and leaving everything else
// alone.
type Syncer struct {
	gw          gateway.Gateway
	store       *manifest.Store
	logger      logging.Logger
	concurrency int
}

// Options configures a Syncer
type Options struct {
	// Concurrency bounds parallel file copies within one folder.
	// Folder recursion stays sequential and depth-first.
	Concurrency int
}

// Summary counts what a sync pass did
type Summary struct {
	FilesCopied      int `json:"filesCopied"`
	FoldersCreated   int `json:"foldersCreated"`
	FilesSkipped     int `json:"filesSkipped"`
	FoldersDescended int `json:"foldersDescended"`
	FailedChildren   int `json:"failedChildren"`
}

// Add merges another summary into this one
func (s *Summary) Add(other Summary) {
	s.FilesCopied += other.FilesCopied
	s.FoldersCreated += other.FoldersCreated
	s.FilesSkipped += other.FilesSkipped
	s.FoldersDescended += other.FoldersDescended
	s.FailedChildren += other.FailedChildren
}

// New creates a Syncer
func New(gw gateway.Gateway, store *manifest.Store, logger logging.Logger, opts Options) *Syncer {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = utils.DefaultCopyConcurrency
	}
	return &Syncer{
		gw:          gw,
		store:       store,
		logger:      logger,
		concurrency: concurrency,
	}
}

// Sync merges the source folder into the destination folder. The
// destination must already exist; on first contact it is claimed by
// creating its manifest, on later runs the existing manifest decides
// what is new.
//
// Failures on individual children are isolated: the child is counted,
// siblings proceed, and the manifest is persisted with whatever
// mappings succeeded, so an interrupted or partially failed run resumes
// cleanly on retry. The returned error is non-nil only for failures
// that make the whole folder unprocessable (corrupt manifest, listing
// failure, manifest persistence failure).
func (s *Syncer) Sync(ctx context.Context, reqCtx *types.RequestContext, source *types.Item, destFolderID string) (Summary, error) {
	var summary Summary

	m, err := s.store.Load(ctx, reqCtx, destFolderID)
	if errors.Is(err, manifest.ErrNotManaged) {
		m, err = s.store.Create(ctx, reqCtx, destFolderID, source.ID, source.Name)
	}
	if err != nil {
		return summary, err
	}

	children, err := s.gw.ListChildren(ctx, reqCtx, source.ID)
	if err != nil {
		return summary, err
	}

	plan := planner.Compute(children, m)
	summary.FilesSkipped += len(plan.ToSkip)

	s.logger.Debug("Merge plan computed",
		logging.F("sourceId", source.ID),
		logging.F("sourceName", source.Name),
		logging.F("create", len(plan.ToCreate)),
		logging.F("descend", len(plan.ToDescend)),
		logging.F("skip", len(plan.ToSkip)),
	)

	mappingsBefore := m.Len()

	// Files first, on the worker pool; they touch disjoint mapping keys
	// so only the manifest append itself needs serializing.
	var manifestMu sync.Mutex
	var newFiles, newFolders []*types.Item
	for _, child := range plan.ToCreate {
		if child.IsFolder() {
			newFolders = append(newFolders, child)
		} else {
			newFiles = append(newFiles, child)
		}
	}

	failed := s.copyFiles(ctx, reqCtx, newFiles, destFolderID, m, &manifestMu)
	summary.FilesCopied += len(newFiles) - failed
	summary.FailedChildren += failed

	for _, child := range newFolders {
		if ctx.Err() != nil {
			break
		}
		childDestID, err := s.gw.CreateFolder(ctx, reqCtx, destFolderID, child.Name)
		if err != nil {
			s.logger.Error("Folder creation failed",
				logging.F("sourceId", child.ID),
				logging.F("name", child.Name),
				logging.F("error", err.Error()),
			)
			summary.FailedChildren++
			continue
		}
		if err := m.RecordChild(child.ID, childDestID); err != nil {
			return summary, err
		}
		summary.FoldersCreated++

		childSummary, err := s.Sync(ctx, reqCtx, child, childDestID)
		summary.Add(childSummary)
		if err != nil {
			s.logger.Error("Subtree sync failed",
				logging.F("sourceId", child.ID),
				logging.F("name", child.Name),
				logging.F("error", err.Error()),
			)
			summary.FailedChildren++
		}
	}

	for _, descend := range plan.ToDescend {
		if ctx.Err() != nil {
			break
		}
		summary.FoldersDescended++
		childSummary, err := s.Sync(ctx, reqCtx, descend.Source, descend.DestinationID)
		summary.Add(childSummary)
		if err != nil {
			s.logger.Error("Subtree sync failed",
				logging.F("sourceId", descend.Source.ID),
				logging.F("name", descend.Source.Name),
				logging.F("error", err.Error()),
			)
			summary.FailedChildren++
		}
	}

	// Persist only when this folder gained mappings; an idempotent
	// re-run writes nothing at all.
	if m.Len() != mappingsBefore {
		if err := s.store.Persist(ctx, reqCtx, destFolderID, m); err != nil {
			return summary, err
		}
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return summary, ctxErr
	}

	s.logger.Info("Folder synced",
		logging.F("sourceName", source.Name),
		logging.F("copied", summary.FilesCopied),
		logging.F("created", summary.FoldersCreated),
		logging.F("skipped", summary.FilesSkipped),
		logging.F("failed", summary.FailedChildren),
	)

	return summary, nil
}

// copyFiles duplicates new files on a bounded worker pool and returns
// the number of failures. Manifest appends are serialized; a copy whose
// mapping cannot be recorded counts as failed and will be retried by
// the next run.
func (s *Syncer) copyFiles(ctx context.Context, reqCtx *types.RequestContext, files []*types.Item, destFolderID string, m *manifest.Manifest, manifestMu *sync.Mutex) int {
	if len(files) == 0 {
		return 0
	}

	jobs := make(chan *types.Item)
	var wg sync.WaitGroup
	var failedMu sync.Mutex
	failed := 0

	for i := 0; i < s.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range jobs {
				if ctx.Err() != nil {
					failedMu.Lock()
					failed++
					failedMu.Unlock()
					continue
				}
				copyID, err := s.gw.DuplicateFile(ctx, reqCtx, file.ID, destFolderID, file.Name)
				if err == nil {
					manifestMu.Lock()
					err = m.RecordChild(file.ID, copyID)
					manifestMu.Unlock()
				}
				if err != nil {
					s.logger.Error("File copy failed",
						logging.F("sourceId", file.ID),
						logging.F("name", file.Name),
						logging.F("error", err.Error()),
					)
					failedMu.Lock()
					failed++
					failedMu.Unlock()
				}
			}
		}()
	}

	for _, file := range files {
		jobs <- file
	}
	close(jobs)
	wg.Wait()

	return failed
}
