package journal

import (
	"context"
	"time"
)

type Run struct {
	ID             string
	Profile        string
	SourceParentID string
	BatchFolderID  string
	StartedAt      time.Time
	FinishedAt     time.Time
	FilesCopied    int
	FoldersCreated int
	FilesSkipped   int
	FailedChildren int
}

type RunFolder struct {
	RunID         string
	Name          string
	SourceID      string
	DestinationID string
	Error         string
}

func (d *DB) StartRun(ctx context.Context, run Run) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO runs (id, profile, source_parent_id, batch_folder_id, started_at)
		 VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Profile, run.SourceParentID, run.BatchFolderID, run.StartedAt.Unix())
	return err
}

func (d *DB) FinishRun(ctx context.Context, id string, finishedAt time.Time, filesCopied, foldersCreated, filesSkipped, failedChildren int) error {
	_, err := d.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, files_copied = ?, folders_created = ?,
		 files_skipped = ?, failed_children = ? WHERE id = ?`,
		finishedAt.Unix(), filesCopied, foldersCreated, filesSkipped, failedChildren, id)
	return err
}

func (d *DB) SetBatchFolder(ctx context.Context, runID, batchFolderID string) error {
	_, err := d.db.ExecContext(ctx,
		`UPDATE runs SET batch_folder_id = ? WHERE id = ?`, batchFolderID, runID)
	return err
}

func (d *DB) RecordFolder(ctx context.Context, folder RunFolder) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO run_folders (run_id, name, source_id, destination_id, error)
		 VALUES (?, ?, ?, ?, ?)`,
		folder.RunID, folder.Name, folder.SourceID, folder.DestinationID, folder.Error)
	return err
}

func (d *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := d.db.QueryContext(ctx,
		`SELECT id, profile, source_parent_id, batch_folder_id, started_at,
		        COALESCE(finished_at, 0), files_copied, folders_created,
		        files_skipped, failed_children
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var startedAt, finishedAt int64
		if err := rows.Scan(&run.ID, &run.Profile, &run.SourceParentID, &run.BatchFolderID,
			&startedAt, &finishedAt, &run.FilesCopied, &run.FoldersCreated,
			&run.FilesSkipped, &run.FailedChildren); err != nil {
			return nil, err
		}
		run.StartedAt = time.Unix(startedAt, 0)
		if finishedAt > 0 {
			run.FinishedAt = time.Unix(finishedAt, 0)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

func (d *DB) ListRunFolders(ctx context.Context, runID string) ([]RunFolder, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT run_id, name, source_id, destination_id, error
		 FROM run_folders WHERE run_id = ? ORDER BY name`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var folders []RunFolder
	for rows.Next() {
		var folder RunFolder
		if err := rows.Scan(&folder.RunID, &folder.Name, &folder.SourceID,
			&folder.DestinationID, &folder.Error); err != nil {
			return nil, err
		}
		folders = append(folders, folder)
	}

	return folders, rows.Err()
}
