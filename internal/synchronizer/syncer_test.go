package synchronizer

import (
	"context"
	"errors"
	"testing"

	"github.com/dl-alexandre/drivedup/internal/manifest"
	"github.com/dl-alexandre/drivedup/internal/testing/mocks"
	"github.com/dl-alexandre/drivedup/internal/types"
	"github.com/dl-alexandre/drivedup/internal/utils"
)

func testReqCtx() *types.RequestContext {
	return &types.RequestContext{Profile: "default", TraceID: "trace-1"}
}

// buildFixture creates the reference source tree:
//
//	source/
//	  fileA
//	  folderB/
//	    fileC
//
// plus an empty destination folder, and returns all IDs.
type fixture struct {
	drive    *mocks.MemDrive
	sourceID string
	fileA    string
	folderB  string
	fileC    string
	destID   string
}

func buildFixture() *fixture {
	drive := mocks.NewMemDrive()
	f := &fixture{drive: drive}
	f.sourceID = drive.AddFolder("root", "Reports")
	f.fileA = drive.AddFile(f.sourceID, "fileA", []byte("alpha"))
	f.folderB = drive.AddFolder(f.sourceID, "folderB")
	f.fileC = drive.AddFile(f.folderB, "fileC", []byte("gamma"))
	f.destID = drive.AddFolder("root", "Reports Copy")
	return f
}

func newTestSyncer(drive *mocks.MemDrive) *Syncer {
	store := manifest.NewStore(drive, nil)
	return New(drive, store, nil, Options{Concurrency: 2})
}

func sourceItem(t *testing.T, f *fixture) *types.Item {
	t.Helper()
	item, err := f.drive.GetItem(context.Background(), testReqCtx(), f.sourceID)
	if err != nil {
		t.Fatalf("GetItem(source) failed: %v", err)
	}
	return item
}

func TestSyncFirstRunDuplicatesTree(t *testing.T) {
	f := buildFixture()
	syncer := newTestSyncer(f.drive)
	ctx := context.Background()

	summary, err := syncer.Sync(ctx, testReqCtx(), sourceItem(t, f), f.destID)
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	if summary.FilesCopied != 2 {
		t.Errorf("FilesCopied = %d, want 2", summary.FilesCopied)
	}
	if summary.FoldersCreated != 1 {
		t.Errorf("FoldersCreated = %d, want 1", summary.FoldersCreated)
	}
	if summary.FailedChildren != 0 {
		t.Errorf("FailedChildren = %d, want 0", summary.FailedChildren)
	}

	// The copies exist under the destination with the source names.
	if _, err := f.drive.ResolveByName(ctx, testReqCtx(), f.destID, "fileA"); err != nil {
		t.Error("fileA copy missing at destination")
	}
	folderBCopy, err := f.drive.FindChildFolder(ctx, testReqCtx(), f.destID, "folderB")
	if err != nil {
		t.Fatal("folderB copy missing at destination")
	}
	if _, err := f.drive.ResolveByName(ctx, testReqCtx(), folderBCopy, "fileC"); err != nil {
		t.Error("fileC copy missing inside folderB copy")
	}

	// Both managed folders carry a hidden manifest.
	for _, id := range []string{f.destID, folderBCopy} {
		if _, err := f.drive.FindChildFolder(ctx, testReqCtx(), id, utils.SystemFolderName); err != nil {
			t.Errorf("folder %s has no system folder", id)
		}
	}
}

func TestSyncSecondRunIsNoop(t *testing.T) {
	f := buildFixture()
	syncer := newTestSyncer(f.drive)
	ctx := context.Background()

	if _, err := syncer.Sync(ctx, testReqCtx(), sourceItem(t, f), f.destID); err != nil {
		t.Fatalf("first Sync failed: %v", err)
	}
	copiesAfterFirst := f.drive.CopyCalls
	writesAfterFirst := f.drive.WriteCalls

	summary, err := newTestSyncer(f.drive).Sync(ctx, testReqCtx(), sourceItem(t, f), f.destID)
	if err != nil {
		t.Fatalf("second Sync failed: %v", err)
	}

	if f.drive.CopyCalls != copiesAfterFirst {
		t.Errorf("second run copied %d files, want 0", f.drive.CopyCalls-copiesAfterFirst)
	}
	if f.drive.WriteCalls != writesAfterFirst {
		t.Errorf("second run wrote %d manifests, want 0", f.drive.WriteCalls-writesAfterFirst)
	}
	if summary.FilesCopied != 0 || summary.FoldersCreated != 0 {
		t.Errorf("second run summary = %+v, want no mutations", summary)
	}
	if summary.FilesSkipped != 2 {
		t.Errorf("FilesSkipped = %d, want 2", summary.FilesSkipped)
	}
}

func TestSyncPropagatesNewContent(t *testing.T) {
	f := buildFixture()
	ctx := context.Background()

	if _, err := newTestSyncer(f.drive).Sync(ctx, testReqCtx(), sourceItem(t, f), f.destID); err != nil {
		t.Fatalf("first Sync failed: %v", err)
	}

	// New file appears deep in an already-mapped folder.
	f.drive.AddFile(f.folderB, "fileD", []byte("delta"))
	copiesBefore := f.drive.CopyCalls

	summary, err := newTestSyncer(f.drive).Sync(ctx, testReqCtx(), sourceItem(t, f), f.destID)
	if err != nil {
		t.Fatalf("second Sync failed: %v", err)
	}

	if f.drive.CopyCalls != copiesBefore+1 {
		t.Errorf("copies = %d, want exactly 1 new copy", f.drive.CopyCalls-copiesBefore)
	}
	if summary.FilesCopied != 1 {
		t.Errorf("FilesCopied = %d, want 1", summary.FilesCopied)
	}

	folderBCopy, _ := f.drive.FindChildFolder(ctx, testReqCtx(), f.destID, "folderB")
	if _, err := f.drive.ResolveByName(ctx, testReqCtx(), folderBCopy, "fileD"); err != nil {
		t.Error("fileD was not propagated into the existing folderB copy")
	}
}

func TestSyncNeverResurrectsDeletedCopy(t *testing.T) {
	f := buildFixture()
	ctx := context.Background()

	if _, err := newTestSyncer(f.drive).Sync(ctx, testReqCtx(), sourceItem(t, f), f.destID); err != nil {
		t.Fatalf("first Sync failed: %v", err)
	}

	// User deletes the copy of fileA. The mapping stays, so the next
	// run must not bring it back.
	copyID, err := f.drive.ResolveByName(ctx, testReqCtx(), f.destID, "fileA")
	if err != nil {
		t.Fatal("fileA copy missing after first run")
	}
	f.drive.Remove(copyID)

	summary, err := newTestSyncer(f.drive).Sync(ctx, testReqCtx(), sourceItem(t, f), f.destID)
	if err != nil {
		t.Fatalf("second Sync failed: %v", err)
	}
	if summary.FilesCopied != 0 {
		t.Errorf("FilesCopied = %d after deleting a copy, want 0", summary.FilesCopied)
	}
	if _, err := f.drive.ResolveByName(ctx, testReqCtx(), f.destID, "fileA"); err == nil {
		t.Error("deleted copy was resurrected")
	}
}

func TestSyncRenamedCopyStaysMapped(t *testing.T) {
	f := buildFixture()
	ctx := context.Background()

	if _, err := newTestSyncer(f.drive).Sync(ctx, testReqCtx(), sourceItem(t, f), f.destID); err != nil {
		t.Fatalf("first Sync failed: %v", err)
	}

	copyID, _ := f.drive.ResolveByName(ctx, testReqCtx(), f.destID, "fileA")
	f.drive.Rename(copyID, "renamed by user")
	copiesBefore := f.drive.CopyCalls

	if _, err := newTestSyncer(f.drive).Sync(ctx, testReqCtx(), sourceItem(t, f), f.destID); err != nil {
		t.Fatalf("second Sync failed: %v", err)
	}

	if f.drive.CopyCalls != copiesBefore {
		t.Error("renamed copy was duplicated again")
	}
}

func TestSyncIsolatesChildFailures(t *testing.T) {
	f := buildFixture()
	ctx := context.Background()

	// fileA fails; everything else must still be duplicated and the
	// run itself must not error.
	f.drive.FailDuplicate = func(fileID string) error {
		if fileID == f.fileA {
			return errors.New("quota exceeded")
		}
		return nil
	}

	summary, err := newTestSyncer(f.drive).Sync(ctx, testReqCtx(), sourceItem(t, f), f.destID)
	if err != nil {
		t.Fatalf("Sync returned error for child failure: %v", err)
	}
	if summary.FailedChildren != 1 {
		t.Errorf("FailedChildren = %d, want 1", summary.FailedChildren)
	}
	if summary.FilesCopied != 1 {
		t.Errorf("FilesCopied = %d, want 1 (fileC)", summary.FilesCopied)
	}

	// The retry picks up exactly the failed file.
	f.drive.FailDuplicate = nil
	retry, err := newTestSyncer(f.drive).Sync(ctx, testReqCtx(), sourceItem(t, f), f.destID)
	if err != nil {
		t.Fatalf("retry Sync failed: %v", err)
	}
	if retry.FilesCopied != 1 {
		t.Errorf("retry FilesCopied = %d, want 1 (fileA)", retry.FilesCopied)
	}
	if _, err := f.drive.ResolveByName(ctx, testReqCtx(), f.destID, "fileA"); err != nil {
		t.Error("fileA still missing after retry")
	}
}

func TestSyncLeavesUnmappedDestinationItemsAlone(t *testing.T) {
	f := buildFixture()
	ctx := context.Background()

	if _, err := newTestSyncer(f.drive).Sync(ctx, testReqCtx(), sourceItem(t, f), f.destID); err != nil {
		t.Fatalf("first Sync failed: %v", err)
	}

	// The user authors their own content inside the managed folder,
	// including a file that collides with a source name.
	userFile := f.drive.AddFile(f.destID, "notes.txt", []byte("mine"))
	userClash := f.drive.AddFile(f.destID, "fileD", []byte("user version"))
	userFolder := f.drive.AddFolder(f.destID, "Drafts")
	userNested := f.drive.AddFile(userFolder, "draft.txt", []byte("wip"))

	// The source gains a file with the clashing name.
	f.drive.AddFile(f.sourceID, "fileD", []byte("source version"))

	summary, err := newTestSyncer(f.drive).Sync(ctx, testReqCtx(), sourceItem(t, f), f.destID)
	if err != nil {
		t.Fatalf("second Sync failed: %v", err)
	}
	if summary.FilesCopied != 1 {
		t.Errorf("FilesCopied = %d, want 1 (source fileD)", summary.FilesCopied)
	}

	// User-authored items survive untouched, clash or not.
	checks := map[string][]byte{
		userFile:   []byte("mine"),
		userClash:  []byte("user version"),
		userNested: []byte("wip"),
	}
	for id, want := range checks {
		got := f.drive.Content(id)
		if got == nil {
			t.Errorf("user item %s was deleted", id)
			continue
		}
		if string(got) != string(want) {
			t.Errorf("user item %s content = %q, want %q", id, got, want)
		}
	}
	if _, err := f.drive.GetItem(ctx, testReqCtx(), userFolder); err != nil {
		t.Error("user folder was deleted")
	}
}

func TestSyncResumesPartiallyRecordedFolder(t *testing.T) {
	f := buildFixture()
	ctx := context.Background()

	// An interrupted earlier run copied fileA and recorded it, but
	// never got to folderB. The next run must produce exactly the
	// missing children, once.
	store := manifest.NewStore(f.drive, nil)
	m, err := store.Create(ctx, testReqCtx(), f.destID, f.sourceID, "Reports")
	if err != nil {
		t.Fatalf("Create manifest failed: %v", err)
	}
	fileACopy := f.drive.AddFile(f.destID, "fileA", []byte("alpha"))
	if err := m.RecordChild(f.fileA, fileACopy); err != nil {
		t.Fatalf("RecordChild failed: %v", err)
	}
	if err := store.Persist(ctx, testReqCtx(), f.destID, m); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}

	summary, err := newTestSyncer(f.drive).Sync(ctx, testReqCtx(), sourceItem(t, f), f.destID)
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	if summary.FilesSkipped != 1 {
		t.Errorf("FilesSkipped = %d, want 1 (fileA)", summary.FilesSkipped)
	}
	if summary.FilesCopied != 1 {
		t.Errorf("FilesCopied = %d, want 1 (fileC)", summary.FilesCopied)
	}
	if summary.FoldersCreated != 1 {
		t.Errorf("FoldersCreated = %d, want 1 (folderB)", summary.FoldersCreated)
	}
	visible := 0
	for _, name := range f.drive.ChildNames(f.destID) {
		if name != utils.SystemFolderName {
			visible++
		}
	}
	if visible != 2 {
		t.Errorf("destination has %d visible children, want 2 (fileA copy, folderB copy)", visible)
	}
}

func TestSyncCorruptManifestIsFatalForFolder(t *testing.T) {
	f := buildFixture()
	ctx := context.Background()

	system := f.drive.AddFolder(f.destID, utils.SystemFolderName)
	f.drive.AddFile(system, utils.ManifestObjectName, []byte("{ not json"))

	copiesBefore := f.drive.CopyCalls
	_, err := newTestSyncer(f.drive).Sync(ctx, testReqCtx(), sourceItem(t, f), f.destID)
	if !errors.Is(err, manifest.ErrManifestCorrupt) {
		t.Errorf("Sync with corrupt manifest = %v, want ErrManifestCorrupt", err)
	}
	if f.drive.CopyCalls != copiesBefore {
		t.Error("folder with corrupt manifest must not be written into")
	}
}

func TestSyncCancelledContext(t *testing.T) {
	f := buildFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestSyncer(f.drive).Sync(ctx, testReqCtx(), sourceItem(t, f), f.destID)
	if err == nil {
		t.Error("Sync with cancelled context should report an error")
	}
}
