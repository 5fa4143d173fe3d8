package planner

import (
	"testing"
	"time"

	"github.com/dl-alexandre/drivedup/internal/manifest"
	"github.com/dl-alexandre/drivedup/internal/types"
	"github.com/dl-alexandre/drivedup/internal/utils"
)

func folder(id, name string) *types.Item {
	return &types.Item{ID: id, Name: name, Kind: types.KindFolder, MimeType: utils.MimeTypeFolder}
}

func file(id, name string) *types.Item {
	return &types.Item{ID: id, Name: name, Kind: types.KindFile}
}

func newManifest(t *testing.T, mappings map[string]string) *manifest.Manifest {
	t.Helper()
	m := manifest.New("origin-1", "Origin", time.Now())
	for src, dest := range mappings {
		if err := m.RecordChild(src, dest); err != nil {
			t.Fatalf("RecordChild(%s, %s) failed: %v", src, dest, err)
		}
	}
	return m
}

func TestComputeNilManifest(t *testing.T) {
	children := []*types.Item{
		file("f1", "a.txt"),
		folder("d1", "sub"),
	}

	plan := Compute(children, nil)

	if len(plan.ToCreate) != 2 {
		t.Fatalf("ToCreate = %d, want 2", len(plan.ToCreate))
	}
	if len(plan.ToDescend) != 0 || len(plan.ToSkip) != 0 {
		t.Errorf("expected nothing to descend or skip, got %d/%d", len(plan.ToDescend), len(plan.ToSkip))
	}
	if plan.IsNoop() {
		t.Error("plan with creations should not be a no-op")
	}
}

func TestComputeDecisions(t *testing.T) {
	m := newManifest(t, map[string]string{
		"mapped-file":   "dest-file",
		"mapped-folder": "dest-folder",
	})

	children := []*types.Item{
		file("mapped-file", "a.txt"),
		folder("mapped-folder", "sub"),
		file("new-file", "b.txt"),
		folder("new-folder", "other"),
	}

	plan := Compute(children, m)

	if len(plan.ToCreate) != 2 {
		t.Fatalf("ToCreate = %d, want 2", len(plan.ToCreate))
	}
	if plan.ToCreate[0].ID != "new-file" || plan.ToCreate[1].ID != "new-folder" {
		t.Errorf("ToCreate order = %s, %s; want new-file, new-folder", plan.ToCreate[0].ID, plan.ToCreate[1].ID)
	}

	if len(plan.ToSkip) != 1 || plan.ToSkip[0].ID != "mapped-file" {
		t.Errorf("ToSkip = %+v, want only mapped-file", plan.ToSkip)
	}

	if len(plan.ToDescend) != 1 {
		t.Fatalf("ToDescend = %d, want 1", len(plan.ToDescend))
	}
	if plan.ToDescend[0].Source.ID != "mapped-folder" || plan.ToDescend[0].DestinationID != "dest-folder" {
		t.Errorf("ToDescend = %+v, want mapped-folder -> dest-folder", plan.ToDescend[0])
	}
}

func TestComputeIdempotent(t *testing.T) {
	// A fully mapped listing plans no mutations at all.
	m := newManifest(t, map[string]string{
		"f1": "c1",
		"d1": "c2",
	})

	children := []*types.Item{
		file("f1", "a.txt"),
		folder("d1", "sub"),
	}

	plan := Compute(children, m)

	if !plan.IsNoop() {
		t.Errorf("fully mapped plan should be a no-op, got ToCreate=%d", len(plan.ToCreate))
	}
	if len(plan.ToDescend) != 1 {
		t.Errorf("mapped folders must still be descended, got %d", len(plan.ToDescend))
	}
}

func TestComputeRenameDoesNotRemap(t *testing.T) {
	// Matching is by origin ID only: a renamed source file stays
	// mapped, and a new file reusing the old name is a fresh creation.
	m := newManifest(t, map[string]string{"f1": "c1"})

	children := []*types.Item{
		file("f1", "renamed.txt"),
		file("f2", "a.txt"),
	}

	plan := Compute(children, m)

	if len(plan.ToSkip) != 1 || plan.ToSkip[0].ID != "f1" {
		t.Errorf("renamed mapped file should be skipped, got %+v", plan.ToSkip)
	}
	if len(plan.ToCreate) != 1 || plan.ToCreate[0].ID != "f2" {
		t.Errorf("name-reusing new file should be created, got %+v", plan.ToCreate)
	}
}

func TestComputeNoResurrection(t *testing.T) {
	// The mapping survives destination deletion; the planner never
	// re-creates a mapped child.
	m := newManifest(t, map[string]string{"f1": "deleted-dest"})

	plan := Compute([]*types.Item{file("f1", "a.txt")}, m)

	if len(plan.ToCreate) != 0 {
		t.Errorf("mapped file must never be re-created, got ToCreate=%d", len(plan.ToCreate))
	}
	if len(plan.ToSkip) != 1 {
		t.Errorf("mapped file should be skipped, got %d", len(plan.ToSkip))
	}
}

func TestComputeEmptyChildren(t *testing.T) {
	plan := Compute(nil, newManifest(t, nil))

	if !plan.IsNoop() {
		t.Error("empty listing should be a no-op")
	}
}
