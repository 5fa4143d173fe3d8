// Package planner computes the merge decision set for one folder pair.
// It is a pure function of the source children and the destination's
// manifest; it never touches storage.
package planner

import (
	"github.com/dl-alexandre/drivedup/internal/manifest"
	"github.com/dl-alexandre/drivedup/internal/types"
)

// Descend pairs a mapped source folder with its known destination folder
type Descend struct {
	Source        *types.Item
	DestinationID string
}

// Plan is the create/descend/skip decision set for one folder's children.
//
// Identity is origin-id membership in the manifest, never name or
// content: destination renames do not disturb matching, and a mapping
// whose destination the user deleted stays "handled" forever, so deleted
// copies are never resurrected. Children present only at the destination
// are not represented here at all; nothing is ever planned against them.
type Plan struct {
	// ToCreate lists source children with no mapping yet, in source
	// listing order. Ordering is not semantically required but keeps
	// runs and logs deterministic.
	ToCreate []*types.Item

	// ToDescend lists already-mapped source folders. They are always
	// recursed into: new content can appear arbitrarily deep below an
	// existing mapping.
	ToDescend []Descend

	// ToSkip lists already-mapped source files. A file, once
	// duplicated, is never copied again, even if the source changed.
	ToSkip []*types.Item
}

// Compute builds the merge plan for one folder's children. A nil
// manifest means the destination folder is brand new: everything is
// created.
func Compute(sourceChildren []*types.Item, m *manifest.Manifest) Plan {
	var plan Plan

	for _, child := range sourceChildren {
		if m == nil {
			plan.ToCreate = append(plan.ToCreate, child)
			continue
		}

		destID, mapped := m.Lookup(child.ID)
		switch {
		case !mapped:
			plan.ToCreate = append(plan.ToCreate, child)
		case child.IsFolder():
			plan.ToDescend = append(plan.ToDescend, Descend{Source: child, DestinationID: destID})
		default:
			plan.ToSkip = append(plan.ToSkip, child)
		}
	}

	return plan
}

// IsNoop reports whether the plan requires no storage mutations
func (p Plan) IsNoop() bool {
	return len(p.ToCreate) == 0
}
