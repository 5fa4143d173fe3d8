// Package gateway defines the narrow Drive surface the duplication core
// consumes: listing children, creating folders, copying files, and
// reading/writing the small metadata objects that hold manifests.
package gateway

import (
	"context"
	"errors"

	"github.com/dl-alexandre/drivedup/internal/types"
)

// ErrNotFound is returned when a referenced object, or a name lookup,
// does not resolve. Callers that treat absence as a normal state (the
// manifest store, the driver's name resolution) test for it with
// errors.Is.
var ErrNotFound = errors.New("gateway: not found")

// Gateway abstracts the remote storage service. Implementations must
// return complete child listings (pagination is not the caller's
// problem) and must exclude trashed items.
type Gateway interface {
	// GetItem fetches metadata for one item by ID.
	GetItem(ctx context.Context, reqCtx *types.RequestContext, itemID string) (*types.Item, error)

	// ListChildren returns every child of the folder, excluding trashed
	// items and the hidden manifest system folder.
	ListChildren(ctx context.Context, reqCtx *types.RequestContext, folderID string) ([]*types.Item, error)

	// CreateFolder creates an empty folder under parentID and returns its ID.
	CreateFolder(ctx context.Context, reqCtx *types.RequestContext, parentID, name string) (string, error)

	// DuplicateFile copies a non-folder file into destParentID, keeping name.
	DuplicateFile(ctx context.Context, reqCtx *types.RequestContext, fileID, destParentID, name string) (string, error)

	// ReadObject downloads the full content of a small metadata object.
	ReadObject(ctx context.Context, reqCtx *types.RequestContext, objectID string) ([]byte, error)

	// WriteObject creates or overwrites a metadata object named name
	// inside parentID and returns its ID.
	WriteObject(ctx context.Context, reqCtx *types.RequestContext, parentID, name string, data []byte) (string, error)

	// ResolveByName finds a direct child of parentID by exact name.
	ResolveByName(ctx context.Context, reqCtx *types.RequestContext, parentID, name string) (string, error)

	// FindChildFolder is ResolveByName restricted to folders. Used to
	// locate the hidden system folder, which ListChildren filters out.
	FindChildFolder(ctx context.Context, reqCtx *types.RequestContext, parentID, name string) (string, error)
}
