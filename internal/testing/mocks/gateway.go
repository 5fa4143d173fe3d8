// Package mocks provides test doubles for the storage gateway: a
// function-field mock for unit tests and an in-memory Drive for
// exercising whole duplication runs.
package mocks

import (
	"context"

	"github.com/dl-alexandre/drivedup/internal/gateway"
	"github.com/dl-alexandre/drivedup/internal/types"
)

// MockGateway is a function-field mock of gateway.Gateway. Unset
// functions return gateway.ErrNotFound so tests only stub what they
// use.
type MockGateway struct {
	GetItemFunc         func(ctx context.Context, reqCtx *types.RequestContext, itemID string) (*types.Item, error)
	ListChildrenFunc    func(ctx context.Context, reqCtx *types.RequestContext, folderID string) ([]*types.Item, error)
	CreateFolderFunc    func(ctx context.Context, reqCtx *types.RequestContext, parentID, name string) (string, error)
	DuplicateFileFunc   func(ctx context.Context, reqCtx *types.RequestContext, fileID, destParentID, name string) (string, error)
	ReadObjectFunc      func(ctx context.Context, reqCtx *types.RequestContext, objectID string) ([]byte, error)
	WriteObjectFunc     func(ctx context.Context, reqCtx *types.RequestContext, parentID, name string, data []byte) (string, error)
	ResolveByNameFunc   func(ctx context.Context, reqCtx *types.RequestContext, parentID, name string) (string, error)
	FindChildFolderFunc func(ctx context.Context, reqCtx *types.RequestContext, parentID, name string) (string, error)
}

var _ gateway.Gateway = (*MockGateway)(nil)

func (m *MockGateway) GetItem(ctx context.Context, reqCtx *types.RequestContext, itemID string) (*types.Item, error) {
	if m.GetItemFunc != nil {
		return m.GetItemFunc(ctx, reqCtx, itemID)
	}
	return nil, gateway.ErrNotFound
}

func (m *MockGateway) ListChildren(ctx context.Context, reqCtx *types.RequestContext, folderID string) ([]*types.Item, error) {
	if m.ListChildrenFunc != nil {
		return m.ListChildrenFunc(ctx, reqCtx, folderID)
	}
	return nil, nil
}

func (m *MockGateway) CreateFolder(ctx context.Context, reqCtx *types.RequestContext, parentID, name string) (string, error) {
	if m.CreateFolderFunc != nil {
		return m.CreateFolderFunc(ctx, reqCtx, parentID, name)
	}
	return "", gateway.ErrNotFound
}

func (m *MockGateway) DuplicateFile(ctx context.Context, reqCtx *types.RequestContext, fileID, destParentID, name string) (string, error) {
	if m.DuplicateFileFunc != nil {
		return m.DuplicateFileFunc(ctx, reqCtx, fileID, destParentID, name)
	}
	return "", gateway.ErrNotFound
}

func (m *MockGateway) ReadObject(ctx context.Context, reqCtx *types.RequestContext, objectID string) ([]byte, error) {
	if m.ReadObjectFunc != nil {
		return m.ReadObjectFunc(ctx, reqCtx, objectID)
	}
	return nil, gateway.ErrNotFound
}

func (m *MockGateway) WriteObject(ctx context.Context, reqCtx *types.RequestContext, parentID, name string, data []byte) (string, error) {
	if m.WriteObjectFunc != nil {
		return m.WriteObjectFunc(ctx, reqCtx, parentID, name, data)
	}
	return "", gateway.ErrNotFound
}

func (m *MockGateway) ResolveByName(ctx context.Context, reqCtx *types.RequestContext, parentID, name string) (string, error) {
	if m.ResolveByNameFunc != nil {
		return m.ResolveByNameFunc(ctx, reqCtx, parentID, name)
	}
	return "", gateway.ErrNotFound
}

func (m *MockGateway) FindChildFolder(ctx context.Context, reqCtx *types.RequestContext, parentID, name string) (string, error) {
	if m.FindChildFolderFunc != nil {
		return m.FindChildFolderFunc(ctx, reqCtx, parentID, name)
	}
	return "", gateway.ErrNotFound
}
