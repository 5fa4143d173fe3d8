package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/dl-alexandre/drivedup/internal/gateway"
	"github.com/dl-alexandre/drivedup/internal/types"
	"github.com/dl-alexandre/drivedup/internal/utils"
)

type memNode struct {
	item    types.Item
	content []byte
}

// MemDrive is an in-memory Gateway implementation with real folder
// semantics, for exercising whole duplication runs in tests. All
// methods are safe for concurrent use.
type MemDrive struct {
	mu     sync.Mutex
	nodes  map[string]*memNode
	nextID int

	// CopyCalls counts DuplicateFile invocations, mutation-free runs
	// assert it stays zero.
	CopyCalls int

	// WriteCalls counts WriteObject invocations.
	WriteCalls int

	// FailDuplicate, when set, is consulted before each file copy;
	// returning an error makes that copy fail.
	FailDuplicate func(fileID string) error
}

// NewMemDrive creates an empty in-memory drive with a root folder.
func NewMemDrive() *MemDrive {
	d := &MemDrive{nodes: make(map[string]*memNode)}
	d.nodes["root"] = &memNode{item: types.Item{
		ID:   "root",
		Name: "My Drive",
		Kind: types.KindFolder,
	}}
	return d
}

var _ gateway.Gateway = (*MemDrive)(nil)

// AddFolder creates a folder for test setup and returns its ID.
func (d *MemDrive) AddFolder(parentID, name string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.add(parentID, name, types.KindFolder, nil)
}

// AddFile creates a file for test setup and returns its ID.
func (d *MemDrive) AddFile(parentID, name string, content []byte) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.add(parentID, name, types.KindFile, content)
}

// Rename changes an item's name in place, keeping its ID.
func (d *MemDrive) Rename(itemID, newName string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if node, ok := d.nodes[itemID]; ok {
		node.item.Name = newName
	}
}

// Remove deletes an item and its descendants.
func (d *MemDrive) Remove(itemID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.remove(itemID)
}

func (d *MemDrive) remove(itemID string) {
	for id, node := range d.nodes {
		if parentOf(node.item) == itemID {
			d.remove(id)
		}
	}
	delete(d.nodes, itemID)
}

// ChildNames returns the names of a folder's children, for assertions.
// The hidden system folder is included.
func (d *MemDrive) ChildNames(folderID string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var names []string
	for _, node := range d.nodes {
		if parentOf(node.item) == folderID {
			names = append(names, node.item.Name)
		}
	}
	return names
}

// Content returns a file's content, for assertions.
func (d *MemDrive) Content(itemID string) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	if node, ok := d.nodes[itemID]; ok {
		return node.content
	}
	return nil
}

func (d *MemDrive) add(parentID, name string, kind types.ItemKind, content []byte) string {
	d.nextID++
	id := fmt.Sprintf("mem-%d", d.nextID)
	item := types.Item{
		ID:      id,
		Name:    name,
		Kind:    kind,
		Parents: []string{parentID},
	}
	if kind == types.KindFolder {
		item.MimeType = utils.MimeTypeFolder
	}
	d.nodes[id] = &memNode{item: item, content: content}
	return id
}

func (d *MemDrive) GetItem(ctx context.Context, reqCtx *types.RequestContext, itemID string) (*types.Item, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	node, ok := d.nodes[itemID]
	if !ok {
		return nil, gateway.ErrNotFound
	}
	item := node.item
	return &item, nil
}

func (d *MemDrive) ListChildren(ctx context.Context, reqCtx *types.RequestContext, folderID string) ([]*types.Item, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.nodes[folderID]; !ok {
		return nil, gateway.ErrNotFound
	}
	var children []*types.Item
	for _, node := range d.nodes {
		if parentOf(node.item) != folderID {
			continue
		}
		if node.item.Kind == types.KindFolder && node.item.Name == utils.SystemFolderName {
			continue
		}
		item := node.item
		children = append(children, &item)
	}
	return children, nil
}

func (d *MemDrive) CreateFolder(ctx context.Context, reqCtx *types.RequestContext, parentID, name string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.nodes[parentID]; !ok {
		return "", gateway.ErrNotFound
	}
	return d.add(parentID, name, types.KindFolder, nil), nil
}

func (d *MemDrive) DuplicateFile(ctx context.Context, reqCtx *types.RequestContext, fileID, destParentID, name string) (string, error) {
	d.mu.Lock()
	failHook := d.FailDuplicate
	d.mu.Unlock()
	if failHook != nil {
		if err := failHook(fileID); err != nil {
			return "", err
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	src, ok := d.nodes[fileID]
	if !ok {
		return "", gateway.ErrNotFound
	}
	if _, ok := d.nodes[destParentID]; !ok {
		return "", gateway.ErrNotFound
	}
	d.CopyCalls++
	content := append([]byte(nil), src.content...)
	return d.add(destParentID, name, types.KindFile, content), nil
}

func (d *MemDrive) ReadObject(ctx context.Context, reqCtx *types.RequestContext, objectID string) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	node, ok := d.nodes[objectID]
	if !ok {
		return nil, gateway.ErrNotFound
	}
	return append([]byte(nil), node.content...), nil
}

func (d *MemDrive) WriteObject(ctx context.Context, reqCtx *types.RequestContext, parentID, name string, data []byte) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.nodes[parentID]; !ok {
		return "", gateway.ErrNotFound
	}
	d.WriteCalls++
	data = append([]byte(nil), data...)
	if id, ok := d.findChild(parentID, name, types.KindFile); ok {
		d.nodes[id].content = data
		return id, nil
	}
	return d.add(parentID, name, types.KindFile, data), nil
}

func (d *MemDrive) ResolveByName(ctx context.Context, reqCtx *types.RequestContext, parentID, name string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if id, ok := d.findChild(parentID, name, ""); ok {
		return id, nil
	}
	return "", gateway.ErrNotFound
}

func (d *MemDrive) FindChildFolder(ctx context.Context, reqCtx *types.RequestContext, parentID, name string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if id, ok := d.findChild(parentID, name, types.KindFolder); ok {
		return id, nil
	}
	return "", gateway.ErrNotFound
}

func (d *MemDrive) findChild(parentID, name string, kind types.ItemKind) (string, bool) {
	for id, node := range d.nodes {
		if parentOf(node.item) != parentID || node.item.Name != name {
			continue
		}
		if kind != "" && node.item.Kind != kind {
			continue
		}
		return id, true
	}
	return "", false
}

func parentOf(item types.Item) string {
	if len(item.Parents) == 0 {
		return ""
	}
	return item.Parents[0]
}
