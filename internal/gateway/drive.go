package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dl-alexandre/drivedup/internal/api"
	"github.com/dl-alexandre/drivedup/internal/types"
	"github.com/dl-alexandre/drivedup/internal/utils"
	"google.golang.org/api/drive/v3"
)

const itemFields = "id,name,mimeType,size,md5Checksum,createdTime,modifiedTime,parents,trashed"

// DriveGateway implements Gateway on the Google Drive v3 API through the
// retrying api.Client.
type DriveGateway struct {
	client *api.Client
}

// NewDriveGateway creates a gateway over an authenticated client
func NewDriveGateway(client *api.Client) *DriveGateway {
	return &DriveGateway{client: client}
}

// GetItem fetches one item's metadata by ID
func (g *DriveGateway) GetItem(ctx context.Context, reqCtx *types.RequestContext, itemID string) (*types.Item, error) {
	reqCtx.InvolvedFileIDs = append(reqCtx.InvolvedFileIDs, itemID)

	call := g.client.Service().Files.Get(itemID).Fields(itemFields)

	result, err := api.ExecuteWithRetry(ctx, g.client, reqCtx, func() (*drive.File, error) {
		return call.Do()
	})
	if err != nil {
		return nil, mapNotFound(err)
	}

	return convertDriveFile(result), nil
}

// ListChildren lists the full contents of a folder, following pagination.
// The hidden system folder is filtered out so merge traversal never sees it.
func (g *DriveGateway) ListChildren(ctx context.Context, reqCtx *types.RequestContext, folderID string) ([]*types.Item, error) {
	reqCtx.InvolvedParentIDs = append(reqCtx.InvolvedParentIDs, folderID)

	query := fmt.Sprintf("'%s' in parents and trashed = false", escapeQuery(folderID))

	var items []*types.Item
	pageToken := ""
	for {
		call := g.client.Service().Files.List().
			Q(query).
			Fields("nextPageToken,files(" + itemFields + ")").
			PageSize(1000)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		result, err := api.ExecuteWithRetry(ctx, g.client, reqCtx, func() (*drive.FileList, error) {
			return call.Do()
		})
		if err != nil {
			return nil, err
		}

		for _, f := range result.Files {
			item := convertDriveFile(f)
			if item.IsFolder() && item.Name == utils.SystemFolderName {
				continue
			}
			items = append(items, item)
		}

		if result.NextPageToken == "" {
			break
		}
		pageToken = result.NextPageToken
	}

	return items, nil
}

// CreateFolder creates an empty folder and returns its ID
func (g *DriveGateway) CreateFolder(ctx context.Context, reqCtx *types.RequestContext, parentID, name string) (string, error) {
	reqCtx.InvolvedParentIDs = append(reqCtx.InvolvedParentIDs, parentID)

	metadata := &drive.File{
		Name:     name,
		MimeType: utils.MimeTypeFolder,
		Parents:  []string{parentID},
	}

	call := g.client.Service().Files.Create(metadata).Fields("id")

	result, err := api.ExecuteWithRetry(ctx, g.client, reqCtx, func() (*drive.File, error) {
		return call.Do()
	})
	if err != nil {
		return "", err
	}

	return result.Id, nil
}

// DuplicateFile copies a file into destParentID and returns the copy's ID
func (g *DriveGateway) DuplicateFile(ctx context.Context, reqCtx *types.RequestContext, fileID, destParentID, name string) (string, error) {
	reqCtx.InvolvedFileIDs = append(reqCtx.InvolvedFileIDs, fileID)
	reqCtx.InvolvedParentIDs = append(reqCtx.InvolvedParentIDs, destParentID)

	metadata := &drive.File{
		Name:    name,
		Parents: []string{destParentID},
	}

	call := g.client.Service().Files.Copy(fileID, metadata).Fields("id")

	result, err := api.ExecuteWithRetry(ctx, g.client, reqCtx, func() (*drive.File, error) {
		return call.Do()
	})
	if err != nil {
		return "", err
	}

	return result.Id, nil
}

// ReadObject downloads a metadata object's content in full
func (g *DriveGateway) ReadObject(ctx context.Context, reqCtx *types.RequestContext, objectID string) ([]byte, error) {
	reqCtx.InvolvedFileIDs = append(reqCtx.InvolvedFileIDs, objectID)

	call := g.client.Service().Files.Get(objectID)

	data, err := api.ExecuteWithRetry(ctx, g.client, reqCtx, func() ([]byte, error) {
		resp, err := call.Download()
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		return io.ReadAll(resp.Body)
	})
	if err != nil {
		return nil, mapNotFound(err)
	}

	return data, nil
}

// WriteObject creates or overwrites an object by name within a parent.
// Overwrite keeps the object ID stable across runs.
func (g *DriveGateway) WriteObject(ctx context.Context, reqCtx *types.RequestContext, parentID, name string, data []byte) (string, error) {
	existingID, err := g.ResolveByName(ctx, reqCtx, parentID, name)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", err
	}

	if existingID != "" {
		call := g.client.Service().Files.Update(existingID, &drive.File{}).
			Media(bytes.NewReader(data)).
			Fields("id")
		result, err := api.ExecuteWithRetry(ctx, g.client, reqCtx, func() (*drive.File, error) {
			return call.Do()
		})
		if err != nil {
			return "", err
		}
		return result.Id, nil
	}

	metadata := &drive.File{
		Name:    name,
		Parents: []string{parentID},
	}
	call := g.client.Service().Files.Create(metadata).
		Media(bytes.NewReader(data)).
		Fields("id")
	result, err := api.ExecuteWithRetry(ctx, g.client, reqCtx, func() (*drive.File, error) {
		return call.Do()
	})
	if err != nil {
		return "", err
	}
	return result.Id, nil
}

// ResolveByName finds a direct child by exact name
func (g *DriveGateway) ResolveByName(ctx context.Context, reqCtx *types.RequestContext, parentID, name string) (string, error) {
	return g.resolve(ctx, reqCtx, parentID, name, "")
}

// FindChildFolder finds a direct child folder by exact name
func (g *DriveGateway) FindChildFolder(ctx context.Context, reqCtx *types.RequestContext, parentID, name string) (string, error) {
	return g.resolve(ctx, reqCtx, parentID, name, utils.MimeTypeFolder)
}

func (g *DriveGateway) resolve(ctx context.Context, reqCtx *types.RequestContext, parentID, name, mimeType string) (string, error) {
	reqCtx.InvolvedParentIDs = append(reqCtx.InvolvedParentIDs, parentID)

	query := fmt.Sprintf("'%s' in parents and name = '%s' and trashed = false",
		escapeQuery(parentID), escapeQuery(name))
	if mimeType != "" {
		query += fmt.Sprintf(" and mimeType = '%s'", mimeType)
	}

	call := g.client.Service().Files.List().
		Q(query).
		Fields("files(id)").
		PageSize(1)

	result, err := api.ExecuteWithRetry(ctx, g.client, reqCtx, func() (*drive.FileList, error) {
		return call.Do()
	})
	if err != nil {
		return "", err
	}

	if len(result.Files) == 0 {
		return "", ErrNotFound
	}
	return result.Files[0].Id, nil
}

// escapeQuery escapes a value embedded in a Drive query literal
func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return s
}

// mapNotFound converts a classified 404 into the ErrNotFound sentinel
func mapNotFound(err error) error {
	if utils.ErrorCode(err) == utils.ErrCodeFileNotFound {
		return ErrNotFound
	}
	return err
}

func convertDriveFile(f *drive.File) *types.Item {
	kind := types.KindFile
	if f.MimeType == utils.MimeTypeFolder {
		kind = types.KindFolder
	}
	return &types.Item{
		ID:           f.Id,
		Name:         f.Name,
		Kind:         kind,
		MimeType:     f.MimeType,
		Size:         f.Size,
		MD5Checksum:  f.Md5Checksum,
		CreatedTime:  f.CreatedTime,
		ModifiedTime: f.ModifiedTime,
		Parents:      f.Parents,
		Trashed:      f.Trashed,
	}
}
