package types

// ItemKind distinguishes folder-like nodes from plain files.
type ItemKind string

const (
	KindFolder ItemKind = "folder"
	KindFile   ItemKind = "file"
)

// Item represents a Google Drive node as seen by the duplication core.
// The same shape is used for source and destination nodes; ID is the
// stable Drive file ID and the only identity the merge relies on.
type Item struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Kind         ItemKind `json:"kind"`
	MimeType     string   `json:"mimeType,omitempty"`
	Size         int64    `json:"size,omitempty"`
	MD5Checksum  string   `json:"md5Checksum,omitempty"`
	CreatedTime  string   `json:"createdTime,omitempty"`
	ModifiedTime string   `json:"modifiedTime,omitempty"`
	Parents      []string `json:"parents,omitempty"`
	Trashed      bool     `json:"trashed,omitempty"`
}

// IsFolder reports whether the item is a folder.
func (i Item) IsFolder() bool {
	return i.Kind == KindFolder
}

// ItemListResult represents one page of a children listing.
type ItemListResult struct {
	Items            []*Item `json:"items"`
	NextPageToken    string  `json:"nextPageToken,omitempty"`
	IncompleteSearch bool    `json:"incompleteSearch,omitempty"`
}
