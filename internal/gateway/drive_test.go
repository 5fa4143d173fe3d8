package gateway

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dl-alexandre/drivedup/internal/utils"
	"google.golang.org/api/drive/v3"
)

func TestEscapeQuery(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Reports", "Reports"},
		{"single quote", "Bob's files", `Bob\'s files`},
		{"backslash", `a\b`, `a\\b`},
		{"both", `it\'s`, `it\\\'s`},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := escapeQuery(tt.input); got != tt.want {
				t.Errorf("escapeQuery(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMapNotFound(t *testing.T) {
	notFound := utils.NewAppError(utils.NewCLIError(utils.ErrCodeFileNotFound, "missing").Build())
	if got := mapNotFound(notFound); got != ErrNotFound {
		t.Errorf("mapNotFound(404) = %v, want ErrNotFound", got)
	}

	denied := utils.NewAppError(utils.NewCLIError(utils.ErrCodePermissionDenied, "denied").Build())
	if got := mapNotFound(denied); got != denied {
		t.Errorf("mapNotFound(403) = %v, want the original error", got)
	}

	plain := errors.New("boom")
	if got := mapNotFound(plain); got != plain {
		t.Errorf("mapNotFound(plain) = %v, want the original error", got)
	}

	// Call sites check the sentinel with errors.Is, so wrapping it
	// must not hide it.
	wrapped := fmt.Errorf("read object: %w", ErrNotFound)
	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("wrapped ErrNotFound must still satisfy errors.Is")
	}
}

func TestConvertDriveFile(t *testing.T) {
	folder := convertDriveFile(&drive.File{
		Id:       "folder-1",
		Name:     "Reports",
		MimeType: utils.MimeTypeFolder,
		Parents:  []string{"parent-1"},
	})

	if !folder.IsFolder() {
		t.Errorf("Kind = %v, want folder", folder.Kind)
	}
	if folder.ID != "folder-1" || folder.Name != "Reports" {
		t.Errorf("Item identity = %+v", folder)
	}
	if len(folder.Parents) != 1 || folder.Parents[0] != "parent-1" {
		t.Errorf("Parents = %v, want [parent-1]", folder.Parents)
	}

	file := convertDriveFile(&drive.File{
		Id:          "file-1",
		Name:        "notes.txt",
		MimeType:    "text/plain",
		Size:        42,
		Md5Checksum: "abc123",
		Trashed:     true,
	})

	if file.IsFolder() {
		t.Errorf("Kind = %v, want file", file.Kind)
	}
	if file.Size != 42 || file.MD5Checksum != "abc123" {
		t.Errorf("File metadata = %+v", file)
	}
	if !file.Trashed {
		t.Error("Expected Trashed to carry over")
	}
}
