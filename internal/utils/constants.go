package utils

// OAuth scopes
const (
	ScopeFull     = "https://www.googleapis.com/auth/drive"
	ScopeFile     = "https://www.googleapis.com/auth/drive.file"
	ScopeReadonly = "https://www.googleapis.com/auth/drive.readonly"
)

// ScopesDuplicate is the scope set the duplicator needs: it reads the
// source tree and writes folders, file copies, and manifests at the
// destination.
var ScopesDuplicate = []string{ScopeFull}

// Retry configuration
const (
	DefaultMaxRetries   = 3
	DefaultRetryDelayMs = 1000
	MaxRetryDelayMs     = 32000
)

// DefaultCopyConcurrency bounds concurrent file copies within one folder.
const DefaultCopyConcurrency = 4

// Schema version for CLI output envelopes
const SchemaVersion = "1.0"

// Drive MIME types the duplicator cares about
const (
	MimeTypeFolder   = "application/vnd.google-apps.folder"
	MimeTypeShortcut = "application/vnd.google-apps.shortcut"
)

// Manifest layout inside a managed destination folder. The dot prefix
// keeps the system folder sorted first and signals "do not touch".
const (
	SystemFolderName   = ".drivedup"
	ManifestObjectName = "manifest.json"
	ManifestSchema     = 1
)

// DefaultBatchFolderName is used when the config does not name the
// destination batch folder.
const DefaultBatchFolderName = "Copied Folders"
