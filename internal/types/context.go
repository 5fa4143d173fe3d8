package types

// RequestType categorizes API requests for logging and diagnostics
type RequestType string

const (
	RequestTypeListOrSearch RequestType = "list_or_search"
	RequestTypeCreate       RequestType = "create"
	RequestTypeCopy         RequestType = "copy"
	RequestTypeDownload     RequestType = "download"
	RequestTypeUpload       RequestType = "upload"
	RequestTypeMetadata     RequestType = "metadata"
)

// RequestContext carries per-request metadata through the API layer
type RequestContext struct {
	Profile           string
	DriveID           string
	InvolvedFileIDs   []string
	InvolvedParentIDs []string
	RequestType       RequestType
	TraceID           string
}

// OutputFormat is the CLI output format
type OutputFormat string

const (
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatTable OutputFormat = "table"
)

// GlobalFlags holds flags shared by every command
type GlobalFlags struct {
	Profile      string
	OutputFormat OutputFormat
	Quiet        bool
	Verbose      bool
	Debug        bool
	Config       string
	LogFile      string
	DryRun       bool
	JSON         bool
}
