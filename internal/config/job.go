package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/dl-alexandre/drivedup/internal/utils"
)

// DefaultJobFileName is looked up in the working directory when no job
// file is given on the command line.
const DefaultJobFileName = "drive_config.json"

// Job describes one duplication job: which folders to duplicate, from
// where, and into which batch folder. The JSON keys match the config
// format the tool has always read, so existing job files keep working.
type Job struct {
	// FolderNames lists the source folder names to duplicate. Empty
	// means every folder directly under the source parent.
	FolderNames []string `json:"FOLDERS_TO_COPY"`

	// SourceParentID is the folder whose children are duplicated.
	SourceParentID string `json:"SOURCE_PARENT_FOLDER_ID"`

	// DestinationParentID is where the batch folder is created.
	// Empty means the Drive root.
	DestinationParentID string `json:"DESTINATION_PARENT_FOLDER_ID"`

	// BatchFolderName names the batch folder that collects the copies.
	BatchFolderName string `json:"NEW_BATCH_FOLDER_NAME"`

	// BatchFolderID pins an existing batch folder by ID, skipping the
	// name lookup entirely.
	BatchFolderID string `json:"BATCH_FOLDER_ID,omitempty"`
}

// LoadJob reads a job file and applies environment overrides.
func LoadJob(path string) (*Job, error) {
	job := &Job{}

	if path == "" {
		path = DefaultJobFileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) || path != DefaultJobFileName {
			return nil, fmt.Errorf("failed to read job file %s: %w", path, err)
		}
		// No job file: everything must come from env or flags.
	} else if err := json.Unmarshal(data, job); err != nil {
		return nil, fmt.Errorf("failed to parse job file %s: %w", path, err)
	}

	job.loadFromEnv()
	job.applyDefaults()

	return job, nil
}

func (j *Job) loadFromEnv() {
	if v := os.Getenv(EnvPrefix + "SOURCE_PARENT_ID"); v != "" {
		j.SourceParentID = v
	}
	if v := os.Getenv(EnvPrefix + "DESTINATION_PARENT_ID"); v != "" {
		j.DestinationParentID = v
	}
	if v := os.Getenv(EnvPrefix + "FOLDER_NAMES"); v != "" {
		j.FolderNames = splitNonEmpty(v)
	}
	if v := os.Getenv(EnvPrefix + "BATCH_FOLDER_NAME"); v != "" {
		j.BatchFolderName = v
	}
	if v := os.Getenv(EnvPrefix + "BATCH_FOLDER_ID"); v != "" {
		j.BatchFolderID = v
	}
}

func (j *Job) applyDefaults() {
	if j.BatchFolderName == "" {
		j.BatchFolderName = utils.DefaultBatchFolderName
	}
}

// Validate checks that the job has enough to run.
func (j *Job) Validate() error {
	if j.SourceParentID == "" {
		return fmt.Errorf("source parent folder ID is required (set SOURCE_PARENT_FOLDER_ID in the job file, %sSOURCE_PARENT_ID, or --source)", EnvPrefix)
	}
	return nil
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
