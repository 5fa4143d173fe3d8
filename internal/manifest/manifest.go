// Package manifest defines the provenance record attached to every
// destination folder the duplicator manages, and the store that keeps it
// inside a hidden system folder on Drive.
//
// The manifest maps source child IDs to the destination children that
// were duplicated from them. The mapping is append-only for the life of
// the folder: entries are never removed or repointed, even when the user
// later deletes or renames the destination copy. That single rule is
// what makes repeated runs idempotent, rename-proof, and unable to
// resurrect content the user removed.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dl-alexandre/drivedup/internal/utils"
)

var (
	// ErrNotManaged means the destination folder has no manifest yet.
	ErrNotManaged = errors.New("manifest: folder is not managed")

	// ErrManifestCorrupt means a stored manifest exists but does not
	// decode to the expected schema. The affected subtree is skipped
	// rather than guessed at.
	ErrManifestCorrupt = errors.New("manifest: stored manifest is corrupt")

	// ErrAlreadyManaged means Create was called for a folder that
	// already has a manifest. Caller bug.
	ErrAlreadyManaged = errors.New("manifest: folder is already managed")

	// ErrDuplicateOriginMapping means RecordChild was called twice for
	// the same source ID. Planner/synchronizer bug, fatal.
	ErrDuplicateOriginMapping = errors.New("manifest: duplicate origin mapping")

	// ErrInvalidMapping means RecordChild was called with an empty
	// source or destination ID. Caller bug.
	ErrInvalidMapping = errors.New("manifest: invalid mapping")
)

// Entry maps one source child to the destination child duplicated from it
type Entry struct {
	SourceID      string `json:"sourceId"`
	DestinationID string `json:"destinationId"`
}

// Manifest is the provenance record for one managed destination folder.
// Entries keep insertion order; byOrigin gives O(1) membership checks.
type Manifest struct {
	Schema     int       `json:"schema"`
	OriginID   string    `json:"originId"`
	OriginName string    `json:"originName"`
	CreatedAt  time.Time `json:"createdAt"`
	Entries    []Entry   `json:"childOriginMap"`

	byOrigin map[string]string
}

// New creates an initial manifest with an empty child mapping
func New(originID, originName string, createdAt time.Time) *Manifest {
	return &Manifest{
		Schema:     utils.ManifestSchema,
		OriginID:   originID,
		OriginName: originName,
		CreatedAt:  createdAt.UTC(),
		byOrigin:   make(map[string]string),
	}
}

// Lookup returns the destination ID mapped to a source ID, if any
func (m *Manifest) Lookup(sourceID string) (string, bool) {
	destID, ok := m.byOrigin[sourceID]
	return destID, ok
}

// Has reports whether a source ID has been materialized already
func (m *Manifest) Has(sourceID string) bool {
	_, ok := m.byOrigin[sourceID]
	return ok
}

// Len returns the number of recorded child mappings
func (m *Manifest) Len() int {
	return len(m.Entries)
}

// RecordChild appends a new source-to-destination mapping. Mappings are
// append-only; recording the same source twice violates the planner's
// contract and returns ErrDuplicateOriginMapping.
func (m *Manifest) RecordChild(sourceID, destinationID string) error {
	if sourceID == "" || destinationID == "" {
		return fmt.Errorf("%w: empty id (source=%q destination=%q)", ErrInvalidMapping, sourceID, destinationID)
	}
	if existing, ok := m.byOrigin[sourceID]; ok {
		return fmt.Errorf("%w: source %s already mapped to %s", ErrDuplicateOriginMapping, sourceID, existing)
	}
	m.Entries = append(m.Entries, Entry{SourceID: sourceID, DestinationID: destinationID})
	m.byOrigin[sourceID] = destinationID
	return nil
}

// Encode serializes the manifest for storage
func (m *Manifest) Encode() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// Decode parses a stored manifest and validates its invariants. Any
// failure is reported as ErrManifestCorrupt.
func Decode(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifestCorrupt, err)
	}
	if m.Schema != utils.ManifestSchema {
		return nil, fmt.Errorf("%w: unsupported schema %d", ErrManifestCorrupt, m.Schema)
	}
	if m.OriginID == "" {
		return nil, fmt.Errorf("%w: missing origin id", ErrManifestCorrupt)
	}

	m.byOrigin = make(map[string]string, len(m.Entries))
	for _, entry := range m.Entries {
		if entry.SourceID == "" || entry.DestinationID == "" {
			return nil, fmt.Errorf("%w: incomplete mapping entry", ErrManifestCorrupt)
		}
		if _, ok := m.byOrigin[entry.SourceID]; ok {
			return nil, fmt.Errorf("%w: duplicate mapping for source %s", ErrManifestCorrupt, entry.SourceID)
		}
		m.byOrigin[entry.SourceID] = entry.DestinationID
	}

	return &m, nil
}
