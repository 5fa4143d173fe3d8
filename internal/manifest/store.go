package manifest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dl-alexandre/drivedup/internal/gateway"
	"github.com/dl-alexandre/drivedup/internal/logging"
	"github.com/dl-alexandre/drivedup/internal/types"
	"github.com/dl-alexandre/drivedup/internal/utils"
)

// Store reads and writes manifests through the storage gateway. Each
// managed destination folder carries exactly one manifest object inside
// its hidden system folder.
type Store struct {
	gw     gateway.Gateway
	logger logging.Logger

	mu            sync.Mutex
	systemFolders map[string]string // destination folder ID -> system folder ID
}

// NewStore creates a manifest store over a gateway
func NewStore(gw gateway.Gateway, logger logging.Logger) *Store {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &Store{
		gw:            gw,
		logger:        logger,
		systemFolders: make(map[string]string),
	}
}

// Load reads the manifest of a destination folder. ErrNotManaged is
// returned when no system folder or manifest object exists yet;
// ErrManifestCorrupt when the object exists but does not decode.
func (s *Store) Load(ctx context.Context, reqCtx *types.RequestContext, destFolderID string) (*Manifest, error) {
	systemID, err := s.findSystemFolder(ctx, reqCtx, destFolderID)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return nil, ErrNotManaged
		}
		return nil, err
	}

	objectID, err := s.gw.ResolveByName(ctx, reqCtx, systemID, utils.ManifestObjectName)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			// System folder exists but the manifest object was never
			// written; treat as unmanaged so a retry can recreate it.
			return nil, ErrNotManaged
		}
		return nil, err
	}

	data, err := s.gw.ReadObject(ctx, reqCtx, objectID)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return nil, ErrNotManaged
		}
		return nil, err
	}

	m, err := Decode(data)
	if err != nil {
		s.logger.Error("Manifest failed to decode",
			logging.F("destinationFolderId", destFolderID),
			logging.F("objectId", objectID),
			logging.F("error", err.Error()),
		)
		return nil, err
	}

	return m, nil
}

// Create makes the hidden system folder and writes an initial manifest
// with an empty child mapping. Fails with ErrAlreadyManaged if a
// manifest already exists.
func (s *Store) Create(ctx context.Context, reqCtx *types.RequestContext, destFolderID, originID, originName string) (*Manifest, error) {
	existing, err := s.Load(ctx, reqCtx, destFolderID)
	if err == nil {
		return nil, fmt.Errorf("%w: destination %s tracks origin %s", ErrAlreadyManaged, destFolderID, existing.OriginID)
	}
	if !errors.Is(err, ErrNotManaged) {
		return nil, err
	}

	systemID, err := s.findSystemFolder(ctx, reqCtx, destFolderID)
	if errors.Is(err, gateway.ErrNotFound) {
		systemID, err = s.gw.CreateFolder(ctx, reqCtx, destFolderID, utils.SystemFolderName)
		if err != nil {
			return nil, err
		}
		s.cacheSystemFolder(destFolderID, systemID)
	} else if err != nil {
		return nil, err
	}

	m := New(originID, originName, time.Now())
	data, err := m.Encode()
	if err != nil {
		return nil, err
	}
	if _, err := s.gw.WriteObject(ctx, reqCtx, systemID, utils.ManifestObjectName, data); err != nil {
		return nil, err
	}

	s.logger.Info("Destination folder is now managed",
		logging.F("destinationFolderId", destFolderID),
		logging.F("originId", originID),
		logging.F("originName", originName),
	)

	return m, nil
}

// Persist writes the manifest back. Overwrite semantics at the storage
// layer; the logical append-only guarantee is enforced by RecordChild.
// Safe to call repeatedly.
func (s *Store) Persist(ctx context.Context, reqCtx *types.RequestContext, destFolderID string, m *Manifest) error {
	systemID, err := s.findSystemFolder(ctx, reqCtx, destFolderID)
	if err != nil {
		return err
	}

	data, err := m.Encode()
	if err != nil {
		return err
	}

	if _, err := s.gw.WriteObject(ctx, reqCtx, systemID, utils.ManifestObjectName, data); err != nil {
		return err
	}

	s.logger.Debug("Manifest persisted",
		logging.F("destinationFolderId", destFolderID),
		logging.F("mappings", m.Len()),
	)
	return nil
}

func (s *Store) findSystemFolder(ctx context.Context, reqCtx *types.RequestContext, destFolderID string) (string, error) {
	s.mu.Lock()
	cached, ok := s.systemFolders[destFolderID]
	s.mu.Unlock()
	if ok {
		return cached, nil
	}

	systemID, err := s.gw.FindChildFolder(ctx, reqCtx, destFolderID, utils.SystemFolderName)
	if err != nil {
		return "", err
	}
	s.cacheSystemFolder(destFolderID, systemID)
	return systemID, nil
}

func (s *Store) cacheSystemFolder(destFolderID, systemID string) {
	s.mu.Lock()
	s.systemFolders[destFolderID] = systemID
	s.mu.Unlock()
}
