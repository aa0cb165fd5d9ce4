package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fieldadmin/src/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

const snapshotFileName = "field_definitions.snapshot"

// SnapshotEngine writes and reads BSON-encoded snapshots of the full field
// definition set, for export and operator-driven restore.
type SnapshotEngine struct {
	DataDirectory string
	logger        *zap.SugaredLogger
}

type snapshotDocument struct {
	Version     int                      `bson:"version"`
	CreatedAt   time.Time                `bson:"created_at"`
	Definitions []models.FieldDefinition `bson:"definitions"`
}

func NewSnapshotEngine(dataDir string, logger *zap.SugaredLogger) (*SnapshotEngine, error) {
	store := &SnapshotEngine{
		DataDirectory: dataDir,
		logger:        logger,
	}

	// Ensure the data directory exists
	if err := os.MkdirAll(store.DataDirectory, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", store.DataDirectory, err)
	}

	return store, nil
}

// WriteSnapshot encodes the definition set to a temp file and renames it
// into place. The file is exclusively locked for the duration of the write
// and flushed before the rename.
func (e *SnapshotEngine) WriteSnapshot(defs []models.FieldDefinition) error {
	doc := snapshotDocument{
		Version:     1,
		CreatedAt:   time.Now().UTC(),
		Definitions: defs,
	}

	encoded, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("error encoding snapshot data: %w", err)
	}

	tempFile, err := os.CreateTemp(e.DataDirectory, "snapshot-*.tmp")
	if err != nil {
		return fmt.Errorf("error creating snapshot temp file: %w", err)
	}
	tempPath := tempFile.Name()

	if err := unix.Flock(int(tempFile.Fd()), unix.LOCK_EX); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return fmt.Errorf("error locking snapshot file: %w", err)
	}

	fileLen, err := tempFile.Write(encoded)
	if err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return fmt.Errorf("error writing snapshot file: %w", err)
	}
	if fileLen != len(encoded) {
		tempFile.Close()
		os.Remove(tempPath)
		return fmt.Errorf("error writing snapshot file: wrote %d bytes, expected %d", fileLen, len(encoded))
	}

	if err := unix.Fdatasync(int(tempFile.Fd())); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return fmt.Errorf("error syncing snapshot file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("error closing snapshot file: %w", err)
	}

	finalPath := filepath.Join(e.DataDirectory, snapshotFileName)
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("error moving snapshot into place: %w", err)
	}

	if e.logger != nil {
		e.logger.Infow("Wrote field definition snapshot",
			"path", finalPath,
			"definitions", len(defs),
			"bytes", fileLen)
	}
	return nil
}

// ReadSnapshot loads the last written snapshot.
func (e *SnapshotEngine) ReadSnapshot() ([]models.FieldDefinition, error) {
	path := filepath.Join(e.DataDirectory, snapshotFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading snapshot file %s: %w", path, err)
	}

	var doc snapshotDocument
	if err := bson.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error decoding snapshot data: %w", err)
	}

	return doc.Definitions, nil
}
