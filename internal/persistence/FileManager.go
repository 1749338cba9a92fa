package persistence

import (
	"errors"
	"fmt"
	"os"
	"time"

	json "github.com/goccy/go-json"

	"signalkit/internal/models"
	"signalkit/internal/persistence/interfaces"
	"signalkit/internal/providers"
)

const snapshotVersion = 1

var ErrUnknownSnapshot = errors.New("unrecognized snapshot format")

// snapshot is the on-disk envelope around the option store contents.
type snapshot struct {
	Version int                        `json:"version"`
	SavedAt time.Time                  `json:"saved_at"`
	Options map[string]json.RawMessage `json:"options"`
}

type FileManager struct {
	store      models.OptionStoreInterface
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewFileManager(compressor interfaces.CompressorInterface, store models.OptionStoreInterface, logger providers.Logger) *FileManager {
	return &FileManager{
		compressor: compressor,
		store:      store,
		logger:     logger,
	}
}

func (f *FileManager) SaveToFile(fileName string) error {
	jsonData, err := json.Marshal(snapshot{
		Version: snapshotVersion,
		SavedAt: time.Now().UTC(),
		Options: f.store.Snapshot(),
	})
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

func (f *FileManager) Close() {
	f.compressor.Close()
}

// LoadFromFile replaces the store contents with the snapshot in fileName.
// A missing file leaves the store untouched.
func (f *FileManager) LoadFromFile(fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	decompressedData, err := f.compressor.Decompress(data)
	if err != nil {
		return err
	}

	var snap snapshot
	if err := json.Unmarshal(decompressedData, &snap); err != nil {
		return err
	}
	if snap.Version != snapshotVersion || snap.Options == nil {
		f.logger.Warnf(providers.TypeApp, "Snapshot %s has version %d, expected %d", fileName, snap.Version, snapshotVersion)
		return fmt.Errorf("%w: version %d", ErrUnknownSnapshot, snap.Version)
	}

	f.store.Restore(snap.Options)
	f.logger.Infof(providers.TypeApp, "Restored %d options saved at %s", len(snap.Options), snap.SavedAt.Format(time.RFC3339))
	return nil
}
