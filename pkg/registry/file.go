package registry

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	serrors "github.com/pranshurastogi/specter/internal/errors"
	"github.com/pranshurastogi/specter/pkg/metrics"
	"github.com/pranshurastogi/specter/pkg/protocol"
)

// File format: a small binary header for a fast magic check, then a JSON
// body that tolerates field additions.
//
//	magic "SPEC" (4) || version = 1 (1) || count (8 LE) || JSON array
const (
	fileMagic      = "SPEC"
	fileVersion    = uint8(1)
	fileHeaderSize = 4 + 1 + 8
)

// DefaultAutoSaveThreshold is how many writes accumulate before the file
// registry persists automatically.
const DefaultAutoSaveThreshold = 100

// FileRegistry is a MemoryRegistry with single-file persistence. Saves are
// atomic: serialize, write to path.tmp, fsync, rename over path. A crash
// leaves either the previous complete file, or the previous file plus a
// stale .tmp which the loader ignores.
type FileRegistry struct {
	path   string
	memory *MemoryRegistry

	dirty           atomic.Bool
	writesSinceSave atomic.Uint64
	threshold       uint64

	// saveMu serializes save/load against each other; reads and publishes
	// go straight to the memory registry.
	saveMu sync.Mutex

	log *metrics.Logger
}

// NewFileRegistry opens or creates a file registry at path. An existing
// file is loaded and validated; a missing file yields an empty registry
// whose file appears on first save.
func NewFileRegistry(path string) (*FileRegistry, error) {
	return NewFileRegistryWithAutoSave(path, DefaultAutoSaveThreshold)
}

// NewFileRegistryWithAutoSave opens a file registry with a custom
// auto-save threshold. A threshold of 0 disables auto-save; Save and
// Flush still work.
func NewFileRegistryWithAutoSave(path string, threshold uint64) (*FileRegistry, error) {
	f := &FileRegistry{
		path:      path,
		memory:    NewMemoryRegistry(),
		threshold: threshold,
		log:       metrics.NullLogger(),
	}
	if _, err := os.Stat(path); err == nil {
		if err := f.load(); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// SetLogger replaces the registry's logger.
func (f *FileRegistry) SetLogger(log *metrics.Logger) {
	if log != nil {
		f.log = log
		f.memory.SetLogger(log)
	}
}

// load reads and validates the file, then re-imports through the memory
// registry so every index is rebuilt from the payload.
func (f *FileRegistry) load() error {
	f.saveMu.Lock()
	defer f.saveMu.Unlock()

	contents, err := os.ReadFile(f.path)
	if err != nil {
		return fmt.Errorf("%w: %v", serrors.ErrRegistry, err)
	}

	if len(contents) < fileHeaderSize {
		return fmt.Errorf("%w: file too short", serrors.ErrRegistry)
	}
	if string(contents[:4]) != fileMagic {
		return fmt.Errorf("%w: bad magic", serrors.ErrRegistry)
	}
	if contents[4] != fileVersion {
		return &serrors.VersionMismatchError{Expected: fileVersion, Actual: contents[4]}
	}

	count := binary.LittleEndian.Uint64(contents[5:13])
	f.log.Info("loading registry", metrics.Fields{"path": f.path, "count": count})

	if len(contents) > fileHeaderSize {
		var anns []*protocol.Announcement
		if err := json.Unmarshal(contents[fileHeaderSize:], &anns); err != nil {
			return fmt.Errorf("%w: %v", serrors.ErrJSON, err)
		}
		if uint64(len(anns)) != count {
			return fmt.Errorf("%w: header count %d does not match body count %d",
				serrors.ErrRegistry, count, len(anns))
		}
		if _, err := f.memory.Import(anns); err != nil {
			return err
		}
	} else if count != 0 {
		return fmt.Errorf("%w: header count %d with empty body", serrors.ErrRegistry, count)
	}

	f.dirty.Store(false)
	return nil
}

// Save persists the current contents atomically.
func (f *FileRegistry) Save() error {
	f.saveMu.Lock()
	defer f.saveMu.Unlock()
	return f.saveLocked()
}

func (f *FileRegistry) saveLocked() error {
	anns := f.memory.Export()

	body, err := json.Marshal(anns)
	if err != nil {
		return fmt.Errorf("%w: %v", serrors.ErrJSON, err)
	}

	contents := make([]byte, 0, fileHeaderSize+len(body))
	contents = append(contents, fileMagic...)
	contents = append(contents, fileVersion)
	contents = binary.LittleEndian.AppendUint64(contents, uint64(len(anns)))
	contents = append(contents, body...)

	tmp := f.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("%w: %v", serrors.ErrRegistry, err)
	}
	if _, err := file.Write(contents); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("%w: %v", serrors.ErrRegistry, err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("%w: %v", serrors.ErrRegistry, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %v", serrors.ErrRegistry, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %v", serrors.ErrRegistry, err)
	}

	f.dirty.Store(false)
	f.writesSinceSave.Store(0)
	f.log.Debug("registry saved", metrics.Fields{"path": f.path, "count": len(anns)})
	return nil
}

// IsDirty reports whether there are unsaved changes.
func (f *FileRegistry) IsDirty() bool {
	return f.dirty.Load()
}

// Flush saves if dirty.
func (f *FileRegistry) Flush() error {
	if f.IsDirty() {
		return f.Save()
	}
	return nil
}

// Path returns the backing file path.
func (f *FileRegistry) Path() string {
	return f.path
}

// Memory exposes the underlying in-memory registry for direct access.
func (f *FileRegistry) Memory() *MemoryRegistry {
	return f.memory
}

// Stats returns registry statistics.
func (f *FileRegistry) Stats() protocol.AnnouncementStats {
	return f.memory.Stats()
}

// maybeAutoSave persists once the configured number of writes accumulates.
func (f *FileRegistry) maybeAutoSave() error {
	if f.threshold == 0 {
		return nil
	}
	if f.writesSinceSave.Add(1) >= f.threshold {
		return f.Save()
	}
	return nil
}

// Publish implements Registry.
func (f *FileRegistry) Publish(ann *protocol.Announcement) (uint64, error) {
	id, err := f.memory.Publish(ann)
	if err != nil {
		return 0, err
	}
	f.dirty.Store(true)
	if err := f.maybeAutoSave(); err != nil {
		return id, err
	}
	return id, nil
}

// GetByViewTag implements Registry.
func (f *FileRegistry) GetByViewTag(tag uint8) ([]*protocol.Announcement, error) {
	return f.memory.GetByViewTag(tag)
}

// GetByTimeRange implements Registry.
func (f *FileRegistry) GetByTimeRange(start, end uint64) ([]*protocol.Announcement, error) {
	return f.memory.GetByTimeRange(start, end)
}

// GetByID implements Registry.
func (f *FileRegistry) GetByID(id uint64) (*protocol.Announcement, error) {
	return f.memory.GetByID(id)
}

// Count implements Registry.
func (f *FileRegistry) Count() (uint64, error) {
	return f.memory.Count()
}

// NextID implements Registry.
func (f *FileRegistry) NextID() (uint64, error) {
	return f.memory.NextID()
}
