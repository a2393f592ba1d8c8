// Package localstore persists the whole AppData aggregate as one JSON
// document on disk. It is the durability backstop: the store mirrors
// every mutation here so the tool keeps working offline.
package localstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/leadpulse/leadpulse/internal/entity"
)

// DefaultFileName matches the storage key the web client used, so a
// snapshot produced by either side stays readable by the other.
const DefaultFileName = "leadpulse_data_v2.json"

type FileStore struct {
	path string
}

func New(path string) *FileStore {
	if path == "" {
		path = DefaultFileName
	}
	return &FileStore{path: path}
}

// Load reads the snapshot. Any failure — missing file, unreadable
// file, corrupt JSON — yields the defaults; a broken snapshot must
// never crash the caller. Unknown fields are ignored and missing
// fields default, so older snapshots stay readable as entities grow.
func (f *FileStore) Load() *entity.AppData {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return entity.DefaultAppData(time.Now())
	}

	var data entity.AppData
	if err := json.Unmarshal(raw, &data); err != nil {
		return entity.DefaultAppData(time.Now())
	}

	if data.Leads == nil {
		data.Leads = []entity.Lead{}
	}
	if data.Templates == nil {
		data.Templates = entity.DefaultTemplates(time.Now())
	}
	if data.Settings.FollowUpDays == 0 {
		data.Settings.FollowUpDays = entity.DefaultFollowUpDays
	}
	return &data
}

// Save writes the snapshot atomically (temp file + rename) so a crash
// mid-write cannot leave a half-written snapshot behind.
func (f *FileStore) Save(data *entity.AppData) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}
