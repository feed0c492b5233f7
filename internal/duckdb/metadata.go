package duckdb

import (
	"time"

	"github.com/spf13/afero"
)

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from a file on fs.
func StatFile(fs afero.Fs, path string) (FileFingerprint, error) {
	info, err := fs.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Same reports whether two fingerprints describe the same file contents
// as far as stat can tell.
func (f FileFingerprint) Same(other FileFingerprint) bool {
	return f.Path == other.Path && f.Size == other.Size && f.ModTime.Equal(other.ModTime)
}
