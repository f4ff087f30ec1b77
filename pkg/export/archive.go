package export

import (
	"archive/zip"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// entry is one file inside the archive
type entry struct {
	name string
	data []byte
}

// archive writes a zip to a uniquely named partial file and moves it into
// place on commit
type archive struct {
	path    string
	partial string
	f       *os.File
	zw      *zip.Writer
	now     time.Time
}

func createArchive(path string) (*archive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, &DestinationError{Path: path, Err: err}
	}
	partial := path + "." + uuid.NewString() + ".partial"
	f, err := os.OpenFile(partial, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return nil, &DestinationError{Path: path, Err: err}
	}
	return &archive{
		path:    path,
		partial: partial,
		f:       f,
		zw:      zip.NewWriter(f),
		now:     time.Now(),
	}, nil
}

func (a *archive) write(entries ...entry) error {
	for _, e := range entries {
		w, err := a.zw.CreateHeader(&zip.FileHeader{
			Name:     filepath.ToSlash(e.name),
			Method:   zip.Deflate,
			Modified: a.now,
		})
		if err != nil {
			return &DestinationError{Path: a.path, Err: errors.Wrapf(err, "create %s", e.name)}
		}
		if _, err := w.Write(e.data); err != nil {
			return &DestinationError{Path: a.path, Err: errors.Wrapf(err, "write %s", e.name)}
		}
	}
	return nil
}

// abort discards the partial archive
func (a *archive) abort() {
	a.zw.Close()
	a.f.Close()
	os.Remove(a.partial)
}

// commit finalises the archive and renames it to its destination
func (a *archive) commit() error {
	if err := a.zw.Close(); err != nil {
		a.f.Close()
		os.Remove(a.partial)
		return &DestinationError{Path: a.path, Err: err}
	}
	if err := a.f.Close(); err != nil {
		os.Remove(a.partial)
		return &DestinationError{Path: a.path, Err: err}
	}
	if err := os.Rename(a.partial, a.path); err != nil {
		os.Remove(a.partial)
		return &DestinationError{Path: a.path, Err: err}
	}
	return nil
}
