// Package housekeeping lists and removes exported files in the data directory.
package housekeeping

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"FinDataCollector/internal/export"
	"FinDataCollector/internal/model"
)

// Store is a stateless view over the export directory.
type Store struct {
	Dir string

	remove func(string) error
}

// NewStore creates a Store for dir.
func NewStore(dir string) *Store {
	return &Store{Dir: dir, remove: os.Remove}
}

// Path returns the on-disk path of name if it is an existing export file.
func (s *Store) Path(name string) (string, bool) {
	if !export.IsExportName(name) {
		return "", false
	}
	p := filepath.Join(s.Dir, name)
	info, err := os.Stat(p)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return p, true
}

// List returns export files sorted by name. A missing directory is an empty listing.
func (s *Store) List() ([]model.FileInfo, error) {
	matches, err := filepath.Glob(filepath.Join(s.Dir, export.FilenameGlob))
	if err != nil {
		return nil, err
	}
	files := make([]model.FileInfo, 0, len(matches))
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		if !info.Mode().IsRegular() {
			continue
		}
		files = append(files, model.FileInfo{
			Filename: filepath.Base(m),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Filename < files[j].Filename })
	return files, nil
}

// DeleteAll removes every export file. Each failure is recorded and the rest are still attempted.
func (s *Store) DeleteAll() (*model.DeleteReport, error) {
	return s.deleteWhere(func(model.FileInfo) bool { return true })
}

// DeleteOlderThan removes export files last modified before now-age.
func (s *Store) DeleteOlderThan(age time.Duration, now time.Time) (*model.DeleteReport, error) {
	cutoff := now.Add(-age)
	return s.deleteWhere(func(f model.FileInfo) bool { return f.Modified.Before(cutoff) })
}

func (s *Store) deleteWhere(match func(model.FileInfo) bool) (*model.DeleteReport, error) {
	files, err := s.List()
	if err != nil {
		return nil, err
	}
	remove := s.remove
	if remove == nil {
		remove = os.Remove
	}
	report := &model.DeleteReport{Errors: []model.FileError{}}
	for _, f := range files {
		if !match(f) {
			continue
		}
		if err := remove(filepath.Join(s.Dir, f.Filename)); err != nil {
			report.Errors = append(report.Errors, model.FileError{Filename: f.Filename, Err: err.Error()})
			continue
		}
		report.Deleted++
	}
	return report, nil
}
