package report

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/existflow/ironmeet/internal/api"
	"github.com/existflow/ironmeet/internal/logger"
	"github.com/existflow/ironmeet/internal/model"
)

// Saver upserts the single current report of a meeting
type Saver interface {
	SaveReport(ctx context.Context, meetingID string, r model.GeneratedReport) (model.GeneratedReport, error)
}

// FileStore keeps report files for an owner
type FileStore interface {
	Upload(ctx context.Context, ownerID, filename string, content []byte) (string, error)
	Read(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, ownerID, filename string) error
}

// StorageName is the stored file name of a meeting's report. The meeting id
// keeps reports of meetings sharing a title apart.
func StorageName(m model.Meeting) string {
	return m.ID + "_" + FileName(m.Title)
}

// Publish composes the meeting's report with its stored settings and saves it
// as the meeting's current report. With asFile the content goes to a file of
// its own and only the path is kept on the row. fs may be nil, in which case
// the report is always stored inline. A file left behind by the previous
// report is removed once the new one is saved.
func Publish(ctx context.Context, m model.Meeting, saver Saver, fs FileStore, ownerID string, asFile bool) (model.GeneratedReport, string, error) {
	content := ComposeMeeting(m)
	r := model.GeneratedReport{Content: content, CreatedAt: time.Now().UTC()}

	if asFile && fs != nil {
		key, err := fs.Upload(ctx, ownerID, StorageName(m), []byte(content))
		if err != nil {
			return model.GeneratedReport{}, "", fmt.Errorf("failed to upload report: %w", err)
		}
		r.Content = ""
		r.FilePath = key
	}

	saved, err := saver.SaveReport(ctx, m.ID, r)
	if err != nil {
		if r.FilePath != "" && !sameFile(m.Report, r.FilePath) {
			if derr := fs.Delete(ctx, ownerID, path.Base(r.FilePath)); derr != nil {
				logger.Warn("Failed to remove unsaved report file", logger.F("path", r.FilePath), logger.Err(derr))
			}
		}
		return model.GeneratedReport{}, "", err
	}

	if fs != nil && m.Report != nil && m.Report.FilePath != "" && m.Report.FilePath != r.FilePath {
		if err := Discard(ctx, m, fs, ownerID); err != nil {
			logger.Warn("Failed to remove previous report file", logger.F("path", m.Report.FilePath), logger.Err(err))
		}
	}
	return saved, content, nil
}

// sameFile reports whether the previous report already lives at key. Its file
// was overwritten in place and must survive a failed save.
func sameFile(prev *model.GeneratedReport, key string) bool {
	return prev != nil && prev.FilePath == key
}

// Content returns the text of a stored report, reading it from the file
// store when the row only holds a path
func Content(ctx context.Context, r model.GeneratedReport, fs FileStore) (string, error) {
	if r.FilePath == "" {
		return r.Content, nil
	}
	if fs == nil {
		return "", fmt.Errorf("report stored at %s but no file storage configured", r.FilePath)
	}
	data, err := fs.Read(ctx, r.FilePath)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Remover deletes an owner's stored file
type Remover interface {
	Delete(ctx context.Context, ownerID, filename string) error
}

// Library lists and removes an owner's stored files
type Library interface {
	Remover
	List(ctx context.Context, ownerID string) ([]string, error)
	SignedURL(key string, ttl time.Duration, now time.Time) (string, error)
}

// Discard removes the file behind a meeting's stored report, if any. Only
// the exact path on the report row is touched.
func Discard(ctx context.Context, m model.Meeting, rm Remover, ownerID string) error {
	if m.Report == nil || m.Report.FilePath == "" || rm == nil {
		return nil
	}
	dir, name := path.Split(m.Report.FilePath)
	if path.Clean(dir) != ownerID {
		return fmt.Errorf("report file %s is not owned by %s", m.Report.FilePath, ownerID)
	}
	return rm.Delete(ctx, ownerID, name)
}

// StoredFiles lists an owner's report files with download links valid for ttl
func StoredFiles(ctx context.Context, lib Library, ownerID string, ttl time.Duration, now time.Time) ([]api.StoredFile, error) {
	names, err := lib.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]api.StoredFile, 0, len(names))
	for _, name := range names {
		f := api.StoredFile{Name: name, Path: ownerID + "/" + name}
		if u, err := lib.SignedURL(f.Path, ttl, now); err == nil {
			f.URL = u
		}
		out = append(out, f)
	}
	return out, nil
}
