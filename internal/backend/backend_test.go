package backend

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/existflow/ironmeet/internal/db"
	"github.com/existflow/ironmeet/internal/files"
	"github.com/existflow/ironmeet/internal/model"
)

func newLocal(t *testing.T, withFiles bool) *Local {
	t.Helper()
	d, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	var fs *files.Local
	if withFiles {
		if fs, err = files.NewLocal(t.TempDir(), "http://localhost:8080", "secret"); err != nil {
			t.Fatal(err)
		}
	}
	return NewLocal(d, db.LocalUserID, fs)
}

func TestGenerateReportInline(t *testing.T) {
	ctx := context.Background()
	l := newLocal(t, false)

	m, err := l.CreateMeeting(ctx, model.MeetingInput{Title: "Retro", Date: time.Date(2025, 3, 4, 15, 30, 0, 0, time.UTC)})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := l.Report(ctx, m.ID); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	// Asking for a file without storage falls back to inline content
	r, err := l.GenerateReport(ctx, m.ID, true)
	if err != nil {
		t.Fatal(err)
	}
	if r.FilePath != "" || !strings.HasPrefix(r.Content, "# Executive Summary: Retro") {
		t.Fatalf("report = %+v", r)
	}

	got, err := l.Report(ctx, m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Content != r.Content || got.FileName != "Retro_Report.md" {
		t.Fatalf("stored = %+v", got)
	}
}

func TestGenerateReportAsFile(t *testing.T) {
	ctx := context.Background()
	l := newLocal(t, true)

	m, err := l.CreateMeeting(ctx, model.MeetingInput{Title: "Plan Review", Date: time.Now()})
	if err != nil {
		t.Fatal(err)
	}
	r, err := l.GenerateReport(ctx, m.ID, true)
	if err != nil {
		t.Fatal(err)
	}
	if r.FilePath != db.LocalUserID+"/"+m.ID+"_Plan_Review_Report.md" || r.URL == "" {
		t.Fatalf("report = %+v", r)
	}

	got, err := l.Report(ctx, m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Content != r.Content {
		t.Fatalf("content from file = %q, want %q", got.Content, r.Content)
	}
}

func TestReportForeignMeeting(t *testing.T) {
	ctx := context.Background()
	l := newLocal(t, false)
	if _, err := l.GenerateReport(ctx, "missing", false); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestDeleteMeetingRemovesReportFile(t *testing.T) {
	ctx := context.Background()
	l := newLocal(t, true)

	m, err := l.CreateMeeting(ctx, model.MeetingInput{Title: "Kickoff", Date: time.Now()})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.GenerateReport(ctx, m.ID, true); err != nil {
		t.Fatal(err)
	}

	stored, err := l.StoredReports(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 || stored[0].Name != m.ID+"_Kickoff_Report.md" || stored[0].URL == "" {
		t.Fatalf("stored = %+v", stored)
	}

	if err := l.DeleteMeeting(ctx, m.ID); err != nil {
		t.Fatal(err)
	}
	if stored, _ = l.StoredReports(ctx); len(stored) != 0 {
		t.Errorf("files left after delete: %+v", stored)
	}
	if _, err := l.GetMeeting(ctx, m.ID); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("meeting still there: %v", err)
	}
}

func TestStoredReportsWithoutStorage(t *testing.T) {
	l := newLocal(t, false)
	stored, err := l.StoredReports(context.Background())
	if err != nil || len(stored) != 0 {
		t.Fatalf("stored = %v, err = %v", stored, err)
	}
}

func TestSameTitledMeetingsKeepTheirOwnReports(t *testing.T) {
	ctx := context.Background()
	l := newLocal(t, true)

	newWithProject := func(project string) model.Meeting {
		m, err := l.CreateMeeting(ctx, model.MeetingInput{Title: "Weekly Sync", Date: time.Now()})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := l.CreateProject(ctx, m.ID, model.ProjectInput{Name: project}); err != nil {
			t.Fatal(err)
		}
		return m
	}
	a := newWithProject("Alpha")
	b := newWithProject("Beta")

	ra, err := l.GenerateReport(ctx, a.ID, true)
	if err != nil {
		t.Fatal(err)
	}
	rb, err := l.GenerateReport(ctx, b.ID, true)
	if err != nil {
		t.Fatal(err)
	}
	if ra.FilePath == rb.FilePath {
		t.Fatalf("both reports stored at %s", ra.FilePath)
	}

	got, err := l.Report(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got.Content, "### Alpha") || strings.Contains(got.Content, "### Beta") {
		t.Fatalf("report of A shows the wrong meeting:\n%s", got.Content)
	}

	if err := l.DeleteMeeting(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	got, err = l.Report(ctx, b.ID)
	if err != nil {
		t.Fatalf("report of B lost after deleting A: %v", err)
	}
	if !strings.Contains(got.Content, "### Beta") {
		t.Fatalf("report of B = %q", got.Content)
	}
}

func TestInlineSaveRemovesOldReportFile(t *testing.T) {
	ctx := context.Background()
	l := newLocal(t, true)

	m, err := l.CreateMeeting(ctx, model.MeetingInput{Title: "Retro", Date: time.Now()})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.GenerateReport(ctx, m.ID, true); err != nil {
		t.Fatal(err)
	}
	if _, err := l.GenerateReport(ctx, m.ID, false); err != nil {
		t.Fatal(err)
	}
	stored, err := l.StoredReports(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 0 {
		t.Errorf("files left after inline save: %+v", stored)
	}
}
