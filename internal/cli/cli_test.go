package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/existflow/ironmeet/internal/model"
)

func sampleTree() []model.Meeting {
	return []model.Meeting{
		{
			ID:    "aaaa1111-0000",
			Title: "Planning",
			Date:  time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC),
			Time:  "09:00",
			Projects: []model.Project{{
				ID:   "pppp1111",
				Name: "Core",
				Tasks: []model.Task{
					{ID: "tttt1111", Title: "Done thing", Status: model.StatusFinish},
					{ID: "tttt2222", Title: "Stuck thing", Status: model.StatusBlocked},
				},
			}},
			ReportSettings: model.ReportSettings{Style: model.StyleExecutive},
		},
		{ID: "aaaa2222-0000", Title: "Retro"},
		{ID: "bbbb", Title: "Exact"},
		{ID: "bbbb-longer", Title: "Longer"},
	}
}

func TestFindByPrefix(t *testing.T) {
	tree := sampleTree()

	m, err := findMeeting(tree, "aaaa2")
	if err != nil || m.Title != "Retro" {
		t.Fatalf("findMeeting = %+v, %v", m, err)
	}
	if _, err := findMeeting(tree, "aaaa"); err == nil || !strings.Contains(err.Error(), "ambiguous") {
		t.Fatalf("err = %v, want ambiguous", err)
	}
	// An exact id wins over a longer id sharing the prefix
	if m, err := findMeeting(tree, "bbbb"); err != nil || m.Title != "Exact" {
		t.Fatalf("exact match = %+v, %v", m, err)
	}
	if _, err := findMeeting(tree, "zzzz"); err == nil {
		t.Fatal("expected not found")
	}
	if _, err := findMeeting(tree, ""); err == nil {
		t.Fatal("empty prefix must not match")
	}

	p, err := findProject(tree, "pppp")
	if err != nil || p.Name != "Core" {
		t.Fatalf("findProject = %+v, %v", p, err)
	}
	task, err := findTask(tree, "tttt2")
	if err != nil || task.Title != "Stuck thing" {
		t.Fatalf("findTask = %+v, %v", task, err)
	}
}

func TestParseDate(t *testing.T) {
	now := time.Date(2025, 5, 6, 7, 8, 0, 0, time.UTC)

	got, err := parseDate("", now)
	if err != nil || !got.Equal(now) {
		t.Fatalf("empty = %v, %v", got, err)
	}

	got, err = parseDate("2025-01-15T14:00:00Z", now)
	if err != nil || !got.Equal(time.Date(2025, 1, 15, 14, 0, 0, 0, time.UTC)) {
		t.Fatalf("rfc3339 = %v, %v", got, err)
	}

	want := time.Date(2025, 1, 15, 14, 30, 0, 0, time.Local).UTC()
	got, err = parseDate("2025-01-15 14:30", now)
	if err != nil || !got.Equal(want) {
		t.Fatalf("local = %v, want %v (%v)", got, want, err)
	}

	if _, err := parseDate("next tuesday", now); err == nil {
		t.Fatal("expected error")
	}
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		rate   int
		filled int
	}{
		{0, 0},
		{50, 10},
		{67, 13},
		{100, 20},
	}
	for _, tt := range tests {
		bar := progressBar(tt.rate)
		if got := strings.Count(bar, "█"); got != tt.filled {
			t.Errorf("progressBar(%d) filled = %d, want %d", tt.rate, got, tt.filled)
		}
		if got := strings.Count(bar, "░") + strings.Count(bar, "█"); got != barWidth {
			t.Errorf("progressBar(%d) width = %d", tt.rate, got)
		}
	}
}

func TestPrintMeeting(t *testing.T) {
	var buf bytes.Buffer
	printMeeting(&buf, sampleTree()[0])
	out := buf.String()

	for _, want := range []string{
		"Planning  (aaaa1111)",
		"Progress",
		"50%",
		"1 done, 0 in progress, 1 blocked",
		"📁 Core  (pppp1111)  1/2 50%",
		"[x]  tttt1111  Done thing",
		"[!]  tttt2222  Stuck thing",
		"Report style: executive",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintMeetingList(t *testing.T) {
	var buf bytes.Buffer
	tree := sampleTree()
	printMeetingList(&buf, tree, tree[1].ID)
	out := buf.String()

	if !strings.Contains(out, "4 meetings, 1 projects, 1/2 tasks done (50%)") {
		t.Errorf("missing overview:\n%s", out)
	}
	if !strings.Contains(out, "❯ aaaa2222") {
		t.Errorf("current meeting not marked:\n%s", out)
	}
}
