package stats

import (
	"fmt"
	"math"
	"testing"

	"github.com/existflow/ironmeet/internal/model"
)

func project(statuses ...model.Status) model.Project {
	p := model.Project{ID: "p"}
	for i, s := range statuses {
		p.Tasks = append(p.Tasks, model.Task{ID: fmt.Sprintf("t%d", i), Status: s})
	}
	return p
}

func TestPercent(t *testing.T) {
	cases := []struct {
		k, n, want int
	}{
		{0, 0, 0},
		{5, 0, 0},
		{0, 3, 0},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13}, // 12.5 rounds up
		{1, 200, 1}, // 0.5 rounds up
		{3, 3, 100},
		{1, 6, 17},
	}
	for _, c := range cases {
		if got := Percent(c.k, c.n); got != c.want {
			t.Errorf("Percent(%d, %d) = %d, want %d", c.k, c.n, got, c.want)
		}
	}
}

func TestPercentMatchesRoundHalfUp(t *testing.T) {
	for n := 1; n <= 60; n++ {
		for k := 0; k <= n; k++ {
			q, r := 100*k/n, 100*k%n
			want := q
			if 2*r >= n {
				want = q + 1
			}
			if 2*r != n && int(math.Round(100*float64(k)/float64(n))) != want {
				t.Fatalf("reference mismatch for %d/%d", k, n)
			}
			if got := Percent(k, n); got != want {
				t.Fatalf("Percent(%d, %d) = %d, want %d", k, n, got, want)
			}
		}
	}
}

func TestProjectCounts(t *testing.T) {
	p := project(model.StatusFinish, model.StatusFinish, model.StatusBlocked, model.StatusInProgress)
	if TaskCount(p) != 4 {
		t.Fatalf("TaskCount = %d", TaskCount(p))
	}
	if CompletedCount(p) != 2 {
		t.Fatalf("CompletedCount = %d", CompletedCount(p))
	}
	if CompletionRate(p) != 50 {
		t.Fatalf("CompletionRate = %d", CompletionRate(p))
	}

	b := ProjectBreakdown(p)
	want := Breakdown{Total: 4, Finished: 2, InProgress: 1, Blocked: 1, Rate: 50}
	if b != want {
		t.Fatalf("ProjectBreakdown = %+v, want %+v", b, want)
	}
}

func TestEmptyProjectIsZeroPercent(t *testing.T) {
	p := project()
	if CompletionRate(p) != 0 {
		t.Fatalf("CompletionRate = %d", CompletionRate(p))
	}
	if b := ProjectBreakdown(p); b != (Breakdown{}) {
		t.Fatalf("ProjectBreakdown = %+v", b)
	}
}

func TestMeetingSums(t *testing.T) {
	m := model.Meeting{Projects: []model.Project{
		project(model.StatusFinish, model.StatusBlocked),
		project(),
		project(model.StatusFinish, model.StatusFinish, model.StatusInProgress),
	}}

	total, done := 0, 0
	for _, p := range m.Projects {
		total += TaskCount(p)
		done += CompletedCount(p)
	}
	if MeetingTaskCount(m) != total || total != 5 {
		t.Fatalf("MeetingTaskCount = %d, sum = %d", MeetingTaskCount(m), total)
	}
	if MeetingCompletedCount(m) != done || done != 3 {
		t.Fatalf("MeetingCompletedCount = %d, sum = %d", MeetingCompletedCount(m), done)
	}
	if ProjectCount(m) != 3 {
		t.Fatalf("ProjectCount = %d", ProjectCount(m))
	}
	if MeetingCompletionRate(m) != 60 {
		t.Fatalf("MeetingCompletionRate = %d", MeetingCompletionRate(m))
	}
	if MeetingCountByStatus(m, model.StatusBlocked) != 1 {
		t.Fatalf("blocked = %d", MeetingCountByStatus(m, model.StatusBlocked))
	}

	b := MeetingBreakdown(m)
	if b.Total != 5 || b.Finished != 3 || b.InProgress != 1 || b.Blocked != 1 || b.Rate != 60 {
		t.Fatalf("MeetingBreakdown = %+v", b)
	}
}

func TestMeetingWithoutProjects(t *testing.T) {
	var m model.Meeting
	if MeetingTaskCount(m) != 0 || MeetingCompletedCount(m) != 0 {
		t.Fatal("expected zero counts")
	}
	if MeetingCompletionRate(m) != 0 {
		t.Fatalf("rate = %d", MeetingCompletionRate(m))
	}
}

func TestDashboard(t *testing.T) {
	ms := []model.Meeting{
		{Projects: []model.Project{project(model.StatusFinish), project(model.StatusBlocked)}},
		{Projects: []model.Project{project(model.StatusFinish, model.StatusInProgress)}},
		{},
	}
	o := Dashboard(ms)
	want := Overview{Meetings: 3, Projects: 3, Tasks: 4, Completed: 2, Rate: 50}
	if o != want {
		t.Fatalf("Dashboard = %+v, want %+v", o, want)
	}
	if Dashboard(nil) != (Overview{}) {
		t.Fatal("empty dashboard should be zero")
	}
}
