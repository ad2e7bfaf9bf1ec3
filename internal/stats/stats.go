// Package stats computes task and project rollups from a meeting tree.
// Nothing is cached; every value is derived from the tree passed in.
package stats

import "github.com/existflow/ironmeet/internal/model"

// Breakdown is the per-status count of a project or meeting
type Breakdown struct {
	Total      int `json:"total"`
	Finished   int `json:"finished"`
	InProgress int `json:"in_progress"`
	Blocked    int `json:"blocked"`
	Rate       int `json:"rate"`
}

// Percent returns round(100*k/n) rounding halves up, or 0 when n is 0
func Percent(k, n int) int {
	if n <= 0 {
		return 0
	}
	return (200*k + n) / (2 * n)
}

// TaskCount returns the number of tasks in p
func TaskCount(p model.Project) int {
	return len(p.Tasks)
}

// CountByStatus returns the number of tasks in p with status s
func CountByStatus(p model.Project, s model.Status) int {
	n := 0
	for _, t := range p.Tasks {
		if t.Status == s {
			n++
		}
	}
	return n
}

// CompletedCount returns the number of finished tasks in p
func CompletedCount(p model.Project) int {
	return CountByStatus(p, model.StatusFinish)
}

// CompletionRate returns the finished percentage of p
func CompletionRate(p model.Project) int {
	return Percent(CompletedCount(p), TaskCount(p))
}

// ProjectBreakdown counts p's tasks per status
func ProjectBreakdown(p model.Project) Breakdown {
	b := Breakdown{Total: TaskCount(p)}
	for _, t := range p.Tasks {
		switch t.Status {
		case model.StatusFinish:
			b.Finished++
		case model.StatusInProgress:
			b.InProgress++
		case model.StatusBlocked:
			b.Blocked++
		}
	}
	b.Rate = Percent(b.Finished, b.Total)
	return b
}

// ProjectCount returns the number of projects in m
func ProjectCount(m model.Meeting) int {
	return len(m.Projects)
}

// MeetingTaskCount sums TaskCount over m's projects
func MeetingTaskCount(m model.Meeting) int {
	n := 0
	for _, p := range m.Projects {
		n += TaskCount(p)
	}
	return n
}

// MeetingCompletedCount sums CompletedCount over m's projects
func MeetingCompletedCount(m model.Meeting) int {
	n := 0
	for _, p := range m.Projects {
		n += CompletedCount(p)
	}
	return n
}

// MeetingCountByStatus sums CountByStatus over m's projects
func MeetingCountByStatus(m model.Meeting, s model.Status) int {
	n := 0
	for _, p := range m.Projects {
		n += CountByStatus(p, s)
	}
	return n
}

// MeetingCompletionRate returns the finished percentage across all of m's tasks
func MeetingCompletionRate(m model.Meeting) int {
	return Percent(MeetingCompletedCount(m), MeetingTaskCount(m))
}

// MeetingBreakdown counts all of m's tasks per status
func MeetingBreakdown(m model.Meeting) Breakdown {
	var b Breakdown
	for _, p := range m.Projects {
		pb := ProjectBreakdown(p)
		b.Total += pb.Total
		b.Finished += pb.Finished
		b.InProgress += pb.InProgress
		b.Blocked += pb.Blocked
	}
	b.Rate = Percent(b.Finished, b.Total)
	return b
}

// Overview summarizes a list of meetings for the dashboard
type Overview struct {
	Meetings  int `json:"meetings"`
	Projects  int `json:"projects"`
	Tasks     int `json:"tasks"`
	Completed int `json:"completed"`
	Rate      int `json:"rate"`
}

// Dashboard totals every meeting in ms
func Dashboard(ms []model.Meeting) Overview {
	o := Overview{Meetings: len(ms)}
	for _, m := range ms {
		o.Projects += ProjectCount(m)
		o.Tasks += MeetingTaskCount(m)
		o.Completed += MeetingCompletedCount(m)
	}
	o.Rate = Percent(o.Completed, o.Tasks)
	return o
}
