package db

import (
	"database/sql"
	"sort"

	"github.com/existflow/ironmeet/internal/model"
)

// scanner is satisfied by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

const meetingColumns = `m.id, m.user_id, m.title, m.description, m.starts_at, m.duration, m.status, m.created_at, m.updated_at`

func scanMeeting(s scanner) (model.Meeting, error) {
	var m model.Meeting
	var startsAt, created, updated string
	if err := s.Scan(&m.ID, &m.UserID, &m.Title, &m.Description, &startsAt, &m.Duration, &m.Status, &created, &updated); err != nil {
		return model.Meeting{}, err
	}
	m.Date = parseTime(startsAt)
	m.Time = model.ClockOf(m.Date)
	if m.Status == "" {
		m.Status = model.DefaultMeetingStatus
	}
	m.CreatedAt = parseTime(created)
	m.UpdatedAt = parseTime(updated)
	m.ReportSettings = model.ReportSettings{Style: model.DefaultStyle}
	m.Projects = []model.Project{}
	return m, nil
}

const projectColumns = `p.id, p.meeting_id, p.name, p.description, p.color, p.created_at, p.updated_at`

func scanProject(s scanner) (model.Project, error) {
	var p model.Project
	var created, updated string
	if err := s.Scan(&p.ID, &p.MeetingID, &p.Name, &p.Description, &p.Color, &created, &updated); err != nil {
		return model.Project{}, err
	}
	if p.Color == "" {
		p.Color = model.DefaultProjectColor
	}
	p.CreatedAt = parseTime(created)
	p.UpdatedAt = parseTime(updated)
	p.Tasks = []model.Task{}
	return p, nil
}

const taskColumns = `t.id, t.project_id, t.title, t.description, t.status, t.order_index, t.created_at, t.updated_at`

func scanTask(s scanner) (model.Task, error) {
	var t model.Task
	var status, created, updated string
	if err := s.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &status, &t.OrderIndex, &created, &updated); err != nil {
		return model.Task{}, err
	}
	t.Status = normalizeStatus(status)
	t.CreatedAt = parseTime(created)
	t.UpdatedAt = parseTime(updated)
	return t, nil
}

// normalizeStatus maps rows written by older clients onto a known column
func normalizeStatus(raw string) model.Status {
	if st, err := model.ParseStatus(raw); err == nil {
		return st
	}
	return model.StatusInProgress
}

// treeRows holds the raw result sets a meeting tree is assembled from
type treeRows struct {
	meetings []model.Meeting
	projects []model.Project
	tasks    []model.Task
	notes    map[string]string
	settings map[string]model.ReportSettings
	reports  map[string]model.GeneratedReport
}

// assemble nests projects and tasks under their meetings. Orphans are dropped.
func assemble(r treeRows) []model.Meeting {
	tasksByProject := make(map[string][]model.Task)
	for _, t := range r.tasks {
		tasksByProject[t.ProjectID] = append(tasksByProject[t.ProjectID], t)
	}

	projectsByMeeting := make(map[string][]model.Project)
	for _, p := range r.projects {
		if ts, ok := tasksByProject[p.ID]; ok {
			sortTasks(ts)
			p.Tasks = ts
		}
		projectsByMeeting[p.MeetingID] = append(projectsByMeeting[p.MeetingID], p)
	}

	out := make([]model.Meeting, 0, len(r.meetings))
	for _, m := range r.meetings {
		if ps, ok := projectsByMeeting[m.ID]; ok {
			m.Projects = ps
		}
		m.Notes = r.notes[m.ID]
		if s, ok := r.settings[m.ID]; ok {
			if s.Style == "" {
				s.Style = model.DefaultStyle
			}
			m.ReportSettings = s
		}
		if rep, ok := r.reports[m.ID]; ok {
			rep := rep
			m.Report = &rep
		}
		out = append(out, m)
	}
	return out
}

func sortTasks(ts []model.Task) {
	sort.SliceStable(ts, func(i, j int) bool {
		if ts[i].OrderIndex != ts[j].OrderIndex {
			return ts[i].OrderIndex < ts[j].OrderIndex
		}
		return ts[i].CreatedAt.Before(ts[j].CreatedAt)
	})
}

func collect[T any](rows *sql.Rows, scan func(scanner) (T, error)) ([]T, error) {
	defer rows.Close()
	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
