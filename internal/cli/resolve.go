package cli

import (
	"fmt"
	"strings"

	"github.com/existflow/ironmeet/internal/model"
)

// Commands accept full ids or any unambiguous prefix, as printed by the
// listing commands.

const shortIDLen = 8

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

// pick returns the single id matching prefix. An exact match wins over
// prefix matches.
func pick(kind, prefix string, ids []string) (int, error) {
	found := -1
	for i, id := range ids {
		if id == prefix {
			return i, nil
		}
		if strings.HasPrefix(id, prefix) {
			if found >= 0 {
				return -1, fmt.Errorf("%s id %q is ambiguous", kind, prefix)
			}
			found = i
		}
	}
	if prefix == "" || found < 0 {
		return -1, fmt.Errorf("%s not found: %s", kind, prefix)
	}
	return found, nil
}

func findMeeting(tree []model.Meeting, prefix string) (model.Meeting, error) {
	ids := make([]string, len(tree))
	for i, m := range tree {
		ids[i] = m.ID
	}
	i, err := pick("meeting", prefix, ids)
	if err != nil {
		return model.Meeting{}, err
	}
	return tree[i], nil
}

func findProject(tree []model.Meeting, prefix string) (model.Project, error) {
	var ps []model.Project
	var ids []string
	for _, m := range tree {
		for _, p := range m.Projects {
			ps = append(ps, p)
			ids = append(ids, p.ID)
		}
	}
	i, err := pick("project", prefix, ids)
	if err != nil {
		return model.Project{}, err
	}
	return ps[i], nil
}

func findTask(tree []model.Meeting, prefix string) (model.Task, error) {
	var ts []model.Task
	var ids []string
	for _, m := range tree {
		for _, p := range m.Projects {
			for _, t := range p.Tasks {
				ts = append(ts, t)
				ids = append(ids, t.ID)
			}
		}
	}
	i, err := pick("task", prefix, ids)
	if err != nil {
		return model.Task{}, err
	}
	return ts[i], nil
}
