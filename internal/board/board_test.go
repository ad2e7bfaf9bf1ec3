package board

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/existflow/ironmeet/internal/logger"
	"github.com/existflow/ironmeet/internal/model"
)

// fakeStore records patches and fails when err is set
type fakeStore struct {
	mu      sync.Mutex
	err     error
	patches []model.TaskPatch
}

func (f *fakeStore) UpdateTask(_ context.Context, id string, p model.TaskPatch) (model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patches = append(f.patches, p)
	if f.err != nil {
		return model.Task{}, f.err
	}
	return model.Task{ID: id}, nil
}

func testMeeting() model.Meeting {
	return model.Meeting{
		ID:    "m1",
		Title: "Review",
		Projects: []model.Project{{
			ID:   "p1",
			Name: "Website",
			Tasks: []model.Task{
				{ID: "t1", ProjectID: "p1", Title: "Landing", Status: model.StatusFinish, OrderIndex: 0},
				{ID: "t2", ProjectID: "p1", Title: "Blog", Status: model.StatusInProgress, OrderIndex: 0},
				{ID: "t3", ProjectID: "p1", Title: "Analytics", Status: model.StatusBlocked, OrderIndex: 0},
			},
		}},
	}
}

func newTestBoard(t *testing.T, store Persister, opts Options) (*Board, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l, err := logger.New(logger.Config{Level: logger.DEBUG, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	return New(testMeeting(), store, opts).WithLogger(l), &buf
}

func statusOf(t *testing.T, b *Board, id string) model.Task {
	t.Helper()
	m := b.Snapshot()
	task, _ := m.FindTask(id)
	if task == nil {
		t.Fatalf("task %s missing", id)
	}
	return *task
}

func TestSetTaskStatusAppliesImmediately(t *testing.T) {
	store := &fakeStore{}
	b, _ := newTestBoard(t, store, DefaultOptions())

	c, err := b.SetTaskStatus("t2", model.StatusFinish)
	if err != nil {
		t.Fatal(err)
	}
	got := statusOf(t, b, "t2")
	if got.Status != model.StatusFinish || got.OrderIndex != 1 {
		t.Fatalf("task = %+v", got)
	}
	if len(store.patches) != 0 {
		t.Fatal("nothing should be written before Persist")
	}

	if err := c.Persist(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(store.patches) != 1 || *store.patches[0].Status != model.StatusFinish || *store.patches[0].OrderIndex != 1 {
		t.Fatalf("patches = %+v", store.patches)
	}
}

func TestSameStatusIsNoOp(t *testing.T) {
	store := &fakeStore{}
	b, _ := newTestBoard(t, store, DefaultOptions())

	c, err := b.SetTaskStatus("t1", model.StatusFinish)
	if err != nil {
		t.Fatal(err)
	}
	if !c.NoOp() {
		t.Fatal("expected no-op change")
	}
	if err := c.Persist(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(store.patches) != 0 {
		t.Fatal("no-op change should not be written")
	}
}

func TestInvalidStatusLeavesBoardUntouched(t *testing.T) {
	b, _ := newTestBoard(t, &fakeStore{}, DefaultOptions())
	if _, err := b.SetTaskStatus("t2", "archived"); !errors.Is(err, model.ErrInvalidStatus) {
		t.Fatalf("expected invalid status, got %v", err)
	}
	if got := statusOf(t, b, "t2"); got.Status != model.StatusInProgress {
		t.Fatalf("status = %q", got.Status)
	}
}

func TestUnknownTask(t *testing.T) {
	b, _ := newTestBoard(t, &fakeStore{}, DefaultOptions())
	if _, err := b.SetTaskStatus("nope", model.StatusBlocked); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPersistFailureRollsBack(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}
	b, logs := newTestBoard(t, store, DefaultOptions())

	c, err := b.SetTaskStatus("t2", model.StatusBlocked)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Persist(context.Background()); err == nil {
		t.Fatal("expected persist error")
	}

	got := statusOf(t, b, "t2")
	if got.Status != model.StatusInProgress || got.OrderIndex != 0 || !c.RolledBack() {
		t.Fatalf("task not rolled back: %+v", got)
	}
	if !strings.Contains(logs.String(), "rolled_back=true") {
		t.Fatalf("failure not logged: %q", logs.String())
	}
}

func TestPersistFailureKeepsLaterEdits(t *testing.T) {
	store := &fakeStore{err: errors.New("timeout")}
	b, logs := newTestBoard(t, store, DefaultOptions())

	first, err := b.SetTaskStatus("t2", model.StatusBlocked)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.SetTaskStatus("t2", model.StatusFinish); err != nil {
		t.Fatal(err)
	}

	if err := first.Persist(context.Background()); err == nil {
		t.Fatal("expected persist error")
	}
	if got := statusOf(t, b, "t2"); got.Status != model.StatusFinish || first.RolledBack() {
		t.Fatalf("later edit clobbered: %+v", got)
	}
	if !strings.Contains(logs.String(), "rolled_back=false") {
		t.Fatalf("unexpected log: %q", logs.String())
	}
}

func TestPersistFailureWithoutRollback(t *testing.T) {
	store := &fakeStore{err: errors.New("offline")}
	b, _ := newTestBoard(t, store, Options{RollbackOnFailure: false})

	c, err := b.SetTaskStatus("t2", model.StatusBlocked)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Persist(context.Background()); err == nil {
		t.Fatal("expected persist error")
	}
	if got := statusOf(t, b, "t2"); got.Status != model.StatusBlocked || c.RolledBack() {
		t.Fatalf("optimistic state should remain: %+v", got)
	}
}

func TestEditTask(t *testing.T) {
	store := &fakeStore{err: errors.New("offline")}
	b, _ := newTestBoard(t, store, DefaultOptions())

	c, err := b.EditTask("t3", "Analytics v2", "keys arrived")
	if err != nil {
		t.Fatal(err)
	}
	if got := statusOf(t, b, "t3"); got.Title != "Analytics v2" || got.Description != "keys arrived" {
		t.Fatalf("edit not applied: %+v", got)
	}
	if err := c.Persist(context.Background()); err == nil {
		t.Fatal("expected persist error")
	}
	if got := statusOf(t, b, "t3"); got.Title != "Analytics" || got.Description != "" {
		t.Fatalf("edit not rolled back: %+v", got)
	}
}

func TestEditTaskBlankTitle(t *testing.T) {
	b, _ := newTestBoard(t, &fakeStore{}, DefaultOptions())
	if _, err := b.EditTask("t1", "", ""); err != nil {
		t.Fatal(err)
	}
	if got := statusOf(t, b, "t1"); got.Title != model.DefaultTaskTitle {
		t.Fatalf("title = %q", got.Title)
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	b, _ := newTestBoard(t, &fakeStore{}, DefaultOptions())
	snap := b.Snapshot()
	snap.Projects[0].Tasks[0].Title = "mutated"
	if got := statusOf(t, b, "t1"); got.Title != "Landing" {
		t.Fatal("snapshot shares memory with the board")
	}
}

func TestColumnsAndMembership(t *testing.T) {
	b, _ := newTestBoard(t, &fakeStore{}, DefaultOptions())

	if err := b.AddTask(model.Task{ID: "t4", ProjectID: "p1", Title: "Docs", Status: model.StatusInProgress, OrderIndex: 1}); err != nil {
		t.Fatal(err)
	}
	col := b.Column("p1", model.StatusInProgress)
	if len(col) != 2 || col[0].ID != "t2" || col[1].ID != "t4" {
		t.Fatalf("column = %+v", col)
	}

	b.RemoveTask("t2")
	col = b.Column("p1", model.StatusInProgress)
	if len(col) != 1 || col[0].ID != "t4" {
		t.Fatalf("column after remove = %+v", col)
	}

	if err := b.AddTask(model.Task{ID: "x", ProjectID: "missing"}); err == nil {
		t.Fatal("expected error for unknown project")
	}
}
