package client_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/existflow/ironmeet/internal/board"
	"github.com/existflow/ironmeet/internal/client"
	"github.com/existflow/ironmeet/internal/db"
	"github.com/existflow/ironmeet/internal/files"
	"github.com/existflow/ironmeet/internal/model"
	"github.com/existflow/ironmeet/server"
)

var _ board.Persister = (*client.Client)(nil)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	d, err := db.OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewUnstartedServer(nil)
	fs, err := files.NewLocal(t.TempDir(), "http://"+ts.Listener.Addr().String(), "secret")
	if err != nil {
		t.Fatal(err)
	}
	s, err := server.New(server.Options{DB: d, Files: fs})
	if err != nil {
		t.Fatal(err)
	}
	ts.Config.Handler = s.Router()
	ts.Start()
	t.Cleanup(func() {
		ts.Close()
		s.Close()
	})
	return ts
}

func loggedIn(t *testing.T, ts *httptest.Server) *client.Client {
	t.Helper()
	c, err := client.New(filepath.Join(t.TempDir(), "session.json"), ts.URL)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Register(context.Background(), "alice", "alice@example.com", "password123"); err != nil {
		t.Fatalf("register: %v", err)
	}
	return c
}

func TestSessionPersists(t *testing.T) {
	ts := newServer(t)
	path := filepath.Join(t.TempDir(), "session.json")
	ctx := context.Background()

	c, err := client.New(path, ts.URL)
	if err != nil {
		t.Fatal(err)
	}
	if c.IsLoggedIn() {
		t.Fatal("fresh client should not be logged in")
	}
	if _, err := c.FetchTree(ctx); !errors.Is(err, client.ErrNotLoggedIn) {
		t.Fatalf("err = %v, want ErrNotLoggedIn", err)
	}
	if err := c.Register(ctx, "bob", "bob@example.com", "password123"); err != nil {
		t.Fatal(err)
	}

	reloaded, err := client.New(path, "")
	if err != nil {
		t.Fatal(err)
	}
	if !reloaded.IsLoggedIn() {
		t.Fatal("session was not persisted")
	}
	url, user := reloaded.Status()
	if url != ts.URL || user == "" {
		t.Fatalf("status = %q %q", url, user)
	}
	me, err := reloaded.Me(ctx)
	if err != nil || me.Username != "bob" {
		t.Fatalf("me = %+v, err = %v", me, err)
	}

	if err := reloaded.Logout(ctx); err != nil {
		t.Fatal(err)
	}
	if reloaded.IsLoggedIn() {
		t.Fatal("still logged in after logout")
	}
	if err := reloaded.Login(ctx, "bob", "wrong-password"); err == nil {
		t.Fatal("login with wrong password succeeded")
	}
	if err := reloaded.Login(ctx, "bob", "password123"); err != nil {
		t.Fatal(err)
	}
}

func TestMeetingTree(t *testing.T) {
	ts := newServer(t)
	c := loggedIn(t, ts)
	ctx := context.Background()

	m, err := c.CreateMeeting(ctx, model.MeetingInput{Title: "Standup", Date: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatal(err)
	}
	p, err := c.CreateProject(ctx, m.ID, model.ProjectInput{Name: "API"})
	if err != nil {
		t.Fatal(err)
	}
	task, err := c.CreateTask(ctx, p.ID, model.TaskInput{Title: "Write handler"})
	if err != nil {
		t.Fatal(err)
	}
	if task.Status != model.StatusInProgress || task.OrderIndex != 0 {
		t.Fatalf("task = %+v", task)
	}

	moved, err := c.SetTaskStatus(ctx, task.ID, model.StatusFinish)
	if err != nil || moved.Status != model.StatusFinish {
		t.Fatalf("moved = %+v, err = %v", moved, err)
	}

	title := "Write handlers"
	edited, err := c.UpdateTask(ctx, task.ID, model.TaskPatch{Title: &title})
	if err != nil || edited.Title != title || edited.Status != model.StatusFinish {
		t.Fatalf("edited = %+v, err = %v", edited, err)
	}

	if err := c.SaveNotes(ctx, m.ID, "notes"); err != nil {
		t.Fatal(err)
	}
	tree, err := c.FetchTree(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(tree) != 1 || len(tree[0].Projects) != 1 || len(tree[0].Projects[0].Tasks) != 1 || tree[0].Notes != "notes" {
		t.Fatalf("tree = %+v", tree)
	}

	if err := c.DeleteProject(ctx, p.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := c.UpdateTask(ctx, task.ID, model.TaskPatch{Title: &title}); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestErrorMapping(t *testing.T) {
	ts := newServer(t)
	c := loggedIn(t, ts)
	ctx := context.Background()

	_, err := c.CreateMeeting(ctx, model.MeetingInput{Date: time.Now()})
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.Message == "" {
		t.Fatalf("err = %#v", err)
	}

	if _, err := c.GetMeeting(ctx, "nope"); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestReports(t *testing.T) {
	ts := newServer(t)
	c := loggedIn(t, ts)
	ctx := context.Background()

	m, err := c.CreateMeeting(ctx, model.MeetingInput{Title: "Board Meeting", Date: time.Now()})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.SaveReportSettings(ctx, m.ID, model.ReportSettings{Style: model.StyleDetailed}); err != nil {
		t.Fatal(err)
	}

	preview, err := c.PreviewReport(ctx, m.ID)
	if err != nil {
		t.Fatal(err)
	}
	generated, err := c.GenerateReport(ctx, m.ID, true)
	if err != nil {
		t.Fatal(err)
	}
	if generated.Content != preview.Content || generated.URL == "" {
		t.Fatalf("generated = %+v", generated)
	}
	stored, err := c.Report(ctx, m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Content != preview.Content {
		t.Fatal("stored report differs from preview")
	}

	sum, err := c.Billing(ctx)
	if err != nil || sum.Paid {
		t.Fatalf("billing = %+v, err = %v", sum, err)
	}
}
