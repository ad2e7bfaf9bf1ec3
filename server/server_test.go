package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/existflow/ironmeet/internal/api"
	"github.com/existflow/ironmeet/internal/billing"
	"github.com/existflow/ironmeet/internal/db"
	"github.com/existflow/ironmeet/internal/files"
	"github.com/existflow/ironmeet/internal/model"
)

const testWebhookSecret = "whsec_test"

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	d, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	ts := httptest.NewUnstartedServer(nil)
	fs, err := files.NewLocal(t.TempDir(), "http://"+ts.Listener.Addr().String(), "test-secret")
	if err != nil {
		t.Fatal(err)
	}
	catalog, err := billing.NewCatalog(billing.DefaultPlans)
	if err != nil {
		t.Fatal(err)
	}
	s, err := New(Options{DB: d, Files: fs, Catalog: catalog, WebhookSecret: testWebhookSecret})
	if err != nil {
		t.Fatal(err)
	}
	ts.Config.Handler = s.Router()
	ts.Start()
	t.Cleanup(func() {
		ts.Close()
		s.Close()
	})
	return s, ts
}

// call sends a JSON request and decodes a JSON response into out
func call(t *testing.T, ts *httptest.Server, method, path, token string, body, out any) int {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.URL+path, r)
	if err != nil {
		t.Fatal(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func register(t *testing.T, ts *httptest.Server, username string) api.AuthResponse {
	t.Helper()
	var auth api.AuthResponse
	code := call(t, ts, http.MethodPost, "/api/v1/register", "", api.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "correct horse",
	}, &auth)
	if code != http.StatusOK || auth.Token == "" {
		t.Fatalf("register %s: status %d", username, code)
	}
	return auth
}

func createMeeting(t *testing.T, ts *httptest.Server, token, title string) api.MeetingView {
	t.Helper()
	var m api.MeetingView
	code := call(t, ts, http.MethodPost, "/api/v1/meetings", token, model.MeetingInput{
		Title: title,
		Date:  time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC),
	}, &m)
	if code != http.StatusCreated {
		t.Fatalf("create meeting: status %d", code)
	}
	return m
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t)
	if code := call(t, ts, http.MethodGet, "/health", "", nil, nil); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
}

func TestAuthFlow(t *testing.T) {
	_, ts := newTestServer(t)
	auth := register(t, ts, "alice")

	var me api.UserResponse
	if code := call(t, ts, http.MethodGet, "/api/v1/me", auth.Token, nil, &me); code != http.StatusOK {
		t.Fatalf("me: status %d", code)
	}
	if me.Username != "alice" || me.ID != auth.UserID {
		t.Fatalf("me = %+v", me)
	}

	// Duplicate registration
	code := call(t, ts, http.MethodPost, "/api/v1/register", "", api.RegisterRequest{
		Username: "alice", Email: "other@example.com", Password: "long enough",
	}, nil)
	if code != http.StatusConflict {
		t.Fatalf("duplicate register: status %d", code)
	}

	var login api.AuthResponse
	if code := call(t, ts, http.MethodPost, "/api/v1/login", "", api.LoginRequest{Username: "alice", Password: "correct horse"}, &login); code != http.StatusOK {
		t.Fatalf("login: status %d", code)
	}
	if code := call(t, ts, http.MethodPost, "/api/v1/login", "", api.LoginRequest{Username: "alice", Password: "wrong"}, nil); code != http.StatusUnauthorized {
		t.Fatalf("bad password: status %d", code)
	}
	if code := call(t, ts, http.MethodPost, "/api/v1/login", "", api.LoginRequest{Username: db.LocalUserID, Password: ""}, nil); code != http.StatusUnauthorized {
		t.Fatalf("local account login: status %d", code)
	}

	if code := call(t, ts, http.MethodPost, "/api/v1/logout", login.Token, nil, nil); code != http.StatusNoContent {
		t.Fatalf("logout: status %d", code)
	}
	if code := call(t, ts, http.MethodGet, "/api/v1/me", login.Token, nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("token still valid after logout: status %d", code)
	}
}

func TestRegisterValidation(t *testing.T) {
	_, ts := newTestServer(t)
	code := call(t, ts, http.MethodPost, "/api/v1/register", "", api.RegisterRequest{Username: "bob", Email: "b@example.com", Password: "short"}, nil)
	if code != http.StatusBadRequest {
		t.Fatalf("status = %d", code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	_, ts := newTestServer(t)
	if code := call(t, ts, http.MethodGet, "/api/v1/meetings", "", nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("no token: status %d", code)
	}
	if code := call(t, ts, http.MethodGet, "/api/v1/meetings", "bogus", nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("bad token: status %d", code)
	}
}

func TestExpiredSession(t *testing.T) {
	s, ts := newTestServer(t)
	auth := register(t, ts, "carol")
	past := time.Now().Add(-time.Hour).UTC()
	err := s.db.CreateSession(context.Background(), model.Session{
		Token:     "stale",
		UserID:    auth.UserID,
		ExpiresAt: past,
		CreatedAt: past.Add(-time.Hour),
	})
	if err != nil {
		t.Fatal(err)
	}
	if code := call(t, ts, http.MethodGet, "/api/v1/me", "stale", nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("status = %d", code)
	}
}

func TestMeetingLifecycle(t *testing.T) {
	_, ts := newTestServer(t)
	tok := register(t, ts, "alice").Token

	m := createMeeting(t, ts, tok, "Launch")
	if m.ReportSettings.Style != model.StyleExecutive || m.Time != "09:00" {
		t.Fatalf("meeting = %+v", m.Meeting)
	}

	var p model.Project
	if code := call(t, ts, http.MethodPost, "/api/v1/meetings/"+m.ID+"/projects", tok, model.ProjectInput{Name: "Core"}, &p); code != http.StatusCreated {
		t.Fatalf("create project: status %d", code)
	}
	if p.Color != model.DefaultProjectColor {
		t.Fatalf("color = %q", p.Color)
	}

	var ids []string
	for _, in := range []model.TaskInput{
		{Title: "a", Status: model.StatusFinish},
		{Title: "b", Status: model.StatusFinish},
		{Title: "c"},
	} {
		var task model.Task
		if code := call(t, ts, http.MethodPost, "/api/v1/projects/"+p.ID+"/tasks", tok, in, &task); code != http.StatusCreated {
			t.Fatalf("create task: status %d", code)
		}
		ids = append(ids, task.ID)
	}

	var moved model.Task
	if code := call(t, ts, http.MethodPut, "/api/v1/tasks/"+ids[2]+"/status", tok, api.StatusRequest{Status: model.StatusBlocked}, &moved); code != http.StatusOK {
		t.Fatalf("set status: status %d", code)
	}
	if moved.Status != model.StatusBlocked {
		t.Fatalf("status = %q", moved.Status)
	}
	if code := call(t, ts, http.MethodPut, "/api/v1/tasks/"+ids[2]+"/status", tok, api.StatusRequest{Status: "done"}, nil); code != http.StatusBadRequest {
		t.Fatalf("invalid status: status %d", code)
	}

	var list api.MeetingList
	if code := call(t, ts, http.MethodGet, "/api/v1/meetings", tok, nil, &list); code != http.StatusOK {
		t.Fatalf("list: status %d", code)
	}
	if len(list.Meetings) != 1 {
		t.Fatalf("meetings = %d", len(list.Meetings))
	}
	st := list.Meetings[0].Stats
	if st.Total != 3 || st.Finished != 2 || st.Blocked != 1 || st.Rate != 67 {
		t.Fatalf("stats = %+v", st)
	}
	if list.Overview.Meetings != 1 || list.Overview.Tasks != 3 || list.Overview.Rate != 67 {
		t.Fatalf("overview = %+v", list.Overview)
	}

	title := "Launch v2"
	var updated api.MeetingView
	if code := call(t, ts, http.MethodPatch, "/api/v1/meetings/"+m.ID, tok, model.MeetingPatch{Title: &title}, &updated); code != http.StatusOK {
		t.Fatalf("update: status %d", code)
	}
	if updated.Title != title || len(updated.Projects) != 1 {
		t.Fatalf("updated = %+v", updated.Meeting)
	}

	if code := call(t, ts, http.MethodDelete, "/api/v1/tasks/"+ids[0], tok, nil, nil); code != http.StatusNoContent {
		t.Fatalf("delete task: status %d", code)
	}
	if code := call(t, ts, http.MethodDelete, "/api/v1/meetings/"+m.ID, tok, nil, nil); code != http.StatusNoContent {
		t.Fatalf("delete meeting: status %d", code)
	}
	if code := call(t, ts, http.MethodGet, "/api/v1/meetings/"+m.ID, tok, nil, nil); code != http.StatusNotFound {
		t.Fatalf("deleted meeting: status %d", code)
	}
}

func TestValidationErrors(t *testing.T) {
	_, ts := newTestServer(t)
	tok := register(t, ts, "alice").Token

	if code := call(t, ts, http.MethodPost, "/api/v1/meetings", tok, model.MeetingInput{Date: time.Now()}, nil); code != http.StatusBadRequest {
		t.Fatalf("missing title: status %d", code)
	}
	m := createMeeting(t, ts, tok, "M")
	if code := call(t, ts, http.MethodPost, "/api/v1/meetings/"+m.ID+"/projects", tok, model.ProjectInput{}, nil); code != http.StatusBadRequest {
		t.Fatalf("missing name: status %d", code)
	}
	if code := call(t, ts, http.MethodPut, "/api/v1/meetings/"+m.ID+"/settings", tok, model.ReportSettings{Style: "haiku"}, nil); code != http.StatusBadRequest {
		t.Fatalf("bad style: status %d", code)
	}
}

func TestForeignMeetingIsNotFound(t *testing.T) {
	_, ts := newTestServer(t)
	alice := register(t, ts, "alice").Token
	bob := register(t, ts, "bob").Token

	m := createMeeting(t, ts, alice, "Private")
	for _, path := range []string{"/api/v1/meetings/" + m.ID, "/api/v1/meetings/" + m.ID + "/report/preview"} {
		if code := call(t, ts, http.MethodGet, path, bob, nil, nil); code != http.StatusNotFound {
			t.Fatalf("GET %s: status %d", path, code)
		}
	}
	if code := call(t, ts, http.MethodDelete, "/api/v1/meetings/"+m.ID, bob, nil, nil); code != http.StatusNotFound {
		t.Fatalf("delete: status %d", code)
	}
	if code := call(t, ts, http.MethodPut, "/api/v1/meetings/"+m.ID+"/notes", bob, api.NotesRequest{Content: "x"}, nil); code != http.StatusNotFound {
		t.Fatalf("notes: status %d", code)
	}
}

func TestReportFlow(t *testing.T) {
	_, ts := newTestServer(t)
	tok := register(t, ts, "alice").Token
	m := createMeeting(t, ts, tok, "Weekly Sync")

	if code := call(t, ts, http.MethodPut, "/api/v1/meetings/"+m.ID+"/notes", tok, api.NotesRequest{Content: "Ship it."}, nil); code != http.StatusNoContent {
		t.Fatalf("notes: status %d", code)
	}
	if code := call(t, ts, http.MethodPut, "/api/v1/meetings/"+m.ID+"/settings", tok, model.ReportSettings{Style: model.StyleTechnical}, nil); code != http.StatusNoContent {
		t.Fatalf("settings: status %d", code)
	}

	if code := call(t, ts, http.MethodGet, "/api/v1/meetings/"+m.ID+"/report", tok, nil, nil); code != http.StatusNotFound {
		t.Fatalf("report before generation: status %d", code)
	}

	var preview api.ReportResponse
	if code := call(t, ts, http.MethodGet, "/api/v1/meetings/"+m.ID+"/report/preview", tok, nil, &preview); code != http.StatusOK {
		t.Fatalf("preview: status %d", code)
	}
	if !strings.HasPrefix(preview.Content, "# Technical Report: Weekly Sync") || !strings.Contains(preview.Content, "Ship it.") {
		t.Fatalf("preview = %q", preview.Content)
	}
	if preview.FileName != "Weekly_Sync_Report.md" || !strings.HasPrefix(preview.EmailDraft, "mailto:?") {
		t.Fatalf("preview = %+v", preview)
	}

	var inline api.ReportResponse
	if code := call(t, ts, http.MethodPost, "/api/v1/meetings/"+m.ID+"/report", tok, api.GenerateReportRequest{}, &inline); code != http.StatusOK {
		t.Fatalf("generate: status %d", code)
	}
	if inline.Content != preview.Content || inline.URL != "" {
		t.Fatalf("inline = %+v", inline)
	}

	var stored api.ReportResponse
	if code := call(t, ts, http.MethodPost, "/api/v1/meetings/"+m.ID+"/report", tok, api.GenerateReportRequest{StoreAsFile: true}, &stored); code != http.StatusOK {
		t.Fatalf("generate file: status %d", code)
	}
	if stored.FilePath == "" || stored.URL == "" {
		t.Fatalf("stored = %+v", stored)
	}

	var got api.ReportResponse
	if code := call(t, ts, http.MethodGet, "/api/v1/meetings/"+m.ID+"/report", tok, nil, &got); code != http.StatusOK {
		t.Fatalf("get report: status %d", code)
	}
	if got.Content != preview.Content || got.FilePath != stored.FilePath {
		t.Fatalf("got = %+v", got)
	}

	// Signed URL serves the file; tampering is rejected
	resp, err := http.Get(stored.URL)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != preview.Content {
		t.Fatalf("signed download: status %d body %q", resp.StatusCode, body)
	}

	u, _ := url.Parse(stored.URL)
	q := u.Query()
	q.Set("sig", "00")
	u.RawQuery = q.Encode()
	resp, err = http.Get(u.String())
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("tampered url: status %d", resp.StatusCode)
	}

	var list api.FileList
	if code := call(t, ts, http.MethodGet, "/api/v1/files", tok, nil, &list); code != http.StatusOK {
		t.Fatalf("files: status %d", code)
	}
	if len(list.Files) != 1 || list.Files[0].Path != stored.FilePath || list.Files[0].URL == "" {
		t.Fatalf("files = %+v", list.Files)
	}

	// Deleting the meeting removes its report file
	if code := call(t, ts, http.MethodDelete, "/api/v1/meetings/"+m.ID, tok, nil, nil); code != http.StatusNoContent {
		t.Fatalf("delete: status %d", code)
	}
	list = api.FileList{}
	call(t, ts, http.MethodGet, "/api/v1/files", tok, nil, &list)
	if len(list.Files) != 0 {
		t.Fatalf("files after delete = %+v", list.Files)
	}
}

func TestBilling(t *testing.T) {
	s, ts := newTestServer(t)
	auth := register(t, ts, "alice")

	var sum billing.Summary
	if code := call(t, ts, http.MethodGet, "/api/v1/billing", auth.Token, nil, &sum); code != http.StatusOK {
		t.Fatalf("billing: status %d", code)
	}
	if sum.Paid || sum.Plan != "free" {
		t.Fatalf("summary = %+v", sum)
	}

	ev := api.WebhookEvent{UserID: auth.UserID, Status: billing.StatusActive, PriceID: "price_pro"}
	if code := call(t, ts, http.MethodPost, "/api/v1/billing/webhook", "", ev, nil); code != http.StatusUnauthorized {
		t.Fatalf("webhook without secret: status %d", code)
	}

	data, _ := json.Marshal(ev)
	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/billing/webhook", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Secret", testWebhookSecret)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("webhook: status %d", resp.StatusCode)
	}

	sub, err := s.db.GetSubscription(context.Background(), auth.UserID)
	if err != nil {
		t.Fatal(err)
	}
	if !s.catalog.IsPaid(sub) {
		t.Fatalf("subscription not paid after webhook: %+v", sub)
	}
	if code := call(t, ts, http.MethodGet, "/api/v1/billing", auth.Token, nil, &sum); code != http.StatusOK || !sum.Paid || sum.Plan != "pro" {
		t.Fatalf("summary after webhook = %+v (status %d)", sum, code)
	}
}
