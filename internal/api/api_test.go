package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/starford/raido/internal/api"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/testutil"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	env := testutil.NewEnv(t, "", time.Minute, time.Minute)
	env.Svc.Load(context.Background())
	ts := httptest.NewServer(api.NewRouter(env.Svc, false, "", nil))
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		t.Fatal(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatal(err)
	}
}

func TestNoteEndpoints(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/notes", api.NoteInput{Title: "Kickoff", Date: "2025-06-01"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", resp.StatusCode)
	}
	var created models.Note
	decode(t, resp, &created)
	if created.ID == "" {
		t.Fatal("expected server-assigned id")
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/notes/"+created.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodPut, ts.URL+"/notes/"+created.ID, api.NoteInput{Title: "Kickoff v2", Date: "2025-06-01"})
	var updated models.Note
	decode(t, resp, &updated)
	if updated.Title != "Kickoff v2" {
		t.Errorf("expected updated title, got %q", updated.Title)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/notes", nil)
	var list api.NoteListResponse
	decode(t, resp, &list)
	if list.Total != 1 || len(list.Notes) != 1 {
		t.Errorf("expected 1 note listed, got %+v", list)
	}

	resp = doJSON(t, http.MethodDelete, ts.URL+"/notes/"+created.ID, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete: expected 204, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, ts.URL+"/notes/"+created.ID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete: expected 404, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestValidationErrors(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/notes", api.NoteInput{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for missing title, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/tasks", strings.NewReader("{broken"))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed JSON, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodPut, ts.URL+"/notes/ghost", api.NoteInput{Title: "x"})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown id, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestTaskBoardEndpoints(t *testing.T) {
	ts := newTestServer(t)

	var a, b models.Task
	decode(t, doJSON(t, http.MethodPost, ts.URL+"/tasks", api.TaskInput{Title: "a"}), &a)
	decode(t, doJSON(t, http.MethodPost, ts.URL+"/tasks", api.TaskInput{Title: "b"}), &b)
	if a.Bucket != models.BucketNone || a.Order != nil {
		t.Errorf("expected new task in none bucket without order, got %+v", a)
	}

	resp := doJSON(t, http.MethodPost, ts.URL+"/tasks/"+a.ID+"/move", api.MoveTaskRequest{Bucket: models.BucketToday})
	var moved models.Task
	decode(t, resp, &moved)
	if moved.Bucket != models.BucketToday || moved.Order == nil || *moved.Order != 0 {
		t.Errorf("expected appended at order 0, got %+v", moved)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/tasks/"+b.ID+"/move", api.MoveTaskRequest{Bucket: models.BucketToday, BeforeID: a.ID})
	decode(t, resp, &moved)
	if moved.Order == nil || *moved.Order != 0 {
		t.Errorf("expected spliced before sibling at order 0, got %+v", moved)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/tasks?bucket=today", nil)
	var list api.TaskListResponse
	decode(t, resp, &list)
	if list.Total != 2 || list.Tasks[0].ID != b.ID || list.Tasks[1].ID != a.ID {
		t.Errorf("expected [b a] in today, got %+v", list.Tasks)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/tasks/"+a.ID+"/toggle", nil)
	decode(t, resp, &moved)
	if !moved.Done {
		t.Error("expected done=true after toggle")
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/undo", nil)
	var undo api.UndoResponse
	decode(t, resp, &undo)
	if !undo.Applied {
		t.Error("expected undo applied")
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/undo", nil)
	decode(t, resp, &undo)
	if undo.Applied {
		t.Error("expected empty slot reported as applied=false")
	}
}

func TestMentionEndpoints(t *testing.T) {
	ts := newTestServer(t)

	var target models.Note
	decode(t, doJSON(t, http.MethodPost, ts.URL+"/notes", api.NoteInput{Title: "Target"}), &target)
	var src models.Note
	decode(t, doJSON(t, http.MethodPost, ts.URL+"/notes", api.NoteInput{
		Title:       "Source",
		ContentHTML: `<a data-mention-id="` + target.ID + `">Target</a>`,
	}), &src)

	resp := doJSON(t, http.MethodGet, ts.URL+"/notes/"+src.ID+"/mentions", nil)
	var body struct {
		Mentions []struct {
			NoteID string `json:"noteId"`
		} `json:"mentions"`
	}
	decode(t, resp, &body)
	if len(body.Mentions) != 1 || body.Mentions[0].NoteID != target.ID {
		t.Fatalf("expected 1 mention, got %+v", body.Mentions)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/mentions/"+target.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("resolve: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Deleted target resolves to 204: the click is a no-op.
	doJSON(t, http.MethodDelete, ts.URL+"/notes/"+target.ID, nil).Body.Close()
	resp = doJSON(t, http.MethodGet, ts.URL+"/mentions/"+target.ID, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("resolve deleted: expected 204, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestClientEndpoints(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/clients", api.ClientRequest{Name: "Acme"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, ts.URL+"/clients", api.ClientRequest{Name: "acme"})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for duplicate, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodPut, ts.URL+"/clients/Acme", api.RenameClientRequest{Name: "Acme Corp"})
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("rename: expected 204, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, ts.URL+"/clients", nil)
	var list api.ClientListResponse
	decode(t, resp, &list)
	if len(list.Clients) != 1 || list.Clients[0] != "Acme Corp" {
		t.Errorf("expected [Acme Corp], got %v", list.Clients)
	}

	resp = doJSON(t, http.MethodDelete, ts.URL+"/clients/ghost", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete unknown: expected 204, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestImportExportEndpoints(t *testing.T) {
	ts := newTestServer(t)

	csv := "id,title,bucket\nt1,Imported,today\n"
	resp, err := http.Post(ts.URL+"/import/tasks", "text/csv", strings.NewReader(csv))
	if err != nil {
		t.Fatal(err)
	}
	var res struct {
		Imported int `json:"imported"`
		Total    int `json:"total"`
	}
	decode(t, resp, &res)
	if res.Imported != 1 || res.Total != 1 {
		t.Errorf("expected imported=1 total=1, got %+v", res)
	}

	resp, err = http.Get(ts.URL + "/export/tasks")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("expected CSV content type, got %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Imported") {
		t.Errorf("expected imported task in export, got %q", body)
	}

	resp, err = http.Get(ts.URL + "/export/bogus")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown collection, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestSearchEndpoint(t *testing.T) {
	ts := newTestServer(t)

	doJSON(t, http.MethodPost, ts.URL+"/notes", api.NoteInput{Title: "Quarterly budget"}).Body.Close()

	resp, err := http.Get(ts.URL + "/search?q=budget")
	if err != nil {
		t.Fatal(err)
	}
	var body struct {
		Results []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"results"`
	}
	decode(t, resp, &body)
	if len(body.Results) != 1 || body.Results[0].Title != "Quarterly budget" {
		t.Errorf("expected 1 hit, got %+v", body.Results)
	}

	resp, err = http.Get(ts.URL + "/search")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for missing query, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestAuthMiddleware(t *testing.T) {
	env := testutil.NewEnv(t, "", time.Minute, time.Minute)
	env.Svc.Load(context.Background())
	ts := httptest.NewServer(api.NewRouter(env.Svc, true, "secret", nil))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/notes")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/notes", nil)
	req.Header.Set("Authorization", "Bearer secret")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 with token, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}
