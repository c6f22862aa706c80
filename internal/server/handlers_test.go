package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yapa-dev/techwatch/internal/notion"
	"github.com/yapa-dev/techwatch/internal/server"
	"github.com/yapa-dev/techwatch/internal/workflow"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeDirectory struct {
	databases []notion.Database
	pages     []notion.Page
	searchErr error
	queryErr  error

	searches int
	queries  int
}

func (f *fakeDirectory) Search(context.Context) ([]notion.Database, error) {
	f.searches++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.databases, nil
}

func (f *fakeDirectory) Query(_ context.Context, _, _ string) ([]notion.Page, error) {
	f.queries++
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.pages, nil
}

type runCall struct {
	DatabaseID string
	Recipient  string
}

type fakeRunner struct {
	result workflow.Result
	err    error
	calls  []runCall
}

func (f *fakeRunner) Run(_ context.Context, databaseID, recipientEmail string) (workflow.Result, error) {
	f.calls = append(f.calls, runCall{DatabaseID: databaseID, Recipient: recipientEmail})
	if f.err != nil {
		return workflow.Result{}, f.err
	}
	return f.result, nil
}

func serveJSON(t *testing.T, dir *fakeDirectory, run *fakeRunner, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	router := server.NewRouter(server.NewHandler(dir, run, nil))

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not JSON: %v\n%s", err, w.Body.String())
	}
	return w, out
}

func TestListDatabases(t *testing.T) {
	t.Parallel()

	dir := &fakeDirectory{databases: []notion.Database{
		{ID: "db1", Title: []notion.RichText{{Text: &notion.TextContent{Content: "Watchlist"}}}},
		{ID: "db2"},
	}}
	w, out := serveJSON(t, dir, &fakeRunner{}, http.MethodGet, "/api/databases", "")

	if w.Code != http.StatusOK || out["success"] != true {
		t.Fatalf("unexpected response %d: %v", w.Code, out)
	}
	dbs, ok := out["databases"].([]any)
	if !ok || len(dbs) != 2 {
		t.Fatalf("unexpected databases: %v", out["databases"])
	}
	first := dbs[0].(map[string]any)
	if first["name"] != "Watchlist" || first["id"] != "db1" {
		t.Fatalf("unexpected entry: %v", first)
	}
	second := dbs[1].(map[string]any)
	if second["name"] != "Untitled" {
		t.Fatalf("empty title should fall back to Untitled: %v", second)
	}
}

func TestListDatabases_UpstreamFailure(t *testing.T) {
	t.Parallel()

	dir := &fakeDirectory{searchErr: errors.New("timeout")}
	w, out := serveJSON(t, dir, &fakeRunner{}, http.MethodGet, "/api/databases", "")

	if w.Code != http.StatusInternalServerError || out["success"] != false {
		t.Fatalf("unexpected response %d: %v", w.Code, out)
	}
	if msg, _ := out["message"].(string); msg == "" {
		t.Fatalf("error envelope missing message: %v", out)
	}
	if detail, _ := out["error"].(string); detail == "" {
		t.Fatalf("error envelope missing detail: %v", out)
	}
}

func TestGetDatabase_FlattensRecords(t *testing.T) {
	t.Parallel()

	dir := &fakeDirectory{pages: []notion.Page{
		{
			ID: "p1",
			Properties: map[string]notion.Property{
				"Competitor Name": {Title: []notion.RichText{{PlainText: "Acme"}}},
			},
		},
	}}
	w, out := serveJSON(t, dir, &fakeRunner{}, http.MethodGet, "/api/databases/db1", "")

	if w.Code != http.StatusOK || out["success"] != true {
		t.Fatalf("unexpected response %d: %v", w.Code, out)
	}
	results, ok := out["results"].([]any)
	if !ok || len(results) != 1 {
		t.Fatalf("unexpected results: %v", out["results"])
	}
	rec := results[0].(map[string]any)
	if rec["competitor_name"] != "Acme" {
		t.Fatalf("unexpected record: %v", rec)
	}
	// Absent fields serialize as null, not as empty strings.
	if v, present := rec["strengths"]; !present || v != nil {
		t.Fatalf("strengths should be null: %v (present=%t)", v, present)
	}
}

func TestEnrich_HappyPath(t *testing.T) {
	t.Parallel()

	run := &fakeRunner{result: workflow.Result{Success: true, Message: "The reports were sent by email successfully."}}
	w, out := serveJSON(t, &fakeDirectory{}, run, http.MethodPost, "/api/gemini-techno/db1", `{"recipientEmail":"a@b.com"}`)

	if w.Code != http.StatusOK || out["success"] != true {
		t.Fatalf("unexpected response %d: %v", w.Code, out)
	}
	if len(run.calls) != 1 || run.calls[0].DatabaseID != "db1" || run.calls[0].Recipient != "a@b.com" {
		t.Fatalf("unexpected run calls: %+v", run.calls)
	}
}

func TestEnrich_MissingRecipient(t *testing.T) {
	t.Parallel()

	for _, body := range []string{"", "{}", `{"recipientEmail":""}`} {
		dir := &fakeDirectory{}
		run := &fakeRunner{}
		w, out := serveJSON(t, dir, run, http.MethodPost, "/api/gemini-techno/db1", body)

		if w.Code != http.StatusBadRequest || out["success"] != false {
			t.Fatalf("body %q: unexpected response %d: %v", body, w.Code, out)
		}
		if len(run.calls) != 0 || dir.searches != 0 || dir.queries != 0 {
			t.Fatalf("body %q: no remote call may be issued", body)
		}
	}
}

func TestEnrich_FatalQueryFailure(t *testing.T) {
	t.Parallel()

	run := &fakeRunner{err: errors.New("notion unreachable")}
	w, out := serveJSON(t, &fakeDirectory{}, run, http.MethodPost, "/api/gemini-techno/db1", `{"recipientEmail":"a@b.com"}`)

	if w.Code != http.StatusInternalServerError || out["success"] != false {
		t.Fatalf("unexpected response %d: %v", w.Code, out)
	}
	if msg, _ := out["error"].(string); !strings.Contains(msg, "notion unreachable") {
		t.Fatalf("error detail missing: %v", out)
	}
}

func TestEnrich_InvalidInputFromWorkflow(t *testing.T) {
	t.Parallel()

	run := &fakeRunner{err: &workflow.ErrInvalidInput{Field: "recipientEmail"}}
	w, out := serveJSON(t, &fakeDirectory{}, run, http.MethodPost, "/api/gemini-techno/db1", `{"recipientEmail":"  "}`)

	// The handler only checks for empty strings; the workflow trims and may
	// still reject, which must surface as a 400, not a 500.
	if w.Code != http.StatusBadRequest || out["success"] != false {
		t.Fatalf("unexpected response %d: %v", w.Code, out)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	w, out := serveJSON(t, &fakeDirectory{}, &fakeRunner{}, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK || out["status"] != "healthy" {
		t.Fatalf("unexpected response %d: %v", w.Code, out)
	}
}
