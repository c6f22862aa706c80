// Package notiontest implements a minimal "Notion-like" API surface for
// tests: search, database query with a select filter, and page patch.
package notiontest

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/yapa-dev/techwatch/internal/notion"
)

// Call records a request made to the fake service.
type Call struct {
	Method string
	Path   string
}

// Patch records one page update.
type Patch struct {
	PageID     string
	Properties map[string]notion.Property
}

// Server holds the seeded databases and pages and records what callers do
// to them.
type Server struct {
	mu      sync.Mutex
	calls   []Call
	patches []Patch

	expectedAuthorization string
	expectedVersion       string

	databases []notion.Database
	pages     map[string][]notion.Page

	// failQuery forces the query endpoint to return 500 with a Notion
	// error envelope.
	failQuery bool
}

// New constructs an empty fake server.
func New() *Server {
	return &Server{
		pages: make(map[string][]notion.Page),
	}
}

// RequireBearerToken enforces the Authorization header on every request.
// An empty token disables the check.
func (s *Server) RequireBearerToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token = strings.TrimSpace(token)
	if token == "" {
		s.expectedAuthorization = ""
		return
	}
	s.expectedAuthorization = "Bearer " + token
}

// RequireVersion enforces the Notion-Version header on every request.
func (s *Server) RequireVersion(version string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expectedVersion = strings.TrimSpace(version)
}

// SeedDatabase registers a database and its pages.
func (s *Server) SeedDatabase(db notion.Database, pages []notion.Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.databases = append(s.databases, db)
	s.pages[db.ID] = append(s.pages[db.ID], pages...)
}

// FailQueries makes every query call return a server error.
func (s *Server) FailQueries(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failQuery = fail
}

// Calls returns a snapshot of calls made to the server.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// Patches returns a snapshot of page updates made to the server.
func (s *Server) Patches() []Patch {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Patch, len(s.patches))
	copy(out, s.patches)
	return out
}

// Handler returns an http.Handler that serves the fake API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/search", s.handleSearch)
	mux.HandleFunc("/v1/databases/", s.handleDatabases)
	mux.HandleFunc("/v1/pages/", s.handlePages)
	return mux
}

func (s *Server) recordCall(r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Method: r.Method, Path: r.URL.Path})
}

func (s *Server) authorize(w http.ResponseWriter, r *http.Request) bool {
	s.mu.Lock()
	expectedAuth := s.expectedAuthorization
	expectedVersion := s.expectedVersion
	s.mu.Unlock()

	if expectedAuth != "" && r.Header.Get("Authorization") != expectedAuth {
		writeError(w, http.StatusUnauthorized, "unauthorized", "API token is invalid.")
		return false
	}
	if expectedVersion != "" && r.Header.Get("Notion-Version") != expectedVersion {
		writeError(w, http.StatusBadRequest, "missing_version", "Notion-Version header failed validation.")
		return false
	}
	return true
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	s.recordCall(r)
	if !s.authorize(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	s.mu.Lock()
	dbs := make([]notion.Database, len(s.databases))
	copy(dbs, s.databases)
	s.mu.Unlock()

	writeJSON(w, map[string]any{"results": dbs})
}

type queryBody struct {
	Filter *struct {
		Property string `json:"property"`
		Select   struct {
			Equals string `json:"equals"`
		} `json:"select"`
	} `json:"filter"`
}

func (s *Server) handleDatabases(w http.ResponseWriter, r *http.Request) {
	s.recordCall(r)
	if !s.authorize(w, r) {
		return
	}

	// /v1/databases/{id}/query
	rest := strings.TrimPrefix(r.URL.Path, "/v1/databases/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[1] != "query" || r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	databaseID := parts[0]

	s.mu.Lock()
	fail := s.failQuery
	pages, ok := s.pages[databaseID]
	s.mu.Unlock()

	if fail {
		writeError(w, http.StatusInternalServerError, "internal_server_error", "An unexpected error occurred.")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "object_not_found", "Could not find database with ID: "+databaseID)
		return
	}

	var body queryBody
	b, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(b, &body)

	out := make([]notion.Page, 0, len(pages))
	for _, p := range pages {
		if body.Filter == nil || matchesFilter(p, body.Filter.Property, body.Filter.Select.Equals) {
			out = append(out, p)
		}
	}
	writeJSON(w, map[string]any{"results": out})
}

func matchesFilter(p notion.Page, property, equals string) bool {
	prop, ok := p.Properties[property]
	if !ok {
		return false
	}
	if prop.Select != nil && prop.Select.Name == equals {
		return true
	}
	if prop.Status != nil && prop.Status.Name == equals {
		return true
	}
	return false
}

func (s *Server) handlePages(w http.ResponseWriter, r *http.Request) {
	s.recordCall(r)
	if !s.authorize(w, r) {
		return
	}
	if r.Method != http.MethodPatch {
		http.NotFound(w, r)
		return
	}
	pageID := strings.TrimPrefix(r.URL.Path, "/v1/pages/")

	b, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Request body could not be read.")
		return
	}
	var body struct {
		Properties map[string]notion.Property `json:"properties"`
	}
	if err := json.Unmarshal(b, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Request body could not be decoded as JSON.")
		return
	}

	s.mu.Lock()
	s.patches = append(s.patches, Patch{PageID: pageID, Properties: body.Properties})
	// Keep head state current so read-after-write behaves like the real API.
	for dbID, pages := range s.pages {
		for i, p := range pages {
			if p.ID != pageID {
				continue
			}
			if p.Properties == nil {
				p.Properties = make(map[string]notion.Property)
			}
			for name, prop := range body.Properties {
				p.Properties[name] = prop
			}
			s.pages[dbID][i] = p
		}
	}
	s.mu.Unlock()

	writeJSON(w, map[string]any{"object": "page", "id": pageID})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"object":  "error",
		"status":  status,
		"code":    code,
		"message": message,
	})
}
