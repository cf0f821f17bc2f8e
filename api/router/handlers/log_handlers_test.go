package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"logbook/database"

	"github.com/go-chi/chi/v5"
	_ "github.com/mattn/go-sqlite3"
)

// setupAPITest wires the handlers against a fresh in-memory database and
// returns a router serving the API routes under test.
func setupAPITest(t *testing.T) *chi.Mux {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("opening in-memory database: %v", err)
	}
	db.SetMaxOpenConns(1)

	schema, err := os.ReadFile("../../../database/migrations/000001_init.up.sql")
	if err != nil {
		t.Fatalf("reading schema: %v", err)
	}
	if _, err := db.Exec(string(schema)); err != nil {
		t.Fatalf("applying schema: %v", err)
	}
	if _, err := db.Exec("INSERT INTO users (id, name) VALUES (1, 'Anonymous'), (2, 'Process')"); err != nil {
		t.Fatalf("seeding users: %v", err)
	}

	database.DB = db
	t.Cleanup(func() {
		db.Close()
		database.DB = nil
	})

	router := chi.NewRouter()
	RegisterLogRoutes(router)
	RegisterTagRoutes(router)
	return router
}

func doJSON(t *testing.T, router *chi.Mux, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	r := httptest.NewRequest(method, target, reader)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func createLogViaAPI(t *testing.T, router *chi.Mux, title string, parent int64) int64 {
	t.Helper()
	payload := map[string]interface{}{"title": title, "text": "text of " + title}
	if parent > 0 {
		payload["parentLogId"] = parent
	}
	w := doJSON(t, router, "POST", "/logs", payload)
	if w.Code != http.StatusCreated {
		t.Fatalf("creating log %q: status %d body %s", title, w.Code, w.Body.String())
	}
	var resp struct {
		Data struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding create response: %v", err)
	}
	return resp.Data.ID
}

func TestListLogsEnvelope(t *testing.T) {
	router := setupAPITest(t)
	for i := 0; i < 3; i++ {
		createLogViaAPI(t, router, fmt.Sprintf("entry %d", i), 0)
	}

	w := doJSON(t, router, "GET", "/logs?page[limit]=2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Meta struct {
			Page struct {
				PageCount  int64 `json:"pageCount"`
				TotalCount int64 `json:"totalCount"`
			} `json:"page"`
		} `json:"meta"`
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Meta.Page.TotalCount != 3 || resp.Meta.Page.PageCount != 2 {
		t.Errorf("expected totalCount 3 pageCount 2, got %+v", resp.Meta.Page)
	}
	if len(resp.Data) != 2 {
		t.Errorf("expected 2 rows on the page, got %d", len(resp.Data))
	}
}

func TestListLogsRejectsOversizedLimit(t *testing.T) {
	router := setupAPITest(t)

	w := doJSON(t, router, "GET", "/logs?page[limit]=101", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	var resp struct {
		Errors []struct {
			Status string `json:"status"`
			Title  string `json:"title"`
			Detail string `json:"detail"`
			Source *struct {
				Pointer string `json:"pointer"`
			} `json:"source"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding error envelope: %v", err)
	}
	if len(resp.Errors) != 1 {
		t.Fatalf("expected one error, got %d", len(resp.Errors))
	}
	apiErr := resp.Errors[0]
	if apiErr.Status != "400" || apiErr.Title != "Invalid Attribute" {
		t.Errorf("unexpected error head: %+v", apiErr)
	}
	if apiErr.Source == nil || apiErr.Source.Pointer != "/query/page/limit" {
		t.Errorf("unexpected error source: %+v", apiErr.Source)
	}
}

func TestListLogsRejectsUnknownSortField(t *testing.T) {
	router := setupAPITest(t)
	w := doJSON(t, router, "GET", "/logs?sort[text]=asc", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body %s", w.Code, w.Body.String())
	}
}

func TestCreateLogValidation(t *testing.T) {
	router := setupAPITest(t)

	w := doJSON(t, router, "POST", "/logs", map[string]interface{}{"title": "ab", "text": "valid text"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("short title: expected 400, got %d", w.Code)
	}

	w = doJSON(t, router, "POST", "/logs", map[string]interface{}{"title": "valid title", "text": "valid", "origin": "robot"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad origin: expected 400, got %d", w.Code)
	}

	w = doJSON(t, router, "POST", "/logs", map[string]interface{}{"title": "valid title", "text": "valid", "parentLogId": 999})
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown parent: expected 400, got %d body %s", w.Code, w.Body.String())
	}
}

func TestGetLogNotFound(t *testing.T) {
	router := setupAPITest(t)
	w := doJSON(t, router, "GET", "/logs/999", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestLogTreeEndpoint(t *testing.T) {
	router := setupAPITest(t)

	rootID := createLogViaAPI(t, router, "thread root", 0)
	replyID := createLogViaAPI(t, router, "first reply", rootID)
	createLogViaAPI(t, router, "nested reply", replyID)

	// Asking for any member of the thread yields the same tree.
	w := doJSON(t, router, "GET", fmt.Sprintf("/logs/%d/tree", replyID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			ID       int64 `json:"id"`
			Replies  int64 `json:"replies"`
			Children []struct {
				ID       int64 `json:"id"`
				Children []struct {
					ID       int64           `json:"id"`
					Children []json.RawMessage `json:"children"`
				} `json:"children"`
			} `json:"children"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding tree: %v", err)
	}
	if resp.Data.ID != rootID {
		t.Errorf("tree must be rooted at the thread root %d, got %d", rootID, resp.Data.ID)
	}
	if resp.Data.Replies != 2 {
		t.Errorf("root should count 2 descendants, got %d", resp.Data.Replies)
	}
	if len(resp.Data.Children) != 1 || resp.Data.Children[0].ID != replyID {
		t.Fatalf("unexpected first level: %+v", resp.Data.Children)
	}
	leaf := resp.Data.Children[0].Children
	if len(leaf) != 1 || leaf[0].Children == nil || len(leaf[0].Children) != 0 {
		t.Errorf("leaf must carry an empty children list, got %+v", leaf)
	}
}

func TestTagLifecycleViaAPI(t *testing.T) {
	router := setupAPITest(t)

	w := doJSON(t, router, "POST", "/tags", map[string]string{"text": "TPC"})
	if w.Code != http.StatusCreated {
		t.Fatalf("creating tag: status %d body %s", w.Code, w.Body.String())
	}

	// Same text again returns the existing tag instead of creating one.
	w = doJSON(t, router, "POST", "/tags", map[string]string{"text": "tpc"})
	if w.Code != http.StatusOK {
		t.Fatalf("re-creating tag: status %d body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, "POST", "/tags", map[string]string{"text": "   "})
	if w.Code != http.StatusBadRequest {
		t.Errorf("blank tag text: expected 400, got %d", w.Code)
	}

	w = doJSON(t, router, "DELETE", "/tags/1", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("deleting tag: expected 204, got %d", w.Code)
	}
	w = doJSON(t, router, "DELETE", "/tags/1", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("deleting missing tag: expected 404, got %d", w.Code)
	}
}
