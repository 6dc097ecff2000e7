package http

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
)

type todoResponse struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Priority  string  `json:"priority"`
	Category  string  `json:"category"`
	DueDate   *string `json:"dueDate"`
	Completed bool    `json:"completed"`
	CreatedAt string  `json:"createdAt"`
}

func TestTodosRequireSession(t *testing.T) {
	srv := newTestServer(t, nil)
	id := uuid.NewString()

	cases := []struct {
		method, path string
		body         any
	}{
		{http.MethodGet, "/api/todos", nil},
		{http.MethodPost, "/api/todos", map[string]string{"title": "x", "priority": "low", "category": "home"}},
		{http.MethodPut, "/api/todos/" + id, map[string]bool{"completed": true}},
		{http.MethodDelete, "/api/todos/" + id, nil},
	}
	for _, tc := range cases {
		rec := srv.do(t, tc.method, tc.path, "", tc.body)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", tc.method, tc.path, rec.Code)
		}
	}
	if len(srv.tasks.tasks) != 0 {
		t.Fatalf("expected no mutation without session")
	}
}

func TestTodoLifecycle(t *testing.T) {
	srv := newTestServer(t, nil)
	token := srv.signUpAndSignIn(t, "ana@example.com")

	rec := srv.do(t, http.MethodGet, "/api/todos", token, nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "[]" {
		t.Fatalf("expected empty array, got %d %s", rec.Code, rec.Body.String())
	}

	rec = srv.do(t, http.MethodPost, "/api/todos", token, map[string]string{
		"title":    "Buy milk",
		"priority": "low",
		"category": "home",
		"dueDate":  "2026-11-05",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ID string `json:"id"`
	}
	decode(t, rec, &created)
	if created.ID == "" {
		t.Fatalf("expected id in create response")
	}

	rec = srv.do(t, http.MethodGet, "/api/todos", token, nil)
	var list []todoResponse
	decode(t, rec, &list)
	if len(list) != 1 || list[0].ID != created.ID || list[0].Completed || list[0].DueDate == nil || list[0].CreatedAt == "" {
		t.Fatalf("unexpected list %+v", list)
	}

	rec = srv.do(t, http.MethodPut, "/api/todos/"+created.ID, token, map[string]any{"completed": true, "dueDate": ""})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = srv.do(t, http.MethodGet, "/api/todos", token, nil)
	list = nil
	decode(t, rec, &list)
	if len(list) != 1 || !list[0].Completed || list[0].DueDate != nil || list[0].Title != "Buy milk" {
		t.Fatalf("unexpected list after update %+v", list)
	}

	rec = srv.do(t, http.MethodDelete, "/api/todos/"+created.ID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}
	rec = srv.do(t, http.MethodDelete, "/api/todos/"+created.ID, token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", rec.Code)
	}
}

func TestTodosAreScopedToOwner(t *testing.T) {
	srv := newTestServer(t, nil)
	owner := srv.signUpAndSignIn(t, "ana@example.com")
	intruder := srv.signUpAndSignIn(t, "eve@example.com")

	rec := srv.do(t, http.MethodPost, "/api/todos", owner, map[string]string{"title": "Report", "priority": "high", "category": "work"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", rec.Code)
	}
	var created struct {
		ID string `json:"id"`
	}
	decode(t, rec, &created)

	rec = srv.do(t, http.MethodGet, "/api/todos", intruder, nil)
	if rec.Body.String() != "[]" {
		t.Fatalf("expected intruder to see nothing, got %s", rec.Body.String())
	}
	if rec := srv.do(t, http.MethodPut, "/api/todos/"+created.ID, intruder, map[string]bool{"completed": true}); rec.Code != http.StatusNotFound {
		t.Fatalf("intruder update: expected 404, got %d", rec.Code)
	}
	if rec := srv.do(t, http.MethodDelete, "/api/todos/"+created.ID, intruder, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("intruder delete: expected 404, got %d", rec.Code)
	}
	if task := srv.tasks.tasks[created.ID]; task.Completed {
		t.Fatalf("expected task untouched, got %+v", task)
	}
}

func TestTodoValidation(t *testing.T) {
	srv := newTestServer(t, nil)
	token := srv.signUpAndSignIn(t, "ana@example.com")

	bad := []map[string]string{
		{"priority": "low", "category": "home"},
		{"title": "x", "priority": "urgent", "category": "home"},
		{"title": "x", "priority": "low", "category": "school"},
		{"title": "x", "priority": "low", "category": "home", "dueDate": "tomorrow"},
	}
	for _, body := range bad {
		if rec := srv.do(t, http.MethodPost, "/api/todos", token, body); rec.Code != http.StatusBadRequest {
			t.Fatalf("body %v: expected 400, got %d", body, rec.Code)
		}
	}

	rec := srv.do(t, http.MethodPost, "/api/todos", token, map[string]string{"title": "x", "priority": "low", "category": "home"})
	var created struct {
		ID string `json:"id"`
	}
	decode(t, rec, &created)

	if rec := srv.do(t, http.MethodPut, "/api/todos/"+created.ID, token, map[string]string{}); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty patch: expected 400, got %d", rec.Code)
	}
	if rec := srv.do(t, http.MethodPut, "/api/todos/not-a-uuid", token, map[string]bool{"completed": true}); rec.Code != http.StatusNotFound {
		t.Fatalf("malformed id: expected 404, got %d", rec.Code)
	}
}
