// Package testutil provides an in-memory stand-in for the remote persistence
// service, speaking the same /api/db and /api/auth contract.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// Remote is a fake persistence service backed by in-memory tables.
type Remote struct {
	server *httptest.Server

	mu          sync.Mutex
	nextID      int64
	tables      map[string][]map[string]any
	attendees   map[int64][]map[string]any
	credentials map[string]account
	failures    map[string]int
	calls       map[string]int
	eventWrites bool
}

type account struct {
	password string
	memberID int64
}

// NewRemote starts the fake service and stops it when the test ends.
func NewRemote(t testing.TB) *Remote {
	t.Helper()

	r := &Remote{
		nextID:      1,
		tables:      map[string][]map[string]any{},
		attendees:   map[int64][]map[string]any{},
		credentials: map[string]account{},
		failures:    map[string]int{},
		calls:       map[string]int{},
	}
	r.server = httptest.NewServer(r)
	t.Cleanup(r.server.Close)
	return r
}

// URL is the base URL to hand to the remote client.
func (r *Remote) URL() string {
	return r.server.URL
}

// SetNextID makes the next created row receive id.
func (r *Remote) SetNextID(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID = id
}

// Seed inserts rows directly, assigning ids to rows without one.
func (r *Remote) Seed(t testing.TB, table string, rows ...any) []int64 {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		data, err := json.Marshal(row)
		if err != nil {
			t.Fatalf("seed %s: %v", table, err)
		}
		record := map[string]any{}
		if err := json.Unmarshal(data, &record); err != nil {
			t.Fatalf("seed %s: %v", table, err)
		}
		ids = append(ids, r.insertLocked(table, record))
	}
	return ids
}

// SeedAccount registers credentials for an existing team member row.
func (r *Remote) SeedAccount(email, password string, memberID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.credentials[strings.ToLower(email)] = account{password: password, memberID: memberID}
}

// Fail makes every method call on table answer with status until Recover.
func (r *Remote) Fail(table, method string, status int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[key(table, method)] = status
}

// AllowEventWrites accepts PUT and DELETE on the events table. By default
// the fake answers 405 for them, like the production service.
func (r *Remote) AllowEventWrites() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.eventWrites = true
}

// Recover clears a failure set by Fail.
func (r *Remote) Recover(table, method string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.failures, key(table, method))
}

// Calls counts requests received for table and method.
func (r *Remote) Calls(table, method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[key(table, method)]
}

// Rows returns a copy of the stored rows for table.
func (r *Remote) Rows(table string) []map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows := make([]map[string]any, 0, len(r.tables[table]))
	for _, row := range r.tables[table] {
		rows = append(rows, r.joinLocked(table, row))
	}
	return rows
}

func (r *Remote) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	switch req.URL.Path {
	case "/api/auth":
		r.authenticate(w, req)
	case "/api/db":
		r.table(w, req)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (r *Remote) authenticate(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[key("auth", req.Method)]++

	if status, ok := r.failures[key("auth", req.Method)]; ok {
		writeError(w, status, "simulated failure")
		return
	}
	if req.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.Email == "" || body.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	acct, ok := r.credentials[strings.ToLower(body.Email)]
	if !ok || acct.password != body.Password {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	for _, row := range r.tables["team_members"] {
		if rowID(row) == acct.memberID {
			writeJSON(w, http.StatusOK, row)
			return
		}
	}
	writeError(w, http.StatusUnauthorized, "Invalid email or password")
}

func (r *Remote) table(w http.ResponseWriter, req *http.Request) {
	table := req.URL.Query().Get("table")
	if table == "" {
		writeError(w, http.StatusBadRequest, "Missing table parameter")
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[key(table, req.Method)]++

	if status, ok := r.failures[key(table, req.Method)]; ok {
		writeError(w, status, "simulated failure")
		return
	}
	if table == "events" && !r.eventWrites && (req.Method == http.MethodPut || req.Method == http.MethodDelete) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	switch req.Method {
	case http.MethodGet:
		rows := make([]map[string]any, 0, len(r.tables[table]))
		for _, row := range r.tables[table] {
			rows = append(rows, r.joinLocked(table, row))
		}
		if table == "activities" {
			for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
				rows[i], rows[j] = rows[j], rows[i]
			}
		}
		writeJSON(w, http.StatusOK, rows)
	case http.MethodPost:
		record, ok := decodeObject(w, req)
		if !ok {
			return
		}
		if table == "team_members" {
			email, _ := record["email"].(string)
			password, _ := record["password"].(string)
			if email == "" || password == "" {
				writeError(w, http.StatusBadRequest, "Email and password are required")
				return
			}
			delete(record, "password")
			record["email"] = strings.ToLower(email)
			if status, _ := record["status"].(string); status == "" {
				record["status"] = "online"
			}
			id := r.insertLocked(table, record)
			r.credentials[strings.ToLower(email)] = account{password: password, memberID: id}
			writeJSON(w, http.StatusCreated, record)
			return
		}
		if table == "activities" {
			record["time"] = time.Now().UTC().Format(time.RFC3339)
		}
		r.insertLocked(table, record)
		writeJSON(w, http.StatusCreated, record)
	case http.MethodPut:
		patch, ok := decodeObject(w, req)
		if !ok {
			return
		}
		id := rowID(patch)
		for _, row := range r.tables[table] {
			if rowID(row) != id {
				continue
			}
			if table == "events" {
				if attendees, present := patch["attendees"]; present {
					r.attendees[id] = attendeeRows(id, attendees)
					delete(patch, "attendees")
				}
			}
			for field, value := range patch {
				row[field] = value
			}
			writeJSON(w, http.StatusOK, r.joinLocked(table, row))
			return
		}
		writeError(w, http.StatusNotFound, "row not found")
	case http.MethodDelete:
		id, err := strconv.ParseInt(req.URL.Query().Get("id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid id")
			return
		}
		kept := r.tables[table][:0]
		for _, row := range r.tables[table] {
			if rowID(row) != id {
				kept = append(kept, row)
			}
		}
		r.tables[table] = kept
		if table == "events" {
			delete(r.attendees, id)
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// insertLocked stores record, splitting event attendees into their own rows
// the way the real service does. The stored event row carries no attendees.
func (r *Remote) insertLocked(table string, record map[string]any) int64 {
	id := rowID(record)
	if id == 0 {
		id = r.nextID
		r.nextID++
		record["id"] = id
	} else if id >= r.nextID {
		r.nextID = id + 1
	}

	if table == "events" {
		if attendees, present := record["attendees"]; present {
			r.attendees[id] = attendeeRows(id, attendees)
			delete(record, "attendees")
		}
	}

	r.tables[table] = append(r.tables[table], record)
	return id
}

func (r *Remote) joinLocked(table string, row map[string]any) map[string]any {
	joined := make(map[string]any, len(row)+1)
	for field, value := range row {
		joined[field] = value
	}
	if table == "events" {
		attendees := r.attendees[rowID(row)]
		if attendees == nil {
			attendees = []map[string]any{}
		}
		joined["attendees"] = attendees
	}
	return joined
}

func attendeeRows(eventID int64, value any) []map[string]any {
	list, _ := value.([]any)
	rows := make([]map[string]any, 0, len(list))
	for _, entry := range list {
		if attendee, ok := entry.(map[string]any); ok {
			attendee["event_id"] = eventID
			rows = append(rows, attendee)
		}
	}
	return rows
}

func rowID(row map[string]any) int64 {
	switch id := row["id"].(type) {
	case float64:
		return int64(id)
	case int64:
		return id
	case int:
		return int64(id)
	default:
		return 0
	}
}

func decodeObject(w http.ResponseWriter, req *http.Request) (map[string]any, bool) {
	record := map[string]any{}
	if err := json.NewDecoder(req.Body).Decode(&record); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid body: %v", err))
		return nil, false
	}
	return record, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func key(table, method string) string {
	return table + " " + strings.ToUpper(method)
}
