// Package rowstoretest provides an in-memory stand-in for the hosted
// database's REST surface, for use with httptest.
package rowstoretest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/iliyamo/sensor-status-relay/internal/rowstore"
)

// Server answers PATCH and GET on /rest/v1/{table} with eq.* filters.
type Server struct {
	*httptest.Server
	Key string

	mu      sync.Mutex
	tables  map[string][]rowstore.Row
	updates int
}

// NewServer starts a server that accepts key as its only valid access key.
func NewServer(key string) *Server {
	s := &Server{Key: key, tables: map[string][]rowstore.Row{}}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

// Seed appends rows to table, creating it when needed.
func (s *Server) Seed(table string, rows ...rowstore.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		cp := make(rowstore.Row, len(r))
		for k, v := range r {
			cp[k] = v
		}
		s.tables[table] = append(s.tables[table], cp)
	}
}

// Row returns a copy of the first row of table whose column equals value.
func (s *Server) Row(table, column string, value any) (rowstore.Row, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := fmt.Sprint(value)
	for _, r := range s.tables[table] {
		if fmt.Sprint(r[column]) == want {
			cp := make(rowstore.Row, len(r))
			for k, v := range r {
				cp[k] = v
			}
			return cp, true
		}
	}
	return nil, false
}

// Updates counts PATCH requests that reached a table.
func (s *Server) Updates() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updates
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("apikey") != s.Key || r.Header.Get("Authorization") != "Bearer "+s.Key {
		writeError(w, http.StatusUnauthorized, "", "Invalid API key")
		return
	}
	table, ok := strings.CutPrefix(r.URL.Path, "/rest/v1/")
	if !ok || table == "" {
		writeError(w, http.StatusNotFound, "", "not found")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, ok := s.tables[table]
	if !ok {
		writeError(w, http.StatusNotFound, "PGRST205", fmt.Sprintf("Could not find the table 'public.%s' in the schema cache", table))
		return
	}

	match := func(row rowstore.Row) bool {
		for col, vals := range r.URL.Query() {
			if col == "select" {
				continue
			}
			for _, v := range vals {
				want, ok := strings.CutPrefix(v, "eq.")
				if !ok || fmt.Sprint(row[col]) != want {
					return false
				}
			}
		}
		return true
	}

	out := []rowstore.Row{}
	switch r.Method {
	case http.MethodGet:
		for _, row := range rows {
			if match(row) {
				out = append(out, row)
			}
		}
	case http.MethodPatch:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "", err.Error())
			return
		}
		var values map[string]any
		if err := json.Unmarshal(body, &values); err != nil {
			writeError(w, http.StatusBadRequest, "PGRST102", "Empty or invalid json")
			return
		}
		for col := range values {
			if len(rows) > 0 {
				if _, known := rows[0][col]; !known {
					writeError(w, http.StatusBadRequest, "PGRST204", fmt.Sprintf("Could not find the '%s' column of '%s' in the schema cache", col, table))
					return
				}
			}
		}
		s.updates++
		for _, row := range rows {
			if !match(row) {
				continue
			}
			for k, v := range values {
				row[k] = v
			}
			out = append(out, row)
		}
	default:
		writeError(w, http.StatusMethodNotAllowed, "", "method not allowed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Range", fmt.Sprintf("0-%d/*", len(out)-1))
	_ = json.NewEncoder(w).Encode(out)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"code": code, "message": msg, "details": nil, "hint": nil})
}
