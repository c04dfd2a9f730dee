package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer validtoken1234567890" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]string{"username": "alice", "group": "eng"}); err != nil {
			http.Error(w, "encode error", http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	tests := []struct {
		name   string
		token  string
		server string
	}{
		{"no token", "", srv.URL},
		{"short token", "abc", srv.URL},
		{"valid token", "validtoken1234567890", srv.URL},
		{"rejected token", "badtoken1234567890", srv.URL},
		{"unreachable server", "validtoken1234567890", "http://127.0.0.1:1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			t.Setenv("BLOGGU_TOKEN", tt.token)
			t.Setenv("BLOGGU_SERVER_URL", tt.server)

			// status reports problems on stdout and never fails
			if err := runStatus(); err != nil {
				t.Fatalf("status: %v", err)
			}
		})
	}
}
