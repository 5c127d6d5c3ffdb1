package host

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/muurk/hdhradio/internal/bridge"
)

func TestRegisterSource(t *testing.T) {
	var received bridge.SourceDescription
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/sources" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"instance_id":"inst-42"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	id, err := client.RegisterSource(bridge.SourceDescription{
		Name: "HDHomeRun [Attic]: Jazz FM (95.5)",
		Tag:  "hdhomerun_192_168_1_100_95_5",
	})
	if err != nil {
		t.Fatalf("RegisterSource failed: %v", err)
	}
	if id != "inst-42" {
		t.Errorf("instance ID = %q, want %q", id, "inst-42")
	}
	if received.Tag != "hdhomerun_192_168_1_100_95_5" {
		t.Errorf("host received tag %q", received.Tag)
	}
}

func TestRegisterSourceErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, ""},
		{"empty instance ID", http.StatusOK, `{"instance_id":""}`},
		{"malformed body", http.StatusOK, `garbage`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.URL)
			if _, err := client.RegisterSource(bridge.SourceDescription{Tag: "x"}); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestUnregisterSource(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			http.Error(w, "method", http.StatusMethodNotAllowed)
			return
		}
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if err := client.UnregisterSource("inst-42"); err != nil {
		t.Fatalf("UnregisterSource failed: %v", err)
	}
	if gotPath != "/api/sources/inst-42" {
		t.Errorf("path = %q, want %q", gotPath, "/api/sources/inst-42")
	}
}

func TestUnregisterSourceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if err := client.UnregisterSource("inst-42"); err == nil {
		t.Error("expected error, got nil")
	}
}

func TestActiveRoutes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/routes" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`[
			{"source":"hdhomerun_192_168_1_100_95_5","enabled":true},
			{"source":"Line In","enabled":false}
		]`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	routes, err := client.ActiveRoutes(context.Background())
	if err != nil {
		t.Fatalf("ActiveRoutes failed: %v", err)
	}
	if len(routes) != 2 {
		t.Fatalf("got %d routes, want 2", len(routes))
	}
	if routes[0].Source != "hdhomerun_192_168_1_100_95_5" || !routes[0].Enabled {
		t.Errorf("routes[0] = %+v", routes[0])
	}
	if routes[1].Enabled {
		t.Errorf("routes[1] = %+v, want disabled", routes[1])
	}
}

func TestActiveRoutesErrors(t *testing.T) {
	t.Run("non-200", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := NewClient(server.URL)
		if _, err := client.ActiveRoutes(context.Background()); err == nil {
			t.Error("expected error, got nil")
		}
	})

	t.Run("unreachable host", func(t *testing.T) {
		client := NewClient("http://127.0.0.1:1")
		if _, err := client.ActiveRoutes(context.Background()); err == nil {
			t.Error("expected error, got nil")
		}
	})
}

func TestNewClientTrimsTrailingSlash(t *testing.T) {
	client := NewClient("http://127.0.0.1:8085/")
	if client.BaseURL != "http://127.0.0.1:8085" {
		t.Errorf("BaseURL = %q", client.BaseURL)
	}
}
