package hdhr

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// descriptorServer serves a fixed body on /discover.json and returns the
// host:port the client should probe.
func descriptorServer(t *testing.T, status int, body string) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/discover.json" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return strings.TrimPrefix(server.URL, "http://")
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   bool
	}{
		{
			name:   "complete descriptor",
			status: http.StatusOK,
			body:   `{"DeviceID":"1040A1B2","ModelNumber":"HDHR5-4US","FriendlyName":"HDHomeRun CONNECT"}`,
			want:   true,
		},
		{
			name:   "missing DeviceID",
			status: http.StatusOK,
			body:   `{"ModelNumber":"HDHR5-4US"}`,
			want:   false,
		},
		{
			name:   "missing ModelNumber",
			status: http.StatusOK,
			body:   `{"DeviceID":"1040A1B2"}`,
			want:   false,
		},
		{
			name:   "empty object",
			status: http.StatusOK,
			body:   `{}`,
			want:   false,
		},
		{
			name:   "malformed body",
			status: http.StatusOK,
			body:   `not json at all`,
			want:   false,
		},
		{
			name:   "JSON array instead of object",
			status: http.StatusOK,
			body:   `[{"DeviceID":"1040A1B2","ModelNumber":"HDHR5-4US"}]`,
			want:   false,
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   `{"DeviceID":"1040A1B2","ModelNumber":"HDHR5-4US"}`,
			want:   false,
		},
	}

	client := NewClient()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ip := descriptorServer(t, tt.status, tt.body)
			if got := client.Verify(ip); got != tt.want {
				t.Errorf("Verify = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVerifyUnreachable(t *testing.T) {
	client := NewClient()
	// Reserved TEST-NET address; the 2s probe timeout bounds the wait.
	if client.Verify("192.0.2.1") {
		t.Error("Verify of unreachable host = true, want false")
	}
}

func TestDescribe(t *testing.T) {
	client := NewClient()

	t.Run("full descriptor", func(t *testing.T) {
		ip := descriptorServer(t, http.StatusOK,
			`{"DeviceID":"1040A1B2","ModelNumber":"HDHR5-4US","FriendlyName":"Attic Tuner","FirmwareVersion":"20230101"}`)

		device, ok := client.Describe(ip)
		if !ok {
			t.Fatal("Describe failed")
		}
		if device.FriendlyName != "Attic Tuner" {
			t.Errorf("FriendlyName = %q, want %q", device.FriendlyName, "Attic Tuner")
		}
		if device.DeviceID != "1040A1B2" || device.ModelNumber != "HDHR5-4US" {
			t.Errorf("descriptor fields = %q/%q", device.DeviceID, device.ModelNumber)
		}
		if device.IP != ip {
			t.Errorf("IP = %q, want %q", device.IP, ip)
		}
		if device.DiscoveredAt.IsZero() {
			t.Error("DiscoveredAt not set")
		}
	})

	t.Run("friendly name fallback", func(t *testing.T) {
		ip := descriptorServer(t, http.StatusOK,
			`{"DeviceID":"1040A1B2","ModelNumber":"HDHR5-4US"}`)

		device, ok := client.Describe(ip)
		if !ok {
			t.Fatal("Describe failed")
		}
		want := "HDHomeRun at " + ip
		if device.FriendlyName != want {
			t.Errorf("FriendlyName = %q, want %q", device.FriendlyName, want)
		}
	})

	t.Run("failure yields absent", func(t *testing.T) {
		ip := descriptorServer(t, http.StatusNotFound, "")
		if _, ok := client.Describe(ip); ok {
			t.Error("Describe of failing device succeeded")
		}
	})
}

func TestDeviceName(t *testing.T) {
	client := NewClient()

	ip := descriptorServer(t, http.StatusOK,
		`{"DeviceID":"1040A1B2","ModelNumber":"HDHR5-4US","FriendlyName":"Den"}`)
	if got := client.DeviceName(ip); got != "Den" {
		t.Errorf("DeviceName = %q, want %q", got, "Den")
	}

	// Unreachable devices still get a synthesized name
	if got := client.DeviceName("192.0.2.1"); got != "HDHomeRun at 192.0.2.1" {
		t.Errorf("DeviceName fallback = %q", got)
	}
}

func TestFetchLineup(t *testing.T) {
	client := NewClient()

	t.Run("entries without URL are skipped", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/lineup.json" {
				http.NotFound(w, r)
				return
			}
			_, _ = w.Write([]byte(`[
				{"GuideNumber":"95.5","GuideName":"Jazz FM","URL":"http://tuner/auto/v95.5"},
				{"GuideNumber":"96.1","GuideName":"No Stream Here"},
				{"GuideNumber":"4.1","GuideName":"Local News","URL":"http://tuner/auto/v4.1"}
			]`))
		}))
		defer server.Close()

		ip := strings.TrimPrefix(server.URL, "http://")
		channels := client.FetchLineup(&Device{IP: ip, FriendlyName: "Test"})

		if len(channels) != 2 {
			t.Fatalf("got %d channels, want 2", len(channels))
		}
		if channels[0].GuideNumber != "95.5" || channels[1].GuideNumber != "4.1" {
			t.Errorf("unexpected channels: %+v", channels)
		}
		if channels[0].DeviceIP != ip {
			t.Errorf("DeviceIP = %q, want %q", channels[0].DeviceIP, ip)
		}
	})

	t.Run("non-200 yields empty", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		ip := strings.TrimPrefix(server.URL, "http://")
		if channels := client.FetchLineup(&Device{IP: ip}); len(channels) != 0 {
			t.Errorf("got %d channels, want 0", len(channels))
		}
	})

	t.Run("malformed body yields empty", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"not":"an array"}`))
		}))
		defer server.Close()

		ip := strings.TrimPrefix(server.URL, "http://")
		if channels := client.FetchLineup(&Device{IP: ip}); len(channels) != 0 {
			t.Errorf("got %d channels, want 0", len(channels))
		}
	})

	t.Run("unreachable device yields empty", func(t *testing.T) {
		if channels := client.FetchLineup(&Device{IP: "192.0.2.1"}); len(channels) != 0 {
			t.Errorf("got %d channels, want 0", len(channels))
		}
	})
}
