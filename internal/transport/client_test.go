package transport

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", WithLogger(zaptest.NewLogger(t))), srv
}

func TestRequest_SuccessDecodesJSON(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"status":"ok","count":2}`)
	})

	res := c.Request(context.Background(), "get", "/api/health", nil)
	if !res.Success {
		t.Fatalf("Request() failed: %+v", res)
	}
	if res.StatusCode != http.StatusOK || res.Kind != KindNone {
		t.Errorf("StatusCode = %d, Kind = %v", res.StatusCode, res.Kind)
	}
	if got := res.Object()["status"]; got != "ok" {
		t.Errorf("Data.status = %v, want ok", got)
	}
}

func TestRequest_Headers(t *testing.T) {
	var got http.Header
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = io.WriteString(w, `{}`)
	})

	c.SetAuthToken("abc")
	if res := c.Request(context.Background(), http.MethodGet, PathHealth, nil); !res.Success {
		t.Fatalf("Request() failed: %+v", res)
	}

	if got.Get("Authorization") != "Bearer abc" {
		t.Errorf("Authorization = %q", got.Get("Authorization"))
	}
	if got.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", got.Get("Content-Type"))
	}
	if got.Get("User-Agent") != DefaultUserAgent {
		t.Errorf("User-Agent = %q", got.Get("User-Agent"))
	}
	if got.Get("X-Request-ID") == "" {
		t.Error("X-Request-ID not set")
	}
}

func TestRequest_AuthTokenOverrideAndClear(t *testing.T) {
	var auth atomic.Value
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth.Store(r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{}`)
	})
	ctx := context.Background()

	c.SetAuthToken("default")
	c.Request(ctx, http.MethodGet, PathHealth, nil, WithAuthToken("override"))
	if got := auth.Load(); got != "Bearer override" {
		t.Errorf("override Authorization = %q", got)
	}

	c.Request(ctx, http.MethodGet, PathHealth, nil, WithAuthToken(""))
	if got := auth.Load(); got != "" {
		t.Errorf("empty override Authorization = %q, want none", got)
	}

	c.SetAuthToken("")
	c.Request(ctx, http.MethodGet, PathHealth, nil)
	if got := auth.Load(); got != "" {
		t.Errorf("cleared Authorization = %q, want none", got)
	}
}

func TestRequest_EncodesBodyForPostAndPut(t *testing.T) {
	var method string
	var body map[string]interface{}
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = io.WriteString(w, `{"ok":true}`)
	})

	res := c.UpdateMachineStatus(context.Background(), map[string]interface{}{"data": map[string]int{"x": 1}})
	if !res.Success {
		t.Fatalf("UpdateMachineStatus() failed: %+v", res)
	}
	if method != http.MethodPut {
		t.Errorf("method = %s, want PUT", method)
	}
	if _, ok := body["data"]; !ok {
		t.Errorf("body = %v, want data key", body)
	}
}

func TestRequest_UnsupportedMethod(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	res := c.Request(context.Background(), "PATCH", "/api/x", nil)
	if res.Success || res.Kind != KindUnexpected {
		t.Errorf("Request(PATCH) = %+v, want unexpected failure", res)
	}
	if res.Error != "unsupported HTTP method: PATCH" {
		t.Errorf("Error = %q", res.Error)
	}
	if calls.Load() != 0 {
		t.Error("unsupported method reached the server")
	}
}

func TestRequest_StatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		success bool
	}{
		{"invalid json on 200", 200, `<html>oops</html>`, msgInvalidBody, false},
		{"empty body on 200", 200, ``, msgInvalidBody, false},
		{"server message", 401, `{"message":"invalid credentials"}`, "invalid credentials", false},
		{"no message", 500, `{"detail":"x"}`, "HTTP error 500", false},
		{"non json error", 404, `not found`, "HTTP error 404", false},
		{"created is not success", 201, `{}`, "HTTP error 201", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			res := c.Request(context.Background(), http.MethodGet, "/api/x", nil)
			if res.Success != tt.success {
				t.Fatalf("Success = %v, want %v", res.Success, tt.success)
			}
			if res.Error != tt.want {
				t.Errorf("Error = %q, want %q", res.Error, tt.want)
			}
			if res.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", res.StatusCode, tt.status)
			}
			if res.Kind != KindProtocol {
				t.Errorf("Kind = %v, want protocol", res.Kind)
			}
		})
	}
}

func TestRequest_Timeout(t *testing.T) {
	release := make(chan struct{})
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	res := c.Request(context.Background(), http.MethodGet, "/slow", nil, WithTimeout(50*time.Millisecond))
	if res.Success || res.Kind != KindTimeout {
		t.Fatalf("Request() = %+v, want timeout", res)
	}
	if res.Error != msgTimeout {
		t.Errorf("Error = %q", res.Error)
	}
}

func TestRequest_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	c := New("http://"+addr, WithLogger(zaptest.NewLogger(t)))
	res := c.Health(context.Background())
	if res.Success || res.Kind != KindConnection {
		t.Fatalf("Health() = %+v, want connection failure", res)
	}
	if res.Error != msgConnection {
		t.Errorf("Error = %q", res.Error)
	}
}

func TestGetMachineConfig_EscapesMAC(t *testing.T) {
	var path string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.EscapedPath()
		_, _ = io.WriteString(w, `{"data":{}}`)
	})

	c.GetMachineConfig(context.Background(), "AA:BB:CC:DD:EE:FF")
	if path != "/api/machine/AA:BB:CC:DD:EE:FF" {
		t.Errorf("path = %q", path)
	}
}

func TestLogin_Body(t *testing.T) {
	var body map[string]string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != PathLogin || r.Method != http.MethodPost {
			t.Errorf("got %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = io.WriteString(w, `{"token":"abc"}`)
	})

	c.Login(context.Background(), LoginRequest{
		Email:           "a@b.c",
		Password:        "pw",
		MACAddress:      "AA:BB:CC:DD:EE:FF",
		Username:        "desk-01",
		OperatingSystem: "Linux 6.1.0",
	})

	want := map[string]string{
		"email":       "a@b.c",
		"password":    "pw",
		"mac_address": "AA:BB:CC:DD:EE:FF",
		"username":    "desk-01",
		"c":           "Linux 6.1.0",
	}
	for k, v := range want {
		if body[k] != v {
			t.Errorf("body[%q] = %q, want %q", k, body[k], v)
		}
	}
}

func TestErrorKind_String(t *testing.T) {
	if KindAuthRequired.String() != "auth_required" || ErrorKind(99).String() != "unknown" {
		t.Error("unexpected ErrorKind names")
	}
}
