package session

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/rocks-app/agent/internal/models"
)

func strPtr(s string) *string { return &s }

func TestStore_RoundTrip(t *testing.T) {
	info := &models.MachineIdentity{
		Hostname:        "desk-01",
		MACAddress:      "AA:BB:CC:DD:EE:FF",
		OperatingSystem: "Linux ubuntu 22.04 (6.5.0)",
	}

	tests := []struct {
		name string
		sess Session
	}{
		{"empty", Session{MachineType: "pc"}},
		{"token only", Session{AuthToken: strPtr("abc"), MachineType: "pc"}},
		{"server with info", Session{AuthToken: strPtr("abc"), MachineType: "server", MachineInfo: info}},
		{"logged out keeps info", Session{MachineType: "server", MachineInfo: info}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "data", "auth_state.json")

			if err := NewStore(path, zaptest.NewLogger(t)).Save(tt.sess); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			got := NewStore(path, zaptest.NewLogger(t)).Load()
			if !reflect.DeepEqual(got, tt.sess) {
				t.Errorf("Load() = %+v, want %+v", got, tt.sess)
			}
		})
	}
}

func TestStore_FileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth_state.json")
	store := NewStore(path, nil)

	if err := store.Save(Session{AuthToken: strPtr("abc"), MachineType: "pc"}); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	body := string(data)
	for _, want := range []string{`"auth_token": "abc"`, `"machine_type": "pc"`, `"machine_info": null`, "\n  "} {
		if !strings.Contains(body, want) {
			t.Errorf("session file %s missing %q", body, want)
		}
	}
}

func TestStore_LoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "absent.json"), zaptest.NewLogger(t))

	got := store.Load()
	if got.IsAuthenticated() || got.MachineType != DefaultMachineType || got.MachineInfo != nil {
		t.Errorf("Load() = %+v, want empty session", got)
	}
}

func TestStore_LoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth_state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	got := NewStore(path, zaptest.NewLogger(t)).Load()
	if got.IsAuthenticated() {
		t.Errorf("Load() of corrupt file = %+v, want empty session", got)
	}
}

func TestStore_LoadDefaultsMachineType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth_state.json")
	content := `{"auth_token": "abc", "machine_type": null, "machine_info": null}`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	got := NewStore(path, nil).Load()
	if got.MachineType != "pc" {
		t.Errorf("MachineType = %q, want pc", got.MachineType)
	}
	if got.AuthToken == nil || *got.AuthToken != "abc" {
		t.Errorf("AuthToken = %v, want abc", got.AuthToken)
	}
}

func TestStore_ConcurrentSaves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth_state.json")
	store := NewStore(path, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			mt := "pc"
			if i%2 == 0 {
				mt = "server"
			}
			if err := store.Save(Session{AuthToken: strPtr("tok"), MachineType: mt}); err != nil {
				t.Errorf("Save() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	got := store.Load()
	if got.AuthToken == nil || *got.AuthToken != "tok" {
		t.Errorf("Load() after concurrent saves = %+v", got)
	}
}
