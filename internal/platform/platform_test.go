package platform

import (
	"runtime"
	"testing"
)

func TestNew(t *testing.T) {
	p := New()
	if p == nil {
		t.Fatal("New() returned nil")
	}
	if runtime.GOOS != "windows" {
		edition, err := p.OSEdition()
		if err != nil || edition != "" {
			t.Errorf("OSEdition() = (%q, %v), want empty", edition, err)
		}
		if p.Name() != "generic" {
			t.Errorf("Name() = %q, want generic", p.Name())
		}
	}
}
