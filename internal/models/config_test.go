package models

import (
	"reflect"
	"testing"
)

func TestNormalize_UpdateFrequency(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, 1},
		{-3, 1},
		{1, 1},
		{5, 5},
		{10, 10},
		{60, 10},
	}

	for _, tt := range tests {
		got := MonitoringConfig{UpdateFrequency: tt.in}.Normalize().UpdateFrequency
		if got != tt.want {
			t.Errorf("Normalize(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestNormalize_KeepsOtherFields(t *testing.T) {
	cfg := MonitoringConfig{
		MachineName:     "X",
		MonitoredStatus: MonitoredStatus{CPU: true},
		UpdateFrequency: 5,
		StartWithOS:     true,
	}
	if got := cfg.Normalize(); !reflect.DeepEqual(got, cfg) {
		t.Errorf("Normalize() = %+v, want %+v", got, cfg)
	}
}

func TestMonitoredStatus_Categories(t *testing.T) {
	s := MonitoredStatus{CPU: true, Temperature: true, Processes: true}
	want := []Category{CategoryCPU, CategoryTemperature, CategoryProcesses}
	if got := s.Categories(); !reflect.DeepEqual(got, want) {
		t.Errorf("Categories() = %v, want %v", got, want)
	}
	if (MonitoredStatus{}).Categories() != nil {
		t.Error("empty status should have no categories")
	}
	if s.Enabled(Category("gpu")) {
		t.Error("unknown category should not be enabled")
	}
}
