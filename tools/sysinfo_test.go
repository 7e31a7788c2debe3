package tools

import (
	"context"
	"strings"
	"testing"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{0, "0.00 B"},
		{1023, "1023.00 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1 << 20, "1.00 MB"},
		{1 << 30, "1.00 GB"},
		{1 << 40, "1.00 TB"},
		{1 << 50, "1.00 PB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		seconds uint64
		want    string
	}{
		{45, "0m 45s"},
		{60, "1m 0s"},
		{3600, "1h 0m"},
		{3661, "1h 1m"},
		{86400, "1d 0h 0m"},
		{90061, "1d 1h 1m"},
	}
	for _, tt := range tests {
		if got := formatUptime(tt.seconds); got != tt.want {
			t.Errorf("formatUptime(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestSystemInfoBasic(t *testing.T) {
	got, err := SystemInfo(context.Background(), "basic", "")
	if err != nil {
		t.Fatalf("SystemInfo() error = %v", err)
	}
	for _, section := range []string{
		"=== SYSTEM INFO ===",
		"=== CPU INFO ===",
		"=== MEMORY INFO ===",
		"=== DISK INFO ===",
		"=== TOP PROCESSES ===",
	} {
		if !strings.Contains(got, section) {
			t.Errorf("SystemInfo(basic) missing section %q", section)
		}
	}
}

func TestSystemInfoNetwork(t *testing.T) {
	got, err := SystemInfo(context.Background(), "network", "")
	if err != nil {
		t.Fatalf("SystemInfo() error = %v", err)
	}
	for _, section := range []string{
		"=== NETWORK INTERFACES ===",
		"=== NETWORK STATISTICS ===",
		"=== ACTIVE CONNECTIONS ===",
	} {
		if !strings.Contains(got, section) {
			t.Errorf("SystemInfo(network) missing section %q", section)
		}
	}
}

func TestSystemInfoUnknownParamFallsBackToBasic(t *testing.T) {
	got, err := SystemInfo(context.Background(), "everything", "")
	if err != nil {
		t.Fatalf("SystemInfo() error = %v", err)
	}
	if !strings.HasPrefix(got, "=== SYSTEM INFO ===") {
		t.Errorf("SystemInfo(everything) = %q..., want basic report", got[:40])
	}
}
