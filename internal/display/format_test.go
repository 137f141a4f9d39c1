package display

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		want  string
	}{
		{"zero", 0, "0 B"},
		{"small bytes", 512, "512 B"},
		{"exactly 1 KiB", 1024, "1.0 KiB"},
		{"1.5 KiB", 1536, "1.5 KiB"},
		{"1 MiB", 1024 * 1024, "1.0 MiB"},
		{"1 GiB", 1024 * 1024 * 1024, "1.0 GiB"},
		{"4K png frame", 25165824, "24.0 MiB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatBytes(tt.bytes)
			if got != tt.want {
				t.Errorf("FormatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"sub-second", 850 * time.Millisecond, "850ms"},
		{"seconds", 4200 * time.Millisecond, "4.20s"},
		{"minutes", 3*time.Minute + 7*time.Second, "3m07s"},
		{"hours", 2*time.Hour + 5*time.Minute, "2h05m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDuration(tt.d); got != tt.want {
				t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
			}
		})
	}
}

func TestFormatSavings(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"saved", 62 * time.Second, "+ 1m02s"},
		{"lost", -3100 * time.Millisecond, "- 3.10s"},
		{"zero", 0, "0.00s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatSavings(tt.d); got != tt.want {
				t.Errorf("FormatSavings(%v) = %q, want %q", tt.d, got, tt.want)
			}
		})
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(9, 10); got != "90%" {
		t.Errorf("FormatPercent(9, 10) = %q", got)
	}
	if got := FormatPercent(3, 0); got != "0%" {
		t.Errorf("FormatPercent(3, 0) = %q", got)
	}
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	if !strings.Contains(buf.String(), "|_|   |_|") {
		t.Errorf("banner output = %q", buf.String())
	}
}
