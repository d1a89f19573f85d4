package utils

import (
	"testing"
	"time"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantDur time.Duration
		wantErr bool
	}{
		{"HH:MM:SS", "02:30:00", 2*time.Hour + 30*time.Minute, false},
		{"HH:MM", "10:30", 10*time.Hour + 30*time.Minute, false},
		{"with seconds", "01:00:30", time.Hour + 30*time.Second, false},
		{"large via HH:MM:SS", "84:00:00", 84 * time.Hour, false},
		{"go duration", "2h30m", 2*time.Hour + 30*time.Minute, false},
		{"go seconds", "90s", 90 * time.Second, false},
		{"empty string", "", 0, true},
		{"garbage", "abc", 0, true},
		{"too many fields", "1:2:3:4", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dur, err := ParseDuration(tt.input)
			if tt.wantErr && err == nil {
				t.Error("Expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if dur != tt.wantDur {
				t.Errorf("ParseDuration(%q) = %v; want %v", tt.input, dur, tt.wantDur)
			}
		})
	}
}

func TestFormatHMSTime(t *testing.T) {
	tests := []struct {
		input time.Duration
		want  string
	}{
		{2*time.Hour + 30*time.Minute, "02:30:00"},
		{time.Hour + 30*time.Second, "01:00:30"},
		{90 * time.Minute, "01:30:00"},
		{84 * time.Hour, "84:00:00"},
		{168 * time.Hour, "168:00:00"},
		{0, "00:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := FormatHMSTime(tt.input)
			if got != tt.want {
				t.Errorf("FormatHMSTime(%v) = %q; want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseKeyValue(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantKey   string
		wantValue string
		wantErr   bool
	}{
		{"simple", "MODE=fast", "MODE", "fast", false},
		{"empty value", "FLAG=", "FLAG", "", false},
		{"value with equals", "OPTS=-a=1 -b=2", "OPTS", "-a=1 -b=2", false},
		{"no equals", "MODE", "", "", true},
		{"empty key", "=value", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, value, err := ParseKeyValue(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if key != tt.wantKey || value != tt.wantValue {
				t.Errorf("ParseKeyValue(%q) = (%q, %q); want (%q, %q)",
					tt.input, key, value, tt.wantKey, tt.wantValue)
			}
		})
	}
}
