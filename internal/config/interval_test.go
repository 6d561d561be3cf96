package config

import (
	"errors"
	"testing"
	"time"
)

func TestParseInterval(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		unit    Unit
		want    time.Duration
		wantErr bool
	}{
		{"seconds", "1.5", Seconds, 1500 * time.Millisecond, false},
		{"padded", "  2  ", Seconds, 2 * time.Second, false},
		{"minutes", "2", Minutes, 2 * time.Minute, false},
		{"fractional minutes", "0.25", Minutes, 15 * time.Second, false},
		{"rounds to millisecond", "0.5004", Seconds, 500 * time.Millisecond, false},
		{"floor", "0.5", Seconds, 500 * time.Millisecond, false},
		{"below floor", "0.4", Seconds, 0, true},
		{"negative", "-1", Minutes, 0, true},
		{"not a number", "soon", Seconds, 0, true},
		{"trailing junk", "1s", Seconds, 0, true},
		{"infinite", "inf", Seconds, 0, true},
		{"beyond timer limit", "100000", Minutes, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInterval(tt.text, tt.unit)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInterval) {
					t.Fatalf("ParseInterval(%q) error = %v, want ErrInvalidInterval", tt.text, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseInterval(%q) returned error: %v", tt.text, err)
			}
			if got != tt.want {
				t.Fatalf("ParseInterval(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestFormatInterval(t *testing.T) {
	tests := []struct {
		in       time.Duration
		wantText string
		wantUnit Unit
	}{
		{1500 * time.Millisecond, "1.500", Seconds},
		{2 * time.Minute, "2.000", Minutes},
		{90 * time.Second, "90.000", Seconds},
	}
	for _, tt := range tests {
		text, unit := FormatInterval(tt.in)
		if text != tt.wantText || unit != tt.wantUnit {
			t.Errorf("FormatInterval(%v) = %q, %v; want %q, %v", tt.in, text, unit, tt.wantText, tt.wantUnit)
		}
	}
}
