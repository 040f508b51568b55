package timeutil_test

import (
	"testing"
	"time"

	"tg-osint/internal/infra/timeutil"
)

func TestParseLocationIANA(t *testing.T) {
	t.Parallel()

	loc, err := timeutil.ParseLocation("Europe/Paris")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.String() != "Europe/Paris" {
		t.Errorf("location = %q, want Europe/Paris", loc.String())
	}
}

func TestParseLocationOffsets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value      string
		wantOffset int // секунды
		wantErr    bool
	}{
		{value: "+03:00", wantOffset: 3 * 3600},
		{value: "-0700", wantOffset: -7 * 3600},
		{value: "UTC+3", wantOffset: 3 * 3600},
		{value: "GMT-04:30", wantOffset: -(4*3600 + 30*60)},
		{value: "Z", wantOffset: 0},
		{value: "UTC", wantOffset: 0},
		{value: "", wantErr: true},
		{value: "Mars/Olympus", wantErr: true},
		{value: "+25:00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Parallel()
			loc, err := timeutil.ParseLocation(tt.value)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %v", tt.value, loc)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			_, offset := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC).In(loc).Zone()
			if offset != tt.wantOffset {
				t.Errorf("offset = %d, want %d", offset, tt.wantOffset)
			}
		})
	}
}

func TestFormatUnix(t *testing.T) {
	t.Parallel()

	sec := int(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC).Unix())

	if got := timeutil.FormatUnix(sec, time.UTC); got != "2024-03-01 12:00:00 UTC" {
		t.Errorf("FormatUnix = %q", got)
	}
	if got := timeutil.FormatUnix(0, time.UTC); got != "" {
		t.Errorf("FormatUnix(0) = %q, want empty", got)
	}
	// nil-локация трактуется как UTC, а не паникует.
	if got := timeutil.FormatUnix(sec, nil); got != "2024-03-01 12:00:00 UTC" {
		t.Errorf("FormatUnix with nil location = %q", got)
	}
}

func TestFormatUnixCompact(t *testing.T) {
	t.Parallel()

	sec := int(time.Date(2024, 3, 1, 12, 34, 56, 0, time.UTC).Unix())
	if got := timeutil.FormatUnixCompact(sec, time.UTC); got != "20240301_123456" {
		t.Errorf("FormatUnixCompact = %q", got)
	}
	if got := timeutil.FormatUnixCompact(0, time.UTC); got != "" {
		t.Errorf("FormatUnixCompact(0) = %q, want empty", got)
	}
}
