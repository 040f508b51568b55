package report_test

import (
	"testing"
	"time"

	"github.com/gotd/td/tg"

	"tg-osint/internal/domain/report"
)

func TestPresenceOf(t *testing.T) {
	t.Parallel()

	wasOnline := int(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC).Unix())

	tests := []struct {
		name         string
		status       tg.UserStatusClass
		wantStatus   string
		wantLastSeen string
	}{
		{
			name:       "empty",
			status:     &tg.UserStatusEmpty{},
			wantStatus: report.StatusNever,
		},
		{
			name:       "online",
			status:     &tg.UserStatusOnline{Expires: wasOnline},
			wantStatus: report.StatusOnline,
		},
		{
			name:         "offline with timestamp",
			status:       &tg.UserStatusOffline{WasOnline: wasOnline},
			wantStatus:   report.StatusOffline,
			wantLastSeen: "2024-03-01 12:00:00 UTC",
		},
		{
			name:       "recently",
			status:     &tg.UserStatusRecently{},
			wantStatus: report.StatusRecently,
		},
		{
			name:       "last week",
			status:     &tg.UserStatusLastWeek{},
			wantStatus: report.StatusLastWeek,
		},
		{
			name:       "last month",
			status:     &tg.UserStatusLastMonth{},
			wantStatus: report.StatusLastMonth,
		},
		{
			name:       "nil status",
			status:     nil,
			wantStatus: report.StatusUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			status, lastSeen := report.PresenceOf(tt.status, time.UTC)
			if status != tt.wantStatus {
				t.Errorf("status = %q, want %q", status, tt.wantStatus)
			}
			if lastSeen != tt.wantLastSeen {
				t.Errorf("lastSeen = %q, want %q", lastSeen, tt.wantLastSeen)
			}
		})
	}
}
