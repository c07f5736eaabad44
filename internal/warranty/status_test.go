package warranty

import (
	"testing"
	"time"
)

var statusNow = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

func TestDeriveStatus_Boundaries(t *testing.T) {
	cases := []struct {
		name string
		end  time.Time
		want Status
	}{
		{
			name: "one_day_past_is_expired",
			end:  statusNow.AddDate(0, 0, -1),
			want: StatusExpired,
		},
		{
			name: "equal_to_now_is_expired",
			end:  statusNow,
			want: StatusExpired,
		},
		{
			name: "one_day_left_is_expiring_soon",
			end:  statusNow.AddDate(0, 0, 1),
			want: StatusExpiringSoon,
		},
		{
			name: "29_days_left_is_expiring_soon",
			end:  statusNow.AddDate(0, 0, 29),
			want: StatusExpiringSoon,
		},
		{
			name: "exactly_horizon_is_expiring_soon",
			end:  statusNow.AddDate(0, 0, 30),
			want: StatusExpiringSoon,
		},
		{
			name: "31_days_left_is_active",
			end:  statusNow.AddDate(0, 0, 31),
			want: StatusActive,
		},
		{
			name: "years_left_is_active",
			end:  statusNow.AddDate(3, 0, 0),
			want: StatusActive,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DeriveStatus(tc.end, statusNow, DefaultHorizonDays)
			if got != tc.want {
				t.Fatalf("DeriveStatus(%v)=%q, want %q", tc.end, got, tc.want)
			}
		})
	}
}

func TestDeriveStatus_PartitionsTimeline(t *testing.T) {
	// Walk a window around now day by day; every date must land in
	// exactly one valid class and classes must appear in order
	// expired -> expiring-soon -> active with no gaps.
	var prev Status
	for d := -40; d <= 40; d++ {
		end := statusNow.AddDate(0, 0, d)
		got := DeriveStatus(end, statusNow, DefaultHorizonDays)
		if !got.Valid() {
			t.Fatalf("day %+d: invalid status %q", d, got)
		}
		if prev != "" && rank(got) < rank(prev) {
			t.Fatalf("day %+d: status went backwards from %q to %q", d, prev, got)
		}
		prev = got
	}
}

func rank(s Status) int {
	switch s {
	case StatusExpired:
		return 0
	case StatusExpiringSoon:
		return 1
	default:
		return 2
	}
}

func TestDeriveStatus_CustomHorizon(t *testing.T) {
	end := statusNow.AddDate(0, 0, 10)
	if got := DeriveStatus(end, statusNow, 7); got != StatusActive {
		t.Fatalf("horizon 7: got %q, want %q", got, StatusActive)
	}
	if got := DeriveStatus(end, statusNow, 14); got != StatusExpiringSoon {
		t.Fatalf("horizon 14: got %q, want %q", got, StatusExpiringSoon)
	}
}
