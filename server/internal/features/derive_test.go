package features

import (
	"testing"

	"github.com/riskpulse/riskpulse/pkg/types"
)

const (
	on     = types.StatusOnTime
	late   = types.StatusLate
	missed = types.StatusMissed
)

func TestDerive(t *testing.T) {
	tests := []struct {
		name   string
		months [types.HistoryMonths]types.PaymentStatus
		want   Counts
	}{
		{
			name:   "all on time",
			months: [6]types.PaymentStatus{on, on, on, on, on, on},
			want:   Counts{OnTime: 6, Consistency: 1},
		},
		{
			name:   "mixed history",
			months: [6]types.PaymentStatus{missed, missed, missed, late, late, on},
			want:   Counts{OnTime: 1, Late: 2, Missed: 3},
		},
		{
			name:   "all missed is still consistent",
			months: [6]types.PaymentStatus{missed, missed, missed, missed, missed, missed},
			want:   Counts{Missed: 6, Consistency: 1},
		},
		{
			name:   "single deviation in last month",
			months: [6]types.PaymentStatus{late, late, late, late, late, on},
			want:   Counts{OnTime: 1, Late: 5},
		},
		{
			name:   "single deviation in first month",
			months: [6]types.PaymentStatus{missed, on, on, on, on, on},
			want:   Counts{OnTime: 5, Missed: 1},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Derive(tc.months)
			if got != tc.want {
				t.Errorf("Derive() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

// TestDerive_Exhaustive walks every one of the 3^6 histories and checks the
// count and consistency properties.
func TestDerive_Exhaustive(t *testing.T) {
	statuses := types.PaymentStatuses
	var months [types.HistoryMonths]types.PaymentStatus

	total := 1
	for i := 0; i < types.HistoryMonths; i++ {
		total *= len(statuses)
	}

	for n := 0; n < total; n++ {
		v := n
		distinct := map[types.PaymentStatus]struct{}{}
		for i := range months {
			months[i] = statuses[v%len(statuses)]
			v /= len(statuses)
			distinct[months[i]] = struct{}{}
		}

		c := Derive(months)
		if c.Total() != types.HistoryMonths {
			t.Fatalf("%v: counts sum to %d, want 6", months, c.Total())
		}
		for _, k := range []int{c.OnTime, c.Late, c.Missed} {
			if k < 0 || k > types.HistoryMonths {
				t.Fatalf("%v: count %d outside [0,6]", months, k)
			}
		}
		wantConsistency := 0
		if len(distinct) == 1 {
			wantConsistency = 1
		}
		if c.Consistency != wantConsistency {
			t.Fatalf("%v: consistency = %d, want %d", months, c.Consistency, wantConsistency)
		}
	}
}
