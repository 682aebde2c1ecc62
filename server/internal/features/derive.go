package features

import "github.com/riskpulse/riskpulse/pkg/types"

// Counts holds the derived payment-history features.
type Counts struct {
	OnTime int `json:"ontime_count"`
	Late   int `json:"late_count"`
	Missed int `json:"missed_count"`

	// Consistency is 1 when all months share one status, otherwise 0.
	Consistency int `json:"payment_consistency"`
}

// Derive counts each status across the six months. Statuses outside the
// known set are not counted; callers validate the request first.
func Derive(months [types.HistoryMonths]types.PaymentStatus) Counts {
	var c Counts
	for _, s := range months {
		switch s {
		case types.StatusOnTime:
			c.OnTime++
		case types.StatusLate:
			c.Late++
		case types.StatusMissed:
			c.Missed++
		}
	}

	c.Consistency = 1
	for _, s := range months[1:] {
		if s != months[0] {
			c.Consistency = 0
			break
		}
	}
	return c
}

// Total returns the number of months counted.
func (c Counts) Total() int {
	return c.OnTime + c.Late + c.Missed
}
