package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ChartPoint is one sample of the running token balance at a bucket boundary.
// Value is never negative.
type ChartPoint struct {
	Value     decimal.Decimal `json:"value"`
	Timestamp time.Time       `json:"timestamp"`
}

// ChartPeriod selects the lookback window of a profit chart.
type ChartPeriod string

const (
	PeriodHour     ChartPeriod = "1H"
	PeriodSixHours ChartPeriod = "6H"
	PeriodDay      ChartPeriod = "1D"
	PeriodWeek     ChartPeriod = "1W"
	PeriodMonth    ChartPeriod = "1M"
	PeriodAll      ChartPeriod = "All"
)

// DefaultChartPeriod is what the dashboard plots when no period is chosen.
const DefaultChartPeriod = PeriodDay

type periodSpec struct {
	lookback  time.Duration
	intervals int
}

// "All" is bounded at a year: the transfer history itself is capped long
// before that window fills up.
var periodSpecs = map[ChartPeriod]periodSpec{
	PeriodHour:     {time.Hour, 12},
	PeriodSixHours: {6 * time.Hour, 24},
	PeriodDay:      {24 * time.Hour, 48},
	PeriodWeek:     {7 * 24 * time.Hour, 50},
	PeriodMonth:    {30 * 24 * time.Hour, 50},
	PeriodAll:      {365 * 24 * time.Hour, 50},
}

// Spec returns the lookback duration and bucket interval count for the
// period, or ErrInvalidPeriod for an unknown one. The emitted series has
// intervals+1 points.
func (p ChartPeriod) Spec() (time.Duration, int, error) {
	s, ok := periodSpecs[p]
	if !ok {
		return 0, 0, ErrInvalidPeriod
	}
	return s.lookback, s.intervals, nil
}
