package service

import (
	"context"
	"testing"
	"time"

	"portfolio_dashboard/internal/domain/entity"
	"portfolio_dashboard/internal/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWallet = "0x2222222222222222222222222222222222222222"

func newChartServiceForTest(history *stubHistory, now time.Time) *chartServiceImpl {
	svc := NewChartService(history, cache.New(time.Minute), nopLogger{}, newTestConfig()).(*chartServiceImpl)
	svc.now = func() time.Time { return now }
	return svc
}

func TestChartSeries_EmptyHistoryPlaceholder(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newChartServiceForTest(&stubHistory{}, now)

	series, err := svc.ChartSeries(context.Background(), testWallet, entity.PeriodDay)
	require.NoError(t, err)

	// 48 intervals -> 49 evenly spaced points across 24 hours
	require.Len(t, series, 49)
	assert.Equal(t, now.Add(-24*time.Hour), series[0].Timestamp)
	assert.Equal(t, now, series[len(series)-1].Timestamp)
	for i, p := range series {
		assert.True(t, p.Value.IsZero(), "placeholder point %d must hold the constant value", i)
		if i > 0 {
			assert.Equal(t, 30*time.Minute, p.Timestamp.Sub(series[i-1].Timestamp))
		}
	}
}

func TestChartSeries_ReplaysRunningBalance(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	other := "0x3333333333333333333333333333333333333333"
	history := &stubHistory{transfers: []entity.Transfer{
		// newest-first, as the history service returns them
		tokenTransfer("0xh2", testWallet, other, testWallet, 30, now.Add(-10*time.Hour)),
		tokenTransfer("0xh1", other, testWallet, testWallet, 100, now.Add(-20*time.Hour)),
	}}
	svc := newChartServiceForTest(history, now)

	series, err := svc.ChartSeries(context.Background(), testWallet, entity.PeriodDay)
	require.NoError(t, err)
	require.Len(t, series, 49)

	for i, p := range series {
		assert.True(t, p.Value.Sign() >= 0, "point %d must be non-negative", i)
		if i > 0 {
			assert.True(t, p.Timestamp.After(series[i-1].Timestamp), "timestamps must be strictly ascending")
		}
	}

	assert.True(t, series[0].Value.IsZero(), "before any transfer the balance is zero")
	assert.Equal(t, "100", series[24].Value.String(), "after the inbound transfer")
	assert.Equal(t, "70", series[48].Value.String(), "after the outbound transfer")
}

func TestChartSeries_ClampsAtZero(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	other := "0x3333333333333333333333333333333333333333"
	history := &stubHistory{transfers: []entity.Transfer{
		tokenTransfer("0xh2", other, testWallet, testWallet, 20, now.Add(-5*time.Hour)),
		tokenTransfer("0xh1", testWallet, other, testWallet, 50, now.Add(-20*time.Hour)),
	}}
	svc := newChartServiceForTest(history, now)

	series, err := svc.ChartSeries(context.Background(), testWallet, entity.PeriodDay)
	require.NoError(t, err)

	for i, p := range series {
		assert.True(t, p.Value.Sign() >= 0, "point %d went negative", i)
	}
	assert.Equal(t, "20", series[len(series)-1].Value.String())
}

func TestChartSeries_InvalidPeriod(t *testing.T) {
	svc := newChartServiceForTest(&stubHistory{}, time.Now())

	_, err := svc.ChartSeries(context.Background(), testWallet, entity.ChartPeriod("5Y"))
	assert.ErrorIs(t, err, entity.ErrInvalidPeriod)
}

func TestChartSeries_CachesPerPeriod(t *testing.T) {
	history := &stubHistory{}
	svc := newChartServiceForTest(history, time.Now())

	_, err := svc.ChartSeries(context.Background(), testWallet, entity.PeriodHour)
	require.NoError(t, err)
	_, err = svc.ChartSeries(context.Background(), testWallet, entity.PeriodHour)
	require.NoError(t, err)
	assert.Equal(t, 1, history.calls, "second call within the window must be a cache hit")

	_, err = svc.ChartSeries(context.Background(), testWallet, entity.PeriodWeek)
	require.NoError(t, err)
	assert.Equal(t, 2, history.calls, "a different period is a different cache key")
}
