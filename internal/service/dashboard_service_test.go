package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheuspdias/managerclin-public-sub002/internal/models"
	appErrors "github.com/matheuspdias/managerclin-public-sub002/pkg/errors"
)

type dashboardCountersStub struct {
	appointmentCalls int
	income           float64
	expense          float64
}

func (s *dashboardCountersStub) CountInRange(ctx context.Context, companyID string, from, to time.Time) (int, error) {
	s.appointmentCalls++
	return 3, nil
}

func (s *dashboardCountersStub) CountActive(ctx context.Context, companyID string) (int, error) {
	return 42, nil
}

func (s *dashboardCountersStub) CountBirthdaysInMonth(ctx context.Context, companyID string, month int) (int, error) {
	return 5, nil
}

func (s *dashboardCountersStub) SumByType(ctx context.Context, companyID string, transactionType models.TransactionType, from, to time.Time) (float64, error) {
	if transactionType == models.TransactionIncome {
		return s.income, nil
	}
	return s.expense, nil
}

func (s *dashboardCountersStub) CountLowStock(ctx context.Context, companyID string) (int, error) {
	return 2, nil
}

func (s *dashboardCountersStub) CountPending(ctx context.Context, companyID string) (int, error) {
	return 7, nil
}

type dashboardCampaignStub struct{}

func (dashboardCampaignStub) CountActive(ctx context.Context, companyID string) (int, error) {
	return 1, nil
}

type memoryCacheStub struct {
	entries map[string][]byte
	gets    int
	sets    int
}

func (s *memoryCacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	s.gets++
	raw, ok := s.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (s *memoryCacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	s.sets++
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if s.entries == nil {
		s.entries = map[string][]byte{}
	}
	s.entries[key] = raw
	return nil
}

func TestDashboardSummaryAggregatesCounters(t *testing.T) {
	counters := &dashboardCountersStub{income: 1500.50, expense: 400}
	svc := NewDashboardService(counters, counters, counters, counters, dashboardCampaignStub{}, counters, nil, 0, nil)

	summary, err := svc.Summary(context.Background(), "company-1")
	require.NoError(t, err)

	assert.Equal(t, 3, summary.AppointmentsToday)
	assert.Equal(t, 3, summary.AppointmentsWeek)
	assert.Equal(t, 2, counters.appointmentCalls)
	assert.Equal(t, 42, summary.CustomersTotal)
	assert.Equal(t, 5, summary.BirthdaysThisMonth)
	assert.InDelta(t, 1500.50, summary.MonthIncome, 0.001)
	assert.InDelta(t, 400.0, summary.MonthExpense, 0.001)
	assert.Equal(t, 2, summary.LowStockProducts)
	assert.Equal(t, 1, summary.ActiveCampaigns)
	assert.Equal(t, 7, summary.PendingNotifications)
}

func TestDashboardSummaryUsesCache(t *testing.T) {
	counters := &dashboardCountersStub{}
	cache := &memoryCacheStub{}
	svc := NewDashboardService(counters, counters, counters, counters, dashboardCampaignStub{}, counters, cache, time.Minute, nil)

	_, err := svc.Summary(context.Background(), "company-1")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, 2, counters.appointmentCalls)

	// second call served entirely from cache
	summary, err := svc.Summary(context.Background(), "company-1")
	require.NoError(t, err)
	assert.Equal(t, 2, counters.appointmentCalls)
	assert.Equal(t, 42, summary.CustomersTotal)
}
