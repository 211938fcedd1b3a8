package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/matheuspdias/managerclin-public-sub002/internal/dto"
	"github.com/matheuspdias/managerclin-public-sub002/internal/models"
	appErrors "github.com/matheuspdias/managerclin-public-sub002/pkg/errors"
)

type dashboardAppointmentCounter interface {
	CountInRange(ctx context.Context, companyID string, from, to time.Time) (int, error)
}

type dashboardCustomerCounter interface {
	CountActive(ctx context.Context, companyID string) (int, error)
	CountBirthdaysInMonth(ctx context.Context, companyID string, month int) (int, error)
}

type dashboardFinanceReader interface {
	SumByType(ctx context.Context, companyID string, transactionType models.TransactionType, from, to time.Time) (float64, error)
}

type dashboardInventoryCounter interface {
	CountLowStock(ctx context.Context, companyID string) (int, error)
}

type dashboardCampaignCounter interface {
	CountActive(ctx context.Context, companyID string) (int, error)
}

type dashboardNotificationCounter interface {
	CountPending(ctx context.Context, companyID string) (int, error)
}

type dashboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// DashboardService aggregates the landing page counters for one clinic.
// Every counter hits a different table, so the whole summary is cached as
// a single payload.
type DashboardService struct {
	appointments  dashboardAppointmentCounter
	customers     dashboardCustomerCounter
	finance       dashboardFinanceReader
	inventory     dashboardInventoryCounter
	campaigns     dashboardCampaignCounter
	notifications dashboardNotificationCounter
	cache         dashboardCache
	cacheTTL      time.Duration
	logger        *zap.Logger
}

// NewDashboardService constructs a DashboardService. cache may be nil.
func NewDashboardService(
	appointments dashboardAppointmentCounter,
	customers dashboardCustomerCounter,
	finance dashboardFinanceReader,
	inventory dashboardInventoryCounter,
	campaigns dashboardCampaignCounter,
	notifications dashboardNotificationCounter,
	cache dashboardCache,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *DashboardService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		appointments:  appointments,
		customers:     customers,
		finance:       finance,
		inventory:     inventory,
		campaigns:     campaigns,
		notifications: notifications,
		cache:         cache,
		cacheTTL:      cacheTTL,
		logger:        logger,
	}
}

// Summary builds the dashboard counters for the current day, week and month.
func (s *DashboardService) Summary(ctx context.Context, companyID string) (*dto.DashboardSummary, error) {
	cacheKey := fmt.Sprintf("dashboard:%s", companyID)
	if s.cache != nil {
		var cached dto.DashboardSummary
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		}
	}

	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)
	weekStart := dayStart.AddDate(0, 0, -int(dayStart.Weekday()))
	weekEnd := weekStart.AddDate(0, 0, 7)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	summary := &dto.DashboardSummary{}
	var err error

	if summary.AppointmentsToday, err = s.appointments.CountInRange(ctx, companyID, dayStart, dayEnd); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count today's appointments")
	}
	if summary.AppointmentsWeek, err = s.appointments.CountInRange(ctx, companyID, weekStart, weekEnd); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count weekly appointments")
	}
	if summary.CustomersTotal, err = s.customers.CountActive(ctx, companyID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count customers")
	}
	if summary.BirthdaysThisMonth, err = s.customers.CountBirthdaysInMonth(ctx, companyID, int(now.Month())); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count birthdays")
	}
	if summary.MonthIncome, err = s.finance.SumByType(ctx, companyID, models.TransactionIncome, monthStart, monthEnd); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum monthly income")
	}
	if summary.MonthExpense, err = s.finance.SumByType(ctx, companyID, models.TransactionExpense, monthStart, monthEnd); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum monthly expenses")
	}
	if summary.LowStockProducts, err = s.inventory.CountLowStock(ctx, companyID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count low-stock products")
	}
	if summary.ActiveCampaigns, err = s.campaigns.CountActive(ctx, companyID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count active campaigns")
	}
	if summary.PendingNotifications, err = s.notifications.CountPending(ctx, companyID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pending notifications")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, summary, s.cacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return summary, nil
}
