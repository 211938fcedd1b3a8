package service

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/matheuspdias/managerclin-public-sub002/internal/dto"
	"github.com/matheuspdias/managerclin-public-sub002/internal/models"
	appErrors "github.com/matheuspdias/managerclin-public-sub002/pkg/errors"
)

const availabilityCachePrefix = "availability"

type workingHoursReader interface {
	FindForWeekday(ctx context.Context, companyID, practitionerID string, weekday int) (*models.WorkingHours, error)
	FindException(ctx context.Context, companyID, practitionerID string, date time.Time) (*models.ScheduleException, error)
}

type dayAppointmentLister interface {
	ListForPractitionerOnDate(ctx context.Context, companyID, practitionerID string, date time.Time, excludeID string) ([]models.Appointment, error)
	ListForRoomOnDate(ctx context.Context, companyID, roomID string, date time.Time, excludeID string) ([]models.Appointment, error)
}

type serviceDurationReader interface {
	FindByID(ctx context.Context, companyID, id string) (*models.Service, error)
}

type availabilityCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// AvailabilityService resolves practitioner availability windows, detects
// booking conflicts and derives free slots. All checks read a fresh snapshot
// per call; results are advisory between check and create.
type AvailabilityService struct {
	schedule           workingHoursReader
	appointments       dayAppointmentLister
	services           serviceDurationReader
	cache              availabilityCache
	cacheTTL           time.Duration
	defaultSlotMinutes int
	logger             *zap.Logger
}

// NewAvailabilityService builds an AvailabilityService with sane defaults.
func NewAvailabilityService(
	schedule workingHoursReader,
	appointments dayAppointmentLister,
	services serviceDurationReader,
	cache availabilityCache,
	cacheTTL time.Duration,
	defaultSlotMinutes int,
	logger *zap.Logger,
) *AvailabilityService {
	if defaultSlotMinutes <= 0 {
		defaultSlotMinutes = 30
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{
		schedule:           schedule,
		appointments:       appointments,
		services:           services,
		cache:              cache,
		cacheTTL:           cacheTTL,
		defaultSlotMinutes: defaultSlotMinutes,
		logger:             logger,
	}
}

// ResolveWindow determines the working window for a practitioner on a date.
// A ScheduleException for that exact date wins over the weekly template; a nil
// window means the practitioner is unavailable that day.
func (s *AvailabilityService) ResolveWindow(ctx context.Context, companyID, practitionerID string, date time.Time) (*dto.AvailabilityWindow, error) {
	exception, err := s.schedule.FindException(ctx, companyID, practitionerID, date)
	if err != nil && err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule exception")
	}
	if exception != nil {
		if !exception.IsAvailable {
			return nil, nil
		}
		window := &dto.AvailabilityWindow{
			BreakStart: exception.BreakStart,
			BreakEnd:   exception.BreakEnd,
		}
		if exception.StartTime != nil {
			window.Start = *exception.StartTime
		}
		if exception.EndTime != nil {
			window.End = *exception.EndTime
		}
		if window.Start == "" || window.End == "" {
			return nil, nil
		}
		return window, nil
	}

	hours, err := s.schedule.FindForWeekday(ctx, companyID, practitionerID, int(date.Weekday()))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load working hours")
	}

	return &dto.AvailabilityWindow{
		Start:      hours.StartTime,
		End:        hours.EndTime,
		BreakStart: hours.BreakStart,
		BreakEnd:   hours.BreakEnd,
	}, nil
}

// CheckConflicts probes a proposed time range against existing non-cancelled
// appointments. Practitioner and room occupancy are evaluated independently;
// a room conflict is reported even when the colliding appointment belongs to
// a different practitioner. Break windows are not considered here.
func (s *AvailabilityService) CheckConflicts(ctx context.Context, companyID string, req dto.ConflictCheckRequest) (*dto.ConflictCheckResponse, error) {
	start, err := parseClock(req.StartTime)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidTimeRange, fmt.Sprintf("invalid start time %q", req.StartTime))
	}
	end, err := parseClock(req.EndTime)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidTimeRange, fmt.Sprintf("invalid end time %q", req.EndTime))
	}
	if end <= start {
		return nil, appErrors.ErrInvalidTimeRange
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid date %q", req.Date))
	}

	var conflicts []models.AppointmentConflict

	existing, err := s.appointments.ListForPractitionerOnDate(ctx, companyID, req.PractitionerID, date, req.ExcludeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load practitioner appointments")
	}
	conflicts = append(conflicts, collectOverlaps(existing, start, end, models.ConflictPractitioner)...)

	if req.RoomID != "" {
		occupied, err := s.appointments.ListForRoomOnDate(ctx, companyID, req.RoomID, date, req.ExcludeID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room appointments")
		}
		conflicts = append(conflicts, collectOverlaps(occupied, start, end, models.ConflictRoom)...)
	}

	return &dto.ConflictCheckResponse{
		Bookable:  len(conflicts) == 0,
		Conflicts: conflicts,
	}, nil
}

// GetAvailableSlots derives the free slots for a practitioner/room/date.
// The service's duration drives the slot width; slots intersecting the
// break window or any existing appointment are excluded. An unavailable day
// yields an empty slot list, not an error.
func (s *AvailabilityService) GetAvailableSlots(ctx context.Context, companyID, practitionerID, roomID, serviceID string, date time.Time) (*dto.AvailableSlotsResponse, error) {
	duration := s.defaultSlotMinutes
	if serviceID != "" {
		svc, err := s.services.FindByID(ctx, companyID, serviceID)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "service not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load service")
		}
		if svc.DurationMinutes > 0 {
			duration = svc.DurationMinutes
		}
	}

	cacheKey := fmt.Sprintf("%s:%s:%s:%s:%s:%d", availabilityCachePrefix, companyID, practitionerID, roomID, date.Format("2006-01-02"), duration)
	if s.cache != nil {
		var cached dto.AvailableSlotsResponse
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	response := &dto.AvailableSlotsResponse{
		Date:            date.Format("2006-01-02"),
		PractitionerID:  practitionerID,
		RoomID:          roomID,
		DurationMinutes: duration,
		Slots:           []dto.Slot{},
	}

	window, err := s.ResolveWindow(ctx, companyID, practitionerID, date)
	if err != nil {
		return nil, err
	}
	if window == nil {
		return response, nil
	}
	response.Window = window

	windowStart, err := parseClock(window.Start)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "malformed working hours window")
	}
	windowEnd, err := parseClock(window.End)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "malformed working hours window")
	}

	breakStart, breakEnd := -1, -1
	if window.BreakStart != nil && window.BreakEnd != nil {
		if bs, err := parseClock(*window.BreakStart); err == nil {
			if be, err := parseClock(*window.BreakEnd); err == nil && be > bs {
				breakStart, breakEnd = bs, be
			}
		}
	}

	busy, err := s.appointments.ListForPractitionerOnDate(ctx, companyID, practitionerID, date, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load practitioner appointments")
	}
	if roomID != "" {
		roomBusy, err := s.appointments.ListForRoomOnDate(ctx, companyID, roomID, date, "")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room appointments")
		}
		busy = append(busy, roomBusy...)
	}

	for slotStart := windowStart; slotStart+duration <= windowEnd; slotStart += duration {
		slotEnd := slotStart + duration
		if breakStart >= 0 && slotStart < breakEnd && breakStart < slotEnd {
			continue
		}
		if overlapsAny(busy, slotStart, slotEnd) {
			continue
		}
		response.Slots = append(response.Slots, dto.Slot{
			Start: formatClock(slotStart),
			End:   formatClock(slotEnd),
		})
	}

	if s.cache != nil && s.cacheTTL > 0 {
		if err := s.cache.Set(ctx, cacheKey, response, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache available slots", zap.Error(err))
		}
	}

	return response, nil
}

// InvalidateDay drops cached slot listings touched by a booking change.
// Cache keys carry both the practitioner and the room, so a booking in room
// R also stales every other practitioner's cached listing for R; both
// dimensions are swept.
func (s *AvailabilityService) InvalidateDay(ctx context.Context, companyID, practitionerID, roomID string, date time.Time) {
	if s.cache == nil {
		return
	}
	day := date.Format("2006-01-02")
	patterns := []string{
		fmt.Sprintf("%s:%s:%s:*:%s:*", availabilityCachePrefix, companyID, practitionerID, day),
	}
	if roomID != "" {
		patterns = append(patterns, fmt.Sprintf("%s:%s:*:%s:%s:*", availabilityCachePrefix, companyID, roomID, day))
	}
	for _, pattern := range patterns {
		if err := s.cache.DeleteByPattern(ctx, pattern); err != nil {
			s.logger.Warn("failed to invalidate availability cache", zap.Error(err))
		}
	}
}

func collectOverlaps(existing []models.Appointment, start, end int, dimension models.ConflictDimension) []models.AppointmentConflict {
	var conflicts []models.AppointmentConflict
	for _, apt := range existing {
		aptStart, err := parseClock(apt.StartTime)
		if err != nil {
			continue
		}
		aptEnd, err := parseClock(apt.EndTime)
		if err != nil {
			continue
		}
		if start < aptEnd && aptStart < end {
			conflicts = append(conflicts, models.AppointmentConflict{
				AppointmentID: apt.ID,
				CustomerName:  apt.CustomerName,
				ServiceName:   apt.ServiceName,
				StartTime:     apt.StartTime,
				EndTime:       apt.EndTime,
				Dimension:     dimension,
			})
		}
	}
	return conflicts
}

func overlapsAny(existing []models.Appointment, start, end int) bool {
	for _, apt := range existing {
		aptStart, err := parseClock(apt.StartTime)
		if err != nil {
			continue
		}
		aptEnd, err := parseClock(apt.EndTime)
		if err != nil {
			continue
		}
		if start < aptEnd && aptStart < end {
			return true
		}
	}
	return false
}

// parseClock converts "HH:MM" into minutes since midnight.
func parseClock(value string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("malformed time %q", value)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("malformed time %q", value)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("malformed time %q", value)
	}
	return hours*60 + minutes, nil
}

func formatClock(total int) string {
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

func parseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(value))
}
